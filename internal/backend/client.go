// Package backend is the HTTP client for the plant diagnosis service. It
// covers the four endpoints the bot depends on: predict, prediction history,
// chat, and chat history.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/leafwise/leafwise/internal/domain"
)

// Options configures a Client. BaseURL is required and points at the service
// root, e.g. "https://leafwise.example.com".
type Options struct {
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    opts.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// RequestError is a non-2xx response from the service. Detail carries the
// service-reported message verbatim when one was present.
type RequestError struct {
	StatusCode int
	Detail     string
}

func (e *RequestError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("service returned status %d", e.StatusCode)
}

type predictRequest struct {
	ImageBase64 string `json:"image_base64"`
}

type chatRequest struct {
	SessionID   string  `json:"session_id"`
	Message     string  `json:"message"`
	ImageBase64 *string `json:"image_base64"`
}

type chatResponse struct {
	Response string `json:"response"`
}

type predictionDTO struct {
	ID             string    `json:"id"`
	DiseaseName    string    `json:"disease_name"`
	Confidence     float64   `json:"confidence"`
	Description    string    `json:"description"`
	Treatments     []string  `json:"treatments"`
	PreventionTips []string  `json:"prevention_tips"`
	Timestamp      time.Time `json:"timestamp"`
}

type chatMessageDTO struct {
	Role        string    `json:"role"`
	Message     string    `json:"message"`
	ImageBase64 *string   `json:"image_base64"`
	Timestamp   time.Time `json:"timestamp"`
}

// Predict submits the transport payload of a leaf image for diagnosis.
func (c *Client) Predict(ctx context.Context, imageBase64 string) (*domain.Prediction, error) {
	var dto predictionDTO
	if err := c.post(ctx, "/api/predict", predictRequest{ImageBase64: imageBase64}, &dto); err != nil {
		return nil, err
	}
	p := dto.toDomain()
	return &p, nil
}

// ListPredictions fetches past diagnoses in the order the service returns
// them (reverse-chronological). The client does not re-sort.
func (c *Client) ListPredictions(ctx context.Context) ([]domain.HistoryEntry, error) {
	var dtos []predictionDTO
	if err := c.get(ctx, "/api/predictions", &dtos); err != nil {
		return nil, err
	}
	entries := make([]domain.HistoryEntry, len(dtos))
	for i, d := range dtos {
		entries[i] = domain.HistoryEntry{Prediction: d.toDomain()}
	}
	return entries, nil
}

// ChatHistory fetches prior turns for a session, oldest first.
func (c *Client) ChatHistory(ctx context.Context, sessionID string) ([]domain.ChatMessage, error) {
	var dtos []chatMessageDTO
	if err := c.get(ctx, "/api/chat/history/"+url.PathEscape(sessionID), &dtos); err != nil {
		return nil, err
	}
	msgs := make([]domain.ChatMessage, len(dtos))
	for i, d := range dtos {
		msgs[i] = d.toDomain()
	}
	return msgs, nil
}

// SendChat sends one chat turn and returns the assistant's reply text.
func (c *Client) SendChat(ctx context.Context, sessionID, message string, imageBase64 *string) (string, error) {
	var resp chatResponse
	req := chatRequest{SessionID: sessionID, Message: message, ImageBase64: imageBase64}
	if err := c.post(ctx, "/api/chat", req, &resp); err != nil {
		return "", err
	}
	return resp.Response, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RequestError{StatusCode: resp.StatusCode, Detail: extractDetail(data)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// extractDetail pulls the nested "detail" field the service puts in error
// bodies. Anything unparseable yields an empty detail.
func extractDetail(data []byte) string {
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	return body.Detail
}

func (d predictionDTO) toDomain() domain.Prediction {
	conf := int(math.Round(d.Confidence))
	if conf < 0 {
		conf = 0
	} else if conf > 100 {
		conf = 100
	}
	return domain.Prediction{
		ID:             d.ID,
		DiseaseName:    d.DiseaseName,
		Confidence:     conf,
		Description:    d.Description,
		Treatments:     d.Treatments,
		PreventionTips: d.PreventionTips,
		Timestamp:      d.Timestamp,
	}
}

func (d chatMessageDTO) toDomain() domain.ChatMessage {
	return domain.ChatMessage{
		Role:        domain.Role(d.Role),
		Message:     d.Message,
		ImageBase64: d.ImageBase64,
		Timestamp:   d.Timestamp,
	}
}
