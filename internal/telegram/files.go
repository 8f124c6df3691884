package telegram

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/go-telegram/bot"
)

// DownloadFile downloads a file from Telegram by file ID and returns its
// bytes along with the MIME type guessed from the file path. Telegram does
// not report a MIME type for photos, so an empty string is possible and the
// caller sniffs from content.
func DownloadFile(ctx context.Context, b *bot.Bot, fileID string) ([]byte, string, string, error) {
	file, err := b.GetFile(ctx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, "", "", fmt.Errorf("get file: %w", err)
	}

	fileURL := b.FileDownloadLink(file)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, "", "", fmt.Errorf("create download request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, "", "", fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", "", fmt.Errorf("read file data: %w", err)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(file.FilePath))
	return data, file.FilePath, mimeType, nil
}
