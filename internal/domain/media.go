package domain

import "strings"

// EncodedImage is a user-selected image in both displayable and transmittable
// form. TransportPayload is always exactly the substring of DisplayURI
// following the first comma. Never persisted locally.
type EncodedImage struct {
	MIMEType         string // starts with "image/"
	DisplayURI       string // data URI, renderable directly
	TransportPayload string // base64 body only, no scheme prefix
}

// NewEncodedImage builds an EncodedImage from a MIME type and the base64
// body, deriving the data URI so the transport/display invariant holds by
// construction.
func NewEncodedImage(mimeType, payload string) EncodedImage {
	return EncodedImage{
		MIMEType:         mimeType,
		DisplayURI:       "data:" + mimeType + ";base64," + payload,
		TransportPayload: payload,
	}
}

// PayloadOf returns the transport payload of a display URI: everything after
// the first comma.
func PayloadOf(displayURI string) string {
	if i := strings.Index(displayURI, ","); i >= 0 {
		return displayURI[i+1:]
	}
	return displayURI
}
