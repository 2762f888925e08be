// Package dataurl decodes base64 "data:" URLs as produced by browser file readers.
package dataurl

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"strings"
)

var (
	ErrNotDataURL  = errors.New("not a data url")
	ErrNotBase64   = errors.New("data url is not base64 encoded")
	ErrBadEncoding = errors.New("data url payload is not valid base64")
)

type DataURL struct {
	MediaType string
	Data      []byte
}

// Parse decodes "data:<mediatype>[;params];base64,<payload>".
func Parse(raw string) (*DataURL, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(raw), "data:")
	if !ok {
		return nil, ErrNotDataURL
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, ErrNotDataURL
	}

	header, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		return nil, ErrNotBase64
	}
	if header == "" {
		header = "text/plain"
	}
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotDataURL, err)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadEncoding, err)
	}
	return &DataURL{MediaType: mediaType, Data: data}, nil
}

// DecodedLen is the decoded size of a base64 payload of n characters,
// without decoding it.
func DecodedLen(raw string) int {
	_, payload, ok := strings.Cut(raw, ",")
	if !ok {
		return 0
	}
	return base64.StdEncoding.DecodedLen(len(payload))
}

// Extension maps an image media type to a file extension.
func Extension(mediaType string) string {
	switch mediaType {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/heic":
		return ".heic"
	default:
		return ".bin"
	}
}
