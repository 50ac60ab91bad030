package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tripdesk/crm-backend/internal/platform/blob"
	"github.com/tripdesk/crm-backend/pkg/logger"
)

// uploadDataURI decodes a "data:<mime>;base64,<payload>" URI and stores it
// under dir, returning the public URL.
func uploadDataURI(ctx context.Context, blobs blob.Store, dir, dataURI string) (string, error) {
	contentType, data, err := decodeDataURI(dataURI)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("%s/%s%s", dir, uuid.NewString(), extensionFor(contentType))
	url, err := blobs.Put(ctx, key, data, contentType)
	if err != nil {
		return "", fmt.Errorf("store blob: %w", err)
	}
	return url, nil
}

// deleteBlobByURL removes a stored blob by its public URL. Best-effort:
// failures are logged, never returned.
func deleteBlobByURL(ctx context.Context, blobs blob.Store, url string) {
	key, err := blob.KeyFromURL(url)
	if err != nil {
		logger.WarnContext(ctx, "derive blob key", "url", url, "error", err)
		return
	}
	if err := blobs.Delete(ctx, key); err != nil {
		logger.WarnContext(ctx, "delete blob", "key", key, "error", err)
	}
}

func decodeDataURI(dataURI string) (contentType string, data []byte, err error) {
	rest, ok := strings.CutPrefix(dataURI, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("malformed data URI")
	}
	contentType = strings.TrimSuffix(meta, ";base64")
	if contentType == meta {
		return "", nil, fmt.Errorf("only base64 data URIs are supported")
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode base64: %w", err)
	}
	if len(data) == 0 {
		return "", nil, fmt.Errorf("empty payload")
	}
	return contentType, data, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/svg+xml":
		return ".svg"
	case "application/pdf":
		return ".pdf"
	default:
		return ".bin"
	}
}
