// Package blob stores uploaded binary artifacts (profile logos, rendered
// itinerary PDFs) and serves them back over HTTP.
package blob

import (
	"context"
	"fmt"
	"strings"
)

type Store interface {
	// Put writes data under key and returns its public URL.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// KeyFromURL recovers a storage key from a public URL produced by Put.
// Keys are always "<dir>/<file>", the last two path segments of the URL.
func KeyFromURL(url string) (string, error) {
	trimmed := strings.TrimRight(url, "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) < 2 {
		return "", fmt.Errorf("blob: cannot derive key from url %q", url)
	}
	dir, file := parts[len(parts)-2], parts[len(parts)-1]
	if dir == "" || file == "" {
		return "", fmt.Errorf("blob: cannot derive key from url %q", url)
	}
	return dir + "/" + file, nil
}
