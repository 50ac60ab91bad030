// Package pdf renders HTML itineraries to PDF using headless Chromium.
// Rendering shells out, so calls run behind a circuit breaker: repeated
// renderer failures trip the breaker and fail fast instead of piling up
// Chromium processes.
package pdf

import "context"

type Renderer interface {
	// Render converts an HTML document to PDF bytes.
	Render(ctx context.Context, html string) ([]byte, error)
}
