package pdf

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/sony/gobreaker"

	"github.com/tripdesk/crm-backend/pkg/logger"
)

type ChromiumRenderer struct {
	binPath string
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker
}

func NewChromiumRenderer(binPath string, timeout time.Duration) *ChromiumRenderer {
	if binPath == "" {
		binPath = "chromium"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "pdf-renderer",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return &ChromiumRenderer{
		binPath: binPath,
		timeout: timeout,
		breaker: breaker,
	}
}

func (r *ChromiumRenderer) Render(ctx context.Context, html string) ([]byte, error) {
	out, err := r.breaker.Execute(func() (any, error) {
		return r.render(ctx, html)
	})
	if err != nil {
		return nil, err
	}
	return out.([]byte), nil
}

func (r *ChromiumRenderer) render(ctx context.Context, html string) ([]byte, error) {
	dir, err := os.MkdirTemp("", "pdf-render-*")
	if err != nil {
		return nil, fmt.Errorf("pdf: temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	htmlPath := filepath.Join(dir, "input.html")
	pdfPath := filepath.Join(dir, "output.pdf")

	if err := os.WriteFile(htmlPath, []byte(html), 0o600); err != nil {
		return nil, fmt.Errorf("pdf: write html: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.binPath,
		"--headless",
		"--disable-gpu",
		"--no-sandbox",
		"--no-pdf-header-footer",
		"--print-to-pdf="+pdfPath,
		"file://"+htmlPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdf: chromium: %w: %s", err, out)
	}

	data, err := os.ReadFile(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("pdf: read output: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("pdf: chromium produced empty output")
	}
	return data, nil
}
