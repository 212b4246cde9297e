package librosjson

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const maxLoggedBody = 2 << 10

// Client downloads catalog documents over HTTP. It makes a single
// attempt per call.
type Client struct {
	httpClient *http.Client
	userAgent  string
	logger     *zap.Logger
}

func NewClient(userAgent string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
		logger:    logger,
	}
}

// Fetch returns the body of url. Any status outside 2xx is an error.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	LogDocument(c.logger, url, body)
	return body, nil
}

// LogDocument writes the raw text of a catalog document at debug level,
// truncated to 2 KiB.
func LogDocument(logger *zap.Logger, source string, body []byte) {
	if logger == nil {
		return
	}
	if ce := logger.Check(zap.DebugLevel, "raw catalog document"); ce != nil {
		logged := body
		if len(logged) > maxLoggedBody {
			logged = logged[:maxLoggedBody]
		}
		ce.Write(zap.String("source", source), zap.Int("bytes", len(body)), zap.ByteString("body", logged))
	}
}
