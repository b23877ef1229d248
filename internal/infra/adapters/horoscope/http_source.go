package horoscope

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"club-bridge/internal/domain/model"
	"club-bridge/internal/domain/ports/adapter"
)

var _ adapter.HoroscopeSource = (*HTTPSource)(nil)

// HTTPSource fetches the mood text from an upstream JSON endpoint.
type HTTPSource struct {
	url    string
	client *http.Client
	now    func() time.Time
}

// NewHTTPSource builds a source for url. A timeout <= 0 defaults to 5s.
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPSource{
		url:    url,
		client: &http.Client{Timeout: timeout},
		now:    time.Now,
	}
}

type horoscopeResponse struct {
	Phase string `json:"phase"`
	Text  string `json:"text"`
}

func (s *HTTPSource) Horoscope(ctx context.Context) (*model.Horoscope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("horoscope upstream: status %d", resp.StatusCode)
	}

	var out horoscopeResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, body: %s", err, string(body))
	}
	if strings.TrimSpace(out.Text) == "" {
		return nil, errors.New("horoscope upstream: empty text")
	}
	return &model.Horoscope{Phase: out.Phase, Text: out.Text, FetchedAt: s.now().UTC()}, nil
}
