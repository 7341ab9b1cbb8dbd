package environ

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"cloudpico-matrix/internal/poll"
)

// HTTPSource polls the environment sensor endpoint.
type HTTPSource struct {
	URL    string
	Client *http.Client
	now    func() time.Time
}

// environResponse is the body served at /environ. The "tempture" spelling is
// what the sensor firmware sends.
type environResponse struct {
	Error   bool `json:"error"`
	Results *struct {
		Temperature *float64 `json:"tempture"`
		Pressure    *float64 `json:"pressure"`
	} `json:"results"`
}

func NewHTTPSource(host string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		URL:    fmt.Sprintf("http://%s/environ", host),
		Client: &http.Client{Timeout: timeout},
		now:    time.Now,
	}
}

func (s *HTTPSource) Fetch(ctx context.Context) poll.Result[Reading] {
	slog.Debug("environ: request", "url", s.URL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return poll.Fatal[Reading](fmt.Errorf("build request: %w", err))
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return poll.FromError[Reading](fmt.Errorf("get %s: %w", s.URL, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return poll.Retry[Reading](fmt.Errorf("get %s: status %d: %w", s.URL, resp.StatusCode, poll.ErrUnavailable))
	}

	var body environResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return poll.Skip[Reading](fmt.Errorf("decode environ: %v: %w", err, poll.ErrMalformed))
	}
	if body.Error {
		return poll.Skip[Reading](fmt.Errorf("sensor reported an error: %w", poll.ErrMalformed))
	}
	if body.Results == nil || body.Results.Temperature == nil || body.Results.Pressure == nil {
		return poll.Skip[Reading](fmt.Errorf("results incomplete: %w", poll.ErrMalformed))
	}

	r := NewReading(*body.Results.Temperature, *body.Results.Pressure, s.now())
	slog.Debug("environ: ok", "temperature", r.Temperature, "pressure", r.Pressure)
	return poll.OK(r)
}

func (s *HTTPSource) Close() error {
	s.Client.CloseIdleConnections()
	return nil
}
