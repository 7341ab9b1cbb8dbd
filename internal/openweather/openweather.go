// Package openweather reads the OpenWeatherMap 5 day / 3 hour forecast and
// the official condition icons.
package openweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cloudpico-matrix/internal/config"
	"cloudpico-matrix/internal/poll"
)

// Forecast entries are three hours apart, so nothing further than that from
// the target counts as near.
const window = 3 * time.Hour

var ErrNoEntry = fmt.Errorf("no forecast entry near target: %w", poll.ErrMalformed)

type Entry struct {
	DT      int64 `json:"dt"`
	Weather []struct {
		Icon string `json:"icon"`
	} `json:"weather"`
}

func (e Entry) Time() time.Time { return time.Unix(e.DT, 0) }

// Icon is the condition code of the first weather element, e.g. "10d".
func (e Entry) Icon() (string, error) {
	if len(e.Weather) == 0 || e.Weather[0].Icon == "" {
		return "", fmt.Errorf("entry %d has no weather icon: %w", e.DT, poll.ErrMalformed)
	}
	return e.Weather[0].Icon, nil
}

// Nearest returns the first entry after target that is at most three hours
// away from it.
func Nearest(entries []Entry, target time.Time) (Entry, error) {
	ts := target.Unix()
	limit := int64(window / time.Second)
	for _, e := range entries {
		if e.DT > ts && e.DT-ts <= limit {
			return e, nil
		}
	}
	return Entry{}, ErrNoEntry
}

type Client struct {
	BaseURL string
	IconURL string
	City    string
	APIKey  string
	HTTP    *http.Client
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		BaseURL: cfg.OpenWeatherURL,
		IconURL: strings.TrimSuffix(cfg.OpenWeatherIcons, "/"),
		City:    cfg.WeatherCity,
		APIKey:  cfg.OpenWeatherAPIKey,
		HTTP:    &http.Client{Timeout: cfg.HTTPTimeout},
	}
}

// Forecast fetches the forecast list for the configured city.
func (c *Client) Forecast(ctx context.Context) ([]Entry, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	q := u.Query()
	q.Set("q", c.City)
	q.Set("APPID", c.APIKey)
	u.RawQuery = q.Encode()

	slog.Debug("openweather: request forecast", "city", c.City)
	body, err := c.get(ctx, u.String())
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var resp struct {
		List []Entry `json:"list"`
	}
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode forecast: %v: %w", err, poll.ErrMalformed)
	}
	return resp.List, nil
}

// IconImage downloads the official icon for code.
func (c *Client) IconImage(ctx context.Context, code string) (image.Image, error) {
	u := c.IconURL + "/" + url.PathEscape(code) + ".png"
	slog.Debug("openweather: request icon", "url", u)

	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	img, _, err := image.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("decode icon %s: %v: %w", code, err, poll.ErrMalformed)
	}
	return img, nil
}

func (c *Client) get(ctx context.Context, u string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, redact(err, c.APIKey)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("openweather: status %d: %w", resp.StatusCode, poll.ErrUnavailable)
	}
	return resp.Body, nil
}

// redact keeps the API key out of logged *url.Error values.
func redact(err error, key string) error {
	var ue *url.Error
	if key == "" || !errors.As(err, &ue) {
		return err
	}
	ue.URL = strings.ReplaceAll(ue.URL, key, "REDACTED")
	return err
}
