package openweather

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cloudpico-matrix/internal/poll"
)

func entry(dt int64, icon string) Entry {
	e := Entry{DT: dt}
	if icon != "" {
		e.Weather = append(e.Weather, struct {
			Icon string `json:"icon"`
		}{Icon: icon})
	}
	return e
}

func TestNearest(t *testing.T) {
	target := time.Unix(10000, 0)
	tests := []struct {
		name    string
		entries []Entry
		wantDT  int64
		wantErr bool
	}{
		{name: "first after target", entries: []Entry{entry(9000, "01d"), entry(10800, "02d"), entry(11000, "03d")}, wantDT: 10800},
		{name: "exactly three hours", entries: []Entry{entry(10000 + 3*3600, "04d")}, wantDT: 10000 + 3*3600},
		{name: "just past window", entries: []Entry{entry(10000 + 3*3600 + 1, "04d")}, wantErr: true},
		{name: "equal to target", entries: []Entry{entry(10000, "01d")}, wantErr: true},
		{name: "all in the past", entries: []Entry{entry(1, "01d"), entry(9999, "01d")}, wantErr: true},
		{name: "empty", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Nearest(tt.entries, target)
			if tt.wantErr {
				if !errors.Is(err, ErrNoEntry) || poll.Classify(err) != poll.StatusSkip {
					t.Errorf("err = %v; want ErrNoEntry classified as skip", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Nearest: %v", err)
			}
			if got.DT != tt.wantDT {
				t.Errorf("dt = %d; want %d", got.DT, tt.wantDT)
			}
		})
	}
}

func TestEntryIcon(t *testing.T) {
	if code, err := entry(1, "10n").Icon(); err != nil || code != "10n" {
		t.Errorf("Icon() = %q, %v; want 10n", code, err)
	}
	if _, err := entry(1, "").Icon(); !errors.Is(err, poll.ErrMalformed) {
		t.Errorf("Icon() err = %v; want ErrMalformed", err)
	}
}

func newTestClient(srv *httptest.Server) *Client {
	return &Client{
		BaseURL: srv.URL + "/data/2.5/forecast",
		IconURL: srv.URL + "/img/w",
		City:    "Tokyo,jp",
		APIKey:  "secret",
		HTTP:    srv.Client(),
	}
}

func TestForecast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/2.5/forecast" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("q") != "Tokyo,jp" || r.URL.Query().Get("APPID") != "secret" {
			http.Error(w, "bad params", http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"cod":"200","list":[{"dt":100,"weather":[{"icon":"01d"}]},{"dt":200,"weather":[{"icon":"10n"}]}]}`))
	}))
	defer srv.Close()

	list, err := newTestClient(srv).Forecast(context.Background())
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if len(list) != 2 || list[1].DT != 200 {
		t.Fatalf("list = %+v", list)
	}
	if code, _ := list[1].Icon(); code != "10n" {
		t.Errorf("icon = %q; want 10n", code)
	}
}

func TestForecast_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   poll.Status
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"cod":401}`, want: poll.StatusRetry},
		{name: "server error", status: http.StatusBadGateway, want: poll.StatusRetry},
		{name: "garbage", status: http.StatusOK, body: `not json`, want: poll.StatusSkip},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestClient(srv).Forecast(context.Background())
			if got := poll.Classify(err); got != tt.want {
				t.Errorf("Classify(%v) = %v; want %v", err, got, tt.want)
			}
		})
	}
}

func TestForecast_ConnectionErrorHidesKey(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c := newTestClient(srv)
	srv.Close()

	_, err := c.Forecast(context.Background())
	if poll.Classify(err) != poll.StatusRetry {
		t.Errorf("Classify(%v) = %v; want retry", err, poll.Classify(err))
	}
	if strings.Contains(err.Error(), "secret") {
		t.Errorf("error leaks api key: %v", err)
	}
}

func TestIconImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 50, 50))
	src.Set(10, 10, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatal(err)
	}

	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		if r.URL.Path == "/img/w/broken.png" {
			_, _ = w.Write([]byte("nope"))
			return
		}
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()
	c := newTestClient(srv)

	img, err := c.IconImage(context.Background(), "04n")
	if err != nil {
		t.Fatalf("IconImage: %v", err)
	}
	if path != "/img/w/04n.png" {
		t.Errorf("path = %q; want /img/w/04n.png", path)
	}
	if img.Bounds().Dx() != 50 {
		t.Errorf("width = %d; want 50", img.Bounds().Dx())
	}

	if _, err := c.IconImage(context.Background(), "broken"); !errors.Is(err, poll.ErrMalformed) {
		t.Errorf("broken icon err = %v; want ErrMalformed", err)
	}
}
