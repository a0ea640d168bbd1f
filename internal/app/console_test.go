package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/samvad-hq/inference-console/internal/config"
	"github.com/samvad-hq/inference-console/internal/logger"
	"github.com/samvad-hq/inference-console/internal/metrics"
	"github.com/samvad-hq/inference-console/internal/status"
	"github.com/samvad-hq/inference-console/pkg/reporters"
)

// syncBuffer guards the output buffer; renders come from several goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func newBackend(t *testing.T, healthy bool) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		switch r.URL.Path {
		case "/api/health":
			_, _ = w.Write([]byte(`{"status":"ok","timestamp":"2024-01-01T00:00:00Z","uptime_s":1.5}`))
		case "/api/infer":
			raw, _ := io.ReadAll(r.Body)
			var req map[string]string
			_ = json.Unmarshal(raw, &req)
			_, _ = w.Write([]byte(`{"id":1,"sample":"` + req["sample"] + `","prediction":{"label":1,"score":0.87}}`))
		case "/api/history":
			_, _ = w.Write([]byte(`{"history":[{"id":1,"sample":"demo-frame","prediction":{"label":1,"score":0.87}}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		AppName:        "inference-console",
		ServiceBaseURL: baseURL,
		HTTPTimeout:    2 * time.Second,
		Mode:           config.ModeConsole,
		Sample:         "demo-frame",
		NoColor:        true,
	}
}

func newTestConsole(t *testing.T, cfg *config.Config, in string, out io.Writer) (*Console, *metrics.Metrics) {
	t.Helper()
	m := metrics.NewMetrics(nil)
	c, err := NewConsole(context.Background(), cfg, nil, Options{
		In:      strings.NewReader(in),
		Out:     out,
		Metrics: m,
	})
	if err != nil {
		t.Fatalf("NewConsole: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, m
}

func TestNewConsoleRequiresConfig(t *testing.T) {
	if _, err := NewConsole(context.Background(), nil, nil, Options{}); err == nil {
		t.Fatalf("expected error for nil config")
	}
}

func TestConsoleRunHealthMode(t *testing.T) {
	srv := newBackend(t, true)
	cfg := testConfig(srv.URL)
	cfg.Mode = config.ModeHealth
	var out syncBuffer
	c, m := newTestConsole(t, cfg, "", &out)

	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out.String(), "Checking backend...\nBackend status: ok @ 2024-01-01T00:00:00Z\n") {
		t.Fatalf("unexpected output %q", out.String())
	}
	if got := testutil.ToFloat64(m.CallsTotal.WithLabelValues("health", metrics.ResultSuccess)); got != 1 {
		t.Fatalf("health success count = %v", got)
	}
}

func TestConsoleRunHealthModeOffline(t *testing.T) {
	srv := newBackend(t, false)
	cfg := testConfig(srv.URL)
	cfg.Mode = config.ModeHealth
	var out syncBuffer
	c, _ := newTestConsole(t, cfg, "", &out)

	err := c.Run(context.Background())
	if !errors.Is(err, errOperationFailed) {
		t.Fatalf("expected operation failure, got %v", err)
	}
	if !strings.Contains(out.String(), "Backend status: offline") {
		t.Fatalf("unexpected output %q", out.String())
	}
	if c.Board().Snapshot().Status.Kind != status.KindOffline {
		t.Fatalf("board should show offline")
	}
}

func TestConsoleRunInferMode(t *testing.T) {
	srv := newBackend(t, true)
	cfg := testConfig(srv.URL)
	cfg.Mode = config.ModeInfer
	cfg.Sample = "frame-9"
	var out syncBuffer
	c, _ := newTestConsole(t, cfg, "", &out)

	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := "Sending sample frame...\nInference complete\n  Label 1\n  Score: 0.87\n  Sample: frame-9\n"
	if out.String() != want {
		t.Fatalf("got %q want %q", out.String(), want)
	}
}

func TestConsoleRunInferModeFailureLeavesNoPrediction(t *testing.T) {
	srv := newBackend(t, false)
	cfg := testConfig(srv.URL)
	cfg.Mode = config.ModeInfer
	var out syncBuffer
	c, _ := newTestConsole(t, cfg, "", &out)

	if err := c.Run(context.Background()); err == nil {
		t.Fatalf("expected failure")
	}
	snap := c.Board().Snapshot()
	if snap.Status.Text != "Inference failed - check backend" || snap.Prediction != nil {
		t.Fatalf("unexpected board %+v", snap)
	}
}

func TestConsoleRunHistoryMode(t *testing.T) {
	srv := newBackend(t, true)
	cfg := testConfig(srv.URL)
	cfg.Mode = config.ModeHistory
	var out syncBuffer
	c, _ := newTestConsole(t, cfg, "", &out)

	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out.String(), "#1 demo-frame label=1 score=0.87") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestConsoleInteractiveCommands(t *testing.T) {
	srv := newBackend(t, true)
	var out syncBuffer
	c, m := newTestConsole(t, testConfig(srv.URL), "help\ninfer custom-frame\nbogus\nquit\nhealth\n", &out)

	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got := out.String()
	for _, want := range []string{"Commands:", "Sample: custom-frame", "unknown command bogus"} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
	// The initial check runs on start; the health line after quit must be ignored.
	if n := testutil.ToFloat64(m.CallsTotal.WithLabelValues("health", metrics.ResultSuccess)); n != 1 {
		t.Fatalf("expected exactly one health call, got %v", n)
	}
	if n := testutil.ToFloat64(m.CallsTotal.WithLabelValues("infer", metrics.ResultSuccess)); n != 1 {
		t.Fatalf("expected one inference call, got %v", n)
	}
}

func TestConsoleInteractiveExitsOnEOF(t *testing.T) {
	srv := newBackend(t, true)
	var out syncBuffer
	c, _ := newTestConsole(t, testConfig(srv.URL), "", &out)

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("console did not exit on EOF")
	}
	if !strings.Contains(out.String(), "Backend status: ok") {
		t.Fatalf("initial health check missing: %q", out.String())
	}
}

func TestConsolePollsUntilCancelled(t *testing.T) {
	srv := newBackend(t, true)
	cfg := testConfig(srv.URL)
	cfg.HealthPollInterval = 20 * time.Millisecond
	var out syncBuffer
	c, m := newTestConsole(t, cfg, "", &out)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if err := c.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n := testutil.ToFloat64(m.CallsTotal.WithLabelValues("health", metrics.ResultSuccess)); n < 2 {
		t.Fatalf("expected repeated health polls, got %v", n)
	}
}

func TestConsoleReportsOutcomes(t *testing.T) {
	srv := newBackend(t, true)

	var mu sync.Mutex
	var events []reporters.Event
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var evt reporters.Event
		if err := json.Unmarshal(raw, &evt); err != nil {
			t.Errorf("decode event: %v", err)
		}
		mu.Lock()
		events = append(events, evt)
		mu.Unlock()
	}))
	defer hook.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "reporters.yaml")
	raw := "reporters:\n  - id: hook\n    type: http\n    http:\n      url: " + hook.URL + "\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write reporters file: %v", err)
	}

	cfg := testConfig(srv.URL)
	cfg.Mode = config.ModeInfer
	cfg.ReportersFile = path
	var out syncBuffer
	c, _ := newTestConsole(t, cfg, "", &out)

	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 1 {
		t.Fatalf("expected 1 reported event, got %d", len(events))
	}
	evt := events[0]
	if evt.Operation != "infer" || evt.Status != string(status.KindComplete) || !evt.OK {
		t.Fatalf("unexpected event %+v", evt)
	}
	if evt.ServiceURL != srv.URL || evt.ID == "" {
		t.Fatalf("event missing metadata %+v", evt)
	}
}

func TestParseCommand(t *testing.T) {
	cmd, ok := parseCommand("  INFER  frame 1 ")
	if !ok || cmd.name != "infer" || cmd.arg != "frame 1" {
		t.Fatalf("unexpected command %+v ok=%v", cmd, ok)
	}
	if _, ok := parseCommand("   "); ok {
		t.Fatalf("blank line should not parse")
	}
}

// endlessLines never reaches EOF.
type endlessLines struct{}

func (endlessLines) Read(p []byte) (int, error) {
	for i := range p {
		if i%2 == 0 {
			p[i] = 'h'
		} else {
			p[i] = '\n'
		}
	}
	return len(p), nil
}

func TestReadLinesStopsWhenDone(t *testing.T) {
	c := &Console{in: endlessLines{}, log: logger.NopLogger{}}
	done := make(chan struct{})
	lines := c.readLines(context.Background(), done)

	if line := <-lines; line != "h" {
		t.Fatalf("first line = %q", line)
	}
	close(done)

	timeout := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-lines:
			if !ok {
				return
			}
		case <-timeout:
			t.Fatalf("reader goroutine kept running after done was closed")
		}
	}
}
