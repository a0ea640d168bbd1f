package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/samvad-hq/inference-console/internal/config"
	"github.com/samvad-hq/inference-console/internal/domain"
	"github.com/samvad-hq/inference-console/internal/logger"
	"github.com/samvad-hq/inference-console/internal/metrics"
	"github.com/samvad-hq/inference-console/internal/render"
	"github.com/samvad-hq/inference-console/internal/status"
	"github.com/samvad-hq/inference-console/pkg/httpclient"
	"github.com/samvad-hq/inference-console/pkg/reporters"
	"github.com/samvad-hq/inference-console/pkg/service"
)

const reportTimeout = 10 * time.Second

var errOperationFailed = errors.New("operation failed")

// Options overrides the console's I/O and transport. Zero values use stdin, stdout and resty.
type Options struct {
	In         io.Reader
	Out        io.Writer
	HTTPClient httpclient.Client
	Metrics    *metrics.Metrics
}

// Console wires the service client to the status board, reporters and metrics.
type Console struct {
	cfg     *config.Config
	client  *service.Client
	board   *status.Board
	term    *render.Terminal
	fanout  *reporters.Fanout
	metrics *metrics.Metrics
	log     logger.Logger
	in      io.Reader

	inflight sync.WaitGroup
}

// NewConsole builds a console runtime from config.
func NewConsole(ctx context.Context, cfg *config.Config, log logger.Logger, opts Options) (*Console, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewMetrics(nil)
	}

	client, err := service.NewClient(cfg.ServiceBaseURL, opts.HTTPClient, cfg.HTTPTimeout)
	if err != nil {
		return nil, fmt.Errorf("init service client: %w", err)
	}

	fanout, err := buildReporters(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	term := render.NewTerminal(opts.Out, !cfg.NoColor)
	return &Console{
		cfg:     cfg,
		client:  client,
		board:   status.NewBoard(term),
		term:    term,
		fanout:  fanout,
		metrics: opts.Metrics,
		log:     log,
		in:      opts.In,
	}, nil
}

func buildReporters(ctx context.Context, cfg *config.Config, log logger.Logger) (*reporters.Fanout, error) {
	if cfg.ReportersFile == "" {
		return reporters.NewFanout(nil), nil
	}

	reg, err := reporters.LoadRegistry(cfg.ReportersFile)
	if err != nil {
		return nil, fmt.Errorf("load reporters registry: %w", err)
	}
	enabled := reg.Enabled()
	reps, err := reporters.BuildAll(ctx, reporters.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build reporters: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, rc := range enabled {
		summaries = append(summaries, map[string]string{"id": rc.ID, "type": rc.Type})
	}
	log.InfoObj("reporters registry loaded", "reporters_meta", map[string]any{
		"count":     len(summaries),
		"reporters": summaries,
	})
	return reporters.NewFanout(reps), nil
}

// Board exposes the display state.
func (c *Console) Board() *status.Board { return c.board }

// Close waits for in-flight calls and releases reporter clients.
func (c *Console) Close() error {
	c.inflight.Wait()
	return c.fanout.Close()
}

// CheckHealth runs one health check and applies the outcome to the board.
func (c *Console) CheckHealth(ctx context.Context) service.HealthOutcome {
	c.board.SetStatus(status.Checking())

	done := c.metrics.Start(service.OpHealth)
	out := c.client.CheckHealth(ctx)
	done(out.OK, out.Elapsed)

	msg := c.board.ApplyHealth(out).Status
	c.logOutcome(service.OpHealth, out.OK, out.Elapsed, out.Err)

	var payload any
	if out.OK {
		payload = out.Health
	}
	c.report(ctx, service.OpHealth, msg, out.Elapsed, payload)
	return out
}

// RunInference sends sample to the service and applies the outcome to the board.
func (c *Console) RunInference(ctx context.Context, sample string) service.InferenceOutcome {
	c.board.SetStatus(status.Sending())

	done := c.metrics.Start(service.OpInference)
	out := c.client.RunInference(ctx, domain.InferenceRequest{Sample: sample})
	done(out.OK, out.Elapsed)

	msg := c.board.ApplyInference(out).Status
	c.logOutcome(service.OpInference, out.OK, out.Elapsed, out.Err)

	var payload any
	if out.OK {
		payload = out.Result
	}
	c.report(ctx, service.OpInference, msg, out.Elapsed, payload)
	return out
}

// ShowHistory fetches and prints recent results. It does not touch the status line.
func (c *Console) ShowHistory(ctx context.Context) service.HistoryOutcome {
	done := c.metrics.Start(service.OpHistory)
	out := c.client.History(ctx)
	done(out.OK, out.Elapsed)

	c.logOutcome(service.OpHistory, out.OK, out.Elapsed, out.Err)
	if !out.OK {
		c.term.Println("History unavailable - check backend")
		return out
	}
	c.term.RenderHistory(out.Entries)
	return out
}

func (c *Console) logOutcome(op string, ok bool, elapsed time.Duration, err error) {
	fields := map[string]any{
		"operation":  op,
		"ok":         ok,
		"elapsed_ms": elapsed.Milliseconds(),
	}
	if err != nil {
		fields["error"] = err.Error()
		c.log.WarnObj("service call failed", "service_call", fields)
		return
	}
	c.log.DebugObj("service call completed", "service_call", fields)
}

func (c *Console) report(ctx context.Context, op string, msg status.Message, elapsed time.Duration, payload any) {
	if c.fanout.Size() == 0 {
		return
	}

	evt := reporters.NewEvent(op, string(msg.Kind), msg.OK, msg.Text)
	evt.ServiceURL = c.client.BaseURL()
	evt.ElapsedMs = elapsed.Milliseconds()
	evt.Payload = payload

	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reportTimeout)
	defer cancel()
	if _, err := c.fanout.Report(rctx, evt); err != nil {
		c.metrics.ReportFailed()
		c.log.ErrorObj("outcome report failed", "report_error", map[string]any{
			"event_id":  evt.ID,
			"operation": op,
			"error":     err.Error(),
		})
	}
}

// Run executes the configured mode until it finishes or ctx is cancelled.
func (c *Console) Run(ctx context.Context) error {
	if c == nil || c.client == nil {
		return fmt.Errorf("console is not initialized")
	}

	switch c.cfg.Mode {
	case config.ModeHealth:
		if out := c.CheckHealth(ctx); !out.OK {
			return fmt.Errorf("health check: %w", errOperationFailed)
		}
		return nil
	case config.ModeInfer:
		if out := c.RunInference(ctx, c.cfg.Sample); !out.OK {
			return fmt.Errorf("inference: %w", errOperationFailed)
		}
		return nil
	case config.ModeHistory:
		if out := c.ShowHistory(ctx); !out.OK {
			return fmt.Errorf("history: %w", errOperationFailed)
		}
		return nil
	default:
		return c.runInteractive(ctx)
	}
}

// spawn runs fn on its own goroutine so overlapping commands stay independent.
func (c *Console) spawn(ctx context.Context, fn func(context.Context)) {
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		fn(ctx)
	}()
}
