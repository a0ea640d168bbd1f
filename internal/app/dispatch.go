package app

import (
	"bufio"
	"context"
	"strings"
	"time"
)

const helpText = `Commands:
  health           check backend health
  infer [sample]   send an inference request (default sample from config)
  history          show recent inference results
  status           reprint the current status
  help             show this help
  quit             exit`

type command struct {
	name string
	arg  string
}

func parseCommand(line string) (command, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return command{}, false
	}
	cmd := command{name: strings.ToLower(fields[0])}
	if len(fields) > 1 {
		cmd.arg = strings.Join(fields[1:], " ")
	}
	return cmd, true
}

// runInteractive checks health once, then serves commands and the optional poll ticker.
func (c *Console) runInteractive(ctx context.Context) error {
	c.log.InfoObj("console starting", "console_state", map[string]any{
		"service_base_url":  c.client.BaseURL(),
		"health_poll_every": c.cfg.HealthPollInterval.String(),
		"reporters_count":   c.fanout.Size(),
	})
	defer c.inflight.Wait()

	c.spawn(ctx, func(ctx context.Context) { c.CheckHealth(ctx) })

	done := make(chan struct{})
	defer close(done)
	lines := c.readLines(ctx, done)

	var tick <-chan time.Time
	if c.cfg.HealthPollInterval > 0 {
		ticker := time.NewTicker(c.cfg.HealthPollInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			c.log.InfoObj("console exiting", "reason", ctx.Err().Error())
			return nil
		case <-tick:
			c.spawn(ctx, func(ctx context.Context) { c.CheckHealth(ctx) })
		case line, ok := <-lines:
			if !ok {
				if tick == nil {
					c.log.InfoObj("console input closed", "reason", "eof")
					return nil
				}
				lines = nil
				continue
			}
			if !c.dispatch(ctx, line) {
				return nil
			}
		}
	}
}

// dispatch handles one input line. It returns false when the console should exit.
func (c *Console) dispatch(ctx context.Context, line string) bool {
	cmd, ok := parseCommand(line)
	if !ok {
		return true
	}

	switch cmd.name {
	case "health", "h":
		c.spawn(ctx, func(ctx context.Context) { c.CheckHealth(ctx) })
	case "infer", "i":
		sample := cmd.arg
		if sample == "" {
			sample = c.cfg.Sample
		}
		c.spawn(ctx, func(ctx context.Context) { c.RunInference(ctx, sample) })
	case "history":
		c.spawn(ctx, func(ctx context.Context) { c.ShowHistory(ctx) })
	case "status":
		c.term.Render(c.board.Snapshot())
	case "help", "?":
		c.term.Println(helpText)
	case "quit", "exit", "q":
		return false
	default:
		c.term.Println("unknown command " + cmd.name + " (try help)")
	}
	return true
}

// readLines streams input lines until EOF. The goroutine stops forwarding once
// ctx is cancelled or done is closed; a read already blocked on c.in cannot be
// interrupted and returns with the next line or EOF.
func (c *Console) readLines(ctx context.Context, done <-chan struct{}) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case out <- scanner.Text():
			case <-ctx.Done():
				return
			case <-done:
				return
			}
		}
		if err := scanner.Err(); err != nil {
			c.log.WarnObj("console input read failed", "error", err)
		}
	}()
	return out
}
