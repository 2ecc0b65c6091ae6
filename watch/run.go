package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"clipnote/capture"
	"clipnote/clipboard"
	"clipnote/export"
	"clipnote/history"
	"clipnote/state"
)

// Run polls the clipboard until interrupted, appending every new capture to
// the session.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("watch")

	var hist *history.Store
	if env.Cfg.History.Enable {
		if hist, err = history.Open(env.Cfg.History.Path, env.Log); err != nil {
			return err
		}
		defer func() {
			if er := hist.Close(); er != nil {
				err = multierr.Append(err, fmt.Errorf("unable to close history: %w", er))
			}
		}()
	}

	svc, err := NewService(clipboard.NewBoard(), env.Cfg, hist, env.RunID, cmd.Bool("attach"), env.Log)
	if err != nil {
		return err
	}

	interval := time.Duration(env.Cfg.Capture.PollIntervalMS) * time.Millisecond
	log.Info("Watch starting",
		zap.Duration("interval", interval),
		zap.String("session", env.Cfg.Session.Path),
		zap.Int("entries", svc.Session().Len()))
	defer func(start time.Time) {
		log.Info("Watch stopped", zap.Duration("elapsed", time.Since(start)), zap.Int("entries", svc.Session().Len()))
	}(time.Now())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// interrupt is the normal way to finish watching
			return nil
		case <-ticker.C:
			if _, err := svc.Tick(); err != nil {
				log.Error("Capture attempt failed", zap.Error(err))
			}
		}
	}
}

// Once reads the clipboard a single time and prints the reconciled capture
// without touching the session.
func Once(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("capture")

	c := capture.NewEngine(clipboard.NewBoard(), env.Log).Capture()
	if c == nil {
		log.Info("Clipboard holds nothing usable")
		return nil
	}

	if cmd.Bool("tree") {
		fmt.Print(export.DumpBlocks(export.Blocks(c.Runs)))
		return nil
	}

	if cmd.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Source    string       `json:"source"`
			Signature string       `json:"signature"`
			Text      string       `json:"text"`
			Runs      capture.Runs `json:"runs"`
			Detail    string       `json:"detail,omitempty"`
		}{c.Source.String(), c.Signature, c.Text, c.Runs, c.Detail})
	}

	fmt.Printf("source:    %s\n", c.Source)
	fmt.Printf("signature: %s\n", c.Signature)
	fmt.Printf("bold runs: %d\n", c.Runs.BoldCount())
	if c.Detail != "" {
		fmt.Printf("detail:    %s\n", c.Detail)
	}
	fmt.Printf("\n%s\n", c.Text)
	return nil
}
