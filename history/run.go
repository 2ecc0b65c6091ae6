package history

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"clipnote/session"
	"clipnote/state"
)

const listTextLen = 60

// Run lists recorded captures, newest first.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("history")

	if !env.Cfg.History.Enable {
		return errors.New("history is disabled in configuration")
	}

	store, err := Open(env.Cfg.History.Path, env.Log)
	if err != nil {
		return err
	}
	defer func() {
		if er := store.Close(); er != nil {
			err = multierr.Append(err, fmt.Errorf("unable to close history: %w", er))
		}
	}()

	var entries []session.Entry
	if sig := cmd.String("signature"); sig != "" {
		entries, err = store.FindBySignature(sig)
	} else {
		entries, err = store.Recent(int(cmd.Int("limit")))
	}
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		log.Info("History is empty", zap.String("database", env.Cfg.History.Path))
		return nil
	}
	for _, e := range entries {
		fmt.Fprintln(os.Stdout, formatEntry(e))
	}
	return nil
}

func formatEntry(e session.Entry) string {
	text := strings.Join(strings.Fields(e.Text), " ")
	if runes := []rune(text); len(runes) > listTextLen {
		text = string(runes[:listTextLen]) + "…"
	}
	return fmt.Sprintf("%s  %-4s  %s  %s", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Source, e.Signature, text)
}
