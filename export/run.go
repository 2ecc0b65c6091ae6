package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"clipnote/common"
	"clipnote/session"
	"clipnote/state"
)

const titleMaxLen = 60

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("export")

	dst := cmd.Args().Get(0)
	if len(dst) == 0 {
		dst = env.Cfg.Export.Directory
	}
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 1 {
		log.Warn("Mailformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	format, err := common.ParseExportFmt(cmd.String("to"))
	if err != nil {
		log.Warn("Unknown export format requested, switching to html", zap.Error(err))
		format = common.ExportFmtHTML
	}

	env.Overwrite = cmd.Bool("overwrite")

	store := session.NewStore(env.Cfg.Session, env.Cfg.Capture.MaxPayloadBytes, env.Log)
	if err := store.Load(); err != nil {
		return fmt.Errorf("unable to load session: %w", err)
	}
	entries := store.Entries()
	if len(entries) == 0 {
		log.Info("Nothing to export, session is empty", zap.String("session", env.Cfg.Session.Path))
		return nil
	}

	log.Info("Export starting",
		zap.String("destination", dst), zap.Stringer("format", format), zap.Int("entries", len(entries)))
	defer func(start time.Time) {
		log.Info("Export completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	if err := os.MkdirAll(dst, 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	if format == common.ExportFmtBundle {
		return exportBundle(env, entries, dst, log)
	}
	return exportFiles(ctx, env, entries, dst, format, log)
}

// exportFiles writes one document per session entry.
func exportFiles(ctx context.Context, env *state.LocalEnv, entries []session.Entry, dst string, format common.ExportFmt, log *zap.Logger) error {
	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		name, err := FileName(env.Cfg.Export, e, i+1, format.Ext())
		if err != nil {
			return err
		}
		outputName := filepath.Join(dst, name)
		if err := prepareOutput(env, outputName, log); err != nil {
			return err
		}

		f, err := os.Create(outputName)
		if err != nil {
			return fmt.Errorf("unable to create output file: %w", err)
		}
		blocks := Blocks(e.Runs)
		if format == common.ExportFmtMarkdown {
			err = WriteMarkdown(f, noteTitle(e), blocks)
		} else {
			err = WriteHTML(f, noteTitle(e), blocks)
		}
		if er := f.Close(); err == nil {
			err = er
		}
		if err != nil {
			return fmt.Errorf("unable to render note '%s': %w", outputName, err)
		}
		log.Debug("Note exported", zap.String("file", outputName), zap.String("id", e.ID))
	}
	return nil
}

func exportBundle(env *state.LocalEnv, entries []session.Entry, dst string, log *zap.Logger) error {
	outputName := filepath.Join(dst, "notes"+common.ExportFmtBundle.Ext())
	if err := prepareOutput(env, outputName, log); err != nil {
		return err
	}
	if err := WriteBundle(env.Cfg.Export, entries, env.Cfg.Session.AttachmentsDir, outputName, log); err != nil {
		return err
	}

	// Store export result for debugging
	if env.Rpt != nil {
		env.Rpt.Store("result"+filepath.Ext(outputName), outputName)
	}
	return nil
}

// prepareOutput enforces the overwrite flag for a target path.
func prepareOutput(env *state.LocalEnv, outputName string, log *zap.Logger) error {
	_, err := os.Stat(outputName)
	if err == nil {
		if !env.Overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputName))
		return os.Remove(outputName)
	}
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// noteTitle derives a document title from the first line of the note text.
func noteTitle(e session.Entry) string {
	line := strings.TrimSpace(e.Text)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	if line == "" {
		return "Note " + e.CreatedAt.Format(stampLayout)
	}
	if runes := []rune(line); len(runes) > titleMaxLen {
		cut := string(runes[:titleMaxLen])
		if i := strings.LastIndexByte(cut, ' '); i > 0 {
			cut = cut[:i]
		}
		line = cut + "…"
	}
	return line
}
