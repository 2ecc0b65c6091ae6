// Package watch drives repeated capture attempts: it polls the clipboard,
// appends accepted captures to the session and mirrors them into history.
package watch

import (
	"fmt"

	"go.uber.org/zap"

	"clipnote/capture"
	"clipnote/clipboard"
	"clipnote/config"
	"clipnote/history"
	"clipnote/session"
)

// Service ties the capture engine to the session and history stores. It is
// driven by Tick, one call per poll interval, and is not safe for concurrent
// ticks.
type Service struct {
	engine *capture.Engine
	reader *clipboard.Reader
	store  *session.Store
	hist   *history.Store
	log    *zap.Logger

	runID          string
	keepDuplicates bool
	attach         bool
	maxHistory     int

	lastSig string
}

// NewService loads the session and prepares the capture engine. hist may be
// nil when history is disabled.
func NewService(board clipboard.Board, cfg *config.Config, hist *history.Store, runID string, attach bool, log *zap.Logger) (*Service, error) {
	if log == nil {
		log = zap.NewNop()
	}

	store := session.NewStore(cfg.Session, cfg.Capture.MaxPayloadBytes, log)
	if err := store.Load(); err != nil {
		return nil, fmt.Errorf("unable to load session: %w", err)
	}

	return &Service{
		engine:         capture.NewEngine(board, log),
		reader:         clipboard.NewReader(board, log),
		store:          store,
		hist:           hist,
		log:            log.Named("watch"),
		runID:          runID,
		keepDuplicates: cfg.Capture.KeepDuplicates,
		attach:         attach && cfg.Session.AttachmentsDir != "",
		maxHistory:     cfg.History.MaxEntries,
		lastSig:        store.LastSignature(),
	}, nil
}

// Session exposes the loaded session store.
func (s *Service) Session() *session.Store {
	return s.store
}

// Tick runs one capture attempt. It returns the appended entry, or nil when
// the clipboard held nothing usable or nothing new.
func (s *Service) Tick() (*session.Entry, error) {
	c := s.engine.Capture()
	if c == nil {
		return nil, nil
	}
	if c.Signature == s.lastSig && !s.keepDuplicates {
		s.log.Debug("Clipboard unchanged", zap.String("signature", c.Signature))
		return nil, nil
	}

	e := s.store.Append(c, s.runID)
	if s.attach {
		e.Attachment = s.saveRawPayload(e.ID, c.Source)
	}
	if err := s.store.Save(); err != nil {
		return nil, fmt.Errorf("unable to save session: %w", err)
	}
	s.lastSig = c.Signature

	if s.hist != nil {
		if err := s.hist.Record(e); err != nil {
			s.log.Warn("Unable to record capture in history", zap.Error(err))
		} else if err := s.hist.Prune(s.maxHistory); err != nil {
			s.log.Warn("Unable to prune history", zap.Error(err))
		}
	}

	s.log.Info("Capture recorded",
		zap.Stringer("source", c.Source),
		zap.Int("bold_runs", c.Runs.BoldCount()),
		zap.Int("length", len(c.Text)),
		zap.String("detail", c.Detail))
	return &e, nil
}

// saveRawPayload stores the raw clipboard payload the capture came from next
// to the session. Failure only loses the attachment, never the capture.
func (s *Service) saveRawPayload(entryID string, source capture.Source) string {
	var raw []byte
	switch source {
	case capture.SourceHTML:
		raw = s.reader.ReadFormat(clipboard.HTMLFormatNames, "html")
	case capture.SourceRTF:
		raw = s.reader.ReadFormat(clipboard.RTFFormatNames, "rtf")
	default:
		return ""
	}
	if len(raw) == 0 {
		return ""
	}

	name, err := s.store.SaveAttachment(entryID, raw)
	if err != nil {
		s.log.Warn("Unable to save attachment", zap.String("id", entryID), zap.Error(err))
		return ""
	}
	s.log.Debug("Attachment saved", zap.String("file", name))
	return name
}
