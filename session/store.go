// Package session persists captured notes between program runs. The store is
// a single JSON file written atomically, with a small set of rotated backups
// and an optional directory of raw payload attachments.
package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
	"github.com/maruel/natural"
	"go.uber.org/zap"

	"clipnote/capture"
	"clipnote/common"
	"clipnote/config"
)

const storeVersion = 1

// Entry is one captured note.
type Entry struct {
	ID         string       `json:"id"`
	RunID      string       `json:"run_id,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	Source     string       `json:"source"`
	Signature  string       `json:"signature"`
	Text       string       `json:"text"`
	Runs       capture.Runs `json:"runs,omitempty"`
	Detail     string       `json:"detail,omitempty"`
	Attachment string       `json:"attachment,omitempty"`
}

type payload struct {
	Version int     `json:"version"`
	Entries []Entry `json:"entries"`
}

// Store owns the session file. Safe for concurrent use.
type Store struct {
	path          string
	attachmentDir string
	backups       int
	maxAttachment int
	log           *zap.Logger

	mu      sync.Mutex
	entries []Entry
}

func NewStore(cfg config.SessionConfig, maxAttachment int, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		path:          cfg.Path,
		attachmentDir: cfg.AttachmentsDir,
		backups:       cfg.Backups.Keep,
		maxAttachment: maxAttachment,
		log:           log.Named("session"),
	}
}

// Load reads the session file. A missing file is an empty session. Entries
// with a signature that does not validate are dropped, not fatal - a damaged
// session should not stop new captures.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.entries = nil
		return nil
	}
	if err != nil {
		return fmt.Errorf("unable to read session file: %w", err)
	}

	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("unable to parse session file '%s': %w", s.path, err)
	}

	s.entries = s.entries[:0]
	for _, e := range p.Entries {
		if _, err := common.NormalizeSignature(e.Signature); err != nil || e.Signature == "" {
			s.log.Warn("Dropping damaged session entry", zap.String("id", e.ID), zap.Error(err))
			continue
		}
		s.entries = append(s.entries, e)
	}
	return nil
}

// Append records a capture as a new entry and returns it.
func (s *Store) Append(c *capture.Capture, runID string) Entry {
	e := Entry{
		ID:        newEntryID(),
		RunID:     runID,
		CreatedAt: time.Now().UTC(),
		Source:    c.Source.String(),
		Signature: c.Signature,
		Text:      c.Text,
		Runs:      c.Runs,
		Detail:    c.Detail,
	}

	s.mu.Lock()
	s.entries = append(s.entries, e)
	s.mu.Unlock()
	return e
}

// Entries returns a copy of the current entry list, oldest first.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// LastSignature returns the signature of the newest entry, "" for an empty
// session. The watch loop uses it to skip unchanged clipboard content.
func (s *Store) LastSignature() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) == 0 {
		return ""
	}
	return s.entries[len(s.entries)-1].Signature
}

// Save writes the session file atomically: the content goes to a temporary
// file in the same directory which then replaces the target, after the
// previous session file is rotated into the backup chain.
func (s *Store) Save() error {
	s.mu.Lock()
	data, err := json.MarshalIndent(payload{Version: storeVersion, Entries: s.entries}, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("unable to serialize session: %w", err)
	}

	// unchanged content should not burn a backup slot
	if current, err := os.ReadFile(s.path); err == nil && bytes.Equal(current, data) {
		return nil
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("unable to create temporary session file: %w", err)
	}
	name := tmp.Name()
	if _, err = tmp.Write(data); err == nil {
		err = tmp.Sync()
	}
	if er := tmp.Close(); err == nil {
		err = er
	}
	if err != nil {
		os.Remove(name)
		return fmt.Errorf("unable to write session file: %w", err)
	}

	s.rotate()
	if err := os.Rename(name, s.path); err != nil {
		os.Remove(name)
		return fmt.Errorf("unable to replace session file: %w", err)
	}
	return nil
}

// rotate shifts existing backups up one slot and moves the current session
// file into slot 1. Leftovers beyond the configured count (from runs with a
// larger setting) are removed, oldest first.
func (s *Store) rotate() {
	if s.backups <= 0 {
		return
	}
	for i := s.backups - 1; i >= 1; i-- {
		_ = os.Rename(s.backupName(i), s.backupName(i+1))
	}
	_ = os.Rename(s.path, s.backupName(1))

	matches, err := filepath.Glob(s.path + ".*")
	if err != nil {
		return
	}
	sort.Sort(natural.StringSlice(matches))
	for _, m := range matches {
		n, err := strconv.Atoi(strings.TrimPrefix(m, s.path+"."))
		if err != nil {
			continue
		}
		if n > s.backups {
			if er := os.Remove(m); er == nil {
				s.log.Debug("Removed stale session backup", zap.String("file", m))
			}
		}
	}
}

func (s *Store) backupName(n int) string {
	return fmt.Sprintf("%s.%d", s.path, n)
}

// newEntryID prefers time ordered identifiers so attachment files list in
// capture order.
func newEntryID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

// SaveAttachment stores a raw clipboard payload next to the session and
// returns the path relative to the attachment directory. The file extension
// comes from content sniffing, not from the clipboard format name.
func (s *Store) SaveAttachment(entryID string, data []byte) (string, error) {
	if s.attachmentDir == "" {
		return "", errors.New("attachment directory is not configured")
	}
	if s.maxAttachment > 0 && len(data) > s.maxAttachment {
		return "", fmt.Errorf("payload of %d bytes exceeds the %d byte limit", len(data), s.maxAttachment)
	}
	if err := os.MkdirAll(s.attachmentDir, 0700); err != nil {
		return "", fmt.Errorf("unable to create attachment directory: %w", err)
	}

	ext := ".bin"
	if t, err := filetype.Match(data); err == nil && t.Extension != "" && t.Extension != "unknown" {
		ext = "." + t.Extension
	}

	name := entryID + ext
	if err := os.WriteFile(filepath.Join(s.attachmentDir, name), data, 0600); err != nil {
		return "", fmt.Errorf("unable to write attachment: %w", err)
	}

	s.mu.Lock()
	for i := range s.entries {
		if s.entries[i].ID == entryID {
			s.entries[i].Attachment = name
			break
		}
	}
	s.mu.Unlock()
	return name, nil
}
