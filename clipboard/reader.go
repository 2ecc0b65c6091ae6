package clipboard

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Board is the OS boundary. Exactly one Open/Close pair may be in flight at
// a time from this process - the clipboard is a globally exclusive resource.
// All other calls are valid only between Open and Close.
type Board interface {
	// Open acquires exclusive clipboard access. May fail transiently when
	// another process holds the clipboard.
	Open() error
	Close()

	// RegisterFormat resolves a format name to an identifier, registering
	// the name if needed. Returns false when registration is unavailable.
	RegisterFormat(name string) (uint32, bool)
	IsFormatAvailable(id uint32) bool
	// EnumFormats lists identifiers currently on the clipboard.
	EnumFormats() []uint32
	// FormatName returns the registered name of an identifier, "" for
	// predefined or unnamed formats.
	FormatName(id uint32) string
	// Data returns a copy of the payload bytes for an identifier.
	Data(id uint32) ([]byte, bool)
}

// ErrUnsupported is returned by Board implementations on platforms without
// a native clipboard backend.
var ErrUnsupported = errors.New("clipboard: not supported on this platform")

// ErrBusy indicates transient contention - another process holds the
// clipboard open.
var ErrBusy = errors.New("clipboard: busy")

const (
	openRetries = 5
	openDelay   = 30 * time.Millisecond
)

// Reader reads raw format payloads with scoped clipboard acquisition and a
// bounded open retry. It returns absence, not errors: every failure path
// degrades to "no payload" and the next poll tick simply tries again.
type Reader struct {
	board Board
	log   *zap.Logger
}

func NewReader(board Board, log *zap.Logger) *Reader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reader{board: board, log: log.Named("clipboard")}
}

// withOpen runs fn under clipboard ownership, retrying acquisition a bounded
// number of times and releasing the clipboard on every exit path including
// panics inside fn.
func (r *Reader) withOpen(fn func()) bool {
	var err error
	for attempt := 0; attempt < openRetries; attempt++ {
		if err = r.board.Open(); err == nil {
			defer r.board.Close()
			fn()
			return true
		}
		if errors.Is(err, ErrUnsupported) {
			return false
		}
		if attempt < openRetries-1 {
			time.Sleep(openDelay)
		}
	}
	r.log.Debug("Clipboard busy, giving up until next poll", zap.Error(err))
	return false
}

// ReadFormat returns the payload of the first available format among names.
// When none is present and keyword is not empty, the first enumerated format
// whose name contains the keyword (case-insensitively) is used instead. A
// nil result means the requested representation is absent.
func (r *Reader) ReadFormat(names []string, keyword string) []byte {
	var ids []uint32
	for _, name := range names {
		if id, ok := r.board.RegisterFormat(name); ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 && keyword == "" {
		return nil
	}

	var data []byte
	r.withOpen(func() {
		var selected uint32
		for _, id := range ids {
			if r.board.IsFormatAvailable(id) {
				selected = id
				break
			}
		}

		if selected == 0 && keyword != "" {
			lowered := strings.ToLower(keyword)
			for _, id := range r.board.EnumFormats() {
				if strings.Contains(strings.ToLower(r.DisplayName(id)), lowered) {
					selected = id
					break
				}
			}
		}
		if selected == 0 {
			return
		}

		payload, ok := r.board.Data(selected)
		if !ok || len(payload) == 0 {
			return
		}
		data = payload
	})
	return data
}

// ReadFirst returns the payload of the first available identifier among
// ids. Used for predefined formats which need no name registration.
func (r *Reader) ReadFirst(ids []uint32) []byte {
	var data []byte
	r.withOpen(func() {
		for _, id := range ids {
			if !r.board.IsFormatAvailable(id) {
				continue
			}
			if payload, ok := r.board.Data(id); ok && len(payload) > 0 {
				data = payload
				return
			}
		}
	})
	return data
}

// AvailableFormatNames enumerates display names of everything currently on
// the clipboard.
func (r *Reader) AvailableFormatNames() []string {
	var names []string
	r.withOpen(func() {
		for _, id := range r.board.EnumFormats() {
			names = append(names, r.DisplayName(id))
		}
	})
	return names
}

// DisplayName resolves an identifier to something readable: the predefined
// name, the registered name, or a numeric placeholder.
func (r *Reader) DisplayName(id uint32) string {
	if name := StandardFormatName(id); name != "" {
		return name
	}
	if name := r.board.FormatName(id); name != "" {
		return name
	}
	return fmt.Sprintf("FORMAT_%d", id)
}
