package clipboard

import (
	"strings"
	"sync"
)

// MemBoard is an in-memory Board used by tests and by the capture engine
// when fed with recorded payloads. Format identifiers for registered names
// start above the predefined range.
type MemBoard struct {
	mu       sync.Mutex
	open     bool
	nextID   uint32
	names    map[string]uint32
	revNames map[uint32]string
	payloads map[uint32][]byte
	order    []uint32

	// FailOpens makes that many Open calls fail first, to exercise the
	// bounded retry.
	FailOpens int
}

func NewMemBoard() *MemBoard {
	return &MemBoard{
		nextID:   0xC000,
		names:    make(map[string]uint32),
		revNames: make(map[uint32]string),
		payloads: make(map[uint32][]byte),
	}
}

// Put stores a payload under a format name, registering the name if needed.
func (b *MemBoard) Put(name string, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.put(b.register(name), data)
}

// PutID stores a payload under a predefined format identifier.
func (b *MemBoard) PutID(id uint32, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.put(id, data)
}

func (b *MemBoard) put(id uint32, data []byte) {
	if _, exists := b.payloads[id]; !exists {
		b.order = append(b.order, id)
	}
	b.payloads[id] = data
}

// Clear removes all payloads.
func (b *MemBoard) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.payloads = make(map[uint32][]byte)
	b.order = nil
}

func (b *MemBoard) register(name string) uint32 {
	key := strings.ToLower(name)
	if id, ok := b.names[key]; ok {
		return id
	}
	id := b.nextID
	b.nextID++
	b.names[key] = id
	b.revNames[id] = name
	return id
}

func (b *MemBoard) Open() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailOpens > 0 {
		b.FailOpens--
		return ErrBusy
	}
	b.open = true
	return nil
}

func (b *MemBoard) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.open = false
}

func (b *MemBoard) RegisterFormat(name string) (uint32, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.register(name), true
}

func (b *MemBoard) IsFormatAvailable(id uint32) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.payloads[id]
	return ok
}

func (b *MemBoard) EnumFormats() []uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]uint32, len(b.order))
	copy(out, b.order)
	return out
}

func (b *MemBoard) FormatName(id uint32) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.revNames[id]
}

func (b *MemBoard) Data(id uint32) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.payloads[id]
	if !ok {
		return nil, false
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, true
}
