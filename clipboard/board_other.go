//go:build !windows

package clipboard

// NewBoard returns a backend that reports the clipboard as unsupported. The
// Reader degrades every read to absence on such a board.
func NewBoard() Board {
	return unsupportedBoard{}
}

type unsupportedBoard struct{}

func (unsupportedBoard) Open() error                          { return ErrUnsupported }
func (unsupportedBoard) Close()                               {}
func (unsupportedBoard) RegisterFormat(string) (uint32, bool) { return 0, false }
func (unsupportedBoard) IsFormatAvailable(uint32) bool        { return false }
func (unsupportedBoard) EnumFormats() []uint32                { return nil }
func (unsupportedBoard) FormatName(uint32) string             { return "" }
func (unsupportedBoard) Data(uint32) ([]byte, bool)           { return nil, false }
