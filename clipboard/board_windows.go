//go:build windows

package clipboard

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procOpenClipboard              = user32.NewProc("OpenClipboard")
	procCloseClipboard             = user32.NewProc("CloseClipboard")
	procRegisterClipboardFormatW   = user32.NewProc("RegisterClipboardFormatW")
	procIsClipboardFormatAvailable = user32.NewProc("IsClipboardFormatAvailable")
	procEnumClipboardFormats       = user32.NewProc("EnumClipboardFormats")
	procGetClipboardFormatNameW    = user32.NewProc("GetClipboardFormatNameW")
	procGetClipboardData           = user32.NewProc("GetClipboardData")
	procGlobalSize                 = kernel32.NewProc("GlobalSize")
	procGlobalLock                 = kernel32.NewProc("GlobalLock")
	procGlobalUnlock               = kernel32.NewProc("GlobalUnlock")
)

// winBoard talks to the native clipboard. All calls between Open and Close
// must stay on the same goroutine - the clipboard is owned by the opening
// thread.
type winBoard struct{}

// NewBoard returns the native clipboard backend.
func NewBoard() Board {
	return winBoard{}
}

func (winBoard) Open() error {
	if r, _, err := procOpenClipboard.Call(0); r == 0 {
		return fmt.Errorf("clipboard: OpenClipboard: %w", err)
	}
	return nil
}

func (winBoard) Close() {
	_, _, _ = procCloseClipboard.Call()
}

func (winBoard) RegisterFormat(name string) (uint32, bool) {
	p, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return 0, false
	}
	id, _, _ := procRegisterClipboardFormatW.Call(uintptr(unsafe.Pointer(p)))
	return uint32(id), id != 0
}

func (winBoard) IsFormatAvailable(id uint32) bool {
	r, _, _ := procIsClipboardFormatAvailable.Call(uintptr(id))
	return r != 0
}

func (winBoard) EnumFormats() []uint32 {
	var ids []uint32
	var current uintptr
	for {
		current, _, _ = procEnumClipboardFormats.Call(current)
		if current == 0 {
			return ids
		}
		ids = append(ids, uint32(current))
	}
}

func (winBoard) FormatName(id uint32) string {
	var buf [256]uint16
	n, _, _ := procGetClipboardFormatNameW.Call(uintptr(id), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if n == 0 {
		return ""
	}
	return windows.UTF16ToString(buf[:n])
}

func (winBoard) Data(id uint32) ([]byte, bool) {
	h, _, _ := procGetClipboardData.Call(uintptr(id))
	if h == 0 {
		return nil, false
	}

	size, _, _ := procGlobalSize.Call(h)
	if size == 0 {
		return nil, false
	}

	ptr, _, _ := procGlobalLock.Call(h)
	if ptr == 0 {
		return nil, false
	}
	defer procGlobalUnlock.Call(h) //nolint:errcheck

	data := make([]byte, size)
	copy(data, unsafe.Slice((*byte)(unsafe.Pointer(ptr)), size))
	return data, true
}
