//go:build windows

package bindings

import (
	"encoding/binary"
	"unicode/utf16"

	"golang.org/x/sys/windows"
)

const defaultLibraryName = "amdadlx64.dll"

func openLibrary(path string) (uintptr, error) {
	h, err := windows.LoadLibrary(path)
	return uintptr(h), err
}

func closeLibrary(handle uintptr) error {
	return windows.FreeLibrary(windows.Handle(handle))
}

func resolveSymbol(handle uintptr, name string) (uintptr, error) {
	return windows.GetProcAddress(windows.Handle(handle), name)
}

// encodeWide produces the NUL-terminated wchar_t encoding of s. On Windows
// wchar_t is 2 bytes (UTF-16, little endian).
func encodeWide(s string) []byte {
	units := utf16.Encode([]rune(s))
	buf := make([]byte, 2*(len(units)+1))
	for i, u := range units {
		binary.LittleEndian.PutUint16(buf[2*i:], u)
	}
	return buf
}
