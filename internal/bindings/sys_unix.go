//go:build !windows

package bindings

import (
	"encoding/binary"

	"github.com/ebitengine/purego"
)

const defaultLibraryName = "libamdadlx64.so"

func openLibrary(path string) (uintptr, error) {
	return purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
}

func closeLibrary(handle uintptr) error {
	return purego.Dlclose(handle)
}

func resolveSymbol(handle uintptr, name string) (uintptr, error) {
	return purego.Dlsym(handle, name)
}

// encodeWide produces the NUL-terminated wchar_t encoding of s. On this
// platform wchar_t is 4 bytes (UTF-32, host endian; little endian on every
// architecture the native library ships for).
func encodeWide(s string) []byte {
	runes := []rune(s)
	buf := make([]byte, 4*(len(runes)+1))
	for i, r := range runes {
		binary.LittleEndian.PutUint32(buf[4*i:], uint32(r))
	}
	return buf
}
