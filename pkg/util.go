package pkg

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"unsafe"
)

// BytesToString converts bytes slice to a string without extra allocation
func BytesToString(buf []byte) string {
	return *(*string)(unsafe.Pointer(&buf))
}

// PathExists returns whether the given file or directory exists
func PathExists(path string, isDir bool) (bool, error) {
	stat, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if isDir && stat.IsDir() || !isDir && !stat.IsDir() {
		return true, nil
	}
	if isDir {
		return false, fmt.Errorf("%s is not a directory", path)
	}
	return false, fmt.Errorf("%s is a directory", path)
}

// IntQueryParam reads an integer query parameter, falling back to def when absent.
// Values outside [min, max] are rejected.
func IntQueryParam(r *http.Request, name string, def, min, max int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s param [%s]: %w", name, raw, err)
	}
	if v < min || v > max {
		return 0, fmt.Errorf("%s param out of range [%d, %d]: %d", name, min, max, v)
	}
	return v, nil
}
