// Package longpath marks absolute paths for Windows extended-length
// filesystem APIs. It is a pure string transform; plugins apply it to every
// destination path they hand to the OS.
package longpath

import "strings"

// Prefix is the extended-length path marker understood by the Unicode
// Windows filesystem APIs.
const Prefix = `\\?\`

// threshold is the smallest Windows API path limit (CreateDirectoryW). It
// is neither NAME_MAX nor PATH_MAX.
const threshold = 248

// transform prepends Prefix iff path is at least threshold bytes long,
// absolute, and not already marked. The transform is idempotent and changes
// nothing else about the path.
func transform(path string) string {
	if len(path) < threshold || strings.HasPrefix(path, Prefix) || !isAbs(path) {
		return path
	}
	return Prefix + path
}

// isAbs reports whether path is absolute in Windows terms: a UNC path or a
// drive letter followed by a separator. The marker is meaningless on
// relative paths.
func isAbs(path string) bool {
	if strings.HasPrefix(path, `\\`) {
		return true
	}
	if len(path) < 3 || path[1] != ':' {
		return false
	}
	if path[2] != '\\' && path[2] != '/' {
		return false
	}
	c := path[0]
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
