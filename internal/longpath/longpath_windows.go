//go:build windows

package longpath

// Apply marks path for extended-length Windows filesystem APIs when it
// exceeds the legacy limit.
func Apply(path string) string {
	return transform(path)
}
