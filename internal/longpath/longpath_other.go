//go:build !windows

package longpath

// Apply is a no-op on platforms without short path limits.
func Apply(path string) string {
	return path
}
