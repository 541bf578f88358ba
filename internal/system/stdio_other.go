//go:build !unix

package system

import "os"

// RedirectStdIO swaps os.Stdout and os.Stderr for a file. Unlike the Unix
// variant it does not capture runtime-level output such as panics.
func RedirectStdIO(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	os.Stdout = f
	os.Stderr = f
	return nil
}
