// Package naming resolves output file paths so that an existing file is
// never overwritten: photo.jpg, photo_1.jpg, photo_2.jpg, ...
package naming

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// candidate returns desired for n == 0, otherwise the n-th suffixed variant.
func candidate(desired string, n int) string {
	if n == 0 {
		return desired
	}
	ext := filepath.Ext(desired)
	stem := strings.TrimSuffix(desired, ext)
	return fmt.Sprintf("%s_%d%s", stem, n, ext)
}

// Resolve returns desired if nothing exists at that path, otherwise the
// lowest-numbered suffixed variant that does not exist. The existence probe
// is not atomic with a later create; callers racing on the same desired
// name should use Reserve instead.
func Resolve(desired string) string {
	for n := 0; ; n++ {
		path := candidate(desired, n)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path
		}
	}
}

// Reserve atomically claims the first free variant of desired by creating
// it with O_EXCL, retrying with the next suffix on a collision. It returns
// the open file and the path that was claimed; the caller owns the file.
func Reserve(desired string) (*os.File, string, error) {
	for n := 0; ; n++ {
		path := candidate(desired, n)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			return f, path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", fmt.Errorf("create %s: %w", path, err)
		}
	}
}
