// Package sequence discovers frame files in a directory and orders them.
package sequence

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"objseq2cache/internal/failure"
)

// DefaultExtension is the frame-file extension used when none is configured.
const DefaultExtension = ".obj"

// trailingDigits matches the digit run just before the extension.
var trailingDigits = regexp.MustCompile(`^.*?(\d+)\.[^.]*$`)

// Descriptor identifies one frame file.
type Descriptor struct {
	Path      string
	Name      string // base filename
	Number    int    // valid only when HasNumber
	HasNumber bool
}

// Discover lists regular files directly inside dir whose extension matches
// ext (case-insensitive) and returns them in frame order.
// An empty result is not an error.
func Discover(dir, ext string) ([]Descriptor, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("sequence: stat %s: %w: %w", dir, failure.ErrFileAccess, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("sequence: %s: %w: not a directory", dir, failure.ErrFileAccess)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("sequence: read %s: %w: %w", dir, failure.ErrFileAccess, err)
	}

	ext = normalizeExt(ext)
	var frames []Descriptor
	for _, e := range entries {
		name := e.Name()
		if !isRegular(dir, e) {
			continue
		}
		if strings.ToLower(filepath.Ext(name)) != ext {
			continue
		}
		d := Descriptor{
			Path: filepath.Join(dir, name),
			Name: name,
		}
		d.Number, d.HasNumber = FrameNumber(name)
		frames = append(frames, d)
	}

	Sort(frames)
	return frames, nil
}

// FrameNumber extracts the integer immediately preceding the extension,
// e.g. 12 from "mesh_0012.obj". Digit runs that overflow int report false.
func FrameNumber(name string) (int, bool) {
	m := trailingDigits.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Less orders two descriptors. Frame numbers are compared only when both
// files have one; every other pairing falls back to filename order. This
// means a numbered and an unnumbered file are never compared numerically.
func Less(a, b Descriptor) bool {
	if a.HasNumber && b.HasNumber {
		return a.Number < b.Number
	}
	return a.Name < b.Name
}

// Sort orders frames in place with Less. Ties keep their input order.
func Sort(frames []Descriptor) {
	sort.SliceStable(frames, func(i, j int) bool {
		return Less(frames[i], frames[j])
	})
}

// isRegular reports whether e is a regular file, following symlinks.
func isRegular(dir string, e os.DirEntry) bool {
	if e.Type().IsRegular() {
		return true
	}
	if e.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, e.Name()))
	return err == nil && info.Mode().IsRegular()
}

func normalizeExt(ext string) string {
	if ext == "" {
		ext = DefaultExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strings.ToLower(ext)
}
