package notebook

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
)

// RowURL returns the reference URL for a data row of a CSV file.
// Rows are numbered from 1, excluding the header.
func RowURL(path string, row int) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path), Fragment: "row=" + strconv.Itoa(row)}
	return u.String()
}

// ResolveRowURL converts a row reference back to a local path and row number.
// Handles file:// URIs and bare paths with a #row= fragment.
func ResolveRowURL(ref string) (string, int, error) {
	path, fragment, ok := strings.Cut(ref, "#")
	if !ok {
		return "", 0, fmt.Errorf("%s: missing row fragment", ref)
	}
	if strings.HasPrefix(path, "file://") {
		u, err := url.Parse(path)
		if err != nil {
			return "", 0, fmt.Errorf("%s: %w", ref, err)
		}
		path = filepath.FromSlash(u.Path)
	}

	value, ok := strings.CutPrefix(fragment, "row=")
	if !ok {
		return "", 0, fmt.Errorf("%s: unexpected fragment %q", ref, fragment)
	}
	row, err := strconv.Atoi(value)
	if err != nil || row < 1 {
		return "", 0, fmt.Errorf("%s: invalid row %q", ref, value)
	}
	return path, row, nil
}
