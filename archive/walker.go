// Package archive reads style sources from zip archives and writes style
// exports.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"strings"

	"golang.org/x/text/encoding"
)

// Entry is a regular file in archive.
type Entry struct {
	// Name is entry path with file name decoded using requested code page
	// when archive does not mark it as UTF-8.
	Name string
	File *zip.File
}

func (e Entry) Open() (io.ReadCloser, error) {
	return e.File.Open()
}

// ReadAll returns complete entry content.
func (e Entry) ReadAll() ([]byte, error) {
	r, err := e.File.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// WalkFunc is called for each regular file in archive visited by Walk. If an
// error is returned, processing stops.
type WalkFunc func(archive string, entry Entry) error

// Walk walks all regular files in the archive with names starting with
// prefix. Names not marked as UTF-8 are decoded with cp when it is not nil,
// undecodable names are passed as is. Archive with absolute entry paths or
// path traversal components is rejected.
func Walk(archive, prefix string, cp encoding.Encoding, walkFn WalkFunc) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		name := f.FileHeader.Name
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if f.FileInfo().IsDir() || !strings.HasPrefix(name, prefix) {
			continue
		}
		if cp != nil && f.FileHeader.NonUTF8 {
			if decoded, err := cp.NewDecoder().String(name); err == nil {
				name = decoded
			}
		}
		if err := walkFn(archive, Entry{Name: name, File: f}); err != nil {
			return err
		}
	}
	return nil
}

// isSafePath returns false for absolute paths and those with ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, `\`) || (len(name) > 1 && name[1] == ':') {
		return false
	}
	for _, part := range strings.FieldsFunc(name, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return false
		}
	}
	return true
}
