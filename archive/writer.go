package archive

import (
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	fixzip "github.com/hidez8891/zip"
	"go.uber.org/multierr"
)

// Writer creates zip archive making sure entry names are unique.
type Writer struct {
	file  *os.File
	zw    *fixzip.Writer
	names map[string]struct{}
}

// Create creates (truncating) archive at path.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &Writer{file: f, zw: fixzip.NewWriter(f), names: make(map[string]struct{})}, nil
}

// Add writes data under name. When name is already taken numeric suffix is
// added before extension, actual entry name is returned.
func (w *Writer) Add(name string, modified time.Time, data []byte) (string, error) {
	name = w.unique(name)
	zf, err := w.zw.CreateHeader(&fixzip.FileHeader{Name: name, Method: fixzip.Deflate, Modified: modified})
	if err != nil {
		return "", fmt.Errorf("unable to create archive entry %q: %w", name, err)
	}
	if _, err := zf.Write(data); err != nil {
		return "", fmt.Errorf("unable to write archive entry %q: %w", name, err)
	}
	return name, nil
}

func (w *Writer) unique(name string) string {
	ext := path.Ext(name)
	// keep compound extensions like .user.css together
	if e := path.Ext(strings.TrimSuffix(name, ext)); e == ".user" {
		ext = e + ext
	}
	base := strings.TrimSuffix(name, ext)
	for i := 2; ; i++ {
		if _, taken := w.names[name]; !taken {
			break
		}
		name = base + "-" + strconv.Itoa(i) + ext
	}
	w.names[name] = struct{}{}
	return name
}

func (w *Writer) Name() string {
	return w.file.Name()
}

func (w *Writer) Close() (err error) {
	err = multierr.Append(err, w.zw.Close())
	err = multierr.Append(err, w.file.Close())
	return err
}
