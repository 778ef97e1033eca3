package archive

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"golang.org/x/text/encoding/charmap"
)

type zipEntry struct {
	name    string
	content string
	nonUTF8 bool
}

func makeZip(t *testing.T, entries []zipEntry) string {
	t.Helper()
	zipPath := filepath.Join(t.TempDir(), "test.zip")
	f, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("Failed to create zip file: %v", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	for _, e := range entries {
		fw, err := w.CreateHeader(&zip.FileHeader{Name: e.name, Method: zip.Deflate, NonUTF8: e.nonUTF8})
		if err != nil {
			t.Fatalf("Failed to create file %s in zip: %v", e.name, err)
		}
		if _, err := fw.Write([]byte(e.content)); err != nil {
			t.Fatalf("Failed to write content for %s: %v", e.name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close zip: %v", err)
	}
	return zipPath
}

func TestWalk(t *testing.T) {
	zipPath := makeZip(t, []zipEntry{
		{name: "dark/site.user.css", content: "a{}"},
		{name: "dark/", content: ""},
		{name: "dark/other.user.less", content: "b{}"},
		{name: "light/site.user.css", content: "c{}"},
		{name: "readme.txt", content: "readme"},
	})

	tests := []struct {
		prefix string
		want   []string
	}{
		{"", []string{"dark/site.user.css", "dark/other.user.less", "light/site.user.css", "readme.txt"}},
		{"dark/", []string{"dark/site.user.css", "dark/other.user.less"}},
		{"none/", nil},
	}
	for _, tt := range tests {
		t.Run("prefix "+tt.prefix, func(t *testing.T) {
			var visited []string
			err := Walk(zipPath, tt.prefix, nil, func(archive string, e Entry) error {
				if archive != zipPath {
					t.Errorf("archive = %s, want %s", archive, zipPath)
				}
				visited = append(visited, e.Name)
				return nil
			})
			if err != nil {
				t.Fatalf("Walk() error = %v", err)
			}
			if !slices.Equal(visited, tt.want) {
				t.Errorf("visited = %v, want %v", visited, tt.want)
			}
		})
	}

	t.Run("content", func(t *testing.T) {
		err := Walk(zipPath, "light/", nil, func(_ string, e Entry) error {
			data, err := e.ReadAll()
			if err != nil {
				return err
			}
			if string(data) != "c{}" {
				t.Errorf("content = %q", data)
			}
			return nil
		})
		if err != nil {
			t.Errorf("Walk() error = %v", err)
		}
	})

	t.Run("stops on error", func(t *testing.T) {
		stop := errors.New("stop")
		count := 0
		err := Walk(zipPath, "", nil, func(string, Entry) error {
			count++
			return stop
		})
		if !errors.Is(err, stop) || count != 1 {
			t.Errorf("Walk() = %v after %d calls", err, count)
		}
	})
}

func TestWalk_CodePage(t *testing.T) {
	// "стиль" in cp866
	raw, err := charmap.CodePage866.NewEncoder().String("стиль.user.css")
	if err != nil {
		t.Fatal(err)
	}
	zipPath := makeZip(t, []zipEntry{{name: raw, content: "a{}", nonUTF8: true}})

	for _, tt := range []struct {
		name string
		want string
		cp   bool
	}{
		{"decoded", "стиль.user.css", true},
		{"as is", raw, false},
	} {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			cp := charmap.CodePage866
			walkFn := func(_ string, e Entry) error { got = e.Name; return nil }
			if tt.cp {
				err = Walk(zipPath, "", cp, walkFn)
			} else {
				err = Walk(zipPath, "", nil, walkFn)
			}
			if err != nil {
				t.Fatalf("Walk() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("name = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWalk_Unsafe(t *testing.T) {
	for _, name := range []string{"../evil.user.css", "a/../../evil.user.css", "/abs.user.css"} {
		zipPath := makeZip(t, []zipEntry{{name: name, content: "a{}"}})
		err := Walk(zipPath, "", nil, func(string, Entry) error {
			t.Errorf("unsafe entry %q visited", name)
			return nil
		})
		if err == nil {
			t.Errorf("Walk() with %q expected error", name)
		}
	}
}

func TestWalk_NotArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.zip")
	if err := os.WriteFile(path, []byte("not a zip"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := Walk(path, "", nil, func(string, Entry) error { return nil }); err == nil {
		t.Error("Walk() on non archive expected error")
	}
}

func TestIsSafePath(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"style.user.css", true},
		{"dir/style.user.css", true},
		{"dir/..style.user.css", true},
		{"../style.user.css", false},
		{`dir\..\style.user.css`, false},
		{"/etc/passwd", false},
		{`\windows`, false},
		{"C:/style.user.css", false},
	}
	for _, tt := range tests {
		if got := isSafePath(tt.name); got != tt.want {
			t.Errorf("isSafePath(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.zip")
	w, err := Create(path)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	now := time.Now()
	var names []string
	for _, n := range []string{"site.user.css", "site.user.css", "site.user.css", "other.json", "other.json"} {
		name, err := w.Add(n, now, []byte(n))
		if err != nil {
			t.Fatalf("Add(%s) error: %v", n, err)
		}
		names = append(names, name)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	want := []string{"site.user.css", "site-2.user.css", "site-3.user.css", "other.json", "other-2.json"}
	if !slices.Equal(names, want) {
		t.Errorf("names = %v, want %v", names, want)
	}

	var stored []string
	if err := Walk(path, "", nil, func(_ string, e Entry) error {
		stored = append(stored, e.Name)
		return nil
	}); err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	if !slices.Equal(stored, want) {
		t.Errorf("stored = %v, want %v", stored, want)
	}
}
