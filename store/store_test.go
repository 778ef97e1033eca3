package store

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

const source = `/* ==UserStyle==
@name        Example
@namespace   example.com
@version     1.0.0
@var color accent "Accent" #ff0000
@var select size "Size" {
  "Small": "10px",
  "Large": "20px"
}
==/UserStyle== */
body{color:var(--accent)}
`

func openStore(t *testing.T) *Store {
	t.Helper()
	log := zaptest.NewLogger(t)
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "styles.db"), nil, log)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close() error: %v", err)
		}
	})
	return s
}

func TestInstall(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	style, res, err := s.Install(ctx, source)
	if err != nil {
		t.Fatalf("Install() error: %v", err)
	}
	if len(res.Sections) != 1 || len(style.ID) == 0 || !style.Enabled {
		t.Fatalf("Install() = %+v, %+v", style, res)
	}
	if !style.InstallDate.Equal(now) || !style.UpdateDate.Equal(now) {
		t.Errorf("dates = %v, %v", style.InstallDate, style.UpdateDate)
	}

	got, err := s.Get(ctx, style.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Name != "Example" || got.Meta.Namespace != "example.com" || got.Digest != style.Digest {
		t.Errorf("Get() = %+v", got)
	}
	if va, ok := got.Meta.Vars.Get("accent"); !ok || va.Default != "#f00" {
		t.Errorf("accent = %+v", va)
	}

	found, err := s.Find(ctx, "Example", "example.com")
	if err != nil || found.ID != style.ID {
		t.Errorf("Find() = %+v, %v", found, err)
	}
	if _, err := s.Find(ctx, "Example", "other.org"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Find() in other namespace error = %v", err)
	}
}

func TestInstall_Update(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	first, _, err := s.Install(ctx, source)
	if err != nil {
		t.Fatalf("Install() error: %v", err)
	}
	if _, err := s.SetVar(ctx, first.ID, "accent", "#00ff00"); err != nil {
		t.Fatalf("SetVar() error: %v", err)
	}
	if _, err := s.SetVar(ctx, first.ID, "size", "Large"); err != nil {
		t.Fatalf("SetVar() error: %v", err)
	}

	later := time.Now().Add(time.Hour)
	s.now = func() time.Time { return later }
	// "Large" option is gone in the new version
	updated := strings.Replace(source, `"Large": "20px"`, `"Huge": "30px"`, 1)
	second, _, err := s.Install(ctx, updated)
	if err != nil {
		t.Fatalf("Install() error: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("reinstall changed id %s -> %s", first.ID, second.ID)
	}
	if !second.InstallDate.Equal(first.InstallDate) || !second.UpdateDate.Equal(later) {
		t.Errorf("dates = %v, %v", second.InstallDate, second.UpdateDate)
	}
	if va, _ := second.Meta.Vars.Get("accent"); va.Value == nil || *va.Value != "#00ff00" {
		t.Errorf("accent = %+v, want value carried over", va)
	}
	if va, _ := second.Meta.Vars.Get("size"); va.Value != nil {
		t.Errorf("size = %q, want invalid value dropped", *va.Value)
	}

	all, err := s.List(ctx)
	if err != nil || len(all) != 1 {
		t.Errorf("List() = %d styles, %v", len(all), err)
	}
}

func TestSetVar(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	style, _, err := s.Install(ctx, source)
	if err != nil {
		t.Fatalf("Install() error: %v", err)
	}

	tests := []struct {
		name, variable, value string
		wantErr               bool
	}{
		{"color", "accent", "blue", false},
		{"option", "size", "Small", false},
		{"bad color", "accent", "not-a-color", true},
		{"bad option", "size", "Medium", true},
		{"unknown", "missing", "1", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.SetVar(ctx, style.ID, tt.variable, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SetVar() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if va, _ := got.Meta.Vars.Get(tt.variable); va.Value == nil || *va.Value != tt.value {
				t.Errorf("%s = %+v", tt.variable, va)
			}
		})
	}

	got, err := s.Get(ctx, style.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if !strings.Contains(got.Sections[0].Code, "--accent: blue;") {
		t.Errorf("sections were not rebuilt: %q", got.Sections[0].Code)
	}
	if got.Digest == style.Digest {
		t.Error("digest did not change")
	}

	if _, err := s.SetVar(ctx, "absent", "accent", "red"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetVar() on absent style error = %v", err)
	}
}

func TestListResolveDelete(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	var ids []string
	for _, name := range []string{"Style 10", "Style 2", "Another"} {
		style, _, err := s.Install(ctx, strings.Replace(source, "Example", name, 1))
		if err != nil {
			t.Fatalf("Install(%s) error: %v", name, err)
		}
		ids = append(ids, style.ID)
	}

	all, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	var names []string
	for _, st := range all {
		names = append(names, st.Name)
	}
	if got := strings.Join(names, ","); got != "Another,Style 2,Style 10" {
		t.Errorf("List() order = %s", got)
	}

	if st, err := s.Resolve(ctx, "Style 2"); err != nil || st.ID != ids[1] {
		t.Errorf("Resolve(name) = %+v, %v", st, err)
	}
	if st, err := s.Resolve(ctx, ids[2]); err != nil || st.Name != "Another" {
		t.Errorf("Resolve(id) = %+v, %v", st, err)
	}
	if _, err := s.Resolve(ctx, "Nothing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Resolve() error = %v", err)
	}

	if err := s.Delete(ctx, ids[0]); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if err := s.Delete(ctx, ids[0]); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v", err)
	}
	if _, err := s.Get(ctx, ids[0]); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after Delete() error = %v", err)
	}
}

func TestInstall_Failures(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	if _, _, err := s.Install(ctx, "body{}"); err == nil {
		t.Error("Install() without metadata must fail")
	}
	empty := strings.Replace(source, "body{color:var(--accent)}", "", 1)
	if _, _, err := s.Install(ctx, empty); err == nil {
		t.Error("Install() without sections must fail")
	}
	if all, _ := s.List(ctx); len(all) != 0 {
		t.Errorf("failed installs left %d styles", len(all))
	}
}
