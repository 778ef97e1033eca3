package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}
	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}
	if cfg.Output.Format != OutputFmtCss {
		t.Errorf("Default output format = %s, want css", cfg.Output.Format)
	}
	if cfg.Compiler.Less.Path != "lessc" || !slices.Contains(cfg.Compiler.Less.Args, "--math=parens-division") {
		t.Errorf("Default less renderer = %+v", cfg.Compiler.Less)
	}
	if cfg.Compiler.Stylus.Path != "stylus" {
		t.Errorf("Default stylus renderer = %+v", cfg.Compiler.Stylus)
	}
	if len(cfg.Store.Path) == 0 {
		t.Error("Default store path is empty")
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	storePath := filepath.Join(tmpDir, "data", "styles.db")

	configContent := `version: 1
compiler:
  less:
    path: /opt/less/bin/lessc
    args: ["-"]
output:
  name_template: "{{ .Namespace }}/{{ .Name }}"
  transliterate: true
  format: json
store:
  path: ` + storePath + `
logging:
  console:
    level: debug
  file:
    level: none
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadConfiguration(configPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if cfg.Output.Format != OutputFmtJson {
		t.Errorf("Format = %s, want json", cfg.Output.Format)
	}
	if !cfg.Output.Transliterate {
		t.Error("Expected Transliterate to be true")
	}
	if cfg.Output.NameTemplate != "{{ .Namespace }}/{{ .Name }}" {
		t.Errorf("NameTemplate = %q", cfg.Output.NameTemplate)
	}
	if cfg.Compiler.Less.Path != "/opt/less/bin/lessc" || !slices.Equal(cfg.Compiler.Less.Args, []string{"-"}) {
		t.Errorf("Less = %+v", cfg.Compiler.Less)
	}
	// values absent in the file come from defaults
	if cfg.Compiler.Stylus.Path != "stylus" {
		t.Errorf("Stylus path = %q, want default", cfg.Compiler.Stylus.Path)
	}
	if cfg.Logging.ConsoleLogger.Level != "debug" {
		t.Errorf("Console level = %q", cfg.Logging.ConsoleLogger.Level)
	}
	if _, err := os.Stat(filepath.Dir(storePath)); err != nil {
		t.Errorf("store directory was not created: %v", err)
	}
}

func TestLoadConfiguration_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown field", "version: 1\ncompiler:\n  sass:\n    path: sass\n", "failed to process configuration file"},
		{"bad format", "version: 1\noutput:\n  format: xml\n", "not a valid OutputFmt"},
		{"bad version", "version: 2\n", "Version"},
		{"bad log level", "version: 1\nlogging:\n  console:\n    level: loud\n", "Level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to write config file: %v", err)
			}
			_, err := LoadConfiguration(path)
			if err == nil {
				t.Fatal("LoadConfiguration() expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("LoadConfiguration() error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadConfiguration_MissingFile(t *testing.T) {
	_, err := LoadConfiguration(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadConfiguration() error = %v, want not exist", err)
	}
}

func TestPrepareAndDump(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if !strings.Contains(string(data), "version: 1") {
		t.Errorf("Prepare() = %s", data)
	}

	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	data, err = Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	if !strings.Contains(string(data), "format: css") {
		t.Errorf("Dump() does not spell format as text:\n%s", data)
	}
}

func TestOutputFmt(t *testing.T) {
	tests := []struct {
		name string
		want OutputFmt
		ext  string
	}{
		{"css", OutputFmtCss, ".css"},
		{"JSON", OutputFmtJson, ".json"},
	}
	for _, tt := range tests {
		got, err := ParseOutputFmt(tt.name)
		if err != nil || got != tt.want {
			t.Errorf("ParseOutputFmt(%q) = %v, %v", tt.name, got, err)
		}
		if got.Ext() != tt.ext {
			t.Errorf("%s.Ext() = %q, want %q", got, got.Ext(), tt.ext)
		}
	}
	if _, err := ParseOutputFmt("xml"); !errors.Is(err, ErrInvalidOutputFmt) {
		t.Errorf("ParseOutputFmt(xml) error = %v", err)
	}
	if s := OutputFmt(7).String(); s != "OutputFmt(7)" {
		t.Errorf("String() = %q", s)
	}
	if OutputFmt(7).IsValid() || !OutputFmtJson.IsValid() {
		t.Error("IsValid() does not match declared values")
	}
	names := OutputFmtNames()
	if strings.Join(names, ",") != "css,json" {
		t.Errorf("OutputFmtNames() = %v", names)
	}
	names[0] = "changed"
	if OutputFmtNames()[0] != "css" {
		t.Error("OutputFmtNames() must return a copy")
	}
}

func TestCleanFileName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"style", "style"},
		{"a" + string(os.PathSeparator) + "b", "ab"},
		{"..hidden", "hidden"},
		{"...", badFileName},
		{"", badFileName},
	}
	for _, tt := range tests {
		if got := CleanFileName(tt.in); got != tt.want {
			t.Errorf("CleanFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
