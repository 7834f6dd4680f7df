package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/iksnae/chat2md/internal"
	"github.com/spf13/viper"
)

func newViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v, NewDefaultConfig(t.TempDir()))
	return v
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(newViper(t))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	opts, err := cfg.ConversionOptions()
	if err != nil {
		t.Fatalf("ConversionOptions() error = %v", err)
	}
	want := internal.DefaultConversionOptions()
	if opts.Format != want.Format || opts.IncludeFrontmatter != want.IncludeFrontmatter ||
		opts.SeparateFiles != want.SeparateFiles || opts.AddTimestamps != want.AddTimestamps {
		t.Errorf("ConversionOptions() = %+v, want %+v", opts, want)
	}
	if opts.Location != time.UTC {
		t.Errorf("Location = %v, want UTC", opts.Location)
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `format = "mdx"
include_frontmatter = false
add_timestamps = true
timezone = "Europe/Berlin"
workers = 3
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	v := newViper(t)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig() error = %v", err)
	}

	cfg, err := LoadConfig(v)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Format != "mdx" || cfg.IncludeFrontmatter || !cfg.AddTimestamps || cfg.Workers != 3 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if !cfg.SeparateFiles {
		t.Error("separate_files should keep its default")
	}

	opts, err := cfg.ConversionOptions()
	if err != nil {
		t.Fatalf("ConversionOptions() error = %v", err)
	}
	if opts.Location.String() != "Europe/Berlin" {
		t.Errorf("Location = %v, want Europe/Berlin", opts.Location)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{name: "bad format", key: "format", val: "docx", want: "unsupported format"},
		{name: "bad timezone", key: "timezone", val: "Mars/Olympus", want: "invalid timezone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViper(t)
			v.Set(tt.key, tt.val)
			_, err := LoadConfig(v)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("LoadConfig() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestResolvePath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	got, err := ResolvePath("~/cache")
	if err != nil {
		t.Fatalf("ResolvePath() error = %v", err)
	}
	if got != filepath.Join(home, "cache") {
		t.Errorf("ResolvePath(~/cache) = %q, want %q", got, filepath.Join(home, "cache"))
	}

	got, err = ResolvePath("relative")
	if err != nil {
		t.Fatalf("ResolvePath() error = %v", err)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("ResolvePath(relative) = %q, want an absolute path", got)
	}
}
