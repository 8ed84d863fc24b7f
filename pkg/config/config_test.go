package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/adrg/xdg"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name:    "empty file keeps defaults",
			content: "",
			check: func(t *testing.T, cfg *Config) {
				if !reflect.DeepEqual(cfg, Default()) {
					t.Errorf("Load() = %+v, want defaults", cfg)
				}
			},
		},
		{
			name: "overrides tool and durations",
			content: `tool:
  binary: gmake
  buildFile: GNUmakefile
discovery:
  timeout: 5s
build:
  timeout: 10m
  envFile: build.env
  onBusy: cancel
watch:
  debounce: 1s
`,
			check: func(t *testing.T, cfg *Config) {
				if cfg.Tool.Binary != "gmake" || cfg.Tool.BuildFile != "GNUmakefile" {
					t.Errorf("Tool = %+v", cfg.Tool)
				}
				if got := cfg.GetDiscoveryTimeout(); got != 5*time.Second {
					t.Errorf("GetDiscoveryTimeout() = %v", got)
				}
				if got := cfg.GetBuildTimeout(); got != 10*time.Minute {
					t.Errorf("GetBuildTimeout() = %v", got)
				}
				if got := cfg.GetWatchDebounce(); got != time.Second {
					t.Errorf("GetWatchDebounce() = %v", got)
				}
				if cfg.Build.EnvFile != "build.env" || cfg.Build.OnBusy != OnBusyCancel {
					t.Errorf("Build = %+v", cfg.Build)
				}
				if !reflect.DeepEqual(cfg.Discovery.Args, []string{"-pRrq", ":"}) {
					t.Errorf("Discovery.Args = %v, want defaults", cfg.Discovery.Args)
				}
			},
		},
		{
			name:    "bad duration",
			content: "build:\n  timeout: soon\n",
			wantErr: true,
		},
		{
			name:    "bad yaml",
			content: "tool: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.content))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() should fail for a missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(cfg *Config) {},
		},
		{
			name:    "missing binary",
			mutate:  func(cfg *Config) { cfg.Tool.Binary = "" },
			wantErr: "Binary",
		},
		{
			name:    "build file with a path",
			mutate:  func(cfg *Config) { cfg.Tool.BuildFile = "sub/Makefile" },
			wantErr: "BuildFile",
		},
		{
			name:    "no discovery args",
			mutate:  func(cfg *Config) { cfg.Discovery.Args = nil },
			wantErr: "Args",
		},
		{
			name:    "empty discovery arg",
			mutate:  func(cfg *Config) { cfg.Discovery.Args = []string{"-p", ""} },
			wantErr: "Args[1]",
		},
		{
			name:    "unknown busy policy",
			mutate:  func(cfg *Config) { cfg.Build.OnBusy = "queue" },
			wantErr: "OnBusy",
		},
		{
			name:    "negative timeout",
			mutate:  func(cfg *Config) { cfg.Build.Timeout = &Duration{-time.Second} },
			wantErr: "build.timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Tool.Binary = "bmake"
	cfg.Build.Timeout = &Duration{90 * time.Second}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() unexpected error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if !reflect.DeepEqual(loaded, cfg) {
		t.Errorf("Load() = %+v, want %+v", loaded, cfg)
	}
}

func TestDiscover(t *testing.T) {
	// Registered first so it runs after the environment is restored
	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	xdg.Reload()

	t.Run("explicit path", func(t *testing.T) {
		path := writeConfig(t, "tool:\n  binary: gmake\n")
		cfg, source, err := Discover(path)
		if err != nil {
			t.Fatalf("Discover() unexpected error: %v", err)
		}
		if source != path || cfg.Tool.Binary != "gmake" {
			t.Errorf("Discover() = %q from %q", cfg.Tool.Binary, source)
		}
	})

	t.Run("explicit path missing", func(t *testing.T) {
		if _, _, err := Discover(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
			t.Error("Discover() should fail for a missing explicit file")
		}
	})

	t.Run("explicit path invalid", func(t *testing.T) {
		path := writeConfig(t, "build:\n  onBusy: maybe\n")
		if _, _, err := Discover(path); err == nil {
			t.Error("Discover() should reject an invalid file")
		}
	})

	t.Run("project file", func(t *testing.T) {
		dir := t.TempDir()
		chdir(t, dir)
		if err := Save(filepath.Join(dir, ProjectConfigPath), &Config{
			Tool:      ToolConfig{Binary: "remake", BuildFile: "Makefile"},
			Discovery: DiscoveryConfig{Args: []string{"-p"}},
			Build:     BuildConfig{OnBusy: OnBusyReject},
		}); err != nil {
			t.Fatal(err)
		}

		cfg, source, err := Discover("")
		if err != nil {
			t.Fatalf("Discover() unexpected error: %v", err)
		}
		if source != ProjectConfigPath || cfg.Tool.Binary != "remake" {
			t.Errorf("Discover() = %q from %q", cfg.Tool.Binary, source)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		chdir(t, t.TempDir())
		cfg, source, err := Discover("")
		if err != nil {
			t.Fatalf("Discover() unexpected error: %v", err)
		}
		if source != "" || !reflect.DeepEqual(cfg, Default()) {
			t.Errorf("Discover() = %+v from %q, want defaults", cfg, source)
		}
	})
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
}
