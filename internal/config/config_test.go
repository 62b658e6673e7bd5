package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"keepnotes/internal/service"
)

var configEnvVars = []string{
	"DB_PATH", "API_PORT", "LOG_LEVEL", "LOG_FORMAT",
	"ALLOWED_ORIGINS", "CASCADE_POLICY", "WRITE_RETRIES",
}

// clearEnv blanks every variable Load reads; getEnv treats empty as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvVars {
		t.Setenv(key, "")
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		setupEnv    func(*testing.T)
		wantErr     bool
		checkConfig func(*testing.T, *Config)
	}{
		{
			name: "defaults",
			setupEnv: func(t *testing.T) {
				t.Setenv("DB_PATH", "")
				t.Chdir(t.TempDir())
			},
			checkConfig: func(t *testing.T, cfg *Config) {
				if cfg.DBPath != "./data/keepnotes.db" {
					t.Errorf("DBPath = %q", cfg.DBPath)
				}
				if cfg.APIPort != "9000" {
					t.Errorf("APIPort = %q", cfg.APIPort)
				}
				if cfg.LogLevel != slog.LevelInfo {
					t.Errorf("LogLevel = %v", cfg.LogLevel)
				}
				if cfg.LogFormat != "text" {
					t.Errorf("LogFormat = %q", cfg.LogFormat)
				}
				if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
					t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
				}
				if cfg.CascadePolicy != service.CascadeBestEffort {
					t.Errorf("CascadePolicy = %q", cfg.CascadePolicy)
				}
				if cfg.WriteRetries != 5 {
					t.Errorf("WriteRetries = %d", cfg.WriteRetries)
				}
			},
		},
		{
			name: "custom values",
			setupEnv: func(t *testing.T) {
				t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "nested", "notes.db"))
				t.Setenv("API_PORT", "8080")
				t.Setenv("LOG_LEVEL", "debug")
				t.Setenv("LOG_FORMAT", "JSON")
				t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test,")
				t.Setenv("CASCADE_POLICY", "strict")
				t.Setenv("WRITE_RETRIES", "9")
			},
			checkConfig: func(t *testing.T, cfg *Config) {
				if cfg.APIPort != "8080" || cfg.LogLevel != slog.LevelDebug || cfg.LogFormat != "json" {
					t.Errorf("cfg = %+v", cfg)
				}
				if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "http://b.test" {
					t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
				}
				if cfg.CascadePolicy != service.CascadeStrict || cfg.WriteRetries != 9 {
					t.Errorf("cfg = %+v", cfg)
				}
			},
		},
		{
			name:     "invalid log level",
			setupEnv: func(t *testing.T) { t.Setenv("LOG_LEVEL", "loud") },
			wantErr:  true,
		},
		{
			name:     "invalid log format",
			setupEnv: func(t *testing.T) { t.Setenv("LOG_FORMAT", "xml") },
			wantErr:  true,
		},
		{
			name:     "invalid cascade policy",
			setupEnv: func(t *testing.T) { t.Setenv("CASCADE_POLICY", "sometimes") },
			wantErr:  true,
		},
		{
			name:     "non-numeric retries",
			setupEnv: func(t *testing.T) { t.Setenv("WRITE_RETRIES", "many") },
			wantErr:  true,
		},
		{
			name:     "zero retries",
			setupEnv: func(t *testing.T) { t.Setenv("WRITE_RETRIES", "0") },
			wantErr:  true,
		},
		{
			name:     "only blank origins",
			setupEnv: func(t *testing.T) { t.Setenv("ALLOWED_ORIGINS", " , ") },
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "keepnotes.db"))
			tt.setupEnv(t)

			cfg, err := Load()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && tt.checkConfig != nil {
				tt.checkConfig(t, cfg)
			}
		})
	}
}

func TestLoad_DoesNotCreateDataDir(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)

	if _, err := Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "data")); !os.IsNotExist(err) {
		t.Errorf("Load() created the data directory, stat error = %v", err)
	}
}

func TestConfig_EnsureDataDir(t *testing.T) {
	cfg := &Config{DBPath: filepath.Join(t.TempDir(), "nested", "dir", "keepnotes.db")}

	if err := cfg.EnsureDataDir(); err != nil {
		t.Fatalf("EnsureDataDir() error = %v", err)
	}
	info, err := os.Stat(filepath.Dir(cfg.DBPath))
	if err != nil {
		t.Fatalf("data directory missing: %v", err)
	}
	if !info.IsDir() {
		t.Errorf("%s is not a directory", filepath.Dir(cfg.DBPath))
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" a ,, b ")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("splitList() = %v", got)
	}
	if got := splitList(""); len(got) != 0 {
		t.Errorf("splitList(\"\") = %v", got)
	}
}

func TestConfig_NewLogger(t *testing.T) {
	for _, format := range []string{"text", "json"} {
		cfg := &Config{LogFormat: format, LogLevel: slog.LevelWarn}
		logger := cfg.NewLogger()
		if logger == nil {
			t.Fatalf("NewLogger(%s) returned nil", format)
		}
		if logger.Enabled(t.Context(), slog.LevelInfo) {
			t.Errorf("NewLogger(%s) should not enable info at warn level", format)
		}
	}
}
