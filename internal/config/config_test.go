package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr() != "localhost:8080" {
		t.Errorf("Addr = %s", cfg.Server.Addr())
	}
	if cfg.Store.Driver != "memory" || cfg.Game.DefaultVariant != "casual" {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "bgrules.yaml", `
server:
  host: 0.0.0.0
  port: 9000
  read_timeout: 5s
  allowed_origins: [https://example.com]
log:
  level: debug
store:
  driver: sqlite
  path: /tmp/games.db
game:
  default_variant: tapa
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9000 || cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Server.WriteTimeout != 30*time.Second {
		t.Errorf("unset field lost its default: %v", cfg.Server.WriteTimeout)
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Log.Level != "debug" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Store.Driver != "sqlite" || cfg.Game.DefaultVariant != "tapa" {
		t.Errorf("store/game = %+v %+v", cfg.Store, cfg.Game)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "bgrules.toml", `
[server]
port = 7000
idle_timeout = "2m"

[game]
default_variant = "gulbara"
seed = 42
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7000 || cfg.Server.IdleTimeout != 2*time.Minute {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Game.Seed != 42 || cfg.Game.DefaultVariant != "gulbara" {
		t.Errorf("game = %+v", cfg.Game)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeFile(t, "bgrules.yaml", "server:\n  port: 9000\n")
	t.Setenv("BGR_SERVER_PORT", "9100")
	t.Setenv("BGR_LOG_DEVELOPMENT", "true")
	t.Setenv("BGR_SERVER_ALLOWED_ORIGINS", "a.test,b.test")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("port = %d, want env value 9100", cfg.Server.Port)
	}
	if !cfg.Log.Development {
		t.Error("development not set from env")
	}
	if len(cfg.Server.AllowedOrigins) != 2 {
		t.Errorf("origins = %v", cfg.Server.AllowedOrigins)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name, file, body string
	}{
		{"unknown extension", "cfg.ini", "port=1"},
		{"bad yaml", "cfg.yaml", "server: [\n"},
		{"unknown yaml field", "cfg.yaml", "server:\n  colour: red\n"},
		{"bad toml", "cfg.toml", "[server\n"},
		{"bad variant", "cfg.yaml", "game:\n  default_variant: plakoto\n"},
		{"bad driver", "cfg.yaml", "store:\n  driver: redis\n"},
		{"bad port", "cfg.toml", "[server]\nport = 70000\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeFile(t, tt.file, tt.body)); err == nil {
				t.Error("expected an error")
			}
		})
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file should fail")
	}
}
