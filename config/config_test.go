package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "idlerpg.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvPath, "")
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Game.BlessCost != 1500 || cfg.Game.LotteryPrize != 1500 || cfg.Game.MaxItems != 15 {
		t.Errorf("game defaults = %+v", cfg.Game)
	}
	if cfg.Database.Driver != "memory" || cfg.Logging.Format != "console" {
		t.Errorf("defaults = %+v / %+v", cfg.Database, cfg.Logging)
	}
}

func TestLoad_OverridesKeepDefaults(t *testing.T) {
	path := writeConfig(t, `
[game]
seed = 42
bless_cost = 200
bless_duration = "30m"
quest_reset_age = "24h"

[logging]
level = "debug"
format = "json"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Game.Seed != 42 || cfg.Game.BlessCost != 200 {
		t.Errorf("overrides lost: %+v", cfg.Game)
	}
	if cfg.Game.BlessDuration != 30*time.Minute || cfg.Game.QuestResetAge != 24*time.Hour {
		t.Errorf("durations = %s / %s", cfg.Game.BlessDuration, cfg.Game.QuestResetAge)
	}
	if cfg.Game.HomeCost != 500 {
		t.Errorf("home cost default lost: %d", cfg.Game.HomeCost)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
}

func TestLoad_EnvPath(t *testing.T) {
	path := writeConfig(t, "[content]\ndir = \"elsewhere\"\n")
	t.Setenv(EnvPath, path)
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Content.Dir != "elsewhere" {
		t.Errorf("dir = %q", cfg.Content.Dir)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad toml", "[game\n", "parse config"},
		{"bad driver", "[database]\ndriver = \"sqlite\"\n", "unknown database driver"},
		{"blizzard range", "[game]\nblizzard_min = \"3h\"\nblizzard_max = \"1h\"\n", "blizzard_max"},
		{"group size", "[game]\nmax_group_size = 0\n", "max_group_size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want %q", err, tt.want)
			}
		})
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_SampleFile(t *testing.T) {
	cfg, err := Load("idlerpg.toml")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Game.TickInterval != 5*time.Second || cfg.Database.ConnMaxLifetime != 30*time.Minute {
		t.Errorf("durations = %s / %s", cfg.Game.TickInterval, cfg.Database.ConnMaxLifetime)
	}
	if cfg.Game.BlizzardChance != 1 || cfg.Logging.File != "" {
		t.Errorf("sample = %+v / %+v", cfg.Game, cfg.Logging)
	}
}
