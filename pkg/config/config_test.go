package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(p, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return p
}

func TestLoad(t *testing.T) {
	p := writeConfig(t, `
out_dir = "/tmp/das"
manifest = true
hwcodes = "0x6765,1894"
`)
	c, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Config{OutDir: "/tmp/das", Manifest: true, HWCodes: "0x6765,1894"}
	if *c != want {
		t.Errorf("got %+v, wanted %+v", *c, want)
	}
}

func TestLoadUnknownKey(t *testing.T) {
	p := writeConfig(t, `output = "/tmp"`)
	if _, err := Load(p); err == nil {
		t.Errorf("config with unknown key loaded")
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Errorf("missing explicit config loaded")
	}

	old := xdg.ConfigHome
	xdg.ConfigHome = t.TempDir()
	defer func() { xdg.ConfigHome = old }()

	c, err := Load("")
	if err != nil {
		t.Fatalf("Load of missing default config: %v", err)
	}
	if *c != (Config{}) {
		t.Errorf("got %+v, wanted zero config", *c)
	}
}
