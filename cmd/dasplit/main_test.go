package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mtkbits/dasplit/internal/datest"
)

func TestMain(m *testing.M) {
	setupCommands()
	os.Exit(m.Run())
}

// run executes the root command with args, then puts every flag it set back to
// its default so that later runs start clean.
func run(t *testing.T, args ...string) error {
	t.Helper()
	defer func() {
		for _, c := range []*cobra.Command{rootCmd, extractCmd, infoCmd} {
			c.Flags().Visit(func(f *pflag.Flag) {
				if err := f.Value.Set(f.DefValue); err != nil {
					t.Errorf("resetting --%s: %v", f.Name, err)
				}
				f.Changed = false
			})
		}
	}()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func writeTestDA(t *testing.T, dir string) string {
	t.Helper()
	raw := datest.Build("MTK_AllInOne_DA_v5", false, []datest.Entry{
		{
			HWCode: 0x10,
			DA1:    datest.Stage{Payload: []byte("da1 for 0x10"), Sig: []byte("SIG")},
			DA2:    datest.Stage{Payload: []byte("da2 for 0x10")},
		},
		{
			HWCode: 0x20,
			DA1:    datest.Stage{Payload: []byte("da1 for 0x20")},
			DA2:    datest.Stage{Payload: []byte("da2 for 0x20"), Sig: []byte("SIGNATURE")},
		},
	})
	path := filepath.Join(dir, "MTK_AllInOne_DA.bin")
	if err := os.WriteFile(path, raw, 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func emptyConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, nil, 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestExtractCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeTestDA(t, dir)
	out := filepath.Join(dir, "out")

	if err := run(t, "extract", "-c", emptyConfig(t, dir), "-o", out, in, "32"); err != nil {
		t.Fatalf("extract: %v", err)
	}

	for name, want := range map[string]string{
		"da1_0x20.bin": "da1 for 0x20",
		"da2_0x20.bin": "da2 for 0x20",
		"da2_0x20.sig": "SIGNATURE",
	} {
		got, err := os.ReadFile(filepath.Join(out, name))
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if string(got) != want {
			t.Errorf("%s: got %q, wanted %q", name, got, want)
		}
	}
	for _, name := range []string{"da1_0x20.sig", "da1_0x10.bin"} {
		if _, err := os.Stat(filepath.Join(out, name)); !os.IsNotExist(err) {
			t.Errorf("%s: should not exist (%v)", name, err)
		}
	}
}

func exists(t *testing.T, path string) bool {
	t.Helper()
	_, err := os.Stat(path)
	if err != nil && !os.IsNotExist(err) {
		t.Fatalf("Stat(%q): %v", path, err)
	}
	return err == nil
}

func TestExtractCommandPrecedence(t *testing.T) {
	dir := t.TempDir()
	in := writeTestDA(t, dir)
	cfgOut := filepath.Join(dir, "cfgout")
	flagOut := filepath.Join(dir, "flagout")
	cfg := filepath.Join(dir, "config.toml")
	body := fmt.Sprintf("out_dir = %q\nhwcodes = \"0x20\"\nmanifest = true\n", cfgOut)
	if err := os.WriteFile(cfg, []byte(body), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := run(t, "extract", "-c", cfg, in); err != nil {
		t.Fatalf("extract with config only: %v", err)
	}
	for name, want := range map[string]bool{
		"da1_0x20.bin":   true,
		"manifest.plist": true,
		"da1_0x10.bin":   false,
	} {
		if got := exists(t, filepath.Join(cfgOut, name)); got != want {
			t.Errorf("config only: %s exists is %v, wanted %v", name, got, want)
		}
	}

	if err := run(t, "extract", "-c", cfg, "-o", flagOut, "-w", "0x10", "--manifest=false", in); err != nil {
		t.Fatalf("extract with flags: %v", err)
	}
	for name, want := range map[string]bool{
		"da1_0x10.bin":   true,
		"da1_0x20.bin":   false,
		"manifest.plist": false,
	} {
		if got := exists(t, filepath.Join(flagOut, name)); got != want {
			t.Errorf("flags: %s exists is %v, wanted %v", name, got, want)
		}
	}
}

func TestVerboseFlags(t *testing.T) {
	if f := rootCmd.PersistentFlags().Lookup("verbose"); f == nil || f.Shorthand != "" {
		t.Fatalf("--verbose is %+v, wanted no shorthand", f)
	}

	dir := t.TempDir()
	in := writeTestDA(t, dir)
	out := filepath.Join(dir, "out")
	if err := run(t, "extract", "--verbose", "-v", "1", "-c", emptyConfig(t, dir), "-o", out, in); err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !exists(t, filepath.Join(out, "da1_0x10.bin")) {
		t.Errorf("da1_0x10.bin was not written")
	}
}

func TestExtractCommandBadInput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "garbage.bin")
	if err := os.WriteFile(in, []byte("not a DA"), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	err := run(t, "extract", "-c", emptyConfig(t, dir), "-o", dir, in)
	if err == nil || !strings.Contains(err.Error(), "could not parse DA") {
		t.Errorf("got %v, wanted parse error", err)
	}
}

func TestInfoCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeTestDA(t, dir)

	buf := bytes.NewBuffer(nil)
	rootCmd.SetOut(buf)
	defer rootCmd.SetOut(nil)
	if err := run(t, "info", in); err != nil {
		t.Fatalf("info: %v", err)
	}

	got := buf.String()
	for _, want := range []string{
		"Identifier: MTK_AllInOne_DA_v5",
		"Type: V5 (XFlash)",
		"Entries: 2",
		"hw code 0x20",
		"DA2: 12 bytes at 0x40000000, signature 9 bytes",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output does not contain %q:\n%s", want, got)
		}
	}
}
