package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/eurostat-enrollment/internal/config"
	"github.com/google/go-cmp/cmp"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := config.Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := &config.Global{
		SourceURL:        config.DefaultSourceURL,
		OutputDir:        ".",
		OutputCSV:        config.DefaultOutputCSV,
		OutputTMCF:       config.DefaultOutputTMCF,
		LogLevel:         "info",
		RetryMaxAttempts: 1,
		RetryBaseDelayMs: 500,
		RetryMaxDelayMs:  4000,
	}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
	if got := c.CSVPath(); got != config.DefaultOutputCSV {
		t.Fatalf("CSVPath = %q", got)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	cfgFile := filepath.Join(dir, "c.yaml")
	body := "output_dir: /data/out\nretry_max_attempts: 4\nsource_url: ./local.tsv\n"
	if err := os.WriteFile(cfgFile, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ENROLLMENT_SOURCE_URL", "https://example.org/trng_lfse_04.tsv.gz")
	c, err := config.Load(cfgFile)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.OutputDir != "/data/out" || c.RetryMaxAttempts != 4 {
		t.Fatalf("file values not applied: %+v", c)
	}
	if c.SourceURL != "https://example.org/trng_lfse_04.tsv.gz" {
		t.Fatalf("env override not applied: %q", c.SourceURL)
	}
	if got := c.TMCFPath(); got != filepath.Join("/data/out", config.DefaultOutputTMCF) {
		t.Fatalf("TMCFPath = %q", got)
	}
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	c, err := config.Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := c.Set("write_manifest", "true"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := c.Set("output_csv", "enroll.csv"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := config.Save(c, ""); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".eurostat-enrollment", "config.yaml")); err != nil {
		t.Fatalf("config not written: %v", err)
	}
	again, err := config.Load("")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !again.WriteManifest || again.OutputCSV != "enroll.csv" {
		t.Fatalf("values not persisted: %+v", again)
	}
}

func TestSet_Validation(t *testing.T) {
	c := &config.Global{}
	bad := [][2]string{
		{"log_level", "loud"},
		{"retry_max_attempts", "-1"},
		{"http_timeout_sec", "soon"},
		{"write_manifest", "maybe"},
		{"source_url", ""},
		{"nope", "x"},
	}
	for _, kv := range bad {
		if err := c.Set(kv[0], kv[1]); err == nil {
			t.Errorf("Set(%q, %q): expected error", kv[0], kv[1])
		}
	}
	if err := c.Set("retry_max_attempts", "0"); err != nil || c.RetryMaxAttempts != 1 {
		t.Fatalf("retry_max_attempts 0 should clamp to 1, got %d (%v)", c.RetryMaxAttempts, err)
	}
}
