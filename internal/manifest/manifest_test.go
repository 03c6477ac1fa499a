package manifest_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/eurostat-enrollment/internal/manifest"
	"github.com/KaramelBytes/eurostat-enrollment/internal/reshape"
	"github.com/google/uuid"
)

func TestManifest_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "Eurostats_NUTS2_Enrollment.csv")
	if err := os.WriteFile(out, []byte("Date,GeoId\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	m := manifest.New("./trng_lfse_04.tsv.gz")
	if _, err := uuid.Parse(m.ID); err != nil {
		t.Fatalf("id is not a uuid: %q", m.ID)
	}
	m.Stats = reshape.Stats{Rows: 2, Groups: 1}
	if err := m.AddOutput("csv", out, 1); err != nil {
		t.Fatalf("add output: %v", err)
	}
	if err := m.AddOutput("tmcf", filepath.Join(dir, "missing.tmcf"), 0); err == nil {
		t.Fatalf("expected error for missing output")
	}
	path, err := m.Save(dir)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if filepath.Base(path) != manifest.FileName {
		t.Fatalf("unexpected path %s", path)
	}

	got, err := manifest.Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.ID != m.ID || got.Stats.Groups != 1 || len(got.Outputs) != 1 {
		t.Fatalf("round trip lost data: %+v", got)
	}
	if got.Outputs[0].Bytes != int64(len("Date,GeoId\n")) {
		t.Fatalf("bytes = %d", got.Outputs[0].Bytes)
	}
	if got.FinishedAt.Before(got.StartedAt) {
		t.Fatalf("finished before started")
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := manifest.Load(t.TempDir()); err == nil {
		t.Fatalf("expected error")
	}
}
