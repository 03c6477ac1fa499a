package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/KaramelBytes/eurostat-enrollment/internal/reshape"
	"github.com/KaramelBytes/eurostat-enrollment/internal/utils"
	"github.com/google/uuid"
)

// FileName is the manifest written next to the outputs.
const FileName = "manifest.json"

// Output describes one file produced by a run.
type Output struct {
	Kind  string `json:"kind"` // csv|tmcf
	Path  string `json:"path"`
	Rows  int    `json:"rows,omitempty"`
	Bytes int64  `json:"bytes"`
}

// Manifest records a conversion run.
type Manifest struct {
	ID         string        `json:"id"`
	Source     string        `json:"source"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Stats      reshape.Stats `json:"stats"`
	Outputs    []Output      `json:"outputs"`
}

// New starts a manifest for a run reading from source.
func New(source string) *Manifest {
	return &Manifest{
		ID:        uuid.NewString(),
		Source:    source,
		StartedAt: time.Now().UTC(),
	}
}

// AddOutput records a written file, taking its size from disk.
func (m *Manifest) AddOutput(kind, path string, rows int) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat output: %w", err)
	}
	m.Outputs = append(m.Outputs, Output{Kind: kind, Path: path, Rows: rows, Bytes: info.Size()})
	return nil
}

// Save writes manifest.json into dir using atomic write.
func (m *Manifest) Save(dir string) (string, error) {
	if m.FinishedAt.IsZero() {
		m.FinishedAt = time.Now().UTC()
	}
	data, err := utils.PrettyJSON(m)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, FileName)
	if err := utils.SafeWriteFile(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// Load reads manifest.json from dir.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("manifest not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}
