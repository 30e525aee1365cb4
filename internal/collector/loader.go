package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"StockScreener/internal/model"
)

// Loader supplies the day's pre-joined table, one row per security.
type Loader interface {
	Load(ctx context.Context) ([]*model.Row, error)
	Name() string
}

// snapshot is the on-disk and on-wire table shape.
type snapshot struct {
	Date model.Date   `json:"date"`
	Rows []*model.Row `json:"rows"`
}

func decodeSnapshot(r io.Reader) ([]*model.Row, error) {
	var snap snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap.Rows, nil
}

// FileLoader reads a JSON snapshot from disk.
type FileLoader struct {
	Path string
}

// NewFileLoader creates a loader for the snapshot at path.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{Path: path}
}

func (f *FileLoader) Name() string { return "file" }

func (f *FileLoader) Load(ctx context.Context) ([]*model.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fh, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer fh.Close()
	return decodeSnapshot(fh)
}

// MockLoader returns fixed rows for development and testing.
type MockLoader struct {
	Rows []*model.Row
	Err  error
}

func (m *MockLoader) Name() string { return "mock" }

func (m *MockLoader) Load(_ context.Context) ([]*model.Row, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Rows, nil
}
