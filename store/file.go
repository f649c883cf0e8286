package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// JSONFile keeps the high score in a small JSON document.
type JSONFile struct {
	path string
	mu   sync.Mutex
}

type fileData struct {
	HighScore int `json:"high_score"`
}

func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

// Load returns 0 when the file does not exist yet.
func (f *JSONFile) Load(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.read()
}

func (f *JSONFile) read() (int, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read high score: %w", err)
	}

	var data fileData
	if err := json.Unmarshal(raw, &data); err != nil {
		return 0, fmt.Errorf("failed to parse high score %s: %w", f.path, err)
	}
	return data.HighScore, nil
}

func (f *JSONFile) Save(_ context.Context, score int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, err := f.read()
	if err != nil {
		return err
	}
	if score <= current {
		return nil
	}

	raw, err := json.MarshalIndent(fileData{HighScore: score}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to save high score: %w", err)
	}

	// Write beside the target and rename so a crash never leaves half a file.
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".highscore-*")
	if err != nil {
		return fmt.Errorf("failed to save high score: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to save high score: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to save high score: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to save high score: %w", err)
	}
	return nil
}

func (f *JSONFile) Close() error { return nil }
