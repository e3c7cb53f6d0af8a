package imaging

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
)

// Staged is a transient on-disk copy of an uploaded image. It exists only
// for the duration of one analysis run and must be removed on every exit
// path, success or failure.
type Staged struct {
	path string

	mu      sync.Mutex
	removed bool
}

// Stage writes the image to a temp file in dir. An empty dir uses the
// system temp directory.
func Stage(dir string, data []byte) (*Staged, error) {
	ext := ".bin"
	if mime, err := Sniff(data); err == nil {
		switch mime {
		case "image/png":
			ext = ".png"
		case "image/jpeg":
			ext = ".jpg"
		}
	}

	f, err := os.CreateTemp(dir, "mia-upload-*"+ext)
	if err != nil {
		return nil, fmt.Errorf("create staging file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("write staging file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return nil, fmt.Errorf("close staging file: %w", err)
	}

	return &Staged{path: f.Name()}, nil
}

// Path returns the staging file location.
func (s *Staged) Path() string {
	return s.path
}

// Read returns the staged bytes.
func (s *Staged) Read() ([]byte, error) {
	return os.ReadFile(s.path)
}

// Cleanup removes the staging file. Safe to call multiple times.
func (s *Staged) Cleanup() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.removed {
		return nil
	}
	s.removed = true

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
