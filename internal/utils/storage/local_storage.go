package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
)

type localStorage struct {
	dir string
}

// NewLocalStorage stores uploads under dir, creating it if needed.
func NewLocalStorage(dir string) (Storage, error) {
	if dir == "" {
		dir = "./upload"
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, err
	}
	return &localStorage{dir: dir}, nil
}

func (l *localStorage) Save(_ context.Context, fileName string, data []byte) (string, error) {
	path := filepath.Join(l.dir, fileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (l *localStorage) Open(_ context.Context, path string) (io.ReadCloser, error) {
	return os.Open(path)
}
