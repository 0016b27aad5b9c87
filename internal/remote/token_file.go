package remote

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// TokenFile guarda el token de acceso en disco entre ejecuciones.
type TokenFile struct {
	path string

	mu     sync.Mutex
	loaded bool
	token  string
}

func NewTokenFile(path string) *TokenFile {
	return &TokenFile{path: path}
}

// DefaultTokenPath devuelve <config dir>/plotchat/token.
func DefaultTokenPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("user config dir: %w", err)
	}
	return filepath.Join(dir, "plotchat", "token"), nil
}

func (f *TokenFile) Path() string {
	return f.path
}

// Token devuelve el token guardado o "" si no hay.
func (f *TokenFile) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.loaded {
		f.loaded = true
		b, err := os.ReadFile(f.path)
		if err == nil {
			f.token = strings.TrimSpace(string(b))
		}
	}
	return f.token
}

func (f *TokenFile) Save(token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(f.path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	f.token, f.loaded = token, true
	return nil
}

func (f *TokenFile) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token, f.loaded = "", true
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}
