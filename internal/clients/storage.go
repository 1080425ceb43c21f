package clients

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalStorage keeps generated statement files on the local filesystem and
// serves them through the public files route.
type LocalStorage struct {
	BaseDir      string // directory statement files are written to
	PublicPrefix string // URL prefix the files route is mounted on, e.g. "/files"
	BaseURL      string // optional absolute base URL (scheme+host[:port])
}

func NewLocalStorage(baseDir, publicPrefix, baseURL string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./statements"
	}
	if publicPrefix == "" {
		publicPrefix = "/files"
	}

	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure statement dir %q: %w", baseDir, err)
	}

	return &LocalStorage{BaseDir: baseDir, PublicPrefix: publicPrefix, BaseURL: baseURL}, nil
}

// Save writes data under a collision-free name derived from fileName and
// returns the stored name. The write is atomic: a half-written statement is
// never visible under its final name.
func (s *LocalStorage) Save(ctx context.Context, fileName string, data []byte) (string, error) {
	// base name only, no path traversal
	fileName = filepath.Base(fileName)

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return "", fmt.Errorf("generate file name: %w", err)
	}
	final := fmt.Sprintf("%s_%s", hex.EncodeToString(randBytes), fileName)

	path := filepath.Join(s.BaseDir, final)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write statement file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("finalize statement file: %w", err)
	}

	return final, nil
}

// GetURL builds the download URL for a stored statement: absolute when a base
// URL is configured, otherwise relative to the service root.
func (s *LocalStorage) GetURL(ctx context.Context, fileName string) (string, error) {
	prefix := s.PublicPrefix
	if prefix == "" {
		prefix = "/files"
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}

	if s.BaseURL != "" {
		return fmt.Sprintf("%s%s/%s", strings.TrimSuffix(s.BaseURL, "/"), prefix, fileName), nil
	}
	return fmt.Sprintf("%s/%s", prefix, fileName), nil
}

// CleanupOlderThan removes statement files older than d. Statements are
// transient downloads; the caller runs this on a ticker.
func (s *LocalStorage) CleanupOlderThan(d time.Duration) error {
	now := time.Now()
	return filepath.WalkDir(s.BaseDir, func(path string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if de.IsDir() {
			return nil
		}
		info, err := de.Info()
		if err != nil {
			return nil
		}
		if now.Sub(info.ModTime()) > d {
			_ = os.Remove(path)
		}
		return nil
	})
}
