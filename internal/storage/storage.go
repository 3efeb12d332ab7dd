package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/frahmantamala/petirpay/internal"
	"github.com/google/uuid"
)

// FileStore persists uploaded assets and hands back a store-relative path.
type FileStore interface {
	Save(ctx context.Context, folder, filename string, r io.Reader) (string, error)
	Delete(ctx context.Context, relPath string) error
	URL(relPath string) string
}

type LocalStore struct {
	root    string
	baseURL string
	logger  *slog.Logger
}

func NewLocalStore(cfg internal.StorageConfig, logger *slog.Logger) (*LocalStore, error) {
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{
		root:    cfg.UploadDir,
		baseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		logger:  logger,
	}, nil
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9.\-_]+`)

// UniqueName prefixes a sanitized file name with the date and a uuid.
func UniqueName(original string) string {
	safe := unsafeChars.ReplaceAllString(filepath.Base(original), "_")
	return fmt.Sprintf("%s-%s-%s", time.Now().UTC().Format("20060102"), uuid.NewString(), safe)
}

func (s *LocalStore) Save(ctx context.Context, folder, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	rel := path.Join(unsafeChars.ReplaceAllString(folder, "_"), filepath.Base(filename))
	full := filepath.Join(s.root, filepath.FromSlash(rel))

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", internal.NewStorageError("failed to prepare upload folder", err)
	}

	f, err := os.OpenFile(full, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", internal.NewStorageError("failed to create file", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(full)
		return "", internal.NewStorageError("failed to write file", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(full)
		return "", internal.NewStorageError("failed to close file", err)
	}

	s.logger.Info("file stored", "path", rel)
	return rel, nil
}

func (s *LocalStore) Delete(_ context.Context, relPath string) error {
	if relPath == "" {
		return nil
	}
	clean := filepath.Clean(filepath.FromSlash(relPath))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return internal.NewStorageError("refusing to delete outside upload dir", nil)
	}
	if err := os.Remove(filepath.Join(s.root, clean)); err != nil && !os.IsNotExist(err) {
		return internal.NewStorageError("failed to delete file", err)
	}
	return nil
}

func (s *LocalStore) URL(relPath string) string {
	if relPath == "" {
		return ""
	}
	return s.baseURL + "/" + relPath
}

// Root is the directory served under the public base URL.
func (s *LocalStore) Root() string {
	return s.root
}
