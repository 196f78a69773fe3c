package uploads

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

const (
	URLPrefix       = "/uploads/"
	defaultFilename = "upload.bin"
	emptySafeName   = "file"
)

// Uploader stores an attachment under name and returns the URL clients use
// to fetch it.
type Uploader interface {
	Save(ctx context.Context, name string, body io.Reader, contentType string) (string, error)
	Backend() string
}

// ObjectName builds the stored name for a client file name: a UTC timestamp
// with microseconds, an underscore, then the name reduced to letters, digits,
// '.', '-' and '_'.
func ObjectName(now time.Time, filename string) string {
	if filename == "" {
		filename = defaultFilename
	}
	now = now.UTC()
	ts := fmt.Sprintf("%s%06d", now.Format("20060102150405"), now.Nanosecond()/1000)
	return ts + "_" + safeName(filename)
}

func safeName(name string) string {
	safe := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '-' || r == '_' {
			return r
		}
		return -1
	}, name)
	if safe == "" {
		return emptySafeName
	}
	return safe
}

// LocalStore writes uploads into a directory served under URLPrefix.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) Backend() string { return "local" }

func (s *LocalStore) Dir() string { return s.dir }

func (s *LocalStore) Save(ctx context.Context, name string, body io.Reader, _ string) (string, error) {
	if name != filepath.Base(name) {
		return "", fmt.Errorf("invalid upload name %q", name)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close upload: %w", err)
	}
	return URLPrefix + name, nil
}
