// Package blob is a filesystem-backed attachment store. Locators are
// relative slash paths under the root; Resolve maps them to URLs under the
// configured base.
package blob

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type Store struct {
	root    string
	baseURL string
}

func NewStore(root, baseURL string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Store{root: root, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Save writes the blob under dir, prefixing the filename with a random id
// so repeated uploads of the same name never collide. Returns the locator.
func (s *Store) Save(r io.Reader, dir, filename string) (string, error) {
	// Strip any client-supplied path components.
	filename = filepath.Base(filename)
	if filename == "." || filename == string(filepath.Separator) || filename == "" {
		return "", fmt.Errorf("invalid file name %q", filename)
	}

	locator := path.Join(dir, uuid.NewString()+"_"+filename)

	full := filepath.Join(s.root, filepath.FromSlash(locator))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}

	f, err := os.Create(full)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(full)
		return "", err
	}
	return locator, nil
}

// Resolve turns a locator into the URL the HTTP layer serves it from.
func (s *Store) Resolve(locator string) string {
	return s.baseURL + "/" + locator
}

// Dir is the directory to mount a file server on.
func (s *Store) Dir() string {
	return s.root
}
