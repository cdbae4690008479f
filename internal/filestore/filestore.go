// Package filestore abstracts the external store that pre/post-process
// plugins stage files against. Failures are opaque to the core and
// surface as pre/post-process failures.
package filestore

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Scheme prefixes a logical file reference.
const Scheme = "lfn:"

// Store moves files between logical references and local paths.
type Store interface {
	// Fetch copies the referenced file into destDir and returns its
	// local path.
	Fetch(ctx context.Context, ref string, destDir string) (string, error)

	// Put copies a local file to the destination path in the store and
	// returns its reference.
	Put(ctx context.Context, localPath string, destination string) (string, error)

	// List returns the references stored under prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}

// IsRef reports whether s is a logical file reference.
func IsRef(s string) bool {
	return strings.HasPrefix(s, Scheme)
}

// ParseRef strips the scheme from a reference.
func ParseRef(ref string) string {
	return strings.TrimPrefix(ref, Scheme)
}

// BuildRef prepends the scheme to a store path.
func BuildRef(path string) string {
	return Scheme + strings.TrimPrefix(path, "/")
}

// DirStore is a Store backed by a local directory tree. The reference
// "lfn:grid/data/f.txt" maps to "<root>/grid/data/f.txt".
type DirStore struct {
	root string
}

// NewDirStore creates a DirStore rooted at root, creating it if needed.
func NewDirStore(root string) (*DirStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("filestore: create root %s: %w", root, err)
	}
	return &DirStore{root: root}, nil
}

// Fetch copies the referenced file into destDir.
func (s *DirStore) Fetch(_ context.Context, ref string, destDir string) (string, error) {
	src := filepath.Join(s.root, filepath.FromSlash(ParseRef(ref)))
	dest := filepath.Join(destDir, filepath.Base(src))
	if err := copyFile(src, dest); err != nil {
		return "", fmt.Errorf("filestore: fetch %s: %w", ref, err)
	}
	return dest, nil
}

// Put copies localPath under destination in the store tree.
func (s *DirStore) Put(_ context.Context, localPath string, destination string) (string, error) {
	rel := filepath.FromSlash(ParseRef(destination))
	dest := filepath.Join(s.root, rel, filepath.Base(localPath))
	if err := copyFile(localPath, dest); err != nil {
		return "", fmt.Errorf("filestore: put %s: %w", localPath, err)
	}
	relRef, err := filepath.Rel(s.root, dest)
	if err != nil {
		return "", fmt.Errorf("filestore: put %s: %w", localPath, err)
	}
	return BuildRef(filepath.ToSlash(relRef)), nil
}

// List walks the store tree under prefix and returns file references.
func (s *DirStore) List(_ context.Context, prefix string) ([]string, error) {
	base := filepath.Join(s.root, filepath.FromSlash(ParseRef(prefix)))
	var refs []string
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		refs = append(refs, BuildRef(filepath.ToSlash(rel)))
		return nil
	})
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("filestore: list %s: %w", prefix, err)
	}
	return refs, nil
}

// NopStore is a Store that moves nothing. It backs inspection commands
// that instantiate plugins without staging files.
type NopStore struct{}

func (NopStore) Fetch(_ context.Context, ref string, _ string) (string, error) {
	return "", fmt.Errorf("filestore: no store configured for %s", ref)
}

func (NopStore) Put(_ context.Context, localPath string, _ string) (string, error) {
	return "", fmt.Errorf("filestore: no store configured for %s", localPath)
}

func (NopStore) List(context.Context, string) ([]string, error) {
	return nil, nil
}

// copyFile copies src to dst, creating parent directories as needed.
func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
