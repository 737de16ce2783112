// Package pkgindex builds the registry behind $(find-pkg-share). It walks
// configured search paths for package.xml manifests and maps each package
// name to its share directory (the directory holding the manifest).
package pkgindex

import (
	"context"
	"encoding/xml"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vk/launchcompose/internal/ctxlog"
)

// NotFoundError is returned when a package name is absent from the index.
type NotFoundError struct {
	Package string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("package %q not found in any configured package path", e.Package)
}

// Index maps package names to share directories.
type Index struct {
	shares map[string]string
}

// manifest is the subset of a package.xml we care about.
type manifest struct {
	XMLName xml.Name `xml:"package"`
	Name    string   `xml:"name"`
}

// New returns an empty index.
func New() *Index {
	return &Index{shares: make(map[string]string)}
}

// Build walks the given roots and indexes every package.xml found. Earlier
// roots shadow later ones, and the first manifest found for a name wins,
// matching overlay ordering of package search paths.
func Build(ctx context.Context, roots []string) (*Index, error) {
	logger := ctxlog.FromContext(ctx)
	idx := New()

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			if os.IsNotExist(err) {
				logger.Warn("Package path does not exist, skipping.", "path", root)
				continue
			}
			return nil, fmt.Errorf("error accessing package path %s: %w", root, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("package path %s is not a directory", root)
		}

		err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || d.Name() != "package.xml" {
				return nil
			}
			name, err := readManifest(p)
			if err != nil {
				return err
			}
			if prev, ok := idx.shares[name]; ok {
				logger.Debug("Package already indexed, keeping first match.", "package", name, "kept", prev, "ignored", filepath.Dir(p))
				return nil
			}
			idx.shares[name] = filepath.Dir(p)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("error walking package path %s: %w", root, err)
		}
	}

	logger.Debug("Package index built.", "packages", len(idx.shares))
	return idx, nil
}

func readManifest(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var m manifest
	if err := xml.Unmarshal(data, &m); err != nil {
		return "", fmt.Errorf("malformed manifest %s: %w", path, err)
	}
	if m.Name == "" {
		return "", fmt.Errorf("manifest %s declares no package name", path)
	}
	return m.Name, nil
}

// Add registers a package share directory directly, bypassing discovery.
func (i *Index) Add(name, dir string) {
	i.shares[name] = dir
}

// Share returns the share directory for a package.
func (i *Index) Share(name string) (string, error) {
	dir, ok := i.shares[name]
	if !ok {
		return "", &NotFoundError{Package: name}
	}
	return dir, nil
}

// Len reports how many packages are indexed.
func (i *Index) Len() int {
	return len(i.shares)
}
