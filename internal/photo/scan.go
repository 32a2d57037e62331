package photo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotADirectory is returned by Scan when the target is not a directory.
var ErrNotADirectory = errors.New("not a directory")

// Image is one candidate photo found in a scanned folder.
type Image struct {
	Path string
	Name string
	// Ext is the lower-cased extension without the leading dot.
	Ext string
}

// Scan lists the JPG/PNG files directly inside dir, sorted by file name.
// Subdirectories are not descended into. An empty result is not an error.
func Scan(dir string) ([]Image, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotADirectory, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	var images []Image
	for _, entry := range entries {
		if entry.IsDir() || !isImageFile(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		// Stat follows symlinks so a link to a regular photo still counts.
		fi, err := os.Stat(path)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		images = append(images, Image{
			Path: path,
			Name: entry.Name(),
			Ext:  extension(entry.Name()),
		})
	}

	sort.Slice(images, func(i, j int) bool {
		return images[i].Name < images[j].Name
	})
	return images, nil
}

// Names returns the file names of images, in order.
func Names(images []Image) []string {
	names := make([]string, len(images))
	for i, img := range images {
		names[i] = img.Name
	}
	return names
}

// isImageFile checks for the extensions the reporting site accepts.
func isImageFile(name string) bool {
	switch extension(name) {
	case "jpg", "jpeg", "png":
		return true
	}
	return false
}

func extension(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}
