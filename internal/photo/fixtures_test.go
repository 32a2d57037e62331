package photo

import (
	"path/filepath"
	"testing"
)

func imageAt(t *testing.T, dir, name string) Image {
	t.Helper()
	return Image{Path: filepath.Join(dir, name), Name: name, Ext: extension(name)}
}
