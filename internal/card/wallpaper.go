package card

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fogleman/gg"
)

// ListWallpapers returns the image files in dir, sorted by name.
func ListWallpapers(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read wallpaper directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg", ".png":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// LoadWallpaper decodes one wallpaper image.
func LoadWallpaper(path string) (image.Image, error) {
	img, err := gg.LoadImage(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load wallpaper %s: %w", path, err)
	}
	return img, nil
}
