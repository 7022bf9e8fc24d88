package utils

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// AssetRoots are searched in order. Extracted .pkg archives are appended at startup.
var AssetRoots = []string{"assets"}

var errFound = errors.New("found")

// ResolveAssetPath returns relPath under the first root holding it, or under
// the first root when none does.
func ResolveAssetPath(relPath string) string {
	for _, root := range AssetRoots {
		p := filepath.Join(root, relPath)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return filepath.Join(AssetRoots[0], relPath)
}

// FindTextureFile looks a texture up by name with or without extension.
// Decoded PNGs win over .tex sources so a conversion is reused.
func FindTextureFile(name string) string {
	if name == "" {
		return ""
	}

	cleanName := strings.TrimSuffix(strings.TrimSuffix(name, ".tex"), ".png")
	extensions := []string{".png", ".tex"}

	for _, root := range AssetRoots {
		for _, dir := range []string{root, filepath.Join(root, "textures")} {
			if p := filepath.Join(dir, name); filepath.Ext(name) != "" && fileExists(p) {
				return p
			}
			for _, ext := range extensions {
				if p := filepath.Join(dir, cleanName+ext); fileExists(p) {
					return p
				}
			}
		}
	}

	// Deep search by base name.
	var foundPath string
	target := filepath.Base(cleanName)
	for _, root := range AssetRoots {
		if !fileExists(root) {
			continue
		}
		filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			ext := filepath.Ext(path)
			if (ext == ".png" || ext == ".tex") && strings.TrimSuffix(filepath.Base(path), ext) == target {
				foundPath = path
				return errFound
			}
			return nil
		})
		if foundPath != "" {
			break
		}
	}
	return foundPath
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
