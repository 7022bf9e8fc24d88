package convert

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"dynamic-reflections/internal/utils"
)

var ErrUnsafePath = errors.New("entry escapes output directory")

// FileEntry is one file inside a scene package. Offset is relative to the
// end of the header.
type FileEntry struct {
	Name   string
	Offset uint32
	Size   uint32
}

// Package is a parsed .pkg header.
type Package struct {
	Version string
	Entries []FileEntry
	dataAt  int64
}

func readPkgString(r io.Reader) (string, error) {
	var size uint32
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return "", err
	}
	if size > 4096 {
		return "", fmt.Errorf("string of %d bytes: %w", size, ErrBadMagic)
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// ReadPackage parses the header of a .pkg stream.
func ReadPackage(r io.ReadSeeker) (*Package, error) {
	version, err := readPkgString(r)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(version, "PKGV") {
		return nil, fmt.Errorf("%w: %q", ErrBadMagic, version)
	}

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, err
	}

	pkg := &Package{Version: version, Entries: make([]FileEntry, 0, count)}
	for i := uint32(0); i < count; i++ {
		name, err := readPkgString(r)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		var pos [2]uint32
		if err := binary.Read(r, binary.LittleEndian, &pos); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		pkg.Entries = append(pkg.Entries, FileEntry{Name: name, Offset: pos[0], Size: pos[1]})
	}

	if pkg.dataAt, err = r.Seek(0, io.SeekCurrent); err != nil {
		return nil, err
	}
	return pkg, nil
}

// Open returns a reader over one entry's bytes.
func (p *Package) Open(r io.ReaderAt, e FileEntry) io.Reader {
	return io.NewSectionReader(r, p.dataAt+int64(e.Offset), int64(e.Size))
}

func safeJoin(root, name string) (string, error) {
	dest := filepath.Join(root, filepath.FromSlash(name))
	rel, err := filepath.Rel(root, dest)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%q: %w", name, ErrUnsafePath)
	}
	return dest, nil
}

// ExtractPkg writes every entry of pkgPath under outputDir.
func ExtractPkg(pkgPath, outputDir string) error {
	utils.Debug("Unpacker: opening package %s", pkgPath)
	f, err := os.Open(pkgPath)
	if err != nil {
		return err
	}
	defer f.Close()

	pkg, err := ReadPackage(f)
	if err != nil {
		return fmt.Errorf("%s: %w", pkgPath, err)
	}
	utils.Debug("Unpacker: %s with %d files", pkg.Version, len(pkg.Entries))

	for i, e := range pkg.Entries {
		dest, err := safeJoin(outputDir, e.Name)
		if err != nil {
			return err
		}
		if i%10 == 0 || i == len(pkg.Entries)-1 {
			utils.Debug("Unpacker: extracting %d/%d: %s", i+1, len(pkg.Entries), e.Name)
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		if err := writeEntry(dest, pkg.Open(f, e)); err != nil {
			return fmt.Errorf("%s: %w", e.Name, err)
		}
	}
	return nil
}

func writeEntry(dest string, r io.Reader) error {
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// BulkConvertTextures decodes every .tex under root to PNG, a few at a time.
// It returns how many were converted; failures are logged and skipped.
func BulkConvertTextures(root, outDir string) (int, error) {
	const maxConcurrency = 8

	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return 0, err
		}
	}

	var converted atomic.Int32
	var wg sync.WaitGroup
	sem := make(chan struct{}, maxConcurrency)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) != ".tex" {
			return err
		}
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			img, err := DecodeTexFile(path)
			if err != nil {
				utils.Error("Texture: %v", err)
				return
			}
			dest := strings.TrimSuffix(path, ".tex") + ".png"
			if outDir != "" {
				dest = filepath.Join(outDir, filepath.Base(dest))
			}
			if err := writePNG(dest, img); err != nil {
				utils.Error("Texture: %s: %v", dest, err)
				return
			}
			converted.Add(1)
		}()
		return nil
	})
	wg.Wait()

	utils.Info("Texture: converted %d textures under %s", converted.Load(), root)
	return int(converted.Load()), err
}
