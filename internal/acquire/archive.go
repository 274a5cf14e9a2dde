package acquire

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var ErrUnsupportedArchive = errors.New("acquire: unsupported archive format")

// maxEntrySize guards against decompression bombs inside uploads.
const maxEntrySize = 64 << 20

// Unpack extracts a .zip, .tar.gz, or .tgz archive into dest. A single
// top-level directory wrapping the whole archive, the usual GitHub export
// layout, is stripped so dest is the project root.
func Unpack(archivePath, dest string) error {
	lower := strings.ToLower(archivePath)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		if err := unpackZip(archivePath, dest); err != nil {
			return err
		}
	case strings.HasSuffix(lower, ".tar.gz") || strings.HasSuffix(lower, ".tgz"):
		if err := unpackTarGz(archivePath, dest); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedArchive, filepath.Base(archivePath))
	}
	return flattenSingleRoot(dest)
}

// securePath joins name under dest, rejecting absolute names and any
// traversal outside dest.
func securePath(dest, name string) (string, error) {
	name = filepath.FromSlash(name)
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("acquire: absolute path in archive: %s", name)
	}
	p := filepath.Join(dest, name)
	if !strings.HasPrefix(p, filepath.Clean(dest)+string(os.PathSeparator)) {
		return "", fmt.Errorf("acquire: path escapes archive root: %s", name)
	}
	return p, nil
}

func writeEntry(p string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := io.Copy(f, io.LimitReader(r, maxEntrySize)); err != nil {
		return err
	}
	return f.Close()
}

func unpackZip(archivePath, dest string) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("acquire: open zip: %w", err)
	}
	defer zr.Close()

	for _, file := range zr.File {
		p, err := securePath(dest, file.Name)
		if err != nil {
			return err
		}
		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(p, 0o755); err != nil {
				return err
			}
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return fmt.Errorf("acquire: read zip entry %s: %w", file.Name, err)
		}
		err = writeEntry(p, rc, file.Mode())
		rc.Close()
		if err != nil {
			return fmt.Errorf("acquire: extract %s: %w", file.Name, err)
		}
	}
	return nil
}

func unpackTarGz(archivePath, dest string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("acquire: open archive: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("acquire: gzip: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("acquire: read tar: %w", err)
		}
		p, err := securePath(dest, hdr.Name)
		if err != nil {
			return err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(p, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeEntry(p, tr, os.FileMode(hdr.Mode)); err != nil {
				return fmt.Errorf("acquire: extract %s: %w", hdr.Name, err)
			}
		default:
			// Symlinks and specials are skipped; analysis only needs files.
		}
	}
}

// flattenSingleRoot moves the contents of a lone top-level directory up
// into dest.
func flattenSingleRoot(dest string) error {
	entries, err := os.ReadDir(dest)
	if err != nil {
		return err
	}
	if len(entries) != 1 || !entries[0].IsDir() {
		return nil
	}
	root := filepath.Join(dest, entries[0].Name())

	inner, err := os.ReadDir(root)
	if err != nil {
		return err
	}
	for _, entry := range inner {
		from := filepath.Join(root, entry.Name())
		to := filepath.Join(dest, entry.Name())
		if _, err := os.Stat(to); err == nil {
			// Name collision with the wrapper itself; keep the nesting.
			return nil
		}
		if err := os.Rename(from, to); err != nil {
			return err
		}
	}
	return os.Remove(root)
}
