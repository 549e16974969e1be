package download

import (
	"archive/tar"
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"

	"github.com/vslauncher/launcher/internal/domain"
	"github.com/vslauncher/launcher/internal/fsstore"
)

// ArchiveFormat identifies a supported archive container
type ArchiveFormat int

const (
	FormatUnknown ArchiveFormat = iota
	FormatTarGz
	FormatZip
)

var (
	gzipMagic     = []byte{0x1f, 0x8b}
	zipMagic      = []byte("PK\x03\x04")
	zipEmptyMagic = []byte("PK\x05\x06")
)

// DetectFormat sniffs the archive container from its leading bytes
func DetectFormat(header []byte) ArchiveFormat {
	switch {
	case bytes.HasPrefix(header, gzipMagic):
		return FormatTarGz
	case bytes.HasPrefix(header, zipMagic), bytes.HasPrefix(header, zipEmptyMagic):
		return FormatZip
	default:
		return FormatUnknown
	}
}

// Extract unpacks archivePath into targetDir, which must not exist yet.
// Entries that would land outside targetDir are rejected.
func Extract(archivePath, targetDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return archiveError("Failed to open archive", err, archivePath)
	}
	defer f.Close()

	header := make([]byte, 4)
	n, _ := io.ReadFull(f, header)
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return archiveError("Failed to rewind archive", err, archivePath)
	}

	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return fsstore.DiskError(err, "Failed to create staging directory", targetDir)
	}

	switch DetectFormat(header[:n]) {
	case FormatTarGz:
		return extractTarGz(f, targetDir)
	case FormatZip:
		info, err := f.Stat()
		if err != nil {
			return archiveError("Failed to stat archive", err, archivePath)
		}
		return extractZip(f, info.Size(), targetDir)
	default:
		return archiveError("Unsupported archive format", nil, archivePath)
	}
}

func extractTarGz(r io.Reader, targetDir string) error {
	gz, err := gzip.NewReader(bufio.NewReader(r))
	if err != nil {
		return archiveError("Corrupt gzip stream", err, targetDir)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return archiveError("Corrupt tar stream", err, targetDir)
		}

		destPath, err := entryPath(targetDir, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(destPath, 0755); err != nil {
				return fsstore.DiskError(err, "Failed to create directory", destPath)
			}
		case tar.TypeReg:
			if err := writeEntry(destPath, tr, hdr.FileInfo().Mode().Perm()); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := writeSymlink(targetDir, destPath, hdr.Linkname); err != nil {
				return err
			}
		default:
			// Hard links, devices and fifos are not part of a game install
			continue
		}
	}
}

func extractZip(r io.ReaderAt, size int64, targetDir string) error {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return archiveError("Corrupt zip archive", err, targetDir)
	}

	for _, file := range zr.File {
		if err := extractZipFile(file, targetDir); err != nil {
			return err
		}
	}
	return nil
}

// extractZipFile extracts a single file from a zip archive
func extractZipFile(file *zip.File, targetDir string) error {
	destPath, err := entryPath(targetDir, file.Name)
	if err != nil {
		return err
	}

	if file.FileInfo().IsDir() {
		if err := os.MkdirAll(destPath, 0755); err != nil {
			return fsstore.DiskError(err, "Failed to create directory", destPath)
		}
		return nil
	}

	src, err := file.Open()
	if err != nil {
		return archiveError("Failed to open archive entry", err, file.Name)
	}
	defer src.Close()

	return writeEntry(destPath, src, file.Mode().Perm())
}

func writeEntry(destPath string, src io.Reader, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fsstore.DiskError(err, "Failed to create directory", filepath.Dir(destPath))
	}
	if perm == 0 {
		perm = 0644
	}

	dst, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm|0200)
	if err != nil {
		return fsstore.DiskError(err, "Failed to create file", destPath)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		// Read side failures mean the archive is damaged; write side failures are disk problems
		var pathErr *os.PathError
		if errors.As(err, &pathErr) || fsstore.IsNoSpace(err) {
			return fsstore.DiskError(err, "Failed to write file", destPath)
		}
		return archiveError("Truncated archive entry", err, destPath)
	}
	if err := dst.Close(); err != nil {
		return fsstore.DiskError(err, "Failed to close file", destPath)
	}
	return nil
}

func writeSymlink(targetDir, destPath, linkname string) error {
	if filepath.IsAbs(linkname) {
		return archiveError(fmt.Sprintf("Absolute symlink target %q", linkname), nil, destPath)
	}
	resolved := filepath.Join(filepath.Dir(destPath), linkname)
	if !isSubPath(targetDir, resolved) {
		return archiveError(fmt.Sprintf("Symlink escapes install directory: %q", linkname), nil, destPath)
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fsstore.DiskError(err, "Failed to create directory", filepath.Dir(destPath))
	}
	if err := os.Symlink(linkname, destPath); err != nil {
		return fsstore.DiskError(err, "Failed to create symlink", destPath)
	}
	return nil
}

// entryPath resolves an archive entry name inside targetDir, rejecting zip-slip paths
func entryPath(targetDir, name string) (string, error) {
	clean := filepath.FromSlash(strings.TrimPrefix(name, "./"))
	if filepath.IsAbs(clean) || strings.HasPrefix(name, "/") {
		return "", archiveError(fmt.Sprintf("Invalid file path in archive: %s", name), nil, targetDir)
	}
	destPath := filepath.Join(targetDir, clean)
	if !isSubPath(targetDir, destPath) {
		return "", archiveError(fmt.Sprintf("Invalid file path in archive: %s", name), nil, targetDir)
	}
	if err := rejectSymlinkedPath(targetDir, destPath); err != nil {
		return "", err
	}
	return destPath, nil
}

// rejectSymlinkedPath fails when any existing component of destPath below targetDir
// is a symlink, so chained links extracted earlier cannot redirect a write outside targetDir
func rejectSymlinkedPath(targetDir, destPath string) error {
	rel, err := filepath.Rel(targetDir, destPath)
	if err != nil {
		return archiveError("Invalid file path in archive", err, destPath)
	}

	current := targetDir
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if part == "" || part == "." {
			continue
		}
		current = filepath.Join(current, part)

		info, err := os.Lstat(current)
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		if err != nil {
			return fsstore.DiskError(err, "Failed to inspect extracted path", current)
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return archiveError(fmt.Sprintf("Archive entry passes through a symlink: %s", current), nil, destPath)
		}
	}
	return nil
}

// isSubPath checks if child is a subpath of parent
func isSubPath(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return !filepath.IsAbs(rel) && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func archiveError(message string, cause error, path string) *domain.AppError {
	return domain.NewAppErrorWithCause(domain.ErrArchive, message, 422, cause, map[string]any{"path": path})
}
