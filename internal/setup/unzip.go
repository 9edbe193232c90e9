package setup

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/printbed/klippctl/internal/messages"
)

// extractZip unpacks archive into dir. Entry paths are validated so a
// crafted archive cannot write outside dir.
func extractZip(archive string, dir string) error {
	reader, err := zip.OpenReader(archive)
	if err != nil {
		if reader != nil {
			_ = reader.Close()
		}
		return fmt.Errorf(messages.SetupUnpackFailedFmt, archive, err)
	}
	defer func() { _ = reader.Close() }()

	for _, file := range reader.File {
		if err := extractZipEntry(file, dir); err != nil {
			return err
		}
	}
	return nil
}

func extractZipEntry(file *zip.File, dir string) error {
	target := filepath.Join(dir, filepath.FromSlash(file.Name))
	if !strings.HasPrefix(target, filepath.Clean(dir)+string(os.PathSeparator)) {
		return fmt.Errorf(messages.SetupEntryEscapesFmt, file.Name)
	}

	if file.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	in, err := file.Open()
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	mode := file.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
