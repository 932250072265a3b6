package stylefile

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/mesh-intelligence/styles/pkg/types"
)

var fileNameReplacer = strings.NewReplacer("/", "_", "\\", "_")

// FileName returns the backup file name for a style: the NFC form of the
// name with path separators replaced, plus the style file extension.
func FileName(styleName string) string {
	return fileNameReplacer.Replace(norm.NFC.String(styleName)) + types.StyleFileExt
}

// Path returns the backup file path for styleName inside dir.
func Path(dir, styleName string) string {
	return filepath.Join(dir, FileName(styleName))
}

// Save writes doc to its backup file in dir and returns the path. An
// existing file is replaced only when overwrite is set; otherwise Save
// fails with types.ErrOverwriteRefused. The file is written to a temporary
// name and renamed into place, so readers never see a partial document.
func Save(dir string, doc Document, overwrite bool) (string, error) {
	path := Path(dir, doc.Name)
	if !overwrite {
		_, err := os.Stat(path)
		if err == nil {
			return "", fmt.Errorf("%w: %s", types.ErrOverwriteRefused, path)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %v", types.ErrIOFailure, err)
		}
	}

	data, err := Marshal(doc)
	if err != nil {
		return "", err
	}
	if err := writeAtomic(path, data); err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrIOFailure, err)
	}
	return path, nil
}

// Load reads and decodes the style document at path.
func Load(path string) (*Parsed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrIOFailure, err)
	}
	defer f.Close()

	doc, err := Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".dtstyle-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing style file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("setting file mode: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
