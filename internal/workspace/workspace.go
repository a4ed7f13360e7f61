// Package workspace reads and writes the artifacts of an encrypt/decrypt run:
// the raw source, the cipher text, its metadata and the decrypted text.
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/danielpatrickdp/splitshift/internal/cipher"
)

// #region errors
var (
	ErrMissingSource = errors.New("source text not found")
	ErrMissingCipher = errors.New("cipher text not found")
	// ErrInvalidEncoding rejects artifacts that are not valid UTF-8; their
	// bytes could not pass through the cipher unchanged.
	ErrInvalidEncoding = errors.New("text is not valid UTF-8")
	// ErrMetadataMissing wraps cipher.ErrInvalidMetadata so an absent file
	// takes the same fallback path as a corrupt one.
	ErrMetadataMissing = fmt.Errorf("%w: metadata file not found", cipher.ErrInvalidMetadata)
)

// #endregion errors

// #region config

const (
	DefaultRawFile  = "raw_text.txt"
	DefaultEncFile  = "encrypted_text.txt"
	DefaultMetaFile = "encrypted_text_meta.json"
	DefaultDecFile  = "decrypted_text.txt"
)

// Workspace names the four artifact files. Relative names resolve against Dir.
type Workspace struct {
	Dir      string
	RawFile  string
	EncFile  string
	MetaFile string
	DecFile  string
}

// New returns a workspace rooted at dir with the default file names.
func New(dir string) Workspace {
	return Workspace{
		Dir:      dir,
		RawFile:  DefaultRawFile,
		EncFile:  DefaultEncFile,
		MetaFile: DefaultMetaFile,
		DecFile:  DefaultDecFile,
	}
}

// Path resolves name against the workspace directory.
func (w Workspace) Path(name string) string {
	if filepath.IsAbs(name) || w.Dir == "" {
		return name
	}
	return filepath.Join(w.Dir, name)
}

// #endregion config

// #region source

// ReadSource returns the raw text. A missing file is ErrMissingSource and
// bytes that are not UTF-8 are ErrInvalidEncoding.
func (w Workspace) ReadSource() (string, error) {
	return w.read(w.RawFile, ErrMissingSource)
}

// WriteSource replaces the raw text.
func (w Workspace) WriteSource(text string) error {
	return writeAtomic(w.Path(w.RawFile), []byte(text))
}

// #endregion source

// #region cipher

// WriteCipher persists the cipher text and its metadata. Metadata from an
// earlier run is removed first, so a failed write never leaves it paired with
// new cipher text.
func (w Workspace) WriteCipher(text string, meta cipher.Metadata) error {
	data, err := cipher.MarshalMetadata(meta)
	if err != nil {
		return err
	}
	metaPath := w.Path(w.MetaFile)
	if err := removeIfExists(metaPath); err != nil {
		return fmt.Errorf("remove stale metadata: %w", err)
	}
	if err := writeAtomic(w.Path(w.EncFile), []byte(text)); err != nil {
		return fmt.Errorf("write cipher: %w", err)
	}
	if err := writeAtomic(metaPath, data); err != nil {
		_ = removeIfExists(metaPath)
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

// ReadCipher returns the cipher text. A missing file is ErrMissingCipher and
// bytes that are not UTF-8 are ErrInvalidEncoding.
func (w Workspace) ReadCipher() (string, error) {
	return w.read(w.EncFile, ErrMissingCipher)
}

// ReadMetadata loads and checks the metadata against cipherText. Every
// failure wraps cipher.ErrInvalidMetadata.
func (w Workspace) ReadMetadata(cipherText string) (cipher.Metadata, error) {
	data, err := os.ReadFile(w.Path(w.MetaFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrMetadataMissing
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cipher.ErrInvalidMetadata, err)
	}
	meta, err := cipher.ParseMetadata(data)
	if err != nil {
		return nil, err
	}
	if err := cipher.CheckMetadata(meta, cipherText); err != nil {
		return nil, err
	}
	return meta, nil
}

// #endregion cipher

// #region decrypted

// WriteDecrypted persists the decrypted text.
func (w Workspace) WriteDecrypted(text string) error {
	return writeAtomic(w.Path(w.DecFile), []byte(text))
}

// ReadDecrypted returns the decrypted text.
func (w Workspace) ReadDecrypted() (string, error) {
	return w.read(w.DecFile, fs.ErrNotExist)
}

// #endregion decrypted

// #region helpers

func (w Workspace) read(name string, missing error) (string, error) {
	path := w.Path(name)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", missing, path)
		}
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s", ErrInvalidEncoding, path)
	}
	return string(data), nil
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// writeAtomic writes through a temp file in the target directory and renames
// it into place.
func writeAtomic(dest string, data []byte) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write %s: %w", dest, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("sync %s: %w", dest, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close %s: %w", dest, err)
	}
	_ = os.Chmod(tmpPath, 0o644)
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename %s: %w", dest, err)
	}
	return nil
}

// #endregion helpers
