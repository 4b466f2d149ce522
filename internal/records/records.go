// Package records reads raw participant files and hands the engine decoded
// text plus the audit digest of the exact bytes on disk.
package records

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"
)

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// File is one participants file: the raw bytes' audit digest and the
// decoded text the normalizer consumes. The raw digest changes with
// formatting and row order, so it never influences the draw; selection uses
// the canonical snapshot digest instead.
type File struct {
	Name      string
	RawBytes  int
	RawSHA256 string
	Text      string
}

// Read loads a participants file. The byte-for-byte digest is taken before
// decoding; a UTF-8 BOM is tolerated (Excel exports carry one) and stripped
// from the decoded text only. Name keeps just the base name, so reports do
// not vary with the directory the file was read from.
func Read(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read participants file: %v", err)
	}
	sum := sha256.Sum256(raw)

	text := bytes.TrimPrefix(raw, utf8BOM)
	if !utf8.Valid(text) {
		return nil, fmt.Errorf("cannot read participants file as UTF-8: %s", filepath.Base(path))
	}

	return &File{
		Name:      filepath.Base(path),
		RawBytes:  len(raw),
		RawSHA256: hex.EncodeToString(sum[:]),
		Text:      string(text),
	}, nil
}

// FromBytes wraps already-loaded content (e.g. an HTTP upload) with the
// same decoding rules as Read.
func FromBytes(name string, raw []byte) (*File, error) {
	sum := sha256.Sum256(raw)
	text := bytes.TrimPrefix(raw, utf8BOM)
	if !utf8.Valid(text) {
		return nil, fmt.Errorf("cannot read participants file as UTF-8: %s", name)
	}
	return &File{
		Name:      name,
		RawBytes:  len(raw),
		RawSHA256: hex.EncodeToString(sum[:]),
		Text:      string(text),
	}, nil
}
