// Package odt fills placeholder tokens in OpenDocument text templates.
//
// An .odt file is a zip archive. Only the primary part (content.xml) is rewritten;
// every other part is copied as raw compressed bytes so that styles, images and the
// leading uncompressed "mimetype" entry come through bit-identical.
package odt

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// PrimaryPart is the name of the archive part holding the document text.
const PrimaryPart = "content.xml"

// MimeType is the media type of OpenDocument text files.
const MimeType = "application/vnd.oasis.opendocument.text"

var (
	// ErrStructural is wrapped by every error caused by the template itself.
	ErrStructural = errors.New("odt: invalid template archive")

	ErrInvalidArchive     = fmt.Errorf("%w: not a zip container", ErrStructural)
	ErrPrimaryPartMissing = fmt.Errorf("%w: %s not found", ErrStructural, PrimaryPart)
	ErrInvalidEncoding    = fmt.Errorf("%w: %s is not valid UTF-8", ErrStructural, PrimaryPart)
)

// Substitute reads the template archive from r, applies repl to the primary part and
// writes the new archive to w. Nothing is written to w unless the whole archive was
// produced successfully.
func Substitute(r io.ReaderAt, size int64, repl Replacements, w io.Writer) error {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}

	primary := findPart(zr, PrimaryPart)
	if primary == nil {
		return ErrPrimaryPartMissing
	}

	text, err := readPart(primary)
	if err != nil {
		return err
	}
	if !utf8.Valid(text) {
		return ErrInvalidEncoding
	}
	content := repl.Apply(string(text))

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range zr.File {
		if f == primary {
			if err := writePart(zw, f, []byte(content)); err != nil {
				return err
			}
			continue
		}
		if err := zw.Copy(f); err != nil {
			return fmt.Errorf("%w: copying %s: %v", ErrInvalidArchive, f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("odt: finalizing archive: %w", err)
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("odt: writing output: %w", err)
	}
	return nil
}

// SubstituteBytes is Substitute for in-memory templates.
func SubstituteBytes(template []byte, repl Replacements) ([]byte, error) {
	var out bytes.Buffer
	if err := Substitute(bytes.NewReader(template), int64(len(template)), repl, &out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// Validate checks that template opens as an archive with a readable UTF-8 primary part.
func Validate(template []byte) error {
	_, err := PrimaryText(template)
	return err
}

// PrimaryText returns the decoded primary part of an archive.
func PrimaryText(archive []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}
	primary := findPart(zr, PrimaryPart)
	if primary == nil {
		return "", ErrPrimaryPartMissing
	}
	text, err := readPart(primary)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(text) {
		return "", ErrInvalidEncoding
	}
	return string(text), nil
}

func findPart(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func readPart(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrInvalidArchive, f.Name, err)
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrInvalidArchive, f.Name, err)
	}
	return data, nil
}

// writePart writes content under f's name, method, timestamps and attributes.
func writePart(zw *zip.Writer, f *zip.File, content []byte) error {
	fh := f.FileHeader
	fh.CRC32 = 0
	fh.CompressedSize = 0
	fh.CompressedSize64 = 0
	fh.UncompressedSize = 0
	fh.UncompressedSize64 = 0

	pw, err := zw.CreateHeader(&fh)
	if err != nil {
		return fmt.Errorf("odt: creating %s: %w", f.Name, err)
	}
	if _, err := pw.Write(content); err != nil {
		return fmt.Errorf("odt: writing %s: %w", f.Name, err)
	}
	return nil
}
