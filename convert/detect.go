package convert

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/h2non/filetype"
)

// headerLen is how much of a file is examined to detect its type.
const headerLen = 512

var (
	htmlType       = filetype.NewType("html", "text/html")
	htmlExtensions = []string{".html", ".htm", ".xhtml", ".shtml"}
)

func init() {
	filetype.AddMatcher(htmlType, isHTMLMarkup)
}

// isHTMLMarkup recognizes markup by its opening: doctype, html, head or body
// tag, optionally preceded by byte order mark, white space and xml
// declaration.
func isHTMLMarkup(buf []byte) bool {
	buf = bytes.TrimPrefix(buf, []byte("\xEF\xBB\xBF"))
	buf = bytes.ToLower(bytes.TrimLeft(buf, " \t\r\n\f"))
	if bytes.HasPrefix(buf, []byte("<?xml")) {
		return bytes.Contains(buf, []byte("<!doctype html")) || bytes.Contains(buf, []byte("<html"))
	}
	for _, prefix := range []string{"<!doctype html", "<html", "<head", "<body"} {
		if bytes.HasPrefix(buf, []byte(prefix)) {
			return true
		}
	}
	return false
}

func hasHTMLExtension(name string) bool {
	return slices.Contains(htmlExtensions, strings.ToLower(filepath.Ext(name)))
}

func readHeader(r io.Reader) ([]byte, error) {
	buf := make([]byte, headerLen)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	return buf[:n], nil
}

// isArchiveFile reports whether file at path is zip archive. Only files with
// .zip extension are considered.
func isArchiveFile(path string) (bool, error) {
	if !strings.EqualFold(filepath.Ext(path), ".zip") {
		return false, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head, err := readHeader(f)
	if err != nil {
		return false, err
	}
	return filetype.Is(head, "zip"), nil
}

// isHTMLFile reports whether file at path should be converted: either it has
// one of the markup extensions or its content looks like markup.
func isHTMLFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	if hasHTMLExtension(path) {
		return true, nil
	}
	head, err := readHeader(f)
	if err != nil {
		return false, err
	}
	return filetype.IsType(head, htmlType), nil
}

func isHTMLInArchive(f *zip.File) (bool, error) {
	if hasHTMLExtension(f.Name) {
		return true, nil
	}
	r, err := f.Open()
	if err != nil {
		return false, err
	}
	defer r.Close()

	head, err := readHeader(r)
	if err != nil {
		return false, err
	}
	return filetype.IsType(head, htmlType), nil
}
