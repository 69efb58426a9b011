// Package wordml renders document tree as WordprocessingML parts: main
// document part, its relationships and embedded media. Packaging parts into
// the final container is left to the caller.
package wordml

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"h2d/document"
)

// Part names relative to output directory.
const (
	DocumentPart      = "document.xml"
	RelationshipsPart = "_rels/document.xml.rels"
	MediaDir          = "media"
)

const (
	nsW   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsWP  = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	nsA   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsPic = "http://schemas.openxmlformats.org/drawingml/2006/picture"
	nsRel = "http://schemas.openxmlformats.org/package/2006/relationships"

	relHyperlink = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink"
	relImage     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
)

// Media is embedded binary part.
type Media struct {
	// Name is file name inside MediaDir.
	Name        string
	ContentType string
	Data        []byte
}

// Package is a rendered document.
type Package struct {
	Document      *etree.Document
	Relationships *etree.Document
	Media         []Media
}

// Options controls output.
type Options struct {
	// Indent is number of spaces used to indent XML parts, 0 writes them
	// without formatting.
	Indent int
}

// Render builds WordprocessingML parts for doc.
func Render(ctx context.Context, doc *document.Document, log *zap.Logger) (*Package, error) {
	if log == nil {
		log = zap.NewNop()
	}
	r := newRenderer(log.Named("wordml"))

	body := r.root.CreateElement("w:body")
	if err := r.blocks(ctx, body, doc.Blocks); err != nil {
		return nil, err
	}
	// body may not end with table
	if n := len(doc.Blocks); n > 0 && doc.Blocks[n-1].Table != nil {
		body.CreateElement("w:p")
	}

	r.log.Debug("Document rendered",
		zap.Int("blocks", len(doc.Blocks)),
		zap.Int("relationships", r.nextRel),
		zap.Int("media", len(r.pkg.Media)))
	return r.pkg, nil
}

// Writer is document.Sink storing rendered parts under a directory.
type Writer struct {
	dir  string
	opts Options
	log  *zap.Logger
}

var _ document.Sink = (*Writer)(nil)

// NewWriter returns Writer for output directory dir. Nil logger disables
// logging.
func NewWriter(dir string, opts Options, log *zap.Logger) *Writer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Writer{dir: dir, opts: opts, log: log}
}

// Write renders doc and stores its parts. Existing files are overwritten.
func (w *Writer) Write(ctx context.Context, doc *document.Document) error {
	pkg, err := Render(ctx, doc, w.log)
	if err != nil {
		return err
	}
	log := w.log.Named("wordml")

	if err := w.writeXML(DocumentPart, pkg.Document); err != nil {
		return fmt.Errorf("unable to write document: %w", err)
	}
	if err := w.writeXML(RelationshipsPart, pkg.Relationships); err != nil {
		return fmt.Errorf("unable to write relationships: %w", err)
	}
	for _, m := range pkg.Media {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := filepath.Join(MediaDir, m.Name)
		if err := w.writeData(name, m.Data); err != nil {
			return fmt.Errorf("unable to write image %s: %w", m.Name, err)
		}
		log.Debug("Wrote image", zap.String("file", name), zap.String("type", m.ContentType))
	}
	return nil
}

func (w *Writer) writeXML(name string, doc *etree.Document) error {
	if w.opts.Indent > 0 {
		doc.Indent(w.opts.Indent)
	}
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return err
	}
	return w.writeData(name, buf.Bytes())
}

func (w *Writer) writeData(name string, data []byte) error {
	path := filepath.Join(w.dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
