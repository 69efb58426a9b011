// Package htmldoc compiles (possibly malformed) HTML markup into document
// tree. Parsing never fails on bad markup: unknown elements are dropped,
// unclosed ones are closed implicitly and stray markers become text.
package htmldoc

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"

	"h2d/document"
	"h2d/resource"
)

// DefaultMaxConcurrency is used when Options do not set positive value.
const DefaultMaxConcurrency = 4

// Options controls conversion.
type Options struct {
	// BaseImageURL resolves relative image sources. It is either URL
	// (http://, file://) or local directory.
	BaseImageURL string
	// MaxConcurrency bounds number of simultaneous image fetches.
	MaxConcurrency int
	// MaxImageWidth limits image display width in pixels, 0 is unlimited.
	MaxImageWidth int
	// Transcode converts images office documents cannot embed (svg, webp,
	// tiff) to PNG or JPEG and shrinks images wider than MaxImageWidth.
	Transcode bool
	// Loader fetches images. When nil loader able to read local files and
	// remote http(s) resources is used.
	Loader resource.Loader
}

// Converter turns HTML into document tree. It is safe for concurrent use,
// every conversion has its own state.
type Converter struct {
	opts   Options
	loader resource.Loader
	log    *zap.Logger
}

// New returns Converter. Nil logger disables logging.
func New(opts Options, log *zap.Logger) *Converter {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = DefaultMaxConcurrency
	}
	loader := opts.Loader
	if loader == nil {
		loader = resource.NewLoader(resource.Options{AllowLocal: true, AllowRemote: true}, log)
	}
	return &Converter{
		opts:   opts,
		loader: loader,
		log:    log.Named("htmldoc"),
	}
}

// Convert reads markup from r. Character encoding is detected from byte
// order mark or <meta> declaration, input without either is UTF-8. The only
// errors are input read failures and cancellation, no partial tree is
// returned in that case.
func (c *Converter) Convert(ctx context.Context, r io.Reader) (*document.Document, error) {
	in, err := inputReader(r)
	if err != nil {
		return nil, err
	}
	return c.convert(ctx, in)
}

// ConvertString converts markup already decoded into string.
func (c *Converter) ConvertString(ctx context.Context, markup string) (*document.Document, error) {
	return c.convert(ctx, strings.NewReader(markup))
}

func (c *Converter) convert(ctx context.Context, r io.Reader) (*document.Document, error) {
	b := newBuilder(c.opts.BaseImageURL, c.log)
	if err := b.build(ctx, r); err != nil {
		return nil, err
	}
	c.log.Debug("Markup parsed", zap.Int("blocks", len(b.doc.Blocks)), zap.Int("images", len(b.images)), zap.Int("tags", b.nextID))

	if err := c.bindImages(ctx, b.doc, b.images); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return b.doc, nil
}

// sniffLen is how much input is examined for encoding declaration.
const sniffLen = 1024

// inputReader wraps r with decoder for its character encoding. Input which
// starts with plain ASCII and has no declaration is taken as UTF-8 rather
// than windows-1252 (charset package default) since the sniffed prefix says
// nothing about the rest.
func inputReader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReaderSize(r, sniffLen)
	preview, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("unable to read input: %w", err)
	}

	enc, name, certain := charset.DetermineEncoding(preview, "")
	if !certain && name == "windows-1252" && !declaresCharset(preview) && isASCII(preview) {
		return br, nil
	}
	if enc == encoding.Nop {
		return br, nil
	}
	return transform.NewReader(br, enc.NewDecoder()), nil
}

func declaresCharset(preview []byte) bool {
	return bytes.Contains(bytes.ToLower(preview), []byte("charset"))
}

func isASCII(preview []byte) bool {
	for _, c := range preview {
		if c >= 0x80 {
			return false
		}
	}
	return true
}
