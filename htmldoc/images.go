package htmldoc

import (
	"context"
	"math"
	"net/url"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"h2d/document"
	"h2d/resource"
	"h2d/utils/images"
)

// pendingImage is an image run waiting for its data. width and height are
// requested display size, 0 when not given.
type pendingImage struct {
	image  *document.Image
	width  int
	height int
}

// image emits placeholder run for <img>. Data is bound after parsing.
func (b *builder) image(id int, t *startTag) {
	src := strings.TrimSpace(t.attrs.Value("src"))
	if src == "" {
		b.log.Debug("Dropping image without source", zap.Int("id", id))
		return
	}

	img := &document.Image{
		Source: resolveURI(b.base, src),
		Alt:    t.attrs.Value("alt"),
	}
	b.bookmark(t.attrs.Value("id"))
	b.addRun(document.Run{Kind: document.RunImage, Image: img, Origin: id})

	border := t.style.GetAsBorder().First()
	if !border.IsValid() {
		border = t.attrBorder()
	}
	if border.IsValid() {
		runs := b.para.Runs
		runs[len(runs)-1].Style.Border = border
	}
	b.lastSpace = false

	b.images = append(b.images, &pendingImage{
		image:  img,
		width:  t.dimension("width"),
		height: t.dimension("height"),
	})
}

// resolveURI makes src absolute against base. Sources which already have a
// scheme are left alone, base without scheme is a local directory.
func resolveURI(base, src string) string {
	if base == "" || resource.Scheme(src) != "" {
		return src
	}
	if len(resource.Scheme(base)) > 1 {
		bu, err := url.Parse(base)
		if err != nil {
			return src
		}
		su, err := url.Parse(src)
		if err != nil {
			return src
		}
		return bu.ResolveReference(su).String()
	}
	if filepath.IsAbs(src) || strings.HasPrefix(src, "/") {
		return src
	}
	return filepath.Join(base, filepath.FromSlash(src))
}

type fetched struct {
	data []byte
	info resource.ImageInfo
}

// bindImages loads every distinct image source once on a bounded pool and
// fills placeholders. Images which could not be loaded are removed from the
// tree. Only cancellation is reported as an error.
func (c *Converter) bindImages(ctx context.Context, doc *document.Document, pending []*pendingImage) error {
	if len(pending) == 0 {
		return nil
	}

	var sources []string
	slots := make(map[string]int)
	for _, p := range pending {
		if _, ok := slots[p.image.Source]; !ok {
			slots[p.image.Source] = len(sources)
			sources = append(sources, p.image.Source)
		}
	}

	results := make([]*fetched, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(c.opts.MaxConcurrency, 1))
	for i, src := range sources {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res, err := c.fetchImage(gctx, src)
			if err != nil {
				if cerr := gctx.Err(); cerr != nil {
					return cerr
				}
				c.log.Warn("Unable to load image, skipping", zap.String("src", resource.Abbreviate(src)), zap.Error(err))
				return nil
			}
			results[i] = res
			return nil
		})
	}
	err := g.Wait()
	if cerr := ctx.Err(); cerr != nil {
		return cerr
	}
	if err != nil {
		return err
	}

	for _, p := range pending {
		res := results[slots[p.image.Source]]
		if res == nil {
			continue
		}
		p.image.Data = res.data
		p.image.ContentType = res.info.ContentType
		p.image.Width, p.image.Height = c.displaySize(res.info, p.width, p.height)
	}
	doc.Blocks = pruneImages(doc.Blocks)
	return nil
}

func (c *Converter) fetchImage(ctx context.Context, uri string) (*fetched, error) {
	res, err := c.loader.Fetch(ctx, uri)
	if err != nil {
		return nil, err
	}
	info, err := resource.Inspect(res.Data)
	if err != nil {
		return nil, err
	}
	data := res.Data
	if c.opts.Transcode {
		if data, info, err = resource.Transcode(data, info); err != nil {
			return nil, err
		}
		if data, info, err = resource.Downscale(data, info, c.opts.MaxImageWidth); err != nil {
			return nil, err
		}
	}
	c.log.Debug("Image loaded",
		zap.String("src", resource.Abbreviate(uri)),
		zap.String("format", info.Format),
		zap.Int("width", info.Width),
		zap.Int("height", info.Height))
	return &fetched{data: data, info: info}, nil
}

// displaySize uses requested size when both dimensions are given, otherwise
// derives the missing one from intrinsic aspect ratio. Result never exceeds
// MaxImageWidth.
func (c *Converter) displaySize(info resource.ImageInfo, w, h int) (int, int) {
	if w <= 0 || h <= 0 {
		w, h = images.FitSize(info.Width, info.Height, w, h)
	}
	if limit := c.opts.MaxImageWidth; limit > 0 && w > limit {
		h = max(int(math.Round(float64(h)*float64(limit)/float64(w))), 1)
		w = limit
	}
	return w, h
}

// pruneImages removes runs of images without data and paragraphs left
// without content. Bookmarks of removed paragraphs move to the next
// surviving paragraph of the same container.
func pruneImages(blocks []document.Block) []document.Block {
	var (
		carry []string
		last  *document.Paragraph
	)
	out := blocks[:0]
	for _, blk := range blocks {
		switch {
		case blk.Paragraph != nil:
			if !pruneRuns(blk.Paragraph) {
				carry = append(carry, blk.Paragraph.Bookmarks...)
				continue
			}
			if len(carry) > 0 {
				blk.Paragraph.Bookmarks = append(carry, blk.Paragraph.Bookmarks...)
				carry = nil
			}
			last = blk.Paragraph
		case blk.Table != nil:
			blk.Table.Caption = pruneImages(blk.Table.Caption)
			for _, row := range blk.Table.Rows {
				for _, cell := range row.Cells {
					cell.Blocks = pruneImages(cell.Blocks)
				}
			}
		}
		out = append(out, blk)
	}
	switch {
	case len(carry) == 0:
	case last != nil:
		last.Bookmarks = append(last.Bookmarks, carry...)
	default:
		out = append(out, document.Block{Paragraph: &document.Paragraph{Bookmarks: carry}})
	}
	return out
}

func pruneRuns(p *document.Paragraph) bool {
	failed := func(r *document.Run) bool {
		return r.Kind == document.RunImage && (r.Image == nil || len(r.Image.Data) == 0)
	}
	if !hasRun(p, failed) {
		return true
	}
	pre := p.Style == document.StylePreformatted

	runs := p.Runs[:0]
	gap := false
	for _, r := range p.Runs {
		if failed(&r) {
			gap = true
			continue
		}
		if gap && !pre && r.Kind == document.RunText && spaceBefore(runs) {
			// space which separated removed image from the text before it
			if r.Text = strings.TrimLeft(r.Text, " "); r.Text == "" {
				continue
			}
		}
		gap = false
		runs = append(runs, r)
	}
	p.Runs = runs

	if !pre {
		trimTrailingSpace(p)
	}
	return len(p.Runs) > 0
}

// spaceBefore reports whether text appended to runs would follow white
// space or start the line.
func spaceBefore(runs []document.Run) bool {
	n := len(runs)
	if n == 0 {
		return true
	}
	switch last := runs[n-1]; last.Kind {
	case document.RunBreak:
		return true
	case document.RunText:
		return strings.HasSuffix(last.Text, " ")
	}
	return false
}

func hasRun(p *document.Paragraph, match func(*document.Run) bool) bool {
	for i := range p.Runs {
		if match(&p.Runs[i]) {
			return true
		}
	}
	return false
}
