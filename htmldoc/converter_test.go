package htmldoc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"h2d/document"
	"h2d/resource"
)

// smiley is a 5x5 PNG.
const smiley = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAUAAAAFCAYAAACNbyblAAAAHElEQVQI12P4//8/w38GIAXDIBKE0DHxgljNBAAO9TXL0Y4OHwAAAABJRU5ErkJggg=="

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.NRGBA{200, 30, 30, 255})
		}
	}
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("unable to encode test image: %v", err)
	}
	return buf.Bytes()
}

// pngLoader serves 4x2 PNG for every uri in known, anything else is not
// found. Requested URIs are recorded.
type pngLoader struct {
	data  []byte
	known map[string]bool

	mu        sync.Mutex
	requested []string
}

func newPNGLoader(t *testing.T, known ...string) *pngLoader {
	l := &pngLoader{data: pngOf(t, 4, 2), known: make(map[string]bool)}
	for _, k := range known {
		l.known[k] = true
	}
	return l
}

func (l *pngLoader) Fetch(_ context.Context, uri string) (*resource.Resource, error) {
	l.mu.Lock()
	l.requested = append(l.requested, uri)
	l.mu.Unlock()
	if !l.known[uri] {
		return nil, fmt.Errorf("%s: %w", uri, resource.ErrNotFound)
	}
	return &resource.Resource{Data: l.data, ContentType: "image/png"}, nil
}

func allImages(doc *document.Document) []*document.Image {
	var out []*document.Image
	for img := range doc.Images() {
		out = append(out, img)
	}
	return out
}

func TestConvert_Images(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		opts   Options
		// expected display sizes, nil when no image must survive
		sizes  [][2]int
		blocks int
		text   string
	}{
		{
			name:   "intrinsic size",
			markup: `<img src="a.png">`,
			sizes:  [][2]int{{4, 2}},
			blocks: 1,
		},
		{
			name:   "both dimensions",
			markup: `<img src="a.png" width="42" height="42">`,
			sizes:  [][2]int{{42, 42}},
			blocks: 1,
		},
		{
			name:   "width keeps aspect ratio",
			markup: `<img src="a.png" width="40">`,
			sizes:  [][2]int{{40, 20}},
			blocks: 1,
		},
		{
			name:   "height from style",
			markup: `<img src="a.png" style="height:10px">`,
			sizes:  [][2]int{{20, 10}},
			blocks: 1,
		},
		{
			name:   "limited width",
			markup: `<img src="a.png" width="200" height="100">`,
			opts:   Options{MaxImageWidth: 50},
			sizes:  [][2]int{{50, 25}},
			blocks: 1,
		},
		{
			name:   "no source",
			markup: `<img alt='Smiley face' width='42' height='42'>`,
			blocks: 0,
		},
		{
			name:   "not found",
			markup: `<img src="missing.png">`,
			blocks: 0,
		},
		{
			name:   "failed image keeps text",
			markup: `<p>before <img src="missing.png"> after</p><p><img src="a.png"></p>`,
			sizes:  [][2]int{{4, 2}},
			blocks: 2,
			text:   "before after",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			opts.Loader = newPNGLoader(t, "a.png")
			doc, err := New(opts, zaptest.NewLogger(t)).ConvertString(context.Background(), tt.markup)
			if err != nil {
				t.Fatal(err)
			}
			if len(doc.Blocks) != tt.blocks {
				t.Fatalf("got %d blocks, want %d", len(doc.Blocks), tt.blocks)
			}
			var sizes [][2]int
			for _, img := range allImages(doc) {
				if len(img.Data) == 0 || img.ContentType != "image/png" {
					t.Errorf("image %s not bound: %d bytes %q", img.Source, len(img.Data), img.ContentType)
				}
				sizes = append(sizes, [2]int{img.Width, img.Height})
			}
			if !slices.Equal(sizes, tt.sizes) {
				t.Errorf("sizes %v, want %v", sizes, tt.sizes)
			}
			if tt.text != "" {
				if got := doc.Blocks[0].Paragraph.Text(); got != tt.text {
					t.Errorf("text %q, want %q", got, tt.text)
				}
			}
		})
	}
}

func TestConvert_ImageDefaultLoader(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   int
	}{
		{name: "data uri", markup: `<img src='` + smiley + `' alt='Smiley face' width='42' height='42'>`, want: 1},
		{name: "unsupported scheme", markup: `<img src='tcp://192.168.0.1:53/attach.jpg'>`, want: 0},
		{name: "broken data", markup: `<img src='data:image/png;base64,AAAA'>`, want: 0},
		{name: "missing file", markup: `<img src='` + filepath.ToSlash(filepath.Join(t.TempDir(), "none.png")) + `'>`, want: 0},
	}
	c := New(Options{}, zaptest.NewLogger(t))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := c.ConvertString(context.Background(), tt.markup)
			if err != nil {
				t.Fatal(err)
			}
			if n := len(allImages(doc)); n != tt.want {
				t.Errorf("got %d images, want %d", n, tt.want)
			}
			if tt.want == 0 && len(doc.Blocks) != 0 {
				t.Errorf("got %d blocks, want none", len(doc.Blocks))
			}
		})
	}
}

func TestConvert_ImageRun(t *testing.T) {
	l := newPNGLoader(t, "a.png")
	doc, err := New(Options{Loader: l}, zaptest.NewLogger(t)).ConvertString(context.Background(),
		`<a href="http://example.com"><img id="pic" src="a.png" alt="A" border="1"></a>`)
	if err != nil {
		t.Fatal(err)
	}
	ps := paragraphs(t, doc)
	if len(ps) != 1 || len(ps[0].Runs) != 1 {
		t.Fatalf("unexpected tree:\n%s", doc)
	}
	r := ps[0].Runs[0]
	if r.Kind != document.RunImage || r.Image.Alt != "A" {
		t.Errorf("run = %+v", r)
	}
	if !r.Style.Border.IsValid() || r.Style.Link != "http://example.com" {
		t.Errorf("style = %+v, want border and link", r.Style)
	}
	if !slices.Equal(ps[0].Bookmarks, []string{"pic"}) {
		t.Errorf("bookmarks %q", ps[0].Bookmarks)
	}
}

func TestConvert_MissingImageKeepsBookmarks(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   [][]string
	}{
		{
			name:   "moved to next paragraph",
			markup: `<p><img id="fig" src="missing.png"></p><p id="next"><a href="#fig">see</a></p>`,
			want:   [][]string{{"fig", "next"}},
		},
		{
			name:   "moved to previous paragraph at end",
			markup: `<p>text</p><p><a name="tail"></a><img src="missing.png"></p>`,
			want:   [][]string{{"tail"}},
		},
		{
			name:   "kept alone",
			markup: `<img id="only" src="missing.png">`,
			want:   [][]string{{"only"}},
		},
		{
			name:   "inside table cell",
			markup: `<table><tr><td><img id="cell" src="missing.png"><p>after</p></td></tr></table>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := New(Options{Loader: newPNGLoader(t)}, zaptest.NewLogger(t)).ConvertString(context.Background(), tt.markup)
			if err != nil {
				t.Fatal(err)
			}
			if tt.want == nil {
				if len(doc.Blocks) != 1 || doc.Blocks[0].Table == nil {
					t.Fatalf("unexpected tree:\n%s", doc)
				}
				cell := doc.Blocks[0].Table.Rows[0].Cells[0]
				if len(cell.Blocks) != 1 || !slices.Equal(cell.Blocks[0].Paragraph.Bookmarks, []string{"cell"}) {
					t.Errorf("unexpected cell:\n%s", doc)
				}
				return
			}
			ps := paragraphs(t, doc)
			var got [][]string
			for _, p := range ps {
				if len(p.Bookmarks) > 0 {
					got = append(got, p.Bookmarks)
				}
			}
			if !slices.EqualFunc(got, tt.want, slices.Equal[[]string]) {
				t.Errorf("bookmarks = %q, want %q\n%s", got, tt.want, doc)
			}
		})
	}
}

func TestConvert_ImageOrder(t *testing.T) {
	const n = 6
	data := make([][]byte, n+1)
	for i := 1; i <= n; i++ {
		data[i] = pngOf(t, i, 1)
	}
	loader := resource.LoaderFunc(func(ctx context.Context, uri string) (*resource.Resource, error) {
		var i int
		if _, err := fmt.Sscanf(uri, "img%d", &i); err != nil {
			return nil, err
		}
		// later images complete first
		select {
		case <-time.After(time.Duration(n-i) * 5 * time.Millisecond):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return &resource.Resource{Data: data[i]}, nil
	})

	var sb strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&sb, `<p>text %d <img src="img%d"></p>`, i, i)
	}
	doc, err := New(Options{Loader: loader, MaxConcurrency: n}, zaptest.NewLogger(t)).
		ConvertString(context.Background(), sb.String())
	if err != nil {
		t.Fatal(err)
	}
	imgs := allImages(doc)
	if len(imgs) != n {
		t.Fatalf("got %d images, want %d", len(imgs), n)
	}
	for i, img := range imgs {
		if img.Source != fmt.Sprintf("img%d", i+1) || img.Width != i+1 {
			t.Errorf("image %d: %s width %d", i, img.Source, img.Width)
		}
		if got, want := doc.Blocks[i].Paragraph.Runs[1].Image, img; got != want {
			t.Errorf("image %d is not in its paragraph", i)
		}
	}
}

func TestConvert_ImageFetchedOnce(t *testing.T) {
	var calls, running, peak atomic.Int32
	data := pngOf(t, 2, 2)
	loader := resource.LoaderFunc(func(ctx context.Context, uri string) (*resource.Resource, error) {
		calls.Add(1)
		cur := running.Add(1)
		defer running.Add(-1)
		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		return &resource.Resource{Data: data}, nil
	})

	markup := `<img src="a"><img src="b"><img src="a"><img src="c"><img src="a"><img src="d">`
	doc, err := New(Options{Loader: loader, MaxConcurrency: 2}, zaptest.NewLogger(t)).
		ConvertString(context.Background(), markup)
	if err != nil {
		t.Fatal(err)
	}
	if n := calls.Load(); n != 4 {
		t.Errorf("loader called %d times, want 4", n)
	}
	if p := peak.Load(); p > 2 {
		t.Errorf("%d fetches ran at once, limit is 2", p)
	}
	if n := len(allImages(doc)); n != 6 {
		t.Errorf("got %d images, want 6", n)
	}
}

func TestConvert_Cancelled(t *testing.T) {
	t.Run("before start", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		doc, err := New(Options{Loader: notFound}, zaptest.NewLogger(t)).ConvertString(ctx, "<p>text</p>")
		if doc != nil || !errors.Is(err, context.Canceled) {
			t.Errorf("got %v, %v; want nil, context.Canceled", doc, err)
		}
	})

	t.Run("during fetch", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		loader := resource.LoaderFunc(func(ctx context.Context, uri string) (*resource.Resource, error) {
			if uri == "slow" {
				cancel()
			}
			<-ctx.Done()
			return nil, ctx.Err()
		})
		doc, err := New(Options{Loader: loader, MaxConcurrency: 2}, zaptest.NewLogger(t)).
			ConvertString(ctx, `<p>a<img src="fast"></p><p>b<img src="slow"></p><p>c<img src="later"></p>`)
		if doc != nil || !errors.Is(err, context.Canceled) {
			t.Errorf("got %v, %v; want nil, context.Canceled", doc, err)
		}
	})

	t.Run("deadline", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		loader := resource.LoaderFunc(func(ctx context.Context, uri string) (*resource.Resource, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})
		doc, err := New(Options{Loader: loader}, zaptest.NewLogger(t)).ConvertString(ctx, `<img src="x">`)
		if doc != nil || !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("got %v, %v; want nil, context.DeadlineExceeded", doc, err)
		}
	})
}

func TestConvert_BaseImageURL(t *testing.T) {
	tests := []struct {
		base string
		src  string
		want string
	}{
		{base: "http://example.com/docs/", src: "img/a.png", want: "http://example.com/docs/img/a.png"},
		{base: "http://example.com/docs/page", src: "/blob/icon.png", want: "http://example.com/blob/icon.png"},
		{base: "https://example.com/", src: "//cdn.example.com/a.png", want: "https://cdn.example.com/a.png"},
		{base: "http://example.com/", src: "data:image/png;base64,AAAA", want: "data:image/png;base64,AAAA"},
		{base: "http://example.com/", src: "file:///tmp/a.png", want: "file:///tmp/a.png"},
		{base: "file:///home/user/doc/", src: "a%20b.png", want: "file:///home/user/doc/a%20b.png"},
		{base: filepath.Join("base", "dir"), src: "img/a.png", want: filepath.Join("base", "dir", "img", "a.png")},
		{base: "base", src: "/abs/a.png", want: "/abs/a.png"},
		{base: "", src: "a.png", want: "a.png"},
	}
	for _, tt := range tests {
		t.Run(tt.base+"+"+tt.src, func(t *testing.T) {
			l := newPNGLoader(t)
			_, err := New(Options{Loader: l, BaseImageURL: tt.base}, zaptest.NewLogger(t)).
				ConvertString(context.Background(), `<img src="`+tt.src+`">`)
			if err != nil {
				t.Fatal(err)
			}
			if !slices.Equal(l.requested, []string{tt.want}) {
				t.Errorf("requested %q, want %q", l.requested, tt.want)
			}
		})
	}
}

func TestConvert_Transcode(t *testing.T) {
	const svg = `<svg xmlns="http://www.w3.org/2000/svg" width="30" height="10"><rect width="30" height="10" fill="red"/></svg>`
	loader := resource.LoaderFunc(func(context.Context, string) (*resource.Resource, error) {
		return &resource.Resource{Data: []byte(svg)}, nil
	})

	for _, transcode := range []bool{false, true} {
		t.Run(fmt.Sprint(transcode), func(t *testing.T) {
			doc, err := New(Options{Loader: loader, Transcode: transcode}, zaptest.NewLogger(t)).
				ConvertString(context.Background(), `<img src="v.svg">`)
			if err != nil {
				t.Fatal(err)
			}
			imgs := allImages(doc)
			if len(imgs) != 1 {
				t.Fatalf("got %d images", len(imgs))
			}
			want := "image/svg+xml"
			if transcode {
				want = "image/png"
			}
			if imgs[0].ContentType != want || imgs[0].Width != 30 || imgs[0].Height != 10 {
				t.Errorf("got %s %dx%d, want %s 30x10", imgs[0].ContentType, imgs[0].Width, imgs[0].Height, want)
			}
		})
	}
}

func TestConvert_Encoding(t *testing.T) {
	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String("<p>héllo wörld</p>")
	if err != nil {
		t.Fatal(err)
	}
	latin, err := charmap.Windows1252.NewEncoder().String("<p>café</p>")
	if err != nil {
		t.Fatal(err)
	}
	koi8, err := charmap.KOI8R.NewEncoder().String("<p>привет</p>")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "utf-8", input: "<p>héllo wörld</p>", want: "héllo wörld"},
		{name: "utf-8 bom", input: "\xEF\xBB\xBF<p>héllo wörld</p>", want: "héllo wörld"},
		{name: "utf-16 bom", input: utf16, want: "héllo wörld"},
		{name: "undeclared legacy", input: latin, want: "café"},
		{name: "meta charset", input: `<meta http-equiv="Content-Type" content="text/html; charset=koi8-r">` + koi8, want: "привет"},
		{name: "ascii head", input: "<p>" + strings.Repeat("a", 2000) + "</p><p>ü</p>", want: "ü"},
	}
	c := New(Options{Loader: notFound}, zaptest.NewLogger(t))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := c.Convert(context.Background(), strings.NewReader(tt.input))
			if err != nil {
				t.Fatal(err)
			}
			got := texts(doc)
			if len(got) == 0 || got[len(got)-1] != tt.want {
				t.Errorf("got %q, want last paragraph %q", got, tt.want)
			}
		})
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestConvert_ReadError(t *testing.T) {
	doc, err := New(Options{Loader: notFound}, zaptest.NewLogger(t)).Convert(context.Background(), failingReader{})
	if doc != nil || err == nil || !strings.Contains(err.Error(), "disk on fire") {
		t.Errorf("got %v, %v; want read error", doc, err)
	}
}
