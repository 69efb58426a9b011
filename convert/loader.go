package convert

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"path"
	"strings"

	"go.uber.org/zap"

	"h2d/config"
	"h2d/resource"
)

// newLoader returns image loader configured from cfg. Relative local paths
// are resolved against baseDir.
func newLoader(cfg *config.ImagesConfig, baseDir string, log *zap.Logger) resource.Loader {
	return resource.NewLoader(resource.Options{
		AllowLocal:  cfg.AllowLocal,
		AllowRemote: cfg.AllowRemote,
		MaxSize:     cfg.MaxSize,
		Timeout:     cfg.FetchTimeout,
		UserAgent:   cfg.UserAgent,
		BaseDir:     baseDir,
	}, log)
}

// archiveLoader serves relative image sources of a document stored in zip
// archive from the same archive. Everything else goes to fallback.
type archiveLoader struct {
	files    map[string]*zip.File
	dir      string
	cfg      *config.ImagesConfig
	fallback resource.Loader
}

func indexArchive(r *zip.Reader) map[string]*zip.File {
	files := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		if !f.FileInfo().IsDir() {
			files[f.Name] = f
		}
	}
	return files
}

// newArchiveLoader returns loader for document stored under entry name in
// the archive indexed by files.
func newArchiveLoader(files map[string]*zip.File, entry string, cfg *config.ImagesConfig, fallback resource.Loader) *archiveLoader {
	return &archiveLoader{
		files:    files,
		dir:      path.Dir(entry),
		cfg:      cfg,
		fallback: fallback,
	}
}

func (l *archiveLoader) Fetch(ctx context.Context, uri string) (*resource.Resource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, ok := l.lookup(uri)
	if !ok {
		return l.fallback.Fetch(ctx, uri)
	}
	if !l.cfg.AllowLocal {
		return nil, fmt.Errorf("%w: access to local files is disabled", resource.ErrUnsupportedScheme)
	}
	if l.cfg.MaxSize > 0 && int64(f.UncompressedSize64) > l.cfg.MaxSize {
		return nil, fmt.Errorf("archive entry '%s' of %d bytes: %w", f.Name, f.UncompressedSize64, resource.ErrTooLarge)
	}

	r, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("unable to open archive entry '%s': %w", f.Name, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read archive entry '%s': %w", f.Name, err)
	}
	return &resource.Resource{Data: data, ContentType: mime.TypeByExtension(strings.ToLower(path.Ext(f.Name)))}, nil
}

// lookup finds archive entry for relative uri, query and fragment are
// ignored.
func (l *archiveLoader) lookup(uri string) (*zip.File, bool) {
	uri = strings.TrimSpace(uri)
	if uri == "" || resource.Scheme(uri) != "" || strings.HasPrefix(uri, "/") || strings.HasPrefix(uri, `\`) {
		return nil, false
	}
	if i := strings.IndexAny(uri, "?#"); i >= 0 {
		uri = uri[:i]
	}
	if p, err := url.PathUnescape(uri); err == nil {
		uri = p
	}
	name := path.Join(l.dir, strings.ReplaceAll(uri, `\`, "/"))
	if name == ".." || strings.HasPrefix(name, "../") {
		return nil, false
	}
	f, ok := l.files[name]
	return f, ok
}
