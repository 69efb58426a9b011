package resource

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Options controls what DefaultLoader is allowed to access.
type Options struct {
	AllowLocal  bool
	AllowRemote bool
	// MaxSize limits size of a single resource in bytes, 0 means unlimited.
	MaxSize int64
	// Timeout of a single remote request, 0 means no timeout.
	Timeout   time.Duration
	UserAgent string
	// BaseDir is used to resolve relative local paths, current directory
	// when empty.
	BaseDir string
}

// DefaultLoader handles data:, file:, http: and https: URIs and plain local
// paths.
type DefaultLoader struct {
	opts   Options
	client *http.Client
	log    *zap.Logger
}

// NewLoader returns DefaultLoader. Nil logger disables logging.
func NewLoader(opts Options, log *zap.Logger) *DefaultLoader {
	if log == nil {
		log = zap.NewNop()
	}
	return &DefaultLoader{
		opts:   opts,
		client: &http.Client{Timeout: opts.Timeout},
		log:    log.Named("resource"),
	}
}

// Fetch loads resource. Missing resources are reported with ErrNotFound,
// schemes not handled or disabled by Options with ErrUnsupportedScheme.
func (l *DefaultLoader) Fetch(ctx context.Context, uri string) (*Resource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil, fmt.Errorf("empty location: %w", ErrNotFound)
	}

	scheme := Scheme(uri)
	l.log.Debug("Fetching resource", zap.String("scheme", scheme), zap.String("uri", Abbreviate(uri)))

	switch scheme {
	case "data":
		res, err := DecodeDataURI(uri)
		if err != nil {
			return nil, err
		}
		if l.opts.MaxSize > 0 && int64(len(res.Data)) > l.opts.MaxSize {
			return nil, fmt.Errorf("embedded data of %d bytes: %w", len(res.Data), ErrTooLarge)
		}
		return res, nil
	case "file":
		return l.readFile(FilePath(uri))
	case "http", "https":
		return l.get(ctx, uri)
	case "":
		return l.readFile(uri)
	default:
		if len(scheme) == 1 && runtime.GOOS == "windows" {
			// drive letter: C:\images\a.png
			return l.readFile(uri)
		}
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}
}

func (l *DefaultLoader) readFile(path string) (*Resource, error) {
	if !l.opts.AllowLocal {
		return nil, fmt.Errorf("%w: access to local files is disabled", ErrUnsupportedScheme)
	}

	path = filepath.FromSlash(path)
	if !filepath.IsAbs(path) && l.opts.BaseDir != "" {
		path = filepath.Join(l.opts.BaseDir, path)
	}

	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return nil, fmt.Errorf("unable to access '%s': %w", path, err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%w: '%s' is a directory", ErrNotFound, path)
	}
	if l.opts.MaxSize > 0 && fi.Size() > l.opts.MaxSize {
		return nil, fmt.Errorf("file '%s' of %d bytes: %w", path, fi.Size(), ErrTooLarge)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return nil, fmt.Errorf("unable to read '%s': %w", path, err)
	}
	return &Resource{Data: data, ContentType: mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))}, nil
}

func (l *DefaultLoader) get(ctx context.Context, uri string) (res *Resource, err error) {
	if !l.opts.AllowRemote {
		return nil, fmt.Errorf("%w: access to remote resources is disabled", ErrUnsupportedScheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to create request: %w", err)
	}
	if l.opts.UserAgent != "" {
		req.Header.Set("User-Agent", l.opts.UserAgent)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to get '%s': %w", uri, err)
	}
	defer func() {
		err = multierr.Append(err, resp.Body.Close())
		if err != nil {
			res = nil
		}
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, resp.Status)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("unexpected response status for '%s': %s", uri, resp.Status)
	}
	if l.opts.MaxSize > 0 && resp.ContentLength > l.opts.MaxSize {
		return nil, fmt.Errorf("response of %d bytes: %w", resp.ContentLength, ErrTooLarge)
	}

	var body io.Reader = resp.Body
	if l.opts.MaxSize > 0 {
		body = io.LimitReader(resp.Body, l.opts.MaxSize+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("unable to read response body: %w", err)
	}
	if l.opts.MaxSize > 0 && int64(len(data)) > l.opts.MaxSize {
		return nil, fmt.Errorf("response body: %w", ErrTooLarge)
	}

	contentType := resp.Header.Get("Content-Type")
	if mt, _, perr := mime.ParseMediaType(contentType); perr == nil {
		contentType = mt
	}
	return &Resource{Data: data, ContentType: contentType}, nil
}

// Scheme returns lower-cased URI scheme or empty string when uri does not
// start with one (relative or absolute path).
func Scheme(uri string) string {
	for i := 0; i < len(uri); i++ {
		c := uri[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case ('0' <= c && c <= '9') || c == '+' || c == '-' || c == '.':
			if i == 0 {
				return ""
			}
		case c == ':':
			if i == 0 {
				return ""
			}
			return strings.ToLower(uri[:i])
		default:
			return ""
		}
	}
	return ""
}

// FilePath converts file: URI into local path, escaped characters (%20) are
// decoded. Windows drive paths lose leading slash (file:///C:/a.png), remote
// hosts become UNC paths.
func FilePath(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		// unescaped characters url package does not accept, do it by hand
		rest, _ := cutPrefixFold(uri, "file:")
		if strings.HasPrefix(rest, "//") {
			rest = rest[2:]
			if i := strings.IndexByte(rest, '/'); i >= 0 {
				rest = rest[i:]
			}
		}
		if p, uerr := url.PathUnescape(rest); uerr == nil {
			rest = p
		}
		return trimDriveSlash(rest)
	}
	if u.Opaque != "" {
		// file:relative/path.png
		if p, uerr := url.PathUnescape(u.Opaque); uerr == nil {
			return p
		}
		return u.Opaque
	}
	if u.Host != "" && !strings.EqualFold(u.Host, "localhost") {
		return "//" + u.Host + u.Path
	}
	return trimDriveSlash(u.Path)
}

func trimDriveSlash(p string) string {
	if len(p) >= 3 && p[0] == '/' && p[2] == ':' &&
		(('a' <= p[1] && p[1] <= 'z') || ('A' <= p[1] && p[1] <= 'Z')) {
		return p[1:]
	}
	return p
}

// Abbreviate shortens long URIs (data: mostly) for logging.
func Abbreviate(uri string) string {
	const limit = 128
	if len(uri) <= limit {
		return uri
	}
	return uri[:limit] + "..."
}
