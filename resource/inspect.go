package resource

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"h2d/utils/images"
)

// ImageInfo describes image content.
type ImageInfo struct {
	// Format is short format name: png, jpeg, gif, bmp, tiff, webp or svg.
	Format      string
	ContentType string
	// Width and Height are intrinsic size in pixels.
	Width  int
	Height int
}

// Ext returns file extension (without dot) for the format.
func (i ImageInfo) Ext() string {
	switch i.Format {
	case "jpeg":
		return "jpg"
	case "tiff":
		return "tif"
	}
	return i.Format
}

// Inspect detects image format from content (declared content type is not
// trusted) and reads intrinsic size.
func Inspect(data []byte) (ImageInfo, error) {
	if len(data) == 0 {
		return ImageInfo{}, fmt.Errorf("empty data: %w", ErrNotImage)
	}

	if isSVG(data) {
		w, h, err := images.SVGSize(data)
		if err != nil {
			return ImageInfo{}, fmt.Errorf("unable to read svg: %w: %w", ErrNotImage, err)
		}
		return ImageInfo{Format: "svg", ContentType: "image/svg+xml", Width: w, Height: h}, nil
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		kind, _ := filetype.Match(data)
		if kind != filetype.Unknown {
			return ImageInfo{}, fmt.Errorf("unable to decode %s: %w: %w", kind.MIME.Value, ErrNotImage, err)
		}
		return ImageInfo{}, fmt.Errorf("%w: %w", ErrNotImage, err)
	}

	info := ImageInfo{Format: format, Width: cfg.Width, Height: cfg.Height}
	if kind, err := filetype.Match(data); err == nil && filetype.IsImage(data) {
		info.ContentType = kind.MIME.Value
	} else {
		info.ContentType = "image/" + format
	}
	return info, nil
}

// isSVG sniffs beginning of the data for svg root element.
func isSVG(data []byte) bool {
	head := data[:min(len(data), 1024)]
	head = bytes.TrimPrefix(head, []byte("\xEF\xBB\xBF"))
	head = bytes.TrimSpace(head)
	if len(head) == 0 || head[0] != '<' {
		return false
	}
	return strings.Contains(strings.ToLower(string(head)), "<svg")
}

// Embeddable reports formats word processors display without conversion.
func Embeddable(format string) bool {
	switch format {
	case "png", "jpeg", "gif", "bmp":
		return true
	}
	return false
}
