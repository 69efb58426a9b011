package resource

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"

	"h2d/utils/images"
)

// JPEGQuality is used when photos are re-encoded.
const JPEGQuality = 90

// Transcode converts image which word processors cannot display natively
// (webp, tiff, svg) into PNG or JPEG. Embeddable images are returned as is.
// Vector images are rasterized at their intrinsic size, opaque color raster
// images become JPEG, everything else PNG.
func Transcode(data []byte, info ImageInfo) ([]byte, ImageInfo, error) {
	if Embeddable(info.Format) {
		return data, info, nil
	}

	var (
		img image.Image
		err error
	)
	if info.Format == "svg" {
		img, err = images.RasterizeSVG(data, info.Width, info.Height)
		if err != nil {
			return nil, info, fmt.Errorf("unable to rasterize svg: %w", err)
		}
		return encodePNG(img)
	}

	img, err = imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, info, fmt.Errorf("unable to decode %s: %w", info.Format, err)
	}

	return encodeRaster(img)
}

// Downscale shrinks raster image wider than maxWidth keeping aspect ratio.
// Vector images and images which fit are returned as is.
func Downscale(data []byte, info ImageInfo, maxWidth int) ([]byte, ImageInfo, error) {
	if maxWidth <= 0 || info.Width <= maxWidth || info.Format == "svg" {
		return data, info, nil
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, info, fmt.Errorf("unable to decode %s: %w", info.Format, err)
	}
	return encodeRaster(imaging.Resize(img, maxWidth, 0, imaging.Lanczos))
}

// encodeRaster stores opaque color images as JPEG, everything else as PNG.
func encodeRaster(img image.Image) ([]byte, ImageInfo, error) {
	if images.IsOpaque(img) && !images.IsGrayscale(img) {
		out, err := images.EncodeJPEG(img, JPEGQuality)
		if err != nil {
			return nil, ImageInfo{}, fmt.Errorf("unable to encode jpeg: %w", err)
		}
		b := img.Bounds()
		return out, ImageInfo{Format: "jpeg", ContentType: "image/jpeg", Width: b.Dx(), Height: b.Dy()}, nil
	}
	return encodePNG(img)
}

func encodePNG(img image.Image) ([]byte, ImageInfo, error) {
	if images.IsOpaque(img) && images.IsGrayscale(img) {
		img = images.ToGray(img)
	}
	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
		return nil, ImageInfo{}, fmt.Errorf("unable to encode png: %w", err)
	}
	b := img.Bounds()
	return buf.Bytes(), ImageInfo{Format: "png", ContentType: "image/png", Width: b.Dx(), Height: b.Dy()}, nil
}
