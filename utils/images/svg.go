package images

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// Browsers use 300x150 for replaced elements without intrinsic size.
const (
	defaultSVGWidth  = 300
	defaultSVGHeight = 150
)

// maxRasterDim is the maximum pixel dimension (width or height) allowed when
// rasterizing an SVG. Prevents OOM from enormous viewBox values
// (viewBox="0 0 100000 100000" would allocate ~37 GB for the RGBA buffer).
var maxRasterDim = 8192

// SVGSize returns intrinsic size of SVG image in pixels taken from viewBox
// or width/height attributes of the root element.
func SVGSize(svgData []byte) (int, int, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(svgData))
	if err != nil {
		return 0, 0, err
	}
	w, h := intrinsicSize(icon)
	return w, h, nil
}

func intrinsicSize(icon *oksvg.SvgIcon) (int, int) {
	w := int(math.Ceil(icon.ViewBox.W))
	h := int(math.Ceil(icon.ViewBox.H))
	switch {
	case w <= 0 && h <= 0:
		w, h = defaultSVGWidth, defaultSVGHeight
	case w <= 0:
		w = h * defaultSVGWidth / defaultSVGHeight
	case h <= 0:
		h = w * defaultSVGHeight / defaultSVGWidth
	}
	return w, h
}

// RasterizeSVG rasterizes SVG to an RGBA image on white background.
//
// Rules:
//   - if targetW == 0 && targetH == 0: use intrinsic SVG dimensions
//   - if only one of targetW/targetH is > 0: scale by that dimension keeping aspect ratio
//   - if both targetW and targetH are > 0: fit into that box keeping aspect ratio
func RasterizeSVG(svgData []byte, targetW, targetH int) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(svgData))
	if err != nil {
		return nil, err
	}

	intrW, intrH := intrinsicSize(icon)
	if icon.ViewBox.W <= 0 || icon.ViewBox.H <= 0 {
		icon.ViewBox.W, icon.ViewBox.H = float64(intrW), float64(intrH)
	}

	w, h := FitSize(intrW, intrH, targetW, targetH)

	// Clamp to maxRasterDim preserving aspect ratio to prevent OOM.
	if w > maxRasterDim || h > maxRasterDim {
		s := min(float64(maxRasterDim)/float64(w), float64(maxRasterDim)/float64(h))
		w = max(int(math.Round(float64(w)*s)), 1)
		h = max(int(math.Round(float64(h)*s)), 1)
	}

	icon.SetTarget(0, 0, float64(w), float64(h))

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.RGBA{255, 255, 255, 255}}, image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	dasher := rasterx.NewDasher(w, h, scanner)
	icon.Draw(dasher, 1.0)
	return dst, nil
}

// FitSize computes display size of an image with intrinsic size intrW x
// intrH for requested target. Zero target dimension is derived from the
// other one keeping aspect ratio, both zero keep intrinsic size, both given
// fit into the box. Result is never smaller than 1x1.
func FitSize(intrW, intrH, targetW, targetH int) (int, int) {
	if intrW <= 0 || intrH <= 0 {
		return max(targetW, 1), max(targetH, 1)
	}
	w, h := intrW, intrH
	switch {
	case targetW <= 0 && targetH <= 0:
		// keep intrinsic size
	case targetW > 0 && targetH <= 0:
		w = targetW
		h = int(math.Round(float64(w) * float64(intrH) / float64(intrW)))
	case targetH > 0 && targetW <= 0:
		h = targetH
		w = int(math.Round(float64(h) * float64(intrW) / float64(intrH)))
	default:
		scale := math.Min(float64(targetW)/float64(intrW), float64(targetH)/float64(intrH))
		w = int(math.Round(float64(intrW) * scale))
		h = int(math.Round(float64(intrH) * scale))
	}
	return max(w, 1), max(h, 1)
}
