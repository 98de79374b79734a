// Package imageutil prepares uploaded passport photos for storage.
package imageutil

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"math"

	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

var ErrUnsupportedFormat = errors.New("unsupported image format (jpeg/png/webp)")

// NormalizeToJPG decodes jpeg/png/webp input, applies the EXIF orientation,
// scales down to maxWidth when wider and re-encodes as JPEG.
func NormalizeToJPG(input []byte, maxWidth int, quality int) ([]byte, error) {
	if len(input) == 0 {
		return nil, errors.New("empty image")
	}
	if quality <= 0 || quality > 100 {
		quality = 85
	}

	img, format, err := decode(bytes.NewReader(input))
	if err != nil {
		return nil, err
	}
	if format == "jpeg" {
		img = applyOrientation(img, readEXIFOrientation(bytes.NewReader(input)))
	}
	if maxWidth > 0 {
		img = resizeMaxWidth(img, maxWidth)
	}

	var out bytes.Buffer
	if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// DetectFormat reports jpeg, png or webp, or "" when the header is unknown.
func DetectFormat(b []byte) string {
	switch {
	case len(b) >= 3 && b[0] == 0xFF && b[1] == 0xD8 && b[2] == 0xFF:
		return "jpeg"
	case len(b) >= 8 && bytes.Equal(b[:8], []byte("\x89PNG\r\n\x1a\n")):
		return "png"
	case len(b) >= 12 && string(b[:4]) == "RIFF" && string(b[8:12]) == "WEBP":
		return "webp"
	}
	return ""
}

func decode(r *bytes.Reader) (image.Image, string, error) {
	head := make([]byte, 12)
	n, _ := r.Read(head)
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, "", err
	}

	var (
		img image.Image
		err error
	)
	format := DetectFormat(head[:n])
	switch format {
	case "jpeg":
		img, err = jpeg.Decode(r)
	case "png":
		img, err = png.Decode(r)
	case "webp":
		img, err = webp.Decode(r)
	default:
		return nil, "", ErrUnsupportedFormat
	}
	if err != nil {
		return nil, "", err
	}
	return img, format, nil
}

func readEXIFOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	ori, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return ori
}

// EXIF orientation:
// 1 normal, 2 flip H, 3 rotate 180, 4 flip V,
// 5 transpose, 6 rotate 90 CW, 7 transverse, 8 rotate 90 CCW
func applyOrientation(src image.Image, ori int) image.Image {
	switch ori {
	case 2:
		return transform(src, false, func(x, y, w, h int) (int, int) { return w - 1 - x, y })
	case 3:
		return transform(src, false, func(x, y, w, h int) (int, int) { return w - 1 - x, h - 1 - y })
	case 4:
		return transform(src, false, func(x, y, w, h int) (int, int) { return x, h - 1 - y })
	case 5:
		return transform(src, true, func(x, y, w, h int) (int, int) { return y, x })
	case 6:
		return transform(src, true, func(x, y, w, h int) (int, int) { return h - 1 - y, x })
	case 7:
		return transform(src, true, func(x, y, w, h int) (int, int) { return h - 1 - y, w - 1 - x })
	case 8:
		return transform(src, true, func(x, y, w, h int) (int, int) { return y, w - 1 - x })
	default:
		return src
	}
}

// transform copies src into a new RGBA using dst coordinates from at.
// swap exchanges width and height for the 90 degree cases.
func transform(src image.Image, swap bool, at func(x, y, w, h int) (int, int)) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	rect := image.Rect(0, 0, w, h)
	if swap {
		rect = image.Rect(0, 0, h, w)
	}
	dst := image.NewRGBA(rect)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := at(x, y, w, h)
			dst.Set(dx, dy, src.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}

func resizeMaxWidth(src image.Image, maxW int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 || w <= maxW {
		return src
	}

	newH := int(math.Round(float64(h) * float64(maxW) / float64(w)))
	if newH < 1 {
		newH = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
