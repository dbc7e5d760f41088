package preprocess

import (
	"image"

	"github.com/disintegration/imaging"
)

// CropRect returns the centered region of a width x height image whose aspect
// ratio matches aspect (width / height). Wider images lose equal margins on the
// left and right, taller images on the top and bottom. The result is relative
// to a zero origin.
func CropRect(width, height int, aspect float64) image.Rectangle {
	full := image.Rect(0, 0, width, height)
	if width <= 0 || height <= 0 || aspect <= 0 {
		return full
	}
	current := float64(width) / float64(height)
	switch {
	case current > aspect:
		newWidth := int(float64(height) * aspect)
		x0 := (width - newWidth) / 2
		return image.Rect(x0, 0, x0+newWidth, height)
	case current < aspect:
		newHeight := int(float64(width) / aspect)
		y0 := (height - newHeight) / 2
		return image.Rect(0, y0, width, y0+newHeight)
	default:
		return full
	}
}

// ProcessImage flattens, crops, and resizes src to exactly width x height.
func ProcessImage(src image.Image, width, height int) *image.NRGBA {
	flat := flatten(src)
	aspect := float64(width) / float64(height)
	bounds := flat.Bounds()
	rect := CropRect(bounds.Dx(), bounds.Dy(), aspect)
	if rect != image.Rect(0, 0, bounds.Dx(), bounds.Dy()) {
		flat = imaging.Crop(flat, rect.Add(bounds.Min))
	}
	return imaging.Resize(flat, width, height, imaging.Lanczos)
}

// flatten converts src to an opaque NRGBA image. Alpha is discarded rather
// than composited, and palette images are expanded to full color.
func flatten(src image.Image) *image.NRGBA {
	out := imaging.Clone(src)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xff
	}
	return out
}
