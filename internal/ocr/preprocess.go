package ocr

import (
	"image"
	"sort"

	"github.com/disintegration/imaging"
)

// Preprocess enhances a rendered page for OCR: grayscale, upscale of
// low-resolution scans, contrast stretch, speckle removal, sharpening and
// binarization. The output is a black-and-white image stored as grayscale,
// which recognition engines handle well.
func Preprocess(src image.Image) *image.Gray {
	img := imaging.Grayscale(src)

	// Low-DPI scans OCR poorly; upscale them before filtering.
	if w := img.Bounds().Dx(); w < 1200 {
		img = imaging.Resize(img, int(float64(w)*1.6), 0, imaging.Lanczos)
	}

	gray := toGray(img)
	gray = autocontrast(gray)
	gray = median3(gray)
	gray = toGray(imaging.Sharpen(gray, 1.0))
	return binarize(gray, 0.85)
}

func toGray(src image.Image) *image.Gray {
	if g, ok := src.(*image.Gray); ok {
		return g
	}
	b := src.Bounds()
	dst := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Set(x, y, src.At(x, y))
		}
	}
	return dst
}

// autocontrast linearly stretches the intensity range to the full 0..255
// span. A flat image is returned unchanged.
func autocontrast(src *image.Gray) *image.Gray {
	min, max := uint8(255), uint8(0)
	for _, p := range src.Pix {
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}
	if min >= max {
		return src
	}

	dst := image.NewGray(src.Bounds())
	scale := 255.0 / float64(max-min)
	for i, p := range src.Pix {
		dst.Pix[i] = uint8(float64(p-min)*scale + 0.5)
	}
	return dst
}

// median3 applies a 3x3 median filter to remove speckle noise. Border
// pixels use their clamped neighborhood.
func median3(src *image.Gray) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(b)

	var window [9]uint8
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			n := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					yy, xx := y+dy, x+dx
					if yy < 0 {
						yy = 0
					} else if yy >= h {
						yy = h - 1
					}
					if xx < 0 {
						xx = 0
					} else if xx >= w {
						xx = w - 1
					}
					window[n] = src.Pix[yy*src.Stride+xx]
					n++
				}
			}
			s := window[:]
			sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
			dst.Pix[y*dst.Stride+x] = window[4]
		}
	}
	return dst
}

// binarize thresholds the image at factor times the intensity-weighted mean
// of its histogram. Pixels above the threshold become white, the rest black.
func binarize(src *image.Gray, factor float64) *image.Gray {
	var hist [256]int
	for _, p := range src.Pix {
		hist[p]++
	}

	total := 0
	weighted := 0
	for v, count := range hist {
		total += count
		weighted += v * count
	}

	thresh := uint8(128)
	if total > 0 {
		mean := float64(weighted) / float64(total)
		thresh = uint8(mean * factor)
	}

	dst := image.NewGray(src.Bounds())
	for i, p := range src.Pix {
		if p > thresh {
			dst.Pix[i] = 255
		} else {
			dst.Pix[i] = 0
		}
	}
	return dst
}
