package thumbnails

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"

	"golang.org/x/image/draw"
)

// resizeToPNG fits the image at src into size, keeping the aspect ratio, and
// writes it as PNG to target.
func resizeToPNG(src, target string, size Size) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("failed to decode cover: %w", err)
	}

	w, h := fitInBox(img.Bounds().Dx(), img.Bounds().Dy(), size.Width, size.Height)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return writeAtomic(target, buf.Bytes())
}

// fitInBox scales (w, h) up or down to the largest size that fits in (maxW, maxH).
func fitInBox(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 || maxW <= 0 || maxH <= 0 {
		return max(maxW, 1), max(maxH, 1)
	}
	if w*maxH > h*maxW {
		return maxW, max(1, h*maxW/w)
	}
	return max(1, w*maxH/h), maxH
}
