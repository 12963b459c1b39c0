package gifcore

import (
	"errors"
	"image"
	"image/color"
	"io"

	"github.com/deepteams/gifcore/internal/container"
	"github.com/deepteams/gifcore/raster"
)

// NewImage copies a decoded Raster's current pixels into a standard
// image.RGBA, the same sugar the teacher's webp.go offers on top of its own
// decoder so a gifcore frame can be handed anywhere the standard library
// expects an image.Image (png.Encode, image draw operations, and so on).
// The returned image is a snapshot: later GetCurrentFrame calls on the
// Decoder that produced r do not affect it.
func NewImage(r *raster.Raster) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			c := r.Pix[y*r.Width+x]
			i := img.PixOffset(x, y)
			img.Pix[i+0] = byte(c >> 16)
			img.Pix[i+1] = byte(c >> 8)
			img.Pix[i+2] = byte(c)
			img.Pix[i+3] = byte(c >> 24)
		}
	}
	return img
}

// Decode implements the image.Decode hook (registered below): it parses the
// full stream and returns its first frame as an image.Image, matching the
// standard library's image/gif in spirit but going through this package's
// own decoder rather than the stdlib one.
func Decode(r io.Reader) (image.Image, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	d := NewDecoder(nil, 1)
	if st := d.Read(buf); st == StatusFormatError || st == StatusOpenError {
		return nil, errors.New("gifcore: invalid GIF stream")
	}
	if !d.Advance() {
		return nil, errors.New("gifcore: no frames")
	}
	fr, status := d.GetCurrentFrame()
	if fr == nil || status == StatusFormatError {
		return nil, errors.New("gifcore: no frames")
	}
	return NewImage(fr), nil
}

// DecodeConfig implements the image.DecodeConfig hook: it only needs the
// logical screen descriptor, so it parses with maxFrames=1 rather than
// decoding any pixel data.
func DecodeConfig(r io.Reader) (image.Config, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return image.Config{}, err
	}
	hdr := container.Parse(buf, 1)
	if hdr.Status == container.StatusFormatError || hdr.Status == container.StatusOpenError {
		return image.Config{}, errors.New("gifcore: invalid GIF stream")
	}
	return image.Config{
		ColorModel: color.RGBAModel,
		Width:      hdr.Width,
		Height:     hdr.Height,
	}, nil
}

func init() {
	image.RegisterFormat("gif", "GIF8", Decode, DecodeConfig)
}
