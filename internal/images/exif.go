package images

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/jpeg"
)

// Orientation values from the EXIF specification, tag 0x0112.
const (
	orientationTopLeft     = 1 // normal
	orientationTopRight    = 2 // mirror horizontal
	orientationBottomRight = 3 // rotate 180
	orientationBottomLeft  = 4 // mirror vertical
	orientationLeftTop     = 5 // mirror horizontal, rotate 270 CW
	orientationRightTop    = 6 // rotate 90 CW
	orientationRightBottom = 7 // mirror horizontal, rotate 90 CW
	orientationLeftBottom  = 8 // rotate 270 CW
)

const jpegQuality = 85

// Normalize decodes a JPEG, bakes its EXIF orientation into the pixels and
// downsamples by powers of two until both dimensions fit maxDim, then
// re-encodes. Any failure (not a JPEG, truncated EXIF, decode error) returns
// the input unchanged so a stored photo is never lost to a bad header.
func Normalize(data []byte, maxDim int) []byte {
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return data
	}

	orientation := readOrientation(data)
	changed := false

	if orientation > orientationTopLeft && orientation <= orientationLeftBottom {
		img = applyOrientation(img, orientation)
		changed = true
	}
	if maxDim > 0 {
		if scaled := downsample(img, maxDim); scaled != img {
			img = scaled
			changed = true
		}
	}
	if !changed {
		return data
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return data
	}
	return buf.Bytes()
}

// readOrientation scans the JPEG segment stream for an APP1 EXIF block and
// returns the orientation tag value, or 0 when absent or unreadable.
func readOrientation(data []byte) int {
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return 0
	}
	i := 2
	for i+4 <= len(data) {
		if data[i] != 0xFF {
			return 0
		}
		marker := data[i+1]
		// Standalone markers carry no length field.
		if marker == 0xD8 || (marker >= 0xD0 && marker <= 0xD9) {
			i += 2
			continue
		}
		// Entropy-coded data starts after SOS; no EXIF beyond this point.
		if marker == 0xDA {
			return 0
		}
		segLen := int(binary.BigEndian.Uint16(data[i+2 : i+4]))
		if segLen < 2 || i+2+segLen > len(data) {
			return 0
		}
		if marker == 0xE1 {
			o, err := parseExifOrientation(data[i+4 : i+2+segLen])
			if err == nil {
				return o
			}
		}
		i += 2 + segLen
	}
	return 0
}

var errNoOrientation = errors.New("images: no orientation tag")

func parseExifOrientation(seg []byte) (int, error) {
	if len(seg) < 6 || !bytes.Equal(seg[:6], []byte("Exif\x00\x00")) {
		return 0, errNoOrientation
	}
	tiff := seg[6:]
	if len(tiff) < 8 {
		return 0, errNoOrientation
	}

	var order binary.ByteOrder
	switch {
	case tiff[0] == 'I' && tiff[1] == 'I':
		order = binary.LittleEndian
	case tiff[0] == 'M' && tiff[1] == 'M':
		order = binary.BigEndian
	default:
		return 0, errNoOrientation
	}
	if order.Uint16(tiff[2:4]) != 0x002A {
		return 0, errNoOrientation
	}

	ifdOffset := int(order.Uint32(tiff[4:8]))
	if ifdOffset < 0 || ifdOffset+2 > len(tiff) {
		return 0, errNoOrientation
	}
	count := int(order.Uint16(tiff[ifdOffset : ifdOffset+2]))
	for n := 0; n < count; n++ {
		entry := ifdOffset + 2 + n*12
		if entry+12 > len(tiff) {
			return 0, errNoOrientation
		}
		if order.Uint16(tiff[entry:entry+2]) == 0x0112 {
			return int(order.Uint16(tiff[entry+8 : entry+10])), nil
		}
	}
	return 0, errNoOrientation
}

// applyOrientation returns a copy of img with the EXIF orientation applied,
// so the pixel data reads top-left first.
func applyOrientation(img image.Image, orientation int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	var dst *image.RGBA
	swapped := orientation >= orientationLeftTop
	if swapped {
		dst = image.NewRGBA(image.Rect(0, 0, h, w))
	} else {
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.At(b.Min.X+x, b.Min.Y+y)
			var dx, dy int
			switch orientation {
			case orientationTopRight:
				dx, dy = w-1-x, y
			case orientationBottomRight:
				dx, dy = w-1-x, h-1-y
			case orientationBottomLeft:
				dx, dy = x, h-1-y
			case orientationLeftTop:
				dx, dy = y, x
			case orientationRightTop:
				dx, dy = h-1-y, x
			case orientationRightBottom:
				dx, dy = y, w-1-x
			case orientationLeftBottom:
				dx, dy = h-1-y, w-1-x
			default:
				dx, dy = x, y
			}
			dst.Set(dx, dy, c)
		}
	}
	return dst
}

// downsample halves the image repeatedly until both dimensions fit maxDim.
// Returns img unchanged when it already fits.
func downsample(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	factor := 1
	for w/factor > maxDim || h/factor > maxDim {
		factor *= 2
	}
	if factor == 1 {
		return img
	}

	dw, dh := w/factor, h/factor
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			dst.Set(x, y, img.At(b.Min.X+x*factor, b.Min.Y+y*factor))
		}
	}
	return dst
}
