package images_test

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkowalczyk/triplog/internal/images"
)

// encodeJPEG renders a w x h gradient so rotation is observable in pixels.
func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

// withOrientation splices an APP1 EXIF segment carrying the given
// orientation right after the SOI marker.
func withOrientation(t *testing.T, jpg []byte, orientation uint16) []byte {
	t.Helper()
	require.True(t, len(jpg) > 2 && jpg[0] == 0xFF && jpg[1] == 0xD8)

	var tiff bytes.Buffer
	tiff.WriteString("MM")                                // big endian
	binary.Write(&tiff, binary.BigEndian, uint16(0x002A)) // TIFF magic
	binary.Write(&tiff, binary.BigEndian, uint32(8))      // IFD0 offset
	binary.Write(&tiff, binary.BigEndian, uint16(1))      // entry count
	binary.Write(&tiff, binary.BigEndian, uint16(0x0112)) // orientation tag
	binary.Write(&tiff, binary.BigEndian, uint16(3))      // SHORT
	binary.Write(&tiff, binary.BigEndian, uint32(1))      // one value
	binary.Write(&tiff, binary.BigEndian, orientation)
	binary.Write(&tiff, binary.BigEndian, uint16(0)) // value padding
	binary.Write(&tiff, binary.BigEndian, uint32(0)) // next IFD

	payload := append([]byte("Exif\x00\x00"), tiff.Bytes()...)

	var out bytes.Buffer
	out.Write(jpg[:2])
	out.Write([]byte{0xFF, 0xE1})
	binary.Write(&out, binary.BigEndian, uint16(len(payload)+2))
	out.Write(payload)
	out.Write(jpg[2:])
	return out.Bytes()
}

func decodeDims(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func TestNormalize_RotationSwapsDimensions(t *testing.T) {
	src := withOrientation(t, encodeJPEG(t, 40, 20), 6)

	out := images.Normalize(src, 0)

	w, h := decodeDims(t, out)
	assert.Equal(t, 20, w)
	assert.Equal(t, 40, h)
}

func TestNormalize_Rotate180KeepsDimensions(t *testing.T) {
	src := withOrientation(t, encodeJPEG(t, 40, 20), 3)

	out := images.Normalize(src, 0)

	w, h := decodeDims(t, out)
	assert.Equal(t, 40, w)
	assert.Equal(t, 20, h)
	assert.NotEqual(t, src, out, "rotated image should be re-encoded")
}

func TestNormalize_DownsamplesOversized(t *testing.T) {
	src := encodeJPEG(t, 100, 60)

	out := images.Normalize(src, 30)

	w, h := decodeDims(t, out)
	assert.LessOrEqual(t, w, 30)
	assert.LessOrEqual(t, h, 30)
	// Power-of-two halving: 100x60 / 4 = 25x15.
	assert.Equal(t, 25, w)
	assert.Equal(t, 15, h)
}

func TestNormalize_NoChangePassesThrough(t *testing.T) {
	src := encodeJPEG(t, 40, 20)

	out := images.Normalize(src, 2048)

	assert.Equal(t, src, out, "upright image within bounds should not be re-encoded")
}

func TestNormalize_NotAJPEGPassesThrough(t *testing.T) {
	src := []byte("definitely not an image")
	assert.Equal(t, src, images.Normalize(src, 2048))
}

func TestNormalize_TruncatedExifPassesThroughPixels(t *testing.T) {
	jpg := encodeJPEG(t, 40, 20)
	// APP1 segment that claims EXIF but is cut short.
	bad := append([]byte{0xFF, 0xD8, 0xFF, 0xE1, 0x00, 0x08, 'E', 'x', 'i', 'f', 0x00, 0x00}, jpg[2:]...)

	out := images.Normalize(bad, 2048)

	w, h := decodeDims(t, out)
	assert.Equal(t, 40, w)
	assert.Equal(t, 20, h)
}
