package export_test

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/spaghettifunk/tricore/engine/renderer/export"
	"golang.org/x/image/bmp"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 5, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 5; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 50), G: uint8(y * 100), B: 7, A: 255})
		}
	}
	return img
}

func TestEncodeBitmap(t *testing.T) {
	c := qt.New(t)

	var buf bytes.Buffer
	c.Assert(export.EncodeBitmap(&buf, testImage()), qt.IsNil)
	c.Assert(buf.Bytes()[:2], qt.DeepEquals, []byte("BM"))

	decoded, err := bmp.Decode(&buf)
	c.Assert(err, qt.IsNil)
	c.Assert(decoded.Bounds(), qt.Equals, image.Rect(0, 0, 5, 3))
	r, g, b, a := decoded.At(4, 2).RGBA()
	c.Assert([]uint32{r >> 8, g >> 8, b >> 8, a >> 8}, qt.DeepEquals, []uint32{200, 200, 7, 255})
}

func TestWriteBitmap(t *testing.T) {
	c := qt.New(t)
	path := filepath.Join(c.TempDir(), "triangle.bmp")

	c.Assert(export.WriteBitmap(path, testImage()), qt.IsNil)
	f, err := os.Open(path)
	c.Assert(err, qt.IsNil)
	defer f.Close()
	cfg, err := bmp.DecodeConfig(f)
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Width, qt.Equals, 5)
	c.Assert(cfg.Height, qt.Equals, 3)

	err = export.WriteBitmap(filepath.Join(c.TempDir(), "missing", "x.bmp"), testImage())
	c.Assert(err, qt.ErrorMatches, `create bitmap .*: .*`)
}
