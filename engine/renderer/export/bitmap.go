// Package export writes read-back frames to disk.
package export

import (
	"bufio"
	"image"
	"io"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
)

// EncodeBitmap writes img to w as an uncompressed BMP.
func EncodeBitmap(w io.Writer, img image.Image) error {
	return bmp.Encode(w, img)
}

// WriteBitmap creates or truncates path and writes img to it.
func WriteBitmap(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create bitmap %s", path)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrapf(cerr, "close bitmap %s", path)
		}
	}()

	bw := bufio.NewWriter(f)
	if err := EncodeBitmap(bw, img); err != nil {
		return errors.Wrapf(err, "encode bitmap %s", path)
	}
	return bw.Flush()
}
