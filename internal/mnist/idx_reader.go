package mnist

import (
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"
)

// IDX magic numbers from the official MNIST distribution.
const (
	imageMagic = 2051 // 0x00000803
	labelMagic = 2049 // 0x00000801
)

// openIDX opens path, falling back to path+".gz" and decompressing
// transparently. The caller must close the returned closer.
func openIDX(path string) (io.Reader, io.Closer, error) {
	if f, err := os.Open(path); err == nil {
		if strings.HasSuffix(path, ".gz") {
			return wrapGzip(f)
		}
		return f, f, nil
	}

	f, err := os.Open(path + ".gz")
	if err != nil {
		return nil, nil, err
	}
	return wrapGzip(f)
}

func wrapGzip(f *os.File) (io.Reader, io.Closer, error) {
	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("gzip: %w", err)
	}
	return zr, f, nil
}

// readIDXImages reads an MNIST image file in IDX format.
//
// Layout: magic (2051), image count, rows, cols as big-endian uint32,
// followed by row-major unsigned pixel bytes.
func readIDXImages(path string) ([][]byte, error) {
	r, closer, err := openIDX(path)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	var magic uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return nil, fmt.Errorf("read magic: %w", err)
	}
	if magic != imageMagic {
		return nil, fmt.Errorf("invalid image magic: got %d, want %d", magic, imageMagic)
	}

	var numImages, numRows, numCols uint32
	if err := binary.Read(r, binary.BigEndian, &numImages); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.BigEndian, &numRows); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.BigEndian, &numCols); err != nil {
		return nil, err
	}

	imageSize := int(numRows * numCols)
	images := make([][]byte, numImages)
	for i := range images {
		images[i] = make([]byte, imageSize)
		if _, err := io.ReadFull(r, images[i]); err != nil {
			return nil, fmt.Errorf("read image %d: %w", i, err)
		}
	}
	return images, nil
}

// readIDXLabels reads an MNIST label file in IDX format.
//
// Layout: magic (2049), label count as big-endian uint32, followed by one
// unsigned byte per label.
func readIDXLabels(path string) ([]byte, error) {
	r, closer, err := openIDX(path)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	var magic uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return nil, fmt.Errorf("read magic: %w", err)
	}
	if magic != labelMagic {
		return nil, fmt.Errorf("invalid label magic: got %d, want %d", magic, labelMagic)
	}

	var numLabels uint32
	if err := binary.Read(r, binary.BigEndian, &numLabels); err != nil {
		return nil, err
	}

	labels := make([]byte, numLabels)
	if _, err := io.ReadFull(r, labels); err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}
	return labels, nil
}
