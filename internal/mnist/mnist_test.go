package mnist

import (
	"compress/gzip"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digitnet/internal/tensor"
)

// writeIDX writes minimal IDX image/label files for n samples into dir.
func writeIDX(t *testing.T, dir string, train bool, pixels []byte, labels []byte, gzipped bool) {
	t.Helper()

	imageName, labelName := "t10k-images-idx3-ubyte", "t10k-labels-idx1-ubyte"
	if train {
		imageName, labelName = "train-images-idx3-ubyte", "train-labels-idx1-ubyte"
	}

	n := len(labels)
	require.Equal(t, n*ImageSize, len(pixels))

	var imgBuf []byte
	imgBuf = binary.BigEndian.AppendUint32(imgBuf, 2051)
	imgBuf = binary.BigEndian.AppendUint32(imgBuf, uint32(n))
	imgBuf = binary.BigEndian.AppendUint32(imgBuf, ImageH)
	imgBuf = binary.BigEndian.AppendUint32(imgBuf, ImageW)
	imgBuf = append(imgBuf, pixels...)

	var lblBuf []byte
	lblBuf = binary.BigEndian.AppendUint32(lblBuf, 2049)
	lblBuf = binary.BigEndian.AppendUint32(lblBuf, uint32(n))
	lblBuf = append(lblBuf, labels...)

	write := func(name string, data []byte) {
		path := filepath.Join(dir, name)
		if gzipped {
			f, err := os.Create(path + ".gz")
			require.NoError(t, err)
			zw := gzip.NewWriter(f)
			_, err = zw.Write(data)
			require.NoError(t, err)
			require.NoError(t, zw.Close())
			require.NoError(t, f.Close())
			return
		}
		require.NoError(t, os.WriteFile(path, data, 0o644))
	}
	write(imageName, imgBuf)
	write(labelName, lblBuf)
}

func TestLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	pixels := make([]byte, 3*ImageSize)
	pixels[0] = 255 // first pixel of first image
	pixels[ImageSize] = 128
	labels := []byte{5, 0, 9}
	writeIDX(t, dir, true, pixels, labels, false)

	ds, err := Load(dir, true, 0)
	require.NoError(t, err)
	require.Equal(t, 3, ds.Len())

	assert.Equal(t, []int{5, 0, 9}, ds.Labels)
	assert.InDelta(t, 1.0, float64(ds.Images[0][0]), 1e-6, "pixel 255 normalizes to 1.0")
	assert.InDelta(t, 128.0/255.0, float64(ds.Images[1][0]), 1e-6)
	assert.Equal(t, float32(0), ds.Images[2][0])
}

func TestLoad_Gzip(t *testing.T) {
	dir := t.TempDir()
	writeIDX(t, dir, false, make([]byte, 2*ImageSize), []byte{1, 2}, true)

	ds, err := Load(dir, false, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, []int{1, 2}, ds.Labels)
}

func TestLoad_MaxSamples(t *testing.T) {
	dir := t.TempDir()
	writeIDX(t, dir, true, make([]byte, 5*ImageSize), []byte{0, 1, 2, 3, 4}, false)

	ds, err := Load(dir, true, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
}

func TestLoad_MissingFiles(t *testing.T) {
	_, err := Load(t.TempDir(), true, 0)
	require.Error(t, err)
}

func TestLoad_BadMagic(t *testing.T) {
	dir := t.TempDir()

	var buf []byte
	buf = binary.BigEndian.AppendUint32(buf, 1234)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "train-images-idx3-ubyte"), buf, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "train-labels-idx1-ubyte"), buf, 0o644))

	_, err := Load(dir, true, 0)
	require.ErrorContains(t, err, "magic")
}

func TestSynthetic(t *testing.T) {
	ds := Synthetic(25)
	require.Equal(t, 25, ds.Len())

	for i, img := range ds.Images {
		assert.Equal(t, i%10, ds.Labels[i])
		assert.Len(t, img, ImageSize)
		for _, px := range img {
			assert.True(t, px >= 0 && px <= 1, "pixels must stay in [0,1]")
		}
	}

	// Patterns differ between classes.
	assert.NotEqual(t, ds.Images[0], ds.Images[1])
	// Same class, same pattern.
	assert.Equal(t, ds.Images[0], ds.Images[10])
}

func TestSplit(t *testing.T) {
	ds := Synthetic(100)
	train, val, err := ds.Split(0.2)
	require.NoError(t, err)
	assert.Equal(t, 80, train.Len())
	assert.Equal(t, 20, val.Len())
}

func TestSplit_RatioOutOfRange(t *testing.T) {
	ds := Synthetic(10)
	for _, ratio := range []float64{-0.1, 1.5} {
		_, _, err := ds.Split(ratio)
		assert.Error(t, err, "ratio %v must be rejected", ratio)
	}
}

func TestBatchTensor(t *testing.T) {
	ds := Synthetic(10)
	images, labels := ds.BatchTensor([]int{3, 7})

	require.True(t, images.Shape().Equal(tensor.Shape{2, 1, ImageH, ImageW}))
	assert.Equal(t, []int{3, 7}, labels)
	assert.Equal(t, ds.Images[3], images.Data()[:ImageSize])
	assert.Equal(t, ds.Images[7], images.Data()[ImageSize:])
}
