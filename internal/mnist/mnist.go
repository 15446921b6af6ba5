// Package mnist loads the MNIST handwritten-digit dataset.
//
// Images arrive as the official IDX binary files (optionally gzipped) and
// are normalized to float32 values in [0, 1]. A deterministic synthetic
// dataset is available so the pipeline and its tests run without the real
// files.
package mnist

import (
	"fmt"
	"path/filepath"

	"digitnet/internal/tensor"
)

// Image dimensions of the dataset.
const (
	ImageH = 28
	ImageW = 28
	// ImageSize is the flat pixel count per image.
	ImageSize = ImageH * ImageW
)

// Dataset holds paired images and labels.
//
// Images are flat [ImageSize]float32 slices normalized to [0, 1]; labels
// are integers in [0, 9].
type Dataset struct {
	Images [][]float32
	Labels []int
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	return len(d.Images)
}

// Split divides the dataset into train and validation parts, with
// valRatio of the samples going to validation. valRatio must lie in
// [0, 1].
func (d *Dataset) Split(valRatio float64) (train, val *Dataset, err error) {
	if valRatio < 0 || valRatio > 1 {
		return nil, nil, fmt.Errorf("split ratio %v out of range [0, 1]", valRatio)
	}
	splitIdx := int(float64(d.Len()) * (1.0 - valRatio))
	return &Dataset{Images: d.Images[:splitIdx], Labels: d.Labels[:splitIdx]},
		&Dataset{Images: d.Images[splitIdx:], Labels: d.Labels[splitIdx:]},
		nil
}

// BatchTensor assembles the samples at indices into an NCHW image tensor
// [len(indices), 1, 28, 28] plus the matching label slice.
func (d *Dataset) BatchTensor(indices []int) (*tensor.Tensor, []int) {
	images := tensor.Zeros(tensor.Shape{len(indices), 1, ImageH, ImageW})
	labels := make([]int, len(indices))
	data := images.Data()
	for i, idx := range indices {
		copy(data[i*ImageSize:(i+1)*ImageSize], d.Images[idx])
		labels[i] = d.Labels[idx]
	}
	return images, labels
}

// Load reads the train or test split from dir.
//
// Expected files (a .gz suffix is tried when the plain file is absent):
//
//	train-images-idx3-ubyte / train-labels-idx1-ubyte
//	t10k-images-idx3-ubyte  / t10k-labels-idx1-ubyte
//
// maxSamples limits the number of samples loaded; 0 loads everything.
func Load(dir string, train bool, maxSamples int) (*Dataset, error) {
	imageFile := filepath.Join(dir, "t10k-images-idx3-ubyte")
	labelFile := filepath.Join(dir, "t10k-labels-idx1-ubyte")
	if train {
		imageFile = filepath.Join(dir, "train-images-idx3-ubyte")
		labelFile = filepath.Join(dir, "train-labels-idx1-ubyte")
	}

	imagesRaw, err := readIDXImages(imageFile)
	if err != nil {
		return nil, fmt.Errorf("load images: %w", err)
	}
	labelsRaw, err := readIDXLabels(labelFile)
	if err != nil {
		return nil, fmt.Errorf("load labels: %w", err)
	}
	if len(imagesRaw) != len(labelsRaw) {
		return nil, fmt.Errorf("image count %d != label count %d", len(imagesRaw), len(labelsRaw))
	}

	numSamples := len(imagesRaw)
	if maxSamples > 0 && numSamples > maxSamples {
		numSamples = maxSamples
	}

	images := make([][]float32, numSamples)
	labels := make([]int, numSamples)
	for i := 0; i < numSamples; i++ {
		if len(imagesRaw[i]) != ImageSize {
			return nil, fmt.Errorf("image %d has %d pixels, want %d", i, len(imagesRaw[i]), ImageSize)
		}
		img := make([]float32, ImageSize)
		for j, px := range imagesRaw[i] {
			img[j] = float32(px) / 255.0
		}
		images[i] = img

		label := int(labelsRaw[i])
		if label < 0 || label > 9 {
			return nil, fmt.Errorf("label %d out of range [0, 9] at sample %d", label, i)
		}
		labels[i] = label
	}

	return &Dataset{Images: images, Labels: labels}, nil
}

// Synthetic creates a deterministic dataset of n samples cycling through
// the ten classes, each with a simple bright-band pattern keyed to its
// label. Not realistic digits, but enough structure for the pipeline to
// learn something in tests and demos.
func Synthetic(n int) *Dataset {
	images := make([][]float32, n)
	labels := make([]int, n)

	for i := 0; i < n; i++ {
		label := i % 10
		img := make([]float32, ImageSize)

		// A horizontal band whose position encodes the class.
		startRow := label * 2
		for row := startRow; row < startRow+8 && row < ImageH; row++ {
			for col := 5; col < 23; col++ {
				img[row*ImageW+col] = 0.8
			}
		}

		images[i] = img
		labels[i] = label
	}

	return &Dataset{Images: images, Labels: labels}
}
