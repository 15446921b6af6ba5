package nn

import (
	"fmt"
	"math/rand"
)

// NumClasses is the number of digit classes.
const NumClasses = 10

// NewMNISTNet builds the fixed digit-classification network:
//
//	Input:   [batch, 1, 28, 28]
//	Conv2D:  1 -> 32 channels, 3x3, no padding -> [batch, 32, 26, 26]
//	ReLU
//	Conv2D:  32 -> 64 channels, 3x3, no padding -> [batch, 64, 24, 24]
//	ReLU
//	MaxPool: 2x2 -> [batch, 64, 12, 12]
//	Dropout: 0.25
//	Flatten: -> [batch, 9216]
//	Dense:   9216 -> 128
//	ReLU
//	Dropout: 0.50
//	Dense:   128 -> 10
//	Softmax: -> [batch, 10] probability rows
//
// Both convolutions use stride 1 and no padding, so each shrinks the
// spatial extent by kernel-1. Every downstream dimension is derived from
// inputH/inputW through the stages' OutputSize arithmetic; hardcoding 9216
// would silently break for any other input size.
//
// rng seeds the weight initialization and the dropout masks; passing the
// same rng reproduces the same network.
func NewMNISTNet(inputH, inputW int, rng *rand.Rand) *Sequential {
	if inputH <= 0 || inputW <= 0 {
		panic(fmt.Sprintf("model: invalid input size %dx%d", inputH, inputW))
	}

	conv1 := NewConv2D(1, 32, 3, 1, 0, rng)
	conv2 := NewConv2D(32, 64, 3, 1, 0, rng)
	pool := NewMaxPool2D(2, 2)

	h, w := conv1.OutputSize(inputH, inputW)
	h, w = conv2.OutputSize(h, w)
	h, w = pool.OutputSize(h, w)
	features := 64 * h * w

	return NewSequential(
		conv1,
		NewReLU(),
		conv2,
		NewReLU(),
		pool,
		NewDropout(0.25, rng),
		NewFlatten(),
		NewDense(features, 128, rng),
		NewReLU(),
		NewDropout(0.5, rng),
		NewDense(128, NumClasses, rng),
		NewSoftmax(),
	)
}
