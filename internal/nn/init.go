package nn

import (
	"math"
	"math/rand"

	"digitnet/internal/tensor"
)

// Xavier returns a tensor initialized with Xavier/Glorot uniform values.
//
// Values are drawn from U(-b, b) with b = sqrt(6/(fanIn+fanOut)), which
// keeps activation variance roughly constant across layers.
func Xavier(fanIn, fanOut int, shape tensor.Shape, rng *rand.Rand) *tensor.Tensor {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
	t := tensor.Zeros(shape)
	data := t.Data()
	for i := range data {
		data[i] = float32((rng.Float64()*2.0 - 1.0) * bound)
	}
	return t
}
