package nn

import (
	"fmt"
	"math"

	"digitnet/internal/tensor"
)

// Softmax normalizes each row of [batch, classes] scores into a probability
// distribution: every output lies in (0, 1) and each row sums to 1.
//
// Exponentials are computed after subtracting the row maximum (log-sum-exp
// trick), so scores up to the float32 limit do not overflow.
//
// Backward applies the exact softmax Jacobian-vector product
//
//	dz_i = p_i * (g_i - sum_j g_j * p_j)
//
// which stays correct for any downstream loss, not just cross-entropy.
type Softmax struct {
	output *tensor.Tensor // cached probabilities
}

// NewSoftmax creates a softmax stage.
func NewSoftmax() *Softmax {
	return &Softmax{}
}

// Forward normalizes each row into a probability distribution.
func (s *Softmax) Forward(x *tensor.Tensor, mode Mode) *tensor.Tensor {
	shape := x.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("softmax: expected 2D input [batch, classes], got %v", shape))
	}

	batch, classes := shape[0], shape[1]
	out := tensor.Zeros(shape)
	inData := x.Data()
	outData := out.Data()

	for b := 0; b < batch; b++ {
		row := inData[b*classes : (b+1)*classes]
		outRow := outData[b*classes : (b+1)*classes]

		maxVal := row[0]
		for _, v := range row {
			if v > maxVal {
				maxVal = v
			}
		}

		sum := float32(0)
		for i, v := range row {
			e := float32(math.Exp(float64(v - maxVal)))
			outRow[i] = e
			sum += e
		}
		inv := 1.0 / sum
		for i := range outRow {
			outRow[i] *= inv
		}
	}

	if mode == Train {
		s.output = out
	}
	return out
}

// Backward computes the Jacobian-vector product for each row.
func (s *Softmax) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if s.output == nil {
		panic("softmax: Backward called before Forward in Train mode")
	}

	shape := s.output.Shape()
	batch, classes := shape[0], shape[1]
	inputGrad := tensor.Zeros(shape)

	probs := s.output.Data()
	gradData := grad.Data()
	outData := inputGrad.Data()

	for b := 0; b < batch; b++ {
		pRow := probs[b*classes : (b+1)*classes]
		gRow := gradData[b*classes : (b+1)*classes]
		outRow := outData[b*classes : (b+1)*classes]

		dot := float32(0)
		for i := range pRow {
			dot += gRow[i] * pRow[i]
		}
		for i := range pRow {
			outRow[i] = pRow[i] * (gRow[i] - dot)
		}
	}
	return inputGrad
}

// Parameters returns nil; softmax has no learnable parameters.
func (s *Softmax) Parameters() []*Parameter {
	return nil
}

// String returns a short description of the stage.
func (s *Softmax) String() string {
	return "Softmax()"
}
