package hadryss

import (
	"github.com/pkg/errors"
)

const (
	// NumPoolingBlocks is the number of length-reducing blocks at the start of
	// the network, one pooling size is planned for each.
	NumPoolingBlocks = 8

	// maxDenseFinalLayerFeatures bounds the sequence length left over for the
	// full-width dense block after all length-reducing blocks.
	maxDenseFinalLayerFeatures = 10

	// poolingBlockKernelSize is the convolution kernel size of the
	// length-reducing blocks. Each unpadded convolution shortens the sequence
	// by this minus one.
	poolingBlockKernelSize = 3
)

// PoolingPlan holds the pooling size of each length-reducing block and the
// sequence length ("dense size") left over after all of them, for a given
// input length. Plans are created by PlanPooling and immutable afterwards.
type PoolingPlan struct {
	InputLength  int
	PoolingSizes [NumPoolingBlocks]int
	DenseSize    int
}

// PlanPooling searches for the pooling sizes that shrink a light curve of
// inputLength positions down to at most 10 after the NumPoolingBlocks
// length-reducing blocks.
//
// All pooling sizes start at 1. The search repeatedly scans the block
// positions in order and, before each increment, simulates the shrinkage of
// the current sizes; the first simulation that ends at or below the bound
// terminates the search, so earlier blocks absorb most of the downsampling.
// The scan order is part of the contract: a given input length always maps to
// the same plan, and previously trained weights depend on that layout.
//
// Input lengths too short to survive the 8 unpadded convolutions drive the
// simulated length to zero or below; those are rejected with an error rather
// than clamped, since the dense size becomes a convolution kernel size and
// must be at least 1.
func PlanPooling(inputLength int) (*PoolingPlan, error) {
	if inputLength <= 0 {
		return nil, errors.Errorf("input length must be positive, got %d", inputLength)
	}
	var poolingSizes [NumPoolingBlocks]int
	for i := range poolingSizes {
		poolingSizes[i] = 1
	}
	for {
		for i := range poolingSizes {
			finalSize := simulateShrink(inputLength, poolingSizes)
			if finalSize <= maxDenseFinalLayerFeatures {
				if finalSize < 1 {
					return nil, errors.Errorf(
						"input length %d is too short: the planned blocks reduce it to %d positions, need at least 1",
						inputLength, finalSize)
				}
				return &PoolingPlan{
					InputLength:  inputLength,
					PoolingSizes: poolingSizes,
					DenseSize:    finalSize,
				}, nil
			}
			poolingSizes[i]++
		}
	}
}

// Simulate re-derives the final sequence length from the plan's input length
// and pooling sizes. For any plan returned by PlanPooling it equals DenseSize.
func (p *PoolingPlan) Simulate() int {
	return simulateShrink(p.InputLength, p.PoolingSizes)
}

// simulateShrink models each block as an unpadded convolution of kernel size 3
// (shortening the sequence by 2) followed by pooling (floor-dividing it by the
// block's pooling size).
func simulateShrink(inputLength int, poolingSizes [NumPoolingBlocks]int) int {
	size := inputLength
	for _, poolingSize := range poolingSizes {
		size = floorDiv(size-(poolingBlockKernelSize-1), poolingSize)
	}
	return size
}

// floorDiv divides a by b rounding towards negative infinity. Go's integer
// division truncates towards zero instead, which disagrees with the shrink
// simulation's floor semantics once intermediate sizes go negative.
func floorDiv(a, b int) int {
	quotient := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		quotient--
	}
	return quotient
}
