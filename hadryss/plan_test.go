package hadryss

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanPooling3500(t *testing.T) {
	plan, err := PlanPooling(3500)
	require.NoError(t, err)
	assert.Equal(t, [NumPoolingBlocks]int{3, 2, 2, 2, 2, 2, 2, 2}, plan.PoolingSizes)
	assert.Equal(t, 7, plan.DenseSize)
	assert.Equal(t, plan.DenseSize, plan.Simulate())
}

func TestPlanPooling1000(t *testing.T) {
	plan, err := PlanPooling(1000)
	require.NoError(t, err)
	assert.Equal(t, [NumPoolingBlocks]int{2, 2, 2, 2, 2, 2, 1, 1}, plan.PoolingSizes)
	assert.Equal(t, 9, plan.DenseSize)
}

func TestPlanPoolingRange(t *testing.T) {
	for inputLength := 2000; inputLength <= 100_000; inputLength += 97 {
		plan, err := PlanPooling(inputLength)
		require.NoErrorf(t, err, "input length %d", inputLength)
		require.GreaterOrEqualf(t, plan.DenseSize, 1, "input length %d", inputLength)
		require.LessOrEqualf(t, plan.DenseSize, 10, "input length %d", inputLength)
		require.Equalf(t, plan.DenseSize, plan.Simulate(),
			"input length %d: plan does not round-trip", inputLength)
		for i, poolingSize := range plan.PoolingSizes {
			require.Positivef(t, poolingSize, "input length %d, block %d", inputLength, i)
			if i > 0 {
				// Earlier positions are incremented first, so sizes never increase
				// along the blocks.
				require.GreaterOrEqualf(t, plan.PoolingSizes[i-1], poolingSize,
					"input length %d: pooling sizes must be non-increasing, got %v",
					inputLength, plan.PoolingSizes)
			}
		}
		// The scan is round-robin: adjacent rounds leave at most one increment
		// of difference between the first and last position.
		require.LessOrEqualf(t, plan.PoolingSizes[0]-plan.PoolingSizes[NumPoolingBlocks-1], 1,
			"input length %d: pooling sizes %v", inputLength, plan.PoolingSizes)
	}
}

func TestPlanPoolingDeterminism(t *testing.T) {
	for _, inputLength := range []int{500, 1000, 3500, 18723, 100_000} {
		first, err := PlanPooling(inputLength)
		require.NoError(t, err)
		second, err := PlanPooling(inputLength)
		require.NoError(t, err)
		assert.Equal(t, first, second, "input length %d", inputLength)
	}
}

func TestPlanPoolingShortInputs(t *testing.T) {
	// Lengths where the simulation reaches zero or goes negative are rejected,
	// never clamped.
	for _, inputLength := range []int{1, 2, 10, 16, 100} {
		_, err := PlanPooling(inputLength)
		assert.Errorf(t, err, "input length %d should be rejected", inputLength)
	}
	_, err := PlanPooling(0)
	assert.Error(t, err)
	_, err = PlanPooling(-5)
	assert.Error(t, err)
}

func TestFloorDiv(t *testing.T) {
	assert.Equal(t, 1, floorDiv(3, 2))
	assert.Equal(t, 2, floorDiv(4, 2))
	assert.Equal(t, 0, floorDiv(0, 3))
	// Negative numerators round towards negative infinity, matching the shrink
	// simulation's floor semantics.
	assert.Equal(t, -1, floorDiv(-1, 2))
	assert.Equal(t, -2, floorDiv(-3, 2))
	assert.Equal(t, -2, floorDiv(-4, 2))
	assert.Equal(t, -1, floorDiv(-2, 3))
}
