package hadryss

import (
	"math/rand"
	"testing"

	. "github.com/gomlx/gomlx/graph"
	"github.com/gomlx/gomlx/graph/graphtest"
	"github.com/gomlx/gomlx/ml/context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// applyHead runs the head on a random `[batchSize, 1, 20]` feature map.
func applyHead(t *testing.T, head Head, batchSize int) any {
	t.Helper()
	backend := graphtest.BuildTestBackend()
	rng := rand.New(rand.NewSource(42))
	ctx := context.New()
	ctx.RngStateFromSeed(42)
	got := context.ExecOnce(backend, ctx, func(ctx *context.Context, featureMap *Node) *Node {
		return head.Apply(ctx, featureMap)
	}, randomSequence(rng, batchSize, 1, finalChannels))
	return got.Value()
}

func TestBinaryHead(t *testing.T) {
	predictions, ok := applyHead(t, BinaryHead{}, 4).([]float32)
	require.True(t, ok, "binary head must output a flat [batch] vector")
	require.Len(t, predictions, 4)
	for i, p := range predictions {
		assert.Greaterf(t, p, float32(0), "prediction %d", i)
		assert.Lessf(t, p, float32(1), "prediction %d", i)
	}
}

func TestMultiClassProbabilityHead(t *testing.T) {
	predictions, ok := applyHead(t, MultiClassProbabilityHead{NumClasses: 5}, 4).([][]float32)
	require.True(t, ok, "probability head must output [batch, numClasses]")
	require.Len(t, predictions, 4)
	for i, row := range predictions {
		require.Lenf(t, row, 5, "example %d", i)
		var sum float64
		for _, p := range row {
			assert.GreaterOrEqual(t, p, float32(0))
			assert.LessOrEqual(t, p, float32(1))
			sum += float64(p)
		}
		assert.InDeltaf(t, 1.0, sum, 1e-5, "example %d probabilities must sum to 1", i)
	}
}

func TestMultiClassScoreHead(t *testing.T) {
	predictions, ok := applyHead(t, MultiClassScoreHead{NumClasses: 5}, 4).([][]float32)
	require.True(t, ok, "score head must output [batch, numClasses]")
	require.Len(t, predictions, 4)
	for i, row := range predictions {
		require.Lenf(t, row, 5, "example %d", i)
	}
}

func TestHeadLosses(t *testing.T) {
	assert.NotNil(t, BinaryHead{}.Loss())
	assert.NotNil(t, MultiClassProbabilityHead{NumClasses: 3}.Loss())
	assert.NotNil(t, MultiClassScoreHead{NumClasses: 3}.Loss())
}
