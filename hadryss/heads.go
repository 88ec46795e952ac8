package hadryss

import (
	. "github.com/gomlx/gomlx/graph"
	"github.com/gomlx/gomlx/ml/context"
	"github.com/gomlx/gomlx/ml/layers"
	"github.com/gomlx/gomlx/ml/train/losses"
	"github.com/pkg/errors"
)

// Head maps the network's final feature map, shaped `[batch, 1, 20]`, to the
// task output. Exactly one head is selected when the model is constructed.
//
// The set of heads is closed: BinaryHead, MultiClassProbabilityHead and
// MultiClassScoreHead.
type Head interface {
	// Apply builds the head's graph on the feature map.
	Apply(ctx *context.Context, featureMap *Node) *Node

	// Loss returns the loss function that pairs with the head's output when
	// the model is trained with the gomlx train package.
	Loss() losses.LossFn

	// validate reports head misconfiguration. It also seals the interface to
	// the variants defined in this package.
	validate() error
}

// BinaryHead predicts a single probability per example for binary
// classification. Output shape: `[batch]`, values in (0, 1).
type BinaryHead struct{}

// Apply implements Head.
func (BinaryHead) Apply(ctx *context.Context, featureMap *Node) *Node {
	x := layers.Convolution(ctx.In("prediction"), featureMap).
		Channels(1).KernelSize(1).Done()
	x = Sigmoid(x)
	return Reshape(x, -1)
}

// Loss implements Head: binary cross-entropy on probabilities.
func (BinaryHead) Loss() losses.LossFn { return losses.BinaryCrossentropy }

func (BinaryHead) validate() error { return nil }

// MultiClassProbabilityHead predicts a calibrated probability distribution
// over NumClasses mutually exclusive classes. Output shape:
// `[batch, NumClasses]`, each row summing to 1.
type MultiClassProbabilityHead struct {
	NumClasses int
}

// Apply implements Head.
func (h MultiClassProbabilityHead) Apply(ctx *context.Context, featureMap *Node) *Node {
	batchSize := featureMap.Shape().Dimensions[0]
	x := layers.Convolution(ctx.In("prediction"), featureMap).
		Channels(h.NumClasses).KernelSize(1).Done()
	x = Reshape(x, batchSize, h.NumClasses)
	return Softmax(x)
}

// Loss implements Head: categorical cross-entropy on probabilities.
func (MultiClassProbabilityHead) Loss() losses.LossFn { return losses.CategoricalCrossEntropy }

func (h MultiClassProbabilityHead) validate() error {
	if h.NumClasses <= 0 {
		return errors.Errorf("number of classes must be positive, got %d", h.NumClasses)
	}
	return nil
}

// MultiClassScoreHead predicts raw per-class scores without normalization, for
// losses that apply their own. Output shape: `[batch, NumClasses]`.
type MultiClassScoreHead struct {
	NumClasses int
}

// Apply implements Head.
func (h MultiClassScoreHead) Apply(ctx *context.Context, featureMap *Node) *Node {
	batchSize := featureMap.Shape().Dimensions[0]
	x := layers.Convolution(ctx.In("prediction"), featureMap).
		Channels(h.NumClasses).KernelSize(1).Done()
	return Reshape(x, batchSize, h.NumClasses)
}

// Loss implements Head: sparse categorical cross-entropy on logits.
func (MultiClassScoreHead) Loss() losses.LossFn { return losses.SparseCategoricalCrossEntropyLogits }

func (h MultiClassScoreHead) validate() error {
	if h.NumClasses <= 0 {
		return errors.Errorf("number of classes must be positive, got %d", h.NumClasses)
	}
	return nil
}
