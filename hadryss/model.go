package hadryss

import (
	. "github.com/gomlx/gomlx/graph"
	"github.com/gomlx/gomlx/ml/context"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// DefaultInputLength is the light curve length NewDefault auto-sizes for.
const DefaultInputLength = 3500

// finalChannels is the channel width of the feature map handed to the head.
const finalChannels = 20

// Model is a Hadryss network auto-sized for one input length. It owns its
// pooling plan and output head; both are fixed at construction.
//
// A Model is safe for concurrent use: BuildGraph is a pure function of its
// inputs and the variables held by the context it is given.
type Model struct {
	inputLength int
	plan        *PoolingPlan
	head        Head
}

// New creates a Model auto-sized for light curves of inputLength positions,
// with the given output head. It fails if the input length is non-positive or
// too short to shrink, or if the head is missing or misconfigured.
//
// The pooling plan is computed here, once; it never changes afterwards.
func New(inputLength int, head Head) (*Model, error) {
	if inputLength <= 0 {
		return nil, errors.Errorf("input length must be positive, got %d", inputLength)
	}
	if head == nil {
		return nil, errors.New("model requires an output head")
	}
	if err := head.validate(); err != nil {
		return nil, errors.WithMessage(err, "invalid output head")
	}
	plan, err := PlanPooling(inputLength)
	if err != nil {
		return nil, err
	}
	klog.V(1).Infof("hadryss: input length %d planned with pooling sizes %v and dense size %d",
		inputLength, plan.PoolingSizes, plan.DenseSize)
	return &Model{
		inputLength: inputLength,
		plan:        plan,
		head:        head,
	}, nil
}

// NewDefault creates a Model for DefaultInputLength with a BinaryHead.
func NewDefault() (*Model, error) {
	return New(DefaultInputLength, BinaryHead{})
}

// InputLength returns the light curve length the model was auto-sized for.
func (m *Model) InputLength() int { return m.inputLength }

// PoolingSizes returns the planned pooling size of each length-reducing block.
func (m *Model) PoolingSizes() [NumPoolingBlocks]int { return m.plan.PoolingSizes }

// DenseSize returns the sequence length left after the length-reducing blocks,
// used as the kernel size of the full-width block that consumes it.
func (m *Model) DenseSize() int { return m.plan.DenseSize }

// Head returns the model's output head.
func (m *Model) Head() Head { return m.head }

// BuildGraph builds the forward pass. lightCurves must be shaped
// `[batch, inputLength]`, or anything reshapeable to that. The output shape
// depends on the head: `[batch]` for BinaryHead, `[batch, numClasses]` for the
// multi-class heads.
func (m *Model) BuildGraph(ctx *context.Context, lightCurves *Node) *Node {
	ctx = ctx.In("hadryss")
	x := Reshape(lightCurves, -1, m.inputLength, 1)
	batchSize := x.Shape().Dimensions[0]

	blockIdx := 0
	nextCtx := func() *context.Context {
		newCtx := ctx.Inf("%03d_block", blockIdx)
		blockIdx++
		return newCtx
	}

	poolingSizes := m.plan.PoolingSizes
	denseSize := m.plan.DenseSize
	x = Block(nextCtx(), x).Channels(8).KernelSize(3).PoolingSize(poolingSizes[0]).Done()
	x = Block(nextCtx(), x).Channels(8).KernelSize(3).PoolingSize(poolingSizes[1]).Done()
	x = Block(nextCtx(), x).Channels(16).KernelSize(3).PoolingSize(poolingSizes[2]).
		BatchNormalization(false).DropoutRate(0.1).Done()
	x = Block(nextCtx(), x).Channels(32).KernelSize(3).PoolingSize(poolingSizes[3]).
		BatchNormalization(false).DropoutRate(0.1).Done()
	x = Block(nextCtx(), x).Channels(64).KernelSize(3).PoolingSize(poolingSizes[4]).
		BatchNormalization(false).DropoutRate(0.1).Done()
	x = Block(nextCtx(), x).Channels(64).KernelSize(3).PoolingSize(poolingSizes[5]).
		BatchNormalization(false).DropoutRate(0.1).Done()
	x = Block(nextCtx(), x).Channels(48).KernelSize(3).PoolingSize(poolingSizes[6]).
		DropoutRate(0.1).Done()
	x = Block(nextCtx(), x).Channels(finalChannels).KernelSize(3).PoolingSize(poolingSizes[7]).
		DropoutRate(0.1).NonSpatial(denseSize + 2).Done()
	x = Block(nextCtx(), x).Channels(finalChannels).KernelSize(denseSize).
		DropoutRate(0.1).Done()
	x = Block(nextCtx(), x).Channels(finalChannels).KernelSize(1).Done()
	x.AssertDims(batchSize, 1, finalChannels)

	return m.head.Apply(ctx.In("head"), x)
}

// ModelGraph is an adapter for the gomlx train package's model function
// signature: inputs[0] is the batch of light curves; the single output is the
// head's prediction, pairing with the loss from Model.Head().Loss().
func (m *Model) ModelGraph(ctx *context.Context, spec any, inputs []*Node) []*Node {
	_ = spec // The model is sized by construction, not by the dataset spec.
	return []*Node{m.BuildGraph(ctx, inputs[0])}
}
