package hadryss

import (
	"github.com/gomlx/exceptions"
	. "github.com/gomlx/gomlx/graph"
	"github.com/gomlx/gomlx/ml/context"
	"github.com/gomlx/gomlx/ml/layers"
	"github.com/gomlx/gomlx/ml/layers/activations"
	"github.com/gomlx/gomlx/ml/layers/batchnorm"
)

// BlockBuilder configures one light-curve network block. Create it with Block,
// set the desired parameters and call Done.
type BlockBuilder struct {
	ctx                *context.Context
	x                  *Node
	channels           int
	kernelSize         int
	poolingSize        int
	batchNormalization bool
	dropoutRate        float64
	spatial            bool
	expectedLength     int
}

// Block prepares one block of the light-curve network on x, shaped
// `[batch, length, channels]`: an unpadded convolution, optional batch
// normalization, optional dropout, LeakyReLU and max pooling.
//
// Channels and KernelSize must be set. Defaults: pooling size 1 (no pooling),
// batch normalization enabled, no dropout, spatial mode.
//
// In spatial mode the output sequence length is
// `floor((length - (kernelSize-1)) / poolingSize)`.
func Block(ctx *context.Context, x *Node) *BlockBuilder {
	if x.Rank() != 3 {
		exceptions.Panicf("Block requires x shaped [batch, length, channels], got rank %d", x.Rank())
	}
	return &BlockBuilder{
		ctx:                ctx,
		x:                  x,
		poolingSize:        1,
		batchNormalization: true,
		spatial:            true,
	}
}

// Channels sets the number of output channels. There is no default and it must
// be set before Done is called.
func (b *BlockBuilder) Channels(channels int) *BlockBuilder {
	b.channels = channels
	return b
}

// KernelSize sets the convolution kernel size. There is no default and it must
// be set before Done is called.
func (b *BlockBuilder) KernelSize(kernelSize int) *BlockBuilder {
	b.kernelSize = kernelSize
	return b
}

// PoolingSize sets the max-pooling window and stride, so the sequence length
// is floor-divided by it. A pooling size of 1 disables pooling. Default is 1.
func (b *BlockBuilder) PoolingSize(poolingSize int) *BlockBuilder {
	b.poolingSize = poolingSize
	return b
}

// BatchNormalization enables or disables batch normalization after the
// convolution. Default is enabled.
func (b *BlockBuilder) BatchNormalization(enabled bool) *BlockBuilder {
	b.batchNormalization = enabled
	return b
}

// DropoutRate sets the dropout rate applied after normalization. Dropout only
// takes effect when the context is marked as training. Default is 0.
func (b *BlockBuilder) DropoutRate(rate float64) *BlockBuilder {
	b.dropoutRate = rate
	return b
}

// NonSpatial switches the block into flattening mode, used once near the end
// of the network when the remaining positions are about to be collapsed: batch
// normalization runs over the sequence axis instead of the channel axis.
//
// expectedLength declares the sequence length the block was sized for,
// counting the convolution margin: the block's output is asserted to have
// exactly expectedLength-2 positions.
func (b *BlockBuilder) NonSpatial(expectedLength int) *BlockBuilder {
	b.spatial = false
	b.expectedLength = expectedLength
	return b
}

// Done builds the block and returns its output, shaped
// `[batch, newLength, channels]`.
func (b *BlockBuilder) Done() *Node {
	if b.channels <= 0 {
		exceptions.Panicf("block requires Channels > 0, got %d", b.channels)
	}
	if b.kernelSize <= 0 {
		exceptions.Panicf("block requires KernelSize > 0, got %d", b.kernelSize)
	}
	if b.poolingSize <= 0 {
		exceptions.Panicf("block requires PoolingSize > 0, got %d", b.poolingSize)
	}
	ctx := b.ctx
	x := layers.Convolution(ctx.In("conv"), b.x).
		Channels(b.channels).KernelSize(b.kernelSize).Done()
	if b.batchNormalization {
		featureAxis := -1
		if !b.spatial {
			// Normalize each remaining position instead of each channel.
			featureAxis = 1
		}
		x = batchnorm.New(ctx.In("norm"), x, featureAxis).Done()
	}
	if b.dropoutRate > 0 {
		x = layers.DropoutStatic(ctx.In("dropout"), x, b.dropoutRate)
	}
	x = activations.LeakyRelu(x)
	if b.poolingSize > 1 {
		x = MaxPool(x).Window(b.poolingSize).Done()
	}
	if !b.spatial {
		batchSize := b.x.Shape().Dimensions[0]
		x.AssertDims(batchSize, b.expectedLength-poolingBlockKernelSize+1, b.channels)
	}
	return x
}
