// Package hadryss implements the Hadryss model, a 1D convolutional neural
// network for classifying fixed-length light curves that auto-sizes itself for
// a given input length.
//
// The model is a strictly sequential stack of 10 light-curve network blocks
// (convolution, optional batch normalization, optional dropout, LeakyReLU and
// max pooling) followed by one of three interchangeable output heads:
// BinaryHead, MultiClassProbabilityHead or MultiClassScoreHead.
//
// Auto-sizing is done once at construction time by PlanPooling, which searches
// for per-block pooling sizes such that the 8 length-reducing blocks shrink any
// input length down to at most 10 positions. The remaining length (the "dense
// size") becomes the kernel size of the penultimate block, which consumes the
// whole sequence in a single step.
//
// Graphs are built with GoMLX: construct a Model with New or NewDefault and
// wire Model.BuildGraph (or Model.ModelGraph for the train package) into a
// context.Exec. Example:
//
//	model, err := hadryss.New(3500, hadryss.BinaryHead{})
//	if err != nil { ... }
//	exec := context.NewExec(backend, ctx, func(ctx *context.Context, x *Node) *Node {
//		return model.BuildGraph(ctx, x)
//	})
//	probabilities := exec.Call(lightCurves)[0]
package hadryss
