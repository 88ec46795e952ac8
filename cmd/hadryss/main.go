// Hadryss light-curve classifier demo.
// It auto-sizes a model for the requested input length, generates synthetic
// light curves and runs batched inference, reporting summary statistics of the
// predictions.
package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"slices"

	"github.com/gomlx/gomlx/backends"
	. "github.com/gomlx/gomlx/graph"
	"github.com/gomlx/gomlx/ml/context"
	"github.com/gomlx/gomlx/types/tensors"
	"github.com/janpfeifer/must"
	"github.com/schollz/progressbar/v3"
	"gonum.org/v1/gonum/stat"
	"k8s.io/klog/v2"

	_ "github.com/gomlx/gomlx/backends/default"

	"github.com/researcher2424/final-catalog/hadryss"
)

var (
	flagInputLength = flag.Int("input_length", hadryss.DefaultInputLength,
		"Light curve length the model auto-sizes itself for.")
	flagBatchSize  = flag.Int("batch_size", 32, "Light curves per inference batch.")
	flagNumBatches = flag.Int("batches", 10, "Number of batches to run.")
	flagHead       = flag.String("head", "binary",
		"Output head: \"binary\", \"probability\" or \"score\".")
	flagNumClasses = flag.Int("classes", 5, "Number of classes for the multi-class heads.")
	flagSeed       = flag.Int64("seed", 42, "Seed for the synthetic light curves.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	var head hadryss.Head
	switch *flagHead {
	case "binary":
		head = hadryss.BinaryHead{}
	case "probability":
		head = hadryss.MultiClassProbabilityHead{NumClasses: *flagNumClasses}
	case "score":
		head = hadryss.MultiClassScoreHead{NumClasses: *flagNumClasses}
	default:
		klog.Exitf("unknown head %q, want \"binary\", \"probability\" or \"score\"", *flagHead)
	}
	model := must.M1(hadryss.New(*flagInputLength, head))
	fmt.Printf("Input length %d: pooling sizes %v, dense size %d\n",
		model.InputLength(), model.PoolingSizes(), model.DenseSize())

	backend := backends.MustNew()
	fmt.Printf("Backend: %s\n", backend.Description())
	ctx := context.New()
	ctx.RngStateFromSeed(*flagSeed)
	exec := context.NewExec(backend, ctx, func(ctx *context.Context, lightCurves *Node) *Node {
		return model.BuildGraph(ctx, lightCurves)
	})

	rng := rand.New(rand.NewSource(*flagSeed))
	var predictions []float64
	bar := progressbar.Default(int64(*flagNumBatches), "inference")
	for range *flagNumBatches {
		batch := syntheticLightCurves(rng, *flagBatchSize, *flagInputLength)
		input := tensors.FromFlatDataAndDimensions(batch, *flagBatchSize, *flagInputLength)
		outputs := exec.Call(input)
		predictions = append(predictions, flatten(outputs[0])...)
		must.M(bar.Add(1))
	}

	mean, stddev := stat.MeanStdDev(predictions, nil)
	fmt.Printf("\n%d predictions: min=%.4f max=%.4f mean=%.4f stddev=%.4f\n",
		len(predictions), slices.Min(predictions), slices.Max(predictions), mean, stddev)
}

// syntheticLightCurves generates batchSize flux series of the given length:
// a unit baseline with sinusoidal stellar variability, one box-shaped transit
// dip and gaussian noise.
func syntheticLightCurves(rng *rand.Rand, batchSize, length int) []float32 {
	flux := make([]float32, 0, batchSize*length)
	for range batchSize {
		period := 50 + rng.Float64()*200
		amplitude := 0.01 + rng.Float64()*0.05
		phase := rng.Float64() * 2 * math.Pi
		transitStart := rng.Intn(length)
		transitWidth := 5 + rng.Intn(20)
		transitDepth := 0.05 + rng.Float64()*0.1
		for i := range length {
			value := 1 + amplitude*math.Sin(2*math.Pi*float64(i)/period+phase)
			if i >= transitStart && i < transitStart+transitWidth {
				value -= transitDepth
			}
			value += rng.NormFloat64() * 0.001
			flux = append(flux, float32(value))
		}
	}
	return flux
}

// flatten collects a prediction tensor, `[batch]` or `[batch, numClasses]`,
// into a flat float64 slice.
func flatten(t *tensors.Tensor) []float64 {
	var flat []float64
	switch value := t.Value().(type) {
	case []float32:
		for _, v := range value {
			flat = append(flat, float64(v))
		}
	case [][]float32:
		for _, row := range value {
			for _, v := range row {
				flat = append(flat, float64(v))
			}
		}
	default:
		klog.Exitf("unexpected prediction tensor shape %s", t.Shape())
	}
	return flat
}
