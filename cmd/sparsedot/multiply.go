package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hupe1980/sparsedot"
	"github.com/hupe1980/sparsedot/codec"
	"github.com/hupe1980/sparsedot/csr"
	"github.com/hupe1980/sparsedot/internal/mmio"
	"github.com/hupe1980/sparsedot/resource"
)

type multiplyFlags struct {
	left        string
	right       string
	out         string
	topN        int
	threshold   float64
	workers     int
	strategy    string
	blockSize   int
	density     float64
	partition   string
	memoryLimit string
	compression string
}

func newMultiplyCmd(a *app) *cobra.Command {
	f := &multiplyFlags{}

	cmd := &cobra.Command{
		Use:   "multiply",
		Short: "Compute the top-N truncated product of two matrix files",
		Long: `Multiply two matrix files, keeping for every result row the N largest
entries strictly above the threshold. Both files must hold the same value and
index types. The result is written to --out (.mtx for Matrix Market) or, when
--out is omitted, printed to stdout in Matrix Market format.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMultiply(cmd, a, f)
		},
	}

	cmd.Flags().StringVarP(&f.left, "left", "a", "", "Left operand file")
	_ = cmd.MarkFlagRequired("left")
	cmd.Flags().StringVarP(&f.right, "right", "b", "", "Right operand file")
	_ = cmd.MarkFlagRequired("right")
	cmd.Flags().IntVarP(&f.topN, "top-n", "n", 0, "Entries kept per result row")
	_ = cmd.MarkFlagRequired("top-n")

	cmd.Flags().StringVarP(&f.out, "out", "o", "", "Output file")
	cmd.Flags().Float64Var(&f.threshold, "threshold", 0, "Keep only entries strictly above this value")
	cmd.Flags().IntVarP(&f.workers, "workers", "w", 1, "Parallel workers (1 runs serially)")
	cmd.Flags().StringVar(&f.strategy, "strategy", sparsedot.StrategyAuto.String(), "Kernel strategy (auto, accumulate, scalar, block)")
	cmd.Flags().IntVar(&f.blockSize, "block-size", sparsedot.DefaultBlockSize, "Columns per block for the block strategy")
	cmd.Flags().Float64Var(&f.density, "density", 0, "Expected fill of topN*rows used to pre-size the result")
	cmd.Flags().StringVar(&f.partition, "partition", sparsedot.PartitionByWork.String(), "Worker partitioning (work, rows)")
	cmd.Flags().StringVar(&f.memoryLimit, "memory-limit", "", "Cap result and scratch memory, e.g. 2GiB")
	cmd.Flags().StringVar(&f.compression, "compression", codec.CompressionZSTD.String(), "Output compression (none, lz4, zstd)")

	return cmd
}

func runMultiply(cmd *cobra.Command, a *app, f *multiplyFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	memoryLimit, err := parseBytes("memory-limit", f.memoryLimit)
	if err != nil {
		return err
	}
	rc := a.controller(memoryLimit)

	left, err := a.load(ctx, f.left, rc)
	if err != nil {
		return err
	}
	defer left.release()
	right, err := a.load(ctx, f.right, rc)
	if err != nil {
		return err
	}
	defer right.release()

	lk, err := left.kinds()
	if err != nil {
		return err
	}
	rk, err := right.kinds()
	if err != nil {
		return err
	}
	if lk != rk {
		return fmt.Errorf("operand types differ: %s is %s, %s is %s", f.left, lk, f.right, rk)
	}

	switch lk {
	case kinds{codec.KindFloat32, codec.KindInt32}:
		return multiplyFiles[float32, int32](ctx, cmd, a, f, left, right, rc)
	case kinds{codec.KindFloat32, codec.KindInt64}:
		return multiplyFiles[float32, int64](ctx, cmd, a, f, left, right, rc)
	case kinds{codec.KindFloat64, codec.KindInt32}:
		return multiplyFiles[float64, int32](ctx, cmd, a, f, left, right, rc)
	case kinds{codec.KindFloat64, codec.KindInt64}:
		return multiplyFiles[float64, int64](ctx, cmd, a, f, left, right, rc)
	case kinds{codec.KindInt32, codec.KindInt32}:
		return multiplyFiles[int32, int32](ctx, cmd, a, f, left, right, rc)
	case kinds{codec.KindInt32, codec.KindInt64}:
		return multiplyFiles[int32, int64](ctx, cmd, a, f, left, right, rc)
	case kinds{codec.KindInt64, codec.KindInt32}:
		return multiplyFiles[int64, int32](ctx, cmd, a, f, left, right, rc)
	case kinds{codec.KindInt64, codec.KindInt64}:
		return multiplyFiles[int64, int64](ctx, cmd, a, f, left, right, rc)
	default:
		return fmt.Errorf("%w: %s", codec.ErrUnsupportedKind, lk)
	}
}

func (f *multiplyFlags) options(rc *resource.Controller, logger *sparsedot.Logger) ([]sparsedot.Option, error) {
	strategy, err := sparsedot.ParseStrategy(f.strategy)
	if err != nil {
		return nil, err
	}
	scheme, err := sparsedot.ParsePartitionScheme(f.partition)
	if err != nil {
		return nil, err
	}

	opts := []sparsedot.Option{
		sparsedot.WithLogger(logger),
		sparsedot.WithStrategy(strategy),
		sparsedot.WithBlockSize(f.blockSize),
		sparsedot.WithDensity(f.density),
		sparsedot.WithPartitionScheme(scheme),
	}
	if rc != nil {
		opts = append(opts, sparsedot.WithResourceController(rc))
	}
	return opts, nil
}

func multiplyFiles[T csr.Number, I csr.Index](ctx context.Context, cmd *cobra.Command, a *app, f *multiplyFlags, leftFile, rightFile *content, rc *resource.Controller) error {
	compression, err := codec.ParseCompression(f.compression)
	if err != nil {
		return err
	}
	opts, err := f.options(rc, a.logger)
	if err != nil {
		return err
	}

	left, err := decodeMatrix[T, I](leftFile)
	if err != nil {
		return err
	}
	right, err := decodeMatrix[T, I](rightFile)
	if err != nil {
		return err
	}

	start := time.Now()
	var res *sparsedot.Result[T, I]
	if f.workers > 1 {
		res, err = sparsedot.MultiplyTopNParallel(left, right, f.topN, T(f.threshold), f.workers, opts...)
	} else {
		res, err = sparsedot.MultiplyTopN(left, right, f.topN, T(f.threshold), opts...)
	}
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if f.out == "" {
		return mmio.Write(cmd.OutOrStdout(), res.Matrix)
	}
	if err := saveMatrix(ctx, a, f.out, res.Matrix, compression, rc); err != nil {
		return err
	}

	s := res.Stats
	cmd.Printf("%s: %d x %d, %s entries, strategy %s, %d partition(s), %s reserved, %s\n",
		f.out, s.Rows, s.Cols, humanize.Comma(int64(res.TotalNonzero)), s.Strategy, s.Workers,
		humanize.IBytes(uint64(max(s.BytesReserved, 0))), elapsed.Round(time.Microsecond))
	return nil
}
