package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hupe1980/sparsedot/codec"
	"github.com/hupe1980/sparsedot/csr"
	"github.com/hupe1980/sparsedot/resource"
)

type convertFlags struct {
	in          string
	out         string
	order       string
	values      string
	indices     string
	compression string
}

func newConvertCmd(a *app) *cobra.Command {
	f := &convertFlags{}

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert between Matrix Market and binary matrix files",
		Long: `Convert a matrix file. Files ending in .mtx are Matrix Market coordinate
files; everything else uses the binary matrix format. The storage order and the
value and index types of the output can be changed on the way.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConvert(cmd, a, f)
		},
	}

	cmd.Flags().StringVarP(&f.in, "in", "i", "", "Input file")
	_ = cmd.MarkFlagRequired("in")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "Output file")
	_ = cmd.MarkFlagRequired("out")

	cmd.Flags().StringVar(&f.order, "order", "", "Output storage order (row, col); default keeps the input order")
	cmd.Flags().StringVar(&f.values, "values", "", "Output value type (float32, float64, int32, int64)")
	cmd.Flags().StringVar(&f.indices, "indices", "", "Output index type (int32, int64)")
	cmd.Flags().StringVar(&f.compression, "compression", codec.CompressionZSTD.String(), "Output compression (none, lz4, zstd)")

	return cmd
}

func runConvert(cmd *cobra.Command, a *app, f *convertFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	rc := a.controller(0)

	in, err := a.load(ctx, f.in, rc)
	if err != nil {
		return err
	}
	defer in.release()

	k, err := in.kinds()
	if err != nil {
		return err
	}
	switch k {
	case kinds{codec.KindFloat32, codec.KindInt32}:
		return convertFile[float32, int32](ctx, cmd, a, f, in, rc)
	case kinds{codec.KindFloat32, codec.KindInt64}:
		return convertFile[float32, int64](ctx, cmd, a, f, in, rc)
	case kinds{codec.KindFloat64, codec.KindInt32}:
		return convertFile[float64, int32](ctx, cmd, a, f, in, rc)
	case kinds{codec.KindFloat64, codec.KindInt64}:
		return convertFile[float64, int64](ctx, cmd, a, f, in, rc)
	case kinds{codec.KindInt32, codec.KindInt32}:
		return convertFile[int32, int32](ctx, cmd, a, f, in, rc)
	case kinds{codec.KindInt32, codec.KindInt64}:
		return convertFile[int32, int64](ctx, cmd, a, f, in, rc)
	case kinds{codec.KindInt64, codec.KindInt32}:
		return convertFile[int64, int32](ctx, cmd, a, f, in, rc)
	case kinds{codec.KindInt64, codec.KindInt64}:
		return convertFile[int64, int64](ctx, cmd, a, f, in, rc)
	default:
		return fmt.Errorf("%w: %s", codec.ErrUnsupportedKind, k)
	}
}

func convertFile[T csr.Number, I csr.Index](ctx context.Context, cmd *cobra.Command, a *app, f *convertFlags, in *content, rc *resource.Controller) error {
	m, err := decodeMatrix[T, I](in)
	if err != nil {
		return err
	}
	return convertMatrix(ctx, cmd, a, f, m, rc)
}

func convertMatrix[T csr.Number, I csr.Index](ctx context.Context, cmd *cobra.Command, a *app, f *convertFlags, m *csr.Matrix[T, I], rc *resource.Controller) error {
	compression, err := codec.ParseCompression(f.compression)
	if err != nil {
		return err
	}
	target, err := parseKinds(f.values, f.indices, kinds{codec.KindOf[T](), codec.KindOf[I]()})
	if err != nil {
		return err
	}

	if f.order != "" {
		order, err := csr.ParseOrder(f.order)
		if err != nil {
			return err
		}
		if from := m.Order(); from != order {
			if m, err = m.ToOrder(order); err != nil {
				return err
			}
			a.logger.LogConversion("input", from, order, m.NNZ())
		}
	}

	switch target {
	case kinds{codec.KindFloat32, codec.KindInt32}:
		err = writeConverted[float32, int32](ctx, a, f, m, compression, rc)
	case kinds{codec.KindFloat32, codec.KindInt64}:
		err = writeConverted[float32, int64](ctx, a, f, m, compression, rc)
	case kinds{codec.KindFloat64, codec.KindInt32}:
		err = writeConverted[float64, int32](ctx, a, f, m, compression, rc)
	case kinds{codec.KindFloat64, codec.KindInt64}:
		err = writeConverted[float64, int64](ctx, a, f, m, compression, rc)
	case kinds{codec.KindInt32, codec.KindInt32}:
		err = writeConverted[int32, int32](ctx, a, f, m, compression, rc)
	case kinds{codec.KindInt32, codec.KindInt64}:
		err = writeConverted[int32, int64](ctx, a, f, m, compression, rc)
	case kinds{codec.KindInt64, codec.KindInt32}:
		err = writeConverted[int64, int32](ctx, a, f, m, compression, rc)
	case kinds{codec.KindInt64, codec.KindInt64}:
		err = writeConverted[int64, int64](ctx, a, f, m, compression, rc)
	default:
		err = fmt.Errorf("%w: %s", codec.ErrUnsupportedKind, target)
	}
	if err != nil {
		return err
	}

	cmd.Printf("%s: %d x %d, %s entries, %s, %s-major\n",
		f.out, m.Rows(), m.Cols(), humanize.Comma(int64(m.NNZ())), target, m.Order())
	return nil
}

func writeConverted[U csr.Number, J csr.Index, T csr.Number, I csr.Index](ctx context.Context, a *app, f *convertFlags, m *csr.Matrix[T, I], c codec.Compression, rc *resource.Controller) error {
	out, err := csr.Convert[U, J](m)
	if err != nil {
		return err
	}
	return saveMatrix(ctx, a, f.out, out, c, rc)
}
