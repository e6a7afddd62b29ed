package main

import (
	"context"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/hupe1980/sparsedot/codec"
	"github.com/hupe1980/sparsedot/csr"
)

// report is the inspect output.
type report struct {
	Path        string      `json:"path"`
	FileBytes   int64       `json:"file_bytes"`
	Format      string      `json:"format"`
	Values      string      `json:"values"`
	Indices     string      `json:"indices"`
	Order       string      `json:"order"`
	Compression string      `json:"compression,omitempty"`
	Rows        int         `json:"rows"`
	Cols        int         `json:"cols"`
	NNZ         int         `json:"nnz"`
	Density     float64     `json:"density"`
	InnerUsed   uint64      `json:"inner_used"`
	Vectors     vectorStats `json:"vectors"`
}

// vectorStats summarises the entries per outer vector.
type vectorStats struct {
	Count int     `json:"count"`
	Empty int     `json:"empty"`
	Min   int     `json:"min"`
	Max   int     `json:"max"`
	Mean  float64 `json:"mean"`
}

func newInspectCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Print the header and structure of a matrix file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			r, err := inspect(ctx, a, args[0])
			if err != nil {
				return err
			}
			if asJSON {
				b, err := json.MarshalIndent(r, "", "  ")
				if err != nil {
					return err
				}
				cmd.Println(string(b))
				return nil
			}
			printReport(cmd, r)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	return cmd
}

func inspect(ctx context.Context, a *app, location string) (*report, error) {
	in, err := a.load(ctx, location, a.controller(0))
	if err != nil {
		return nil, err
	}
	defer in.release()

	var r *report
	if isMatrixMarket(location) {
		m, err := decodeMatrixMarket(in)
		if err != nil {
			return nil, err
		}
		r = describe(m)
		r.Format = "matrix-market"
	} else {
		h, err := in.header()
		if err != nil {
			return nil, err
		}
		if r, err = describeFile(in, h); err != nil {
			return nil, err
		}
		r.Format = fmt.Sprintf("sparsedot v%d", h.Version)
		r.Compression = h.Compression.String()
	}

	r.Path = location
	r.FileBytes = int64(len(in.data))
	return r, nil
}

func describeFile(in *content, h codec.Header) (*report, error) {
	switch (kinds{h.ValueKind, h.IndexKind}) {
	case kinds{codec.KindFloat32, codec.KindInt32}:
		return describeCodec[float32, int32](in)
	case kinds{codec.KindFloat32, codec.KindInt64}:
		return describeCodec[float32, int64](in)
	case kinds{codec.KindFloat64, codec.KindInt32}:
		return describeCodec[float64, int32](in)
	case kinds{codec.KindFloat64, codec.KindInt64}:
		return describeCodec[float64, int64](in)
	case kinds{codec.KindInt32, codec.KindInt32}:
		return describeCodec[int32, int32](in)
	case kinds{codec.KindInt32, codec.KindInt64}:
		return describeCodec[int32, int64](in)
	case kinds{codec.KindInt64, codec.KindInt32}:
		return describeCodec[int64, int32](in)
	case kinds{codec.KindInt64, codec.KindInt64}:
		return describeCodec[int64, int64](in)
	default:
		return nil, fmt.Errorf("%w: %s", codec.ErrUnsupportedKind, kinds{h.ValueKind, h.IndexKind})
	}
}

func describeCodec[T csr.Number, I csr.Index](in *content) (*report, error) {
	m, err := decodeMatrix[T, I](in)
	if err != nil {
		return nil, err
	}
	return describe(m), nil
}

func describe[T csr.Number, I csr.Index](m *csr.Matrix[T, I]) *report {
	r := &report{
		Values:  codec.KindOf[T]().String(),
		Indices: codec.KindOf[I]().String(),
		Order:   m.Order().String(),
		Rows:    m.Rows(),
		Cols:    m.Cols(),
		NNZ:     m.NNZ(),
	}
	if cells := float64(m.Rows()) * float64(m.Cols()); cells > 0 {
		r.Density = float64(m.NNZ()) / cells
	}

	v := vectorStats{Count: m.Outer()}
	for o := range m.Outer() {
		n := m.VectorNNZ(o)
		if n == 0 {
			v.Empty++
		}
		if o == 0 || n < v.Min {
			v.Min = n
		}
		v.Max = max(v.Max, n)
	}
	if v.Count > 0 {
		v.Mean = float64(m.NNZ()) / float64(v.Count)
	}
	r.Vectors = v

	used := roaring64.New()
	for _, j := range m.Indices() {
		used.Add(uint64(j))
	}
	r.InnerUsed = used.GetCardinality()
	return r
}

func printReport(cmd *cobra.Command, r *report) {
	vector := "row"
	if r.Order == csr.ColMajor.String() {
		vector = "column"
	}

	cmd.Printf("file:        %s (%s)\n", r.Path, humanize.IBytes(uint64(r.FileBytes)))
	cmd.Printf("format:      %s\n", r.Format)
	if r.Compression != "" {
		cmd.Printf("compression: %s\n", r.Compression)
	}
	cmd.Printf("types:       %s/%s, %s-major\n", r.Values, r.Indices, r.Order)
	cmd.Printf("shape:       %s x %s\n", humanize.Comma(int64(r.Rows)), humanize.Comma(int64(r.Cols)))
	cmd.Printf("entries:     %s (density %.3g)\n", humanize.Comma(int64(r.NNZ)), r.Density)
	cmd.Printf("referenced:  %s of %s %s\n",
		humanize.Comma(int64(r.InnerUsed)), humanize.Comma(int64(inner(r))), other(vector))
	cmd.Printf("per %s:%s min %d, max %d, mean %.2f, %d empty\n",
		vector, pad(vector), r.Vectors.Min, r.Vectors.Max, r.Vectors.Mean, r.Vectors.Empty)
}

func inner(r *report) int {
	if r.Order == csr.ColMajor.String() {
		return r.Rows
	}
	return r.Cols
}

func other(vector string) string {
	if vector == "row" {
		return "columns"
	}
	return "rows"
}

// pad aligns the per-vector line with the other labels.
func pad(vector string) string {
	if vector == "row" {
		return "     "
	}
	return "  "
}
