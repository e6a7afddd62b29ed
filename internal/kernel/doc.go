// Package kernel computes the truncated sparse product row by row.
//
// Every strategy produces, for each left row i, the candidates C[i,j] for
// columns j where row i and column j share at least one structurally non-zero
// inner index. Candidates are offered to a bounded top-N selector whose floor
// prunes values that cannot make it into the row. The strategies differ only
// in how they enumerate candidates:
//
//   - Scalar: one merge-intersection dot product per right column.
//     Needs a column-major right operand.
//   - Block: scatters the left row into a dense workspace and computes
//     BlockSize columns at a time, visiting only the non-zeros of each block.
//     Needs a column-major right operand.
//   - Accumulate: Gustavson row-by-row accumulation into a dense row with a
//     touched-column list. Needs a row-major right operand.
//
// All strategies add the products for C[i,j] in ascending inner index order,
// so they produce bit-identical values for the same inputs.
package kernel
