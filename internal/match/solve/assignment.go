package solve

import "context"

// infCost is the sentinel cost assigned to an edge the caller has marked
// infeasible. It must dominate the sum of any real costs in the matrix so
// the algorithm only picks it when no feasible perfect matching exists.
const infCost = int64(1) << 40

// ErrTimeout is returned by MinCostAssignment when ctx is cancelled before
// the algorithm completes.
var ErrTimeout = newSolveError("solver time limit exceeded")

type solveError struct{ msg string }

func newSolveError(msg string) error { return &solveError{msg: msg} }
func (e *solveError) Error() string  { return e.msg }

// MinCostAssignment solves the square minimum-cost perfect-matching
// problem (the assignment problem) via the classic O(n^3) Hungarian
// algorithm with row/column potentials. cost must be an n x n matrix.
//
// Returns rowToCol where rowToCol[i] is the column assigned to row i, and
// the total cost of that assignment. The function checks ctx for
// cancellation once per outer iteration (once per row), so a caller-side
// context.WithTimeout bounds the solve time at row granularity.
func MinCostAssignment(ctx context.Context, cost [][]int64) (rowToCol []int, total int64, err error) {
	n := len(cost)
	if n == 0 {
		return nil, 0, nil
	}

	const inf = int64(1) << 60

	u := make([]int64, n+1)
	v := make([]int64, n+1)
	p := make([]int, n+1) // p[j] = row matched to column j (1-indexed), 0 = unmatched
	way := make([]int, n+1)

	for i := 1; i <= n; i++ {
		select {
		case <-ctx.Done():
			return nil, 0, ErrTimeout
		default:
		}

		p[0] = i
		j0 := 0
		minv := make([]int64, n+1)
		used := make([]bool, n+1)
		for j := range minv {
			minv[j] = inf
		}

		for {
			used[j0] = true
			i0 := p[j0]
			delta := inf
			j1 := -1

			for j := 1; j <= n; j++ {
				if used[j] {
					continue
				}
				cur := cost[i0-1][j-1] - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}

			for j := 0; j <= n; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}

			j0 = j1
			if p[j0] == 0 {
				break
			}
		}

		for j0 != 0 {
			j1 := way[j0]
			p[j0] = p[j1]
			j0 = j1
		}
	}

	rowToCol = make([]int, n)
	for j := 1; j <= n; j++ {
		if p[j] != 0 {
			rowToCol[p[j]-1] = j - 1
		}
	}
	total = -v[0]
	return rowToCol, total, nil
}
