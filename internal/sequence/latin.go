package sequence

import "math/rand/v2"

// williamsSquare returns the rows of a balanced Latin square over 0..n-1.
// For even n every entry follows every other entry exactly once across the n
// rows. Odd n needs the mirrored rows as well, giving 2n rows.
func williamsSquare(n int) [][]int {
	if n == 0 {
		return [][]int{{}}
	}

	first := make([]int, n)
	for j := 1; j < n; j++ {
		if j%2 == 1 {
			first[j] = (j + 1) / 2
		} else {
			first[j] = n - j/2
		}
	}

	rows := make([][]int, 0, 2*n)
	for r := 0; r < n; r++ {
		row := make([]int, n)
		for j := range first {
			row[j] = (first[j] + r) % n
		}
		rows = append(rows, row)
	}

	if n%2 == 1 {
		for r := 0; r < n; r++ {
			mirrored := make([]int, n)
			for j := range rows[r] {
				mirrored[n-1-j] = rows[r][j]
			}
			rows = append(rows, mirrored)
		}
	}
	return rows
}

// latinPool hands out rows of a balanced Latin square in shuffled order and
// starts a new shuffled pass once every row has been used.
type latinPool struct {
	rows [][]int
	pool [][]int
}

func newLatinPool(n int) *latinPool {
	return &latinPool{rows: williamsSquare(n)}
}

func (p *latinPool) next(rng *rand.Rand) []int {
	if len(p.pool) == 0 {
		p.pool = append(p.pool[:0], p.rows...)
		rng.Shuffle(len(p.pool), func(i, j int) {
			p.pool[i], p.pool[j] = p.pool[j], p.pool[i]
		})
	}
	row := p.pool[len(p.pool)-1]
	p.pool = p.pool[:len(p.pool)-1]
	return append([]int(nil), row...)
}
