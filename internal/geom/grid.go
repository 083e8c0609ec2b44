package geom

import "math"

// CalculateGrid determines grid dimensions for n items. When cols is zero the
// column count is the ceiling of the square root of n.
func CalculateGrid(n, cols int) (rows, c int) {
	if n <= 0 {
		return 0, 0
	}
	if cols <= 0 {
		cols = int(math.Ceil(math.Sqrt(float64(n))))
	}
	if cols > n {
		cols = n
	}
	rows = int(math.Ceil(float64(n) / float64(cols)))
	return rows, cols
}

// GridCells lays out n cells of a fixed size row by row inside area, with gap
// pixels around and between them. Cells that would start past the bottom of
// the area are dropped.
func GridCells(n, cols int, cell Size, area Rect, gap int) []Rect {
	if n <= 0 || cell.Width <= 0 || cell.Height <= 0 {
		return nil
	}
	_, cols = CalculateGrid(n, cols)

	cells := make([]Rect, 0, n)
	for i := 0; i < n; i++ {
		row := i / cols
		col := i % cols
		r := Rect{
			X:      area.X + gap + col*(cell.Width+gap),
			Y:      area.Y + gap + row*(cell.Height+gap),
			Width:  cell.Width,
			Height: cell.Height,
		}
		if r.Y >= area.Bottom() {
			break
		}
		cells = append(cells, r)
	}
	return cells
}
