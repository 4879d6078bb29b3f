// Package systems provides the fluid solver and the systems around it.
package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// SpatialGrid partitions the walled interior of the domain into square cells
// of the smoothing radius. Cells are stored row-major and rebuilt every frame.
type SpatialGrid struct {
	cellSize float64
	cols     int
	rows     int
	originX  float64 // interior origin (half the wall margin)
	originY  float64
	cells    [][]int // flat grid of particle index lists
	cellOf   []int   // cell of each particle from the last rebuild
}

// NewSpatialGrid creates a grid covering a width×height domain whose walls take
// margin in total along each axis. cellSize is the smoothing radius.
func NewSpatialGrid(width, height, margin, cellSize float64) *SpatialGrid {
	cols := int(math.Floor((width - margin) / cellSize))
	rows := int(math.Floor((height - margin) / cellSize))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	cells := make([][]int, cols*rows)
	for i := range cells {
		cells[i] = make([]int, 0, 8) // pre-allocate small capacity
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		originX:  margin / 2,
		originY:  margin / 2,
		cells:    cells,
	}
}

// Cols returns the number of grid columns.
func (g *SpatialGrid) Cols() int { return g.cols }

// Rows returns the number of grid rows.
func (g *SpatialGrid) Rows() int { return g.rows }

// CellSize returns the cell edge length, equal to the smoothing radius.
func (g *SpatialGrid) CellSize() float64 { return g.cellSize }

// NumCells returns cols*rows.
func (g *SpatialGrid) NumCells() int { return len(g.cells) }

// Reset empties every cell list. The cell slice itself is kept.
func (g *SpatialGrid) Reset() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
	g.cellOf = g.cellOf[:0]
}

// Rebuild clears the grid and assigns every particle to the cell containing
// its position.
func (g *SpatialGrid) Rebuild(ps ParticleSet) {
	g.Reset()

	n := ps.Len()
	if cap(g.cellOf) < n {
		g.cellOf = make([]int, 0, n)
	}
	for i := 0; i < n; i++ {
		idx := g.CellAt(ps.Position(i))
		g.cells[idx] = append(g.cells[idx], i)
		g.cellOf = append(g.cellOf, idx)
	}
}

// Cell returns the particle indices in cell idx. The slice is owned by the grid
// and is only valid until the next Rebuild or Reset.
func (g *SpatialGrid) Cell(idx int) []int {
	return g.cells[idx]
}

// CellOf returns the cell particle i was assigned to by the last Rebuild.
func (g *SpatialGrid) CellOf(i int) int {
	return g.cellOf[i]
}

// Built reports how many particles the last Rebuild assigned.
func (g *SpatialGrid) Built() int {
	return len(g.cellOf)
}

// CellAt returns the cell index for a position in screen space. Positions
// outside the interior are clamped onto the nearest edge cell.
func (g *SpatialGrid) CellAt(p r2.Vec) int {
	x := p.X - g.originX
	y := p.Y - g.originY

	// Clamp to valid range
	maxX := float64(g.cols)*g.cellSize - 1
	maxY := float64(g.rows)*g.cellSize - 1
	if !(x >= 0) { // also catches NaN
		x = 0
	} else if x > maxX {
		x = maxX
	}
	if !(y >= 0) {
		y = 0
	} else if y > maxY {
		y = maxY
	}

	col := int(x / g.cellSize)
	row := int(y / g.cellSize)
	if col >= g.cols {
		col = g.cols - 1
	}
	if row >= g.rows {
		row = g.rows - 1
	}

	return row*g.cols + col
}

// neighborOffsets lists the 8 surrounding cells as (row, col) deltas.
var neighborOffsets = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// CellsToSearch appends cell and its in-bounds neighbours to dst and returns it.
// Corner cells yield 4 entries, edge cells 6 and interior cells 9.
func (g *SpatialGrid) CellsToSearch(cell int, dst []int) []int {
	dst = append(dst, cell)

	row := cell / g.cols
	col := cell % g.cols
	for _, d := range neighborOffsets {
		r := row + d[0]
		c := col + d[1]
		if r >= 0 && r < g.rows && c >= 0 && c < g.cols {
			dst = append(dst, r*g.cols+c)
		}
	}
	return dst
}
