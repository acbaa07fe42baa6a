package systems

import (
	"iter"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Grid sizing limits.
const (
	MinVerticalCells = 4
	MaxVerticalCells = 1024

	// MaxQueryCells is the per-axis cell count above which a query is
	// reported as a tuning mismatch.
	MaxQueryCells = 10
)

// Element is one indexed point. ID is a handle into the topology store.
type Element struct {
	ID  int
	Pos r2.Vec
}

// SpatialGrid is a uniform bucket grid for broad-phase neighbor queries.
// The grid origin sits at (-gap, -gap) so points slightly outside the
// nominal play area are still indexed.
type SpatialGrid struct {
	cols, rows int
	cellSize   r2.Vec
	gap        float64

	cells    [][]int // element ids per cell, row-major
	elements []Element

	logger      *slog.Logger
	warnedRange r2.Vec
}

// NewSpatialGrid creates a grid of cellCount cells of cellSize each.
func NewSpatialGrid(cellCount [2]int, cellSize r2.Vec, boundaryGap float64) *SpatialGrid {
	cols := max(cellCount[0], 1)
	rows := max(cellCount[1], 1)

	cells := make([][]int, cols*rows)
	for i := range cells {
		cells[i] = make([]int, 0, 4)
	}

	return &SpatialGrid{
		cols:     cols,
		rows:     rows,
		cellSize: cellSize,
		gap:      boundaryGap,
		cells:    cells,
		logger:   slog.Default(),
	}
}

// SetLogger replaces the logger used for tuning warnings.
func (g *SpatialGrid) SetLogger(l *slog.Logger) {
	if l != nil {
		g.logger = l
	}
}

// CellCount returns the number of columns and rows.
func (g *SpatialGrid) CellCount() [2]int { return [2]int{g.cols, g.rows} }

// CellSize returns the size of one cell.
func (g *SpatialGrid) CellSize() r2.Vec { return g.cellSize }

// Bounds returns the covered extent in world coordinates.
func (g *SpatialGrid) Bounds() r2.Box {
	minP := r2.Vec{X: -g.gap, Y: -g.gap}
	return r2.Box{
		Min: minP,
		Max: r2.Add(minP, r2.Vec{X: float64(g.cols) * g.cellSize.X, Y: float64(g.rows) * g.cellSize.Y}),
	}
}

// Clear removes all elements. Cell capacity is kept.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
	g.elements = g.elements[:0]
}

// Len returns the number of indexed elements.
func (g *SpatialGrid) Len() int { return len(g.elements) }

// Element returns the element with the given id.
func (g *SpatialGrid) Element(eid int) Element { return g.elements[eid] }

// Insert indexes handle id at pos and returns its element id, or -1 when
// pos lies outside the covered extent.
func (g *SpatialGrid) Insert(id int, pos r2.Vec) int {
	lx := (pos.X + g.gap) / g.cellSize.X
	ly := (pos.Y + g.gap) / g.cellSize.Y
	// Negated comparisons also reject NaN.
	if !(lx >= 0 && lx < float64(g.cols) && ly >= 0 && ly < float64(g.rows)) {
		return -1
	}
	cx, cy := int(lx), int(ly)

	eid := len(g.elements)
	g.elements = append(g.elements, Element{ID: id, Pos: pos})
	idx := cy*g.cols + cx
	g.cells[idx] = append(g.cells[idx], eid)
	return eid
}

// Query yields the element ids of every element stored in a cell that
// overlaps box. Results are candidates: callers must test distance.
func (g *SpatialGrid) Query(box r2.Box) iter.Seq[int] {
	return func(yield func(int) bool) {
		x0 := g.clampCell(box.Min.X, g.cellSize.X, g.cols)
		x1 := g.clampCell(box.Max.X, g.cellSize.X, g.cols)
		y0 := g.clampCell(box.Min.Y, g.cellSize.Y, g.rows)
		y1 := g.clampCell(box.Max.Y, g.cellSize.Y, g.rows)

		for cy := y0; cy <= y1; cy++ {
			row := cy * g.cols
			for cx := x0; cx <= x1; cx++ {
				for _, eid := range g.cells[row+cx] {
					if !yield(eid) {
						return
					}
				}
			}
		}
	}
}

// clampCell maps a world coordinate to a cell index clamped to [0, n-1].
func (g *SpatialGrid) clampCell(v, size float64, n int) int {
	c := math.Floor((v + g.gap) / size)
	if c < 0 || math.IsNaN(c) {
		return 0
	}
	if c > float64(n-1) {
		return n - 1
	}
	return int(c)
}

// QueryFanout returns how many cells per axis a query of +-halfRange spans.
func (g *SpatialGrid) QueryFanout(halfRange r2.Vec) (nx, ny int) {
	return int(math.Ceil(halfRange.X / g.cellSize.X)), int(math.Ceil(halfRange.Y / g.cellSize.Y))
}

// CheckFanout logs a warning when a query of +-halfRange would touch more
// than MaxQueryCells cells on either axis. Each distinct range is reported
// once. Returns true if the fan-out is excessive.
func (g *SpatialGrid) CheckFanout(halfRange r2.Vec) bool {
	nx, ny := g.QueryFanout(halfRange)
	if nx <= MaxQueryCells && ny <= MaxQueryCells {
		return false
	}
	if halfRange != g.warnedRange {
		g.warnedRange = halfRange
		g.logger.Warn("querying many cells",
			"cells_x", nx,
			"cells_y", ny,
			"range", halfRange.X,
			"cell_size", g.cellSize.X,
		)
	}
	return true
}

// CellsForLevel returns the vertical cell count for a grid level.
func CellsForLevel(level int) int {
	return 1 << min(max(level, 2), 10)
}

// RecommendGrid derives square cells covering extent with exactly
// verticalCells rows (clamped to [MinVerticalCells, MaxVerticalCells]).
// A non-positive height falls back to cells sized from the width, and a
// fully degenerate extent to unit cells, so the result is always finite.
func RecommendGrid(extent r2.Vec, verticalCells int) (cellCount [2]int, cellSize r2.Vec) {
	rows := min(max(verticalCells, MinVerticalCells), MaxVerticalCells)
	size := extent.Y / float64(rows)
	if !(size > 0) {
		// Flat or empty extent: size from the width, or unit cells.
		size = extent.X / float64(rows)
		if !(size > 0) {
			size = 1
		}
	}
	cols := 1
	if extent.X > 0 {
		cols = max(int(math.Ceil(extent.X/size)), 1)
	}
	return [2]int{cols, rows}, r2.Vec{X: size, Y: size}
}
