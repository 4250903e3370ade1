package engine

import "sort"

// CellState is the content of one playable cell
type CellState struct {
	Occupied bool          `json:"occupied"`
	Mask     ConnectorMask `json:"mask"`
}

// SnapshotSource is anything that can enumerate its playable cells
type SnapshotSource interface {
	ForEachCell(fn func(pos GridCell, state CellState))
}

// Snapshot is a read-only view of the board at one instant.
// A cell missing from the snapshot lies outside the playable area.
type Snapshot struct {
	cells        map[GridCell]CellState
	inconsistent bool
}

// BuildSnapshot collects every cell reported by source
func BuildSnapshot(source SnapshotSource) Snapshot {
	b := NewSnapshotBuilder()
	if source == nil {
		return b.Build()
	}
	source.ForEachCell(func(pos GridCell, state CellState) {
		b.set(pos, state)
	})
	return b.Build()
}

// SnapshotBuilder assembles a Snapshot cell by cell
type SnapshotBuilder struct {
	cells        map[GridCell]CellState
	inconsistent bool
}

// NewSnapshotBuilder returns an empty builder
func NewSnapshotBuilder() *SnapshotBuilder {
	return &SnapshotBuilder{cells: make(map[GridCell]CellState)}
}

// Empty adds an unoccupied playable cell
func (b *SnapshotBuilder) Empty(pos GridCell) *SnapshotBuilder {
	b.set(pos, CellState{})
	return b
}

// Occupy adds a cell holding a tile with the given connectors
func (b *SnapshotBuilder) Occupy(pos GridCell, mask ConnectorMask) *SnapshotBuilder {
	b.set(pos, CellState{Occupied: true, Mask: mask})
	return b
}

// OccupyShape adds a cell holding a tile of the given shape
func (b *SnapshotBuilder) OccupyShape(pos GridCell, shape TileShape) *SnapshotBuilder {
	return b.Occupy(pos, ConnectorsOf(shape))
}

func (b *SnapshotBuilder) set(pos GridCell, state CellState) {
	// Empty cells carry no connectors
	if !state.Occupied {
		state.Mask = ConnectorMask{}
	}
	if prev, ok := b.cells[pos]; ok && prev != state {
		b.inconsistent = true
	}
	b.cells[pos] = state
}

// Build returns the snapshot. The builder can keep being used afterwards.
func (b *SnapshotBuilder) Build() Snapshot {
	cells := make(map[GridCell]CellState, len(b.cells))
	for pos, state := range b.cells {
		cells[pos] = state
	}
	return Snapshot{cells: cells, inconsistent: b.inconsistent}
}

// Lookup returns the state of pos and whether it is playable
func (s Snapshot) Lookup(pos GridCell) (CellState, bool) {
	state, ok := s.cells[pos]
	return state, ok
}

// Contains reports whether pos is part of the playable area
func (s Snapshot) Contains(pos GridCell) bool {
	_, ok := s.cells[pos]
	return ok
}

// IsOccupied reports whether pos holds a tile
func (s Snapshot) IsOccupied(pos GridCell) bool {
	return s.cells[pos].Occupied
}

// OccupiedCount returns the number of occupied cells, optionally not counting excluding
func (s Snapshot) OccupiedCount(excluding *GridCell) int {
	count := 0
	for pos, state := range s.cells {
		if !state.Occupied {
			continue
		}
		if excluding != nil && pos == *excluding {
			continue
		}
		count++
	}
	return count
}

// Len returns the number of playable cells
func (s Snapshot) Len() int {
	return len(s.cells)
}

// Consistent is false when the source reported one cell with conflicting states
func (s Snapshot) Consistent() bool {
	return !s.inconsistent
}

// Cells returns every playable cell sorted by row then column
func (s Snapshot) Cells() []GridCell {
	cells := make([]GridCell, 0, len(s.cells))
	for pos := range s.cells {
		cells = append(cells, pos)
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Y != cells[j].Y {
			return cells[i].Y < cells[j].Y
		}
		return cells[i].X < cells[j].X
	})
	return cells
}

// WithPlacement returns a copy with a tile of mask placed at pos
func (s Snapshot) WithPlacement(pos GridCell, mask ConnectorMask) Snapshot {
	cells := make(map[GridCell]CellState, len(s.cells)+1)
	for p, state := range s.cells {
		cells[p] = state
	}
	cells[pos] = CellState{Occupied: true, Mask: mask}
	return Snapshot{cells: cells, inconsistent: s.inconsistent}
}

// Bounds returns the top-left and bottom-right corners of the playable area
func (s Snapshot) Bounds() (topLeft, bottomRight GridCell, ok bool) {
	for pos := range s.cells {
		if !ok {
			topLeft, bottomRight, ok = pos, pos, true
			continue
		}
		topLeft.X = min(topLeft.X, pos.X)
		topLeft.Y = min(topLeft.Y, pos.Y)
		bottomRight.X = max(bottomRight.X, pos.X)
		bottomRight.Y = max(bottomRight.Y, pos.Y)
	}
	return topLeft, bottomRight, ok
}
