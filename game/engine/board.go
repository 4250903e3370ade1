package engine

import (
	"fmt"
	"strings"
)

// Board holds the playable cells of a level, their roles and placed tiles
type Board struct {
	cells map[GridCell]*BoardCell
	order []GridCell
	start *GridCell
	goal  *GridCell
}

// NewBoard builds the initial board of a level. Levels without a layout get a
// generated board whose first cell is Start and whose farthest cell is Goal.
func NewBoard(config *GameConfig) (*Board, error) {
	b := &Board{cells: make(map[GridCell]*BoardCell)}
	if len(config.Layout) == 0 {
		generated := GenerateBoard(ResolveSize(config.Level), config.Seed)
		for _, pos := range generated {
			b.addCell(pos, nil)
		}
		start := generated[0]
		goal := FarthestCell(generated, start)
		b.setRole(start, RoleStart)
		b.setRole(goal, RoleGoal)
		return b, nil
	}

	for y, row := range config.Layout {
		for x, char := range []rune(row) {
			pos := GridCell{X: x, Y: y}
			switch char {
			case LayoutOutside, LayoutBlank:
			case LayoutEmpty:
				b.addCell(pos, nil)
			case LayoutStart:
				b.addCell(pos, nil)
				b.setRole(pos, RoleStart)
			case LayoutGoal:
				b.addCell(pos, nil)
				b.setRole(pos, RoleGoal)
			default:
				shape, ok := ShapeFromGlyph(string(char))
				if !ok {
					return nil, fmt.Errorf("%w: invalid character '%c' at row %d, col %d", ErrInvalidConfig, char, y+1, x+1)
				}
				tile := &TileDefinition{ID: fmt.Sprintf("fixed-%d-%d", x, y), Shape: shape}
				b.addCell(pos, tile)
				b.cells[pos].Fixed = true
			}
		}
	}
	if b.start == nil || b.goal == nil {
		return nil, fmt.Errorf("%w: layout needs a start and a goal", ErrInvalidConfig)
	}
	return b, nil
}

func (b *Board) addCell(pos GridCell, tile *TileDefinition) {
	b.cells[pos] = &BoardCell{Position: pos, Tile: tile}
	b.order = append(b.order, pos)
}

func (b *Board) setRole(pos GridCell, role SpecialRole) {
	b.cells[pos].Role = role
	p := pos
	switch role {
	case RoleStart:
		b.start = &p
	case RoleGoal:
		b.goal = &p
	}
}

// ForEachCell reports every playable cell in board order
func (b *Board) ForEachCell(fn func(pos GridCell, state CellState)) {
	for _, pos := range b.order {
		cell := b.cells[pos]
		if cell.Tile == nil {
			fn(pos, CellState{})
			continue
		}
		fn(pos, CellState{Occupied: true, Mask: cell.Tile.Mask()})
	}
}

// Start returns the start cell
func (b *Board) Start() *GridCell {
	return copyCell(b.start)
}

// Goal returns the goal cell
func (b *Board) Goal() *GridCell {
	return copyCell(b.goal)
}

func copyCell(c *GridCell) *GridCell {
	if c == nil {
		return nil
	}
	v := *c
	return &v
}

// Cell returns the board cell at pos
func (b *Board) Cell(pos GridCell) (*BoardCell, bool) {
	cell, ok := b.cells[pos]
	return cell, ok
}

// Place puts tile on an existing cell
func (b *Board) Place(pos GridCell, tile TileDefinition) error {
	cell, ok := b.cells[pos]
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidPosition, pos)
	}
	t := tile
	cell.Tile = &t
	return nil
}

// EmptyCells returns the cells without a tile in board order
func (b *Board) EmptyCells() []GridCell {
	var out []GridCell
	for _, pos := range b.order {
		if b.cells[pos].Tile == nil {
			out = append(out, pos)
		}
	}
	return out
}

// Cells returns a copy of every board cell in board order
func (b *Board) Cells() []BoardCell {
	out := make([]BoardCell, 0, len(b.order))
	for _, pos := range b.order {
		cell := *b.cells[pos]
		if cell.Tile != nil {
			t := *cell.Tile
			cell.Tile = &t
		}
		out = append(out, cell)
	}
	return out
}

// Render draws the board with the layout characters, one string per row
func (b *Board) Render() []string {
	snap := BuildSnapshot(b)
	topLeft, bottomRight, ok := snap.Bounds()
	if !ok {
		return []string{}
	}
	rows := make([]string, 0, bottomRight.Y-topLeft.Y+1)
	for y := topLeft.Y; y <= bottomRight.Y; y++ {
		var sb strings.Builder
		for x := topLeft.X; x <= bottomRight.X; x++ {
			sb.WriteString(b.glyphAt(GridCell{X: x, Y: y}))
		}
		rows = append(rows, sb.String())
	}
	return rows
}

func (b *Board) glyphAt(pos GridCell) string {
	cell, ok := b.cells[pos]
	if !ok {
		return string(LayoutOutside)
	}
	if cell.Tile != nil {
		return cell.Tile.Shape.Glyph()
	}
	switch cell.Role {
	case RoleStart:
		return string(LayoutStart)
	case RoleGoal:
		return string(LayoutGoal)
	}
	return string(LayoutEmpty)
}
