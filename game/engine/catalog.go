package engine

import (
	"fmt"
	"strings"
)

// TileShape identifies one of the fifteen connector layouts
type TileShape int

const (
	ShapeUnknown TileShape = iota

	// Dead ends, one connector
	DeadEndUp
	DeadEndDown
	DeadEndLeft
	DeadEndRight

	// Straights, two connectors
	StraightHorizontal
	StraightVertical

	// Corners, two connectors
	CornerUpRight
	CornerUpLeft
	CornerDownRight
	CornerDownLeft

	// T-junctions, three connectors
	TJunctionUpLeftRight
	TJunctionDownLeftRight
	TJunctionLeftUpDown
	TJunctionRightUpDown

	// Cross, four connectors
	Cross
)

type shapeInfo struct {
	name     string
	glyph    string
	category int
	mask     ConnectorMask
}

var shapeTable = map[TileShape]shapeInfo{
	DeadEndUp:    {"DeadEndUp", "╹", 1, ConnectorMask{Up: true}},
	DeadEndDown:  {"DeadEndDown", "╻", 1, ConnectorMask{Down: true}},
	DeadEndLeft:  {"DeadEndLeft", "╸", 1, ConnectorMask{Left: true}},
	DeadEndRight: {"DeadEndRight", "╺", 1, ConnectorMask{Right: true}},

	StraightHorizontal: {"StraightHorizontal", "━", 2, ConnectorMask{Right: true, Left: true}},
	StraightVertical:   {"StraightVertical", "┃", 2, ConnectorMask{Up: true, Down: true}},

	CornerUpRight:   {"CornerUpRight", "┗", 2, ConnectorMask{Up: true, Right: true}},
	CornerUpLeft:    {"CornerUpLeft", "┛", 2, ConnectorMask{Up: true, Left: true}},
	CornerDownRight: {"CornerDownRight", "┏", 2, ConnectorMask{Right: true, Down: true}},
	CornerDownLeft:  {"CornerDownLeft", "┓", 2, ConnectorMask{Down: true, Left: true}},

	TJunctionUpLeftRight:   {"TJunctionUpLeftRight", "┻", 3, ConnectorMask{Up: true, Right: true, Left: true}},
	TJunctionDownLeftRight: {"TJunctionDownLeftRight", "┳", 3, ConnectorMask{Right: true, Down: true, Left: true}},
	TJunctionLeftUpDown:    {"TJunctionLeftUpDown", "┫", 3, ConnectorMask{Up: true, Down: true, Left: true}},
	TJunctionRightUpDown:   {"TJunctionRightUpDown", "┣", 3, ConnectorMask{Up: true, Right: true, Down: true}},

	Cross: {"Cross", "╋", 4, ConnectorMask{Up: true, Right: true, Down: true, Left: true}},
}

func init() {
	if err := VerifyCatalog(); err != nil {
		panic(err)
	}
}

// VerifyCatalog checks that every shape's connector count matches its category
// and that no two shapes share a mask.
func VerifyCatalog() error {
	seen := make(map[ConnectorMask]TileShape, len(shapeTable))
	for shape, info := range shapeTable {
		if got := info.mask.ConnectionCount(); got != info.category {
			return fmt.Errorf("catalog: %s has %d connectors, expected %d", info.name, got, info.category)
		}
		if other, dup := seen[info.mask]; dup {
			return fmt.Errorf("catalog: %s and %s share a connector mask", info.name, shapeTable[other].name)
		}
		seen[info.mask] = shape
	}
	return nil
}

// ConnectorsOf returns the connector mask for a shape.
// Unknown shapes have no connectors.
func ConnectorsOf(shape TileShape) ConnectorMask {
	return shapeTable[shape].mask
}

// Opposite returns the opposite direction
func Opposite(d Direction) Direction {
	switch d {
	case Up:
		return Down
	case Right:
		return Left
	case Down:
		return Up
	case Left:
		return Right
	default:
		return d
	}
}

// AllShapes returns every catalog shape in declaration order
func AllShapes() []TileShape {
	shapes := make([]TileShape, 0, len(shapeTable))
	for s := DeadEndUp; s <= Cross; s++ {
		shapes = append(shapes, s)
	}
	return shapes
}

// ShapeOf returns the shape whose mask equals m
func ShapeOf(m ConnectorMask) (TileShape, bool) {
	for _, s := range AllShapes() {
		if shapeTable[s].mask == m {
			return s, true
		}
	}
	return ShapeUnknown, false
}

// ShapeFromGlyph returns the shape drawn by a box glyph
func ShapeFromGlyph(glyph string) (TileShape, bool) {
	for _, s := range AllShapes() {
		if shapeTable[s].glyph == glyph {
			return s, true
		}
	}
	return ShapeUnknown, false
}

// String returns the name of a TileShape
func (s TileShape) String() string {
	if info, ok := shapeTable[s]; ok {
		return info.name
	}
	return "Unknown"
}

// Glyph returns the box-drawing character of a TileShape
func (s TileShape) Glyph() string {
	if info, ok := shapeTable[s]; ok {
		return info.glyph
	}
	return "?"
}

// Valid reports whether s is a catalog shape
func (s TileShape) Valid() bool {
	_, ok := shapeTable[s]
	return ok
}

// MarshalText encodes a TileShape by name
func (s TileShape) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a TileShape by name
func (s *TileShape) UnmarshalText(text []byte) error {
	parsed, err := ParseTileShape(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseTileShape parses a shape name (case-insensitive) or its glyph
func ParseTileShape(name string) (TileShape, error) {
	trimmed := strings.TrimSpace(name)
	for _, s := range AllShapes() {
		if strings.EqualFold(shapeTable[s].name, trimmed) || shapeTable[s].glyph == trimmed {
			return s, nil
		}
	}
	return ShapeUnknown, fmt.Errorf("unknown tile shape %q", name)
}
