package engine

// TilePool is the inventory of tiles the player can still place.
// It keeps a backup of its initial contents for Reset. Not safe for concurrent use.
type TilePool struct {
	tiles  []TileDefinition
	backup []TileDefinition
}

// NewTilePool creates a pool holding a copy of initial
func NewTilePool(initial []TileDefinition) *TilePool {
	return &TilePool{
		tiles:  cloneTiles(initial),
		backup: cloneTiles(initial),
	}
}

func cloneTiles(tiles []TileDefinition) []TileDefinition {
	out := make([]TileDefinition, len(tiles))
	copy(out, tiles)
	return out
}

// AvailableTiles returns a copy of the current contents in order
func (p *TilePool) AvailableTiles() []TileDefinition {
	return cloneTiles(p.tiles)
}

// Initial returns a copy of the contents the pool was created with
func (p *TilePool) Initial() []TileDefinition {
	return cloneTiles(p.backup)
}

// Remove takes the first tile with the same ID out of the pool; a missing tile is ignored
func (p *TilePool) Remove(tile TileDefinition) bool {
	for i, t := range p.tiles {
		if t.ID == tile.ID {
			p.tiles = append(p.tiles[:i], p.tiles[i+1:]...)
			return true
		}
	}
	return false
}

// Add appends tile unless a tile with the same ID is already present
func (p *TilePool) Add(tile TileDefinition) bool {
	if _, ok := p.Find(tile.ID); ok {
		return false
	}
	p.tiles = append(p.tiles, tile)
	return true
}

// Reset restores the initial contents
func (p *TilePool) Reset() {
	p.tiles = cloneTiles(p.backup)
}

// Restore replaces the current contents, keeping the backup
func (p *TilePool) Restore(tiles []TileDefinition) {
	p.tiles = cloneTiles(tiles)
}

// Count returns the number of tiles left
func (p *TilePool) Count() int {
	return len(p.tiles)
}

// IsEmpty reports whether no tile is left
func (p *TilePool) IsEmpty() bool {
	return len(p.tiles) == 0
}

// Find returns the tile with the given ID
func (p *TilePool) Find(id string) (TileDefinition, bool) {
	for _, t := range p.tiles {
		if t.ID == id {
			return t, true
		}
	}
	return TileDefinition{}, false
}

// TilesMatchingExactly returns the tiles whose connectors equal mask
func (p *TilePool) TilesMatchingExactly(mask ConnectorMask) []TileDefinition {
	var out []TileDefinition
	for _, t := range p.tiles {
		if t.Mask().Equals(mask) {
			out = append(out, t)
		}
	}
	return out
}

// CanSatisfy reports whether some tile has exactly the required connectors
func (p *TilePool) CanSatisfy(mask ConnectorMask) bool {
	for _, t := range p.tiles {
		if t.Mask().Equals(mask) {
			return true
		}
	}
	return false
}

// TilesCovering returns the tiles opening at least every side of mask
func (p *TilePool) TilesCovering(mask ConnectorMask) []TileDefinition {
	var out []TileDefinition
	for _, t := range p.tiles {
		if t.Mask().Covers(mask) {
			out = append(out, t)
		}
	}
	return out
}

// CanCover reports whether some tile opens at least every side of mask
func (p *TilePool) CanCover(mask ConnectorMask) bool {
	for _, t := range p.tiles {
		if t.Mask().Covers(mask) {
			return true
		}
	}
	return false
}

// CanProvideConnection reports whether some tile opens side d
func (p *TilePool) CanProvideConnection(d Direction) bool {
	for _, t := range p.tiles {
		if t.Mask().Has(d) {
			return true
		}
	}
	return false
}

// Masks counts the remaining tiles per connector mask
func (p *TilePool) Masks() map[ConnectorMask]int {
	counts := make(map[ConnectorMask]int)
	if p == nil {
		return counts
	}
	for _, t := range p.tiles {
		counts[t.Mask()]++
	}
	return counts
}

// ShapeCounts counts the remaining tiles per shape
func (p *TilePool) ShapeCounts() map[TileShape]int {
	counts := make(map[TileShape]int)
	for _, t := range p.tiles {
		counts[t.Shape]++
	}
	return counts
}
