package voxel

// MeshSummary is what a chunk rebuild produces: the counts a mesher would
// emit and the column data the footprint renderer draws.
type MeshSummary struct {
	Coord   Coord
	Version uint64

	Solid int // opaque blocks
	Faces int // opaque faces adjacent to a non-opaque block or the chunk edge

	// Height is one above the highest opaque block, 0 for an empty chunk.
	Height int
	// Top is the most common block type found at the top of the columns.
	Top Block
}

var neighbours = [6][3]int{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

// BuildSummary walks a snapshot. It only reads s and is safe to run on any
// goroutine.
func BuildSummary(s *Snapshot) MeshSummary {
	m := MeshSummary{Coord: s.Coord, Version: s.Version}
	var tops [256]int

	for i, b := range s.Blocks {
		if !b.Opaque() {
			continue
		}
		x, y, z := Unindex(i)
		m.Solid++
		if y+1 > m.Height {
			m.Height = y + 1
		}
		for _, n := range neighbours {
			if !s.Get(x+n[0], y+n[1], z+n[2]).Opaque() {
				m.Faces++
			}
		}
	}

	for x := 0; x < Size; x++ {
		for z := 0; z < Size; z++ {
			for y := Size - 1; y >= 0; y-- {
				if b := s.Get(x, y, z); b != Air {
					tops[b]++
					break
				}
			}
		}
	}
	best := 0
	for b, n := range tops {
		if n > best {
			best, m.Top = n, Block(b)
		}
	}
	return m
}
