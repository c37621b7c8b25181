// Package voxel holds block storage for the world and the components that
// stream chunks in and out of a game.
package voxel

import (
	"fmt"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Chunks are Size blocks along each axis. Blocks are stored in a flat array
// indexed as x | z<<4 | y<<8.
const (
	Size   = 16
	Volume = Size * Size * Size

	shiftZ = 4
	shiftY = 8
	mask4  = Size - 1
)

type Block uint8

const (
	Air Block = iota
	Stone
	Dirt
	Grass
	Sand
	Water
)

var blockNames = [...]string{"air", "stone", "dirt", "grass", "sand", "water"}

var blockColors = [...]color.RGBA{
	Air:   {0, 0, 0, 0},
	Stone: {0x80, 0x80, 0x80, 0xff},
	Dirt:  {0x86, 0x60, 0x43, 0xff},
	Grass: {0x5a, 0xa8, 0x3c, 0xff},
	Sand:  {0xdb, 0xcf, 0x8e, 0xff},
	Water: {0x3f, 0x76, 0xe4, 0xc0},
}

// Opaque reports whether the block hides the faces of its neighbours.
func (b Block) Opaque() bool {
	return b != Air && b != Water
}

func (b Block) Color() color.RGBA {
	if int(b) < len(blockColors) {
		return blockColors[b]
	}
	return color.RGBA{0xff, 0x00, 0xff, 0xff}
}

func (b Block) String() string {
	if int(b) < len(blockNames) {
		return blockNames[b]
	}
	return fmt.Sprintf("block(%d)", uint8(b))
}

// ParseBlock returns the block with the given name.
func ParseBlock(name string) (Block, error) {
	for i, n := range blockNames {
		if n == name {
			return Block(i), nil
		}
	}
	return Air, fmt.Errorf("voxel: unknown block %q", name)
}

// Coord addresses a chunk in chunk units.
type Coord struct{ X, Y, Z int32 }

// CoordOf returns the coordinate of the chunk containing world position p.
func CoordOf(p mgl32.Vec3) Coord {
	return Coord{
		X: int32(math.Floor(float64(p.X()) / Size)),
		Y: int32(math.Floor(float64(p.Y()) / Size)),
		Z: int32(math.Floor(float64(p.Z()) / Size)),
	}
}

// Origin returns the world position of the chunk's minimum corner.
func (c Coord) Origin() mgl32.Vec3 {
	return mgl32.Vec3{float32(c.X * Size), float32(c.Y * Size), float32(c.Z * Size)}
}

func (c Coord) Add(dx, dy, dz int32) Coord {
	return Coord{c.X + dx, c.Y + dy, c.Z + dz}
}

func (c Coord) String() string {
	return fmt.Sprintf("%d,%d,%d", c.X, c.Y, c.Z)
}

// Index returns the flat array index of local position (x, y, z).
func Index(x, y, z int) int {
	return x | z<<shiftZ | y<<shiftY
}

// Unindex is the inverse of Index.
func Unindex(i int) (x, y, z int) {
	return i & mask4, i >> shiftY & mask4, i >> shiftZ & mask4
}

func InBounds(x, y, z int) bool {
	return x >= 0 && x < Size && y >= 0 && y < Size && z >= 0 && z < Size
}

// Layer is a horizontal band of a single block type used by FillLayers.
type Layer struct {
	Block  Block
	Height int
}

// DefaultLayers is a flat stone, dirt and grass terrain.
var DefaultLayers = []Layer{
	{Block: Stone, Height: 4},
	{Block: Dirt, Height: 2},
	{Block: Grass, Height: 1},
}

// Chunk is a Size³ block volume. Every change bumps the version so readers
// can tell whether derived data is current. A Chunk belongs to the main
// goroutine; background work operates on a Snapshot.
type Chunk struct {
	coord   Coord
	blocks  [Volume]Block
	version uint64
}

func NewChunk(coord Coord) *Chunk {
	return &Chunk{coord: coord, version: 1}
}

func (c *Chunk) Coord() Coord    { return c.coord }
func (c *Chunk) Version() uint64 { return c.version }

// Get returns the block at local position (x, y, z), or Air outside the chunk.
func (c *Chunk) Get(x, y, z int) Block {
	if !InBounds(x, y, z) {
		return Air
	}
	return c.blocks[Index(x, y, z)]
}

// Set stores b at local position (x, y, z) and reports whether anything changed.
func (c *Chunk) Set(x, y, z int, b Block) bool {
	if !InBounds(x, y, z) {
		return false
	}
	i := Index(x, y, z)
	if c.blocks[i] == b {
		return false
	}
	c.blocks[i] = b
	c.version++
	return true
}

// Fill sets every block in the chunk to b.
func (c *Chunk) Fill(b Block) {
	for i := range c.blocks {
		c.blocks[i] = b
	}
	c.version++
}

// FillLayers clears the chunk and stacks layers from the bottom up. Layers
// above the chunk's top are cut off.
func (c *Chunk) FillLayers(layers []Layer) {
	clear(c.blocks[:])
	y := 0
	for _, l := range layers {
		for n := 0; n < l.Height && y < Size; n++ {
			row := c.blocks[y<<shiftY : (y+1)<<shiftY]
			for i := range row {
				row[i] = l.Block
			}
			y++
		}
	}
	c.version++
}

// Snapshot is an immutable copy of a chunk's blocks at one version.
type Snapshot struct {
	Coord   Coord
	Version uint64
	Blocks  [Volume]Block
}

func (c *Chunk) Snapshot() *Snapshot {
	return &Snapshot{Coord: c.coord, Version: c.version, Blocks: c.blocks}
}

func (s *Snapshot) Get(x, y, z int) Block {
	if !InBounds(x, y, z) {
		return Air
	}
	return s.Blocks[Index(x, y, z)]
}
