package world

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

type BlockType uint8

const (
	BlockTypeAir BlockType = iota
	BlockTypeSurface
	BlockTypeSubsoil
	BlockTypeStone
	BlockTypeTrunk
	BlockTypeLeaves
	BlockTypeBoulder

	blockTypeCount
)

var blockNames = [blockTypeCount]string{
	BlockTypeAir:     "air",
	BlockTypeSurface: "surface",
	BlockTypeSubsoil: "subsoil",
	BlockTypeStone:   "stone",
	BlockTypeTrunk:   "trunk",
	BlockTypeLeaves:  "leaves",
	BlockTypeBoulder: "boulder",
}

// SolidBlockTypes lists every non-air block type.
var SolidBlockTypes = []BlockType{
	BlockTypeSurface,
	BlockTypeSubsoil,
	BlockTypeStone,
	BlockTypeTrunk,
	BlockTypeLeaves,
	BlockTypeBoulder,
}

// Base colours. The mesher's palette starts from these.
var blockColors = [blockTypeCount]mgl32.Vec3{
	BlockTypeSurface: {0.36, 0.62, 0.24},
	BlockTypeSubsoil: {0.47, 0.33, 0.20},
	BlockTypeStone:   {0.50, 0.50, 0.52},
	BlockTypeTrunk:   {0.38, 0.26, 0.14},
	BlockTypeLeaves:  {0.20, 0.45, 0.16},
	BlockTypeBoulder: {0.42, 0.41, 0.38},
}

// Valid reports whether b is a known block type.
func (b BlockType) Valid() bool {
	return b < blockTypeCount
}

// Solid reports whether b occludes faces.
func (b BlockType) Solid() bool {
	return b != BlockTypeAir
}

func (b BlockType) String() string {
	if !b.Valid() {
		return fmt.Sprintf("BlockType(%d)", uint8(b))
	}
	return blockNames[b]
}

// Color returns the base colour of b. Unknown types are a programming error.
func (b BlockType) Color() mgl32.Vec3 {
	if !b.Valid() {
		panic(fmt.Sprintf("world: unknown block type %d", uint8(b)))
	}
	return blockColors[b]
}
