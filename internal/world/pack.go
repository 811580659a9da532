package world

import (
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// ErrCorruptChunk is returned when packed voxel data cannot be restored.
var ErrCorruptChunk = errors.New("corrupt packed chunk")

var (
	codecOnce sync.Once
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
	codecErr  error
)

// EncodeAll and DecodeAll are safe for concurrent use, so one codec pair
// serves every worker.
func codec() (*zstd.Encoder, *zstd.Decoder, error) {
	codecOnce.Do(func() {
		encoder, codecErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
		if codecErr != nil {
			return
		}
		decoder, codecErr = zstd.NewReader(nil)
	})
	return encoder, decoder, codecErr
}

// PackedChunk is a compressed VoxelChunk kept around so a chunk can be
// re-meshed without regenerating it.
type PackedChunk struct {
	Coord      ChunkCoord
	Resolution Resolution
	data       []byte
}

// Pack compresses c. The result shares no memory with c.
func Pack(c *VoxelChunk) (*PackedChunk, error) {
	enc, _, err := codec()
	if err != nil {
		return nil, fmt.Errorf("pack %v: %w", c.Coord, err)
	}
	raw := make([]byte, len(c.blocks))
	for i, b := range c.blocks {
		raw[i] = byte(b)
	}
	return &PackedChunk{
		Coord:      c.Coord,
		Resolution: c.Resolution,
		data:       enc.EncodeAll(raw, make([]byte, 0, len(raw)/8)),
	}, nil
}

// Len is the compressed size in bytes.
func (p *PackedChunk) Len() int {
	return len(p.data)
}

// Unpack restores the chunk. The result is marked generated and dirty.
func (p *PackedChunk) Unpack() (*VoxelChunk, error) {
	_, dec, err := codec()
	if err != nil {
		return nil, fmt.Errorf("unpack %v: %w", p.Coord, err)
	}
	c := NewVoxelChunk(p.Coord, p.Resolution)
	raw, err := dec.DecodeAll(p.data, make([]byte, 0, len(c.blocks)))
	if err != nil {
		return nil, fmt.Errorf("unpack %v: %v: %w", p.Coord, err, ErrCorruptChunk)
	}
	if len(raw) != len(c.blocks) {
		return nil, fmt.Errorf("unpack %v: %d bytes, want %d: %w", p.Coord, len(raw), len(c.blocks), ErrCorruptChunk)
	}
	for i, v := range raw {
		b := BlockType(v)
		if !b.Valid() {
			return nil, fmt.Errorf("unpack %v: block type %d: %w", p.Coord, v, ErrCorruptChunk)
		}
		c.blocks[i] = b
	}
	for y := 0; y < c.dim; y++ {
		for z := 0; z < c.dim; z++ {
			for x := 0; x < c.dim; x++ {
				if c.blocks[c.index(x, y, z)].Solid() {
					c.solid++
				}
			}
		}
	}
	c.Generated = true
	c.dirty = true
	return c, nil
}
