package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"voxelterrain/internal/meshing"
	"voxelterrain/internal/world"
)

// printMeshStats meshes a column of chunks at every tier and compares greedy
// output with one quad per face, plus the packed voxel size.
func printMeshStats(w io.Writer, gen *world.Generator, base world.ChunkCoord, vertical int) error {
	mesher := meshing.NewMesher(meshing.DefaultPalette())
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "chunk\ttier\tsolid\tgreedy quads\tnaive quads\tratio\tpacked bytes\t")
	for y := 0; y < vertical; y++ {
		c := base
		c.Y = y
		for _, res := range world.Resolutions {
			vox := gen.Generate(c, res)
			if vox.IsEmpty() {
				continue
			}
			greedy := mesher.Build(vox)
			naive := mesher.BuildNaive(vox)
			packed, err := world.Pack(vox)
			if err != nil {
				return fmt.Errorf("pack %v: %w", c, err)
			}
			ratio := 0.0
			if naive.QuadCount() > 0 {
				ratio = float64(greedy.QuadCount()) / float64(naive.QuadCount())
			}
			fmt.Fprintf(tw, "%v\t%v\t%d\t%d\t%d\t%.2f\t%d\t\n",
				c, res, vox.SolidCount(), greedy.QuadCount(), naive.QuadCount(), ratio, packed.Len())
		}
	}
	return tw.Flush()
}
