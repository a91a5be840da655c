package geocache

import (
	"fmt"

	"objseq2cache/internal/failure"
	"objseq2cache/internal/obj"
)

// Sample is one time sample of the animated mesh, laid out as flat arrays.
type Sample struct {
	Positions   []obj.Vertex
	FaceCounts  []int32 // vertices per face
	FaceIndices []int32 // per-face indices, each face reversed
}

// BuildSample converts a parsed frame into a cache sample.
//
// Each face's indices are emitted last-to-first. OBJ faces are counter-clockwise
// front-facing while the cache convention is clockwise, so reversing the
// winding flips the derived normals to point the right way. FaceCounts keep
// the source vertex count per face.
func BuildSample(mesh *obj.Mesh) (Sample, error) {
	if len(mesh.Vertices) == 0 || len(mesh.Faces) == 0 {
		return Sample{}, fmt.Errorf("geocache: %s: %w: %d vertices, %d faces",
			mesh.Name, failure.ErrEmptyGeometry, len(mesh.Vertices), len(mesh.Faces))
	}

	nv := int32(len(mesh.Vertices))
	s := Sample{
		Positions:   make([]obj.Vertex, len(mesh.Vertices)),
		FaceCounts:  make([]int32, 0, len(mesh.Faces)),
		FaceIndices: make([]int32, 0, mesh.IndexCount()),
	}
	copy(s.Positions, mesh.Vertices)

	for fi, face := range mesh.Faces {
		s.FaceCounts = append(s.FaceCounts, int32(len(face)))
		for i := len(face) - 1; i >= 0; i-- {
			idx := face[i]
			if idx < 0 || idx >= nv {
				return Sample{}, fmt.Errorf("geocache: %s: face %d: %w: index %d, %d vertices",
					mesh.Name, fi, failure.ErrIndexRange, idx, nv)
			}
			s.FaceIndices = append(s.FaceIndices, idx)
		}
	}

	return s, nil
}

// Validate checks the structural invariants of a sample.
func (s Sample) Validate() error {
	total := 0
	for _, c := range s.FaceCounts {
		if c < 0 {
			return fmt.Errorf("geocache: %w: negative face count %d", failure.ErrCorrupt, c)
		}
		total += int(c)
	}
	if total != len(s.FaceIndices) {
		return fmt.Errorf("geocache: %w: face counts sum to %d, have %d indices",
			failure.ErrCorrupt, total, len(s.FaceIndices))
	}
	for _, idx := range s.FaceIndices {
		if idx < 0 || int(idx) >= len(s.Positions) {
			return fmt.Errorf("geocache: %w: index %d, %d positions", failure.ErrCorrupt, idx, len(s.Positions))
		}
	}
	return nil
}
