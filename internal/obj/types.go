package obj

// Vertex holds one position (x, y, z) at the precision stored in the cache.
type Vertex [3]float32

// Face holds zero-based vertex indices in source winding order.
// Texture and normal sub-indices are dropped at parse time.
type Face []int32

// Mesh holds the geometry of one frame file.
type Mesh struct {
	Name     string // source path
	Vertices []Vertex
	Faces    []Face
}

// IndexCount returns the total number of face-vertex references.
func (m *Mesh) IndexCount() int {
	n := 0
	for _, f := range m.Faces {
		n += len(f)
	}
	return n
}
