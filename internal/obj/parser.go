// Package obj reads the vertex and face records of Wavefront OBJ frame files.
package obj

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"objseq2cache/internal/failure"
)

// maxLineSize bounds a single record; dense faces can exceed bufio's default.
const maxLineSize = 16 << 20

// Parse reads an OBJ file and returns its mesh.
// Only "v" and "f" records are used; everything else is skipped.
func Parse(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("obj: open %s: %w: %w", path, failure.ErrFileAccess, err)
	}
	defer f.Close()

	return ParseReader(path, f)
}

// ParseReader parses OBJ records from r. name tags the mesh and error messages.
func ParseReader(name string, r io.Reader) (*Mesh, error) {
	mesh := &Mesh{Name: name}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "v":
			v, err := parseVertex(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("obj: %s:%d: %w", name, lineNo, err)
			}
			mesh.Vertices = append(mesh.Vertices, v)
		case "f":
			face, err := parseFace(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("obj: %s:%d: %w", name, lineNo, err)
			}
			mesh.Faces = append(mesh.Faces, face)
		}
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, fmt.Errorf("obj: %s:%d: %w: %w", name, lineNo+1, failure.ErrParse, err)
		}
		return nil, fmt.Errorf("obj: read %s: %w: %w", name, failure.ErrFileAccess, err)
	}

	return mesh, nil
}

func parseVertex(tokens []string) (Vertex, error) {
	var v Vertex
	if len(tokens) < 3 {
		return v, fmt.Errorf("%w: vertex needs 3 coordinates, got %d", failure.ErrParse, len(tokens))
	}
	// A trailing w component or vertex colour is ignored.
	for k := 0; k < 3; k++ {
		f, err := strconv.ParseFloat(tokens[k], 32)
		if err != nil {
			return v, fmt.Errorf("%w: vertex coordinate %q", failure.ErrParse, tokens[k])
		}
		v[k] = float32(f)
	}
	return v, nil
}

func parseFace(tokens []string) (Face, error) {
	if len(tokens) < 2 {
		return nil, fmt.Errorf("%w: face needs at least 2 vertices, got %d", failure.ErrParse, len(tokens))
	}
	face := make(Face, 0, len(tokens))
	for _, tok := range tokens {
		// "7", "7/3", "7//2", "7/3/2": only the vertex index matters.
		ref, _, _ := strings.Cut(tok, "/")
		idx, err := strconv.ParseInt(ref, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: face reference %q", failure.ErrParse, tok)
		}
		face = append(face, int32(idx-1))
	}
	return face, nil
}
