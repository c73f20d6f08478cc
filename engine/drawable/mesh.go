package drawable

import (
	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/go-gl/mathgl/mgl32"
)

// cubeFaces lists each face normal with the tangent along its first edge.
var cubeFaces = [6][2]mgl32.Vec3{
	{{1, 0, 0}, {0, 1, 0}},
	{{-1, 0, 0}, {0, 0, 1}},
	{{0, 1, 0}, {0, 0, 1}},
	{{0, -1, 0}, {1, 0, 0}},
	{{0, 0, 1}, {1, 0, 0}},
	{{0, 0, -1}, {0, 1, 0}},
}

// CubeMesh returns an axis-aligned cube centred on the origin with four vertices per face, so
// every face has flat normals. Faces wind counter-clockwise seen from outside.
//
// Parameters:
//   - halfExtent: half the edge length
//   - color: the vertex color
//
// Returns:
//   - common.Mesh: 24 vertices and 36 indices
func CubeMesh(halfExtent float32, color mgl32.Vec4) common.Mesh {
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	uvs := [4][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}

	m := common.Mesh{
		Vertices: make([]common.Vertex, 0, 24),
		Indices:  make([]uint32, 0, 36),
	}
	for _, face := range cubeFaces {
		n, u := face[0], face[1]
		v := n.Cross(u)
		base := uint32(len(m.Vertices))
		for i, c := range corners {
			p := n.Add(u.Mul(c[0])).Add(v.Mul(c[1])).Mul(halfExtent)
			m.Vertices = append(m.Vertices, common.Vertex{
				Position: p,
				Normal:   n,
				UV:       uvs[i],
				Tangent:  u,
				Color:    color,
			})
		}
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return m
}

// QuadMesh returns a unit quad in the XY plane centred on the origin, facing +Z.
//
// Returns:
//   - common.Mesh: 4 vertices and 6 indices
func QuadMesh() common.Mesh {
	white := [4]float32{1, 1, 1, 1}
	n := [3]float32{0, 0, 1}
	t := [3]float32{1, 0, 0}
	return common.Mesh{
		Vertices: []common.Vertex{
			{Position: [3]float32{-0.5, -0.5, 0}, Normal: n, UV: [2]float32{0, 1}, Tangent: t, Color: white},
			{Position: [3]float32{0.5, -0.5, 0}, Normal: n, UV: [2]float32{1, 1}, Tangent: t, Color: white},
			{Position: [3]float32{0.5, 0.5, 0}, Normal: n, UV: [2]float32{1, 0}, Tangent: t, Color: white},
			{Position: [3]float32{-0.5, 0.5, 0}, Normal: n, UV: [2]float32{0, 0}, Tangent: t, Color: white},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
}
