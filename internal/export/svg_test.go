package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/constraint"
	"github.com/san-kum/clothsim/internal/render"
	"github.com/san-kum/clothsim/internal/topology"
)

func TestMeshToSVG(t *testing.T) {
	sys, err := topology.BuildUniformGrid(1, 5, topology.DefaultOptions())
	require.NoError(t, err)
	cam := render.NewCamera(320, 240)

	fix := constraint.NewPointFix()
	require.NoError(t, fix.Fix(sys, 0))

	out := MeshToSVG(cam, sys, MeshOptions{
		Sphere: constraint.NewSphere(cam.Target, 0.3),
		Fix:    fix,
	})
	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.True(t, strings.HasSuffix(out, "</svg>"))
	assert.Contains(t, out, `width="320" height="240"`)
	assert.Equal(t, len(sys.Group(cloth.Structural)), strings.Count(out, "<line "))
	// sphere plus one pin
	assert.Equal(t, 2, strings.Count(out, "<circle "))

	all := MeshToSVG(cam, sys, MeshOptions{Springs: []cloth.SpringKind{cloth.Structural, cloth.Shear}})
	assert.Equal(t, len(sys.Group(cloth.Structural))+len(sys.Group(cloth.Shear)), strings.Count(all, "<line "))
}

func TestTrajectoryToSVG(t *testing.T) {
	traj := []cloth.Vec3{{0, 0, 0}, {1, 0, -1}, {2, 0, 0}}
	out := TrajectoryToSVG(traj, 0, 2, 100, 50, "#ff00ff")
	assert.Contains(t, out, `stroke="#ff00ff"`)
	assert.Equal(t, 2, strings.Count(out, " L"))

	assert.Empty(t, TrajectoryToSVG(traj[:1], 0, 2, 100, 50, "#fff"))
	assert.Empty(t, TrajectoryToSVG(traj, 0, 3, 100, 50, "#fff"))
}
