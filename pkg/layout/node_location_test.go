package layout

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/gilchrisn/perspective-viz/pkg/models"
)

func distance(a, b models.Position) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// buildCluster creates size members of one community; the first one is the medoid when withMedoid is set
func buildCluster(community, size int, withMedoid bool) []*models.Node {
	nodes := make([]*models.Node, size)
	for i := range nodes {
		nodes[i] = &models.Node{
			ID:        fmt.Sprintf("c%d_n%d", community, i),
			Community: community,
			IsMedoid:  withMedoid && i == 0,
		}
	}
	return nodes
}

func TestPartitionFormula(t *testing.T) {
	centers := Partition(3, 15, 75)
	require.Len(t, centers, 3)

	radius := 15.0 + 75 + 4*3
	for i, c := range centers {
		angle := 2 * math.Pi * float64(i) / 3
		assert.Equal(t, scalar.Round(radius*math.Cos(angle), 3), c.X)
		assert.Equal(t, scalar.Round(radius*math.Sin(angle), 3), c.Y)
	}

	assert.Equal(t, models.Position{X: 102, Y: 0}, centers[0])
	assert.Equal(t, models.Position{X: -51, Y: 88.335}, centers[1])
	assert.Equal(t, models.Position{X: -51, Y: -88.335}, centers[2])
}

func TestPartitionEmpty(t *testing.T) {
	assert.Nil(t, Partition(0, 10, 75))
}

func TestPlaceScenarioThreeCommunities(t *testing.T) {
	opts := DefaultOptions()

	var nodes []*models.Node
	nodes = append(nodes, buildCluster(0, 1, true)...)
	nodes = append(nodes, buildCluster(1, 4, false)...)
	nodes = append(nodes, buildCluster(2, 10, false)...)

	loc := NewNodeLocation(3, len(nodes), opts)
	for _, n := range nodes {
		require.True(t, loc.Register(n))
	}
	for _, n := range nodes {
		require.True(t, loc.Place(n))
	}

	centers := make([]models.Position, 3)
	for i := range centers {
		c, ok := loc.Center(i)
		require.True(t, ok)
		centers[i] = c
	}
	for i := 0; i < 3; i++ {
		for j := i + 1; j < 3; j++ {
			assert.NotEqual(t, centers[i], centers[j])
		}
	}

	// Medoid-only community sits on its center
	assert.Equal(t, centers[0], nodes[0].Position())

	// Size-10 community: radius = 10 * 8, angle = 2πi/10
	big := nodes[5:]
	require.Len(t, big, 10)
	for i, n := range big {
		angle := 2 * math.Pi * float64(i) / 10
		wantX := scalar.Round(centers[2].X+80*math.Cos(angle), 10)
		wantY := scalar.Round(centers[2].Y+80*math.Sin(angle), 10)
		assert.Equal(t, wantX, n.X, "node %s x", n.ID)
		assert.Equal(t, wantY, n.Y, "node %s y", n.ID)
	}
	for i := range big {
		for j := i + 1; j < len(big); j++ {
			assert.Greater(t, distance(big[i].Position(), big[j].Position()), opts.PerNodeDistance/2)
		}
	}

	// Size-4 community uses the minimum ring of 7 nodes
	for _, n := range nodes[1:5] {
		assert.InDelta(t, 7*opts.PerNodeDistance, distance(n.Position(), centers[1]), 1e-6)
	}
}

func TestPlaceNonMedoidPositionsAreDistinct(t *testing.T) {
	opts := DefaultOptions()

	for size := 1; size <= 40; size++ {
		for _, withMedoid := range []bool{false, true} {
			nodes := buildCluster(0, size, withMedoid)
			loc := NewNodeLocation(1, size, opts)
			for _, n := range nodes {
				loc.Register(n)
			}
			for _, n := range nodes {
				loc.Place(n)
			}

			center, _ := loc.Center(0)
			seen := make(map[models.Position]string)
			for _, n := range nodes {
				if n.IsMedoid {
					assert.Equal(t, center, n.Position())
					continue
				}
				prev, dup := seen[n.Position()]
				assert.False(t, dup, "size %d: %s coincides with %s", size, n.ID, prev)
				seen[n.Position()] = n.ID
			}
		}
	}
}

func TestRegisterAndPlaceIgnoreUnknownCommunities(t *testing.T) {
	loc := NewNodeLocation(2, 3, DefaultOptions())
	stray := &models.Node{ID: "x", Community: 5, X: 1, Y: 2}

	assert.False(t, loc.Register(stray))
	assert.False(t, loc.Place(stray))
	assert.Equal(t, models.Position{X: 1, Y: 2}, stray.Position())

	unregistered := &models.Node{ID: "y", Community: 1}
	assert.False(t, loc.Place(unregistered))
}

func TestRegisterIsIdempotent(t *testing.T) {
	loc := NewNodeLocation(1, 2, DefaultOptions())
	n := &models.Node{ID: "a"}

	loc.Register(n)
	loc.Register(n)

	assert.Equal(t, 1, loc.ClusterSize(0))
}
