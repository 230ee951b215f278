package layout

import (
	"math"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/gilchrisn/perspective-viz/pkg/models"
)

const (
	partitionPrecision = 3
	nodePrecision      = 10
)

// Options controls the static circular layout
type Options struct {
	// BaseDistance is added to the partition circle radius
	BaseDistance float64
	// PerNodeDistance scales the ring a cluster's members sit on
	PerNodeDistance float64
	// MinRingNodes is the smallest member count used to size a ring
	MinRingNodes int
}

// DefaultOptions returns the layout constants the renderer expects
func DefaultOptions() Options {
	return Options{
		BaseDistance:    75,
		PerNodeDistance: 8,
		MinRingNodes:    7,
	}
}

// nodeGroup is the slice of the canvas reserved for one community
type nodeGroup struct {
	center  models.Position
	members []string
	index   map[string]int
}

// NodeLocation places every node of a perspective on a static layout: one angular
// partition per community, members spread evenly on a ring around its center.
type NodeLocation struct {
	opts   Options
	groups []nodeGroup
}

// NewNodeLocation computes the partition centers for the perspective
func NewNodeLocation(nCommunities, totalNodes int, opts Options) *NodeLocation {
	centers := Partition(nCommunities, totalNodes, opts.BaseDistance)

	groups := make([]nodeGroup, len(centers))
	for i, center := range centers {
		groups[i] = nodeGroup{
			center: center,
			index:  make(map[string]int),
		}
	}

	return &NodeLocation{opts: opts, groups: groups}
}

// Partition returns nCommunities centers equally spaced on a circle whose radius grows
// with both the population and the number of communities
func Partition(nCommunities, totalNodes int, baseDistance float64) []models.Position {
	if nCommunities <= 0 {
		return nil
	}

	radius := float64(totalNodes) + baseDistance + 4*float64(nCommunities)
	angleSlice := 2 * math.Pi / float64(nCommunities)

	centers := make([]models.Position, nCommunities)
	for i := range centers {
		angle := angleSlice * float64(i)
		centers[i] = models.Position{
			X: scalar.Round(radius*math.Cos(angle), partitionPrecision),
			Y: scalar.Round(radius*math.Sin(angle), partitionPrecision),
		}
	}

	return centers
}

// Register appends the node to its community's cluster. Registration order is the
// node's index inside the cluster. Unknown communities and repeated ids are ignored.
func (l *NodeLocation) Register(node *models.Node) bool {
	group, ok := l.group(node.Community)
	if !ok {
		log.Debug().
			Str("node_id", node.ID).
			Int("community", node.Community).
			Msg("Node references a community outside the partition, not registered")
		return false
	}

	if _, exists := group.index[node.ID]; exists {
		return true
	}

	group.index[node.ID] = len(group.members)
	group.members = append(group.members, node.ID)
	return true
}

// Place writes the node's position. The medoid sits on the partition center; every
// other member sits on the cluster ring at an angle given by its registration index.
func (l *NodeLocation) Place(node *models.Node) bool {
	group, ok := l.group(node.Community)
	if !ok {
		return false
	}

	if node.IsMedoid {
		node.X = group.center.X
		node.Y = group.center.Y
		return true
	}

	idx, ok := group.index[node.ID]
	if !ok {
		log.Debug().
			Str("node_id", node.ID).
			Int("community", node.Community).
			Msg("Node was never registered in its cluster, not placed")
		return false
	}

	pos := l.ringPosition(group, idx)
	node.X = pos.X
	node.Y = pos.Y
	return true
}

func (l *NodeLocation) ringPosition(group *nodeGroup, idx int) models.Position {
	size := len(group.members)
	ringNodes := size
	if ringNodes < l.opts.MinRingNodes {
		ringNodes = l.opts.MinRingNodes
	}

	radius := float64(ringNodes) * l.opts.PerNodeDistance
	angle := 2 * math.Pi * float64(idx) / float64(size)

	return models.Position{
		X: scalar.Round(group.center.X+radius*math.Cos(angle), nodePrecision),
		Y: scalar.Round(group.center.Y+radius*math.Sin(angle), nodePrecision),
	}
}

// Center returns the partition center of a community
func (l *NodeLocation) Center(community int) (models.Position, bool) {
	group, ok := l.group(community)
	if !ok {
		return models.Position{}, false
	}
	return group.center, true
}

// ClusterSize returns the number of nodes registered in a community
func (l *NodeLocation) ClusterSize(community int) int {
	group, ok := l.group(community)
	if !ok {
		return 0
	}
	return len(group.members)
}

func (l *NodeLocation) group(community int) (*nodeGroup, bool) {
	if community < 0 || community >= len(l.groups) {
		return nil, false
	}
	return &l.groups[community], true
}
