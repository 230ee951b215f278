package layout

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/gilchrisn/perspective-viz/pkg/models"
)

const scoreTolerance = 1e-9

// MedoidElector picks a representative for communities whose input names none,
// using PageRank over the community's internal similarity edges
type MedoidElector struct {
	dampingFactor float64
	tolerance     float64
}

// NewMedoidElector creates an elector with the standard PageRank parameters
func NewMedoidElector() *MedoidElector {
	return &MedoidElector{
		dampingFactor: 0.85,
		tolerance:     1e-6,
	}
}

// ElectAll flags one medoid in every implicit community that has none.
// Returns community index -> elected node id for the communities it changed.
func (me *MedoidElector) ElectAll(communities []*models.Community, nodes map[string]*models.Node, edges []models.Edge) map[int]string {
	elected := make(map[int]string)

	for _, community := range communities {
		if community.Type == models.CommunityInexistent || hasMedoid(community, nodes) {
			continue
		}

		medoid, err := me.Elect(community, nodes, edges)
		if err != nil {
			log.Debug().Int("community", community.Index).Err(err).Msg("No medoid elected")
			continue
		}

		nodes[medoid].IsMedoid = true
		elected[community.Index] = medoid
	}

	return elected
}

// Elect returns the member with the highest PageRank score inside the community.
// Ties and communities without internal edges resolve to the earliest member.
func (me *MedoidElector) Elect(community *models.Community, nodes map[string]*models.Node, edges []models.Edge) (string, error) {
	candidates := make([]string, 0, len(community.Members))
	for _, id := range community.Members {
		if node, ok := nodes[id]; ok && !node.IsAnonymous {
			candidates = append(candidates, id)
		}
	}

	if len(candidates) == 0 {
		return "", fmt.Errorf("community %d has no identified members", community.Index)
	}
	if len(candidates) == 1 {
		return candidates[0], nil
	}

	g, gonumIDs := buildCommunityGraph(candidates, edges)
	if g.Edges().Len() == 0 {
		return candidates[0], nil
	}

	scores := network.PageRank(toDirected(g), me.dampingFactor, me.tolerance)
	if len(scores) == 0 {
		return "", fmt.Errorf("PageRank computation returned no scores")
	}

	best := candidates[0]
	bestScore := scores[gonumIDs[best]]
	for _, id := range candidates[1:] {
		score := scores[gonumIDs[id]]
		if score > bestScore && !scalar.EqualWithinAbs(score, bestScore, scoreTolerance) {
			best, bestScore = id, score
		}
	}

	return best, nil
}

func hasMedoid(community *models.Community, nodes map[string]*models.Node) bool {
	for _, id := range community.Members {
		if node, ok := nodes[id]; ok && node.IsMedoid {
			return true
		}
	}
	return false
}

// buildCommunityGraph keeps only edges with both endpoints among the candidates
func buildCommunityGraph(candidates []string, edges []models.Edge) (*simple.WeightedUndirectedGraph, map[string]int64) {
	g := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	gonumIDs := make(map[string]int64, len(candidates))

	for i, id := range candidates {
		gonumIDs[id] = int64(i)
		g.AddNode(simple.Node(int64(i)))
	}

	for _, edge := range edges {
		from, fromOK := gonumIDs[edge.From]
		to, toOK := gonumIDs[edge.To]
		if !fromOK || !toOK || from == to || g.HasEdgeBetween(from, to) {
			continue
		}
		g.SetWeightedEdge(simple.WeightedEdge{
			F: simple.Node(from),
			T: simple.Node(to),
			W: edge.Similarity,
		})
	}

	return g, gonumIDs
}

// toDirected adds both directions of every undirected edge
func toDirected(weighted *simple.WeightedUndirectedGraph) *simple.WeightedDirectedGraph {
	directed := simple.NewWeightedDirectedGraph(0, math.Inf(1))

	nodes := weighted.Nodes()
	for nodes.Next() {
		directed.AddNode(nodes.Node())
	}

	edges := weighted.WeightedEdges()
	for edges.Next() {
		edge := edges.WeightedEdge()
		directed.SetWeightedEdge(simple.WeightedEdge{F: edge.From(), T: edge.To(), W: edge.Weight()})
		directed.SetWeightedEdge(simple.WeightedEdge{F: edge.To(), T: edge.From(), W: edge.Weight()})
	}

	return directed
}
