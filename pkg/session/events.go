package session

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/gilchrisn/perspective-viz/pkg/boxes"
	"github.com/gilchrisn/perspective-viz/pkg/models"
)

// NodeClicked selects the node's edges, focuses the node, colors its neighbours and dims
// the rest. Returns the neighbour ids; ok is false for an unknown node.
func (s *Session) NodeClicked(nodeID string) ([]string, bool) {
	if _, ok := s.nodes[nodeID]; !ok {
		log.Debug().Str("node_id", nodeID).Msg("Click on unknown node ignored")
		return nil, false
	}

	s.selectedNode = nodeID
	neighbors := s.edges.SelectForNode(nodeID)
	s.selectNodes(neighbors, []string{nodeID})
	s.boxes.ClearHighlights()

	return neighbors, true
}

// BoundingBoxClicked colors the community's members, dims the rest and highlights its box
func (s *Session) BoundingBoxClicked(index int) error {
	community, ok := s.Community(index)
	if !ok {
		return fmt.Errorf("community %d: %w", index, ErrUnknownCommunity)
	}

	s.selectedNode = ""
	s.selectNodes(community.Members, nil)
	s.edges.UnselectAll()
	s.boxes.Highlight(index)

	return nil
}

// ExternalCommunityClicked focuses the listed users, which come from a community of another
// perspective, and dims the rest. Returns the listed ids present in this perspective.
func (s *Session) ExternalCommunityClicked(userIDs []string) []string {
	s.selectedNode = ""
	existing := s.selectNodes(nil, userIDs)
	s.edges.UnselectAll()
	s.boxes.ClearHighlights()

	return existing
}

// NothingClicked colors every node the legend allows and clears every selection
func (s *Session) NothingClicked() {
	s.selectedNode = ""
	s.colorAllNodes()
	s.edges.UnselectAll()
	s.boxes.ClearHighlights()
}

// Click resolves a canvas click that hit no node: a box click or nothing
func (s *Session) Click(x, y float64) (int, bool) {
	index, ok := s.boxes.HitTest(x, y)
	if !ok {
		s.NothingClicked()
		return 0, false
	}

	// HitTest only returns known indices
	_ = s.BoundingBoxClicked(index)
	return index, true
}

// UpdateThreshold changes the edge similarity threshold
func (s *Session) UpdateThreshold(threshold float64) {
	s.edges.UpdateThreshold(threshold)
	s.view.EdgeThreshold = threshold
}

// ToggleHideEdges hides or shows every unselected edge
func (s *Session) ToggleHideEdges(hide bool) {
	s.edges.ToggleHideUnselected(hide)
	s.view.HideEdges = hide
}

// ToggleBorder switches the border channel and restyles the nodes.
// Returns the updated attribute list for the legend.
func (s *Session) ToggleBorder(show bool) []models.DimAttribute {
	attrs := s.registry.ToggleBorderChannel(show)
	s.view.ShowBorder = show
	s.restyle()
	return attrs
}

// ToggleLabels shows or hides every node label
func (s *Session) ToggleLabels(hide bool) {
	s.view.HideLabels = hide
	for _, node := range s.perspective.Nodes {
		s.updateLabel(node)
	}
}

// SetLegend replaces the legend configuration and restyles the nodes, keeping the selection
func (s *Session) SetLegend(legend models.LegendConfig) {
	if legend == nil {
		legend = models.LegendConfig{}
	}
	s.view.Legend = legend.Clone()
	s.restyle()
}

// Recull draws a fresh random cull over every candidate edge at the current threshold
func (s *Session) Recull(deletePercent float64) {
	s.view.DeleteEdgesPercent = deletePercent
	s.edges.Recull(deletePercent)
}

// Snapshot is everything a renderer needs to draw the session
type Snapshot struct {
	ID           string                `json:"id"`
	Name         string                `json:"name"`
	Nodes        []models.NodeStyle    `json:"nodes"`
	Edges        []models.EdgeStyle    `json:"edges"`
	Boxes        []boxes.Snapshot      `json:"boxes"`
	Attributes   []models.DimAttribute `json:"attributes"`
	View         models.ViewOptions    `json:"view"`
	SelectedNode string                `json:"selectedNode,omitempty"`
}

// Snapshot copies the current render state
func (s *Session) Snapshot() Snapshot {
	nodes := make([]models.NodeStyle, len(s.perspective.Nodes))
	for i, node := range s.perspective.Nodes {
		nodes[i] = node.Style()
	}

	return Snapshot{
		ID:           s.perspective.ID,
		Name:         s.perspective.Name,
		Nodes:        nodes,
		Edges:        s.edges.Styles(),
		Boxes:        s.boxes.Snapshots(),
		Attributes:   s.registry.Attributes(),
		View:         s.View(),
		SelectedNode: s.selectedNode,
	}
}
