// Package session owns one loaded perspective and applies user events to it.
package session

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/rs/zerolog/log"

	"github.com/gilchrisn/perspective-viz/pkg/boxes"
	"github.com/gilchrisn/perspective-viz/pkg/dimension"
	"github.com/gilchrisn/perspective-viz/pkg/edges"
	"github.com/gilchrisn/perspective-viz/pkg/explicit"
	"github.com/gilchrisn/perspective-viz/pkg/layout"
	"github.com/gilchrisn/perspective-viz/pkg/models"
)

// ErrUnknownCommunity is returned when a node or event references a community outside the perspective
var ErrUnknownCommunity = errors.New("unknown community")

// AnonymousLegendKey is the legend key and value that hide every anonymous node
const AnonymousLegendKey = "anonymousUser"

// Config carries everything Load needs besides the perspective and its view options
type Config struct {
	Layout layout.Options
	Boxes  boxes.Options

	// ElectMedoids picks a medoid for communities the input gives none. Off by default:
	// an elected medoid leaves its ring slot empty.
	ElectMedoids bool
	// EdgeLabels attaches label fonts to edge styles
	EdgeLabels bool

	// Rand drives the edge cull; nil means time-seeded
	Rand *rand.Rand

	// Registry is an existing dimension registry to share when its attributes cover this perspective
	Registry *dimension.Registry
}

// DefaultConfig returns the standard layout and box options
func DefaultConfig() Config {
	return Config{
		Layout: layout.DefaultOptions(),
		Boxes:  boxes.DefaultOptions(),
	}
}

// selection is what the current node styling was derived from
type selection struct {
	active  bool
	colored map[string]bool
	focused map[string]bool
}

// Session is the aggregate that owns one perspective's nodes, communities and edges.
// It is not safe for concurrent use.
type Session struct {
	perspective *models.Perspective
	nodes       map[string]*models.Node
	view        models.ViewOptions

	aggregator *explicit.Aggregator
	registry   *dimension.Registry
	location   *layout.NodeLocation
	boxes      *boxes.Registry
	edges      *edges.Controller

	selection     selection
	selectedNode  string
	sharedChannel bool
}

// Load builds a session: catalog scan, channel assignment, layout, initial visuals,
// bounding boxes and the edge set, in that order
func Load(p *models.Perspective, view models.ViewOptions, cfg Config) (*Session, error) {
	if p == nil {
		return nil, fmt.Errorf("perspective is nil")
	}

	s := &Session{
		perspective: p,
		nodes:       make(map[string]*models.Node, len(p.Nodes)),
		view:        view,
		aggregator:  explicit.NewAggregator(),
	}
	if s.view.Legend == nil {
		s.view.Legend = models.LegendConfig{}
	} else {
		s.view.Legend = view.Legend.Clone()
	}

	for _, node := range p.Nodes {
		if node.Community < 0 || node.Community >= len(p.Communities) {
			return nil, fmt.Errorf("node %q references community %d: %w", node.ID, node.Community, ErrUnknownCommunity)
		}
		if _, dup := s.nodes[node.ID]; dup {
			return nil, fmt.Errorf("duplicate node id %q", node.ID)
		}
		s.nodes[node.ID] = node
	}
	s.normalizeCommunities()

	s.aggregator.Scan(p.Nodes)
	s.initRegistry(cfg.Registry)

	if cfg.ElectMedoids {
		elected := layout.NewMedoidElector().ElectAll(p.Communities, s.nodes, p.Edges)
		if len(elected) > 0 {
			log.Debug().Int("communities", len(elected)).Msg("Elected missing medoids")
		}
	}

	s.location = layout.NewNodeLocation(len(p.Communities), len(p.Nodes), cfg.Layout)
	for _, node := range p.Nodes {
		s.location.Register(node)
	}

	s.boxes = boxes.NewRegistry(p.Communities, cfg.Boxes)
	for _, node := range p.Nodes {
		s.location.Place(node)
		s.initialVisuals(node)
		s.boxes.Absorb(node)
	}

	s.edges = edges.NewController(p.Edges, edges.Options{
		Threshold:      view.EdgeThreshold,
		HideUnselected: view.HideEdges,
		DeletePercent:  view.DeleteEdgesPercent,
		Labels:         cfg.EdgeLabels,
	}, cfg.Rand)

	log.Info().
		Str("perspective_id", p.ID).
		Int("nodes", len(p.Nodes)).
		Int("communities", len(p.Communities)).
		Int("candidate_edges", len(p.Edges)).
		Int("active_edges", s.edges.Len()).
		Bool("shared_channels", s.sharedChannel).
		Msg("Perspective loaded")

	return s, nil
}

// normalizeCommunities fixes each community's index, fills missing member lists from the
// nodes and recomputes the anonymous members
func (s *Session) normalizeCommunities() {
	p := s.perspective

	derived := make([][]string, len(p.Communities))
	for _, node := range p.Nodes {
		derived[node.Community] = append(derived[node.Community], node.ID)
	}

	for i, community := range p.Communities {
		community.Index = i
		community.Box = nil
		if len(community.Members) == 0 {
			community.Members = derived[i]
		}

		community.AnonMembers = make([]string, 0)
		for _, id := range community.Members {
			if node, ok := s.nodes[id]; ok && node.IsAnonymous {
				community.AnonMembers = append(community.AnonMembers, id)
			}
		}
	}
}

// initRegistry reuses the shared registry when it covers this perspective's attributes
func (s *Session) initRegistry(shared *dimension.Registry) {
	attrs := dimension.BuildAttributes(s.aggregator.Catalog(), s.view.ShowBorder)

	if shared != nil && shared.Compatible(attrs) {
		s.registry = shared
		s.sharedChannel = true
		return
	}

	s.registry = dimension.NewRegistry(attrs)
}

func (s *Session) initialVisuals(node *models.Node) {
	if s.hiddenByLegend(node) {
		s.dim(node)
	} else {
		s.registry.NodeToDefault(node, false)
	}
	s.updateLabel(node)
}

// dim styles the node colorless on top of its mapped primitives, so channels that
// do not dim (shape) still carry the node's value
func (s *Session) dim(node *models.Node) {
	s.registry.NodeToDefault(node, false)
	s.registry.NodeToColorless(node)
}

func (s *Session) updateLabel(node *models.Node) {
	if s.view.HideLabels {
		node.Font.Color = dimension.LabelHidden
	} else {
		node.Font.Color = dimension.LabelVisible
	}
}

// hiddenByLegend reports whether any of the node's values, or its anonymity, is hidden in the legend
func (s *Session) hiddenByLegend(node *models.Node) bool {
	for _, attr := range node.Attributes {
		if s.view.Legend.Hidden(attr.Key, attr.Value) {
			return true
		}
	}
	return node.IsAnonymous && s.view.Legend.Hidden(AnonymousLegendKey, AnonymousLegendKey)
}

// selectNodes colors the colored set, focuses the focused set and dims everything else.
// Returns the focused ids that exist in the perspective.
func (s *Session) selectNodes(colored, focused []string) []string {
	s.selection = selection{
		active:  true,
		colored: toSet(colored),
		focused: toSet(focused),
	}

	existing := make([]string, 0, len(focused))
	for _, node := range s.perspective.Nodes {
		if s.selection.focused[node.ID] && !s.selection.colored[node.ID] && !s.hiddenByLegend(node) {
			existing = append(existing, node.ID)
		}
	}

	s.restyle()
	return existing
}

func (s *Session) colorAllNodes() {
	s.selection = selection{}
	s.restyle()
}

// restyle re-applies the current selection and legend to every node
func (s *Session) restyle() {
	for _, node := range s.perspective.Nodes {
		switch {
		case s.hiddenByLegend(node):
			s.dim(node)
		case !s.selection.active || s.selection.colored[node.ID]:
			s.registry.NodeToDefault(node, false)
		case s.selection.focused[node.ID]:
			s.registry.NodeToDefault(node, true)
		default:
			s.dim(node)
		}
	}
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// Node returns a node by id
func (s *Session) Node(id string) (*models.Node, bool) {
	node, ok := s.nodes[id]
	return node, ok
}

// Community returns a community by index
func (s *Session) Community(index int) (*models.Community, bool) {
	if index < 0 || index >= len(s.perspective.Communities) {
		return nil, false
	}
	return s.perspective.Communities[index], true
}

// Perspective returns the loaded perspective
func (s *Session) Perspective() *models.Perspective { return s.perspective }

// Registry returns the dimension registry, for sharing with another perspective
func (s *Session) Registry() *dimension.Registry { return s.registry }

// SharesChannels reports whether the session reused another session's registry
func (s *Session) SharesChannels() bool { return s.sharedChannel }

// Edges exposes the edge controller
func (s *Session) Edges() *edges.Controller { return s.edges }

// Boxes exposes the bounding box registry, whose Draw is the host's before-drawing hook
func (s *Session) Boxes() *boxes.Registry { return s.boxes }

// View returns a copy of the current view options
func (s *Session) View() models.ViewOptions {
	view := s.view
	view.Legend = s.view.Legend.Clone()
	view.EdgeThreshold = s.edges.Threshold()
	view.HideEdges = s.edges.HideUnselected()
	return view
}

// Breakdown returns the percentage breakdown of a community.
// ok is false for a community without identified members.
func (s *Session) Breakdown(index int) ([]explicit.KeyBreakdown, bool, error) {
	community, found := s.Community(index)
	if !found {
		return nil, false, fmt.Errorf("community %d: %w", index, ErrUnknownCommunity)
	}
	breakdown, ok := s.aggregator.PercentileBreakdown(community)
	return breakdown, ok, nil
}

// Catalog returns the distinct attribute values of the perspective
func (s *Session) Catalog() []models.AttributeValues {
	return s.aggregator.Catalog()
}
