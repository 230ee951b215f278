package edges

import (
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gilchrisn/perspective-viz/pkg/models"
)

// Options holds the view options the controller depends on
type Options struct {
	// Threshold is the minimum similarity of an active edge
	Threshold float64
	// HideUnselected hides every edge that does not touch the selected node
	HideUnselected bool
	// DeletePercent is the share of candidate edges (0-100) culled at load
	DeletePercent float64
	// Labels attaches label fonts to the style records
	Labels bool
}

// Controller maintains the active edge set and the visibility state of each active edge.
// The candidate list is read-only; culled edges stay out until the next Recull.
type Controller struct {
	base   []models.Edge
	culled map[string]bool
	active map[string]models.EdgeState

	selectedNode   string
	threshold      float64
	hideUnselected bool
	labels         bool

	rng *rand.Rand
}

// NewController culls the candidate edges and builds the initial active set.
// A nil rng uses a time-seeded source.
func NewController(base []models.Edge, opts Options, rng *rand.Rand) *Controller {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	c := &Controller{
		base:           dedupe(base),
		threshold:      opts.Threshold,
		hideUnselected: opts.HideUnselected,
		labels:         opts.Labels,
		rng:            rng,
	}
	c.cull(opts.DeletePercent)

	return c
}

func dedupe(base []models.Edge) []models.Edge {
	seen := make(map[string]bool, len(base))
	out := make([]models.Edge, 0, len(base))
	for _, edge := range base {
		if seen[edge.ID] {
			log.Debug().Str("edge_id", edge.ID).Msg("Duplicate edge id ignored")
			continue
		}
		seen[edge.ID] = true
		out = append(out, edge)
	}
	return out
}

// cull draws one sample per candidate edge, removing deletePercent of them,
// then drops what is below the threshold
func (c *Controller) cull(deletePercent float64) {
	c.culled = make(map[string]bool)
	c.active = make(map[string]models.EdgeState)

	for _, edge := range c.base {
		if c.rng.Float64() < deletePercent/100 {
			c.culled[edge.ID] = true
			continue
		}
		if edge.Similarity < c.threshold {
			continue
		}
		c.active[edge.ID] = c.stateFor(edge)
	}

	log.Debug().
		Int("candidates", len(c.base)).
		Int("culled", len(c.culled)).
		Int("active", len(c.active)).
		Msg("Edges culled")
}

// restingState is the state of an edge that does not touch the selected node
func (c *Controller) restingState() models.EdgeState {
	if c.hideUnselected {
		return models.EdgeHidden
	}
	return models.EdgeVisibleUnselected
}

func (c *Controller) stateFor(edge models.Edge) models.EdgeState {
	if c.selectedNode != "" && edge.Touches(c.selectedNode) {
		return models.EdgeVisibleSelected
	}
	return c.restingState()
}

// SelectForNode selects every active edge touching the node and returns the other endpoints
func (c *Controller) SelectForNode(nodeID string) []string {
	c.selectedNode = nodeID
	neighbors := make([]string, 0)

	for _, edge := range c.base {
		if _, ok := c.active[edge.ID]; !ok {
			continue
		}
		if edge.Touches(nodeID) {
			c.active[edge.ID] = models.EdgeVisibleSelected
			neighbors = append(neighbors, edge.Other(nodeID))
			continue
		}
		c.active[edge.ID] = c.restingState()
	}

	return neighbors
}

// UnselectAll returns every active edge to its resting state
func (c *Controller) UnselectAll() {
	c.selectedNode = ""
	for id := range c.active {
		c.active[id] = c.restingState()
	}
}

// UpdateThreshold removes active edges below a raised threshold, or re-admits
// candidate edges that meet a lowered one. Culled edges are never re-admitted.
func (c *Controller) UpdateThreshold(threshold float64) {
	if threshold > c.threshold {
		removed := 0
		for _, edge := range c.base {
			if _, ok := c.active[edge.ID]; ok && edge.Similarity < threshold {
				delete(c.active, edge.ID)
				removed++
			}
		}
		log.Debug().Float64("threshold", threshold).Int("removed", removed).Msg("Edge threshold raised")
	} else {
		added := 0
		for _, edge := range c.base {
			if edge.Similarity < threshold || c.culled[edge.ID] {
				continue
			}
			if _, ok := c.active[edge.ID]; ok {
				continue
			}
			c.active[edge.ID] = c.stateFor(edge)
			added++
		}
		log.Debug().Float64("threshold", threshold).Int("added", added).Msg("Edge threshold lowered")
	}

	c.threshold = threshold
}

// ToggleHideUnselected re-applies the resting state to every edge that is not selected
func (c *Controller) ToggleHideUnselected(hide bool) {
	c.hideUnselected = hide
	for id, state := range c.active {
		if state != models.EdgeVisibleSelected {
			c.active[id] = c.restingState()
		}
	}
}

// Recull rebuilds the active set from the candidate list with a fresh cull at the current threshold
func (c *Controller) Recull(deletePercent float64) {
	c.cull(deletePercent)
}

// State returns the state of an active edge; ok is false for unknown or culled ids
func (c *Controller) State(edgeID string) (models.EdgeState, bool) {
	state, ok := c.active[edgeID]
	return state, ok
}

// ActiveIDs returns the ids of the active edges in candidate order
func (c *Controller) ActiveIDs() []string {
	ids := make([]string, 0, len(c.active))
	for _, edge := range c.base {
		if _, ok := c.active[edge.ID]; ok {
			ids = append(ids, edge.ID)
		}
	}
	return ids
}

// Styles returns the renderer records of the active edges in candidate order
func (c *Controller) Styles() []models.EdgeStyle {
	styles := make([]models.EdgeStyle, 0, len(c.active))
	for _, edge := range c.base {
		if state, ok := c.active[edge.ID]; ok {
			styles = append(styles, styleFor(edge, state, c.labels))
		}
	}
	return styles
}

// Len is the size of the active set
func (c *Controller) Len() int { return len(c.active) }

// Threshold is the current similarity threshold
func (c *Controller) Threshold() float64 { return c.threshold }

// HideUnselected reports whether unselected edges are hidden
func (c *Controller) HideUnselected() bool { return c.hideUnselected }

// SelectedNode is the node whose edges are selected, empty when none
func (c *Controller) SelectedNode() string { return c.selectedNode }
