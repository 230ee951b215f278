package boxes

import (
	"github.com/rs/zerolog/log"

	"github.com/gilchrisn/perspective-viz/pkg/models"
)

// Options configures the bounding boxes
type Options struct {
	// Padding makes boxes a bit bigger than the nodes they bound
	Padding float64
	// BorderWidth is the stroke width of a box; highlighted boxes use twice this
	BorderWidth float64
}

// DefaultOptions returns the standard box padding and border width
func DefaultOptions() Options {
	return Options{Padding: 15, BorderWidth: 4}
}

const highlightColor = "rgba(10, 10, 10, 1)"

var palette = []models.BoxColor{
	{Fill: "rgba(248, 212, 251, 0.6)", Border: "rgba(242, 169, 249, 1)", Highlight: highlightColor, Name: "Purple"},
	{Fill: "rgba(255, 255, 170, 0.6)", Border: "rgba(255, 222, 120, 1)", Highlight: highlightColor, Name: "Yellow"},
	{Fill: "rgba(211, 245, 192, 0.6)", Border: "rgba(169, 221, 140, 1)", Highlight: highlightColor, Name: "Green"},
	{Fill: "rgba(254, 212, 213, 0.6)", Border: "rgba(252, 153, 156, 1)", Highlight: highlightColor, Name: "Red"},
	{Fill: "rgba(220, 235, 254, 0.6)", Border: "rgba(168, 201, 248, 1)", Highlight: highlightColor, Name: "Blue"},
	{Fill: "rgba(250, 220, 185, 0.6)", Border: "rgba(250, 169, 73, 1)", Highlight: highlightColor, Name: "Orange"},
	{Fill: "rgba(240, 240, 240, 0.6)", Border: "rgba(230, 230, 230, 1)", Highlight: highlightColor, Name: "White"},
	{Fill: "rgba(10, 10, 10, 0.6)", Border: "rgba(0, 0, 0, 1)", Highlight: highlightColor, Name: "Black"},
}

var inexistentColor = models.BoxColor{
	Fill:      "rgba(0, 0, 0, 0.0)",
	Border:    "rgba(0, 0, 0, 0)",
	Highlight: "rgba(0, 0, 0, 0)",
	Name:      "Transparent",
}

// ColorOf returns the palette entry of a community index
func ColorOf(index int) models.BoxColor {
	return palette[index%len(palette)]
}

// Canvas is the drawing capability the host hands to Draw
type Canvas interface {
	SetLineWidth(width float64)
	SetStrokeStyle(style string)
	StrokeRect(x, y, w, h float64)
	SetFillStyle(style string)
	FillRect(x, y, w, h float64)
}

// Registry grows one bounding box per community as member positions become known
type Registry struct {
	opts        Options
	communities []*models.Community
	highlighted map[int]bool
}

// NewRegistry creates a registry over the perspective's communities
func NewRegistry(communities []*models.Community, opts Options) *Registry {
	return &Registry{
		opts:        opts,
		communities: communities,
		highlighted: make(map[int]bool),
	}
}

// Absorb merges the node's padded box into its community's box.
// Boxes only grow; the first member also fixes the box color.
func (r *Registry) Absorb(node *models.Node) bool {
	if node.Community < 0 || node.Community >= len(r.communities) {
		log.Debug().
			Str("node_id", node.ID).
			Int("community", node.Community).
			Msg("Node references an unknown community, box not updated")
		return false
	}

	half := node.Size/2 + r.opts.Padding
	nodeBB := models.BoundingBox{
		Top:    node.Y - half,
		Bottom: node.Y + half,
		Left:   node.X - half,
		Right:  node.X + half,
	}

	community := r.communities[node.Community]
	if community.Box == nil {
		if community.Type == models.CommunityInexistent {
			nodeBB.Color = inexistentColor
		} else {
			nodeBB.Color = ColorOf(node.Community)
		}
		community.Box = &nodeBB
		return true
	}

	bb := community.Box
	if nodeBB.Left < bb.Left {
		bb.Left = nodeBB.Left
	}
	if nodeBB.Top < bb.Top {
		bb.Top = nodeBB.Top
	}
	if nodeBB.Right > bb.Right {
		bb.Right = nodeBB.Right
	}
	if nodeBB.Bottom > bb.Bottom {
		bb.Bottom = nodeBB.Bottom
	}
	return true
}

// HitTest returns the lowest community index whose box strictly contains the point
func (r *Registry) HitTest(x, y float64) (int, bool) {
	for i, community := range r.communities {
		if community.Box != nil && community.Box.Contains(x, y) {
			return i, true
		}
	}
	return 0, false
}

// Highlight replaces the highlighted set
func (r *Registry) Highlight(indices ...int) {
	r.highlighted = make(map[int]bool, len(indices))
	for _, i := range indices {
		r.highlighted[i] = true
	}
}

// ClearHighlights removes every highlight
func (r *Registry) ClearHighlights() {
	r.Highlight()
}

// IsHighlighted reports whether a community box is highlighted
func (r *Registry) IsHighlighted(index int) bool {
	return r.highlighted[index]
}

// Draw paints every defined box in ascending community order, border before fill
func (r *Registry) Draw(ctx Canvas) {
	for i, community := range r.communities {
		bb := community.Box
		if bb == nil {
			continue
		}

		borderColor := bb.Color.Border
		borderWidth := r.opts.BorderWidth
		if r.highlighted[i] {
			borderWidth *= 2
			borderColor = bb.Color.Highlight
		}

		ctx.SetLineWidth(borderWidth)
		ctx.SetStrokeStyle(borderColor)
		ctx.StrokeRect(bb.Left, bb.Top, bb.Width(), bb.Height())

		ctx.SetLineWidth(0)
		ctx.SetFillStyle(bb.Color.Fill)
		ctx.FillRect(bb.Left, bb.Top, bb.Width(), bb.Height())
	}
}

// Snapshot is a renderer-ready copy of one community's box
type Snapshot struct {
	Community   int                `json:"community"`
	Box         models.BoundingBox `json:"box"`
	Highlighted bool               `json:"highlighted"`
}

// Snapshots returns copies of every defined box in community order
func (r *Registry) Snapshots() []Snapshot {
	out := make([]Snapshot, 0, len(r.communities))
	for i, community := range r.communities {
		if community.Box == nil {
			continue
		}
		out = append(out, Snapshot{
			Community:   i,
			Box:         *community.Box,
			Highlighted: r.highlighted[i],
		})
	}
	return out
}
