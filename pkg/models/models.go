package models

import "fmt"

// Position is a point in canvas coordinates
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Channel is a visual dimension a categorical attribute can be mapped onto
type Channel int

const (
	ChannelColor Channel = iota
	ChannelShape
	ChannelBorder
)

// Channels lists every channel in dispatch order
var Channels = [...]Channel{ChannelColor, ChannelShape, ChannelBorder}

func (c Channel) String() string {
	switch c {
	case ChannelColor:
		return "color"
	case ChannelShape:
		return "shape"
	case ChannelBorder:
		return "border"
	default:
		return fmt.Sprintf("channel(%d)", int(c))
	}
}

// MarshalText lets channels travel as their names in JSON
func (c Channel) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Attribute is one explicit-community key/value pair of a node
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// AttributeValues is one key of the attribute catalog with its distinct values in discovery order
type AttributeValues struct {
	Key    string   `json:"key"`
	Values []string `json:"values"`
}

// DimAttribute assigns one categorical attribute to one visual channel
type DimAttribute struct {
	Key     string   `json:"key"`
	Values  []string `json:"values"`
	Channel Channel  `json:"channel"`
	Active  bool     `json:"active"`
}

// NodeColor holds the background and border colors of a node
type NodeColor struct {
	Background string `json:"background"`
	Border     string `json:"border"`
}

// NodeFont holds the label settings of a node
type NodeFont struct {
	VAdjust float64 `json:"vadjust"`
	Color   string  `json:"color,omitempty"`
}

// Node is a user of the perspective. Attributes keep the order they had in the input.
type Node struct {
	ID          string      `json:"id"`
	Label       string      `json:"label"`
	Community   int         `json:"community"`
	Attributes  []Attribute `json:"attributes"`
	IsMedoid    bool        `json:"isMedoid"`
	IsAnonymous bool        `json:"isAnonymous"`
	IsAnonGroup bool        `json:"isAnonGroup"`

	// Computed by the layout and dimension strategies
	X           float64   `json:"x"`
	Y           float64   `json:"y"`
	Size        float64   `json:"size"`
	Shape       string    `json:"shape"`
	Image       string    `json:"image,omitempty"`
	Color       NodeColor `json:"color"`
	BorderWidth float64   `json:"borderWidth"`
	Font        NodeFont  `json:"font"`
}

// Value returns the node's value for an attribute key
func (n *Node) Value(key string) (string, bool) {
	for _, attr := range n.Attributes {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}

// Position returns the computed position of the node
func (n *Node) Position() Position {
	return Position{X: n.X, Y: n.Y}
}

// CommunityType tells real communities apart from placeholder groupings
type CommunityType int

const (
	CommunityImplicit CommunityType = iota
	CommunityInexistent
)

// BoxColor is the palette entry of a community's bounding box
type BoxColor struct {
	Fill      string `json:"fill"`
	Border    string `json:"border"`
	Highlight string `json:"highlight"`
	Name      string `json:"name"`
}

// BoundingBox is the axis-aligned rectangle around every member of a community
type BoundingBox struct {
	Top    float64  `json:"top"`
	Bottom float64  `json:"bottom"`
	Left   float64  `json:"left"`
	Right  float64  `json:"right"`
	Color  BoxColor `json:"color"`
}

// Width of the box
func (bb BoundingBox) Width() float64 { return bb.Right - bb.Left }

// Height of the box
func (bb BoundingBox) Height() float64 { return bb.Bottom - bb.Top }

// Contains reports whether the point lies strictly inside the box
func (bb BoundingBox) Contains(x, y float64) bool {
	return x > bb.Left && x < bb.Right && y > bb.Top && y < bb.Bottom
}

// Community is a group of nodes assigned by an external clustering run.
// Index is the position of the community in the perspective's dense array.
type Community struct {
	Index       int           `json:"index"`
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Type        CommunityType `json:"type"`
	Members     []string      `json:"members"`
	AnonMembers []string      `json:"anonMembers"`
	Box         *BoundingBox  `json:"box,omitempty"`
}

// Edge is a similarity relation between two nodes
type Edge struct {
	ID         string  `json:"id"`
	From       string  `json:"from"`
	To         string  `json:"to"`
	Similarity float64 `json:"similarity"`
}

// Touches reports whether the edge starts or ends at the node
func (e Edge) Touches(nodeID string) bool {
	return e.From == nodeID || e.To == nodeID
}

// Other returns the endpoint that is not nodeID
func (e Edge) Other(nodeID string) string {
	if e.From == nodeID {
		return e.To
	}
	return e.From
}

// EdgeState is the visibility state of an active edge
type EdgeState int

const (
	EdgeHidden EdgeState = iota
	EdgeVisibleUnselected
	EdgeVisibleSelected
)

func (s EdgeState) String() string {
	switch s {
	case EdgeHidden:
		return "hidden"
	case EdgeVisibleUnselected:
		return "unselected"
	case EdgeVisibleSelected:
		return "selected"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MarshalText lets states travel as their names in JSON
func (s EdgeState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// EdgeFont holds the label settings of an edge
type EdgeFont struct {
	Color       string  `json:"color"`
	StrokeColor string  `json:"strokeColor"`
	StrokeWidth float64 `json:"strokeWidth"`
	VAdjust     float64 `json:"vadjust"`
}

// EdgeStyle is the per-edge record handed to the renderer
type EdgeStyle struct {
	ID     string    `json:"id"`
	From   string    `json:"from"`
	To     string    `json:"to"`
	State  EdgeState `json:"state"`
	Hidden bool      `json:"hidden"`
	Color  string    `json:"color"`
	Font   *EdgeFont `json:"font,omitempty"`
}

// NodeStyle is the per-node record handed to the renderer
type NodeStyle struct {
	ID          string    `json:"id"`
	X           float64   `json:"x"`
	Y           float64   `json:"y"`
	Size        float64   `json:"size"`
	Shape       string    `json:"shape"`
	Image       string    `json:"image,omitempty"`
	Color       NodeColor `json:"color"`
	BorderWidth float64   `json:"borderWidth"`
	Font        NodeFont  `json:"font"`
}

// Style snapshots the renderable fields of the node
func (n *Node) Style() NodeStyle {
	return NodeStyle{
		ID:          n.ID,
		X:           n.X,
		Y:           n.Y,
		Size:        n.Size,
		Shape:       n.Shape,
		Image:       n.Image,
		Color:       n.Color,
		BorderWidth: n.BorderWidth,
		Font:        n.Font,
	}
}

// LegendConfig maps attribute key -> value -> hidden
type LegendConfig map[string]map[string]bool

// Hidden reports whether the legend hides the given key/value pair
func (lc LegendConfig) Hidden(key, value string) bool {
	values, ok := lc[key]
	if !ok {
		return false
	}
	return values[value]
}

// Clone returns a deep copy of the legend configuration
func (lc LegendConfig) Clone() LegendConfig {
	out := make(LegendConfig, len(lc))
	for key, values := range lc {
		inner := make(map[string]bool, len(values))
		for value, hidden := range values {
			inner[value] = hidden
		}
		out[key] = inner
	}
	return out
}

// ViewOptions are the user-facing options that change how a perspective is seen
type ViewOptions struct {
	EdgeThreshold      float64      `json:"edgeThreshold"`
	HideEdges          bool         `json:"hideEdges"`
	DeleteEdgesPercent float64      `json:"deleteEdgesPercent"`
	ShowBorder         bool         `json:"showBorder"`
	HideLabels         bool         `json:"hideLabels"`
	Legend             LegendConfig `json:"legend,omitempty"`
}

// Perspective is one loaded clustering run: nodes, communities and candidate edges
type Perspective struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Nodes       []*Node      `json:"nodes"`
	Communities []*Community `json:"communities"`
	Edges       []Edge       `json:"edges"`
}
