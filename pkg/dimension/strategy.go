package dimension

import (
	"github.com/rs/zerolog/log"

	"github.com/gilchrisn/perspective-viz/pkg/models"
)

// Strategy maps the values of one attribute onto one channel.
// The value -> palette index table is filled in discovery order, never sorted.
type Strategy struct {
	channel models.Channel
	attr    *models.DimAttribute
	indices map[string]int
}

// channelOps is the closed set of per-channel transforms
type channelOps struct {
	toDefault   func(s *Strategy, node *models.Node, isFocus bool)
	toColorless func(s *Strategy, node *models.Node)
}

var opsByChannel = [...]channelOps{
	models.ChannelColor:  {toDefault: colorToDefault, toColorless: colorToColorless},
	models.ChannelShape:  {toDefault: shapeToDefault, toColorless: shapeToColorless},
	models.ChannelBorder: {toDefault: borderToDefault, toColorless: borderToColorless},
}

// newStrategy picks the first attribute assigned to the channel, if any
func newStrategy(channel models.Channel, attrs []models.DimAttribute) *Strategy {
	s := &Strategy{
		channel: channel,
		indices: make(map[string]int),
	}

	for i := range attrs {
		if attrs[i].Channel == channel {
			attr := attrs[i]
			attr.Values = append([]string(nil), attrs[i].Values...)
			s.attr = &attr
			s.fillMap()
			break
		}
	}

	return s
}

func (s *Strategy) fillMap() {
	for i, value := range s.attr.Values {
		if _, exists := s.indices[value]; !exists {
			s.indices[value] = i
		}
	}
}

// Channel returns the channel of the strategy
func (s *Strategy) Channel() models.Channel { return s.channel }

// Attribute returns the attribute mapped on this channel, or nil
func (s *Strategy) Attribute() *models.DimAttribute { return s.attr }

// Active reports whether the channel has an attribute and it is switched on
func (s *Strategy) Active() bool {
	return s.attr != nil && s.attr.Active
}

// Index returns the palette index of a value
func (s *Strategy) Index(value string) (int, bool) {
	i, ok := s.indices[value]
	return i, ok
}

// lookup resolves the node's palette index for this channel.
// Missing keys and unseen values both resolve to false.
func (s *Strategy) lookup(node *models.Node) (int, bool) {
	value, ok := node.Value(s.attr.Key)
	if !ok {
		return 0, false
	}

	i, ok := s.indices[value]
	if !ok {
		log.Debug().
			Str("node_id", node.ID).
			Str("channel", s.channel.String()).
			Str("key", s.attr.Key).
			Str("value", value).
			Msg("Attribute value not in dimension map, using channel default")
	}
	return i, ok
}

// ToDefault writes the channel's primitive for the node
func (s *Strategy) ToDefault(node *models.Node, isFocus bool) {
	opsByChannel[s.channel].toDefault(s, node, isFocus)
}

// ToColorless writes the channel's dimmed primitive for the node
func (s *Strategy) ToColorless(node *models.Node) {
	opsByChannel[s.channel].toColorless(s, node)
}

func colorToDefault(s *Strategy, node *models.Node, _ bool) {
	node.Color.Background = DefaultColor

	if !s.Active() || node.IsAnonymous {
		return
	}
	if i, ok := s.lookup(node); ok {
		node.Color.Background = BackgroundColorOf(i)
	}
}

func colorToColorless(_ *Strategy, node *models.Node) {
	if !node.IsAnonymous {
		node.Color.Background = NoFocusBackground
	}
}

func shapeToDefault(s *Strategy, node *models.Node, isFocus bool) {
	shape := DefaultShape
	node.Image = ""

	if s.Active() {
		switch {
		case node.IsAnonGroup:
		case node.IsAnonymous:
			shape = Shape{Name: ImageShape, VAdjust: DefaultShape.VAdjust, SelectedVAdjust: DefaultShape.SelectedVAdjust}
			node.Image = UnknownImage
		default:
			if i, ok := s.lookup(node); ok {
				shape = ShapeOf(i)
			}
		}
	}

	node.Shape = shape.Name
	node.Font.VAdjust = shape.VAdjust

	switch {
	case isFocus:
		node.Size = SelectedSize
		node.Font.VAdjust = shape.SelectedVAdjust
	case node.IsMedoid:
		node.Size = MedoidSize
	default:
		node.Size = DefaultSize
	}

	if node.IsAnonymous {
		node.Size += AnonymousSizeIncrease
	}
}

// shapeToColorless keeps the shape and only drops the node back to its resting size
func shapeToColorless(_ *Strategy, node *models.Node) {
	node.Size = DefaultSize
	if node.IsAnonymous {
		node.Size += AnonymousSizeIncrease
		if !node.IsAnonGroup && node.Shape == ImageShape {
			node.Image = ColorlessUnknownImg
		}
	}
}

func borderToDefault(s *Strategy, node *models.Node, isFocus bool) {
	if s.Active() {
		if i, ok := s.lookup(node); ok {
			node.Color.Border = BorderColorOf(i)
			node.BorderWidth = DefaultBorderColorWidth
			if isFocus {
				node.BorderWidth = SelectedBorderColorWidth
			}
			return
		}
	}

	node.Color.Border = TransparentBorder
	node.BorderWidth = DefaultBorderWidth
	if isFocus {
		node.BorderWidth = SelectedBorderWidth
	}
}

func borderToColorless(s *Strategy, node *models.Node) {
	node.Color.Border = NoFocusBorder

	if s.Active() {
		node.BorderWidth = DefaultBorderColorWidth
	} else {
		node.BorderWidth = DefaultBorderWidth
	}
}
