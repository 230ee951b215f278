package dimension

import (
	"github.com/gilchrisn/perspective-viz/pkg/models"
)

// MaxChannels is the number of attributes that can be mapped at once
const MaxChannels = len(models.Channels)

// Registry owns one strategy per channel and broadcasts node restyles across them
type Registry struct {
	strategies [MaxChannels]*Strategy
}

// BuildAttributes assigns catalog keys to channels in discovery order:
// first key -> color, second -> shape, third -> border (active only if showBorder).
// Keys without values never get a channel.
func BuildAttributes(catalog []models.AttributeValues, showBorder bool) []models.DimAttribute {
	attrs := make([]models.DimAttribute, 0, MaxChannels)

	for _, entry := range catalog {
		if len(attrs) == MaxChannels {
			break
		}
		if len(entry.Values) == 0 {
			continue
		}

		channel := models.Channels[len(attrs)]
		attrs = append(attrs, models.DimAttribute{
			Key:     entry.Key,
			Values:  append([]string(nil), entry.Values...),
			Channel: channel,
			Active:  channel != models.ChannelBorder || showBorder,
		})
	}

	return attrs
}

// NewRegistry builds the channel strategies from the attribute list
func NewRegistry(attrs []models.DimAttribute) *Registry {
	r := &Registry{}
	for _, channel := range models.Channels {
		r.strategies[channel] = newStrategy(channel, attrs)
	}
	return r
}

// Strategy returns the strategy of a channel
func (r *Registry) Strategy(channel models.Channel) *Strategy {
	return r.strategies[channel]
}

// NodeToDefault applies every channel's primitive to the node.
// Color runs before border so the border channel has the last word on the border color.
func (r *Registry) NodeToDefault(node *models.Node, isFocus bool) {
	for _, strat := range r.strategies {
		strat.ToDefault(node, isFocus)
	}
}

// NodeToColorless dims the node regardless of channel mapping
func (r *Registry) NodeToColorless(node *models.Node) {
	for _, strat := range r.strategies {
		strat.ToColorless(node)
	}
}

// ToggleBorderChannel switches the border channel and returns the updated attributes
func (r *Registry) ToggleBorderChannel(active bool) []models.DimAttribute {
	if attr := r.strategies[models.ChannelBorder].attr; attr != nil {
		attr.Active = active
	}
	return r.Attributes()
}

// Attributes returns a copy of the mapped attributes, in channel order
func (r *Registry) Attributes() []models.DimAttribute {
	attrs := make([]models.DimAttribute, 0, MaxChannels)
	for _, strat := range r.strategies {
		if strat.attr == nil {
			continue
		}
		attr := *strat.attr
		attr.Values = append([]string(nil), strat.attr.Values...)
		attrs = append(attrs, attr)
	}
	return attrs
}

// Compatible reports whether every key and value of attrs is already known to the registry,
// in which case the registry can style a second perspective consistently
func (r *Registry) Compatible(attrs []models.DimAttribute) bool {
	if len(attrs) == 0 {
		return false
	}

	known := make(map[string]map[string]bool)
	for _, strat := range r.strategies {
		if strat.attr == nil {
			continue
		}
		values := make(map[string]bool, len(strat.attr.Values))
		for _, v := range strat.attr.Values {
			values[v] = true
		}
		known[strat.attr.Key] = values
	}

	for _, attr := range attrs {
		values, ok := known[attr.Key]
		if !ok {
			return false
		}
		for _, v := range attr.Values {
			if !values[v] {
				return false
			}
		}
	}

	return true
}
