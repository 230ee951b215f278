package edges

import "github.com/gilchrisn/perspective-viz/pkg/models"

const (
	// DefaultColor is the color of an edge that is not selected
	DefaultColor = "rgba(164,164,164, 0.2)"
	// SelectedColor is the color of an edge touching the selected node
	SelectedColor = "#000000"

	labelVerticalAdjust = -7
)

var (
	unselectedFont = models.EdgeFont{
		Color:       "transparent",
		StrokeColor: "transparent",
		StrokeWidth: 0,
		VAdjust:     labelVerticalAdjust,
	}
	selectedFont = models.EdgeFont{
		Color:       "#000000",
		StrokeColor: "#ffffff",
		StrokeWidth: 2,
		VAdjust:     labelVerticalAdjust,
	}
)

// styleFor builds the renderer record of an active edge
func styleFor(edge models.Edge, state models.EdgeState, labels bool) models.EdgeStyle {
	style := models.EdgeStyle{
		ID:     edge.ID,
		From:   edge.From,
		To:     edge.To,
		State:  state,
		Hidden: state == models.EdgeHidden,
		Color:  DefaultColor,
	}

	if state == models.EdgeVisibleSelected {
		style.Color = SelectedColor
	}

	if labels {
		font := unselectedFont
		if state == models.EdgeVisibleSelected {
			font = selectedFont
		}
		style.Font = &font
	}

	return style
}
