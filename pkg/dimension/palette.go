package dimension

// Shape is a node shape with the vertical label offsets that fit it
type Shape struct {
	Name            string  `json:"name"`
	VAdjust         float64 `json:"vadjust"`
	SelectedVAdjust float64 `json:"selectedVadjust"`
}

const (
	// DefaultColor is the background of a node whose color channel does not apply
	DefaultColor = "rgb(30, 236, 164, 1)"
	// TransparentBorder is the border of a node whose border channel does not apply
	TransparentBorder = "rgba(0, 0, 0, 0)"
	// NoFocusBackground and NoFocusBorder dim a node that is not part of the current focus
	NoFocusBackground = "rgba(155, 155, 155, 0.3)"
	NoFocusBorder     = "rgba(100, 100, 100, 0.3)"

	DefaultSize           = 20.0
	SelectedSize          = 30.0
	MedoidSize            = 40.0
	AnonymousSizeIncrease = 10.0

	DefaultBorderWidth       = 0.0
	SelectedBorderWidth      = 0.0
	DefaultBorderColorWidth  = 4.0
	SelectedBorderColorWidth = 4.0

	// ImageShape is used for anonymous users under the shape channel
	ImageShape          = "image"
	UnknownImage        = "images/unknown.svg"
	ColorlessUnknownImg = "images/colorlessUnknown.svg"

	LabelVisible = "#000000FF"
	LabelHidden  = "#00000000"
)

// DefaultShape is used when the shape channel does not apply
var DefaultShape = Shape{Name: "dot", VAdjust: -35, SelectedVAdjust: -40}

var backgroundColors = []string{
	"rgb(255, 0, 0, 1)",    // red
	"rgb(0, 255, 72, 1)",   // green
	"rgb(25, 166, 255, 1)", // blue
	"rgb(255, 252, 25, 1)", // yellow
	"rgb(232, 134, 12, 1)", // orange
	"rgb(123, 12, 232, 1)", // purple
	"rgb(234, 10, 120, 1)", // pink
	"rgb(30, 236, 164, 1)", // green-blue
}

var borderColors = []string{
	"rgb(128, 126, 13, 1)",
	"rgb(0, 128, 36, 1)",
	"rgb(13, 84, 128, 1)",
	"rgb(128, 0, 0, 1)",
	"rgb(62, 6, 116, 1)",
	"rgb(116, 67, 6, 1)",
	"rgb(117, 5, 60, 1)",
	"rgb(15, 118, 82, 1)",
}

var shapes = []Shape{
	{Name: "dot", VAdjust: -35, SelectedVAdjust: -40},
	{Name: "diamond", VAdjust: -35, SelectedVAdjust: -40},
	{Name: "star", VAdjust: -34, SelectedVAdjust: -40},
	{Name: "triangle", VAdjust: -29, SelectedVAdjust: -35},
	{Name: "square", VAdjust: -35, SelectedVAdjust: -40},
	{Name: "triangleDown", VAdjust: -40, SelectedVAdjust: -45},
	{Name: "hexagon", VAdjust: -35, SelectedVAdjust: -40},
}

// BackgroundColorOf returns the n-th background color, wrapping around the palette
func BackgroundColorOf(n int) string {
	return backgroundColors[n%len(backgroundColors)]
}

// BorderColorOf returns the n-th border color, wrapping around the palette
func BorderColorOf(n int) string {
	return borderColors[n%len(borderColors)]
}

// ShapeOf returns the n-th shape, wrapping around the palette
func ShapeOf(n int) Shape {
	return shapes[n%len(shapes)]
}
