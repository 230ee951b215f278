package boxes

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilchrisn/perspective-viz/pkg/models"
)

// recordingCanvas logs every call so draw order can be asserted
type recordingCanvas struct {
	calls []string
}

func (c *recordingCanvas) SetLineWidth(width float64) {
	c.calls = append(c.calls, fmt.Sprintf("lineWidth %g", width))
}

func (c *recordingCanvas) SetStrokeStyle(style string) {
	c.calls = append(c.calls, "stroke "+style)
}

func (c *recordingCanvas) StrokeRect(x, y, w, h float64) {
	c.calls = append(c.calls, fmt.Sprintf("strokeRect %g %g %g %g", x, y, w, h))
}

func (c *recordingCanvas) SetFillStyle(style string) {
	c.calls = append(c.calls, "fill "+style)
}

func (c *recordingCanvas) FillRect(x, y, w, h float64) {
	c.calls = append(c.calls, fmt.Sprintf("fillRect %g %g %g %g", x, y, w, h))
}

func communities(n int) []*models.Community {
	out := make([]*models.Community, n)
	for i := range out {
		out[i] = &models.Community{Index: i}
	}
	return out
}

func TestAbsorbFirstNodeInitializesBox(t *testing.T) {
	comms := communities(10)
	r := NewRegistry(comms, DefaultOptions())

	require.True(t, r.Absorb(&models.Node{ID: "a", Community: 9, X: 100, Y: -50, Size: 20}))

	bb := comms[9].Box
	require.NotNil(t, bb)
	assert.Equal(t, -75.0, bb.Top)
	assert.Equal(t, -25.0, bb.Bottom)
	assert.Equal(t, 75.0, bb.Left)
	assert.Equal(t, 125.0, bb.Right)
	assert.Equal(t, ColorOf(1), bb.Color, "palette wraps by community index")
}

func TestAbsorbInexistentCommunityIsTransparent(t *testing.T) {
	comms := communities(1)
	comms[0].Type = models.CommunityInexistent
	r := NewRegistry(comms, DefaultOptions())

	r.Absorb(&models.Node{ID: "a", Size: 20})

	assert.Equal(t, "Transparent", comms[0].Box.Color.Name)
}

func TestAbsorbIsMonotonic(t *testing.T) {
	comms := communities(1)
	r := NewRegistry(comms, DefaultOptions())
	rng := rand.New(rand.NewSource(7))

	var prev *models.BoundingBox
	for i := 0; i < 200; i++ {
		r.Absorb(&models.Node{
			ID:   fmt.Sprintf("n%d", i),
			X:    rng.Float64()*400 - 200,
			Y:    rng.Float64()*400 - 200,
			Size: 20 + rng.Float64()*20,
		})

		bb := *comms[0].Box
		if prev != nil {
			assert.LessOrEqual(t, bb.Left, prev.Left)
			assert.LessOrEqual(t, bb.Top, prev.Top)
			assert.GreaterOrEqual(t, bb.Right, prev.Right)
			assert.GreaterOrEqual(t, bb.Bottom, prev.Bottom)
		}
		prev = &bb
	}
}

func TestAbsorbIgnoresUnknownCommunity(t *testing.T) {
	r := NewRegistry(communities(2), DefaultOptions())

	assert.False(t, r.Absorb(&models.Node{ID: "a", Community: 2}))
	assert.False(t, r.Absorb(&models.Node{ID: "b", Community: -1}))
	assert.Empty(t, r.Snapshots())
}

func TestHitTestLowestIndexWins(t *testing.T) {
	comms := communities(3)
	r := NewRegistry(comms, Options{Padding: 0})

	r.Absorb(&models.Node{ID: "a", Community: 0, X: 0, Y: 0, Size: 100})
	r.Absorb(&models.Node{ID: "b", Community: 1, X: 20, Y: 20, Size: 100})

	idx, ok := r.HitTest(10, 10)
	require.True(t, ok)
	assert.Equal(t, 0, idx)

	idx, ok = r.HitTest(60, 60)
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	_, ok = r.HitTest(500, 500)
	assert.False(t, ok)

	// Edges of a box are outside it
	_, ok = r.HitTest(-50, 0)
	assert.False(t, ok)
}

func TestDrawOrderAndHighlight(t *testing.T) {
	comms := communities(3)
	r := NewRegistry(comms, Options{Padding: 0, BorderWidth: 4})

	r.Absorb(&models.Node{ID: "a", Community: 0, X: 0, Y: 0, Size: 10})
	r.Absorb(&models.Node{ID: "b", Community: 2, X: 100, Y: 100, Size: 10})
	r.Highlight(2)

	canvas := &recordingCanvas{}
	r.Draw(canvas)

	c0, c2 := ColorOf(0), ColorOf(2)
	assert.Equal(t, []string{
		"lineWidth 4",
		"stroke " + c0.Border,
		"strokeRect -5 -5 10 10",
		"lineWidth 0",
		"fill " + c0.Fill,
		"fillRect -5 -5 10 10",
		"lineWidth 8",
		"stroke " + c2.Highlight,
		"strokeRect 95 95 10 10",
		"lineWidth 0",
		"fill " + c2.Fill,
		"fillRect 95 95 10 10",
	}, canvas.calls)

	r.ClearHighlights()
	assert.False(t, r.IsHighlighted(2))
}

func TestSnapshotsAreCopies(t *testing.T) {
	comms := communities(1)
	r := NewRegistry(comms, DefaultOptions())
	r.Absorb(&models.Node{ID: "a", Size: 10})
	r.Highlight(0)

	snaps := r.Snapshots()
	require.Len(t, snaps, 1)
	assert.True(t, snaps[0].Highlighted)

	snaps[0].Box.Left = 1e9
	assert.NotEqual(t, 1e9, comms[0].Box.Left)
}
