package models

import (
	"github.com/gilchrisn/perspective-viz/pkg/explicit"
	"github.com/gilchrisn/perspective-viz/pkg/models"
)

// APIResponse is the envelope of every HTTP response
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ViewOptionsRequest overrides some of the configured view options when a session is created
type ViewOptionsRequest struct {
	EdgeThreshold      *float64            `json:"edgeThreshold" validate:"omitempty,gte=0,lte=1"`
	HideEdges          *bool               `json:"hideEdges"`
	DeleteEdgesPercent *float64            `json:"deleteEdgesPercent" validate:"omitempty,gte=0,lte=100"`
	ShowBorder         *bool               `json:"showBorder"`
	HideLabels         *bool               `json:"hideLabels"`
	Legend             models.LegendConfig `json:"legend"`
}

// Apply copies the set fields onto view
func (r *ViewOptionsRequest) Apply(view models.ViewOptions) models.ViewOptions {
	if r == nil {
		return view
	}
	if r.EdgeThreshold != nil {
		view.EdgeThreshold = *r.EdgeThreshold
	}
	if r.HideEdges != nil {
		view.HideEdges = *r.HideEdges
	}
	if r.DeleteEdgesPercent != nil {
		view.DeleteEdgesPercent = *r.DeleteEdgesPercent
	}
	if r.ShowBorder != nil {
		view.ShowBorder = *r.ShowBorder
	}
	if r.HideLabels != nil {
		view.HideLabels = *r.HideLabels
	}
	if r.Legend != nil {
		view.Legend = r.Legend.Clone()
	}
	return view
}

// CreateSessionRequest holds the optional fields sent next to the perspective itself
type CreateSessionRequest struct {
	ViewOptions *ViewOptionsRequest `json:"viewOptions"`
}

type CreateSessionResponse struct {
	SessionID     string `json:"sessionId"`
	PerspectiveID string `json:"perspectiveId"`
	Nodes         int    `json:"nodes"`
	Communities   int    `json:"communities"`
	ActiveEdges   int    `json:"activeEdges"`
}

type ClickRequest struct {
	X *float64 `json:"x" validate:"required"`
	Y *float64 `json:"y" validate:"required"`
}

type ClickResponse struct {
	Community *int `json:"community"`
}

type SelectNodeResponse struct {
	Neighbors []string `json:"neighbors"`
}

type FocusRequest struct {
	Users []string `json:"users" validate:"required,dive,required"`
}

type FocusResponse struct {
	Present []string `json:"present"`
}

type ThresholdRequest struct {
	Threshold *float64 `json:"threshold" validate:"required,gte=0,lte=1"`
}

// OptionsRequest toggles view options of a live session
type OptionsRequest struct {
	HideEdges          *bool               `json:"hideEdges"`
	ShowBorder         *bool               `json:"showBorder"`
	HideLabels         *bool               `json:"hideLabels"`
	DeleteEdgesPercent *float64            `json:"deleteEdgesPercent" validate:"omitempty,gte=0,lte=100"`
	Legend             models.LegendConfig `json:"legend"`
}

type OptionsResponse struct {
	View       models.ViewOptions    `json:"view"`
	Attributes []models.DimAttribute `json:"attributes"`
}

type BreakdownResponse struct {
	Community int                     `json:"community"`
	Available bool                    `json:"available"`
	Keys      []explicit.KeyBreakdown `json:"keys"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}
