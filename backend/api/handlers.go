package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/gilchrisn/perspective-viz/backend/models"
	"github.com/gilchrisn/perspective-viz/backend/service"
	"github.com/gilchrisn/perspective-viz/backend/utils"
	"github.com/gilchrisn/perspective-viz/pkg/config"
	"github.com/gilchrisn/perspective-viz/pkg/perspective"
	"github.com/gilchrisn/perspective-viz/pkg/session"
)

var errNodeNotFound = errors.New("node not found")

// Handlers contains HTTP request handlers
type Handlers struct {
	sessions     *service.SessionService
	cfg          *config.Config
	maxBodyBytes int64
}

// NewHandlers creates new API handlers
func NewHandlers(sessions *service.SessionService, cfg *config.Config) *Handlers {
	return &Handlers{
		sessions:     sessions,
		cfg:          cfg,
		maxBodyBytes: cfg.MaxBodyBytes(),
	}
}

// CreateSession loads a perspective into a new session
func (h *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	if !utils.ValidateContentType(r, "application/json") {
		utils.WriteErrorResponse(w, http.StatusUnsupportedMediaType, "Perspective must be sent as application/json", nil)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.WriteErrorResponse(w, http.StatusRequestEntityTooLarge, "Perspective too large", err)
			return
		}
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Failed to read request body", err)
		return
	}

	var req models.CreateSessionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid JSON", err)
		return
	}
	if problems, err := validateRequest(&req); err != nil {
		h.writeRequestError(w, problems, err)
		return
	}

	p, err := perspective.Decode(body)
	if err != nil {
		var verr *perspective.ValidationError
		if errors.As(err, &verr) {
			utils.WriteValidationErrorResponse(w, "Invalid perspective", verr.Problems)
			return
		}
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid perspective", err)
		return
	}

	sessionID, _, err := h.sessions.Create(p, req.ViewOptions.Apply(h.cfg.ViewOptions()))
	if err != nil {
		log.Error().Err(err).Str("perspective_id", p.ID).Msg("Session creation failed")
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid perspective", err)
		return
	}

	response := models.CreateSessionResponse{
		SessionID:     sessionID,
		PerspectiveID: p.ID,
		Nodes:         len(p.Nodes),
		Communities:   len(p.Communities),
	}
	err = h.sessions.With(sessionID, func(s *session.Session) error {
		response.ActiveEdges = s.Edges().Len()
		return nil
	})
	if err != nil {
		h.writeSessionError(w, sessionID, err)
		return
	}

	utils.WriteStatusResponse(w, http.StatusCreated, "Session created successfully", response)
}

// GetSession returns the render snapshot of a session
func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	snap, err := h.sessions.Snapshot(sessionID)
	if err != nil {
		h.writeSessionError(w, sessionID, err)
		return
	}

	utils.WriteSuccessResponse(w, "Session retrieved successfully", snap)
}

// DeleteSession drops a session
func (h *Handlers) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	if err := h.sessions.Delete(sessionID); err != nil {
		h.writeSessionError(w, sessionID, err)
		return
	}

	utils.WriteSuccessResponse(w, "Session deleted successfully", nil)
}

// Click resolves a canvas click that hit no node
func (h *Handlers) Click(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	var req models.ClickRequest
	if problems, err := decodeRequest(r, &req); err != nil {
		h.writeRequestError(w, problems, err)
		return
	}

	var response models.ClickResponse
	err := h.sessions.With(sessionID, func(s *session.Session) error {
		if index, ok := s.Click(*req.X, *req.Y); ok {
			response.Community = &index
		}
		return nil
	})
	if err != nil {
		h.writeSessionError(w, sessionID, err)
		return
	}

	utils.WriteSuccessResponse(w, "Click processed", response)
}

// SelectNode selects a node and its incident edges
func (h *Handlers) SelectNode(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID, nodeID := vars["sessionId"], vars["nodeId"]

	var response models.SelectNodeResponse
	err := h.sessions.With(sessionID, func(s *session.Session) error {
		neighbors, ok := s.NodeClicked(nodeID)
		if !ok {
			return errNodeNotFound
		}
		response.Neighbors = neighbors
		return nil
	})
	if err != nil {
		h.writeSessionError(w, sessionID, err)
		return
	}

	utils.WriteSuccessResponse(w, "Node selected", response)
}

// SelectCommunity highlights a community as if its bounding box was clicked
func (h *Handlers) SelectCommunity(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["sessionId"]

	index, err := strconv.Atoi(vars["index"])
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid community index", err)
		return
	}

	err = h.sessions.With(sessionID, func(s *session.Session) error {
		return s.BoundingBoxClicked(index)
	})
	if err != nil {
		h.writeSessionError(w, sessionID, err)
		return
	}

	utils.WriteSuccessResponse(w, "Community selected", nil)
}

// Focus focuses users that belong to a community of another perspective
func (h *Handlers) Focus(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	var req models.FocusRequest
	if problems, err := decodeRequest(r, &req); err != nil {
		h.writeRequestError(w, problems, err)
		return
	}

	var response models.FocusResponse
	err := h.sessions.With(sessionID, func(s *session.Session) error {
		response.Present = s.ExternalCommunityClicked(req.Users)
		return nil
	})
	if err != nil {
		h.writeSessionError(w, sessionID, err)
		return
	}

	utils.WriteSuccessResponse(w, "Users focused", response)
}

// Unselect clears every selection
func (h *Handlers) Unselect(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	err := h.sessions.With(sessionID, func(s *session.Session) error {
		s.NothingClicked()
		return nil
	})
	if err != nil {
		h.writeSessionError(w, sessionID, err)
		return
	}

	utils.WriteSuccessResponse(w, "Selection cleared", nil)
}

// UpdateThreshold schedules a debounced threshold change
func (h *Handlers) UpdateThreshold(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	var req models.ThresholdRequest
	if problems, err := decodeRequest(r, &req); err != nil {
		h.writeRequestError(w, problems, err)
		return
	}

	if err := h.sessions.UpdateThreshold(sessionID, *req.Threshold); err != nil {
		h.writeSessionError(w, sessionID, err)
		return
	}

	utils.WriteStatusResponse(w, http.StatusAccepted, "Threshold update scheduled", req)
}

// UpdateOptions applies view option toggles
func (h *Handlers) UpdateOptions(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	var req models.OptionsRequest
	if problems, err := decodeRequest(r, &req); err != nil {
		h.writeRequestError(w, problems, err)
		return
	}

	var response models.OptionsResponse
	err := h.sessions.With(sessionID, func(s *session.Session) error {
		if req.DeleteEdgesPercent != nil {
			s.Recull(*req.DeleteEdgesPercent)
		}
		if req.HideEdges != nil {
			s.ToggleHideEdges(*req.HideEdges)
		}
		if req.ShowBorder != nil {
			s.ToggleBorder(*req.ShowBorder)
		}
		if req.HideLabels != nil {
			s.ToggleLabels(*req.HideLabels)
		}
		if req.Legend != nil {
			s.SetLegend(req.Legend)
		}

		response.View = s.View()
		response.Attributes = s.Registry().Attributes()
		return nil
	})
	if err != nil {
		h.writeSessionError(w, sessionID, err)
		return
	}

	utils.WriteSuccessResponse(w, "Options updated", response)
}

// GetBreakdown returns the explicit attribute breakdown of a community
func (h *Handlers) GetBreakdown(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["sessionId"]

	index, err := strconv.Atoi(vars["index"])
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid community index", err)
		return
	}

	response := models.BreakdownResponse{Community: index}
	err = h.sessions.With(sessionID, func(s *session.Session) error {
		keys, ok, err := s.Breakdown(index)
		if err != nil {
			return err
		}
		response.Available = ok
		response.Keys = keys
		return nil
	})
	if err != nil {
		h.writeSessionError(w, sessionID, err)
		return
	}

	utils.WriteSuccessResponse(w, "Breakdown retrieved successfully", response)
}

// HealthCheck provides health check endpoint
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	utils.WriteSuccessResponse(w, "Service is healthy", models.HealthResponse{
		Status:   "healthy",
		Sessions: h.sessions.Count(),
	})
}

func (h *Handlers) writeRequestError(w http.ResponseWriter, problems []string, err error) {
	if errors.Is(err, errInvalidRequest) {
		utils.WriteValidationErrorResponse(w, "Invalid request", problems)
		return
	}
	utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request", err)
}

func (h *Handlers) writeSessionError(w http.ResponseWriter, sessionID string, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		utils.WriteErrorResponse(w, http.StatusNotFound, "Session not found", err)
	case errors.Is(err, session.ErrUnknownCommunity):
		utils.WriteErrorResponse(w, http.StatusNotFound, "Community not found", err)
	case errors.Is(err, errNodeNotFound):
		utils.WriteErrorResponse(w, http.StatusNotFound, "Node not found", err)
	default:
		log.Error().Err(err).Str("session_id", sessionID).Msg("Session request failed")
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Session request failed", err)
	}
}
