package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"newsdesk/internal/core"
	"newsdesk/internal/headline"
	"newsdesk/internal/workflow"
)

// HealthResponse is the /health body.
type HealthResponse struct {
	Status string `json:"status"`
}

// handleHealth handles the /health endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// draftResponse wraps a draft with its headline rendering plan and an
// optional advisory for the UI.
type draftResponse struct {
	Draft    core.Draft    `json:"draft"`
	Preview  headline.Plan `json:"preview"`
	Advisory string        `json:"advisory,omitempty"`
}

func newDraftResponse(draft core.Draft, advisory string) draftResponse {
	return draftResponse{
		Draft:    draft,
		Preview:  headline.Format(draft.Headline),
		Advisory: advisory,
	}
}

// handleGetDraft handles GET /api/draft.
func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	draft, err := s.flow.Draft()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, newDraftResponse(draft, ""))
}

// handleEditDraft handles PATCH /api/draft with partial field edits.
func (s *Server) handleEditDraft(w http.ResponseWriter, r *http.Request) {
	var edits workflow.DraftEdits
	if !s.decodeJSON(w, r, &edits) {
		return
	}

	draft, err := s.flow.EditDraft(edits)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, newDraftResponse(draft, ""))
}

type generateRequest struct {
	NewsURL string `json:"newsUrl"`
}

// handleGenerate handles POST /api/generate.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	draft, err := s.flow.Generate(r.Context(), req.NewsURL)
	if err != nil {
		s.respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, newDraftResponse(draft, ""))
}

type discoverRequest struct {
	Query      string `json:"query"`
	Region     string `json:"region"`
	TimeFilter string `json:"timeFilter"`
	LoadMore   bool   `json:"loadMore"`
	FromFeeds  bool   `json:"fromFeeds"`
}

// handleGetDiscovery handles GET /api/discover.
func (s *Server) handleGetDiscovery(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.flow.Discovery()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, snapshot)
}

// handleDiscover handles POST /api/discover.
func (s *Server) handleDiscover(w http.ResponseWriter, r *http.Request) {
	var req discoverRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	if req.FromFeeds {
		snapshot, err := s.flow.DiscoverFromFeeds(r.Context(), req.LoadMore)
		if err != nil {
			s.respondError(w, http.StatusBadGateway, err.Error())
			return
		}
		s.respondJSON(w, http.StatusOK, snapshot)
		return
	}

	region := core.Region(req.Region)
	if region == "" {
		region = core.RegionBangladesh
	}

	snapshot, err := s.flow.Discover(r.Context(), core.DiscoverParams{
		Query:      req.Query,
		Region:     region,
		TimeFilter: req.TimeFilter,
	}, req.LoadMore)
	if err != nil {
		s.respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, snapshot)
}

type selectTopicRequest struct {
	Index int `json:"index"`
}

// handleSelectTopic handles POST /api/discover/select.
func (s *Server) handleSelectTopic(w http.ResponseWriter, r *http.Request) {
	var req selectTopicRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	draft, advisory, err := s.flow.SelectTopic(r.Context(), req.Index)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, newDraftResponse(draft, advisory))
}

type findImagesRequest struct {
	Query string `json:"query"`
}

// handleFindImages handles POST /api/images/search.
func (s *Server) handleFindImages(w http.ResponseWriter, r *http.Request) {
	var req findImagesRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	draft, advisory, err := s.flow.FindImages(r.Context(), req.Query)
	if err != nil {
		s.respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, newDraftResponse(draft, advisory))
}

// handleGenerateImage handles POST /api/images/generate.
func (s *Server) handleGenerateImage(w http.ResponseWriter, r *http.Request) {
	draft, err := s.flow.GenerateImage(r.Context())
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, workflow.ErrMissingHeadline) {
			status = http.StatusBadRequest
		}
		s.respondError(w, status, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, newDraftResponse(draft, ""))
}

type chooseImageRequest struct {
	ImageURL string `json:"imageUrl"`
}

// handleChooseImage handles POST /api/images/choose.
func (s *Server) handleChooseImage(w http.ResponseWriter, r *http.Request) {
	var req chooseImageRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	draft, err := s.flow.ChooseImage(req.ImageURL)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, newDraftResponse(draft, ""))
}

type publishRequest struct {
	Status        string `json:"status"`
	CapturedImage string `json:"capturedImage"`
}

// handlePublish handles POST /api/publish. The page sends the rendered
// graphic as a data URL so the dispatched image matches the preview
// exactly.
func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	var req publishRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	payload, err := s.flow.Publish(r.Context(), workflow.PublishRequest{
		Status:        core.PublishStatus(req.Status),
		CapturedImage: req.CapturedImage,
	})
	if err != nil {
		status := http.StatusBadGateway
		switch {
		case errors.Is(err, workflow.ErrNotPublishable):
			status = http.StatusBadRequest
		case errors.Is(err, workflow.ErrPublishCoolDown):
			status = http.StatusTooManyRequests
		}
		s.respondError(w, status, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, payload)
}

// handleGetSettings handles GET /api/settings.
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.flow.Settings()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, settings)
}

// handleUpdateSettings handles PUT /api/settings.
func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var values map[string]string
	if !s.decodeJSON(w, r, &values) {
		return
	}

	if err := s.flow.UpdateSettings(values); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	settings, err := s.flow.Settings()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, settings)
}

// respondJSON writes a JSON response.
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("Failed to encode JSON response", "error", err)
	}
}

// respondError writes a JSON error response.
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// decodeJSON reads the request body into v, answering 400 on bad input.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
