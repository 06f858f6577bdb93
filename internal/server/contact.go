package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"carai-site-backend/internal/intake"
	"carai-site-backend/internal/store"
	"carai-site-backend/internal/types"
)

// leadSender delivers validated payloads to the configured lead store.
type leadSender struct {
	leads store.LeadStore
}

func (ls *leadSender) Send(ctx context.Context, p intake.Payload) (intake.Result, error) {
	if err := ls.leads.SaveLead(store.NewLead(p)); err != nil {
		return intake.Result{}, err
	}
	return intake.Result{Success: true, Message: "Thanks! Your inquiry was received."}, nil
}

func (s *Server) handleContactForm(w http.ResponseWriter, r *http.Request) {
	sid := getOrCreateSessionID(r, w)
	form := s.form(sid)
	if q := r.URL.Query().Get("service"); q != "" {
		form.ApplyServiceParam(q)
	}
	w.Header().Set("X-Session-Id", sid)
	s.writeJSON(w, http.StatusOK, form.View())
}

func (s *Server) handleContactService(w http.ResponseWriter, r *http.Request) {
	var req types.ServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	sid := getOrCreateSessionID(r, w)
	form := s.form(sid)

	if st := intake.ServiceType(req.Service); st.Valid() {
		form.SetService(st)
	} else if _, ok := intake.ParseServiceParam(req.Service); ok {
		form.ApplyServiceParam(req.Service)
	} else {
		s.writeError(w, http.StatusBadRequest, "unknown service type")
		return
	}
	s.writeJSON(w, http.StatusOK, form.View())
}

func (s *Server) handleContactField(w http.ResponseWriter, r *http.Request) {
	var req types.FieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == "" {
		s.writeError(w, http.StatusBadRequest, "field name is required")
		return
	}
	sid := getOrCreateSessionID(r, w)
	form := s.form(sid)

	if req.Checked != nil {
		form.ToggleListField(req.Name, req.Value, *req.Checked)
	} else {
		form.SetField(req.Name, req.Value)
	}
	s.writeJSON(w, http.StatusOK, form.View())
}

func (s *Server) handleContactSubmit(w http.ResponseWriter, r *http.Request) {
	sid := getOrCreateSessionID(r, w)
	form := s.form(sid)

	res, errs, err := form.Submit(r.Context())
	if errors.Is(err, intake.ErrSubmitInFlight) {
		s.writeError(w, http.StatusConflict, "a submission is already in progress")
		return
	}
	if len(errs) > 0 {
		s.writeJSON(w, http.StatusOK, types.SubmitResponse{Success: false, Errors: errs})
		return
	}
	s.writeJSON(w, http.StatusOK, types.SubmitResponse{Success: res.Success, Message: res.Message})
}

// handleContactDirect is the stateless submission endpoint: a full flattened
// payload in, {success, message} out. It shares validation, persistence, and
// the analytics event with the form engine path.
func (s *Server) handleContactDirect(w http.ResponseWriter, r *http.Request) {
	var payload intake.Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if !payload.ServiceType.Valid() {
		payload.ServiceType = intake.DefaultService
	}
	if errs := intake.Validate(payload); len(errs) > 0 {
		s.writeJSON(w, http.StatusOK, types.SubmitResponse{Success: false, Errors: errs})
		return
	}

	if err := s.leads.SaveLead(store.NewLead(payload)); err != nil {
		s.log.Errorw("lead submission failed", "error", err)
		s.writeJSON(w, http.StatusOK, types.SubmitResponse{
			Success: false,
			Message: "Failed to send. Please try again later.",
		})
		return
	}
	if s.tracker != nil {
		s.tracker.Track(intake.SubmittedEvent, intake.SubmissionEventProps(payload))
	}
	s.writeJSON(w, http.StatusOK, types.SubmitResponse{
		Success: true,
		Message: "Thanks! Your inquiry was received.",
	})
}

func (s *Server) handleRecentLeads(w http.ResponseWriter, r *http.Request) {
	leads, err := s.leads.RecentLeads(50)
	if err != nil {
		s.log.Errorw("failed to list leads", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list leads")
		return
	}
	if leads == nil {
		leads = []store.Lead{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"leads": leads})
}
