package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	commonerrors "mobile-forms/internal/common/errors"
	"mobile-forms/internal/common/metrics"
	"mobile-forms/internal/common/validation"
	"mobile-forms/internal/profileform"

	"github.com/gorilla/mux"
)

type formatRequest struct {
	Value string `json:"value"`
}

type formatResponse struct {
	Field     profileform.Field `json:"field"`
	Display   string            `json:"display"`
	Canonical string            `json:"canonical"`
}

type fieldRequest struct {
	Value json.RawMessage `json:"value"`
}

type fieldResponse struct {
	Display string               `json:"display"`
	Session profileform.Snapshot `json:"session"`
}

type submitResponse struct {
	Session profileform.Snapshot `json:"session"`
	Notice  *profileform.Notice  `json:"notice,omitempty"`
}

func (s *Server) getForm(w http.ResponseWriter, r *http.Request) {
	form, err := s.forms.Find(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, form)
}

// formatField applies the input mask of one field without a session.
func (s *Server) formatField(w http.ResponseWriter, r *http.Request) {
	field, err := profileform.ParseField(mux.Vars(r)["field"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req formatRequest
	if err := decodeBody(w, r, formatSchema, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	display, canonical, err := profileform.OnChange(field, req.Value)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, formatResponse{Field: field, Display: display, Canonical: canonical})
}

// validateProfile runs the rule set over a full snapshot. Invalid input is a
// 200 with valid=false; only a malformed body is an error.
func (s *Server) validateProfile(w http.ResponseWriter, r *http.Request) {
	var values profileform.FormValues
	if err := decodeBody(w, r, profileSchema, &values); err != nil {
		s.writeError(w, r, err)
		return
	}

	res := s.validator.WithCatalog(s.catalogFor(r)).Validate(values)
	if res.Valid {
		metrics.ProfileValidations.WithLabelValues("valid").Inc()
	} else {
		metrics.ProfileValidations.WithLabelValues("invalid").Inc()
	}
	if res.Errors == nil {
		res.Errors = []validation.ValidationError{}
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	entry := s.sessions.open(profileform.SessionOptions{
		Sink:      s.sink,
		Validator: s.validator.WithCatalog(s.catalogFor(r)),
		Logger:    s.logger,
	})
	w.Header().Set("Location", "/v1/profile/sessions/"+entry.session.ID())
	writeJSON(w, http.StatusCreated, entry.session.Snapshot())
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	entry, err := s.sessions.get(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry.session.Snapshot())
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.remove(mux.Vars(r)["id"]); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// setField applies one edit. acceptTerms takes a boolean, every other field a string.
func (s *Server) setField(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	entry, err := s.sessions.get(vars["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	field, err := profileform.ParseField(vars["field"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req fieldRequest
	if err := decodeBody(w, r, fieldValueSchema, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	var display string
	if field == profileform.FieldAcceptTerms {
		var accepted bool
		if err := json.Unmarshal(req.Value, &accepted); err != nil {
			s.writeError(w, r, fmt.Errorf("%w: acceptTerms takes a boolean", ErrMalformedBody))
			return
		}
		if err := entry.session.SetAcceptTerms(accepted); err != nil {
			s.writeError(w, r, err)
			return
		}
		display = entry.session.Display(field)
	} else {
		var raw string
		if err := json.Unmarshal(req.Value, &raw); err != nil {
			s.writeError(w, r, fmt.Errorf("%w: %s takes a string", ErrMalformedBody, field))
			return
		}
		if display, err = entry.session.Set(field, raw); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, fieldResponse{Display: display, Session: entry.session.Snapshot()})
}

// submitSession hands the session to the sink. The sink call outlives a
// disconnecting client so its outcome is never lost.
func (s *Server) submitSession(w http.ResponseWriter, r *http.Request) {
	entry, err := s.sessions.get(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	err = entry.session.Submit(context.WithoutCancel(r.Context()))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, submitResponse{
			Session: entry.session.Snapshot(),
			Notice:  entry.takeNotice(),
		})
	case errors.Is(err, profileform.ErrValidationFailed):
		fields := entry.session.Errors().Errors
		byField := make(map[string]string, len(fields))
		for _, f := range fields {
			byField[f.Field] = f.Message
		}
		s.writeError(w, r, fmt.Errorf("%w: %w", err, commonerrors.NewProfileValidationFailedError(byField)), fields...)
	default:
		entry.takeNotice()
		s.writeError(w, r, err)
	}
}
