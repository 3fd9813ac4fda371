package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/and161185/smartfit/internal/convert"
	"github.com/and161185/smartfit/internal/errs"
	"github.com/and161185/smartfit/internal/model"
)

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	out, err := s.checkins.List(r.Context(), callerID(r))
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listEntriesByType(w http.ResponseWriter, r *http.Request) {
	c := model.Category(chi.URLParam(r, "type"))
	out, err := s.checkins.ListByType(r.Context(), callerID(r), c)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listEntriesByRange(w http.ResponseWriter, r *http.Request) {
	tr, err := s.timeRange(r)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	out, err := s.checkins.ListByRange(r.Context(), callerID(r), tr)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	tr, err := s.timeRange(r)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	st, err := s.checkins.Stats(r.Context(), callerID(r), tr)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) getEntry(w http.ResponseWriter, r *http.Request) {
	e, err := s.checkins.Get(r.Context(), callerID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) createEntry(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	in, err := s.parser.Parse(body, callerID(r))
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	out, err := s.checkins.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) updateEntry(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	uid := callerID(r)
	in, err := s.parser.Parse(body, uid)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	out, err := s.checkins.Update(r.Context(), uid, chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) deleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := s.checkins.Delete(r.Context(), callerID(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// timeRange reads the required startDate/endDate query parameters.
func (s *Server) timeRange(r *http.Request) (model.TimeRange, error) {
	var (
		tr         model.TimeRange
		violations []string
	)
	parse := func(name string, dst *time.Time) {
		v := r.URL.Query().Get(name)
		if v == "" {
			violations = append(violations, name+": required parameter is missing")
			return
		}
		t, err := convert.ParseDateTime(v, s.loc)
		if err != nil {
			violations = append(violations, name+": must be an ISO date-time")
			return
		}
		*dst = t
	}
	parse("startDate", &tr.Start)
	parse("endDate", &tr.End)
	if len(violations) > 0 {
		return model.TimeRange{}, errs.NewValidation(violations...)
	}
	return tr, nil
}
