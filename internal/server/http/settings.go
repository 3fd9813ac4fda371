package httpserver

import (
	"net/http"

	"github.com/and161185/smartfit/internal/convert"
)

func (s *Server) getSettings(w http.ResponseWriter, r *http.Request) {
	st, err := s.settings.Get(r.Context(), callerID(r))
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// saveSettings serves both POST and PUT; either is an upsert.
func (s *Server) saveSettings(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	in, err := convert.ParseSettings(body, callerID(r))
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	out, err := s.settings.Save(r.Context(), in)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
