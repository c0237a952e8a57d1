package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pdkit/libmerge/pkg/errors"
	"github.com/pdkit/libmerge/pkg/httputil"
	"github.com/pdkit/libmerge/pkg/liberty"
	"github.com/pdkit/libmerge/pkg/pipeline"
)

// cornerInfo is one corner in the /api/corners answer. Types lists the
// variants the corner can generate, so a ccsnoise corner reports basic
// as well.
type cornerInfo struct {
	Name        string   `json:"name"`
	Types       []string `json:"types"`
	Description string   `json:"description,omitempty"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	_ = httputil.RespondText(w, http.StatusOK, "ok")
}

func (s *Server) handleCorners(w http.ResponseWriter, r *http.Request) {
	out := make([]cornerInfo, 0, len(s.lib.Corners))
	for _, name := range s.lib.SortedCorners() {
		have := s.lib.Corners[name]
		var types []string
		for _, v := range []liberty.TimingType{liberty.Basic, liberty.CCSNoise, liberty.Leakage} {
			if have.Contains(v) {
				types = append(types, v.String())
			}
		}
		out = append(out, cornerInfo{
			Name:        name,
			Types:       types,
			Description: s.man.Description(name),
		})
	}
	_ = httputil.RespondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCells(w http.ResponseWriter, r *http.Request) {
	_ = httputil.RespondJSON(w, http.StatusOK, s.lib.Cells)
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	corner := chi.URLParam(r, "corner")

	variantName := r.URL.Query().Get("variant")
	variant, ok := liberty.TimingTypeByName(variantName)
	if !ok {
		_ = httputil.RespondError(w, errors.New(errors.ErrCodeInvalidInput,
			"unknown variant %q (basic, ccsnoise, or leakage)", variantName))
		return
	}

	if _, ok := s.lib.Corners[corner]; !ok {
		_ = httputil.RespondError(w, errors.New(errors.ErrCodeUnknownCorner,
			"unknown corner %s", corner), s.lib.SortedCorners()...)
		return
	}
	if !s.lib.Supports(corner, variant) {
		_ = httputil.RespondError(w, errors.New(errors.ErrCodeUnsupportedVariant,
			"corner %s does not support %s (only %s)", corner, variant, s.lib.Corners[corner]),
			s.lib.Supporting(variant)...)
		return
	}

	doc, err := s.runner.Document(r.Context(), s.lib, corner, pipeline.Options{
		LibraryDir: s.dir,
		Output:     variant,
		Logger:     s.logger,
	})
	if err != nil {
		_ = httputil.RespondError(w, err)
		return
	}
	_ = httputil.RespondText(w, http.StatusOK, doc)
}
