package httputil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/pdkit/libmerge/pkg/errors"
)

func TestStatusForCode(t *testing.T) {
	tests := []struct {
		code errors.Code
		want int
	}{
		{errors.ErrCodeUnknownCorner, http.StatusNotFound},
		{errors.ErrCodeNotFound, http.StatusNotFound},
		{errors.ErrCodeUnsupportedVariant, http.StatusUnprocessableEntity},
		{errors.ErrCodeInvalidInput, http.StatusBadRequest},
		{errors.ErrCodeInvalidManifest, http.StatusBadRequest},
		{errors.ErrCodeMissingFile, http.StatusInternalServerError},
		{errors.ErrCodeInternal, http.StatusInternalServerError},
		{errors.Code(""), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := StatusForCode(tt.code); got != tt.want {
			t.Errorf("StatusForCode(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestRespondJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := RespondJSON(rec, http.StatusOK, map[string]int{"cells": 3}); err != nil {
		t.Fatalf("RespondJSON failed: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), `"cells":3`) {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestRespondText(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := RespondText(rec, http.StatusOK, "ok"); err != nil {
		t.Fatalf("RespondText failed: %v", err)
	}

	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("content type = %q", ct)
	}
	if rec.Body.String() != "ok" {
		t.Errorf("body = %q, want %q", rec.Body.String(), "ok")
	}
}

func TestRespondError(t *testing.T) {
	rec := httptest.NewRecorder()
	cause := errors.New(errors.ErrCodeUnknownCorner, "unknown corner tt_025C_1v80")
	if err := RespondError(rec, cause, "ff_100C_1v65", "ss_100C_1v60"); err != nil {
		t.Fatalf("RespondError failed: %v", err)
	}

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding envelope: %v", err)
	}
	if resp.Error.Code != errors.ErrCodeUnknownCorner {
		t.Errorf("code = %q", resp.Error.Code)
	}
	if !strings.Contains(resp.Error.Message, "tt_025C_1v80") {
		t.Errorf("message = %q", resp.Error.Message)
	}
	if len(resp.Error.Alternatives) != 2 || resp.Error.Alternatives[0] != "ff_100C_1v65" {
		t.Errorf("alternatives = %v", resp.Error.Alternatives)
	}
}

func TestRequestLogger(t *testing.T) {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTeapot)
	}
}
