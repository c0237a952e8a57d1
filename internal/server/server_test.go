package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/pdkit/libmerge/pkg/pipeline"
)

func writeFixtureLibrary(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"library.toml": `[library]
name = "sky130_fd_sc_hd"

[corners.ss_n40C_1v28]
description = "slow-slow, -40C, 1.28V"
voltage = 1.28
temperature = -40.0
`,
		"timing/sky130_fd_sc_hd__common.lib.json": `{
			"delay_model": "table_lookup",
			"time_unit": "1ns"
		}`,
		"timing/sky130_fd_sc_hd__ss_n40C_1v28.lib.json": `{
			"nom_voltage": 1.28
		}`,
		"timing/sky130_fd_sc_hd__ff_n40C_1v65_ccsnoise.lib.json": `{
			"nom_voltage": 1.65,
			"ccsn_pullup_stage": "threepole"
		}`,
		"cells/buf/sky130_fd_sc_hd__buf_1__ss_n40C_1v28.lib.json": `{
			"area": 3.75
		}`,
		"cells/buf/sky130_fd_sc_hd__buf_1__ff_n40C_1v65_ccsnoise.lib.json": `{
			"area": 3.75
		}`,
		"cells/inv/sky130_fd_sc_hd__inv_2__ss_n40C_1v28.lib.json": `{
			"area": 1.25
		}`,
		"cells/inv/sky130_fd_sc_hd__inv_2__ff_n40C_1v65_ccsnoise.lib.json": `{
			"area": 1.25
		}`,
	}
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	base := pipeline.NewRunner(nil, nil, logger)

	s, err := New(context.Background(), base, Config{
		LibraryDir: writeFixtureLibrary(t),
		Logger:     logger,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ts := httptest.NewServer(s.routes())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	return resp, string(body)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	resp, body := get(t, ts.URL+"/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if body != "ok" {
		t.Errorf("body = %q, want %q", body, "ok")
	}
}

func TestCornersEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, body := get(t, ts.URL+"/api/corners")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var infos []cornerInfo
	if err := json.Unmarshal([]byte(body), &infos); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("got %d corners, want 2: %v", len(infos), infos)
	}

	ff, ss := infos[0], infos[1]
	if ff.Name != "ff_n40C_1v65" || ss.Name != "ss_n40C_1v28" {
		t.Errorf("corner order = %q, %q", ff.Name, ss.Name)
	}
	if len(ff.Types) != 2 || ff.Types[0] != "basic" || ff.Types[1] != "ccsnoise" {
		t.Errorf("ff types = %v", ff.Types)
	}
	if len(ss.Types) != 1 || ss.Types[0] != "basic" {
		t.Errorf("ss types = %v", ss.Types)
	}
	if ss.Description != "slow-slow, -40C, 1.28V" {
		t.Errorf("ss description = %q", ss.Description)
	}
	if ff.Description != "" {
		t.Errorf("ff description = %q, want empty", ff.Description)
	}
}

func TestCellsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, body := get(t, ts.URL+"/api/cells")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var cells []string
	if err := json.Unmarshal([]byte(body), &cells); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	want := []string{"buf_1", "inv_2"}
	if len(cells) != len(want) || cells[0] != want[0] || cells[1] != want[1] {
		t.Errorf("cells = %v, want %v", cells, want)
	}
}

func TestDocumentEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, body := get(t, ts.URL+"/lib/ss_n40C_1v28")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(body, `library ("sky130_fd_sc_hd__ss_n40C_1v28") {`) {
		t.Errorf("missing library line in:\n%s", body)
	}
	if !strings.Contains(body, `cell ("sky130_fd_sc_hd__buf_1") {`) {
		t.Errorf("missing cell block in:\n%s", body)
	}
	if !strings.HasSuffix(body, "\n}\n") {
		t.Errorf("document does not close properly: %q", body[len(body)-8:])
	}
}

func TestDocumentVariant(t *testing.T) {
	ts := newTestServer(t)

	resp, body := get(t, ts.URL+"/lib/ff_n40C_1v65?variant=ccsnoise")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", resp.StatusCode, body)
	}
	if !strings.Contains(body, `ccsn_pullup_stage : "threepole";`) {
		t.Errorf("ccsnoise data missing in:\n%s", body)
	}

	// Basic output from the same corner strips the noise data.
	_, body = get(t, ts.URL+"/lib/ff_n40C_1v65")
	if strings.Contains(body, "ccsn_") {
		t.Errorf("basic output still carries ccsnoise data:\n%s", body)
	}
}

func TestDocumentUnsupportedVariant(t *testing.T) {
	ts := newTestServer(t)

	resp, body := get(t, ts.URL+"/lib/ss_n40C_1v28?variant=ccsnoise")
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422: %s", resp.StatusCode, body)
	}

	var envelope struct {
		Error struct {
			Code         string   `json:"code"`
			Alternatives []string `json:"alternatives"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(body), &envelope); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if envelope.Error.Code != "UNSUPPORTED_VARIANT" {
		t.Errorf("code = %q", envelope.Error.Code)
	}
	if len(envelope.Error.Alternatives) != 1 || envelope.Error.Alternatives[0] != "ff_n40C_1v65" {
		t.Errorf("alternatives = %v", envelope.Error.Alternatives)
	}
}

func TestDocumentUnknownCorner(t *testing.T) {
	ts := newTestServer(t)

	resp, body := get(t, ts.URL+"/lib/tt_025C_1v80")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404: %s", resp.StatusCode, body)
	}

	var envelope struct {
		Error struct {
			Code         string   `json:"code"`
			Alternatives []string `json:"alternatives"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(body), &envelope); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if envelope.Error.Code != "UNKNOWN_CORNER" {
		t.Errorf("code = %q", envelope.Error.Code)
	}
	if len(envelope.Error.Alternatives) != 2 {
		t.Errorf("alternatives = %v", envelope.Error.Alternatives)
	}
}

func TestDocumentBadVariant(t *testing.T) {
	ts := newTestServer(t)

	resp, body := get(t, ts.URL+"/lib/ss_n40C_1v28?variant=bogus")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", resp.StatusCode, body)
	}
}
