package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/geomesh/dedupjoin/sjoin"
)

func TestHandlers_Health(t *testing.T) {
	app := demoApp(t)
	server := newHTTPServer(app)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var status struct {
		Status        string `json:"status"`
		Rows          int    `json:"rows"`
		GeometryArity int    `json:"geometryArity"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if status.Status != "ok" {
		t.Errorf("status = %q, want ok", status.Status)
	}
	if status.Rows != 7 || status.GeometryArity != 2 {
		t.Errorf("rows = %d, arity = %d; want 7 and 2", status.Rows, status.GeometryArity)
	}
}

func TestHandlers_ResultGeoJSON(t *testing.T) {
	app := demoApp(t)
	server := newHTTPServer(app)

	req := httptest.NewRequest(http.MethodGet, "/result.geojson", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/geo+json" {
		t.Errorf("content type = %q", ct)
	}

	var fc sjoin.FeatureCollection
	if err := json.Unmarshal(rec.Body.Bytes(), &fc); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(fc.Features) != 7 {
		t.Errorf("got %d features, want 7", len(fc.Features))
	}
}

func TestHandlers_ResultText(t *testing.T) {
	app := demoApp(t)
	server := newHTTPServer(app)

	req := httptest.NewRequest(http.MethodGet, "/result.txt", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "a-b") {
		t.Errorf("result table lacks merged identity:\n%s", body)
	}
}

func TestHandlers_PairsText(t *testing.T) {
	app := demoApp(t)
	server := newHTTPServer(app)

	req := httptest.NewRequest(http.MethodGet, "/pairs.txt", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	// Pair table has the double matches as separate rows.
	lines := strings.Count(strings.TrimRight(rec.Body.String(), "\n"), "\n") + 1
	if lines != 10 { // header + 9 pair rows
		t.Errorf("got %d lines, want 10:\n%s", lines, rec.Body.String())
	}
}

func TestHandlers_MapSVG(t *testing.T) {
	app := demoApp(t)
	server := newHTTPServer(app)

	req := httptest.NewRequest(http.MethodGet, "/map.svg", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<svg") {
		t.Error("body is not SVG")
	}
}

func TestHandlers_MapPNG(t *testing.T) {
	app := demoApp(t)
	server := newHTTPServer(app)

	req := httptest.NewRequest(http.MethodGet, "/map.png", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.Bytes()
	if len(body) < 4 || body[1] != 'P' || body[2] != 'N' || body[3] != 'G' {
		t.Error("body does not start with the PNG signature")
	}
}

func TestHandlers_NoResult(t *testing.T) {
	server := newHTTPServer(NewApp())

	for _, path := range []string{"/result.geojson", "/result.txt", "/pairs.txt", "/map.svg", "/map.png"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: status = %d, want 503", path, rec.Code)
		}
	}
}

func TestHandlers_Index(t *testing.T) {
	app := demoApp(t)
	server := newHTTPServer(app)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "/map.svg") {
		t.Error("index page does not embed the map")
	}

	req = httptest.NewRequest(http.MethodGet, "/unknown", nil)
	rec = httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown path status = %d, want 404", rec.Code)
	}
}
