package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// newHTTPServer creates an HTTP server with all endpoints
func newHTTPServer(app *App) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		status := struct {
			Status        string    `json:"status"`
			Timestamp     time.Time `json:"timestamp"`
			Rows          int       `json:"rows"`
			GeometryArity int       `json:"geometryArity"`
		}{
			Status:    "ok",
			Timestamp: time.Now(),
		}
		if app.Result != nil {
			status.Rows = len(app.Result.Rows)
			status.GeometryArity = app.Result.GeometryArity
		}
		if err := json.NewEncoder(w).Encode(status); err != nil {
			log.Printf("Error encoding health status: %v", err)
		}
	})

	// Aggregated result as GeoJSON
	mux.HandleFunc("/result.geojson", func(w http.ResponseWriter, r *http.Request) {
		if app.Result == nil {
			http.Error(w, "No result available", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/geo+json")
		w.Header().Set("Cache-Control", "no-cache")
		if err := json.NewEncoder(w).Encode(app.Result.ToFeatureCollection()); err != nil {
			log.Printf("Error encoding result GeoJSON: %v", err)
		}
	})

	// Aggregated result as a plain-text table
	mux.HandleFunc("/result.txt", func(w http.ResponseWriter, r *http.Request) {
		if app.Result == nil {
			http.Error(w, "No result available", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		fmt.Fprint(w, app.Result.String())
	})

	// Pair table as a plain-text table
	mux.HandleFunc("/pairs.txt", func(w http.ResponseWriter, r *http.Request) {
		if app.Pairs == nil {
			http.Error(w, "No result available", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		fmt.Fprint(w, app.Pairs.String())
	})

	// Vector map endpoint
	mux.HandleFunc("/map.svg", func(w http.ResponseWriter, r *http.Request) {
		if app.Result == nil {
			http.Error(w, "No result available", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Cache-Control", "no-cache")
		if err := app.vectorRenderer().RenderToSVG(w); err != nil {
			log.Printf("Error encoding map SVG: %v", err)
		}
	})

	// Raster map endpoint
	mux.HandleFunc("/map.png", func(w http.ResponseWriter, r *http.Request) {
		if app.Result == nil {
			http.Error(w, "No result available", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-cache")
		if err := app.vectorRenderer().RenderToPNG(w); err != nil {
			log.Printf("Error encoding map PNG: %v", err)
		}
	})

	// Default route serves HTML page embedding the SVG map
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = fmt.Fprint(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>dedupjoin</title>
<style>
*{margin:0;padding:0;box-sizing:border-box}
html,body{width:100%;height:100%;overflow:hidden;background:#1a1a1a}
img{display:block;width:100vw;height:100vh;object-fit:contain}
</style>
</head>
<body>
<img src="/map.svg" alt="Join Result Map">
</body>
</html>`)
	})

	// Wrap mux with logging middleware
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("[HTTP] %s %s from %s", r.Method, r.URL.Path, r.RemoteAddr)
		mux.ServeHTTP(w, r)
	})
}
