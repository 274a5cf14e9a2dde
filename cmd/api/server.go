package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"cortex/internal/artifact"
	"cortex/internal/jobstore"
	"cortex/internal/summarize"
)

// apiServer wires the HTTP surface to the job store, result cache,
// artifact store, and the analysis pipeline.
type apiServer struct {
	jobs       jobstore.Store
	results    *jobstore.ResultCache
	artifacts  artifact.Store
	summarizer *summarize.Summarizer
	hub        *wsHub
}

func newAPIServer(jobs jobstore.Store, artifacts artifact.Store, summarizer *summarize.Summarizer) *apiServer {
	return &apiServer{
		jobs:       jobs,
		results:    jobstore.NewResultCache(0),
		artifacts:  artifacts,
		summarizer: summarizer,
		hub:        newWSHub(),
	}
}

func buildMux(s *apiServer) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("POST /api/upload", s.handleUpload)

	mux.HandleFunc("GET /api/jobs", s.handleListJobs)
	mux.HandleFunc("GET /api/jobs/{id}", s.handleGetJob)
	mux.HandleFunc("DELETE /api/jobs/{id}", s.handleDeleteJob)

	mux.HandleFunc("GET /api/results/{id}", s.handleGetResult)
	mux.HandleFunc("GET /api/results/{id}/callflow/{method}", s.handleCallFlow)
	mux.HandleFunc("GET /api/results/{id}/artifacts", s.handleListArtifacts)
	mux.HandleFunc("GET /api/results/{id}/artifacts/{path}", s.handleGetArtifact)

	mux.HandleFunc("GET /ws/{id}", s.handleWS)

	return mux
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid json body: %w", err)
	}
	return nil
}

func encodeJSON(v any) ([]byte, error) {
	return json.Marshal(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
