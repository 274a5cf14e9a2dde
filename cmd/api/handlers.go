package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"cortex/internal/acquire"
	"cortex/internal/artifact"
	"cortex/internal/callflow"
	"cortex/internal/jobstore"
	"cortex/internal/pipeline"
	"cortex/internal/types"
)

const (
	analysisTimeout = 15 * time.Minute
	maxUploadBytes  = 256 << 20
)

// stageProgress maps pipeline stages to the percentage shown to clients.
var stageProgress = map[string]int{
	"repo_reader":      15,
	"static_analyzer":  30,
	"graph_builder":    45,
	"pattern_mapper":   60,
	"llm_orchestrator": 75,
	"validator":        85,
	"output_renderer":  95,
}

func (s *apiServer) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "Code Architecture Analysis API",
		"status":  "healthy",
		"version": "1.0.0",
	})
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	running, _ := s.jobs.List(r.Context(), jobstore.StatusRunning, 0)
	all, _ := s.jobs.List(r.Context(), "", 0)
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "healthy",
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"active_jobs":    len(running),
		"total_jobs":     len(all),
		"cached_results": s.results.Len(),
	})
}

func (s *apiServer) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req jobstore.Request
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.RepoPath == "" {
		writeError(w, http.StatusBadRequest, "repo_path is required")
		return
	}
	if req.GitRef == "" {
		req.GitRef = "main"
	}

	job, err := s.jobs.Create(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	go s.runAnalysis(job.ID, req)

	writeJSON(w, http.StatusOK, job)
}

// runAnalysis executes one job in the background, streaming progress to
// websocket subscribers and recording the result when done.
func (s *apiServer) runAnalysis(jobID string, req jobstore.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), analysisTimeout)
	defer cancel()

	start := time.Now()
	s.setProgress(ctx, jobID, "initialize", 0, "Starting analysis...")

	files, err := s.fetchSources(ctx, jobID, req)
	if err != nil {
		s.failJob(jobID, fmt.Errorf("repo reader: %w", err))
		return
	}
	s.setProgress(ctx, jobID, "repo_reader", stageProgress["repo_reader"],
		fmt.Sprintf("Fetched %d files", len(files)))

	runner := pipeline.NewRunner(
		pipeline.WithSummarizer(s.summarizer),
		pipeline.WithProgress(func(stage, message string) {
			s.setProgress(ctx, jobID, stage, stageProgress[stage], message)
		}),
	)
	res, err := runner.Run(ctx, req.RepoPath, req.GitRef, files)
	if err != nil {
		s.failJob(jobID, err)
		return
	}

	s.results.Put(jobID, res)
	s.storeArtifacts(ctx, jobID, res)

	finalCtx, finalCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer finalCancel()
	if _, err := s.jobs.Update(finalCtx, jobID, func(j *jobstore.Job) {
		j.Status = jobstore.StatusCompleted
		j.Progress = 100
		j.Message = "Analysis completed!"
	}); err != nil {
		log.Printf("job %s: final status update failed: %v", jobID, err)
	}
	s.hub.publish(jobID, progressUpdate{
		Type:     "complete",
		Progress: 100,
		Message:  fmt.Sprintf("Analysis completed in %s", time.Since(start).Round(time.Millisecond)),
	})
}

// fetchSources resolves the repo path into a list of source files, cloning
// remote repositories into a temp dir first.
func (s *apiServer) fetchSources(ctx context.Context, jobID string, req jobstore.Request) ([]types.SourceFile, error) {
	root := req.RepoPath
	if acquire.IsRemote(req.RepoPath) {
		tempDir, err := os.MkdirTemp("", "cortex_repo_")
		if err != nil {
			return nil, err
		}
		defer os.RemoveAll(tempDir)

		s.setProgress(ctx, jobID, "repo_reader", 10, "Cloning repository...")
		if err := acquire.Clone(ctx, req.RepoPath, req.GitRef, tempDir); err != nil {
			return nil, err
		}
		root = tempDir
		return acquire.ReadTree(root, acquire.ReadOptions{ScopeFilters: req.ScopeFilters})
	}
	return acquire.ReadTree(root, acquire.ReadOptions{ScopeFilters: req.ScopeFilters})
}

func (s *apiServer) storeArtifacts(ctx context.Context, jobID string, res *types.AnalysisResult) {
	if s.artifacts == nil {
		return
	}
	resultJSON, err := encodeJSON(res)
	if err != nil {
		log.Printf("job %s: encode result: %v", jobID, err)
		return
	}
	for path, content := range map[string][]byte{
		artifact.PathReport:  []byte(res.Markdown),
		artifact.PathDiagram: []byte(res.Mermaid),
		artifact.PathResult:  resultJSON,
	} {
		if err := s.artifacts.Put(ctx, jobID, path, content); err != nil {
			log.Printf("job %s: store artifact %s: %v", jobID, path, err)
		}
	}
}

func (s *apiServer) setProgress(ctx context.Context, jobID, step string, progress int, message string) {
	if _, err := s.jobs.Update(ctx, jobID, func(j *jobstore.Job) {
		j.Status = jobstore.StatusRunning
		if progress > 0 {
			j.Progress = progress
		}
		if message != "" {
			j.Message = message
		}
	}); err != nil {
		log.Printf("job %s: progress update failed: %v", jobID, err)
	}
	s.hub.publish(jobID, progressUpdate{
		Type:     "progress",
		Step:     step,
		Progress: progress,
		Message:  message,
	})
}

// failJob records the terminal status on a fresh context: the run may have
// failed because its own context expired, and the job must not stay running.
func (s *apiServer) failJob(jobID string, cause error) {
	log.Printf("job %s: analysis failed: %v", jobID, cause)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := s.jobs.Update(ctx, jobID, func(j *jobstore.Job) {
		j.Status = jobstore.StatusFailed
		j.Message = cause.Error()
	}); err != nil {
		log.Printf("job %s: failure status update failed: %v", jobID, err)
	}
	s.hub.publish(jobID, progressUpdate{Type: "error", Error: cause.Error()})
}

func (s *apiServer) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.jobs.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, jobstore.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Job not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *apiServer) handleListJobs(w http.ResponseWriter, r *http.Request) {
	status := jobstore.Status(r.URL.Query().Get("status"))
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	jobs, err := s.jobs.List(r.Context(), status, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total": len(jobs),
		"jobs":  jobs,
	})
}

func (s *apiServer) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	err := s.jobs.Delete(r.Context(), jobID)
	switch {
	case errors.Is(err, jobstore.ErrNotFound):
		writeError(w, http.StatusNotFound, "Job not found")
		return
	case errors.Is(err, jobstore.ErrJobRunning):
		writeError(w, http.StatusBadRequest, "Cannot delete running job")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.results.Delete(jobID)
	writeJSON(w, http.StatusOK, map[string]any{"deleted": jobID})
}

// resultResponse adds headline statistics on top of the raw result.
type resultResponse struct {
	JobID        string `json:"job_id"`
	Status       string `json:"status"`
	FileCount    int    `json:"file_count"`
	SymbolCount  int    `json:"symbol_count"`
	NodeCount    int    `json:"node_count"`
	PatternCount int    `json:"pattern_count"`
	*types.AnalysisResult
}

func (s *apiServer) handleGetResult(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	res, ok := s.results.Get(jobID)
	if !ok {
		job, err := s.jobs.Get(r.Context(), jobID)
		if err == nil {
			switch job.Status {
			case jobstore.StatusPending, jobstore.StatusRunning:
				writeError(w, http.StatusAccepted,
					fmt.Sprintf("Analysis still in progress. Status: %s, Progress: %d%%", job.Status, job.Progress))
				return
			case jobstore.StatusFailed:
				writeError(w, http.StatusInternalServerError,
					fmt.Sprintf("Analysis failed: %s", job.Message))
				return
			}
		}
		writeError(w, http.StatusNotFound, "Results not found")
		return
	}

	writeJSON(w, http.StatusOK, resultResponse{
		JobID:          jobID,
		Status:         string(jobstore.StatusCompleted),
		FileCount:      res.Facts.FileCount,
		SymbolCount:    len(res.Facts.Symbols),
		NodeCount:      res.Graph.Metrics.TotalNodes,
		PatternCount:   res.Patterns.TotalPatterns,
		AnalysisResult: res,
	})
}

func (s *apiServer) handleCallFlow(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	method := r.PathValue("method")

	res, ok := s.results.Get(jobID)
	if !ok {
		writeError(w, http.StatusNotFound, "Results not found")
		return
	}

	maxDepth := 5
	if v := r.URL.Query().Get("max_depth"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			maxDepth = n
		}
	}

	writeJSON(w, http.StatusOK, callflow.Trace(method, res.Facts.Calls, maxDepth))
}

func (s *apiServer) handleListArtifacts(w http.ResponseWriter, r *http.Request) {
	if s.artifacts == nil {
		writeError(w, http.StatusNotFound, "Artifact store not configured")
		return
	}
	paths, err := s.artifacts.List(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"artifacts": paths})
}

func (s *apiServer) handleGetArtifact(w http.ResponseWriter, r *http.Request) {
	if s.artifacts == nil {
		writeError(w, http.StatusNotFound, "Artifact store not configured")
		return
	}
	content, err := s.artifacts.Get(r.Context(), r.PathValue("id"), r.PathValue("path"))
	if errors.Is(err, artifact.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Artifact not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(content)
}

// handleUpload accepts a zip or tarball, extracts it to a temp dir, and
// returns the path to analyze.
func (s *apiServer) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	tempDir, err := os.MkdirTemp("", "cortex_upload_")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	archivePath := filepath.Join(tempDir, filepath.Base(header.Filename))
	out, err := os.Create(archivePath)
	if err != nil {
		os.RemoveAll(tempDir)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		os.RemoveAll(tempDir)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out.Close()

	extractDir := filepath.Join(tempDir, "extracted")
	if err := os.MkdirAll(extractDir, 0o755); err != nil {
		os.RemoveAll(tempDir)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := acquire.Unpack(archivePath, extractDir); err != nil {
		os.RemoveAll(tempDir)
		if errors.Is(err, acquire.ErrUnsupportedArchive) {
			writeError(w, http.StatusBadRequest, "Unsupported file type. Please upload ZIP or TAR files.")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	fileCount := 0
	_ = filepath.WalkDir(extractDir, func(_ string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			fileCount++
		}
		return nil
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"path":       extractDir,
		"filename":   header.Filename,
		"file_count": fileCount,
		"message":    fmt.Sprintf("File uploaded and extracted to %s (%d files found)", extractDir, fileCount),
	})
}
