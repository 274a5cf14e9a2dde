package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"cortex/internal/artifact"
	"cortex/internal/jobstore"
	"cortex/internal/summarize"
)

func main() {
	port := flag.String("port", ":8080", "server port")
	flag.Parse()

	_ = godotenv.Load()
	ctx := context.Background()

	jobs := buildJobStore(ctx)
	artifacts := buildArtifactStore()
	summarizer := buildSummarizer(ctx)

	s := newAPIServer(jobs, artifacts, summarizer)
	mux := buildMux(s)

	h := corsMiddleware(mux)

	log.Printf("Starting API server on %s", *port)
	log.Fatal(http.ListenAndServe(*port, h2c.NewHandler(h, &http2.Server{})))
}

// buildJobStore prefers postgres when DATABASE_URL is set and falls back to
// memory so local development needs no infrastructure.
func buildJobStore(ctx context.Context) jobstore.Store {
	dsn := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dsn == "" {
		log.Printf("jobstore: DATABASE_URL not set, using in-memory store")
		return jobstore.NewMemoryStore()
	}
	store, err := jobstore.NewPostgresStore(ctx, dsn)
	if err != nil {
		log.Printf("jobstore: postgres unavailable (%v), using in-memory store", err)
		return jobstore.NewMemoryStore()
	}
	log.Printf("jobstore: using postgres")
	return store
}

func buildArtifactStore() artifact.Store {
	endpoint := strings.TrimSpace(os.Getenv("S3_ENDPOINT"))
	if endpoint == "" {
		log.Printf("artifact: S3_ENDPOINT not set, using in-memory store")
		return artifact.NewMemoryStore()
	}
	store, err := artifact.NewS3Store(artifact.S3Config{
		Endpoint:  endpoint,
		Region:    os.Getenv("S3_REGION"),
		AccessKey: os.Getenv("S3_ACCESS_KEY"),
		SecretKey: os.Getenv("S3_SECRET_KEY"),
		Bucket:    os.Getenv("S3_BUCKET"),
		UseSSL:    os.Getenv("S3_USE_SSL") == "true",
	})
	if err != nil {
		log.Printf("artifact: s3 unavailable (%v), using in-memory store", err)
		return artifact.NewMemoryStore()
	}
	log.Printf("artifact: using s3 bucket %s", os.Getenv("S3_BUCKET"))
	return store
}

// buildSummarizer returns nil when no API key is configured; the pipeline
// then uses the deterministic fallback summary.
func buildSummarizer(ctx context.Context) *summarize.Summarizer {
	if strings.TrimSpace(os.Getenv("GEMINI_API_KEY")) == "" {
		log.Printf("summarize: GEMINI_API_KEY not set, summaries use the structural fallback")
		return nil
	}
	model := strings.TrimSpace(os.Getenv("GEMINI_MODEL"))
	if model == "" {
		model = "gemini-2.0-flash"
	}
	cli, err := summarize.NewGeminiClient(ctx, model)
	if err != nil {
		log.Printf("summarize: client init failed (%v), summaries use the structural fallback", err)
		return nil
	}
	return summarize.New(cli)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Vary", "Origin")
		} else {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")
		if r.Method == http.MethodOptions {
			return
		}
		next.ServeHTTP(w, r)
	})
}
