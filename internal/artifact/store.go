// Package artifact persists rendered analysis outputs (Markdown reports,
// Mermaid diagrams, raw result JSON) keyed by job ID.
package artifact

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
)

var ErrNotFound = errors.New("artifact: not found")

// Well-known artifact paths written after a successful run.
const (
	PathReport  = "report.md"
	PathDiagram = "diagram.mmd"
	PathResult  = "result.json"
)

// Store is the artifact backend interface.
type Store interface {
	Put(ctx context.Context, jobID, path string, content []byte) error
	Get(ctx context.Context, jobID, path string) ([]byte, error)
	List(ctx context.Context, jobID string) ([]string, error)
}

// MemoryStore keeps artifacts in process memory for development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (s *MemoryStore) Put(_ context.Context, jobID, path string, content []byte) error {
	key, err := objectKey(jobID, path)
	if err != nil {
		return err
	}
	buf := make([]byte, len(content))
	copy(buf, content)

	s.mu.Lock()
	s.objects[key] = buf
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, jobID, path string) ([]byte, error) {
	key, err := objectKey(jobID, path)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	content, ok := s.objects[key]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return content, nil
}

func (s *MemoryStore) List(_ context.Context, jobID string) ([]string, error) {
	prefix := strings.TrimSpace(jobID) + "/"

	s.mu.RLock()
	var paths []string
	for key := range s.objects {
		if strings.HasPrefix(key, prefix) {
			paths = append(paths, strings.TrimPrefix(key, prefix))
		}
	}
	s.mu.RUnlock()

	sort.Strings(paths)
	return paths, nil
}

func objectKey(jobID, path string) (string, error) {
	jobID = strings.TrimSpace(jobID)
	path = strings.TrimLeft(strings.TrimSpace(path), "/")
	if jobID == "" {
		return "", errors.New("artifact: job id is required")
	}
	if path == "" {
		return "", errors.New("artifact: path is required")
	}
	return jobID + "/" + path, nil
}
