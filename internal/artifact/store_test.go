package artifact

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Put(ctx, "job1", PathReport, []byte("# report")); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := s.Get(ctx, "job1", PathReport)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "# report" {
		t.Fatalf("got=%q", got)
	}
}

func TestMemoryStore_GetMissing(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.Get(context.Background(), "job1", PathReport); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err=%v want ErrNotFound", err)
	}
}

func TestMemoryStore_ListIsScopedAndSorted(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.Put(ctx, "job1", PathResult, []byte("{}"))
	s.Put(ctx, "job1", PathDiagram, []byte("graph TB"))
	s.Put(ctx, "job2", PathReport, []byte("# other"))

	paths, err := s.List(ctx, "job1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(paths) != 2 || paths[0] != PathDiagram || paths[1] != PathResult {
		t.Fatalf("paths=%v want [diagram.mmd result.json]", paths)
	}
}

func TestMemoryStore_RejectsEmptyKeys(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Put(context.Background(), "", PathReport, nil); err == nil {
		t.Fatal("want error for empty job id")
	}
	if err := s.Put(context.Background(), "job1", "", nil); err == nil {
		t.Fatal("want error for empty path")
	}
}
