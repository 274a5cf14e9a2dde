package jobstore

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"cortex/internal/types"
)

const defaultCacheSize = 128

// ResultCache holds completed analysis results keyed by job ID. Old results
// are evicted LRU so long-lived processes stay bounded.
type ResultCache struct {
	cache *lru.Cache[string, *types.AnalysisResult]
}

func NewResultCache(size int) *ResultCache {
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New[string, *types.AnalysisResult](size)
	if err != nil {
		// lru.New only fails on a non-positive size.
		panic(err)
	}
	return &ResultCache{cache: cache}
}

func (c *ResultCache) Put(jobID string, res *types.AnalysisResult) {
	c.cache.Add(jobID, res)
}

func (c *ResultCache) Get(jobID string) (*types.AnalysisResult, bool) {
	return c.cache.Get(jobID)
}

func (c *ResultCache) Delete(jobID string) {
	c.cache.Remove(jobID)
}

func (c *ResultCache) Len() int {
	return c.cache.Len()
}
