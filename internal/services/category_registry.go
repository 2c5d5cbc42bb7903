package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"kharcha/internal/cache"
	"kharcha/internal/core"
	"kharcha/internal/storage"
)

const (
	categoryCacheSize = 256
	categoryCacheTTL  = 10 * time.Minute
)

// CategoryRegistry resolves category names to rows, creating missing
// categories lazily. Names are normalized (trimmed, title-cased) and
// matched case-insensitively, so " food " and "FOOD" resolve to the
// same row. Categories are never deleted or renamed.
type CategoryRegistry struct {
	queries *storage.Queries
	cache   *cache.LRU[core.Category]
}

func NewCategoryRegistry(queries *storage.Queries) *CategoryRegistry {
	return &CategoryRegistry{
		queries: queries,
		cache:   cache.NewLRU[core.Category](categoryCacheSize, categoryCacheTTL),
	}
}

// GetOrCreate resolves name to its category, creating one when no
// match exists. It runs against q so a create participates in the
// caller's transaction.
func (r *CategoryRegistry) GetOrCreate(ctx context.Context, q *storage.Queries, name string) (core.Category, error) {
	normalized := core.NormalizeCategory(name)
	if normalized == "" {
		return core.Category{}, fmt.Errorf("category name is empty")
	}

	if cat, ok := r.cache.Get(normalized); ok {
		return cat, nil
	}

	cat, err := q.GetCategoryByName(ctx, normalized)
	if err == nil {
		r.cache.Set(normalized, cat)
		return cat, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, fmt.Errorf("lookup category: %w", err)
	}

	// Freshly created rows are not cached: the surrounding transaction
	// may still roll back.
	cat, err = q.CreateCategory(ctx, normalized, time.Now())
	if err != nil {
		return core.Category{}, err
	}
	return cat, nil
}

// Find resolves name without creating anything, reporting whether a
// category matched.
func (r *CategoryRegistry) Find(ctx context.Context, name string) (core.Category, bool, error) {
	normalized := core.NormalizeCategory(name)
	if normalized == "" {
		return core.Category{}, false, nil
	}

	if cat, ok := r.cache.Get(normalized); ok {
		return cat, true, nil
	}

	cat, err := r.queries.GetCategoryByName(ctx, normalized)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, false, nil
	}
	if err != nil {
		return core.Category{}, false, fmt.Errorf("lookup category: %w", err)
	}

	r.cache.Set(normalized, cat)
	return cat, true, nil
}
