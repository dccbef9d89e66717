package services

import (
	"context"
	"log/slog"
)

// BoardCache holds built leaderboards between writes. Cache failures never fail
// a request; the board is rebuilt from the store instead.
//
// Load reports the generation it read. A board built after a miss is stored
// against that generation, so an Invalidate that lands mid-build hides it.
type BoardCache interface {
	Load(ctx context.Context, key string, dst any) (gen int64, hit bool, err error)
	Store(ctx context.Context, gen int64, key string, v any) error
	Invalidate(ctx context.Context) error
}

func invalidateBoards(ctx context.Context, cache BoardCache, reason string) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(ctx); err != nil {
		slog.Warn("leaderboard cache invalidation failed", "action", reason, "error", err.Error())
	}
}
