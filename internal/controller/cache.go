package controller

import (
	"context"
	"log/slog"

	"github.com/dgnsrekt/tv_drawings/internal/drawing"
	"github.com/dgnsrekt/tv_drawings/internal/session"
)

// CachedChart describes the locally cached study set of one symbol.
type CachedChart struct {
	Symbol  string `json:"symbol"`
	Studies int    `json:"studies"`
	Valid   bool   `json:"valid"`
	Open    bool   `json:"open"`
}

// ListCached returns every symbol with a cached study set, in key order.
// Records that fail to decode are listed with Valid=false.
func (s *Service) ListCached(_ context.Context) ([]CachedChart, error) {
	keys, err := s.cache.Keys()
	if err != nil {
		return nil, err
	}
	out := make([]CachedChart, 0, len(keys))
	for _, key := range keys {
		symbol, ok := drawing.SubjectFromCacheKey(key)
		if !ok {
			continue
		}
		entry := CachedChart{Symbol: symbol}
		data, err := s.cache.Load(key)
		if err != nil {
			slog.Warn("drawing cache entry unreadable", "key", key, "error", err)
		} else if studies, ok := drawing.DecodeRecord(data); ok {
			entry.Studies = len(studies)
			entry.Valid = true
		}
		_, entry.Open = s.sessions.Get(symbol)
		out = append(out, entry)
	}
	return out, nil
}

// PurgeCached drops the cached study set of symbol. A symbol with an open
// session is refused, since the session would write it back on its next
// change.
func (s *Service) PurgeCached(_ context.Context, symbol string) error {
	norm, err := session.NormalizeSymbol(symbol)
	if err != nil {
		return newError(CodeValidation, err.Error(), nil)
	}
	if _, open := s.sessions.Get(norm); open {
		return newError(CodeSessionOpen, "close the "+norm+" session before purging its cache", nil)
	}
	key := drawing.CacheKey(norm)
	data, err := s.cache.Load(key)
	if err != nil {
		return err
	}
	if data == nil {
		return newError(CodeCacheNotFound, "no cached drawings for "+norm, nil)
	}
	if err := s.cache.Delete(key); err != nil {
		return err
	}
	slog.Info("drawing cache purged", "symbol", norm)
	return nil
}
