package characters

import (
	"context"
	"sync"

	"loremaker/internal/loremaker"
	synchub "loremaker/internal/sync"
	"loremaker/pkg/logger"
)

// Loader produces a batch; *loremaker.Fetcher is the production one.
type Loader interface {
	Load(ctx context.Context) (*loremaker.Batch, error)
}

// Publisher receives an event whenever a new batch is loaded.
type Publisher interface {
	Publish(ev synchub.LoadEvent)
}

// Library owns the last loaded batch. Detail views read allies from it, so a
// reader always sees either the previous or the next complete batch.
type Library struct {
	Loader Loader
	Events Publisher
	Logger *logger.Logger

	mu   sync.RWMutex
	last *loremaker.Batch
}

func NewLibrary(loader Loader, events Publisher, log *logger.Logger) *Library {
	if log == nil {
		log = logger.Nop()
	}
	return &Library{Loader: loader, Events: events, Logger: log.With("component", "library")}
}

// Reload runs the loader and replaces the current batch. A cancelled ctx
// leaves the current batch untouched.
func (l *Library) Reload(ctx context.Context) (*loremaker.Batch, error) {
	b, err := l.Loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.last = b
	l.mu.Unlock()

	if b.Error != "" {
		l.Logger.Warn("batch loaded with fallbacks", "source", b.Source, "count", len(b.Characters), "error", b.Error)
	}
	if l.Events != nil {
		l.Events.Publish(synchub.LoadEvent{
			Type:     synchub.EventCharactersLoaded,
			Source:   b.Source,
			Count:    len(b.Characters),
			Error:    b.Error,
			LoadedAt: b.LoadedAt,
		})
	}
	return b, nil
}

// Current returns the last loaded batch, or nil before the first load.
func (l *Library) Current() *loremaker.Batch {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.last
}

// CurrentOrLoad returns the current batch, loading one if there is none yet.
func (l *Library) CurrentOrLoad(ctx context.Context) (*loremaker.Batch, error) {
	if b := l.Current(); b != nil {
		return b, nil
	}
	return l.Reload(ctx)
}
