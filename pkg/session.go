package pkg

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/ecopia-map/pointcloud_core/pkg/model"
	"github.com/pkg/errors"
)

// ErrSuperseded is returned by a load whose result was discarded because a newer load started
var ErrSuperseded = errors.New("load superseded by a newer one")

// LoadFunc produces a model. It must return promptly once ctx is cancelled.
type LoadFunc func(ctx context.Context) (*Result, error)

// Session holds the current model. Loads may be started from any goroutine; only the most
// recently started one can publish, and a failed load leaves the current model in place.
type Session struct {
	current atomic.Pointer[model.PointCloudModel]

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
}

func NewSession() *Session {
	return &Session{}
}

// Current returns the published model, nil before the first successful load
func (s *Session) Current() *model.PointCloudModel {
	return s.current.Load()
}

// Load cancels the load in flight, if any, and runs fn. The produced model replaces the current
// one atomically unless another load was started in the meantime.
func (s *Session) Load(ctx context.Context, fn LoadFunc) (*Result, error) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	gen := s.generation
	loadCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	res, err := fn(loadCtx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return nil, ErrSuperseded
	}
	s.cancel = nil
	if err != nil {
		return nil, err
	}
	if res == nil || res.Model == nil {
		return nil, errors.New("load produced no model")
	}
	s.current.Store(res.Model)
	return res, nil
}

// LoadFile ingests filePath through in and publishes the result
func (s *Session) LoadFile(ctx context.Context, in IIngestor, filePath string) (*Result, error) {
	return s.Load(ctx, func(ctx context.Context) (*Result, error) {
		return in.IngestFile(ctx, filePath)
	})
}

// Close cancels the load in flight. The current model stays readable.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.generation++
}
