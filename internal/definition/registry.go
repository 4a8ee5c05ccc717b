package definition

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/icinga/icinga-tagfilter/internal/tags"
	"github.com/icinga/icingadb/pkg/logging"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
)

// Registry stores the currently active definitions by their name.
//
// All methods are safe for concurrent use. The definitions themselves are never modified once they are part of
// a Registry, updates always replace the whole set.
type Registry struct {
	logger *logging.Logger

	// mu is used to synchronize access to definitions.
	mu          sync.RWMutex
	definitions map[string]*Definition
}

// NewRegistry returns an empty Registry.
func NewRegistry(logger *logging.Logger) *Registry {
	return &Registry{logger: logger, definitions: make(map[string]*Definition)}
}

// Replace atomically replaces all definitions by the given ones.
//
// All of them must have been initialized and their names must be unique, otherwise the Registry stays untouched.
func (r *Registry) Replace(definitions []*Definition) error {
	next := make(map[string]*Definition, len(definitions))
	for _, d := range definitions {
		if d.Filter == nil {
			return fmt.Errorf("definition %q has not been initialized", d.Name)
		}

		if _, ok := next[d.Name]; ok {
			return fmt.Errorf("duplicate definition %q", d.Name)
		}

		next[d.Name] = d
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var added, changed, removed int
	for name, d := range next {
		if cur, ok := r.definitions[name]; !ok {
			added++
		} else if cur.FilterExpr != d.FilterExpr || !slices.Equal(cur.ElementTypes, d.ElementTypes) {
			changed++
		}
	}
	for name := range r.definitions {
		if _, ok := next[name]; !ok {
			removed++
		}
	}

	r.definitions = next

	if added+changed+removed > 0 {
		r.logger.Infow("Updated definitions",
			zap.Int("added", added), zap.Int("changed", changed), zap.Int("removed", removed))
	}

	return nil
}

// Get returns the definition with the given name or nil if there is none.
func (r *Registry) Get(name string) *Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.definitions[name]
}

// Names returns the sorted names of all definitions.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := maps.Keys(r.definitions)
	r.mu.RUnlock()

	slices.Sort(names)
	return names
}

// Len returns the number of definitions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.definitions)
}

// snapshot returns all definitions sorted by name.
func (r *Registry) snapshot() []*Definition {
	r.mu.RLock()
	definitions := maps.Values(r.definitions)
	r.mu.RUnlock()

	slices.SortFunc(definitions, func(a, b *Definition) bool { return a.Name < b.Name })
	return definitions
}

// Match returns the sorted names of all definitions the given element matches.
func (r *Registry) Match(element *tags.Element) []string {
	return match(r.snapshot(), element)
}

func match(definitions []*Definition, element *tags.Element) []string {
	var names []string
	for _, d := range definitions {
		if d.Matches(element) {
			names = append(names, d.Name)
		}
	}

	return names
}

// Result holds the names of the definitions a single element matches.
type Result struct {
	Element     *tags.Element
	Definitions []string
}

// MatchAll matches all elements against a consistent snapshot of the definitions using up to workers goroutines.
//
// The results are in the same order as the elements. Returns ctx.Err() if ctx is canceled before all elements
// have been processed.
func (r *Registry) MatchAll(ctx context.Context, elements []*tags.Element, workers int) ([]Result, error) {
	if workers < 1 {
		workers = 1
	}

	definitions := r.snapshot()
	results := make([]Result, len(elements))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, element := range elements {
		i, element := i, element

		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			results[i] = Result{Element: element, Definitions: match(definitions, element)}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// Update fetches the definitions and replaces the current ones with them.
func (r *Registry) Update(ctx context.Context, fetch func(context.Context) ([]*Definition, error)) error {
	r.logger.Debug("Fetching definitions")
	start := time.Now()

	definitions, err := fetch(ctx)
	if err != nil {
		return err
	}

	if err := r.Replace(definitions); err != nil {
		return err
	}

	r.logger.Debugw("Fetched definitions", zap.Int("count", len(definitions)), zap.Duration("took", time.Since(start)))

	return nil
}

// PeriodicUpdates calls Update every interval until ctx is canceled.
//
// A failed update is logged and the previous definitions stay active.
func (r *Registry) PeriodicUpdates(ctx context.Context, interval time.Duration, fetch func(context.Context) ([]*Definition, error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := r.Update(ctx, fetch); err != nil {
				r.logger.Errorw("Periodic definitions update failed, continuing with previous definitions", zap.Error(err))
			}
		case <-ctx.Done():
			return
		}
	}
}
