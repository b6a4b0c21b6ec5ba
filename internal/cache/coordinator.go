package cache

import (
	"context"
	"log/slog"

	"go.uber.org/multierr"

	"github.com/hnordin/handla/internal/remote"
)

// Mutation describes one server write and the optimistic cache changes that
// should mask its latency.
type Mutation struct {
	// Name labels the mutation in logs.
	Name string

	// Keys lists the cache entries updated optimistically, in apply order.
	Keys []Key

	// Update transforms a key's current value into its optimistic value.
	// Returning false leaves that key untouched (it is still snapshotted
	// and restored as part of the mutation's frame).
	Update func(key Key, current any) (any, bool)

	// Dispatch performs the server write. It is called exactly once; a
	// failed dispatch is never retried, the caches are rolled back instead.
	Dispatch func(ctx context.Context) error

	// SettleKeys are invalidated after dispatch regardless of outcome, on
	// top of Keys. Both success and failure end with a server confirmation.
	SettleKeys []Key

	// SettlePrefixes are prefix-invalidated after dispatch regardless of
	// outcome.
	SettlePrefixes []string
}

// Coordinator runs mutations against a Cache using snapshot, optimistic
// apply, dispatch, then commit or rollback. Each mutation holds its own
// snapshot frame, so overlapping mutations unwind newest-first on failure.
type Coordinator struct {
	cache  *Cache
	logger *slog.Logger
}

func NewCoordinator(c *Cache, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		cache:  c,
		logger: logger.With("component", "coordinator"),
	}
}

type frame struct {
	key     Key
	value   any
	existed bool
}

// Do executes m: snapshot every key in m.Keys, apply the optimistic update,
// dispatch, then reconcile. On success the touched keys are committed and
// invalidated. On failure every frame is restored verbatim in reverse
// order, except that a not-found dispatch error drops the keys outright
// since the entity no longer exists server-side. SettleKeys and
// SettlePrefixes are invalidated unconditionally. The dispatch error is
// returned to the caller either way.
func (co *Coordinator) Do(ctx context.Context, m Mutation) error {
	frames := make([]frame, 0, len(m.Keys))
	for _, key := range m.Keys {
		value, existed := co.cache.snapshot(key)
		frames = append(frames, frame{key: key, value: value, existed: existed})

		if m.Update != nil {
			if next, ok := m.Update(key, value); ok {
				co.cache.apply(key, next)
			}
		}
	}

	err := m.Dispatch(ctx)

	switch {
	case err == nil:
		for _, f := range frames {
			co.cache.commit(f.key)
		}
	case remote.IsNotFound(err):
		// The entity is gone on the server; restoring the optimistic view
		// would resurrect it locally.
		co.logger.Warn("mutation target missing, dropping cached state",
			"mutation", m.Name, "error", err)
		for i := len(frames) - 1; i >= 0; i-- {
			co.cache.restore(frames[i].key, frames[i].value, frames[i].existed)
		}
		co.cache.Drop(m.Keys...)
	default:
		co.logger.Warn("mutation failed, rolling back",
			"mutation", m.Name, "error", err)
		for i := len(frames) - 1; i >= 0; i-- {
			co.cache.restore(frames[i].key, frames[i].value, frames[i].existed)
		}
	}

	co.cache.Invalidate(m.SettleKeys...)
	for _, prefix := range m.SettlePrefixes {
		co.cache.InvalidatePrefix(prefix)
	}
	return err
}

// DoAll runs mutations in order and returns their errors aggregated. Later
// mutations still run when an earlier one fails; each reconciles its own
// frame independently.
func (co *Coordinator) DoAll(ctx context.Context, mutations ...Mutation) error {
	var errs error
	for _, m := range mutations {
		errs = multierr.Append(errs, co.Do(ctx, m))
	}
	return errs
}
