package generic

import "context"

// Repository loads aggregates of one kind through a unit of work.
// Every Load constructs a fresh instance; nothing is cached across commands.
type Repository[A Root] struct {
	uow *UnitOfWork
	new func() A
}

func NewRepository[A Root](uow *UnitOfWork, constructor func() A) Repository[A] {
	return Repository[A]{uow: uow, new: constructor}
}

// Load returns the aggregate stored under key. A stream with no events
// yields a zero-state aggregate at version NoStream; callers decide whether
// that means "not found".
func (r Repository[A]) Load(ctx context.Context, key string) (A, error) {
	a := r.new()
	if err := r.uow.Load(ctx, key, a); err != nil {
		var zero A
		return zero, err
	}
	return a, nil
}

// Add tracks a new aggregate built in memory.
func (r Repository[A]) Add(key string, a A, expectedVersion int) error {
	return r.uow.Track(key, a, expectedVersion)
}
