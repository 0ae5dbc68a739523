package repository

import (
	"context"
	"fmt"

	"smarthub/internal/domain"
	"smarthub/internal/store"
)

type DocumentProfileRepository struct {
	coll store.Collection
}

func NewProfileRepository(coll store.Collection) *DocumentProfileRepository {
	return &DocumentProfileRepository{coll: coll}
}

var _ ProfileRepository = (*DocumentProfileRepository)(nil)

func (r *DocumentProfileRepository) Create(ctx context.Context, profile *domain.Profile) (*domain.Profile, error) {
	id, err := r.coll.Insert(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to insert profile: %w", err)
	}
	var created domain.Profile
	if err := r.coll.Get(ctx, id, &created); err != nil {
		return nil, fmt.Errorf("failed to reload profile %s: %w", id, err)
	}
	return &created, nil
}

func (r *DocumentProfileRepository) Latest(ctx context.Context) (*domain.Profile, error) {
	var p domain.Profile
	if err := r.coll.Latest(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *DocumentProfileRepository) PruneExcept(ctx context.Context, id string) (int64, error) {
	return r.coll.DeleteExcept(ctx, id)
}
