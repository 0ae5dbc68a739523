package repository

import (
	"context"
	"fmt"

	"smarthub/internal/domain"
	"smarthub/internal/store"
)

type DocumentTankRepository struct {
	coll store.Collection
}

func NewTankRepository(coll store.Collection) *DocumentTankRepository {
	return &DocumentTankRepository{coll: coll}
}

var _ TankRepository = (*DocumentTankRepository)(nil)

func (r *DocumentTankRepository) List(ctx context.Context, limit int) ([]*domain.Tank, error) {
	tanks := []*domain.Tank{}
	if err := r.coll.List(ctx, limit, &tanks); err != nil {
		return nil, fmt.Errorf("failed to list tanks: %w", err)
	}
	return tanks, nil
}

func (r *DocumentTankRepository) Get(ctx context.Context, id string) (*domain.Tank, error) {
	var t domain.Tank
	if err := r.coll.Get(ctx, id, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *DocumentTankRepository) Create(ctx context.Context, tank *domain.Tank) (*domain.Tank, error) {
	id, err := r.coll.Insert(ctx, tank)
	if err != nil {
		return nil, fmt.Errorf("failed to insert tank: %w", err)
	}
	return r.Get(ctx, id)
}

func (r *DocumentTankRepository) Update(ctx context.Context, id string, patch domain.TankPatch) (*domain.Tank, error) {
	fields := patch.Fields()
	if len(fields) == 0 {
		// nothing to set; still report a missing tank as not found
		return r.Get(ctx, id)
	}
	matched, err := r.coll.Update(ctx, id, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to update tank %s: %w", id, err)
	}
	if matched == 0 {
		return nil, store.ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *DocumentTankRepository) Delete(ctx context.Context, id string) error {
	deleted, err := r.coll.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete tank %s: %w", id, err)
	}
	if deleted == 0 {
		return store.ErrNotFound
	}
	return nil
}
