package repository

import (
	"context"
	"fmt"

	"smarthub/internal/domain"
	"smarthub/internal/store"
)

type DocumentPreferenceRepository struct {
	coll store.Collection
}

func NewPreferenceRepository(coll store.Collection) *DocumentPreferenceRepository {
	return &DocumentPreferenceRepository{coll: coll}
}

var _ PreferenceRepository = (*DocumentPreferenceRepository)(nil)

func (r *DocumentPreferenceRepository) Get(ctx context.Context) (*domain.UserPreference, error) {
	var pref domain.UserPreference
	if err := r.coll.Get(ctx, domain.PreferenceID, &pref); err != nil {
		return nil, err
	}
	return &pref, nil
}

// Upsert is keyed by domain.PreferenceID so concurrent writers converge on
// one record; the last write wins.
func (r *DocumentPreferenceRepository) Upsert(ctx context.Context, pref *domain.UserPreference) (*domain.UserPreference, error) {
	if err := r.coll.Upsert(ctx, domain.PreferenceID, pref.Fields()); err != nil {
		return nil, fmt.Errorf("failed to upsert preference: %w", err)
	}
	stored, err := r.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to reload preference: %w", err)
	}
	return stored, nil
}
