package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/kiekoher/agentflow/pkg/repo"
	"gorm.io/gorm"
)

// GormRepo is a generic CRUD repository backed by gorm, implementing the
// same Repository[T, ID] contract the old Neo4j-backed repository did.
type GormRepo[T any, ID comparable] struct {
	db *gorm.DB
}

func NewGormRepo[T any, ID comparable](db *gorm.DB) *GormRepo[T, ID] {
	return &GormRepo[T, ID]{db: db}
}

func (r *GormRepo[T, ID]) Get(ctx context.Context, id ID) (T, error) {
	var out T
	if err := r.db.WithContext(ctx).First(&out, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return out, fmt.Errorf("repo: get %v: %w", id, gorm.ErrRecordNotFound)
		}
		return out, fmt.Errorf("repo: get %v: %w", id, err)
	}
	return out, nil
}

func (r *GormRepo[T, ID]) List(ctx context.Context, opts repo.ListOpts) ([]T, error) {
	var out []T
	q := r.db.WithContext(ctx)
	for k, v := range opts.Filter {
		q = q.Where(fmt.Sprintf("%s = ?", k), v)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("repo: list: %w", err)
	}
	return out, nil
}

func (r *GormRepo[T, ID]) Create(ctx context.Context, entity T) (T, error) {
	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return entity, fmt.Errorf("repo: create: %w", err)
	}
	return entity, nil
}

func (r *GormRepo[T, ID]) Update(ctx context.Context, entity T) (T, error) {
	if err := r.db.WithContext(ctx).Save(&entity).Error; err != nil {
		return entity, fmt.Errorf("repo: update: %w", err)
	}
	return entity, nil
}

func (r *GormRepo[T, ID]) Delete(ctx context.Context, id ID) error {
	var zero T
	if err := r.db.WithContext(ctx).Delete(&zero, "id = ?", id).Error; err != nil {
		return fmt.Errorf("repo: delete %v: %w", id, err)
	}
	return nil
}

var _ repo.Repository[AgentConfig, string] = (*GormRepo[AgentConfig, string])(nil)
