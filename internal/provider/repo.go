package provider

import (
	"context"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// Get returns ErrNotFound when the provider does not exist.
func (r *Repo) Get(ctx context.Context, id uint64) (*Provider, error) {
	var p Provider
	if err := r.db.WithContext(ctx).First(&p, "user_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetAll returns every provider in insertion order.
func (r *Repo) GetAll(ctx context.Context) ([]Provider, error) {
	var out []Provider
	if err := r.db.WithContext(ctx).
		Order("created_at ASC, user_id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// QueryBySkill returns providers whose skill set contains skill, in insertion order.
func (r *Repo) QueryBySkill(ctx context.Context, skill string) ([]Provider, error) {
	var out []Provider
	if err := r.db.WithContext(ctx).
		Where(datatypes.JSONArrayQuery("skills").Contains(skill)).
		Order("created_at ASC, user_id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// TopRated returns rated providers ordered by rating, best first.
func (r *Repo) TopRated(ctx context.Context, limit int) ([]Provider, error) {
	var out []Provider
	if err := r.db.WithContext(ctx).
		Where("rating IS NOT NULL").
		Order("rating DESC, user_id ASC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Upsert writes the whole record, inserting it when the key is new.
func (r *Repo) Upsert(ctx context.Context, p *Provider) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *Repo) Delete(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&Provider{}, "user_id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Cards

func (r *Repo) CreateCard(ctx context.Context, c *ServiceCard) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *Repo) GetCard(ctx context.Context, id string) (*ServiceCard, error) {
	var c ServiceCard
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *Repo) CardsByProvider(ctx context.Context, providerID uint64) ([]ServiceCard, error) {
	var out []ServiceCard
	if err := r.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Order("created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) DeleteCard(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&ServiceCard{}, "id = ?", id).Error
}

// Reviews

func (r *Repo) CreateReview(ctx context.Context, rv *Review) error {
	return r.db.WithContext(ctx).Create(rv).Error
}

func (r *Repo) ReviewsByProvider(ctx context.Context, providerID uint64) ([]Review, error) {
	var out []Review
	if err := r.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Order("created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Views

func (r *Repo) CreateView(ctx context.Context, v *ProfileView) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *Repo) CountViews(ctx context.Context, providerID uint64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&ProfileView{}).Where("provider_id = ?", providerID).Count(&n).Error
	return n, err
}
