package request

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, req *ContactRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *Repo) Get(ctx context.Context, id string) (*ContactRequest, error) {
	var req ContactRequest
	if err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// ByProvider returns the provider's requests, newest first. An empty status lists all.
func (r *Repo) ByProvider(ctx context.Context, providerID uint64, status Status) ([]ContactRequest, error) {
	q := r.db.WithContext(ctx).Where("provider_id = ?", providerID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []ContactRequest
	if err := q.Order("created_at DESC, id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ByUser returns the customer's requests, newest first.
func (r *Repo) ByUser(ctx context.Context, userID uint64) ([]ContactRequest, error) {
	var out []ContactRequest
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) ExistsActive(ctx context.Context, userID, providerID uint64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&ContactRequest{}).
		Where("user_id = ? AND provider_id = ? AND status IN ?", userID, providerID, []Status{StatusPending, StatusAccepted}).
		Count(&n).Error
	return n > 0, err
}

func (r *Repo) HasAccepted(ctx context.Context, userID, providerID uint64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&ContactRequest{}).
		Where("user_id = ? AND provider_id = ? AND status = ?", userID, providerID, StatusAccepted).
		Count(&n).Error
	return n > 0, err
}

// Latest returns the newest request from user to provider, or nil.
func (r *Repo) Latest(ctx context.Context, userID, providerID uint64) (*ContactRequest, error) {
	var out []ContactRequest
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND provider_id = ?", userID, providerID).
		Order("created_at DESC, id DESC").
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}

// UpdateStatus moves a request from one status to another only if it is still in from.
// It reports whether a row changed.
func (r *Repo) UpdateStatus(ctx context.Context, id string, from, to Status) (bool, error) {
	fields := map[string]any{
		"status":     to,
		"updated_at": time.Now(),
	}
	if !to.Active() {
		fields["active_key"] = nil
	}
	res := r.db.WithContext(ctx).Model(&ContactRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(fields)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

type statusCount struct {
	Status Status
	N      int64
}

// CountByStatus returns the provider's request counts keyed by status.
func (r *Repo) CountByStatus(ctx context.Context, providerID uint64) (map[Status]int64, error) {
	var rows []statusCount
	if err := r.db.WithContext(ctx).Model(&ContactRequest{}).
		Select("status, COUNT(*) AS n").
		Where("provider_id = ?", providerID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := map[Status]int64{StatusPending: 0, StatusAccepted: 0, StatusRejected: 0}
	for _, row := range rows {
		out[row.Status] = row.N
	}
	return out, nil
}
