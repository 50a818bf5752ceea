package mysql

import (
	"context"

	requestDomain "srp-backend/internal/domain/request"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RequestRepository struct{ db *gorm.DB }

func NewRequestRepository(db *gorm.DB) *RequestRepository { return &RequestRepository{db: db} }

func (r *RequestRepository) Create(ctx context.Context, req *requestDomain.Request) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *RequestRepository) Save(ctx context.Context, req *requestDomain.Request) error {
	return r.db.WithContext(ctx).Save(req).Error
}

func (r *RequestRepository) GetByID(ctx context.Context, id uint64) (*requestDomain.Request, error) {
	var out requestDomain.Request
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, notFound(err, "request %d", id)
	}
	return &out, nil
}

func (r *RequestRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*requestDomain.Request, error) {
	var out requestDomain.Request
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&out).Error
	if err != nil {
		return nil, notFound(err, "request %d", id)
	}
	return &out, nil
}

func (r *RequestRepository) GetByKillmailID(ctx context.Context, killmailID uint64) (*requestDomain.Request, error) {
	var out requestDomain.Request
	if err := r.db.WithContext(ctx).Where("killmail_id = ?", killmailID).First(&out).Error; err != nil {
		return nil, notFound(err, "request for killmail %d", killmailID)
	}
	return &out, nil
}

func (r *RequestRepository) AddAction(ctx context.Context, a *requestDomain.Action) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *RequestRepository) ListActions(ctx context.Context, requestID uint64) ([]requestDomain.Action, error) {
	var out []requestDomain.Action
	err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

type KillmailRepository struct{ db *gorm.DB }

func NewKillmailRepository(db *gorm.DB) *KillmailRepository { return &KillmailRepository{db: db} }

func (r *KillmailRepository) GetByID(ctx context.Context, id uint64) (*requestDomain.Killmail, error) {
	var out requestDomain.Killmail
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, notFound(err, "killmail %d", id)
	}
	return &out, nil
}

// Save inserts k. A killmail already on file is left untouched.
func (r *KillmailRepository) Save(ctx context.Context, k *requestDomain.Killmail) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(k).Error
}
