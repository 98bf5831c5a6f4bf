package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RevokedToken is one denylist entry; rows stay at least until the token's
// natural expiry and are removed by PurgeExpired.
type RevokedToken struct {
	ID        int64     `gorm:"primaryKey"`
	JTI       string    `gorm:"column:jti;uniqueIndex;not null"`
	UserID    int64     `gorm:"column:user_id"`
	ExpiresAt time.Time `gorm:"column:expires_at"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (RevokedToken) TableName() string {
	return "revoked_tokens"
}

// Denylist is the database-backed revoked-token store.
type Denylist struct {
	db *gorm.DB
}

func NewDenylist(db *gorm.DB) *Denylist {
	return &Denylist{db: db}
}

// Revoke records a jti; revoking the same token twice is a no-op.
func (d *Denylist) Revoke(ctx context.Context, jti string, userID int64, expiresAt time.Time) error {
	entry := &RevokedToken{JTI: jti, UserID: userID, ExpiresAt: expiresAt}
	return d.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(entry).Error
}

func (d *Denylist) Contains(ctx context.Context, jti string) (bool, error) {
	var count int64
	err := d.db.WithContext(ctx).
		Model(&RevokedToken{}).
		Where("jti = ?", jti).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// PurgeExpired removes entries whose token has expired anyway; safe to run
// from a cron.
func (d *Denylist) PurgeExpired(ctx context.Context) (int64, error) {
	res := d.db.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&RevokedToken{})
	return res.RowsAffected, res.Error
}
