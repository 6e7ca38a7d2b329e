package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/accountabro/backend/internal/model"
)

type BlockRepository interface {
	// Create records that blocker blocks blocked. Repeating it is a no-op.
	Create(ctx context.Context, block *model.Block) error
	Delete(ctx context.Context, blockerID, blockedID string) error

	// Exists reports whether either profile blocks the other.
	Exists(ctx context.Context, a, b string) (bool, error)

	// Among returns every block whose two ends are both in profileIDs.
	Among(ctx context.Context, profileIDs []string) ([]*model.Block, error)
}

type blockRepository struct {
	db sqlx.ExtContext
}

func NewBlockRepository(db sqlx.ExtContext) BlockRepository {
	return &blockRepository{db: db}
}

func (r *blockRepository) Create(ctx context.Context, block *model.Block) error {
	if block.CreatedAt.IsZero() {
		block.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO blocks (blocker_id, blocked_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (blocker_id, blocked_id) DO NOTHING
	`, block.BlockerID, block.BlockedID, block.CreatedAt)
	return err
}

func (r *blockRepository) Delete(ctx context.Context, blockerID, blockedID string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM blocks WHERE blocker_id = $1 AND blocked_id = $2
	`, blockerID, blockedID)
	return err
}

func (r *blockRepository) Exists(ctx context.Context, a, b string) (bool, error) {
	var count int
	err := sqlx.GetContext(ctx, r.db, &count, `
		SELECT COUNT(*) FROM blocks
		WHERE (blocker_id = $1 AND blocked_id = $2) OR (blocker_id = $2 AND blocked_id = $1)
	`, a, b)
	return count > 0, err
}

func (r *blockRepository) Among(ctx context.Context, profileIDs []string) ([]*model.Block, error) {
	if len(profileIDs) < 2 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT * FROM blocks WHERE blocker_id IN (?) AND blocked_id IN (?)
	`, profileIDs, profileIDs)
	if err != nil {
		return nil, err
	}

	var blocks []*model.Block
	err = sqlx.SelectContext(ctx, r.db, &blocks, r.db.Rebind(query), args...)
	return blocks, err
}
