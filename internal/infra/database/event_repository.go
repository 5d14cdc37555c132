package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/LeomirDias/gpmd-sys/internal/entity"
)

type EventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{DB: db}
}

func (r *EventRepository) Create(ctx context.Context, event *entity.Event) error {
	query := `
		INSERT INTO events (type, category, "to", subject, product_id, sent_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		event.Type,
		event.Category,
		event.To,
		event.Subject,
		event.ProductID,
		event.SentAt,
		event.CreatedAt,
		event.UpdatedAt,
	).Scan(&event.ID)
	if err != nil {
		return fmt.Errorf("erro ao registrar evento %s: %w", event.Type, err)
	}
	return nil
}
