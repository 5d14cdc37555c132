package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/LeomirDias/gpmd-sys/internal/entity"
)

type OrderRepository struct {
	DB *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{DB: db}
}

func (r *OrderRepository) Create(ctx context.Context, order *entity.Order) error {
	items, err := json.Marshal(order.Products)
	if err != nil {
		return fmt.Errorf("erro ao serializar itens do pedido: %w", err)
	}

	query := `
		INSERT INTO orders (order_id, order_date, order_type, total_amount, status, products, lead_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8)
		RETURNING id
	`
	err = r.DB.QueryRowContext(ctx, query,
		order.OrderToken,
		order.OrderDate,
		order.Type,
		order.TotalAmount,
		order.Status,
		string(items),
		order.LeadID,
		order.CreatedAt,
	).Scan(&order.ID)
	if err != nil {
		return fmt.Errorf("erro ao criar pedido: %w", err)
	}
	return nil
}

// MarkDelivered é idempotente: repetir não muda nada.
func (r *OrderRepository) MarkDelivered(ctx context.Context, id string) error {
	query := `UPDATE orders SET status = $2 WHERE id = $1`
	if _, err := r.DB.ExecContext(ctx, query, id, entity.OrderDelivered); err != nil {
		return fmt.Errorf("erro ao marcar pedido %s como entregue: %w", id, err)
	}
	return nil
}

// ListUndelivered devolve pedidos criados antes de `before` que nunca chegaram a delivered.
func (r *OrderRepository) ListUndelivered(ctx context.Context, before time.Time, limit int) ([]*entity.Order, error) {
	query := `
		SELECT id, order_id, order_date, order_type, total_amount, status, products, lead_id, created_at
		FROM orders
		WHERE status <> $1 AND created_at < $2
		ORDER BY created_at
		LIMIT $3
	`
	rows, err := r.DB.QueryContext(ctx, query, entity.OrderDelivered, before, limit)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar pedidos pendentes: %w", err)
	}
	defer rows.Close()

	var orders []*entity.Order
	for rows.Next() {
		var o entity.Order
		var items []byte
		var leadID sql.NullString
		if err := rows.Scan(&o.ID, &o.OrderToken, &o.OrderDate, &o.Type, &o.TotalAmount, &o.Status, &items, &leadID, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("erro ao ler pedido: %w", err)
		}
		if err := json.Unmarshal(items, &o.Products); err != nil {
			return nil, fmt.Errorf("itens inválidos no pedido %s: %w", o.ID, err)
		}
		o.LeadID = fromNull(leadID)
		orders = append(orders, &o)
	}
	return orders, rows.Err()
}
