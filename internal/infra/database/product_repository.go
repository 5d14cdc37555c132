package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/LeomirDias/gpmd-sys/internal/entity"
)

type ProductRepository struct {
	DB *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{DB: db}
}

const productColumns = `id, name, type, version, external_id, provider_path, created_at, updated_at`

// FindByIDs não garante ordem nem erro para ids ausentes; quem chama reindexa.
func (r *ProductRepository) FindByIDs(ctx context.Context, ids []string) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id::text = ANY($1)`
	return r.query(ctx, query, ids)
}

func (r *ProductRepository) FindByExternalIDs(ctx context.Context, externalIDs []string) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE external_id::text = ANY($1)`
	return r.query(ctx, query, externalIDs)
}

func (r *ProductRepository) query(ctx context.Context, query string, refs []string) ([]*entity.Product, error) {
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(refs))
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar produtos: %w", err)
	}
	defer rows.Close()

	var products []*entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Type, &p.Version, &p.ExternalID, &p.ProviderPath, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("erro ao ler produto: %w", err)
		}
		products = append(products, &p)
	}
	return products, rows.Err()
}
