package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/LeomirDias/gpmd-sys/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

const leadColumns = `id, landing_source, name, email, phone, contact_type, user_type,
	consent_marketing, conversion_status, remarketing_status, product_id, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanLead(row scanner) (*entity.Lead, error) {
	var l entity.Lead
	var email, phone, productID sql.NullString
	err := row.Scan(
		&l.ID, &l.LandingSource, &l.Name, &email, &phone, &l.ContactType, &l.UserType,
		&l.ConsentMarketing, &l.ConversionStatus, &l.RemarketingStatus, &productID, &l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.Email = fromNull(email)
	l.Phone = fromNull(phone)
	l.ProductID = fromNull(productID)
	return &l, nil
}

// FindByContact casa por email OU telefone, ignorando o que vier nulo.
func (r *LeadRepository) FindByContact(ctx context.Context, email, phone *string) (*entity.Lead, error) {
	if email == nil && phone == nil {
		return nil, entity.ErrLeadContactRequired
	}

	query := `
		SELECT ` + leadColumns + `
		FROM leads
		WHERE ($1::text IS NOT NULL AND email = $1)
		   OR ($2::text IS NOT NULL AND phone = $2)
		ORDER BY created_at
		LIMIT 1
	`
	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, email, phone))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar lead: %w", err)
	}
	return lead, nil
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (
			landing_source, name, email, phone, contact_type, user_type,
			consent_marketing, conversion_status, remarketing_status, product_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		lead.LandingSource,
		lead.Name,
		lead.Email,
		lead.Phone,
		lead.ContactType,
		lead.UserType,
		lead.ConsentMarketing,
		lead.ConversionStatus,
		lead.RemarketingStatus,
		lead.ProductID,
		lead.CreatedAt,
	).Scan(&lead.ID)
	if isUniqueViolation(err) {
		return entity.ErrLeadContactTaken
	}
	if err != nil {
		return fmt.Errorf("erro ao criar lead: %w", err)
	}
	return nil
}

func (r *LeadRepository) Update(ctx context.Context, lead *entity.Lead) error {
	query := `
		UPDATE leads SET
			name = $2,
			email = $3,
			phone = $4,
			contact_type = $5,
			conversion_status = $6,
			product_id = $7
		WHERE id = $1
	`
	res, err := r.DB.ExecContext(ctx, query,
		lead.ID, lead.Name, lead.Email, lead.Phone, lead.ContactType, lead.ConversionStatus, lead.ProductID)
	if isUniqueViolation(err) {
		return entity.ErrLeadContactTaken
	}
	if err != nil {
		return fmt.Errorf("erro ao atualizar lead: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrLeadNotFound
	}
	return nil
}

func (r *LeadRepository) UpdateUserType(ctx context.Context, id, userType string) (*entity.Lead, error) {
	query := `UPDATE leads SET user_type = $2 WHERE id = $1 RETURNING ` + leadColumns
	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, id, userType))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao atualizar user_type: %w", err)
	}
	return lead, nil
}

func fromNull(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
