package entity

import (
	"context"
	"net/url"
	"path"
	"strings"
	"time"
)

// Product é o material digital entregue ao cliente (ebook, curso).
type Product struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	Version      int       `json:"version"`
	ExternalID   string    `json:"external_id"`   // ID do produto no checkout (Cakto)
	ProviderPath string    `json:"provider_path"` // URL ou caminho do arquivo no storage
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FileName deriva o nome do anexo a partir do último segmento do storage locator.
func (p *Product) FileName() string {
	raw := p.ProviderPath
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	name := path.Base(strings.TrimRight(raw, "/"))
	if name == "" || name == "." || name == "/" {
		return p.Name + ".pdf"
	}
	if decoded, err := url.PathUnescape(name); err == nil {
		return decoded
	}
	return name
}

type ProductRepositoryInterface interface {
	FindByIDs(ctx context.Context, ids []string) ([]*Product, error)
	FindByExternalIDs(ctx context.Context, externalIDs []string) ([]*Product, error)
}
