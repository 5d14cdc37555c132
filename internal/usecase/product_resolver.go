package usecase

import (
	"context"
	"fmt"

	"github.com/LeomirDias/gpmd-sys/internal/entity"
)

type ProductResolver struct {
	Repo entity.ProductRepositoryInterface
}

func NewProductResolver(repo entity.ProductRepositoryInterface) *ProductResolver {
	return &ProductResolver{Repo: repo}
}

// ByIDs devolve os produtos na ordem pedida, repetindo os duplicados.
func (r *ProductResolver) ByIDs(ctx context.Context, ids []string) ([]*entity.Product, error) {
	return r.resolve(ctx, ids, "id", r.Repo.FindByIDs, func(p *entity.Product) string { return p.ID })
}

// ByExternalIDs resolve pelas referências do checkout.
func (r *ProductResolver) ByExternalIDs(ctx context.Context, refs []string) ([]*entity.Product, error) {
	return r.resolve(ctx, refs, "external_id", r.Repo.FindByExternalIDs, func(p *entity.Product) string { return p.ExternalID })
}

func (r *ProductResolver) resolve(
	ctx context.Context,
	refs []string,
	field string,
	find func(context.Context, []string) ([]*entity.Product, error),
	key func(*entity.Product) string,
) ([]*entity.Product, error) {
	unique := dedupe(refs)
	if len(unique) == 0 {
		return nil, nil
	}

	found, err := find(ctx, unique)
	if err != nil {
		return nil, &TechnicalError{Code: "PRODUCT_LOOKUP", Message: fmt.Sprintf("erro ao buscar produtos por %s", field), Err: err}
	}

	byKey := make(map[string]*entity.Product, len(found))
	for _, p := range found {
		byKey[key(p)] = p
	}

	var missing []string
	for _, ref := range unique {
		if _, ok := byKey[ref]; !ok {
			missing = append(missing, ref)
		}
	}
	if len(missing) > 0 {
		return nil, &ProductsNotFoundError{Field: field, Missing: missing}
	}

	out := make([]*entity.Product, 0, len(refs))
	for _, ref := range refs {
		out = append(out, byKey[ref])
	}
	return out, nil
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func uniqueProducts(products []*entity.Product) []*entity.Product {
	seen := make(map[string]struct{}, len(products))
	out := make([]*entity.Product, 0, len(products))
	for _, p := range products {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}

func productIDs(products []*entity.Product) []string {
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return ids
}
