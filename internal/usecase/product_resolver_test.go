package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/LeomirDias/gpmd-sys/internal/entity"
)

func TestProductResolverReportsExactlyMissing(t *testing.T) {
	repo := new(MockProductRepository)
	p1 := product("p1", "A", "a")
	p3 := product("p3", "C", "c")
	repo.On("FindByIDs", mock.Anything, []string{"p1", "p2", "p3"}).Return([]*entity.Product{p3, p1}, nil)

	_, err := NewProductResolver(repo).ByIDs(context.Background(), []string{"p1", "p2", "p3"})

	var notFound *ProductsNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, []string{"p2"}, notFound.Missing)
	assert.Equal(t, "id", notFound.Field)
}

func TestProductResolverReindexesAndKeepsDuplicates(t *testing.T) {
	repo := new(MockProductRepository)
	p1 := product("p1", "A", "a")
	p2 := product("p2", "B", "b")
	repo.On("FindByIDs", mock.Anything, []string{"p2", "p1"}).Return([]*entity.Product{p1, p2}, nil)

	got, err := NewProductResolver(repo).ByIDs(context.Background(), []string{"p2", "p1", "p2"})

	require.NoError(t, err)
	assert.Equal(t, []*entity.Product{p2, p1, p2}, got)
}

func TestProductResolverByExternalIDs(t *testing.T) {
	repo := new(MockProductRepository)
	p1 := product("p1", "A", "a")
	repo.On("FindByExternalIDs", mock.Anything, []string{"ext-p1", "ext-x"}).Return([]*entity.Product{p1}, nil)

	_, err := NewProductResolver(repo).ByExternalIDs(context.Background(), []string{"ext-p1", "ext-x"})

	var notFound *ProductsNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, []string{"ext-x"}, notFound.Missing)
	assert.Equal(t, "Nenhum produto com external_id: ext-x", notFound.Error())
}

func TestProductResolverWrapsRepositoryError(t *testing.T) {
	repo := new(MockProductRepository)
	repo.On("FindByIDs", mock.Anything, []string{"p1"}).Return(nil, errors.New("conn refused"))

	_, err := NewProductResolver(repo).ByIDs(context.Background(), []string{"p1"})

	assert.True(t, IsTechnicalError(err))
}
