package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/godi-api/internal/domain/entity"
	"github.com/sangkips/godi-api/internal/domain/enum"
	"github.com/sangkips/godi-api/internal/domain/repository"
	"github.com/sangkips/godi-api/internal/infrastructure/events"
	"github.com/sangkips/godi-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProductFixture(products ...entity.Product) (*ProductService, *memProductRepo, *capturePublisher) {
	repo := newMemProductRepo(products...)
	pub := &capturePublisher{}
	return NewProductService(repo, pub, nil), repo, pub
}

func TestCreateProduct_Defaults(t *testing.T) {
	svc, _, pub := newProductFixture()
	owner := uuid.New()

	product, err := svc.CreateProduct(context.Background(), &CreateProductInput{
		UserID:         owner,
		Name:           strPtr("  spiral notebook "),
		Category:       strPtr("Notebooks"),
		Price:          floatPtr(4.999),
		AvailableStock: floatPtr(25),
	})

	require.NoError(t, err)
	assert.Equal(t, "SPIRAL NOTEBOOK", product.Name)
	assert.Equal(t, owner, product.UserID)
	assert.Equal(t, "5", product.Price.String())
	assert.Equal(t, 25, product.AvailableStock)
	assert.Equal(t, entity.DefaultMaxStock, product.MaxStock)
	assert.Equal(t, 0, product.MinStock)
	assert.Equal(t, 0, product.TotalSold)
	assert.Nil(t, product.Supplier)
	assert.Equal(t, []events.EventType{events.EventProductCreated}, pub.types())
}

func TestCreateProduct_CollectsEveryInvalidField(t *testing.T) {
	svc, _, _ := newProductFixture()

	_, err := svc.CreateProduct(context.Background(), &CreateProductInput{
		UserID:         uuid.New(),
		Name:           strPtr("   "),
		Category:       strPtr("Food"),
		AvailableStock: floatPtr(2.5),
		MinStock:       floatPtr(-1),
		Image:          strPtr(strings.Repeat("x", 501)),
	})

	require.Error(t, err)
	appErr := apperror.GetAppError(err)
	assert.Equal(t, 400, appErr.Code)
	assert.Equal(t, []string{
		"Invalid value for field 'name'",
		"Invalid value for field 'category'",
		"Field 'price' is required",
		"Invalid value for field 'available_stock'",
		"Invalid value for field 'min_stock'",
		"Invalid value for field 'image'",
	}, appErr.Details)
}

func TestCreateProduct_MinAboveMax(t *testing.T) {
	svc, _, _ := newProductFixture()

	_, err := svc.CreateProduct(context.Background(), &CreateProductInput{
		UserID:   uuid.New(),
		Name:     strPtr("pen"),
		Category: strPtr("Writing"),
		Price:    floatPtr(1),
		MaxStock: floatPtr(5),
		MinStock: floatPtr(6),
	})

	require.Error(t, err)
	assert.Equal(t, []string{"min_stock cannot be greater than max_stock"}, apperror.GetAppError(err).Details)
}

func TestCreateProduct_StorageFailure(t *testing.T) {
	svc, repo, _ := newProductFixture()
	repo.createErr = errors.New("db down")

	_, err := svc.CreateProduct(context.Background(), &CreateProductInput{
		UserID:   uuid.New(),
		Name:     strPtr("pen"),
		Category: strPtr("Writing"),
		Price:    floatPtr(1),
	})

	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindPersistence))
}

func TestUpdateProduct_MergesSuppliedFields(t *testing.T) {
	owner := uuid.New()
	existing := entity.Product{ID: uuid.New(), UserID: owner, Name: "ERASER", Category: enum.CategoryAccessories, AvailableStock: 4, MaxStock: 50, MinStock: 2, TotalSold: 9}
	svc, _, pub := newProductFixture(existing)

	updated, err := svc.UpdateProduct(context.Background(), &UpdateProductInput{
		UserID:   owner,
		ID:       existing.ID,
		Name:     strPtr(" soft eraser "),
		MinStock: floatPtr(10),
	})

	require.NoError(t, err)
	assert.Equal(t, "soft eraser", updated.Name)
	assert.Equal(t, 10, updated.MinStock)
	assert.Equal(t, 50, updated.MaxStock)
	assert.Equal(t, 4, updated.AvailableStock)
	assert.Equal(t, 9, updated.TotalSold)
	assert.Equal(t, []events.EventType{events.EventProductUpdated}, pub.types())
}

func TestUpdateProduct_MinAboveStoredMax(t *testing.T) {
	owner := uuid.New()
	existing := entity.Product{ID: uuid.New(), UserID: owner, Name: "INK", MaxStock: 20}
	svc, _, _ := newProductFixture(existing)

	_, err := svc.UpdateProduct(context.Background(), &UpdateProductInput{
		UserID:   owner,
		ID:       existing.ID,
		MinStock: floatPtr(21),
	})

	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestUpdateProduct_NotOwned(t *testing.T) {
	existing := entity.Product{ID: uuid.New(), UserID: uuid.New(), Name: "INK", MaxStock: 20}
	svc, _, _ := newProductFixture(existing)

	_, err := svc.UpdateProduct(context.Background(), &UpdateProductInput{
		UserID: uuid.New(),
		ID:     existing.ID,
		Name:   strPtr("mine now"),
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
	assert.Equal(t, "Product not found", apperror.GetAppError(err).Message)
}

func TestDeleteProduct(t *testing.T) {
	owner := uuid.New()
	existing := entity.Product{ID: uuid.New(), UserID: owner, Name: "RULER"}
	svc, _, pub := newProductFixture(existing)

	require.NoError(t, svc.DeleteProduct(context.Background(), owner, existing.ID))
	assert.Equal(t, []events.EventType{events.EventProductDeleted}, pub.types())

	err := svc.DeleteProduct(context.Background(), owner, existing.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestListProducts_RepeatableAndReadOnly(t *testing.T) {
	owner := uuid.New()
	svc, _, pub := newProductFixture(
		entity.Product{ID: uuid.New(), UserID: owner, Name: "RULER", AvailableStock: 4, MaxStock: 100},
		entity.Product{ID: uuid.New(), UserID: owner, Name: "GLUE", AvailableStock: 0, MaxStock: 100},
		entity.Product{ID: uuid.New(), UserID: uuid.New(), Name: "ERASER"},
	)
	params := &repository.ProductFilterParams{Search: "  "}

	first, err := svc.ListProducts(context.Background(), owner, params)
	require.NoError(t, err)
	second, err := svc.ListProducts(context.Background(), owner, params)
	require.NoError(t, err)

	require.Len(t, first, 2)
	assert.Equal(t, first, second)
	assert.Empty(t, pub.types())
}

func TestAdjustStock(t *testing.T) {
	owner := uuid.New()
	existing := entity.Product{ID: uuid.New(), UserID: owner, Name: "GLUE", AvailableStock: 3, MaxStock: 100}
	svc, _, pub := newProductFixture(existing)

	product, err := svc.AdjustStock(context.Background(), owner, existing.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 10, product.AvailableStock)

	product, err = svc.AdjustStock(context.Background(), owner, existing.ID, -25)
	require.NoError(t, err)
	assert.Equal(t, 0, product.AvailableStock)
	assert.Equal(t, []events.EventType{events.EventStockChanged, events.EventStockChanged}, pub.types())

	for _, bad := range []float64{0, 1.5, 10001} {
		_, err = svc.AdjustStock(context.Background(), owner, existing.ID, bad)
		assert.True(t, apperror.IsKind(err, apperror.KindValidation), "change %v", bad)
	}

	_, err = svc.AdjustStock(context.Background(), uuid.New(), existing.ID, 1)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestDecrementStock_UnknownProduct(t *testing.T) {
	svc, _, pub := newProductFixture()

	err := svc.DecrementStock(context.Background(), uuid.New(), uuid.New(), 1)

	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	assert.Empty(t, pub.types())
}
