package products

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/comal-erp/comal-erp/internal/costing"
	"github.com/comal-erp/comal-erp/internal/masterdata/shared"
)

type fakeRepo struct {
	nextID      int64
	items       map[int64]Product
	assignments map[int64]int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: map[int64]Product{}, assignments: map[int64]int64{}}
}

func (f *fakeRepo) List(_ context.Context, _ shared.ListFilters) ([]Product, int, error) {
	out := make([]Product, 0, len(f.items))
	for _, p := range f.items {
		out = append(out, p)
	}
	return out, len(out), nil
}

func (f *fakeRepo) Get(_ context.Context, id int64) (Product, error) {
	p, ok := f.items[id]
	if !ok {
		return Product{}, shared.ErrNotFound
	}
	return p, nil
}

func (f *fakeRepo) Create(_ context.Context, product Product) (Product, error) {
	f.nextID++
	product.ID = f.nextID
	f.items[product.ID] = product
	return product, nil
}

func (f *fakeRepo) Update(_ context.Context, id int64, product Product) error {
	if _, ok := f.items[id]; !ok {
		return shared.ErrNotFound
	}
	product.ID = id
	f.items[id] = product
	return nil
}

func (f *fakeRepo) AssignConversionUnit(_ context.Context, id, unitID int64) error {
	if _, ok := f.items[id]; !ok {
		return shared.ErrNotFound
	}
	f.assignments[id] = unitID
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.items[id]; !ok {
		return shared.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

type fakeInvalidator struct {
	bumps int
}

func (f *fakeInvalidator) Invalidate(context.Context) error {
	f.bumps++
	return nil
}

type fakeSuggester struct {
	units map[int64]*costing.Unit
}

func (f *fakeSuggester) ConversionSuggestion(_ context.Context, productID int64) (*costing.Unit, error) {
	unit, ok := f.units[productID]
	if !ok {
		return nil, &costing.DanglingReferenceError{ProductID: productID}
	}
	return unit, nil
}

func newTestService(repo *fakeRepo, invalidator *fakeInvalidator) *Service {
	return NewService(repo, invalidator, &fakeSuggester{}, slog.New(slog.DiscardHandler))
}

func validProduct() Product {
	return Product{Code: "RM-001", Name: "Fish", Kind: KindRawMaterial, PurchasePrice: 100, IsActive: true}
}

func TestCreateBumpsCostCache(t *testing.T) {
	repo := newFakeRepo()
	invalidator := &fakeInvalidator{}
	svc := newTestService(repo, invalidator)

	created, err := svc.Create(context.Background(), validProduct())
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Equal(t, 1, invalidator.bumps)
}

func TestCreateRejectsMissingFields(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeInvalidator{})

	p := validProduct()
	p.Code = "   "
	_, err := svc.Create(context.Background(), p)
	require.ErrorIs(t, err, shared.ErrRequiredField)

	p = validProduct()
	p.Name = ""
	_, err = svc.Create(context.Background(), p)
	require.ErrorIs(t, err, shared.ErrRequiredField)
}

func TestCreateRejectsUnknownKind(t *testing.T) {
	invalidator := &fakeInvalidator{}
	svc := newTestService(newFakeRepo(), invalidator)

	p := validProduct()
	p.Kind = "beverage"
	_, err := svc.Create(context.Background(), p)
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Zero(t, invalidator.bumps)
}

func TestUpdateBumpsCostCache(t *testing.T) {
	repo := newFakeRepo()
	invalidator := &fakeInvalidator{}
	svc := newTestService(repo, invalidator)

	created, err := svc.Create(context.Background(), validProduct())
	require.NoError(t, err)

	created.PurchasePrice = 120
	require.NoError(t, svc.Update(context.Background(), created.ID, created))
	require.Equal(t, 2, invalidator.bumps)

	stored, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, 120.0, stored.PurchasePrice)
}

func TestAcceptConversionUnit(t *testing.T) {
	repo := newFakeRepo()
	invalidator := &fakeInvalidator{}
	svc := newTestService(repo, invalidator)

	created, err := svc.Create(context.Background(), validProduct())
	require.NoError(t, err)

	require.NoError(t, svc.AcceptConversionUnit(context.Background(), created.ID, 7))
	require.Equal(t, int64(7), repo.assignments[created.ID])
	require.Equal(t, 2, invalidator.bumps)

	require.ErrorIs(t, svc.AcceptConversionUnit(context.Background(), 0, 7), shared.ErrInvalidID)
	require.ErrorIs(t, svc.AcceptConversionUnit(context.Background(), created.ID, 0), shared.ErrInvalidID)
}

func TestSuggestConversionUnit(t *testing.T) {
	repo := newFakeRepo()
	suggester := &fakeSuggester{units: map[int64]*costing.Unit{
		1: {ID: 7, Name: "kilo"},
		2: nil,
	}}
	svc := NewService(repo, &fakeInvalidator{}, suggester, slog.New(slog.DiscardHandler))

	unit, err := svc.SuggestConversionUnit(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, int64(7), unit.ID)

	unit, err = svc.SuggestConversionUnit(context.Background(), 2)
	require.NoError(t, err)
	require.Nil(t, unit)

	_, err = svc.SuggestConversionUnit(context.Background(), 3)
	require.ErrorIs(t, err, shared.ErrNotFound)

	_, err = svc.SuggestConversionUnit(context.Background(), 0)
	require.ErrorIs(t, err, shared.ErrInvalidID)
}

func TestDeleteUnknownProduct(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeInvalidator{})
	require.ErrorIs(t, svc.Delete(context.Background(), 42), shared.ErrNotFound)
}
