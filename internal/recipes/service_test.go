package recipes

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/comal-erp/comal-erp/internal/costing"
)

type fakeRepo struct {
	products map[int64]bool
	kits     map[int64][]KitItemInput
	upserts  int
	deletes  int
}

func newRepo(productIDs ...int64) *fakeRepo {
	products := map[int64]bool{}
	for _, id := range productIDs {
		products[id] = true
	}
	return &fakeRepo{products: products, kits: map[int64][]KitItemInput{}}
}

func (f *fakeRepo) ListByParent(_ context.Context, parentID int64) ([]KitLine, error) {
	lines := make([]KitLine, 0, len(f.kits[parentID]))
	for _, item := range f.kits[parentID] {
		lines = append(lines, KitLine{ParentID: parentID, ChildID: item.ChildID, Quantity: item.Quantity})
	}
	return lines, nil
}

func (f *fakeRepo) Upsert(_ context.Context, parentID int64, items []KitItemInput) error {
	f.upserts++
	merged := append([]KitItemInput{}, f.kits[parentID]...)
	for _, item := range items {
		replaced := false
		for i := range merged {
			if merged[i].ChildID == item.ChildID {
				merged[i] = item
				replaced = true
			}
		}
		if !replaced {
			merged = append(merged, item)
		}
	}
	f.kits[parentID] = merged
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, parentID, childID int64) error {
	kit := f.kits[parentID]
	for i, item := range kit {
		if item.ChildID == childID {
			f.kits[parentID] = append(kit[:i], kit[i+1:]...)
			f.deletes++
			return nil
		}
	}
	return ErrNotFound
}

func (f *fakeRepo) ProductsExist(_ context.Context, ids []int64) (map[int64]bool, error) {
	found := map[int64]bool{}
	for _, id := range ids {
		if f.products[id] {
			found[id] = true
		}
	}
	return found, nil
}

type fakeProber struct {
	err    error
	calls  int
	parent int64
	childs []int64
}

func (f *fakeProber) ProbeCycle(_ context.Context, parentID int64, childIDs []int64) error {
	f.calls++
	f.parent = parentID
	f.childs = childIDs
	return f.err
}

type fakeInvalidator struct {
	bumps int
}

func (f *fakeInvalidator) Invalidate(context.Context) error {
	f.bumps++
	return nil
}

func newTestService(repo *fakeRepo, prober *fakeProber, invalidator *fakeInvalidator) *Service {
	return NewService(repo, prober, invalidator, slog.New(slog.DiscardHandler))
}

func TestUpsertPersistsAndBumpsCache(t *testing.T) {
	repo := newRepo(3, 1, 2)
	prober := &fakeProber{}
	invalidator := &fakeInvalidator{}
	svc := newTestService(repo, prober, invalidator)

	err := svc.Upsert(context.Background(), 3, []KitItemInput{
		{ChildID: 1, Quantity: 2},
		{ChildID: 2, Quantity: 0.25},
	})
	require.NoError(t, err)
	require.Equal(t, 1, repo.upserts)
	require.Equal(t, 1, invalidator.bumps)
	require.Equal(t, 1, prober.calls)
	require.Equal(t, int64(3), prober.parent)
	require.Equal(t, []int64{1, 2}, prober.childs)
}

func TestUpsertRejectsSelfReference(t *testing.T) {
	repo := newRepo(3)
	svc := newTestService(repo, &fakeProber{}, &fakeInvalidator{})

	err := svc.Upsert(context.Background(), 3, []KitItemInput{{ChildID: 3, Quantity: 1}})
	require.ErrorIs(t, err, ErrSelfReference)
	require.Zero(t, repo.upserts)
}

func TestUpsertRejectsBadQuantity(t *testing.T) {
	repo := newRepo(3, 1)
	svc := newTestService(repo, &fakeProber{}, &fakeInvalidator{})

	for _, quantity := range []float64{0, -1} {
		err := svc.Upsert(context.Background(), 3, []KitItemInput{{ChildID: 1, Quantity: quantity}})
		require.ErrorIs(t, err, ErrBadQuantity)
	}
	require.Zero(t, repo.upserts)
}

func TestUpsertRejectsUnknownChild(t *testing.T) {
	repo := newRepo(3, 1)
	svc := newTestService(repo, &fakeProber{}, &fakeInvalidator{})

	err := svc.Upsert(context.Background(), 3, []KitItemInput{
		{ChildID: 1, Quantity: 1},
		{ChildID: 99, Quantity: 1},
	})
	require.ErrorIs(t, err, ErrUnknownChild)
	require.Zero(t, repo.upserts)
}

func TestUpsertUnknownParent(t *testing.T) {
	repo := newRepo(1)
	svc := newTestService(repo, &fakeProber{}, &fakeInvalidator{})

	err := svc.Upsert(context.Background(), 3, []KitItemInput{{ChildID: 1, Quantity: 1}})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpsertRejectsCycleBeforeWrite(t *testing.T) {
	repo := newRepo(3, 4)
	prober := &fakeProber{err: &costing.CyclicRecipeError{Chain: []int64{3, 4, 3}}}
	invalidator := &fakeInvalidator{}
	svc := newTestService(repo, prober, invalidator)

	err := svc.Upsert(context.Background(), 3, []KitItemInput{{ChildID: 4, Quantity: 1}})
	var cyclic *costing.CyclicRecipeError
	require.ErrorAs(t, err, &cyclic)
	require.Zero(t, repo.upserts)
	require.Zero(t, invalidator.bumps)
}

func TestDeleteBumpsCache(t *testing.T) {
	repo := newRepo(3, 1)
	repo.kits[3] = []KitItemInput{{ChildID: 1, Quantity: 2}}
	invalidator := &fakeInvalidator{}
	svc := newTestService(repo, &fakeProber{}, invalidator)

	require.NoError(t, svc.Delete(context.Background(), 3, 1))
	require.Equal(t, 1, invalidator.bumps)
	require.Empty(t, repo.kits[3])
}

func TestDeleteMissingEdge(t *testing.T) {
	repo := newRepo(3)
	svc := newTestService(repo, &fakeProber{}, &fakeInvalidator{})
	require.ErrorIs(t, svc.Delete(context.Background(), 3, 1), ErrNotFound)
}
