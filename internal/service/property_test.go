package service

import (
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/unitnode/unitnode/internal/model"
	"github.com/unitnode/unitnode/internal/repository"
)

type fakePropertyRepo struct {
	mu         sync.Mutex
	properties map[string]*model.Property
}

func newFakePropertyRepo() *fakePropertyRepo {
	return &fakePropertyRepo{properties: make(map[string]*model.Property)}
}

func (r *fakePropertyRepo) Create(property *model.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *property
	r.properties[property.ID] = &clone
	return nil
}

func (r *fakePropertyRepo) ByID(id string) (*model.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	property, ok := r.properties[id]
	if !ok {
		return nil, repository.ErrPropertyNotFound
	}
	clone := *property
	return &clone, nil
}

func (r *fakePropertyRepo) ByUser(userID string) ([]model.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []model.Property{}
	for _, property := range r.properties {
		if property.UserID == userID {
			out = append(out, *property)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakePropertyRepo) Update(property *model.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.properties[property.ID]; !ok {
		return repository.ErrPropertyNotFound
	}
	clone := *property
	r.properties[property.ID] = &clone
	return nil
}

func (r *fakePropertyRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.properties[id]; !ok {
		return repository.ErrPropertyNotFound
	}
	delete(r.properties, id)
	return nil
}

func TestPropertyCreateDefaults(t *testing.T) {
	svc := NewPropertyService(newFakePropertyRepo())

	created, err := svc.Create("user-1", &model.Property{Address: "12 Oak Lane"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, "user-1", created.UserID)
	require.Equal(t, "N/A", created.MainTenant)
	require.False(t, created.CreatedAt.IsZero())
}

func TestPropertyCreateRequiresAddress(t *testing.T) {
	svc := NewPropertyService(newFakePropertyRepo())

	_, err := svc.Create("user-1", &model.Property{Address: "   "})
	require.ErrorIs(t, err, ErrAddressRequired)
}

func TestPropertyListScopedToUser(t *testing.T) {
	svc := NewPropertyService(newFakePropertyRepo())

	_, err := svc.Create("user-1", &model.Property{Address: "12 Oak Lane"})
	require.NoError(t, err)
	_, err = svc.Create("user-2", &model.Property{Address: "9 Elm Street"})
	require.NoError(t, err)

	list, err := svc.List("user-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "12 Oak Lane", list[0].Address)
}

func TestPropertyByIDOwnership(t *testing.T) {
	svc := NewPropertyService(newFakePropertyRepo())

	created, err := svc.Create("user-1", &model.Property{Address: "12 Oak Lane"})
	require.NoError(t, err)

	got, err := svc.ByID("user-1", created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)

	// Someone else's property reads as not found
	_, err = svc.ByID("user-2", created.ID)
	require.ErrorIs(t, err, ErrPropertyNotFound)
}

func TestPropertyUpdatePartial(t *testing.T) {
	svc := NewPropertyService(newFakePropertyRepo())

	created, err := svc.Create("user-1", &model.Property{Address: "12 Oak Lane", Rent: 1200})
	require.NoError(t, err)

	tenant := "John Smith"
	occupied := true
	updated, err := svc.Update("user-1", created.ID, PropertyUpdate{
		MainTenant: &tenant,
		Occupied:   &occupied,
	})
	require.NoError(t, err)
	require.Equal(t, "John Smith", updated.MainTenant)
	require.True(t, updated.Occupied)
	require.Equal(t, 1200.0, updated.Rent)
	require.Equal(t, "12 Oak Lane", updated.Address)
}

func TestPropertyUpdateOwnership(t *testing.T) {
	svc := NewPropertyService(newFakePropertyRepo())

	created, err := svc.Create("user-1", &model.Property{Address: "12 Oak Lane"})
	require.NoError(t, err)

	rent := 900.0
	_, err = svc.Update("user-2", created.ID, PropertyUpdate{Rent: &rent})
	require.ErrorIs(t, err, ErrPropertyNotFound)
}

func TestPropertyDelete(t *testing.T) {
	svc := NewPropertyService(newFakePropertyRepo())

	created, err := svc.Create("user-1", &model.Property{Address: "12 Oak Lane"})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete("user-2", created.ID), ErrPropertyNotFound)
	require.NoError(t, svc.Delete("user-1", created.ID))

	_, err = svc.ByID("user-1", created.ID)
	require.ErrorIs(t, err, ErrPropertyNotFound)
}
