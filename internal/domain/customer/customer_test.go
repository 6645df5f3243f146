package customer

import (
	"context"
	"errors"
	"testing"

	"github.com/example/ec-fulfillment/internal/domain/domainerr"
	"github.com/example/ec-fulfillment/internal/domain/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	byID      map[string]*Customer
	FindErr   error
	SaveCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{byID: make(map[string]*Customer)}
}

func (f *fakeStore) FindByID(_ context.Context, id string) (*Customer, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, ErrCustomerNotFound
	}
	return c.Clone(), nil
}

func (f *fakeStore) FindByEmail(_ context.Context, email string) (*Customer, error) {
	if f.FindErr != nil {
		return nil, f.FindErr
	}
	for _, c := range f.byID {
		if c.Email == NormalizeEmail(email) {
			return c.Clone(), nil
		}
	}
	return nil, ErrCustomerNotFound
}

func (f *fakeStore) GetPasswordHistory(context.Context, string) ([]string, error) {
	return nil, nil
}

func (f *fakeStore) UpdatePassword(context.Context, string, string, int) error {
	return nil
}

func (f *fakeStore) Save(_ context.Context, c *Customer) error {
	f.SaveCalls++
	f.byID[c.ID] = c.Clone()
	return nil
}

func newTestCustomerService() (*Service, *fakeStore) {
	store := newFakeStore()
	return NewService(store), store
}

var testAddress = value.Address{Line1: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "US"}

// ============================================
// Customer Tests
// ============================================

func TestNew(t *testing.T) {
	c, err := New("  Alice@Example.COM ", " Alice ")

	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", c.Email)
	assert.Equal(t, "Alice", c.Name)
	assert.True(t, c.Active)
	assert.Nil(t, c.ShippingAddress)
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		cName   string
		wantErr error
	}{
		{"empty email", "", "Alice", ErrInvalidEmail},
		{"malformed email", "not-an-email", "Alice", ErrInvalidEmail},
		{"empty name", "a@b.com", " ", ErrInvalidName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.email, tt.cName)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, domainerr.ErrValidation)
		})
	}
}

func TestCustomer_Addresses(t *testing.T) {
	c, err := New("a@b.com", "A")
	require.NoError(t, err)

	addr := testAddress
	require.NoError(t, c.SetShippingAddress(&addr))
	addr.City = "Changed"
	assert.Equal(t, "Springfield", c.ShippingAddress.City)

	assert.ErrorIs(t, c.SetBillingAddress(&value.Address{}), domainerr.ErrValidation)
	assert.Nil(t, c.BillingAddress)

	require.NoError(t, c.SetShippingAddress(nil))
	assert.Nil(t, c.ShippingAddress)
}

func TestCustomer_ActivateDeactivate(t *testing.T) {
	c, err := New("a@b.com", "A")
	require.NoError(t, err)

	c.Deactivate()
	assert.False(t, c.Active)
	c.Activate()
	assert.True(t, c.Active)
}

// ============================================
// Service Tests
// ============================================

func TestService_Register(t *testing.T) {
	svc, store := newTestCustomerService()

	c, err := svc.Register(context.Background(), "a@b.com", "A")

	require.NoError(t, err)
	assert.Equal(t, 1, store.SaveCalls)
	got, err := svc.Get(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", got.Email)
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	svc, store := newTestCustomerService()
	_, err := svc.Register(context.Background(), "a@b.com", "A")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "A@B.com", "Other")

	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.ErrorIs(t, err, domainerr.ErrDuplicate)
	assert.Equal(t, 1, store.SaveCalls)
}

func TestService_Register_LookupError(t *testing.T) {
	svc, store := newTestCustomerService()
	store.FindErr = errors.New("connection refused")

	_, err := svc.Register(context.Background(), "a@b.com", "A")

	assert.EqualError(t, err, "connection refused")
	assert.Equal(t, 0, store.SaveCalls)
}

func TestService_UpdateAddressesAndDeactivate(t *testing.T) {
	svc, _ := newTestCustomerService()
	ctx := context.Background()
	c, err := svc.Register(ctx, "a@b.com", "A")
	require.NoError(t, err)

	addr := testAddress
	got, err := svc.UpdateAddresses(ctx, c.ID, &addr, nil)
	require.NoError(t, err)
	assert.Equal(t, testAddress, *got.ShippingAddress)

	got, err = svc.Deactivate(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	_, err = svc.Deactivate(ctx, "missing")
	assert.ErrorIs(t, err, ErrCustomerNotFound)
}
