package service

import (
	"context"
	"errors"
	"testing"

	producterrors "github.com/abgdnv/gocatalog/internal/errors"
	"github.com/abgdnv/gocatalog/internal/store"
	"github.com/abgdnv/gocatalog/pkg/messaging"
	"github.com/abgdnv/gocatalog/pkg/messaging/events"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockProductStore is a mock implementation of the ProductStore interface
type mockProductStore struct {
	products []store.Product
	product  store.Product
	error    error

	gotID    int64
	gotInput store.ProductInput
}

func (m *mockProductStore) FindByID(_ context.Context, id int64) (*store.Product, error) {
	m.gotID = id
	if m.error != nil {
		return nil, m.error
	}
	return &m.product, nil
}

func (m *mockProductStore) FindAll(_ context.Context) ([]store.Product, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.products, nil
}

func (m *mockProductStore) Create(_ context.Context, input store.ProductInput) (*store.Product, error) {
	m.gotInput = input
	if m.error != nil {
		return nil, m.error
	}
	return &m.product, nil
}

func (m *mockProductStore) Update(_ context.Context, id int64, input store.ProductInput) (*store.Product, error) {
	m.gotID = id
	m.gotInput = input
	if m.error != nil {
		return nil, m.error
	}
	return &m.product, nil
}

func (m *mockProductStore) DeleteByID(_ context.Context, id int64) error {
	m.gotID = id
	return m.error
}

// mockPublisher records published events
type mockPublisher struct {
	events []events.ProductChangedEvent
	error  error
}

func (m *mockPublisher) Publish(_ context.Context, event messaging.Event) error {
	m.events = append(m.events, event.(events.ProductChangedEvent))
	return m.error
}

var pen = store.Product{ID: 1, Name: "Pen", Description: "Blue ink", Price: 1.5, Category: "office"}

func Test_ProductService_FindByID(t *testing.T) {
	testCases := []struct {
		name        string
		mockStore   *mockProductStore
		expected    *ProductDto
		expectError error
	}{
		{
			name:      "Success - product found",
			mockStore: &mockProductStore{product: pen},
			expected:  &ProductDto{ID: 1, Name: "Pen", Description: "Blue ink", Price: 1.5, Category: "office"},
		},
		{
			name:        "Error - product not found",
			mockStore:   &mockProductStore{error: producterrors.ErrProductNotFound},
			expectError: producterrors.ErrProductNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			service := NewService(tc.mockStore, messaging.NopPublisher{})
			// when
			found, err := service.FindByID(context.Background(), 1)
			// then
			assert.Equal(t, int64(1), tc.mockStore.gotID)
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, found)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, found)
		})
	}
}

func Test_ProductService_FindAll(t *testing.T) {
	ErrStoreError := errors.New("store error")
	testCases := []struct {
		name         string
		mockStore    *mockProductStore
		expectedList []ProductDto
		expectError  error
	}{
		{
			name:         "Success - products found",
			mockStore:    &mockProductStore{products: []store.Product{pen}},
			expectedList: []ProductDto{{ID: 1, Name: "Pen", Description: "Blue ink", Price: 1.5, Category: "office"}},
		},
		{
			name:         "Success - no products",
			mockStore:    &mockProductStore{products: []store.Product{}},
			expectedList: []ProductDto{},
		},
		{
			name:        "Error - store error",
			mockStore:   &mockProductStore{error: ErrStoreError},
			expectError: ErrStoreError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			service := NewService(tc.mockStore, messaging.NopPublisher{})
			// when
			found, err := service.FindAll(context.Background())
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, found)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedList, found)
		})
	}
}

func Test_ProductService_Create(t *testing.T) {
	// given
	mockStore := &mockProductStore{product: pen}
	service := NewService(mockStore, messaging.NopPublisher{})
	in := ProductInputDto{Name: "Pen", Description: "Blue ink", Price: decimal.RequireFromString("1.5"), Category: "office"}

	// when
	created, err := service.Create(context.Background(), in)

	// then
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "Pen", mockStore.gotInput.Name)
	assert.True(t, decimal.RequireFromString("1.5").Equal(mockStore.gotInput.Price))
}

func Test_ProductService_Create_ValidationErrorPreserved(t *testing.T) {
	// given
	vErr := &producterrors.ValidationError{Fields: map[string]string{"price": "failed on rule: gt"}}
	service := NewService(&mockProductStore{error: vErr}, messaging.NopPublisher{})

	// when
	created, err := service.Create(context.Background(), ProductInputDto{Name: "Pen", Category: "office"})

	// then
	assert.Nil(t, created)
	var got *producterrors.ValidationError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, vErr.Fields, got.Fields)
}

func Test_ProductService_Update(t *testing.T) {
	testCases := []struct {
		name        string
		mockStore   *mockProductStore
		expectError error
	}{
		{
			name:      "Success - product updated",
			mockStore: &mockProductStore{product: store.Product{ID: 1, Name: "Pen Pro", Price: 2, Category: "office"}},
		},
		{
			name:        "Error - product not found",
			mockStore:   &mockProductStore{error: producterrors.ErrProductNotFound},
			expectError: producterrors.ErrProductNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			service := NewService(tc.mockStore, messaging.NopPublisher{})
			in := ProductInputDto{Name: "Pen Pro", Price: decimal.NewFromInt(2), Category: "office"}
			// when
			updated, err := service.Update(context.Background(), 1, in)
			// then
			assert.Equal(t, int64(1), tc.mockStore.gotID)
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, updated)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, &ProductDto{ID: 1, Name: "Pen Pro", Price: 2, Category: "office"}, updated)
		})
	}
}

func Test_ProductService_DeleteByID(t *testing.T) {
	// given
	mockStore := &mockProductStore{error: producterrors.ErrProductNotFound}
	service := NewService(mockStore, messaging.NopPublisher{})

	// when
	err := service.DeleteByID(context.Background(), 5)

	// then
	assert.ErrorIs(t, err, producterrors.ErrProductNotFound)
	assert.Equal(t, int64(5), mockStore.gotID)
}

func Test_ProductService_PublishesChanges(t *testing.T) {
	in := ProductInputDto{Name: "Pen", Description: "Blue ink", Price: decimal.RequireFromString("1.5"), Category: "office"}
	testCases := []struct {
		name     string
		call     func(s *Service) error
		expected events.ProductChangedEvent
	}{
		{
			name: "create",
			call: func(s *Service) error {
				_, err := s.Create(context.Background(), in)
				return err
			},
			expected: events.ProductChangedEvent{Action: events.ProductCreated, ProductID: 1, Name: "Pen", Price: 1.5, Category: "office"},
		},
		{
			name: "update",
			call: func(s *Service) error {
				_, err := s.Update(context.Background(), 1, in)
				return err
			},
			expected: events.ProductChangedEvent{Action: events.ProductUpdated, ProductID: 1, Name: "Pen", Price: 1.5, Category: "office"},
		},
		{
			name: "delete",
			call: func(s *Service) error {
				return s.DeleteByID(context.Background(), 1)
			},
			expected: events.ProductChangedEvent{Action: events.ProductDeleted, ProductID: 1},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			publisher := &mockPublisher{}
			service := NewService(&mockProductStore{product: pen}, publisher)
			// when
			err := tc.call(service)
			// then
			require.NoError(t, err)
			require.Len(t, publisher.events, 1)
			got := publisher.events[0]
			assert.False(t, got.OccurredAt.IsZero())
			got.OccurredAt = tc.expected.OccurredAt
			got.Carrier = nil
			assert.Equal(t, tc.expected, got)
		})
	}
}

func Test_ProductService_NoEventOnFailure(t *testing.T) {
	// given
	publisher := &mockPublisher{}
	service := NewService(&mockProductStore{error: producterrors.ErrProductNotFound}, publisher)

	// when
	err := service.DeleteByID(context.Background(), 1)

	// then
	assert.ErrorIs(t, err, producterrors.ErrProductNotFound)
	assert.Empty(t, publisher.events)
}

func Test_ProductService_PublishFailureDoesNotFailRequest(t *testing.T) {
	// given
	publisher := &mockPublisher{error: errors.New("nats: no responders available for request")}
	service := NewService(&mockProductStore{product: pen}, publisher)

	// when
	created, err := service.Create(context.Background(), ProductInputDto{Name: "Pen", Price: decimal.NewFromInt(1), Category: "office"})

	// then
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Len(t, publisher.events, 1)
}
