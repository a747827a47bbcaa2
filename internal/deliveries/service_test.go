package deliveries

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomadexpress/backoffice/internal/platform/httpx"
)

type fakeStore struct {
	deliveries map[int64]*Delivery
	items      map[int64][]Item
	stocks     map[int64]int
	updates    map[int64]map[string]any
	nextID     int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		deliveries: make(map[int64]*Delivery),
		items:      make(map[int64][]Item),
		stocks:     make(map[int64]int),
		updates:    make(map[int64]map[string]any),
		nextID:     1,
	}
}

func (f *fakeStore) GetDelivery(_ context.Context, id int64) (*Delivery, error) {
	d, ok := f.deliveries[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	copied := *d
	copied.Items = f.items[id]
	return &copied, nil
}

func (f *fakeStore) GetDeliveryByExternalID(_ context.Context, deliveryID string) (*Delivery, error) {
	for _, d := range f.deliveries {
		if d.DeliveryID == deliveryID {
			copied := *d
			return &copied, nil
		}
	}
	return nil, httpx.ErrNotFound
}

func (f *fakeStore) ListByDriverStatus(_ context.Context, driverID int64, status int, _ time.Time) ([]Delivery, error) {
	var out []Delivery
	for _, d := range f.deliveries {
		if d.DriverID != nil && *d.DriverID == driverID && d.Status == status {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeStore) ListDoneToday(context.Context, int64, time.Time) ([]Delivery, error) {
	return nil, nil
}

func (f *fakeStore) ListByMerchant(context.Context, int64, time.Time) ([]Delivery, error) {
	return nil, nil
}

func (f *fakeStore) ListByMerchantStatus(context.Context, int64, int, time.Time) ([]Delivery, error) {
	return nil, nil
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	snapshot := f.clone()
	if err := fn(ctx, &fakeTx{store: f}); err != nil {
		*f = *snapshot
		return err
	}
	return nil
}

func (f *fakeStore) clone() *fakeStore {
	c := newFakeStore()
	c.nextID = f.nextID
	for id, d := range f.deliveries {
		copied := *d
		c.deliveries[id] = &copied
	}
	for id, items := range f.items {
		c.items[id] = append([]Item(nil), items...)
	}
	for id, stock := range f.stocks {
		c.stocks[id] = stock
	}
	return c
}

type fakeTx struct {
	store *fakeStore
}

func (t *fakeTx) CreateDelivery(_ context.Context, d Delivery) (int64, error) {
	id := t.store.nextID
	t.store.nextID++
	d.ID = id
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	t.store.deliveries[id] = &d
	return id, nil
}

func (t *fakeTx) InsertItem(_ context.Context, item Item) (int64, error) {
	item.ID = int64(len(t.store.items[item.DeliveryID]) + 1)
	t.store.items[item.DeliveryID] = append(t.store.items[item.DeliveryID], item)
	return item.ID, nil
}

func (t *fakeTx) UpdateDelivery(_ context.Context, id int64, updates map[string]any) error {
	d, ok := t.store.deliveries[id]
	if !ok {
		return httpx.ErrNotFound
	}
	t.store.updates[id] = updates
	if status, ok := updates["status"].(int); ok {
		d.Status = status
	}
	if stage, ok := updates["report_stage"].(int); ok {
		d.ReportStage = stage
	}
	if at, ok := updates["delivered_at"].(time.Time); ok {
		d.DeliveredAt = &at
	}
	if comment, ok := updates["driver_comment"].(string); ok {
		d.DriverComment = &comment
	}
	if image, ok := updates["image"].(string); ok {
		d.Image = &image
	}
	d.UpdatedAt = time.Now()
	return nil
}

func (t *fakeTx) GetItems(_ context.Context, deliveryID int64) ([]Item, error) {
	return t.store.items[deliveryID], nil
}

func (t *fakeTx) IncrementGoodStock(_ context.Context, goodID int64, qty int) error {
	if _, ok := t.store.stocks[goodID]; !ok {
		return httpx.ErrNotFound
	}
	t.store.stocks[goodID] += qty
	return nil
}

type fakeUploader struct {
	url string
	err error
}

func (f *fakeUploader) UploadDeliveryImage(context.Context, int64, string, []byte) (string, error) {
	return f.url, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCompleteUnknownDelivery(t *testing.T) {
	store := newFakeStore()
	svc := NewService(discardLogger(), store, nil)

	_, err := svc.Complete(context.Background(), 99, CompleteRequest{Status: StatusDelivered})
	assert.ErrorIs(t, err, httpx.ErrNotFound)
	assert.Empty(t, store.updates)
}

func TestCompleteUnknownStatus(t *testing.T) {
	store := newFakeStore()
	store.deliveries[1] = &Delivery{ID: 1, MerchantID: 1, Status: StatusAssigned}
	svc := NewService(discardLogger(), store, nil)

	_, err := svc.Complete(context.Background(), 1, CompleteRequest{Status: 9})
	assert.ErrorIs(t, err, httpx.ErrValidation)
	assert.Empty(t, store.updates)
}

func TestCompleteDeliveredSetsTimestamp(t *testing.T) {
	store := newFakeStore()
	store.deliveries[7] = &Delivery{ID: 7, MerchantID: 1, Status: StatusInTransit}
	svc := NewService(discardLogger(), store, nil)
	fixed := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	result, err := svc.Complete(context.Background(), 7, CompleteRequest{Status: StatusDelivered, DriverComment: "left at door"})
	require.NoError(t, err)

	assert.Equal(t, StatusDelivered, result.Status)
	d := store.deliveries[7]
	require.NotNil(t, d.DeliveredAt)
	assert.Equal(t, fixed, *d.DeliveredAt)
	assert.Equal(t, 1, d.ReportStage)
	require.NotNil(t, d.DriverComment)
	assert.Equal(t, "left at door", *d.DriverComment)
}

func TestCompleteDeclineRestocksItems(t *testing.T) {
	store := newFakeStore()
	store.deliveries[42] = &Delivery{ID: 42, MerchantID: 1, Status: StatusInTransit}
	store.items[42] = []Item{
		{ID: 1, DeliveryID: 42, GoodID: 100, Quantity: 3},
		{ID: 2, DeliveryID: 42, GoodID: 200, Quantity: 5},
	}
	store.stocks[100] = 10
	store.stocks[200] = 2
	svc := NewService(discardLogger(), store, nil)

	result, err := svc.Complete(context.Background(), 42, CompleteRequest{Status: StatusDeclined})
	require.NoError(t, err)

	assert.Equal(t, StatusDeclined, result.Status)
	assert.Equal(t, 13, store.stocks[100])
	assert.Equal(t, 7, store.stocks[200])
	assert.Equal(t, StatusDeclined, store.deliveries[42].Status)
	assert.Equal(t, 1, store.deliveries[42].ReportStage)
}

func TestCompleteDeclineRollsBackOnRestockFailure(t *testing.T) {
	store := newFakeStore()
	store.deliveries[5] = &Delivery{ID: 5, MerchantID: 1, Status: StatusInTransit}
	store.items[5] = []Item{
		{ID: 1, DeliveryID: 5, GoodID: 100, Quantity: 2},
		{ID: 2, DeliveryID: 5, GoodID: 999, Quantity: 1},
	}
	store.stocks[100] = 4
	svc := NewService(discardLogger(), store, nil)

	_, err := svc.Complete(context.Background(), 5, CompleteRequest{Status: StatusDeclined})
	require.Error(t, err)

	assert.Equal(t, 4, store.stocks[100])
	assert.Equal(t, StatusInTransit, store.deliveries[5].Status)
}

func TestCompleteImageUploadFailureDoesNotBlock(t *testing.T) {
	store := newFakeStore()
	store.deliveries[3] = &Delivery{ID: 3, MerchantID: 1, Status: StatusInTransit}
	svc := NewService(discardLogger(), store, &fakeUploader{err: errors.New("cdn down")})

	result, err := svc.Complete(context.Background(), 3, CompleteRequest{
		Status: StatusDelivered,
		Image:  &ImageAttachment{Filename: "proof.jpg", Data: []byte("x")},
	})
	require.NoError(t, err)

	assert.Nil(t, result.Image)
	assert.Equal(t, StatusDelivered, store.deliveries[3].Status)
	assert.Nil(t, store.deliveries[3].Image)
}

func TestCompleteStoresUploadedImage(t *testing.T) {
	store := newFakeStore()
	store.deliveries[4] = &Delivery{ID: 4, MerchantID: 1, Status: StatusInTransit}
	svc := NewService(discardLogger(), store, &fakeUploader{url: "https://cdn.example.com/delivery_4_1.jpg"})

	result, err := svc.Complete(context.Background(), 4, CompleteRequest{
		Status: StatusDelivered,
		Image:  &ImageAttachment{Filename: "proof.jpg", Data: []byte("x")},
	})
	require.NoError(t, err)

	require.NotNil(t, result.Image)
	assert.Equal(t, "https://cdn.example.com/delivery_4_1.jpg", *result.Image)
	require.NotNil(t, store.deliveries[4].Image)
}

func TestCreateAssignsTrackingCodeAndItems(t *testing.T) {
	store := newFakeStore()
	svc := NewService(discardLogger(), store, nil)
	svc.newID = func() string { return "11111111-2222-3333-4444-555555555555" }

	driverID := int64(9)
	delivery, err := svc.Create(context.Background(), CreateRequest{
		DriverID:   &driverID,
		MerchantID: 2,
		Price:      15000,
		Items: []CreateItemRequest{
			{GoodID: 100, Quantity: 1},
			{GoodID: 200, Quantity: 2},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "11111111-2222-3333-4444-555555555555", delivery.DeliveryID)
	assert.Equal(t, StatusAssigned, delivery.Status)
	assert.Len(t, delivery.Items, 2)
}
