package deliveries

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomadexpress/backoffice/internal/platform/httpx"
)

func newTestRouter(store *fakeStore) http.Handler {
	svc := NewService(discardLogger(), store, nil)
	handler := NewHandler(discardLogger(), svc, 1<<20)
	r := chi.NewRouter()
	r.Route("/deliveries", handler.MountRoutes)
	return r
}

func multipartBody(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestCompleteEndpointStatusRequired(t *testing.T) {
	store := newFakeStore()
	store.deliveries[1] = &Delivery{ID: 1, MerchantID: 1, Status: StatusInTransit}
	router := newTestRouter(store)

	body, contentType := multipartBody(t, map[string]string{"driver_comment": "no status"})
	req := httptest.NewRequest(http.MethodPut, "/deliveries/1/complete", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompleteEndpointNotFound(t *testing.T) {
	router := newTestRouter(newFakeStore())

	body, contentType := multipartBody(t, map[string]string{"status": "3"})
	req := httptest.NewRequest(http.MethodPut, "/deliveries/77/complete", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var envelope httpx.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
}

func TestCompleteEndpointSuccess(t *testing.T) {
	store := newFakeStore()
	store.deliveries[5] = &Delivery{ID: 5, MerchantID: 1, Status: StatusInTransit}
	router := newTestRouter(store)

	body, contentType := multipartBody(t, map[string]string{"status": "3", "driver_comment": "handed over"})
	req := httptest.NewRequest(http.MethodPut, "/deliveries/5/complete", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Success bool           `json:"success"`
		Data    CompleteResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, int64(5), envelope.Data.ID)
	assert.Equal(t, StatusDelivered, envelope.Data.Status)

	// No photo uploaded: image is present and null, not omitted.
	assert.Contains(t, rec.Body.String(), `"image":null`)
}

func TestGetByTrackingCodeUnknownCode(t *testing.T) {
	router := newTestRouter(newFakeStore())

	req := httptest.NewRequest(http.MethodGet, "/deliveries/by-id/not-a-real-code", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCompleteEndpointNonNumericStatus(t *testing.T) {
	store := newFakeStore()
	store.deliveries[2] = &Delivery{ID: 2, MerchantID: 1, Status: StatusInTransit}
	router := newTestRouter(store)

	body, contentType := multipartBody(t, map[string]string{"status": "delivered"})
	req := httptest.NewRequest(http.MethodPut, "/deliveries/2/complete", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
