package media

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadDeliveryImage(t *testing.T) {
	var gotPublicID, gotTransformation, gotFolder string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotPublicID = r.FormValue("public_id")
		gotTransformation = r.FormValue("transformation")
		gotFolder = r.FormValue("folder")

		file, _, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		_ = json.NewEncoder(w).Encode(map[string]string{
			"public_id":  gotPublicID,
			"secure_url": "https://cdn.example.com/" + gotPublicID + ".jpg",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key", "secret", "deliveries")
	client.now = func() time.Time { return time.UnixMilli(1700000000000) }

	url, err := client.UploadDeliveryImage(context.Background(), 42, "proof.jpg", []byte("jpeg-bytes"))
	require.NoError(t, err)

	assert.Equal(t, "delivery_42_1700000000000", gotPublicID)
	assert.Equal(t, "w_1000,c_scale,q_auto,f_auto", gotTransformation)
	assert.Equal(t, "deliveries", gotFolder)
	assert.Equal(t, "https://cdn.example.com/delivery_42_1700000000000.jpg", url)
}

func TestUploadDeliveryImageServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key", "secret", "deliveries")
	_, err := client.UploadDeliveryImage(context.Background(), 1, "proof.jpg", []byte("x"))
	assert.Error(t, err)
}

func TestEnabled(t *testing.T) {
	assert.False(t, NewClient("", "", "", "").Enabled())
	assert.True(t, NewClient("https://upload.example.com", "k", "s", "d").Enabled())
}
