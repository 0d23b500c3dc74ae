package imagestore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fansite/forum/pkg/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(&config.ImageStoreConfig{URL: srv.URL + "/", APIKey: "secret", Timeout: 5 * time.Second})
	require.NoError(t, err)
	c.http.RetryMax = 0
	return c
}

func TestUpload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/images", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var body uploadRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "aGVsbG8=", body.Image)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(uploadResponse{URL: "https://cdn.example/k1.png", Key: "k1"})
	})

	ref, err := c.Upload(context.Background(), "aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "k1", ref.Key)
	assert.Equal(t, "https://cdn.example/k1.png", ref.URL)
}

func TestUpload_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "disk full", http.StatusInternalServerError)
		}},
		{"missing key", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(uploadResponse{URL: "https://cdn.example/x"})
		}},
		{"bad json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)
			_, err := c.Upload(context.Background(), "aGVsbG8=")
			assert.Error(t, err)
		})
	}
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		want    bool
		wantErr bool
	}{
		{"deleted", http.StatusNoContent, true, false},
		{"ok", http.StatusOK, true, false},
		{"missing", http.StatusNotFound, false, false},
		{"forbidden", http.StatusForbidden, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodDelete, r.Method)
				assert.Equal(t, "/images/folder%2Fk1", r.URL.EscapedPath())
				w.WriteHeader(tt.status)
			})

			got, err := c.Delete(context.Background(), "folder/k1")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_Disabled(t *testing.T) {
	_, err := New(&config.ImageStoreConfig{})
	assert.ErrorIs(t, err, ErrDisabled)

	_, err = New(&config.ImageStoreConfig{URL: "not a url"})
	assert.Error(t, err)

	var d Disabled
	_, err = d.Upload(context.Background(), "aGVsbG8=")
	assert.ErrorIs(t, err, ErrDisabled)
	deleted, err := d.Delete(context.Background(), "k")
	assert.NoError(t, err)
	assert.False(t, deleted)
}
