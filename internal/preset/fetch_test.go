package preset

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcherHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.wav" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("audio"))
	}))
	defer srv.Close()

	f := NewFetcher()
	data, err := f.Fetch(context.Background(), srv.URL+"/kick.wav")
	require.NoError(t, err)
	assert.Equal(t, "audio", string(data))

	_, err = f.Fetch(context.Background(), srv.URL+"/missing.wav")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFetcherFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kick.wav")
	require.NoError(t, os.WriteFile(path, []byte("local"), 0644))

	f := NewFetcher()
	data, err := f.Fetch(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "local", string(data))

	data, err = f.Fetch(context.Background(), "file://"+filepath.ToSlash(path))
	require.NoError(t, err)
	assert.Equal(t, "local", string(data))

	_, err = f.Fetch(context.Background(), path+".nope")
	assert.ErrorIs(t, err, os.ErrNotExist)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.Fetch(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}
