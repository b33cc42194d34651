// mojang/client_test.go
package mojang_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	logger "github.com/evspresso/walter/logging"
	"github.com/evspresso/walter/mojang"
	"github.com/evspresso/walter/util"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, timeout time.Duration) *mojang.Client {
	t.Helper()
	logger.InitLogger(t.TempDir())

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return mojang.NewClient(server.URL, timeout, util.NewCacheService(false))
}

func TestIsValidPlayer_Found(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/profiles/minecraft/Notch", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"069a79f444e94726a5befca90e38aaf5","name":"Notch"}`))
	}, time.Second)

	assert.True(t, client.IsValidPlayer(context.Background(), "Notch"))
}

func TestIsValidPlayer_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}, time.Second)

	assert.False(t, client.IsValidPlayer(context.Background(), "NoSuchPlayer"))
}

func TestIsValidPlayer_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}, time.Second)

	// Only an explicit 200 counts as found.
	assert.False(t, client.IsValidPlayer(context.Background(), "Notch"))
}

func TestIsValidPlayer_Timeout(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}, 50*time.Millisecond)

	// A hung directory reads the same as an unknown player.
	assert.False(t, client.IsValidPlayer(context.Background(), "Notch"))
}

func TestIsValidPlayer_MalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}, time.Second)

	assert.False(t, client.IsValidPlayer(context.Background(), "Notch"))
}

func TestIsValidPlayer_TransportError(t *testing.T) {
	logger.InitLogger(t.TempDir())

	server := httptest.NewServer(http.NotFoundHandler())
	server.Close() // nothing listening anymore

	client := mojang.NewClient(server.URL, time.Second, util.NewCacheService(false))
	assert.False(t, client.IsValidPlayer(context.Background(), "Notch"))
}
