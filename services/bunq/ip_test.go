package bunq

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestExternalIP_FirstProviderWins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("83.84.85.86\n"))
	}))
	defer srv.Close()

	ip, err := externalIP(context.Background(), srv.Client(), []string{srv.URL}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "83.84.85.86", ip)
}

func TestExternalIP_FallsThroughFailedProviders(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer bad.Close()
	garbage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not an ip</html>"))
	}))
	defer garbage.Close()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("10.0.0.7"))
	}))
	defer good.Close()

	ip, err := externalIP(context.Background(), http.DefaultClient, []string{bad.URL, garbage.URL, good.URL}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.7", ip)
}

func TestExternalIP_AllProvidersFail(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer bad.Close()

	_, err := externalIP(context.Background(), http.DefaultClient, []string{bad.URL, bad.URL}, zap.NewNop())
	assert.Error(t, err)
}

func TestExternalIP_RejectsNonDottedQuad(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("2001:db8::1"))
	}))
	defer srv.Close()

	_, err := externalIP(context.Background(), http.DefaultClient, []string{srv.URL}, zap.NewNop())
	assert.Error(t, err)
}
