package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"medals/internal"
)

func TestGetSendsUserAgentAndReturnsValidators(t *testing.T) {
	var userAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		w.Header().Set("ETag", `W/"123"`)
		w.Header().Set("Last-Modified", "Sat, 14 Feb 2026 10:00:00 GMT")
		_, _ = w.Write([]byte("<table></table>"))
	}))
	defer srv.Close()

	client := NewClient("medals-test/1.0", 5*time.Second, 0)
	page, err := client.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, "medals-test/1.0", userAgent)
	require.Equal(t, "<table></table>", string(page.Body))
	require.Equal(t, `W/"123"`, page.ETag)
	require.Equal(t, "Sat, 14 Feb 2026 10:00:00 GMT", page.LastModified)
}

func TestGetNon2xxIsFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient("medals-test/1.0", 5*time.Second, 0)
	_, err := client.Get(context.Background(), srv.URL)
	require.Error(t, err)
	require.True(t, errors.Is(err, internal.ErrFetchFailure))
}

func TestHeadersFallsBackToGet(t *testing.T) {
	methods := []string{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("ETag", "abc")
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client := NewClient("medals-test/1.0", 5*time.Second, 0)
	headers, err := client.Headers(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, "abc", headers.Get("ETag"))
	require.Equal(t, []string{http.MethodHead, http.MethodGet}, methods)
}

func TestCheckChanged(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", "rev-7")
	}))
	defer srv.Close()

	client := NewClient("medals-test/1.0", 5*time.Second, 0)
	etag := "rev-7"
	changed, err := client.CheckChanged(context.Background(), srv.URL, internal.RunMetadata{LastETag: &etag})
	require.NoError(t, err)
	require.False(t, changed)

	changed, err = client.CheckChanged(context.Background(), srv.URL, internal.RunMetadata{})
	require.NoError(t, err)
	require.True(t, changed)
}

func TestRateLimiterHonoursContext(t *testing.T) {
	limiter := NewRateLimiter(1)
	require.NoError(t, limiter.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, limiter.Wait(ctx), context.Canceled)
}
