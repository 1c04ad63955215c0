package apikeys

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotation_ValueSemantics(t *testing.T) {
	r := NewRotation("a", "b")

	cur, err := r.Current()
	require.NoError(t, err)
	assert.Equal(t, "a", cur)

	next, err := r.Next()
	require.NoError(t, err)
	cur, _ = next.Current()
	assert.Equal(t, "b", cur)

	cur, _ = r.Current()
	assert.Equal(t, "a", cur, "the original rotation is unchanged")

	last, err := next.Next()
	assert.ErrorIs(t, err, ErrKeysExhausted)
	_, err = last.Current()
	assert.ErrorIs(t, err, ErrKeysExhausted)
}

func TestRotation_Empty(t *testing.T) {
	r := NewRotation()
	_, err := r.Current()
	assert.ErrorIs(t, err, ErrKeysExhausted)
	assert.Zero(t, r.Len())
}

func TestRotation_CopiesKeys(t *testing.T) {
	keys := []string{"a", "b"}
	r := NewRotation(keys...)
	keys[0] = "changed"

	cur, _ := r.Current()
	assert.Equal(t, "a", cur)
}

// keyServer accepts only the key named by good.
func keyServer(t *testing.T, good string, rejectWith int) (*httptest.Server, *[]string) {
	t.Helper()
	var mu sync.Mutex
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		seen = append(seen, r.Header.Get(HeaderKey)+":"+string(body))
		mu.Unlock()

		if r.Header.Get(HeaderKey) != good {
			w.WriteHeader(rejectWith)
			return
		}
		_, _ = io.WriteString(w, "ok")
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func TestTransport_InjectsKey(t *testing.T) {
	srv, seen := keyServer(t, "k1", http.StatusForbidden)
	c := &http.Client{Transport: NewTransport(nil, NewRotation("k1", "k2"))}

	resp, err := c.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"k1:"}, *seen)
}

func TestTransport_RotatesOnQuota(t *testing.T) {
	for _, code := range []int{http.StatusTooManyRequests, http.StatusForbidden} {
		t.Run(http.StatusText(code), func(t *testing.T) {
			srv, seen := keyServer(t, "k3", code)
			tr := NewTransport(nil, NewRotation("k1", "k2", "k3"))
			c := &http.Client{Transport: tr}

			resp, err := c.Post(srv.URL, "text/plain", strings.NewReader("body"))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, []string{"k1:body", "k2:body", "k3:body"}, *seen)

			cur, err := tr.Rotation().Current()
			require.NoError(t, err)
			assert.Equal(t, "k3", cur)
		})
	}
}

func TestTransport_ExhaustedReturnsLastResponse(t *testing.T) {
	srv, _ := keyServer(t, "none", http.StatusTooManyRequests)
	tr := NewTransport(nil, NewRotation("k1", "k2"))
	c := &http.Client{Transport: tr}

	resp, err := c.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	_, err = c.Get(srv.URL)
	assert.ErrorIs(t, err, ErrKeysExhausted)
}

func TestTransport_OtherStatusesPassThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	tr := NewTransport(nil, NewRotation("k1", "k2"))
	resp, err := (&http.Client{Transport: tr}).Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	cur, _ := tr.Rotation().Current()
	assert.Equal(t, "k1", cur)
}
