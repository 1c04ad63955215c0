// Package apikeys rotates the movie catalog API keys.
//
// Rotation is a value: advancing returns a new Rotation and leaves the old
// one untouched. Transport owns the only mutable copy.
package apikeys

import (
	"errors"
	"net/http"
	"slices"
	"sync"
)

// HeaderKey carries the API key on catalog requests.
const HeaderKey = "X-RapidAPI-Key"

var ErrKeysExhausted = errors.New("api keys exhausted")

type Rotation struct {
	keys    []string
	current int
}

// NewRotation starts at the first of keys.
func NewRotation(keys ...string) Rotation {
	return Rotation{keys: slices.Clone(keys)}
}

func (r Rotation) Current() (string, error) {
	if r.current >= len(r.keys) {
		return "", ErrKeysExhausted
	}
	return r.keys[r.current], nil
}

// Next returns the rotation moved to the following key.
func (r Rotation) Next() (Rotation, error) {
	if r.current+1 >= len(r.keys) {
		return Rotation{keys: r.keys, current: len(r.keys)}, ErrKeysExhausted
	}
	return Rotation{keys: r.keys, current: r.current + 1}, nil
}

// Len returns the number of keys.
func (r Rotation) Len() int { return len(r.keys) }

// Transport sets the current key on every request and moves to the next key
// when the catalog answers 429 or 403. The rejected request is retried with
// the new key when its body can be replayed.
type Transport struct {
	Base http.RoundTripper

	mu       sync.Mutex
	rotation Rotation
}

func NewTransport(base http.RoundTripper, r Rotation) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{Base: base, rotation: r}
}

// Rotation returns a snapshot of the current rotation.
func (t *Transport) Rotation() Rotation {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rotation
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	for {
		key, err := t.currentKey()
		if err != nil {
			return nil, err
		}

		out := req.Clone(req.Context())
		out.Header.Set(HeaderKey, key)

		resp, err := t.Base.RoundTrip(out)
		if err != nil {
			return nil, err
		}
		if !rejected(resp.StatusCode) {
			return resp, nil
		}

		if !t.advance(key) {
			return resp, nil
		}
		if req.Body != nil && req.GetBody == nil {
			return resp, nil
		}
		_ = resp.Body.Close()

		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			req = req.Clone(req.Context())
			req.Body = body
		}
	}
}

func (t *Transport) currentKey() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rotation.Current()
}

// advance moves past used unless another request already did. It reports
// whether a fresh key is available.
func (t *Transport) advance(used string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if cur, err := t.rotation.Current(); err == nil && cur != used {
		return true
	}
	next, err := t.rotation.Next()
	t.rotation = next
	return err == nil
}

func rejected(code int) bool {
	return code == http.StatusTooManyRequests || code == http.StatusForbidden
}
