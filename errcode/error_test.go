package errcode

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ComposesCode(t *testing.T) {
	err := New(20, 1, "property", "error.property.list_failed", "Failed to list properties", http.StatusInternalServerError)

	assert.Equal(t, 200001, err.Code())
	assert.Equal(t, "property", err.Module())
	assert.Equal(t, "error.property.list_failed", err.MsgKey())
	assert.Equal(t, "Failed to list properties", err.Message())
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus())
}

func TestNew_DefaultStatus(t *testing.T) {
	err := New(70, 2, "cache", "error.cache.get", "Cache get failed")
	assert.Equal(t, http.StatusOK, err.HTTPStatus())
}

func TestWrap_KeepsSentinelIdentity(t *testing.T) {
	sentinel := New(70, 2, "cache", "error.cache.get", "Cache get failed")
	cause := errors.New("connection refused")

	wrapped := sentinel.Wrap(cause)

	assert.Equal(t, "Cache get failed: connection refused", wrapped.Error())
	assert.True(t, errors.Is(wrapped, sentinel))
	assert.True(t, errors.Is(wrapped, cause))
	assert.Nil(t, sentinel.Cause(), "sentinel must stay untouched")
}

func TestWrap_NilCause(t *testing.T) {
	sentinel := New(70, 2, "cache", "error.cache.get", "Cache get failed")
	assert.Same(t, sentinel, sentinel.Wrap(nil))
}

func TestIs_ThroughFmtWrap(t *testing.T) {
	sentinel := New(70, 1, "cache", "error.cache.miss", "Cache miss")
	err := fmt.Errorf("lookup: %w", sentinel.WithMsgf("Cache miss for %s", "k"))

	assert.True(t, errors.Is(err, sentinel))

	var le *LayeredError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "Cache miss for k", le.Message())
}

func TestIs_DifferentCode(t *testing.T) {
	a := New(70, 1, "cache", "a", "a")
	b := New(70, 2, "cache", "b", "b")
	assert.False(t, errors.Is(a, b))
	assert.False(t, a.Is(errors.New("plain")))
}

func TestWithData_CopiesMap(t *testing.T) {
	base := New(20, 1, "property", "k", "m")
	withKey := base.WithData("key", "all_properties")

	assert.Empty(t, base.Data())
	assert.Equal(t, "all_properties", withKey.Data()["key"])
}

func TestWrapf(t *testing.T) {
	base := New(20, 1, "property", "k", "list failed")
	err := base.Wrapf(errors.New("db down"), "list failed after %d ms", 30)

	assert.Equal(t, "list failed after 30 ms: db down", err.Error())
	assert.Contains(t, err.String(), "code:200001")
}

func TestRegistry_Conflict(t *testing.T) {
	r := NewRegistry()
	r.Register(New(70, 1, "cache", "error.cache.miss", "Cache miss"))

	// same code + key is fine
	assert.NotPanics(t, func() {
		r.Register(New(70, 1, "cache", "error.cache.miss", "Cache miss"))
	})
	assert.Panics(t, func() {
		r.Register(New(70, 1, "cache", "error.cache.other", "Other"))
	})

	key, ok := r.Lookup(700001)
	assert.True(t, ok)
	assert.Equal(t, "cache:error.cache.miss", key)
}
