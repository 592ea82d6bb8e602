package cache

import (
	"net/http"

	"github.com/KOMKZ/yogan-property/errcode"
)

// ModuleCode is the errcode module for cache errors (70xxxx)
const ModuleCode = 70

const (
	ErrCodeCacheMiss     = 1
	ErrCodeSerialize     = 2
	ErrCodeDeserialize   = 3
	ErrCodeStoreGet      = 4
	ErrCodeStoreSet      = 5
	ErrCodeStoreDelete   = 6
	ErrCodeStoreStats    = 7
	ErrCodeConfigInvalid = 8
)

var (
	// ErrCacheMiss is a normal outcome, not a failure
	ErrCacheMiss = errcode.Register(errcode.New(ModuleCode, ErrCodeCacheMiss,
		"cache", "error.cache.miss", "Cache miss", http.StatusOK))

	ErrSerialize = errcode.Register(errcode.New(ModuleCode, ErrCodeSerialize,
		"cache", "error.cache.serialize", "Cache value serialization failed", http.StatusInternalServerError))

	ErrDeserialize = errcode.Register(errcode.New(ModuleCode, ErrCodeDeserialize,
		"cache", "error.cache.deserialize", "Cache value deserialization failed", http.StatusInternalServerError))

	ErrStoreGet = errcode.Register(errcode.New(ModuleCode, ErrCodeStoreGet,
		"cache", "error.cache.store_get", "Cache store read failed", http.StatusServiceUnavailable))

	ErrStoreSet = errcode.Register(errcode.New(ModuleCode, ErrCodeStoreSet,
		"cache", "error.cache.store_set", "Cache store write failed", http.StatusServiceUnavailable))

	ErrStoreDelete = errcode.Register(errcode.New(ModuleCode, ErrCodeStoreDelete,
		"cache", "error.cache.store_delete", "Cache store delete failed", http.StatusServiceUnavailable))

	ErrStoreStats = errcode.Register(errcode.New(ModuleCode, ErrCodeStoreStats,
		"cache", "error.cache.store_stats", "Cache statistics unavailable", http.StatusServiceUnavailable))

	ErrConfigInvalid = errcode.Register(errcode.New(ModuleCode, ErrCodeConfigInvalid,
		"cache", "error.cache.config_invalid", "Invalid cache configuration", http.StatusInternalServerError))
)
