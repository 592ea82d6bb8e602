package property

import (
	"net/http"

	"github.com/KOMKZ/yogan-property/errcode"
)

// ModuleCode is the errcode module for property errors (20xxxx)
const ModuleCode = 20

const (
	ErrCodeListProperties = 1
	ErrCodeSeedProperties = 2
	ErrCodeConfigInvalid  = 3
)

var (
	// ErrListProperties wraps a failed read of the record store
	ErrListProperties = errcode.Register(errcode.New(ModuleCode, ErrCodeListProperties,
		"property", "error.property.list", "Failed to list properties", http.StatusInternalServerError))

	ErrSeedProperties = errcode.Register(errcode.New(ModuleCode, ErrCodeSeedProperties,
		"property", "error.property.seed", "Failed to seed properties", http.StatusInternalServerError))

	ErrConfigInvalid = errcode.Register(errcode.New(ModuleCode, ErrCodeConfigInvalid,
		"property", "error.property.config_invalid", "Invalid property configuration", http.StatusInternalServerError))
)
