package database

import "errors"

var (
	ErrInvalidConfig    = errors.New("invalid database config")
	ErrInstanceNotFound = errors.New("database instance not found")
)
