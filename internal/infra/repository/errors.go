package repository

import "errors"

var (
	ErrDatabaseConnection = errors.New("database connection error")
)
