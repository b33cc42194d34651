// errors/walter_errors.go
package errors

import "errors"

var (
	ErrTokenAlreadyUsed         = errors.New("whitelist token already used")
	ErrPlayerAlreadyWhitelisted = errors.New("player already whitelisted")
	ErrPlayerNotValid           = errors.New("minecraft username not valid")

	ErrDatabaseOperation = errors.New("database operation failed")
	ErrRconUnavailable   = errors.New("rcon command failed")
	ErrAuditUnavailable  = errors.New("audit backend not configured")
	ErrInternalServer    = errors.New("internal server error")

	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidPagination = errors.New("invalid pagination parameters")
	ErrInvalidRequest    = errors.New("invalid grant request data")
)
