package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestToDomainError(t *testing.T) {
	assert := assert.New(t)

	assert.Nil(ToDomainError(nil))

	conflict := NewConflict("duplicate", nil)
	wrapped := fmt.Errorf("create: %w", conflict)
	assert.Equal(http.StatusConflict, ToDomainError(wrapped).HTTPStatus)

	notFound := ToDomainError(fmt.Errorf("lookup: %w", pgx.ErrNoRows))
	assert.Equal(http.StatusNotFound, notFound.HTTPStatus)
	assert.Equal("NOT_FOUND", notFound.Code)

	fe := ToDomainError(fiber.NewError(http.StatusMethodNotAllowed, "nope"))
	assert.Equal(http.StatusMethodNotAllowed, fe.HTTPStatus)
	assert.Equal("METHOD_NOT_ALLOWED", fe.Code)

	malformed := ToDomainError(fmt.Errorf("get product: %w", &pgconn.PgError{Code: "22P02", Message: "invalid input syntax for type uuid"}))
	assert.Equal(http.StatusBadRequest, malformed.HTTPStatus)
	assert.Equal("VALIDATION_FAILED", malformed.Code)

	internal := ToDomainError(errors.New("connection reset by peer"))
	assert.Equal(http.StatusInternalServerError, internal.HTTPStatus)
	assert.Equal("internal server error", internal.Message)
}

func TestIsStatus(t *testing.T) {
	assert.True(t, IsStatus(NewForbidden("no"), http.StatusForbidden))
	assert.False(t, IsStatus(NewForbidden("no"), http.StatusUnauthorized))
	assert.True(t, IsStatus(NewRateLimited(3), http.StatusTooManyRequests))
	assert.False(t, IsStatus(nil, http.StatusOK))
}
