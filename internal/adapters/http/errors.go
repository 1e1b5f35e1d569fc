package http

import (
	"errors"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/taskmaster/todo/internal/domain/entities"
)

var errorStatus = []struct {
	kind   error
	status int
}{
	{entities.ErrValidation, http.StatusBadRequest},
	{entities.ErrDuplicateUser, http.StatusBadRequest},
	{entities.ErrInvalidCredentials, http.StatusUnauthorized},
	{entities.ErrUnauthenticated, http.StatusUnauthorized},
	{entities.ErrNotFound, http.StatusNotFound},
}

// toHTTPError maps a domain error kind onto its status. Errors of no known
// kind are returned unchanged so the error handler reports a 500.
func toHTTPError(err error) error {
	for _, e := range errorStatus {
		if errors.Is(err, e.kind) {
			return echo.NewHTTPError(e.status, errorMessage(err, e.kind)).SetInternal(err)
		}
	}
	return err
}

// errorMessage strips the kind prefix added by "%w: detail" wrapping.
func errorMessage(err, kind error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, kind.Error()+": "); i >= 0 {
		msg = msg[i+len(kind.Error())+2:]
	} else if strings.HasSuffix(msg, kind.Error()) {
		msg = kind.Error()
	}
	if kind == entities.ErrUnauthenticated {
		msg = "Missing or invalid token"
	}
	return capitalize(msg)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
