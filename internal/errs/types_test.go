package errs

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestRequestError_TruncatesOnRuneBoundary(t *testing.T) {
	// 199 ASCII bytes put the 200th rune across the byte-200 boundary.
	body := strings.Repeat("a", 199) + strings.Repeat("é", 10)
	e := &RequestError{Method: http.MethodPost, Path: "/rating", StatusCode: http.StatusBadRequest, Body: []byte(body)}

	msg := e.Error()
	require.True(t, utf8.ValidString(msg), msg)
	require.True(t, strings.HasSuffix(msg, strings.Repeat("a", 199)+"é..."), msg)
}

func TestRequestError_ShortBodyUntouched(t *testing.T) {
	e := &RequestError{Method: http.MethodGet, Path: "/buku/1", StatusCode: http.StatusConflict, Body: []byte(" Buku sudah ada ")}
	require.Equal(t, "GET /buku/1: 409: Buku sudah ada", e.Error())

	empty := &RequestError{Method: http.MethodGet, Path: "/buku/1", StatusCode: http.StatusNotFound}
	require.Equal(t, "GET /buku/1: 404 Not Found", empty.Error())
	require.True(t, errors.Is(empty, ErrNotFound))
}
