package httputil

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, 201, map[string]int{"count": 3})

	assert.Equal(t, 201, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"count":3}`, rec.Body.String())
}

func TestWriteJSONError(t *testing.T) {
	rec := httptest.NewRecorder()
	NotFound(rec, "no such run")

	assert.Equal(t, 404, rec.Code)
	assert.JSONEq(t, `{"error":"no such run"}`, rec.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"walk1"}`))
	require.NoError(t, DecodeJSON(req, &dst))
	assert.Equal(t, "walk1", dst.Name)

	req = httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"walk1","bogus":true}`))
	assert.Error(t, DecodeJSON(req, &dst))

	req = httptest.NewRequest("POST", "/", strings.NewReader(`{broken`))
	assert.Error(t, DecodeJSON(req, &dst))
}
