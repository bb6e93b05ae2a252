package response

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestOK(t *testing.T) {
	rec := httptest.NewRecorder()
	OK(rec, "it worked", map[string]string{"key": "value"})

	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	env := decode(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, "it worked", env.Message)
	assert.Nil(t, env.Errors)
	assert.Equal(t, map[string]interface{}{"key": "value"}, env.Data)
}

func TestCreated(t *testing.T) {
	rec := httptest.NewRecorder()
	Created(rec, "created", nil)

	assert.Equal(t, 201, rec.Code)
	env := decode(t, rec)
	assert.True(t, env.Success)
	assert.Nil(t, env.Data)
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name    string
		fn      func(rec *httptest.ResponseRecorder)
		status  int
		message string
		detail  string
	}{
		{"bad request", func(rec *httptest.ResponseRecorder) { BadRequest(rec, "bad input") }, 400, "bad request", "bad input"},
		{"unauthorized", func(rec *httptest.ResponseRecorder) { Unauthorized(rec, "no token") }, 401, "unauthorized", "no token"},
		{"forbidden", func(rec *httptest.ResponseRecorder) { Forbidden(rec, "not yours") }, 403, "forbidden", "not yours"},
		{"not found", func(rec *httptest.ResponseRecorder) { NotFound(rec, "missing") }, 404, "not found", "missing"},
		{"conflict", func(rec *httptest.ResponseRecorder) { Conflict(rec, "duplicate") }, 409, "conflict", "duplicate"},
		{"gone", func(rec *httptest.ResponseRecorder) { Gone(rec, "expired") }, 410, "gone", "expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.fn(rec)

			assert.Equal(t, tt.status, rec.Code)
			env := decode(t, rec)
			assert.False(t, env.Success)
			assert.Equal(t, tt.message, env.Message)
			require.NotNil(t, env.Errors)
			assert.Equal(t, tt.detail, env.Errors.Detail)
		})
	}
}

func TestInternalError_HidesCause(t *testing.T) {
	rec := httptest.NewRecorder()
	InternalError(rec)

	assert.Equal(t, 500, rec.Code)
	env := decode(t, rec)
	assert.False(t, env.Success)
	require.NotNil(t, env.Errors)
	assert.Equal(t, "internal server error", env.Errors.Detail)
}
