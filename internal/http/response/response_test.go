package response

import (
	"encoding/json/v2"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/listenupapp/storybook/internal/errors"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestOk(t *testing.T) {
	w := httptest.NewRecorder()

	JSON(w, http.StatusOK, Ok(map[string]string{"id": "book-1"}), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	out := decode(t, w)
	assert.Equal(t, float64(Version), out["v"])
	assert.Equal(t, true, out["success"])
	assert.Equal(t, map[string]any{"id": "book-1"}, out["data"])
	assert.NotContains(t, out, "error")
}

func TestOk_NilData(t *testing.T) {
	w := httptest.NewRecorder()

	JSON(w, http.StatusOK, Ok(nil), nil)

	out := decode(t, w)
	assert.Equal(t, true, out["success"])
	assert.NotContains(t, out, "data")
}

func TestNotFound(t *testing.T) {
	w := httptest.NewRecorder()

	NotFound(w, "route not found", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	out := decode(t, w)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "route not found", out["error"])
	assert.Equal(t, "NOT_FOUND", out["code"])
}

func TestMethodNotAllowed(t *testing.T) {
	w := httptest.NewRecorder()

	MethodNotAllowed(w, "method not allowed", nil)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "method not allowed", decode(t, w)["message"])
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", domainerrors.ValidationWithDetails("validation failed", map[string]string{"title": "is required"}), http.StatusBadRequest, "VALIDATION"},
		{"not found", domainerrors.NotFound("book not found"), http.StatusNotFound, "NOT_FOUND"},
		{"storage", domainerrors.Storage(errors.New("disk"), "failed to save book"), http.StatusInternalServerError, "STORAGE"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			HandleError(w, tt.err, nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			out := decode(t, w)
			assert.Equal(t, false, out["success"])
			assert.Equal(t, tt.wantCode, out["code"])
		})
	}
}

func TestHandleError_KeepsDetails(t *testing.T) {
	w := httptest.NewRecorder()

	HandleError(w, domainerrors.ValidationWithDetails("validation failed", map[string]string{"pages": "must have at least 1 item(s)"}), nil)

	out := decode(t, w)
	assert.Equal(t, map[string]any{"pages": "must have at least 1 item(s)"}, out["details"])
}
