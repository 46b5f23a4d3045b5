package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"market-dash-service/internal/domain"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		msg    string
	}{
		{&domain.ValidationError{Field: "name", Message: "must not be empty"}, http.StatusBadRequest, "name: must not be empty"},
		{fmt.Errorf("get shop: %w", domain.ErrNotFound), http.StatusNotFound, "not found"},
		{fmt.Errorf("shop 1: %w", domain.ErrForbidden), http.StatusForbidden, "forbidden"},
		{fmt.Errorf("order 1: %w", domain.ErrInvalidTransition), http.StatusConflict, "invalid status transition"},
		{fmt.Errorf("product 1: %w", domain.ErrInsufficientStock), http.StatusConflict, "insufficient stock"},
		{fmt.Errorf("shop has orders: %w", domain.ErrConflict), http.StatusConflict, "conflict"},
		{errors.New("database is locked"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			w := httptest.NewRecorder()
			writeServiceError(w, httptest.NewRequest(http.MethodGet, "/x", nil), tt.err)

			assert.Equal(t, tt.status, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.msg, body["error"])
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name string
		body string
		ok   bool
	}{
		{"single object", `{"name":"a"}`, true},
		{"unknown field", `{"name":"a","extra":1}`, false},
		{"trailing object", `{"name":"a"}{"name":"b"}`, false},
		{"not json", `name=a`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(tt.body))

			var p payload
			assert.Equal(t, tt.ok, decodeJSON(w, r, &p))
			if !tt.ok {
				assert.Equal(t, http.StatusBadRequest, w.Code)
			}
		})
	}
}

func TestQueryHelpers(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/x?shop_id=1,2&shop_id=3&from=2026-10-01&to=2026-10-18T10:00:00%2B02:00&limit=x", nil)

	ids, err := queryIDs(r, "shop_id")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids)

	ids, err = queryIDs(r, "company_id")
	require.NoError(t, err)
	assert.Nil(t, ids)

	from, err := queryTime(r, "from")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), from)

	to, err := queryTime(r, "to")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC), to)

	_, err = queryInt(r, "limit", 10)
	assert.ErrorIs(t, err, domain.ErrValidation)

	n, err := queryInt(r, "offset", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	bad := httptest.NewRequest(http.MethodGet, "/x?shop_id=-1", nil)
	_, err = queryIDs(bad, "shop_id")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRequireActorWithoutMiddleware(t *testing.T) {
	w := httptest.NewRecorder()
	_, ok := requireActor(w, httptest.NewRequest(http.MethodGet, "/orders", nil))
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
