package apperr

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromPassesTypedErrors(t *testing.T) {
	nf := NotFound("Запись не найдена", sql.ErrNoRows).With("id", 5)
	wrapped := fmt.Errorf("handler: %w", nf)

	got := From(wrapped)
	require.Same(t, nf, got)
	assert.Equal(t, http.StatusNotFound, got.Status())
	assert.Equal(t, 5, got.Extra["id"])
	assert.True(t, errors.Is(got, sql.ErrNoRows))
}

func TestFromWrapsUnknownAsInternal(t *testing.T) {
	got := From(errors.New("connection reset"))
	assert.Equal(t, KindInternal, got.Kind)
	assert.Equal(t, http.StatusInternalServerError, got.Status())
	assert.Equal(t, InternalMessage, got.Message)
	assert.Equal(t, "connection reset", got.Extra["detail"])
}

func TestKindStatus(t *testing.T) {
	tests := map[Kind]int{
		KindNotFound:        http.StatusNotFound,
		KindBadRequest:      http.StatusBadRequest,
		KindUnauthorized:    http.StatusUnauthorized,
		KindForbidden:       http.StatusForbidden,
		KindTooManyRequests: http.StatusTooManyRequests,
		KindInternal:        http.StatusInternalServerError,
	}
	for kind, status := range tests {
		assert.Equal(t, status, kind.Status())
	}
	assert.Nil(t, From(nil))
	assert.True(t, IsKind(BadRequest("x", nil), KindBadRequest))
	assert.False(t, IsKind(errors.New("x"), KindBadRequest))
}
