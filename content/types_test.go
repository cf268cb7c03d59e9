package content

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{"published", StatusPublished},
		{"PUBLISHED", StatusPublished},
		{"0", StatusPublished},
		{"hidden", StatusHidden},
		{"1", StatusHidden},
		{" trashed ", StatusTrashed},
		{"2", StatusTrashed},
	}
	for _, tt := range tests {
		got, err := ParseStatus(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"", "3", "-1", "draft"} {
		_, err := ParseStatus(bad)
		assert.ErrorIs(t, err, ErrInvalidArgument, bad)
	}
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "published", StatusPublished.String())
	assert.Equal(t, "hidden", StatusHidden.String())
	assert.Equal(t, "trashed", StatusTrashed.String())
	assert.Equal(t, "status(9)", Status(9).String())
	assert.False(t, Status(9).Valid())
}

func TestPostBrief(t *testing.T) {
	p := Post{Content: "# Title\n> quote with **bold** and `code`"}
	assert.Equal(t, " Title\n quote with bold and code", p.Brief())

	long := Post{Content: strings.Repeat("é", 300)}
	assert.Equal(t, strings.Repeat("é", 250), long.Brief())

	short := Post{Content: "short"}
	assert.Equal(t, "short", short.Brief())
}

func TestErrorMatching(t *testing.T) {
	cause := errors.New("disk on fire")
	err := fmt.Errorf("outer: %w", ErrDuplicateTitle.WithCause(cause))

	assert.ErrorIs(t, err, ErrDuplicateTitle)
	assert.NotErrorIs(t, err, ErrDuplicateText)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, CodeDuplicateTitle, CodeOf(err))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestCodeHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, CodeNotFound.HTTPStatus())
	assert.Equal(t, http.StatusConflict, CodeDuplicateTitle.HTTPStatus())
	assert.Equal(t, http.StatusConflict, CodeDuplicateText.HTTPStatus())
	assert.Equal(t, http.StatusConflict, CodeAlreadyAttached.HTTPStatus())
	assert.Equal(t, http.StatusBadRequest, CodeInvalidArgument.HTTPStatus())
	assert.Equal(t, http.StatusServiceUnavailable, CodeStorageUnavailable.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, CodeInternal.HTTPStatus())
	assert.True(t, CodeStorageUnavailable.Retryable())
	assert.False(t, CodeNotFound.Retryable())
}
