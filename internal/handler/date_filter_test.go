package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateRange(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/reports?from=2024-03-01&to=2024-03-31", nil)
	from, to, err := parseDateRange(req)
	require.NoError(t, err)
	require.NotNil(t, from)
	require.NotNil(t, to)
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), *from)
	// "to" covers the whole closing day.
	assert.True(t, to.After(time.Date(2024, time.March, 31, 23, 59, 59, 0, time.UTC)))
	assert.True(t, to.Before(time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)))
}

func TestParseDateRangeRejectsInverted(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/reports?from=2024-04-01&to=2024-03-01", nil)
	_, _, err := parseDateRange(req)
	assert.Error(t, err)
}

func TestParseDateRangeRejectsMalformed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/reports?from=03%2F01%2F2024", nil)
	_, _, err := parseDateRange(req)
	assert.Error(t, err)
}

func TestParseDateRangeOpenEnded(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/reports?from=2024-03-01", nil)
	from, to, err := parseDateRange(req)
	require.NoError(t, err)
	assert.NotNil(t, from)
	assert.Nil(t, to)
}
