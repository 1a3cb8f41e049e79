package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIErrorLogsWithoutLevelPrefix(t *testing.T) {
	e, c, rec := setupEcho(http.MethodGet, "/api/checklists", nil)
	var logs bytes.Buffer
	e.Logger.SetOutput(&logs)

	require.NoError(t, apiError(c, errors.New("disk full")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk full")
	assert.Contains(t, logs.String(), "disk full")
	assert.NotContains(t, logs.String(), "[ERROR]")
}
