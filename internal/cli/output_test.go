package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/restosync/internal/restaurant"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.SuccessWithGeneration(map[string]int{"records": 6}, "gen-1"))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "gen-1", resp.Generation)
	assert.NotNil(t, resp.Data)
	assert.Nil(t, resp.Error)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Error("NOT_FOUND", "restaurant not found", map[string]int64{"id": 9}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	assert.Equal(t, "restaurant not found", resp.Error.Message)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Success("6 records synced"))
	assert.Equal(t, "6 records synced\n", buf.String())
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Error("NETWORK_ERROR", "fetch failed", map[string]string{"endpoint": "x"}))
	assert.Contains(t, buf.String(), "Error [NETWORK_ERROR]: fetch failed")
	assert.NotContains(t, buf.String(), "Details:")

	buf.Reset()
	formatter.Verbose = true
	require.NoError(t, formatter.Error("NETWORK_ERROR", "fetch failed", map[string]string{"endpoint": "x"}))
	assert.Contains(t, buf.String(), "Details:")
}

func TestOutputFormatter_Fail(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	err := formatter.Fail(ExitFailure, "lookup failed", restaurant.NewNotFoundError(9))

	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, restaurant.IsNotFound(err))
	assert.Contains(t, buf.String(), "Error [NOT_FOUND]: lookup failed")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	out, diag := &bytes.Buffer{}, &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: out, ErrWriter: diag}

	formatter.VerboseLog("fetching %s", "http://x")
	assert.Empty(t, diag.String())

	formatter.Verbose = true
	formatter.VerboseLog("fetching %s", "http://x")
	assert.Equal(t, "fetching http://x\n", diag.String())
	assert.Empty(t, out.String())
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad flag")))
	assert.Equal(t, ExitCommandError, GetExitCode(fmt.Errorf("wrapped: %w", NewExitError(ExitCommandError, "bad flag"))))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "NETWORK_ERROR", errorCode(restaurant.NewNetworkError("x", nil)))
	assert.Equal(t, "STORE_INIT", errorCode(fmt.Errorf("open: %w", restaurant.NewStoreInitError("x", nil))))
	assert.Equal(t, ErrCodeGeneric, errorCode(errors.New("plain")))
}
