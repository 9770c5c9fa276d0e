package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/restosync/internal/store"
	"github.com/roach88/restosync/internal/testutil"
)

// response mirrors CLIResponse with the payload left undecoded.
type response struct {
	Status     string          `json:"status"`
	Data       json.RawMessage `json:"data"`
	Error      *CLIError       `json:"error"`
	Generation string          `json:"generation"`
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// executeJSON runs a command against feed and db with JSON output.
func executeJSON(t *testing.T, feed *testutil.Feed, db string, args ...string) (response, error) {
	t.Helper()
	full := append([]string{"--format", "json", "--endpoint", feed.URL, "--db", db}, args...)
	out, err := execute(t, full...)

	var resp response
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	return resp, err
}

func decodeData[T any](t *testing.T, resp response) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(resp.Data, &v))
	return v
}

func tempDB(t *testing.T) string {
	return filepath.Join(t.TempDir(), "restaurants.db")
}

func TestSyncCommand(t *testing.T) {
	feed := testutil.NewFeed(t, testutil.Restaurants())
	db := tempDB(t)

	resp, err := executeJSON(t, feed, db, "sync")
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.Generation)

	result := decodeData[SyncResult](t, resp)
	assert.Equal(t, 6, result.Records)
	assert.False(t, result.Cached)
	assert.Equal(t, int64(6), result.Persisted)
	assert.Zero(t, result.WriteErrors)
	assert.Equal(t, []string{"Manhattan", "Brooklyn", "Queens"}, result.Neighborhoods)
	assert.Equal(t, []string{"Asian", "Pizza", "American", "Mexican"}, result.Cuisines)

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()
	count, err := st.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, count)
}

func TestSyncCommandText(t *testing.T) {
	feed := testutil.NewFeed(t, testutil.Restaurants())

	out, err := execute(t, "--endpoint", feed.URL, "--db", tempDB(t), "sync")
	require.NoError(t, err)
	assert.Contains(t, out, "Loaded 6 restaurants from remote feed")
	assert.Contains(t, out, "Cached 6 records")
	assert.Contains(t, out, "Neighborhoods: Manhattan, Brooklyn, Queens")
}

func TestSyncCommandOfflineFallback(t *testing.T) {
	feed := testutil.NewFeed(t, testutil.Restaurants())
	db := tempDB(t)

	_, err := executeJSON(t, feed, db, "sync")
	require.NoError(t, err)

	feed.SetDown(true)
	resp, err := executeJSON(t, feed, db, "sync")
	require.NoError(t, err)

	result := decodeData[SyncResult](t, resp)
	assert.True(t, result.Cached)
	assert.Equal(t, 6, result.Records)
	assert.Zero(t, result.Persisted, "replayed records are not written back")
	assert.Equal(t, []string{"Manhattan", "Brooklyn", "Queens"}, result.Neighborhoods)
}

func TestSyncCommandFailsWithEmptyCache(t *testing.T) {
	feed := testutil.NewFeed(t, testutil.Restaurants())
	feed.SetDown(true)

	resp, err := executeJSON(t, feed, tempDB(t), "sync")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NETWORK_ERROR", resp.Error.Code)
}

func TestSyncCommandInvalidConfig(t *testing.T) {
	t.Setenv("RESTOSYNC_LOG_LEVEL", "loud")
	feed := testutil.NewFeed(t, testutil.Restaurants())

	resp, err := executeJSON(t, feed, tempDB(t), "sync")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeConfig, resp.Error.Code)
	assert.Zero(t, feed.Calls())
}

func TestListCommand(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantIDs     []int64
		wantMatched int
	}{
		{
			name:        "everything",
			args:        nil,
			wantIDs:     []int64{1, 2, 3, 4, 5, 6},
			wantMatched: 6,
		},
		{
			name:        "cuisine",
			args:        []string{"--cuisine", "Pizza"},
			wantIDs:     []int64{2, 5},
			wantMatched: 2,
		},
		{
			name:        "neighborhood",
			args:        []string{"--neighborhood", "Manhattan"},
			wantIDs:     []int64{1, 3, 4},
			wantMatched: 3,
		},
		{
			name:        "no match",
			args:        []string{"--cuisine", "Asian", "--neighborhood", "Brooklyn"},
			wantIDs:     []int64{},
			wantMatched: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feed := testutil.NewFeed(t, testutil.Restaurants())

			resp, err := executeJSON(t, feed, tempDB(t), append([]string{"list"}, tt.args...)...)
			require.NoError(t, err)

			result := decodeData[ListResult](t, resp)
			assert.Equal(t, tt.wantMatched, result.Matched)
			ids := []int64{}
			for _, it := range result.Revealed {
				ids = append(ids, it.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Zero(t, result.Pending)
		})
	}
}

func TestListCommandRevealsOnScroll(t *testing.T) {
	// One tile per viewport.
	t.Setenv("RESTOSYNC_VIEWPORT_WIDTH", "180")
	t.Setenv("RESTOSYNC_VIEWPORT_HEIGHT", "200")
	feed := testutil.NewFeed(t, testutil.Restaurants())

	tests := []struct {
		scrolls      string
		wantRevealed int
	}{
		{"0", 1},
		{"2", 3},
		{"10", 6},
	}

	for _, tt := range tests {
		t.Run("scrolls="+tt.scrolls, func(t *testing.T) {
			resp, err := executeJSON(t, feed, tempDB(t), "list", "--scrolls", tt.scrolls)
			require.NoError(t, err)

			result := decodeData[ListResult](t, resp)
			assert.Len(t, result.Revealed, tt.wantRevealed)
			assert.Equal(t, 6-tt.wantRevealed, result.Pending)
			assert.Equal(t, int64(1), result.Revealed[0].ID)
		})
	}
}

func TestListCommandHTML(t *testing.T) {
	feed := testutil.NewFeed(t, testutil.Restaurants())

	resp, err := executeJSON(t, feed, tempDB(t), "list", "--cuisine", "Pizza", "--html")
	require.NoError(t, err)

	result := decodeData[ListResult](t, resp)
	require.Len(t, result.HTML, 2)
	assert.Contains(t, result.HTML[0], `id="r2"`)
	assert.Contains(t, result.HTML[0], "<picture")
	assert.Contains(t, result.HTML[1], "Roberta")

	require.Len(t, result.Revealed, 2)
	assert.Equal(t, "./review/2", result.Revealed[0].URL)
	assert.Equal(t, "/img/2.jpg", result.Revealed[0].ImageURL)
}

func TestListCommandNegativeScrolls(t *testing.T) {
	feed := testutil.NewFeed(t, testutil.Restaurants())

	resp, err := executeJSON(t, feed, tempDB(t), "list", "--scrolls=-1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeUsage, resp.Error.Code)
}

func TestShowCommand(t *testing.T) {
	feed := testutil.NewFeed(t, testutil.Restaurants())

	resp, err := executeJSON(t, feed, tempDB(t), "show", "4")
	require.NoError(t, err)

	result := decodeData[ShowResult](t, resp)
	assert.Equal(t, int64(4), result.ID)
	assert.Equal(t, "Katz's Delicatessen", result.Name)
	assert.Equal(t, "./review/4", result.ReviewURL)
	assert.Equal(t, "/img/4.jpg", result.ImageURL)
	assert.Len(t, result.Reviews, 1)
}

func TestShowCommandText(t *testing.T) {
	feed := testutil.NewFeed(t, testutil.Restaurants())

	out, err := execute(t, "--endpoint", feed.URL, "--db", tempDB(t), "show", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Emily (#2)")
	assert.Contains(t, out, "Neighborhood: Brooklyn")
	assert.Contains(t, out, "Page:         ./review/2")
}

func TestShowCommandNotFound(t *testing.T) {
	feed := testutil.NewFeed(t, testutil.Restaurants())

	resp, err := executeJSON(t, feed, tempDB(t), "show", "99")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestShowCommandFallsBackToCache(t *testing.T) {
	feed := testutil.NewFeed(t, testutil.Restaurants())
	db := tempDB(t)

	_, err := executeJSON(t, feed, db, "sync")
	require.NoError(t, err)
	feed.SetDown(true)

	resp, err := executeJSON(t, feed, db, "show", "5")
	require.NoError(t, err)
	assert.Equal(t, "Roberta's Pizza", decodeData[ShowResult](t, resp).Name)

	resp, err = executeJSON(t, feed, db, "show", "99")
	require.Error(t, err)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestShowCommandInvalidID(t *testing.T) {
	_, err := execute(t, "--db", tempDB(t), "show", "abc")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestFacetsCommand(t *testing.T) {
	feed := testutil.NewFeed(t, testutil.Restaurants())
	db := tempDB(t)

	resp, err := executeJSON(t, feed, db, "facets")
	require.NoError(t, err)
	empty := decodeData[FacetsResult](t, resp)
	assert.Zero(t, empty.Records)
	assert.Empty(t, empty.Neighborhoods)
	assert.Empty(t, empty.Cuisines)

	_, err = executeJSON(t, feed, db, "sync")
	require.NoError(t, err)
	calls := feed.Calls()

	resp, err = executeJSON(t, feed, db, "facets")
	require.NoError(t, err)
	result := decodeData[FacetsResult](t, resp)
	assert.Equal(t, 6, result.Records)
	assert.Equal(t, []string{"Manhattan", "Brooklyn", "Queens"}, result.Neighborhoods)
	assert.Equal(t, []string{"Asian", "Pizza", "American", "Mexican"}, result.Cuisines)
	assert.Equal(t, calls, feed.Calls(), "facets reads only the cache")
}

func TestPurgeCommand(t *testing.T) {
	feed := testutil.NewFeed(t, testutil.Restaurants())
	db := tempDB(t)

	_, err := executeJSON(t, feed, db, "sync")
	require.NoError(t, err)
	_, err = os.Stat(db)
	require.NoError(t, err)

	resp, err := executeJSON(t, feed, db, "purge")
	require.NoError(t, err)
	assert.Equal(t, db, decodeData[PurgeResult](t, resp).Path)
	_, err = os.Stat(db)
	assert.True(t, os.IsNotExist(err))

	// Purging a missing cache is not an error.
	_, err = executeJSON(t, feed, db, "purge")
	require.NoError(t, err)
}

func TestServeCommandStopsOnContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := NewRootCommand()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"serve", "--addr", "127.0.0.1:0", "--file", "../feed/testdata/restaurants.json"})

	require.NoError(t, cmd.ExecuteContext(ctx))
}

func TestServeCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing file", []string{"serve", "--file", "does/not/exist.json"}},
		{"seed without dsn", []string{"serve", "--seed", "--file", "../feed/testdata/restaurants.json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}
