package server

import (
	"bytes"
	"testing"

	"github.com/bastiangx/wordhist/internal/utils"
	"github.com/bastiangx/wordhist/pkg/config"
	"github.com/bastiangx/wordhist/pkg/history"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

var testFilter = utils.WordFilter{MinLen: 1, MaxLen: 64}

// run feeds requests to a fresh server and returns a decoder over its output,
// positioned after the ready status.
func run(t *testing.T, idx *history.Index, cfg config.ServerConfig, requests ...any) *msgpack.Decoder {
	t.Helper()

	var in, out bytes.Buffer
	enc := msgpack.NewEncoder(&in)
	for _, req := range requests {
		require.NoError(t, enc.Encode(req))
	}

	srv, err := NewServerWithIO(idx, testFilter, cfg, &in, &out)
	require.NoError(t, err)
	require.NoError(t, srv.Start())

	dec := msgpack.NewDecoder(&out)
	var status StatusResponse
	require.NoError(t, dec.Decode(&status))
	require.Equal(t, "ready", status.Status)
	return dec
}

func decode[T any](t *testing.T, dec *msgpack.Decoder) T {
	t.Helper()
	var v T
	require.NoError(t, dec.Decode(&v))
	return v
}

func words(s []CompletionSuggestion) []string {
	out := make([]string, len(s))
	for i, sg := range s {
		out[i] = sg.Word
	}
	return out
}

func TestRecordAndComplete(t *testing.T) {
	idx := history.New(false)
	dec := run(t, idx, config.DefaultConfig().Server,
		Request{ID: "r1", Action: ActionRecord, Words: []string{"cat", "car"}},
		Request{ID: "r2", Action: ActionRecord, Line: "cat, dog!"},
		Request{ID: "c1", Action: ActionComplete, Prefix: "ca"},
	)

	r1 := decode[RecordResponse](t, dec)
	assert.Equal(t, RecordResponse{ID: "r1", Recorded: 2, Total: 2}, r1)
	r2 := decode[RecordResponse](t, dec)
	assert.Equal(t, RecordResponse{ID: "r2", Recorded: 2, Total: 3}, r2)

	c1 := decode[CompletionResponse](t, dec)
	assert.Equal(t, "c1", c1.ID)
	assert.Equal(t, 2, c1.Count)
	assert.Equal(t, []CompletionSuggestion{
		{Word: "cat", Rank: 1, Hits: 2},
		{Word: "car", Rank: 2, Hits: 1},
	}, c1.Suggestions)
}

func TestCompleteWithoutAction(t *testing.T) {
	idx := history.New(false)
	idx.RecordLine("apple apply", nil)

	dec := run(t, idx, config.DefaultConfig().Server, Request{ID: "c", Prefix: "app", Limit: 1})
	resp := decode[CompletionResponse](t, dec)
	assert.Equal(t, []string{"apply"}, words(resp.Suggestions))
}

func TestLimitClamping(t *testing.T) {
	idx := history.New(false)
	for _, w := range []string{"aa", "ab", "ac", "ad", "ae"} {
		idx.Record(w)
	}
	cfg := config.DefaultConfig().Server
	cfg.DefaultLimit = 2
	cfg.MaxLimit = 3

	dec := run(t, idx, cfg,
		Request{ID: "default", Action: ActionComplete, Prefix: "a"},
		Request{ID: "clamped", Action: ActionComplete, Prefix: "a", Limit: 50},
	)
	assert.Equal(t, 2, decode[CompletionResponse](t, dec).Count)
	assert.Equal(t, 3, decode[CompletionResponse](t, dec).Count)
}

func TestPrefixValidation(t *testing.T) {
	cfg := config.DefaultConfig().Server
	cfg.MinPrefix = 2
	cfg.MaxPrefix = 4

	dec := run(t, history.New(false), cfg,
		Request{ID: "empty", Action: ActionComplete},
		Request{ID: "short", Action: ActionComplete, Prefix: "a"},
		Request{ID: "long", Action: ActionComplete, Prefix: "abcde"},
		Request{ID: "runes", Action: ActionComplete, Prefix: "äöüß"},
	)

	testCases := []struct {
		id      string
		message string
	}{
		{"empty", "missing 'p' parameter"},
		{"short", "prefix must be at least 2 characters"},
		{"long", "prefix exceeds maximum length of 4 characters"},
	}
	for _, tc := range testCases {
		resp := decode[ErrorResponse](t, dec)
		assert.Equal(t, ErrorResponse{ID: tc.id, Error: tc.message, Code: 400}, resp)
	}

	ok := decode[CompletionResponse](t, dec)
	assert.Equal(t, "runes", ok.ID)
	assert.Empty(t, ok.Suggestions)
}

func TestBadRequests(t *testing.T) {
	dec := run(t, history.New(false), config.DefaultConfig().Server,
		"not a map",
		Request{ID: "x", Action: "explode"},
		Request{ID: "r", Action: ActionRecord},
	)

	bad := decode[ErrorResponse](t, dec)
	assert.Equal(t, 400, bad.Code)
	assert.Equal(t, "invalid msgpack request", bad.Error)

	unknown := decode[ErrorResponse](t, dec)
	assert.Equal(t, "x", unknown.ID)
	assert.Contains(t, unknown.Error, "explode")

	empty := decode[ErrorResponse](t, dec)
	assert.Equal(t, "r", empty.ID)
}

func TestRecordFiltersWords(t *testing.T) {
	idx := history.New(false)
	cfg := config.DefaultConfig().Server

	var in, out bytes.Buffer
	require.NoError(t, msgpack.NewEncoder(&in).Encode(Request{
		ID: "r", Action: ActionRecord, Words: []string{"ok", "x", "1234", "zzzz"},
	}))
	srv, err := NewServerWithIO(idx, utils.WordFilter{MinLen: 2}, cfg, &in, &out)
	require.NoError(t, err)
	require.NoError(t, srv.Start())

	dec := msgpack.NewDecoder(&out)
	decode[StatusResponse](t, dec)
	resp := decode[RecordResponse](t, dec)
	assert.Equal(t, 1, resp.Recorded)
	assert.Equal(t, 1, idx.Len())
}

func TestCacheIsPurgedOnRecord(t *testing.T) {
	idx := history.New(false)
	idx.Record("cat")

	dec := run(t, idx, config.DefaultConfig().Server,
		Request{ID: "c1", Action: ActionComplete, Prefix: "c"},
		Request{ID: "s1", Action: ActionStats},
		Request{ID: "r", Action: ActionRecord, Words: []string{"cow", "cow"}},
		Request{ID: "s2", Action: ActionStats},
		Request{ID: "c2", Action: ActionComplete, Prefix: "c"},
	)

	assert.Equal(t, []string{"cat"}, words(decode[CompletionResponse](t, dec).Suggestions))
	assert.Equal(t, 1, decode[StatsResponse](t, dec).Cached)
	decode[RecordResponse](t, dec)
	assert.Equal(t, 0, decode[StatsResponse](t, dec).Cached)
	assert.Equal(t, []string{"cow", "cat"}, words(decode[CompletionResponse](t, dec).Suggestions))
}

func TestStatsFollowIndex(t *testing.T) {
	idx := history.New(false)
	idx.RecordLine("tea Tea toast", nil)

	dec := run(t, idx, config.DefaultConfig().Server,
		Request{ID: "s1", Action: ActionStats},
		Request{ID: "r", Action: ActionRecord, Line: "tart"},
		Request{ID: "s2", Action: ActionStats},
	)

	first := decode[StatsResponse](t, dec)
	assert.Equal(t, StatsResponse{ID: "s1", Words: 2, Accesses: 3, Requests: 1}, first)
	decode[RecordResponse](t, dec)
	second := decode[StatsResponse](t, dec)
	assert.Equal(t, StatsResponse{ID: "s2", Words: 3, Accesses: 4, Requests: 3}, second)
	assert.Equal(t, idx.Stats()["totalWords"], second.Words)
}

func TestCacheDisabled(t *testing.T) {
	idx := history.New(true)
	idx.Record("Go")
	cfg := config.DefaultConfig().Server
	cfg.CacheSize = 0

	dec := run(t, idx, cfg,
		Request{ID: "c", Action: ActionComplete, Prefix: "G"},
		Request{ID: "s", Action: ActionStats},
	)
	decode[CompletionResponse](t, dec)
	stats := decode[StatsResponse](t, dec)
	assert.Equal(t, StatsResponse{
		ID: "s", Words: 1, Accesses: 1, CaseSensitive: true, Requests: 2, Cached: 0,
	}, stats)
}
