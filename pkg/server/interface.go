/*
Package server implements msgpack IPC for the word history.

The server reads a stream of msgpack maps from stdin and writes one msgpack map
per request to stdout. Nothing else is written to stdout; logs go to stderr.
Once ready, the server sends a status message:

	{"status": "ready"}

# IPC

Every request carries an ID, echoed back in the response, and an action in
"a". A request without an action but with a prefix is a completion request.

Recording words, either as a list or as a raw line split like the CLI does:

	{"id": "r1", "a": "record", "w": ["cat", "car"]}
	{"id": "r2", "a": "record", "line": "the cat sat"}

	{"id": "r2", "recorded": 3, "total": 4}

Completing a prefix, with an optional limit clamped to the configured maximum:

	{"id": "c1", "a": "complete", "p": "ca", "l": 5}

	{"id": "c1", "s": [{"w": "cat", "r": 1, "h": 2}, {"w": "car", "r": 2, "h": 1}], "c": 2, "t": 12}

Suggestions are ordered by hit count, then by how recently they were used. "r"
is the 1 based position, "h" the hit count and "t" the lookup time in
microseconds.

Index counters:

	{"id": "s1", "a": "stats"}

	{"id": "s1", "words": 3, "accesses": 4, "case": false, "requests": 3, "cached": 1}

Failures answer with the request ID, a message and a code:

	{"id": "c9", "e": "prefix exceeds maximum length of 60 characters", "c": 400}

Completion results are cached per prefix and limit until the next record
request changes the index.
*/
package server

// Actions understood by the server.
const (
	ActionRecord   = "record"
	ActionComplete = "complete"
	ActionStats    = "stats"
)

// Request is the union of every request shape
type Request struct {
	ID     string   `msgpack:"id"`
	Action string   `msgpack:"a,omitempty"`
	Prefix string   `msgpack:"p,omitempty"`
	Limit  int      `msgpack:"l,omitempty"`
	Words  []string `msgpack:"w,omitempty"`
	Line   string   `msgpack:"line,omitempty"`
}

// StatusResponse - lifecycle notice
type StatusResponse struct {
	Status string `msgpack:"status"`
}

// RecordResponse - record result
type RecordResponse struct {
	ID       string `msgpack:"id"`
	Recorded int    `msgpack:"recorded"`
	Total    int    `msgpack:"total"`
}

// CompletionSuggestion - minimal suggestion response
type CompletionSuggestion struct {
	Word string `msgpack:"w"`
	Rank uint16 `msgpack:"r"`
	Hits int    `msgpack:"h"`
}

// CompletionResponse - completion response
type CompletionResponse struct {
	ID          string                 `msgpack:"id"`
	Suggestions []CompletionSuggestion `msgpack:"s"`
	Count       int                    `msgpack:"c"`
	TimeTaken   int64                  `msgpack:"t"`
}

// StatsResponse - index counters
type StatsResponse struct {
	ID            string `msgpack:"id"`
	Words         int    `msgpack:"words"`
	Accesses      uint64 `msgpack:"accesses"`
	CaseSensitive bool   `msgpack:"case"`
	Requests      int    `msgpack:"requests"`
	Cached        int    `msgpack:"cached"`
}

// ErrorResponse holds basic error information for failed requests
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
