package server

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/wordhist/internal/logger"
	"github.com/bastiangx/wordhist/internal/utils"
	"github.com/bastiangx/wordhist/pkg/config"
	"github.com/bastiangx/wordhist/pkg/history"
	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/vmihailenco/msgpack/v5"
)

type cacheKey struct {
	prefix string
	limit  int
}

// Server handles the IPC for word history requests
type Server struct {
	index    *history.Index
	accept   func(string) bool
	cfg      config.ServerConfig
	cache    *lru.Cache[cacheKey, []CompletionSuggestion]
	dec      *msgpack.Decoder
	enc      *msgpack.Encoder
	out      *bufio.Writer
	log      *log.Logger
	requests int
}

// NewServer creates a server on stdin/stdout
func NewServer(index *history.Index, filter utils.WordFilter, cfg config.ServerConfig) (*Server, error) {
	return NewServerWithIO(index, filter, cfg, os.Stdin, os.Stdout)
}

// NewServerWithIO creates a server reading requests from r and writing
// responses to w. A cache size below 1 disables the completion cache.
func NewServerWithIO(index *history.Index, filter utils.WordFilter, cfg config.ServerConfig, r io.Reader, w io.Writer) (*Server, error) {
	s := &Server{
		index:  index,
		accept: filter.Accept,
		cfg:    cfg,
		dec:    msgpack.NewDecoder(bufio.NewReader(r)),
		out:    bufio.NewWriter(w),
		log:    logger.New("server"),
	}
	s.enc = msgpack.NewEncoder(s.out)

	if cfg.CacheSize > 0 {
		cache, err := lru.New[cacheKey, []CompletionSuggestion](cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create completion cache: %w", err)
		}
		s.cache = cache
	}
	return s, nil
}

// Start sends the ready status and serves requests until the input ends
func (s *Server) Start() error {
	s.log.Debug("Starting Server.")

	if err := s.send(StatusResponse{Status: "ready"}); err != nil {
		return err
	}

	for {
		raw, err := s.dec.DecodeRaw()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.log.Debugf("Input closed after %d requests", s.requests)
				return nil
			}
			s.log.Errorf("Reading request: %v", err)
			return fmt.Errorf("failed to read request: %w", err)
		}
		if err := s.handleRequest(raw); err != nil {
			return err
		}
	}
}

// handleRequest answers one encoded request. Only write failures are
// returned; bad requests get an ErrorResponse.
func (s *Server) handleRequest(raw msgpack.RawMessage) error {
	s.requests++

	var req Request
	if err := msgpack.Unmarshal(raw, &req); err != nil {
		s.log.Debugf("Unmarshaling request: %v", err)
		return s.sendError("", "invalid msgpack request", 400)
	}

	action := req.Action
	if action == "" && req.Prefix != "" {
		action = ActionComplete
	}

	switch action {
	case ActionRecord:
		return s.handleRecord(req)
	case ActionComplete:
		return s.handleComplete(req)
	case ActionStats:
		return s.handleStats(req)
	default:
		return s.sendError(req.ID, fmt.Sprintf("unknown action: %q", req.Action), 400)
	}
}

func (s *Server) handleRecord(req Request) error {
	if len(req.Words) == 0 && req.Line == "" {
		return s.sendError(req.ID, "record needs 'w' or 'line'", 400)
	}

	recorded := 0
	for _, word := range req.Words {
		if s.accept(word) {
			s.index.Record(word)
			recorded++
		}
	}
	if req.Line != "" {
		recorded += s.index.RecordLine(req.Line, s.accept)
	}

	if recorded > 0 && s.cache != nil {
		s.cache.Purge()
	}
	s.log.Debugf("Recorded %d words for %s", recorded, req.ID)

	return s.send(RecordResponse{
		ID:       req.ID,
		Recorded: recorded,
		Total:    s.index.Len(),
	})
}

func (s *Server) handleComplete(req Request) error {
	prefixLen := utf8.RuneCountInString(req.Prefix)
	if prefixLen < s.cfg.MinPrefix {
		if req.Prefix == "" {
			return s.sendError(req.ID, "missing 'p' parameter", 400)
		}
		return s.sendError(req.ID, fmt.Sprintf("prefix must be at least %d characters", s.cfg.MinPrefix), 400)
	}
	if prefixLen > s.cfg.MaxPrefix {
		return s.sendError(req.ID, fmt.Sprintf("prefix exceeds maximum length of %d characters", s.cfg.MaxPrefix), 400)
	}

	limit := utils.ClampLimit(req.Limit, s.cfg.DefaultLimit, s.cfg.MaxLimit)
	key := cacheKey{prefix: req.Prefix, limit: limit}

	start := time.Now()
	suggestions, hit := s.cached(key)
	if !hit {
		suggestions = s.complete(req.Prefix, limit)
		if s.cache != nil {
			s.cache.Add(key, suggestions)
		}
	}
	elapsed := time.Since(start)
	s.log.Debugf("Completed %q: %d suggestions in %v (cached: %t)", req.Prefix, len(suggestions), elapsed, hit)

	return s.send(CompletionResponse{
		ID:          req.ID,
		Suggestions: suggestions,
		Count:       len(suggestions),
		TimeTaken:   elapsed.Microseconds(),
	})
}

func (s *Server) cached(key cacheKey) ([]CompletionSuggestion, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Get(key)
}

func (s *Server) complete(prefix string, limit int) []CompletionSuggestion {
	entries := s.index.Matches(prefix, limit)
	ranks := utils.CreateRankList(len(entries))

	suggestions := make([]CompletionSuggestion, len(entries))
	for i, e := range entries {
		suggestions[i] = CompletionSuggestion{Word: e.Text, Rank: ranks[i], Hits: e.Hits}
	}
	return suggestions
}

func (s *Server) handleStats(req Request) error {
	stats := s.index.Stats()
	cached := 0
	if s.cache != nil {
		cached = s.cache.Len()
	}
	return s.send(StatsResponse{
		ID:            req.ID,
		Words:         stats["totalWords"],
		Accesses:      uint64(stats["accesses"]),
		CaseSensitive: stats["caseSensitive"] == 1,
		Requests:      s.requests,
		Cached:        cached,
	})
}

// send encodes one response and flushes it so clients see it immediately
func (s *Server) send(response any) error {
	if err := s.enc.Encode(response); err != nil {
		s.log.Errorf("Encoding response: %v", err)
		return fmt.Errorf("failed to encode response: %w", err)
	}
	if err := s.out.Flush(); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

func (s *Server) sendError(id, message string, code int) error {
	s.log.Debugf("Request %q failed: %s", id, message)
	return s.send(ErrorResponse{ID: id, Error: message, Code: code})
}
