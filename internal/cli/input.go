// Package cli handles cmd line input for recording words and asking for completions in real-time
package cli

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bastiangx/wordhist/internal/logger"
	"github.com/bastiangx/wordhist/internal/utils"
	"github.com/bastiangx/wordhist/pkg/history"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var wordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))

// InputHandler reads lines from the user. A line starting with the trigger
// asks for completions of the rest; any other line is recorded.
type InputHandler struct {
	index        *history.Index
	filter       utils.WordFilter
	trigger      string
	suggestLimit int
	requestCount int
	log          *log.Logger
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(index *history.Index, filter utils.WordFilter, trigger string, limit int) *InputHandler {
	return &InputHandler{
		index:        index,
		filter:       filter,
		trigger:      trigger,
		suggestLimit: limit,
		log:          logger.New("cli"),
	}
}

// SetLogger replaces the logger results are printed with.
func (h *InputHandler) SetLogger(l *log.Logger) {
	h.log = l
}

// Start runs the loop on stdin.
func (h *InputHandler) Start() error {
	h.log.Print("WordHist CLI [BETA]")
	h.log.Printf("type words and press Enter to record them, %q + prefix to complete (Ctrl+C to exit):", h.trigger)
	return h.Run(os.Stdin)
}

// Run handles every line of r until it ends. Reaching the end of r is not
// an error.
func (h *InputHandler) Run(r io.Reader) error {
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if line = strings.TrimSpace(line); line != "" {
			h.handleInput(line)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func (h *InputHandler) handleInput(line string) {
	h.requestCount++

	if prefix, ok := strings.CutPrefix(line, h.trigger); ok {
		h.complete(strings.TrimSpace(prefix))
		return
	}

	recorded := h.index.RecordLine(line, h.filter.Accept)
	h.log.Debugf("Recorded %d words, %d known", recorded, h.index.Len())
}

// complete prints the ranked completions of prefix.
func (h *InputHandler) complete(prefix string) {
	start := time.Now()
	entries := h.index.Matches(prefix, h.suggestLimit)
	h.log.Debugf("Took [ %v ] for prefix '%s'", time.Since(start), prefix)

	if len(entries) == 0 {
		h.log.Warnf("No suggestions found for prefix: '%s'", prefix)
		return
	}

	h.log.Printf("Found %d suggestions for prefix '%s':", len(entries), prefix)
	for i, e := range entries {
		hits := utils.FormatWithCommas(e.Hits)
		h.log.Printf("%2d. %-40s (hits: %8s)", i+1, wordStyle.Render(e.Text), hits)
	}
}
