package dictionary

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
)

// FormatInfo contains metadata about the seed text format
type FormatInfo struct {
	Description string
	Extensions  []string
	MaxSize     int64
}

// TextFormat describes the files LoadFile accepts. An empty extension stands
// for files without one, like shell history files.
var TextFormat = FormatInfo{
	Description: "Plain text seed",
	Extensions:  []string{"", ".txt", ".log", ".hist", ".history", ".md"},
	MaxSize:     256 << 20,
}

// sniffSize is how much of a file is checked for binary content
const sniffSize = 1024

// ValidateTextFile checks that filename is a regular, readable text file
// with a supported extension
func ValidateTextFile(filename string) error {
	fileInfo, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", filename, err)
	}
	if !fileInfo.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", filename)
	}
	if fileInfo.Size() > TextFormat.MaxSize {
		return fmt.Errorf("file %s is too large (%d bytes, maximum: %d bytes)",
			filename, fileInfo.Size(), TextFormat.MaxSize)
	}

	ext := textExt(filename)
	if !slices.Contains(TextFormat.Extensions, ext) {
		return fmt.Errorf("file %s has invalid extension %s for %s (expected: %v)",
			filename, ext, TextFormat.Description, TextFormat.Extensions)
	}

	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	buffer := make([]byte, sniffSize)
	n, err := io.ReadFull(file, buffer)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return fmt.Errorf("failed to read from text file %s: %w", filename, err)
	}
	if looksBinary(buffer[:n]) {
		return fmt.Errorf("file %s looks like binary data", filename)
	}

	log.Debugf("Text file %s validated", filename)
	return nil
}

// textExt returns the lowercased extension of filename. Dotfiles such as
// .bash_history have no extension unless another dot follows.
func textExt(filename string) string {
	base := filepath.Base(filename)
	if strings.HasPrefix(base, ".") && !strings.Contains(base[1:], ".") {
		return ""
	}
	return strings.ToLower(filepath.Ext(base))
}

// looksBinary reports NUL bytes or invalid UTF-8 (ignoring a rune cut at the
// end of the sample)
func looksBinary(sample []byte) bool {
	if bytes.IndexByte(sample, 0) >= 0 {
		return true
	}
	for len(sample) > 0 {
		r, size := utf8.DecodeRune(sample)
		if r == utf8.RuneError && size == 1 {
			return len(sample) >= utf8.UTFMax
		}
		sample = sample[size:]
	}
	return false
}
