/*
Package history keeps a ranked record of words seen on an input stream and
answers prefix completion queries from it.

Every recorded word updates a per-word Entry with its hit count and the value
of an access counter at its latest occurrence. Completions for a prefix are the
entries whose key starts with the prefix, most used first, most recently used
first among equals.

	idx := history.New(false)
	idx.RecordLine("cat car cat dog", nil)
	idx.PrefixMatches("ca") // [cat car]

Words are kept in an ordered map keyed by their normalized form, so every key
sharing a prefix sits in one contiguous ascending run. A query seeks to the
prefix and walks forward until the first key that does not share it.

An Index is not safe for concurrent use. It does no I/O and keeps nothing
across process runs; front ends rebuild it from whatever text they see.
*/
package history

import (
	"errors"
	"strings"

	"github.com/bastiangx/wordhist/internal/rbtree"
	"github.com/bastiangx/wordhist/internal/utils"
	"golang.org/x/text/cases"
)

// ErrDestroyed is the panic value for any use of an Index after Destroy.
var ErrDestroyed = errors.New("history: use of destroyed index")

// Entry holds the usage statistics of one word.
type Entry struct {
	// Text is the spelling seen on first occurrence.
	Text string
	// Hits counts occurrences.
	Hits int
	// LastHit is the access counter value at the latest occurrence.
	LastHit uint64
}

// Index is the word history.
type Index struct {
	caseSensitive bool
	accesses      uint64
	words         *rbtree.Map[string, *Entry]
	fold          cases.Caser
	destroyed     bool
}

// New creates an empty index. When caseSensitive is false, words that differ
// only in case share one entry.
func New(caseSensitive bool) *Index {
	return &Index{
		caseSensitive: caseSensitive,
		words:         rbtree.NewOrdered[string, *Entry](),
		fold:          cases.Fold(),
	}
}

func (idx *Index) mustBeAlive() {
	if idx.destroyed {
		panic(ErrDestroyed)
	}
}

// keyFor returns the lookup key of a word.
func (idx *Index) keyFor(word string) string {
	if idx.caseSensitive {
		return word
	}
	return idx.fold.String(word)
}

// Record notes one occurrence of word. The first occurrence fixes the entry's
// display text; later occurrences with other casing only update the counts.
func (idx *Index) Record(word string) {
	idx.mustBeAlive()

	key := idx.keyFor(word)
	entry, ok := idx.words.Get(key)
	if !ok {
		entry = &Entry{Text: word}
		idx.words.Put(key, entry)
	}
	entry.Hits++
	entry.LastHit = idx.accesses
	idx.accesses++
}

// RecordLine splits line into words and records each word accepted by
// accept. A nil accept takes every word. It returns the number recorded.
func (idx *Index) RecordLine(line string, accept func(word string) bool) int {
	idx.mustBeAlive()

	recorded := 0
	for _, word := range utils.SplitWords(line) {
		if accept != nil && !accept(word) {
			continue
		}
		idx.Record(word)
		recorded++
	}
	return recorded
}

// collect returns the entries whose key starts with the key of prefix, in
// ascending key order.
func (idx *Index) collect(prefix string) []*Entry {
	key := idx.keyFor(prefix)
	var matches []*Entry
	idx.words.TraverseFrom(key, func(k string, e *Entry) bool {
		if !strings.HasPrefix(k, key) {
			return false
		}
		matches = append(matches, e)
		return true
	})
	return matches
}

// PrefixMatches returns the text of every known word starting with prefix,
// most popular first. The result is never nil and belongs to the caller.
func (idx *Index) PrefixMatches(prefix string) []string {
	idx.mustBeAlive()

	matches := idx.collect(prefix)
	rank(matches)

	words := make([]string, len(matches))
	for i, e := range matches {
		words[i] = e.Text
	}
	return words
}

// Matches is PrefixMatches with statistics. It returns copies of at most
// limit entries; limit <= 0 means all of them.
func (idx *Index) Matches(prefix string, limit int) []Entry {
	idx.mustBeAlive()

	matches := idx.collect(prefix)
	rank(matches)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	entries := make([]Entry, len(matches))
	for i, e := range matches {
		entries[i] = *e
	}
	return entries
}

// Lookup returns a copy of the entry a word maps to.
func (idx *Index) Lookup(word string) (Entry, bool) {
	idx.mustBeAlive()

	if e, ok := idx.words.Get(idx.keyFor(word)); ok {
		return *e, true
	}
	return Entry{}, false
}

// Len returns the number of distinct words.
func (idx *Index) Len() int {
	idx.mustBeAlive()
	return idx.words.Len()
}

// Accesses returns the number of occurrences recorded so far, which is also
// the LastHit value the next occurrence will get.
func (idx *Index) Accesses() uint64 {
	idx.mustBeAlive()
	return idx.accesses
}

// CaseSensitive reports how the index was constructed.
func (idx *Index) CaseSensitive() bool {
	idx.mustBeAlive()
	return idx.caseSensitive
}

// Stats returns counters about the index.
func (idx *Index) Stats() map[string]int {
	idx.mustBeAlive()

	stats := map[string]int{
		"totalWords":    idx.words.Len(),
		"accesses":      int(idx.accesses),
		"caseSensitive": 0,
	}
	if idx.caseSensitive {
		stats["caseSensitive"] = 1
	}
	return stats
}

// Destroy releases every entry. The index must not be used afterwards; any
// further call panics with ErrDestroyed.
func (idx *Index) Destroy() {
	idx.mustBeAlive()

	idx.words.Clear(func(_ string, e *Entry) {
		*e = Entry{}
	})
	idx.words = nil
	idx.destroyed = true
}
