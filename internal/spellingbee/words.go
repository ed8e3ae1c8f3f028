package spellingbee

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

type Verdict string

const (
	VerdictCorrect   Verdict = "correct"
	VerdictIncorrect Verdict = "incorrect"
)

var folder = cases.Fold()

// CheckSpelling compares a spelling against the expected word, ignoring case
// and surrounding whitespace.
func CheckSpelling(expected, spelled string) Verdict {
	want := folder.String(strings.TrimSpace(expected))
	got := folder.String(strings.TrimSpace(spelled))
	if want == got {
		return VerdictCorrect
	}
	return VerdictIncorrect
}

// WordAt returns the word numbered n (1-based) in words.
func WordAt(words []WordEntry, n int) (WordEntry, error) {
	if n < 1 || n > len(words) {
		return WordEntry{}, fmt.Errorf("%w: invalid word number %d for this round", ErrValidation, n)
	}
	return words[n-1], nil
}

const roundLabelPrefix = "Round "

func RoundLabel(n int) string {
	return roundLabelPrefix + strconv.Itoa(n)
}

// ParseRoundLabel turns a label such as "Round 3" into its round number.
func ParseRoundLabel(label string) (int, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(label), roundLabelPrefix)
	if !ok {
		return 0, fmt.Errorf("%w: round label %q", ErrValidation, label)
	}
	n, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: round label %q", ErrValidation, label)
	}
	return n, nil
}

// RoundsFromLabels converts label-keyed word lists into round-numbered ones,
// renumbering each list from 1 and dropping blank words. Two labels naming
// the same round, such as "Round 1" and "Round 01", are rejected.
func RoundsFromLabels(labelled map[string][]string) (map[int][]WordEntry, error) {
	rounds := make(map[int][]WordEntry, len(labelled))
	for label, words := range labelled {
		n, err := ParseRoundLabel(label)
		if err != nil {
			return nil, err
		}
		if _, dup := rounds[n]; dup {
			return nil, fmt.Errorf("%w: duplicate round label %q", ErrValidation, label)
		}
		rounds[n] = NumberWords(words)
	}
	return rounds, nil
}

func NumberWords(words []string) []WordEntry {
	entries := make([]WordEntry, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		entries = append(entries, WordEntry{Number: len(entries) + 1, Word: w})
	}
	return entries
}
