package combine

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrTokenCount   = errors.New("variant texts have different numeric token counts")
	ErrTextMismatch = errors.New("variant texts differ outside numeric tokens")
)

var numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// MergeText folds leveled descriptions that differ only in their numbers into
// one text. Numbers equal across all variants stay as they are; differing ones
// become "[a,b,...]" in variant order.
func MergeText(texts []string) (string, error) {
	switch len(texts) {
	case 0:
		return "", ErrEmptyGroup
	case 1:
		return texts[0], nil
	}

	first := texts[0]
	firstSpans := numberPattern.FindAllStringIndex(first, -1)
	firstGaps := gaps(first, firstSpans)

	tokens := make([][]string, len(texts))
	for i, text := range texts {
		spans := numberPattern.FindAllStringIndex(text, -1)
		if len(spans) != len(firstSpans) {
			return "", fmt.Errorf("%w: variant %d has %d, variant 0 has %d", ErrTokenCount, i, len(spans), len(firstSpans))
		}
		textGaps := gaps(text, spans)
		for j := range textGaps {
			if textGaps[j] != firstGaps[j] {
				return "", fmt.Errorf("%w: variant %d", ErrTextMismatch, i)
			}
		}
		values := make([]string, len(spans))
		for j, span := range spans {
			values[j] = text[span[0]:span[1]]
		}
		tokens[i] = values
	}

	var b strings.Builder
	for j, gap := range firstGaps {
		b.WriteString(gap)
		if j == len(firstSpans) {
			break
		}
		b.WriteString(mergeToken(tokens, j))
	}
	return b.String(), nil
}

// gaps returns the text around the numeric spans; len(gaps) == len(spans)+1.
func gaps(text string, spans [][]int) []string {
	out := make([]string, 0, len(spans)+1)
	prev := 0
	for _, span := range spans {
		out = append(out, text[prev:span[0]])
		prev = span[1]
	}
	return append(out, text[prev:])
}

func mergeToken(tokens [][]string, j int) string {
	same := true
	values := make([]string, len(tokens))
	for i := range tokens {
		values[i] = tokens[i][j]
		if values[i] != values[0] {
			same = false
		}
	}
	if same {
		return values[0]
	}
	return "[" + strings.Join(values, ",") + "]"
}
