package retrieval

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	regionBoost = 0.3
	typeBoost   = 0.2
	minTokenLen = 3
)

var stopwords = func() map[string]struct{} {
	words := []string{
		// articles and determiners
		"the", "this", "that", "these", "those", "any", "some",
		// auxiliaries and modals
		"are", "was", "were", "been", "being", "have", "has", "had", "does", "did",
		"can", "could", "would", "should", "will", "shall", "may", "might", "must",
		// prepositions
		"with", "from", "into", "about", "for", "over", "under", "onto", "upon", "via",
		// conjunctions
		"and", "but", "nor", "not", "than", "then", "also",
		// question words
		"what", "when", "where", "which", "who", "whom", "whose", "how", "why",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()

// Score rates how relevant text is to query, in [0, 1].
//
// A literal (case-insensitive) occurrence of the query in text scores 1.
// Otherwise the base score is the share of significant query tokens that
// match some text token by containment in either direction. Non-empty
// region and kind tags add a boost when they appear in the query.
func Score(query, text, region, kind string) float64 {
	q := strings.ToLower(query)
	t := strings.ToLower(text)

	if strings.TrimSpace(q) == "" {
		return 0
	}
	if strings.Contains(t, q) {
		return 1.0
	}

	queryTokens := tokenize(q)
	if len(queryTokens) == 0 {
		return 0
	}
	textTokens := tokenize(t)

	matches := 0
	for _, qt := range queryTokens {
		for _, tt := range textTokens {
			if strings.Contains(tt, qt) || strings.Contains(qt, tt) {
				matches++
				break
			}
		}
	}

	score := float64(matches) / float64(len(queryTokens))
	if regionMatches(q, region) {
		score += regionBoost
	}
	if kind != "" && strings.Contains(q, strings.ToLower(kind)) {
		score += typeBoost
	}

	return min(score, 1.0)
}

func regionMatches(lowerQuery, region string) bool {
	for _, rt := range strings.Fields(strings.ToLower(region)) {
		if strings.Contains(lowerQuery, rt) {
			return true
		}
	}
	return false
}

// tokenize splits lowercased s on whitespace, strips surrounding punctuation
// and drops short tokens and stop-words.
func tokenize(s string) []string {
	fields := strings.Fields(s)
	out := fields[:0]
	for _, f := range fields {
		tok := strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if utf8.RuneCountInString(tok) < minTokenLen {
			continue
		}
		if _, stop := stopwords[tok]; stop {
			continue
		}
		out = append(out, tok)
	}
	return out
}
