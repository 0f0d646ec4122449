// Package textstats holds the heuristic English text measurements that feed
// every linguistic metric: word and sentence segmentation, syllables,
// readability, and the keyword helpers.
package textstats

import (
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// IntroWords is the size of the intro sample used for keyword placement.
const IntroWords = 100

var (
	whitespaceRe = regexp.MustCompile(`[\s\x0B\x{85}\p{Z}\x{FEFF}]+`)
	newlinesRe   = regexp.MustCompile(`\n+`)
	pictographRe = regexp.MustCompile(`[\p{So}\x{FE0F}\x{200D}\x{20E3}]`)
	wordRe       = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]+(?:['’-]+[\p{L}\p{M}\p{N}_]+)*`)
	letterWordRe = regexp.MustCompile(`\b[a-z]+\b`)
	vowelRunRe   = regexp.MustCompile(`[aeiouy]+`)
	keywordTokRe = regexp.MustCompile(`\b[a-z]{4,}\b`)
)

// stopWords are excluded from dominant keyword selection.
var stopWords = map[string]struct{}{
	"with": {}, "this": {}, "that": {}, "from": {}, "have": {}, "will": {},
	"about": {}, "your": {}, "their": {}, "news": {}, "homepage": {},
}

// NormalizeWhitespace strips pictographic symbols, collapses whitespace
// runs to one space and trims.
func NormalizeWhitespace(text string) string {
	text = pictographRe.ReplaceAllString(text, "")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// Words returns the word tokens of text. Apostrophes and hyphens join word
// characters on both sides; runs of punctuation never form a word.
func Words(text string) []string {
	return wordRe.FindAllString(text, -1)
}

// CountWords returns len(Words(text)).
func CountWords(text string) int {
	return len(wordRe.FindAllStringIndex(text, -1))
}

// SplitSentences splits text on whitespace, Unicode spaces included, that
// directly follows '.', '?' or '!'. Text without terminal punctuation is a
// single sentence; empty pieces are dropped.
func SplitSentences(text string) []string {
	text = newlinesRe.ReplaceAllString(text, " ")
	var (
		sentences []string
		start     int
	)
	for i := 0; i < len(text); {
		if !isTerminal(text[i]) {
			i++
			continue
		}
		j := i + 1
		for j < len(text) {
			r, size := utf8.DecodeRuneInString(text[j:])
			if !isSpace(r) {
				break
			}
			j += size
		}
		if j == i+1 {
			i++
			continue
		}
		sentences = appendTrimmed(sentences, text[start:i+1])
		start = j
		i = j
	}
	return appendTrimmed(sentences, text[start:])
}

func appendTrimmed(dst []string, s string) []string {
	if s = strings.TrimFunc(s, isSpace); s != "" {
		dst = append(dst, s)
	}
	return dst
}

func isTerminal(c byte) bool {
	return c == '.' || c == '?' || c == '!'
}

// isSpace matches the runes whitespaceRe collapses.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || unicode.Is(unicode.Z, r) || r == '\uFEFF'
}

// CountSyllables estimates the syllables of one lower-case word: a single
// trailing "e" is dropped, then each maximal run of vowels (y included)
// counts once, with a floor of one.
func CountSyllables(word string) int {
	word = strings.TrimSuffix(word, "e")
	if n := len(vowelRunRe.FindAllStringIndex(word, -1)); n > 0 {
		return n
	}
	return 1
}

// TextSyllables sums CountSyllables over the ASCII-letter words of text.
func TextSyllables(text string) int {
	total := 0
	for _, w := range letterWordRe.FindAllString(strings.ToLower(text), -1) {
		total += CountSyllables(w)
	}
	return total
}

// FleschReadingEase returns the Flesch reading-ease score rounded to one
// decimal, or 0 when words or sentences is zero or the result is not finite.
func FleschReadingEase(words, sentences, syllables int) float64 {
	if words == 0 || sentences == 0 {
		return 0
	}
	fk := 206.835 - 1.015*(float64(words)/float64(sentences)) - 84.6*(float64(syllables)/float64(words))
	if math.IsNaN(fk) || math.IsInf(fk, 0) {
		return 0
	}
	return math.Round(fk*10) / 10
}

// DominantKeyword returns the most frequent lower-cased token of four or
// more ASCII letters that is not a stop word. Ties go to the token seen
// first.
func DominantKeyword(text string) string {
	counts := make(map[string]int)
	var order []string
	for _, tok := range keywordTokRe.FindAllString(strings.ToLower(text), -1) {
		if _, stop := stopWords[tok]; stop {
			continue
		}
		if counts[tok] == 0 {
			order = append(order, tok)
		}
		counts[tok]++
	}
	best, bestCount := "", 0
	for _, tok := range order {
		if counts[tok] > bestCount {
			best, bestCount = tok, counts[tok]
		}
	}
	return best
}

// CountOccurrences counts whole-word, case-insensitive matches of keyword.
func CountOccurrences(text, keyword string) int {
	if keyword == "" {
		return 0
	}
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(keyword) + `\b`)
	return len(re.FindAllStringIndex(text, -1))
}

// IntroSample returns the first IntroWords whitespace-separated tokens.
func IntroSample(text string) string {
	fields := strings.FieldsFunc(text, isSpace)
	if len(fields) > IntroWords {
		fields = fields[:IntroWords]
	}
	return strings.Join(fields, " ")
}
