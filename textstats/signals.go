package textstats

import (
	"math"
	"regexp"
	"strings"

	"github.com/cespare/xxhash/v2"
)

var (
	factualRe       = regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?(?:%|(?:\s?(?:million|billion|k|m)))?\b`)
	infoRe          = regexp.MustCompile(`\d+[%$MmKk]?|\b(?:USD|million|billion)\b`)
	entityDefRe     = regexp.MustCompile(`\b[A-Z][\w\s]+?\s(?:is|are)\s(?:a|an|the)\b`)
	questionMarkRe  = regexp.MustCompile(`\?`)
	qaMarkerRe      = regexp.MustCompile(`(?i)\bQ[:\-]`)
	conversationRe  = regexp.MustCompile(`(?i)\b(?:you|your|we|let's|imagine|picture|let us|chatgpt|copilot)\b`)
	attributionRe   = regexp.MustCompile(`(?i)said|according to`)
	voiceRe         = regexp.MustCompile(`(?i)^\s*(?:who|what|when|where|why|how)\b`)
	attributionVbRe = regexp.MustCompile(`(?i)\b(?:said|according to|stated|noted|reports|announced)\b`)
	quoteRe         = regexp.MustCompile(`["“”]`)
	currencyRe      = regexp.MustCompile(`(?i)[$€£]\s?\d[\d,.]*|\bUSD\b|\bCAD\b|\bC\$|\bTSX\b`)
	percentRe       = regexp.MustCompile(`\b\d+(?:\.\d+)?%`)
	dataKeywordRe   = regexp.MustCompile(`(?i)\b(?:proprietary|benchmark|distribution|ETF|index|internal)\b`)
	hedgeRe         = regexp.MustCompile(`(?i)\b(?:might|may|could|possibly|perhaps|arguably|probably|reportedly|allegedly|somewhat|some say|many believe|it is said|kind of|sort of)\b`)
	asciiWordRe     = regexp.MustCompile(`\b[a-zA-Z]+\b`)
)

// FactualDensity counts numbers, optionally followed by a unit (%, million,
// billion, k, m), as a percentage of wordCount.
func FactualDensity(text string, wordCount int) float64 {
	if wordCount == 0 {
		return 0
	}
	return float64(len(factualRe.FindAllStringIndex(text, -1))) / float64(wordCount) * 100
}

// InformationDensity is the looser facts-per-100-words measure used by the
// recommendation rules.
func InformationDensity(text string, wordCount int) float64 {
	if wordCount == 0 {
		return 0
	}
	return float64(len(infoRe.FindAllStringIndex(text, -1))) / float64(wordCount) * 100
}

// Redundancy returns unique sentences over total sentences after case
// folding and trimming. 1 means no sentence repeats.
func Redundancy(sentences []string) float64 {
	seen := make(map[uint64]struct{}, len(sentences))
	total := 0
	for _, s := range sentences {
		s = strings.TrimFunc(strings.ToLower(s), isSpace)
		if s == "" {
			continue
		}
		total++
		seen[xxhash.Sum64String(s)] = struct{}{}
	}
	if total == 0 {
		return 1
	}
	return float64(len(seen)) / float64(total)
}

// QuestionMarks counts '?' characters.
func QuestionMarks(text string) int {
	return len(questionMarkRe.FindAllStringIndex(text, -1))
}

// QAMarkers counts "Q:" and "Q-" markers.
func QAMarkers(text string) int {
	return len(qaMarkerRe.FindAllStringIndex(text, -1))
}

// EntityDefinitions counts "Capitalized thing is a/an/the" statements.
func EntityDefinitions(text string) int {
	return len(entityDefRe.FindAllStringIndex(text, -1))
}

// ConversationalMarkers counts second-person and prompt-like phrasing.
func ConversationalMarkers(text string) int {
	return len(conversationRe.FindAllStringIndex(text, -1))
}

// QuotableStatements scores sentences that can be lifted verbatim: 6-20
// words earns one point and quotes or attribution earn another. The ratio
// is relative to the sentence count.
func QuotableStatements(sentences []string) (int, float64) {
	count := 0
	for _, s := range sentences {
		if n := CountWords(s); n >= 6 && n <= 20 {
			count++
		}
		if strings.Contains(s, `"`) || attributionRe.MatchString(s) {
			count++
		}
	}
	if len(sentences) == 0 {
		return count, 0
	}
	return count, float64(count) / float64(len(sentences))
}

// VoicePatternScore is the percentage of sentences opening with a
// who/what/when/where/why/how question word.
func VoicePatternScore(sentences []string) float64 {
	if len(sentences) == 0 {
		return 0
	}
	n := 0
	for _, s := range sentences {
		if voiceRe.MatchString(s) {
			n++
		}
	}
	return float64(n) / float64(len(sentences)) * 100
}

// TopicalAuthority blends vocabulary diversity and breadth into 0-100.
func TopicalAuthority(text string) float64 {
	tokens := keywordTokRe.FindAllString(strings.ToLower(text), -1)
	if len(tokens) == 0 {
		return 0
	}
	unique := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		unique[t] = struct{}{}
	}
	diversity := float64(len(unique)) / float64(len(tokens))
	return math.Min(100, diversity*70+float64(min(len(unique), 80))*0.3+20)
}

// ParserAccessibility rewards short paragraphs and list items, capped at 100.
func ParserAccessibility(paragraphWords []int, listItems int) float64 {
	total := max(len(paragraphWords), 1)
	short := 0
	for _, n := range paragraphWords {
		if n < 120 {
			short++
		}
	}
	return math.Min(100, float64(short)/float64(total)*100+float64(listItems*2))
}

// AttributionCount counts attribution verbs plus quote pairs.
func AttributionCount(text string) int {
	verbs := len(attributionVbRe.FindAllStringIndex(text, -1))
	quotes := float64(len(quoteRe.FindAllStringIndex(text, -1))) / 2
	return int(math.Round(float64(verbs) + quotes))
}

// ProprietarySignals counts currency amounts, percentages and data-centric
// vocabulary.
func ProprietarySignals(text string) int {
	return len(currencyRe.FindAllStringIndex(text, -1)) +
		len(percentRe.FindAllStringIndex(text, -1)) +
		len(dataKeywordRe.FindAllStringIndex(text, -1))
}

// VagueStatementRatio is the share of sentences containing a hedge word.
func VagueStatementRatio(sentences []string) float64 {
	if len(sentences) == 0 {
		return 0
	}
	n := 0
	for _, s := range sentences {
		if hedgeRe.MatchString(s) {
			n++
		}
	}
	return float64(n) / float64(len(sentences))
}

// AverageWordLength is the mean length of ASCII-letter words.
func AverageWordLength(text string) float64 {
	tokens := asciiWordRe.FindAllString(text, -1)
	if len(tokens) == 0 {
		return 0
	}
	total := 0
	for _, t := range tokens {
		total += len(t)
	}
	return float64(total) / float64(len(tokens))
}
