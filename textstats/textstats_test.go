package textstats_test

import (
	"strings"
	"testing"

	"github.com/ai-mapper/backend/textstats"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeWhitespace(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Hello world !", textstats.NormalizeWhitespace("  Hello\n\t world 🚀 !  "))
	assert.Equal(t, "", textstats.NormalizeWhitespace(" \n "))
}

func TestNormalizeWhitespace_UnicodeSpaces(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want string
	}{
		{"no-break spaces", "a.\u00a0\u00a0b", "a. b"},
		{"thin and ideographic spaces", "one\u2009two\u3000three", "one two three"},
		{"byte order mark and vertical tab", "\ufeffone\vtwo", "one two"},
		{"line separator", "one\u2028two", "one two"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, textstats.NormalizeWhitespace(tt.text))
		})
	}
}

func TestCountWords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"apostrophes and hyphens stay inside words", "It's a well-known fact -- really!!", 5},
		{"punctuation only", "... !!! ---", 0},
		{"curly apostrophe", "don’t stop", 2},
		{"numbers count", "It costs $40.", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, textstats.CountWords(tt.text))
		})
	}
}

func TestSplitSentences(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"One.", "Two?", "Three!", "Four"}, textstats.SplitSentences("One. Two? Three! Four"))
	assert.Equal(t, []string{"No punctuation here"}, textstats.SplitSentences("No punctuation here"))
	assert.Equal(t, []string{"Version 2.5 is out.", "Yes."}, textstats.SplitSentences("Version 2.5 is out.\n\nYes."))
	assert.Equal(t, []string{"Wait..", "What?!"}, textstats.SplitSentences("Wait..  What?!  "))
	assert.Empty(t, textstats.SplitSentences(""))
}

func TestSplitSentences_UnicodeSpaces(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"no-break space", "First one.\u00a0Second one.", []string{"First one.", "Second one."}},
		{"thin space after question", "Why?\u2009Because.", []string{"Why?", "Because."}},
		{"ideographic space", "Done!\u3000Next", []string{"Done!", "Next"}},
		{"no-break space only at the end", "Last one.\u00a0", []string{"Last one."}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, textstats.SplitSentences(tt.text))
		})
	}
}

func TestCountSyllables(t *testing.T) {
	t.Parallel()

	tests := map[string]int{
		"the":         1,
		"table":       1,
		"beautiful":   3,
		"rhythm":      1,
		"queue":       1,
		"readability": 5,
		"x":           1,
	}
	for word, want := range tests {
		assert.Equal(t, want, textstats.CountSyllables(word), word)
	}
	assert.Equal(t, 6, textstats.TextSyllables("The table is beautiful"))
}

func TestFleschReadingEase(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, textstats.FleschReadingEase(0, 1, 0))
	assert.Equal(t, 0.0, textstats.FleschReadingEase(10, 0, 10))
	assert.Equal(t, 69.8, textstats.FleschReadingEase(10, 1, 15))
}

func TestDominantKeyword(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "widget", textstats.DominantKeyword("Widget is a tool. It costs $40."))
	assert.Equal(t, "tool", textstats.DominantKeyword("with this tool tool widget"))
	assert.Equal(t, "alpha", textstats.DominantKeyword("alpha beta alpha beta"))
	assert.Equal(t, "", textstats.DominantKeyword("a an the of"))
	assert.Equal(t, "", textstats.DominantKeyword("with this that from"))
}

func TestCountOccurrences(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 2, textstats.CountOccurrences("Widgets and widget. WIDGET!", "widget"))
	assert.Equal(t, 0, textstats.CountOccurrences("anything", ""))
}

func TestIntroSample(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("word ", 150)
	assert.Len(t, strings.Fields(textstats.IntroSample(text)), textstats.IntroWords)
	assert.Equal(t, "a b", textstats.IntroSample(" a  b "))
}

func TestLinguisticCounters(t *testing.T) {
	t.Parallel()

	t.Run("factual density", func(t *testing.T) {
		t.Parallel()
		text := "Revenue grew 40% to 3 million"
		assert.InDelta(t, 2.0/6*100, textstats.FactualDensity(text, 6), 1e-9)
		assert.Equal(t, 0.0, textstats.FactualDensity(text, 0))
	})

	t.Run("redundancy", func(t *testing.T) {
		t.Parallel()
		assert.InDelta(t, 2.0/3, textstats.Redundancy([]string{"A.", " a. ", "B."}), 1e-9)
		assert.Equal(t, 1.0, textstats.Redundancy(nil))
		assert.Equal(t, 1.0, textstats.Redundancy([]string{"One.", "Two."}))
	})

	t.Run("questions", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 2, textstats.QuestionMarks("Why? How?"))
		assert.Equal(t, 3, textstats.QAMarkers("Q: one Q- two q: three"))
	})

	t.Run("entity definitions", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 2, textstats.EntityDefinitions("Widget is a tool. Acme are the best."))
	})

	t.Run("voice patterns", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 50.0, textstats.VoicePatternScore([]string{"How does it work?", "It works."}))
		assert.Equal(t, 0.0, textstats.VoicePatternScore(nil))
	})

	t.Run("attribution", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 2, textstats.AttributionCount(`"Great," she said.`))
	})

	t.Run("proprietary signals", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 4, textstats.ProprietarySignals("Our proprietary index returned 12% or $40"))
	})

	t.Run("vague statements", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 0.5, textstats.VagueStatementRatio([]string{"It might rain.", "It rains."}))
	})

	t.Run("quotable statements", func(t *testing.T) {
		t.Parallel()
		count, ratio := textstats.QuotableStatements([]string{"This sentence has exactly six words.", "Short."})
		assert.Equal(t, 1, count)
		assert.Equal(t, 0.5, ratio)
	})

	t.Run("topical authority", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 0.0, textstats.TopicalAuthority(""))
		// two unique of two tokens: 70 + 0.6 + 20
		assert.InDelta(t, 90.6, textstats.TopicalAuthority("alpha beta"), 1e-9)
	})

	t.Run("parser accessibility", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 50.0, textstats.ParserAccessibility([]int{10, 200}, 0))
		assert.Equal(t, 100.0, textstats.ParserAccessibility([]int{10}, 5))
	})
}
