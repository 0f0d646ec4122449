package metrics

import "fmt"

// The quality scales below are ordered worst to best, so the zero value of
// each is the worst grade and grades compare with < and >.

// HeadingQuality grades the heading outline.
type HeadingQuality int

const (
	HeadingPoor HeadingQuality = iota
	HeadingMinor
	HeadingStrong
)

var headingNames = []string{"poor", "minor", "strong"}

func (q HeadingQuality) String() string { return levelName(headingNames, int(q)) }

func (q HeadingQuality) MarshalText() ([]byte, error) {
	return marshalLevel(headingNames, int(q), "heading quality")
}

func (q *HeadingQuality) UnmarshalText(b []byte) error {
	return unmarshalLevel(headingNames, b, (*int)(q), "heading quality")
}

// SummaryQuality grades the opening paragraph as a direct answer.
type SummaryQuality int

const (
	SummaryNone SummaryQuality = iota
	SummaryPartial
	SummaryStrong
)

var summaryNames = []string{"none", "partial", "strong"}

func (q SummaryQuality) String() string { return levelName(summaryNames, int(q)) }

func (q SummaryQuality) MarshalText() ([]byte, error) {
	return marshalLevel(summaryNames, int(q), "summary quality")
}

func (q *SummaryQuality) UnmarshalText(b []byte) error {
	return unmarshalLevel(summaryNames, b, (*int)(q), "summary quality")
}

// DefinitionClarity grades "X is a ..." statements about the main topic.
type DefinitionClarity int

const (
	DefinitionNone DefinitionClarity = iota
	DefinitionPartial
	DefinitionClear
)

var definitionNames = []string{"none", "partial", "clear"}

func (q DefinitionClarity) String() string { return levelName(definitionNames, int(q)) }

func (q DefinitionClarity) MarshalText() ([]byte, error) {
	return marshalLevel(definitionNames, int(q), "definition clarity")
}

func (q *DefinitionClarity) UnmarshalText(b []byte) error {
	return unmarshalLevel(definitionNames, b, (*int)(q), "definition clarity")
}

// SnippetFormatting grades short sentences and list usage.
type SnippetFormatting int

const (
	SnippetNone SnippetFormatting = iota
	SnippetPartial
	SnippetStrong
)

var snippetNames = []string{"none", "partial", "strong"}

func (q SnippetFormatting) String() string { return levelName(snippetNames, int(q)) }

func (q SnippetFormatting) MarshalText() ([]byte, error) {
	return marshalLevel(snippetNames, int(q), "snippet formatting")
}

func (q *SnippetFormatting) UnmarshalText(b []byte) error {
	return unmarshalLevel(snippetNames, b, (*int)(q), "snippet formatting")
}

// QACoverage grades question-and-answer content.
type QACoverage int

const (
	QANone QACoverage = iota
	QASingle
	QAMultiple
)

var qaNames = []string{"none", "single", "multiple"}

func (q QACoverage) String() string { return levelName(qaNames, int(q)) }

func (q QACoverage) MarshalText() ([]byte, error) {
	return marshalLevel(qaNames, int(q), "qa coverage")
}

func (q *QACoverage) UnmarshalText(b []byte) error {
	return unmarshalLevel(qaNames, b, (*int)(q), "qa coverage")
}

// SectionAlignment grades how well headings label their sections.
type SectionAlignment int

const (
	SectionWeak SectionAlignment = iota
	SectionPartial
	SectionStrong
)

var sectionNames = []string{"weak", "partial", "strong"}

func (q SectionAlignment) String() string { return levelName(sectionNames, int(q)) }

func (q SectionAlignment) MarshalText() ([]byte, error) {
	return marshalLevel(sectionNames, int(q), "section alignment")
}

func (q *SectionAlignment) UnmarshalText(b []byte) error {
	return unmarshalLevel(sectionNames, b, (*int)(q), "section alignment")
}

func levelName(names []string, v int) string {
	if v < 0 || v >= len(names) {
		return fmt.Sprintf("level(%d)", v)
	}
	return names[v]
}

func marshalLevel(names []string, v int, kind string) ([]byte, error) {
	if v < 0 || v >= len(names) {
		return nil, fmt.Errorf("invalid %s %d", kind, v)
	}
	return []byte(names[v]), nil
}

func unmarshalLevel(names []string, b []byte, dst *int, kind string) error {
	for i, name := range names {
		if name == string(b) {
			*dst = i
			return nil
		}
	}
	return fmt.Errorf("unknown %s %q", kind, b)
}
