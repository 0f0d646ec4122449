package scoring

import "fmt"

const noChecksNote = "No checks evaluated."

// Category describes how one rule category is presented as a pillar.
type Category struct {
	Key         string
	ID          string
	Label       string
	Description string
}

// Pillar is the per-category view of a Result.
type Pillar struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
	Score       int      `json:"score"`
	Points      int      `json:"points"`
	MaxPoints   int      `json:"maxPoints"`
	Notes       []string `json:"notes"`
}

var seoCategories = []Category{
	{CategoryTechnical, "technical", "Technical SEO", "Title/meta coverage, canonical hygiene, and baseline crawl signals."},
	{CategoryContent, "contentQuality", "Content Quality", "Keyword placement, internal linking, schema, and topical coverage."},
	{CategoryReadability, "readability", "Readability", "Sentence + paragraph length with scannable formatting."},
}

var geoCategories = []Category{
	{CategoryDirectAnswer, "directAnswer", "Direct Answers", "Summary intros, definitions, and snippet-ready formatting."},
	{CategoryConversational, "conversational", "Conversational Fit", "Question coverage and query-shaped section labels."},
	{CategoryIngestion, "ingestion", "Ingestion Quality", "Factual density, low redundancy, and plain-language readability."},
	{CategoryStructuredData, "structuredData", "Structured Data", "Schema alignment, breadcrumbs, and entity relationships."},
	{CategoryContentClarity, "contentClarity", "Content Structure & Clarity", "Headings, TL;DR coverage, Q&A blocks, and chunked paragraphs."},
	{CategoryEntityArchitecture, "entityArchitecture", "Entity Architecture", "Internal linking, anchors, and clean URL structures."},
	{CategoryTechnicalGeo, "technicalGeo", "Technical GEO & Indexability", "llms.txt, IndexNow, robots directives, and SSR/lightweight HTML."},
	{CategoryAuthority, "authoritySignals", "Authority & Source Signals", "Author schema, bios, citations, and first-party signals."},
	{CategoryFreshness, "freshness", "Freshness", "Recent updates and current content references."},
	{CategorySafety, "safety", "Safety & Consistency", "Disclaimers, clarity, and absence of contradictions."},
}

// SEOPillars groups an SEO result by category.
func SEOPillars(res Result) []Pillar { return BuildPillars(res, seoCategories) }

// GEOPillars groups a GEO result by category.
func GEOPillars(res Result) []Pillar { return BuildPillars(res, geoCategories) }

// BuildPillars returns one pillar per category in declaration order.
// Entries whose category is not declared are ignored.
func BuildPillars(res Result, categories []Category) []Pillar {
	byKey := make(map[string]*Pillar, len(categories))
	pillars := make([]Pillar, len(categories))
	for i, c := range categories {
		pillars[i] = Pillar{ID: c.ID, Label: c.Label, Description: c.Description}
		byKey[c.Key] = &pillars[i]
	}
	for _, e := range res.Entries() {
		p, ok := byKey[e.Category]
		if !ok {
			continue
		}
		p.Points += e.Points
		p.MaxPoints += e.MaxPoints
		p.Notes = append(p.Notes, fmt.Sprintf("%s: %d/%d", e.Label, e.Points, e.MaxPoints))
	}
	for i := range pillars {
		pillars[i].Score = percent(pillars[i].Points, pillars[i].MaxPoints)
		if len(pillars[i].Notes) == 0 {
			pillars[i].Notes = []string{noChecksNote}
		}
	}
	return pillars
}
