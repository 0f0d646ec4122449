package scoring

import "github.com/ai-mapper/backend/metrics"

// SEO categories.
const (
	CategoryTechnical   = "technical"
	CategoryContent     = "content"
	CategoryReadability = "readability"
)

// GEO categories. The first three grade the prose itself, the rest mirror
// the signal bundle.
const (
	CategoryDirectAnswer       = "directAnswer"
	CategoryConversational     = "conversational"
	CategoryIngestion          = "ingestion"
	CategoryStructuredData     = "structuredData"
	CategoryContentClarity     = "contentClarity"
	CategoryEntityArchitecture = "entityArchitecture"
	CategoryTechnicalGeo       = "technicalGeo"
	CategoryAuthority          = "authoritySignals"
	CategoryFreshness          = "freshness"
	CategorySafety             = "safety"
)

const (
	lightHTMLBytes = 150 * 1024
	heavyHTMLBytes = 500 * 1024
)

// SEORules returns the SEO table in evaluation order.
func SEORules() []Rule {
	return []Rule{
		{ID: "titleLength", Label: "Title length", Category: CategoryTechnical, MaxPoints: 8,
			Evaluate: func(r *metrics.Record, _ string) int {
				switch n := r.TitleLength; {
				case n >= 45 && n <= 60:
					return 8
				case n >= 30 && n < 45, n > 60 && n <= 70:
					return 4
				}
				return 0
			}},
		{ID: "metaDescription", Label: "Meta description", Category: CategoryTechnical, MaxPoints: 6,
			Evaluate: when(func(r *metrics.Record) bool { return r.MetaDescriptionPresent }, 6)},
		{ID: "h1Usage", Label: "H1 tag usage", Category: CategoryTechnical, MaxPoints: 6,
			Evaluate: when(func(r *metrics.Record) bool { return r.H1Count == 1 }, 6)},
		{ID: "canonical", Label: "Canonical tag", Category: CategoryTechnical, MaxPoints: 5,
			Evaluate: when(func(r *metrics.Record) bool { return r.CanonicalPresent }, 5)},
		{ID: "wordCount", Label: "Word count", Category: CategoryTechnical, MaxPoints: 5,
			Evaluate: func(r *metrics.Record, _ string) int {
				switch {
				case r.WordCount > 900:
					return 5
				case r.WordCount >= 300:
					return 3
				}
				return 0
			}},
		{ID: "keywordIntro", Label: "Keyword in intro", Category: CategoryContent, MaxPoints: 8,
			Evaluate: when(func(r *metrics.Record) bool { return r.KeywordInIntro }, 8)},
		{ID: "headingStructure", Label: "Heading structure quality", Category: CategoryContent, MaxPoints: 6,
			Evaluate: func(r *metrics.Record, _ string) int {
				return grade(int(r.HeadingStructureQuality), 0, 3, 6)
			}},
		{ID: "internalLinks", Label: "Internal links", Category: CategoryContent, MaxPoints: 5,
			Evaluate: func(r *metrics.Record, _ string) int {
				switch {
				case r.InternalLinkCount >= 3:
					return 5
				case r.InternalLinkCount >= 1:
					return 3
				}
				return 0
			}},
		{ID: "altCoverage", Label: "Alt text coverage", Category: CategoryContent, MaxPoints: 5,
			Evaluate: func(r *metrics.Record, _ string) int {
				switch {
				case r.AltCoverage > 0.8:
					return 5
				case r.AltCoverage >= 0.3:
					return 3
				}
				return 0
			}},
		{ID: "schemaPresence", Label: "Schema presence", Category: CategoryContent, MaxPoints: 6,
			Evaluate: when(func(r *metrics.Record) bool { return len(r.SchemaTypes) > 0 }, 6)},
		{ID: "keywordDensity", Label: "Topical coverage", Category: CategoryContent, MaxPoints: 5,
			Evaluate: func(r *metrics.Record, _ string) int {
				switch d := r.KeywordDensity; {
				case d >= 1 && d <= 2:
					return 5
				case d < 1:
					return 2
				case d > 2.5:
					return 0
				}
				return 4
			}},
		{ID: "sentenceLength", Label: "Average sentence length", Category: CategoryReadability, MaxPoints: 10,
			Evaluate: func(r *metrics.Record, _ string) int {
				switch {
				case r.AvgSentenceLength < 20:
					return 10
				case r.AvgSentenceLength <= 25:
					return 5
				}
				return 0
			}},
		{ID: "paragraphLength", Label: "Paragraph length", Category: CategoryReadability, MaxPoints: 10,
			Evaluate: func(r *metrics.Record, _ string) int {
				switch {
				case r.AvgParagraphLength < 120:
					return 10
				case r.AvgParagraphLength <= 180:
					return 5
				}
				return 0
			}},
		{ID: "listPresence", Label: "Bullets or lists", Category: CategoryReadability, MaxPoints: 10,
			Evaluate: when(func(r *metrics.Record) bool { return r.ListCount > 0 }, 10)},
	}
}

// GEORules returns the GEO table in evaluation order: the prose checks
// followed by one rule per signal of the bundle.
func GEORules() []Rule {
	rules := []Rule{
		{ID: "answerIntro", Label: "Summary intro", Category: CategoryDirectAnswer, MaxPoints: 15,
			Evaluate: func(r *metrics.Record, _ string) int { return grade(int(r.SummaryQuality), 0, 8, 15) }},
		{ID: "definitionClarity", Label: "Definition clarity", Category: CategoryDirectAnswer, MaxPoints: 10,
			Evaluate: func(r *metrics.Record, _ string) int { return grade(int(r.DefinitionClarity), 0, 5, 10) }},
		{ID: "snippetFormatting", Label: "Snippet-friendly formatting", Category: CategoryDirectAnswer, MaxPoints: 15,
			Evaluate: func(r *metrics.Record, _ string) int { return grade(int(r.SnippetFormatting), 0, 8, 15) }},
		{ID: "qaStructure", Label: "Q&A structure", Category: CategoryConversational, MaxPoints: 15,
			Evaluate: func(r *metrics.Record, _ string) int { return grade(int(r.QACoverage), 0, 8, 15) }},
		{ID: "sectionAlignment", Label: "Section labeling", Category: CategoryConversational, MaxPoints: 15,
			Evaluate: func(r *metrics.Record, _ string) int { return grade(int(r.SectionAlignment), 0, 8, 15) }},
		{ID: "factualStatements", Label: "Factual statements", Category: CategoryIngestion, MaxPoints: 10,
			Evaluate: func(r *metrics.Record, _ string) int {
				switch {
				case r.FactualDensity >= 5:
					return 10
				case r.FactualDensity >= 2:
					return 5
				}
				return 0
			}},
		{ID: "redundancy", Label: "Redundancy control", Category: CategoryIngestion, MaxPoints: 10,
			Evaluate: func(r *metrics.Record, _ string) int {
				switch {
				case r.RedundancyScore >= 0.8:
					return 10
				case r.RedundancyScore >= 0.6:
					return 5
				}
				return 0
			}},
		{ID: "clarity", Label: "Clarity & simplicity", Category: CategoryIngestion, MaxPoints: 10,
			Evaluate: func(r *metrics.Record, _ string) int {
				switch f := r.ReadabilityScore; {
				case f >= 60 && f <= 80:
					return 10
				case f >= 50 && f < 60:
					return 5
				}
				return 0
			}},

		signal("validSchema", "Valid schema markup", CategoryStructuredData, 6,
			func(g *metrics.GeoSignals) *bool { return g.StructuredData.ValidSchema }),
		signal("articleSchema", "Article schema", CategoryStructuredData, 4,
			func(g *metrics.GeoSignals) *bool { return g.StructuredData.ArticleSchema }),
		signal("breadcrumbSchema", "Breadcrumb schema", CategoryStructuredData, 4,
			func(g *metrics.GeoSignals) *bool { return g.StructuredData.BreadcrumbSchema }),
		signal("entityRelations", "Entity relationships", CategoryStructuredData, 3,
			func(g *metrics.GeoSignals) *bool { return g.StructuredData.EntityRelations }),
		signal("faqSchema", "FAQ schema", CategoryStructuredData, 3,
			func(g *metrics.GeoSignals) *bool { return g.StructuredData.FAQSchema }),

		signal("headingHierarchy", "Heading hierarchy", CategoryContentClarity, 5,
			func(g *metrics.GeoSignals) *bool { return g.ContentClarity.HeadingHierarchy }),
		signal("tldrPresent", "TL;DR summary", CategoryContentClarity, 5,
			func(g *metrics.GeoSignals) *bool { return g.ContentClarity.TLDRPresent }),
		signal("qaBlocks", "Q&A blocks", CategoryContentClarity, 5,
			func(g *metrics.GeoSignals) *bool { return g.ContentClarity.QABlocks }),
		signal("chunkedParagraphs", "Chunked paragraphs", CategoryContentClarity, 5,
			func(g *metrics.GeoSignals) *bool { return g.ContentClarity.ChunkedParagraphs }),

		signal("internalLinking", "Internal linking", CategoryEntityArchitecture, 4,
			func(g *metrics.GeoSignals) *bool { return g.EntityArchitecture.InternalLinking }),
		signal("entityHubLinks", "Entity hub links", CategoryEntityArchitecture, 4,
			func(g *metrics.GeoSignals) *bool { return g.EntityArchitecture.EntityHubLinks }),
		signal("naturalAnchorText", "Descriptive anchor text", CategoryEntityArchitecture, 4,
			func(g *metrics.GeoSignals) *bool { return g.EntityArchitecture.NaturalAnchorText }),
		signal("cleanUrl", "Clean URL", CategoryEntityArchitecture, 3,
			func(g *metrics.GeoSignals) *bool { return g.EntityArchitecture.CleanURL }),

		signal("llmsTxtPresent", "llms.txt present", CategoryTechnicalGeo, 5,
			func(g *metrics.GeoSignals) *bool { return g.TechnicalGeo.LLMSTxtPresent }),
		signal("robotsAllowsAll", "robots.txt allows crawlers", CategoryTechnicalGeo, 4,
			func(g *metrics.GeoSignals) *bool { return g.TechnicalGeo.RobotsAllowsAll }),
		signal("indexNowEndpointOk", "IndexNow key file", CategoryTechnicalGeo, 3,
			func(g *metrics.GeoSignals) *bool { return g.TechnicalGeo.IndexNowEndpointOK }),
		signal("serverSideRendered", "Server-side rendered", CategoryTechnicalGeo, 4,
			func(g *metrics.GeoSignals) *bool { return g.TechnicalGeo.ServerSideRendered }),
		signal("statusOk", "HTTP status OK", CategoryTechnicalGeo, 2,
			func(g *metrics.GeoSignals) *bool { return g.TechnicalGeo.StatusOK }),
		{ID: "htmlWeight", Label: "Lightweight HTML", Category: CategoryTechnicalGeo, MaxPoints: 2,
			Evaluate: func(_ *metrics.Record, html string) int {
				switch n := len(html); {
				case n == 0:
					return 0
				case n <= lightHTMLBytes:
					return 2
				case n <= heavyHTMLBytes:
					return 1
				}
				return 0
			}},

		signal("authorSchema", "Author schema", CategoryAuthority, 4,
			func(g *metrics.GeoSignals) *bool { return g.AuthoritySignals.AuthorSchema }),
		signal("authorBio", "Author bio", CategoryAuthority, 3,
			func(g *metrics.GeoSignals) *bool { return g.AuthoritySignals.AuthorBio }),
		signal("authoritativeCitations", "Authoritative citations", CategoryAuthority, 3,
			func(g *metrics.GeoSignals) *bool { return g.AuthoritySignals.AuthoritativeCitations }),
		signal("firstPartyData", "First-party data", CategoryAuthority, 3,
			func(g *metrics.GeoSignals) *bool { return g.AuthoritySignals.FirstPartyData }),
		signal("imageCitation", "Image citation", CategoryAuthority, 2,
			func(g *metrics.GeoSignals) *bool { return g.AuthoritySignals.ImageCitation }),

		signal("dateModifiedRecent", "Recently modified", CategoryFreshness, 2,
			func(g *metrics.GeoSignals) *bool { return g.Freshness.DateModifiedRecent }),
		signal("currentYearReferenced", "Current year referenced", CategoryFreshness, 2,
			func(g *metrics.GeoSignals) *bool { return g.Freshness.CurrentYearReferenced }),
		signal("sitemapLastmodRecent", "Sitemap lastmod recent", CategoryFreshness, 1,
			func(g *metrics.GeoSignals) *bool { return g.Freshness.SitemapLastmodRecent }),

		signal("disclaimerPresent", "Disclaimer present", CategorySafety, 2,
			func(g *metrics.GeoSignals) *bool { return g.Safety.DisclaimerPresent }),
		signal("lowVagueness", "Low vagueness", CategorySafety, 3,
			func(g *metrics.GeoSignals) *bool { return g.Safety.LowVagueness }),
	}
	return rules
}

// when awards points if pred holds.
func when(pred func(*metrics.Record) bool, points int) func(*metrics.Record, string) int {
	return func(r *metrics.Record, _ string) int {
		if pred(r) {
			return points
		}
		return 0
	}
}

// grade maps a quality level (worst first) to its points.
func grade(level int, points ...int) int {
	if level < 0 || level >= len(points) {
		return 0
	}
	return points[level]
}

// signal builds a rule awarding full points for a signal that was checked
// and passed. Unchecked signals earn nothing.
func signal(id, label, category string, points int, get func(*metrics.GeoSignals) *bool) Rule {
	return Rule{
		ID: id, Label: label, Category: category, MaxPoints: points,
		Evaluate: func(r *metrics.Record, _ string) int {
			if metrics.True(get(&r.GeoSignals)) {
				return points
			}
			return 0
		},
	}
}
