// Package recommend selects prioritized recommendations for a metrics
// record and compares scores against industry benchmarks.
package recommend

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/ai-mapper/backend/metrics"
)

// MaxCombined caps the combined recommendation list.
const MaxCombined = 10

// Content types with dedicated rules or tips.
const (
	TypeGeneral      = "General"
	TypePressRelease = "pressRelease"
	TypeBlogArticle  = "blogArticle"
	TypeProductPage  = "productPage"
	TypeLandingPage  = "landingPage"
	TypeNewsArticle  = "newsArticle"
	TypeHowTo        = "howTo"
)

// Mode tells which score a recommendation targets.
type Mode string

const (
	ModeSEO      Mode = "seo"
	ModeGEO      Mode = "geo"
	ModeCombined Mode = "combined"
)

// Context carries request-level facts the conditions depend on.
type Context struct {
	ContentType string
}

// Item is one recommendation.
type Item struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Priority string `json:"priority"`
	Mode     Mode   `json:"mode"`
}

// Recommendations holds the capped combined list plus the full per-mode
// lists.
type Recommendations struct {
	Combined []Item `json:"combined"`
	SEO      []Item `json:"seo"`
	GEO      []Item `json:"geo"`
}

type condition func(r *metrics.Record, ctx Context) bool

var seoConditions = map[string]condition{
	"schemaNews": func(r *metrics.Record, ctx Context) bool {
		return ctx.ContentType == TypePressRelease && !r.HasSchemaType("NewsArticle")
	},
	"schemaFaq": func(r *metrics.Record, ctx Context) bool {
		switch ctx.ContentType {
		case TypeBlogArticle, TypeProductPage, TypeHowTo:
			return !r.HasSchemaType("FAQPage")
		}
		return false
	},
	"productSchema": func(r *metrics.Record, ctx Context) bool {
		return ctx.ContentType == TypeProductPage && !r.HasSchemaType("Product")
	},
	"titleLength": func(r *metrics.Record, ctx Context) bool {
		return ctx.ContentType != TypePressRelease && r.TitleLength > 0 && (r.TitleLength < 50 || r.TitleLength > 60)
	},
	"metaDescription": func(r *metrics.Record, _ Context) bool {
		return r.MetaDescriptionLength > 0 && (r.MetaDescriptionLength < 140 || r.MetaDescriptionLength > 170)
	},
	"keywordIntro": func(r *metrics.Record, _ Context) bool {
		return !r.KeywordInIntro
	},
	"internalLinks": func(r *metrics.Record, _ Context) bool {
		return r.LinkCount < 3
	},
	"speed": func(r *metrics.Record, ctx Context) bool {
		if ctx.ContentType == TypePressRelease {
			return r.PageSpeedEstimate < 65
		}
		return r.PageSpeedEstimate < 75
	},
	"wordCount": func(r *metrics.Record, _ Context) bool {
		return r.WordCount < 800
	},
}

var geoConditions = map[string]condition{
	"entityDefinitions": func(r *metrics.Record, _ Context) bool {
		return r.EntityDefinitions < 2
	},
	"infoDensity": func(r *metrics.Record, _ Context) bool {
		return r.FactsPer100 < 5
	},
	"qaFormat": func(r *metrics.Record, ctx Context) bool {
		return ctx.ContentType != TypePressRelease && r.QACount < 3
	},
	"conversationalTone": func(r *metrics.Record, ctx Context) bool {
		return ctx.ContentType != TypePressRelease && r.ConversationalMarkers < 10
	},
	"quotable": func(r *metrics.Record, _ Context) bool {
		return r.QuotableStatementsRatio < 0.4
	},
	"attribution": func(r *metrics.Record, ctx Context) bool {
		if ctx.ContentType == TypePressRelease {
			return r.AttributionCount < 1
		}
		return r.AttributionCount < 2
	},
	"voiceSearch": func(r *metrics.Record, ctx Context) bool {
		return ctx.ContentType != TypePressRelease && r.VoicePatternScore < 70
	},
	"parserStructure": func(r *metrics.Record, _ Context) bool {
		return r.ParserAccessibilityScore < 75
	},
	"authority": func(r *metrics.Record, ctx Context) bool {
		if ctx.ContentType == TypePressRelease {
			return !(r.AttributionCount >= 1 || r.HasProprietaryData || r.FactsPer100 >= 8)
		}
		return r.TopicalAuthorityScore < 55 && !r.HasProprietaryData
	},
}

// tipSkips are the record facts that make a content-type tip redundant.
var tipSkips = map[string]func(*metrics.Record) bool{
	"likelyOwnedDomain":  func(r *metrics.Record) bool { return r.LikelyOwnedDomain },
	"hasProprietaryData": func(r *metrics.Record) bool { return r.HasProprietaryData },
}

//go:embed data.yaml
var rawTables []byte

type entry struct {
	ID       string `yaml:"id"`
	Priority string `yaml:"priority"`
	Text     string `yaml:"text"`
}

type tip struct {
	Text     string `yaml:"text"`
	SkipWhen string `yaml:"skipWhen"`
}

type tableFile struct {
	SEO        []entry          `yaml:"seo"`
	GEO        []entry          `yaml:"geo"`
	Maintain   entry            `yaml:"maintain"`
	TypeTips   map[string][]tip `yaml:"typeTips"`
	Industries []Industry       `yaml:"industries"`
}

var tables = mustLoad(rawTables)

func mustLoad(raw []byte) *tableFile {
	t, err := load(raw)
	if err != nil {
		panic(err)
	}
	return t
}

func load(raw []byte) (*tableFile, error) {
	var t tableFile
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("parse recommendation tables: %w", err)
	}
	for _, e := range t.SEO {
		if _, ok := seoConditions[e.ID]; !ok {
			return nil, fmt.Errorf("seo rule %q has no condition", e.ID)
		}
	}
	for _, e := range t.GEO {
		if _, ok := geoConditions[e.ID]; !ok {
			return nil, fmt.Errorf("geo rule %q has no condition", e.ID)
		}
	}
	for kind, tips := range t.TypeTips {
		for _, tp := range tips {
			if _, ok := tipSkips[tp.SkipWhen]; tp.SkipWhen != "" && !ok {
				return nil, fmt.Errorf("%s tip has unknown skipWhen %q", kind, tp.SkipWhen)
			}
		}
	}
	return &t, nil
}

// Build filters the SEO and GEO tables by their conditions. Combined keeps
// table order, is capped at MaxCombined and falls back to a single
// maintain item when nothing triggers.
func Build(rec *metrics.Record, ctx Context) Recommendations {
	seo := selectItems(tables.SEO, seoConditions, rec, ctx, ModeSEO)
	geo := selectItems(tables.GEO, geoConditions, rec, ctx, ModeGEO)

	combined := make([]Item, 0, MaxCombined)
	combined = append(combined, seo...)
	combined = append(combined, geo...)
	if len(combined) > MaxCombined {
		combined = combined[:MaxCombined]
	}
	if len(combined) == 0 {
		m := tables.Maintain
		combined = append(combined, Item{ID: m.ID, Text: m.Text, Priority: m.Priority, Mode: ModeCombined})
	}
	return Recommendations{Combined: combined, SEO: seo, GEO: geo}
}

func selectItems(entries []entry, conds map[string]condition, rec *metrics.Record, ctx Context, mode Mode) []Item {
	out := []Item{}
	for _, e := range entries {
		if conds[e.ID](rec, ctx) {
			out = append(out, Item{ID: e.ID, Text: e.Text, Priority: e.Priority, Mode: mode})
		}
	}
	return out
}

// TypeFindings returns the static tips for a content type, dropping those
// the record already satisfies. Unknown types have no tips.
func TypeFindings(contentType string, rec *metrics.Record) []string {
	out := []string{}
	for _, tp := range tables.TypeTips[contentType] {
		if skip, ok := tipSkips[tp.SkipWhen]; ok && skip(rec) {
			continue
		}
		out = append(out, tp.Text)
	}
	return out
}
