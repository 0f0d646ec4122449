package metrics

import "time"

// InputType says where the analyzed markup came from.
type InputType string

const (
	InputURL  InputType = "url"
	InputHTML InputType = "html"
	InputText InputType = "text"
)

// SiteSignals are site-level facts probed outside the extractor.
type SiteSignals struct {
	LLMSTxtPresent       bool  `json:"llmsTxtPresent"`
	RobotsAllowsAll      *bool `json:"robotsAllowsAll"`
	IndexNowEndpointOK   bool  `json:"indexNowEndpointOk"`
	SitemapLastmodRecent *bool `json:"sitemapLastmodRecent"`
}

// Options tune a single extraction. The zero value is valid: no site
// signals, no status code, input type inferred, wall clock.
type Options struct {
	SiteSignals *SiteSignals
	StatusCode  int
	InputType   InputType
	// Now is used for the freshness checks. Nil means time.Now.
	Now func() time.Time
}

func (o Options) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

// Record is the flat metrics record every scoring rule reads. It is built
// once per analysis and never mutated afterwards.
type Record struct {
	InputType InputType `json:"inputType"`
	Title     string    `json:"title"`

	WordCount             int     `json:"wordCount"`
	SentenceCount         int     `json:"sentenceCount"`
	ParagraphCount        int     `json:"paragraphCount"`
	AvgSentenceLength     float64 `json:"avgSentenceLength"`
	AvgParagraphLength    float64 `json:"avgParagraphLength"`
	AvgWordLength         float64 `json:"avgWordLength"`
	TitleLength           int     `json:"titleLength"`
	MetaDescriptionLength int     `json:"metaDescriptionLength"`
	ListCount             int     `json:"listCount"`
	H1Count               int     `json:"h1Count"`
	ImageCount            int     `json:"imageCount"`
	LinkCount             int     `json:"linkCount"`
	InternalLinkCount     int     `json:"internalLinkCount"`
	ScriptCount           int     `json:"scriptCount"`
	DataTableCount        int     `json:"dataTableCount"`

	MetaDescriptionPresent bool `json:"metaDescriptionPresent"`
	CanonicalPresent       bool `json:"canonicalPresent"`
	KeywordInIntro         bool `json:"keywordInIntro"`
	HasViewport            bool `json:"hasViewport"`
	IsHTTPS                bool `json:"isHttps"`
	HasDataTable           bool `json:"hasDataTable"`
	HasProprietaryData     bool `json:"hasProprietaryData"`
	LikelyOwnedDomain      bool `json:"likelyOwnedDomain"`

	HeadingStructureQuality HeadingQuality    `json:"headingStructureQuality"`
	SummaryQuality          SummaryQuality    `json:"summaryQuality"`
	DefinitionClarity       DefinitionClarity `json:"definitionClarity"`
	SnippetFormatting       SnippetFormatting `json:"snippetFormatting"`
	QACoverage              QACoverage        `json:"qaCoverage"`
	SectionAlignment        SectionAlignment  `json:"sectionAlignment"`

	KeywordDensity   float64 `json:"keywordDensity"`
	AltCoverage      float64 `json:"altCoverage"`
	FactualDensity   float64 `json:"factualDensity"`
	RedundancyScore  float64 `json:"redundancyScore"`
	ReadabilityScore float64 `json:"readabilityScore"`

	SchemaTypes     []string `json:"schemaTypes"`
	DominantKeyword string   `json:"dominantKeyword"`
	IntroSample     string   `json:"introSample"`

	FactsPer100              float64 `json:"factsPer100"`
	EntityDefinitions        int     `json:"entityDefinitions"`
	QACount                  int     `json:"qaCount"`
	ConversationalMarkers    int     `json:"conversationalMarkers"`
	QuotableStatements       int     `json:"quotableStatements"`
	QuotableStatementsRatio  float64 `json:"quotableStatementsRatio"`
	VoicePatternScore        float64 `json:"voicePatternScore"`
	ConversationalToneScore  float64 `json:"conversationalToneScore"`
	TopicalAuthorityScore    float64 `json:"topicalAuthorityScore"`
	ParserAccessibilityScore float64 `json:"parserAccessibilityScore"`
	AttributionCount         int     `json:"attributionCount"`
	ProprietarySignalScore   int     `json:"proprietarySignalScore"`
	VagueStatementRatio      float64 `json:"vagueStatementRatio"`
	PageSpeedEstimate        int     `json:"pageSpeedEstimate"`

	GeoSignals GeoSignals `json:"geoSignals"`
}

// HasSchemaType reports whether t was declared, compared exactly.
func (r *Record) HasSchemaType(t string) bool {
	for _, s := range r.SchemaTypes {
		if s == t {
			return true
		}
	}
	return false
}

// GeoSignals groups the generative-engine readiness checks by category. A
// nil signal was not checked or could not be determined; it is never
// reported as false.
type GeoSignals struct {
	StructuredData     StructuredDataSignals     `json:"structuredData"`
	ContentClarity     ContentClaritySignals     `json:"contentClarity"`
	EntityArchitecture EntityArchitectureSignals `json:"entityArchitecture"`
	TechnicalGeo       TechnicalGeoSignals       `json:"technicalGeo"`
	AuthoritySignals   AuthoritySignals          `json:"authoritySignals"`
	Freshness          FreshnessSignals          `json:"freshness"`
	Safety             SafetySignals             `json:"safety"`
}

type StructuredDataSignals struct {
	ValidSchema      *bool `json:"validSchema"`
	ArticleSchema    *bool `json:"articleSchema"`
	BreadcrumbSchema *bool `json:"breadcrumbSchema"`
	EntityRelations  *bool `json:"entityRelations"`
	FAQSchema        *bool `json:"faqSchema"`
}

type ContentClaritySignals struct {
	HeadingHierarchy  *bool `json:"headingHierarchy"`
	TLDRPresent       *bool `json:"tldrPresent"`
	QABlocks          *bool `json:"qaBlocks"`
	ChunkedParagraphs *bool `json:"chunkedParagraphs"`
}

type EntityArchitectureSignals struct {
	InternalLinking   *bool `json:"internalLinking"`
	EntityHubLinks    *bool `json:"entityHubLinks"`
	NaturalAnchorText *bool `json:"naturalAnchorText"`
	CleanURL          *bool `json:"cleanUrl"`
}

type TechnicalGeoSignals struct {
	LLMSTxtPresent       *bool `json:"llmsTxtPresent"`
	RobotsAllowsAll      *bool `json:"robotsAllowsAll"`
	IndexNowEndpointOK   *bool `json:"indexNowEndpointOk"`
	SitemapLastmodRecent *bool `json:"sitemapLastmodRecent"`
	ServerSideRendered   *bool `json:"serverSideRendered"`
	StatusOK             *bool `json:"statusOk"`
}

type AuthoritySignals struct {
	AuthorSchema           *bool `json:"authorSchema"`
	AuthorBio              *bool `json:"authorBio"`
	AuthoritativeCitations *bool `json:"authoritativeCitations"`
	FirstPartyData         *bool `json:"firstPartyData"`
	ImageCitation          *bool `json:"imageCitation"`
}

type FreshnessSignals struct {
	DateModifiedRecent    *bool `json:"dateModifiedRecent"`
	CurrentYearReferenced *bool `json:"currentYearReferenced"`
	SitemapLastmodRecent  *bool `json:"sitemapLastmodRecent"`
}

type SafetySignals struct {
	DisclaimerPresent *bool `json:"disclaimerPresent"`
	LowVagueness      *bool `json:"lowVagueness"`
}

// True reports whether a signal was checked and passed.
func True(signal *bool) bool {
	return signal != nil && *signal
}

func flag(v bool) *bool { return &v }
