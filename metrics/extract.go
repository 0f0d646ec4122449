// Package metrics turns a parsed document into the flat Record consumed by
// the scoring and recommendation tables. Extraction is a pure function of
// its inputs and the injected clock; it performs no I/O and never fails.
package metrics

import (
	"html"
	"math"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ai-mapper/backend/document"
	"github.com/ai-mapper/backend/schema"
	"github.com/ai-mapper/backend/textstats"
)

const (
	conciseSentenceWords = 30
	snippetSentenceWords = 20
	summarySentences     = 4
)

var (
	blankLineRe      = regexp.MustCompile(`\n[ \t\r\f\v]*\n`)
	genericDefRe     = regexp.MustCompile(`(?i)\bis\s(?:an|a|the)\s`)
	alignedHeadingRe = regexp.MustCompile(`\b(?:who|what|when|where|why|how|guide|overview|benefits)\b`)
	nonAlnumRe       = regexp.MustCompile(`[^a-z0-9]`)
)

var ownedDomainHints = []string{"news", "press", "media", "newsroom", "mediaroom", "investor"}

// Extract builds the Record for markup. baseURL resolves relative links and
// drives the URL-based checks; it may be empty.
func Extract(markup, baseURL string, opts Options) *Record {
	if opts.InputType == "" {
		opts.InputType = InputHTML
		if baseURL != "" {
			opts.InputType = InputURL
		}
	}
	return extract(document.Parse(markup), baseURL, opts)
}

// ExtractText builds the Record for plain text. Blocks separated by blank
// lines become paragraphs.
func ExtractText(text, baseURL string, opts Options) *Record {
	opts.InputType = InputText
	return extract(document.Parse(TextToHTML(text)), baseURL, opts)
}

// TextToHTML wraps each blank-line separated block of text in a paragraph.
func TextToHTML(text string) string {
	var b strings.Builder
	b.WriteString("<body>")
	for _, block := range blankLineRe.Split(strings.ReplaceAll(text, "\r\n", "\n"), -1) {
		if block = strings.TrimSpace(block); block == "" {
			continue
		}
		b.WriteString("\n<p>")
		b.WriteString(html.EscapeString(block))
		b.WriteString("</p>")
	}
	b.WriteString("\n</body>")
	return b.String()
}

func extract(doc *document.Document, baseURL string, opts Options) *Record {
	rawBody := doc.BodyText()
	bodyText := textstats.NormalizeWhitespace(rawBody)
	sentences := textstats.SplitSentences(bodyText)
	wordCount := textstats.CountWords(bodyText)
	sentenceCount := max(len(sentences), 1)

	paragraphs := extractParagraphs(doc, rawBody)
	paragraphWords := make([]int, 0, len(paragraphs))
	for _, p := range paragraphs {
		if n := textstats.CountWords(p); n > 0 {
			paragraphWords = append(paragraphWords, n)
		}
	}

	title := doc.Title()
	metaDescription, _ := doc.MetaContent("description")
	metaDescription = strings.TrimSpace(metaDescription)
	_, canonical := doc.LinkHref("canonical")
	headings := doc.Headings()
	links := doc.Links()
	images := doc.Images()
	sd := schema.Collect(doc)

	keyword := textstats.DominantKeyword(bodyText)
	intro := textstats.IntroSample(bodyText)

	rec := &Record{
		InputType:              opts.InputType,
		Title:                  title,
		WordCount:              wordCount,
		SentenceCount:          sentenceCount,
		ParagraphCount:         max(len(paragraphs), 1),
		AvgParagraphLength:     mean(paragraphWords, float64(wordCount)),
		AvgWordLength:          textstats.AverageWordLength(bodyText),
		TitleLength:            utf8.RuneCountInString(title),
		MetaDescriptionLength:  utf8.RuneCountInString(metaDescription),
		MetaDescriptionPresent: metaDescription != "",
		CanonicalPresent:       canonical,
		ListCount:              doc.Count("ul, ol"),
		ImageCount:             len(images),
		LinkCount:              len(links),
		ScriptCount:            doc.Count("script"),
		DataTableCount:         doc.Count("table"),
		SchemaTypes:            sd.Types,
		DominantKeyword:        keyword,
		IntroSample:            intro,
		AltCoverage:            altCoverage(images),
		RedundancyScore:        textstats.Redundancy(sentences),
		FactualDensity:         textstats.FactualDensity(bodyText, wordCount),
		ReadabilityScore: textstats.FleschReadingEase(
			wordCount, sentenceCount, textstats.TextSyllables(bodyText)),
	}
	if rec.SchemaTypes == nil {
		rec.SchemaTypes = []string{}
	}
	if wordCount > 0 {
		rec.AvgSentenceLength = float64(wordCount) / float64(sentenceCount)
	}

	for _, h := range headings {
		if h.Level == 1 {
			rec.H1Count++
		}
	}
	for _, l := range links {
		if isInternalLink(l.Href, baseURL) {
			rec.InternalLinkCount++
		}
	}

	if keyword != "" {
		if wordCount > 0 {
			rec.KeywordDensity = float64(textstats.CountOccurrences(bodyText, keyword)) / float64(wordCount) * 100
		}
		rec.KeywordInIntro = strings.Contains(strings.ToLower(intro), keyword)
	}

	var firstParagraph string
	if len(paragraphs) > 0 {
		firstParagraph = paragraphs[0]
	}
	rec.HeadingStructureQuality = classifyHeadings(headings)
	rec.SummaryQuality = classifySummary(firstParagraph)
	rec.DefinitionClarity = classifyDefinition(bodyText, keyword, title)
	rec.SnippetFormatting = classifySnippet(sentences, rec.ListCount)
	rec.QACoverage = classifyQA(bodyText)
	rec.SectionAlignment = classifySections(headings, keyword)

	rec.FactsPer100 = textstats.InformationDensity(bodyText, wordCount)
	rec.EntityDefinitions = textstats.EntityDefinitions(bodyText)
	rec.QACount = textstats.QuestionMarks(bodyText) + textstats.QAMarkers(bodyText)
	rec.ConversationalMarkers = textstats.ConversationalMarkers(bodyText)
	rec.ConversationalToneScore = math.Min(100, float64(rec.ConversationalMarkers)/12*100)
	rec.QuotableStatements, rec.QuotableStatementsRatio = textstats.QuotableStatements(sentences)
	rec.VoicePatternScore = textstats.VoicePatternScore(sentences)
	rec.TopicalAuthorityScore = textstats.TopicalAuthority(bodyText)
	rec.ParserAccessibilityScore = textstats.ParserAccessibility(paragraphWords, doc.Count("li"))
	rec.AttributionCount = textstats.AttributionCount(bodyText)
	rec.ProprietarySignalScore = textstats.ProprietarySignals(bodyText)
	rec.VagueStatementRatio = textstats.VagueStatementRatio(sentences)

	rec.HasDataTable = rec.DataTableCount > 0
	if rec.HasDataTable {
		rec.TopicalAuthorityScore = math.Min(100, rec.TopicalAuthorityScore+10)
	}
	rec.HasProprietaryData = rec.HasDataTable || rec.FactsPer100 >= 8 || rec.ProprietarySignalScore >= 5

	if opts.InputType == InputText {
		rec.PageSpeedEstimate = 70
		rec.IsHTTPS = strings.HasPrefix(baseURL, "https")
	} else {
		rec.PageSpeedEstimate = max(55, 95-rec.ImageCount*3-rec.ScriptCount*2)
		rec.HasViewport = doc.Exists(`meta[name="viewport"]`)
		rec.IsHTTPS = baseURL == "" || strings.HasPrefix(baseURL, "https://")
	}
	siteName, _ := doc.MetaProperty("og:site_name")
	rec.LikelyOwnedDomain = likelyOwnedDomain(baseURL, siteName)

	rec.GeoSignals = buildGeoSignals(doc, rec, sd, links, bodyText, baseURL, opts)
	return rec
}

// extractParagraphs returns the normalized, non-empty p texts. Documents
// without any fall back to blank-line blocks of the body text.
func extractParagraphs(doc *document.Document, rawBody string) []string {
	var out []string
	for _, p := range doc.Paragraphs() {
		if p = textstats.NormalizeWhitespace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) > 0 {
		return out
	}
	for _, block := range blankLineRe.Split(rawBody, -1) {
		if block = textstats.NormalizeWhitespace(block); block != "" {
			out = append(out, block)
		}
	}
	return out
}

func mean(values []int, fallback float64) float64 {
	if len(values) == 0 {
		return fallback
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

func altCoverage(images []document.Image) float64 {
	if len(images) == 0 {
		return 1
	}
	withAlt := 0
	for _, img := range images {
		if strings.TrimSpace(img.Alt) != "" {
			withAlt++
		}
	}
	return float64(withAlt) / float64(len(images))
}

// classifyHeadings starts at strong and downgrades one step per skipped
// level. A first heading other than h1 caps the grade at minor; zero or
// several h1s make it poor.
func classifyHeadings(headings []document.Heading) HeadingQuality {
	if len(headings) == 0 {
		return HeadingPoor
	}
	quality := HeadingStrong
	h1Count := 0
	for i, h := range headings {
		if h.Level == 1 {
			h1Count++
		}
		if i > 0 && h.Level-headings[i-1].Level > 1 {
			if quality == HeadingStrong {
				quality = HeadingMinor
			} else {
				quality = HeadingPoor
			}
		}
	}
	if headings[0].Level != 1 {
		quality = HeadingMinor
	}
	if h1Count != 1 {
		quality = HeadingPoor
	}
	return quality
}

func classifySummary(paragraph string) SummaryQuality {
	sentences := textstats.SplitSentences(paragraph)
	if len(sentences) == 0 {
		return SummaryNone
	}
	if len(sentences) > summarySentences {
		sentences = sentences[:summarySentences]
	}
	concise := 0
	for _, s := range sentences {
		if textstats.CountWords(s) <= conciseSentenceWords {
			concise++
		}
	}
	switch {
	case len(sentences) >= 2 && concise == len(sentences):
		return SummaryStrong
	case concise >= max(1, len(sentences)-1):
		return SummaryPartial
	default:
		return SummaryNone
	}
}

// classifyDefinition looks for "<focus> is/are a/an/the" where focus is the
// dominant keyword or, failing that, the first title segment. The article
// is a prefix match, so "is another" counts too.
func classifyDefinition(text, keyword, title string) DefinitionClarity {
	focus := keyword
	if focus == "" {
		focus = strings.TrimSpace(strings.SplitN(title, "|", 2)[0])
	}
	if focus != "" {
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(focus) + `\b\s+(?:is|are)\s+(?:an?|the)`)
		if re.MatchString(text) {
			return DefinitionClear
		}
	}
	if genericDefRe.MatchString(text) {
		return DefinitionPartial
	}
	return DefinitionNone
}

func classifySnippet(sentences []string, listCount int) SnippetFormatting {
	if len(sentences) == 0 && listCount == 0 {
		return SnippetNone
	}
	ratio := 1.0
	if len(sentences) > 0 {
		short := 0
		for _, s := range sentences {
			if textstats.CountWords(s) <= snippetSentenceWords {
				short++
			}
		}
		ratio = float64(short) / float64(len(sentences))
	}
	switch {
	case ratio >= 0.6 && listCount > 0:
		return SnippetStrong
	case ratio >= 0.4 || listCount > 0:
		return SnippetPartial
	default:
		return SnippetNone
	}
}

func classifyQA(text string) QACoverage {
	questions := textstats.QuestionMarks(text)
	markers := textstats.QAMarkers(text)
	switch {
	case questions >= 3 || markers >= 2:
		return QAMultiple
	case questions >= 1 || markers >= 1:
		return QASingle
	default:
		return QANone
	}
}

func classifySections(headings []document.Heading, keyword string) SectionAlignment {
	if len(headings) == 0 {
		return SectionWeak
	}
	aligned := 0
	for _, h := range headings {
		text := strings.ToLower(h.Text)
		if (keyword != "" && strings.Contains(text, keyword)) || alignedHeadingRe.MatchString(text) {
			aligned++
		}
	}
	ratio := float64(aligned) / float64(len(headings))
	switch {
	case ratio >= 0.6:
		return SectionStrong
	case ratio >= 0.3:
		return SectionPartial
	default:
		return SectionWeak
	}
}

// isInternalLink treats fragments and mailto links as external to the
// count, root-relative paths as internal, and everything else by hostname.
func isInternalLink(href, baseURL string) bool {
	switch {
	case href == "", strings.HasPrefix(href, "#"), strings.HasPrefix(href, "mailto:"):
		return false
	case strings.HasPrefix(href, "/"):
		return true
	case baseURL == "":
		return false
	}
	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return false
	}
	target, err := base.Parse(href)
	if err != nil {
		return false
	}
	return strings.EqualFold(target.Hostname(), base.Hostname())
}

func likelyOwnedDomain(rawURL, siteName string) bool {
	if rawURL == "" {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	path := strings.ToLower(u.Path)
	for _, hint := range ownedDomainHints {
		if strings.Contains(host, hint) || strings.Contains(path, hint) {
			return true
		}
	}
	sanitized := nonAlnumRe.ReplaceAllString(strings.ToLower(siteName), "")
	return sanitized != "" && strings.Contains(host, sanitized)
}
