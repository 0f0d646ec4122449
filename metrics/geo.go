package metrics

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ai-mapper/backend/document"
	"github.com/ai-mapper/backend/schema"
)

const (
	minInternalLinks     = 3
	minRenderedWords     = 50
	maxChunkWords        = 120
	naturalAnchorRatio   = 0.7
	maxVagueRatio        = 0.2
	maxCleanURLDepth     = 5
	dateModifiedMaxAge   = 180 * 24 * time.Hour
	spaMountSelector     = "#root, #app, #__next, #__nuxt, [data-reactroot]"
	authorBioSelector    = `[rel~=author], .author-bio, .author-box, .about-author, .author-info, [itemprop=author]`
	disclaimerSelector   = `.disclaimer, #disclaimer, [class*=disclaimer]`
	modifiedTimeProperty = "article:modified_time"
)

var (
	tldrRe         = regexp.MustCompile(`(?i)\b(?:tl;?dr|key takeaways|in summary|at a glance|the short answer)\b`)
	hubPathRe      = regexp.MustCompile(`(?i)/(?:topics?|category|categories|tags?|glossary|authors?|wiki|about)(?:/|$|\?|#)`)
	authorBioRe    = regexp.MustCompile(`(?i)\babout the author\b`)
	firstPartyRe   = regexp.MustCompile(`(?i)\b(?:our (?:own )?(?:data|research|survey|study|analysis|findings)|we (?:surveyed|analy[sz]ed|measured|tested|found)|first-party data|proprietary (?:data|research))\b`)
	disclaimerRe   = regexp.MustCompile(`(?i)\b(?:disclaimer|not (?:financial|legal|medical|investment|tax) advice|for informational purposes only)\b`)
	dynamicExtRe   = regexp.MustCompile(`(?i)\.(?:php|aspx?|jsp|cfm)$`)
	dateLayouts    = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"}
	genericAnchors = map[string]struct{}{
		"click here": {}, "here": {}, "read more": {}, "learn more": {}, "more": {},
		"this": {}, "link": {}, "continue reading": {}, "go": {},
	}
	authoritativeHosts = []string{"who.int", "un.org"}
)

func buildGeoSignals(doc *document.Document, rec *Record, sd schema.Result, links []document.Link, bodyText, baseURL string, opts Options) GeoSignals {
	var g GeoSignals
	hasWords := rec.WordCount > 0

	g.StructuredData = StructuredDataSignals{
		ValidSchema:      flag(len(sd.Types) > 0),
		ArticleSchema:    flag(sd.HasArticle),
		BreadcrumbSchema: flag(sd.HasBreadcrumb),
		EntityRelations:  flag(sd.HasEntityRelations),
		FAQSchema:        flag(sd.HasFAQ),
	}

	g.ContentClarity = ContentClaritySignals{
		HeadingHierarchy: flag(rec.HeadingStructureQuality == HeadingStrong),
		TLDRPresent:      flag(rec.SummaryQuality == SummaryStrong || tldrRe.MatchString(bodyText)),
		QABlocks:         flag(rec.QACoverage != QANone),
	}
	if hasWords {
		g.ContentClarity.ChunkedParagraphs = flag(rec.AvgParagraphLength < maxChunkWords)
	}

	g.EntityArchitecture = EntityArchitectureSignals{
		InternalLinking:   flag(rec.InternalLinkCount >= minInternalLinks),
		EntityHubLinks:    flag(hasHubLinks(links)),
		NaturalAnchorText: naturalAnchorText(links),
		CleanURL:          cleanURL(baseURL),
	}

	if s := opts.SiteSignals; s != nil {
		g.TechnicalGeo.LLMSTxtPresent = flag(s.LLMSTxtPresent)
		g.TechnicalGeo.RobotsAllowsAll = copyFlag(s.RobotsAllowsAll)
		g.TechnicalGeo.IndexNowEndpointOK = flag(s.IndexNowEndpointOK)
		g.TechnicalGeo.SitemapLastmodRecent = copyFlag(s.SitemapLastmodRecent)
		g.Freshness.SitemapLastmodRecent = copyFlag(s.SitemapLastmodRecent)
	}
	if rec.InputType != InputText {
		g.TechnicalGeo.ServerSideRendered = flag(rec.WordCount >= minRenderedWords && !hasEmptyMount(doc))
	}
	if opts.StatusCode != 0 {
		g.TechnicalGeo.StatusOK = flag(opts.StatusCode >= 200 && opts.StatusCode < 300)
	}

	g.AuthoritySignals = AuthoritySignals{
		AuthorSchema:           flag(sd.HasAuthor),
		AuthorBio:              flag(doc.Exists(authorBioSelector) || authorBioRe.MatchString(bodyText)),
		AuthoritativeCitations: flag(hasAuthoritativeCitation(links, baseURL)),
		FirstPartyData:         flag(firstPartyRe.MatchString(bodyText)),
		ImageCitation:          flag(sd.HasImageCitation),
	}

	now := opts.now()
	g.Freshness.DateModifiedRecent = dateModifiedRecent(doc, sd, now)
	g.Freshness.CurrentYearReferenced = flag(mentionsYear(bodyText, now.Year()))

	g.Safety.DisclaimerPresent = flag(doc.Exists(disclaimerSelector) || disclaimerRe.MatchString(bodyText))
	if hasWords {
		g.Safety.LowVagueness = flag(rec.VagueStatementRatio < maxVagueRatio)
	}
	return g
}

func copyFlag(v *bool) *bool {
	if v == nil {
		return nil
	}
	return flag(*v)
}

func hasHubLinks(links []document.Link) bool {
	for _, l := range links {
		for _, rel := range strings.Fields(l.Rel) {
			if strings.EqualFold(rel, "tag") {
				return true
			}
		}
		if hubPathRe.MatchString(l.Href) {
			return true
		}
	}
	return false
}

// naturalAnchorText is nil when no link carries text.
func naturalAnchorText(links []document.Link) *bool {
	total, descriptive := 0, 0
	for _, l := range links {
		text := strings.ToLower(strings.Join(strings.Fields(l.Text), " "))
		if text == "" {
			continue
		}
		total++
		if _, generic := genericAnchors[text]; !generic {
			descriptive++
		}
	}
	if total == 0 {
		return nil
	}
	return flag(float64(descriptive)/float64(total) >= naturalAnchorRatio)
}

// cleanURL is nil without a URL. A clean URL has no query string, no
// upper-case letters or underscores in the path, no dynamic-page extension
// and at most five path segments.
func cleanURL(rawURL string) *bool {
	if rawURL == "" {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return flag(false)
	}
	path := u.EscapedPath()
	depth := 0
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			depth++
		}
	}
	clean := u.RawQuery == "" &&
		path == strings.ToLower(path) &&
		!strings.Contains(path, "_") &&
		!dynamicExtRe.MatchString(path) &&
		depth <= maxCleanURLDepth
	return flag(clean)
}

func hasEmptyMount(doc *document.Document) bool {
	for _, text := range doc.Texts(spaMountSelector) {
		if text == "" {
			return true
		}
	}
	return false
}

func hasAuthoritativeCitation(links []document.Link, baseURL string) bool {
	var base *url.URL
	if baseURL != "" {
		base, _ = url.Parse(baseURL)
	}
	for _, l := range links {
		u, err := url.Parse(l.Href)
		if err != nil {
			continue
		}
		if base != nil {
			u = base.ResolveReference(u)
		}
		if isAuthoritativeHost(strings.ToLower(u.Hostname())) {
			return true
		}
	}
	return false
}

func isAuthoritativeHost(host string) bool {
	if host == "" {
		return false
	}
	if strings.HasSuffix(host, ".gov") || strings.HasSuffix(host, ".edu") ||
		strings.Contains(host, ".gov.") || strings.Contains(host, ".edu.") {
		return true
	}
	for _, h := range authoritativeHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// dateModifiedRecent is nil when neither JSON-LD nor Open Graph metadata
// carries a parseable modification date.
func dateModifiedRecent(doc *document.Document, sd schema.Result, now time.Time) *bool {
	raw := sd.DateModified
	if raw == "" {
		raw, _ = doc.MetaProperty(modifiedTimeProperty)
	}
	modified, ok := parseDate(strings.TrimSpace(raw))
	if !ok {
		return nil
	}
	return flag(now.Sub(modified) <= dateModifiedMaxAge)
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func mentionsYear(text string, year int) bool {
	y := strconv.Itoa(year)
	for i := 0; ; {
		j := strings.Index(text[i:], y)
		if j < 0 {
			return false
		}
		start, end := i+j, i+j+len(y)
		if (start == 0 || !isDigit(text[start-1])) && (end == len(text) || !isDigit(text[end])) {
			return true
		}
		i = end
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
