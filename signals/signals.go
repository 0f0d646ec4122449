// Package signals probes the well-known files of a site (robots.txt,
// llms.txt, indexnow.txt and the sitemap) that feed the technical GEO
// signals.
package signals

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ai-mapper/backend/metrics"
)

const (
	// DefaultTimeout bounds every single probe.
	DefaultTimeout = 7 * time.Second

	// UserAgent is sent with every probe.
	UserAgent = "Earned-Owned-AI-Mapper/1.0"

	maxRedirects = 3
	maxBodyBytes = 1 << 20
	recentWindow = 60 * 24 * time.Hour
)

var lastmodPattern = regexp.MustCompile(`(?i)<lastmod>\s*([^<]+?)\s*</lastmod>`)

var lastmodLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02",
	time.RFC1123,
	time.RFC1123Z,
}

// Report is what the probes found. Pointer fields are nil when the probe
// could not decide.
type Report struct {
	Origin               string   `json:"origin"`
	Hostname             string   `json:"hostname"`
	RobotsFound          bool     `json:"robotsFound"`
	RobotsAllowsAll      *bool    `json:"robotsAllowsAll"`
	BingbotAllowed       *bool    `json:"bingbotAllowed"`
	BingbotDisallow      []string `json:"bingbotDisallow"`
	SitemapURL           string   `json:"sitemapUrl"`
	SitemapLastmod       string   `json:"sitemapLastmod,omitempty"`
	SitemapLastmodRecent *bool    `json:"sitemapLastmodRecent"`
	LLMSTxtPresent       bool     `json:"llmsTxtPresent"`
	IndexNowEndpointOK   bool     `json:"indexNowEndpointOk"`
}

// SiteSignals converts the report into the extractor's input.
func (r Report) SiteSignals() *metrics.SiteSignals {
	return &metrics.SiteSignals{
		LLMSTxtPresent:       r.LLMSTxtPresent,
		RobotsAllowsAll:      r.RobotsAllowsAll,
		IndexNowEndpointOK:   r.IndexNowEndpointOK,
		SitemapLastmodRecent: r.SitemapLastmodRecent,
	}
}

// Collector runs the probes against a site's origin.
type Collector struct {
	client  *http.Client
	timeout time.Duration
	logger  *zap.Logger

	// Now is the clock used to judge sitemap freshness.
	Now func() time.Time
}

// NewCollector returns a collector using client for its requests. A nil
// client gets a default one; a non-positive timeout uses DefaultTimeout.
func NewCollector(client *http.Client, timeout time.Duration, logger *zap.Logger) *Collector {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &http.Client{Timeout: timeout}
	if client != nil {
		c.Transport = client.Transport
	}
	c.CheckRedirect = func(_ *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return http.ErrUseLastResponse
		}
		return nil
	}
	return &Collector{client: c, timeout: timeout, logger: logger, Now: time.Now}
}

// probe is one finished GET. A nil probe means the request failed or the
// server answered 5xx.
type probe struct {
	status int
	body   string
}

func (p *probe) ok() bool {
	return p != nil && p.status < 400 && strings.TrimSpace(p.body) != ""
}

// Collect probes the origin of rawURL. Probe failures never surface as
// errors; they leave the matching fields at their zero value.
func (c *Collector) Collect(ctx context.Context, rawURL string) Report {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return Report{BingbotDisallow: []string{}}
	}

	rep := Report{
		Origin:          u.Scheme + "://" + u.Host,
		Hostname:        u.Hostname(),
		BingbotDisallow: []string{},
	}

	var robots, llms, indexNow *probe
	var g errgroup.Group
	g.Go(func() error { robots = c.get(ctx, rep.Origin+"/robots.txt"); return nil })
	g.Go(func() error { llms = c.get(ctx, rep.Origin+"/llms.txt"); return nil })
	g.Go(func() error { indexNow = c.get(ctx, rep.Origin+"/indexnow.txt"); return nil })
	_ = g.Wait()

	rep.SitemapURL = rep.Origin + "/sitemap.xml"
	switch {
	case robots.ok():
		rules := ParseRobots(robots.body)
		rep.RobotsFound = true
		rep.RobotsAllowsAll = &rules.AllowsAll
		rep.BingbotAllowed = &rules.BingbotAllowed
		rep.BingbotDisallow = rules.Disallow
		if rules.Sitemap != "" {
			rep.SitemapURL = rules.Sitemap
		}
	case robots != nil && robots.status >= 400:
		// no robots.txt: crawlers treat the whole site as allowed
		allowed := true
		rep.RobotsAllowsAll = &allowed
		rep.BingbotAllowed = &allowed
	}

	rep.LLMSTxtPresent = llms.ok()
	rep.IndexNowEndpointOK = indexNow.ok()

	if sitemap := c.get(ctx, rep.SitemapURL); sitemap.ok() {
		if lastmod, ok := FirstLastmod(sitemap.body); ok {
			recent := c.Now().Sub(lastmod) <= recentWindow
			rep.SitemapLastmod = lastmod.UTC().Format(time.RFC3339)
			rep.SitemapLastmodRecent = &recent
		}
	}

	c.logger.Debug("Site signals collected",
		zap.String("origin", rep.Origin),
		zap.Bool("robots", rep.RobotsFound),
		zap.Bool("llms_txt", rep.LLMSTxtPresent),
		zap.Bool("indexnow", rep.IndexNowEndpointOK),
		zap.String("sitemap", rep.SitemapURL))
	return rep
}

func (c *Collector) get(ctx context.Context, target string) *probe {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("Signal probe failed", zap.String("url", target), zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 500 {
		return nil
	}
	body, err := readLimited(resp.Body)
	if err != nil {
		c.logger.Debug("Signal probe body unreadable", zap.String("url", target), zap.Error(err))
		return nil
	}
	return &probe{status: resp.StatusCode, body: body}
}

func readLimited(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBodyBytes))
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(data), nil
}

// Robots is the subset of robots.txt the GEO signals care about.
type Robots struct {
	AllowsAll      bool
	BingbotAllowed bool
	Disallow       []string
	Sitemap        string
}

// ParseRobots reads robots.txt content. A "Disallow: /" under
// "User-agent: *" blocks everyone; disallows for *, bingbot and msnbot are
// collected. The last Sitemap line wins.
func ParseRobots(content string) Robots {
	rules := Robots{AllowsAll: true, BingbotAllowed: true, Disallow: []string{}}
	agent := ""

	sc := bufio.NewScanner(strings.NewReader(content))
	sc.Buffer(make([]byte, 0, 64*1024), maxBodyBytes)
	for sc.Scan() {
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		key, value, found := strings.Cut(strings.TrimSpace(line), ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)

		switch strings.ToLower(strings.TrimSpace(key)) {
		case "user-agent":
			agent = strings.ToLower(value)
		case "sitemap":
			if value != "" {
				rules.Sitemap = value
			}
		case "disallow":
			if value == "" {
				continue
			}
			if agent == "*" && value == "/" {
				rules.AllowsAll = false
			}
			if agent == "*" || strings.Contains(agent, "bingbot") || strings.Contains(agent, "msnbot") {
				rules.Disallow = append(rules.Disallow, value)
				if value == "/" {
					rules.BingbotAllowed = false
				}
			}
		}
	}
	return rules
}

// FirstLastmod returns the first parseable <lastmod> value of a sitemap.
// Only the first lastmod element is considered.
func FirstLastmod(xml string) (time.Time, bool) {
	m := lastmodPattern.FindStringSubmatch(xml)
	if m == nil {
		return time.Time{}, false
	}
	for _, layout := range lastmodLayouts {
		if t, err := time.Parse(layout, m[1]); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
