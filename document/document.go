// Package document wraps an HTML parser behind the handful of queries the
// metrics extractor needs. Callers never see goquery or x/net/html types.
package document

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const emptyMarkup = "<body></body>"

var (
	titleSel     = cascadia.MustCompile("title")
	metaSel      = cascadia.MustCompile("meta")
	linkRelSel   = cascadia.MustCompile("link[rel]")
	headingSel   = cascadia.MustCompile("h1, h2, h3, h4, h5, h6")
	paragraphSel = cascadia.MustCompile("p")
	anchorSel    = cascadia.MustCompile("a[href]")
	imageSel     = cascadia.MustCompile("img")
	scriptSel    = cascadia.MustCompile("script[type]")
	itemtypeSel  = cascadia.MustCompile("[itemtype]")
	bodySel      = cascadia.MustCompile("body")
)

// Heading is an h1-h6 element in document order.
type Heading struct {
	Level int
	Text  string
}

// Link is an anchor carrying an href attribute.
type Link struct {
	Href string
	Text string
	Rel  string
}

// Image is an img element.
type Image struct {
	Src string
	Alt string
}

// Document is a parsed, read-only HTML tree.
type Document struct {
	doc *goquery.Document
}

// Parse builds a Document from markup. Empty input yields an empty body and
// malformed markup is recovered the way browsers do, so Parse never fails.
func Parse(markup string) *Document {
	if strings.TrimSpace(markup) == "" {
		markup = emptyMarkup
	}
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		root, _ = html.Parse(strings.NewReader(emptyMarkup))
	}
	return &Document{doc: goquery.NewDocumentFromNode(root)}
}

// Title returns the trimmed text of the first title element.
func (d *Document) Title() string {
	return strings.TrimSpace(d.doc.FindMatcher(titleSel).First().Text())
}

// MetaContent returns the content of the first meta element whose name
// matches (case-insensitively).
func (d *Document) MetaContent(name string) (string, bool) {
	return d.metaBy("name", name)
}

// MetaProperty is MetaContent for Open Graph style property attributes.
func (d *Document) MetaProperty(property string) (string, bool) {
	return d.metaBy("property", property)
}

func (d *Document) metaBy(attr, value string) (string, bool) {
	var (
		content string
		found   bool
	)
	d.doc.FindMatcher(metaSel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		v, ok := s.Attr(attr)
		if !ok || !strings.EqualFold(strings.TrimSpace(v), value) {
			return true
		}
		content, found = s.Attr("content")
		return false
	})
	return content, found
}

// LinkHref returns the href of the first link element whose rel list
// contains rel.
func (d *Document) LinkHref(rel string) (string, bool) {
	var (
		href  string
		found bool
	)
	d.doc.FindMatcher(linkRelSel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		v, _ := s.Attr("rel")
		for _, token := range strings.Fields(v) {
			if strings.EqualFold(token, rel) {
				href, found = s.Attr("href")
				return false
			}
		}
		return true
	})
	return href, found
}

// Headings returns every heading in document order.
func (d *Document) Headings() []Heading {
	var headings []Heading
	d.doc.FindMatcher(headingSel).Each(func(_ int, s *goquery.Selection) {
		node := s.Get(0)
		level, err := strconv.Atoi(strings.TrimPrefix(node.Data, "h"))
		if err != nil {
			return
		}
		headings = append(headings, Heading{
			Level: level,
			Text:  strings.TrimSpace(textContent(node)),
		})
	})
	return headings
}

// Paragraphs returns the raw text of every p element.
func (d *Document) Paragraphs() []string {
	return d.textsOf(paragraphSel)
}

// BodyText returns the text content of body with script, style, noscript
// and template subtrees left out. Whitespace is not normalized.
func (d *Document) BodyText() string {
	body := d.doc.FindMatcher(bodySel)
	if body.Length() == 0 {
		return ""
	}
	return textContent(body.Get(0))
}

// Links returns every anchor that carries an href.
func (d *Document) Links() []Link {
	var links []Link
	d.doc.FindMatcher(anchorSel).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		rel, _ := s.Attr("rel")
		links = append(links, Link{
			Href: href,
			Text: strings.TrimSpace(textContent(s.Get(0))),
			Rel:  rel,
		})
	})
	return links
}

// Images returns every img element.
func (d *Document) Images() []Image {
	var images []Image
	d.doc.FindMatcher(imageSel).Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		alt, _ := s.Attr("alt")
		images = append(images, Image{Src: src, Alt: alt})
	})
	return images
}

// JSONLD returns the raw bodies of application/ld+json script blocks.
func (d *Document) JSONLD() []string {
	var blocks []string
	d.doc.FindMatcher(scriptSel).Each(func(_ int, s *goquery.Selection) {
		kind, _ := s.Attr("type")
		if !strings.EqualFold(strings.TrimSpace(kind), "application/ld+json") {
			return
		}
		blocks = append(blocks, s.Text())
	})
	return blocks
}

// MicrodataTypes returns every itemtype URL declared in the markup.
func (d *Document) MicrodataTypes() []string {
	var types []string
	d.doc.FindMatcher(itemtypeSel).Each(func(_ int, s *goquery.Selection) {
		v, _ := s.Attr("itemtype")
		types = append(types, strings.Fields(v)...)
	})
	return types
}

// Count returns how many elements match a CSS selector. Invalid selectors
// match nothing.
func (d *Document) Count(selector string) int {
	return d.doc.Find(selector).Length()
}

// Exists reports whether any element matches selector.
func (d *Document) Exists(selector string) bool {
	return d.Count(selector) > 0
}

// Texts returns the trimmed text of every element matching selector.
func (d *Document) Texts(selector string) []string {
	var out []string
	d.doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		out = append(out, strings.TrimSpace(textContent(s.Get(0))))
	})
	return out
}

// AttrEquals reports whether some element has attr equal to value, ignoring
// case and surrounding whitespace.
func (d *Document) AttrEquals(attr, value string) bool {
	found := false
	d.doc.Find("[" + attr + "]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		v, _ := s.Attr(attr)
		found = strings.EqualFold(strings.TrimSpace(v), value)
		return !found
	})
	return found
}

func (d *Document) textsOf(m goquery.Matcher) []string {
	var out []string
	d.doc.FindMatcher(m).Each(func(_ int, s *goquery.Selection) {
		out = append(out, textContent(s.Get(0)))
	})
	return out
}

// textContent concatenates descendant text nodes, skipping subtrees that
// never render as text.
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript, atom.Template:
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
