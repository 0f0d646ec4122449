// Package schema collects structured data (JSON-LD and microdata) declared
// by a document.
package schema

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/ai-mapper/backend/document"
)

var articleLike = []string{"article", "newsarticle", "blogposting", "howto", "faqpage", "webpage"}

var entityRelationKeys = map[string]struct{}{
	"sameAs": {}, "mentions": {}, "knowsAbout": {}, "subjectOf": {},
}

const imageCreditSelector = "figcaption, .wp-caption-text, .caption, .image-credit, .photo-credit, .byline, [itemprop=creditText]"

// Result is everything the collector learned about a document.
type Result struct {
	// Types holds every declared @type/itemtype once, in discovery order.
	Types              []string
	HasArticle         bool
	HasBreadcrumb      bool
	HasFAQ             bool
	HasEntityRelations bool
	HasAuthor          bool
	HasImageCitation   bool
	// DateModified is the first dateModified value found in JSON-LD.
	DateModified string
}

// Collect walks every JSON-LD block and microdata itemtype in doc. Blocks
// that fail to parse are skipped.
func Collect(doc *document.Document) Result {
	c := &collector{seen: make(map[string]struct{})}

	for _, block := range doc.JSONLD() {
		var data any
		if err := json.Unmarshal([]byte(strings.TrimSpace(block)), &data); err != nil {
			continue
		}
		c.walk(data, "")
	}

	for _, itemtype := range doc.MicrodataTypes() {
		itemtype = strings.TrimRight(itemtype, "/")
		if i := strings.LastIndex(itemtype, "/"); i >= 0 {
			itemtype = itemtype[i+1:]
		}
		c.add(itemtype)
	}

	res := c.res
	res.Types = c.types
	for _, t := range c.types {
		lower := strings.ToLower(t)
		for _, kind := range articleLike {
			if strings.Contains(lower, kind) {
				res.HasArticle = true
			}
		}
		if strings.Contains(lower, "breadcrumblist") {
			res.HasBreadcrumb = true
		}
		if lower == "faqpage" {
			res.HasFAQ = true
		}
	}
	if doc.AttrEquals("aria-label", "breadcrumb") {
		res.HasBreadcrumb = true
	}
	if doc.Exists(`[itemprop=author]`) {
		res.HasAuthor = true
	}
	if doc.Exists(imageCreditSelector) {
		res.HasImageCitation = true
	}
	return res
}

type collector struct {
	res   Result
	types []string
	seen  map[string]struct{}
}

func (c *collector) add(t string) {
	t = strings.TrimSpace(t)
	if t == "" {
		return
	}
	if _, ok := c.seen[t]; ok {
		return
	}
	c.seen[t] = struct{}{}
	c.types = append(c.types, t)
}

// walk visits v recursively. parentKey is the key v was found under.
// Object keys are visited in sorted order so Types is stable.
func (c *collector) walk(v any, parentKey string) {
	switch node := v.(type) {
	case []any:
		for _, item := range node {
			c.walk(item, parentKey)
		}
	case map[string]any:
		keys := make([]string, 0, len(node))
		for key := range node {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			value := node[key]
			switch key {
			case "@type":
				c.addType(value)
			case "author", "creator":
				c.res.HasAuthor = true
				if parentKey == "image" && key == "author" {
					c.res.HasImageCitation = true
				}
			case "dateModified":
				if s, ok := value.(string); ok && c.res.DateModified == "" {
					c.res.DateModified = s
				}
			}
			if _, ok := entityRelationKeys[key]; ok {
				c.res.HasEntityRelations = true
			}
			c.walk(value, key)
		}
	}
}

func (c *collector) addType(v any) {
	switch t := v.(type) {
	case string:
		c.add(t)
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok {
				c.add(s)
			}
		}
	}
}
