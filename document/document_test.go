package document_test

import (
	"testing"

	"github.com/ai-mapper/backend/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("empty input yields an empty body", func(t *testing.T) {
		t.Parallel()

		doc := document.Parse("")

		assert.Equal(t, "", doc.Title())
		assert.Equal(t, "", doc.BodyText())
		assert.Empty(t, doc.Headings())
		assert.Empty(t, doc.Links())
	})

	t.Run("malformed markup is recovered", func(t *testing.T) {
		t.Parallel()

		doc := document.Parse(`<div><p>Unclosed <b>bold<p>Second <a href="/x" bad=>link`)

		paragraphs := doc.Paragraphs()
		require.Len(t, paragraphs, 2)
		assert.Equal(t, "Unclosed bold", paragraphs[0])
		require.Len(t, doc.Links(), 1)
		assert.Equal(t, "/x", doc.Links()[0].Href)
	})
}

func TestDocument_Head(t *testing.T) {
	t.Parallel()

	doc := document.Parse(`<html><head>
<title>  Widgets | Acme  </title>
<meta name="Description" content="All about widgets.">
<meta property="og:site_name" content="Acme">
<link rel="alternate canonical" href="https://acme.com/widgets">
</head><body></body></html>`)

	assert.Equal(t, "Widgets | Acme", doc.Title())

	desc, ok := doc.MetaContent("description")
	assert.True(t, ok)
	assert.Equal(t, "All about widgets.", desc)

	site, ok := doc.MetaProperty("og:site_name")
	assert.True(t, ok)
	assert.Equal(t, "Acme", site)

	_, ok = doc.MetaContent("keywords")
	assert.False(t, ok)

	canonical, ok := doc.LinkHref("canonical")
	assert.True(t, ok)
	assert.Equal(t, "https://acme.com/widgets", canonical)
}

func TestDocument_Body(t *testing.T) {
	t.Parallel()

	doc := document.Parse(`<body>
<h1>Title</h1>
<p>Intro <script>var x = 1;</script>text.</p>
<h3> Deep </h3>
<style>p { color: red }</style>
<img src="a.png" alt="A"><img src="b.png">
<a href="/one" rel="tag">One link</a>
<div itemscope itemtype="https://schema.org/Article https://schema.org/Thing"></div>
<script type="application/ld+json">{"@type":"FAQPage"}</script>
<script type="text/javascript">ignored()</script>
<nav aria-label="Breadcrumb"></nav>
</body>`)

	assert.Equal(t, []document.Heading{{Level: 1, Text: "Title"}, {Level: 3, Text: "Deep"}}, doc.Headings())
	assert.Equal(t, []string{"Intro text."}, doc.Paragraphs())
	assert.NotContains(t, doc.BodyText(), "var x")
	assert.NotContains(t, doc.BodyText(), "color: red")
	assert.NotContains(t, doc.BodyText(), "FAQPage")

	images := doc.Images()
	require.Len(t, images, 2)
	assert.Equal(t, "A", images[0].Alt)
	assert.Equal(t, "", images[1].Alt)

	links := doc.Links()
	require.Len(t, links, 1)
	assert.Equal(t, document.Link{Href: "/one", Text: "One link", Rel: "tag"}, links[0])

	assert.Equal(t, []string{`{"@type":"FAQPage"}`}, doc.JSONLD())
	assert.Equal(t, []string{"https://schema.org/Article", "https://schema.org/Thing"}, doc.MicrodataTypes())

	assert.Equal(t, 2, doc.Count("img"))
	assert.True(t, doc.Exists("nav"))
	assert.False(t, doc.Exists("table"))
	assert.True(t, doc.AttrEquals("aria-label", "breadcrumb"))
	assert.False(t, doc.AttrEquals("aria-label", "menu"))
}
