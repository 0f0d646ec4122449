package schema_test

import (
	"testing"

	"github.com/ai-mapper/backend/document"
	"github.com/ai-mapper/backend/schema"
	"github.com/stretchr/testify/assert"
)

func collect(markup string) schema.Result {
	return schema.Collect(document.Parse(markup))
}

func TestCollect_JSONLD(t *testing.T) {
	t.Parallel()

	res := collect(`<script type="application/ld+json">
{"@context":"https://schema.org","@graph":[
  {"@type":"NewsArticle","dateModified":"2026-09-01","author":{"@type":"Person","name":"Ann","sameAs":"https://x.com/ann"},
   "image":{"@type":"ImageObject","author":"Bob"}},
  {"@type":["BreadcrumbList","Thing"]}
]}
</script>
<script type="application/ld+json">{"@type":"NewsArticle"}</script>`)

	assert.Equal(t, []string{"NewsArticle", "Person", "ImageObject", "BreadcrumbList", "Thing"}, res.Types)
	assert.True(t, res.HasArticle)
	assert.True(t, res.HasBreadcrumb)
	assert.True(t, res.HasAuthor)
	assert.True(t, res.HasEntityRelations)
	assert.True(t, res.HasImageCitation)
	assert.False(t, res.HasFAQ)
	assert.Equal(t, "2026-09-01", res.DateModified)
}

func TestCollect_MalformedBlockIsSkipped(t *testing.T) {
	t.Parallel()

	res := collect(`<script type="application/ld+json">{not json</script>
<script type="application/ld+json">{"@type":"FAQPage"}</script>`)

	assert.Equal(t, []string{"FAQPage"}, res.Types)
	assert.True(t, res.HasFAQ)
	assert.True(t, res.HasArticle)
}

func TestCollect_Microdata(t *testing.T) {
	t.Parallel()

	res := collect(`<div itemscope itemtype="https://schema.org/Product">
<span itemprop="author">Ann</span>
</div>
<nav aria-label="Breadcrumb"><a href="/">Home</a></nav>
<figure><img src="a.png"><figcaption>Photo: Bob</figcaption></figure>`)

	assert.Equal(t, []string{"Product"}, res.Types)
	assert.False(t, res.HasArticle)
	assert.True(t, res.HasAuthor)
	assert.True(t, res.HasBreadcrumb)
	assert.True(t, res.HasImageCitation)
}

func TestCollect_Empty(t *testing.T) {
	t.Parallel()

	res := collect("")

	assert.Empty(t, res.Types)
	assert.Equal(t, schema.Result{}, res)
}
