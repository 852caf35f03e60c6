package transform

import (
	"testing"
	"time"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmsport/cmsport/internal/convert"
	"github.com/cmsport/cmsport/internal/source"
	"github.com/cmsport/cmsport/internal/state"
)

func attrs(pairs ...interface{}) *orderedmap.OrderedMap[string, *convert.TargetField] {
	m := orderedmap.NewOrderedMap[string, *convert.TargetField]()
	for i := 0; i < len(pairs); i += 2 {
		m.Set(pairs[i].(string), pairs[i+1].(*convert.TargetField))
	}
	return m
}

func articleCatalog() *convert.Catalog {
	keywordKey := convert.ComponentKey("keywords")
	return &convert.Catalog{
		Schemas: map[string]*convert.TargetSchema{
			"article": {
				Kind:         "collectionType",
				SingularName: "article",
				PluralName:   "articles",
				Attributes: attrs(
					"title", &convert.TargetField{Kind: convert.KindPrimitive, Type: "string"},
					"slug", &convert.TargetField{Kind: convert.KindUID, TargetField: "title"},
					"author", &convert.TargetField{Kind: convert.KindRelation, Relation: "manyToOne", Target: "author"},
					"tags", &convert.TargetField{Kind: convert.KindRelation, Relation: "manyToMany", Target: "tag"},
					"cover", &convert.TargetField{Kind: convert.KindMedia},
					"body", &convert.TargetField{Kind: convert.KindRichText},
					"keywords", &convert.TargetField{Kind: convert.KindComponent, Component: keywordKey, Repeatable: true},
				),
			},
		},
		Components: map[string]*convert.ComponentSchema{
			keywordKey: {
				Category: "keywords",
				Name:     "keyword",
				Attributes: attrs(
					"value", &convert.TargetField{Kind: convert.KindPrimitive, Type: "string"},
				),
			},
		},
		TypeOrder: []string{"article"},
	}
}

func TestTransformDocument(t *testing.T) {
	st := state.New()
	st.MapAsset("image-abc", 5)

	tr := New(articleCatalog(), st, nil)

	doc := source.Document{
		ID:   "a1",
		Type: "article",
		Fields: map[string]interface{}{
			"_id":    "a1",
			"_type":  "article",
			"title":  "Hello",
			"slug":   map[string]interface{}{"_type": "slug", "current": "hello"},
			"author": map[string]interface{}{"_ref": "u1"},
			"tags": []interface{}{
				map[string]interface{}{"_ref": "t1"},
				map[string]interface{}{"_ref": "t2"},
			},
			"cover": map[string]interface{}{"asset": map[string]interface{}{"_ref": "image-abc"}},
			"body": []interface{}{
				block("h2", []interface{}{span("Intro")}, nil),
			},
			"keywords": []interface{}{"go", "cms"},
		},
	}

	payload, err := tr.Transform(doc)
	require.NoError(t, err)

	assert.Equal(t, "Hello", payload["title"])
	assert.Equal(t, "hello", payload["slug"])
	assert.Equal(t, 5, payload["cover"])

	body := payload["body"].([]map[string]interface{})
	require.Len(t, body, 1)
	assert.Equal(t, "heading", body[0]["type"])

	keywords := payload["keywords"].([]map[string]interface{})
	require.Len(t, keywords, 2)
	assert.Equal(t, "go", keywords[0]["value"])

	// Relation fields never enter the payload; they are deferred.
	_, hasAuthor := payload["author"]
	assert.False(t, hasAuthor)
	_, hasTags := payload["tags"]
	assert.False(t, hasTags)

	pending := st.TakePending()
	require.Len(t, pending, 3)

	assert.Equal(t, "author", pending[0].FieldName)
	assert.Equal(t, "u1", pending[0].TargetSourceID)
	assert.False(t, pending[0].IsArray)

	assert.Equal(t, "tags", pending[1].FieldName)
	assert.Equal(t, "t1", pending[1].TargetSourceID)
	assert.True(t, pending[1].IsArray)
	assert.Equal(t, "t2", pending[2].TargetSourceID)
}

func TestTransformMissingSchema(t *testing.T) {
	tr := New(articleCatalog(), state.New(), nil)

	_, err := tr.Transform(source.Document{ID: "x1", Type: "unknown"})
	require.Error(t, err)
	_, ok := err.(*ErrSchemaMissing)
	assert.True(t, ok, "expected *ErrSchemaMissing, got %T", err)
}

func TestTransformDropsUnknownFields(t *testing.T) {
	tr := New(articleCatalog(), state.New(), nil)

	payload, err := tr.Transform(source.Document{
		ID:   "a1",
		Type: "article",
		Fields: map[string]interface{}{
			"title":    "Hello",
			"legacyId": 123,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Hello", payload["title"])
	_, hasLegacy := payload["legacyId"]
	assert.False(t, hasLegacy, "fields absent from the schema are dropped")
}

func TestTransformUnresolvedMediaOmitted(t *testing.T) {
	tr := New(articleCatalog(), state.New(), nil)

	payload, err := tr.Transform(source.Document{
		ID:   "a1",
		Type: "article",
		Fields: map[string]interface{}{
			"cover": map[string]interface{}{"asset": map[string]interface{}{"_ref": "never-migrated"}},
		},
	})
	require.NoError(t, err)

	_, hasCover := payload["cover"]
	assert.False(t, hasCover, "unresolved media resolves to omission, not an error")
}

func TestStampPublishedPriority(t *testing.T) {
	fixed := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)

	newTransformer := func() *Transformer {
		tr := New(articleCatalog(), state.New(), nil)
		tr.now = func() time.Time { return fixed }
		return tr
	}

	// Source publish timestamp wins.
	payload, err := newTransformer().Transform(source.Document{
		ID:   "a1",
		Type: "article",
		Fields: map[string]interface{}{
			"publishedAt": "2024-05-01T10:00:00Z",
			"_createdAt":  "2023-01-01T00:00:00Z",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01T10:00:00Z", payload["publishedAt"])

	// Creation timestamp is the fallback.
	payload, err = newTransformer().Transform(source.Document{
		ID:   "a1",
		Type: "article",
		Fields: map[string]interface{}{
			"_createdAt": "2023-01-01T00:00:00Z",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "2023-01-01T00:00:00Z", payload["publishedAt"])

	// With neither, the clock stamps the payload.
	payload, err = newTransformer().Transform(source.Document{
		ID:     "a1",
		Type:   "article",
		Fields: map[string]interface{}{},
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-02-03T04:05:06Z", payload["publishedAt"])
}

func TestResolveMediaSingleFieldTakesFirst(t *testing.T) {
	st := state.New()
	st.MapAsset("img-1", 10)
	st.MapAsset("img-2", 20)

	tr := New(articleCatalog(), st, nil)

	resolved := tr.resolveMedia("article", "cover", []interface{}{
		map[string]interface{}{"asset": map[string]interface{}{"_ref": "img-1"}},
		map[string]interface{}{"asset": map[string]interface{}{"_ref": "img-2"}},
	}, false)

	assert.Equal(t, 10, resolved)
}

func TestResolveMediaMultiple(t *testing.T) {
	st := state.New()
	st.MapAsset("img-1", 10)
	st.MapAsset("img-2", 20)

	tr := New(articleCatalog(), st, nil)

	resolved := tr.resolveMedia("article", "gallery", []interface{}{
		map[string]interface{}{"asset": map[string]interface{}{"_ref": "img-1"}},
		map[string]interface{}{"asset": map[string]interface{}{"_ref": "missing"}},
		map[string]interface{}{"asset": map[string]interface{}{"_ref": "img-2"}},
	}, true)

	assert.Equal(t, []int{10, 20}, resolved)
}
