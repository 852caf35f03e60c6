package inference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmsport/cmsport/internal/schema"
)

func TestInferManyToMany(t *testing.T) {
	edges := []Edge{
		{SourceType: "article", FieldName: "tags", TargetType: "tag", IsArray: true},
		{SourceType: "tag", FieldName: "articles", TargetType: "article", IsArray: true},
	}

	result := Infer(edges, nil)
	require.Len(t, result.Records, 1)

	rec := result.Records[PairKey("article", "tag")]
	require.NotNil(t, rec)
	assert.Equal(t, ManyToMany, rec.Cardinality)
	assert.Equal(t, "article", rec.SchemaA, "first edge fixes schemaA")

	owning := result.Relation("article", "tags")
	require.NotNil(t, owning)
	assert.Equal(t, ManyToMany, owning.Kind)
	assert.Equal(t, "tag", owning.Target)
	assert.Equal(t, "articles", owning.InversedBy)
	assert.Empty(t, owning.MappedBy)

	inverse := result.Relation("tag", "articles")
	require.NotNil(t, inverse)
	assert.Equal(t, ManyToMany, inverse.Kind)
	assert.Equal(t, "tags", inverse.MappedBy)
	assert.Empty(t, inverse.InversedBy)
}

func TestInferOneToManyArraySide(t *testing.T) {
	// author.posts is an array, article.author is single: author is the
	// "many" holder, article the "one" side.
	edges := []Edge{
		{SourceType: "author", FieldName: "posts", TargetType: "article", IsArray: true},
		{SourceType: "article", FieldName: "author", TargetType: "author", IsArray: false},
	}

	result := Infer(edges, nil)

	rec := result.Records[PairKey("author", "article")]
	require.NotNil(t, rec)
	assert.Equal(t, OneToMany, rec.Cardinality)

	many := result.Relation("author", "posts")
	require.NotNil(t, many)
	assert.Equal(t, OneToMany, many.Kind)
	assert.True(t, many.IsArray)
	assert.Equal(t, "author", many.MappedBy)

	one := result.Relation("article", "author")
	require.NotNil(t, one)
	assert.Equal(t, ManyToOne, one.Kind)
	assert.False(t, one.IsArray)
	assert.Equal(t, "posts", one.InversedBy)
}

func TestInferOneToManySingleSideFirst(t *testing.T) {
	// Same pair, discovered from the single side first: the pair label does
	// not depend on discovery order.
	edges := []Edge{
		{SourceType: "article", FieldName: "author", TargetType: "author", IsArray: false},
		{SourceType: "author", FieldName: "posts", TargetType: "article", IsArray: true},
	}

	result := Infer(edges, nil)

	rec := result.Records[PairKey("author", "article")]
	require.NotNil(t, rec)
	assert.Equal(t, "article", rec.SchemaA)
	assert.Equal(t, OneToMany, rec.Cardinality)

	// The per-field classification is identical either way.
	assert.Equal(t, OneToMany, result.Relation("author", "posts").Kind)
	assert.Equal(t, ManyToOne, result.Relation("article", "author").Kind)
}

func TestInferOneToOne(t *testing.T) {
	edges := []Edge{
		{SourceType: "author", FieldName: "profile", TargetType: "profile", IsArray: false},
		{SourceType: "profile", FieldName: "owner", TargetType: "author", IsArray: false},
	}

	result := Infer(edges, nil)

	rec := result.Records[PairKey("author", "profile")]
	require.NotNil(t, rec)
	assert.Equal(t, OneToOne, rec.Cardinality)

	owning := result.Relation("author", "profile")
	require.NotNil(t, owning)
	assert.Equal(t, OneToOne, owning.Kind)
	assert.Equal(t, "owner", owning.InversedBy)

	inverse := result.Relation("profile", "owner")
	require.NotNil(t, inverse)
	assert.Equal(t, OneToOne, inverse.Kind)
	assert.Equal(t, "profile", inverse.MappedBy)
}

func TestInferUnidirectional(t *testing.T) {
	edges := []Edge{
		{SourceType: "article", FieldName: "category", TargetType: "category", IsArray: false},
		{SourceType: "article", FieldName: "related", TargetType: "page", IsArray: true},
	}

	result := Infer(edges, nil)

	single := result.Relation("article", "category")
	require.NotNil(t, single)
	assert.Equal(t, OneToOne, single.Kind)
	assert.Empty(t, single.MappedBy)
	assert.Empty(t, single.InversedBy)

	array := result.Relation("article", "related")
	require.NotNil(t, array)
	assert.Equal(t, OneToMany, array.Kind)
	assert.True(t, array.IsArray)
	assert.Empty(t, array.MappedBy)
	assert.Empty(t, array.InversedBy)
}

func TestInferNoEdges(t *testing.T) {
	result := Infer(nil, nil)
	assert.Empty(t, result.Records)
	assert.Nil(t, result.Relation("article", "anything"))
}

func TestCollectEdges(t *testing.T) {
	decls := []schema.TypeDecl{
		{
			Name: "article",
			Kind: schema.KindDocument,
			Fields: []schema.FieldDecl{
				{Name: "author", Type: "reference", To: []string{"author"}},
				{Name: "tags", Type: "array", Of: []schema.ItemDecl{{Type: "reference", To: []string{"tag"}}}},
				{Name: "gallery", Type: "array", Of: []schema.ItemDecl{{Type: "image"}}},
				{Name: "broken", Type: "reference", Opaque: true},
				{Name: "title", Type: "string"},
			},
		},
		{
			Name: "seo",
			Kind: schema.KindObject,
			Fields: []schema.FieldDecl{
				{Name: "canonical", Type: "reference", To: []string{"article"}},
			},
		},
	}

	edges := CollectEdges(decls)
	require.Len(t, edges, 2)

	assert.Equal(t, Edge{SourceType: "article", FieldName: "author", TargetType: "author", IsArray: false}, edges[0])
	assert.Equal(t, Edge{SourceType: "article", FieldName: "tags", TargetType: "tag", IsArray: true}, edges[1])
}
