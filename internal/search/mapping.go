package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve mapping for book documents.
// Title is stored with term vectors for highlighting; page text and captions
// are searchable but not stored.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	doc := bleve.NewDocumentMapping()

	title := bleve.NewTextFieldMapping()
	title.Analyzer = en.AnalyzerName
	title.Store = true
	title.IncludeTermVectors = true
	doc.AddFieldMappingsAt("title", title)

	text := bleve.NewTextFieldMapping()
	text.Analyzer = en.AnalyzerName
	text.Store = false
	text.IncludeTermVectors = true
	doc.AddFieldMappingsAt("text", text)

	captions := bleve.NewTextFieldMapping()
	captions.Analyzer = en.AnalyzerName
	captions.Store = false
	doc.AddFieldMappingsAt("captions", captions)

	id := bleve.NewTextFieldMapping()
	id.Analyzer = keyword.Name
	doc.AddFieldMappingsAt("id", id)

	pageCount := bleve.NewNumericFieldMapping()
	pageCount.Store = true
	doc.AddFieldMappingsAt("page_count", pageCount)

	createdAt := bleve.NewNumericFieldMapping()
	createdAt.Store = true
	doc.AddFieldMappingsAt("created_at", createdAt)

	hasCover := bleve.NewBooleanFieldMapping()
	hasCover.Store = true
	doc.AddFieldMappingsAt("has_cover", hasCover)

	indexMapping.AddDocumentMapping("_default", doc)
	return indexMapping
}
