// Package elastic provides a simplecms.SearchIndex backed by Elasticsearch.
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// Index implements simplecms.SearchIndex on an Elasticsearch index.
//
// Documents are written with refresh disabled; a freshly saved entry may take
// up to the index refresh interval to become searchable. Callers that need
// read-your-writes go through the record store instead.
type Index struct {
	client    *elasticsearch.Client
	indexName string
}

// New creates a search index on the given Elasticsearch client and index name.
func New(client *elasticsearch.Client, indexName string) *Index {
	return &Index{client: client, indexName: indexName}
}

func (i *Index) Index(ctx context.Context, doc simplecms.ContentDocument) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      i.indexName,
		DocumentID: doc.ID.String(),
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("indexing document %s: %w", doc.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("indexing document %s: %s", doc.ID, res.String())
	}
	return nil
}

func (i *Index) Delete(ctx context.Context, id uuid.UUID) error {
	req := esapi.DeleteRequest{
		Index:      i.indexName,
		DocumentID: id.String(),
	}
	res, err := req.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("deleting document %s: %w", id, err)
	}
	defer res.Body.Close()
	// A document that was never indexed is already gone.
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("deleting document %s: %s", id, res.String())
	}
	return nil
}

func (i *Index) Search(ctx context.Context, q simplecms.SearchQuery) ([]simplecms.ContentDocument, error) {
	body, err := json.Marshal(buildQuery(q))
	if err != nil {
		return nil, fmt.Errorf("encoding query: %w", err)
	}

	res, err := i.client.Search(
		i.client.Search.WithContext(ctx),
		i.client.Search.WithIndex(i.indexName),
		i.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("searching: %s", res.String())
	}
	return decodeHits(res.Body)
}

// buildQuery translates a SearchQuery into an Elasticsearch bool query.
// Term filters use keyword sub-fields; the free-text query is a fuzzy
// multi-match over title and rich content.
func buildQuery(q simplecms.SearchQuery) map[string]interface{} {
	var must []map[string]interface{}

	term := func(field string, value interface{}) {
		must = append(must, map[string]interface{}{
			"term": map[string]interface{}{field: value},
		})
	}

	if q.UserID != nil {
		term("user_id.keyword", q.UserID.String())
	}
	if q.Status != nil {
		term("status.keyword", string(*q.Status))
	}
	if q.Tag != "" {
		term("tags.name.keyword", q.Tag)
	}
	if q.Category != "" {
		term("category.name.keyword", q.Category)
	}
	if q.Query != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     q.Query,
				"fields":    []string{"title", "rich_content"},
				"fuzziness": "AUTO",
			},
		})
	}
	if q.FromDate != nil || q.ToDate != nil {
		created := map[string]interface{}{}
		if q.FromDate != nil {
			created["gte"] = q.FromDate
		}
		if q.ToDate != nil {
			created["lte"] = q.ToDate
		}
		must = append(must, map[string]interface{}{
			"range": map[string]interface{}{"created_on": created},
		})
	}

	boolQuery := map[string]interface{}{
		"must_not": map[string]interface{}{
			"term": map[string]interface{}{
				"status.keyword": string(simplecms.ContentStatusDeleted),
			},
		},
	}
	if len(must) > 0 {
		boolQuery["must"] = must
	}

	page, pageSize := q.Page, q.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"sort":  []map[string]interface{}{{"created_on": map[string]interface{}{"order": "desc"}}},
		"from":  (page - 1) * pageSize,
		"size":  pageSize,
	}
}

func decodeHits(body io.Reader) ([]simplecms.ContentDocument, error) {
	var result struct {
		Hits struct {
			Hits []struct {
				Source simplecms.ContentDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	docs := make([]simplecms.ContentDocument, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		docs = append(docs, hit.Source)
	}
	return docs, nil
}
