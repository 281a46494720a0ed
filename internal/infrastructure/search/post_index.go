package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/go-ddd-postboard/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

// PostIndex keeps posts searchable by title and content.
type PostIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewPostIndex(es *elasticsearch.Client, index string) *PostIndex {
	return &PostIndex{es: es, index: index}
}

type postDoc struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	AuthorID  string    `json:"author_id"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
}

// EnsureIndex creates the index with its mapping when it does not exist yet.
func (x *PostIndex) EnsureIndex(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := esapi.IndicesExistsRequest{Index: []string{x.index}}.Do(c, x.es)
	if err != nil {
		return err
	}
	_ = res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	mapping := `{"mappings":{"properties":{
		"id":{"type":"keyword"},
		"title":{"type":"text"},
		"content":{"type":"text"},
		"author_id":{"type":"keyword"},
		"published":{"type":"boolean"},
		"created_at":{"type":"date"}
	}}}`
	res, err = esapi.IndicesCreateRequest{Index: x.index, Body: strings.NewReader(mapping)}.Do(c, x.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("create index %s: %s", x.index, res.Status())
	}
	return nil
}

func (x *PostIndex) Index(ctx context.Context, p entity.Post) error {
	b, err := json.Marshal(postDoc{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		AuthorID:  p.AuthorID,
		Published: p.Published,
		CreatedAt: p.CreatedAt,
	})
	if err != nil {
		return err
	}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req := esapi.IndexRequest{Index: x.index, DocumentID: p.ID, Body: bytes.NewReader(b), Refresh: "false"}
	res, err := req.Do(c, x.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("index post %s: %s", p.ID, res.Status())
	}
	return nil
}

// Remove deletes the documents of ids with one delete-by-query request.
func (x *PostIndex) Remove(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	b, err := json.Marshal(map[string]any{
		"query": map[string]any{"ids": map[string]any{"values": ids}},
	})
	if err != nil {
		return err
	}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.es.DeleteByQuery([]string{x.index}, bytes.NewReader(b), x.es.DeleteByQuery.WithContext(c))
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("remove posts: %s", res.Status())
	}
	return nil
}

// Search performs a multi_match query on title and content.
func (x *PostIndex) Search(ctx context.Context, q string, size int) ([]entity.PostHit, error) {
	b, err := json.Marshal(map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"title^2", "content"},
			},
		},
		"size": size,
	})
	if err != nil {
		return nil, err
	}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.es.Search(x.es.Search.WithContext(c), x.es.Search.WithIndex(x.index), x.es.Search.WithBody(bytes.NewReader(b)))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.StatusCode == 404 {
		return []entity.PostHit{}, nil
	}
	if res.IsError() {
		return nil, fmt.Errorf("search posts: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string  `json:"_id"`
				Score  float64 `json:"_score"`
				Source postDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]entity.PostHit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, entity.PostHit{
			ID:        h.ID,
			Title:     h.Source.Title,
			Content:   h.Source.Content,
			AuthorID:  h.Source.AuthorID,
			Published: h.Source.Published,
			CreatedAt: h.Source.CreatedAt,
			Score:     h.Score,
		})
	}
	return out, nil
}
