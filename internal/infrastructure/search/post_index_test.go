package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-postboard/internal/domain/entity"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
}

// fakeES answers like an Elasticsearch node and records every request.
func fakeES(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*elasticsearch.Client, *[]recordedRequest) {
	t.Helper()
	var (
		mu   sync.Mutex
		reqs []recordedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, recordedRequest{Method: r.Method, Path: r.URL.Path, Body: string(b)})
		mu.Unlock()
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return es, &reqs
}

func TestPostIndex_Index(t *testing.T) {
	es, reqs := fakeES(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})
	x := NewPostIndex(es, "posts")

	err := x.Index(context.Background(), entity.Post{ID: "p1", Title: "hello", AuthorID: "u1", CreatedAt: time.Now()})
	require.NoError(t, err)

	require.Len(t, *reqs, 1)
	got := (*reqs)[0]
	assert.Equal(t, http.MethodPut, got.Method)
	assert.Equal(t, "/posts/_doc/p1", got.Path)
	assert.Contains(t, got.Body, `"title":"hello"`)
}

func TestPostIndex_Remove(t *testing.T) {
	es, reqs := fakeES(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"deleted":2}`))
	})
	x := NewPostIndex(es, "posts")

	require.NoError(t, x.Remove(context.Background()))
	assert.Empty(t, *reqs)

	require.NoError(t, x.Remove(context.Background(), "p1", "p2"))
	require.Len(t, *reqs, 1)
	assert.Equal(t, "/posts/_delete_by_query", (*reqs)[0].Path)

	var body map[string]map[string]map[string][]string
	require.NoError(t, json.Unmarshal([]byte((*reqs)[0].Body), &body))
	assert.Equal(t, []string{"p1", "p2"}, body["query"]["ids"]["values"])
}

func TestPostIndex_Search(t *testing.T) {
	es, reqs := fakeES(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hits":{"hits":[
			{"_id":"p1","_score":1.5,"_source":{"id":"p1","title":"golang tips","author_id":"u1","published":true}}
		]}}`))
	})
	x := NewPostIndex(es, "posts")

	hits, err := x.Search(context.Background(), "golang", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "p1", hits[0].ID)
	assert.Equal(t, "golang tips", hits[0].Title)
	assert.Equal(t, 1.5, hits[0].Score)
	assert.True(t, hits[0].Published)

	require.Len(t, *reqs, 1)
	assert.True(t, strings.HasSuffix((*reqs)[0].Path, "/posts/_search"))
	assert.Contains(t, (*reqs)[0].Body, `"multi_match"`)
}

func TestPostIndex_SearchMissingIndex(t *testing.T) {
	es, _ := fakeES(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"type":"index_not_found_exception"}}`))
	})
	x := NewPostIndex(es, "posts")

	hits, err := x.Search(context.Background(), "golang", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}
