// Package search keeps a secondary Elasticsearch index of user profiles.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/go-social-api/internal/domain/entity"
	"github.com/oksasatya/go-social-api/internal/domain/repository"
)

const requestTimeout = 3 * time.Second

const usersMapping = `{
  "mappings": {
    "properties": {
      "id":              {"type": "keyword"},
      "name":            {"type": "keyword"},
      "email":           {"type": "keyword"},
      "bio":             {"type": "keyword", "ignore_above": 1024},
      "profile_picture": {"type": "keyword", "index": false},
      "location":        {"type": "keyword"},
      "website":         {"type": "keyword", "index": false},
      "created_at":      {"type": "date"},
      "updated_at":      {"type": "date"}
    }
  }
}`

type UserIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewUserIndex(es *elasticsearch.Client, index string) *UserIndex {
	return &UserIndex{es: es, index: index}
}

type userDoc struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Bio            string    `json:"bio"`
	ProfilePicture string    `json:"profile_picture"`
	Location       string    `json:"location"`
	Website        string    `json:"website"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// EnsureIndex creates the users index with its mapping. An existing index is
// left untouched.
func (x *UserIndex) EnsureIndex(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.es.Indices.Exists([]string{x.index}, x.es.Indices.Exists.WithContext(c))
	if err != nil {
		return err
	}
	_ = res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = x.es.Indices.Create(x.index,
		x.es.Indices.Create.WithContext(c),
		x.es.Indices.Create.WithBody(strings.NewReader(usersMapping)),
	)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && !strings.Contains(res.String(), "resource_already_exists_exception") {
		return fmt.Errorf("create index %s: %s", x.index, res.Status())
	}
	return nil
}

// Index upserts the searchable slice of u. The password hash is never sent.
func (x *UserIndex) Index(ctx context.Context, u *entity.User) error {
	b, err := json.Marshal(userDoc{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Bio:            u.Bio,
		ProfilePicture: u.ProfilePicture,
		Location:       u.Location,
		Website:        u.Website,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	})
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.index, DocumentID: u.ID, Body: bytes.NewReader(b), Refresh: "wait_for"}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("index user %s: %s", u.ID, res.Status())
	}
	return nil
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

func searchBody(query string, limit int) map[string]any {
	pattern := "*" + wildcardEscaper.Replace(query) + "*"
	field := func(name string) map[string]any {
		return map[string]any{"wildcard": map[string]any{
			name: map[string]any{"value": pattern, "case_insensitive": true},
		}}
	}
	return map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"should":               []any{field("name"), field("bio")},
				"minimum_should_match": 1,
			},
		},
		"sort": []any{map[string]any{"created_at": "asc"}, map[string]any{"id": "asc"}},
		"size": limit,
	}
}

// Search matches name or bio as a case-insensitive substring, like the
// primary store does.
func (x *UserIndex) Search(ctx context.Context, query string, limit int) ([]*entity.User, error) {
	b, err := json.Marshal(searchBody(query, limit))
	if err != nil {
		return nil, err
	}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.es.Search(
		x.es.Search.WithContext(c),
		x.es.Search.WithIndex(x.index),
		x.es.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("search %s: %s", x.index, res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source userDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	out := make([]*entity.User, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		d := h.Source
		out = append(out, &entity.User{
			ID:             d.ID,
			Name:           d.Name,
			Email:          d.Email,
			Bio:            d.Bio,
			ProfilePicture: d.ProfilePicture,
			Location:       d.Location,
			Website:        d.Website,
			CreatedAt:      d.CreatedAt,
			UpdatedAt:      d.UpdatedAt,
		})
	}
	return out, nil
}

var _ repository.UserIndex = (*UserIndex)(nil)
