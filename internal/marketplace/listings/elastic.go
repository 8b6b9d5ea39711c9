package listings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"car-mzansi-connect/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// Elastic serves the catalogue from an Elasticsearch index whose documents are
// JSON-encoded models.Listing values keyed by listing ID.
type Elastic struct {
	client *elasticsearch.Client
	index  string
	size   int
}

func NewElastic(client *elasticsearch.Client, index string) *Elastic {
	return &Elastic{client: client, index: index, size: 50}
}

// BuildQuery translates a free-text query and filters into a bool query.
func BuildQuery(query string, filters *Filters) map[string]interface{} {
	var must, filter []interface{}

	if query != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"car.make^3", "car.model^2", "dealership.name"},
				"type":   "phrase_prefix",
			},
		})
	}

	if filters != nil {
		filter = append(filter,
			rangeClause("car.price", filters.PriceRange),
			rangeClause("car.mileage", filters.MileageRange),
			rangeClause("car.year", filters.YearRange),
		)
		if len(filters.Makes) > 0 {
			filter = append(filter, termsClause("car.make.keyword", filters.Makes))
		}
		if len(filters.FuelTypes) > 0 {
			filter = append(filter, termsClause("car.fuelType.keyword", filters.FuelTypes))
		}
		if len(filters.Transmissions) > 0 {
			filter = append(filter, termsClause("car.transmission.keyword", filters.Transmissions))
		}
		if len(filters.Locations) > 0 {
			var should []interface{}
			for _, loc := range filters.Locations {
				should = append(should, map[string]interface{}{
					"match_phrase": map[string]interface{}{"dealership.location": loc},
				})
			}
			filter = append(filter, map[string]interface{}{
				"bool": map[string]interface{}{"should": should, "minimum_should_match": 1},
			})
		}
		if filters.Verified {
			filter = append(filter, map[string]interface{}{
				"term": map[string]interface{}{"dealership.verified": true},
			})
		}
	}

	boolQuery := map[string]interface{}{}
	if len(must) > 0 {
		boolQuery["must"] = must
	}
	if len(filter) > 0 {
		boolQuery["filter"] = filter
	}
	if len(boolQuery) == 0 {
		return map[string]interface{}{"query": map[string]interface{}{"match_all": map[string]interface{}{}}}
	}
	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"sort":  []interface{}{map[string]interface{}{"postedAt": map[string]interface{}{"order": "desc"}}},
	}
}

func rangeClause(field string, r Range) map[string]interface{} {
	return map[string]interface{}{
		"range": map[string]interface{}{field: map[string]interface{}{"gte": r.Min, "lte": r.Max}},
	}
}

func termsClause(field string, values []string) map[string]interface{} {
	return map[string]interface{}{"terms": map[string]interface{}{field: values}}
}

type searchResponse struct {
	Took int64 `json:"took"`
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string         `json:"_id"`
			Source models.Listing `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (e *Elastic) Search(ctx context.Context, query string, filters *Filters) ([]models.Listing, error) {
	if filters != nil {
		if err := filters.Validate(); err != nil {
			return nil, err
		}
	}

	body, err := json.Marshal(BuildQuery(query, filters))
	if err != nil {
		return nil, fmt.Errorf("marshal search body: %w", err)
	}

	size := e.size
	req := esapi.SearchRequest{
		Index: []string{e.index},
		Body:  bytes.NewReader(body),
		Size:  &size,
	}
	res, err := req.Do(ctx, e.client)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", e.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search %s: %s", e.index, res.String())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	out := make([]models.Listing, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		l := hit.Source
		if l.ID == "" {
			l.ID = hit.ID
		}
		out = append(out, l)
	}
	return out, nil
}

func (e *Elastic) Get(ctx context.Context, id string) (models.Listing, error) {
	req := esapi.GetRequest{Index: e.index, DocumentID: id}
	res, err := req.Do(ctx, e.client)
	if err != nil {
		return models.Listing{}, fmt.Errorf("get listing %s: %w", id, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return models.Listing{}, ErrListingNotFound
	}
	if res.IsError() {
		return models.Listing{}, fmt.Errorf("get listing %s: %s", id, res.String())
	}

	var doc struct {
		Found  bool           `json:"found"`
		Source models.Listing `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		return models.Listing{}, fmt.Errorf("decode listing %s: %w", id, err)
	}
	if !doc.Found {
		return models.Listing{}, ErrListingNotFound
	}
	return doc.Source, nil
}

// Index stores or replaces l.
func (e *Elastic) Index(ctx context.Context, l models.Listing) error {
	if l.ID == "" {
		return errors.New("listing id is required")
	}
	body, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("marshal listing %s: %w", l.ID, err)
	}

	req := esapi.IndexRequest{
		Index:      e.index,
		DocumentID: l.ID,
		Body:       bytes.NewReader(body),
		Refresh:    "wait_for",
	}
	res, err := req.Do(ctx, e.client)
	if err != nil {
		return fmt.Errorf("index listing %s: %w", l.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index listing %s: %s", l.ID, res.String())
	}
	return nil
}
