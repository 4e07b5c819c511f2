package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/travel_app/internal/models"
)

// MaxCandidates caps how many hits are pulled from the index before the
// membership filter runs in the database.
const MaxCandidates = 500

type Config struct {
	URL      string
	User     string
	Password string
	Index    string
}

type Elastic struct {
	es    *elasticsearch.Client
	index string
}

func NewClient(ctx context.Context, cfg Config) (*Elastic, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}

	res, err := es.Info(es.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch error %s: %s", res.Status(), body)
	}

	index := cfg.Index
	if index == "" {
		index = "trips"
	}
	return &Elastic{es: es, index: index}, nil
}

type tripDoc struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Destination string `json:"destination"`
	Description string `json:"description,omitempty"`
}

func (e *Elastic) IndexTrip(ctx context.Context, trip *models.Trip) error {
	doc := tripDoc{ID: trip.ID, Title: trip.Title, Destination: trip.Destination}
	if trip.Description != nil {
		doc.Description = *trip.Description
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(doc); err != nil {
		return fmt.Errorf("index trip: %w", err)
	}

	res, err := e.es.Index(e.index, &buf,
		e.es.Index.WithContext(ctx),
		e.es.Index.WithDocumentID(strconv.FormatUint(uint64(trip.ID), 10)),
	)
	if err != nil {
		return fmt.Errorf("index trip: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index trip: %s", res.Status())
	}
	return nil
}

func (e *Elastic) DeleteTrip(ctx context.Context, id uint) error {
	res, err := e.es.Delete(e.index, strconv.FormatUint(uint64(id), 10), e.es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete trip: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete trip: %s", res.Status())
	}
	return nil
}

// SearchTrips returns matching trip ids ordered by relevance.
func (e *Elastic) SearchTrips(ctx context.Context, query string) ([]uint, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"title^2", "destination^2", "description"},
				"fuzziness": "AUTO",
			},
		},
		"_source": []string{"id"},
		"size":    MaxCandidates,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("search trips: %w", err)
	}

	res, err := e.es.Search(
		e.es.Search.WithContext(ctx),
		e.es.Search.WithIndex(e.index),
		e.es.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("search trips: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search trips: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source tripDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("search trips: decode: %w", err)
	}

	ids := make([]uint, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		ids = append(ids, hit.Source.ID)
	}
	return ids, nil
}
