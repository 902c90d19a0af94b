package corpus

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/kailas-cloud/foodrag/internal/domain"
	"github.com/kailas-cloud/foodrag/internal/domain/document"
)

//go:embed data/foods.json
var defaultCorpus []byte

//go:embed data/schema.json
var schemaJSON []byte

const dateLayout = "2006-01-02"

// Store is the immutable in-memory document set, in file order.
type Store struct {
	version string
	updated time.Time
	docs    []document.Document
}

// New builds a store from already validated documents. Duplicate ids are rejected.
func New(version string, updated time.Time, docs []document.Document) (*Store, error) {
	seen := make(map[string]struct{}, len(docs))
	for i := range docs {
		id := docs[i].ID()
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: duplicate document id %q", domain.ErrInvalidCorpus, id)
		}
		seen[id] = struct{}{}
	}
	return &Store{version: version, updated: updated, docs: slices.Clone(docs)}, nil
}

// Default returns the embedded food corpus.
func Default() (*Store, error) {
	s, err := Parse(defaultCorpus)
	if err != nil {
		return nil, fmt.Errorf("embedded corpus: %w", err)
	}
	return s, nil
}

// Load reads a corpus file, or the embedded corpus when path is empty.
func Load(path string) (*Store, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("corpus %s: %w", path, err)
	}
	return s, nil
}

type fileDTO struct {
	Version   string        `json:"version"`
	Updated   string        `json:"updated"`
	Documents []documentDTO `json:"documents"`
}

type documentDTO struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Region string `json:"region"`
	Type   string `json:"type"`
}

// Parse validates data against the corpus schema and builds a Store.
func Parse(data []byte) (*Store, error) {
	if err := validate(data); err != nil {
		return nil, err
	}

	var f fileDTO
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidCorpus, err)
	}

	var updated time.Time
	if f.Updated != "" {
		t, err := time.Parse(dateLayout, f.Updated)
		if err != nil {
			return nil, fmt.Errorf("%w: updated: %w", domain.ErrInvalidCorpus, err)
		}
		updated = t
	}

	docs := make([]document.Document, 0, len(f.Documents))
	for _, d := range f.Documents {
		doc, err := document.New(d.ID, d.Text, d.Region, d.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidCorpus, err)
		}
		docs = append(docs, doc)
	}

	return New(f.Version, updated, docs)
}

func validate(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidCorpus, err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("%w: %s", domain.ErrInvalidCorpus, strings.Join(errs, "; "))
	}
	return nil
}

// Documents returns the documents in store order. The slice is a copy.
func (s *Store) Documents() []document.Document { return slices.Clone(s.docs) }

// Count returns the number of documents.
func (s *Store) Count() int { return len(s.docs) }

// Version returns the corpus version label.
func (s *Store) Version() string { return s.version }

// UpdatedAt returns the corpus date, zero when unknown.
func (s *Store) UpdatedAt() time.Time { return s.updated }
