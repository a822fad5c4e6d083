// Package service provides the in-memory property catalog and search.
package service

import (
	"sort"
	"strings"
	"sync"

	"inmo24x7_backend/internal/catalog/loader"
	"inmo24x7_backend/platform/logger"
)

// DefaultLimit caps how many listings a search returns by default.
const DefaultLimit = 3

// Service holds the catalog, loaded at most once per process and treated as
// immutable afterwards, so concurrent reads need no synchronization.
type Service struct {
	csvPath string
	log     *logger.Logger

	once       sync.Once
	properties []loader.Property
	loadErr    error
}

// New creates a catalog service reading from csvPath on first use.
func New(csvPath string, log *logger.Logger) *Service {
	return &Service{csvPath: csvPath, log: log}
}

// NewWithProperties creates a service over a fixed property list (tests, seeds).
func NewWithProperties(properties []loader.Property, log *logger.Logger) *Service {
	s := &Service{log: log}
	s.once.Do(func() { s.properties = properties })
	return s
}

// Warm forces the one-time load, so startup can surface dataset problems early.
func (s *Service) Warm() error {
	s.load()
	return s.loadErr
}

func (s *Service) load() {
	s.once.Do(func() {
		properties, err := loader.LoadCSV(s.csvPath)
		if err != nil {
			s.loadErr = err
			return
		}
		s.properties = properties
		if s.log != nil {
			s.log.Info("property catalog loaded", "count", len(properties), "path", s.csvPath)
		}
	})
}

// SearchParams filter the catalog.
type SearchParams struct {
	Operacion      string
	Zona           string
	PresupuestoMax float64
	Limit          int
}

// Search filters to available listings matching the operation exactly, the
// zone as a case-insensitive substring, and price at or under the budget.
// Results are sorted by ascending price and truncated to the limit. An empty
// result is a normal outcome, never an error.
func (s *Service) Search(params SearchParams) []loader.Property {
	s.load()

	limit := params.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	zona := strings.ToLower(strings.TrimSpace(params.Zona))

	matches := make([]loader.Property, 0, limit)
	for _, p := range s.properties {
		if !p.Disponible {
			continue
		}
		if p.Operacion != params.Operacion {
			continue
		}
		if zona != "" && !strings.Contains(strings.ToLower(p.Zona), zona) {
			continue
		}
		if params.PresupuestoMax > 0 && p.Precio > params.PresupuestoMax {
			continue
		}
		matches = append(matches, p)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Precio < matches[j].Precio
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// Count returns the number of loaded listings.
func (s *Service) Count() int {
	s.load()
	return len(s.properties)
}
