package contract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/warp/contract-engine/schedule"
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// Binder fills the contract template with a Context.
type Binder interface {
	// Check reports ErrTemplateUnavailable when the template cannot be used.
	Check() error
	// Render writes the filled document to w.
	Render(w io.Writer, ctx Context) error
}

// ErrCatalogNotFound is returned by a CatalogSource for an unknown name.
var ErrCatalogNotFound = errors.New("catalog not found")

// CatalogSource loads named catalogs from configuration storage.
type CatalogSource interface {
	LoadCatalog(ctx context.Context, name string) (*schedule.Catalog, error)
}

// =============================================================================
// SERVICE
// =============================================================================

// Result is everything derived from one Input.
type Result struct {
	Input    Input
	Selector int64
	Terms    schedule.Terms
	Entries  []schedule.Entry
	Context  Context
}

// FileName is the download name of the filled document.
func (r *Result) FileName() string { return r.Input.FileName() }

// Service runs the generation pipeline against the active catalog.
// It is safe for concurrent use; SetCatalog swaps the catalog atomically.
type Service struct {
	Generator *schedule.Generator
	Builder   *Builder
	Binder    Binder

	catalog atomic.Pointer[schedule.Catalog]
}

// NewService creates a service. binder may be nil for preview-only use.
func NewService(catalog *schedule.Catalog, gen *schedule.Generator, binder Binder) *Service {
	s := &Service{
		Generator: gen,
		Builder:   NewBuilder(),
		Binder:    binder,
	}
	s.catalog.Store(catalog)
	return s
}

// Catalog returns the active catalog.
func (s *Service) Catalog() *schedule.Catalog { return s.catalog.Load() }

// SetCatalog replaces the active catalog after validating it.
func (s *Service) SetCatalog(c *schedule.Catalog) error {
	if c == nil {
		return errors.New("catalog is nil")
	}
	if err := c.Validate(); err != nil {
		return err
	}
	s.catalog.Store(c)
	return nil
}

// ReloadCatalog loads name from src and makes it active.
func (s *Service) ReloadCatalog(ctx context.Context, src CatalogSource, name string) error {
	c, err := src.LoadCatalog(ctx, name)
	if err != nil {
		return fmt.Errorf("load catalog %q: %w", name, err)
	}
	return s.SetCatalog(c)
}

// Preview derives the schedule and Context without touching the template.
//
// Order of checks: required fields, tariff, contract date, capacity. A
// failure at any step stops the pipeline with nothing built.
func (s *Service) Preview(in Input) (*Result, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.derive(in)
}

// Generate checks the template, derives the Context and renders the
// document into w. Nothing is written to w on failure before rendering.
func (s *Service) Generate(in Input, w io.Writer) (*Result, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if s.Binder == nil {
		return nil, &schedule.TemplateError{Path: "(not configured)"}
	}
	if err := s.Binder.Check(); err != nil {
		return nil, err
	}

	res, err := s.derive(in)
	if err != nil {
		return nil, err
	}
	if err := s.Binder.Render(w, res.Context); err != nil {
		return nil, fmt.Errorf("render contract: %w", err)
	}
	return res, nil
}

func (s *Service) derive(in Input) (*Result, error) {
	catalog := s.Catalog()
	if catalog == nil {
		return nil, errors.New("no tariff catalog loaded")
	}

	terms, selector, err := catalog.ResolveString(in.Tariff)
	if err != nil {
		return nil, err
	}

	start, err := schedule.ParseDate(in.ContractDate)
	if err != nil {
		return nil, &schedule.DateError{Field: FieldContractDate, Value: in.ContractDate, Err: err}
	}

	if err := s.Builder.CheckCapacity(terms); err != nil {
		return nil, err
	}

	entries, err := s.Generator.Generate(start, terms)
	if err != nil {
		return nil, err
	}

	ctx, err := s.Builder.Build(Identity{
		ContractNumber: in.ContractNumber,
		ContractDate:   start,
		FullName:       in.FullName,
		BirthDate:      in.BirthDate,
		Passport:       in.Passport,
		Address:        in.Address,
		Phone:          in.Phone,
	}, terms, entries)
	if err != nil {
		return nil, err
	}

	return &Result{
		Input:    in,
		Selector: selector,
		Terms:    terms,
		Entries:  entries,
		Context:  ctx,
	}, nil
}
