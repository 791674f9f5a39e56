/*
handlers.go - HTTP handlers for the contract generator

PURPOSE:
  Exposes contract generation via an HTML form and a small JSON API.
  Handles HTTP request/response and delegates to contract.Service.

ENDPOINTS:
  Form:
    GET    /                             Contract form with the active tariffs
    POST   /                             Generate and download the .docx

  Schedule:
    GET    /api/tariffs                  Active catalog
    POST   /api/schedule                 Preview entries and context (no document)

  Catalogs (require a store):
    GET    /api/catalogs                 List stored catalogs
    GET    /api/catalogs/{name}          Catalog with its JSON config
    PUT    /api/catalogs/{name}          Create or replace a catalog
    DELETE /api/catalogs/{name}          Delete an inactive catalog
    POST   /api/catalogs/{name}/activate Make a catalog live

ERROR HANDLING:
  Every classified error keeps its own field-specific message:
  - 400: Missing field, bad date, unknown tariff, capacity, invalid catalog
  - 404: Catalog not found
  - 409: Deleting the active catalog
  - 501: Catalog endpoints without a store
  - 503: Contract template unavailable
  - 500: Anything else, with a generic message

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go:      Request/response data structures
  - form.go:     HTML form template
  - server.go:   Router setup and middleware
  - reloader.go: Periodic catalog reload
*/
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/warp/contract-engine/contract"
	"github.com/warp/contract-engine/document"
	"github.com/warp/contract-engine/factory"
	"github.com/warp/contract-engine/schedule"
	"github.com/warp/contract-engine/store/sqlite"
)

// GenerationIDHeader carries the ID logged for each generated document.
const GenerationIDHeader = "X-Generation-ID"

const genericErrorMessage = "internal error, please try again later"

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service        *contract.Service
	Store          *sqlite.Store // optional; catalog endpoints answer 501 without it
	CatalogFactory *factory.CatalogFactory
}

// NewHandler creates a new handler. store may be nil.
func NewHandler(svc *contract.Service, store *sqlite.Store) *Handler {
	return &Handler{
		Service:        svc,
		Store:          store,
		CatalogFactory: factory.NewCatalogFactory(),
	}
}

// =============================================================================
// FORM HANDLERS
// =============================================================================

// ShowForm renders the contract form.
// GET /
func (h *Handler) ShowForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, http.StatusOK, contract.Input{}, "")
}

// SubmitForm generates the contract and returns it as an attachment.
// On failure the form is shown again with the entered values and the error.
// POST /
func (h *Handler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderForm(w, http.StatusBadRequest, contract.Input{}, "не удалось прочитать форму")
		return
	}
	in := inputFromForm(r)

	var buf bytes.Buffer
	res, err := h.Service.Generate(in, &buf)
	if err != nil {
		log.Printf("[Generate] Failed (%s): %v", schedule.Code(err), err)
		h.renderForm(w, statusFor(err), in, formMessage(err))
		return
	}

	genID := uuid.New().String()
	log.Printf("[Generate] %s contract=%s tariff=%d installments=%d size=%d",
		genID, res.Input.ContractNumber, res.Selector, res.Terms.Installments, buf.Len())

	w.Header().Set("Content-Type", document.MIMEType)
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": res.FileName()}))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set(GenerationIDHeader, genID)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("[Generate] %s write failed: %v", genID, err)
	}
}

func (h *Handler) renderForm(w http.ResponseWriter, status int, in contract.Input, message string) {
	page := formPage{Input: in, Error: message}
	if c := h.Service.Catalog(); c != nil {
		page.Catalog = c.Name()
		page.Tariffs = tariffDTOs(c)
	}

	var buf bytes.Buffer
	if err := formTemplate.Execute(&buf, page); err != nil {
		log.Printf("[Form] Render failed: %v", err)
		http.Error(w, genericErrorMessage, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func inputFromForm(r *http.Request) contract.Input {
	return contract.Input{
		ContractNumber: r.PostFormValue(contract.FieldContractNumber),
		ContractDate:   r.PostFormValue(contract.FieldContractDate),
		FullName:       r.PostFormValue(contract.FieldFullName),
		BirthDate:      r.PostFormValue(contract.FieldBirthDate),
		Passport:       r.PostFormValue(contract.FieldPassport),
		Tariff:         r.PostFormValue(contract.FieldTariff),
		Address:        r.PostFormValue(contract.FieldAddress),
		Phone:          r.PostFormValue(contract.FieldPhone),
	}
}

// =============================================================================
// SCHEDULE HANDLERS
// =============================================================================

// ListTariffs returns the active catalog.
// GET /api/tariffs
func (h *Handler) ListTariffs(w http.ResponseWriter, r *http.Request) {
	c := h.Service.Catalog()
	if c == nil {
		writeError(w, http.StatusServiceUnavailable, "No tariff catalog loaded", nil)
		return
	}
	writeJSON(w, http.StatusOK, TariffListDTO{
		Catalog:   c.Name(),
		DayPolicy: string(h.Service.Generator.Policy().Day),
		Tariffs:   tariffDTOs(c),
	})
}

// PreviewSchedule derives the schedule and template context for an input.
// POST /api/schedule
func (h *Handler) PreviewSchedule(w http.ResponseWriter, r *http.Request) {
	var in contract.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON", err)
		return
	}

	res, err := h.Service.Preview(in)
	if err != nil {
		writeClassifiedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toScheduleDTO(h.Service.Catalog().Name(), res))
}

// =============================================================================
// CATALOG HANDLERS
// =============================================================================

// ListCatalogs returns all stored catalogs.
// GET /api/catalogs
func (h *Handler) ListCatalogs(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w) {
		return
	}
	ctx := r.Context()

	records, err := h.Store.ListCatalogs(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list catalogs", err)
		return
	}
	active, err := h.Store.ActiveCatalog(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read active catalog", err)
		return
	}

	dtos := make([]CatalogDTO, len(records))
	for i, rec := range records {
		dtos[i] = toCatalogDTO(rec, active, false)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCatalog returns a stored catalog with its config.
// GET /api/catalogs/{name}
func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w) {
		return
	}
	ctx := r.Context()
	name := chi.URLParam(r, "name")

	rec, err := h.Store.GetCatalog(ctx, name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get catalog", err)
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "Catalog not found", nil)
		return
	}
	active, err := h.Store.ActiveCatalog(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read active catalog", err)
		return
	}
	writeJSON(w, http.StatusOK, toCatalogDTO(*rec, active, true))
}

// PutCatalog creates or replaces a catalog. If it is the active catalog,
// the new tariffs take effect immediately.
// PUT /api/catalogs/{name}
func (h *Handler) PutCatalog(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w) {
		return
	}
	ctx := r.Context()
	name := chi.URLParam(r, "name")

	var cj factory.CatalogJSON
	if err := json.NewDecoder(r.Body).Decode(&cj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON", err)
		return
	}
	if cj.Name == "" {
		cj.Name = name
	}
	if cj.Name != name {
		writeError(w, http.StatusBadRequest, "Catalog name does not match URL", nil)
		return
	}

	catalog, err := h.CatalogFactory.FromJSON(cj)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  schedule.Code(err),
		})
		return
	}

	data, err := json.Marshal(cj)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to encode catalog", err)
		return
	}
	rec, err := h.Store.SaveCatalog(ctx, string(data))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save catalog", err)
		return
	}

	active, err := h.Store.ActiveCatalog(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read active catalog", err)
		return
	}
	if active == name {
		if err := h.Service.SetCatalog(catalog); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to apply catalog", err)
			return
		}
		log.Printf("[Catalog] Active catalog %q updated to version %d", name, rec.Version)
	}

	writeJSON(w, http.StatusOK, toCatalogDTO(*rec, active, true))
}

// DeleteCatalog removes a stored catalog.
// DELETE /api/catalogs/{name}
func (h *Handler) DeleteCatalog(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w) {
		return
	}
	name := chi.URLParam(r, "name")

	err := h.Store.DeleteCatalog(r.Context(), name)
	switch {
	case errors.Is(err, contract.ErrCatalogNotFound):
		writeError(w, http.StatusNotFound, "Catalog not found", nil)
	case errors.Is(err, sqlite.ErrCatalogActive):
		writeError(w, http.StatusConflict, "Active catalog cannot be deleted", nil)
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to delete catalog", err)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// ActivateCatalog makes a stored catalog the live one.
// POST /api/catalogs/{name}/activate
func (h *Handler) ActivateCatalog(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w) {
		return
	}
	ctx := r.Context()
	name := chi.URLParam(r, "name")

	if err := h.Store.SetActiveCatalog(ctx, name); err != nil {
		if errors.Is(err, contract.ErrCatalogNotFound) {
			writeError(w, http.StatusNotFound, "Catalog not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to activate catalog", err)
		return
	}
	if err := h.Service.ReloadCatalog(ctx, h.Store, name); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load catalog", err)
		return
	}
	log.Printf("[Catalog] Activated %q", name)

	h.ListTariffs(w, r)
}

func (h *Handler) requireStore(w http.ResponseWriter) bool {
	if h.Store == nil {
		writeError(w, http.StatusNotImplemented, "Catalog store is not configured", nil)
		return false
	}
	return true
}

// =============================================================================
// HELPERS
// =============================================================================

func tariffDTOs(c *schedule.Catalog) []TariffDTO {
	selectors := c.Selectors()
	dtos := make([]TariffDTO, 0, len(selectors))
	for _, sel := range selectors {
		terms, err := c.Resolve(sel)
		if err != nil {
			continue
		}
		dtos = append(dtos, toTariffDTO(sel, terms))
	}
	return dtos
}

// statusFor maps a generation error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, schedule.ErrTemplateUnavailable):
		return http.StatusServiceUnavailable
	case schedule.IsClassified(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// messageFor returns the text shown to the user. Unclassified errors get
// a generic message so internals are not echoed back.
func messageFor(err error) string {
	if schedule.IsClassified(err) {
		return err.Error()
	}
	return genericErrorMessage
}

// fieldFor returns the input field an error refers to, if any.
func fieldFor(err error) string {
	var fErr *schedule.FieldError
	if errors.As(err, &fErr) {
		return fErr.Field
	}
	var dErr *schedule.DateError
	if errors.As(err, &dErr) {
		return dErr.Field
	}
	if errors.Is(err, schedule.ErrInvalidTariff) || errors.Is(err, schedule.ErrCapacityExceeded) {
		return contract.FieldTariff
	}
	return ""
}

func writeClassifiedError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{
		Error: messageFor(err),
		Code:  schedule.Code(err),
		Field: fieldFor(err),
	}
	if !schedule.IsClassified(err) {
		log.Printf("[API] Internal error: %v", err)
		resp.Details = err.Error()
	}
	writeJSON(w, statusFor(err), resp)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
