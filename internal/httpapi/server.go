// Package httpapi exposes the product catalog and the solver over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nutrily/rationer/core"
	"github.com/nutrily/rationer/internal/contract"
	"github.com/nutrily/rationer/schema"
)

// Server handles catalog CRUD and solve requests.
type Server struct {
	cfg   *contract.Config
	store contract.CatalogStore
}

// NewServer creates a server around a validated base config and an open
// catalog store.
func NewServer(cfg *contract.Config, store contract.CatalogStore) *Server {
	return &Server{cfg: cfg, store: store}
}

// ServeMux returns the route table for the API.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/products", s.listProducts)
	mux.HandleFunc("POST /api/products", s.addProduct)
	mux.HandleFunc("PUT /api/products/{name}", s.updateProduct)
	mux.HandleFunc("DELETE /api/products/{name}", s.deleteProduct)
	mux.HandleFunc("POST /api/solve", s.solve)
	return mux
}

// ListenAndServe blocks serving the API until the context is canceled,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.ServeMux(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// productPayload is the wire form of a product. All fields are required;
// kcal is never accepted from the client, it is always derived.
type productPayload struct {
	Name           *string  `json:"name"`
	Protein        *float64 `json:"protein"`
	SatFat         *float64 `json:"sat_fat"`
	UnsatFat       *float64 `json:"unsat_fat"`
	SimpleCarbs    *float64 `json:"simple_carbs"`
	ComplexCarbs   *float64 `json:"complex_carbs"`
	SolubleFiber   *float64 `json:"soluble_fiber"`
	InsolubleFiber *float64 `json:"insoluble_fiber"`
	MaxPortions    *float64 `json:"max_portions"`
	StepGrams      *float64 `json:"step_grams"`
}

// toProduct validates that every field is present and assembles the
// catalog entry with derived calories.
func (p *productPayload) toProduct() (schema.Product, error) {
	required := map[string]bool{
		"name":            p.Name != nil && *p.Name != "",
		"protein":         p.Protein != nil,
		"sat_fat":         p.SatFat != nil,
		"unsat_fat":       p.UnsatFat != nil,
		"simple_carbs":    p.SimpleCarbs != nil,
		"complex_carbs":   p.ComplexCarbs != nil,
		"soluble_fiber":   p.SolubleFiber != nil,
		"insoluble_fiber": p.InsolubleFiber != nil,
		"max_portions":    p.MaxPortions != nil,
		"step_grams":      p.StepGrams != nil,
	}
	for field, ok := range required {
		if !ok {
			return schema.Product{}, fmt.Errorf("missing required field %q", field)
		}
	}
	if *p.StepGrams <= 0 {
		return schema.Product{}, fmt.Errorf("step_grams must be > 0")
	}
	if *p.MaxPortions < 0 {
		return schema.Product{}, fmt.Errorf("max_portions must be >= 0")
	}

	v := schema.Vector{
		schema.Protein:        *p.Protein,
		schema.SaturatedFat:   *p.SatFat,
		schema.UnsaturatedFat: *p.UnsatFat,
		schema.SimpleCarbs:    *p.SimpleCarbs,
		schema.ComplexCarbs:   *p.ComplexCarbs,
		schema.SolubleFiber:   *p.SolubleFiber,
		schema.InsolubleFiber: *p.InsolubleFiber,
	}
	return schema.Product{
		Name:            *p.Name,
		PerHundredGrams: v.WithDerivedCalories(),
		StepGrams:       *p.StepGrams,
		MaxPortions:     *p.MaxPortions,
	}, nil
}

// solveRequest carries the seven entered targets plus optional search
// parameter overrides; zero values fall back to the server config.
type solveRequest struct {
	Protein        *float64 `json:"protein"`
	SatFat         *float64 `json:"sat_fat"`
	UnsatFat       *float64 `json:"unsat_fat"`
	SimpleCarbs    *float64 `json:"simple_carbs"`
	ComplexCarbs   *float64 `json:"complex_carbs"`
	SolubleFiber   *float64 `json:"soluble_fiber"`
	InsolubleFiber *float64 `json:"insoluble_fiber"`

	StartAlpha   int   `json:"start_alpha"`
	RunsPerAlpha int   `json:"runs_per_alpha"`
	Seed         int64 `json:"seed"`
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.store.ListProducts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if products == nil {
		products = []schema.Product{}
	}
	writeResponse(w, http.StatusOK, products)
}

func (s *Server) addProduct(w http.ResponseWriter, r *http.Request) {
	var payload productPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	product, err := payload.toProduct()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.AddProduct(r.Context(), product); err != nil {
		if errors.Is(err, contract.ErrProductExists) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeResponse(w, http.StatusCreated, map[string]string{"status": "created"})
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	var payload productPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	product, err := payload.toProduct()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.UpdateProduct(r.Context(), name, product); err != nil {
		if errors.Is(err, contract.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeResponse(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := s.store.DeleteProduct(r.Context(), name); err != nil {
		if errors.Is(err, contract.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) solve(w http.ResponseWriter, r *http.Request) {
	var req solveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	targets := map[string]*float64{
		"protein":         req.Protein,
		"sat_fat":         req.SatFat,
		"unsat_fat":       req.UnsatFat,
		"simple_carbs":    req.SimpleCarbs,
		"complex_carbs":   req.ComplexCarbs,
		"soluble_fiber":   req.SolubleFiber,
		"insoluble_fiber": req.InsolubleFiber,
	}
	for field, v := range targets {
		if v == nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("missing required field %q", field))
			return
		}
		if *v < 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("field %q must be >= 0", field))
			return
		}
	}

	cfg := s.cfg.Clone()
	cfg.Target = schema.Vector{
		schema.Protein:        *req.Protein,
		schema.SaturatedFat:   *req.SatFat,
		schema.UnsaturatedFat: *req.UnsatFat,
		schema.SimpleCarbs:    *req.SimpleCarbs,
		schema.ComplexCarbs:   *req.ComplexCarbs,
		schema.SolubleFiber:   *req.SolubleFiber,
		schema.InsolubleFiber: *req.InsolubleFiber,
	}.WithDerivedCalories()
	if req.StartAlpha != 0 {
		cfg.StartAlpha = req.StartAlpha
	}
	if req.RunsPerAlpha != 0 {
		cfg.RunsPerAlpha = req.RunsPerAlpha
	}
	if req.Seed != 0 {
		cfg.Seed = req.Seed
	}

	result, err := core.SolveWithCatalog(r.Context(), cfg, s.store)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeResponse(w, http.StatusOK, result)
}

func writeResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeResponse(w, status, map[string]string{"error": msg})
}
