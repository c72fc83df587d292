package catalog

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"ProductCatalog/pkg/kit"
)

const (
	titleInvalidRequest = "Invalid Request"
	titleNotFound       = "Product Not Found"
	titleServerError    = "Internal Server Error"
)

type Server struct {
	Store   *Store
	Engine  *Engine
	Log     *zap.Logger
	Metrics *QueryMetrics
}

// Routes serves the product API; NewHandler mounts it under /api/v1.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/products", s.list)
	r.Get("/products/{id}", s.get)

	return r
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	req, err := parseQueryRequest(r.URL.Query())
	if err != nil {
		s.Metrics.observeQuery(resultInvalid, 0)
		s.writeError(w, r, err)
		return
	}

	page, err := s.Engine.Execute(r.Context(), s.Store.All(), req)
	if err != nil {
		s.Metrics.observeQuery(resultInvalid, 0)
		s.writeError(w, r, err)
		return
	}

	s.Metrics.observeQuery(resultOK, page.TotalItems)
	kit.WriteJSON(w, http.StatusOK, page)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := s.Store.Get(id)
	if err != nil {
		s.Metrics.observeLookup(resultNotFound)
		s.writeError(w, r, err)
		return
	}

	s.Metrics.observeLookup(resultOK)
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		kit.WriteProblem(w, r, http.StatusBadRequest, titleInvalidRequest, ve.Reason)
	case errors.Is(err, ErrNotFound):
		kit.WriteProblem(w, r, http.StatusNotFound, titleNotFound, err.Error())
	default:
		if s.Log != nil {
			s.Log.Error("catalog request failed", zap.Error(err), zap.String("path", r.URL.Path))
		}
		kit.WriteProblem(w, r, http.StatusInternalServerError, titleServerError, "server error")
	}
}

// parseQueryRequest binds the listing query string. Empty values fall back to
// defaults; values of the wrong type are reported by parameter name.
func parseQueryRequest(q url.Values) (QueryRequest, error) {
	req := QueryRequest{
		Query:    q.Get("q"),
		Brand:    q.Get("brand"),
		Category: q.Get("category"),
		SortBy:   stringParam(q, "sortBy", DefaultSortBy),
		SortDir:  stringParam(q, "sortDir", DefaultSortDir),
	}

	var err error
	if req.MinPrice, err = decimalParam(q, "minPrice"); err != nil {
		return QueryRequest{}, err
	}
	if req.MaxPrice, err = decimalParam(q, "maxPrice"); err != nil {
		return QueryRequest{}, err
	}
	if req.Page, err = intParam(q, "page", DefaultPage); err != nil {
		return QueryRequest{}, err
	}
	if req.Size, err = intParam(q, "size", DefaultSize); err != nil {
		return QueryRequest{}, err
	}

	return req, nil
}

func stringParam(q url.Values, name, def string) string {
	if v := strings.TrimSpace(q.Get(name)); v != "" {
		return v
	}
	return def
}

func intParam(q url.Values, name string, def int) (int, error) {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, typeMismatch(name)
	}
	return n, nil
}

func decimalParam(q url.Values, name string) (*decimal.Decimal, error) {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, typeMismatch(name)
	}
	return &d, nil
}

func typeMismatch(name string) *ValidationError {
	return invalid(name, "Invalid value for parameter '%s'", name)
}
