package catalog

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultSortBy  = "name"
	DefaultSortDir = "asc"
	DefaultPage    = 0
	DefaultSize    = 10
	MaxSize        = 100
)

// SortField is the closed set of sortable product attributes. Values only come
// from the constants below; ParseSortField rejects anything else.
type SortField string

const (
	SortByName     SortField = "name"
	SortByPrice    SortField = "price"
	SortByBrand    SortField = "brand"
	SortByCategory SortField = "category"
	SortByStock    SortField = "stock"
)

var sortFields = []SortField{SortByName, SortByPrice, SortByBrand, SortByCategory, SortByStock}

func ParseSortField(s string) (SortField, bool) {
	f := SortField(strings.ToLower(s))
	return f, slices.Contains(sortFields, f)
}

func (f SortField) compare(a, b Product) int {
	switch f {
	case SortByName:
		return compareFold(a.Name, b.Name)
	case SortByPrice:
		return a.Price.Cmp(b.Price)
	case SortByBrand:
		return compareFold(a.Brand, b.Brand)
	case SortByCategory:
		return compareFold(a.Category, b.Category)
	case SortByStock:
		return cmp.Compare(a.Stock, b.Stock)
	}
	panic("catalog: unknown sort field " + string(f))
}

// compareFold orders a and b as their lowercase forms would, without
// allocating.
func compareFold(a, b string) int {
	for a != "" && b != "" {
		ra, na := utf8.DecodeRuneInString(a)
		rb, nb := utf8.DecodeRuneInString(b)
		if c := cmp.Compare(unicode.ToLower(ra), unicode.ToLower(rb)); c != 0 {
			return c
		}
		a, b = a[na:], b[nb:]
	}
	return cmp.Compare(len(a), len(b))
}

type SortDirection string

const (
	Asc  SortDirection = "asc"
	Desc SortDirection = "desc"
)

// QueryRequest is one catalog listing request. Empty strings and nil prices
// mean "no constraint".
type QueryRequest struct {
	Query    string
	Brand    string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	SortBy   string
	SortDir  string
	Page     int
	Size     int
}

type PageResult struct {
	Items       []Product `json:"items"`
	TotalItems  int       `json:"totalItems"`
	Page        int       `json:"page"`
	Size        int       `json:"size"`
	TotalPages  int       `json:"totalPages"`
	HasNext     bool      `json:"hasNext"`
	HasPrevious bool      `json:"hasPrevious"`
}

// plan is a validated QueryRequest with blank filters resolved to "".
type plan struct {
	query    string
	brand    string
	category string
	minPrice *decimal.Decimal
	maxPrice *decimal.Decimal
	field    SortField
	dir      SortDirection
	page     int
	size     int
}

type window struct {
	SortDir string `validate:"oneof=asc desc"`
	Page    int    `validate:"gte=0"`
	Size    int    `validate:"pagesize"`
}

var windowErrors = map[string]*ValidationError{
	"SortDir": {Param: "sortDir", Reason: "sortDir must be asc or desc"},
	"Page":    {Param: "page", Reason: "page must be >= 0"},
	"Size":    {Param: "size", Reason: fmt.Sprintf("size must be between 1 and %d", MaxSize)},
}

func validPageSize(fl validator.FieldLevel) bool {
	n := fl.Field().Int()
	return n >= 1 && n <= MaxSize
}

// Engine turns (products, QueryRequest) into a PageResult. It holds no
// per-request state and is safe for concurrent use.
type Engine struct {
	tracer   trace.Tracer
	validate *validator.Validate
}

func NewEngine(tracer trace.Tracer) *Engine {
	if tracer == nil {
		tracer = otel.Tracer("ProductCatalog/internal/catalog")
	}
	v := validator.New()
	if err := v.RegisterValidation("pagesize", validPageSize); err != nil {
		panic(err)
	}

	return &Engine{
		tracer:   tracer,
		validate: v,
	}
}

func (e *Engine) Execute(ctx context.Context, products []Product, req QueryRequest) (PageResult, error) {
	_, span := e.tracer.Start(ctx, "catalog.Engine.Execute")
	defer span.End()

	span.SetAttributes(
		attribute.String("catalog.sort_by", req.SortBy),
		attribute.String("catalog.sort_dir", req.SortDir),
		attribute.Int("catalog.page", req.Page),
		attribute.Int("catalog.size", req.Size),
	)

	p, err := e.resolve(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		return PageResult{}, err
	}

	matched := filter(products, p)
	sortProducts(matched, p.field, p.dir)
	res := paginate(matched, p.page, p.size)

	span.SetAttributes(
		attribute.Int("catalog.total_items", res.TotalItems),
		attribute.Int("catalog.items", len(res.Items)),
	)
	return res, nil
}

// resolve checks req in a fixed order: price range, sortBy, sortDir, page, size.
func (e *Engine) resolve(req QueryRequest) (plan, error) {
	if req.MinPrice != nil && req.MaxPrice != nil && req.MinPrice.GreaterThan(*req.MaxPrice) {
		return plan{}, invalid("minPrice", "minPrice cannot be greater than maxPrice")
	}

	field, ok := ParseSortField(req.SortBy)
	if !ok {
		return plan{}, invalid("sortBy", "sortBy must be one of: [%s]", joinSortFields())
	}

	dir := SortDirection(strings.ToLower(req.SortDir))
	if err := e.validate.Struct(window{SortDir: string(dir), Page: req.Page, Size: req.Size}); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			if ve, ok := windowErrors[verrs[0].StructField()]; ok {
				return plan{}, &ValidationError{Param: ve.Param, Reason: ve.Reason}
			}
		}
		return plan{}, err
	}

	p := plan{
		minPrice: req.MinPrice,
		maxPrice: req.MaxPrice,
		field:    field,
		dir:      dir,
		page:     req.Page,
		size:     req.Size,
	}
	if strings.TrimSpace(req.Query) != "" {
		p.query = strings.ToLower(req.Query)
	}
	if strings.TrimSpace(req.Brand) != "" {
		p.brand = req.Brand
	}
	if strings.TrimSpace(req.Category) != "" {
		p.category = req.Category
	}
	return p, nil
}

func joinSortFields() string {
	names := make([]string, len(sortFields))
	for i, f := range sortFields {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

func filter(products []Product, p plan) []Product {
	out := make([]Product, 0, len(products))
	for _, pr := range products {
		if matches(pr, p) {
			out = append(out, pr)
		}
	}
	return out
}

func matches(pr Product, p plan) bool {
	if p.query != "" &&
		!strings.Contains(strings.ToLower(pr.Name), p.query) &&
		!strings.Contains(strings.ToLower(pr.Description), p.query) {
		return false
	}
	if p.brand != "" && !strings.EqualFold(pr.Brand, p.brand) {
		return false
	}
	if p.category != "" && !strings.EqualFold(pr.Category, p.category) {
		return false
	}
	if p.minPrice != nil && pr.Price.LessThan(*p.minPrice) {
		return false
	}
	if p.maxPrice != nil && pr.Price.GreaterThan(*p.maxPrice) {
		return false
	}
	return true
}

// sortProducts is stable; for Desc the comparator is negated rather than the
// result reversed, so equal keys keep their filtered order.
func sortProducts(products []Product, field SortField, dir SortDirection) {
	slices.SortStableFunc(products, func(a, b Product) int {
		c := field.compare(a, b)
		if dir == Desc {
			return -c
		}
		return c
	})
}

func paginate(products []Product, page, size int) PageResult {
	total := len(products)

	totalPages := 0
	if total > 0 {
		totalPages = (total + size - 1) / size
	}

	items := []Product{}
	// page < totalPages keeps page*size well inside total, so nothing overflows.
	if page < totalPages {
		start := page * size
		end := min(start+size, total)
		items = slices.Clone(products[start:end])
	}

	return PageResult{
		Items:       items,
		TotalItems:  total,
		Page:        page,
		Size:        size,
		TotalPages:  totalPages,
		HasNext:     page < totalPages-1,
		HasPrevious: page > 0 && totalPages > 0,
	}
}
