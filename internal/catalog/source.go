package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

//go:embed catalog.json
var bundledCatalog []byte

// Source produces the full product list once at startup.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]Product, error)
}

type JSONSource struct {
	name string
	open func() (io.ReadCloser, error)
}

// BundledSource reads the catalog compiled into the binary.
func BundledSource() *JSONSource {
	return &JSONSource{
		name: "bundled catalog.json",
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(bundledCatalog)), nil
		},
	}
}

func FileSource(path string) *JSONSource {
	return &JSONSource{
		name: path,
		open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

func ReaderSource(name string, r io.Reader) *JSONSource {
	return &JSONSource{
		name: name,
		open: func() (io.ReadCloser, error) { return io.NopCloser(r), nil },
	}
}

func (s *JSONSource) Name() string { return s.name }

func (s *JSONSource) Load(_ context.Context) ([]Product, error) {
	rc, err := s.open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return decodeProducts(rc)
}

// record is the on-disk shape of a product. Pointers tell a missing or null
// field apart from a zero one.
type record struct {
	ID          string           `json:"id" validate:"required"`
	Name        string           `json:"name" validate:"required"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Brand       string           `json:"brand"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
	OldPrice    *decimal.Decimal `json:"oldPrice" validate:"required"`
	Stock       *int             `json:"stock" validate:"required"`
	Tags        []string         `json:"tags"`
	ImageURL    string           `json:"imageUrl"`
}

var recordValidator = newRecordValidator()

// newRecordValidator reports fields by their JSON names.
func newRecordValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	return v
}

func (r record) product() Product {
	return Product{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
		Brand:       r.Brand,
		Price:       *r.Price,
		OldPrice:    *r.OldPrice,
		Stock:       *r.Stock,
		Tags:        r.Tags,
		ImageURL:    r.ImageURL,
	}
}

func decodeProducts(r io.Reader) ([]Product, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var records []record
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	if records == nil {
		return nil, errors.New("catalog is not a JSON array")
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, errors.New("extra data after catalog array")
	}

	products := make([]Product, 0, len(records))
	for i, rec := range records {
		if err := recordValidator.Struct(rec); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) && len(verrs) > 0 {
				return nil, fmt.Errorf("product #%d %q: missing %s", i, rec.ID, verrs[0].Field())
			}
			return nil, fmt.Errorf("product #%d %q: %w", i, rec.ID, err)
		}
		products = append(products, rec.product())
	}

	return products, nil
}
