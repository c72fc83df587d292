package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalog = `[
  {"id":"p-1","name":"Alpha","description":"first","category":"A","brand":"X",
   "price":10.10,"oldPrice":"12.00","stock":3,"tags":["t1","t2"],"imageUrl":"a.jpg"},
  {"id":"p-2","name":"Beta","description":"second","category":"B","brand":"Y",
   "price":0.1,"oldPrice":0.2,"stock":0,"tags":[],"imageUrl":"b.jpg"}
]`

func TestStore_AllKeepsLoadOrder(t *testing.T) {
	s, err := NewStore(fixture())
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ids(s.All()))
	assert.Equal(t, ids(s.All()), ids(s.All()))
	assert.Equal(t, 5, s.Len())
}

func TestStore_Get(t *testing.T) {
	s, err := NewStore(fixture())
	require.NoError(t, err)

	p, err := s.Get("c")
	require.NoError(t, err)
	assert.Equal(t, "Monitor", p.Name)

	p, err = s.Get("missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, Product{}, p)

	var ve *ValidationError
	assert.False(t, errors.As(err, &ve))
}

func TestStore_IsolatedFromInput(t *testing.T) {
	in := fixture()
	s, err := NewStore(in)
	require.NoError(t, err)

	in[0].Name = "changed"
	p, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "Keyboard", p.Name)
}

func TestNewStore_RejectsBadRecords(t *testing.T) {
	tests := []struct {
		name string
		mod  func([]Product) []Product
		want string
	}{
		{"duplicate id", func(p []Product) []Product { p[1].ID = "a"; return p }, "duplicate id"},
		{"empty id", func(p []Product) []Product { p[2].ID = ""; return p }, "empty id"},
		{"negative price", func(p []Product) []Product { p[0].Price = *dec("-1"); return p }, "negative price"},
		{"negative old price", func(p []Product) []Product { p[0].OldPrice = *dec("-0.01"); return p }, "negative price"},
		{"negative stock", func(p []Product) []Product { p[3].Stock = -1; return p }, "negative stock"},
		{"empty name", func(p []Product) []Product { p[4].Name = ""; return p }, "empty name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStore(tt.mod(fixture()))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNewStore_NilTagsBecomeEmpty(t *testing.T) {
	in := fixture()
	in[0].Tags = nil

	s, err := NewStore(in)
	require.NoError(t, err)

	p, err := s.Get("a")
	require.NoError(t, err)
	assert.NotNil(t, p.Tags)
}

func TestStore_Ping(t *testing.T) {
	var nilStore *Store
	assert.Error(t, nilStore.Ping(context.Background()))
	assert.Equal(t, 0, nilStore.Len())

	s, err := NewStore(nil)
	require.NoError(t, err)
	assert.NoError(t, s.Ping(context.Background()))
}

func TestOpen_ReaderSource(t *testing.T) {
	s, err := Open(context.Background(), ReaderSource("sample", strings.NewReader(sampleCatalog)))
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())

	p, err := s.Get("p-1")
	require.NoError(t, err)
	assert.Equal(t, "10.1", p.Price.String())
	assert.True(t, p.OldPrice.Equal(*dec("12")))
	assert.Equal(t, []string{"t1", "t2"}, p.Tags)
	assert.Equal(t, "a.jpg", p.ImageURL)

	// Prices are parsed as decimals, so 0.1 * 3 is exactly 0.3.
	p2, err := s.Get("p-2")
	require.NoError(t, err)
	assert.True(t, p2.Price.Mul(*dec("3")).Equal(*dec("0.3")))
}

func TestOpen_Failures(t *testing.T) {
	const dup = `{"id":"x","name":"n","price":1,"oldPrice":1,"stock":0}`

	tests := []struct {
		name string
		body string
		want string
	}{
		{"not json", `{{`, "decode products"},
		{"object instead of array", `{"id":"x"}`, "decode products"},
		{"null", `null`, "not a JSON array"},
		{"unknown field", `[{"id":"x","colour":"red"}]`, "unknown field"},
		{"trailing data", `[] []`, "extra data"},
		{"bad price", `[{"id":"x","price":"abc"}]`, "decode products"},
		{"duplicate ids", `[` + dup + `,` + dup + `]`, "duplicate id"},
		{"missing fields", `[{"id":"y","name":"n"}]`, "missing price"},
		{"null price", `[{"id":"y","name":"n","price":null,"oldPrice":1,"stock":1}]`, "missing price"},
		{"null old price", `[{"id":"y","name":"n","price":1,"oldPrice":null,"stock":1}]`, "missing oldPrice"},
		{"missing stock", `[{"id":"y","name":"n","price":1,"oldPrice":1}]`, "missing stock"},
		{"missing name", `[{"id":"y","price":1,"oldPrice":1,"stock":1}]`, "missing name"},
		{"missing id", `[{"name":"n","price":1,"oldPrice":1,"stock":1}]`, "missing id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(context.Background(), ReaderSource("broken", strings.NewReader(tt.body)))
			require.Error(t, err)
			assert.Nil(t, s)
			assert.Contains(t, err.Error(), tt.want)

			var se *StartupError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, "broken", se.Source)
		})
	}
}

func TestOpen_OptionalFieldsDefault(t *testing.T) {
	body := `[{"id":"z","name":"Zed","price":"0","oldPrice":0,"stock":0}]`

	s, err := Open(context.Background(), ReaderSource("minimal", strings.NewReader(body)))
	require.NoError(t, err)

	p, err := s.Get("z")
	require.NoError(t, err)
	assert.True(t, p.Price.IsZero())
	assert.NotNil(t, p.Tags)
	assert.Empty(t, p.Tags)
}

func TestOpen_FileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleCatalog), 0o600))

	s, err := Open(context.Background(), FileSource(path))
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())

	_, err = Open(context.Background(), FileSource(filepath.Join(t.TempDir(), "missing.json")))
	var se *StartupError
	require.ErrorAs(t, err, &se)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestOpen_BundledCatalog(t *testing.T) {
	s, err := Open(context.Background(), BundledSource())
	require.NoError(t, err)
	require.Greater(t, s.Len(), 10)

	p, err := s.Get("p-001")
	require.NoError(t, err)
	assert.NotEmpty(t, p.Name)
	assert.False(t, p.Price.IsNegative())
}
