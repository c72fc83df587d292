//go:build integration
// +build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"testing"
	"time"

	"ProductCatalog/internal/catalog"
	"ProductCatalog/internal/catalogclient"
)

var baseURL = getenv("E2E_BASE_URL", "http://localhost:8080")

func TestSystem_E2E(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	waitReady(t, ctx, baseURL+"/readyz")

	c := catalogclient.New(baseURL)

	first, err := c.ListProducts(ctx, catalogclient.ListParams{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if first.TotalItems == 0 || len(first.Items) == 0 {
		t.Fatalf("expected non-empty catalog: %+v", first)
	}

	pid := first.Items[0].ID
	p, err := c.GetProduct(ctx, pid)
	if err != nil {
		t.Fatalf("get %s: %v", pid, err)
	}
	if p.ID != pid {
		t.Fatalf("id=%s want=%s", p.ID, pid)
	}

	if _, err := c.GetProduct(ctx, "no-such-product"); !errors.Is(err, catalogclient.ErrNotFound) {
		t.Fatalf("missing product err=%v", err)
	}

	var problem struct {
		Title  string `json:"title"`
		Status int    `json:"status"`
	}
	getJSON(t, baseURL+"/api/v1/products?size=500", &problem, http.StatusBadRequest)
	if problem.Status != http.StatusBadRequest || problem.Title == "" {
		t.Fatalf("problem=%+v", problem)
	}

	if os.Getenv("E2E_RESTART_CATALOG") == "1" {
		restartCatalogContainer(t, ctx)
		waitReady(t, ctx, baseURL+"/readyz")

		again, err := c.ListProducts(ctx, catalogclient.ListParams{})
		if err != nil {
			t.Fatalf("list after restart: %v", err)
		}
		if !samePage(first, again) {
			t.Fatalf("listing changed across restart")
		}
	}
}

func samePage(a, b catalog.PageResult) bool {
	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)
	return bytes.Equal(ja, jb)
}

func waitReady(t *testing.T, ctx context.Context, url string) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}

	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		resp, err := client.Do(req)
		if err == nil && resp != nil && resp.StatusCode == 200 {
			_ = resp.Body.Close()
			return
		}
		if resp != nil {
			_ = resp.Body.Close()
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("service not ready: %s", url)
}

func getJSON(t *testing.T, url string, out any, want int) {
	t.Helper()

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		t.Fatalf("GET %s: status=%d want=%d", url, resp.StatusCode, want)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
