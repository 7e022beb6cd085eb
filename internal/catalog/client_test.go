package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" {
		t.Fatalf("scheme = %q, want http", u.Scheme)
	}
	if u.Host != defaultAPIBind {
		t.Fatalf("host = %q, want %q", u.Host, defaultAPIBind)
	}

	u, err = parseBaseURL("http://example.com:1234/path?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}
}

func TestClient_QueriesEndpointsAndEncodesFilters(t *testing.T) {
	t.Parallel()

	var gotQuery url.Values
	var gotUserAgent string
	var gotDetailPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.URL.Path == "/api/products":
			gotQuery = r.URL.Query()
			_, _ = w.Write([]byte(`{"products":[{"productId":"1","title":"Soap","lprice":"220"}],
				"pagination":{"page":2,"limit":20,"total":41,"totalPages":3,"hasNext":true,"hasPrev":true}}`))
		case strings.HasPrefix(r.URL.Path, "/api/products/"):
			gotDetailPath = r.URL.Path
			_, _ = w.Write([]byte(`{"productId":"7","title":"Towel","lprice":1200,"stock":5,"rating":4.5,"reviewCount":12}`))
		case r.URL.Path == "/api/categories":
			_, _ = w.Write([]byte(`{"생활/건강":{"주방용품":{},"생활용품":{}},"디지털/가전":{"태블릿PC":{}}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx := context.Background()

	list, err := client.QueryProducts(ctx, ListQuery{Page: 2, Limit: 20, Search: "  soap ", Category1: "생활/건강", Sort: SortNameAsc})
	if err != nil {
		t.Fatalf("QueryProducts returned error: %v", err)
	}
	if len(list.Products) != 1 || list.Products[0].LPrice != 220 {
		t.Fatalf("products = %#v, want one product priced 220", list.Products)
	}
	if list.Pagination.Total != 41 || !list.Pagination.HasNext {
		t.Fatalf("pagination = %#v", list.Pagination)
	}
	if gotQuery.Get("search") != "soap" || gotQuery.Get("page") != "2" || gotQuery.Get("category1") != "생활/건강" {
		t.Fatalf("query = %v", gotQuery)
	}
	if gotQuery.Has("category2") {
		t.Fatalf("empty category2 should be omitted, query = %v", gotQuery)
	}
	if !strings.HasPrefix(gotUserAgent, "shopfront/") {
		t.Fatalf("User-Agent = %q, want shopfront/ prefix", gotUserAgent)
	}

	product, err := client.QueryProduct(ctx, "7")
	if err != nil {
		t.Fatalf("QueryProduct returned error: %v", err)
	}
	if gotDetailPath != "/api/products/7" || product.Stock != 5 || product.ReviewCount != 12 {
		t.Fatalf("product = %#v (path %q)", product, gotDetailPath)
	}

	cats, err := client.FetchCategories(ctx)
	if err != nil {
		t.Fatalf("FetchCategories returned error: %v", err)
	}
	top := cats.Top()
	if len(top) != 2 || top[0] != "디지털/가전" {
		t.Fatalf("Top() = %v", top)
	}
	if got := cats["생활/건강"]; len(got) != 2 || got[0] != "생활용품" {
		t.Fatalf("category2 list = %v, want sorted", got)
	}
}

func TestClient_NotFoundAndStatusErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/products/missing" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client, _ := NewClient(server.URL)
	_, err := client.QueryProduct(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	_, err = client.QueryProducts(context.Background(), ListQuery{})
	var status *StatusError
	if !errors.As(err, &status) || status.Code != http.StatusInternalServerError {
		t.Fatalf("err = %v, want StatusError 500", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("500 must not match ErrNotFound")
	}

	if _, err := client.QueryProduct(context.Background(), " "); err == nil {
		t.Fatalf("empty id should fail before any request")
	}
}

func TestClient_DecodeError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"products": "nope"`))
	}))
	defer server.Close()

	client, _ := NewClient(server.URL)
	_, err := client.QueryProducts(context.Background(), ListQuery{})
	if err == nil || !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("err = %v, want decode response error", err)
	}
}

func TestPrice_UnmarshalAcceptsStringsAndNumbers(t *testing.T) {
	tests := map[string]Price{
		`1200`:   1200,
		`"1200"`: 1200,
		`""`:     0,
		`null`:   0,
	}
	for raw, want := range tests {
		var p Price
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			t.Fatalf("Unmarshal(%s) returned error: %v", raw, err)
		}
		if p != want {
			t.Fatalf("Unmarshal(%s) = %d, want %d", raw, p, want)
		}
	}
	var p Price
	if err := json.Unmarshal([]byte(`"12a"`), &p); err == nil {
		t.Fatalf("Unmarshal of non-numeric string returned nil error")
	}
}

func TestCategories_MarshalRoundTrip(t *testing.T) {
	in := Categories{"a": {"x", "y"}}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"a":{"x":{},"y":{}}}` {
		t.Fatalf("Marshal = %s", data)
	}
	var out Categories
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(out["a"]) != 2 || out["a"][1] != "y" {
		t.Fatalf("round trip = %v", out)
	}
}

func TestValidSort(t *testing.T) {
	if !ValidSort(SortNameDesc) || ValidSort("random") || ValidSort("") {
		t.Fatalf("ValidSort mismatch")
	}
}
