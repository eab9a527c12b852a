package woolworths

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(auURL, nzURL string) *Client {
	return NewClient(ClientConfig{
		AUBaseURL: auURL,
		NZBaseURL: nzURL,
		Timeout:   5 * time.Second,
	})
}

func nzServer(t *testing.T, items ...map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := make([]json.RawMessage, 0, len(items))
		for _, item := range items {
			raw = append(raw, mustRaw(t, item))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"products": map[string]any{"items": raw},
		})
	}))
}

func auServer(t *testing.T, items ...map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/":
			w.Header().Add("Set-Cookie", "_abck=abc123; Path=/; Secure")
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodPost && r.URL.Path == "/apis/ui/Search/products":
			raw := make([]json.RawMessage, 0, len(items))
			for _, item := range items {
				raw = append(raw, mustRaw(t, item))
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"Products":           []map[string]any{{"Products": raw}},
				"SearchResultsCount": len(raw),
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func failingServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(ClientConfig{})

	assert.NotNil(t, client.httpClient)
	assert.Equal(t, DefaultAUBaseURL, client.cfg.AUBaseURL)
	assert.Equal(t, DefaultNZBaseURL, client.cfg.NZBaseURL)
	assert.Equal(t, DefaultNZPageSize, client.cfg.NZPageSize)
	assert.Equal(t, DefaultAUPageSize, client.cfg.AUPageSize)
	assert.Equal(t, DefaultCookiePrefix, client.cfg.CookiePrefix)
	assert.False(t, client.debug)
}

func TestSetDebug(t *testing.T) {
	client := NewClient(ClientConfig{})

	client.SetDebug(true)
	assert.True(t, client.debug)

	client.SetDebug(false)
	assert.False(t, client.debug)
}

func TestSearch_BothLegsSucceed(t *testing.T) {
	au := auServer(t, validAUItem())
	defer au.Close()
	nz := nzServer(t, validNZItem())
	defer nz.Close()

	result := newTestClient(au.URL, nz.URL).Search(context.Background(), "milk")

	require.NotNil(t, result)
	assert.Empty(t, result.Error)
	require.Len(t, result.AU, 1)
	require.Len(t, result.NZ, 1)
	assert.Equal(t, int64(123456), result.AU[0].Stockcode)
	assert.Equal(t, "282819", result.NZ[0].SKU)
}

func TestSearch_NZFailureKeepsAUResults(t *testing.T) {
	au := auServer(t, validAUItem())
	defer au.Close()
	nz := failingServer()
	defer nz.Close()

	result := newTestClient(au.URL, nz.URL).Search(context.Background(), "milk")

	assert.Contains(t, result.Error, "NZ search failed")
	assert.NotContains(t, result.Error, "AU search failed")
	assert.Len(t, result.AU, 1)
	assert.NotNil(t, result.NZ)
	assert.Empty(t, result.NZ)
}

func TestSearch_MissingCookieFailsAULeg(t *testing.T) {
	au := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Set-Cookie", "bm_sv=xyz; Path=/")
		w.WriteHeader(http.StatusOK)
	}))
	defer au.Close()
	nz := nzServer(t, validNZItem())
	defer nz.Close()

	result := newTestClient(au.URL, nz.URL).Search(context.Background(), "milk")

	assert.True(t, strings.HasPrefix(result.Error, "AU search failed: "))
	assert.Contains(t, result.Error, "cookie")
	assert.Empty(t, result.AU)
	assert.Len(t, result.NZ, 1)
}

func TestSearch_BothFailJoinsErrors(t *testing.T) {
	au := failingServer()
	defer au.Close()
	nz := failingServer()
	defer nz.Close()

	result := newTestClient(au.URL, nz.URL).Search(context.Background(), "milk")

	lines := strings.Split(result.Error, "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "NZ search failed: "))
	assert.True(t, strings.HasPrefix(lines[1], "AU search failed: "))
	assert.Empty(t, result.AU)
	assert.Empty(t, result.NZ)
}

func TestSearch_MalformedEnvelopesFailTheirLegs(t *testing.T) {
	nz := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"products":{}}`))
	}))
	defer nz.Close()
	au := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Header().Add("Set-Cookie", "_abck=abc123; Path=/")
			return
		}
		w.Write([]byte(`{"SearchResultsCount":0}`))
	}))
	defer au.Close()

	result := newTestClient(au.URL, nz.URL).Search(context.Background(), "milk")

	lines := strings.Split(result.Error, "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "invalid NZ response")
	assert.Contains(t, lines[1], "invalid AU response")
	assert.Empty(t, result.AU)
	assert.Empty(t, result.NZ)
}

func TestSearch_InvalidItemsAreDropped(t *testing.T) {
	broken := validAUItem()
	delete(broken, "Name")
	au := auServer(t, broken, validAUItem())
	defer au.Close()
	nz := nzServer(t, map[string]any{"type": "PromoTile"}, validNZItem())
	defer nz.Close()

	result := newTestClient(au.URL, nz.URL).Search(context.Background(), "milk")

	assert.Empty(t, result.Error)
	assert.Len(t, result.AU, 1)
	assert.Len(t, result.NZ, 1)
}

func TestSearchNZ_RequestShape(t *testing.T) {
	var got *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.Write([]byte(`{"products":{"items":[]}}`))
	}))
	defer server.Close()

	products, err := newTestClient(server.URL, server.URL).SearchNZ(context.Background(), "full cream milk")

	require.NoError(t, err)
	assert.Empty(t, products)
	require.NotNil(t, got)
	assert.Equal(t, http.MethodGet, got.Method)
	assert.Equal(t, "/api/v1/products", got.URL.Path)
	assert.Contains(t, got.URL.RawQuery, "search=full%20cream%20milk")
	assert.Equal(t, "search", got.URL.Query().Get("target"))
	assert.Equal(t, "false", got.URL.Query().Get("inStockProductsOnly"))
	assert.Equal(t, "48", got.URL.Query().Get("size"))
	assert.Equal(t, "OnlineShopping.WebApp", got.Header.Get("X-Requested-With"))
	assert.Equal(t, DefaultUserAgent, got.Header.Get("User-Agent"))
	assert.Equal(t, "application/json", got.Header.Get("Accept"))
}

func TestSearchAU_RequestShape(t *testing.T) {
	var (
		cookie string
		body   map[string]any
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Header().Add("Set-Cookie", "ak_bmsc=zzz; Path=/")
			w.Header().Add("Set-Cookie", "_abck=token~0~; Domain=.example; Path=/; HttpOnly")
			return
		}
		cookie = r.Header.Get("Cookie")
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &body)
		w.Write([]byte(`{"Products":null,"SearchResultsCount":0}`))
	}))
	defer server.Close()

	products, err := newTestClient(server.URL, server.URL).SearchAU(context.Background(), "tim tams")

	require.NoError(t, err)
	assert.Empty(t, products)
	assert.Equal(t, "_abck=token~0~", cookie)
	require.NotNil(t, body)
	assert.Equal(t, "tim tams", body["SearchTerm"])
	assert.Equal(t, "/shop/search/products?searchTerm=tim%20tams", body["Location"])
	assert.Equal(t, float64(1), body["PageNumber"])
	assert.Equal(t, float64(24), body["PageSize"])
	assert.Equal(t, "TraderRelevance", body["SortType"])
	assert.Equal(t, false, body["IsSpecial"])
	assert.Equal(t, true, body["GroupEdmVariants"])
	assert.Nil(t, body["IsRegisteredRewardCardPromotion"])
	assert.Contains(t, body, "IsRegisteredRewardCardPromotion")
	assert.Equal(t, []any{"UntraceableVendors"}, body["ExcludeSearchTypes"])
	assert.Equal(t, []any{}, body["Filters"])
	assert.Equal(t, map[string]any{"EnableProductBoostExperiment": false}, body["flags"])
}

func TestFindCookie(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    string
		found   bool
	}{
		{"single header", []string{"_abck=one; Path=/"}, "_abck=one", true},
		{"comma joined", []string{"bm_sz=x; Path=/, _abck=two; Secure"}, "_abck=two", true},
		{"first match wins", []string{"_abck=a", "_abck=b"}, "_abck=a", true},
		{"absent", []string{"bm_sz=x"}, "", false},
		{"no headers", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := findCookie(tt.headers, "_abck")
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEscapeComponent(t *testing.T) {
	assert.Equal(t, "milk", escapeComponent("milk"))
	assert.Equal(t, "tim%20tams", escapeComponent("tim tams"))
	assert.Equal(t, "salt%20%26%20vinegar", escapeComponent("salt & vinegar"))
}
