package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/poultry-storefront/internal/adapters/api"
	"github.com/ammerola/poultry-storefront/internal/core/domain"
	"github.com/ammerola/poultry-storefront/test/helpers"
)

func newClient(t *testing.T, handler http.HandlerFunc) *api.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := api.NewClient(api.Options{
		BaseURL: srv.URL + "/api",
		Timeout: 2 * time.Second,
	}, api.TokenFunc(func() string { return "tok" }), helpers.TestLogger())
	require.NoError(t, err)
	return client
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestEndpoint(t *testing.T) {
	tests := []struct {
		name string
		base string
		path string
		want string
	}{
		{name: "drops_duplicate_api_prefix", base: "http://host/api", path: "/api/products/", want: "http://host/api/products/"},
		{name: "drops_prefix_with_trailing_slash", base: "http://host/api/", path: "/api/products/", want: "http://host/api/products/"},
		{name: "keeps_path_without_prefix", base: "http://host/api", path: "/orders/", want: "http://host/api/orders/"},
		{name: "keeps_prefix_when_base_has_none", base: "http://host", path: "/api/products/", want: "http://host/api/products/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, api.Endpoint(tt.base, tt.path))
		})
	}
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	_, err := api.NewClient(api.Options{BaseURL: "not a url"}, nil, helpers.TestLogger())
	assert.Error(t, err)
}

func TestClient_ListProducts(t *testing.T) {
	products := helpers.NewTestProducts(1, 2)

	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/products/", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "12", r.URL.Query().Get("page_size"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		writeJSON(w, http.StatusOK, helpers.ProductPage(products, true))
	})

	page, err := client.ListProducts(context.Background(), 2, 12)
	require.NoError(t, err)
	assert.True(t, page.HasNext())
	require.Len(t, page.Results, 2)
	assert.Equal(t, int64(1), page.Results[0].ID)
}

func TestClient_SearchProducts(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "wing", r.URL.Query().Get("search"))
		writeJSON(w, http.StatusOK, helpers.ProductPage(nil, false))
	})

	page, err := client.SearchProducts(context.Background(), "wing", 1, 12)
	require.NoError(t, err)
	assert.Empty(t, page.Results)
	assert.False(t, page.HasNext())
}

func TestClient_DecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not_json", body: "<html>oops</html>"},
		{name: "missing_results", body: `{"count": 0, "next": null}`},
		{name: "invalid_record", body: `{"count": 1, "results": [{"id": 0, "name": "x"}]}`},
		{name: "bad_product_type", body: `{"count": 1, "results": [{"id": 3, "product_type": "neck"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := client.ListProducts(context.Background(), 1, 12)
			var decodeErr *api.DecodeError
			require.ErrorAs(t, err, &decodeErr)
			assert.Equal(t, "/api/products/", decodeErr.Endpoint)
		})
	}
}

func TestClient_APIErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantIs     error
		wantDetail string
		wantField  string
	}{
		{
			name:       "not_found_maps_to_sentinel",
			status:     http.StatusNotFound,
			body:       `{"detail": "Invalid page."}`,
			wantIs:     domain.ErrNotFound,
			wantDetail: "Invalid page.",
		},
		{
			name:   "unauthorized_maps_to_sentinel",
			status: http.StatusUnauthorized,
			body:   `{"detail": "token expired"}`,
			wantIs: domain.ErrNotAuthenticated,
		},
		{
			name:      "field_errors",
			status:    http.StatusBadRequest,
			body:      `{"username": ["already taken"], "password": ["too short"]}`,
			wantField: "password: too short",
		},
		{
			name:       "plain_text_body",
			status:     http.StatusInternalServerError,
			body:       "boom",
			wantDetail: "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := client.ListProducts(context.Background(), 5, 12)
			require.Error(t, err)

			var apiErr *api.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			} else {
				assert.False(t, errors.Is(err, domain.ErrNotFound))
			}
			if tt.wantDetail != "" {
				assert.Equal(t, tt.wantDetail, apiErr.Detail)
			}
			if tt.wantField != "" {
				assert.Equal(t, tt.wantField, apiErr.FirstFieldError())
			}
		})
	}
}

func TestClient_UpdateProduct(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/products/4/", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"stock_kg": "7.5"}, body)

		writeJSON(w, http.StatusOK, helpers.NewTestProduct(4, func(p *domain.Product) {
			p.StockKg = decimal.RequireFromString("7.5")
		}))
	})

	p, err := client.UpdateProduct(context.Background(), 4, domain.StockPatch(decimal.RequireFromString("7.5")))
	require.NoError(t, err)
	assert.True(t, p.StockKg.Equal(decimal.RequireFromString("7.5")))
}

func TestClient_CreateProductValidatesFirst(t *testing.T) {
	called := false
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := client.CreateProduct(context.Background(), domain.ProductInput{})
	assert.ErrorIs(t, err, domain.ErrInvalidProduct)
	assert.False(t, called)
}

func TestClient_DeleteProduct(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/products/9/", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.DeleteProduct(context.Background(), 9))
}

func TestClient_Orders(t *testing.T) {
	ctx := context.Background()

	t.Run("create_posts_items", func(t *testing.T) {
		client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/orders/", r.URL.Path)
			var req struct {
				Items []struct {
					ProductID  int64  `json:"product_id"`
					QuantityKg string `json:"quantity_kg"`
				} `json:"items"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Len(t, req.Items, 1)
			assert.Equal(t, int64(11), req.Items[0].ProductID)
			assert.Equal(t, "2", req.Items[0].QuantityKg)
			writeJSON(w, http.StatusCreated, helpers.NewTestOrder(1, domain.OrderPending))
		})

		o, err := client.CreateOrder(ctx, domain.CreateOrderRequest{Items: []domain.OrderLine{
			{ProductID: 11, QuantityKg: decimal.NewFromInt(2)},
		}})
		require.NoError(t, err)
		assert.Equal(t, domain.OrderPending, o.Status)
	})

	t.Run("empty_order_rejected", func(t *testing.T) {
		client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("no request expected")
		})
		_, err := client.CreateOrder(ctx, domain.CreateOrderRequest{})
		assert.ErrorIs(t, err, domain.ErrEmptyCart)
	})

	t.Run("list_sends_only_set_filters", func(t *testing.T) {
		client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			assert.Equal(t, "pending", q.Get("status"))
			assert.False(t, q.Has("search"))
			assert.Equal(t, "1", q.Get("page"))
			assert.Equal(t, "20", q.Get("page_size"))
			writeJSON(w, http.StatusOK, domain.Page[domain.Order]{
				Count:   1,
				Results: []domain.Order{helpers.NewTestOrder(3, domain.OrderPending)},
			})
		})

		f := domain.DefaultOrderFilters()
		f.Status = "pending"
		page, err := client.ListOrders(ctx, f)
		require.NoError(t, err)
		require.Len(t, page.Results, 1)
	})

	t.Run("update_status", func(t *testing.T) {
		client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/orders/3/update_status/", r.URL.Path)
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "shipping", body["status"])
			writeJSON(w, http.StatusOK, helpers.NewTestOrder(3, domain.OrderShipping))
		})

		o, err := client.UpdateOrderStatus(ctx, 3, domain.OrderShipping)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderShipping, o.Status)
	})

	t.Run("unknown_status_rejected", func(t *testing.T) {
		client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("no request expected")
		})
		_, err := client.UpdateOrderStatus(ctx, 3, "lost")
		assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	})
}

func TestClient_Reports(t *testing.T) {
	ctx := context.Background()
	start := "2025-03-01"

	t.Run("list_accepts_array_and_envelope", func(t *testing.T) {
		for _, body := range []any{
			[]domain.OrderReport{{ID: 1, ReportType: domain.ReportDaily, StartDate: &start}},
			domain.Page[domain.OrderReport]{Count: 1, Results: []domain.OrderReport{{ID: 1, ReportType: domain.ReportDaily}}},
		} {
			client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/orders/reports/", r.URL.Path)
				writeJSON(w, http.StatusOK, body)
			})
			reports, err := client.ListReports(ctx)
			require.NoError(t, err)
			require.Len(t, reports, 1)
			assert.Equal(t, int64(1), reports[0].ID)
		}
	})

	t.Run("download_returns_bytes", func(t *testing.T) {
		client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/orders/8/download_report/", r.URL.Path)
			_, _ = w.Write([]byte("PK\x03\x04"))
		})
		data, err := client.DownloadReport(ctx, 8)
		require.NoError(t, err)
		assert.Equal(t, []byte("PK\x03\x04"), data)
	})

	t.Run("create_validates_request", func(t *testing.T) {
		client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("no request expected")
		})
		_, err := client.CreateReport(ctx, domain.ReportRequest{ReportType: domain.ReportRange, StartDate: start})
		assert.ErrorIs(t, err, domain.ErrInvalidReport)
	})

	t.Run("stats", func(t *testing.T) {
		client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/orders/stats/", r.URL.Path)
			_, _ = io.WriteString(w, `{"total_orders": 5, "total_completed": 2, "total_weight_completed": "4.5"}`)
		})
		s, err := client.SellerStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 5, s.TotalOrders)
		assert.InDelta(t, 0.4, s.CompletionRate(), 0.0001)
	})
}

func TestClient_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("returns_token_and_raw_user", func(t *testing.T) {
		client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/auth/login/", r.URL.Path)
			_, _ = io.WriteString(w, `{"access": "jwt", "user": {"id": 2, "username": "ann", "user_role": "seller"}}`)
		})
		res, err := client.Login(ctx, "ann", "pw")
		require.NoError(t, err)
		assert.Equal(t, "jwt", res.Access)

		u, err := domain.NormalizeUser(res.User)
		require.NoError(t, err)
		assert.True(t, u.IsSeller())
	})

	t.Run("missing_token_is_decode_error", func(t *testing.T) {
		client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"user": {"id": 2}}`)
		})
		_, err := client.Login(ctx, "ann", "pw")
		var decodeErr *api.DecodeError
		assert.ErrorAs(t, err, &decodeErr)
	})
}
