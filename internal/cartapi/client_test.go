package cartapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/storefront/internal/config"
	"github.com/javajoker/storefront/internal/models"
)

const testCookie = "storefront_session"

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(config.ClientConfig{
		BaseURL: srv.URL + "/v1",
		Timeout: 5 * time.Second,
	}, testCookie)
	require.NoError(t, err)
	return client, srv
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	_, err := New(config.ClientConfig{BaseURL: "localhost:8080", Timeout: time.Second}, testCookie)
	assert.Error(t, err)
}

func TestClient_GetCart(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/cart", r.URL.Path)
		assert.Equal(t, "zh_TW", r.Header.Get("Accept-Language"))

		if cookie, err := r.Cookie(testCookie); assert.NoError(t, err) {
			assert.Equal(t, "token-1", cookie.Value)
		}

		io.WriteString(w, `{"success":true,"cartItems":[
			{"id":"c1","productId":"p1","quantity":2,"Product":{"id":"p1","name":"Mug","price":10,"gst":5}},
			{"_id":"c2","product_id":"p2","quantity":1,"productDetails":{"id":"p2","price":4}},
			"garbage"
		]}`)
	})
	client.SetLanguage("zh_TW")
	client.RestoreSession("token-1")
	assert.Equal(t, "token-1", client.SessionToken())

	items, err := client.GetCart(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, models.ShapeIncluded, items[0].Shape)
	assert.Equal(t, "Mug", items[0].Product.Name)
	assert.Equal(t, models.ShapeDetails, items[1].Shape)
	assert.Equal(t, "c2", items[1].ID)
}

func TestClient_AddItemSendsSpecificationsAtTopLevel(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "p1", body["productId"])
		assert.Equal(t, float64(2), body["quantity"])
		assert.Equal(t, "L", body["size"])

		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"success":true,"cartItem":{"id":"c1","productId":"p1","quantity":2,"size":"L"}}`)
	})

	item, err := client.AddItem(context.Background(), models.AddItemRequest{
		ProductID:      "p1",
		Quantity:       2,
		Specifications: models.Specifications{"size": "L"},
	})
	require.NoError(t, err)
	assert.Equal(t, "c1", item.ID)
	assert.Equal(t, 2, item.Quantity)
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		is      error
		code    string
		message string
	}{
		{
			name:    "unauthorized envelope",
			status:  http.StatusUnauthorized,
			body:    `{"success":false,"error":{"code":"UNAUTHORIZED","message":"Sign in required"},"message":"Sign in required"}`,
			is:      ErrUnauthorized,
			code:    "UNAUTHORIZED",
			message: "Sign in required",
		},
		{
			name:    "not found with top-level message only",
			status:  http.StatusNotFound,
			body:    `{"success":false,"message":"gone"}`,
			is:      ErrNotFound,
			message: "gone",
		},
		{
			name:    "plain text body",
			status:  http.StatusInternalServerError,
			body:    `oops`,
			message: "Internal Server Error",
		},
		{
			name:    "success false on 200",
			status:  http.StatusOK,
			body:    `{"success":false,"error":{"code":"CONFLICT","message":"Out of stock"}}`,
			code:    "CONFLICT",
			message: "Out of stock",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			_, err := client.Count(context.Background())
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.code, apiErr.Code)
			assert.Equal(t, tt.message, apiErr.Message)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
			assert.False(t, IsTransport(err))
		})
	}
}

func TestClient_TransportErrors(t *testing.T) {
	t.Run("server gone", func(t *testing.T) {
		client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
		srv.Close()

		err := client.RemoveItem(context.Background(), "c1")
		require.Error(t, err)
		assert.True(t, IsTransport(err))
	})

	t.Run("malformed body", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"success":true,"cartItems":`)
		})

		_, err := client.GetCart(context.Background())
		require.Error(t, err)
		assert.True(t, IsTransport(err))
	})

	t.Run("missing cart item", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"success":true}`)
		})

		_, err := client.UpdateItem(context.Background(), "c1", 3)
		require.Error(t, err)
		assert.True(t, IsTransport(err))
	})
}

func TestClient_LogoutForgetsSession(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/auth/logout", r.URL.Path)
		io.WriteString(w, `{"success":true}`)
	})
	client.RestoreSession("token-1")

	require.NoError(t, client.Logout(context.Background()))
	assert.Empty(t, client.SessionToken())
}

func TestQueryString(t *testing.T) {
	assert.Equal(t, "", queryString(map[string]string{"page": "", "search": ""}))
	assert.Equal(t, "?limit=5&search=mug", queryString(map[string]string{"search": "mug", "limit": itoa(5), "page": itoa(0)}))
}
