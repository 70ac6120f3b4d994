// internal/handlers/handlers_test.go
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/javajoker/storefront/internal/config"
	"github.com/javajoker/storefront/internal/database"
	"github.com/javajoker/storefront/internal/models"
	"github.com/javajoker/storefront/internal/router"
	"github.com/javajoker/storefront/internal/services"
)

const cookieName = "storefront_session"

type HandlerTestSuite struct {
	suite.Suite
	cancel   context.CancelFunc
	repos    *database.Repositories
	router   *gin.Engine
	gateway  *services.LocalGateway
	products map[string]string // name -> id
}

func (suite *HandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	var ctx context.Context
	ctx, suite.cancel = context.WithCancel(context.Background())

	suite.repos = database.NewMemoryRepositories()
	suite.Require().NoError(database.SeedInitialData(ctx, suite.repos))

	cfg := &config.Config{
		Environment: "test",
		Session: config.SessionConfig{
			SecretKey:  "handler-test-secret",
			CookieName: cookieName,
			TTL:        1,
		},
		Payment:  config.PaymentConfig{Currency: "inr"},
		Frontend: config.FrontendConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}

	suite.gateway = services.NewLocalGateway()
	suite.router = router.Initialize(ctx, suite.repos, suite.gateway, cfg)

	suite.products = make(map[string]string)
	w := suite.request(http.MethodGet, "/v1/products?limit=100", nil, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var page struct {
		Products []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"products"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &page))
	for _, p := range page.Products {
		suite.products[p.Name] = p.ID
	}
}

func (suite *HandlerTestSuite) TearDownTest() {
	suite.cancel()
}

func (suite *HandlerTestSuite) request(method, path string, body interface{}, cookie *http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		jsonData, _ := json.Marshal(body)
		buf.Write(jsonData)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlerTestSuite) decode(w *httptest.ResponseRecorder) map[string]interface{} {
	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func (suite *HandlerTestSuite) login() *http.Cookie {
	w := suite.request(http.MethodPost, "/v1/auth/login", map[string]interface{}{
		"email":    database.DemoUserEmail,
		"password": database.DemoUserPassword,
	}, nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == cookieName {
			return cookie
		}
	}
	suite.FailNow("session cookie not set")
	return nil
}

func (suite *HandlerTestSuite) createUser(email string) uuid.UUID {
	user := &models.User{Name: "Other Shopper", Email: email}
	suite.Require().NoError(user.SetPassword("other-password"))
	suite.Require().NoError(suite.repos.Users.Create(context.Background(), user))
	return user.ID
}

// addDirect puts a line on a user's cart without going through HTTP.
func (suite *HandlerTestSuite) addDirect(userID uuid.UUID, productID string) string {
	entry := &models.CartEntry{UserID: userID, ProductID: uuid.MustParse(productID), Quantity: 1}
	suite.Require().NoError(suite.repos.Cart.Create(context.Background(), entry))
	return entry.ID.String()
}

func errorCode(response map[string]interface{}) string {
	errObj, _ := response["error"].(map[string]interface{})
	code, _ := errObj["code"].(string)
	return code
}

func (suite *HandlerTestSuite) TestHealth() {
	w := suite.request(http.MethodGet, "/health", nil, nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), "healthy", suite.decode(w)["status"])
}

func (suite *HandlerTestSuite) TestUserLogin() {
	cookie := suite.login()
	assert.True(suite.T(), cookie.HttpOnly)
	assert.NotEmpty(suite.T(), cookie.Value)

	w := suite.request(http.MethodGet, "/v1/auth/me", nil, cookie)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	user := suite.decode(w)["user"].(map[string]interface{})
	assert.Equal(suite.T(), database.DemoUserEmail, user["email"])
	assert.NotContains(suite.T(), user, "password_hash")
}

func (suite *HandlerTestSuite) TestLoginFailures() {
	tests := []struct {
		name   string
		body   map[string]interface{}
		status int
		code   string
	}{
		{"wrong password", map[string]interface{}{"email": database.DemoUserEmail, "password": "wrong"}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"unknown user", map[string]interface{}{"email": "nobody@storefront.local", "password": "x"}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"invalid email", map[string]interface{}{"email": "not-an-email", "password": "x"}, http.StatusBadRequest, "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			w := suite.request(http.MethodPost, "/v1/auth/login", tt.body, nil)
			assert.Equal(suite.T(), tt.status, w.Code)
			response := suite.decode(w)
			assert.False(suite.T(), response["success"].(bool))
			assert.Equal(suite.T(), tt.code, errorCode(response))
		})
	}
}

func (suite *HandlerTestSuite) TestCartRequiresSession() {
	w := suite.request(http.MethodGet, "/v1/cart", nil, nil)
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)

	bogus := &http.Cookie{Name: cookieName, Value: "bogus"}
	w = suite.request(http.MethodGet, "/v1/cart/count", nil, bogus)
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *HandlerTestSuite) TestProducts() {
	w := suite.request(http.MethodGet, "/v1/products?limit=2&sort=price&order=asc", nil, nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), "5", w.Header().Get("X-Total-Count"))

	response := suite.decode(w)
	products := response["products"].([]interface{})
	assert.Len(suite.T(), products, 2)
	assert.Equal(suite.T(), "Ceramic Mug", products[0].(map[string]interface{})["name"])

	w = suite.request(http.MethodGet, "/v1/products/"+suite.products["Gift Card"], nil, nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	w = suite.request(http.MethodGet, "/v1/products/"+uuid.NewString(), nil, nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
	assert.Equal(suite.T(), "NOT_FOUND", errorCode(suite.decode(w)))
}

func (suite *HandlerTestSuite) TestAddMergesSameSelection() {
	cookie := suite.login()
	lamp := suite.products["Brass Desk Lamp"]

	w := suite.request(http.MethodPost, "/v1/cart", map[string]interface{}{
		"productId": lamp,
		"quantity":  1,
		"finish":    "brass",
	}, cookie)
	suite.Require().Equal(http.StatusCreated, w.Code)
	first := suite.decode(w)["cartItem"].(map[string]interface{})
	assert.Equal(suite.T(), "brass", first["specifications"].(map[string]interface{})["finish"])
	assert.Contains(suite.T(), first, "Product")
	assert.Contains(suite.T(), first, "itemCalculations")

	// nested form of the same selection lands on the same line
	w = suite.request(http.MethodPost, "/v1/cart", map[string]interface{}{
		"productId":      lamp,
		"quantity":       2,
		"specifications": map[string]interface{}{"finish": "brass"},
	}, cookie)
	suite.Require().Equal(http.StatusCreated, w.Code)
	second := suite.decode(w)["cartItem"].(map[string]interface{})
	assert.Equal(suite.T(), first["id"], second["id"])
	assert.Equal(suite.T(), float64(3), second["quantity"])

	w = suite.request(http.MethodPost, "/v1/cart", map[string]interface{}{"productId": lamp, "quantity": 1}, cookie)
	suite.Require().Equal(http.StatusCreated, w.Code)

	w = suite.request(http.MethodGet, "/v1/cart", nil, cookie)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Len(suite.T(), suite.decode(w)["cartItems"].([]interface{}), 2)

	w = suite.request(http.MethodGet, "/v1/cart/count", nil, cookie)
	assert.Equal(suite.T(), float64(4), suite.decode(w)["count"])
}

func (suite *HandlerTestSuite) TestAddRejectsBadInput() {
	cookie := suite.login()
	mug := suite.products["Ceramic Mug"]

	tests := []struct {
		name   string
		body   interface{}
		status int
		code   string
	}{
		{"not an object", []int{1}, http.StatusBadRequest, "BAD_REQUEST"},
		{"product id is not a uuid", map[string]interface{}{"productId": "mug", "quantity": 1}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"zero quantity", map[string]interface{}{"productId": mug, "quantity": 0}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown product", map[string]interface{}{"productId": uuid.NewString(), "quantity": 1}, http.StatusNotFound, "NOT_FOUND"},
		{"more than stock", map[string]interface{}{"productId": mug, "quantity": 301}, http.StatusConflict, "CONFLICT"},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			w := suite.request(http.MethodPost, "/v1/cart", tt.body, cookie)
			assert.Equal(suite.T(), tt.status, w.Code)
			assert.Equal(suite.T(), tt.code, errorCode(suite.decode(w)))
		})
	}
}

func (suite *HandlerTestSuite) TestUpdateAndRemove() {
	cookie := suite.login()

	w := suite.request(http.MethodPost, "/v1/cart", map[string]interface{}{
		"productId": suite.products["Notebook Set"],
		"quantity":  1,
	}, cookie)
	suite.Require().Equal(http.StatusCreated, w.Code)
	id := suite.decode(w)["cartItem"].(map[string]interface{})["id"].(string)

	w = suite.request(http.MethodPut, "/v1/cart/"+id, map[string]interface{}{"quantity": 4}, cookie)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	line := suite.decode(w)["cartItem"].(map[string]interface{})
	assert.Equal(suite.T(), float64(4), line["quantity"])
	calc := line["itemCalculations"].(map[string]interface{})
	assert.Equal(suite.T(), 1800.0, calc["subtotal"])
	assert.Equal(suite.T(), 216.0, calc["gstAmount"])
	assert.Equal(suite.T(), 2016.0, calc["totalAmount"])

	w = suite.request(http.MethodPut, "/v1/cart/"+id, map[string]interface{}{"quantity": 0}, cookie)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodPut, "/v1/cart/"+uuid.NewString(), map[string]interface{}{"quantity": 2}, cookie)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)

	w = suite.request(http.MethodDelete, "/v1/cart/"+id, nil, cookie)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	w = suite.request(http.MethodDelete, "/v1/cart/"+id, nil, cookie)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
	assert.Equal(suite.T(), "NOT_FOUND", errorCode(suite.decode(w)))
}

func (suite *HandlerTestSuite) TestLinesOfOtherUsersAreMissing() {
	cookie := suite.login()

	otherID := suite.createUser("other@storefront.local")
	entryID := suite.addDirect(otherID, suite.products["Cotton Throw"])

	w := suite.request(http.MethodDelete, "/v1/cart/"+entryID, nil, cookie)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)

	w = suite.request(http.MethodPut, "/v1/cart/"+entryID, map[string]interface{}{"quantity": 2}, cookie)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *HandlerTestSuite) TestCheckout() {
	cookie := suite.login()

	w := suite.request(http.MethodPost, "/v1/checkout", nil, cookie)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodPost, "/v1/cart", map[string]interface{}{
		"productId": suite.products["Ceramic Mug"],
		"quantity":  2,
	}, cookie)
	suite.Require().Equal(http.StatusCreated, w.Code)

	w = suite.request(http.MethodPost, "/v1/checkout", nil, cookie)
	assert.Equal(suite.T(), http.StatusCreated, w.Code)
	checkout := suite.decode(w)["checkout"].(map[string]interface{})
	assert.Equal(suite.T(), 782.88, checkout["amount"])
	assert.Equal(suite.T(), "inr", checkout["currency"])

	intents := suite.gateway.Intents()
	suite.Require().Len(intents, 1)
	assert.Equal(suite.T(), int64(78288), intents[0].Amount)

	w = suite.request(http.MethodDelete, "/v1/cart", nil, cookie)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	w = suite.request(http.MethodGet, "/v1/cart/count", nil, cookie)
	assert.Equal(suite.T(), float64(0), suite.decode(w)["count"])
}

func (suite *HandlerTestSuite) TestLogoutClearsCookie() {
	cookie := suite.login()

	w := suite.request(http.MethodPost, "/v1/auth/logout", nil, cookie)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var cleared *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == cookieName {
			cleared = c
		}
	}
	suite.Require().NotNil(cleared)
	assert.Empty(suite.T(), cleared.Value)
	assert.True(suite.T(), cleared.MaxAge < 0)
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}
