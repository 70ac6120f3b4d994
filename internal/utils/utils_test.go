package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionToken(t *testing.T) {
	SetJWTSecret("utils-test")
	id := uuid.New()

	token, err := GenerateSessionToken(id, "shopper@storefront.local", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, id.String(), claims.UserID)
	assert.Equal(t, "shopper@storefront.local", claims.Email)

	SetJWTSecret("rotated")
	_, err = ValidateSessionToken(token)
	assert.Error(t, err)
}

func TestSessionTokenRejectsForeignIssuer(t *testing.T) {
	SetJWTSecret("utils-test")
	claims := SessionClaims{
		UserID: uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("utils-test"))
	require.NoError(t, err)

	_, err = ValidateSessionToken(token)
	assert.Error(t, err)
}

func TestNormalizePagination(t *testing.T) {
	p := NormalizePagination(PaginationParams{Page: 0, Limit: 500, Order: "sideways"})
	assert.Equal(t, PaginationParams{Page: 1, Limit: 20, Order: "desc", Sort: "created_at"}, p)

	p = NormalizePagination(PaginationParams{Page: 3, Limit: 10, Order: "asc", Sort: "price"})
	assert.Equal(t, 20, p.Offset())
}

func TestPageBounds(t *testing.T) {
	params := PaginationParams{Page: 2, Limit: 2}
	start, end := PageBounds(5, params)
	assert.Equal(t, 2, start)
	assert.Equal(t, 4, end)

	start, end = PageBounds(5, PaginationParams{Page: 4, Limit: 2})
	assert.Equal(t, 5, start)
	assert.Equal(t, 5, end)
}

func TestCreatePaginationResult(t *testing.T) {
	result := CreatePaginationResult([]int{1, 2}, 5, PaginationParams{Page: 1, Limit: 2})
	assert.Equal(t, 3, result.TotalPages)
	assert.Equal(t, int64(5), result.Total)
}

func TestResponses(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("success merges payload", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		CreatedResponse(c, gin.H{"count": 3})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"success":true,"count":3}`, w.Body.String())
	})

	t.Run("error envelope", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		ConflictResponse(c, "Out of stock")

		var body APIResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.False(t, body.Success)
		assert.Equal(t, "CONFLICT", body.Error.Code)
		assert.Equal(t, "Out of stock", body.Message)
	})

	t.Run("not found resolves resource key", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		NotFoundResponse(c, "product")

		var body APIResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.NotEqual(t, "product", body.Message)
		assert.NotEqual(t, "product.not_found", body.Message)
	})

	t.Run("paginated", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		PaginatedResponse(c, "products", CreatePaginationResult([]string{"a"}, 1, PaginationParams{Page: 1, Limit: 20}))

		assert.Equal(t, "1", w.Header().Get("X-Total-Count"))
		assert.JSONEq(t, `{"success":true,"products":["a"],"pagination":{"page":1,"limit":20,"total":1,"total_pages":1}}`, w.Body.String())
	})
}

func TestValidation(t *testing.T) {
	type request struct {
		Email string                 `validate:"required,email"`
		Specs map[string]interface{} `validate:"omitempty,dive,keys,spec_key,endkeys"`
	}

	assert.NoError(t, ValidateStruct(&request{Email: "a@b.c", Specs: map[string]interface{}{"size": "L"}}))

	errs := GetValidationErrors(ValidateStruct(&request{Email: "nope"}))
	require.Len(t, errs, 1)
	assert.Equal(t, "email", errs[0].Field)
	assert.Equal(t, "Invalid email format", errs[0].Message)

	errs = GetValidationErrors(ValidateStruct(&request{Email: "a@b.c", Specs: map[string]interface{}{"productId": "x"}}))
	require.Len(t, errs, 1)
	assert.Equal(t, "spec_key", errs[0].Tag)

	assert.Error(t, ValidateVar(0, "min=1"))
	assert.Empty(t, GetValidationErrors(nil))
}
