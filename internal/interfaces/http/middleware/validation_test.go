package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/ordena/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupValidator(t *testing.T) {
	// Should not panic
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	assert.True(t, ok)
	assert.NotNil(t, v)
}

func TestFormatValidationErrors(t *testing.T) {
	type changeInput struct {
		Method    string `json:"method" binding:"required,payment_method"`
		CoveredBy string `json:"covered_by" binding:"required,covered_by"`
	}

	SetupValidator()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var req changeInput
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	t.Run("should return field details for unknown method and responsibility", func(t *testing.T) {
		body := strings.NewReader(`{"method": "cash-ARS", "covered_by": "courier"}`)
		req := httptest.NewRequest("POST", "/test", body)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)

		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
		assert.Equal(t, "Request validation failed", resp.Error.Message)
		require.Len(t, resp.Error.Details, 2)
		assert.Equal(t, "method", resp.Error.Details[0].Field)
		assert.Equal(t, "Unknown payment method", resp.Error.Details[0].Message)
		assert.Equal(t, "covered_by", resp.Error.Details[1].Field)
		assert.Equal(t, "Unknown change responsibility", resp.Error.Details[1].Message)
	})

	t.Run("should accept known wire values", func(t *testing.T) {
		body := strings.NewReader(`{"method": "mobile-payment-VES", "covered_by": "company"}`)
		req := httptest.NewRequest("POST", "/test", body)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestGetValidationMessage(t *testing.T) {
	type testStruct struct {
		Required string `binding:"required"`
		Min      string `binding:"min=5"`
		Max      string `binding:"max=10"`
		Len      string `binding:"len=4"`
		UUID     string `binding:"uuid"`
		OneOf    string `binding:"oneof=none company agency partial"`
		Numeric  string `binding:"numeric"`
	}

	v := validator.New()
	v.SetTagName("binding")

	tests := []struct {
		field    string
		expected string
	}{
		{"Required", "This field is required"},
		{"Min", "Must be at least 5 characters"},
		{"Len", "Must be exactly 4 characters"},
		{"UUID", "Invalid UUID format"},
		{"OneOf", "Must be one of: none company agency partial"},
	}

	obj := testStruct{Min: "ab", Len: "ab", UUID: "invalid", OneOf: "courier", Numeric: "abc"}
	err := v.Struct(obj)
	require.Error(t, err)
	validationErrs, ok := err.(validator.ValidationErrors)
	require.True(t, ok)

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			for _, e := range validationErrs {
				if e.StructField() == tt.field {
					assert.Equal(t, tt.expected, getValidationMessage(e))
					return
				}
			}
			t.Fatalf("no validation error recorded for field %s", tt.field)
		})
	}
}
