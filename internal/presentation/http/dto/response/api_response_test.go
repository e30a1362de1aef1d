package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/dealflow-api/pkg/apperror"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func record(t *testing.T, requestID string, write func(c *gin.Context)) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if requestID != "" {
		c.Set("request_id", requestID)
	}
	write(c)

	var body APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return w, body
}

func TestCreatedAndOK(t *testing.T) {
	w, body := record(t, "req-1", func(c *gin.Context) {
		Created(c, "Quote created", map[string]string{"number": "QT-1"})
	})
	if w.Code != http.StatusCreated || !body.Success || body.Message != "Quote created" {
		t.Errorf("unexpected created response %d %+v", w.Code, body)
	}
	if body.Meta == nil || body.Meta.RequestID != "req-1" {
		t.Errorf("expected request id from the context, got %+v", body.Meta)
	}

	w, body = record(t, "", func(c *gin.Context) { OK(c, "ok", nil) })
	if w.Code != http.StatusOK || !body.Success || body.Data != nil {
		t.Errorf("unexpected ok response %d %+v", w.Code, body)
	}
	if body.Meta == nil || body.Meta.RequestID == "" {
		t.Error("expected a generated request id")
	}
}

func TestErrorUsesAppErrorStatus(t *testing.T) {
	w, body := record(t, "", func(c *gin.Context) {
		Error(c, apperror.Wrap("Failed to get order: ", apperror.NewNotFoundError("Order")))
	})
	if w.Code != http.StatusNotFound || body.Success || body.Message != "Failed to get order: Order not found" {
		t.Errorf("unexpected error response %d %+v", w.Code, body)
	}

	w, _ = record(t, "", func(c *gin.Context) { Error(c, errors.New("db gone")) })
	if w.Code != http.StatusInternalServerError {
		t.Errorf("plain error status = %d, want 500", w.Code)
	}
}

func TestFixedStatusHelpers(t *testing.T) {
	cases := []struct {
		name  string
		write func(c *gin.Context)
		want  int
	}{
		{"unauthorized", func(c *gin.Context) { Unauthorized(c, "Missing token") }, http.StatusUnauthorized},
		{"bad request", func(c *gin.Context) { BadRequest(c, "Invalid id") }, http.StatusBadRequest},
		{"too many", func(c *gin.Context) { TooManyRequests(c, "Slow down") }, http.StatusTooManyRequests},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, body := record(t, "", tc.write)
			if w.Code != tc.want || body.Success || body.Message == "" {
				t.Errorf("got %d %+v, want %d", w.Code, body, tc.want)
			}
		})
	}
}

func TestFieldPath(t *testing.T) {
	if got := fieldPath("CreateQuoteRequest.Lines[0].Description"); got != "Lines[0].Description" {
		t.Errorf("fieldPath = %q", got)
	}
	if got := fieldPath("CompanyID"); got != "CompanyID" {
		t.Errorf("fieldPath without struct = %q", got)
	}
}
