package routes_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/dealflow-api/internal/application/service"
	"github.com/sangkips/dealflow-api/internal/bootstrap"
	"github.com/sangkips/dealflow-api/internal/config"
	"github.com/sangkips/dealflow-api/internal/domain/entity"
	"github.com/sangkips/dealflow-api/internal/presentation/http/handler"
	"github.com/sangkips/dealflow-api/internal/presentation/http/middleware"
	"github.com/sangkips/dealflow-api/internal/presentation/http/routes"
	"github.com/sangkips/dealflow-api/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type apiEnv struct {
	router   *gin.Engine
	db       *gorm.DB
	pipeline *entity.Pipeline
	company  *entity.Company
	token    string
	userID   uuid.UUID
}

func setupAPI(t *testing.T) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, store := testutil.SetupStore(t)
	cfg := &config.Config{
		App:        config.AppConfig{Name: "dealflow-api"},
		Store:      config.StoreConfig{Driver: config.StoreDriverPostgres},
		Automation: config.AutomationConfig{DefaultPaymentDays: 14, DefaultTaxRatePct: 25},
	}
	log := zap.NewNop()
	services := bootstrap.NewServices(store, cfg.Automation, nil, log)

	router := routes.Setup(&routes.Handlers{
		Deal:    handler.NewDealHandler(services.Automation, services.Conversion, services.Activities),
		Quote:   handler.NewQuoteHandler(services.Quotes, services.Conversion),
		Order:   handler.NewOrderHandler(services.Orders, services.Conversion),
		Invoice: handler.NewInvoiceHandler(services.Invoices),
	}, &routes.Deps{
		JWTManager:      testutil.JWTManager(),
		Cfg:             cfg,
		IdempotencyRepo: store.Idempotency,
		Log:             log,
	})

	userID := uuid.New()
	return &apiEnv{
		router:   router,
		db:       db,
		pipeline: testutil.SeedSalesPipeline(t, db),
		company:  testutil.SeedCompany(t, db, 30),
		token:    testutil.GenerateTestToken(t, userID),
		userID:   userID,
	}
}

func (e *apiEnv) seedDeal(t *testing.T, stage string, value int64) *entity.Deal {
	t.Helper()
	return testutil.SeedDeal(t, e.db, e.company.ID, testutil.StageID(t, e.pipeline, stage), value)
}

func (e *apiEnv) do(method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	w := testutil.DoRequest(e.router, method, path, body, e.token)
	return w, testutil.ParseResponse(w)
}

func data(t *testing.T, resp map[string]interface{}) map[string]interface{} {
	t.Helper()
	d, ok := resp["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("response has no data object: %v", resp)
	}
	return d
}

func TestHealth(t *testing.T) {
	env := setupAPI(t)

	w := testutil.DoRequest(env.router, http.MethodGet, "/health", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	resp := testutil.ParseResponse(w)
	if resp["status"] != "ok" || resp["service"] != "dealflow-api" {
		t.Errorf("unexpected body: %v", resp)
	}
}

func TestAuthRequired(t *testing.T) {
	env := setupAPI(t)
	path := "/api/v1/deals/" + uuid.NewString() + "/quote"

	tests := []struct {
		name  string
		token string
	}{
		{"missing token", ""},
		{"garbage token", "not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testutil.DoRequest(env.router, http.MethodPost, path, nil, tt.token)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", w.Code)
			}
		})
	}
}

func TestCreateQuoteFromDealEndpoint(t *testing.T) {
	env := setupAPI(t)
	deal := env.seedDeal(t, "Prospecting", 80000)
	path := "/api/v1/deals/" + deal.ID.String() + "/quote"

	w, resp := env.do(http.MethodPost, path, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	quote := data(t, resp)["quote"].(map[string]interface{})
	if quote["total_minor"] != float64(100000) {
		t.Errorf("total_minor = %v, want 100000", quote["total_minor"])
	}

	w, resp = env.do(http.MethodPost, path, nil)
	if w.Code != http.StatusConflict || resp["message"] != service.DealHasQuoteMessage {
		t.Errorf("expected conflict, got %d %v", w.Code, resp["message"])
	}

	w, _ = env.do(http.MethodPost, "/api/v1/deals/not-a-uuid/quote", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed id, got %d", w.Code)
	}
}

func TestAutomationEndpoints(t *testing.T) {
	env := setupAPI(t)
	deal := env.seedDeal(t, "Negotiation", 0)

	w, _ := env.do(http.MethodPost, "/api/v1/deals/"+deal.ID.String()+"/automation", map[string]string{"trigger": "deal_exploded"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown trigger, got %d", w.Code)
	}

	w, resp := env.do(http.MethodPost, "/api/v1/deals/"+deal.ID.String()+"/automation", map[string]string{"trigger": "order_created"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	result := data(t, resp)
	if result["updated"] != true || result["to_stage"] != "Won" {
		t.Errorf("unexpected result: %v", result)
	}

	missing := uuid.NewString()
	w, resp = env.do(http.MethodPost, "/api/v1/automation/batch", map[string]interface{}{
		"items": []map[string]string{
			{"deal_id": deal.ID.String(), "trigger": "quote_declined"},
			{"deal_id": missing, "trigger": "order_created"},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	batch := data(t, resp)
	if batch["success"] != float64(2) || batch["failed"] != float64(0) {
		t.Errorf("unexpected tally: %v", batch)
	}

	w, resp = env.do(http.MethodGet, "/api/v1/deals/"+deal.ID.String()+"/activities?per_page=1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	page := data(t, resp)
	items := page["items"].([]interface{})
	pag := page["pagination"].(map[string]interface{})
	if len(items) != 1 || pag["total"] != float64(2) {
		t.Errorf("expected 1 of 2 activities, got %d of %v", len(items), pag["total"])
	}
	activity := items[0].(map[string]interface{})
	if activity["actor_user_id"] != env.userID.String() {
		t.Errorf("activity actor = %v, want %s", activity["actor_user_id"], env.userID)
	}
}

func TestDocumentLifecycleOverHTTP(t *testing.T) {
	env := setupAPI(t)
	deal := env.seedDeal(t, "Prospecting", 0)

	w, resp := env.do(http.MethodPost, "/api/v1/quotes", map[string]interface{}{
		"company_id": env.company.ID.String(),
		"deal_id":    deal.ID.String(),
		"lines": []map[string]interface{}{
			{"description": "Consulting", "qty": "3", "unit_minor": 20000, "tax_rate_pct": 25},
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create quote: %d %s", w.Code, w.Body.String())
	}
	quoteID := data(t, resp)["quote"].(map[string]interface{})["id"].(string)

	w, resp = env.do(http.MethodPut, "/api/v1/quotes/"+quoteID+"/status", map[string]string{"status": "accepted"})
	if w.Code != http.StatusOK {
		t.Fatalf("accept quote: %d %s", w.Code, w.Body.String())
	}
	orderID := data(t, resp)["conversion"].(map[string]interface{})["id"].(string)

	w, resp = env.do(http.MethodGet, "/api/v1/orders/"+orderID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get order: %d", w.Code)
	}
	if order := data(t, resp); order["total_minor"] != float64(75000) || len(order["lines"].([]interface{})) != 1 {
		t.Errorf("unexpected order: %v", order)
	}

	w, _ = env.do(http.MethodGet, "/api/v1/quotes/"+quoteID, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("converted quote should be gone, got %d", w.Code)
	}

	// Converting again is answered with the same order
	w, resp = env.do(http.MethodPost, "/api/v1/quotes/"+quoteID+"/convert", nil)
	if w.Code != http.StatusOK || data(t, resp)["id"] != orderID || data(t, resp)["existing"] != true {
		t.Errorf("expected existing order, got %d %v", w.Code, resp)
	}

	w, resp = env.do(http.MethodPost, "/api/v1/orders/"+orderID+"/convert", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("convert order: %d %s", w.Code, w.Body.String())
	}
	invoiceID := data(t, resp)["id"].(string)

	w, resp = env.do(http.MethodPost, "/api/v1/invoices/"+invoiceID+"/payments", map[string]int64{"amount_minor": 75000})
	if w.Code != http.StatusOK {
		t.Fatalf("record payment: %d %s", w.Code, w.Body.String())
	}
	invoice := data(t, resp)["invoice"].(map[string]interface{})
	if invoice["status"] != "paid" || invoice["effective_status"] != "paid" || invoice["balance_minor"] != float64(0) {
		t.Errorf("unexpected invoice: %v", invoice)
	}

	w, _ = env.do(http.MethodPost, "/api/v1/invoices/"+invoiceID+"/payments", map[string]int64{"amount_minor": 1})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 paying a paid invoice, got %d", w.Code)
	}

	var reloaded entity.Deal
	env.db.First(&reloaded, "id = ?", deal.ID)
	if reloaded.StageID != testutil.StageID(t, env.pipeline, "Won") {
		t.Error("deal should have reached Won")
	}
}

func TestIdempotencyKeyReplaysResponse(t *testing.T) {
	env := setupAPI(t)
	deal := env.seedDeal(t, "Prospecting", 1000)
	key := uuid.NewString()

	send := func(path string) *httptest.ResponseRecorder {
		req, _ := http.NewRequest(http.MethodPost, path, bytes.NewBuffer(nil))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+env.token)
		req.Header.Set(middleware.IdempotencyKeyHeader, key)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)
		return w
	}

	path := "/api/v1/deals/" + deal.ID.String() + "/quote"
	first := send(path)
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", first.Code, first.Body.String())
	}
	second := send(path)
	if second.Code != http.StatusCreated || second.Header().Get("X-Idempotency-Replayed") != "true" {
		t.Fatalf("expected replayed 201, got %d replayed=%q", second.Code, second.Header().Get("X-Idempotency-Replayed"))
	}

	var a, b map[string]interface{}
	json.Unmarshal(first.Body.Bytes(), &a)
	json.Unmarshal(second.Body.Bytes(), &b)
	if data(t, a)["quote"].(map[string]interface{})["id"] != data(t, b)["quote"].(map[string]interface{})["id"] {
		t.Error("replay must return the original quote")
	}

	var quotes int64
	env.db.Model(&entity.Quote{}).Where("deal_id = ?", deal.ID).Count(&quotes)
	if quotes != 1 {
		t.Errorf("expected one quote, got %d", quotes)
	}

	// The same key on another endpoint is refused
	other := env.seedDeal(t, "Prospecting", 0)
	if w := send("/api/v1/deals/" + other.ID.String() + "/quote"); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for reused key, got %d", w.Code)
	}
}

func TestRateLimiterRejectsBurst(t *testing.T) {
	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{RequestsPerSecond: 0.001, BurstSize: 2})
	defer limiter.Stop()

	router := testutil.SetupRouter()
	router.Use(limiter.Middleware())
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 3)
	for i := range codes {
		codes[i] = testutil.DoRequest(router, http.MethodGet, "/ping", nil, "").Code
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("unexpected status codes %v", codes)
	}
}

func TestCreateQuoteValidationErrors(t *testing.T) {
	env := setupAPI(t)

	w, resp := env.do(http.MethodPost, "/api/v1/quotes", map[string]interface{}{
		"lines": []map[string]interface{}{{"qty": 1, "unit_minor": 100}},
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
	fields := map[string]bool{}
	for _, e := range resp["errors"].([]interface{}) {
		fields[e.(map[string]interface{})["field"].(string)] = true
	}
	if !fields["CompanyID"] || !fields["Lines[0].Description"] {
		t.Errorf("unexpected field errors: %v", resp["errors"])
	}

	w, _ = env.do(http.MethodPost, "/api/v1/quotes", "not an object")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed body, got %d", w.Code)
	}
}
