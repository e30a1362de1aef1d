package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/dealflow-api/internal/domain/entity"
	"github.com/sangkips/dealflow-api/internal/domain/enum"
	domainRepo "github.com/sangkips/dealflow-api/internal/domain/repository"
	"github.com/sangkips/dealflow-api/internal/infrastructure/database"
	"github.com/sangkips/dealflow-api/internal/infrastructure/repository"
	"github.com/sangkips/dealflow-api/pkg/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Signing settings for test tokens
const (
	JWTSecret = "dealflow-test-secret"
	JWTIssuer = "dealflow-test"
)

// SetupTestDB opens a private in-memory sqlite database with every table
// migrated
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A unique name keeps parallel tests from sharing the shared cache
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// SetupStore returns the gorm store on a fresh test database
func SetupStore(t *testing.T) (*gorm.DB, *domainRepo.Store) {
	t.Helper()
	db := SetupTestDB(t)
	return db, repository.NewStore(db)
}

// SeedPipeline creates a pipeline with stages in the given order
func SeedPipeline(t *testing.T, db *gorm.DB, name string, stageNames ...string) *entity.Pipeline {
	t.Helper()
	pipeline := &entity.Pipeline{Name: name}
	for i, stageName := range stageNames {
		pipeline.Stages = append(pipeline.Stages, entity.Stage{Name: stageName, Position: i})
	}
	if err := db.Create(pipeline).Error; err != nil {
		t.Fatalf("seed pipeline: %v", err)
	}
	return pipeline
}

// SeedSalesPipeline creates the default sales pipeline
func SeedSalesPipeline(t *testing.T, db *gorm.DB) *entity.Pipeline {
	t.Helper()
	return SeedPipeline(t, db, database.DefaultPipelineName, database.DefaultStageNames...)
}

// StageID returns the id of the named stage of p
func StageID(t *testing.T, p *entity.Pipeline, name string) uuid.UUID {
	t.Helper()
	for _, stage := range p.Stages {
		if stage.Name == name {
			return stage.ID
		}
	}
	t.Fatalf("pipeline %s has no stage %s", p.Name, name)
	return uuid.Nil
}

// SeedCompany creates a company with the given payment terms
func SeedCompany(t *testing.T, db *gorm.DB, paymentDays int) *entity.Company {
	t.Helper()
	company := &entity.Company{Name: "Acme AB", PaymentDays: paymentDays}
	if err := db.Create(company).Error; err != nil {
		t.Fatalf("seed company: %v", err)
	}
	return company
}

// SeedDeal creates a deal in stageID
func SeedDeal(t *testing.T, db *gorm.DB, companyID, stageID uuid.UUID, expectedValueMinor int64) *entity.Deal {
	t.Helper()
	deal := &entity.Deal{
		Title:              "Fleet renewal",
		CompanyID:          companyID,
		StageID:            stageID,
		Currency:           "SEK",
		ExpectedValueMinor: expectedValueMinor,
	}
	if err := db.Create(deal).Error; err != nil {
		t.Fatalf("seed deal: %v", err)
	}
	return deal
}

// SeedProject creates an active project for a deal
func SeedProject(t *testing.T, db *gorm.DB, dealID uuid.UUID) *entity.Project {
	t.Helper()
	project := &entity.Project{DealID: dealID, Name: "Delivery", Status: enum.ProjectStatusActive}
	if err := db.Create(project).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}
	return project
}

// SetupRouter creates a gin test router
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

// JWTManager returns the manager that signs and checks test tokens
func JWTManager() *utils.JWTManager {
	return utils.NewJWTManager(JWTSecret, JWTIssuer, time.Hour)
}

// GenerateTestToken creates a valid access token for userID
func GenerateTestToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, err := JWTManager().GenerateAccessToken(userID, "sales@test.com", []string{"sales"})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

// DoRequest executes an HTTP request against the test router
func DoRequest(r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse parses the JSON response envelope into a map
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}
