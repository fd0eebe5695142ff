package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Govind-619/DomainDesk/config"
	"github.com/Govind-619/DomainDesk/models"
	"github.com/Govind-619/DomainDesk/utils"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestPassword is the plain password of users made by CreateTestUser
const TestPassword = "Test123!"

// NewTestDB opens a private in-memory database with the schema migrated.
// A single connection keeps the memory database alive and serialises writers.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.Migrate(db))
	return db
}

// CreateTestUser creates an active user with TestPassword
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	hash, err := utils.HashPassword(TestPassword)
	require.NoError(t, err)

	suffix := uuid.NewString()[:8]
	user := &models.User{
		Username: "operator-" + suffix,
		Email:    "operator-" + suffix + "@example.com",
		FullName: "Test Operator",
		Password: hash,
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error, "failed to create test user")
	return user
}

// CreateTestCustomer creates an active customer
func CreateTestCustomer(t *testing.T, db *gorm.DB) *models.Customer {
	t.Helper()

	suffix := uuid.NewString()[:8]
	customer := &models.Customer{
		Name:     "Acme " + suffix,
		Email:    "billing-" + suffix + "@acme.test",
		Company:  "Acme Corp",
		IsActive: true,
	}
	require.NoError(t, db.Create(customer).Error, "failed to create test customer")
	return customer
}

// CreateTestProject creates an active project owned by createdBy. Options
// adjust the project before it is stored.
func CreateTestProject(t *testing.T, db *gorm.DB, createdBy *models.User, opts ...func(*models.Project)) *models.Project {
	t.Helper()

	project := &models.Project{
		Title:        "Corporate Website",
		CreatedByID:  createdBy.ID,
		Status:       models.ProjectStatusInProgress,
		StartDate:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		DomainName:   "example.com",
		IsActive:     true,
		RenewalPrice: models.DefaultRenewalPrice,
	}
	for _, opt := range opts {
		opt(project)
	}
	require.NoError(t, db.Omit("Customer", "CreatedBy", "RenewalHistory").Create(project).Error, "failed to create test project")
	return project
}

// Date is a UTC midnight timestamp pointer
func Date(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

// TestRequest represents a test HTTP request
type TestRequest struct {
	Method  string
	Path    string
	Body    interface{}
	Token   string
	Headers map[string]string
}

// TestResponse represents a decoded test HTTP response
type TestResponse struct {
	StatusCode int
	Body       map[string]interface{}
}

// Data returns the envelope's data object
func (r TestResponse) Data() map[string]interface{} {
	data, _ := r.Body["data"].(map[string]interface{})
	return data
}

// Message returns the envelope's message
func (r TestResponse) Message() string {
	msg, _ := r.Body["message"].(string)
	return msg
}

// MakeTestRequest serves req through router and decodes the JSON response
func MakeTestRequest(t *testing.T, router *gin.Engine, req TestRequest) TestResponse {
	t.Helper()

	var body []byte
	if req.Body != nil {
		switch b := req.Body.(type) {
		case string:
			body = []byte(b)
		default:
			var err error
			body, err = json.Marshal(b)
			require.NoError(t, err, "failed to marshal request body")
		}
	}

	httpReq, err := http.NewRequest(req.Method, req.Path, bytes.NewBuffer(body))
	require.NoError(t, err)
	httpReq.Header.Set("Content-Type", "application/json")
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httpReq)

	var responseBody map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &responseBody), "response is not JSON: %s", w.Body.String())
	}
	return TestResponse{StatusCode: w.Code, Body: responseBody}
}
