package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hospital-ehr-server/internal/config"
	"hospital-ehr-server/internal/models"
	"hospital-ehr-server/internal/routes"
	"hospital-ehr-server/internal/utils"
)

type testEnv struct {
	DB     *gorm.DB
	Router *gin.Engine
	Cfg    *config.Config
}

// newTestEnv wires a fresh in-memory database and the full route table.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))

	cfg := &config.Config{
		Port:                      "0",
		Environment:               "test",
		JWTSecret:                 "test-jwt-secret",
		JWTRefreshSecret:          "test-refresh-secret",
		JWTExpirationMinutes:      15,
		JWTRefreshExpirationHours: 168,
	}

	router := gin.New()
	routes.SetupRoutes(router, db, cfg)

	return &testEnv{DB: db, Router: router, Cfg: cfg}
}

func (e *testEnv) createPatient(t *testing.T, first, last string) *models.Patient {
	t.Helper()
	patient := &models.Patient{
		FirstName:   first,
		LastName:    last,
		DateOfBirth: time.Date(1985, 6, 12, 0, 0, 0, 0, time.UTC),
		Gender:      models.GenderFemale,
		IsActive:    true,
	}
	require.NoError(t, e.DB.Create(patient).Error)
	return patient
}

func (e *testEnv) createProvider(t *testing.T, first, last string) *models.Provider {
	t.Helper()
	provider := &models.Provider{
		FirstName: first,
		LastName:  last,
		Specialty: "Internal Medicine",
		IsActive:  true,
	}
	require.NoError(t, e.DB.Create(provider).Error)
	return provider
}

func (e *testEnv) createDepartment(t *testing.T, name string) *models.Department {
	t.Helper()
	department := &models.Department{Name: name, IsActive: true}
	require.NoError(t, e.DB.Create(department).Error)
	return department
}

// tokenForParty mints an access token for an account linked to the given
// directory record.
func (e *testEnv) tokenForParty(t *testing.T, role models.Role, ref models.PartyRef) string {
	t.Helper()
	account := &models.UserAccount{
		Email:     string(ref.Type) + "-" + uuid.New().String() + "@test.local",
		Role:      role,
		PartyType: &ref.Type,
		PartyID:   &ref.ID,
		IsActive:  true,
	}
	require.NoError(t, account.SetPassword("password123"))
	require.NoError(t, e.DB.Create(account).Error)

	access, _, err := utils.GenerateTokens(account, e.Cfg)
	require.NoError(t, err)
	return access
}

// tokenForRole mints an access token for an account with no party link.
func (e *testEnv) tokenForRole(t *testing.T, role models.Role, email string) string {
	t.Helper()
	account := &models.UserAccount{Email: email, Role: role, IsActive: true}
	require.NoError(t, account.SetPassword("password123"))
	require.NoError(t, e.DB.Create(account).Error)

	access, _, err := utils.GenerateTokens(account, e.Cfg)
	require.NoError(t, err)
	return access
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.Router.ServeHTTP(rec, req)
	return rec
}

// decodeData unmarshals the data field of the response envelope into out.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var envelope struct {
		Status  int               `json:"status"`
		Message string            `json:"message"`
		Data    json.RawMessage   `json:"data"`
		Error   string            `json:"error"`
		Fields  map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	if out != nil {
		require.NoError(t, json.Unmarshal(envelope.Data, out))
	}
}

// decodeFields returns the field-level validation errors of a 400 response.
func decodeFields(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var envelope struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Fields
}
