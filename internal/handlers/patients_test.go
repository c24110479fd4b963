package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospital-ehr-server/internal/models"
)

func TestCreateAndFetchPatient(t *testing.T) {
	env := newTestEnv(t)
	token := env.tokenForRole(t, models.RoleStaff, "staff@test.local")

	rec := env.request(t, http.MethodPost, "/api/v1/patients", token, map[string]interface{}{
		"firstName":   "Alice",
		"lastName":    "Nguyen",
		"dateOfBirth": "1985-06-12T00:00:00Z",
		"gender":      "Female",
		"email":       "alice@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Patient
	decodeData(t, rec, &created)
	assert.NotZero(t, created.PatientID)
	assert.True(t, created.IsActive)

	rec = env.request(t, http.MethodGet,
		fmt.Sprintf("/api/v1/patients/%d", created.PatientID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var fetched models.Patient
	decodeData(t, rec, &fetched)
	assert.Equal(t, "Alice", fetched.FirstName)
	assert.Equal(t, "alice@example.com", fetched.Email)
}

func TestCreatePatientValidation(t *testing.T) {
	env := newTestEnv(t)
	token := env.tokenForRole(t, models.RoleStaff, "staff@test.local")

	rec := env.request(t, http.MethodPost, "/api/v1/patients", token, map[string]interface{}{
		"firstName": "Missing",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListPatientsFiltersInactive(t *testing.T) {
	env := newTestEnv(t)
	env.createPatient(t, "Alice", "Nguyen")
	gone := env.createPatient(t, "Gone", "Archived")
	require.NoError(t, env.DB.Model(gone).Update("is_active", false).Error)

	token := env.tokenForRole(t, models.RoleStaff, "staff@test.local")
	rec := env.request(t, http.MethodGet, "/api/v1/patients", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listing struct {
		Patients   []models.Patient `json:"patients"`
		TotalCount int64            `json:"totalCount"`
	}
	decodeData(t, rec, &listing)
	require.Len(t, listing.Patients, 1)
	assert.Equal(t, "Nguyen", listing.Patients[0].LastName)
	assert.EqualValues(t, 1, listing.TotalCount)
}

func TestSearchPatients(t *testing.T) {
	env := newTestEnv(t)
	env.createPatient(t, "Alice", "Nguyen")
	env.createPatient(t, "Omar", "Haddad")

	token := env.tokenForRole(t, models.RoleStaff, "staff@test.local")
	rec := env.request(t, http.MethodGet, "/api/v1/patients/search?q=Ngu", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var results []models.Patient
	decodeData(t, rec, &results)
	require.Len(t, results, 1)
	assert.Equal(t, "Alice", results[0].FirstName)
}

func TestDeactivatePatientKeepsRecord(t *testing.T) {
	env := newTestEnv(t)
	patient := env.createPatient(t, "Alice", "Nguyen")

	token := env.tokenForRole(t, models.RoleStaff, "staff@test.local")
	rec := env.request(t, http.MethodDelete,
		fmt.Sprintf("/api/v1/patients/%d", patient.PatientID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stored models.Patient
	require.NoError(t, env.DB.First(&stored, "patient_id = ?", patient.PatientID).Error)
	assert.False(t, stored.IsActive)

	// The directory entry still resolves for messaging.
	_, err := models.ResolveParty(env.DB, models.PartyRef{Type: models.PartyPatient, ID: patient.PatientID})
	assert.NoError(t, err)
}

func TestPatientRoutesRequireStaffRole(t *testing.T) {
	env := newTestEnv(t)
	patient := env.createPatient(t, "Alice", "Nguyen")
	patientToken := env.tokenForParty(t, models.RolePatient,
		models.PartyRef{Type: models.PartyPatient, ID: patient.PatientID})

	rec := env.request(t, http.MethodGet, "/api/v1/patients", patientToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
