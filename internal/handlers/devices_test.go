package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospital-ehr-server/internal/models"
)

func registerTestDevice(t *testing.T, env *testEnv, patientID uint) (models.Device, string) {
	t.Helper()
	token := env.tokenForRole(t, models.RoleStaff, fmt.Sprintf("staff-dev-%d@test.local", patientID))

	rec := env.request(t, http.MethodPost,
		fmt.Sprintf("/api/v1/patients/%d/devices", patientID), token, map[string]interface{}{
			"deviceUniqueId": fmt.Sprintf("WATCH-%d-001", patientID),
			"deviceType":     "Watch",
			"deviceName":     "Pulse Watch S2",
			"capabilities":   []string{"heart_rate", "oxygen_saturation"},
		})
	require.Equal(t, http.StatusCreated, rec.Code)

	var payload struct {
		Device models.Device `json:"device"`
		APIKey string        `json:"apiKey"`
	}
	decodeData(t, rec, &payload)
	require.NotEmpty(t, payload.APIKey)
	return payload.Device, payload.APIKey
}

func TestRegisterDeviceIssuesKey(t *testing.T) {
	env := newTestEnv(t)
	patient := env.createPatient(t, "Alice", "Nguyen")

	device, key := registerTestDevice(t, env, patient.PatientID)
	assert.Equal(t, models.DeviceActive, device.Status)
	assert.Len(t, key, 64)

	var stored models.DeviceAPIKey
	require.NoError(t, env.DB.First(&stored, "device_id = ?", device.DeviceID).Error)
	assert.True(t, stored.IsActive)
}

func TestRegisterDeviceRejectsDuplicateUniqueID(t *testing.T) {
	env := newTestEnv(t)
	patient := env.createPatient(t, "Alice", "Nguyen")
	registerTestDevice(t, env, patient.PatientID)

	token := env.tokenForRole(t, models.RoleStaff, "staff2@test.local")
	rec := env.request(t, http.MethodPost,
		fmt.Sprintf("/api/v1/patients/%d/devices", patient.PatientID), token, map[string]interface{}{
			"deviceUniqueId": fmt.Sprintf("WATCH-%d-001", patient.PatientID),
			"deviceType":     "Watch",
			"deviceName":     "Second watch",
		})
	fields := decodeFields(t, rec)
	assert.Contains(t, fields, "device_unique_id")
}

func TestSubmitVitalsWithDeviceKey(t *testing.T) {
	env := newTestEnv(t)
	patient := env.createPatient(t, "Alice", "Nguyen")
	device, key := registerTestDevice(t, env, patient.PatientID)

	rec := env.request(t, http.MethodPost, "/api/v1/iot/vitals", key, map[string]interface{}{
		"heartRate":        72,
		"oxygenSaturation": 98.5,
		"batteryLevel":     81,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var reading models.DeviceReading
	require.NoError(t, env.DB.First(&reading, "device_id = ?", device.DeviceID).Error)
	require.NotNil(t, reading.HeartRate)
	assert.Equal(t, 72, *reading.HeartRate)
	assert.Equal(t, patient.PatientID, reading.PatientID)

	// Battery and sync time were refreshed on the device row.
	var stored models.Device
	require.NoError(t, env.DB.First(&stored, "device_id = ?", device.DeviceID).Error)
	require.NotNil(t, stored.BatteryLevel)
	assert.Equal(t, 81, *stored.BatteryLevel)
	assert.NotNil(t, stored.LastSync)
}

func TestSubmitVitalsRejectsBadKey(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodPost, "/api/v1/iot/vitals", "not-a-real-key",
		map[string]interface{}{"heartRate": 72})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRevokedKeyStopsWorking(t *testing.T) {
	env := newTestEnv(t)
	patient := env.createPatient(t, "Alice", "Nguyen")
	device, key := registerTestDevice(t, env, patient.PatientID)

	staffToken := env.tokenForRole(t, models.RoleStaff, "staff3@test.local")
	rec := env.request(t, http.MethodDelete,
		fmt.Sprintf("/api/v1/patients/%d/devices/%d/api-keys", patient.PatientID, device.DeviceID),
		staffToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(t, http.MethodPost, "/api/v1/iot/vitals", key,
		map[string]interface{}{"heartRate": 70})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIssueKeyRotatesPrevious(t *testing.T) {
	env := newTestEnv(t)
	patient := env.createPatient(t, "Alice", "Nguyen")
	device, oldKey := registerTestDevice(t, env, patient.PatientID)

	staffToken := env.tokenForRole(t, models.RoleStaff, "staff4@test.local")
	rec := env.request(t, http.MethodPost,
		fmt.Sprintf("/api/v1/patients/%d/devices/%d/api-keys", patient.PatientID, device.DeviceID),
		staffToken, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var payload struct {
		APIKey string `json:"apiKey"`
	}
	decodeData(t, rec, &payload)
	require.NotEqual(t, oldKey, payload.APIKey)

	// Old key is dead, new key works.
	rec = env.request(t, http.MethodPost, "/api/v1/iot/vitals", oldKey,
		map[string]interface{}{"heartRate": 70})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.request(t, http.MethodPost, "/api/v1/iot/vitals", payload.APIKey,
		map[string]interface{}{"heartRate": 70})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestUpdateDeviceFields(t *testing.T) {
	env := newTestEnv(t)
	patient := env.createPatient(t, "Alice", "Nguyen")
	device, _ := registerTestDevice(t, env, patient.PatientID)

	staffToken := env.tokenForRole(t, models.RoleStaff, "staff6@test.local")
	rec := env.request(t, http.MethodPut,
		fmt.Sprintf("/api/v1/patients/%d/devices/%d", patient.PatientID, device.DeviceID),
		staffToken, map[string]interface{}{
			"deviceName":      "Pulse Watch S2",
			"firmwareVersion": "2.1.0",
			"capabilities":    []string{"heart_rate"},
		})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.Device
	decodeData(t, rec, &updated)
	assert.Equal(t, "2.1.0", updated.FirmwareVersion)
	assert.Equal(t, device.DeviceUniqueID, updated.DeviceUniqueID)
}

func TestDeleteDeviceRemovesKeysAndReadings(t *testing.T) {
	env := newTestEnv(t)
	patient := env.createPatient(t, "Alice", "Nguyen")
	device, key := registerTestDevice(t, env, patient.PatientID)

	rec := env.request(t, http.MethodPost, "/api/v1/iot/vitals", key,
		map[string]interface{}{"heartRate": 72})
	require.Equal(t, http.StatusCreated, rec.Code)

	staffToken := env.tokenForRole(t, models.RoleStaff, "staff7@test.local")
	rec = env.request(t, http.MethodDelete,
		fmt.Sprintf("/api/v1/patients/%d/devices/%d", patient.PatientID, device.DeviceID),
		staffToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var keys, readings, devices int64
	require.NoError(t, env.DB.Model(&models.DeviceAPIKey{}).Where("device_id = ?", device.DeviceID).Count(&keys).Error)
	require.NoError(t, env.DB.Model(&models.DeviceReading{}).Where("device_id = ?", device.DeviceID).Count(&readings).Error)
	require.NoError(t, env.DB.Model(&models.Device{}).Where("device_id = ?", device.DeviceID).Count(&devices).Error)
	assert.Zero(t, keys)
	assert.Zero(t, readings)
	assert.Zero(t, devices)
}

func TestRetiredDeviceRefused(t *testing.T) {
	env := newTestEnv(t)
	patient := env.createPatient(t, "Alice", "Nguyen")
	device, key := registerTestDevice(t, env, patient.PatientID)

	staffToken := env.tokenForRole(t, models.RoleStaff, "staff5@test.local")
	rec := env.request(t, http.MethodPatch,
		fmt.Sprintf("/api/v1/patients/%d/devices/%d/status", patient.PatientID, device.DeviceID),
		staffToken, map[string]interface{}{"status": "Retired"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(t, http.MethodPost, "/api/v1/iot/vitals", key,
		map[string]interface{}{"heartRate": 70})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
