package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-ehr-server/internal/models"
	"hospital-ehr-server/internal/utils"
)

// IoTHandler handles vitals submitted by registered wearable devices. The
// endpoints authenticate with a device API key instead of a user token.
type IoTHandler struct {
	DB *gorm.DB
}

// NewIoTHandler creates a new IoTHandler.
func NewIoTHandler(db *gorm.DB) *IoTHandler {
	return &IoTHandler{DB: db}
}

// SubmitVitalsRequest represents a vitals payload pushed by a device.
type SubmitVitalsRequest struct {
	HeartRate              *int       `json:"heartRate" binding:"omitempty,min=20,max=300"`
	BloodPressureSystolic  *int       `json:"bloodPressureSystolic" binding:"omitempty,min=40,max=300"`
	BloodPressureDiastolic *int       `json:"bloodPressureDiastolic" binding:"omitempty,min=20,max=200"`
	Temperature            *float64   `json:"temperature"`
	TemperatureUnit        string     `json:"temperatureUnit" binding:"omitempty,oneof=C F"`
	RespiratoryRate        *int       `json:"respiratoryRate" binding:"omitempty,min=4,max=80"`
	OxygenSaturation       *float64   `json:"oxygenSaturation" binding:"omitempty,min=0,max=100"`
	Glucose                *float64   `json:"glucose" binding:"omitempty,min=0"`
	Weight                 *float64   `json:"weight" binding:"omitempty,gt=0"`
	WeightUnit             string     `json:"weightUnit" binding:"omitempty,oneof=kg lbs"`
	SignalQuality          *int       `json:"signalQuality" binding:"omitempty,min=0,max=100"`
	BatteryLevel           *int       `json:"batteryLevel" binding:"omitempty,min=0,max=100"`
	MeasuredAt             *time.Time `json:"measuredAt"`
}

// SubmitVitals handles ingesting a reading from an authenticated device.
// The device's battery level and last sync time are refreshed alongside.
func (h *IoTHandler) SubmitVitals(c *gin.Context) {
	device, ok := h.authenticateDevice(c)
	if !ok {
		return
	}

	var req SubmitVitalsRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	measuredAt := time.Now()
	if req.MeasuredAt != nil {
		measuredAt = *req.MeasuredAt
	}

	reading := models.DeviceReading{
		DeviceID:               device.DeviceID,
		PatientID:              device.PatientID,
		HeartRate:              req.HeartRate,
		BloodPressureSystolic:  req.BloodPressureSystolic,
		BloodPressureDiastolic: req.BloodPressureDiastolic,
		Temperature:            req.Temperature,
		TemperatureUnit:        req.TemperatureUnit,
		RespiratoryRate:        req.RespiratoryRate,
		OxygenSaturation:       req.OxygenSaturation,
		Glucose:                req.Glucose,
		Weight:                 req.Weight,
		WeightUnit:             req.WeightUnit,
		SignalQuality:          req.SignalQuality,
		MeasuredAt:             measuredAt,
	}

	now := time.Now()
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&reading).Error; err != nil {
			return err
		}
		device.LastSync = &now
		if req.BatteryLevel != nil {
			device.BatteryLevel = req.BatteryLevel
		}
		return tx.Save(device).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to store reading: "+err.Error())
		return
	}

	utils.Created(c, "Reading stored successfully", gin.H{
		"readingId":  reading.ReadingID,
		"measuredAt": reading.MeasuredAt,
	})
}

// DeviceStatus handles a device polling its own registration state, for
// example to learn it has been retired.
func (h *IoTHandler) DeviceStatus(c *gin.Context) {
	device, ok := h.authenticateDevice(c)
	if !ok {
		return
	}

	utils.Success(c, "Device status fetched successfully", gin.H{
		"deviceId":   device.DeviceID,
		"deviceName": device.DeviceName,
		"status":     device.Status,
		"lastSync":   device.LastSync,
	})
}

// authenticateDevice resolves the Bearer API key to an active device key
// and its device. The key's last-used time is stamped on success.
func (h *IoTHandler) authenticateDevice(c *gin.Context) (*models.Device, bool) {
	header := c.GetHeader("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		utils.Unauthorized(c, "Device API key required")
		return nil, false
	}
	key := strings.TrimPrefix(header, "Bearer ")

	var apiKey models.DeviceAPIKey
	err := h.DB.Preload("Device").
		Where("api_key = ? AND is_active = ?", key, true).
		First(&apiKey).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Unauthorized(c, "Invalid or revoked device API key")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return nil, false
	}

	if apiKey.Device == nil || apiKey.Device.Status == models.DeviceRetired {
		utils.Unauthorized(c, "Device is retired")
		return nil, false
	}

	now := time.Now()
	if err := h.DB.Model(&models.DeviceAPIKey{}).
		Where("key_id = ?", apiKey.KeyID).
		Update("last_used_at", now).Error; err != nil {
		utils.InternalServerError(c, "Failed to stamp device API key: "+err.Error())
		return nil, false
	}

	return apiKey.Device, true
}
