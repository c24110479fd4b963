package handlers

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"hospital-ehr-server/internal/models"
	"hospital-ehr-server/internal/utils"
)

// DeviceHandler handles the wearable device registry for a patient.
type DeviceHandler struct {
	DB *gorm.DB
}

// NewDeviceHandler creates a new DeviceHandler.
func NewDeviceHandler(db *gorm.DB) *DeviceHandler {
	return &DeviceHandler{DB: db}
}

// ListDevices handles listing a patient's registered devices.
func (h *DeviceHandler) ListDevices(c *gin.Context) {
	patientID, ok := h.patientID(c)
	if !ok {
		return
	}

	var devices []models.Device
	if err := h.DB.Where("patient_id = ?", patientID).
		Order("created_at DESC").Find(&devices).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch devices: "+err.Error())
		return
	}

	utils.Success(c, "Devices fetched successfully", devices)
}

// RegisterDeviceRequest represents the request body for registering a
// wearable device to a patient.
type RegisterDeviceRequest struct {
	DeviceUniqueID  string   `json:"deviceUniqueId" binding:"required,max=255"`
	DeviceType      string   `json:"deviceType" binding:"required,oneof=Watch Ring EarClip Adapter PulseGlucometer"`
	DeviceName      string   `json:"deviceName" binding:"required,max=200"`
	Manufacturer    string   `json:"manufacturer" binding:"max=200"`
	ModelNumber     string   `json:"modelNumber" binding:"max=100"`
	FirmwareVersion string   `json:"firmwareVersion" binding:"max=50"`
	Capabilities    []string `json:"capabilities"`
	Notes           string   `json:"notes"`
}

// RegisterDevice handles registering a device and issuing its first API
// key. The plaintext key is returned once; only issue and revoke can change
// it afterwards.
func (h *DeviceHandler) RegisterDevice(c *gin.Context) {
	patientID, ok := h.patientID(c)
	if !ok {
		return
	}

	var req RegisterDeviceRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var existing int64
	if err := h.DB.Model(&models.Device{}).
		Where("device_unique_id = ?", req.DeviceUniqueID).Count(&existing).Error; err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}
	if existing > 0 {
		utils.ValidationFailed(c, map[string]string{"device_unique_id": "Device is already registered"})
		return
	}

	device := models.Device{
		PatientID:        patientID,
		DeviceUniqueID:   req.DeviceUniqueID,
		DeviceType:       models.DeviceType(req.DeviceType),
		DeviceName:       req.DeviceName,
		Manufacturer:     req.Manufacturer,
		ModelNumber:      req.ModelNumber,
		FirmwareVersion:  req.FirmwareVersion,
		Capabilities:     encodeCapabilities(req.Capabilities),
		Status:           models.DeviceActive,
		RegistrationDate: time.Now(),
		Notes:            req.Notes,
	}

	apiKey := models.DeviceAPIKey{
		APIKey:   newDeviceAPIKey(),
		IsActive: true,
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&device).Error; err != nil {
			return err
		}
		apiKey.DeviceID = device.DeviceID
		return tx.Create(&apiKey).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to register device: "+err.Error())
		return
	}

	utils.Created(c, "Device registered successfully", gin.H{
		"device": device,
		"apiKey": apiKey.APIKey,
	})
}

// GetDevice handles fetching one device with its recent readings.
func (h *DeviceHandler) GetDevice(c *gin.Context) {
	device, found := h.fetchDevice(c)
	if !found {
		return
	}

	var readings []models.DeviceReading
	if err := h.DB.Where("device_id = ?", device.DeviceID).
		Order("measured_at DESC").Limit(50).Find(&readings).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch device readings: "+err.Error())
		return
	}

	utils.Success(c, "Device fetched successfully", gin.H{
		"device":   device,
		"readings": readings,
	})
}

// UpdateDeviceStatusRequest represents the request body for device status
// changes.
// UpdateDeviceRequest represents the request body for editing a device's
// descriptive fields. The unique hardware identifier is immutable.
type UpdateDeviceRequest struct {
	DeviceName      string   `json:"deviceName" binding:"required,max=200"`
	Manufacturer    string   `json:"manufacturer" binding:"max=200"`
	ModelNumber     string   `json:"modelNumber" binding:"max=100"`
	FirmwareVersion string   `json:"firmwareVersion" binding:"max=50"`
	Capabilities    []string `json:"capabilities"`
	Notes           string   `json:"notes"`
}

// UpdateDevice handles editing a device's descriptive fields.
func (h *DeviceHandler) UpdateDevice(c *gin.Context) {
	device, found := h.fetchDevice(c)
	if !found {
		return
	}

	var req UpdateDeviceRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	device.DeviceName = req.DeviceName
	device.Manufacturer = req.Manufacturer
	device.ModelNumber = req.ModelNumber
	device.FirmwareVersion = req.FirmwareVersion
	device.Capabilities = encodeCapabilities(req.Capabilities)
	device.Notes = req.Notes

	if err := h.DB.Save(device).Error; err != nil {
		utils.InternalServerError(c, "Failed to update device: "+err.Error())
		return
	}

	utils.Success(c, "Device updated successfully", device)
}

// DeleteDevice handles removing a device registration entirely. Its API
// keys and readings go with it.
func (h *DeviceHandler) DeleteDevice(c *gin.Context) {
	device, found := h.fetchDevice(c)
	if !found {
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("device_id = ?", device.DeviceID).
			Delete(&models.DeviceAPIKey{}).Error; err != nil {
			return err
		}
		if err := tx.Where("device_id = ?", device.DeviceID).
			Delete(&models.DeviceReading{}).Error; err != nil {
			return err
		}
		return tx.Delete(device).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to delete device: "+err.Error())
		return
	}

	utils.Success(c, "Device deleted successfully", nil)
}

type UpdateDeviceStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=Active Inactive Maintenance Retired"`
	Notes  string `json:"notes"`
}

// UpdateDeviceStatus handles moving a device between lifecycle states.
// Retiring a device revokes its API keys.
func (h *DeviceHandler) UpdateDeviceStatus(c *gin.Context) {
	device, found := h.fetchDevice(c)
	if !found {
		return
	}

	var req UpdateDeviceStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	device.Status = models.DeviceStatus(req.Status)
	if req.Notes != "" {
		device.Notes = req.Notes
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(device).Error; err != nil {
			return err
		}
		if device.Status == models.DeviceRetired {
			return tx.Model(&models.DeviceAPIKey{}).
				Where("device_id = ?", device.DeviceID).
				Update("is_active", false).Error
		}
		return nil
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to update device: "+err.Error())
		return
	}

	utils.Success(c, "Device updated successfully", device)
}

// IssueAPIKey handles issuing a fresh API key for a device. Previous keys
// are revoked so only one key is live at a time.
func (h *DeviceHandler) IssueAPIKey(c *gin.Context) {
	device, found := h.fetchDevice(c)
	if !found {
		return
	}

	if device.Status == models.DeviceRetired {
		utils.BadRequest(c, "Cannot issue a key for a retired device")
		return
	}

	apiKey := models.DeviceAPIKey{
		DeviceID: device.DeviceID,
		APIKey:   newDeviceAPIKey(),
		IsActive: true,
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.DeviceAPIKey{}).
			Where("device_id = ? AND is_active = ?", device.DeviceID, true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Create(&apiKey).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to issue API key: "+err.Error())
		return
	}

	utils.Created(c, "API key issued successfully", gin.H{"apiKey": apiKey.APIKey})
}

// RevokeAPIKeys handles revoking every active key for a device.
func (h *DeviceHandler) RevokeAPIKeys(c *gin.Context) {
	device, found := h.fetchDevice(c)
	if !found {
		return
	}

	if err := h.DB.Model(&models.DeviceAPIKey{}).
		Where("device_id = ?", device.DeviceID).
		Update("is_active", false).Error; err != nil {
		utils.InternalServerError(c, "Failed to revoke API keys: "+err.Error())
		return
	}

	utils.Success(c, "API keys revoked successfully", nil)
}

func (h *DeviceHandler) fetchDevice(c *gin.Context) (*models.Device, bool) {
	patientID, ok := h.patientID(c)
	if !ok {
		return nil, false
	}

	id, err := strconv.ParseUint(c.Param("deviceId"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "Invalid device ID format")
		return nil, false
	}

	var device models.Device
	if err := h.DB.First(&device, "device_id = ? AND patient_id = ?", uint(id), patientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Device not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return nil, false
	}
	return &device, true
}

func (h *DeviceHandler) patientID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("patientId"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "Invalid patient ID format")
		return 0, false
	}

	if _, err := models.ResolveParty(h.DB, models.PartyRef{Type: models.PartyPatient, ID: uint(id)}); err != nil {
		utils.NotFound(c, "Patient not found")
		return 0, false
	}
	return uint(id), true
}

// encodeCapabilities stores the capability list as a JSON array literal.
func encodeCapabilities(capabilities []string) string {
	if len(capabilities) == 0 {
		return "[]"
	}
	encoded, err := json.Marshal(capabilities)
	if err != nil {
		return "[]"
	}
	return string(encoded)
}

// newDeviceAPIKey generates a 64-character opaque key.
func newDeviceAPIKey() string {
	return strings.ReplaceAll(uuid.New().String()+uuid.New().String(), "-", "")
}
