package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-ehr-server/internal/models"
	"hospital-ehr-server/internal/utils"
)

const patientPageSize = 20

// PatientHandler handles patient registry requests.
type PatientHandler struct {
	DB *gorm.DB
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(db *gorm.DB) *PatientHandler {
	return &PatientHandler{DB: db}
}

// ListPatients handles the paginated patient listing. Only active patients
// are listed; an optional search term matches names, email and phone.
func (h *PatientHandler) ListPatients(c *gin.Context) {
	page := parsePage(c.Query("page"))

	query := h.DB.Model(&models.Patient{}).Where("is_active = ?", true)
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where(
			"first_name LIKE ? OR last_name LIKE ? OR email LIKE ? OR phone_number LIKE ?",
			like, like, like, like)
	}

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		utils.InternalServerError(c, "Failed to count patients: "+err.Error())
		return
	}

	var patients []models.Patient
	if err := query.
		Preload("Insurance").
		Preload("EmergencyContacts").
		Order("last_name").
		Limit(patientPageSize).
		Offset((page - 1) * patientPageSize).
		Find(&patients).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch patients: "+err.Error())
		return
	}

	utils.Success(c, "Patients fetched successfully", gin.H{
		"patients":   patients,
		"page":       page,
		"pageSize":   patientPageSize,
		"totalCount": totalCount,
	})
}

// SearchPatients handles the lightweight autocomplete search used by the
// front end. Returns at most 10 active patients.
func (h *PatientHandler) SearchPatients(c *gin.Context) {
	search := c.Query("q")
	if search == "" {
		utils.Success(c, "Patients fetched successfully", []models.Patient{})
		return
	}

	like := "%" + search + "%"
	var patients []models.Patient
	if err := h.DB.
		Where("is_active = ?", true).
		Where("first_name LIKE ? OR last_name LIKE ? OR email LIKE ? OR phone_number LIKE ?",
			like, like, like, like).
		Limit(10).
		Find(&patients).Error; err != nil {
		utils.InternalServerError(c, "Failed to search patients: "+err.Error())
		return
	}

	utils.Success(c, "Patients fetched successfully", patients)
}

// PatientRequest represents the request body for creating or updating a
// patient.
type PatientRequest struct {
	FirstName     string    `json:"firstName" binding:"required,max=100"`
	LastName      string    `json:"lastName" binding:"required,max=100"`
	MiddleName    string    `json:"middleName" binding:"max=100"`
	DateOfBirth   time.Time `json:"dateOfBirth" binding:"required"`
	Gender        string    `json:"gender" binding:"required,oneof=Male Female Other Unknown"`
	AddressStreet string    `json:"addressStreet" binding:"max=255"`
	AddressCity   string    `json:"addressCity" binding:"max=100"`
	AddressState  string    `json:"addressState" binding:"max=50"`
	AddressZip    string    `json:"addressZip" binding:"max=20"`
	PhoneNumber   string    `json:"phoneNumber" binding:"max=20"`
	Email         string    `json:"email" binding:"omitempty,email,max=255"`
}

// CreatePatient handles registering a new patient.
func (h *PatientHandler) CreatePatient(c *gin.Context) {
	var req PatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	patient := models.Patient{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		MiddleName:    req.MiddleName,
		DateOfBirth:   req.DateOfBirth,
		Gender:        req.Gender,
		AddressStreet: req.AddressStreet,
		AddressCity:   req.AddressCity,
		AddressState:  req.AddressState,
		AddressZip:    req.AddressZip,
		PhoneNumber:   req.PhoneNumber,
		Email:         req.Email,
		IsActive:      true,
	}

	if err := h.DB.Create(&patient).Error; err != nil {
		utils.InternalServerError(c, "Failed to create patient: "+err.Error())
		return
	}

	utils.Created(c, "Patient created successfully", patient)
}

// GetPatient handles fetching a patient with the full chart: encounters,
// allergies, prescriptions, histories, insurance and emergency contacts.
func (h *PatientHandler) GetPatient(c *gin.Context) {
	patient, found := h.fetchPatient(c)
	if !found {
		return
	}

	if err := h.DB.
		Preload("Encounters.Provider").
		Preload("Encounters.Department").
		Preload("Allergies").
		Preload("Prescriptions.Provider").
		Preload("Insurance").
		Preload("EmergencyContacts").
		Preload("Devices").
		First(patient, "patient_id = ?", patient.PatientID).Error; err != nil {
		utils.InternalServerError(c, "Failed to load patient chart: "+err.Error())
		return
	}

	utils.Success(c, "Patient fetched successfully", patient)
}

// UpdatePatient handles updating a patient's demographics.
func (h *PatientHandler) UpdatePatient(c *gin.Context) {
	patient, found := h.fetchPatient(c)
	if !found {
		return
	}

	var req PatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	patient.FirstName = req.FirstName
	patient.LastName = req.LastName
	patient.MiddleName = req.MiddleName
	patient.DateOfBirth = req.DateOfBirth
	patient.Gender = req.Gender
	patient.AddressStreet = req.AddressStreet
	patient.AddressCity = req.AddressCity
	patient.AddressState = req.AddressState
	patient.AddressZip = req.AddressZip
	patient.PhoneNumber = req.PhoneNumber
	patient.Email = req.Email

	if err := h.DB.Save(patient).Error; err != nil {
		utils.InternalServerError(c, "Failed to update patient: "+err.Error())
		return
	}

	utils.Success(c, "Patient updated successfully", patient)
}

// DeactivatePatient handles soft-deleting a patient. The record stays so
// historical encounters, bills and messages keep resolving.
func (h *PatientHandler) DeactivatePatient(c *gin.Context) {
	patient, found := h.fetchPatient(c)
	if !found {
		return
	}

	patient.IsActive = false
	if err := h.DB.Save(patient).Error; err != nil {
		utils.InternalServerError(c, "Failed to deactivate patient: "+err.Error())
		return
	}

	utils.Success(c, "Patient deactivated successfully", nil)
}

// fetchPatient loads the patient named by the :patientId path parameter.
func (h *PatientHandler) fetchPatient(c *gin.Context) (*models.Patient, bool) {
	id, err := strconv.ParseUint(c.Param("patientId"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "Invalid patient ID format")
		return nil, false
	}

	var patient models.Patient
	if err := h.DB.First(&patient, "patient_id = ?", uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return nil, false
	}
	return &patient, true
}
