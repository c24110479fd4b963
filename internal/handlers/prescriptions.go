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

// PrescriptionHandler handles prescription requests.
type PrescriptionHandler struct {
	DB *gorm.DB
}

// NewPrescriptionHandler creates a new PrescriptionHandler.
func NewPrescriptionHandler(db *gorm.DB) *PrescriptionHandler {
	return &PrescriptionHandler{DB: db}
}

const prescriptionPageSize = 20

// ListPrescriptions handles listing prescriptions, newest first. Filters by
// patient, provider or status when the query parameters are present.
func (h *PrescriptionHandler) ListPrescriptions(c *gin.Context) {
	page := parsePage(c.Query("page"))
	query := h.DB.Model(&models.Prescription{})

	if patientID := c.Query("patient_id"); patientID != "" {
		id, err := strconv.ParseUint(patientID, 10, 32)
		if err != nil {
			utils.BadRequest(c, "Invalid patient ID format")
			return
		}
		query = query.Where("patient_id = ?", uint(id))
	}
	if providerID := c.Query("provider_id"); providerID != "" {
		id, err := strconv.ParseUint(providerID, 10, 32)
		if err != nil {
			utils.BadRequest(c, "Invalid provider ID format")
			return
		}
		query = query.Where("provider_id = ?", uint(id))
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		utils.InternalServerError(c, "Failed to count prescriptions: "+err.Error())
		return
	}

	var prescriptions []models.Prescription
	if err := query.
		Preload("Patient").
		Preload("Provider").
		Order("prescribed_date DESC").
		Limit(prescriptionPageSize).
		Offset((page - 1) * prescriptionPageSize).
		Find(&prescriptions).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch prescriptions: "+err.Error())
		return
	}

	utils.Success(c, "Prescriptions fetched successfully", gin.H{
		"prescriptions": prescriptions,
		"page":          page,
		"pageSize":      prescriptionPageSize,
		"totalCount":    totalCount,
	})
}

// PrescriptionRequest represents the request body for writing a
// prescription.
type PrescriptionRequest struct {
	PatientID       uint       `json:"patientId" binding:"required"`
	ProviderID      uint       `json:"providerId" binding:"required"`
	EncounterID     *uint      `json:"encounterId"`
	MedicationName  string     `json:"medicationName" binding:"required,max=300"`
	Dosage          string     `json:"dosage" binding:"required,max=200"`
	Frequency       string     `json:"frequency" binding:"required,max=200"`
	Duration        string     `json:"duration" binding:"max=200"`
	Quantity        *int       `json:"quantity" binding:"omitempty,min=1"`
	Refills         *int       `json:"refills" binding:"omitempty,min=0"`
	Route           string     `json:"route" binding:"max=100"`
	Instructions    string     `json:"instructions"`
	PharmacyName    string     `json:"pharmacyName" binding:"max=200"`
	PharmacyAddress string     `json:"pharmacyAddress" binding:"max=500"`
	PharmacyPhone   string     `json:"pharmacyPhone" binding:"max=20"`
	StartDate       *time.Time `json:"startDate"`
	EndDate         *time.Time `json:"endDate"`
	Notes           string     `json:"notes"`
}

// CreatePrescription handles writing a new prescription. The patient and
// prescribing provider must exist; linking an encounter is optional.
func (h *PrescriptionHandler) CreatePrescription(c *gin.Context) {
	var req PrescriptionRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	fields := map[string]string{}
	if _, err := models.ResolveParty(h.DB, models.PartyRef{Type: models.PartyPatient, ID: req.PatientID}); err != nil {
		fields["patient_id"] = "Patient does not exist"
	}
	if _, err := models.ResolveParty(h.DB, models.PartyRef{Type: models.PartyProvider, ID: req.ProviderID}); err != nil {
		fields["provider_id"] = "Provider does not exist"
	}
	if req.EncounterID != nil {
		var count int64
		if err := h.DB.Model(&models.Encounter{}).
			Where("encounter_id = ?", *req.EncounterID).Count(&count).Error; err != nil {
			utils.InternalServerError(c, "Database error: "+err.Error())
			return
		}
		if count == 0 {
			fields["encounter_id"] = "Encounter does not exist"
		}
	}
	if len(fields) > 0 {
		utils.ValidationFailed(c, fields)
		return
	}

	prescription := models.Prescription{
		PatientID:       req.PatientID,
		ProviderID:      req.ProviderID,
		EncounterID:     req.EncounterID,
		MedicationName:  req.MedicationName,
		Dosage:          req.Dosage,
		Frequency:       req.Frequency,
		Duration:        req.Duration,
		Quantity:        req.Quantity,
		Refills:         req.Refills,
		Route:           req.Route,
		Instructions:    req.Instructions,
		PharmacyName:    req.PharmacyName,
		PharmacyAddress: req.PharmacyAddress,
		PharmacyPhone:   req.PharmacyPhone,
		PrescribedDate:  time.Now(),
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		Status:          models.PrescriptionActive,
		Notes:           req.Notes,
	}

	if err := h.DB.Create(&prescription).Error; err != nil {
		utils.InternalServerError(c, "Failed to create prescription: "+err.Error())
		return
	}

	utils.Created(c, "Prescription created successfully", prescription)
}

// GetPrescription handles fetching a single prescription.
func (h *PrescriptionHandler) GetPrescription(c *gin.Context) {
	prescription, found := h.fetchPrescription(c)
	if !found {
		return
	}

	if err := h.DB.
		Preload("Patient").
		Preload("Provider").
		Preload("Encounter").
		First(prescription, "prescription_id = ?", prescription.PrescriptionID).Error; err != nil {
		utils.InternalServerError(c, "Failed to load prescription: "+err.Error())
		return
	}

	utils.Success(c, "Prescription fetched successfully", prescription)
}

// UpdatePrescriptionRequest represents the request body for amending a
// prescription's status or schedule.
type UpdatePrescriptionRequest struct {
	Status  string     `json:"status" binding:"omitempty,oneof=Active Pending Completed Discontinued Cancelled"`
	EndDate *time.Time `json:"endDate"`
	Notes   string     `json:"notes"`
}

// UpdatePrescription handles amending a prescription.
func (h *PrescriptionHandler) UpdatePrescription(c *gin.Context) {
	prescription, found := h.fetchPrescription(c)
	if !found {
		return
	}

	var req UpdatePrescriptionRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if req.Status != "" {
		prescription.Status = models.PrescriptionStatus(req.Status)
	}
	if req.EndDate != nil {
		prescription.EndDate = req.EndDate
	}
	if req.Notes != "" {
		prescription.Notes = req.Notes
	}

	if err := h.DB.Save(prescription).Error; err != nil {
		utils.InternalServerError(c, "Failed to update prescription: "+err.Error())
		return
	}

	utils.Success(c, "Prescription updated successfully", prescription)
}

// DiscontinuePrescription handles stopping an active prescription. The
// record is kept with a Discontinued status and an end date of today.
func (h *PrescriptionHandler) DiscontinuePrescription(c *gin.Context) {
	prescription, found := h.fetchPrescription(c)
	if !found {
		return
	}

	if prescription.Status == models.PrescriptionDiscontinued {
		utils.BadRequest(c, "Prescription is already discontinued")
		return
	}

	now := time.Now()
	prescription.Status = models.PrescriptionDiscontinued
	prescription.EndDate = &now

	if err := h.DB.Save(prescription).Error; err != nil {
		utils.InternalServerError(c, "Failed to discontinue prescription: "+err.Error())
		return
	}

	utils.Success(c, "Prescription discontinued successfully", prescription)
}

func (h *PrescriptionHandler) fetchPrescription(c *gin.Context) (*models.Prescription, bool) {
	id, err := strconv.ParseUint(c.Param("prescriptionId"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "Invalid prescription ID format")
		return nil, false
	}

	var prescription models.Prescription
	if err := h.DB.First(&prescription, "prescription_id = ?", uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Prescription not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return nil, false
	}
	return &prescription, true
}
