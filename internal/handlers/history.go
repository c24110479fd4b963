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

// HistoryHandler handles a patient's medical history: allergies, past
// medical and surgical history, family history and social history.
type HistoryHandler struct {
	DB *gorm.DB
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(db *gorm.DB) *HistoryHandler {
	return &HistoryHandler{DB: db}
}

// GetHistory handles fetching the complete history section of a patient's
// chart in one response.
func (h *HistoryHandler) GetHistory(c *gin.Context) {
	patientID, ok := h.patientID(c)
	if !ok {
		return
	}

	var allergies []models.Allergy
	var medical []models.PastMedicalHistory
	var surgical []models.SurgicalHistory
	var family []models.FamilyHistory
	var social *models.SocialHistory

	if err := h.DB.Where("patient_id = ?", patientID).Find(&allergies).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch allergies: "+err.Error())
		return
	}
	if err := h.DB.Where("patient_id = ?", patientID).Find(&medical).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch medical history: "+err.Error())
		return
	}
	if err := h.DB.Where("patient_id = ?", patientID).Find(&surgical).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch surgical history: "+err.Error())
		return
	}
	if err := h.DB.Where("patient_id = ?", patientID).Find(&family).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch family history: "+err.Error())
		return
	}

	var socialRow models.SocialHistory
	err := h.DB.Where("patient_id = ?", patientID).First(&socialRow).Error
	switch {
	case err == nil:
		social = &socialRow
	case errors.Is(err, gorm.ErrRecordNotFound):
		// no social history recorded yet
	default:
		utils.InternalServerError(c, "Failed to fetch social history: "+err.Error())
		return
	}

	utils.Success(c, "Patient history fetched successfully", gin.H{
		"allergies":       allergies,
		"medicalHistory":  medical,
		"surgicalHistory": surgical,
		"familyHistory":   family,
		"socialHistory":   social,
	})
}

// AllergyRequest represents the request body for recording an allergy.
type AllergyRequest struct {
	Allergen string `json:"allergen" binding:"required,max=200"`
	Reaction string `json:"reaction" binding:"max=500"`
	Severity string `json:"severity" binding:"required,oneof=Mild Moderate Severe Life-threatening"`
}

// AddAllergy handles recording an allergy on a patient's chart.
func (h *HistoryHandler) AddAllergy(c *gin.Context) {
	patientID, ok := h.patientID(c)
	if !ok {
		return
	}

	var req AllergyRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	allergy := models.Allergy{
		PatientID: patientID,
		Allergen:  req.Allergen,
		Reaction:  req.Reaction,
		Severity:  models.AllergySeverity(req.Severity),
		IsActive:  true,
	}

	if err := h.DB.Create(&allergy).Error; err != nil {
		utils.InternalServerError(c, "Failed to record allergy: "+err.Error())
		return
	}

	utils.Created(c, "Allergy recorded successfully", allergy)
}

// ResolveAllergy handles marking an allergy inactive.
func (h *HistoryHandler) ResolveAllergy(c *gin.Context) {
	patientID, ok := h.patientID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("allergyId"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "Invalid allergy ID format")
		return
	}

	result := h.DB.Model(&models.Allergy{}).
		Where("allergy_id = ? AND patient_id = ?", uint(id), patientID).
		Update("is_active", false)
	if result.Error != nil {
		utils.InternalServerError(c, "Failed to update allergy: "+result.Error.Error())
		return
	}
	if result.RowsAffected == 0 {
		utils.NotFound(c, "Allergy not found")
		return
	}

	utils.Success(c, "Allergy marked inactive", nil)
}

// MedicalHistoryRequest represents the request body for a past condition.
type MedicalHistoryRequest struct {
	Condition     string     `json:"condition" binding:"required,max=300"`
	DiagnosedDate *time.Time `json:"diagnosedDate"`
	Notes         string     `json:"notes"`
}

// AddMedicalHistory handles recording a past medical condition.
func (h *HistoryHandler) AddMedicalHistory(c *gin.Context) {
	patientID, ok := h.patientID(c)
	if !ok {
		return
	}

	var req MedicalHistoryRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	entry := models.PastMedicalHistory{
		PatientID:     patientID,
		Condition:     req.Condition,
		DiagnosedDate: req.DiagnosedDate,
		Notes:         req.Notes,
	}

	if err := h.DB.Create(&entry).Error; err != nil {
		utils.InternalServerError(c, "Failed to record medical history: "+err.Error())
		return
	}

	utils.Created(c, "Medical history recorded successfully", entry)
}

// SurgicalHistoryRequest represents the request body for a past procedure.
type SurgicalHistoryRequest struct {
	Procedure   string     `json:"procedure" binding:"required,max=300"`
	SurgeryDate *time.Time `json:"surgeryDate"`
	Notes       string     `json:"notes"`
}

// AddSurgicalHistory handles recording a past surgical procedure.
func (h *HistoryHandler) AddSurgicalHistory(c *gin.Context) {
	patientID, ok := h.patientID(c)
	if !ok {
		return
	}

	var req SurgicalHistoryRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	entry := models.SurgicalHistory{
		PatientID:   patientID,
		Procedure:   req.Procedure,
		SurgeryDate: req.SurgeryDate,
		Notes:       req.Notes,
	}

	if err := h.DB.Create(&entry).Error; err != nil {
		utils.InternalServerError(c, "Failed to record surgical history: "+err.Error())
		return
	}

	utils.Created(c, "Surgical history recorded successfully", entry)
}

// FamilyHistoryRequest represents the request body for a family condition.
type FamilyHistoryRequest struct {
	Relationship string `json:"relationship" binding:"required,max=100"`
	Condition    string `json:"condition" binding:"required,max=300"`
	Notes        string `json:"notes"`
}

// AddFamilyHistory handles recording a condition in a patient's family.
func (h *HistoryHandler) AddFamilyHistory(c *gin.Context) {
	patientID, ok := h.patientID(c)
	if !ok {
		return
	}

	var req FamilyHistoryRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	entry := models.FamilyHistory{
		PatientID:    patientID,
		Relationship: req.Relationship,
		Condition:    req.Condition,
		Notes:        req.Notes,
	}

	if err := h.DB.Create(&entry).Error; err != nil {
		utils.InternalServerError(c, "Failed to record family history: "+err.Error())
		return
	}

	utils.Created(c, "Family history recorded successfully", entry)
}

// SocialHistoryRequest represents the request body for social history.
type SocialHistoryRequest struct {
	TobaccoUse string `json:"tobaccoUse" binding:"max=100"`
	AlcoholUse string `json:"alcoholUse" binding:"max=100"`
	DrugUse    string `json:"drugUse" binding:"max=100"`
	Occupation string `json:"occupation" binding:"max=200"`
	Notes      string `json:"notes"`
}

// UpsertSocialHistory handles recording or replacing a patient's social
// history. A patient carries at most one social history row.
func (h *HistoryHandler) UpsertSocialHistory(c *gin.Context) {
	patientID, ok := h.patientID(c)
	if !ok {
		return
	}

	var req SocialHistoryRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var entry models.SocialHistory
	err := h.DB.Where("patient_id = ?", patientID).First(&entry).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		entry = models.SocialHistory{
			PatientID:  patientID,
			TobaccoUse: req.TobaccoUse,
			AlcoholUse: req.AlcoholUse,
			DrugUse:    req.DrugUse,
			Occupation: req.Occupation,
			Notes:      req.Notes,
		}
		if err := h.DB.Create(&entry).Error; err != nil {
			utils.InternalServerError(c, "Failed to record social history: "+err.Error())
			return
		}
		utils.Created(c, "Social history recorded successfully", entry)
	case err != nil:
		utils.InternalServerError(c, "Database error: "+err.Error())
	default:
		entry.TobaccoUse = req.TobaccoUse
		entry.AlcoholUse = req.AlcoholUse
		entry.DrugUse = req.DrugUse
		entry.Occupation = req.Occupation
		entry.Notes = req.Notes
		if err := h.DB.Save(&entry).Error; err != nil {
			utils.InternalServerError(c, "Failed to update social history: "+err.Error())
			return
		}
		utils.Success(c, "Social history updated successfully", entry)
	}
}

func (h *HistoryHandler) patientID(c *gin.Context) (uint, bool) {
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
