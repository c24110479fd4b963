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

// EncounterHandler handles patient visit requests.
type EncounterHandler struct {
	DB *gorm.DB
}

// NewEncounterHandler creates a new EncounterHandler.
func NewEncounterHandler(db *gorm.DB) *EncounterHandler {
	return &EncounterHandler{DB: db}
}

const encounterPageSize = 20

// ListEncounters handles listing encounters, newest first. Filters by
// patient, provider or status when the query parameters are present.
func (h *EncounterHandler) ListEncounters(c *gin.Context) {
	page := parsePage(c.Query("page"))
	query := h.DB.Model(&models.Encounter{})

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
	if date := c.Query("date"); date != "" {
		day, err := time.Parse("2006-01-02", date)
		if err != nil {
			utils.BadRequest(c, "Invalid date format, expected YYYY-MM-DD")
			return
		}
		query = query.Where("DATE(encounter_date) = ?", day.Format("2006-01-02"))
	}

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		utils.InternalServerError(c, "Failed to count encounters: "+err.Error())
		return
	}

	var encounters []models.Encounter
	if err := query.
		Preload("Patient").
		Preload("Provider").
		Preload("Department").
		Order("encounter_date DESC").
		Limit(encounterPageSize).
		Offset((page - 1) * encounterPageSize).
		Find(&encounters).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch encounters: "+err.Error())
		return
	}

	utils.Success(c, "Encounters fetched successfully", gin.H{
		"encounters": encounters,
		"page":       page,
		"pageSize":   encounterPageSize,
		"totalCount": totalCount,
	})
}

// CreateEncounterRequest represents the request body for starting a visit.
type CreateEncounterRequest struct {
	PatientID      uint       `json:"patientId" binding:"required"`
	ProviderID     uint       `json:"providerId" binding:"required"`
	DepartmentID   uint       `json:"departmentId" binding:"required"`
	EncounterDate  *time.Time `json:"encounterDate"`
	EncounterType  string     `json:"encounterType" binding:"required,oneof=Inpatient Outpatient Emergency Telehealth Follow-up"`
	ChiefComplaint string     `json:"chiefComplaint"`
}

// CreateEncounter handles starting a new visit. The referenced patient,
// provider and department must all exist; an initial chief complaint may be
// recorded in the same request.
func (h *EncounterHandler) CreateEncounter(c *gin.Context) {
	var req CreateEncounterRequest
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
	var deptCount int64
	if err := h.DB.Model(&models.Department{}).
		Where("department_id = ?", req.DepartmentID).Count(&deptCount).Error; err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}
	if deptCount == 0 {
		fields["department_id"] = "Department does not exist"
	}
	if len(fields) > 0 {
		utils.ValidationFailed(c, fields)
		return
	}

	encounterDate := time.Now()
	if req.EncounterDate != nil {
		encounterDate = *req.EncounterDate
	}

	encounter := models.Encounter{
		PatientID:     req.PatientID,
		ProviderID:    req.ProviderID,
		DepartmentID:  req.DepartmentID,
		EncounterDate: encounterDate,
		EncounterType: models.EncounterType(req.EncounterType),
		Status:        models.EncounterInProgress,
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&encounter).Error; err != nil {
			return err
		}
		if req.ChiefComplaint != "" {
			complaint := models.ChiefComplaint{
				EncounterID: encounter.EncounterID,
				Complaint:   req.ChiefComplaint,
			}
			if err := tx.Create(&complaint).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to create encounter: "+err.Error())
		return
	}

	utils.Created(c, "Encounter created successfully", encounter)
}

// GetEncounter handles fetching an encounter with its full clinical
// documentation.
func (h *EncounterHandler) GetEncounter(c *gin.Context) {
	encounter, found := h.fetchEncounter(c)
	if !found {
		return
	}

	if err := h.DB.
		Preload("Patient").
		Preload("Provider").
		Preload("Department").
		Preload("ChiefComplaints").
		Preload("VitalSigns").
		Preload("Diagnoses").
		Preload("Prescriptions").
		Preload("PhysicalExamination").
		Preload("ClinicalImpression").
		Preload("TreatmentPlan.Creator").
		First(encounter, "encounter_id = ?", encounter.EncounterID).Error; err != nil {
		utils.InternalServerError(c, "Failed to load encounter: "+err.Error())
		return
	}

	utils.Success(c, "Encounter fetched successfully", encounter)
}

// UpdateEncounterRequest represents the request body for updating a visit.
type UpdateEncounterRequest struct {
	EncounterDate *time.Time `json:"encounterDate"`
	EncounterType string     `json:"encounterType" binding:"omitempty,oneof=Inpatient Outpatient Emergency Telehealth Follow-up"`
	Status        string     `json:"status" binding:"omitempty,oneof=Scheduled 'In Progress' Completed Cancelled"`
}

// UpdateEncounter handles changing a visit's date, type or status.
func (h *EncounterHandler) UpdateEncounter(c *gin.Context) {
	encounter, found := h.fetchEncounter(c)
	if !found {
		return
	}

	var req UpdateEncounterRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if req.EncounterDate != nil {
		encounter.EncounterDate = *req.EncounterDate
	}
	if req.EncounterType != "" {
		encounter.EncounterType = models.EncounterType(req.EncounterType)
	}
	if req.Status != "" {
		encounter.Status = models.EncounterStatus(req.Status)
	}

	if err := h.DB.Save(encounter).Error; err != nil {
		utils.InternalServerError(c, "Failed to update encounter: "+err.Error())
		return
	}

	utils.Success(c, "Encounter updated successfully", encounter)
}

// CompleteEncounter handles marking a visit as completed.
func (h *EncounterHandler) CompleteEncounter(c *gin.Context) {
	encounter, found := h.fetchEncounter(c)
	if !found {
		return
	}

	if encounter.Status == models.EncounterCompleted {
		utils.BadRequest(c, "Encounter is already completed")
		return
	}

	encounter.Status = models.EncounterCompleted
	if err := h.DB.Save(encounter).Error; err != nil {
		utils.InternalServerError(c, "Failed to complete encounter: "+err.Error())
		return
	}

	utils.Success(c, "Encounter completed successfully", encounter)
}

// AddChiefComplaintRequest represents the request body for recording a
// chief complaint.
type AddChiefComplaintRequest struct {
	Complaint string `json:"complaint" binding:"required"`
}

// AddChiefComplaint handles recording an additional chief complaint on an
// open encounter.
func (h *EncounterHandler) AddChiefComplaint(c *gin.Context) {
	encounter, found := h.fetchEncounter(c)
	if !found {
		return
	}

	var req AddChiefComplaintRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	complaint := models.ChiefComplaint{
		EncounterID: encounter.EncounterID,
		Complaint:   req.Complaint,
	}
	if err := h.DB.Create(&complaint).Error; err != nil {
		utils.InternalServerError(c, "Failed to record chief complaint: "+err.Error())
		return
	}

	utils.Created(c, "Chief complaint recorded successfully", complaint)
}

func (h *EncounterHandler) fetchEncounter(c *gin.Context) (*models.Encounter, bool) {
	id, err := strconv.ParseUint(c.Param("encounterId"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "Invalid encounter ID format")
		return nil, false
	}

	var encounter models.Encounter
	if err := h.DB.First(&encounter, "encounter_id = ?", uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Encounter not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return nil, false
	}
	return &encounter, true
}
