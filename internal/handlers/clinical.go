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

// ClinicalHandler handles the clinical documentation recorded against an
// encounter: vital signs, diagnoses, physical examinations, clinical
// impressions and treatment plans.
type ClinicalHandler struct {
	DB *gorm.DB
}

// NewClinicalHandler creates a new ClinicalHandler.
func NewClinicalHandler(db *gorm.DB) *ClinicalHandler {
	return &ClinicalHandler{DB: db}
}

// VitalSignRequest represents the request body for recording vital signs.
type VitalSignRequest struct {
	TemperatureValue       *float64 `json:"temperatureValue" binding:"omitempty,min=90,max=110"`
	TemperatureUnit        string   `json:"temperatureUnit" binding:"omitempty,oneof=C F"`
	BloodPressureSystolic  *int     `json:"bloodPressureSystolic" binding:"omitempty,min=60,max=250"`
	BloodPressureDiastolic *int     `json:"bloodPressureDiastolic" binding:"omitempty,min=40,max=150"`
	HeartRate              *int     `json:"heartRate" binding:"omitempty,min=30,max=200"`
	RespiratoryRate        *int     `json:"respiratoryRate" binding:"omitempty,min=8,max=60"`
	OxygenSaturation       *float64 `json:"oxygenSaturation" binding:"omitempty,min=70,max=100"`
	WeightValue            *float64 `json:"weightValue" binding:"omitempty,min=1,max=1000"`
	WeightUnit             string   `json:"weightUnit" binding:"omitempty,oneof=kg lbs"`
	HeightValue            *float64 `json:"heightValue" binding:"omitempty,min=10,max=300"`
	HeightUnit             string   `json:"heightUnit" binding:"omitempty,oneof=cm in"`
	Notes                  string   `json:"notes"`
	RecordedBy             uint     `json:"recordedBy" binding:"required"`
}

// CreateVitalSign handles recording a set of vitals on an encounter.
func (h *ClinicalHandler) CreateVitalSign(c *gin.Context) {
	encounterID, ok := h.encounterID(c)
	if !ok {
		return
	}

	var req VitalSignRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	vital := models.VitalSign{
		EncounterID:            encounterID,
		TemperatureValue:       req.TemperatureValue,
		TemperatureUnit:        req.TemperatureUnit,
		BloodPressureSystolic:  req.BloodPressureSystolic,
		BloodPressureDiastolic: req.BloodPressureDiastolic,
		HeartRate:              req.HeartRate,
		RespiratoryRate:        req.RespiratoryRate,
		OxygenSaturation:       req.OxygenSaturation,
		WeightValue:            req.WeightValue,
		WeightUnit:             req.WeightUnit,
		HeightValue:            req.HeightValue,
		HeightUnit:             req.HeightUnit,
		Notes:                  req.Notes,
		RecordedBy:             req.RecordedBy,
		RecordedAt:             time.Now(),
	}
	vital.BMI = computeBMI(req.WeightValue, req.WeightUnit, req.HeightValue, req.HeightUnit)

	if err := h.DB.Create(&vital).Error; err != nil {
		utils.InternalServerError(c, "Failed to record vital signs: "+err.Error())
		return
	}

	utils.Created(c, "Vital signs recorded successfully", vital)
}

// ListVitalSigns handles listing all vitals recorded on an encounter.
func (h *ClinicalHandler) ListVitalSigns(c *gin.Context) {
	encounterID, ok := h.encounterID(c)
	if !ok {
		return
	}

	var vitals []models.VitalSign
	if err := h.DB.Where("encounter_id = ?", encounterID).
		Order("recorded_at DESC").Find(&vitals).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch vital signs: "+err.Error())
		return
	}

	utils.Success(c, "Vital signs fetched successfully", vitals)
}

// UpdateVitalSign handles correcting a previously recorded set of vitals.
func (h *ClinicalHandler) UpdateVitalSign(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("vitalSignId"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "Invalid vital signs ID format")
		return
	}

	var vital models.VitalSign
	if err := h.DB.First(&vital, "vital_signs_id = ?", uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Vital signs record not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var req VitalSignRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	vital.TemperatureValue = req.TemperatureValue
	vital.TemperatureUnit = req.TemperatureUnit
	vital.BloodPressureSystolic = req.BloodPressureSystolic
	vital.BloodPressureDiastolic = req.BloodPressureDiastolic
	vital.HeartRate = req.HeartRate
	vital.RespiratoryRate = req.RespiratoryRate
	vital.OxygenSaturation = req.OxygenSaturation
	vital.WeightValue = req.WeightValue
	vital.WeightUnit = req.WeightUnit
	vital.HeightValue = req.HeightValue
	vital.HeightUnit = req.HeightUnit
	vital.Notes = req.Notes
	vital.RecordedBy = req.RecordedBy
	vital.BMI = computeBMI(req.WeightValue, req.WeightUnit, req.HeightValue, req.HeightUnit)

	if err := h.DB.Save(&vital).Error; err != nil {
		utils.InternalServerError(c, "Failed to update vital signs: "+err.Error())
		return
	}

	utils.Success(c, "Vital signs updated successfully", vital)
}

// DiagnosisRequest represents the request body for recording a diagnosis.
type DiagnosisRequest struct {
	DiagnosisDescription string     `json:"diagnosisDescription" binding:"required"`
	ICD10Code            string     `json:"icd10Code" binding:"max=20"`
	ICD11Code            string     `json:"icd11Code" binding:"max=20"`
	DiagnosisType        string     `json:"diagnosisType" binding:"required,oneof=Primary Secondary Differential"`
	Status               string     `json:"status" binding:"omitempty,oneof=Active Resolved 'Rule Out'"`
	OnsetDate            *time.Time `json:"onsetDate"`
	Notes                string     `json:"notes"`
	DiagnosedBy          uint       `json:"diagnosedBy" binding:"required"`
}

// CreateDiagnosis handles recording a diagnosis on an encounter.
func (h *ClinicalHandler) CreateDiagnosis(c *gin.Context) {
	encounterID, ok := h.encounterID(c)
	if !ok {
		return
	}

	var req DiagnosisRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	status := models.DiagnosisActive
	if req.Status != "" {
		status = models.DiagnosisStatus(req.Status)
	}

	diagnosis := models.Diagnosis{
		EncounterID:          encounterID,
		DiagnosisDescription: req.DiagnosisDescription,
		ICD10Code:            req.ICD10Code,
		ICD11Code:            req.ICD11Code,
		DiagnosisType:        models.DiagnosisType(req.DiagnosisType),
		Status:               status,
		OnsetDate:            req.OnsetDate,
		Notes:                req.Notes,
		DiagnosedBy:          req.DiagnosedBy,
		DiagnosedAt:          time.Now(),
	}

	if err := h.DB.Create(&diagnosis).Error; err != nil {
		utils.InternalServerError(c, "Failed to record diagnosis: "+err.Error())
		return
	}

	utils.Created(c, "Diagnosis recorded successfully", diagnosis)
}

// UpdateDiagnosisRequest represents the request body for updating a
// diagnosis. Marking a diagnosis resolved stamps the resolved date.
type UpdateDiagnosisRequest struct {
	Status       string     `json:"status" binding:"required,oneof=Active Resolved 'Rule Out'"`
	ResolvedDate *time.Time `json:"resolvedDate"`
	Notes        string     `json:"notes"`
}

// UpdateDiagnosis handles updating a diagnosis status.
func (h *ClinicalHandler) UpdateDiagnosis(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("diagnosisId"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "Invalid diagnosis ID format")
		return
	}

	var diagnosis models.Diagnosis
	if err := h.DB.First(&diagnosis, "diagnosis_id = ?", uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Diagnosis not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var req UpdateDiagnosisRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	diagnosis.Status = models.DiagnosisStatus(req.Status)
	diagnosis.Notes = req.Notes
	if diagnosis.Status == models.DiagnosisResolved {
		resolved := time.Now()
		if req.ResolvedDate != nil {
			resolved = *req.ResolvedDate
		}
		diagnosis.ResolvedDate = &resolved
	} else {
		diagnosis.ResolvedDate = nil
	}

	if err := h.DB.Save(&diagnosis).Error; err != nil {
		utils.InternalServerError(c, "Failed to update diagnosis: "+err.Error())
		return
	}

	utils.Success(c, "Diagnosis updated successfully", diagnosis)
}

// DeleteDiagnosis handles removing a diagnosis recorded in error.
func (h *ClinicalHandler) DeleteDiagnosis(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("diagnosisId"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "Invalid diagnosis ID format")
		return
	}

	result := h.DB.Delete(&models.Diagnosis{}, "diagnosis_id = ?", uint(id))
	if result.Error != nil {
		utils.InternalServerError(c, "Failed to delete diagnosis: "+result.Error.Error())
		return
	}
	if result.RowsAffected == 0 {
		utils.NotFound(c, "Diagnosis not found")
		return
	}

	utils.Success(c, "Diagnosis deleted successfully", nil)
}

// ExaminationRequest represents the request body for an exam record.
type ExaminationRequest struct {
	Findings   string `json:"findings" binding:"required"`
	Notes      string `json:"notes"`
	ExaminedBy uint   `json:"examinedBy" binding:"required"`
}

// UpsertExamination handles recording or replacing the physical examination
// for an encounter. An encounter carries at most one exam record.
func (h *ClinicalHandler) UpsertExamination(c *gin.Context) {
	encounterID, ok := h.encounterID(c)
	if !ok {
		return
	}

	var req ExaminationRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var exam models.PhysicalExamination
	err := h.DB.Where("encounter_id = ?", encounterID).First(&exam).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		exam = models.PhysicalExamination{
			EncounterID: encounterID,
			Findings:    req.Findings,
			Notes:       req.Notes,
			ExaminedBy:  req.ExaminedBy,
		}
		if err := h.DB.Create(&exam).Error; err != nil {
			utils.InternalServerError(c, "Failed to record examination: "+err.Error())
			return
		}
		utils.Created(c, "Examination recorded successfully", exam)
	case err != nil:
		utils.InternalServerError(c, "Database error: "+err.Error())
	default:
		exam.Findings = req.Findings
		exam.Notes = req.Notes
		exam.ExaminedBy = req.ExaminedBy
		if err := h.DB.Save(&exam).Error; err != nil {
			utils.InternalServerError(c, "Failed to update examination: "+err.Error())
			return
		}
		utils.Success(c, "Examination updated successfully", exam)
	}
}

// ImpressionRequest represents the request body for a clinical impression.
type ImpressionRequest struct {
	Impression string `json:"impression" binding:"required"`
	Notes      string `json:"notes"`
}

// UpsertImpression handles recording or replacing the clinical impression
// for an encounter.
func (h *ClinicalHandler) UpsertImpression(c *gin.Context) {
	encounterID, ok := h.encounterID(c)
	if !ok {
		return
	}

	var req ImpressionRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var impression models.ClinicalImpression
	err := h.DB.Where("encounter_id = ?", encounterID).First(&impression).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		impression = models.ClinicalImpression{
			EncounterID: encounterID,
			Impression:  req.Impression,
			Notes:       req.Notes,
		}
		if err := h.DB.Create(&impression).Error; err != nil {
			utils.InternalServerError(c, "Failed to record impression: "+err.Error())
			return
		}
		utils.Created(c, "Clinical impression recorded successfully", impression)
	case err != nil:
		utils.InternalServerError(c, "Database error: "+err.Error())
	default:
		impression.Impression = req.Impression
		impression.Notes = req.Notes
		if err := h.DB.Save(&impression).Error; err != nil {
			utils.InternalServerError(c, "Failed to update impression: "+err.Error())
			return
		}
		utils.Success(c, "Clinical impression updated successfully", impression)
	}
}

// TreatmentPlanRequest represents the request body for a treatment plan.
type TreatmentPlanRequest struct {
	PlanDescription      string `json:"planDescription" binding:"required"`
	DiagnosticWorkup     string `json:"diagnosticWorkup"`
	TreatmentDetails     string `json:"treatmentDetails"`
	PatientEducation     string `json:"patientEducation"`
	FollowUpInstructions string `json:"followUpInstructions"`
	PreventionMeasures   string `json:"preventionMeasures"`
	CreatedBy            uint   `json:"createdBy" binding:"required"`
}

// ListTreatmentPlans handles listing treatment plans, newest first.
func (h *ClinicalHandler) ListTreatmentPlans(c *gin.Context) {
	var plans []models.TreatmentPlan
	if err := h.DB.
		Preload("Encounter.Patient").
		Preload("Creator").
		Order("created_at DESC").
		Find(&plans).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch treatment plans: "+err.Error())
		return
	}

	utils.Success(c, "Treatment plans fetched successfully", plans)
}

// GetTreatmentPlan handles fetching a single treatment plan.
func (h *ClinicalHandler) GetTreatmentPlan(c *gin.Context) {
	plan, found := h.fetchTreatmentPlan(c)
	if !found {
		return
	}

	if err := h.DB.
		Preload("Encounter.Patient").
		Preload("Creator").
		First(plan, "plan_id = ?", plan.PlanID).Error; err != nil {
		utils.InternalServerError(c, "Failed to load treatment plan: "+err.Error())
		return
	}

	utils.Success(c, "Treatment plan fetched successfully", plan)
}

// CreateTreatmentPlan handles recording the plan of care for an encounter.
func (h *ClinicalHandler) CreateTreatmentPlan(c *gin.Context) {
	encounterID, ok := h.encounterID(c)
	if !ok {
		return
	}

	var req TreatmentPlanRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var existing int64
	if err := h.DB.Model(&models.TreatmentPlan{}).
		Where("encounter_id = ?", encounterID).Count(&existing).Error; err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}
	if existing > 0 {
		utils.BadRequest(c, "Encounter already has a treatment plan")
		return
	}

	plan := models.TreatmentPlan{
		EncounterID:          encounterID,
		PlanDescription:      req.PlanDescription,
		DiagnosticWorkup:     req.DiagnosticWorkup,
		TreatmentDetails:     req.TreatmentDetails,
		PatientEducation:     req.PatientEducation,
		FollowUpInstructions: req.FollowUpInstructions,
		PreventionMeasures:   req.PreventionMeasures,
		CreatedBy:            req.CreatedBy,
	}

	if err := h.DB.Create(&plan).Error; err != nil {
		utils.InternalServerError(c, "Failed to create treatment plan: "+err.Error())
		return
	}

	utils.Created(c, "Treatment plan created successfully", plan)
}

// UpdateTreatmentPlan handles revising a treatment plan.
func (h *ClinicalHandler) UpdateTreatmentPlan(c *gin.Context) {
	plan, found := h.fetchTreatmentPlan(c)
	if !found {
		return
	}

	var req TreatmentPlanRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	plan.PlanDescription = req.PlanDescription
	plan.DiagnosticWorkup = req.DiagnosticWorkup
	plan.TreatmentDetails = req.TreatmentDetails
	plan.PatientEducation = req.PatientEducation
	plan.FollowUpInstructions = req.FollowUpInstructions
	plan.PreventionMeasures = req.PreventionMeasures

	if err := h.DB.Save(plan).Error; err != nil {
		utils.InternalServerError(c, "Failed to update treatment plan: "+err.Error())
		return
	}

	utils.Success(c, "Treatment plan updated successfully", plan)
}

// DeleteTreatmentPlan handles removing a treatment plan.
func (h *ClinicalHandler) DeleteTreatmentPlan(c *gin.Context) {
	plan, found := h.fetchTreatmentPlan(c)
	if !found {
		return
	}

	if err := h.DB.Delete(plan).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete treatment plan: "+err.Error())
		return
	}

	utils.Success(c, "Treatment plan deleted successfully", nil)
}

func (h *ClinicalHandler) fetchTreatmentPlan(c *gin.Context) (*models.TreatmentPlan, bool) {
	id, err := strconv.ParseUint(c.Param("planId"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "Invalid treatment plan ID format")
		return nil, false
	}

	var plan models.TreatmentPlan
	if err := h.DB.First(&plan, "plan_id = ?", uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Treatment plan not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return nil, false
	}
	return &plan, true
}

// encounterID parses and verifies the :encounterId path parameter.
func (h *ClinicalHandler) encounterID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("encounterId"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "Invalid encounter ID format")
		return 0, false
	}

	var count int64
	if err := h.DB.Model(&models.Encounter{}).
		Where("encounter_id = ?", uint(id)).Count(&count).Error; err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return 0, false
	}
	if count == 0 {
		utils.NotFound(c, "Encounter not found")
		return 0, false
	}
	return uint(id), true
}

// computeBMI derives body mass index from a weight/height pair, converting
// imperial units when needed. Returns nil when either value is missing.
func computeBMI(weight *float64, weightUnit string, height *float64, heightUnit string) *float64 {
	if weight == nil || height == nil || *height <= 0 {
		return nil
	}
	kg := *weight
	if weightUnit == "lbs" {
		kg *= 0.453592
	}
	cm := *height
	if heightUnit == "in" {
		cm *= 2.54
	}
	meters := cm / 100
	if meters <= 0 {
		return nil
	}
	bmi := kg / (meters * meters)
	return &bmi
}
