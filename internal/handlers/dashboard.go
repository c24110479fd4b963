package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-ehr-server/internal/models"
	"hospital-ehr-server/internal/utils"
)

// DashboardHandler serves the aggregate counts and recent activity shown
// on the admin landing page.
type DashboardHandler struct {
	DB *gorm.DB
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{DB: db}
}

// GetStats handles the dashboard request: headline counts, recent
// encounters and treatment plans, and today's encounter breakdowns.
func (h *DashboardHandler) GetStats(c *gin.Context) {
	type countQuery struct {
		name  string
		query *gorm.DB
	}

	now := time.Now()
	today := now.Truncate(24 * time.Hour)
	weekAgo := now.AddDate(0, 0, -7)

	openStatuses := []models.EncounterStatus{models.EncounterScheduled, models.EncounterInProgress}
	queries := []countQuery{
		{"activePatients", h.DB.Model(&models.Patient{}).Where("is_active = ?", true)},
		{"activeProviders", h.DB.Model(&models.Provider{}).Where("is_active = ?", true)},
		{"openEncounters", h.DB.Model(&models.Encounter{}).Where("status IN ?", openStatuses)},
		{"encountersToday", h.DB.Model(&models.Encounter{}).Where("encounter_date >= ?", today)},
		{"treatmentPlans", h.DB.Model(&models.TreatmentPlan{})},
		{"treatmentPlansLastWeek", h.DB.Model(&models.TreatmentPlan{}).Where("created_at >= ?", weekAgo)},
		{"activePrescriptions", h.DB.Model(&models.Prescription{}).Where("status = ?", models.PrescriptionActive)},
		{"pendingInvoices", h.DB.Model(&models.Billing{}).Where("status IN ?", []models.BillingStatus{models.BillingPending, models.BillingPartiallyPaid})},
		{"unreadMessages", h.DB.Model(&models.Message{}).Where("is_read = ?", false)},
		{"activeDevices", h.DB.Model(&models.Device{}).Where("status = ?", models.DeviceActive)},
	}

	stats := gin.H{}
	for _, q := range queries {
		var count int64
		if err := q.query.Count(&count).Error; err != nil {
			utils.InternalServerError(c, "Failed to compute dashboard stats: "+err.Error())
			return
		}
		stats[q.name] = count
	}

	var outstanding float64
	if err := h.DB.Model(&models.Billing{}).
		Select("COALESCE(SUM(amount_due), 0)").Scan(&outstanding).Error; err != nil {
		utils.InternalServerError(c, "Failed to compute outstanding balance: "+err.Error())
		return
	}
	stats["outstandingBalance"] = outstanding

	var recentEncounters []models.Encounter
	if err := h.DB.
		Preload("Patient").
		Preload("Provider").
		Preload("Department").
		Order("encounter_date DESC").
		Limit(10).
		Find(&recentEncounters).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch recent encounters: "+err.Error())
		return
	}

	type statusCount struct {
		Status models.EncounterStatus `json:"status"`
		Count  int64                  `json:"count"`
	}
	var byStatus []statusCount
	if err := h.DB.Model(&models.Encounter{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&byStatus).Error; err != nil {
		utils.InternalServerError(c, "Failed to group encounters by status: "+err.Error())
		return
	}

	type departmentCount struct {
		DepartmentID uint  `json:"departmentId"`
		Count        int64 `json:"count"`
	}
	var byDepartment []departmentCount
	if err := h.DB.Model(&models.Encounter{}).
		Select("department_id, COUNT(*) AS count").
		Where("encounter_date >= ?", today).
		Group("department_id").
		Scan(&byDepartment).Error; err != nil {
		utils.InternalServerError(c, "Failed to group encounters by department: "+err.Error())
		return
	}

	var recentPlans []models.TreatmentPlan
	if err := h.DB.
		Preload("Encounter.Patient").
		Preload("Creator").
		Order("created_at DESC").
		Limit(5).
		Find(&recentPlans).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch recent treatment plans: "+err.Error())
		return
	}

	utils.Success(c, "Dashboard stats fetched successfully", gin.H{
		"stats":                       stats,
		"recentEncounters":            recentEncounters,
		"encountersByStatus":          byStatus,
		"encountersTodayByDepartment": byDepartment,
		"recentTreatmentPlans":        recentPlans,
	})
}
