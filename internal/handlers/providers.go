package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-ehr-server/internal/models"
	"hospital-ehr-server/internal/utils"
)

// ProviderHandler handles provider and department directory requests.
type ProviderHandler struct {
	DB *gorm.DB
}

// NewProviderHandler creates a new ProviderHandler.
func NewProviderHandler(db *gorm.DB) *ProviderHandler {
	return &ProviderHandler{DB: db}
}

// ListProviders handles listing active providers, optionally filtered by
// specialty or department.
func (h *ProviderHandler) ListProviders(c *gin.Context) {
	query := h.DB.Model(&models.Provider{}).Where("is_active = ?", true)

	if specialty := c.Query("specialty"); specialty != "" {
		query = query.Where("specialty = ?", specialty)
	}
	if deptID := c.Query("department_id"); deptID != "" {
		id, err := strconv.ParseUint(deptID, 10, 32)
		if err != nil {
			utils.BadRequest(c, "Invalid department ID format")
			return
		}
		query = query.Where("department_id = ?", uint(id))
	}

	var providers []models.Provider
	if err := query.Preload("Department").Order("last_name").Find(&providers).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch providers: "+err.Error())
		return
	}

	utils.Success(c, "Providers fetched successfully", providers)
}

// ProviderRequest represents the request body for creating or updating a
// provider.
type ProviderRequest struct {
	FirstName     string `json:"firstName" binding:"required,max=100"`
	LastName      string `json:"lastName" binding:"required,max=100"`
	Specialty     string `json:"specialty" binding:"required,max=150"`
	LicenseNumber string `json:"licenseNumber" binding:"required,max=50"`
	NPINumber     string `json:"npiNumber" binding:"max=20"`
	PhoneNumber   string `json:"phoneNumber" binding:"max=20"`
	Email         string `json:"email" binding:"omitempty,email,max=255"`
	DepartmentID  *uint  `json:"departmentId"`
}

// CreateProvider handles registering a new provider.
func (h *ProviderHandler) CreateProvider(c *gin.Context) {
	var req ProviderRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if req.DepartmentID != nil && !h.departmentExists(c, *req.DepartmentID) {
		return
	}

	provider := models.Provider{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Specialty:     req.Specialty,
		LicenseNumber: req.LicenseNumber,
		NPINumber:     req.NPINumber,
		PhoneNumber:   req.PhoneNumber,
		Email:         req.Email,
		DepartmentID:  req.DepartmentID,
		IsActive:      true,
	}

	if err := h.DB.Create(&provider).Error; err != nil {
		utils.InternalServerError(c, "Failed to create provider: "+err.Error())
		return
	}

	utils.Created(c, "Provider created successfully", provider)
}

// GetProvider handles fetching a single provider.
func (h *ProviderHandler) GetProvider(c *gin.Context) {
	provider, found := h.fetchProvider(c)
	if !found {
		return
	}

	if err := h.DB.Preload("Department").
		First(provider, "provider_id = ?", provider.ProviderID).Error; err != nil {
		utils.InternalServerError(c, "Failed to load provider: "+err.Error())
		return
	}

	utils.Success(c, "Provider fetched successfully", provider)
}

// UpdateProvider handles updating a provider's directory entry.
func (h *ProviderHandler) UpdateProvider(c *gin.Context) {
	provider, found := h.fetchProvider(c)
	if !found {
		return
	}

	var req ProviderRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if req.DepartmentID != nil && !h.departmentExists(c, *req.DepartmentID) {
		return
	}

	provider.FirstName = req.FirstName
	provider.LastName = req.LastName
	provider.Specialty = req.Specialty
	provider.LicenseNumber = req.LicenseNumber
	provider.NPINumber = req.NPINumber
	provider.PhoneNumber = req.PhoneNumber
	provider.Email = req.Email
	provider.DepartmentID = req.DepartmentID

	if err := h.DB.Save(provider).Error; err != nil {
		utils.InternalServerError(c, "Failed to update provider: "+err.Error())
		return
	}

	utils.Success(c, "Provider updated successfully", provider)
}

// DeactivateProvider handles soft-deleting a provider.
func (h *ProviderHandler) DeactivateProvider(c *gin.Context) {
	provider, found := h.fetchProvider(c)
	if !found {
		return
	}

	provider.IsActive = false
	if err := h.DB.Save(provider).Error; err != nil {
		utils.InternalServerError(c, "Failed to deactivate provider: "+err.Error())
		return
	}

	utils.Success(c, "Provider deactivated successfully", nil)
}

// ListDepartments handles listing all departments with their providers.
func (h *ProviderHandler) ListDepartments(c *gin.Context) {
	var departments []models.Department
	if err := h.DB.Preload("Providers", "is_active = ?", true).
		Order("name").Find(&departments).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch departments: "+err.Error())
		return
	}

	utils.Success(c, "Departments fetched successfully", departments)
}

// DepartmentRequest represents the request body for creating a department.
type DepartmentRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"max=500"`
	Location    string `json:"location" binding:"max=255"`
	PhoneNumber string `json:"phoneNumber" binding:"max=20"`
}

// CreateDepartment handles adding a department.
func (h *ProviderHandler) CreateDepartment(c *gin.Context) {
	var req DepartmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	department := models.Department{
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		PhoneNumber: req.PhoneNumber,
	}

	if err := h.DB.Create(&department).Error; err != nil {
		utils.InternalServerError(c, "Failed to create department: "+err.Error())
		return
	}

	utils.Created(c, "Department created successfully", department)
}

func (h *ProviderHandler) departmentExists(c *gin.Context, id uint) bool {
	var count int64
	if err := h.DB.Model(&models.Department{}).
		Where("department_id = ?", id).Count(&count).Error; err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return false
	}
	if count == 0 {
		utils.ValidationFailed(c, map[string]string{"department_id": "Department does not exist"})
		return false
	}
	return true
}

func (h *ProviderHandler) fetchProvider(c *gin.Context) (*models.Provider, bool) {
	id, err := strconv.ParseUint(c.Param("providerId"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "Invalid provider ID format")
		return nil, false
	}

	var provider models.Provider
	if err := h.DB.First(&provider, "provider_id = ?", uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Provider not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return nil, false
	}
	return &provider, true
}
