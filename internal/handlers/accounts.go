package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-ehr-server/internal/models"
	"hospital-ehr-server/internal/utils"
)

// AccountHandler handles admin management of login accounts.
type AccountHandler struct {
	DB *gorm.DB
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(db *gorm.DB) *AccountHandler {
	return &AccountHandler{DB: db}
}

// ListAccounts handles fetching all login accounts (admin).
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	var accounts []models.UserAccount
	if err := h.DB.Order("created_at DESC").Find(&accounts).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch accounts: "+err.Error())
		return
	}

	sanitized := make([]models.AccountSanitized, len(accounts))
	for i, a := range accounts {
		sanitized[i] = a.Sanitize()
	}

	utils.Success(c, "Accounts fetched successfully", sanitized)
}

// GetAccount handles fetching a single account by ID (admin).
func (h *AccountHandler) GetAccount(c *gin.Context) {
	account, found := h.fetchAccount(c)
	if !found {
		return
	}
	utils.Success(c, "Account fetched successfully", account.Sanitize())
}

// UpdateAccountRequest represents the request body for updating an account
// by an admin. Password changes go through the auth endpoints instead.
type UpdateAccountRequest struct {
	Email    string `json:"email" binding:"omitempty,email"`
	Role     string `json:"role" binding:"omitempty,oneof=admin staff provider patient"`
	IsActive *bool  `json:"isActive"`
}

// UpdateAccount handles updating an account's email, role or active flag.
func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	account, found := h.fetchAccount(c)
	if !found {
		return
	}

	var req UpdateAccountRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if req.Email != "" && req.Email != account.Email {
		var existing models.UserAccount
		err := h.DB.Where("email = ? AND account_id != ?", req.Email, account.AccountID).
			First(&existing).Error
		if err == nil {
			utils.BadRequest(c, "Email is already in use")
			return
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.InternalServerError(c, "Database error: "+err.Error())
			return
		}
		account.Email = req.Email
	}
	if req.Role != "" {
		account.Role = models.Role(req.Role)
	}
	if req.IsActive != nil {
		account.IsActive = *req.IsActive
	}

	if err := h.DB.Save(account).Error; err != nil {
		utils.InternalServerError(c, "Failed to update account: "+err.Error())
		return
	}

	utils.Success(c, "Account updated successfully", account.Sanitize())
}

// DeactivateAccount handles disabling an account. The row is kept so audit
// trails and refresh-token history stay intact; login is refused while the
// account is inactive.
func (h *AccountHandler) DeactivateAccount(c *gin.Context) {
	account, found := h.fetchAccount(c)
	if !found {
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		account.IsActive = false
		if err := tx.Save(account).Error; err != nil {
			return err
		}
		return tx.Model(&models.RefreshToken{}).
			Where("account_id = ?", account.AccountID).
			Update("revoked", true).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to deactivate account: "+err.Error())
		return
	}

	utils.Success(c, "Account deactivated successfully", nil)
}

func (h *AccountHandler) fetchAccount(c *gin.Context) (*models.UserAccount, bool) {
	id, err := strconv.ParseUint(c.Param("accountId"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "Invalid account ID format")
		return nil, false
	}

	var account models.UserAccount
	if err := h.DB.First(&account, "account_id = ?", uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Account not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return nil, false
	}
	return &account, true
}
