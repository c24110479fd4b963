package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"hospital-ehr-server/internal/models"
	"hospital-ehr-server/internal/utils"
)

// BillingHandler handles invoices, payments and insurance records.
type BillingHandler struct {
	DB *gorm.DB
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(db *gorm.DB) *BillingHandler {
	return &BillingHandler{DB: db}
}

const billingPageSize = 10

// ListBilling handles listing invoices, newest first, together with the
// aggregate totals shown on the billing dashboard. Totals cover the whole
// filtered set, not just the current page.
func (h *BillingHandler) ListBilling(c *gin.Context) {
	page := parsePage(c.Query("page"))

	var patientID *uint
	if raw := c.Query("patient_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			utils.BadRequest(c, "Invalid patient ID format")
			return
		}
		v := uint(id)
		patientID = &v
	}
	status := c.Query("status")

	filtered := func() *gorm.DB {
		query := h.DB.Model(&models.Billing{})
		if patientID != nil {
			query = query.Where("patient_id = ?", *patientID)
		}
		if status != "" {
			query = query.Where("status = ?", status)
		}
		return query
	}

	var totalCount int64
	if err := filtered().Count(&totalCount).Error; err != nil {
		utils.InternalServerError(c, "Failed to count billing records: "+err.Error())
		return
	}

	var totals struct {
		TotalBilled float64
		TotalPaid   float64
		TotalDue    float64
	}
	if err := filtered().
		Select("COALESCE(SUM(total_amount), 0) AS total_billed, COALESCE(SUM(amount_paid), 0) AS total_paid, COALESCE(SUM(amount_due), 0) AS total_due").
		Scan(&totals).Error; err != nil {
		utils.InternalServerError(c, "Failed to compute billing totals: "+err.Error())
		return
	}

	var bills []models.Billing
	if err := filtered().Preload("Patient").
		Order("billing_date DESC").
		Limit(billingPageSize).
		Offset((page - 1) * billingPageSize).
		Find(&bills).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch billing records: "+err.Error())
		return
	}

	utils.Success(c, "Billing records fetched successfully", gin.H{
		"billing":     bills,
		"totalBilled": totals.TotalBilled,
		"totalPaid":   totals.TotalPaid,
		"totalDue":    totals.TotalDue,
		"page":        page,
		"pageSize":    billingPageSize,
		"totalCount":  totalCount,
	})
}

// BillingItemRequest is one line item on a new invoice.
type BillingItemRequest struct {
	ServiceCode        string  `json:"serviceCode" binding:"max=20"`
	ServiceDescription string  `json:"serviceDescription" binding:"required,max=500"`
	Quantity           int     `json:"quantity" binding:"required,min=1"`
	UnitPrice          float64 `json:"unitPrice" binding:"required,min=0"`
	Notes              string  `json:"notes"`
}

// CreateBillingRequest represents the request body for creating an invoice.
type CreateBillingRequest struct {
	PatientID   uint                 `json:"patientId" binding:"required"`
	EncounterID *uint                `json:"encounterId"`
	DueDate     *time.Time           `json:"dueDate"`
	Notes       string               `json:"notes"`
	Items       []BillingItemRequest `json:"items" binding:"required,min=1,dive"`
}

// CreateBilling handles creating an invoice with its line items. Totals are
// computed server side and an invoice number is generated.
func (h *BillingHandler) CreateBilling(c *gin.Context) {
	var req CreateBillingRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if _, err := models.ResolveParty(h.DB, models.PartyRef{Type: models.PartyPatient, ID: req.PatientID}); err != nil {
		utils.ValidationFailed(c, map[string]string{"patient_id": "Patient does not exist"})
		return
	}

	var total float64
	items := make([]models.BillingItem, 0, len(req.Items))
	for _, item := range req.Items {
		linePrice := float64(item.Quantity) * item.UnitPrice
		total += linePrice
		items = append(items, models.BillingItem{
			ServiceCode:        item.ServiceCode,
			ServiceDescription: item.ServiceDescription,
			Quantity:           item.Quantity,
			UnitPrice:          item.UnitPrice,
			TotalPrice:         linePrice,
			Notes:              item.Notes,
		})
	}

	bill := models.Billing{
		PatientID:     req.PatientID,
		EncounterID:   req.EncounterID,
		InvoiceNumber: generateInvoiceNumber(),
		BillingDate:   time.Now(),
		DueDate:       req.DueDate,
		TotalAmount:   total,
		AmountPaid:    0,
		AmountDue:     total,
		Status:        models.BillingPending,
		Notes:         req.Notes,
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&bill).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].BillingID = bill.BillingID
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to create invoice: "+err.Error())
		return
	}

	bill.BillingItems = items
	utils.Created(c, "Invoice created successfully", bill)
}

// GetBilling handles fetching one invoice with line items and payments.
func (h *BillingHandler) GetBilling(c *gin.Context) {
	bill, found := h.fetchBilling(c)
	if !found {
		return
	}

	if err := h.DB.
		Preload("Patient").
		Preload("BillingItems").
		Preload("Payments").
		First(bill, "billing_id = ?", bill.BillingID).Error; err != nil {
		utils.InternalServerError(c, "Failed to load invoice: "+err.Error())
		return
	}

	utils.Success(c, "Invoice fetched successfully", bill)
}

const paymentPageSize = 15

// ListPayments handles listing payments, newest first, with collection
// statistics over the whole filtered history.
func (h *BillingHandler) ListPayments(c *gin.Context) {
	page := parsePage(c.Query("page"))

	var patientID *uint
	if raw := c.Query("patient_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			utils.BadRequest(c, "Invalid patient ID format")
			return
		}
		v := uint(id)
		patientID = &v
	}

	filtered := func() *gorm.DB {
		query := h.DB.Model(&models.Payment{})
		if patientID != nil {
			query = query.Where("patient_id = ?", *patientID)
		}
		return query
	}

	var all []models.Payment
	if err := filtered().Order("payment_date DESC").Find(&all).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch payments: "+err.Error())
		return
	}

	var collected, pending float64
	completed := 0
	var lastPaymentDate *time.Time
	for i, p := range all {
		switch p.Status {
		case models.PaymentCompleted:
			collected += p.Amount
			completed++
		case models.PaymentPending:
			pending += p.Amount
		}
		if lastPaymentDate == nil || p.PaymentDate.After(*lastPaymentDate) {
			lastPaymentDate = &all[i].PaymentDate
		}
	}

	var payments []models.Payment
	if err := filtered().Preload("Patient").Preload("Billing").
		Order("payment_date DESC").
		Limit(paymentPageSize).
		Offset((page - 1) * paymentPageSize).
		Find(&payments).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch payments: "+err.Error())
		return
	}

	utils.Success(c, "Payments fetched successfully", gin.H{
		"payments":          payments,
		"totalCollected":    collected,
		"completedPayments": completed,
		"pendingAmount":     pending,
		"lastPaymentDate":   lastPaymentDate,
		"page":              page,
		"pageSize":          paymentPageSize,
		"totalCount":        int64(len(all)),
	})
}

// GetPayment handles fetching a single payment with its invoice.
func (h *BillingHandler) GetPayment(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("paymentId"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "Invalid payment ID format")
		return
	}

	var payment models.Payment
	if err := h.DB.Preload("Patient").Preload("Billing").
		First(&payment, "payment_id = ?", uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Payment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "Payment fetched successfully", payment)
}

// RecordPaymentRequest represents the request body for recording a payment
// against an invoice.
type RecordPaymentRequest struct {
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	PaymentMethod string  `json:"paymentMethod" binding:"required,max=50"`
	TransactionID string  `json:"transactionId" binding:"max=100"`
	Notes         string  `json:"notes"`
}

// RecordPayment handles applying a payment to an invoice. The invoice's
// paid/due amounts and status are updated in the same transaction.
func (h *BillingHandler) RecordPayment(c *gin.Context) {
	bill, found := h.fetchBilling(c)
	if !found {
		return
	}

	var req RecordPaymentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if req.Amount > bill.AmountDue {
		utils.ValidationFailed(c, map[string]string{"amount": "Payment exceeds amount due"})
		return
	}

	payment := models.Payment{
		PatientID:     bill.PatientID,
		BillingID:     bill.BillingID,
		PaymentDate:   time.Now(),
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		TransactionID: req.TransactionID,
		Status:        models.PaymentCompleted,
		Notes:         req.Notes,
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		bill.AmountPaid += req.Amount
		bill.AmountDue = bill.TotalAmount - bill.AmountPaid
		if bill.AmountDue <= 0 {
			bill.Status = models.BillingPaid
		} else {
			bill.Status = models.BillingPartiallyPaid
		}
		return tx.Save(bill).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to record payment: "+err.Error())
		return
	}

	utils.Created(c, "Payment recorded successfully", gin.H{
		"payment": payment,
		"billing": bill,
	})
}

// ListInsurance handles listing a patient's insurance records, primary
// plan first.
func (h *BillingHandler) ListInsurance(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("patientId"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "Invalid patient ID format")
		return
	}

	var records []models.InsuranceInformation
	if err := h.DB.Where("patient_id = ?", uint(id)).
		Order("is_primary DESC, effective_date DESC").Find(&records).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch insurance records: "+err.Error())
		return
	}

	utils.Success(c, "Insurance records fetched successfully", records)
}

// GetInsurance handles fetching one insurance policy for a patient.
func (h *BillingHandler) GetInsurance(c *gin.Context) {
	patientID, err := strconv.ParseUint(c.Param("patientId"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "Invalid patient ID format")
		return
	}
	insuranceID, err := strconv.ParseUint(c.Param("insuranceId"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "Invalid insurance ID format")
		return
	}

	var record models.InsuranceInformation
	if err := h.DB.
		First(&record, "insurance_id = ? AND patient_id = ?", uint(insuranceID), uint(patientID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Insurance record not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "Insurance record fetched successfully", record)
}

// InsuranceRequest represents the request body for adding an insurance
// record.
type InsuranceRequest struct {
	ProviderName           string     `json:"providerName" binding:"required,max=200"`
	PlanType               string     `json:"planType" binding:"max=100"`
	PolicyNumber           string     `json:"policyNumber" binding:"required,max=100"`
	GroupNumber            string     `json:"groupNumber" binding:"max=100"`
	SubscriberName         string     `json:"subscriberName" binding:"max=200"`
	SubscriberRelationship string     `json:"subscriberRelationship" binding:"max=100"`
	EffectiveDate          *time.Time `json:"effectiveDate"`
	TerminationDate        *time.Time `json:"terminationDate"`
	IsPrimary              bool       `json:"isPrimary"`
}

// CreateInsurance handles adding an insurance record for a patient. When
// the new record is primary, any previous primary plan is demoted.
func (h *BillingHandler) CreateInsurance(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("patientId"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "Invalid patient ID format")
		return
	}
	patientID := uint(id)

	if _, err := models.ResolveParty(h.DB, models.PartyRef{Type: models.PartyPatient, ID: patientID}); err != nil {
		utils.NotFound(c, "Patient not found")
		return
	}

	var req InsuranceRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	record := models.InsuranceInformation{
		PatientID:              patientID,
		ProviderName:           req.ProviderName,
		PlanType:               req.PlanType,
		PolicyNumber:           req.PolicyNumber,
		GroupNumber:            req.GroupNumber,
		SubscriberName:         req.SubscriberName,
		SubscriberRelationship: req.SubscriberRelationship,
		EffectiveDate:          req.EffectiveDate,
		TerminationDate:        req.TerminationDate,
		IsPrimary:              req.IsPrimary,
	}

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		if req.IsPrimary {
			if err := tx.Model(&models.InsuranceInformation{}).
				Where("patient_id = ? AND is_primary = ?", patientID, true).
				Update("is_primary", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&record).Error
	})
	if txErr != nil {
		utils.InternalServerError(c, "Failed to create insurance record: "+txErr.Error())
		return
	}

	utils.Created(c, "Insurance record created successfully", record)
}

func (h *BillingHandler) fetchBilling(c *gin.Context) (*models.Billing, bool) {
	id, err := strconv.ParseUint(c.Param("billingId"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "Invalid billing ID format")
		return nil, false
	}

	var bill models.Billing
	if err := h.DB.First(&bill, "billing_id = ?", uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Invoice not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return nil, false
	}
	return &bill, true
}

// generateInvoiceNumber builds a unique invoice identifier such as
// INV-20260901-1A2B3C4D.
func generateInvoiceNumber() string {
	suffix := uuid.New().String()[:8]
	return fmt.Sprintf("INV-%s-%s", time.Now().Format("20060102"), suffix)
}
