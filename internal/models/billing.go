package models

import (
	"time"
)

// BillingStatus tracks where an invoice stands.
type BillingStatus string

const (
	BillingPending       BillingStatus = "Pending"
	BillingPartiallyPaid BillingStatus = "Partially Paid"
	BillingPaid          BillingStatus = "Paid"
	BillingOverdue       BillingStatus = "Overdue"
)

// Billing is an invoice issued to a patient for an encounter.
type Billing struct {
	BillingID     uint          `gorm:"primaryKey;column:billing_id" json:"billingId"`
	PatientID     uint          `gorm:"not null;index" json:"patientId"`
	EncounterID   *uint         `gorm:"index" json:"encounterId,omitempty"`
	InvoiceNumber string        `gorm:"size:50;uniqueIndex" json:"invoiceNumber"`
	BillingDate   time.Time     `gorm:"index" json:"billingDate"`
	DueDate       *time.Time    `json:"dueDate,omitempty"`
	TotalAmount   float64       `json:"totalAmount"`
	AmountPaid    float64       `json:"amountPaid"`
	AmountDue     float64       `json:"amountDue"`
	Status        BillingStatus `gorm:"size:20" json:"status"`
	Notes         string        `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`

	Patient      *Patient      `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Encounter    *Encounter    `gorm:"foreignKey:EncounterID" json:"encounter,omitempty"`
	BillingItems []BillingItem `gorm:"foreignKey:BillingID" json:"billingItems,omitempty"`
	Payments     []Payment     `gorm:"foreignKey:BillingID" json:"payments,omitempty"`
}

// BillingItem is a single line on an invoice.
type BillingItem struct {
	ItemID             uint      `gorm:"primaryKey;column:item_id" json:"itemId"`
	BillingID          uint      `gorm:"not null;index" json:"billingId"`
	ServiceCode        string    `gorm:"size:20" json:"serviceCode,omitempty"`
	ServiceDescription string    `gorm:"size:500;not null" json:"serviceDescription"`
	Quantity           int       `gorm:"default:1" json:"quantity"`
	UnitPrice          float64   `json:"unitPrice"`
	TotalPrice         float64   `json:"totalPrice"`
	Notes              string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// PaymentStatus tracks a payment attempt against an invoice.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "Pending"
	PaymentCompleted PaymentStatus = "Completed"
	PaymentFailed    PaymentStatus = "Failed"
	PaymentRefunded  PaymentStatus = "Refunded"
)

// Payment records money received against an invoice.
type Payment struct {
	PaymentID     uint          `gorm:"primaryKey;column:payment_id" json:"paymentId"`
	PatientID     uint          `gorm:"not null;index" json:"patientId"`
	BillingID     uint          `gorm:"not null;index" json:"billingId"`
	PaymentDate   time.Time     `gorm:"index" json:"paymentDate"`
	Amount        float64       `json:"amount"`
	PaymentMethod string        `gorm:"size:50" json:"paymentMethod,omitempty"`
	TransactionID string        `gorm:"size:100" json:"transactionId,omitempty"`
	Status        PaymentStatus `gorm:"size:20;index" json:"status"`
	Notes         string        `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`

	Patient *Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Billing *Billing `gorm:"foreignKey:BillingID" json:"billing,omitempty"`
}

// InsuranceInformation is one coverage policy on file for a patient.
type InsuranceInformation struct {
	InsuranceID            uint       `gorm:"primaryKey;column:insurance_id" json:"insuranceId"`
	PatientID              uint       `gorm:"not null;index" json:"patientId"`
	ProviderName           string     `gorm:"size:200;not null" json:"providerName"`
	PlanType               string     `gorm:"size:100" json:"planType,omitempty"`
	PolicyNumber           string     `gorm:"size:100" json:"policyNumber"`
	GroupNumber            string     `gorm:"size:100" json:"groupNumber,omitempty"`
	SubscriberName         string     `gorm:"size:200" json:"subscriberName,omitempty"`
	SubscriberRelationship string     `gorm:"size:100" json:"subscriberRelationship,omitempty"`
	EffectiveDate          *time.Time `json:"effectiveDate,omitempty"`
	TerminationDate        *time.Time `json:"terminationDate,omitempty"`
	IsPrimary              bool       `gorm:"default:false" json:"isPrimary"`
	CreatedAt              time.Time  `json:"createdAt"`
	UpdatedAt              time.Time  `json:"updatedAt"`

	Patient *Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}

// TableName keeps the original schema's table name for insurance rows.
func (InsuranceInformation) TableName() string {
	return "insurance_information"
}
