package models

import "time"

type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentCard         PaymentMethod = "card"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCheck        PaymentMethod = "check"
)

type ReferenceType string

const (
	ReferenceVisit       ReferenceType = "visit"
	ReferencePatient     ReferenceType = "patient"
	ReferenceAppointment ReferenceType = "appointment"
	ReferenceManual      ReferenceType = "manual"
)

// Transaction is a single ledger entry. Amounts are always stored positive;
// direction comes from Type. Payment-derived entries carry a ReferenceType
// and ReferenceID pointing at the visit or patient that produced them.
type Transaction struct {
	Base
	DoctorID        uint            `gorm:"not null;index" json:"doctor_id"`
	Type            TransactionType `gorm:"size:10;not null;index" json:"type"`
	Category        string          `gorm:"size:100;not null;index" json:"category"`
	Subcategory     string          `gorm:"size:100" json:"subcategory"`
	Amount          float64         `gorm:"not null" json:"amount"`
	Description     string          `json:"description"`
	TransactionDate time.Time       `gorm:"not null;index" json:"transaction_date"`
	PaymentMethod   PaymentMethod   `gorm:"size:20;default:'cash'" json:"payment_method"`
	ReferenceType   ReferenceType   `gorm:"size:20;default:'manual'" json:"reference_type"`
	ReferenceID     *uint           `json:"reference_id"`
	Notes           string          `json:"notes"`

	// Relationships
	Doctor *Doctor `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}
