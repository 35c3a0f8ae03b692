package models

import "time"

// SubscriptionType represents a clinic's subscription tier
type SubscriptionType string

const (
	SubscriptionBasic      SubscriptionType = "basic"
	SubscriptionPremium    SubscriptionType = "premium"
	SubscriptionEnterprise SubscriptionType = "enterprise"
)

// Clinic groups doctor accounts under a single subscription.
type Clinic struct {
	Base
	Name              string           `gorm:"not null" json:"name"`
	Address           string           `json:"address"`
	Phone             string           `json:"phone"`
	Email             string           `json:"email"`
	SubscriptionType  SubscriptionType `gorm:"default:'basic'" json:"subscription_type"`
	SubscriptionStart time.Time        `json:"subscription_start"`
	SubscriptionEnd   *time.Time       `json:"subscription_end,omitempty"`
	IsActive          bool             `gorm:"default:true" json:"is_active"`
	MaxDoctors        int              `gorm:"default:1" json:"max_doctors"`
	MaxPatients       int              `gorm:"default:100" json:"max_patients"`

	// Relationships
	Doctors []Doctor `gorm:"foreignKey:ClinicID" json:"doctors,omitempty"`
}
