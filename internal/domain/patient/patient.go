package patient

import (
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain"
)

type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderOther   Gender = "other"
	GenderUnknown Gender = "unknown"
)

func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther, GenderUnknown:
		return true
	}
	return false
}

type Insurance struct {
	Provider     string `json:"provider"`
	PolicyNumber string `json:"policyNumber"`
}

type Patient struct {
	domain.Base

	FirstName   string     `gorm:"column:first_name;type:varchar(100);not null" json:"firstName"`
	LastName    string     `gorm:"column:last_name;type:varchar(100);not null;index" json:"lastName"`
	DateOfBirth *time.Time `gorm:"column:date_of_birth" json:"dateOfBirth,omitempty"`
	Gender      Gender     `gorm:"column:gender;type:varchar(20);not null;default:'unknown'" json:"gender"`

	Phone   string `gorm:"column:phone;type:varchar(20)" json:"phone,omitempty"`
	Email   string `gorm:"column:email;type:varchar(255)" json:"email,omitempty"`
	Address string `gorm:"column:address;type:text" json:"address,omitempty"`

	Insurance *Insurance `gorm:"column:insurance;serializer:json" json:"insurance,omitempty"`
	Allergies []string   `gorm:"column:allergies;serializer:json" json:"allergies"`
	Notes     string     `gorm:"column:notes;type:text" json:"notes,omitempty"` // PHI
}

func (Patient) TableName() string {
	return "clinical.patients"
}

func (p *Patient) ApplyDefaults() {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	if p.Gender == "" {
		p.Gender = GenderUnknown
	}
	if p.Allergies == nil {
		p.Allergies = []string{}
	}
}

func (p *Patient) Validate() error {
	var errs []string
	if p.FirstName == "" {
		errs = append(errs, "firstName is required")
	}
	if p.LastName == "" {
		errs = append(errs, "lastName is required")
	}
	if !p.Gender.IsValid() {
		errs = append(errs, "gender must be one of male, female, other, unknown")
	}
	if p.DateOfBirth != nil && p.DateOfBirth.After(time.Now()) {
		errs = append(errs, "dateOfBirth cannot be in the future")
	}
	return domain.NewValidationError(errs)
}
