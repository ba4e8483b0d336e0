package dispensing

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain/patient"
)

type Kind string

const (
	KindPatient Kind = "patient"
	KindDirect  Kind = "direct"
)

// Dispensing records medicine handed to a registered patient. Records are
// immutable once created and do not touch stock levels.
type Dispensing struct {
	domain.Base

	Patient   uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index" json:"patient"`
	Medicine  string    `gorm:"column:medicine;type:varchar(255);not null;index" json:"medicine"`
	Qty       int       `gorm:"column:qty;not null" json:"qty"`
	Timestamp time.Time `gorm:"column:timestamp;not null;index" json:"timestamp"`
}

func (Dispensing) TableName() string {
	return "pharmacy.dispensings"
}

func (d *Dispensing) ApplyDefaults() {
	d.Medicine = strings.TrimSpace(d.Medicine)
	if d.Timestamp.IsZero() {
		d.Timestamp = time.Now().UTC()
	}
}

func (d *Dispensing) Validate() error {
	var errs []string
	if d.Patient == uuid.Nil {
		errs = append(errs, "patient is required")
	}
	errs = append(errs, validateLine(d.Medicine, d.Qty)...)
	return domain.NewValidationError(errs)
}

// DirectDispensing records an over-the-counter sale with no patient record.
type DirectDispensing struct {
	domain.Base

	PatientName string    `gorm:"column:patient_name;type:varchar(200)" json:"patientName,omitempty"`
	Medicine    string    `gorm:"column:medicine;type:varchar(255);not null;index" json:"medicine"`
	Qty         int       `gorm:"column:qty;not null" json:"qty"`
	Timestamp   time.Time `gorm:"column:timestamp;not null;index" json:"timestamp"`
}

func (DirectDispensing) TableName() string {
	return "pharmacy.direct_dispensings"
}

func (d *DirectDispensing) ApplyDefaults() {
	d.PatientName = strings.TrimSpace(d.PatientName)
	d.Medicine = strings.TrimSpace(d.Medicine)
	if d.Timestamp.IsZero() {
		d.Timestamp = time.Now().UTC()
	}
}

func (d *DirectDispensing) Validate() error {
	return domain.NewValidationError(validateLine(d.Medicine, d.Qty))
}

func validateLine(medicine string, qty int) []string {
	var errs []string
	if medicine == "" {
		errs = append(errs, "medicine is required")
	}
	if qty <= 0 {
		errs = append(errs, fmt.Sprintf("qty must be greater than zero, got %d", qty))
	}
	return errs
}

// WithPatient is a Dispensing with its patient reference resolved. Patient is
// null when the referenced patient no longer exists.
type WithPatient struct {
	Dispensing
	Patient *patient.Patient `json:"patient"`
}

// Expand joins each record with its patient from the lookup map.
func Expand(records []*Dispensing, patients map[uuid.UUID]*patient.Patient) []*WithPatient {
	out := make([]*WithPatient, 0, len(records))
	for _, d := range records {
		out = append(out, &WithPatient{Dispensing: *d, Patient: patients[d.Patient]})
	}
	return out
}

// PatientIDs returns the distinct patient ids referenced by records.
func PatientIDs(records []*Dispensing) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(records))
	ids := make([]uuid.UUID, 0, len(records))
	for _, d := range records {
		if _, ok := seen[d.Patient]; ok {
			continue
		}
		seen[d.Patient] = struct{}{}
		ids = append(ids, d.Patient)
	}
	return ids
}
