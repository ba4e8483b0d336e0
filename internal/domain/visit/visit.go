package visit

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain"
)

// State transitions possibilities:
//
//	Pending Payment → Pending → In-Progress → Completed
//	Pending → Completed
//
// A visit enters PendingPayment only when payment is required up front.
type Status string

const (
	StatusPendingPayment Status = "Pending Payment"
	StatusPending        Status = "Pending"
	StatusInProgress     Status = "In-Progress"
	StatusCompleted      Status = "Completed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPendingPayment, StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type Vitals struct {
	BloodPressure    string  `json:"bloodPressure,omitempty"`
	Temperature      float64 `json:"temperature,omitempty"`
	Pulse            int     `json:"pulse,omitempty"`
	RespiratoryRate  int     `json:"respiratoryRate,omitempty"`
	Weight           float64 `json:"weight,omitempty"`
	Height           float64 `json:"height,omitempty"`
	OxygenSaturation float64 `json:"oxygenSaturation,omitempty"`
}

func (v Vitals) Validate() error {
	var errs []string
	if v.Temperature < 0 {
		errs = append(errs, "temperature cannot be negative")
	}
	if v.Pulse < 0 || v.RespiratoryRate < 0 {
		errs = append(errs, "pulse and respiratoryRate cannot be negative")
	}
	if v.Weight < 0 || v.Height < 0 {
		errs = append(errs, "weight and height cannot be negative")
	}
	if v.OxygenSaturation < 0 || v.OxygenSaturation > 100 {
		errs = append(errs, "oxygenSaturation must be between 0 and 100")
	}
	return domain.NewValidationError(errs)
}

type Diagnosis struct {
	Primary   string   `json:"primary"`
	Secondary []string `json:"secondary,omitempty"`
	Notes     string   `json:"notes,omitempty"`
}

func (d Diagnosis) Validate() error {
	if strings.TrimSpace(d.Primary) == "" {
		return &domain.ValidationError{Fields: []string{"primary diagnosis is required"}}
	}
	return nil
}

type LabOrder struct {
	ID        uuid.UUID `json:"_id"`
	Test      string    `json:"test"`
	Notes     string    `json:"notes,omitempty"`
	OrderedAt time.Time `json:"orderedAt"`
}

func (o LabOrder) Validate() error {
	if strings.TrimSpace(o.Test) == "" {
		return &domain.ValidationError{Fields: []string{"test is required"}}
	}
	return nil
}

type Prescription struct {
	ID           uuid.UUID `json:"_id"`
	Medicine     string    `json:"medicine"`
	Dosage       string    `json:"dosage,omitempty"`
	Frequency    string    `json:"frequency,omitempty"`
	Duration     string    `json:"duration,omitempty"`
	Qty          int       `json:"qty,omitempty"`
	Instructions string    `json:"instructions,omitempty"`
}

func (p Prescription) Validate() error {
	var errs []string
	if strings.TrimSpace(p.Medicine) == "" {
		errs = append(errs, "medicine is required")
	}
	if p.Qty < 0 {
		errs = append(errs, "qty cannot be negative")
	}
	return domain.NewValidationError(errs)
}

type Visit struct {
	domain.Base

	Patient         uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index" json:"patient"`
	Doctor          uuid.UUID `gorm:"column:doctor_id;type:uuid;not null;index" json:"doctor"`
	VisitDate       time.Time `gorm:"column:visit_date;not null;index" json:"visitDate"`
	Reason          string    `gorm:"column:reason;type:text" json:"reason,omitempty"`
	PaymentRequired bool      `gorm:"column:payment_required;not null;default:false" json:"paymentRequired"`
	Status          Status    `gorm:"column:status;type:varchar(30);not null;index" json:"status"`

	Vitals        *Vitals        `gorm:"column:vitals;serializer:json" json:"vitals,omitempty"`
	Diagnosis     *Diagnosis     `gorm:"column:diagnosis;serializer:json" json:"diagnosis,omitempty"`
	LabOrders     []LabOrder     `gorm:"column:lab_orders;serializer:json" json:"labOrders"`
	Prescriptions []Prescription `gorm:"column:prescriptions;serializer:json" json:"prescriptions"`

	Notes       string     `gorm:"column:notes;type:text" json:"notes,omitempty"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completedAt,omitempty"`
}

func (Visit) TableName() string {
	return "clinical.visits"
}

// InitialStatus is the status a newly created visit starts in.
func (v *Visit) InitialStatus() Status {
	if v.PaymentRequired {
		return StatusPendingPayment
	}
	return StatusPending
}

func (v *Visit) ApplyDefaults() {
	if v.VisitDate.IsZero() {
		v.VisitDate = time.Now().UTC()
	}
	if v.Status == "" {
		v.Status = v.InitialStatus()
	}
	if v.LabOrders == nil {
		v.LabOrders = []LabOrder{}
	}
	if v.Prescriptions == nil {
		v.Prescriptions = []Prescription{}
	}
	for i := range v.LabOrders {
		if v.LabOrders[i].ID == uuid.Nil {
			v.LabOrders[i].ID = uuid.New()
		}
	}
	for i := range v.Prescriptions {
		if v.Prescriptions[i].ID == uuid.Nil {
			v.Prescriptions[i].ID = uuid.New()
		}
	}
}

func (v *Visit) Validate() error {
	var errs []string
	if v.Patient == uuid.Nil {
		errs = append(errs, "patient is required")
	}
	if v.Doctor == uuid.Nil {
		errs = append(errs, "doctor is required")
	}
	if !v.Status.IsValid() {
		errs = append(errs, "status must be one of Pending Payment, Pending, In-Progress, Completed")
	}
	if v.Vitals != nil {
		errs = appendFields(errs, "vitals", v.Vitals.Validate())
	}
	if v.Diagnosis != nil {
		errs = appendFields(errs, "diagnosis", v.Diagnosis.Validate())
	}
	for i, o := range v.LabOrders {
		errs = appendFields(errs, fmt.Sprintf("labOrders[%d]", i), o.Validate())
	}
	for i, p := range v.Prescriptions {
		errs = appendFields(errs, fmt.Sprintf("prescriptions[%d]", i), p.Validate())
	}
	return domain.NewValidationError(errs)
}

// appendFields adds the fields of a nested *domain.ValidationError under prefix.
func appendFields(errs []string, prefix string, err error) []string {
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		return errs
	}
	for _, f := range verr.Fields {
		errs = append(errs, prefix+": "+f)
	}
	return errs
}

func (v *Visit) CanTransitionTo(next Status) bool {
	allowed := map[Status][]Status{
		StatusPendingPayment: {StatusPending},
		StatusPending:        {StatusInProgress, StatusCompleted},
		StatusInProgress:     {StatusCompleted},
		StatusCompleted:      {},
	}

	for _, s := range allowed[v.Status] {
		if s == next {
			return true
		}
	}
	return false
}

// IsEditable reports whether clinical data may still be recorded.
func (v *Visit) IsEditable() bool {
	return v.Status == StatusPending || v.Status == StatusInProgress
}

func (v *Visit) ConfirmPayment() error {
	if v.Status != StatusPendingPayment {
		return fmt.Errorf("confirm payment from %q: %w", v.Status, ErrInvalidStatusTransition)
	}
	v.Status = StatusPending
	return nil
}

func (v *Visit) Start() error {
	if v.Status != StatusPending {
		return fmt.Errorf("start visit from %q: %w", v.Status, ErrInvalidStatusTransition)
	}
	v.Status = StatusInProgress
	return nil
}

func (v *Visit) RecordVitals(vitals Vitals) error {
	if !v.IsEditable() {
		return ErrVisitNotEditable
	}
	if err := vitals.Validate(); err != nil {
		return err
	}
	v.Vitals = &vitals
	return nil
}

func (v *Visit) RecordDiagnosis(d Diagnosis) error {
	if !v.IsEditable() {
		return ErrVisitNotEditable
	}
	if err := d.Validate(); err != nil {
		return err
	}
	d.Primary = strings.TrimSpace(d.Primary)
	v.Diagnosis = &d
	return nil
}

func (v *Visit) AddLabOrder(o LabOrder) (*LabOrder, error) {
	if !v.IsEditable() {
		return nil, ErrVisitNotEditable
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	o.ID = uuid.New()
	if o.OrderedAt.IsZero() {
		o.OrderedAt = time.Now().UTC()
	}
	v.LabOrders = append(v.LabOrders, o)
	return &v.LabOrders[len(v.LabOrders)-1], nil
}

func (v *Visit) AddPrescription(p Prescription) (*Prescription, error) {
	if !v.IsEditable() {
		return nil, ErrVisitNotEditable
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.ID = uuid.New()
	v.Prescriptions = append(v.Prescriptions, p)
	return &v.Prescriptions[len(v.Prescriptions)-1], nil
}

// End completes the visit and attaches the closing notes. A visit may be
// ended straight from Pending as well as from In-Progress.
func (v *Visit) End(notes string) error {
	if !v.CanTransitionTo(StatusCompleted) {
		return fmt.Errorf("end visit from %q: %w", v.Status, ErrInvalidStatusTransition)
	}
	now := time.Now().UTC()
	v.Status = StatusCompleted
	v.Notes = notes
	v.CompletedAt = &now
	return nil
}
