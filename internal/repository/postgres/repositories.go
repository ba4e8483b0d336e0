package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain/dispensing"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain/invoice"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain/visit"
)

type PatientRepository struct {
	*Store[patient.Patient, *patient.Patient]
}

func NewPatientRepository(db *gorm.DB) *PatientRepository {
	return &PatientRepository{Store: newStore[patient.Patient](db, patient.ErrPatientNotFound, nil)}
}

func (r *PatientRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*patient.Patient, error) {
	out := make(map[uuid.UUID]*patient.Patient, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var patients []*patient.Patient
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&patients).Error; err != nil {
		return nil, fmt.Errorf("fetching patients: %w", err)
	}
	for _, p := range patients {
		out[p.ID] = p
	}
	return out, nil
}

func NewInvoiceRepository(db *gorm.DB) *Store[invoice.Invoice, *invoice.Invoice] {
	return newStore[invoice.Invoice](db, invoice.ErrInvoiceNotFound, nil)
}

func NewVisitRepository(db *gorm.DB) *Store[visit.Visit, *visit.Visit] {
	return newStore[visit.Visit](db, visit.ErrVisitNotFound, nil)
}

func NewDispensingRepository(db *gorm.DB) *Store[dispensing.Dispensing, *dispensing.Dispensing] {
	return newStore[dispensing.Dispensing](db, dispensing.ErrDispensingNotFound, nil)
}

func NewDirectDispensingRepository(db *gorm.DB) *Store[dispensing.DirectDispensing, *dispensing.DirectDispensing] {
	return newStore[dispensing.DirectDispensing](db, dispensing.ErrDirectDispensingNotFound, nil)
}

type UserRepository struct {
	*Store[domain.User, *domain.User]
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{Store: newStore[domain.User](db, domain.ErrUserNotFound, domain.ErrEmailTaken)}
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("fetching user: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) UpdateLoginAttempt(ctx context.Context, id uuid.UUID, success bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := r.get(tx, id)
		if err != nil {
			return err
		}
		u.RegisterLoginAttempt(success, tx.NowFunc())
		return r.update(tx, u)
	})
}

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("writing audit log: %w", err)
	}
	return nil
}
