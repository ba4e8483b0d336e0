package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain/dispensing"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/hms/pkg/metrics"
)

// DispensingService serves dispensing records with their patient resolved.
// Records are immutable: there is no update.
type DispensingService struct {
	records  *ResourceService[dispensing.Dispensing, *dispensing.Dispensing]
	patients patient.Repository
}

func NewDispensingService(
	repo domain.Repository[dispensing.Dispensing],
	patients patient.Repository,
	auditSvc *AuditService,
	m *metrics.Collector,
	log *zap.Logger,
) *DispensingService {
	records := NewResourceService[dispensing.Dispensing]("dispensing", repo, auditSvc, m, log)
	records.afterCreate = func(*dispensing.Dispensing) {
		m.DispensingsTotal.WithLabelValues(string(dispensing.KindPatient)).Inc()
	}
	return &DispensingService{records: records, patients: patients}
}

func (s *DispensingService) List(ctx context.Context) ([]*dispensing.WithPatient, error) {
	records, err := s.records.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.expand(ctx, records)
}

func (s *DispensingService) Get(ctx context.Context, id uuid.UUID) (*dispensing.WithPatient, error) {
	record, err := s.records.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	out, err := s.expand(ctx, []*dispensing.Dispensing{record})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (s *DispensingService) Create(ctx context.Context, d *dispensing.Dispensing, actor Actor) (*dispensing.WithPatient, error) {
	record, err := s.records.Create(ctx, d, actor)
	if err != nil {
		return nil, err
	}
	out, err := s.expand(ctx, []*dispensing.Dispensing{record})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (s *DispensingService) Delete(ctx context.Context, id uuid.UUID, actor Actor) error {
	return s.records.Delete(ctx, id, actor)
}

// expand joins records with their patients in one lookup.
func (s *DispensingService) expand(ctx context.Context, records []*dispensing.Dispensing) ([]*dispensing.WithPatient, error) {
	patients, err := s.patients.GetByIDs(ctx, dispensing.PatientIDs(records))
	if err != nil {
		return nil, err
	}
	return dispensing.Expand(records, patients), nil
}

type DirectDispensingService struct {
	*ResourceService[dispensing.DirectDispensing, *dispensing.DirectDispensing]
}

func NewDirectDispensingService(
	repo domain.Repository[dispensing.DirectDispensing],
	auditSvc *AuditService,
	m *metrics.Collector,
	log *zap.Logger,
) *DirectDispensingService {
	base := NewResourceService[dispensing.DirectDispensing]("direct_dispensing", repo, auditSvc, m, log)
	base.afterCreate = func(*dispensing.DirectDispensing) {
		m.DispensingsTotal.WithLabelValues(string(dispensing.KindDirect)).Inc()
	}
	return &DirectDispensingService{ResourceService: base}
}

type PatientService struct {
	*ResourceService[patient.Patient, *patient.Patient]
}

func NewPatientService(repo patient.Repository, auditSvc *AuditService, m *metrics.Collector, log *zap.Logger) *PatientService {
	return &PatientService{
		ResourceService: NewResourceService[patient.Patient]("patient", repo, auditSvc, m, log),
	}
}
