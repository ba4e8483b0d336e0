package service

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain/visit"
	"github.com/dmehra2102/prod-golang-projects/hms/pkg/metrics"
)

type VisitService struct {
	*ResourceService[visit.Visit, *visit.Visit]
	visits visit.Repository
}

func NewVisitService(repo visit.Repository, auditSvc *AuditService, m *metrics.Collector, log *zap.Logger) *VisitService {
	base := NewResourceService[visit.Visit]("visit", repo, auditSvc, m, log)
	// A new visit always starts at the beginning of its lifecycle.
	base.beforeCreate = func(v *visit.Visit) {
		v.Status = ""
		v.CompletedAt = nil
	}
	base.afterCreate = func(v *visit.Visit) {
		m.VisitTransitionsTotal.WithLabelValues(string(v.Status)).Inc()
	}
	return &VisitService{ResourceService: base, visits: repo}
}

func (s *VisitService) ConfirmPayment(ctx context.Context, id uuid.UUID, expectedVersion *int, actor Actor) (*visit.Visit, error) {
	return s.apply(ctx, "ConfirmPayment", id, expectedVersion, actor, "status", (*visit.Visit).ConfirmPayment)
}

func (s *VisitService) Start(ctx context.Context, id uuid.UUID, expectedVersion *int, actor Actor) (*visit.Visit, error) {
	return s.apply(ctx, "Start", id, expectedVersion, actor, "status", (*visit.Visit).Start)
}

func (s *VisitService) RecordVitals(ctx context.Context, id uuid.UUID, vitals visit.Vitals, expectedVersion *int, actor Actor) (*visit.Visit, error) {
	return s.apply(ctx, "RecordVitals", id, expectedVersion, actor, "vitals", func(v *visit.Visit) error {
		return v.RecordVitals(vitals)
	})
}

func (s *VisitService) RecordDiagnosis(ctx context.Context, id uuid.UUID, d visit.Diagnosis, expectedVersion *int, actor Actor) (*visit.Visit, error) {
	return s.apply(ctx, "RecordDiagnosis", id, expectedVersion, actor, "diagnosis", func(v *visit.Visit) error {
		return v.RecordDiagnosis(d)
	})
}

func (s *VisitService) AddLabOrder(ctx context.Context, id uuid.UUID, o visit.LabOrder, expectedVersion *int, actor Actor) (*visit.Visit, error) {
	return s.apply(ctx, "AddLabOrder", id, expectedVersion, actor, "labOrders", func(v *visit.Visit) error {
		_, err := v.AddLabOrder(o)
		return err
	})
}

func (s *VisitService) AddPrescription(ctx context.Context, id uuid.UUID, p visit.Prescription, expectedVersion *int, actor Actor) (*visit.Visit, error) {
	return s.apply(ctx, "AddPrescription", id, expectedVersion, actor, "prescriptions", func(v *visit.Visit) error {
		_, err := v.AddPrescription(p)
		return err
	})
}

func (s *VisitService) End(ctx context.Context, id uuid.UUID, notes string, expectedVersion *int, actor Actor) (*visit.Visit, error) {
	return s.apply(ctx, "End", id, expectedVersion, actor, "status,notes", func(v *visit.Visit) error {
		return v.End(notes)
	})
}

// apply runs one lifecycle step as read, decide, versioned write. A write
// racing with another request fails with domain.ErrVersionConflict.
func (s *VisitService) apply(
	ctx context.Context,
	op string,
	id uuid.UUID,
	expectedVersion *int,
	actor Actor,
	changes string,
	step func(*visit.Visit) error,
) (v *visit.Visit, err error) {
	ctx, span := s.startSpan(ctx, op, id)
	defer func() { endSpan(span, err) }()

	v, err = s.visits.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if expectedVersion != nil && *expectedVersion != v.Version {
		return nil, domain.ErrVersionConflict
	}

	from := v.Status
	if err := step(v); err != nil {
		return nil, err
	}
	if err := s.visits.Update(ctx, v); err != nil {
		s.log.Warn("failed to update visit", zap.String("id", id.String()), zap.String("op", op), zap.Error(err))
		return nil, err
	}

	span.SetAttributes(
		attribute.String("visit.status.from", string(from)),
		attribute.String("visit.status.to", string(v.Status)),
	)
	if v.Status != from {
		s.metrics.VisitTransitionsTotal.WithLabelValues(string(v.Status)).Inc()
	}
	s.recordWrite(ctx, domain.ActionUpdate, id, actor, changes)
	return v, nil
}
