package service

import (
	"bytes"
	"context"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/hms/pkg/metrics"
)

// ResourceService is the CRUD contract shared by every resource: list, get,
// create, merge-update and delete, with auditing and metrics on writes.
type ResourceService[T any, P domain.DocumentPtr[T]] struct {
	resource string
	repo     domain.Repository[T]
	audit    *AuditService
	metrics  *metrics.Collector
	log      *zap.Logger

	beforeCreate func(doc P)
	afterCreate  func(doc P)
	// checkUpdate runs once the merged document has passed validation.
	checkUpdate func(prev, next P) error
}

func NewResourceService[T any, P domain.DocumentPtr[T]](
	resource string,
	repo domain.Repository[T],
	audit *AuditService,
	m *metrics.Collector,
	log *zap.Logger,
) *ResourceService[T, P] {
	return &ResourceService[T, P]{
		resource: resource,
		repo:     repo,
		audit:    audit,
		metrics:  m,
		log:      log.With(zap.String("resource", resource)),
	}
}

func (s *ResourceService[T, P]) List(ctx context.Context) (docs []*T, err error) {
	ctx, span := tracer.Start(ctx, s.resource+".List")
	defer func() { endSpan(span, err) }()

	docs, err = s.repo.List(ctx)
	if err != nil {
		s.log.Error("failed to list documents", zap.Error(err))
		return nil, err
	}
	span.SetAttributes(attribute.Int("result.count", len(docs)))
	return docs, nil
}

func (s *ResourceService[T, P]) Get(ctx context.Context, id uuid.UUID) (doc *T, err error) {
	ctx, span := s.startSpan(ctx, "Get", id)
	defer func() { endSpan(span, err) }()

	return s.repo.GetByID(ctx, id)
}

// Create persists doc as a new document. Any header fields sent by the
// client are discarded.
func (s *ResourceService[T, P]) Create(ctx context.Context, doc *T, actor Actor) (_ *T, err error) {
	ctx, span := tracer.Start(ctx, s.resource+".Create")
	defer func() { endSpan(span, err) }()

	p := P(doc)
	*p.Meta() = domain.Base{}
	if s.beforeCreate != nil {
		s.beforeCreate(p)
	}
	p.ApplyDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, doc); err != nil {
		s.log.Warn("failed to create document", zap.Error(err))
		return nil, err
	}

	if s.afterCreate != nil {
		s.afterCreate(p)
	}
	s.recordWrite(ctx, domain.ActionCreate, p.Meta().ID, actor, "")
	return doc, nil
}

// Update merges the JSON object patch onto the stored document. Fields absent
// from the patch keep their values; the document header is never taken from
// the patch. A non-nil expectedVersion must equal the stored version.
func (s *ResourceService[T, P]) Update(ctx context.Context, id uuid.UUID, patch []byte, expectedVersion *int, actor Actor) (*T, error) {
	return s.update(ctx, id, patch, expectedVersion, actor, nil)
}

func (s *ResourceService[T, P]) update(
	ctx context.Context,
	id uuid.UUID,
	patch []byte,
	expectedVersion *int,
	actor Actor,
	mutate func(P) error,
) (_ *T, err error) {
	ctx, span := s.startSpan(ctx, "Update", id)
	defer func() { endSpan(span, err) }()

	fields, reset, err := patchFields(patch)
	if err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	header := *P(current).Meta()
	if expectedVersion != nil && *expectedVersion != header.Version {
		return nil, domain.ErrVersionConflict
	}

	next, err := clone(current)
	if err != nil {
		return nil, err
	}
	if reset != nil {
		// decoding into a reused slice keeps stale element fields
		if err := json.Unmarshal(reset, next); err != nil {
			return nil, fmt.Errorf("resetting arrays: %w", err)
		}
	}
	if err := json.Unmarshal(patch, next); err != nil {
		return nil, &domain.ValidationError{Fields: []string{"invalid body: " + err.Error()}}
	}
	p := P(next)
	*p.Meta() = header
	if mutate != nil {
		if err := mutate(p); err != nil {
			return nil, err
		}
	}
	p.ApplyDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if s.checkUpdate != nil {
		if err := s.checkUpdate(P(current), p); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, next); err != nil {
		s.log.Warn("failed to update document", zap.String("id", id.String()), zap.Error(err))
		return nil, err
	}

	s.recordWrite(ctx, domain.ActionUpdate, id, actor, strings.Join(fields, ","))
	return next, nil
}

func (s *ResourceService[T, P]) Delete(ctx context.Context, id uuid.UUID, actor Actor) (err error) {
	ctx, span := s.startSpan(ctx, "Delete", id)
	defer func() { endSpan(span, err) }()

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordWrite(ctx, domain.ActionDelete, id, actor, "")
	return nil
}

func (s *ResourceService[T, P]) startSpan(ctx context.Context, op string, id uuid.UUID) (context.Context, trace.Span) {
	return tracer.Start(ctx, s.resource+"."+op,
		trace.WithAttributes(attribute.String(s.resource+".id", id.String())),
	)
}

func (s *ResourceService[T, P]) recordWrite(ctx context.Context, action domain.AuditAction, id uuid.UUID, actor Actor, changes string) {
	s.metrics.ResourceWritesTotal.WithLabelValues(s.resource, string(action)).Inc()
	s.audit.LogAsync(ctx, AuditEntry{
		Actor:        actor,
		Action:       action,
		ResourceType: s.resource,
		ResourceID:   id.String(),
		Changes:      changes,
	})
	s.log.Info("document written",
		zap.String("action", string(action)),
		zap.String("id", id.String()),
		zap.String("request_id", actor.RequestID),
	)
}

// patchFields returns the sorted top-level keys of a JSON object patch (only
// the keys are audited, never the values) and a patch nulling every key whose
// value is an array, so arrays are replaced rather than merged by position.
func patchFields(patch []byte) ([]string, []byte, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(patch, &obj); err != nil || obj == nil {
		return nil, nil, &domain.ValidationError{Fields: []string{"body must be a JSON object"}}
	}
	fields := make([]string, 0, len(obj))
	arrays := make(map[string]json.RawMessage)
	for k, v := range obj {
		fields = append(fields, k)
		if trimmed := bytes.TrimSpace(v); len(trimmed) > 0 && trimmed[0] == '[' {
			arrays[k] = json.RawMessage("null")
		}
	}
	slices.Sort(fields)

	if len(arrays) == 0 {
		return fields, nil, nil
	}
	reset, err := json.Marshal(arrays)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding array reset: %w", err)
	}
	return fields, reset, nil
}

// clone deep-copies doc, including fields hidden from JSON.
func clone[T any](doc *T) (*T, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, fmt.Errorf("copying document: %w", err)
	}
	out := new(T)
	if err := gob.NewDecoder(&buf).Decode(out); err != nil {
		return nil, fmt.Errorf("copying document: %w", err)
	}
	return out, nil
}
