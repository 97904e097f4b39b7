package app

import (
	"context"

	"github.com/systiva/accessctl/pkg/domain/audit"
	"github.com/systiva/accessctl/pkg/logger"
)

// AuditService emits structured audit events for engine operations.
// Events go to the structured log; durable audit storage belongs to the
// surrounding admin backend.
type AuditService struct {
	logger *logger.Logger
}

// NewAuditService creates a new AuditService.
func NewAuditService(log *logger.Logger) *AuditService {
	return &AuditService{logger: log.With("service", "audit")}
}

// AuditContext holds contextual information for audit logging.
type AuditContext struct {
	TenantKey  string
	ActorID    string
	ActorEmail string
	RequestID  string
}

// AuditEvent describes one auditable operation.
type AuditEvent struct {
	Action       audit.Action
	ResourceType audit.ResourceType
	ResourceID   string
	ResourceName string
	Result       audit.Result
	Severity     audit.Severity
	Message      string
	Metadata     map[string]any
}

// NewSuccessEvent creates an audit event for a successful operation.
func NewSuccessEvent(action audit.Action, resourceType audit.ResourceType, resourceID string) AuditEvent {
	return AuditEvent{
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Result:       audit.ResultSuccess,
		Severity:     audit.SeverityInfo,
	}
}

// NewFailureEvent creates an audit event for a failed operation.
func NewFailureEvent(action audit.Action, resourceType audit.ResourceType, resourceID string, err error) AuditEvent {
	e := AuditEvent{
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Result:       audit.ResultFailure,
		Severity:     audit.SeverityHigh,
	}
	if err != nil {
		e.Message = err.Error()
	}
	return e
}

// WithResourceName sets the resource display name.
func (e AuditEvent) WithResourceName(name string) AuditEvent {
	e.ResourceName = name
	return e
}

// WithMessage sets the event message.
func (e AuditEvent) WithMessage(msg string) AuditEvent {
	e.Message = msg
	return e
}

// WithSeverity sets the event severity.
func (e AuditEvent) WithSeverity(severity audit.Severity) AuditEvent {
	e.Severity = severity
	return e
}

// WithMetadata attaches a metadata key/value pair.
func (e AuditEvent) WithMetadata(key string, value any) AuditEvent {
	if e.Metadata == nil {
		e.Metadata = make(map[string]any)
	}
	e.Metadata[key] = value
	return e
}

// LogEvent emits an audit event.
func (s *AuditService) LogEvent(_ context.Context, actx AuditContext, event AuditEvent) {
	args := []any{
		"action", event.Action.String(),
		"resource_type", event.ResourceType.String(),
		"resource_id", event.ResourceID,
		"result", string(event.Result),
		"severity", string(event.Severity),
	}
	if event.ResourceName != "" {
		args = append(args, "resource_name", event.ResourceName)
	}
	if event.Message != "" {
		args = append(args, "message", event.Message)
	}
	if actx.TenantKey != "" {
		args = append(args, "tenant", actx.TenantKey)
	}
	if actx.ActorID != "" {
		args = append(args, "actor_id", actx.ActorID)
	}
	if actx.RequestID != "" {
		args = append(args, "request_id", actx.RequestID)
	}
	for k, v := range event.Metadata {
		args = append(args, k, v)
	}
	s.logger.Info("audit event", args...)
}
