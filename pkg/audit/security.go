// Package audit provides security audit logging for SIEM consumption.
// It logs security-relevant events in structured JSON format for easy parsing
// and integration with security information and event management systems.
package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SecurityEventType categorizes security-relevant events for filtering and alerting.
type SecurityEventType string

const (
	// EventAuthFailure is logged when a request presents a missing or invalid token.
	EventAuthFailure SecurityEventType = "auth_failure"
	// EventPermissionDenied is logged when an authenticated user is refused an action.
	EventPermissionDenied SecurityEventType = "permission_denied"
	// EventAccountDeleted is logged when a user account is removed.
	EventAccountDeleted SecurityEventType = "account_deleted"
)

// SecurityEvent represents an auditable security event with all relevant context
// for SIEM ingestion and analysis.
type SecurityEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType SecurityEventType `json:"event_type"`
	ActorID   uuid.UUID         `json:"actor_id,omitempty"`
	TargetID  uuid.UUID         `json:"target_id,omitempty"`
	ClientIP  string            `json:"client_ip,omitempty"`
	Details   any               `json:"details"`
	Severity  string            `json:"severity"` // info, warning, critical
}

// SecurityAuditor logs security events for SIEM consumption.
// Events are logged in structured JSON format with appropriate severity levels.
type SecurityAuditor struct {
	logger *zap.Logger
}

// NewSecurityAuditor creates a new security auditor with a dedicated logger namespace.
// The "security_audit" namespace makes the events easy to filter in SIEM systems.
func NewSecurityAuditor(logger *zap.Logger) *SecurityAuditor {
	return &SecurityAuditor{logger: logger.Named("security_audit")}
}

// LogAuthFailure records a rejected authentication attempt. Logged at WARN
// level: isolated failures are usually expired tokens, but repeated failures
// from one client IP indicate credential probing.
func (a *SecurityAuditor) LogAuthFailure(reason, path, clientIP string) {
	event := SecurityEvent{
		Timestamp: time.Now().UTC(),
		EventType: EventAuthFailure,
		ClientIP:  clientIP,
		Details: map[string]string{
			"reason": reason,
			"path":   path,
		},
		Severity: "warning",
	}

	// Marshaling known types should never fail
	eventJSON, _ := json.Marshal(event)

	a.logger.Warn("Authentication failed",
		zap.String("event_json", string(eventJSON)),
		zap.String("reason", reason),
		zap.String("path", path),
		zap.String("client_ip", clientIP),
		zap.String("severity", "warning"),
	)
}

// LogPermissionDenied records an authenticated user being refused an action
// on a resource they could name. Logged at WARN level: a burst of denials for
// one actor suggests enumeration of other users' resources.
func (a *SecurityAuditor) LogPermissionDenied(actorID, targetID uuid.UUID, resource, action, clientIP string) {
	event := SecurityEvent{
		Timestamp: time.Now().UTC(),
		EventType: EventPermissionDenied,
		ActorID:   actorID,
		TargetID:  targetID,
		ClientIP:  clientIP,
		Details: map[string]string{
			"resource": resource,
			"action":   action,
		},
		Severity: "warning",
	}

	eventJSON, _ := json.Marshal(event)

	a.logger.Warn("Permission denied",
		zap.String("event_json", string(eventJSON)),
		zap.String("actor_id", actorID.String()),
		zap.String("target_id", targetID.String()),
		zap.String("resource", resource),
		zap.String("action", action),
		zap.String("client_ip", clientIP),
		zap.String("severity", "warning"),
	)
}

// LogAccountDeleted records the removal of a user account. Account deletion
// is irreversible and repoints authored content to the sentinel user, so an
// audit trail of who deleted whom is kept at INFO level.
func (a *SecurityAuditor) LogAccountDeleted(actorID, targetID uuid.UUID, clientIP string) {
	event := SecurityEvent{
		Timestamp: time.Now().UTC(),
		EventType: EventAccountDeleted,
		ActorID:   actorID,
		TargetID:  targetID,
		ClientIP:  clientIP,
		Details: map[string]string{
			"self_deletion": boolString(actorID == targetID),
		},
		Severity: "info",
	}

	eventJSON, _ := json.Marshal(event)

	a.logger.Info("Account deleted",
		zap.String("event_json", string(eventJSON)),
		zap.String("actor_id", actorID.String()),
		zap.String("target_id", targetID.String()),
		zap.String("client_ip", clientIP),
		zap.String("severity", "info"),
	)
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
