package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/99minutos/agency-portal/internal/core/domain"
)

// AuditSink writes every session transition to the audit log.
type AuditSink struct {
	log zerolog.Logger
}

func NewAuditSink(log zerolog.Logger) *AuditSink {
	return &AuditSink{log: log}
}

func (a *AuditSink) Handle(_ context.Context, change domain.SessionChange) error {
	ev := a.log.Info().
		Str("session_id", change.SessionID).
		Str("transition", string(change.Kind)).
		Uint64("session", change.State.Counter).
		Bool("authenticated", change.State.Identity != nil)
	if id := change.State.Identity; id != nil {
		ev = ev.Int64("user_id", id.ID).Str("role", string(id.Role))
	}
	ev.Msg("session transition")
	return nil
}
