package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"messenger/internal/domain"
	"messenger/internal/repository"
)

// SessionGate valida pares (usuario, token) contra el registro de sesiones
// activas. Lo comparten el API de escritura y el gateway de tiempo real.
type SessionGate struct {
	sessions repository.SessionRepository
}

func NewSessionGate(sessions repository.SessionRepository) *SessionGate {
	return &SessionGate{sessions: sessions}
}

// Validate responde true solo si existe una fila de sesion que coincide con
// ambos campos exactamente. Es un point lookup, no un scan.
func (g *SessionGate) Validate(ctx context.Context, userID int64, token string) (bool, error) {
	if userID <= 0 || strings.TrimSpace(token) == "" {
		return false, nil
	}
	return g.sessions.Exists(ctx, userID, token)
}

// Invalidate borra la sesion. Idempotente.
func (g *SessionGate) Invalidate(ctx context.Context, token string) error {
	return g.sessions.Delete(ctx, token)
}

// Issue crea una sesion nueva con token opaco. Una sesion invalidada despues
// de que un stream ya esta suscrito no cierra ese stream; el gateway valida
// una sola vez, al conectar.
func (g *SessionGate) Issue(ctx context.Context, userID int64) (domain.Session, error) {
	session := domain.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if err := g.sessions.Create(ctx, session); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}
