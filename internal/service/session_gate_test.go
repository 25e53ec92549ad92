package service

import (
	"context"
	"testing"

	"messenger/internal/domain"
)

type mockSessionRepo struct {
	rows map[string]int64
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{rows: make(map[string]int64)}
}

func (m *mockSessionRepo) Create(_ context.Context, session domain.Session) error {
	m.rows[session.Token] = session.UserID
	return nil
}

func (m *mockSessionRepo) Exists(_ context.Context, userID int64, token string) (bool, error) {
	owner, ok := m.rows[token]
	return ok && owner == userID, nil
}

func (m *mockSessionRepo) Delete(_ context.Context, token string) error {
	delete(m.rows, token)
	return nil
}

func TestSessionGate_IssueThenValidate(t *testing.T) {
	ctx := context.Background()
	gate := NewSessionGate(newMockSessionRepo())

	session, err := gate.Issue(ctx, 42)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if session.Token == "" || session.UserID != 42 {
		t.Fatalf("unexpected session: %+v", session)
	}

	ok, err := gate.Validate(ctx, 42, session.Token)
	if err != nil || !ok {
		t.Fatalf("expected valid session, got %v,%v", ok, err)
	}

	// El token solo vale para su dueno.
	ok, err = gate.Validate(ctx, 43, session.Token)
	if err != nil || ok {
		t.Fatalf("expected invalid for other user, got %v,%v", ok, err)
	}
}

func TestSessionGate_InvalidateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	gate := NewSessionGate(newMockSessionRepo())

	session, err := gate.Issue(ctx, 7)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if err := gate.Invalidate(ctx, session.Token); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if err := gate.Invalidate(ctx, session.Token); err != nil {
		t.Fatalf("second invalidate should be a no-op: %v", err)
	}

	ok, err := gate.Validate(ctx, 7, session.Token)
	if err != nil || ok {
		t.Fatalf("expected invalid after logout, got %v,%v", ok, err)
	}
}

func TestSessionGate_RejectsEmptyInput(t *testing.T) {
	ctx := context.Background()
	gate := NewSessionGate(newMockSessionRepo())

	if ok, _ := gate.Validate(ctx, 0, "token"); ok {
		t.Fatalf("zero user id should not validate")
	}
	if ok, _ := gate.Validate(ctx, 1, "  "); ok {
		t.Fatalf("blank token should not validate")
	}
}
