package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"messenger/internal/bus"
	"messenger/internal/domain"
	"messenger/internal/service"
)

type stubPublicRepo struct {
	appendErr error
	rows      []domain.PublicMessageView
}

func (s *stubPublicRepo) Append(_ context.Context, userID int64, body, roomName string) (domain.PublicMessage, error) {
	if s.appendErr != nil {
		return domain.PublicMessage{}, s.appendErr
	}
	return domain.PublicMessage{
		ID:        1,
		UserID:    userID,
		Body:      body,
		RoomName:  roomName,
		Timestamp: time.Date(2024, 5, 3, 10, 20, 30, 0, time.UTC),
	}, nil
}

func (s *stubPublicRepo) ReadAfter(_ context.Context, _ time.Time, _, _ int) ([]domain.PublicMessageView, error) {
	return s.rows, nil
}

type stubPrivateRepo struct{}

func (stubPrivateRepo) Append(_ context.Context, senderID, receiverID int64, body string) (domain.PrivateMessage, error) {
	return domain.PrivateMessage{
		ID:         1,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Body:       body,
		Timestamp:  time.Date(2024, 5, 3, 10, 20, 30, 0, time.UTC),
	}, nil
}

func (stubPrivateRepo) ReadBetween(_ context.Context, _, _ int64, _ time.Time, _, _ int) ([]domain.PrivateMessageView, error) {
	return nil, nil
}

func newTestRouter(publicRepo *stubPublicRepo, b bus.Bus) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	messengerSvc := service.NewMessengerService(logger, publicRepo, stubPrivateRepo{}, b)
	msgH := NewMessageHandler(logger, messengerSvc)
	return NewRouter(logger, &mockGate{valid: true}, &UserHandler{logger: logger}, msgH)
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Session-Id", "tok-1")
	req.Header.Set("User-Id", "3")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestSendPublic_PublishesToBus(t *testing.T) {
	b := bus.NewMemory()
	r := newTestRouter(&stubPublicRepo{}, b)

	sub, err := b.Subscribe(context.Background(), bus.PublicChannel)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Close()

	rec := postJSON(t, r, "/api/public/send_message", gin.H{
		"user_id":   3,
		"message":   "hi",
		"name":      "alice",
		"room_name": "General",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}

	select {
	case ev := <-sub.Events():
		var tuple []any
		if err := json.Unmarshal(ev.Payload, &tuple); err != nil {
			t.Fatalf("payload is not a tuple: %v", err)
		}
		if tuple[2].(string) != "hi" || tuple[5].(string) != "alice" {
			t.Fatalf("unexpected tuple: %v", tuple)
		}
	case <-time.After(time.Second):
		t.Fatalf("nothing published")
	}
}

func TestSendPublic_ValidationFailure(t *testing.T) {
	r := newTestRouter(&stubPublicRepo{}, bus.NewMemory())

	rec := postJSON(t, r, "/api/public/send_message", gin.H{"user_id": 3})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSendPublic_StorageFailure(t *testing.T) {
	r := newTestRouter(&stubPublicRepo{appendErr: errors.New("db down")}, bus.NewMemory())

	rec := postJSON(t, r, "/api/public/send_message", gin.H{
		"user_id":   3,
		"message":   "hi",
		"room_name": "General",
	})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestReadPublic_ReturnsWireTuples(t *testing.T) {
	repo := &stubPublicRepo{rows: []domain.PublicMessageView{{
		UserID:     3,
		Body:       "hi",
		Timestamp:  time.Date(2024, 5, 3, 10, 20, 30, 0, time.UTC),
		AuthorName: "alice",
	}}}
	r := newTestRouter(repo, bus.NewMemory())

	rec := postJSON(t, r, "/api/public/read_messages", gin.H{"timestamp": ""})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}

	var resp struct {
		Messages [][]any `json:"messages"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(resp.Messages))
	}
	row := resp.Messages[0]
	if row[0].(float64) != 3 || row[1].(string) != "hi" || row[2].(string) != "2024-05-03 10:20:30" || row[3].(string) != "alice" {
		t.Fatalf("unexpected row: %v", row)
	}
}

func TestReadPublic_InvalidCursorIs400(t *testing.T) {
	r := newTestRouter(&stubPublicRepo{}, bus.NewMemory())

	rec := postJSON(t, r, "/api/public/read_messages", gin.H{"timestamp": "not-a-time"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSendPrivate_RequiresSession(t *testing.T) {
	r := newTestRouter(&stubPublicRepo{}, bus.NewMemory())

	raw, _ := json.Marshal(gin.H{"sender_id": 1, "receiver_id": 2, "message": "secret"})
	req := httptest.NewRequest(http.MethodPost, "/api/private/send_message", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session headers, got %d", rec.Code)
	}
}

func TestSendPrivate_FansOutToBothUsers(t *testing.T) {
	b := bus.NewMemory()
	r := newTestRouter(&stubPublicRepo{}, b)

	senderSub, err := b.Subscribe(context.Background(), bus.UserChannel(1))
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer senderSub.Close()
	receiverSub, err := b.Subscribe(context.Background(), bus.UserChannel(2))
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer receiverSub.Close()

	rec := postJSON(t, r, "/api/private/send_message", gin.H{
		"sender_id":   1,
		"receiver_id": 2,
		"message":     "secret",
		"name":        "alice",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}

	for name, sub := range map[string]bus.Subscription{"sender": senderSub, "receiver": receiverSub} {
		select {
		case <-sub.Events():
		case <-time.After(time.Second):
			t.Fatalf("%s received nothing", name)
		}
	}
}
