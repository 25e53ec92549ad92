package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"messenger/internal/bus"
	"messenger/internal/domain"
	"messenger/internal/repository"
)

// SelfDisplayName es el nombre con el que el emisor ve su propia copia de un
// mensaje privado en su canal.
const SelfDisplayName = "Me"

var (
	// ErrStorageUnavailable indica que el ledger no confirmo la escritura o
	// no respondio la lectura. El caller debe reintentar; nada se publico.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrInvalidCursor indica un timestamp de paginacion que no parsea.
	ErrInvalidCursor = errors.New("invalid cursor timestamp")
)

// MessengerService implementa el camino de ingesta y las lecturas de
// historial. El orden es obligatorio: primero commit en el ledger, despues
// publish en el bus. Un publish fallido no falla la operacion.
type MessengerService struct {
	logger  *zap.Logger
	public  repository.PublicMessageRepository
	private repository.PrivateMessageRepository
	bus     bus.Bus
}

func NewMessengerService(
	logger *zap.Logger,
	public repository.PublicMessageRepository,
	private repository.PrivateMessageRepository,
	b bus.Bus,
) *MessengerService {
	return &MessengerService{
		logger:  logger,
		public:  public,
		private: private,
		bus:     b,
	}
}

// SendPublic confirma el mensaje en la sala publica y lo publica en el canal
// global para los suscriptores presentes.
func (s *MessengerService) SendPublic(ctx context.Context, userID int64, body, roomName, displayName string) error {
	msg, err := s.public.Append(ctx, userID, body, roomName)
	if err != nil {
		return errors.Join(ErrStorageUnavailable, err)
	}

	s.publish(ctx, bus.PublicChannel, domain.PublicPayload{Message: msg, DisplayName: displayName}, msg.ID)
	return nil
}

// SendPrivate confirma el mensaje del par y lo publica dos veces: al canal
// del emisor con nombre "Me" y al canal del receptor con el nombre del emisor.
func (s *MessengerService) SendPrivate(ctx context.Context, senderID, receiverID int64, body, displayName string) error {
	msg, err := s.private.Append(ctx, senderID, receiverID, body)
	if err != nil {
		return errors.Join(ErrStorageUnavailable, err)
	}

	s.publish(ctx, bus.UserChannel(senderID), domain.PrivatePayload{Message: msg, DisplayName: SelfDisplayName}, msg.ID)
	s.publish(ctx, bus.UserChannel(receiverID), domain.PrivatePayload{Message: msg, DisplayName: displayName}, msg.ID)
	return nil
}

// publish es fire-and-forget: el mensaje ya es durable, asi que una falla del
// bus se registra y se traga. La entrega en vivo se pierde, el historial no.
func (s *MessengerService) publish(ctx context.Context, channel string, payload any, messageID int64) {
	raw, err := json.Marshal(payload)
	if err != nil {
		s.logger.Warn("marshal bus payload failed", zap.Error(err), zap.Int64("message_id", messageID))
		return
	}
	if err := s.bus.Publish(ctx, channel, raw); err != nil {
		s.logger.Warn("bus publish failed",
			zap.Error(err),
			zap.String("channel", channel),
			zap.Int64("message_id", messageID),
		)
	}
}

// ReadPublic devuelve el historial publico despues del cursor, en orden de
// commit. Cursor vacio significa desde el principio.
func (s *MessengerService) ReadPublic(ctx context.Context, cursor string, limit, offset int) ([]domain.PublicMessageView, error) {
	after, err := parseCursor(cursor)
	if err != nil {
		return nil, err
	}
	views, err := s.public.ReadAfter(ctx, after, limit, offset)
	if err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}
	return views, nil
}

// ReadPrivate devuelve la conversacion del par sin orden (a, b) despues del
// cursor. El mismo resultado con el par invertido.
func (s *MessengerService) ReadPrivate(ctx context.Context, userA, userB int64, cursor string, limit, offset int) ([]domain.PrivateMessageView, error) {
	after, err := parseCursor(cursor)
	if err != nil {
		return nil, err
	}
	views, err := s.private.ReadBetween(ctx, userA, userB, after, limit, offset)
	if err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}
	return views, nil
}

func parseCursor(cursor string) (time.Time, error) {
	if cursor == "" {
		return domain.BeginningOfTime, nil
	}
	after, err := time.ParseInLocation(domain.TimeFormat, cursor, time.UTC)
	if err != nil {
		return time.Time{}, errors.Join(ErrInvalidCursor, err)
	}
	return after, nil
}
