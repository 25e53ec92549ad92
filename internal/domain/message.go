package domain

import "time"

// TimeFormat es el formato de timestamps en el wire y en el cursor de paginacion.
// La granularidad es de segundos; el cursor hereda esa granularidad.
const TimeFormat = "2006-01-02 15:04:05"

// BeginningOfTime es el cursor implicito cuando el cliente no manda timestamp.
var BeginningOfTime = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// PublicMessage es un mensaje confirmado en la sala publica. El ID y el
// timestamp los asigna el ledger al momento del commit, nunca el cliente.
type PublicMessage struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Body      string    `json:"body"`
	RoomName  string    `json:"room_name"`
	Timestamp time.Time `json:"timestamp"`
}

// PrivateMessage es un mensaje confirmado entre un par de usuarios.
// Es visible para ambos sin importar quien fue el emisor.
type PrivateMessage struct {
	ID         int64     `json:"id"`
	SenderID   int64     `json:"sender_id"`
	ReceiverID int64     `json:"receiver_id"`
	Body       string    `json:"body"`
	Timestamp  time.Time `json:"timestamp"`
}

// PublicPayload es el payload que se publica en el canal publico del bus.
// Serializa como tupla JSON de orden fijo:
// [id, user_id, body, room_name, timestamp, display_name].
type PublicPayload struct {
	Message     PublicMessage
	DisplayName string
}

func (p PublicPayload) MarshalJSON() ([]byte, error) {
	return marshalTuple(
		p.Message.ID,
		p.Message.UserID,
		p.Message.Body,
		p.Message.RoomName,
		p.Message.Timestamp.UTC().Format(TimeFormat),
		p.DisplayName,
	)
}

// PrivatePayload es el payload que se publica en el canal privado de cada
// destinatario. El emisor recibe su propia copia con DisplayName "Me".
// Tupla JSON de orden fijo:
// [id, sender_id, receiver_id, body, timestamp, display_name].
type PrivatePayload struct {
	Message     PrivateMessage
	DisplayName string
}

func (p PrivatePayload) MarshalJSON() ([]byte, error) {
	return marshalTuple(
		p.Message.ID,
		p.Message.SenderID,
		p.Message.ReceiverID,
		p.Message.Body,
		p.Message.Timestamp.UTC().Format(TimeFormat),
		p.DisplayName,
	)
}

// PublicMessageView es una fila del historial publico ya unida con el nombre
// del autor. Tupla JSON: [author_id, body, timestamp, author_name].
type PublicMessageView struct {
	UserID     int64
	Body       string
	Timestamp  time.Time
	AuthorName string
}

func (v PublicMessageView) MarshalJSON() ([]byte, error) {
	return marshalTuple(
		v.UserID,
		v.Body,
		v.Timestamp.UTC().Format(TimeFormat),
		v.AuthorName,
	)
}

// PrivateMessageView es una fila del historial privado con ambos nombres.
// Tupla JSON: [sender_id, sender_name, receiver_id, receiver_name, body, timestamp].
type PrivateMessageView struct {
	SenderID     int64
	SenderName   string
	ReceiverID   int64
	ReceiverName string
	Body         string
	Timestamp    time.Time
}

func (v PrivateMessageView) MarshalJSON() ([]byte, error) {
	return marshalTuple(
		v.SenderID,
		v.SenderName,
		v.ReceiverID,
		v.ReceiverName,
		v.Body,
		v.Timestamp.UTC().Format(TimeFormat),
	)
}
