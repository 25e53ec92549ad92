// Package bus abstrae el canal de fan-out en vivo. La entrega es best-effort:
// sin persistencia, sin reintentos, y solo para los suscriptores presentes al
// momento del publish. La durabilidad vive en el ledger, no aca.
package bus

import (
	"context"
	"strconv"
)

// PublicChannel es el canal global de la sala publica.
const PublicChannel = "public_room"

// UserChannel deriva el canal privado de entrada de un usuario. Cada usuario
// tiene exactamente uno.
func UserChannel(userID int64) string {
	return "user-" + strconv.FormatInt(userID, 10)
}

// Event es un payload entregado por una suscripcion, etiquetado con el canal
// en el que se publico.
type Event struct {
	Channel string
	Payload []byte
}

// Bus publica y suscribe sobre canales nombrados. El orden se preserva por
// canal para cada suscriptor; entre canales no hay garantia.
type Bus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channels ...string) (Subscription, error)
}

// Subscription es una secuencia perezosa e infinita de eventos. El canal de
// Events se cierra solo con Close o con el apagado del bus; no es reiniciable.
type Subscription interface {
	Events() <-chan Event
	Close() error
}
