package domain

import "time"

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserRef es la proyeccion minima usada por busquedas y por la lista de chats.
// Tupla JSON: [id, username].
type UserRef struct {
	ID       int64
	Username string
}

func (u UserRef) MarshalJSON() ([]byte, error) {
	return marshalTuple(u.ID, u.Username)
}
