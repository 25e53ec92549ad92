package domain

import "time"

// Session es una fila de sesion activa. Existe desde el login hasta que se
// borra por logout o revocacion; no hay expiracion automatica.
type Session struct {
	Token     string    `json:"session_id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
