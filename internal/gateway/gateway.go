// Package gateway es el relay de tiempo real: una conexion websocket por
// cliente, autenticada una sola vez con el primer frame, suscrita al canal
// publico y al canal privado del usuario autenticado.
package gateway

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/websocket"

	"messenger/internal/bus"
)

// SessionValidator es lo que el gateway necesita del SessionGate.
type SessionValidator interface {
	Validate(ctx context.Context, userID int64, token string) (bool, error)
}

// WherePublic y WherePrivate etiquetan el origen de cada frame para que el
// cliente pueda rutear la presentacion.
const (
	WherePublic  = "public"
	WherePrivate = "private"
)

// helloFrame es el unico frame de control que el cliente manda: el primero.
type helloFrame struct {
	UserID    int64  `json:"user_id"`
	SessionID string `json:"session_id"`
}

// eventFrame es cada frame servidor -> cliente despues de la autenticacion.
type eventFrame struct {
	Where   string `json:"where"`
	Content string `json:"content"`
}

// Gateway maneja muchas conexiones concurrentes de larga vida. Cada conexion
// corre su propio loop; un error en una conexion nunca tumba el proceso.
type Gateway struct {
	logger      *zap.Logger
	gate        SessionValidator
	bus         bus.Bus
	authTimeout time.Duration
}

func New(logger *zap.Logger, gate SessionValidator, b bus.Bus, authTimeout time.Duration) *Gateway {
	if authTimeout <= 0 {
		authTimeout = 10 * time.Second
	}
	return &Gateway{
		logger:      logger,
		gate:        gate,
		bus:         b,
		authTimeout: authTimeout,
	}
}

// Handler expone el endpoint websocket /notifications.
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/notifications", websocket.Handler(g.handleConn))
	return mux
}

// handleConn lleva la conexion por sus estados: espera del frame de auth,
// validacion, suscripcion y forwarding hasta que el socket se cierra. No hay
// revalidacion a mitad de conexion: invalidar la sesion despues de suscribir
// no corta el stream.
func (g *Gateway) handleConn(conn *websocket.Conn) {
	defer conn.Close()

	// El frame de auth tiene plazo acotado; sin el, se corta sin mandar nada.
	_ = conn.SetReadDeadline(time.Now().Add(g.authTimeout))
	var hello helloFrame
	if err := websocket.JSON.Receive(conn, &hello); err != nil {
		g.logger.Warn("gateway auth frame not received", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ok, err := g.gate.Validate(ctx, hello.UserID, hello.SessionID)
	if err != nil {
		g.logger.Error("gateway session validation failed", zap.Error(err))
		return
	}
	if !ok {
		g.logger.Warn("gateway connection rejected", zap.Int64("user_id", hello.UserID))
		return
	}
	_ = conn.SetReadDeadline(time.Time{})

	sub, err := g.bus.Subscribe(ctx, bus.PublicChannel, bus.UserChannel(hello.UserID))
	if err != nil {
		g.logger.Error("gateway subscribe failed", zap.Error(err), zap.Int64("user_id", hello.UserID))
		return
	}
	defer sub.Close()

	// Drena lecturas del socket solo para detectar el cierre del cliente;
	// cancelar el contexto libera la suscripcion sin esperar otro evento.
	go func() {
		var discard string
		for {
			if err := websocket.Message.Receive(conn, &discard); err != nil {
				cancel()
				return
			}
		}
	}()

	g.logger.Info("gateway connection subscribed", zap.Int64("user_id", hello.UserID))
	g.forward(ctx, conn, sub)
	g.logger.Info("gateway connection closed", zap.Int64("user_id", hello.UserID))
}

// forward reenvia cada evento del bus al socket, etiquetado con su origen.
// El orden solo se preserva dentro de cada canal.
func (g *Gateway) forward(ctx context.Context, conn *websocket.Conn, sub bus.Subscription) {
	for {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			where := WherePrivate
			if ev.Channel == bus.PublicChannel {
				where = WherePublic
			}
			if err := websocket.JSON.Send(conn, eventFrame{Where: where, Content: string(ev.Payload)}); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
