package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/caro-backend/internal/pkg"
)

const shutdownTimeout = 5 * time.Second

type Options struct {
	SendBuffer     int
	ReadLimit      int64
	WriteTimeout   time.Duration
	PongTimeout    time.Duration
	PingPeriod     time.Duration
	AllowedOrigins []string
}

type Server struct {
	logger   *slog.Logger
	router   *Router
	upgrader websocket.Upgrader
	opts     Options
}

func New(logger *slog.Logger, router *Router, opts Options) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),
		router: router,
		opts:   opts,
	}

	server.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     server.checkOrigin,
	}

	return server
}

// Handler - returns the HTTP handler serving the /ws endpoint.
func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	return mux
}

// Start - starts WebSocket server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// upgradeToWebSocket - upgrades the connection to WebSocket and serves it until it closes.
func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeConnection")

	ws, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	sessionID := pkg.GenerateNewSessionID()
	conn := newConn(ws, that.opts.SendBuffer)

	if err = that.router.Connect(ctx, sessionID, conn); err != nil {
		log.Error("failed to register connection", "error", err)
		_ = ws.Close()
		return
	}

	log.Info("WebSocket connection established", "sessionID", sessionID, "remote", req.RemoteAddr)

	go that.writePump(ctx, conn)
	that.readPump(ctx, sessionID, conn)
}

func (that *Server) readPump(ctx context.Context, sessionID string, conn *Conn) {
	log := that.logger.With("method", "readPump", "sessionID", sessionID)

	defer func() {
		conn.Close()

		if err := that.router.Disconnect(ctx, sessionID); err != nil {
			log.Warn("failed to queue disconnect", "error", err)
		}
	}()

	if that.opts.ReadLimit > 0 {
		conn.ws.SetReadLimit(that.opts.ReadLimit)
	}

	that.extendReadDeadline(conn)
	conn.ws.SetPongHandler(func(string) error {
		that.extendReadDeadline(conn)
		return nil
	})

	for {
		_, data, err := conn.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("error reading message", "error", err)
			}
			return
		}

		if err = that.router.Dispatch(ctx, sessionID, data); err != nil {
			log.Warn("failed to queue message", "error", err)
			return
		}
	}
}

func (that *Server) writePump(ctx context.Context, conn *Conn) {
	log := that.logger.With("method", "writePump")

	var ping <-chan time.Time
	if that.opts.PingPeriod > 0 {
		ticker := time.NewTicker(that.opts.PingPeriod)
		defer ticker.Stop()
		ping = ticker.C
	}

	defer conn.ws.Close()

	for {
		select {
		case <-ctx.Done():
			_ = conn.ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(that.writeTimeout()))
			return
		case data, ok := <-conn.send:
			if !ok {
				_ = conn.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := conn.ws.SetWriteDeadline(time.Now().Add(that.writeTimeout())); err != nil {
				log.Error("failed to set write deadline", "error", err)
				return
			}

			if err := conn.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Warn("failed to write message", "error", err)
				return
			}
		case <-ping:
			if err := conn.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(that.writeTimeout())); err != nil {
				log.Warn("failed to write ping", "error", err)
				return
			}
		}
	}
}

func (that *Server) extendReadDeadline(conn *Conn) {
	if that.opts.PongTimeout <= 0 {
		return
	}

	_ = conn.ws.SetReadDeadline(time.Now().Add(that.opts.PongTimeout))
}

func (that *Server) writeTimeout() time.Duration {
	if that.opts.WriteTimeout <= 0 {
		return 10 * time.Second
	}

	return that.opts.WriteTimeout
}

// checkOrigin - an empty allow list accepts every origin.
func (that *Server) checkOrigin(req *http.Request) bool {
	if len(that.opts.AllowedOrigins) == 0 {
		return true
	}

	return slices.Contains(that.opts.AllowedOrigins, req.Header.Get("Origin"))
}
