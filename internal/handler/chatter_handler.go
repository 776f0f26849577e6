package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"news-chatter-be/internal/dto"
	"news-chatter-be/internal/pkg/logger"
	"news-chatter-be/internal/pkg/serverutils"
	"news-chatter-be/internal/session"
	ws "news-chatter-be/internal/websocket"
)

// ChatterHandler owns the voice websocket: auth on upgrade, then a read loop
// feeding the per-connection session.
type ChatterHandler struct {
	orchestrator *session.Orchestrator
	registry     *ws.SessionRegistry
	logger       logger.ILogger
}

func NewChatterHandler(
	orchestrator *session.Orchestrator,
	registry *ws.SessionRegistry,
	log logger.ILogger,
) *ChatterHandler {
	return &ChatterHandler{
		orchestrator: orchestrator,
		registry:     registry,
		logger:       log,
	}
}

// Upgrade authenticates the handshake. Browsers cannot set headers on
// websocket requests, so the JWT rides the token query parameter. Identity is
// optional: without a token the session runs anonymously and only skips
// preference filters and history persistence. A token that is present but
// invalid is still rejected.
func (h *ChatterHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	userId := ""
	if token := c.Query("token"); token != "" {
		parsed, err := serverutils.ParseUserToken(token)
		if err != nil {
			h.logger.Warn("chatter", "websocket auth rejected", map[string]interface{}{
				"error": err.Error(),
			})
			return fiber.ErrUnauthorized
		}
		userId = parsed
	}

	c.Locals("user_id", userId)
	return c.Next()
}

// Handler returns the upgraded connection handler.
func (h *ChatterHandler) Handler() fiber.Handler {
	return websocket.New(h.serve)
}

func (h *ChatterHandler) serve(conn *websocket.Conn) {
	userId, _ := conn.Locals("user_id").(string)
	client := ws.NewClient(conn)
	sess := session.New(userId)

	ctx := context.Background()
	if userId != "" {
		h.registry.Connected(ctx, userId)
	}
	h.logger.Info("chatter", "session opened", map[string]interface{}{"user_id": userId})

	defer func() {
		sess.Reset() // cancels any in-flight turn
		if userId != "" {
			h.registry.Disconnected(ctx, userId)
		}
		client.Close()
		h.logger.Info("chatter", "session closed", map[string]interface{}{"user_id": userId})
	}()

	for {
		messageType, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if userId != "" {
			h.registry.Touch(ctx, userId)
		}

		switch messageType {
		case websocket.BinaryMessage:
			h.onAudioChunk(sess, client, payload)
		case websocket.TextMessage:
			h.onControl(sess, client, payload)
		}
	}
}

func (h *ChatterHandler) onAudioChunk(sess *session.Session, client *ws.Client, payload []byte) {
	buffered, err := sess.AppendChunk(payload)
	if err != nil {
		// A turn is in flight; late audio is dropped, not queued.
		h.logger.Debug("chatter", "audio chunk dropped while busy", map[string]interface{}{
			"user_id": sess.UserId,
			"size":    len(payload),
		})
		return
	}

	ack := dto.NewStatusMessage(dto.StatusChunkReceived)
	ack.Size = buffered
	_ = client.SendJSON(ack)
}

func (h *ChatterHandler) onControl(sess *session.Session, client *ws.Client, payload []byte) {
	var control dto.ControlMessage
	if err := json.Unmarshal(payload, &control); err != nil {
		_ = client.SendJSON(dto.NewErrorMessage("malformed control message"))
		return
	}

	switch control.Type {
	case dto.ControlAudio:
		audio, err := base64.StdEncoding.DecodeString(control.Data)
		if err != nil {
			_ = client.SendJSON(dto.NewErrorMessage("invalid base64 audio payload"))
			return
		}
		h.onAudioChunk(sess, client, audio)
	case dto.ControlComplete:
		h.startTurn(sess, client)
	case dto.ControlReset:
		sess.Reset()
		_ = client.SendJSON(dto.NewStatusMessage(dto.StatusReset))
		h.logger.Debug("chatter", "session reset", map[string]interface{}{"user_id": sess.UserId})
	default:
		_ = client.SendJSON(dto.NewErrorMessage("unknown control type: " + control.Type))
	}
}

func (h *ChatterHandler) startTurn(sess *session.Session, client *ws.Client) {
	turnCtx, cancel := context.WithCancel(context.Background())

	audio, err := sess.BeginProcessing(cancel)
	if err != nil {
		cancel()
		switch err {
		case session.ErrBusy:
			// A turn is already running; this complete frame is a no-op.
			h.logger.Debug("chatter", "complete ignored while busy", map[string]interface{}{
				"user_id": sess.UserId,
			})
		case session.ErrNoAudio:
			_ = client.SendJSON(dto.NewErrorMessage("no audio received"))
		default:
			_ = client.SendJSON(dto.NewErrorMessage(err.Error()))
		}
		return
	}

	// The read loop keeps running so reset frames can cancel this turn.
	go h.orchestrator.RunTurn(turnCtx, sess, client, audio, "audio/webm")
}
