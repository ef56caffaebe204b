package handlers

import (
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/warelabs/warelay/internal/metrics"
	"github.com/warelabs/warelay/internal/models"
)

// fallbackReply is sent when the chat API answers without a reply field.
const fallbackReply = "I'm not sure how to reply to that."

// WebhookResponse represents the webhook success response.
type WebhookResponse struct {
	Status string `json:"status"`
}

// Webhook handles one provider callback: forward the message to the chat
// API, relay the generated reply back to the sender through Twilio, and
// answer with a status reflecting where the pipeline stopped.
//
// 400: From or Body missing or empty; no outbound call is made.
// 502: chat API failed; Twilio is never called.
// 500: Twilio send failed.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	metrics.WebhooksReceived.Inc()

	deliveryID := ulid.Make().String()
	logger := h.logger.With().Str("delivery_id", deliveryID).Logger()

	if err := r.ParseForm(); err != nil {
		metrics.RelayFailures.WithLabelValues("validate").Inc()
		logger.Warn().Err(err).Msg("unparseable webhook payload")
		h.Error(w, http.StatusBadRequest, "invalid payload")
		return
	}

	msg := models.InboundMessage{
		Sender: models.NormalizeAddress(r.PostForm.Get("From")),
		Body:   r.PostForm.Get("Body"),
	}
	if msg.Sender == "" || msg.Body == "" {
		metrics.RelayFailures.WithLabelValues("validate").Inc()
		logger.Warn().Msg("missing required fields in webhook payload")
		h.Error(w, http.StatusBadRequest, "invalid payload")
		return
	}

	userID := msg.UserID()
	logger.Info().
		Str("user_id", userID).
		Int("body_len", len(msg.Body)).
		Msg("whatsapp message received")

	chatStart := time.Now()
	reply, err := h.chat.Reply(r.Context(), userID, msg.Body)
	metrics.ChatRequestDuration.Observe(time.Since(chatStart).Seconds())
	if err != nil {
		metrics.RelayFailures.WithLabelValues("chat").Inc()
		logger.Error().Err(err).Msg("chat api call failed")
		h.Error(w, http.StatusBadGateway, "upstream service error")
		return
	}
	if reply == "" {
		reply = fallbackReply
	}

	out := models.OutboundMessage{To: msg.Sender, From: h.number, Body: reply}

	sendStart := time.Now()
	sid, err := h.sender.Send(r.Context(), out)
	metrics.TwilioRequestDuration.Observe(time.Since(sendStart).Seconds())
	if err != nil {
		metrics.RelayFailures.WithLabelValues("send").Inc()
		logger.Error().Err(err).Msg("twilio send failed")
		h.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	metrics.MessagesRelayed.Inc()
	logger.Info().
		Str("user_id", userID).
		Str("message_sid", sid).
		Msg("reply relayed")

	h.JSON(w, http.StatusOK, WebhookResponse{Status: "replied"})
}
