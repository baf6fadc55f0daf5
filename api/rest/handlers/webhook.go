package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"fieldsync/core/dispatch"
	"fieldsync/core/models"

	"github.com/gorilla/schema"
)

// WebhookHandler handles inbound lifecycle notifications from both platforms
type WebhookHandler struct {
	dispatcher *dispatch.Dispatcher
	decoder    *schema.Decoder
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(dispatcher *dispatch.Dispatcher) *WebhookHandler {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	return &WebhookHandler{dispatcher: dispatcher, decoder: decoder}
}

// verification holds the subscription handshake form fields
type verification struct {
	Mode      string `schema:"mode"`
	Challenge string `schema:"challenge"`
}

// Receive handles POST /webhook. A subscription handshake is answered
// inline with its challenge token; everything else is validated, normalized
// and queued. The response only ever says "queued" or why the event was
// rejected; processing itself is asynchronous.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	if strings.Contains(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if h.answerChallenge(w, r) {
			return
		}
		writeError(w, http.StatusBadRequest, "No JSON data provided")
		return
	}

	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body) == 0 {
		writeError(w, http.StatusBadRequest, "No JSON data provided")
		return
	}

	event, err := h.dispatcher.Submit(body)
	if err != nil {
		slog.Warn("Rejected webhook", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "queued", "event": event.ID})
}

// CreateJob handles POST /job/create, a dedicated entry point that bypasses
// object-type sniffing
func (h *WebhookHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body) == 0 {
		writeError(w, http.StatusBadRequest, "No JSON data provided")
		return
	}

	event, err := h.dispatcher.SubmitDirect(models.EventCreateJob, body)
	if err != nil {
		slog.Warn("Rejected create job request", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "job queued", "event": event.ID})
}

// answerChallenge replies to a subscribe handshake. Returns false if the
// form was not a handshake.
func (h *WebhookHandler) answerChallenge(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		return false
	}
	var v verification
	if err := h.decoder.Decode(&v, r.PostForm); err != nil {
		return false
	}
	if v.Mode != "subscribe" || v.Challenge == "" {
		return false
	}

	slog.Info("Answering webhook verification challenge")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(v.Challenge))
	return true
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
