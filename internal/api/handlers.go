package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mysocial/relay/internal/auth"
	"github.com/mysocial/relay/internal/cache"
	"github.com/mysocial/relay/internal/crypto"
	"github.com/mysocial/relay/internal/db"
	"github.com/mysocial/relay/internal/messaging"
	"github.com/mysocial/relay/internal/relayerr"
	"github.com/mysocial/relay/internal/walletauth"
)

type handlers struct {
	db       *db.DB
	cache    *cache.Cache
	sealer   *crypto.Sealer
	auth     *auth.Manager
	verifier walletauth.SignatureVerifier
	log      zerolog.Logger
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	kind := relayerr.As(err)
	writeJSON(w, kind.HTTPStatus(), map[string]string{"error": err.Error()})
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	})
}

type authTokenRequest struct {
	WalletAddress string `json:"wallet_address"`
	Signature     string `json:"signature"`
	Message       string `json:"message"`
}

// authToken implements §4.6 step 1-4: validate the signed message,
// verify the signature, resolve the wallet to a profile, mint a
// bearer token.
func (h *handlers) authToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req authTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, relayerr.New(relayerr.BadRequest, "malformed request body"))
		return
	}

	if err := walletauth.Authenticate(r.Context(), h.log, h.verifier, req.WalletAddress, req.Signature, req.Message); err != nil {
		writeError(w, err)
		return
	}

	profile, err := h.db.ResolveProfile(r.Context(), req.WalletAddress)
	if err != nil {
		writeError(w, relayerr.Wrap(relayerr.Transient, "resolve profile failed", err))
		return
	}
	if profile == nil {
		writeError(w, relayerr.New(relayerr.Forbidden, "wallet is not associated with a profile"))
		return
	}

	token, err := h.auth.Generate(req.WalletAddress)
	if err != nil {
		writeError(w, relayerr.Wrap(relayerr.Fatal, "mint token failed", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *handlers) notifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userAddress, _ := auth.UserFromContext(r.Context())

	q := r.URL.Query()
	var platformID *string
	if p := q.Get("platform_id"); p != "" {
		platformID = &p
	}
	limit := 20
	if l, err := strconv.Atoi(q.Get("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}
	offset := 0
	if o, err := strconv.Atoi(q.Get("offset")); err == nil && o >= 0 {
		offset = o
	}

	notifications, err := h.db.ListNotifications(r.Context(), userAddress, platformID, limit, offset)
	if err != nil {
		writeError(w, relayerr.Wrap(relayerr.Transient, "list notifications failed", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"notifications": notifications})
}

func (h *handlers) notificationCounts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userAddress, _ := auth.UserFromContext(r.Context())

	total, err := h.cache.GetUnread(r.Context(), userAddress)
	if err != nil {
		writeError(w, relayerr.Wrap(relayerr.Transient, "get unread count failed", err))
		return
	}
	byPlatform, err := h.db.CountUnreadByPlatform(r.Context(), userAddress)
	if err != nil {
		writeError(w, relayerr.Wrap(relayerr.Transient, "count unread by platform failed", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total":       total,
		"by_platform": byPlatform,
	})
}

// markNotificationRead handles POST /api/v1/notifications/{id}/read.
// §8 property 7 / scenario S3: 404 when the bearer doesn't own the
// notification, never 403 (ownership is visibility here, not a
// separate permission).
func (h *handlers) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/notifications/")
	path = strings.TrimSuffix(path, "/read")
	id, err := strconv.ParseInt(path, 10, 64)
	if err != nil {
		writeError(w, relayerr.New(relayerr.BadRequest, "invalid notification id"))
		return
	}

	userAddress, _ := auth.UserFromContext(r.Context())
	notification, err := h.db.GetNotification(r.Context(), id)
	if err != nil {
		writeError(w, relayerr.New(relayerr.NotFound, "notification not found"))
		return
	}
	if notification.UserAddress != userAddress {
		writeError(w, relayerr.New(relayerr.NotFound, "notification not found"))
		return
	}

	alreadyRead, err := h.db.MarkNotificationRead(r.Context(), id)
	if err != nil {
		writeError(w, relayerr.Wrap(relayerr.Transient, "mark notification read failed", err))
		return
	}
	if alreadyRead {
		writeJSON(w, http.StatusOK, map[string]string{"status": "already_read"})
		return
	}
	if err := h.cache.DecrUnread(r.Context(), userAddress); err != nil {
		writeError(w, relayerr.Wrap(relayerr.Transient, "decrement unread counter failed", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

type sendMessageRequest struct {
	RecipientAddress string `json:"recipient_address"`
	Content          string `json:"content"`
}

func (h *handlers) messages(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listMessages(w, r)
	case http.MethodPost:
		h.sendMessage(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// listMessages implements §8 S4's read side: the bearer must be a
// participant in conversation_id, or the request is 403.
func (h *handlers) listMessages(w http.ResponseWriter, r *http.Request) {
	userAddress, _ := auth.UserFromContext(r.Context())
	conversationID := r.URL.Query().Get("conversation_id")
	if conversationID == "" {
		writeError(w, relayerr.New(relayerr.BadRequest, "conversation_id is required"))
		return
	}

	conversation, err := h.db.GetConversation(r.Context(), conversationID)
	if err != nil {
		writeError(w, relayerr.Wrap(relayerr.Transient, "load conversation failed", err))
		return
	}
	if conversation == nil {
		writeError(w, relayerr.New(relayerr.NotFound, "conversation not found"))
		return
	}
	if conversation.Participant1Address != userAddress && conversation.Participant2Address != userAddress {
		writeError(w, relayerr.New(relayerr.Forbidden, "not a participant in this conversation"))
		return
	}

	limit := 50
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}
	offset := 0
	if o, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && o >= 0 {
		offset = o
	}

	rows, err := h.db.ListMessages(r.Context(), conversationID, limit, offset)
	if err != nil {
		writeError(w, relayerr.Wrap(relayerr.Transient, "list messages failed", err))
		return
	}

	type decryptedMessage struct {
		ID               int64     `json:"id"`
		SenderAddress    string    `json:"sender_address"`
		RecipientAddress string    `json:"recipient_address"`
		Content          string    `json:"content"`
		CreatedAt        time.Time `json:"created_at"`
	}
	out := make([]decryptedMessage, 0, len(rows))
	for _, m := range rows {
		plaintext, err := h.sealer.Open(conversationID, m.Content)
		if err != nil {
			h.log.Error().Err(err).Int64("message_id", m.ID).Msg("decrypt message failed")
			continue
		}
		out = append(out, decryptedMessage{
			ID:               m.ID,
			SenderAddress:    m.SenderAddress,
			RecipientAddress: m.RecipientAddress,
			Content:          string(plaintext),
			CreatedAt:        m.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"messages": out})
}

// sendMessage writes a message.created outbox row rather than
// persisting directly — it flows through C1/C3 like every other
// event, keeping the API a thin producer onto the transactional
// outbox (§2 data flow).
func (h *handlers) sendMessage(w http.ResponseWriter, r *http.Request) {
	userAddress, _ := auth.UserFromContext(r.Context())
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RecipientAddress == "" || req.Content == "" {
		writeError(w, relayerr.New(relayerr.BadRequest, "recipient_address and content are required"))
		return
	}

	eventData, err := json.Marshal(struct {
		Sender    string `json:"sender_address"`
		Recipient string `json:"recipient_address"`
		Content   string `json:"content"`
	}{userAddress, req.RecipientAddress, req.Content})
	if err != nil {
		writeError(w, relayerr.Wrap(relayerr.Fatal, "marshal event data failed", err))
		return
	}

	eventID := uuid.NewString()
	if _, err := h.db.InsertOutboxRow(r.Context(), "message.created", eventData, &eventID, nil); err != nil {
		writeError(w, relayerr.Wrap(relayerr.Transient, "enqueue message failed", err))
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"conversation_id": messaging.ConversationID(userAddress, req.RecipientAddress),
		"status":          "queued",
	})
}

func (h *handlers) conversations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userAddress, _ := auth.UserFromContext(r.Context())
	conversations, err := h.db.ListConversationsForUser(r.Context(), userAddress)
	if err != nil {
		writeError(w, relayerr.Wrap(relayerr.Transient, "list conversations failed", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"conversations": conversations})
}

type preferencesRequest struct {
	PushEnabled       bool            `json:"push_enabled"`
	EmailEnabled      bool            `json:"email_enabled"`
	SMSEnabled        bool            `json:"sms_enabled"`
	NotificationTypes json.RawMessage `json:"notification_types"`
}

func (h *handlers) preferences(w http.ResponseWriter, r *http.Request) {
	userAddress, _ := auth.UserFromContext(r.Context())

	switch r.Method {
	case http.MethodGet:
		prefs, err := h.db.GetPreferences(r.Context(), userAddress)
		if err != nil {
			writeError(w, relayerr.Wrap(relayerr.Transient, "load preferences failed", err))
			return
		}
		if prefs == nil {
			// §3 documented default: push+email on, sms off, no per-type overrides.
			writeJSON(w, http.StatusOK, db.UserPreferences{
				UserAddress:  userAddress,
				PushEnabled:  true,
				EmailEnabled: true,
			})
			return
		}
		writeJSON(w, http.StatusOK, prefs)
	case http.MethodPost:
		var req preferencesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, relayerr.New(relayerr.BadRequest, "malformed request body"))
			return
		}
		p := db.UserPreferences{
			UserAddress:       userAddress,
			PushEnabled:       req.PushEnabled,
			EmailEnabled:      req.EmailEnabled,
			SMSEnabled:        req.SMSEnabled,
			NotificationTypes: req.NotificationTypes,
		}
		if err := h.db.UpsertPreferences(r.Context(), p); err != nil {
			writeError(w, relayerr.Wrap(relayerr.Transient, "upsert preferences failed", err))
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

type deviceTokenRequest struct {
	DeviceToken string  `json:"device_token"`
	Platform    string  `json:"platform"`
	DeviceID    *string `json:"device_id"`
	AppVersion  *string `json:"app_version"`
}

func (h *handlers) registerDeviceToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userAddress, _ := auth.UserFromContext(r.Context())
	var req deviceTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DeviceToken == "" || req.Platform == "" {
		writeError(w, relayerr.New(relayerr.BadRequest, "device_token and platform are required"))
		return
	}
	t := db.DeviceToken{
		UserAddress: userAddress,
		DeviceToken: req.DeviceToken,
		Platform:    req.Platform,
		DeviceID:    req.DeviceID,
		AppVersion:  req.AppVersion,
	}
	if err := h.db.UpsertDeviceToken(r.Context(), t); err != nil {
		writeError(w, relayerr.Wrap(relayerr.Transient, "register device token failed", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "registered"})
}
