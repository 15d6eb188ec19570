package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kannou1/PFE/internal/auth"
	"github.com/kannou1/PFE/internal/document"
	"github.com/kannou1/PFE/internal/filter"
	"github.com/kannou1/PFE/internal/filter/secrets"
	"github.com/kannou1/PFE/internal/health"
	"github.com/kannou1/PFE/internal/history"
	"github.com/kannou1/PFE/internal/httputil"
	"github.com/kannou1/PFE/internal/intent"
	"github.com/kannou1/PFE/internal/prompt"
	"github.com/kannou1/PFE/internal/telemetry"
	"github.com/kannou1/PFE/internal/types"
)

const maxChatBodyBytes = 1 << 20

// ContextBuilder fetches the backend data a message needs.
type ContextBuilder interface {
	Build(ctx context.Context, subjectID string, in types.Intent, token string) (*types.Context, error)
}

// Completer produces the model's reply to a message list.
type Completer interface {
	Complete(ctx context.Context, messages []types.Message) (string, error)
	Provider() string
}

// ConversationLog records answered turns.
type ConversationLog interface {
	Append(ctx context.Context, e history.Entry) (history.Entry, error)
	ListByConversation(ctx context.Context, conversationID string) ([]history.Entry, error)
}

// Redactor strips credentials from uploaded text.
type Redactor interface {
	Enabled() bool
	Redact(text string) (string, []secrets.Detection)
}

// Handler holds dependencies for the assistant HTTP handlers.
type Handler struct {
	builder     ContextBuilder
	completer   Completer
	log         ConversationLog
	filterChain *filter.Chain
	redactor    Redactor
	health      *health.Tracker
	metrics     *telemetry.Metrics
	maxUpload   func() int64
	version     string
	tracer      trace.Tracer
}

// Deps groups the optional collaborators of a Handler. Nil fields disable
// the matching step.
type Deps struct {
	Log         ConversationLog
	FilterChain *filter.Chain
	Redactor    Redactor
	Health      *health.Tracker
	Metrics     *telemetry.Metrics
	MaxUpload   func() int64
	Version     string
}

func NewHandler(builder ContextBuilder, completer Completer, deps Deps) *Handler {
	h := &Handler{
		builder:     builder,
		completer:   completer,
		log:         deps.Log,
		filterChain: deps.FilterChain,
		redactor:    deps.Redactor,
		health:      deps.Health,
		metrics:     deps.Metrics,
		maxUpload:   deps.MaxUpload,
		version:     deps.Version,
		tracer:      otel.Tracer(telemetry.TracerName),
	}
	if h.maxUpload == nil {
		h.maxUpload = func() int64 { return 5 << 20 }
	}
	if h.version == "" {
		h.version = "dev"
	}
	return h
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	deps := h.health.Snapshot()
	status := "healthy"
	for _, state := range deps {
		if state != health.StateClosed.String() {
			status = "degraded"
		}
	}
	httputil.WriteJSON(w, w.Header().Get("X-Request-ID"), http.StatusOK, map[string]any{
		"status":       status,
		"version":      h.version,
		"dependencies": deps,
	})
}

// Chat handles POST /chat
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get("X-Request-ID")
	receivedAt := time.Now()

	ctx, span := h.tracer.Start(r.Context(), "gateway.chat")
	defer span.End()

	var req types.ChatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxChatBodyBytes)).Decode(&req); err != nil {
		httputil.WriteBadRequestError(w, reqID, "Invalid JSON: "+err.Error())
		return
	}
	req.RequestID = reqID
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		httputil.WriteBadRequestError(w, reqID, "Message is required")
		return
	}

	cred, hasCred := auth.CredentialFromContext(ctx)
	if hasCred {
		req.Credential = cred.Token
		if req.UserID == "" {
			req.UserID = cred.Subject
		}
	}
	if req.UserID == "" {
		httputil.WriteBadRequestError(w, reqID, "userId is required")
		return
	}

	// Run content filter chain (secrets, injection)
	verdict := h.filterChain.Run(ctx, &req)
	if blocked := verdict.Blocked; blocked != nil {
		slog.Warn("request blocked by filter",
			"request_id", reqID,
			"filter", blocked.FilterName,
			"detections", blocked.Detections,
			"score", blocked.Score,
			"user_id", req.UserID,
		)
		h.metrics.RecordFilterAction(blocked.FilterName, string(blocked.Action))
		h.recordRequest("blocked", http.StatusUnavailableForLegalReasons, receivedAt)
		httputil.WriteContentBlockedError(w, reqID, blocked.Message)
		return
	}
	for _, fr := range verdict.Acted() {
		h.metrics.RecordFilterAction(fr.FilterName, string(fr.Action))
	}
	if verdict.Redacted() {
		slog.Info("credentials redacted from message", "request_id", reqID, "user_id", req.UserID)
	}

	in := intent.Classify(req.Message)
	span.SetAttributes(attribute.String("intent", string(in)))

	var userCtx *types.Context
	if hasCred {
		c, err := h.builder.Build(ctx, req.UserID, in, req.Credential)
		if err != nil {
			slog.Warn("context unavailable, answering without it",
				"request_id", reqID,
				"user_id", req.UserID,
				"intent", in,
				"error", err,
			)
		} else {
			userCtx = c
		}
	} else {
		slog.Info("no credential, skipping context fetch", "request_id", reqID, "intent", in)
	}

	messages := prompt.BuildMessages(req.Message, userCtx)
	reply, err := h.completer.Complete(ctx, messages)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		h.recordRequest(string(in), http.StatusServiceUnavailable, receivedAt)
		httputil.WriteServiceUnavailableError(w, reqID, "AI service error", err.Error())
		return
	}

	convID := req.ConversationID
	if convID == "" {
		convID = uuid.NewString()
	}
	if h.log != nil {
		_, err := h.log.Append(ctx, history.Entry{
			ConversationID: convID,
			UserID:         req.UserID,
			Intent:         string(in),
			Message:        req.Message,
			Response:       reply,
		})
		if err != nil {
			slog.Error("failed to append conversation entry", "request_id", reqID, "conversation_id", convID, "error", err)
		}
	}

	slog.Info("request completed",
		"request_id", reqID,
		"intent", in,
		"context_used", userCtx != nil,
		"sections", len(userCtx.Sections()),
		"provider", h.completer.Provider(),
		"duration_ms", time.Since(receivedAt).Milliseconds(),
	)
	h.recordRequest(string(in), http.StatusOK, receivedAt)

	httputil.WriteJSON(w, reqID, http.StatusOK, types.ChatResponse{
		Reply:          reply,
		ConversationID: convID,
		Intent:         in,
		ContextUsed:    userCtx != nil,
	})
}

// Upload handles POST /chat/upload
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get("X-Request-ID")
	receivedAt := time.Now()

	ctx, span := h.tracer.Start(r.Context(), "gateway.upload")
	defer span.End()

	limit := h.maxUpload()
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteBadRequestError(w, reqID, "File too large (max "+strconv.FormatInt(limit, 10)+" bytes)")
			return
		}
		httputil.WriteBadRequestError(w, reqID, "No file uploaded")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteBadRequestError(w, reqID, "No file uploaded")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		httputil.WriteInternalError(w, reqID, "File processing error")
		return
	}

	content, err := document.Extract(header.Filename, data)
	switch {
	case errors.Is(err, document.ErrUnsupported):
		httputil.WriteBadRequestError(w, reqID, "Unsupported file type. Use "+supportedList()+".")
		return
	case errors.Is(err, document.ErrEmpty):
		httputil.WriteBadRequestError(w, reqID, "No readable content extracted from file")
		return
	case err != nil:
		httputil.WriteBadRequestDetails(w, reqID, "Failed to extract document content", err.Error())
		return
	}

	if h.redactor != nil && h.redactor.Enabled() {
		var found []secrets.Detection
		if content, found = h.redactor.Redact(content); len(found) > 0 {
			h.metrics.RecordFilterAction("secrets", string(filter.ActionRedact))
		}
	}

	span.SetAttributes(attribute.String("file.name", header.Filename), attribute.Int("file.chars", len(content)))
	slog.Info("document extracted", "request_id", reqID, "file", header.Filename, "chars", len(content))

	answer, err := h.completer.Complete(ctx, prompt.DocumentMessages(content))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		h.recordRequest("upload", http.StatusServiceUnavailable, receivedAt)
		httputil.WriteServiceUnavailableError(w, reqID, "AI service error", err.Error())
		return
	}
	h.recordRequest("upload", http.StatusOK, receivedAt)

	httputil.WriteJSON(w, reqID, http.StatusOK, types.UploadResponse{
		Answer:   answer,
		FileName: header.Filename,
		Chars:    len([]rune(content)),
	})
}

// Conversation handles GET /chat/conversations/{conversationID}
func (h *Handler) Conversation(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get("X-Request-ID")
	convID := chi.URLParam(r, "conversationID")

	entries := []history.Entry{}
	if h.log != nil {
		var err error
		entries, err = h.log.ListByConversation(r.Context(), convID)
		if err != nil {
			slog.Error("failed to list conversation", "request_id", reqID, "conversation_id", convID, "error", err)
			httputil.WriteInternalError(w, reqID, "Failed to load conversation")
			return
		}
	}

	httputil.WriteJSON(w, reqID, http.StatusOK, map[string]any{
		"conversationId": convID,
		"entries":        entries,
	})
}

// recordRequest labels by intent; blocked and upload requests use their own label.
func (h *Handler) recordRequest(label string, status int, since time.Time) {
	h.metrics.RecordRequest(telemetry.RequestLabels{
		Intent:     label,
		Status:     strconv.Itoa(status),
		DurationMs: float64(time.Since(since).Milliseconds()),
	})
}

func supportedList() string {
	exts := make([]string, len(document.Supported))
	for i, e := range document.Supported {
		exts[i] = strings.ToUpper(strings.TrimPrefix(e, "."))
	}
	return strings.Join(exts, ", ")
}
