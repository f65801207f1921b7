// Package webhook receives GitHub webhook deliveries and hands issue events
// to the lifecycle controller.
package webhook

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/go-github/v45/github"
	"github.com/hellausefulsoftware/headercheck/internal/common/vcs"
	"github.com/hellausefulsoftware/headercheck/internal/logging"
	"github.com/hellausefulsoftware/headercheck/internal/models"
)

// deduplicationWindow is how long delivery IDs are remembered. GitHub
// redeliveries normally arrive within minutes.
const deduplicationWindow = time.Hour

// Handler verifies, decodes and forwards webhook deliveries.
type Handler struct {
	secret  []byte
	onEvent func(models.IssueEvent)
	now     func() time.Time

	mu         sync.Mutex
	deliveries map[string]time.Time
}

// NewHandler creates a handler that verifies payloads with secret and calls
// onEvent for every issues delivery.
func NewHandler(secret string, onEvent func(models.IssueEvent)) *Handler {
	return &Handler{
		secret:     []byte(secret),
		onEvent:    onEvent,
		now:        time.Now,
		deliveries: make(map[string]time.Time),
	}
}

// ServeHTTP handles a single webhook request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "", http.StatusMethodNotAllowed)
		return
	}

	payload, err := github.ValidatePayload(r, h.secret)
	if err != nil {
		logging.Warn("Webhook signature verification failed",
			"error", err,
			"remote_addr", r.RemoteAddr)
		http.Error(w, "", http.StatusUnauthorized)
		return
	}

	eventType := github.WebHookType(r)
	deliveryID := github.DeliveryID(r)
	if eventType == "" {
		http.Error(w, "missing X-GitHub-Event header", http.StatusBadRequest)
		return
	}

	if deliveryID != "" && h.isDuplicate(deliveryID) {
		logging.Debug("Duplicate webhook delivery, ignoring",
			"delivery_id", deliveryID,
			"event_type", eventType)
		w.WriteHeader(http.StatusOK)
		return
	}

	parsed, err := github.ParseWebHook(eventType, payload)
	if err != nil {
		// Unknown event types fail to parse too; retrying would not help.
		logging.Debug("Ignoring unparsed webhook", "event_type", eventType, "error", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	switch event := parsed.(type) {
	case *github.IssuesEvent:
		logging.Info("Webhook received",
			"event_type", eventType,
			"action", event.GetAction(),
			"delivery_id", deliveryID)
		h.onEvent(toIssueEvent(event, deliveryID))
	case *github.PingEvent:
		logging.Info("Webhook ping received", "hook_id", event.GetHookID())
	default:
		logging.Debug("Ignoring webhook event", "event_type", eventType)
	}

	w.WriteHeader(http.StatusOK)
}

// isDuplicate records deliveryID and reports whether it was already seen
// within the deduplication window.
func (h *Handler) isDuplicate(deliveryID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	for id, receivedAt := range h.deliveries {
		if now.Sub(receivedAt) > deduplicationWindow {
			delete(h.deliveries, id)
		}
	}

	if _, exists := h.deliveries[deliveryID]; exists {
		return true
	}
	h.deliveries[deliveryID] = now
	return false
}

func toIssueEvent(event *github.IssuesEvent, deliveryID string) models.IssueEvent {
	issue := event.GetIssue()

	labels := make([]string, 0, len(issue.Labels))
	for _, label := range issue.Labels {
		labels = append(labels, label.GetName())
	}

	return models.IssueEvent{
		Action: event.GetAction(),
		Issue: vcs.IssueRef{
			Owner:  event.GetRepo().GetOwner().GetLogin(),
			Repo:   event.GetRepo().GetName(),
			Number: issue.GetNumber(),
		},
		Body:          issue.GetBody(),
		Author:        issue.GetUser().GetLogin(),
		Labels:        labels,
		BodyChanged:   event.GetChanges().GetBody() != nil,
		IsPullRequest: issue.IsPullRequest(),
		DeliveryID:    deliveryID,
	}
}
