// Package sse provides Server-Sent Events support for real-time notifications.
package sse

import (
	"encoding/json"
	"slices"
	"sync"

	"sales_crm_backend/internal/access"
	"sales_crm_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EventType represents different types of SSE events
type EventType string

const (
	EventFollowUpScheduled   EventType = "followup_scheduled"
	EventFollowUpReminderDue EventType = "followup_reminder_due"
	EventFollowUpCompleted   EventType = "followup_completed"
	EventFollowUpExhausted   EventType = "followup_exhausted"
)

// Event represents an SSE event payload
type Event struct {
	Type       EventType `json:"type"`
	LeadID     uuid.UUID `json:"leadId,omitempty"`
	FollowUpID uuid.UUID `json:"followUpId,omitempty"`
	Message    string    `json:"message,omitempty"`
	Data       any       `json:"data,omitempty"`
}

type client struct {
	scope  access.Scope
	events chan Event
}

// Service manages SSE connections and event broadcasting
type Service struct {
	mu      sync.RWMutex
	clients map[uuid.UUID][]*client // userID -> clients
	log     *logger.Logger
}

// New creates a new SSE service
func New(log *logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{
		clients: make(map[uuid.UUID][]*client),
		log:     log,
	}
}

func (s *Service) addClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clients[c.scope.UserID] = append(s.clients[c.scope.UserID], c)
}

func (s *Service) removeClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID := c.scope.UserID
	clients := s.clients[userID]
	for i, cl := range clients {
		if cl == c {
			s.clients[userID] = append(clients[:i], clients[i+1:]...)
			break
		}
	}
	if len(s.clients[userID]) == 0 {
		delete(s.clients, userID)
	}

	close(c.events)
}

func (s *Service) send(c *client, event Event) {
	select {
	case c.events <- event:
	default:
		s.log.Warn("sse buffer full", "userId", c.scope.UserID, "type", event.Type)
	}
}

// Publish sends an event to a specific user
func (s *Service) Publish(userID uuid.UUID, event Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.clients[userID] {
		s.send(c, event)
	}
}

// PublishToOverseers sends an event about a lead to every connected
// supervisor or super user whose scope covers the lead. Marketing users only
// ever get events through Publish, and the skipped users get nothing.
func (s *Service) PublishToOverseers(leadOwnerID, leadBranchID uuid.UUID, event Event, skip ...uuid.UUID) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for userID, clients := range s.clients {
		if slices.Contains(skip, userID) {
			continue
		}
		for _, c := range clients {
			if c.scope.Role == access.RoleMarketing || !c.scope.Allows(leadOwnerID, leadBranchID) {
				continue
			}
			s.send(c, event)
		}
	}
}

// Handler returns a Gin handler for SSE connections. identify resolves the
// caller's scope and writes the error response itself when it fails.
func (s *Service) Handler(identify func(*gin.Context) (access.Scope, bool)) gin.HandlerFunc {
	return func(c *gin.Context) {
		scope, ok := identify(c)
		if !ok {
			return
		}

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
		c.Writer.Header().Set("X-Accel-Buffering", "no")

		cl := &client{
			scope:  scope,
			events: make(chan Event, 32),
		}
		s.addClient(cl)
		defer s.removeClient(cl)

		c.SSEvent("connected", gin.H{"userId": scope.UserID})
		c.Writer.Flush()

		clientGone := c.Request.Context().Done()
		for {
			select {
			case <-clientGone:
				return
			case event := <-cl.events:
				data, _ := json.Marshal(event)
				c.SSEvent(string(event.Type), string(data))
				c.Writer.Flush()
			}
		}
	}
}

// ConnectedUsers returns how many users hold at least one open stream.
func (s *Service) ConnectedUsers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}
