package realtime

import (
	"encoding/json"
	"sync"

	"property-market/internal/logging"
	"property-market/internal/models"

	"github.com/google/uuid"
)

// Message is the wire envelope sent to topic subscribers
type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub fans out auction events to websocket subscribers grouped by topic.
// Topics are public: subscribing requires no authorization.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*Client]struct{}
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		topics: make(map[string]map[*Client]struct{}),
	}
}

// AuctionTopic returns the topic name for one auction's events
func AuctionTopic(auctionID uuid.UUID) string {
	return "auctions." + auctionID.String()
}

// Subscribe adds a client to a topic
func (h *Hub) Subscribe(topic string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[*Client]struct{})
		h.topics[topic] = subs
	}
	subs[c] = struct{}{}
}

// Unsubscribe removes a client from a topic
func (h *Hub) Unsubscribe(topic string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.topics[topic]
	if !ok {
		return
	}
	delete(subs, c)
	if len(subs) == 0 {
		delete(h.topics, topic)
	}
}

// SubscriberCount returns the number of clients on a topic
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// PublishBidPlaced broadcasts an accepted bid to the auction's topic,
// excluding the bidder's own connection
func (h *Hub) PublishBidPlaced(auctionID uuid.UUID, excludeConnID string, event *models.BidPlacedEvent) {
	h.publish(AuctionTopic(auctionID), excludeConnID, "bid.placed", event)
}

// PublishAuctionUpdated broadcasts a settled auction to every listener
// on its topic
func (h *Hub) PublishAuctionUpdated(auctionID uuid.UUID, event *models.AuctionUpdatedEvent) {
	h.publish(AuctionTopic(auctionID), "", "auction.updated", event)
}

func (h *Hub) publish(topic, excludeConnID, event string, data interface{}) {
	payload, err := json.Marshal(Message{Event: event, Data: data})
	if err != nil {
		logging.Error("failed to marshal realtime message", map[string]any{
			"topic": topic,
			"event": event,
			"error": err.Error(),
		})
		return
	}

	h.mu.RLock()
	var backlogged []*Client
	for c := range h.topics[topic] {
		if excludeConnID != "" && c.ID == excludeConnID {
			continue
		}
		if !c.enqueue(payload) {
			backlogged = append(backlogged, c)
		}
	}
	h.mu.RUnlock()

	// Unregister stalled subscribers outside the read lock. Closing their
	// channel before unregistering would let a later publish send on a
	// closed channel and panic the publishing goroutine.
	for _, c := range backlogged {
		logging.Warn("dropping subscriber with full send buffer", map[string]any{
			"topic":   topic,
			"conn_id": c.ID,
		})
		c.drop()
	}
}
