package realtime

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/okvist/localspot/cache"
	"github.com/okvist/localspot/hub"
	"github.com/okvist/localspot/models"
	"golang.org/x/time/rate"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 1024 * 16

	// Rate limiting: 50 events per second with a burst of 100
	eventsPerSecond = 50
	burstLimit      = 100

	reconnectDelay = 5 * time.Second
)

// Client consumes the backend's change feed so votes and replies made by
// other users land in the shared cache without polling. Events for
// resources nobody has loaded yet are ignored.
type Client struct {
	feedURL     string
	token       string
	reviewCache cache.ReviewCache
	reviewHub   *hub.Hub
	limiter     *rate.Limiter
}

func NewClient(baseURL string, token string, reviewCache cache.ReviewCache, reviewHub *hub.Hub) *Client {
	feedURL := strings.TrimSuffix(baseURL, "/") + "/api/realtime"
	if strings.HasPrefix(feedURL, "https://") {
		feedURL = "wss://" + strings.TrimPrefix(feedURL, "https://")
	} else if strings.HasPrefix(feedURL, "http://") {
		feedURL = "ws://" + strings.TrimPrefix(feedURL, "http://")
	}

	return &Client{
		feedURL:     feedURL,
		token:       token,
		reviewCache: reviewCache,
		reviewHub:   reviewHub,
		limiter:     rate.NewLimiter(rate.Limit(eventsPerSecond), burstLimit),
	}
}

func (c *Client) Run(shutdownCtx context.Context) {
	for {
		if err := c.connectAndRead(shutdownCtx); err != nil {
			log.Printf("Realtime feed disconnected: %v", err)
		}

		select {
		case <-shutdownCtx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (c *Client) connectAndRead(shutdownCtx context.Context) error {
	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(shutdownCtx, c.feedURL, header)
	if err != nil {
		return err
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go c.pingPump(shutdownCtx, conn, done)

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error { conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		_, messageBytes, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		if !c.limiter.Allow() {
			log.Printf("Dropping realtime event: rate limit exceeded")
			continue
		}

		c.handleEvent(messageBytes)
	}
}

func (c *Client) pingPump(shutdownCtx context.Context, conn *websocket.Conn, done chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-done:
			return

		case <-shutdownCtx.Done():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "client shutting down"),
			)
			conn.Close()
			return
		}
	}
}

type eventMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type helpfulChangedData struct {
	ReviewId string `json:"reviewId"`
	Count    int    `json:"count"`
}

type replyAddedData struct {
	ReviewId string       `json:"reviewId"`
	Reply    models.Reply `json:"reply"`
}

type replyDeletedData struct {
	ReviewId string `json:"reviewId"`
	ReplyId  string `json:"replyId"`
}

func (c *Client) handleEvent(messageBytes []byte) {
	var msg eventMessage
	if err := json.Unmarshal(messageBytes, &msg); err != nil {
		return
	}

	ctx := context.Background()

	switch msg.Type {
	case "helpful_changed":
		var data helpfulChangedData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}
		state, found, err := c.reviewCache.GetVoteState(ctx, data.ReviewId)
		if err != nil || !found {
			return
		}
		// Only the aggregate moves; the viewer's own mark is untouched.
		state.Count = data.Count
		if err := c.reviewCache.SetVoteState(ctx, data.ReviewId, state); err != nil {
			return
		}
		c.reviewHub.Notify(hub.VoteKey(data.ReviewId))

	case "reply_added":
		var data replyAddedData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}
		replies, found, err := c.reviewCache.GetReplies(ctx, data.ReviewId)
		if err != nil || !found {
			return
		}
		for _, reply := range replies {
			if reply.Id == data.Reply.Id {
				return
			}
		}
		next := append([]models.Reply{data.Reply}, replies...)
		if err := c.reviewCache.SetReplies(ctx, data.ReviewId, next); err != nil {
			return
		}
		c.reviewHub.Notify(hub.RepliesKey(data.ReviewId))

	case "reply_deleted":
		var data replyDeletedData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}
		replies, found, err := c.reviewCache.GetReplies(ctx, data.ReviewId)
		if err != nil || !found {
			return
		}
		next := make([]models.Reply, 0, len(replies))
		for _, reply := range replies {
			if reply.Id != data.ReplyId {
				next = append(next, reply)
			}
		}
		if len(next) == len(replies) {
			return
		}
		if err := c.reviewCache.SetReplies(ctx, data.ReviewId, next); err != nil {
			return
		}
		c.reviewHub.Notify(hub.RepliesKey(data.ReviewId))
	}
}
