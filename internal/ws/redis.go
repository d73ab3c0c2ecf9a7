package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/ballpit/backend/internal/config"
	"github.com/redis/go-redis/v9"
)

var rdbClient *redis.Client
var wsConfig *config.Config

func SetRedisClient(r *redis.Client, cfg *config.Config) {
	rdbClient = r
	wsConfig = cfg
}

// StartSessionEventSubscriber subscribes to the session_events channel and
// relays incoming events to the right room. Events arrive over Redis so a
// session stopped on one instance still reaches viewers connected elsewhere.
func StartSessionEventSubscriber(ctx context.Context) {
	if rdbClient == nil {
		log.Println("[WS] Redis client not set; session event subscriber not started")
		return
	}

	pubsub := rdbClient.Subscribe(ctx, "session_events")
	ch := pubsub.Channel()
	go func() {
		log.Println("[WS] session_events subscriber started")
		for msg := range ch {
			var payload map[string]interface{}
			if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
				log.Printf("[WS] invalid event payload: %v", err)
				continue
			}

			typeStr, _ := payload["type"].(string)
			token, _ := payload["token"].(string)
			if token == "" {
				log.Printf("[WS] event without session token: %s", typeStr)
				continue
			}

			switch typeStr {
			case "session_closed":
				if size := SandboxHub.RoomSize(token); size > 0 {
					log.Printf("[WS] broadcasting session_closed to %s (room_size=%d)", token, size)
				}
				SandboxHub.BroadcastToSession(token, map[string]interface{}{
					"type":   "session_closed",
					"reason": payload["reason"],
				})

			case "admin_notice":
				SandboxHub.BroadcastToSession(token, map[string]interface{}{
					"type":    "admin_notice",
					"message": payload["message"],
				})

			default:
				log.Printf("[WS] unknown event type: %s", typeStr)
			}
		}
	}()
}
