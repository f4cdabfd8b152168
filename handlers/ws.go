package handlers

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/olahol/melody"
)

type WSHandler struct {
	M *melody.Melody
}

func NewWSHandler() *WSHandler {
	m := melody.New()

	m.Config.MaxMessageSize = 1024 * 1024

	// Keep-Alive configuration for cloud hosting
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	m.HandleConnect(func(s *melody.Session) {
		householdID, _ := s.Get("household_id")
		log.Printf("✅ Client connected to household: %v", householdID)
	})

	m.HandleDisconnect(func(s *melody.Session) {
		householdID, _ := s.Get("household_id")
		log.Printf("🔌 Client disconnected from household: %v", householdID)
	})

	m.HandleError(func(s *melody.Session, err error) {
		log.Printf("❌ WebSocket Error: %v", err)
	})

	return &WSHandler{M: m}
}

// HandleWS upgrades the request and subscribes the client to a household.
func (h *WSHandler) HandleWS(c *gin.Context) {
	keys := map[string]interface{}{"household_id": c.Param("id")}
	if err := h.M.HandleRequestWithKeys(c.Writer, c.Request, keys); err != nil {
		log.Printf("❌ Failed to upgrade websocket: %v", err)
	}
}

// BroadcastUpdate notifies every client subscribed to the household.
// Fire-and-forget: failures are logged and never fail or retry the write
// that triggered them.
func (h *WSHandler) BroadcastUpdate(householdID, updateType, resource, userWhoUpdated string) {
	msg, err := json.Marshal(gin.H{
		"type":     updateType,
		"resource": resource,
		"user":     userWhoUpdated,
	})
	if err != nil {
		return
	}

	err = h.M.BroadcastFilter(msg, func(q *melody.Session) bool {
		id, exists := q.Get("household_id")
		return exists && id == householdID
	})
	if err != nil {
		log.Printf("⚠️ Error broadcasting to household %s: %v", householdID, err)
	}
}
