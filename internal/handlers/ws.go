package handlers

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gestor-dev/gestor/internal/models"
	"github.com/gestor-dev/gestor/internal/types"
	"github.com/gestor-dev/gestor/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var (
	alertClients   = make(map[uint]map[*websocket.Conn]bool)
	alertClientsMu sync.RWMutex
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// BroadcastAlert pushes a freshly created alert to every open connection
// of its target user. Callers invoke it after the surrounding transaction
// has committed.
func BroadcastAlert(alert models.Alert) {
	alertClientsMu.RLock()
	clients, exists := alertClients[alert.UsuarioID]
	if !exists || len(clients) == 0 {
		alertClientsMu.RUnlock()
		return
	}

	clientsCopy := make([]*websocket.Conn, 0, len(clients))
	for conn := range clients {
		clientsCopy = append(clientsCopy, conn)
	}
	alertClientsMu.RUnlock()

	for _, conn := range clientsCopy {
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			log.Printf("Failed to set write deadline for broadcast: %v", err)
			continue
		}

		err := conn.WriteJSON(gin.H{
			"type":  "alerta",
			"alert": toAlertResponse(alert),
		})

		if err != nil {
			log.Printf("Failed to broadcast alert to client: %v", err)
			alertClientsMu.Lock()
			if clients, exists := alertClients[alert.UsuarioID]; exists {
				delete(clients, conn)
				if len(clients) == 0 {
					delete(alertClients, alert.UsuarioID)
				}
			}
			alertClientsMu.Unlock()
			conn.Close()
		}
	}
}

// AlertStream upgrades the request and keeps the connection registered
// under the authenticated user until it closes.
func AlertStream(c *gin.Context) {
	userID, err := utils.GetCurrentUserID(c)

	if err != nil {
		c.JSON(401, gin.H{"error": "User not authenticated"})
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			for _, allowed := range types.AllowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("Failed to set initial read deadline: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set read deadline in pong handler: %v", err)
		}
		return nil
	})

	alertClientsMu.Lock()
	if alertClients[userID] == nil {
		alertClients[userID] = make(map[*websocket.Conn]bool)
	}
	alertClients[userID][conn] = true
	alertClientsMu.Unlock()

	defer func() {
		alertClientsMu.Lock()

		if clients, exists := alertClients[userID]; exists {
			delete(clients, conn)

			if len(clients) == 0 {
				delete(alertClients, userID)
			}
		}

		alertClientsMu.Unlock()
		conn.Close()

		log.Printf("WebSocket connection closed for user %d", userID)
	}()

	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		log.Printf("Failed to set write deadline for welcome message: %v", err)
		return
	}

	err = conn.WriteJSON(map[string]string{
		"type":    "connected",
		"message": "WebSocket connection established",
	})

	if err != nil {
		log.Printf("Failed to send welcome message: %v", err)
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	go func() {
		for range ticker.C {
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Printf("Failed to set write deadline for user %d: %v", userID, err)
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("Ping failed for user %d: %v", userID, err)
				return
			}
		}
	}()

	for {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set read deadline for user %d: %v", userID, err)
			break
		}

		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for user %d: %v", userID, err)
			}
			break
		}
	}
}
