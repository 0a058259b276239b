package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/yeremiapane/restaurant-ordering/kds"
	"github.com/yeremiapane/restaurant-ordering/middlewares"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

type KDSController struct {
	Hub      *kds.Hub
	upgrader websocket.Upgrader
}

// NewKDSController accepts upgrades from the configured CORS origins, or from
// any origin when allowedOrigins is "*".
func NewKDSController(hub *kds.Hub, allowedOrigins string) *KDSController {
	allowed := map[string]bool{}
	for _, o := range strings.Split(allowedOrigins, ",") {
		allowed[strings.TrimSpace(o)] = true
	}
	return &KDSController{
		Hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
	}
}

// KDSHandler upgrades a staff session to a WebSocket that receives every
// order, table and menu event.
func (kc *KDSController) KDSHandler(c *gin.Context) {
	role := middlewares.CurrentRole(c)
	if !role.IsStaff() {
		utils.RespondError(c, utils.ErrNoPermission)
		return
	}

	ws, err := kc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Warnf("kds upgrade failed: %v", err)
		return
	}
	kc.Hub.RegisterClient(ws, string(role))

	// Incoming messages are ignored; the read loop only detects disconnects.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
	kc.Hub.UnregisterClient(ws)
}
