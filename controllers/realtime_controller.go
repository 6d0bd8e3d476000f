package controllers

import (
	"net/http"
	"time"

	"nomify/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// RealtimeController upgrades observers onto the websocket that carries
// pipeline state transitions and alerts for their user.
type RealtimeController struct {
	RT        *services.RealtimeHub
	Pipelines *services.PipelineController
}

func NewRealtimeController(rt *services.RealtimeHub, pipelines *services.PipelineController) *RealtimeController {
	return &RealtimeController{RT: rt, Pipelines: pipelines}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // tighten behind ALB/CloudFront if needed
}

// GET /ws/pipeline
func (rc *RealtimeController) PipelineWS(c *gin.Context) {
	uid := c.GetUint("userID")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	cl := &services.WSClient{UserID: uid, Conn: conn}
	rc.RT.Register(cl)

	// New observers render from the current state straight away.
	rc.RT.BroadcastState(uid, rc.Pipelines.State(uid))

	// ping to keep connections alive through some proxies
	go func() {
		t := time.NewTicker(25 * time.Second)
		defer t.Stop()
		for range t.C {
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				rc.RT.Unregister(cl)
				return
			}
		}
	}()

	// read loop ends on client close/error → unregister
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			rc.RT.Unregister(cl)
			return
		}
	}
}
