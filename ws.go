package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/gabekutner/roommatefinder-backend/pkg/realtime"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Mobile clients connect from app webviews with arbitrary origins;
	// identity is enforced by the token, not the origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsHandler authenticates the upgrade request, then hands the socket to a
// realtime session for its whole lifetime. An anonymous or bad token is
// rejected before the upgrade, so the socket never joins the registry.
func wsHandler(registry *realtime.Registry, router *realtime.Router, zlog *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.Query("token")
		if tokenString == "" {
			if h := c.GetHeader("Authorization"); len(h) > 7 && h[:7] == "Bearer " {
				tokenString = h[7:]
			}
		}
		userID, err := parseAccessToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the HTTP error response.
			return
		}
		realtime.NewSession(userID, conn, registry, router, zlog).Run()
	}
}
