package routes

import (
	"github.com/fitlink/fitlink-backend/internal/handler"
	"github.com/fitlink/fitlink-backend/internal/middleware"
	"github.com/fitlink/fitlink-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
)

// Setup configures the API routes
func Setup(
	router *gin.Engine,
	chatHandler *handler.ChatHandler,
	blockHandler *handler.BlockHandler,
	memberHandler *handler.MemberHandler,
	wsHandler *handler.WSHandler,
	jwtManager *jwt.Manager,
) {
	api := router.Group("/api/v1")
	auth := middleware.JWTAuth(jwtManager)

	// Chats
	chats := api.Group("/chats", auth)
	chats.GET("", chatHandler.GetInbox)
	chats.GET("/:username", chatHandler.GetThread)
	chats.POST("/:username/messages", chatHandler.SendMessage)

	// Members
	members := api.Group("/members", auth)
	members.GET("/:username", memberHandler.GetByUsername)

	// Blocks
	blocks := api.Group("/blocks", auth)
	blocks.GET("", blockHandler.ListBlocks)
	blocks.POST("/:user_id", blockHandler.BlockMember)
	blocks.DELETE("/:user_id", blockHandler.UnblockMember)

	// Realtime feed
	router.GET("/ws/chat", middleware.WSAuth(jwtManager), wsHandler.Connect)
}
