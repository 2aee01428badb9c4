// Package router はHTTPルーティングを定義します。
package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	authhandler "chatbot_backend/internal/feature/auth/transport/handler"
	chathandler "chatbot_backend/internal/feature/chat/transport/handler"
	profilehandler "chatbot_backend/internal/feature/profile/transport/handler"
	platformhandler "chatbot_backend/internal/platform/http/handler"
	"chatbot_backend/internal/platform/http/middleware"
	jwtmw "chatbot_backend/internal/platform/jwt"
)

// Deps はルーターが必要とするハンドラーと認証部品です。
type Deps struct {
	Auth    *authhandler.AuthHandler
	Profile *profilehandler.ProfileHandler
	Chat    *chathandler.ChatHandler
	Health  *platformhandler.HealthHandler

	Verifier jwtmw.TokenVerifier
	// Resolver がnilの場合、署名と有効期限の検証だけで認証します。
	Resolver jwtmw.UserResolver

	// ChatRequireAuth がfalseの場合、POST /api/chat は匿名でも利用できます。
	ChatRequireAuth bool
	// AllowedOrigins が空の場合、全オリジンを許可します。
	AllowedOrigins []string
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID}
	cfg.ExposeHeaders = []string{middleware.HeaderRequestID}
	cfg.MaxAge = 12 * time.Hour
	return cfg
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog())
	// ブラウザクライアントから呼ばれるためCORSを有効化
	r.Use(cors.New(corsConfig(d.AllowedOrigins)))

	// 認証不要
	// 導通確認用
	for _, path := range []string{"/health", "/healthz"} {
		r.GET(path, d.Health.Health)
		r.HEAD(path, d.Health.Health)
		r.OPTIONS(path, d.Health.Health)
	}

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	{
		// 新規ユーザー登録
		authGroup.POST("/register", d.Auth.Register)
		// ログイン（JWT 発行）
		authGroup.POST("/login", d.Auth.Login)
		// パスワードリセット
		authGroup.POST("/reset/request", d.Auth.RequestReset)
		authGroup.POST("/reset/confirm", d.Auth.ConfirmReset)
	}

	authRequired := jwtmw.AuthRequired(d.Verifier, d.Resolver)

	// 認証必須のルート
	profile := api.Group("/profile", authRequired)
	{
		profile.GET("", d.Profile.Get)
		profile.POST("", d.Profile.Create)
		profile.PUT("", d.Profile.Update)
		// idは無視される（一人一件）
		profile.PUT("/:id", d.Profile.Update)
		profile.DELETE("", d.Profile.Delete)
	}

	chatAuth := authRequired
	if !d.ChatRequireAuth {
		chatAuth = jwtmw.AuthOptional(d.Verifier)
	}
	api.POST("/chat", chatAuth, d.Chat.Chat)

	history := api.Group("/chat/history", authRequired)
	{
		history.GET("", d.Chat.History)
		history.DELETE("", d.Chat.DeleteHistory)
	}

	return r
}
