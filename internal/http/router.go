package http

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/clinireason-backend/internal/domain/user"
	httpH "github.com/yungbote/clinireason-backend/internal/http/handlers"
	httpMW "github.com/yungbote/clinireason-backend/internal/http/middleware"
	"github.com/yungbote/clinireason-backend/internal/observability"
	"github.com/yungbote/clinireason-backend/internal/platform/logger"
)

const eventsRoute = "/api/events"

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	ServiceName    string
	CORSOrigins    []string
	AuthMiddleware *httpMW.AuthMiddleware

	UserHandler         *httpH.UserHandler
	SessionHandler      *httpH.SessionHandler
	ReviewHandler       *httpH.ReviewHandler
	NotificationHandler *httpH.NotificationHandler
	RealtimeHandler     *httpH.RealtimeHandler
	HealthHandler       *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(httpMW.Tracing(cfg.ServiceName)...)
	} else {
		r.Use(httpMW.AttachTraceContext())
	}
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics, eventsRoute))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.RequireAuth())
	}

	// User (Me)
	if cfg.UserHandler != nil {
		api.GET("/me", cfg.UserHandler.GetMe)
	}

	// Realtime (SSE)
	if cfg.RealtimeHandler != nil {
		api.GET("/events", cfg.RealtimeHandler.Stream)
	}

	// Sessions
	if h := cfg.SessionHandler; h != nil {
		api.GET("/regions", h.ListRegions)
		api.POST("/sessions", h.Start)
		api.GET("/sessions", h.List)
		api.GET("/sessions/:id", h.Get)
		api.POST("/sessions/:id/symptoms", h.GenerateSymptoms)
		api.PUT("/sessions/:id/symptoms", h.SelectSymptoms)
		api.POST("/sessions/:id/questions", h.GenerateQuestions)
		api.POST("/sessions/:id/steps/:step/answer", h.Answer)
		api.POST("/sessions/:id/diagnosis", h.GenerateDiagnosis)
		api.POST("/sessions/:id/final-diagnosis", h.SelectFinal)
		api.POST("/sessions/:id/report", h.CreateReport)
	}

	// Submissions and review
	if h := cfg.ReviewHandler; h != nil {
		api.POST("/submissions", h.Submit)
		api.GET("/submissions", h.ListMine)
		api.GET("/submissions/:id", h.Get)
		api.GET("/reviewers", h.ListReviewers)

		reviewer := api.Group("/review")
		reviewer.Use(httpMW.RequireRole(user.RoleInstructor, user.RoleAdmin))
		reviewer.GET("/queue", h.Queue)
		reviewer.POST("/submissions/:id/start", h.Start)
		reviewer.POST("/submissions/:id/feedback", h.Feedback)
	}

	// Notifications
	if h := cfg.NotificationHandler; h != nil {
		api.GET("/notifications", h.List)
		api.GET("/notifications/unread-count", h.UnreadCount)
		api.POST("/notifications/read-all", h.MarkAllRead)
		api.POST("/notifications/:id/read", h.MarkRead)
		api.DELETE("/notifications/:id", h.Delete)
		api.DELETE("/notifications", h.DeleteAll)
	}

	return r
}
