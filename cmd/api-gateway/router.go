package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/handler"
	"github.com/noah-isme/timetable-api/internal/middleware"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/service"
	"github.com/noah-isme/timetable-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/timetable-api/pkg/middleware/requestid"
)

type routerDeps struct {
	apiPrefix      string
	allowedOrigins []string
	enableDocs     bool
	logger         *zap.Logger
	metrics        *service.MetricsService
	loginLimiter   *middleware.IPRateLimiter
	readiness      map[string]handler.ReadinessCheck

	auth          *service.AuthService
	courses       *service.CourseService
	timeSlots     *service.TimeSlotService
	rooms         *service.RoomService
	requests      *service.TimingRequestService
	polls         *service.PollService
	notifications *service.NotificationService
	dashboard     *service.DashboardService
	export        *service.ExportService
}

func newRouter(d routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(d.logger))
	r.Use(corsmiddleware.New(d.allowedOrigins))
	r.Use(middleware.Metrics(d.metrics))

	metricsHandler := handler.NewMetricsHandler(d.metrics, d.readiness)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	if d.enableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authHandler := handler.NewAuthHandler(d.auth)
	courseHandler := handler.NewCourseHandler(d.courses)
	slotHandler := handler.NewTimeSlotHandler(d.timeSlots)
	roomHandler := handler.NewRoomHandler(d.rooms)
	requestHandler := handler.NewTimingRequestHandler(d.requests)
	pollHandler := handler.NewPollHandler(d.polls)
	notificationHandler := handler.NewNotificationHandler(d.notifications)
	dashboardHandler := handler.NewDashboardHandler(d.dashboard, d.export)

	admin := middleware.RequireRoles(models.RoleAdmin)
	professor := middleware.RequireRoles(models.RoleProfessor)
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleProfessor)
	student := middleware.RequireRoles(models.RoleStudent)

	api := r.Group(d.apiPrefix)
	api.Use(middleware.WithResponseMeta())
	api.POST("/auth/login", middleware.RateLimit(d.loginLimiter), authHandler.Login)

	secured := api.Group("")
	secured.Use(middleware.JWT(d.auth))

	secured.POST("/auth/logout", authHandler.Logout)
	secured.GET("/auth/me", authHandler.Me)

	secured.GET("/courses", courseHandler.List)
	secured.GET("/courses/:id", courseHandler.Get)
	secured.POST("/courses", admin, courseHandler.Create)
	secured.PUT("/courses/:id", admin, courseHandler.Update)
	secured.DELETE("/courses/:id", admin, courseHandler.Delete)

	secured.GET("/time-slots", slotHandler.List)
	secured.GET("/time-slots/conflicts", slotHandler.Conflicts)
	secured.GET("/time-slots/:id", slotHandler.Get)
	secured.POST("/time-slots", admin, slotHandler.Create)
	secured.PUT("/time-slots/:id", admin, slotHandler.Update)
	secured.DELETE("/time-slots/:id", admin, slotHandler.Delete)

	secured.GET("/rooms", roomHandler.List)
	secured.GET("/rooms/:id", roomHandler.Get)

	secured.GET("/timing-requests", staff, requestHandler.List)
	secured.GET("/timing-requests/:id", staff, requestHandler.Get)
	secured.POST("/timing-requests", professor, requestHandler.Submit)
	secured.POST("/timing-requests/:id/decision", admin, requestHandler.Decide)

	secured.GET("/polls", pollHandler.List)
	secured.GET("/polls/:id", pollHandler.Get)
	secured.POST("/polls", professor, pollHandler.Create)
	secured.POST("/polls/:id/votes", student, pollHandler.Vote)
	secured.POST("/polls/:id/close", staff, pollHandler.Close)

	secured.GET("/notifications", notificationHandler.List)
	secured.GET("/notifications/unread-count", notificationHandler.UnreadCount)
	secured.POST("/notifications/read-all", notificationHandler.MarkAllRead)
	secured.POST("/notifications/:id/read", notificationHandler.MarkRead)

	secured.GET("/dashboard", dashboardHandler.Stats)
	secured.GET("/timetable/export", dashboardHandler.ExportTimetable)

	return r
}
