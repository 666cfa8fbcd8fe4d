package server

import (
	"log"
	"strings"
	"time"

	"github.com/arenaworks/arena-api/internal/config"
	"github.com/arenaworks/arena-api/internal/handler"
	"github.com/arenaworks/arena-api/internal/middleware"
	"github.com/arenaworks/arena-api/internal/model"
	"github.com/arenaworks/arena-api/internal/repository"
	"github.com/arenaworks/arena-api/internal/service"
	"github.com/arenaworks/arena-api/pkg/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

func NewServer(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Server {
	userRepo := repository.NewUserRepository(db)
	gameRepo := repository.NewGameRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	leaderboardRepo := repository.NewLeaderboardRepository(db)

	var imageStorage storage.ImageStorage
	if s, err := storage.NewCloudinaryStorage(); err != nil {
		log.Printf("avatar storage disabled: %v", err)
	} else {
		imageStorage = s
	}

	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenExpiry)
	authHandler := handler.NewAuthHandler(authSvc)

	userSvc := service.NewUserService(userRepo, imageStorage)
	scheduleSvc := service.NewScheduleService(scheduleRepo, gameRepo, userRepo)
	userHandler := handler.NewUserHandler(userSvc, scheduleSvc, cfg.MaxPageOffset)

	leaderboardSvc := service.NewLeaderboardService(leaderboardRepo)
	leaderboardHandler := handler.NewLeaderboardHandler(leaderboardSvc, cfg.MaxPageOffset)

	scheduleHandler := handler.NewScheduleHandler(scheduleSvc, leaderboardSvc, cfg.MaxPageOffset)

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMw := middleware.NewAuthMiddleware(userRepo, cfg.JWTSecret)

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/verify", authHandler.Verify)
		auth.POST("/password-reset", authHandler.RequestPasswordReset)
		auth.POST("/password-reset/confirm", authHandler.ConfirmPasswordReset)
	}

	users := api.Group("/users")
	{
		users.GET("/lookup",
			middleware.RateLimit(redisClient, "lookup", cfg.RateLimitLookup),
			userHandler.Lookup)
		users.GET("/leaderboards", leaderboardHandler.GetLeaderboards)

		users.GET("",
			authMw.RequireAuth(),
			authMw.RequireRole(model.RoleModerator),
			userHandler.List)

		users.GET("/:user", authMw.BindUser(), userHandler.Show)
		users.POST("/:user",
			authMw.RequireAuth(),
			authMw.BindUser(),
			authMw.RequireSelfOrRole(model.RoleModerator),
			userHandler.Update)
		users.DELETE("/:user",
			authMw.RequireAuth(),
			authMw.BindUser(),
			authMw.RequireSelfOrRole(model.RoleAdmin),
			userHandler.Delete)

		users.GET("/:user/activity",
			authMw.RequireAuth(),
			authMw.BindUser(),
			authMw.RequireSelfOrRole(model.RoleModerator),
			userHandler.Activity)
		users.GET("/:user/applications",
			authMw.RequireAuth(),
			authMw.BindUser(),
			authMw.RequireSelfOrRole(model.RoleModerator),
			userHandler.Applications)
		users.POST("/:user/avatar",
			authMw.RequireAuth(),
			authMw.BindUser(),
			authMw.RequireSelfOrRole(model.RoleModerator),
			userHandler.UploadAvatar)
	}

	api.GET("/games/:id", scheduleHandler.GetGame)
	api.POST("/games/:id/results",
		authMw.RequireAuth(),
		authMw.RequireRole(model.RoleAdmin),
		scheduleHandler.RecordResult)

	api.GET("/schedules", scheduleHandler.List)
	api.POST("/schedules",
		authMw.RequireAuth(),
		authMw.RequireRole(model.RoleAdmin),
		scheduleHandler.Create)
	api.PATCH("/schedules/:id/status",
		authMw.RequireAuth(),
		authMw.RequireRole(model.RoleAdmin),
		scheduleHandler.UpdateStatus)
	api.POST("/schedules/:id/applications",
		authMw.RequireAuth(),
		authMw.RequireRole(model.RoleUser),
		scheduleHandler.Apply)
	api.DELETE("/schedules/:id/applications",
		authMw.RequireAuth(),
		authMw.RequireRole(model.RoleUser),
		scheduleHandler.Withdraw)

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
