package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/rentaride/rental-system/docs"
	"github.com/rentaride/rental-system/internal/api/handler"
	"github.com/rentaride/rental-system/internal/api/middleware"
	"github.com/rentaride/rental-system/internal/core/domain"
	"github.com/rentaride/rental-system/internal/core/service"
	"github.com/rentaride/rental-system/internal/core/token"
	"github.com/rentaride/rental-system/internal/infrastructure/config"
	mongodb "github.com/rentaride/rental-system/internal/infrastructure/db/mongo"
	redisdb "github.com/rentaride/rental-system/internal/infrastructure/db/redis"
	"github.com/rentaride/rental-system/internal/infrastructure/queue"
	"github.com/rentaride/rental-system/internal/infrastructure/storage"
)

// NewRouter builds the Echo instance with all routes registered, plus the
// media dispatcher whose worker lifecycle the caller owns.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) (*echo.Echo, *queue.Dispatcher, error) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("rental"))

	// --- Infrastructure ---
	codec, err := token.NewCodec([]byte(cfg.AccessTokenPrivateKey), []byte(cfg.AccessTokenPublicKey))
	if err != nil {
		return nil, nil, err
	}

	credentialRepo := mongodb.NewCredentialRepository(db)
	profileRepo := mongodb.NewProfileRepository(db)
	carRepo := mongodb.NewCarRepository(db)
	reservationRepo := mongodb.NewReservationRepository(db)
	sessionRepo := mongodb.NewSessionRepository(db)
	cleaner := storage.NewLocalCleaner(cfg.UploadRoot, log)

	// --- Services ---
	sessionService := service.NewSessionService(sessionRepo, profileRepo, codec, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, log)
	fleetService := service.NewFleetService(carRepo, profileRepo, reservationRepo, cleaner, log)
	identityService := service.NewIdentityService(credentialRepo, profileRepo, reservationRepo, sessionService, fleetService, cleaner, cfg.SaltFactor, log)
	reservationService := service.NewReservationService(reservationRepo, profileRepo, carRepo, log)

	mediaService := service.NewMediaService(fleetService, identityService, redisdb.NewMediaDedup(rdb), log)
	dispatcher := queue.NewDispatcher(cfg.MediaWorkers, mediaService, log)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(identityService, sessionService)
	profileHandler := handler.NewProfileHandler(identityService, dispatcher)
	carHandler := handler.NewCarHandler(fleetService, dispatcher)
	reservationHandler := handler.NewReservationHandler(reservationService)

	authenticate := middleware.Authenticate(codec, sessionService)
	requireUser := middleware.RequireUser()
	requireRenter := middleware.RequireRole(string(domain.RoleRenter), string(domain.RoleAdmin))

	// --- Auth routes ---
	auth := e.Group("/v1/auth", authenticate)
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout, requireUser)

	// --- Profile routes (self-scoped) ---
	profile := e.Group("/v1/profile", authenticate, requireUser)
	profile.GET("", profileHandler.Get)
	profile.PUT("", profileHandler.Update)
	profile.DELETE("", profileHandler.Delete)
	profile.POST("/upgrade", profileHandler.Upgrade)
	profile.POST("/picture", profileHandler.UploadPicture)
	profile.GET("/reservations", profileHandler.ReservationHistory)
	profile.DELETE("/reservations", profileHandler.ClearReservationHistory)

	// --- Car routes ---
	cars := e.Group("/v1/cars", authenticate)
	cars.GET("", carHandler.Available)
	cars.GET("/mine", carHandler.Mine, requireRenter)
	cars.POST("", carHandler.Add, requireRenter)
	cars.PUT("/:id", carHandler.Update, requireRenter)
	cars.DELETE("/:id", carHandler.Delete, requireRenter)
	cars.PATCH("/:id/availability", carHandler.ChangeAvailability, requireRenter)
	cars.GET("/:id/history", carHandler.History, requireRenter)

	// --- Reservation routes ---
	reservations := e.Group("/v1/reservations", authenticate, requireUser)
	reservations.POST("", reservationHandler.Create)
	reservations.PATCH("/:id/status", reservationHandler.UpdateStatus, requireRenter)
	reservations.PUT("/:id", reservationHandler.Update)
	reservations.DELETE("/:id", reservationHandler.Delete)

	// --- Operational endpoints ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e, dispatcher, nil
}
