package api

import (
	"os"
	"path/filepath"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/buddyshare/buddyshare-api/docs"
	v1 "github.com/buddyshare/buddyshare-api/internal/api/handler/v1"
	"github.com/buddyshare/buddyshare-api/internal/api/middleware"
	"github.com/buddyshare/buddyshare-api/internal/config"
	"github.com/buddyshare/buddyshare-api/internal/domain"
	"github.com/buddyshare/buddyshare-api/internal/pkg/googleauth"
	"github.com/buddyshare/buddyshare-api/internal/pkg/stripeclient"
	"github.com/buddyshare/buddyshare-api/internal/repository"
	"github.com/buddyshare/buddyshare-api/internal/repository/dao"
	"github.com/buddyshare/buddyshare-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))
	eventRepo := repository.NewEventRepository(dao.NewEventDAO(db), userRepo)
	paymentRepo := repository.NewPaymentRepository(dao.NewPaymentDAO(db), eventRepo)
	reviewRepo := repository.NewReviewRepository(dao.NewReviewDAO(db), userRepo, eventRepo)

	eventSvc := service.NewEventService(eventRepo, userRepo)
	eventSvc.RemoveUpload = func(image string) {
		name := filepath.Base(image)
		if err := os.Remove(filepath.Join(conf.Upload.Dir, "events", name)); err != nil && !os.IsNotExist(err) {
			zap.L().Warn("failed to remove event image", zap.String("image", image), zap.Error(err))
		}
	}

	currency := conf.Stripe.Currency
	if currency == "" {
		currency = "usd"
	}
	provider := stripeclient.New(conf.Stripe.SecretKey, conf.Stripe.WebhookSecret)
	paymentSvc := service.NewPaymentService(paymentRepo, eventSvc, userRepo, provider, currency, zap.L())

	userSvc := service.NewUserService(userRepo)

	googleVerifier := googleauth.New(conf.Google.ClientID)
	authHandler := v1.NewAuthHandler(conf.API, service.NewAuthService(userRepo, googleVerifier), userSvc)
	userHandler := v1.NewUserHandler(userSvc)
	hostHandler := v1.NewHostHandler(service.NewHostService(userRepo))
	eventHandler := v1.NewEventHandler(eventSvc)
	paymentHandler := v1.NewPaymentHandler(paymentSvc)
	reviewHandler := v1.NewReviewHandler(service.NewReviewService(reviewRepo, eventRepo, userRepo))
	uploadHandler := v1.NewUploadHandler(conf.Upload.Dir)

	s.MountHandlers(authHandler, userHandler, hostHandler, eventHandler, paymentHandler, reviewHandler, uploadHandler)

	return s
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(
	authHandler *v1.AuthHandler,
	userHandler *v1.UserHandler,
	hostHandler *v1.HostHandler,
	eventHandler *v1.EventHandler,
	paymentHandler *v1.PaymentHandler,
	reviewHandler *v1.ReviewHandler,
	uploadHandler *v1.UploadHandler,
) {
	const basePath = "/api/v1"

	verifyJWT := middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT()

	public := s.Router.Group(basePath)
	{
		public.POST("/auth/signup", authHandler.HandleSignup)
		public.POST("/auth/login", authHandler.HandleLogin)
		public.POST("/auth/google", authHandler.HandleGoogleSignIn)

		public.GET("/events", eventHandler.HandleListEvents)
		public.GET("/events/:eventID", eventHandler.HandleGetEvent)
		public.GET("/events/:eventID/reviews", reviewHandler.HandleEventReviews)
		public.GET("/hosts/:hostID/reviews", reviewHandler.HandleHostReviews)

		// Stripe calls this; it authenticates with its signature header.
		public.POST("/payments/webhook", paymentHandler.HandleWebhook)
	}

	authed := s.Router.Group(basePath, verifyJWT)
	{
		authed.GET("/auth/me", authHandler.HandleGetMe)
		authed.PUT("/users/profile", userHandler.HandleUpdateProfile)
		authed.GET("/users/search", userHandler.HandleSearchUsers)
		authed.GET("/users/:userID", userHandler.HandleGetUser)

		authed.GET("/events/mine", eventHandler.HandleMyEvents)
		authed.GET("/events/joined", eventHandler.HandleJoinedEvents)
		authed.PUT("/events/:eventID", eventHandler.HandleUpdateEvent)
		authed.DELETE("/events/:eventID", eventHandler.HandleDeleteEvent)
		authed.POST("/events/:eventID/join", eventHandler.HandleJoinEvent)
		authed.POST("/events/:eventID/leave", eventHandler.HandleLeaveEvent)
		authed.GET("/events/:eventID/can-join", eventHandler.HandleCanJoin)
		authed.GET("/events/:eventID/participants", eventHandler.HandleGetParticipants)
		authed.POST("/events/:eventID/participants/remove", eventHandler.HandleRemoveParticipant)
		authed.GET("/events/:eventID/reviews/mine", reviewHandler.HandleMyReview)

		authed.POST("/hosts/request", hostHandler.HandleRequestHost)
		authed.GET("/hosts/status", hostHandler.HandleHostStatus)

		authed.POST("/payments/intent", paymentHandler.HandleCreateIntent)
		authed.POST("/payments/confirm", paymentHandler.HandleConfirmPayment)
		authed.POST("/payments/free-join", paymentHandler.HandleFreeJoin)
		authed.GET("/payments/history", paymentHandler.HandlePaymentHistory)
		authed.GET("/payments/:paymentID", paymentHandler.HandlePaymentDetails)

		authed.POST("/reviews", reviewHandler.HandleCreateReview)
		authed.PUT("/reviews/:reviewID", reviewHandler.HandleUpdateReview)
		authed.DELETE("/reviews/:reviewID", reviewHandler.HandleDeleteReview)
	}

	hosts := s.Router.Group(basePath, verifyJWT, middleware.RequireRoles(domain.RoleHost, domain.RoleAdmin))
	{
		hosts.POST("/events", eventHandler.HandleCreateEvent)
		hosts.POST("/uploads/events", uploadHandler.HandleUploadEventImage)
	}

	admin := s.Router.Group(basePath+"/admin", verifyJWT, middleware.RequireAdmin())
	{
		admin.GET("/users", userHandler.HandleListUsers)
		admin.GET("/users/stats", userHandler.HandleUserStats)
		admin.PUT("/users/:userID/role", userHandler.HandleUpdateRole)
		admin.DELETE("/users/:userID", userHandler.HandleDeleteUser)

		admin.GET("/host-requests", hostHandler.HandleListHostRequests)
		admin.GET("/host-requests/stats", hostHandler.HandleHostRequestStats)
		admin.GET("/host-requests/:userID", hostHandler.HandleHostRequestDetails)
		admin.POST("/host-requests/:userID/approve", hostHandler.HandleApproveHostRequest)
		admin.POST("/host-requests/:userID/reject", hostHandler.HandleRejectHostRequest)
	}

	s.Router.Static("/uploads", s.Config.Upload.Dir)
	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "BuddyShare API"
	docs.SwaggerInfo.Description = "Social events marketplace API."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
