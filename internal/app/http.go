package app

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"auth-service/internal/auth"
	"auth-service/internal/auth/handler"
	"auth-service/internal/config"
	"auth-service/internal/mail"
	"auth-service/internal/middleware"
	"auth-service/internal/session"
	"auth-service/internal/token"
	"auth-service/internal/user"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func(context.Context) error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	userStore, err := user.NewMongoStore(ctx, infra.Mongo.Database())
	if err != nil {
		return nil, nil, err
	}

	sessionStore := session.NewRedisStore(infra.Redis.Client)

	issuer := token.NewIssuer(
		[]byte(cfg.AccessTokenSecret),
		[]byte(cfg.RefreshTokenSecret),
		cfg.AccessTTL(),
		cfg.RefreshTTL(),
		sessionStore,
	)
	verifier := token.NewVerifier(
		[]byte(cfg.AccessTokenSecret),
		[]byte(cfg.RefreshTokenSecret),
		sessionStore,
	)

	mailer := mail.NewSMTPSender(
		cfg.SMTPHost,
		cfg.SMTPPort,
		cfg.SMTPUsername,
		cfg.SMTPPassword,
		cfg.MailFrom,
	)
	product := mail.Product{
		Name: cfg.MailProductName,
		URL:  cfg.MailProductURL,
	}

	service := auth.NewService(userStore, sessionStore, issuer, verifier, mailer, product)
	authHandler := handler.NewHandler(service)
	authMiddleware := middleware.NewAuthMiddleware(verifier)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())

	authHandler.RegisterRoutes(router, middleware.GinRequireAuth(authMiddleware))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	})

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func(ctx context.Context) error {
		if err := infra.Redis.Close(); err != nil {
			return err
		}
		return infra.Mongo.Close(ctx)
	}, nil
}
