package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pulsedate/backend/internal/config"
	s3infra "github.com/pulsedate/backend/internal/infra/s3"
	"github.com/pulsedate/backend/migrations"
	"github.com/pulsedate/backend/internal/realtime"
	pgrepo "github.com/pulsedate/backend/internal/repo/postgres"
	redrepo "github.com/pulsedate/backend/internal/repo/redis"
	authsvc "github.com/pulsedate/backend/internal/services/auth"
	conversationssvc "github.com/pulsedate/backend/internal/services/conversations"
	discoverysvc "github.com/pulsedate/backend/internal/services/discovery"
	interactionssvc "github.com/pulsedate/backend/internal/services/interactions"
	matchessvc "github.com/pulsedate/backend/internal/services/matches"
	mediasvc "github.com/pulsedate/backend/internal/services/media"
	profilessvc "github.com/pulsedate/backend/internal/services/profiles"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
		if err := pgrepo.Migrate(ctx, pool, migrations.FS); err != nil {
			log.Warn("migrations failed, continuing with current schema", zap.Error(err))
		}
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	sessionRepo := redrepo.NewSessionRepo(redisClient)
	userRepo := pgrepo.NewUserRepo(pool)
	interactionRepo := pgrepo.NewInteractionRepo(pool)
	matchRepo := pgrepo.NewMatchRepo(pool)
	conversationRepo := pgrepo.NewConversationRepo(pool)
	messageRepo := pgrepo.NewMessageRepo(pool)
	discoverRepo := pgrepo.NewDiscoverRepo(pool)

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
	}
	mediaStorage := mediasvc.NewS3Storage(s3Client, cfg.S3.Bucket)

	var broker realtime.Broker
	if cfg.Realtime.Driver == "memory" {
		broker = realtime.NewMemoryBroker()
	} else {
		broker = realtime.NewRedisBroker(redisClient, log)
	}

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	authService := authsvc.NewService(jwtManager, userRepo, sessionRepo, cfg.Auth.RefreshTTL)
	profileService := profilessvc.NewService(userRepo, mediaStorage, cfg.Media.SignedURLTTL, log)
	mediaService := mediasvc.NewService(userRepo, mediaStorage, mediasvc.Config{
		MaxUploadBytes: cfg.Media.MaxUploadBytes,
		SignedURLTTL:   cfg.Media.SignedURLTTL,
	})
	discoveryService := discoverysvc.NewService(discoverRepo, userRepo, discoverysvc.Config{
		FeedLimit: cfg.Discovery.FeedLimit,
	})
	interactionService := interactionssvc.NewService(interactionssvc.Dependencies{
		Pool:         pool,
		Interactions: interactionRepo,
		Matches:      matchRepo,
	})
	matchService := matchessvc.NewService(matchessvc.Dependencies{
		Pool:          pool,
		MatchStore:    matchRepo,
		Conversations: conversationRepo,
	})
	conversationService := conversationssvc.NewService(conversationssvc.Dependencies{
		Pool:          pool,
		Conversations: conversationRepo,
		Matches:       matchRepo,
		Messages:      messageRepo,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		AuthService:         authService,
		ProfileService:      profileService,
		MediaService:        mediaService,
		DiscoveryService:    discoveryService,
		InteractionService:  interactionService,
		MatchService:        matchService,
		ConversationService: conversationService,
		Broker:              broker,
		Logger:              log,
		Config:              cfg,
	})

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		s3:         s3Client,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
