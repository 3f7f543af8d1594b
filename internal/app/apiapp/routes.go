package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pulsedate/backend/internal/config"
	"github.com/pulsedate/backend/internal/realtime"
	authsvc "github.com/pulsedate/backend/internal/services/auth"
	conversationssvc "github.com/pulsedate/backend/internal/services/conversations"
	discoverysvc "github.com/pulsedate/backend/internal/services/discovery"
	interactionssvc "github.com/pulsedate/backend/internal/services/interactions"
	matchessvc "github.com/pulsedate/backend/internal/services/matches"
	mediasvc "github.com/pulsedate/backend/internal/services/media"
	profilessvc "github.com/pulsedate/backend/internal/services/profiles"
	"github.com/pulsedate/backend/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService         *authsvc.Service
	ProfileService      *profilessvc.Service
	MediaService        *mediasvc.Service
	DiscoveryService    *discoverysvc.Service
	InteractionService  *interactionssvc.Service
	MatchService        *matchessvc.Service
	ConversationService *conversationssvc.Service
	Broker              realtime.Broker
	Logger              *zap.Logger
	Config              config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(deps.AuthService)
	profileHandler := handlers.NewProfileHandler(deps.ProfileService)
	mediaHandler := handlers.NewMediaHandler(deps.MediaService)
	discoverHandler := handlers.NewDiscoverHandler(deps.DiscoveryService)
	interactionHandler := handlers.NewInteractionHandler(deps.InteractionService)
	matchesHandler := handlers.NewMatchesHandler(deps.MatchService)
	conversationsHandler := handlers.NewConversationsHandler(deps.ConversationService)
	messagesHandler := handlers.NewMessagesHandler(deps.ConversationService, deps.Broker, deps.Config.Messaging.MaxTextLen, deps.Logger)
	eventsHandler := handlers.NewEventsHandler(deps.ConversationService, deps.Broker, deps.Logger)
	authMW := AuthMiddleware(deps.AuthService, deps.Logger)

	r.Get("/healthz", healthHandler.Get)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
		r.With(authMW).Post("/logout", authHandler.Logout)
		r.With(authMW).Post("/logout_all", authHandler.LogoutAll)
	})

	r.With(authMW).Get("/discover", discoverHandler.Feed)
	r.With(authMW).Get("/profile/{userID}", profileHandler.Get)
	r.With(authMW).Put("/profile", profileHandler.Update)
	r.With(authMW).Post("/media/photo", mediaHandler.PhotoUpload)
	r.With(authMW).Delete("/media/photo", mediaHandler.PhotoRemove)
	r.With(authMW).Post("/interactions", interactionHandler.Create)
	r.With(authMW).Get("/matches", matchesHandler.List)
	r.With(authMW).Post("/unmatch", matchesHandler.Unmatch)

	r.Route("/conversations", func(r chi.Router) {
		r.Use(authMW)
		r.Get("/", conversationsHandler.List)
		r.Post("/", conversationsHandler.Start)
		r.Post("/{conversationID}/deactivate", conversationsHandler.Deactivate)
		r.Get("/{conversationID}/events", eventsHandler.Stream)
	})

	r.Route("/messages", func(r chi.Router) {
		r.Use(authMW)
		r.Get("/{conversationID}", messagesHandler.List)
		r.Post("/{conversationID}", messagesHandler.Send)
	})
}
