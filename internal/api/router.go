package api

import (
	"log"
	"net/http"
	"time"

	"wadash-backend/internal/config"
	"wadash-backend/internal/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterDependencies holds all the dependencies required by the router setup,
// primarily handlers and configuration.
type RouterDependencies struct {
	MessageHandlers       *handlers.MessageHandlers
	WebhookHandlers       *handlers.WebhookHandlers
	HumanActivityHandlers *handlers.HumanActivityHandlers
	ConversationHandlers  *handlers.ConversationHandlers
	Config                *config.Config
}

// NewRouter creates and configures the main Chi router for the application.
func NewRouter(deps RouterDependencies) *chi.Mux {
	r := chi.NewRouter()

	// --- Base Middleware Stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// --- CORS Configuration ---
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Dashboard.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// --- Provider Webhook (public: the provider must reach it) ---
	if deps.WebhookHandlers != nil {
		r.Get("/webhook", deps.WebhookHandlers.HandleVerify)
		r.Post("/webhook", deps.WebhookHandlers.HandleEvent)
	} else {
		log.Println("WARN: WebhookHandlers dependency is nil, skipping /webhook routes.")
	}

	// --- Dashboard API ---
	if deps.MessageHandlers != nil {
		r.Route("/messages", func(r chi.Router) {
			r.Get("/", deps.MessageHandlers.HandleListMessages)
			r.Post("/send", deps.MessageHandlers.HandleSendMessage)
		})
	} else {
		log.Println("WARN: MessageHandlers dependency is nil, skipping /messages routes.")
	}

	if deps.HumanActivityHandlers != nil {
		r.Get("/check-human", deps.HumanActivityHandlers.HandleCheckHuman)
	} else {
		log.Println("WARN: HumanActivityHandlers dependency is nil, skipping /check-human route.")
	}

	if deps.ConversationHandlers != nil {
		r.Get("/conversations", deps.ConversationHandlers.HandleListConversations)
		r.Get("/analytics", deps.ConversationHandlers.HandleAnalytics)
		r.Get("/webhook-logs", deps.ConversationHandlers.HandleListWebhookLogs)
	} else {
		log.Println("WARN: ConversationHandlers dependency is nil, skipping /conversations routes.")
	}

	return r
}
