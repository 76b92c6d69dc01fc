package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dkravets/hearthledger/internal/api/handlers"
	"github.com/dkravets/hearthledger/internal/api/middleware"
	"github.com/dkravets/hearthledger/internal/logger"
	"github.com/dkravets/hearthledger/internal/store"
	"github.com/dkravets/hearthledger/internal/store/inmemory"
	"github.com/dkravets/hearthledger/internal/store/sqlite"
)

func main() {
	// Parse command-line flags
	var (
		port   = flag.String("port", "8080", "HTTP server port")
		dbPath = flag.String("db", os.Getenv("HEARTHLEDGER_DB"), "sqlite database path (or set HEARTHLEDGER_DB; empty runs in-memory)")
	)
	flag.Parse()

	// Initialize logger
	log := logger.New("api")

	ctx := context.Background()

	// Open the document store
	var st store.Store
	if *dbPath != "" {
		sqliteStore, err := sqlite.Open(ctx, *dbPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *dbPath).Msg("Failed to open database")
		}
		st = sqliteStore
		log.Info().Str("path", *dbPath).Msg("Using sqlite store")
	} else {
		st = inmemory.New()
		log.Warn().Msg("No database configured - state is in-memory and lost on exit")
	}
	defer st.Close()

	// Initialize handlers
	habitsHandler := handlers.NewHabitsHandler(st, log)
	transactionsHandler := handlers.NewTransactionsHandler(st, log)
	dashboardHandler := handlers.NewDashboardHandler(st, log)
	calendarHandler := handlers.NewCalendarHandler(st, log)
	challengesHandler := handlers.NewChallengesHandler(st, log)
	adminHandler := handlers.NewAdminHandler(st, log)

	// Create router
	mux := http.NewServeMux()

	// Habit endpoints
	mux.HandleFunc("/api/habits", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			habitsHandler.ListHabits(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/habits/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/habits/")
		parts := strings.Split(rest, "/")
		if parts[0] == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Habit ID is required")
			return
		}
		habitID := parts[0]

		switch {
		case len(parts) == 2 && parts[1] == "toggle" && r.Method == http.MethodPost:
			habitsHandler.Toggle(w, r, habitID)
		case len(parts) == 2 && parts[1] == "reset" && r.Method == http.MethodPost:
			habitsHandler.Reset(w, r, habitID)
		case len(parts) == 2 && parts[1] == "freeze" && r.Method == http.MethodPost:
			habitsHandler.Freeze(w, r, habitID)
		case len(parts) == 2 && parts[1] == "submissions" && r.Method == http.MethodPost:
			habitsHandler.AddSubmission(w, r, habitID)
		case len(parts) == 3 && parts[1] == "submissions" && r.Method == http.MethodDelete:
			habitsHandler.RemoveSubmission(w, r, habitID, parts[2])
		default:
			middleware.WriteError(w, http.StatusNotFound, "Not found")
		}
	})

	// Transaction endpoints
	mux.HandleFunc("/api/transactions", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			transactionsHandler.ListTransactions(w, r)
		case http.MethodPost:
			transactionsHandler.CreateTransaction(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/transactions/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		transactionID := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
		if transactionID == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Transaction ID is required")
			return
		}
		transactionsHandler.CorrectTransaction(w, r, transactionID)
	})

	// Dashboard endpoint
	mux.HandleFunc("/api/dashboard", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			dashboardHandler.GetDashboard(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Calendar endpoints
	mux.HandleFunc("/api/calendar", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			calendarHandler.ListInstances(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/calendar/pay", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			calendarHandler.PayInstance(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/calendar/delete-instance", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			calendarHandler.DeleteInstance(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Challenge endpoints
	mux.HandleFunc("/api/challenges", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			challengesHandler.ListChallenges(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/challenges/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/challenges/")
		parts := strings.Split(rest, "/")
		if len(parts) == 2 && parts[1] == "progress" && r.Method == http.MethodGet {
			challengesHandler.GetProgress(w, r, parts[0])
			return
		}
		middleware.WriteError(w, http.StatusNotFound, "Not found")
	})

	// Admin endpoints
	mux.HandleFunc("/api/admin/migrate", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			adminHandler.RunMigrations(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/admin/reconcile", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			adminHandler.Reconcile(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(
					middleware.MemberID(mux),
				),
			),
		),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
