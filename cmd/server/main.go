package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/manpreetbhatti/beholder/internal/api"
	"github.com/manpreetbhatti/beholder/internal/bus"
	"github.com/manpreetbhatti/beholder/internal/claim"
	"github.com/manpreetbhatti/beholder/internal/session"
	"github.com/manpreetbhatti/beholder/internal/store"
	"github.com/manpreetbhatti/beholder/internal/ws"
)

func main() {
	viewStore, closeStore := openStore()
	defer closeStore()

	var hubBus ws.Bus
	var busConn *bus.Conn
	if natsURL := os.Getenv("BEHOLDER_NATS_URL"); natsURL != "" {
		conn, err := bus.Connect(natsURL)
		if err != nil {
			log.Fatalf("Failed to connect broadcast bus: %v", err)
		}
		busConn = conn
		hubBus = conn
		log.Printf("📡 Broadcast bus connected at %s", natsURL)
	}

	hub := ws.NewHub(hubBus)
	go hub.Run()

	if busConn != nil {
		if err := busConn.Subscribe(hub.InjectRemote); err != nil {
			log.Fatalf("Failed to subscribe broadcast bus: %v", err)
		}
		defer busConn.Close()
	}

	router := ws.NewRouter(hub, viewStore, claim.NewNegotiator(viewStore))
	apiHandler := api.New(hub, viewStore)

	// The session subsystem is external; until it is wired in, sessions
	// come straight off the upgrade request.
	sessions := func(r *http.Request) *session.Session {
		return session.New(r.URL.Query().Get("entitled") == "1")
	}

	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWs(router, sessions, w, r)
	})

	http.HandleFunc("/health", apiHandler.HealthHandler)
	http.HandleFunc("/api/stats", apiHandler.StatsHandler)
	http.HandleFunc("/api/rooms", apiHandler.RoomsHandler)

	handler := corsMiddleware(http.DefaultServeMux)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		if busConn != nil {
			busConn.Close()
		}
		closeStore()
		os.Exit(0)
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("👁️ Beholder server starting on :%s", port)
	log.Println("Endpoints:")
	log.Println("  - WebSocket: /ws?entitled={0|1}")
	log.Println("  - Health:    GET /health")
	log.Println("  - Stats:     GET /api/stats")
	log.Println("  - Rooms:     GET /api/rooms")

	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatal("ListenAndServe: ", err)
	}
}

// openStore picks the view-state backend: Redis when configured (needed
// for multi-instance deployments), SQLite when a db path is set, and an
// in-process map otherwise.
func openStore() (store.Store, func()) {
	if redisURL := os.Getenv("BEHOLDER_REDIS_URL"); redisURL != "" {
		s, err := store.OpenRedis(redisURL)
		if err != nil {
			log.Fatalf("Failed to connect Redis store: %v", err)
		}
		log.Printf("📁 View store: redis (%s)", redisURL)
		return s, func() { s.Close() }
	}

	if dbPath := os.Getenv("BEHOLDER_DB_PATH"); dbPath != "" {
		s, err := store.OpenSQLite(dbPath)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		log.Printf("📁 View store: sqlite (%s)", dbPath)
		return s, func() { s.Close() }
	}

	log.Println("📁 View store: in-memory")
	return store.NewMemory(), func() {}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
