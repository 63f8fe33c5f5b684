package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"relaychat/internal/common"
	"relaychat/internal/dbmysql"
	"relaychat/internal/di"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env file not found, using system env variables")
	}

	log.Println("Starting Relay Server...")

	app, cleanup, err := di.InitializeRelayApp()
	if err != nil {
		log.Fatalf("Failed to initialize relay server: %v", err)
	}
	defer cleanup()

	if err := app.DB.AutoMigrate(&dbmysql.User{}, &dbmysql.ChatMessage{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed")

	router := mux.NewRouter()

	// Account REST surface
	router.HandleFunc("/register", app.Accounts.Register).Methods("POST")
	router.HandleFunc("/login", app.Accounts.Login).Methods("POST")
	router.HandleFunc("/all-chats", app.Accounts.AllChats).Methods("GET")
	router.Handle("/user-info", common.AuthMiddleware(http.HandlerFunc(app.Accounts.UserInfo))).Methods("GET")

	// History + presence reads
	router.HandleFunc("/my-chats", app.History.MyChats).Methods("GET")
	router.HandleFunc("/is-online", app.History.IsOnline).Methods("GET")

	// Relay websocket endpoint
	router.HandleFunc("/ws", app.Relay.ServeWS)

	addr := app.Config.Server.Host + ":" + app.Config.Server.RelayPort
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(app.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(app.Config.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("Relay Server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down Relay Server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
	log.Println("Relay Server stopped")
}
