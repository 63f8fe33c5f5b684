package main

import (
	"context"
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"relaychat/internal/config"
	"relaychat/internal/dbmongo"
	"relaychat/internal/media"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env file not found, using system env variables")
	}

	cfg := config.LoadConfig()

	mongoClient, err := dbmongo.NewMongoConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Close(context.Background())

	mediaServer := media.NewHTTPServer(mongoClient)

	addr := cfg.Server.Host + ":" + cfg.Server.MediaServicePort
	log.Printf("Media server listening on %s", addr)
	log.Printf("Serving blobs at http://%s/media/{fileId}", addr)

	if err := http.ListenAndServe(addr, mediaServer); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
