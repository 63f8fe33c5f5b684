package di

import (
	"context"

	"gorm.io/gorm"

	"relaychat/internal/account"
	"relaychat/internal/chat/handler"
	"relaychat/internal/chat/repository"
	"relaychat/internal/chat/service"
	"relaychat/internal/config"
	"relaychat/internal/dbmongo"
	"relaychat/internal/presence"
)

// Application bundles everything the relay binary serves.
type Application struct {
	Config   *config.Config
	DB       *gorm.DB
	Mongo    *dbmongo.MongoClient
	Registry *presence.Registry
	Relay    *handler.RelayHandler
	History  *handler.HistoryHandler
	Accounts *account.Handler
}

func ProvideMongo(cfg *config.Config) (*dbmongo.MongoClient, func(), error) {
	mc, err := dbmongo.NewMongoConnection(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		mc.Close(context.Background())
	}
	return mc, cleanup, nil
}

func ProvideChatRepository(db *gorm.DB) service.ChatRepository {
	return repository.NewChatRepository(db)
}

func ProvideBlobStore(mc *dbmongo.MongoClient) service.BlobStore {
	return dbmongo.NewBlobStorage(mc)
}

func ProvideRegistryLookup(r *presence.Registry) service.Registry {
	return r
}
