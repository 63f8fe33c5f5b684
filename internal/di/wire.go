//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"relaychat/internal/account"
	"relaychat/internal/chat/handler"
	"relaychat/internal/chat/service"
	"relaychat/internal/config"
	"relaychat/internal/dbmysql"
	"relaychat/internal/presence"
)

// InitializeRelayApp builds the full relay application graph.
func InitializeRelayApp() (*Application, func(), error) {
	wire.Build(
		config.LoadConfig,
		dbmysql.NewMySQL,
		ProvideMongo,
		presence.NewRegistry,
		ProvideChatRepository,
		ProvideBlobStore,
		ProvideRegistryLookup,
		service.NewDeliveryService,
		handler.NewRelayHandler,
		handler.NewHistoryHandler,
		account.NewAccountRepository,
		account.NewAccountService,
		account.NewHandler,
		wire.Struct(new(Application), "*"),
	)
	return &Application{}, nil, nil
}
