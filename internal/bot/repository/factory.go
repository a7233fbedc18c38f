package repository

import (
	"log/slog"

	"github.com/Matthew11K/TwitchBot/internal/bot/registry"
	"github.com/Matthew11K/TwitchBot/internal/bot/repository/file"
	"github.com/Matthew11K/TwitchBot/internal/bot/repository/orm"
	sqlrepo "github.com/Matthew11K/TwitchBot/internal/bot/repository/sql"
	"github.com/Matthew11K/TwitchBot/internal/config"
	"github.com/Matthew11K/TwitchBot/internal/database"
	"github.com/Matthew11K/TwitchBot/internal/domain/errors"
	"github.com/Matthew11K/TwitchBot/pkg/txs"
)

type Factory struct {
	db     *database.PostgresDB
	config *config.Config
	logger *slog.Logger
}

// NewFactory принимает db равным nil, если команды хранятся в файле.
func NewFactory(db *database.PostgresDB, config *config.Config, logger *slog.Logger) *Factory {
	return &Factory{
		db:     db,
		config: config,
		logger: logger,
	}
}

func (f *Factory) CreateCommandRepository() (registry.CommandRepository, error) {
	switch f.config.CommandStorage {
	case config.FileStorage:
		f.logger.Info("Создание файлового репозитория команд", "path", f.config.CommandsFile)
		return file.NewCommandRepository(f.config.CommandsFile), nil
	case config.SquirrelStorage:
		f.logger.Info("Создание ORM (Squirrel) репозитория команд")

		return orm.NewCommandRepository(f.db, txs.NewTxManager(f.db.Pool, f.logger)), nil
	case config.SQLStorage:
		f.logger.Info("Создание SQL репозитория команд")

		return sqlrepo.NewCommandRepository(f.db, txs.NewTxManager(f.db.Pool, f.logger)), nil
	default:
		return nil, &errors.ErrUnknownStorageType{StorageType: string(f.config.CommandStorage)}
	}
}
