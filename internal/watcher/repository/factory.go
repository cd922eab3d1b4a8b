package repository

import (
	"log/slog"

	"github.com/central-university-dev/go-content-watch/internal/config"
	"github.com/central-university-dev/go-content-watch/internal/database"
	"github.com/central-university-dev/go-content-watch/internal/domain/errors"
	"github.com/central-university-dev/go-content-watch/internal/watcher/repository/orm"
	sqlrepo "github.com/central-university-dev/go-content-watch/internal/watcher/repository/sql"
)

type Factory struct {
	db     *database.PostgresDB
	config *config.Config
	logger *slog.Logger
}

func NewFactory(db *database.PostgresDB, config *config.Config, logger *slog.Logger) *Factory {
	return &Factory{
		db:     db,
		config: config,
		logger: logger,
	}
}

func (f *Factory) CreateMonitorRepository() (MonitorRepository, error) {
	switch f.config.DatabaseAccessType {
	case config.SquirrelAccess:
		f.logger.Info("Создание ORM (Squirrel) репозитория мониторов")
		return orm.NewMonitorRepository(f.db), nil
	case config.SQLAccess:
		f.logger.Info("Создание SQL репозитория мониторов")
		return sqlrepo.NewMonitorRepository(f.db), nil
	default:
		return nil, &errors.ErrUnknownDBAccessType{AccessType: string(f.config.DatabaseAccessType)}
	}
}

func (f *Factory) CreateEventRepository() (EventRepository, error) {
	switch f.config.DatabaseAccessType {
	case config.SquirrelAccess:
		f.logger.Info("Создание ORM (Squirrel) репозитория событий")
		return orm.NewEventRepository(f.db), nil
	case config.SQLAccess:
		f.logger.Info("Создание SQL репозитория событий")
		return sqlrepo.NewEventRepository(f.db), nil
	default:
		return nil, &errors.ErrUnknownDBAccessType{AccessType: string(f.config.DatabaseAccessType)}
	}
}

func (f *Factory) CreateContentRepository() (ContentRepository, error) {
	switch f.config.DatabaseAccessType {
	case config.SquirrelAccess:
		f.logger.Info("Создание ORM (Squirrel) репозитория опубликованного контента")
		return orm.NewContentRepository(f.db), nil
	case config.SQLAccess:
		f.logger.Info("Создание SQL репозитория опубликованного контента")
		return sqlrepo.NewContentRepository(f.db), nil
	default:
		return nil, &errors.ErrUnknownDBAccessType{AccessType: string(f.config.DatabaseAccessType)}
	}
}
