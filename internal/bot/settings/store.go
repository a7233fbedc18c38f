package settings

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	domainerrors "github.com/Matthew11K/TwitchBot/internal/domain/errors"
	"github.com/Matthew11K/TwitchBot/internal/domain/models"
	"github.com/Matthew11K/TwitchBot/internal/storage/jsonfile"
)

type fileSettings struct {
	TimedMessagesInterval string `json:"timedMessagesInterval"`
	TimedCommandsEnabled  bool   `json:"timedCommandsEnabled"`
}

// Store хранит настройки таймеров в памяти и сохраняет каждое изменение в файл.
type Store struct {
	mu      sync.RWMutex
	path    string
	current models.TimerSettings
	logger  *slog.Logger
}

func NewStore(path string, defaults models.TimerSettings, logger *slog.Logger) *Store {
	return &Store{
		path:    path,
		current: defaults,
		logger:  logger,
	}
}

// Load читает файл настроек. Если файла нет, он создаётся со значениями по умолчанию.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stored fileSettings

	err := jsonfile.Load(s.path, &stored)
	if errors.Is(err, os.ErrNotExist) {
		s.logger.Info("Файл настроек не найден, создаём со значениями по умолчанию", "path", s.path)
		return s.saveLocked()
	}

	if err != nil {
		return err
	}

	interval, err := time.ParseDuration(stored.TimedMessagesInterval)
	if err != nil {
		return &domainerrors.ErrMalformedPersistedState{Source: s.path, Cause: err}
	}

	s.current = models.TimerSettings{
		Interval: interval,
		Enabled:  stored.TimedCommandsEnabled,
	}

	return nil
}

func (s *Store) Current() models.TimerSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.current
}

func (s *Store) SetInterval(interval time.Duration) error {
	if interval <= 0 {
		return &domainerrors.ErrInvalidArgument{Message: "интервал должен быть положительным"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.current.Interval = interval

	return s.saveLocked()
}

func (s *Store) SetEnabled(enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current.Enabled = enabled

	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	stored := fileSettings{
		TimedMessagesInterval: s.current.Interval.String(),
		TimedCommandsEnabled:  s.current.Enabled,
	}

	if err := jsonfile.Save(s.path, stored); err != nil {
		s.logger.Error("Ошибка сохранения настроек", "error", err)
		return fmt.Errorf("ошибка сохранения настроек: %w", err)
	}

	return nil
}
