package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Matthew11K/TwitchBot/internal/bot/registry"
	"github.com/Matthew11K/TwitchBot/internal/domain/models"
)

type CommandLister interface {
	Snapshot() []registry.Entry
}

type TimerSettingsReader interface {
	Current() models.TimerSettings
}

type commandsResponse struct {
	Commands             []registry.Entry `json:"commands"`
	TimedCommandsEnabled bool             `json:"timedCommandsEnabled"`
	TimerInterval        string           `json:"timerInterval"`
}

// CommandsHandler отдаёт только для чтения список команд и настройки таймеров.
type CommandsHandler struct {
	commands CommandLister
	timers   TimerSettingsReader
	logger   *slog.Logger
}

func NewCommandsHandler(commands CommandLister, timers TimerSettingsReader, logger *slog.Logger) *CommandsHandler {
	return &CommandsHandler{
		commands: commands,
		timers:   timers,
		logger:   logger,
	}
}

func (h *CommandsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)

		return
	}

	settings := h.timers.Current()

	resp := commandsResponse{
		Commands:             h.commands.Snapshot(),
		TimedCommandsEnabled: settings.Enabled,
		TimerInterval:        settings.Interval.String(),
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("Ошибка записи ответа", "error", err)
	}
}
