package builtin_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Matthew11K/TwitchBot/internal/bot/builtin"
	"github.com/Matthew11K/TwitchBot/internal/bot/registry"
	"github.com/Matthew11K/TwitchBot/internal/bot/settings"
	domainerrors "github.com/Matthew11K/TwitchBot/internal/domain/errors"
	"github.com/Matthew11K/TwitchBot/internal/domain/models"
)

type memoryRepo struct {
	mu      sync.Mutex
	records []models.CommandRecord
}

func (m *memoryRepo) Load(_ context.Context) ([]models.CommandRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]models.CommandRecord(nil), m.records...), nil
}

func (m *memoryRepo) Save(_ context.Context, records []models.CommandRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = append([]models.CommandRecord(nil), records...)

	return nil
}

type recordingSender struct {
	mu   sync.Mutex
	sent []string
}

func (s *recordingSender) SendMessage(_ context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sent = append(s.sent, text)

	return nil
}

func (s *recordingSender) last() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sent) == 0 {
		return ""
	}

	return s.sent[len(s.sent)-1]
}

type staticPoints map[string]int

func (p staticPoints) PointsOf(_ context.Context, userID string) (int, error) {
	return p[userID], nil
}

type fixture struct {
	reg    *registry.Registry
	repo   *memoryRepo
	timers *settings.Store
	sender *recordingSender
	path   string
}

func newFixture(t *testing.T, opts ...builtin.Option) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	path := filepath.Join(t.TempDir(), "settings.json")

	timers := settings.NewStore(path, models.TimerSettings{Interval: 25 * time.Minute, Enabled: true}, logger)
	require.NoError(t, timers.Load())

	repo := &memoryRepo{}
	reg := registry.New(repo, logger)
	reg.AddBuiltin(builtin.New(reg, timers, 29*time.Second, logger, opts...).Commands()...)

	return &fixture{reg: reg, repo: repo, timers: timers, sender: &recordingSender{}, path: path}
}

func (f *fixture) say(t *testing.T, msg *models.ChatMessage) error {
	t.Helper()

	matched, err := f.reg.Dispatch(context.Background(), msg, f.sender)
	require.True(t, matched, "команда %q не найдена", msg.Text)

	return err
}

func mod(text string) *models.ChatMessage {
	return &models.ChatMessage{Text: text, UserID: "1", Username: "moder", IsModerator: true}
}

func streamer(text string) *models.ChatMessage {
	return &models.ChatMessage{Text: text, UserID: "2", Username: "streamer", IsBroadcaster: true}
}

func viewer(text string) *models.ChatMessage {
	return &models.ChatMessage{Text: text, UserID: "3", Username: "viewer"}
}

func TestAdd_CreatesEchoCommand(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.say(t, mod("!add !hello Привет, $user!")))
	assert.Equal(t, "@moder Команда !hello добавлена!", f.sender.last())

	require.NoError(t, f.say(t, viewer("!hello")))
	assert.Equal(t, "Привет, viewer!", f.sender.last())

	require.Len(t, f.repo.records, 1)
	assert.Equal(t, "!hello", f.repo.records[0].Trigger.Word)
	assert.Equal(t, int64(29), f.repo.records[0].CooldownSeconds)
}

func TestAdd_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "без сообщения",
			text: "!add !hello",
			want: "@moder Синтаксис: !add <триггер> <сообщение>",
		},
		{
			name: "служебная команда",
			text: "!add !ban /ban someone",
			want: "@moder Ответ команды не может начинаться с / или .",
		},
		{
			name: "конфликт со встроенной",
			text: "!add !list другой список",
			want: "@moder Эта команда конфликтует с другой командой!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			require.NoError(t, f.say(t, mod(tt.text)))
			assert.Equal(t, tt.want, f.sender.last())
			assert.Empty(t, f.repo.records)
		})
	}
}

func TestAdd_DeniedForViewer(t *testing.T) {
	f := newFixture(t)

	err := f.say(t, viewer("!add !hello hi"))

	assert.ErrorIs(t, err, &domainerrors.ErrAuthorizationDenied{})
	assert.Empty(t, f.repo.records)
}

func TestEdit_KeepsTriggerAndCooldown(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.say(t, mod("!add !hello hi")))
	require.NoError(t, f.say(t, mod("!edit !hello hey there")))
	assert.Equal(t, "@moder Команда \"!hello\" успешно изменена.", f.sender.last())

	require.Len(t, f.repo.records, 1)
	assert.Equal(t, "hey there", f.repo.records[0].ResponseTemplate)
	assert.Equal(t, int64(29), f.repo.records[0].CooldownSeconds)

	require.NoError(t, f.say(t, mod("!edit !missing text")))
	assert.Equal(t, "@moder Неизвестный триггер: \"!missing\"", f.sender.last())
}

func TestRemove(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.say(t, mod("!add !hello hi")))
	require.NoError(t, f.say(t, mod("!remove !hello")))
	assert.Equal(t, "@moder Команда !hello удалена!", f.sender.last())
	assert.Empty(t, f.repo.records)

	require.NoError(t, f.say(t, mod("!remove !hello")))
	assert.Equal(t, "@moder Неизвестный триггер: \"!hello\"", f.sender.last())
}

func TestList_FiltersByCallerAndSorts(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.say(t, mod("!add !zeta z")))
	require.NoError(t, f.say(t, mod("!add !alpha a")))

	require.NoError(t, f.say(t, viewer("!list")))
	assert.Equal(t, "@viewer Доступные команды: !alpha !list !zeta", f.sender.last())
}

func TestSetUserLevel(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.say(t, mod("!add !secret tss")))
	require.NoError(t, f.say(t, mod("!setUserLevel !secret broadcaster")))
	assert.Equal(t, "@moder Уровень доступа команды \"!secret\" изменён на \"broadcaster\"", f.sender.last())
	assert.Equal(t, "broadcaster", f.repo.records[0].AuthenticatorTag)

	err := f.say(t, viewer("!secret"))
	assert.ErrorIs(t, err, &domainerrors.ErrAuthorizationDenied{})

	require.NoError(t, f.say(t, mod("!setUserLevel !secret nobody")))
	assert.Contains(t, f.sender.last(), "не является уровнем доступа")
}

func TestTimerToggles(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.say(t, mod("!add !tip пейте воду")))

	require.NoError(t, f.say(t, streamer("!enabletimer !tip")))
	assert.True(t, f.repo.records[0].IsTimer)

	require.NoError(t, f.say(t, streamer("!disabletimer !tip")))
	assert.False(t, f.repo.records[0].IsTimer)

	require.NoError(t, f.say(t, streamer("!enabletimer !nope")))
	assert.Equal(t, "@streamer Неизвестный триггер: \"!nope\"", f.sender.last())
}

func TestIntervalCommands(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.say(t, streamer("!interval")))
	assert.Equal(t, "@streamer Интервал таймерных команд: 25 мин.", f.sender.last())

	require.NoError(t, f.say(t, streamer("!setinterval 10")))
	assert.Equal(t, 10*time.Minute, f.timers.Current().Interval)

	require.NoError(t, f.say(t, streamer("!setinterval -3")))
	assert.Equal(t, 10*time.Minute, f.timers.Current().Interval)

	reloaded := settings.NewStore(f.path, models.TimerSettings{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, reloaded.Load())
	assert.Equal(t, 10*time.Minute, reloaded.Current().Interval)

	err := f.say(t, mod("!setinterval 1"))
	assert.ErrorIs(t, err, &domainerrors.ErrAuthorizationDenied{})
}

func TestEnableDisable(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.say(t, streamer("!disable")))
	assert.False(t, f.timers.Current().Enabled)
	assert.Equal(t, "@streamer Таймерные команды выключены.", f.sender.last())

	require.NoError(t, f.say(t, streamer("!enable")))
	assert.True(t, f.timers.Current().Enabled)
}

func TestPoints(t *testing.T) {
	f := newFixture(t, builtin.WithPoints(staticPoints{"3": 120}))

	require.NoError(t, f.say(t, viewer("!points")))
	assert.Equal(t, "@viewer У тебя 120 очков.", f.sender.last())
}

func TestPoints_AbsentWithoutLedger(t *testing.T) {
	f := newFixture(t)

	matched, err := f.reg.Dispatch(context.Background(), viewer("!points"), f.sender)
	require.NoError(t, err)
	assert.False(t, matched)
}

func TestCommands_ListedLabels(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	set := builtin.New(registry.New(&memoryRepo{}, logger), nil, time.Second, logger)

	var labels []string
	for _, cmd := range set.Commands() {
		labels = append(labels, cmd.Label())
		assert.False(t, cmd.IsEcho())
	}

	assert.Contains(t, labels, "!add")
	assert.Contains(t, labels, "!disable")
	assert.NotContains(t, labels, "!points")
}
