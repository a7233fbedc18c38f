package command_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Matthew11K/TwitchBot/internal/bot/command"
	domainerrors "github.com/Matthew11K/TwitchBot/internal/domain/errors"
	"github.com/Matthew11K/TwitchBot/internal/domain/models"
)

type recordingSender struct {
	sent []string
	err  error
}

func (s *recordingSender) SendMessage(_ context.Context, text string) error {
	s.sent = append(s.sent, text)
	return s.err
}

type staticPoints map[string]int

func (p staticPoints) PointsOf(_ context.Context, userID string) (int, error) {
	balance, ok := p[userID]
	if !ok {
		return 0, errors.New("нет пользователя")
	}

	return balance, nil
}

func pleb(userID, text string) *models.ChatMessage {
	return &models.ChatMessage{Text: text, UserID: userID, Username: userID}
}

func TestCommand_PingScenario(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	ping := command.NewEcho(command.StartsWithWord("!ping"), "pong")
	ping.Cooldown = 30 * time.Second

	sender := &recordingSender{}

	err := ping.Invoke(ctx, command.NewInvocation(pleb("a", "!ping"), sender), nil, t0)
	require.NoError(t, err)
	assert.Equal(t, []string{"pong"}, sender.sent)
	assert.Equal(t, t0, ping.LastInvoked)

	err = ping.Invoke(ctx, command.NewInvocation(pleb("b", "!ping"), sender), nil, t0.Add(10*time.Second))
	require.Error(t, err)
	assert.True(t, errors.Is(err, &domainerrors.ErrCooldownActive{}))
	assert.Len(t, sender.sent, 1)
	assert.Equal(t, t0, ping.LastInvoked)

	moderator := pleb("a", "!ping")
	moderator.IsModerator = true

	err = ping.Invoke(ctx, command.NewInvocation(moderator, sender), nil, t0.Add(15*time.Second))
	require.NoError(t, err)
	assert.Equal(t, []string{"pong", "pong"}, sender.sent)
	assert.Equal(t, t0.Add(15*time.Second), ping.LastInvoked)
}

func TestCommand_CooldownRejectsRepeatedPlebCalls(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	for _, cooldown := range []time.Duration{time.Second, 30 * time.Second, time.Hour} {
		cmd := command.NewEcho(command.StartsWithWord("!x"), "x")
		cmd.Cooldown = cooldown

		sender := &recordingSender{}

		require.NoError(t, cmd.Invoke(ctx, command.NewInvocation(pleb("u", "!x"), sender), nil, t0))

		err := cmd.Invoke(ctx, command.NewInvocation(pleb("u", "!x"), sender), nil, t0.Add(cooldown-time.Millisecond))
		assert.Error(t, err)
		assert.Len(t, sender.sent, 1)
		assert.Equal(t, t0, cmd.LastInvoked)

		require.NoError(t, cmd.Invoke(ctx, command.NewInvocation(pleb("u", "!x"), sender), nil, t0.Add(cooldown)))
		assert.Len(t, sender.sent, 2)
	}
}

func TestCommand_ModOverrideDisabled(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	cmd := command.NewEcho(command.StartsWithWord("!x"), "x")
	cmd.Cooldown = time.Minute
	cmd.ModOverridesCooldown = false
	cmd.LastInvoked = t0

	moderator := pleb("m", "!x")
	moderator.IsModerator = true

	sender := &recordingSender{}
	err := cmd.Invoke(ctx, command.NewInvocation(moderator, sender), nil, t0.Add(time.Second))

	assert.True(t, errors.Is(err, &domainerrors.ErrCooldownActive{}))
	assert.Empty(t, sender.sent)

	broadcaster := pleb("b", "!x")
	broadcaster.IsBroadcaster = true

	require.NoError(t, cmd.Invoke(ctx, command.NewInvocation(broadcaster, sender), nil, t0.Add(2*time.Second)))
	assert.Equal(t, []string{"x"}, sender.sent)
}

func TestCommand_BroadcasterStillDeniedBySingleUser(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	cmd := command.NewEcho(command.StartsWithWord("!secret"), "ok")
	cmd.Authenticator = command.SingleUser("someone-else")

	broadcaster := pleb("owner", "!secret")
	broadcaster.IsBroadcaster = true

	sender := &recordingSender{}
	err := cmd.Invoke(ctx, command.NewInvocation(broadcaster, sender), nil, now)

	require.Error(t, err)
	assert.True(t, errors.Is(err, &domainerrors.ErrAuthorizationDenied{}))
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "@owner")
	assert.Contains(t, sender.sent[0], "волшебное слово")
	assert.True(t, cmd.LastInvoked.IsZero())
}

func TestCommand_PointsAuthenticator(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	cmd := command.NewEcho(command.StartsWithWord("!vip"), "welcome")
	cmd.Authenticator = command.PointsAtLeast(100)

	points := staticPoints{"rich": 150, "poor": 10}
	sender := &recordingSender{}

	require.NoError(t, cmd.Invoke(ctx, command.NewInvocation(pleb("rich", "!vip"), sender), points, now))

	err := cmd.Invoke(ctx, command.NewInvocation(pleb("poor", "!vip"), sender), points, now)
	assert.True(t, errors.Is(err, &domainerrors.ErrAuthorizationDenied{}))

	err = cmd.Invoke(ctx, command.NewInvocation(pleb("unknown", "!vip"), sender), points, now)
	assert.True(t, errors.Is(err, &domainerrors.ErrAuthorizationDenied{}))

	err = cmd.Invoke(ctx, command.NewInvocation(pleb("rich", "!vip"), sender), nil, now)
	assert.True(t, errors.Is(err, &domainerrors.ErrAuthorizationDenied{}))
}

func TestCommand_ScheduledInvocationSkipsChecks(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	cmd := command.NewEcho(command.StartsWithWord("!timer"), "reminder $user")
	cmd.Authenticator = command.Broadcaster
	cmd.Cooldown = time.Hour
	cmd.LastInvoked = t0

	sender := &recordingSender{}

	require.NoError(t, cmd.Invoke(ctx, command.NewInvocation(nil, sender), nil, t0.Add(time.Minute)))
	assert.Equal(t, []string{"reminder $user"}, sender.sent)
	assert.Equal(t, t0.Add(time.Minute), cmd.LastInvoked)
}

func TestCommand_LastInvokedNeverMovesBackwards(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	cmd := command.NewEcho(command.StartsWithWord("!x"), "x")
	cmd.LastInvoked = t0

	require.NoError(t, cmd.Invoke(ctx, command.NewInvocation(nil, &recordingSender{}), nil, t0.Add(-time.Minute)))
	assert.Equal(t, t0, cmd.LastInvoked)
}

func TestCommand_NativeHandler(t *testing.T) {
	ctx := context.Background()

	var deferredRan bool

	cmd := command.NewNative(command.StartsWithWord("!hello"), func(ctx context.Context, inv *command.Invocation) error {
		inv.Defer(func(context.Context) { deferredRan = true })
		return inv.Reply(ctx, "привет, "+inv.Username())
	})

	sender := &recordingSender{}
	inv := command.NewInvocation(pleb("ann", "!hello"), sender)

	require.NoError(t, cmd.Invoke(ctx, inv, nil, time.Now()))
	assert.False(t, cmd.IsEcho())
	assert.Equal(t, []string{"привет, ann"}, sender.sent)
	assert.False(t, deferredRan)

	for _, fn := range inv.TakeDeferred() {
		fn(ctx)
	}

	assert.True(t, deferredRan)
	assert.Empty(t, inv.TakeDeferred())
}

func TestCommand_CooldownRemaining(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	cmd := command.NewEcho(command.StartsWithWord("!x"), "x")
	assert.Zero(t, cmd.CooldownRemaining(t0))

	cmd.Cooldown = 30 * time.Second
	assert.Zero(t, cmd.CooldownRemaining(t0))

	cmd.LastInvoked = t0
	assert.Equal(t, 20*time.Second, cmd.CooldownRemaining(t0.Add(10*time.Second)))
	assert.Zero(t, cmd.CooldownRemaining(t0.Add(30*time.Second)))
}
