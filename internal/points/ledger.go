package points

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Matthew11K/TwitchBot/internal/common/metrics"
	domainerrors "github.com/Matthew11K/TwitchBot/internal/domain/errors"
	"github.com/Matthew11K/TwitchBot/internal/domain/models"
)

const (
	reasonJoin   = "join"
	reasonTimed  = "timed"
	reasonManual = "manual"
)

// Ledger ведёт баланс очков зрителей. Все изменения сериализуются одним мьютексом.
type Ledger struct {
	mu       sync.Mutex
	store    Store
	settings models.PointSystemSettings
	now      func() time.Time
	logger   *slog.Logger
}

type Option func(*Ledger)

func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

func NewLedger(store Store, settings models.PointSystemSettings, logger *slog.Logger, opts ...Option) *Ledger {
	l := &Ledger{
		store:    store,
		settings: settings,
		now:      time.Now,
		logger:   logger,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// PointsOf возвращает 0 для неизвестного пользователя.
func (l *Ledger) PointsOf(ctx context.Context, userID string) (int, error) {
	info, _, err := l.store.Get(ctx, userID)
	if err != nil {
		return 0, err
	}

	return info.Points, nil
}

func (l *Ledger) AddPointsTo(ctx context.Context, userID string, amount int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.addLocked(ctx, userID, amount, reasonManual)
}

func (l *Ledger) addLocked(ctx context.Context, userID string, amount int, reason string) error {
	if amount <= 0 {
		return nil
	}

	info, _, err := l.store.Get(ctx, userID)
	if err != nil {
		return err
	}

	info.UserID = userID
	info.Points += amount
	info.LastPointSet = l.now()

	if err := l.store.Upsert(ctx, info); err != nil {
		return err
	}

	metrics.RecordPointsGranted(reason, amount)
	l.logger.Debug("Очки начислены", "userID", userID, "amount", amount, "reason", reason)

	return nil
}

func (l *Ledger) RemovePointsFrom(ctx context.Context, userID string, amount int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	info, found, err := l.store.Get(ctx, userID)
	if err != nil {
		return err
	}

	if !found || info.Points < amount {
		return &domainerrors.ErrInsufficientPoints{UserID: userID, Requested: amount, Available: info.Points}
	}

	info.Points -= amount

	if err := l.store.Upsert(ctx, info); err != nil {
		return err
	}

	l.logger.Debug("Очки списаны", "userID", userID, "amount", amount)

	return nil
}

// HandleFirstMessage начисляет бонус за вход пользователю, которого ещё нет в реестре.
func (l *Ledger) HandleFirstMessage(ctx context.Context, userID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, found, err := l.store.Get(ctx, userID)
	if err != nil || found {
		return err
	}

	return l.addLocked(ctx, userID, l.settings.UserJoinAmount, reasonJoin)
}

// GrantTimed начисляет очки всем, кто не получал их дольше PointGivingDelay.
// Возвращает число пользователей, получивших очки.
func (l *Ledger) GrantTimed(ctx context.Context) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.settings.UserTimedAmount <= 0 {
		return 0, nil
	}

	infos, err := l.store.List(ctx)
	if err != nil {
		return 0, err
	}

	now := l.now()
	updated := make([]models.UserInfo, 0, len(infos))

	for _, info := range infos {
		if info.LastPointSet.Add(l.settings.PointGivingDelay).Before(now) {
			info.Points += l.settings.UserTimedAmount
			info.LastPointSet = now
			updated = append(updated, info)
		}
	}

	if len(updated) == 0 {
		return 0, nil
	}

	if err := l.store.Upsert(ctx, updated...); err != nil {
		return 0, err
	}

	metrics.RecordPointsGranted(reasonTimed, l.settings.UserTimedAmount*len(updated))

	return len(updated), nil
}
