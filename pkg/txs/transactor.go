package txs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"go.uber.org/multierr"
)

type beginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type Option func(*TxManager)

// WithIsoLevel задаёт уровень изоляции новых транзакций.
func WithIsoLevel(level pgx.TxIsoLevel) Option {
	return func(t *TxManager) {
		t.options.IsoLevel = level
	}
}

type TxManager struct {
	db      beginner
	options pgx.TxOptions
	logger  *slog.Logger
}

func NewTxManager(db beginner, logger *slog.Logger, opts ...Option) *TxManager {
	t := &TxManager{
		db:     db,
		logger: logger,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// WithTransaction выполняет txFunc в транзакции. Если в ctx уже открыта
// транзакция, txFunc выполняется в ней, а фиксирует её внешний вызов.
func (t *TxManager) WithTransaction(ctx context.Context, txFunc func(ctx context.Context) error) (err error) {
	if _, ok := txFromContext(ctx); ok {
		return txFunc(ctx)
	}

	tx, err := t.db.BeginTx(ctx, t.options)
	if err != nil {
		t.logger.Error("Ошибка при начале транзакции", "error", err)
		return fmt.Errorf("ошибка при начале транзакции: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("Паника в транзакции, выполняем rollback", "panic", r)

			_ = tx.Rollback(ctx)

			panic(r)
		}
	}()

	if err := txFunc(injectTx(ctx, tx)); err != nil {
		t.logger.Warn("Ошибка в транзакции, выполняем rollback", "error", err)

		return multierr.Append(
			fmt.Errorf("ошибка в транзакции: %w", err),
			tx.Rollback(ctx),
		)
	}

	if err := tx.Commit(ctx); err != nil {
		t.logger.Error("Ошибка при commit транзакции", "error", err)
		return fmt.Errorf("ошибка при commit транзакции: %w", err)
	}

	return nil
}
