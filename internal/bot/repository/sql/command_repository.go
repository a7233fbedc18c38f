package sql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Matthew11K/TwitchBot/internal/database"
	"github.com/Matthew11K/TwitchBot/internal/domain/models"
	"github.com/Matthew11K/TwitchBot/pkg/txs"
)

type TxManager interface {
	WithTransaction(ctx context.Context, txFunc func(ctx context.Context) error) error
}

type CommandRepository struct {
	db        *database.PostgresDB
	txManager TxManager
}

func NewCommandRepository(db *database.PostgresDB, txManager TxManager) *CommandRepository {
	return &CommandRepository{db: db, txManager: txManager}
}

func (r *CommandRepository) Load(ctx context.Context) ([]models.CommandRecord, error) {
	rows, err := txs.GetQuerier(ctx, r.db.Pool).Query(ctx, `
		SELECT type, trigger_word, case_sensitive, authenticator_tag, cooldown_seconds,
		       mod_overrides_cooldown, is_timer, last_invoked, response_template
		FROM custom_commands
		ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении команд: %w", err)
	}
	defer rows.Close()

	records := []models.CommandRecord{}

	for rows.Next() {
		var (
			rec         models.CommandRecord
			commandType string
		)

		if err := rows.Scan(
			&commandType,
			&rec.Trigger.Word,
			&rec.Trigger.CaseSensitive,
			&rec.AuthenticatorTag,
			&rec.CooldownSeconds,
			&rec.ModOverridesCooldown,
			&rec.IsTimer,
			&rec.LastInvoked,
			&rec.ResponseTemplate,
		); err != nil {
			return nil, fmt.Errorf("ошибка при сканировании команды: %w", err)
		}

		rec.Type = models.CommandType(commandType)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при чтении команд: %w", err)
	}

	return records, nil
}

// Save заменяет содержимое таблицы одним пакетом в транзакции.
func (r *CommandRepository) Save(ctx context.Context, records []models.CommandRecord) error {
	return r.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		querier := txs.GetQuerier(ctx, r.db.Pool)

		if _, err := querier.Exec(ctx, "DELETE FROM custom_commands"); err != nil {
			return fmt.Errorf("ошибка при очистке команд: %w", err)
		}

		batch := &pgx.Batch{}

		for i, rec := range records {
			batch.Queue(`
				INSERT INTO custom_commands (position, type, trigger_word, case_sensitive, authenticator_tag,
					cooldown_seconds, mod_overrides_cooldown, is_timer, last_invoked, response_template)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
				i, string(rec.Type), rec.Trigger.Word, rec.Trigger.CaseSensitive, rec.AuthenticatorTag,
				rec.CooldownSeconds, rec.ModOverridesCooldown, rec.IsTimer, rec.LastInvoked, rec.ResponseTemplate)
		}

		if batch.Len() == 0 {
			return nil
		}

		if err := querier.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("ошибка при сохранении команд: %w", err)
		}

		return nil
	})
}
