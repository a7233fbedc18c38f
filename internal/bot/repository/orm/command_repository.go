package orm

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/Matthew11K/TwitchBot/internal/database"
	customerrors "github.com/Matthew11K/TwitchBot/internal/domain/errors"
	"github.com/Matthew11K/TwitchBot/internal/domain/models"
	"github.com/Matthew11K/TwitchBot/pkg/txs"
)

const commandsTable = "custom_commands"

var commandColumns = []string{
	"type",
	"trigger_word",
	"case_sensitive",
	"authenticator_tag",
	"cooldown_seconds",
	"mod_overrides_cooldown",
	"is_timer",
	"last_invoked",
	"response_template",
}

type TxManager interface {
	WithTransaction(ctx context.Context, txFunc func(ctx context.Context) error) error
}

type CommandRepository struct {
	db        *database.PostgresDB
	txManager TxManager
	sq        sq.StatementBuilderType
}

func NewCommandRepository(db *database.PostgresDB, txManager TxManager) *CommandRepository {
	return &CommandRepository{
		db:        db,
		txManager: txManager,
		sq:        sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *CommandRepository) Load(ctx context.Context) ([]models.CommandRecord, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	query, args, err := r.sq.Select(commandColumns...).
		From(commandsTable).
		OrderBy("position").
		ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "получение команд", Cause: err}
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "получение команд", Cause: err}
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
			return nil, &customerrors.ErrSQLScan{Entity: "команды", Cause: err}
		}

		rec.Type = models.CommandType(commandType)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "чтение команд", Cause: err}
	}

	return records, nil
}

func (r *CommandRepository) Save(ctx context.Context, records []models.CommandRecord) error {
	return r.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		querier := txs.GetQuerier(ctx, r.db.Pool)

		query, args, err := r.sq.Delete(commandsTable).ToSql()
		if err != nil {
			return &customerrors.ErrBuildSQLQuery{Operation: "очистка команд", Cause: err}
		}

		if _, err := querier.Exec(ctx, query, args...); err != nil {
			return &customerrors.ErrSQLExecution{Operation: "очистка команд", Cause: err}
		}

		if len(records) == 0 {
			return nil
		}

		insert := r.sq.Insert(commandsTable).Columns(append([]string{"position"}, commandColumns...)...)

		for i, rec := range records {
			insert = insert.Values(
				i,
				string(rec.Type),
				rec.Trigger.Word,
				rec.Trigger.CaseSensitive,
				rec.AuthenticatorTag,
				rec.CooldownSeconds,
				rec.ModOverridesCooldown,
				rec.IsTimer,
				rec.LastInvoked,
				rec.ResponseTemplate,
			)
		}

		query, args, err = insert.ToSql()
		if err != nil {
			return &customerrors.ErrBuildSQLQuery{Operation: "вставка команд", Cause: err}
		}

		if _, err := querier.Exec(ctx, query, args...); err != nil {
			return &customerrors.ErrSQLExecution{Operation: "вставка команд", Cause: err}
		}

		return nil
	})
}
