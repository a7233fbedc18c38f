package command

import (
	"time"

	domainerrors "github.com/Matthew11K/TwitchBot/internal/domain/errors"
	"github.com/Matthew11K/TwitchBot/internal/domain/models"
)

// ToRecord переводит пользовательскую команду в сохраняемую запись.
// Нативные команды не сохраняются.
func ToRecord(c *Command) (models.CommandRecord, error) {
	if !c.IsEcho() {
		return models.CommandRecord{}, &domainerrors.ErrUnknownCommandType{Type: "native"}
	}

	return models.CommandRecord{
		Type: models.CommandTypeEcho,
		Trigger: models.TriggerRecord{
			Word:          c.Trigger.Word,
			CaseSensitive: c.Trigger.CaseSensitive,
		},
		AuthenticatorTag:     c.Authenticator.Tag(),
		CooldownSeconds:      int64(c.Cooldown / time.Second),
		ModOverridesCooldown: c.ModOverridesCooldown,
		IsTimer:              c.IsTimer,
		LastInvoked:          c.LastInvoked,
		ResponseTemplate:     c.Response,
	}, nil
}

func FromRecord(rec models.CommandRecord) (*Command, error) {
	if rec.Type != models.CommandTypeEcho {
		return nil, &domainerrors.ErrUnknownCommandType{Type: string(rec.Type)}
	}

	if rec.Trigger.Word == "" {
		return nil, &domainerrors.ErrInvalidArgument{Message: "пустой триггер"}
	}

	if rec.CooldownSeconds < 0 {
		return nil, &domainerrors.ErrInvalidArgument{Message: "отрицательная перезарядка у " + rec.Trigger.Word}
	}

	auth, err := ParseAuthenticator(rec.AuthenticatorTag)
	if err != nil {
		return nil, err
	}

	return &Command{
		Trigger: Trigger{
			Kind:          TriggerStartsWithWord,
			Word:          rec.Trigger.Word,
			CaseSensitive: rec.Trigger.CaseSensitive,
		},
		Authenticator:        auth,
		Cooldown:             time.Duration(rec.CooldownSeconds) * time.Second,
		ModOverridesCooldown: rec.ModOverridesCooldown,
		IsTimer:              rec.IsTimer,
		LastInvoked:          rec.LastInvoked,
		Response:             rec.ResponseTemplate,
	}, nil
}
