package models

import (
	"encoding/json"
	"time"
)

type CommandType string

const (
	CommandTypeEcho CommandType = "echo"
)

type TriggerRecord struct {
	Word          string `json:"word"`
	CaseSensitive bool   `json:"caseSensitive"`
}

// CommandRecord хранит пользовательскую команду в сохраняемом виде.
type CommandRecord struct {
	Type                 CommandType   `json:"type"`
	Trigger              TriggerRecord `json:"trigger"`
	AuthenticatorTag     string        `json:"authenticatorTag"`
	CooldownSeconds      int64         `json:"cooldownSeconds"`
	ModOverridesCooldown bool          `json:"modOverridesCooldown"`
	IsTimer              bool          `json:"isTimer"`
	LastInvoked          time.Time     `json:"lastInvoked"`
	ResponseTemplate     string        `json:"responseTemplate"`
}

// UnmarshalJSON считает отсутствующее поле modOverridesCooldown равным true.
func (r *CommandRecord) UnmarshalJSON(data []byte) error {
	type plain CommandRecord

	decoded := plain{ModOverridesCooldown: true}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	*r = CommandRecord(decoded)

	return nil
}
