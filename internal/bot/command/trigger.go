package command

import (
	"strings"
)

type TriggerKind string

const (
	TriggerStartsWithWord TriggerKind = "startsWithWord"
)

// Trigger решает, активирует ли строка чата команду.
type Trigger struct {
	Kind          TriggerKind
	Word          string
	CaseSensitive bool
}

func StartsWithWord(word string) Trigger {
	return Trigger{
		Kind: TriggerStartsWithWord,
		Word: word,
	}
}

func StartsWithWordCaseSensitive(word string) Trigger {
	return Trigger{
		Kind:          TriggerStartsWithWord,
		Word:          word,
		CaseSensitive: true,
	}
}

func (t Trigger) Matches(text string) bool {
	switch t.Kind {
	case TriggerStartsWithWord:
		head := headToken(text)
		if head == "" {
			return false
		}

		if t.CaseSensitive {
			return head == t.Word
		}

		return strings.EqualFold(head, t.Word)
	default:
		return false
	}
}

// ListLabel возвращает строку для списка команд, если триггер её предоставляет.
func (t Trigger) ListLabel() (string, bool) {
	switch t.Kind {
	case TriggerStartsWithWord:
		return t.Word, t.Word != ""
	default:
		return "", false
	}
}

func headToken(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}

	return fields[0]
}
