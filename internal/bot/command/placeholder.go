package command

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Matthew11K/TwitchBot/internal/domain/models"
)

const hijackWarning = "Ответ команды не может начинаться с / или ."

var placeholderPattern = regexp.MustCompile(`\$(user|\d+)`)

// Expand подставляет $user и позиционные $N (слова после триггера, с 1)
// в шаблон ответа. Ответ, похожий на служебную команду чата, заменяется
// предупреждением.
func Expand(template string, message *models.ChatMessage) string {
	var (
		username string
		args     []string
	)

	if message != nil {
		username = message.Username

		if fields := strings.Fields(message.Text); len(fields) > 1 {
			args = fields[1:]
		}
	}

	expanded := placeholderPattern.ReplaceAllStringFunc(template, func(token string) string {
		name := token[1:]
		if name == "user" {
			if message == nil {
				return token
			}

			return username
		}

		n, err := strconv.Atoi(name)
		if err != nil || n < 1 || n > len(args) {
			return token
		}

		return args[n-1]
	})

	if IsControlDirective(expanded) {
		return HijackWarning(username)
	}

	return expanded
}

// IsControlDirective сообщает, будет ли текст воспринят транспортом как служебная
// команда. Разрешён только /me.
func IsControlDirective(text string) bool {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "/") && !strings.HasPrefix(trimmed, ".") {
		return false
	}

	return trimmed != "/me" && !strings.HasPrefix(trimmed, "/me ")
}

func HijackWarning(username string) string {
	if username == "" {
		return hijackWarning
	}

	return fmt.Sprintf("@%s %s", username, hijackWarning)
}
