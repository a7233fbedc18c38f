package command

import (
	"fmt"
	"strconv"
	"strings"

	domainerrors "github.com/Matthew11K/TwitchBot/internal/domain/errors"
)

const modOrBroadcasterAlias = "modOrBroadcaster"

// Tag кодирует аутентификатор в строку: pleb, mod, broadcaster, user:<id>,
// points:<n>; комбинации через | и &, вложенные комбинации в скобках.
func (a Authenticator) Tag() string {
	switch a.Kind {
	case AuthPleb, AuthMod, AuthBroadcaster:
		return string(a.Kind)
	case AuthSingleUser:
		return string(AuthSingleUser) + ":" + a.UserID
	case AuthPointsAtLeast:
		return string(AuthPointsAtLeast) + ":" + strconv.Itoa(a.Threshold)
	case AuthCombined:
		if a.LHS == nil || a.RHS == nil {
			return ""
		}

		return operandTag(a.LHS) + string(a.Op) + operandTag(a.RHS)
	default:
		return ""
	}
}

func operandTag(a *Authenticator) string {
	if a.Kind == AuthCombined {
		return "(" + a.Tag() + ")"
	}

	return a.Tag()
}

// ParseAuthenticator разбирает строку, созданную Tag. Пустая строка означает pleb.
func ParseAuthenticator(tag string) (Authenticator, error) {
	if strings.TrimSpace(tag) == "" {
		return Pleb, nil
	}

	p := &tagParser{tokens: tokenizeTag(tag), source: tag}

	auth, err := p.parseOr()
	if err != nil {
		return Authenticator{}, err
	}

	if p.pos != len(p.tokens) {
		return Authenticator{}, p.errorf("лишний токен %q", p.tokens[p.pos])
	}

	return auth, nil
}

type tagParser struct {
	tokens []string
	pos    int
	source string
}

func (p *tagParser) peek() string {
	if p.pos >= len(p.tokens) {
		return ""
	}

	return p.tokens[p.pos]
}

func (p *tagParser) next() string {
	tok := p.peek()
	p.pos++

	return tok
}

func (p *tagParser) errorf(format string, args ...any) error {
	return &domainerrors.ErrUnknownUserLevel{Level: p.source + ": " + fmt.Sprintf(format, args...)}
}

func (p *tagParser) parseOr() (Authenticator, error) {
	lhs, err := p.parseAnd()
	if err != nil {
		return Authenticator{}, err
	}

	for p.peek() == string(OpOr) {
		p.next()

		rhs, err := p.parseAnd()
		if err != nil {
			return Authenticator{}, err
		}

		lhs = Combine(lhs, rhs, OpOr)
	}

	return lhs, nil
}

func (p *tagParser) parseAnd() (Authenticator, error) {
	lhs, err := p.parseAtom()
	if err != nil {
		return Authenticator{}, err
	}

	for p.peek() == string(OpAnd) {
		p.next()

		rhs, err := p.parseAtom()
		if err != nil {
			return Authenticator{}, err
		}

		lhs = Combine(lhs, rhs, OpAnd)
	}

	return lhs, nil
}

func (p *tagParser) parseAtom() (Authenticator, error) {
	tok := p.next()

	switch tok {
	case "":
		return Authenticator{}, p.errorf("неожиданный конец")
	case "(":
		inner, err := p.parseOr()
		if err != nil {
			return Authenticator{}, err
		}

		if p.next() != ")" {
			return Authenticator{}, p.errorf("ожидалась )")
		}

		return inner, nil
	case ")", string(OpOr), string(OpAnd):
		return Authenticator{}, p.errorf("неожиданный токен %q", tok)
	}

	return parseLevel(tok)
}

func parseLevel(tok string) (Authenticator, error) {
	switch tok {
	case string(AuthPleb):
		return Pleb, nil
	case string(AuthMod):
		return Mod, nil
	case string(AuthBroadcaster):
		return Broadcaster, nil
	case modOrBroadcasterAlias:
		return ModOrBroadcaster, nil
	}

	kind, value, ok := strings.Cut(tok, ":")
	if !ok || value == "" {
		return Authenticator{}, &domainerrors.ErrUnknownUserLevel{Level: tok}
	}

	switch AuthKind(kind) {
	case AuthSingleUser:
		return SingleUser(value), nil
	case AuthPointsAtLeast:
		threshold, err := strconv.Atoi(value)
		if err != nil {
			return Authenticator{}, &domainerrors.ErrUnknownUserLevel{Level: tok}
		}

		return PointsAtLeast(threshold), nil
	default:
		return Authenticator{}, &domainerrors.ErrUnknownUserLevel{Level: tok}
	}
}

func tokenizeTag(tag string) []string {
	var (
		tokens []string
		sb     strings.Builder
	)

	flush := func() {
		if word := strings.TrimSpace(sb.String()); word != "" {
			tokens = append(tokens, word)
		}

		sb.Reset()
	}

	for _, r := range tag {
		switch r {
		case '(', ')', '|', '&':
			flush()

			tokens = append(tokens, string(r))
		default:
			sb.WriteRune(r)
		}
	}

	flush()

	return tokens
}
