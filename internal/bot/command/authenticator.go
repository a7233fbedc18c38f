package command

import (
	"context"

	"github.com/Matthew11K/TwitchBot/internal/domain/models"
)

type AuthKind string

const (
	AuthPleb          AuthKind = "pleb"
	AuthMod           AuthKind = "mod"
	AuthBroadcaster   AuthKind = "broadcaster"
	AuthSingleUser    AuthKind = "user"
	AuthPointsAtLeast AuthKind = "points"
	AuthCombined      AuthKind = "combined"
)

type Op string

const (
	OpAnd Op = "&"
	OpOr  Op = "|"
)

// PointsReader отдаёт баланс очков пользователя.
type PointsReader interface {
	PointsOf(ctx context.Context, userID string) (int, error)
}

// Authenticator решает, может ли вызывающий запустить команду.
// Combined хранит дерево, а не плоский список.
type Authenticator struct {
	Kind      AuthKind
	UserID    string
	Threshold int
	Op        Op
	LHS       *Authenticator
	RHS       *Authenticator
}

var (
	Pleb             = Authenticator{Kind: AuthPleb}
	Mod              = Authenticator{Kind: AuthMod}
	Broadcaster      = Authenticator{Kind: AuthBroadcaster}
	ModOrBroadcaster = Combine(Mod, Broadcaster, OpOr)
)

func SingleUser(userID string) Authenticator {
	return Authenticator{Kind: AuthSingleUser, UserID: userID}
}

func PointsAtLeast(threshold int) Authenticator {
	return Authenticator{Kind: AuthPointsAtLeast, Threshold: threshold}
}

func Combine(lhs, rhs Authenticator, op Op) Authenticator {
	return Authenticator{
		Kind: AuthCombined,
		Op:   op,
		LHS:  &lhs,
		RHS:  &rhs,
	}
}

// Authorize не меняет состояние и может вызываться повторно.
func (a Authenticator) Authorize(ctx context.Context, caller models.Caller, points PointsReader) bool {
	switch a.Kind {
	case AuthPleb:
		return true
	case AuthMod:
		return caller.IsModerator
	case AuthBroadcaster:
		return caller.IsBroadcaster
	case AuthSingleUser:
		return caller.UserID == a.UserID
	case AuthPointsAtLeast:
		if points == nil {
			return false
		}

		balance, err := points.PointsOf(ctx, caller.UserID)
		if err != nil {
			return false
		}

		return balance >= a.Threshold
	case AuthCombined:
		if a.LHS == nil || a.RHS == nil {
			return false
		}

		lhs := a.LHS.Authorize(ctx, caller, points)
		rhs := a.RHS.Authorize(ctx, caller, points)

		switch a.Op {
		case OpAnd:
			return lhs && rhs
		case OpOr:
			return lhs || rhs
		default:
			return false
		}
	default:
		return false
	}
}
