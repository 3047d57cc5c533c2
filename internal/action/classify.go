package action

import (
	"errors"
	"fmt"
	"strings"
)

// Contract-level outcomes surfaced as typed errors.
var (
	ErrAlreadyRegistered     = errors.New("account is already registered")
	ErrNotRegistered         = errors.New("account is not registered")
	ErrInvalidReferrer       = errors.New("invalid referrer address")
	ErrInsufficientBalance   = errors.New("insufficient token balance")
	ErrInsufficientAllowance = errors.New("insufficient token allowance")
	ErrMaxLevel              = errors.New("account is already at the highest level")
	ErrNothingToWithdraw     = errors.New("no earnings to withdraw")

	// ErrReverted wraps reverts no rule recognizes.
	ErrReverted = errors.New("contract call reverted")
)

// Rule maps revert-reason substrings to a typed error.
type Rule struct {
	Substrings []string
	Err        error
}

// Classify matches a revert reason against an ordered rule list; the first
// rule with a matching substring wins. Unmatched reasons are wrapped in
// ErrReverted with the raw reason preserved.
func Classify(reason string, rules []Rule) error {
	lower := strings.ToLower(reason)
	for _, rule := range rules {
		for _, sub := range rule.Substrings {
			if strings.Contains(lower, sub) {
				return rule.Err
			}
		}
	}
	return fmt.Errorf("%w: %s", ErrReverted, reason)
}

// Rule order matters: the more specific reasons come first so a generic
// substring cannot shadow them.
var registerRules = []Rule{
	{Substrings: []string{"already registered", "user exists"}, Err: ErrAlreadyRegistered},
	{Substrings: []string{"invalid referrer", "referrer not registered", "referrer does not exist"}, Err: ErrInvalidReferrer},
	{Substrings: []string{"exceeds allowance", "insufficient allowance"}, Err: ErrInsufficientAllowance},
	{Substrings: []string{"exceeds balance", "insufficient balance"}, Err: ErrInsufficientBalance},
}

var upgradeRules = []Rule{
	{Substrings: []string{"not registered", "register first", "user does not exist"}, Err: ErrNotRegistered},
	{Substrings: []string{"max level", "highest level"}, Err: ErrMaxLevel},
	{Substrings: []string{"exceeds allowance", "insufficient allowance"}, Err: ErrInsufficientAllowance},
	{Substrings: []string{"exceeds balance", "insufficient balance"}, Err: ErrInsufficientBalance},
}

var withdrawRules = []Rule{
	{Substrings: []string{"not registered", "user does not exist"}, Err: ErrNotRegistered},
	{Substrings: []string{"no earnings", "nothing to withdraw", "zero balance"}, Err: ErrNothingToWithdraw},
}
