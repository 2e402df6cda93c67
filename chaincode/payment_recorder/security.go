package recorder

import "github.com/shopspring/decimal"

// Rank orders the security levels. Unknown levels rank below BASIC.
func (l SecurityLevel) Rank() int {
	switch l {
	case SecurityBasic:
		return 1
	case SecurityBiometric:
		return 2
	case SecurityMultiFactor:
		return 3
	default:
		return 0
	}
}

// Valid reports whether l is one of the defined levels
func (l SecurityLevel) Valid() bool {
	return l.Rank() > 0
}

// Satisfies reports whether l meets or exceeds required
func (l SecurityLevel) Satisfies(required SecurityLevel) bool {
	return l.Valid() && l.Rank() >= required.Rank()
}

// RequiredLevel is the minimum level the policy demands for amount
func RequiredLevel(cfg SecurityConfig, amount decimal.Decimal) (SecurityLevel, error) {
	required := SecurityBasic
	if cfg.RequireBiometric {
		required = SecurityBiometric
	}
	threshold, err := ParseAmount(cfg.MaxAmountWithoutMfa)
	if err != nil {
		return "", ErrInvalidConfig
	}
	if amount.Cmp(threshold) > 0 {
		required = SecurityMultiFactor
	}
	return required, nil
}

// Authorize is the security-level arbiter. It has no side effects and runs
// before any stateful admission check.
func Authorize(level SecurityLevel, amount decimal.Decimal, cfg SecurityConfig) error {
	if !level.Valid() {
		return ErrInvalidSecurityLevel
	}
	required, err := RequiredLevel(cfg, amount)
	if err != nil {
		return err
	}
	if !level.Satisfies(required) {
		return ErrInsufficientSecurity
	}
	return nil
}
