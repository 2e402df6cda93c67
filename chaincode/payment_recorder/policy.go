package recorder

// ValidateConfig checks a policy before it is stored
func ValidateConfig(cfg SecurityConfig) error {
	if cfg.RateLimitPerHour == 0 {
		return ErrInvalidConfig
	}
	if _, err := ParseAmount(cfg.MaxAmountWithoutMfa); err != nil {
		return ErrInvalidConfig
	}
	if cfg.ReplayPreventionWindow < 0 {
		return ErrInvalidConfig
	}
	return nil
}

// policyStore holds the global config and per-account overrides
type policyStore struct {
	tx *txn
}

func (p policyStore) global() (SecurityConfig, error) {
	var cfg SecurityConfig
	found, err := p.tx.getJSON(stateKey(colConfig, "global"), &cfg)
	if err != nil {
		return SecurityConfig{}, err
	}
	if !found {
		return DefaultSecurityConfig(), nil
	}
	return cfg, nil
}

// resolve returns the account's override, else the global config
func (p policyStore) resolve(account string) (SecurityConfig, error) {
	var cfg SecurityConfig
	found, err := p.tx.getJSON(stateKey(colConfig, "account", accountKey(account)), &cfg)
	if err != nil {
		return SecurityConfig{}, err
	}
	if found {
		return cfg, nil
	}
	return p.global()
}

func (p policyStore) setOverride(account string, cfg SecurityConfig) error {
	return p.tx.putJSON(stateKey(colConfig, "account", accountKey(account)), cfg)
}

func (p policyStore) setGlobal(cfg SecurityConfig) error {
	return p.tx.putJSON(stateKey(colConfig, "global"), cfg)
}
