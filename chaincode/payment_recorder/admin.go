package recorder

import "errors"

// adminGate guards owner-only operations and the pause flag
type adminGate struct {
	tx *txn
}

func (a adminGate) key() string {
	return stateKey(colContract, "state")
}

func (a adminGate) state() (ContractState, error) {
	var st ContractState
	found, err := a.tx.getJSON(a.key(), &st)
	if err != nil {
		return ContractState{}, err
	}
	if !found {
		return ContractState{}, ErrNotInitialized
	}
	return st, nil
}

func (a adminGate) save(st ContractState) error {
	return a.tx.putJSON(a.key(), st)
}

func (a adminGate) initialize(owner string) error {
	_, err := a.state()
	if err == nil {
		return ErrAlreadyInitialized
	}
	if !errors.Is(err, ErrNotInitialized) {
		return err
	}
	return a.save(ContractState{Owner: owner})
}

// requireOwner fails with ErrUnauthorized unless caller owns the contract
func (a adminGate) requireOwner(caller string) (ContractState, error) {
	st, err := a.state()
	if err != nil {
		return ContractState{}, err
	}
	if st.Owner != caller {
		return ContractState{}, ErrUnauthorized
	}
	return st, nil
}

func (a adminGate) isOwner(caller string) (bool, error) {
	st, err := a.state()
	if err != nil {
		return false, err
	}
	return st.Owner == caller, nil
}

func (a adminGate) requireActive() error {
	st, err := a.state()
	if err != nil {
		return err
	}
	if st.Paused {
		return ErrContractPaused
	}
	return nil
}

func (a adminGate) setPaused(caller string, paused bool) error {
	st, err := a.requireOwner(caller)
	if err != nil {
		return err
	}
	st.Paused = paused
	return a.save(st)
}

func (a adminGate) transferOwnership(caller, newOwner string) error {
	st, err := a.requireOwner(caller)
	if err != nil {
		return err
	}
	st.Owner = newOwner
	return a.save(st)
}
