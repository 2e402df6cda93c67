package recorder

import "unicode/utf8"

const maxContactName = 64

// contactRegistry keeps each account's contacts as one insertion-ordered list
type contactRegistry struct {
	tx *txn
}

func (c contactRegistry) key(account string) string {
	return stateKey(colContacts, accountKey(account))
}

func (c contactRegistry) list(account string) ([]Contact, error) {
	contacts := []Contact{}
	if _, err := c.tx.getJSON(c.key(account), &contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

func (c contactRegistry) add(account, name, address string) error {
	if name == "" || utf8.RuneCountInString(name) > maxContactName || address == "" {
		return ErrInvalidContact
	}
	contacts, err := c.list(account)
	if err != nil {
		return err
	}
	for _, existing := range contacts {
		if existing.Name == name {
			return ErrContactAlreadyExists
		}
	}
	contacts = append(contacts, Contact{Name: name, Address: address})
	return c.tx.putJSON(c.key(account), contacts)
}

func (c contactRegistry) remove(account, name string) error {
	contacts, err := c.list(account)
	if err != nil {
		return err
	}
	for i, existing := range contacts {
		if existing.Name != name {
			continue
		}
		contacts = append(contacts[:i], contacts[i+1:]...)
		if len(contacts) == 0 {
			c.tx.del(c.key(account))
			return nil
		}
		return c.tx.putJSON(c.key(account), contacts)
	}
	return ErrContactNotFound
}

// countPayment bumps paymentCount on every contact whose address is recipient
func (c contactRegistry) countPayment(account, recipient string) error {
	contacts, err := c.list(account)
	if err != nil {
		return err
	}
	touched := false
	for i := range contacts {
		if contacts[i].Address == recipient {
			contacts[i].PaymentCount++
			touched = true
		}
	}
	if !touched {
		return nil
	}
	return c.tx.putJSON(c.key(account), contacts)
}

func (c contactRegistry) erase(account string) {
	c.tx.del(c.key(account))
}
