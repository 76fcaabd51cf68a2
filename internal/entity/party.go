package entity

// PartyKind tags which identity representation a Party carries.
type PartyKind int

const (
	PartyUnknown PartyKind = iota
	PartyIndividual
	PartyOrganization
)

func (k PartyKind) String() string {
	switch k {
	case PartyIndividual:
		return "Individual"
	case PartyOrganization:
		return "Organization"
	default:
		return "Unknown"
	}
}

// Party is a sender or receiver: either an individual/wallet holder or an
// organization/bank. Only the fields of its kind are meaningful.
type Party struct {
	Kind PartyKind
	// Name of an individual or wallet holder.
	Name string
	// BankName of an organization or bank account.
	BankName string
	// AccountHolder is the person behind an organization/bank account, when the
	// receipt exposes one. It is informational and not part of the wire shape.
	AccountHolder string
}

// Individual builds an individual party; an empty name yields an unknown party.
func Individual(name string) Party {
	if name == "" {
		return Party{}
	}
	return Party{Kind: PartyIndividual, Name: name}
}

// Organization builds an organization party; an empty bank name yields an unknown party.
func Organization(bankName, holder string) Party {
	if bankName == "" {
		return Party{}
	}
	return Party{Kind: PartyOrganization, BankName: bankName, AccountHolder: holder}
}

// Known reports whether the party carries any identity.
func (p Party) Known() bool { return p.Kind != PartyUnknown }

// Split returns (name, bankName); at most one is non-nil.
func (p Party) Split() (name, bankName *string) {
	switch p.Kind {
	case PartyIndividual:
		return StringPtr(p.Name), nil
	case PartyOrganization:
		return nil, StringPtr(p.BankName)
	default:
		return nil, nil
	}
}
