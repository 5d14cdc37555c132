package entity

// ContactType indica por quais canais o lead pode receber entregas.
type ContactType string

const (
	ContactEmail ContactType = "email"
	ContactPhone ContactType = "phone"
	ContactBoth  ContactType = "both"
)

// ResolveContactType classifica o contato pelos campos presentes.
// Sem email nem telefone devolve email; quem chama já validou o contato.
func ResolveContactType(email, phone *string) ContactType {
	hasEmail := email != nil && *email != ""
	hasPhone := phone != nil && *phone != ""

	switch {
	case hasEmail && hasPhone:
		return ContactBoth
	case hasPhone:
		return ContactPhone
	default:
		return ContactEmail
	}
}

func (c ContactType) IncludesEmail() bool {
	return c == ContactEmail || c == ContactBoth
}

func (c ContactType) IncludesPhone() bool {
	return c == ContactPhone || c == ContactBoth
}
