package entity

// Principal is the authenticated caller extracted from a bearer token.
type Principal struct {
	Subject string
	Email   string
	Role    string
}
