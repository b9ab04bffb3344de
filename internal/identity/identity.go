// Package identity abstracts how the client learns which actor it writes
// as. Wallet connection and key management live outside this module; the
// sync engine only needs a stable identity string and a way to tell that no
// identity is active.
package identity

// Provider resolves the currently connected actor.
type Provider interface {
	// CurrentActor returns the active identity and true, or ("", false)
	// when no wallet is connected.
	CurrentActor() (string, bool)
}

// Static is a Provider fixed to a single wallet address. The zero value
// means "not connected".
type Static struct {
	Address string
}

// CurrentActor returns the configured address, if any.
func (s Static) CurrentActor() (string, bool) {
	if s.Address == "" {
		return "", false
	}
	return s.Address, true
}
