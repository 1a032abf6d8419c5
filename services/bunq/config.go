package bunq

import "fmt"

// Config carries the five gateway secrets. It is built once at startup from
// the application configuration and injected into the client constructor, so
// the client never reads the environment itself.
type Config struct {
	APIKey          string
	ClientPublicKey string
	PrivateKey      string
	AccountID       string
	BaseURL         string

	// RedirectURL is where the payer lands after completing a payment
	// request. Optional.
	RedirectURL string
}

// Validate reports the first missing required secret. It runs before any
// network call is made.
func (c Config) Validate() error {
	switch {
	case c.APIKey == "":
		return fmt.Errorf("bunq config: missing API key")
	case c.ClientPublicKey == "":
		return fmt.Errorf("bunq config: missing client public key")
	case c.PrivateKey == "":
		return fmt.Errorf("bunq config: missing private signing key")
	case c.AccountID == "":
		return fmt.Errorf("bunq config: missing monetary account id")
	case c.BaseURL == "":
		return fmt.Errorf("bunq config: missing API base URL")
	}
	return nil
}
