package bunq

import (
	"encoding/json"
	"fmt"
)

// The API wraps every response in a tagged list: a "Response" array whose
// entries are single-key objects keyed by type name, in an order the caller
// cannot rely on. This decoder isolates that quirk: callers ask for a typed
// entry and get either a decoded value or a descriptive error.

// envelope is the raw tagged-list response wrapper.
type envelope struct {
	Response []map[string]json.RawMessage `json:"Response"`
	Error    []apiErrorEntry              `json:"Error"`
}

type apiErrorEntry struct {
	Description string `json:"error_description"`
}

// idEntry is the numeric resource id entry ("Id").
type idEntry struct {
	ID int64 `json:"id"`
}

// tokenEntry is a token entry ("Token"): the installation or session token.
type tokenEntry struct {
	ID    int64  `json:"id"`
	Token string `json:"token"`
}

// userEntry is the relevant subset of a "UserPerson", "UserCompany" or
// "UserApiKey" entry.
type userEntry struct {
	ID int64 `json:"id"`
}

// requestInquiryEntry is the relevant subset of a "RequestInquiry" resource.
type requestInquiryEntry struct {
	ID             int64  `json:"id"`
	Status         string `json:"status"`
	BunqmeShareURL string `json:"bunqme_share_url"`
}

// decodeEnvelope parses a raw response body into the tagged-list wrapper.
func decodeEnvelope(body []byte) (*envelope, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode response envelope: %w", err)
	}
	return &env, nil
}

// entry finds the first tagged entry matching any of the given type names
// and decodes it into target. The names are tried in order against every
// list entry, so callers tolerate the API's positional quirks.
func (e *envelope) entry(target any, names ...string) error {
	for _, item := range e.Response {
		for _, name := range names {
			raw, ok := item[name]
			if !ok {
				continue
			}
			if err := json.Unmarshal(raw, target); err != nil {
				return fmt.Errorf("failed to decode %q entry: %w", name, err)
			}
			return nil
		}
	}
	return fmt.Errorf("response envelope has no %v entry", names)
}

func (e *envelope) token() (*tokenEntry, error) {
	var tok tokenEntry
	if err := e.entry(&tok, "Token"); err != nil {
		return nil, err
	}
	if tok.Token == "" {
		return nil, fmt.Errorf("response envelope contains an empty token")
	}
	return &tok, nil
}

func (e *envelope) id() (int64, error) {
	var id idEntry
	if err := e.entry(&id, "Id"); err != nil {
		return 0, err
	}
	return id.ID, nil
}

func (e *envelope) user() (*userEntry, error) {
	var u userEntry
	if err := e.entry(&u, "UserPerson", "UserCompany", "UserApiKey"); err != nil {
		return nil, err
	}
	return &u, nil
}

func (e *envelope) requestInquiry() (*requestInquiryEntry, error) {
	var ri requestInquiryEntry
	if err := e.entry(&ri, "RequestInquiry"); err != nil {
		return nil, err
	}
	return &ri, nil
}
