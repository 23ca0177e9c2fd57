// Package credentials loads service-account key files and turns them into
// authorized Business Communications API handles. The Manager performs the
// OAuth2 JWT-bearer handshake at most once per credentials file and caches
// the result for the life of the process.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// DefaultPath is where the sample scripts expect the key file, relative to
// the working directory.
const DefaultPath = "resources/bc-agent-service-account-credentials.json"

const serviceAccountType = "service_account"

// Credentials is a parsed service-account key file. It is not modified after
// Load returns.
type Credentials struct {
	Type         string `json:"type"`
	ProjectID    string `json:"project_id"`
	PrivateKeyID string `json:"private_key_id"`
	PrivateKey   string `json:"private_key"`
	ClientEmail  string `json:"client_email"`
	ClientID     string `json:"client_id"`
	TokenURI     string `json:"token_uri"`

	// Path is the file the record was read from.
	Path string `json:"-"`

	raw []byte
}

// JSON returns a copy of the file contents.
func (c *Credentials) JSON() []byte {
	out := make([]byte, len(c.raw))
	copy(out, c.raw)

	return out
}

// AuthenticationError reports that a client handle could not be built from a
// credentials file: the file is missing or malformed, or the token endpoint
// rejected the handshake.
type AuthenticationError struct {
	Path   string
	Reason string
	Err    error
}

func (e *AuthenticationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("credentials: %s: %s", e.Path, e.Reason)
	}

	return fmt.Sprintf("credentials: %s: %s: %v", e.Path, e.Reason, e.Err)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// IsAuthenticationError reports whether err is, or wraps, an
// *AuthenticationError.
func IsAuthenticationError(err error) bool {
	var aerr *AuthenticationError

	return errors.As(err, &aerr)
}

// Load reads and validates a service-account key file.
func Load(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &AuthenticationError{Path: path, Reason: "reading credentials file", Err: err}
	}

	var c Credentials
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, &AuthenticationError{Path: path, Reason: "parsing credentials file", Err: err}
	}

	switch {
	case c.Type != serviceAccountType:
		return nil, &AuthenticationError{Path: path, Reason: fmt.Sprintf("type is %q, want %q", c.Type, serviceAccountType)}
	case c.ClientEmail == "":
		return nil, &AuthenticationError{Path: path, Reason: "client_email is empty"}
	case c.PrivateKey == "":
		return nil, &AuthenticationError{Path: path, Reason: "private_key is empty"}
	}

	c.Path = path
	c.raw = data

	return &c, nil
}
