package twin

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
)

const twinProject = "twin-project"

// ServiceAccount is a key pair the twin trusts, plus everything needed to
// render a credentials file for it.
type ServiceAccount struct {
	Email      string
	KeyID      string
	PrivateKey *rsa.PrivateKey
	TokenURL   string
}

// NewServiceAccount generates an RSA key, registers its public half, and
// returns an account whose credentials point at tokenURL (normally the
// twin's base URL + "/token").
func (s *Server) NewServiceAccount(name, tokenURL string) (*ServiceAccount, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("twin: generating service account key: %w", err)
	}

	if name == "" {
		name = "bc-agent"
	}

	sa := &ServiceAccount{
		Email:      fmt.Sprintf("%s@%s.iam.gserviceaccount.com", name, twinProject),
		KeyID:      strings.ReplaceAll(uuid.NewString(), "-", ""),
		PrivateKey: key,
		TokenURL:   tokenURL,
	}

	s.RegisterServiceAccount(sa.Email, sa.KeyID, &key.PublicKey)

	return sa, nil
}

// CredentialsJSON renders the account in Google's service-account key file
// format.
func (sa *ServiceAccount) CredentialsJSON() ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(sa.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("twin: encoding private key: %w", err)
	}

	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})

	data, err := json.MarshalIndent(map[string]string{
		"type":           "service_account",
		"project_id":     twinProject,
		"private_key_id": sa.KeyID,
		"private_key":    string(keyPEM),
		"client_email":   sa.Email,
		"client_id":      "100000000000000000000",
		"auth_uri":       "https://accounts.google.com/o/oauth2/auth",
		"token_uri":      sa.TokenURL,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("twin: encoding credentials: %w", err)
	}

	return data, nil
}

// WriteCredentials writes CredentialsJSON to path with owner-only permissions.
func (sa *ServiceAccount) WriteCredentials(path string) error {
	data, err := sa.CredentialsJSON()
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("twin: writing credentials: %w", err)
	}

	return nil
}
