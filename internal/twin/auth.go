package twin

import (
	"crypto/rsa"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/businesscomms/bcctl/internal/bcapi"
)

const (
	jwtBearerGrant  = "urn:ietf:params:oauth:grant-type:jwt-bearer"
	accessTokenLife = 3600
)

// account is one trusted key. Several keys may share an email.
type account struct {
	email string
	key   *rsa.PublicKey
}

// RegisterServiceAccount trusts assertions issued by email and signed by key.
// keyID is the credentials file's private_key_id, which signers put in the
// JWT kid header.
func (s *Server) RegisterServiceAccount(email, keyID string, key *rsa.PublicKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts[keyID] = account{email: email, key: key}
}

// RevokeTokens forgets every issued access token. Callers holding one get
// 401 from then on.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.tokens)
}

// verificationKey picks the key for an assertion from iss. With a kid
// header it is that exact key, which must belong to iss. Without one, every
// key registered for iss is tried.
func (s *Server) verificationKey(t *jwt.Token) (any, error) {
	iss, err := t.Claims.GetIssuer()
	if err != nil || iss == "" {
		return nil, fmt.Errorf("assertion has no issuer")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if kid, _ := t.Header["kid"].(string); kid != "" {
		acct, ok := s.accounts[kid]
		if !ok || acct.email != iss {
			return nil, fmt.Errorf("unknown key %q for service account %q", kid, iss)
		}

		return acct.key, nil
	}

	var set jwt.VerificationKeySet
	for _, acct := range s.accounts {
		if acct.email == iss {
			set.Keys = append(set.Keys, acct.key)
		}
	}

	if len(set.Keys) == 0 {
		return nil, fmt.Errorf("unknown service account %q", iss)
	}

	return set, nil
}

// handleToken implements the JWT-bearer grant. The assertion must be an
// RS256 JWT whose iss is a registered account, signed by one of its keys,
// unexpired, and asking for the Business Communications scope.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request", "unparseable form body")
		return
	}

	if gt := r.PostForm.Get("grant_type"); gt != jwtBearerGrant {
		writeOAuthError(w, http.StatusBadRequest, "unsupported_grant_type", fmt.Sprintf("grant_type %q is not supported", gt))
		return
	}

	assertion := r.PostForm.Get("assertion")
	if assertion == "" {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request", "missing assertion")
		return
	}

	email, err := s.verifyAssertion(assertion)
	if err != nil {
		s.logger.Info("twin rejected assertion", slog.String("error", err.Error()))
		writeOAuthError(w, http.StatusBadRequest, "invalid_grant", err.Error())

		return
	}

	token := "twin-" + uuid.NewString()

	s.mu.Lock()
	s.tokens[token] = email
	s.mu.Unlock()

	s.tokenGrants.Add(1)
	s.logger.Debug("twin issued access token", slog.String("client_email", email))

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   accessTokenLife,
	})
}

func (s *Server) verifyAssertion(assertion string) (string, error) {
	claims := jwt.MapClaims{}

	_, err := jwt.ParseWithClaims(assertion, claims, s.verificationKey,
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("invalid assertion: %w", err)
	}

	scope, _ := claims["scope"].(string)
	if !slices.Contains(strings.Fields(scope), bcapi.Scope) {
		return "", fmt.Errorf("assertion scope %q does not grant %s", scope, bcapi.Scope)
	}

	iss, _ := claims.GetIssuer()

	return iss, nil
}

// requireBearer rejects requests without a token this server issued.
func (s *Server) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "request is missing a bearer token")
			return
		}

		s.mu.Lock()
		_, known := s.tokens[token]
		s.mu.Unlock()

		if !known {
			writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "request had invalid authentication credentials")
			return
		}

		next.ServeHTTP(w, r)
	})
}
