package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"

	"courseai/internal/config"

	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/idtoken"
)

// AdminCredentials is what an admin presents at login. Which fields are
// used depends on the verifier.
type AdminCredentials struct {
	Email    string
	Password string
	IDToken  string
}

// VerifiedAdmin identifies an admin whose credentials were accepted.
type VerifiedAdmin struct {
	Email string
	Name  string
}

// CredentialVerifier checks admin credentials. Callers do not know how.
type CredentialVerifier interface {
	Verify(ctx context.Context, creds AdminCredentials) (*VerifiedAdmin, error)
}

// NewCredentialVerifier returns the verifier selected by ADMIN_AUTH_MODE.
func NewCredentialVerifier(cfg *config.Config) (CredentialVerifier, error) {
	switch cfg.AdminAuthMode {
	case "static":
		return NewStaticCredentialVerifier(cfg.AdminEmail, cfg.AdminPasswordHash), nil
	case "google":
		return NewIdentityProviderVerifier(cfg.AdminGoogleAudience, cfg.AdminAllowedEmails), nil
	default:
		return nil, fmt.Errorf("unsupported admin auth mode %q", cfg.AdminAuthMode)
	}
}

// StaticCredentialVerifier accepts a single configured email and a
// password matching a bcrypt hash.
type StaticCredentialVerifier struct {
	email        string
	passwordHash []byte
}

func NewStaticCredentialVerifier(email, passwordHash string) *StaticCredentialVerifier {
	return &StaticCredentialVerifier{
		email:        normalizeEmail(email),
		passwordHash: []byte(passwordHash),
	}
}

func (v *StaticCredentialVerifier) Verify(_ context.Context, creds AdminCredentials) (*VerifiedAdmin, error) {
	emailOK := subtle.ConstantTimeCompare([]byte(normalizeEmail(creds.Email)), []byte(v.email)) == 1
	// Always run bcrypt so a wrong email costs the same as a wrong password.
	passwordErr := bcrypt.CompareHashAndPassword(v.passwordHash, []byte(creds.Password))
	if !emailOK || passwordErr != nil {
		return nil, ErrInvalidCredentials
	}
	return &VerifiedAdmin{Email: v.email, Name: "Administrator"}, nil
}

type idTokenValidator func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

// IdentityProviderVerifier accepts a Google ID token for audience whose
// verified email is on the allow-list.
type IdentityProviderVerifier struct {
	audience string
	allowed  map[string]struct{}
	validate idTokenValidator
}

func NewIdentityProviderVerifier(audience string, allowedEmails []string) *IdentityProviderVerifier {
	allowed := make(map[string]struct{}, len(allowedEmails))
	for _, e := range allowedEmails {
		if e = normalizeEmail(e); e != "" {
			allowed[e] = struct{}{}
		}
	}
	return &IdentityProviderVerifier{
		audience: audience,
		allowed:  allowed,
		validate: idtoken.Validate,
	}
}

func (v *IdentityProviderVerifier) Verify(ctx context.Context, creds AdminCredentials) (*VerifiedAdmin, error) {
	if creds.IDToken == "" {
		return nil, ErrInvalidCredentials
	}
	payload, err := v.validate(ctx, creds.IDToken, v.audience)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	email, _ := payload.Claims["email"].(string)
	verified, _ := payload.Claims["email_verified"].(bool)
	email = normalizeEmail(email)
	if email == "" || !verified {
		return nil, fmt.Errorf("%w: identity has no verified email", ErrInvalidCredentials)
	}
	if _, ok := v.allowed[email]; !ok {
		return nil, fmt.Errorf("%w: %s is not an administrator", ErrInvalidCredentials, email)
	}

	name, _ := payload.Claims["name"].(string)
	if name == "" {
		name = email
	}
	return &VerifiedAdmin{Email: email, Name: name}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
