package novacast

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// permissionTokenLeeway is the clock-skew allowance applied when verifying
// the expiration of a decoded token.
const permissionTokenLeeway = 30 * time.Second

// permissionTokenAlg is the only accepted signing algorithm.
const permissionTokenAlg = "HS256"

// Sentinel errors returned when decoding or encoding a PermissionToken.
var (
	// ErrInvalidToken is returned for tokens that are expired, not yet
	// active, tampered with or otherwise undecodable.
	ErrInvalidToken = errors.New("invalid permission token")

	// ErrInvalidTarget is returned when the token's issuer, audience or
	// subject does not match the expected value.
	ErrInvalidTarget = errors.New("permission token target mismatch")

	// ErrSecretRequired is returned by Encode when no secret is provided.
	ErrSecretRequired = errors.New("secret key is not set")
)

// Permission is a set of actions granted on one resource.
type Permission struct {
	Resource string
	Actions  []string
}

// ExpectedClaims lists the claim values DecodePermissionToken verifies.
// Zero-valued fields are not checked.
type ExpectedClaims struct {
	Issuer   string
	Audience string
	UserUID  string
}

// PermissionToken asserts the permissions granted to a user. It is signed
// with a shared secret and exchanged between services as a compact JWT.
//
// The permissions are carried in a "perms" claim: one array per granted
// resource, the resource name first and the granted actions after it.
type PermissionToken struct {
	// Issuer is the token issuer.
	Issuer string

	// Audience is the intended audience.
	Audience string

	// UserUID is the uid of the user account the token belongs to.
	UserUID string

	// Expiration is the token expiration time; the zero value means the
	// token does not expire.
	Expiration time.Time

	permissions []Permission
	claims      map[string]any
}

// NewPermissionToken creates a token for the given issuer, audience and user.
//
// Parameters:
//   - issuer: Token issuer
//   - audience: Intended audience
//   - userUID: UID of the user account
//
// Returns:
//   - *PermissionToken: Token with no permissions or extra claims yet
func NewPermissionToken(issuer, audience, userUID string) *PermissionToken {
	return &PermissionToken{
		Issuer:   issuer,
		Audience: audience,
		UserUID:  userUID,
		claims:   make(map[string]any),
	}
}

// SetTTL sets the expiration to now plus ttl.
func (t *PermissionToken) SetTTL(ttl time.Duration) {
	t.Expiration = time.Now().Add(ttl)
}

// AddPermissions grants actions on a resource.
//
// Parameters:
//   - resource: Resource name (must not be empty)
//   - actions: Actions granted on the resource (at least one)
//
// Returns:
//   - error: Validation error for an empty resource or action list
func (t *PermissionToken) AddPermissions(resource string, actions ...string) error {
	if resource == "" {
		return fmt.Errorf("invalid resource")
	}
	if len(actions) == 0 {
		return fmt.Errorf("invalid actions")
	}

	t.permissions = append(t.permissions, Permission{Resource: resource, Actions: actions})

	return nil
}

// AddClaims merges additional claims into the token payload. Reserved claim
// names (iss, aud, sub, exp, perms) are overwritten at encode time.
func (t *PermissionToken) AddClaims(claims map[string]any) {
	for name, value := range claims {
		t.claims[name] = value
	}
}

// Permissions returns the granted permissions in insertion order.
func (t *PermissionToken) Permissions() []Permission {
	return t.permissions
}

// Claims returns the additional (non-reserved) claims.
func (t *PermissionToken) Claims() map[string]any {
	return t.claims
}

// HasPermission reports whether the token grants action on resource.
func (t *PermissionToken) HasPermission(resource, action string) bool {
	for _, perm := range t.permissions {
		if perm.Resource != resource {
			continue
		}
		for _, granted := range perm.Actions {
			if granted == action {
				return true
			}
		}
	}

	return false
}

// Encode signs the token with the shared secret.
//
// Parameters:
//   - secret: Shared HMAC secret
//
// Returns:
//   - string: Compact JWT representation
//   - error: ErrSecretRequired, or the signing error
func (t *PermissionToken) Encode(secret string) (string, error) {
	if secret == "" {
		return "", ErrSecretRequired
	}

	perms := make([][]string, len(t.permissions))
	for i, perm := range t.permissions {
		perms[i] = append([]string{perm.Resource}, perm.Actions...)
	}

	payload := jwt.MapClaims{}
	for name, value := range t.claims {
		payload[name] = value
	}
	payload["iss"] = t.Issuer
	payload["aud"] = t.Audience
	payload["sub"] = t.UserUID
	payload["perms"] = perms
	if !t.Expiration.IsZero() {
		payload["exp"] = t.Expiration.Unix()
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, payload).SignedString([]byte(secret))
}

// DecodePermissionToken verifies and decodes a PermissionToken.
//
// Expiration is verified with a 30 second leeway. Issuer, audience and
// subject are verified only when the corresponding ExpectedClaims field is
// set.
//
// Parameters:
//   - token: Compact JWT to decode
//   - secret: Shared HMAC secret
//   - expected: Claim values that must match (zero values are not checked)
//
// Returns:
//   - *PermissionToken: Decoded token with its permissions and extra claims
//   - error: ErrInvalidToken or ErrInvalidTarget
func DecodePermissionToken(token, secret string, expected ExpectedClaims) (*PermissionToken, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{permissionTokenAlg}),
		jwt.WithLeeway(permissionTokenLeeway),
	}
	if expected.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(expected.Issuer))
	}
	if expected.Audience != "" {
		opts = append(opts, jwt.WithAudience(expected.Audience))
	}
	if expected.UserUID != "" {
		opts = append(opts, jwt.WithSubject(expected.UserUID))
	}

	payload := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, payload, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return nil, decodeError(err)
	}

	decoded := NewPermissionToken(stringClaim(payload, "iss"), stringClaim(payload, "aud"), stringClaim(payload, "sub"))
	if exp, ok := payload["exp"].(float64); ok {
		decoded.Expiration = time.Unix(int64(exp), 0)
	}

	if perms, ok := payload["perms"].([]any); ok {
		for _, raw := range perms {
			entry, ok := raw.([]any)
			if !ok || len(entry) < 2 {
				continue
			}

			resource, _ := entry[0].(string)
			actions := make([]string, 0, len(entry)-1)
			for _, action := range entry[1:] {
				if s, ok := action.(string); ok {
					actions = append(actions, s)
				}
			}

			if err := decoded.AddPermissions(resource, actions...); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
			}
		}
	}

	// Carry over the remaining, non-reserved claims.
	extra := make(map[string]any)
	for name, value := range payload {
		switch name {
		case "iss", "aud", "sub", "exp", "perms":
		default:
			extra[name] = value
		}
	}
	decoded.AddClaims(extra)

	return decoded, nil
}

func decodeError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired), errors.Is(err, jwt.ErrTokenNotValidYet):
		return fmt.Errorf("%w: token has expired or is not active", ErrInvalidToken)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer), errors.Is(err, jwt.ErrTokenInvalidAudience):
		return fmt.Errorf("%w: invalid issuer or audience", ErrInvalidTarget)
	case errors.Is(err, jwt.ErrTokenInvalidSubject):
		return fmt.Errorf("%w: token does not belong to the user", ErrInvalidTarget)
	default:
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
}

func stringClaim(payload jwt.MapClaims, name string) string {
	value, _ := payload[name].(string)
	return value
}
