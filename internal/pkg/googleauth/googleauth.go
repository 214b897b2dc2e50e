// Package googleauth verifies Google ID tokens for the sign-in flow.
package googleauth

import (
	"context"
	"fmt"

	"google.golang.org/api/idtoken"

	"github.com/buddyshare/buddyshare-api/internal/service"
)

type Verifier struct {
	clientID string
}

// New returns a verifier that accepts tokens issued for the given OAuth
// client id.
func New(clientID string) *Verifier {
	return &Verifier{
		clientID: clientID,
	}
}

// Verify validates the token's signature, expiry and audience against
// Google's published keys and maps the payload onto the claims the auth
// flow trusts.
func (v *Verifier) Verify(ctx context.Context, token string) (service.GoogleClaims, error) {
	payload, err := idtoken.Validate(ctx, token, v.clientID)
	if err != nil {
		return service.GoogleClaims{}, fmt.Errorf("%w: %v", service.ErrInvalidGoogleToken, err)
	}

	claims := service.GoogleClaims{Subject: payload.Subject}
	if email, ok := payload.Claims["email"].(string); ok {
		claims.Email = email
	}
	if name, ok := payload.Claims["name"].(string); ok {
		claims.Name = name
	}
	if picture, ok := payload.Claims["picture"].(string); ok {
		claims.Avatar = picture
	}

	return claims, nil
}
