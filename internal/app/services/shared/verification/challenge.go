package verification

import (
	"context"
	"smartmarkers-service/internal/app/contracts"
	"smartmarkers-service/internal/app/services/shared/jwtmanager"
	"smartmarkers-service/internal/pkg/utils"
)

type passcodeChallenge struct {
	hash    string
	attempt string
}

// NewPasscodeChallenge passes when attempt matches the bcrypt hash stored
// for the session.
func NewPasscodeChallenge(hash, attempt string) contracts.VerificationChallenge {
	return &passcodeChallenge{hash: hash, attempt: attempt}
}

func (c *passcodeChallenge) VerifyUser(ctx context.Context, prompt string) (bool, error) {
	if c.hash == "" || c.attempt == "" {
		return false, nil
	}
	return utils.CheckPasswordHash(c.attempt, c.hash), nil
}

// TokenVerifier is satisfied by *jwtmanager.JWTManager.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, in *jwtmanager.VerifyTokenInput) (*jwtmanager.VerifyTokenOutput, error)
}

type tokenChallenge struct {
	verifier  TokenVerifier
	sessionID string
	token     string
}

// NewTokenChallenge passes when token is a valid verification token issued
// for sessionID.
func NewTokenChallenge(verifier TokenVerifier, sessionID, token string) contracts.VerificationChallenge {
	return &tokenChallenge{verifier: verifier, sessionID: sessionID, token: token}
}

func (c *tokenChallenge) VerifyUser(ctx context.Context, prompt string) (bool, error) {
	if c.verifier == nil || c.token == "" {
		return false, nil
	}
	out, err := c.verifier.VerifyToken(ctx, &jwtmanager.VerifyTokenInput{Token: c.token})
	if err != nil {
		return false, err
	}
	subject, _ := out.Claims["sub"].(string)
	return out.Valid && subject == c.sessionID, nil
}

type anyChallenge []contracts.VerificationChallenge

// Any passes as soon as one of challenges passes. Errors from individual
// challenges are returned only when none passed.
func Any(challenges ...contracts.VerificationChallenge) contracts.VerificationChallenge {
	return anyChallenge(challenges)
}

func (a anyChallenge) VerifyUser(ctx context.Context, prompt string) (bool, error) {
	var firstErr error
	for _, challenge := range a {
		ok, err := challenge.VerifyUser(ctx, prompt)
		if ok {
			return true, nil
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return false, firstErr
}
