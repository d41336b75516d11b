package contracts

import "context"

// VerificationChallenge confirms the person holding the device is the
// session's user before the session can be left.
type VerificationChallenge interface {
	VerifyUser(ctx context.Context, prompt string) (bool, error)
}
