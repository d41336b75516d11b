package exceptions

import "errors"

// Sentinel kinds, matched with errors.Is against any CustomError built from them.
var (
	ErrSessionMissingTask             = errors.New("sessionMissingTask")
	ErrSessionCreatedWithMissingTasks = errors.New("sessionCreatedWithMissingTasks")
	ErrSessionNotFound                = errors.New("sessionNotFound")
	ErrSessionDismissed               = errors.New("sessionDismissed")
	ErrTaskNotFound                   = errors.New("taskNotFound")
	ErrStepNotAnswerable              = errors.New("stepNotAnswerable")
	ErrDuplicateStepIdentifier        = errors.New("duplicateStepIdentifier")
	ErrMalformedInstrument            = errors.New("malformedInstrument")
	ErrConsentNotGiven                = errors.New("consentNotGiven")
	ErrSubmissionFailed               = errors.New("submissionFailed")
	ErrSubmissionLocked               = errors.New("submissionLocked")
	ErrVerificationFailed             = errors.New("verificationFailed")
	ErrUserNotPractitionerOrPatient   = errors.New("proserverUserNotPractitionerOrPatient")
	ErrProfileMissing                 = errors.New("profileMissing")
)
