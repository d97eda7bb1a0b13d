package services

import "errors"

// Redemption reports the first violated invariant in a fixed order, so each
// condition gets its own sentinel; handlers map them to HTTP statuses with
// errors.Is.
var (
	ErrCodeNotFound            = errors.New("invalid referral code")
	ErrSelfRedemption          = errors.New("you cannot use your own referral code")
	ErrCodeAlreadyUsed         = errors.New("referral code already used")
	ErrUserAlreadyRedeemed     = errors.New("you have already used a referral")
	ErrRewardConfigMissing     = errors.New("reward config missing")
	ErrCodeGenerationExhausted = errors.New("could not generate unique referral code")

	ErrRewardNotFound    = errors.New("reward not found")
	ErrInvalidTransition = errors.New("only pending rewards can be updated")

	ErrMissingConfigFields = errors.New("missing required fields")
)
