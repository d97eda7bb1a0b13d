package jobs

import (
	"errors"
	"log"

	"github.com/savvahub/referral-api/services"
)

// ReconcileRewards closes the window where a referral was consumed but the
// grant never landed (crash mid-redemption, or no active reward config at
// the time). The grant is idempotent, so re-running it here is safe.
func ReconcileRewards(referrals *services.ReferralService) {
	log.Println("Running job: ReconcileRewards...")

	granted, err := referrals.ReconcileRewards()
	if err != nil {
		if errors.Is(err, services.ErrRewardConfigMissing) {
			log.Println("ReconcileRewards: no active signup reward config, will retry next run")
			return
		}
		log.Printf("Error reconciling rewards: %v", err)
		return
	}

	if granted > 0 {
		log.Printf("ReconcileRewards: granted %d missing reward(s)", granted)
	}
}
