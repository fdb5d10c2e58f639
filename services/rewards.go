package services

import "context"

// ClaimRewards drains the user's unclaimed reward queue and credits the sum
// to their XP balance in one transaction. Returns the total XP credited.
func (s *CheckInService) ClaimRewards(ctx context.Context, userID uint) (int, error) {
	total := 0
	err := s.store.Atomically(ctx, func(tx Store) error {
		user, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		rewards, err := tx.ListRewards(ctx, userID)
		if err != nil {
			return err
		}
		if len(rewards) == 0 {
			return nil
		}
		for _, r := range rewards {
			total += r.XP
		}
		user.XP += total
		if err := tx.DeleteRewards(ctx, userID); err != nil {
			return err
		}
		return tx.SaveUser(ctx, user)
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}
