package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dealspot/dealspot/models"
	"github.com/dealspot/dealspot/rewards"
)

// RewardsService is the gorm-backed rewards.Engine. Every mutation runs in a
// single transaction that locks the user row, so concurrent requests racing
// on an eligibility boundary serialize at the database and at most one
// succeeds per window.
type RewardsService struct {
	db    *gorm.DB
	rules rewards.Rules

	// now and intn are swappable for tests.
	now  func() time.Time
	intn func(n int) int
}

var _ rewards.Engine = (*RewardsService)(nil)

// NewRewardsService creates the service with the given rules.
func NewRewardsService(db *gorm.DB, rules rewards.Rules) *RewardsService {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &RewardsService{db: db, rules: rules, now: time.Now, intn: rng.Intn}
}

// lockedUser loads the user row FOR UPDATE inside tx.
func lockedUser(tx *gorm.DB, userID uint) (*models.User, error) {
	var user models.User
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, rewards.ErrNotFound
		}
		return nil, &rewards.StorageError{Op: "load user", Err: err}
	}
	return &user, nil
}

// appendEntry inserts one ledger row and moves the cached balance by the same
// delta. Both writes belong to the caller's transaction.
func appendEntry(tx *gorm.DB, user *models.User, points int, action, description string) error {
	entry := models.PointsLog{
		UserID:      user.ID,
		Points:      points,
		Action:      action,
		Description: description,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return &rewards.StorageError{Op: "append ledger entry", Err: err}
	}
	user.Points += points
	return nil
}

// CheckIn performs the daily check-in. Ineligible calls commit nothing and
// return a success:false result with the next eligible time.
func (s *RewardsService) CheckIn(ctx context.Context, userID uint) (rewards.CheckInResult, error) {
	var result rewards.CheckInResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := lockedUser(tx, userID)
		if err != nil {
			return err
		}

		now := s.now()
		ok, next := s.rules.NextEligible(user.LastCheckIn, now)
		if !ok {
			result = rewards.CheckInResult{
				Success:     false,
				Streak:      user.CurrentStreak,
				NextCheckIn: next,
				Message:     "already checked in, come back later",
			}
			return nil
		}

		streak := s.rules.NextStreak(user.LastCheckIn, user.CurrentStreak, now)
		day := rewards.StreakDay(streak)
		points, action := s.rules.CheckInReward(day)

		record := models.CheckIn{
			UserID:       userID,
			CheckedInAt:  now,
			StreakDay:    day,
			PointsEarned: points,
		}
		if err := tx.Create(&record).Error; err != nil {
			return &rewards.StorageError{Op: "create check-in", Err: err}
		}

		if err := appendEntry(tx, user, points, action, fmt.Sprintf("daily check-in day %d", day)); err != nil {
			return err
		}

		user.CurrentStreak = streak
		user.LastCheckIn = &record.CheckedInAt
		if err := tx.Save(user).Error; err != nil {
			return &rewards.StorageError{Op: "update user", Err: err}
		}

		result = rewards.CheckInResult{
			Success:     true,
			Points:      points,
			Streak:      streak,
			StreakDay:   day,
			NextCheckIn: now.Add(s.rules.Cooldown),
			Message:     "check-in successful",
		}
		return nil
	})
	if err != nil {
		return rewards.CheckInResult{}, err
	}
	return result, nil
}

// StreakInfo is a pure read of the user's check-in state.
func (s *RewardsService) StreakInfo(ctx context.Context, userID uint) (rewards.StreakInfo, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return rewards.StreakInfo{}, err
	}
	ok, next := s.rules.NextEligible(user.LastCheckIn, s.now())
	return rewards.StreakInfo{
		CurrentStreak: user.CurrentStreak,
		LastCheckIn:   user.LastCheckIn,
		CanCheckIn:    ok,
		NextCheckIn:   next,
	}, nil
}

// Spin performs a wheel spin with a server-side uniform reward.
func (s *RewardsService) Spin(ctx context.Context, userID uint) (rewards.SpinResult, error) {
	var result rewards.SpinResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := lockedUser(tx, userID)
		if err != nil {
			return err
		}

		now := s.now()
		ok, next := s.rules.NextEligible(user.LastSpin, now)
		if !ok {
			result = rewards.SpinResult{
				Success:  false,
				NextSpin: next,
				Message:  "already spun, come back later",
			}
			return nil
		}

		points := s.rules.SpinReward(s.intn)
		if err := appendEntry(tx, user, points, models.ActionSpinWheel, fmt.Sprintf("wheel spin won %d points", points)); err != nil {
			return err
		}

		spun := now
		user.LastSpin = &spun
		if err := tx.Save(user).Error; err != nil {
			return &rewards.StorageError{Op: "update user", Err: err}
		}

		result = rewards.SpinResult{
			Success:  true,
			Points:   points,
			NextSpin: now.Add(s.rules.Cooldown),
			Message:  "spin successful",
		}
		return nil
	})
	if err != nil {
		return rewards.SpinResult{}, err
	}
	return result, nil
}

// SpinStatus is a pure read of the user's spin eligibility.
func (s *RewardsService) SpinStatus(ctx context.Context, userID uint) (rewards.SpinStatus, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return rewards.SpinStatus{}, err
	}
	ok, next := s.rules.NextEligible(user.LastSpin, s.now())
	return rewards.SpinStatus{CanSpin: ok, LastSpin: user.LastSpin, NextSpin: next}, nil
}

// Balance returns the cached points balance. The ledger is never re-summed
// on the read path; writers keep the cache consistent.
func (s *RewardsService) Balance(ctx context.Context, userID uint) (int, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	return user.Points, nil
}

// History returns the user's ledger entries, newest first.
func (s *RewardsService) History(ctx context.Context, userID uint, page, pageSize int) ([]models.PointsLog, int64, error) {
	if _, err := s.loadUser(ctx, userID); err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	var total int64
	q := s.db.WithContext(ctx).Model(&models.PointsLog{}).Where("user_id = ?", userID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, &rewards.StorageError{Op: "count ledger entries", Err: err}
	}

	var entries []models.PointsLog
	if err := q.Order("id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&entries).Error; err != nil {
		return nil, 0, &rewards.StorageError{Op: "list ledger entries", Err: err}
	}
	return entries, total, nil
}

// RequestWithdrawal creates a pending request and debits the points in the
// same transaction.
func (s *RewardsService) RequestWithdrawal(ctx context.Context, userID uint, amount int, method string) (*models.WithdrawalRequest, error) {
	var req models.WithdrawalRequest

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := lockedUser(tx, userID)
		if err != nil {
			return err
		}

		if amount <= 0 || amount > user.Points {
			return rewards.ErrInsufficientBalance
		}

		req = models.WithdrawalRequest{
			Reference:   uuid.NewString(),
			UserID:      userID,
			Amount:      amount,
			Method:      method,
			Status:      models.WithdrawalStatusPending,
			RequestedAt: s.now(),
		}
		if err := tx.Create(&req).Error; err != nil {
			return &rewards.StorageError{Op: "create withdrawal request", Err: err}
		}

		if err := appendEntry(tx, user, -amount, models.ActionWithdrawalRequest,
			fmt.Sprintf("withdrawal request %s for %d points", req.Reference, amount)); err != nil {
			return err
		}
		if err := tx.Save(user).Error; err != nil {
			return &rewards.StorageError{Op: "update user", Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// ResolveWithdrawal moves a pending request into a terminal state. Rejection
// refunds the amount; the refund fires at most once because terminal
// requests cannot transition again.
func (s *RewardsService) ResolveWithdrawal(ctx context.Context, requestID uint, status models.WithdrawalStatus, notes string) (*models.WithdrawalRequest, error) {
	if status != models.WithdrawalStatusApproved && status != models.WithdrawalStatusRejected {
		return nil, rewards.ErrInvalidStatus
	}

	var req models.WithdrawalRequest

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&req, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return rewards.ErrNotFound
			}
			return &rewards.StorageError{Op: "load withdrawal request", Err: err}
		}

		user, err := lockedUser(tx, req.UserID)
		if err != nil {
			return err
		}

		if req.Status.Terminal() {
			return rewards.ErrAlreadyProcessed
		}

		prev := req.Status
		now := s.now()
		req.Status = status
		req.ProcessedAt = &now
		req.Notes = notes
		if err := tx.Save(&req).Error; err != nil {
			return &rewards.StorageError{Op: "update withdrawal request", Err: err}
		}

		if status == models.WithdrawalStatusRejected && prev != models.WithdrawalStatusRejected {
			if err := appendEntry(tx, user, req.Amount, models.ActionWithdrawalRejected,
				fmt.Sprintf("withdrawal request %s rejected, points refunded", req.Reference)); err != nil {
				return err
			}
			if err := tx.Save(user).Error; err != nil {
				return &rewards.StorageError{Op: "update user", Err: err}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *RewardsService) loadUser(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, rewards.ErrNotFound
		}
		return nil, &rewards.StorageError{Op: "load user", Err: err}
	}
	return &user, nil
}

// ListWithdrawals returns withdrawal requests, optionally filtered by user
// and status, newest first. Used by the user history and admin moderation
// endpoints.
func (s *RewardsService) ListWithdrawals(ctx context.Context, userID uint, status models.WithdrawalStatus, page, pageSize int) ([]models.WithdrawalRequest, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	q := s.db.WithContext(ctx).Model(&models.WithdrawalRequest{})
	if userID != 0 {
		q = q.Where("user_id = ?", userID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, &rewards.StorageError{Op: "count withdrawal requests", Err: err}
	}

	var items []models.WithdrawalRequest
	if err := q.Order("id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&items).Error; err != nil {
		return nil, 0, &rewards.StorageError{Op: "list withdrawal requests", Err: err}
	}
	return items, total, nil
}
