package rewards

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dealspot/dealspot/models"
)

// MemoryEngine is an in-process Engine implementation. It keeps all state in
// maps guarded by a global mutex for lookups plus a per-user mutex for
// mutations, so concurrent check-ins or spins racing on the eligibility
// boundary serialize and at most one succeeds.
type MemoryEngine struct {
	rules Rules

	mu          sync.RWMutex
	users       map[uint]*models.User
	userLocks   map[uint]*sync.Mutex
	logs        []models.PointsLog
	checkIns    []models.CheckIn
	withdrawals map[uint]*models.WithdrawalRequest

	nextUserID       uint
	nextLogID        uint
	nextCheckInID    uint
	nextWithdrawalID uint

	// now and intn are swappable for tests.
	now  func() time.Time
	intn func(n int) int
}

var _ Engine = (*MemoryEngine)(nil)

// NewMemoryEngine creates an empty engine with the given rules.
func NewMemoryEngine(rules Rules) *MemoryEngine {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &MemoryEngine{
		rules:       rules,
		users:       map[uint]*models.User{},
		userLocks:   map[uint]*sync.Mutex{},
		withdrawals: map[uint]*models.WithdrawalRequest{},
		now:         time.Now,
		intn:        rng.Intn,
	}
}

// CreateUser registers a user and returns a copy of the stored record.
func (m *MemoryEngine) CreateUser(username string) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextUserID++
	u := &models.User{
		ID:        m.nextUserID,
		Username:  username,
		CreatedAt: m.now(),
	}
	m.users[u.ID] = u
	m.userLocks[u.ID] = &sync.Mutex{}
	return *u
}

func (m *MemoryEngine) lockUser(userID uint) (*sync.Mutex, *models.User, error) {
	m.mu.RLock()
	u, ok := m.users[userID]
	lock := m.userLocks[userID]
	m.mu.RUnlock()
	if !ok {
		return nil, nil, ErrNotFound
	}
	lock.Lock()
	return lock, u, nil
}

// appendEntryLocked inserts a ledger entry and updates the cached balance.
// Callers must hold the user's mutex.
func (m *MemoryEngine) appendEntryLocked(u *models.User, points int, action, description string) models.PointsLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextLogID++
	entry := models.PointsLog{
		ID:          m.nextLogID,
		UserID:      u.ID,
		Points:      points,
		Action:      action,
		Description: description,
		CreatedAt:   m.now(),
	}
	m.logs = append(m.logs, entry)
	u.Points += points
	return entry
}

// CheckIn attempts a daily check-in for the user.
func (m *MemoryEngine) CheckIn(ctx context.Context, userID uint) (CheckInResult, error) {
	lock, u, err := m.lockUser(userID)
	if err != nil {
		return CheckInResult{}, err
	}
	defer lock.Unlock()

	now := m.now()
	ok, next := m.rules.NextEligible(u.LastCheckIn, now)
	if !ok {
		return CheckInResult{
			Success:     false,
			Streak:      u.CurrentStreak,
			NextCheckIn: next,
			Message:     "already checked in, come back later",
		}, nil
	}

	streak := m.rules.NextStreak(u.LastCheckIn, u.CurrentStreak, now)
	day := StreakDay(streak)
	points, action := m.rules.CheckInReward(day)

	m.mu.Lock()
	m.nextCheckInID++
	m.checkIns = append(m.checkIns, models.CheckIn{
		ID:           m.nextCheckInID,
		UserID:       u.ID,
		CheckedInAt:  now,
		StreakDay:    day,
		PointsEarned: points,
	})
	m.mu.Unlock()

	m.appendEntryLocked(u, points, action, fmt.Sprintf("daily check-in day %d", day))
	checkedIn := now
	u.LastCheckIn = &checkedIn
	u.CurrentStreak = streak

	return CheckInResult{
		Success:     true,
		Points:      points,
		Streak:      streak,
		StreakDay:   day,
		NextCheckIn: now.Add(m.rules.Cooldown),
		Message:     "check-in successful",
	}, nil
}

// StreakInfo reports the user's streak and eligibility without side effects.
func (m *MemoryEngine) StreakInfo(ctx context.Context, userID uint) (StreakInfo, error) {
	lock, u, err := m.lockUser(userID)
	if err != nil {
		return StreakInfo{}, err
	}
	defer lock.Unlock()

	ok, next := m.rules.NextEligible(u.LastCheckIn, m.now())
	return StreakInfo{
		CurrentStreak: u.CurrentStreak,
		LastCheckIn:   u.LastCheckIn,
		CanCheckIn:    ok,
		NextCheckIn:   next,
	}, nil
}

// Spin attempts a wheel spin for the user.
func (m *MemoryEngine) Spin(ctx context.Context, userID uint) (SpinResult, error) {
	lock, u, err := m.lockUser(userID)
	if err != nil {
		return SpinResult{}, err
	}
	defer lock.Unlock()

	now := m.now()
	ok, next := m.rules.NextEligible(u.LastSpin, now)
	if !ok {
		return SpinResult{Success: false, NextSpin: next, Message: "already spun, come back later"}, nil
	}

	points := m.rules.SpinReward(m.intn)
	m.appendEntryLocked(u, points, models.ActionSpinWheel, fmt.Sprintf("wheel spin won %d points", points))
	spun := now
	u.LastSpin = &spun

	return SpinResult{
		Success:  true,
		Points:   points,
		NextSpin: now.Add(m.rules.Cooldown),
		Message:  "spin successful",
	}, nil
}

// SpinStatus reports spin eligibility without side effects.
func (m *MemoryEngine) SpinStatus(ctx context.Context, userID uint) (SpinStatus, error) {
	lock, u, err := m.lockUser(userID)
	if err != nil {
		return SpinStatus{}, err
	}
	defer lock.Unlock()

	ok, next := m.rules.NextEligible(u.LastSpin, m.now())
	return SpinStatus{CanSpin: ok, LastSpin: u.LastSpin, NextSpin: next}, nil
}

// Balance returns the cached points balance.
func (m *MemoryEngine) Balance(ctx context.Context, userID uint) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[userID]
	if !ok {
		return 0, ErrNotFound
	}
	return u.Points, nil
}

// History returns the user's ledger entries, newest first.
func (m *MemoryEngine) History(ctx context.Context, userID uint, page, pageSize int) ([]models.PointsLog, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.users[userID]; !ok {
		return nil, 0, ErrNotFound
	}

	var entries []models.PointsLog
	for _, e := range m.logs {
		if e.UserID == userID {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID > entries[j].ID })

	total := int64(len(entries))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	start := (page - 1) * pageSize
	if start >= len(entries) {
		return []models.PointsLog{}, total, nil
	}
	end := start + pageSize
	if end > len(entries) {
		end = len(entries)
	}
	return entries[start:end], total, nil
}

// RequestWithdrawal creates a pending request and debits the amount.
func (m *MemoryEngine) RequestWithdrawal(ctx context.Context, userID uint, amount int, method string) (*models.WithdrawalRequest, error) {
	lock, u, err := m.lockUser(userID)
	if err != nil {
		return nil, err
	}
	defer lock.Unlock()

	if amount <= 0 || amount > u.Points {
		return nil, ErrInsufficientBalance
	}

	now := m.now()
	m.mu.Lock()
	m.nextWithdrawalID++
	req := &models.WithdrawalRequest{
		ID:          m.nextWithdrawalID,
		Reference:   uuid.NewString(),
		UserID:      userID,
		Amount:      amount,
		Method:      method,
		Status:      models.WithdrawalStatusPending,
		RequestedAt: now,
		CreatedAt:   now,
	}
	m.withdrawals[req.ID] = req
	m.mu.Unlock()

	m.appendEntryLocked(u, -amount, models.ActionWithdrawalRequest,
		fmt.Sprintf("withdrawal request %s for %d points", req.Reference, amount))

	cp := *req
	return &cp, nil
}

// ResolveWithdrawal moves a pending request into a terminal state. Entering
// rejected refunds the amount; the refund fires at most once because only
// pending requests may transition.
func (m *MemoryEngine) ResolveWithdrawal(ctx context.Context, requestID uint, status models.WithdrawalStatus, notes string) (*models.WithdrawalRequest, error) {
	if status != models.WithdrawalStatusApproved && status != models.WithdrawalStatusRejected {
		return nil, ErrInvalidStatus
	}

	m.mu.RLock()
	req, ok := m.withdrawals[requestID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	lock, u, err := m.lockUser(req.UserID)
	if err != nil {
		return nil, err
	}
	defer lock.Unlock()

	if req.Status.Terminal() {
		return nil, ErrAlreadyProcessed
	}

	prev := req.Status
	now := m.now()
	req.Status = status
	req.ProcessedAt = &now
	req.Notes = notes

	if status == models.WithdrawalStatusRejected && prev != models.WithdrawalStatusRejected {
		m.appendEntryLocked(u, req.Amount, models.ActionWithdrawalRejected,
			fmt.Sprintf("withdrawal request %s rejected, points refunded", req.Reference))
	}

	cp := *req
	return &cp, nil
}

// LedgerSum recomputes a user's balance from the log. Used to verify the
// cached balance invariant.
func (m *MemoryEngine) LedgerSum(userID uint) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sum := 0
	for _, e := range m.logs {
		if e.UserID == userID {
			sum += e.Points
		}
	}
	return sum
}
