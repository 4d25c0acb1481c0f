package rewards

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dealspot/dealspot/models"
)

// testEngine returns an engine with a controllable clock starting at t0.
func testEngine() (*MemoryEngine, *time.Time) {
	m := NewMemoryEngine(DefaultRules())
	now := t0
	m.now = func() time.Time { return now }
	return m, &now
}

// assertBalanceInvariant checks the cached balance against the ledger sum.
func assertBalanceInvariant(t *testing.T, m *MemoryEngine, userID uint) {
	t.Helper()
	balance, err := m.Balance(context.Background(), userID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if sum := m.LedgerSum(userID); balance != sum {
		t.Fatalf("cached balance %d != ledger sum %d", balance, sum)
	}
}

func TestFirstCheckIn(t *testing.T) {
	m, _ := testEngine()
	u := m.CreateUser("alice")

	res, err := m.CheckIn(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("check-in: %v", err)
	}
	if !res.Success || res.Points != 5 || res.Streak != 1 || res.StreakDay != 1 {
		t.Fatalf("first check-in = %+v, want success 5 points streak 1", res)
	}

	balance, _ := m.Balance(context.Background(), u.ID)
	if balance != 5 {
		t.Fatalf("balance after first check-in = %d, want 5", balance)
	}
	assertBalanceInvariant(t, m, u.ID)
}

func TestCheckInTwiceWithin24h(t *testing.T) {
	m, now := testEngine()
	u := m.CreateUser("alice")

	first, _ := m.CheckIn(context.Background(), u.ID)
	if !first.Success {
		t.Fatal("first check-in should succeed")
	}

	*now = now.Add(2 * time.Hour)
	second, err := m.CheckIn(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("second check-in errored: %v", err)
	}
	if second.Success {
		t.Fatal("second check-in within 24h should not succeed")
	}
	if second.Points != 0 || second.Streak != 1 {
		t.Fatalf("ineligible check-in = %+v, want 0 points unchanged streak", second)
	}
	if want := t0.Add(24 * time.Hour); !second.NextCheckIn.Equal(want) {
		t.Fatalf("next check-in = %v, want %v", second.NextCheckIn, want)
	}

	balance, _ := m.Balance(context.Background(), u.ID)
	if balance != 5 {
		t.Fatalf("balance changed by ineligible check-in: %d", balance)
	}
	assertBalanceInvariant(t, m, u.ID)
}

func TestStreakContinuesAndResets(t *testing.T) {
	m, now := testEngine()
	u := m.CreateUser("alice")

	m.CheckIn(context.Background(), u.ID)

	*now = now.Add(30 * time.Hour)
	res, _ := m.CheckIn(context.Background(), u.ID)
	if res.Streak != 2 {
		t.Fatalf("streak after 30h gap = %d, want 2", res.Streak)
	}

	*now = now.Add(50 * time.Hour)
	res, _ = m.CheckIn(context.Background(), u.ID)
	if res.Streak != 1 {
		t.Fatalf("streak after 50h gap = %d, want 1", res.Streak)
	}
}

func TestSeventhDayBonus(t *testing.T) {
	m, now := testEngine()
	u := m.CreateUser("alice")

	total := 0
	for day := 1; day <= 21; day++ {
		res, err := m.CheckIn(context.Background(), u.ID)
		if err != nil {
			t.Fatalf("day %d: %v", day, err)
		}
		if !res.Success {
			t.Fatalf("day %d should be eligible", day)
		}
		want := 5
		if day%7 == 0 {
			want = 10
		}
		if res.Points != want {
			t.Fatalf("day %d points = %d, want %d", day, res.Points, want)
		}
		total += res.Points
		*now = now.Add(25 * time.Hour)
	}

	balance, _ := m.Balance(context.Background(), u.ID)
	if balance != total {
		t.Fatalf("balance = %d, want %d", balance, total)
	}
	assertBalanceInvariant(t, m, u.ID)
}

func TestStreakInfoHasNoSideEffects(t *testing.T) {
	m, _ := testEngine()
	u := m.CreateUser("alice")

	for i := 0; i < 3; i++ {
		info, err := m.StreakInfo(context.Background(), u.ID)
		if err != nil {
			t.Fatalf("streak info: %v", err)
		}
		if !info.CanCheckIn || info.CurrentStreak != 0 || info.LastCheckIn != nil {
			t.Fatalf("fresh user streak info = %+v", info)
		}
	}

	res, _ := m.CheckIn(context.Background(), u.ID)
	if !res.Success {
		t.Fatal("check-in after reads should succeed")
	}

	info, _ := m.StreakInfo(context.Background(), u.ID)
	if info.CanCheckIn || info.CurrentStreak != 1 {
		t.Fatalf("streak info after check-in = %+v", info)
	}
}

func TestSpinRewardsAndCooldown(t *testing.T) {
	m, now := testEngine()
	u := m.CreateUser("alice")

	seen := map[int]bool{}
	total := 0
	for i := 0; i < 10000; i++ {
		res, err := m.Spin(context.Background(), u.ID)
		if err != nil {
			t.Fatalf("spin %d: %v", i, err)
		}
		if !res.Success {
			t.Fatalf("spin %d should be eligible", i)
		}
		if res.Points < 1 || res.Points > 5 {
			t.Fatalf("spin reward %d outside [1,5]", res.Points)
		}
		seen[res.Points] = true
		total += res.Points
		*now = now.Add(24 * time.Hour)
	}
	for v := 1; v <= 5; v++ {
		if !seen[v] {
			t.Fatalf("spin value %d never occurred in 10000 spins", v)
		}
	}

	balance, _ := m.Balance(context.Background(), u.ID)
	if balance != total {
		t.Fatalf("balance = %d, want %d", balance, total)
	}
	assertBalanceInvariant(t, m, u.ID)

	// within window: no-op
	*now = now.Add(-time.Hour)
	res, _ := m.Spin(context.Background(), u.ID)
	if res.Success {
		t.Fatal("spin within 24h should not succeed")
	}
	if b, _ := m.Balance(context.Background(), u.ID); b != total {
		t.Fatalf("ineligible spin changed balance to %d", b)
	}
}

func TestSpinStatus(t *testing.T) {
	m, now := testEngine()
	u := m.CreateUser("alice")

	status, _ := m.SpinStatus(context.Background(), u.ID)
	if !status.CanSpin || status.LastSpin != nil {
		t.Fatalf("fresh spin status = %+v", status)
	}

	m.Spin(context.Background(), u.ID)
	status, _ = m.SpinStatus(context.Background(), u.ID)
	if status.CanSpin {
		t.Fatal("spin status should report cooldown")
	}
	if want := now.Add(24 * time.Hour); !status.NextSpin.Equal(want) {
		t.Fatalf("next spin = %v, want %v", status.NextSpin, want)
	}
}

func fundUser(t *testing.T, m *MemoryEngine, now *time.Time, userID uint, atLeast int) int {
	t.Helper()
	balance := 0
	for balance < atLeast {
		res, err := m.CheckIn(context.Background(), userID)
		if err != nil || !res.Success {
			t.Fatalf("funding check-in failed: %v %+v", err, res)
		}
		balance += res.Points
		*now = now.Add(25 * time.Hour)
	}
	return balance
}

func TestWithdrawalOverBalance(t *testing.T) {
	m, now := testEngine()
	u := m.CreateUser("alice")
	balance := fundUser(t, m, now, u.ID, 20)

	_, err := m.RequestWithdrawal(context.Background(), u.ID, balance+1, "paypal")
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("over-balance withdrawal error = %v, want ErrInsufficientBalance", err)
	}

	if b, _ := m.Balance(context.Background(), u.ID); b != balance {
		t.Fatalf("failed withdrawal changed balance to %d", b)
	}
	assertBalanceInvariant(t, m, u.ID)
}

func TestWithdrawalRejectRefundsOnce(t *testing.T) {
	m, now := testEngine()
	u := m.CreateUser("alice")
	balance := fundUser(t, m, now, u.ID, 20)

	req, err := m.RequestWithdrawal(context.Background(), u.ID, 20, "paypal")
	if err != nil {
		t.Fatalf("request withdrawal: %v", err)
	}
	if req.Status != models.WithdrawalStatusPending {
		t.Fatalf("new request status = %s, want pending", req.Status)
	}
	if b, _ := m.Balance(context.Background(), u.ID); b != balance-20 {
		t.Fatalf("balance after request = %d, want %d", b, balance-20)
	}

	rejected, err := m.ResolveWithdrawal(context.Background(), req.ID, models.WithdrawalStatusRejected, "invalid account")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != models.WithdrawalStatusRejected || rejected.ProcessedAt == nil {
		t.Fatalf("rejected request = %+v", rejected)
	}
	if b, _ := m.Balance(context.Background(), u.ID); b != balance {
		t.Fatalf("balance after rejection = %d, want %d", b, balance)
	}
	assertBalanceInvariant(t, m, u.ID)

	// second rejection must not refund again
	_, err = m.ResolveWithdrawal(context.Background(), req.ID, models.WithdrawalStatusRejected, "again")
	if !errors.Is(err, ErrAlreadyProcessed) {
		t.Fatalf("double reject error = %v, want ErrAlreadyProcessed", err)
	}
	if b, _ := m.Balance(context.Background(), u.ID); b != balance {
		t.Fatalf("double rejection changed balance to %d", b)
	}
	assertBalanceInvariant(t, m, u.ID)
}

func TestWithdrawalApproveKeepsDebit(t *testing.T) {
	m, now := testEngine()
	u := m.CreateUser("alice")
	balance := fundUser(t, m, now, u.ID, 20)

	req, _ := m.RequestWithdrawal(context.Background(), u.ID, 15, "bank")
	approved, err := m.ResolveWithdrawal(context.Background(), req.ID, models.WithdrawalStatusApproved, "")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != models.WithdrawalStatusApproved {
		t.Fatalf("approved request status = %s", approved.Status)
	}
	if b, _ := m.Balance(context.Background(), u.ID); b != balance-15 {
		t.Fatalf("balance after approval = %d, want %d", b, balance-15)
	}
	assertBalanceInvariant(t, m, u.ID)

	// approved is terminal; flipping to rejected afterwards must not refund
	_, err = m.ResolveWithdrawal(context.Background(), req.ID, models.WithdrawalStatusRejected, "oops")
	if !errors.Is(err, ErrAlreadyProcessed) {
		t.Fatalf("approve-then-reject error = %v, want ErrAlreadyProcessed", err)
	}
	if b, _ := m.Balance(context.Background(), u.ID); b != balance-15 {
		t.Fatalf("approve-then-reject changed balance to %d", b)
	}
}

func TestWithdrawalInvalidStatus(t *testing.T) {
	m, now := testEngine()
	u := m.CreateUser("alice")
	fundUser(t, m, now, u.ID, 10)

	req, _ := m.RequestWithdrawal(context.Background(), u.ID, 5, "paypal")
	if _, err := m.ResolveWithdrawal(context.Background(), req.ID, "pending", ""); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("setting status pending error = %v, want ErrInvalidStatus", err)
	}
}

func TestUnknownIDs(t *testing.T) {
	m, _ := testEngine()

	if _, err := m.CheckIn(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("check-in unknown user error = %v", err)
	}
	if _, err := m.Spin(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("spin unknown user error = %v", err)
	}
	if _, err := m.Balance(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("balance unknown user error = %v", err)
	}
	if _, err := m.RequestWithdrawal(context.Background(), 42, 1, "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("withdrawal unknown user error = %v", err)
	}
	if _, err := m.ResolveWithdrawal(context.Background(), 42, models.WithdrawalStatusApproved, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("resolve unknown request error = %v", err)
	}
}

func TestHistoryPagination(t *testing.T) {
	m, now := testEngine()
	u := m.CreateUser("alice")

	for i := 0; i < 5; i++ {
		m.CheckIn(context.Background(), u.ID)
		*now = now.Add(25 * time.Hour)
	}

	entries, total, err := m.History(context.Background(), u.ID, 1, 3)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if total != 5 || len(entries) != 3 {
		t.Fatalf("history page 1 = %d entries of %d", len(entries), total)
	}
	// newest first
	if entries[0].ID < entries[1].ID {
		t.Fatal("history should be ordered newest first")
	}

	entries, _, _ = m.History(context.Background(), u.ID, 2, 3)
	if len(entries) != 2 {
		t.Fatalf("history page 2 = %d entries, want 2", len(entries))
	}
	entries, _, _ = m.History(context.Background(), u.ID, 3, 3)
	if len(entries) != 0 {
		t.Fatalf("history page 3 = %d entries, want 0", len(entries))
	}
}

func TestConcurrentCheckInsSingleWinner(t *testing.T) {
	m, _ := testEngine()
	u := m.CreateUser("alice")

	const n = 32
	var wg sync.WaitGroup
	results := make([]CheckInResult, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := m.CheckIn(context.Background(), u.ID)
			if err != nil {
				t.Errorf("concurrent check-in: %v", err)
				return
			}
			results[i] = res
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, res := range results {
		if res.Success {
			winners++
		}
	}
	if winners != 1 {
		t.Fatalf("%d concurrent check-ins succeeded, want exactly 1", winners)
	}
	if b, _ := m.Balance(context.Background(), u.ID); b != 5 {
		t.Fatalf("balance after concurrent check-ins = %d, want 5", b)
	}
	assertBalanceInvariant(t, m, u.ID)
}

// Example from the product brief: empty account, first check-in, then a full
// withdraw/reject round trip.
func TestWithdrawalRoundTrip(t *testing.T) {
	m, now := testEngine()
	u := m.CreateUser("bob")

	res, _ := m.CheckIn(context.Background(), u.ID)
	if !res.Success || res.Points != 5 || res.Streak != 1 {
		t.Fatalf("first check-in = %+v", res)
	}
	*now = now.Add(25 * time.Hour)

	fundUser(t, m, now, u.ID, 100)
	balance, _ := m.Balance(context.Background(), u.ID)
	req, err := m.RequestWithdrawal(context.Background(), u.ID, balance, "paypal")
	if err != nil {
		t.Fatalf("request full balance: %v", err)
	}
	if b, _ := m.Balance(context.Background(), u.ID); b != 0 {
		t.Fatalf("balance after full withdrawal request = %d, want 0", b)
	}

	if _, err := m.ResolveWithdrawal(context.Background(), req.ID, models.WithdrawalStatusRejected, ""); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if b, _ := m.Balance(context.Background(), u.ID); b != balance {
		t.Fatalf("balance after rejection = %d, want %d", b, balance)
	}
	assertBalanceInvariant(t, m, u.ID)
}
