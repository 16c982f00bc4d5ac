package integration

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NujabesCode/itsmycolor-authgate/internal/iplock"
	"github.com/NujabesCode/itsmycolor-authgate/internal/lockout"
	"github.com/NujabesCode/itsmycolor-authgate/internal/models"
	"github.com/NujabesCode/itsmycolor-authgate/internal/repositories"
	"github.com/NujabesCode/itsmycolor-authgate/internal/services"
	pkglogger "github.com/NujabesCode/itsmycolor-authgate/pkg/logger"
)

var (
	testDB     *TestDB
	setupOnce  sync.Once
	setupError error
)

func getTestDB(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	setupOnce.Do(func() {
		testDB, setupError = SetupTestDatabase(context.Background())
	})
	if setupError != nil {
		t.Fatalf("failed to set up test database: %v", setupError)
	}

	t.Cleanup(func() {
		_ = testDB.CleanupTables(context.Background())
	})

	return testDB
}

func newGateServices(db *TestDB) (*services.AuthService, *repositories.AccountRepository, *iplock.Tracker) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	accountRepo := repositories.NewAccountRepository(db.DB)
	attemptRepo := repositories.NewLoginAttemptRepository(db.DB)
	ipTracker := iplock.NewTracker(iplock.DefaultPolicy())

	authService := services.NewAuthService(
		accountRepo, attemptRepo, ipTracker,
		lockout.DefaultPolicy(), logger, pkglogger.NewAuditLogger(logger),
	)
	return authService, accountRepo, ipTracker
}

// Concurrent failures on one account must serialize on the row: the counter
// moves once per counted failure and the lock trips exactly once at the
// threshold. Failures arriving after the lock tripped are not counted.
func TestConcurrentLoginFailures_RowAtomicity(t *testing.T) {
	db := getTestDB(t)
	ctx := context.Background()

	_, err := SeedAccount(ctx, db.Pool, "acct_conc", "conc@example.com", "correct-horse", models.RoleUser)
	require.NoError(t, err)

	accountRepo := repositories.NewAccountRepository(db.DB)
	policy := lockout.DefaultPolicy()
	now := time.Now()

	const attempts = 8
	var wg sync.WaitGroup
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			defer wg.Done()
			_, err := accountRepo.RecordLoginFailure(ctx, "acct_conc", policy, now)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	account, err := accountRepo.GetByID(ctx, "acct_conc")
	require.NoError(t, err)

	// Exactly threshold increments: the crossing failure trips the lock and
	// the re-check under the row lock drops the rest.
	assert.Equal(t, policy.MaxFailures, account.LoginFailureCount)
	require.NotNil(t, account.LockedUntil)

	// One lock transition: expiry is threshold-failure time + duration, not
	// pushed out by the later attempts.
	assert.WithinDuration(t, now.Add(policy.LockDuration), *account.LockedUntil, 2*time.Second)
}

func TestLoginGate_LockAndAdminUnlock(t *testing.T) {
	db := getTestDB(t)
	ctx := context.Background()

	_, err := SeedAccount(ctx, db.Pool, "acct_gate", "gate@example.com", "correct-horse", models.RoleUser)
	require.NoError(t, err)

	authService, accountRepo, _ := newGateServices(db)

	// Distinct source addresses keep the address throttle out of the way.
	for i := 0; i < 5; i++ {
		_, err := authService.Login(ctx, "gate@example.com", "wrong-password", "203.0.113.7")
		require.ErrorIs(t, err, models.ErrInvalidCredential)
	}

	// Fifth failure tripped the account lock: even the correct password is
	// refused now.
	_, err = authService.Login(ctx, "gate@example.com", "correct-horse", "203.0.113.7")
	require.ErrorIs(t, err, models.ErrAccountLocked)

	// Administrative unlock resets both the lock and the counter.
	require.NoError(t, accountRepo.ClearLock(ctx, "acct_gate", time.Now()))

	result, err := authService.Login(ctx, "gate@example.com", "correct-horse", "203.0.113.7")
	require.NoError(t, err)
	assert.Equal(t, "acct_gate", result.AccountID)

	account, err := accountRepo.GetByID(ctx, "acct_gate")
	require.NoError(t, err)
	assert.Zero(t, account.LoginFailureCount)
	assert.Nil(t, account.LockedUntil)
}

func TestLoginGate_SuccessResetsCounter(t *testing.T) {
	db := getTestDB(t)
	ctx := context.Background()

	_, err := SeedAccount(ctx, db.Pool, "acct_reset", "reset@example.com", "correct-horse", models.RoleUser)
	require.NoError(t, err)

	authService, accountRepo, _ := newGateServices(db)

	// Four failures, then a success, then one more failure: the account must
	// not lock, because the success reset the counter.
	for i := 0; i < 4; i++ {
		_, err := authService.Login(ctx, "reset@example.com", "wrong-password", "203.0.113.8")
		require.ErrorIs(t, err, models.ErrInvalidCredential)
	}

	_, err = authService.Login(ctx, "reset@example.com", "correct-horse", "203.0.113.8")
	require.NoError(t, err)

	_, err = authService.Login(ctx, "reset@example.com", "wrong-password", "203.0.113.8")
	require.ErrorIs(t, err, models.ErrInvalidCredential)

	account, err := accountRepo.GetByID(ctx, "acct_reset")
	require.NoError(t, err)
	assert.Equal(t, 1, account.LoginFailureCount)
	assert.Nil(t, account.LockedUntil)
}

func TestAttemptLedger_PreservesRecordedTime(t *testing.T) {
	db := getTestDB(t)
	ctx := context.Background()

	attemptRepo := repositories.NewLoginAttemptRepository(db.DB)

	reason := "invalid_credentials"
	recorded := time.Now().Add(-1 * time.Hour).UTC().Truncate(time.Microsecond)
	err := attemptRepo.RecordAttempt(ctx, &models.LoginAttempt{
		Email:         "ledger@example.com",
		SourceAddress: "203.0.113.9",
		AttemptTime:   recorded,
		Success:       false,
		FailureReason: &reason,
		ExpiresAt:     recorded.Add(30 * 24 * time.Hour),
	})
	require.NoError(t, err)

	failures, err := attemptRepo.RecentFailures(ctx, 10)
	require.NoError(t, err)
	require.Len(t, failures, 1)

	// The stored timestamp is the gate's clock, not the insert time.
	assert.True(t, failures[0].AttemptTime.Equal(recorded),
		"stored %v, want %v", failures[0].AttemptTime, recorded)
}

func TestBrandReview_RoundTripToPendingReview(t *testing.T) {
	db := getTestDB(t)
	ctx := context.Background()

	owner, err := SeedAccount(ctx, db.Pool, "acct_brand", "brand@example.com", "correct-horse", models.RoleBrandManager)
	require.NoError(t, err)

	brandRepo := repositories.NewBrandRepository(db.DB)

	brand, err := brandRepo.Create(ctx, &models.Brand{
		OwnerAccountID: owner.ID,
		Name:           "Round Trip",
	})
	require.NoError(t, err)
	assert.Equal(t, models.BrandStatusPendingReview, brand.Status)

	now := time.Now()
	require.NoError(t, brandRepo.UpdateStatus(ctx, brand.ID, models.BrandStatusPendingReview, models.BrandStatusRejected, now))
	require.NoError(t, brandRepo.UpdateStatus(ctx, brand.ID, models.BrandStatusRejected, models.BrandStatusResubmissionRequested, now))
	require.NoError(t, brandRepo.UpdateStatus(ctx, brand.ID, models.BrandStatusResubmissionRequested, models.BrandStatusPendingReview, now))

	// Back in review, a brand that went around the rejection loop behaves
	// exactly like a fresh submission.
	reloaded, err := brandRepo.GetByID(ctx, brand.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BrandStatusPendingReview, reloaded.Status)

	require.NoError(t, brandRepo.UpdateStatus(ctx, brand.ID, models.BrandStatusPendingReview, models.BrandStatusApproved, now))

	statuses, err := brandRepo.StatusesByOwner(ctx, owner.ID)
	require.NoError(t, err)
	decision := services.DecideSellerAccess(models.RoleBrandManager, statuses)
	assert.True(t, decision.Allowed)
}

func TestBrandReview_CompareAndSetLosesCleanly(t *testing.T) {
	db := getTestDB(t)
	ctx := context.Background()

	owner, err := SeedAccount(ctx, db.Pool, "acct_race", "race@example.com", "correct-horse", models.RoleBrandManager)
	require.NoError(t, err)

	brandRepo := repositories.NewBrandRepository(db.DB)
	brand, err := brandRepo.Create(ctx, &models.Brand{OwnerAccountID: owner.ID, Name: "Raced"})
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, brandRepo.UpdateStatus(ctx, brand.ID, models.BrandStatusPendingReview, models.BrandStatusApproved, now))

	// A second reviewer working from the stale pending state must lose.
	err = brandRepo.UpdateStatus(ctx, brand.ID, models.BrandStatusPendingReview, models.BrandStatusRejected, now)
	require.ErrorIs(t, err, models.ErrConflict)
}
