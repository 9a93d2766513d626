package ledger_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdacosta/banco-ledger/internal/domain"
	"github.com/pdacosta/banco-ledger/internal/ledger"
	"github.com/pdacosta/banco-ledger/internal/money"
	"github.com/pdacosta/banco-ledger/internal/repository"
	"github.com/pdacosta/banco-ledger/internal/testutil"
)

func setupService(t *testing.T, db *sql.DB) *ledger.Service {
	t.Helper()
	return ledger.NewService(
		repository.NewAccountRepository(db),
		repository.NewEntryRepository(db),
		repository.NewLoanRepository(db),
		repository.NewCustomerRepository(db),
		nil,
		db,
	)
}

func amount(s string) money.Money { return money.MustFromString(s) }

func TestOpenAccount_WritesOpeningEntry(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupService(t, db)
	ctx := context.Background()

	customer := testutil.SeedCustomer(t, db, "Ana", "ana@test.com")

	account, err := svc.OpenAccount(ctx, ledger.OpenAccountRequest{
		CustomerID:     customer.ID,
		Kind:           domain.AccountKindChecking,
		InitialDeposit: amount("250.00"),
		OverdraftLimit: amount("100.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, "250.00", account.Balance.String())

	entries, err := svc.Statement(ctx, account.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.EntryKindDeposit, entries[0].Kind)
	assert.Equal(t, "Initial deposit", entries[0].Description)
	assert.Equal(t, "250.00", entries[0].Amount.String())
	assert.Equal(t, "250.00", entries[0].BalanceAfter.String())
}

func TestOpenAccount_UnknownCustomer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupService(t, db)

	_, err := svc.OpenAccount(context.Background(), ledger.OpenAccountRequest{
		CustomerID: uuid.New(),
		Kind:       domain.AccountKindSavings,
	})
	require.ErrorIs(t, err, domain.ErrCustomerNotFound)
}

func TestDepositWithdraw_BalanceAndStatement(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupService(t, db)
	ctx := context.Background()

	customer := testutil.SeedCustomer(t, db, "Bruno", "bruno@test.com")
	account := testutil.SeedAccount(t, db, customer.ID, domain.AccountKindChecking, amount("100.00"), money.Zero)

	dep, err := svc.Deposit(ctx, account.ID, amount("50.00"))
	require.NoError(t, err)
	assert.Equal(t, "150.00", dep.BalanceAfter.String())

	wd, err := svc.Withdraw(ctx, account.ID, amount("30.00"))
	require.NoError(t, err)
	assert.Equal(t, "120.00", wd.BalanceAfter.String())

	assert.Equal(t, "120.00", testutil.GetAccountBalance(t, db, account.ID).String())

	// Most recent first, ids strictly descending.
	entries, err := svc.Statement(ctx, account.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.EntryKindWithdraw, entries[0].Kind)
	assert.Equal(t, domain.EntryKindDeposit, entries[1].Kind)
	assert.Greater(t, entries[0].ID, entries[1].ID)
}

func TestWithdraw_OverdraftFloor(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupService(t, db)
	ctx := context.Background()

	customer := testutil.SeedCustomer(t, db, "Carla", "carla@test.com")
	account := testutil.SeedAccount(t, db, customer.ID, domain.AccountKindChecking, amount("50.00"), amount("100.00"))

	// Down to the floor exactly is allowed.
	entry, err := svc.Withdraw(ctx, account.ID, amount("150.00"))
	require.NoError(t, err)
	assert.Equal(t, "-100.00", entry.BalanceAfter.String())

	// One cent past the floor is not.
	_, err = svc.Withdraw(ctx, account.ID, amount("0.01"))
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.Equal(t, "-100.00", testutil.GetAccountBalance(t, db, account.ID).String())
}

func TestWithdraw_ConcurrentSingleWinner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupService(t, db)
	ctx := context.Background()

	customer := testutil.SeedCustomer(t, db, "Davi", "davi@test.com")
	account := testutil.SeedAccount(t, db, customer.ID, domain.AccountKindChecking, amount("100.00"), money.Zero)

	const workers = 10
	var wg sync.WaitGroup
	results := make(chan error, workers)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Withdraw(ctx, account.ID, amount("100.00"))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, insufficient int
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, domain.ErrInsufficientFunds)
		insufficient++
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, insufficient)
	assert.Equal(t, "0.00", testutil.GetAccountBalance(t, db, account.ID).String())
	assert.Equal(t, 1, testutil.CountEntries(t, db, account.ID))
}

func TestTransfer_HappyPath(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupService(t, db)
	ctx := context.Background()

	customer := testutil.SeedCustomer(t, db, "Elisa", "elisa@test.com")
	from := testutil.SeedAccount(t, db, customer.ID, domain.AccountKindChecking, amount("1000.00"), money.Zero)
	to := testutil.SeedAccount(t, db, customer.ID, domain.AccountKindSavings, amount("0.00"), money.Zero)

	res, err := svc.Transfer(ctx, from.ID, to.ID, amount("300.00"))
	require.NoError(t, err)

	assert.Equal(t, domain.EntryKindTransferOut, res.OutEntry.Kind)
	assert.Equal(t, "700.00", res.OutEntry.BalanceAfter.String())
	assert.Equal(t, domain.EntryKindTransferIn, res.InEntry.Kind)
	assert.Equal(t, "300.00", res.InEntry.BalanceAfter.String())

	assert.Equal(t, "700.00", testutil.GetAccountBalance(t, db, from.ID).String())
	assert.Equal(t, "300.00", testutil.GetAccountBalance(t, db, to.ID).String())
}

func TestTransfer_FailureLeavesNoTrace(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupService(t, db)
	ctx := context.Background()

	customer := testutil.SeedCustomer(t, db, "Fabio", "fabio@test.com")
	from := testutil.SeedAccount(t, db, customer.ID, domain.AccountKindChecking, amount("100.00"), money.Zero)
	to := testutil.SeedAccount(t, db, customer.ID, domain.AccountKindChecking, amount("0.00"), money.Zero)

	_, err := svc.Transfer(ctx, from.ID, to.ID, amount("100.01"))
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	_, err = svc.Transfer(ctx, from.ID, uuid.New(), amount("10.00"))
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	assert.Equal(t, "100.00", testutil.GetAccountBalance(t, db, from.ID).String())
	assert.Equal(t, "0.00", testutil.GetAccountBalance(t, db, to.ID).String())
	assert.Equal(t, 0, testutil.CountEntries(t, db, from.ID))
	assert.Equal(t, 0, testutil.CountEntries(t, db, to.ID))
}

func TestTransfer_ConcurrentOppositeDirections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupService(t, db)
	ctx := context.Background()

	customer := testutil.SeedCustomer(t, db, "Gina", "gina@test.com")
	a := testutil.SeedAccount(t, db, customer.ID, domain.AccountKindChecking, amount("1000.00"), money.Zero)
	b := testutil.SeedAccount(t, db, customer.ID, domain.AccountKindChecking, amount("1000.00"), money.Zero)

	const rounds = 20
	var wg sync.WaitGroup
	errs := make(chan error, rounds*2)

	for range rounds {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := svc.Transfer(ctx, a.ID, b.ID, amount("10.00"))
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := svc.Transfer(ctx, b.ID, a.ID, amount("10.00"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	balA := testutil.GetAccountBalance(t, db, a.ID)
	balB := testutil.GetAccountBalance(t, db, b.ID)
	assert.Equal(t, "1000.00", balA.String())
	assert.Equal(t, "1000.00", balB.String())
	assert.Equal(t, "2000.00", balA.Add(balB).String())
}

func TestRequestLoan_EligibilityBoundary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupService(t, db)
	ctx := context.Background()

	rate := decimal.RequireFromString("0.12")
	customer := testutil.SeedCustomer(t, db, "Hugo", "hugo@test.com")

	// Exactly five times the balance is still eligible.
	atLimit := testutil.SeedAccount(t, db, customer.ID, domain.AccountKindChecking, amount("1000.00"), money.Zero)
	loan, err := svc.RequestLoan(ctx, ledger.LoanRequest{
		AccountID:  atLimit.ID,
		Principal:  amount("5000.00"),
		AnnualRate: rate,
	})
	require.NoError(t, err)
	assert.Equal(t, "5000.00", loan.Principal.String())
	assert.Equal(t, "5000.00", loan.Outstanding.String())
	assert.Equal(t, "6000.00", testutil.GetAccountBalance(t, db, atLimit.ID).String())

	entries, err := svc.Statement(ctx, atLimit.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.EntryKindLoanCredit, entries[0].Kind)
	assert.Equal(t, "6000.00", entries[0].BalanceAfter.String())

	// One cent over is denied and leaves no trace.
	overLimit := testutil.SeedAccount(t, db, customer.ID, domain.AccountKindChecking, amount("1000.00"), money.Zero)
	_, err = svc.RequestLoan(ctx, ledger.LoanRequest{
		AccountID:  overLimit.ID,
		Principal:  amount("5000.01"),
		AnnualRate: rate,
	})
	require.ErrorIs(t, err, domain.ErrLoanDenied)
	assert.Equal(t, "1000.00", testutil.GetAccountBalance(t, db, overLimit.ID).String())
	assert.Equal(t, 0, testutil.CountEntries(t, db, overLimit.ID))

	loans, err := svc.ListLoans(ctx, atLimit.ID)
	require.NoError(t, err)
	assert.Len(t, loans, 1)

	loans, err = svc.ListLoans(ctx, overLimit.ID)
	require.NoError(t, err)
	assert.Empty(t, loans)
}

func TestApplyMonthlyInterest_SavingsOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupService(t, db)
	ctx := context.Background()

	customer := testutil.SeedCustomer(t, db, "Iris", "iris@test.com")
	savings := testutil.SeedAccount(t, db, customer.ID, domain.AccountKindSavings, amount("1000.00"), money.Zero)
	savingsSmall := testutil.SeedAccount(t, db, customer.ID, domain.AccountKindSavings, amount("0.50"), money.Zero)
	checking := testutil.SeedAccount(t, db, customer.ID, domain.AccountKindChecking, amount("1000.00"), money.Zero)

	run, err := svc.ApplyMonthlyInterest(ctx, decimal.RequireFromString("0.01"))
	require.NoError(t, err)
	assert.Equal(t, 2, run.Applied)
	assert.Empty(t, run.Failures)

	assert.Equal(t, "1010.00", testutil.GetAccountBalance(t, db, savings.ID).String())
	// 0.50 * 0.01 = 0.005, rounded half away from zero to 0.01.
	assert.Equal(t, "0.51", testutil.GetAccountBalance(t, db, savingsSmall.ID).String())
	assert.Equal(t, "1000.00", testutil.GetAccountBalance(t, db, checking.ID).String())
	assert.Equal(t, 0, testutil.CountEntries(t, db, checking.ID))

	entries, err := svc.Statement(ctx, savings.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.EntryKindInterest, entries[0].Kind)
	assert.Equal(t, "10.00", entries[0].Amount.String())
	assert.Equal(t, "Monthly interest @0.01", entries[0].Description)
}

func TestLedgerReplay_MatchesBalance(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupService(t, db)
	ctx := context.Background()

	customer := testutil.SeedCustomer(t, db, "Joao", "joao@test.com")

	account, err := svc.OpenAccount(ctx, ledger.OpenAccountRequest{
		CustomerID:     customer.ID,
		Kind:           domain.AccountKindSavings,
		InitialDeposit: amount("500.00"),
		OverdraftLimit: money.Zero,
	})
	require.NoError(t, err)

	other := testutil.SeedAccount(t, db, customer.ID, domain.AccountKindChecking, amount("100.00"), money.Zero)

	_, err = svc.Deposit(ctx, account.ID, amount("250.00"))
	require.NoError(t, err)
	_, err = svc.Withdraw(ctx, account.ID, amount("125.50"))
	require.NoError(t, err)
	_, err = svc.Transfer(ctx, other.ID, account.ID, amount("40.00"))
	require.NoError(t, err)
	_, err = svc.Transfer(ctx, account.ID, other.ID, amount("15.25"))
	require.NoError(t, err)
	_, err = svc.RequestLoan(ctx, ledger.LoanRequest{
		AccountID:  account.ID,
		Principal:  amount("1000.00"),
		AnnualRate: decimal.RequireFromString("0.10"),
	})
	require.NoError(t, err)
	_, err = svc.ApplyMonthlyInterest(ctx, decimal.RequireFromString("0.005"))
	require.NoError(t, err)

	entries, err := svc.Statement(ctx, account.ID, 100)
	require.NoError(t, err)

	replayed := money.Zero
	for _, e := range entries {
		replayed = replayed.Add(e.Signed())
	}
	assert.True(t, replayed.Equal(testutil.GetAccountBalance(t, db, account.ID)),
		"replayed %s, stored %s", replayed, testutil.GetAccountBalance(t, db, account.ID))

	// Reading the statement again must observe the identical sequence.
	again, err := svc.Statement(ctx, account.ID, 100)
	require.NoError(t, err)
	require.Equal(t, len(entries), len(again))
	for i := range entries {
		assert.Equal(t, entries[i].ID, again[i].ID)
		assert.Equal(t, entries[i].BalanceAfter.String(), again[i].BalanceAfter.String())
	}
}

func TestAccountForCustomer_Ownership(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupService(t, db)
	ctx := context.Background()

	owner := testutil.SeedCustomer(t, db, "Kaua", "kaua@test.com")
	other := testutil.SeedCustomer(t, db, "Lia", "lia@test.com")
	account := testutil.SeedAccount(t, db, owner.ID, domain.AccountKindChecking, amount("10.00"), money.Zero)

	got, err := svc.AccountForCustomer(ctx, account.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)

	_, err = svc.AccountForCustomer(ctx, account.ID, other.ID)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}
