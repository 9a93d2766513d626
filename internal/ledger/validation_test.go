package ledger_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/pdacosta/banco-ledger/internal/domain"
	"github.com/pdacosta/banco-ledger/internal/ledger"
	"github.com/pdacosta/banco-ledger/internal/money"
)

// Input validation rejects before any storage access, so a service with no
// backing dependencies is enough here.
func bareService() *ledger.Service {
	return ledger.NewService(nil, nil, nil, nil, nil, nil)
}

func TestDeposit_RejectsNonPositiveAmounts(t *testing.T) {
	svc := bareService()
	ctx := context.Background()

	for _, raw := range []string{"0", "-1.00"} {
		_, err := svc.Deposit(ctx, uuid.New(), money.MustFromString(raw))
		require.ErrorIs(t, err, domain.ErrInvalidAmount, "amount %s", raw)
	}
}

func TestWithdraw_RejectsNonPositiveAmounts(t *testing.T) {
	svc := bareService()
	ctx := context.Background()

	for _, raw := range []string{"0", "-0.01"} {
		_, err := svc.Withdraw(ctx, uuid.New(), money.MustFromString(raw))
		require.ErrorIs(t, err, domain.ErrInvalidAmount, "amount %s", raw)
	}
}

func TestTransfer_RejectsSameAccount(t *testing.T) {
	svc := bareService()
	id := uuid.New()

	_, err := svc.Transfer(context.Background(), id, id, money.MustFromString("10.00"))
	require.ErrorIs(t, err, domain.ErrSameAccount)
}

func TestTransfer_RejectsNonPositiveAmounts(t *testing.T) {
	svc := bareService()

	_, err := svc.Transfer(context.Background(), uuid.New(), uuid.New(), money.Zero)
	require.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestRequestLoan_RejectsBadInput(t *testing.T) {
	svc := bareService()
	ctx := context.Background()

	_, err := svc.RequestLoan(ctx, ledger.LoanRequest{
		AccountID:  uuid.New(),
		Principal:  money.Zero,
		AnnualRate: decimal.RequireFromString("0.10"),
	})
	require.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.RequestLoan(ctx, ledger.LoanRequest{
		AccountID:  uuid.New(),
		Principal:  money.MustFromString("100.00"),
		AnnualRate: decimal.RequireFromString("-0.10"),
	})
	require.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestOpenAccount_RejectsBadInput(t *testing.T) {
	svc := bareService()
	ctx := context.Background()

	_, err := svc.OpenAccount(ctx, ledger.OpenAccountRequest{
		CustomerID: uuid.New(),
		Kind:       domain.AccountKind("PREMIUM"),
	})
	require.ErrorIs(t, err, domain.ErrInvalidAccountKind)

	_, err = svc.OpenAccount(ctx, ledger.OpenAccountRequest{
		CustomerID:     uuid.New(),
		Kind:           domain.AccountKindChecking,
		InitialDeposit: money.MustFromString("-1.00"),
	})
	require.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.OpenAccount(ctx, ledger.OpenAccountRequest{
		CustomerID:     uuid.New(),
		Kind:           domain.AccountKindChecking,
		OverdraftLimit: money.MustFromString("-50.00"),
	})
	require.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestApplyMonthlyInterest_RejectsNegativeRate(t *testing.T) {
	svc := bareService()

	_, err := svc.ApplyMonthlyInterest(context.Background(), decimal.RequireFromString("-0.01"))
	require.ErrorIs(t, err, domain.ErrInvalidAmount)
}
