package testutil

import (
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pdacosta/banco-ledger/internal/domain"
	"github.com/pdacosta/banco-ledger/internal/money"
)

func SeedCustomer(t *testing.T, db *sql.DB, name, email string) *domain.Customer {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	c := &domain.Customer{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	}
	_, err = db.Exec(
		`INSERT INTO customers (id, name, email, password_hash) VALUES ($1, $2, $3, $4)`,
		c.ID, c.Name, c.Email, c.PasswordHash,
	)
	if err != nil {
		t.Fatalf("seed customer %s: %v", email, err)
	}
	return c
}

func SeedAccount(t *testing.T, db *sql.DB, customerID uuid.UUID, kind domain.AccountKind, balance, overdraftLimit money.Money) *domain.Account {
	t.Helper()

	a := &domain.Account{
		ID:             uuid.New(),
		CustomerID:     customerID,
		Kind:           kind,
		Balance:        balance,
		OverdraftLimit: overdraftLimit,
		Version:        1,
	}
	_, err := db.Exec(
		`INSERT INTO accounts (id, customer_id, kind, balance, overdraft_limit, version)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.CustomerID, a.Kind, a.Balance, a.OverdraftLimit, a.Version,
	)
	if err != nil {
		t.Fatalf("seed %s account: %v", kind, err)
	}
	return a
}

func GetAccountBalance(t *testing.T, db *sql.DB, accountID uuid.UUID) money.Money {
	t.Helper()

	var balance money.Money
	err := db.QueryRow(`SELECT balance FROM accounts WHERE id = $1`, accountID).Scan(&balance)
	if err != nil {
		t.Fatalf("get balance for %s: %v", accountID, err)
	}
	return balance
}

func CountEntries(t *testing.T, db *sql.DB, accountID uuid.UUID) int {
	t.Helper()

	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM ledger_entries WHERE account_id = $1`, accountID).Scan(&n)
	if err != nil {
		t.Fatalf("count entries for %s: %v", accountID, err)
	}
	return n
}
