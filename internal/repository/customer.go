package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/pdacosta/banco-ledger/internal/domain"
)

const customerColumns = `id, name, email, password_hash, created_at`

const uniqueViolation = "23505"

type CustomerRepository struct {
	db *sql.DB
}

func NewCustomerRepository(db *sql.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO customers (id, name, email, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		customer.ID, customer.Name, customer.Email, customer.PasswordHash, customer.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return fmt.Errorf("Create: %w", domain.ErrCustomerExists)
		}
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = $1`, id,
	)
	c, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return c, nil
}

func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE email = $1`, email,
	)
	c, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByEmail: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByEmail: %w", err)
	}
	return c, nil
}

func (r *CustomerRepository) List(ctx context.Context) ([]domain.Customer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+customerColumns+` FROM customers ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("List: scan: %w", err)
		}
		customers = append(customers, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows: %w", err)
	}
	return customers, nil
}

func scanCustomer(s scanner) (*domain.Customer, error) {
	var c domain.Customer
	err := s.Scan(&c.ID, &c.Name, &c.Email, &c.PasswordHash, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
