package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/insightdelivered/statement-pipeline/internal/models"
)

// GetOrCreateBankAccount mirrors model_actions/bank_account.py's
// get_or_create_bank_account: read by (user_id, number) first; if absent,
// insert; on a unique-violation race (two tasks for the same statement
// resolving concurrently), re-read rather than erroring.
func (t *TaskConn) GetOrCreateBankAccount(ctx context.Context, userID int64, details models.AccountDetails) (*models.BankAccount, error) {
	acct, err := t.findBankAccount(ctx, userID, details.Number)
	if err == nil {
		return acct, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	var ifsc *string
	if details.IFSCCode != "" {
		ifsc = &details.IFSCCode
	}
	var id int64
	insertErr := t.conn.QueryRow(ctx, `
		INSERT INTO bank_accounts (user_id, number, ifsc_code, type)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		userID, details.Number, ifsc, string(details.Type),
	).Scan(&id)
	if insertErr == nil {
		return &models.BankAccount{ID: id, UserID: userID, Number: details.Number, IFSCCode: ifsc, Type: details.Type}, nil
	}

	// Unique-violation race: another task created the same account first.
	acct, reErr := t.findBankAccount(ctx, userID, details.Number)
	if reErr != nil {
		return nil, fmt.Errorf("bank account insert failed (%w) and re-read failed: %w", insertErr, reErr)
	}
	return acct, nil
}

func (t *TaskConn) findBankAccount(ctx context.Context, userID int64, number string) (*models.BankAccount, error) {
	var acct models.BankAccount
	var acctType string
	err := t.conn.QueryRow(ctx, `
		SELECT id, user_id, number, ifsc_code, type
		FROM bank_accounts
		WHERE user_id = $1 AND number = $2`,
		userID, number,
	).Scan(&acct.ID, &acct.UserID, &acct.Number, &acct.IFSCCode, &acctType)
	if err != nil {
		return nil, err
	}
	acct.Type = models.AccountType(acctType)
	return &acct, nil
}
