package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/insightdelivered/statement-pipeline/internal/models"
)

// ErrCredentialNotFound is returned when no active password rule matches.
var ErrCredentialNotFound = errors.New("storage: no matching statement credential")

// FindStatementCredential mirrors model_actions/statement_pdf.py's
// get_statement_pdf_password: match on the last 8 characters of the
// filename via a trailing-anchor regex, so date-stamped variants of the
// same sender's statement ("Jan25_acct1234.pdf", "Feb25_acct1234.pdf", both
// ending in "1234.pdf") resolve to one stored password rule without needing
// an exact filename.
func (t *TaskConn) FindStatementCredential(ctx context.Context, userID int64, senderEmail, filename string) (*models.StatementCredential, error) {
	suffix := filename
	if len(suffix) > 8 {
		suffix = suffix[len(suffix)-8:]
	}
	pattern := regexpQuote(suffix) + "$"

	var cred models.StatementCredential
	cred.UserID = userID
	cred.SenderEmail = senderEmail
	err := t.conn.QueryRow(ctx, `
		SELECT encrypted_password
		FROM statement_pdfs
		WHERE user_id = $1
		  AND sender_email = $2
		  AND filename ~ $3
		  AND is_active = TRUE
		LIMIT 1`,
		userID, senderEmail, pattern,
	).Scan(&cred.EncryptedPassword)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCredentialNotFound
	}
	if err != nil {
		return nil, err
	}
	cred.IsActive = true
	return &cred, nil
}

// UpsertStatementCredential mirrors create_or_update_bank_pdf.
func (t *TaskConn) UpsertStatementCredential(ctx context.Context, userID int64, senderEmail, filename, encryptedPassword string, isActive bool) error {
	_, err := t.conn.Exec(ctx, `
		INSERT INTO statement_pdfs (user_id, sender_email, filename, encrypted_password, is_active)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, sender_email, filename) DO UPDATE
		SET encrypted_password = EXCLUDED.encrypted_password,
		    is_active = EXCLUDED.is_active`,
		userID, senderEmail, filename, encryptedPassword, isActive,
	)
	return err
}

// regexpQuote escapes a string for literal use inside a Postgres POSIX
// regex, mirroring Python's re.escape over the filename suffix.
func regexpQuote(s string) string {
	special := `\.^$*+?()[]{}|`
	out := make([]byte, 0, len(s)*2)
	for i := 0; i < len(s); i++ {
		c := s[i]
		for j := 0; j < len(special); j++ {
			if c == special[j] {
				out = append(out, '\\')
				break
			}
		}
		out = append(out, c)
	}
	return string(out)
}
