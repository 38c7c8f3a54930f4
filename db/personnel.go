package db

import (
	"database/sql"
	"time"

	"garrison/model"
)

// rowScanner is an interface that can be satisfied by *sql.Row or *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanPersonnel scans a row into a Personnel struct.
func scanPersonnel(scanner rowScanner) (*model.Personnel, error) {
	var p model.Personnel
	var joined, updated int64
	err := scanner.Scan(
		&p.DiscordID, &p.Name, &p.Static, &p.Rank, &p.Position,
		&p.Department, &p.IsDismissed, &joined, &updated,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Return nil, nil if no record is found
		}
		return nil, err
	}
	p.JoinedAt = time.Unix(joined, 0).UTC()
	p.UpdatedAt = time.Unix(updated, 0).UTC()
	return &p, nil
}

const personnelColumns = "discord_id, name, static, rank, position, department, is_dismissed, joined_at, updated_at"

// GetPersonnel retrieves a personnel record by Discord ID.
func GetPersonnel(discordID string) (*model.Personnel, error) {
	row := DB.QueryRow("SELECT "+personnelColumns+" FROM personnel WHERE discord_id = ?", discordID)
	return scanPersonnel(row)
}

// LookupByStatic retrieves the personnel record that owns a static number,
// preferring an active claim over a dismissed one. Returns nil, nil when the
// number is unclaimed.
func LookupByStatic(static string) (*model.Personnel, error) {
	row := DB.QueryRow("SELECT "+personnelColumns+" FROM personnel WHERE static = ? ORDER BY is_dismissed ASC, updated_at DESC LIMIT 1", static)
	return scanPersonnel(row)
}

// RebindStatic transfers ownership of a static number to a new Discord ID,
// clearing the dismissal flag of the new owner's row. Used when a moderator
// confirms that the old claim is stale.
func RebindStatic(static, newOwnerID string) error {
	tx, err := DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	// 旧占用者转为退役而不是删除, 档案保留
	_, err = tx.Exec("UPDATE personnel SET is_dismissed = 1, updated_at = ? WHERE static = ? AND discord_id != ?",
		now, static, newOwnerID)
	if err != nil {
		return err
	}
	_, err = tx.Exec(`INSERT INTO personnel (discord_id, name, static, is_dismissed, joined_at, updated_at)
		VALUES (?, '', ?, 0, ?, ?)
		ON CONFLICT(discord_id) DO UPDATE SET static = excluded.static, is_dismissed = 0, updated_at = excluded.updated_at`,
		newOwnerID, static, now, now)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// UpsertPersonnel creates or refreshes the personnel record after a successful
// approval. The dismissal flag is always cleared.
func UpsertPersonnel(p *model.Personnel) error {
	now := time.Now().Unix()
	joined := p.JoinedAt.Unix()
	if p.JoinedAt.IsZero() {
		joined = now
	}
	_, err := DB.Exec(`INSERT INTO personnel (discord_id, name, static, rank, position, department, is_dismissed, joined_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)
		ON CONFLICT(discord_id) DO UPDATE SET
			name = excluded.name, static = excluded.static, rank = excluded.rank,
			position = excluded.position, department = excluded.department,
			is_dismissed = 0, updated_at = excluded.updated_at`,
		p.DiscordID, p.Name, p.Static, p.Rank, p.Position, p.Department, joined, now)
	return err
}

// MarkDismissed flags a member as dismissed without deleting history.
func MarkDismissed(discordID string) error {
	_, err := DB.Exec("UPDATE personnel SET is_dismissed = 1, updated_at = ? WHERE discord_id = ?",
		time.Now().Unix(), discordID)
	return err
}
