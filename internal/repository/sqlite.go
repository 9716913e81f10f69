package repository

import (
	"context"
	"database/sql"
	"embed"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/abrezinsky/awardpicks/internal/models"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// goose keeps its base FS and dialect in package globals
var migrateMu sync.Mutex

// Repository provides data access methods
type Repository struct {
	db *sql.DB
}

// New creates a new Repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, err
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite works best with single connection
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db}

	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

// DB returns the underlying database connection (for transactions)
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// migrate applies the embedded goose migrations
func (r *Repository) migrate() error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.Up(r.db, "migrations")
}

// ==================== User Methods ====================

// CreateUser inserts a new user
func (r *Repository) CreateUser(ctx context.Context, user models.User) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO users (id, display_name) VALUES (?, ?)`, user.ID, user.DisplayName)
	return translateConstraint(err)
}

// GetUser returns a user by id
func (r *Repository) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := r.db.QueryRowContext(ctx, `SELECT id, display_name, created_at FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.DisplayName, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUserName changes a user's display name
func (r *Repository) UpdateUserName(ctx context.Context, id, displayName string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET display_name = ? WHERE id = ?`, displayName, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// ListUsers returns all users ordered by id
func (r *Repository) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, display_name, created_at FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.DisplayName, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ListUserIDsAfter returns up to limit user ids strictly greater than afterID.
// An empty afterID starts from the beginning.
func (r *Repository) ListUserIDsAfter(ctx context.Context, afterID string, limit int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM users WHERE id > ? ORDER BY id LIMIT ?`, afterID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountUsers returns the number of registered users
func (r *Repository) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// ==================== Group Methods ====================

const groupColumns = `g.id, g.name, g.invite_code, g.owner_id, g.created_at,
	(SELECT COUNT(*) FROM group_members m WHERE m.group_id = g.id)`

func scanGroup(row interface{ Scan(...any) error }) (*models.Group, error) {
	var g models.Group
	if err := row.Scan(&g.ID, &g.Name, &g.InviteCode, &g.OwnerID, &g.CreatedAt, &g.MemberCount); err != nil {
		return nil, err
	}
	return &g, nil
}

// CreateGroup inserts a group and enrolls its owner as the first member
func (r *Repository) CreateGroup(ctx context.Context, group models.Group) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT INTO prediction_groups (id, name, invite_code, owner_id) VALUES (?, ?, ?, ?)`,
		group.ID, group.Name, group.InviteCode, group.OwnerID); err != nil {
		return translateConstraint(err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO group_members (group_id, user_id) VALUES (?, ?)`,
		group.ID, group.OwnerID); err != nil {
		return err
	}
	return tx.Commit()
}

// GetGroup returns a group by id
func (r *Repository) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	g, err := scanGroup(r.db.QueryRowContext(ctx, `SELECT `+groupColumns+` FROM prediction_groups g WHERE g.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return g, err
}

// GetGroupByInviteCode returns the group a code belongs to
func (r *Repository) GetGroupByInviteCode(ctx context.Context, code string) (*models.Group, error) {
	g, err := scanGroup(r.db.QueryRowContext(ctx, `SELECT `+groupColumns+` FROM prediction_groups g WHERE g.invite_code = ?`, code))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return g, err
}

// ListGroups returns all groups
func (r *Repository) ListGroups(ctx context.Context) ([]models.Group, error) {
	return r.queryGroups(ctx, `SELECT `+groupColumns+` FROM prediction_groups g ORDER BY g.name, g.id`)
}

// ListGroupsForUser returns the groups a user belongs to
func (r *Repository) ListGroupsForUser(ctx context.Context, userID string) ([]models.Group, error) {
	return r.queryGroups(ctx, `
		SELECT `+groupColumns+`
		FROM prediction_groups g
		JOIN group_members gm ON gm.group_id = g.id
		WHERE gm.user_id = ?
		ORDER BY g.name, g.id
	`, userID)
}

func (r *Repository) queryGroups(ctx context.Context, query string, args ...any) ([]models.Group, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []models.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, *g)
	}
	return groups, rows.Err()
}

// DeleteGroup removes a group with its memberships and group-scoped predictions
func (r *Repository) DeleteGroup(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM predictions WHERE scope = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM scores WHERE scope = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM prediction_groups WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	return tx.Commit()
}

// AddMember enrolls a user in a group. Returns false if already a member.
func (r *Repository) AddMember(ctx context.Context, groupID, userID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO group_members (group_id, user_id) VALUES (?, ?)`, groupID, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RemoveMember removes a membership and the user's picks scoped to that group
func (r *Repository) RemoveMember(ctx context.Context, groupID, userID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM group_members WHERE group_id = ? AND user_id = ?`, groupID, userID)
	if err != nil {
		return err
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM predictions WHERE user_id = ? AND scope = ?`, userID, groupID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM scores WHERE user_id = ? AND scope = ?`, userID, groupID); err != nil {
		return err
	}
	return tx.Commit()
}

// IsMember reports whether a user belongs to a group
func (r *Repository) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM group_members WHERE group_id = ? AND user_id = ?`, groupID, userID).Scan(&n)
	return n > 0, err
}

// ListMembers returns a group's members ordered by user id
func (r *Repository) ListMembers(ctx context.Context, groupID string) ([]models.GroupMember, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT gm.group_id, gm.user_id, u.display_name, gm.joined_at
		FROM group_members gm
		JOIN users u ON u.id = gm.user_id
		WHERE gm.group_id = ?
		ORDER BY gm.user_id
	`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.GroupMember
	for rows.Next() {
		var m models.GroupMember
		if err := rows.Scan(&m.GroupID, &m.UserID, &m.DisplayName, &m.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// ==================== Settings Methods ====================

// GetSetting retrieves a setting value
func (r *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return value, err
}

// SetSetting updates a setting value
func (r *Repository) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value)
	return err
}

// ==================== Stats Methods ====================

// GetStats returns overall participation statistics
func (r *Repository) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	counts := []struct {
		key   string
		query string
	}{
		{"total_users", `SELECT COUNT(*) FROM users`},
		{"users_with_picks", `SELECT COUNT(DISTINCT user_id) FROM predictions`},
		{"total_predictions", `SELECT COUNT(*) FROM predictions`},
		{"total_groups", `SELECT COUNT(*) FROM prediction_groups`},
		{"total_categories", `SELECT COUNT(*) FROM categories WHERE active = 1`},
		{"decided_categories", `SELECT COUNT(*) FROM official_results`},
	}
	for _, c := range counts {
		var n int
		if err := r.db.QueryRowContext(ctx, c.query).Scan(&n); err != nil {
			return nil, err
		}
		stats[c.key] = n
	}

	return stats, nil
}

// ==================== Database Management Methods ====================

// validTables defines which tables can be safely cleared
var validTables = map[string]bool{
	"predictions": true, "scores": true, "official_results": true, "group_members": true,
	"prediction_groups": true, "users": true, "nominees": true, "categories": true, "settings": true,
}

// ClearTable clears all data from a table
// Only allows clearing whitelisted tables to prevent SQL injection
func (r *Repository) ClearTable(ctx context.Context, table string) error {
	if !validTables[table] {
		return ErrInvalidTable
	}

	// Safe to use string concatenation now that we've validated the table name
	_, err := r.db.ExecContext(ctx, "DELETE FROM "+table)
	return err
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
