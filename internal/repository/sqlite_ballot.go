package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/abrezinsky/awardpicks/internal/models"
)

// ==================== Category Methods ====================

// ListCategories returns every category ordered for display, with nominees and
// any declared winner attached
func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.description, c.display_order, c.active, o.nominee_id
		FROM categories c
		LEFT JOIN official_results o ON o.category_id = c.id
		ORDER BY c.display_order, c.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	index := make(map[string]int)
	for rows.Next() {
		var cat models.Category
		var winner sql.NullString
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Description, &cat.DisplayOrder, &cat.Active, &winner); err != nil {
			return nil, err
		}
		cat.WinnerID = winner.String
		cat.Nominees = []models.Nominee{}
		index[cat.ID] = len(categories)
		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	nominees, err := r.queryNominees(ctx, `
		SELECT category_id, id, name, developer, image_url, display_order
		FROM nominees
		ORDER BY category_id, display_order, id
	`)
	if err != nil {
		return nil, err
	}
	for _, n := range nominees {
		if i, ok := index[n.CategoryID]; ok {
			categories[i].Nominees = append(categories[i].Nominees, n)
		}
	}
	return categories, nil
}

// GetCategory returns one category with its nominees
func (r *Repository) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	var cat models.Category
	var winner sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT c.id, c.name, c.description, c.display_order, c.active, o.nominee_id
		FROM categories c
		LEFT JOIN official_results o ON o.category_id = c.id
		WHERE c.id = ?
	`, id).Scan(&cat.ID, &cat.Name, &cat.Description, &cat.DisplayOrder, &cat.Active, &winner)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	cat.WinnerID = winner.String

	cat.Nominees, err = r.queryNominees(ctx, `
		SELECT category_id, id, name, developer, image_url, display_order
		FROM nominees
		WHERE category_id = ?
		ORDER BY display_order, id
	`, id)
	if err != nil {
		return nil, err
	}
	if cat.Nominees == nil {
		cat.Nominees = []models.Nominee{}
	}
	return &cat, nil
}

func (r *Repository) queryNominees(ctx context.Context, query string, args ...any) ([]models.Nominee, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nominees []models.Nominee
	for rows.Next() {
		var n models.Nominee
		if err := rows.Scan(&n.CategoryID, &n.ID, &n.Name, &n.Developer, &n.ImageURL, &n.DisplayOrder); err != nil {
			return nil, err
		}
		nominees = append(nominees, n)
	}
	return nominees, rows.Err()
}

// CreateCategory inserts a category. Nominees on cat are ignored.
func (r *Repository) CreateCategory(ctx context.Context, cat models.Category) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, description, display_order, active) VALUES (?, ?, ?, ?, ?)
	`, cat.ID, cat.Name, cat.Description, cat.DisplayOrder, cat.Active)
	return translateConstraint(err)
}

// UpdateCategory updates a category's editable fields
func (r *Repository) UpdateCategory(ctx context.Context, cat models.Category) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE categories SET name = ?, description = ?, display_order = ?, active = ? WHERE id = ?
	`, cat.Name, cat.Description, cat.DisplayOrder, cat.Active, cat.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// UpsertCategory inserts a category or refreshes name, description and order
// of an existing one. Returns true if it was created.
func (r *Repository) UpsertCategory(ctx context.Context, cat models.Category) (bool, error) {
	var exists int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories WHERE id = ?`, cat.ID).Scan(&exists); err != nil {
		return false, err
	}
	if exists > 0 {
		_, err := r.db.ExecContext(ctx, `
			UPDATE categories SET name = ?, description = ?, display_order = ? WHERE id = ?
		`, cat.Name, cat.Description, cat.DisplayOrder, cat.ID)
		return false, err
	}
	if err := r.CreateCategory(ctx, cat); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteCategory removes a category; nominees, results and picks cascade
func (r *Repository) DeleteCategory(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// ==================== Nominee Methods ====================

// CreateNominee inserts a nominee into its category
func (r *Repository) CreateNominee(ctx context.Context, n models.Nominee) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO nominees (category_id, id, name, developer, image_url, display_order) VALUES (?, ?, ?, ?, ?, ?)
	`, n.CategoryID, n.ID, n.Name, n.Developer, n.ImageURL, n.DisplayOrder)
	return translateConstraint(err)
}

// UpdateNominee updates a nominee's details
func (r *Repository) UpdateNominee(ctx context.Context, n models.Nominee) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE nominees SET name = ?, developer = ?, image_url = ?, display_order = ? WHERE category_id = ? AND id = ?
	`, n.Name, n.Developer, n.ImageURL, n.DisplayOrder, n.CategoryID, n.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// UpsertNominee inserts or updates a nominee. Returns true if it was created.
func (r *Repository) UpsertNominee(ctx context.Context, n models.Nominee) (bool, error) {
	err := r.UpdateNominee(ctx, n)
	if err == nil {
		return false, nil
	}
	if err != ErrNotFound {
		return false, err
	}
	if err := r.CreateNominee(ctx, n); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteNominee removes a nominee from a category
func (r *Repository) DeleteNominee(ctx context.Context, categoryID, nomineeID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM nominees WHERE category_id = ? AND id = ?`, categoryID, nomineeID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// ==================== Official Result Methods ====================

// SetWinner records (or replaces) the declared winner of a category
func (r *Repository) SetWinner(ctx context.Context, categoryID, nomineeID, note string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO official_results (category_id, nominee_id, note, declared_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(category_id) DO UPDATE SET
			nominee_id = excluded.nominee_id,
			note = excluded.note,
			declared_at = excluded.declared_at
	`, categoryID, nomineeID, note)
	return err
}

// ClearWinner removes a declared winner
func (r *Repository) ClearWinner(ctx context.Context, categoryID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM official_results WHERE category_id = ?`, categoryID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// ListWinners returns every declared result
func (r *Repository) ListWinners(ctx context.Context) ([]models.OfficialResult, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT category_id, nominee_id, note, declared_at FROM official_results ORDER BY category_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.OfficialResult
	for rows.Next() {
		var res models.OfficialResult
		if err := rows.Scan(&res.CategoryID, &res.NomineeID, &res.Note, &res.DeclaredAt); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// ==================== Prediction Methods ====================

// SavePrediction inserts or replaces a user's pick for a category in a scope
func (r *Repository) SavePrediction(ctx context.Context, p models.Prediction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO predictions (user_id, category_id, scope, first_place, second_place, third_place, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id, category_id, scope) DO UPDATE SET
			first_place = excluded.first_place,
			second_place = excluded.second_place,
			third_place = excluded.third_place,
			updated_at = excluded.updated_at
	`, p.UserID, p.CategoryID, p.Scope, nullable(p.FirstPlace), nullable(p.SecondPlace), nullable(p.ThirdPlace))
	return err
}

// DeletePrediction removes one pick
func (r *Repository) DeletePrediction(ctx context.Context, userID, categoryID, scope string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM predictions WHERE user_id = ? AND category_id = ? AND scope = ?
	`, userID, categoryID, scope)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// ClearScope removes every pick a user holds in a scope
func (r *Repository) ClearScope(ctx context.Context, userID, scope string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM predictions WHERE user_id = ? AND scope = ?`, userID, scope)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const predictionColumns = `user_id, category_id, scope, first_place, second_place, third_place, updated_at`

// GetPredictions returns a user's picks in one scope
func (r *Repository) GetPredictions(ctx context.Context, userID, scope string) ([]models.Prediction, error) {
	return r.queryPredictions(ctx, `
		SELECT `+predictionColumns+`
		FROM predictions
		WHERE user_id = ? AND scope = ?
		ORDER BY category_id
	`, userID, scope)
}

// maxIDsPerQuery keeps IN lists under SQLite's bound variable limit
var maxIDsPerQuery = 500

// ListPredictionsForUsers returns the picks of many users in one scope.
// Large id lists are queried in chunks.
func (r *Repository) ListPredictionsForUsers(ctx context.Context, userIDs []string, scope string) ([]models.Prediction, error) {
	var preds []models.Prediction
	for start := 0; start < len(userIDs); start += maxIDsPerQuery {
		end := min(start+maxIDsPerQuery, len(userIDs))
		chunk := userIDs[start:end]

		args := make([]any, 0, len(chunk)+1)
		args = append(args, scope)
		for _, id := range chunk {
			args = append(args, id)
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(chunk)), ",")
		rows, err := r.queryPredictions(ctx, `
			SELECT `+predictionColumns+`
			FROM predictions
			WHERE scope = ? AND user_id IN (`+placeholders+`)
			ORDER BY user_id, category_id
		`, args...)
		if err != nil {
			return nil, err
		}
		preds = append(preds, rows...)
	}
	return preds, nil
}

// CountPredictions returns how many picks exist in a scope
func (r *Repository) CountPredictions(ctx context.Context, scope string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM predictions WHERE scope = ?`, scope).Scan(&n)
	return n, err
}

func (r *Repository) queryPredictions(ctx context.Context, query string, args ...any) ([]models.Prediction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var preds []models.Prediction
	for rows.Next() {
		var p models.Prediction
		var first, second, third sql.NullString
		if err := rows.Scan(&p.UserID, &p.CategoryID, &p.Scope, &first, &second, &third, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.FirstPlace, p.SecondPlace, p.ThirdPlace = first.String, second.String, third.String
		preds = append(preds, p)
	}
	return preds, rows.Err()
}

// ==================== Score Methods ====================

// UpsertScores writes a batch of score snapshots in a single transaction
func (r *Repository) UpsertScores(ctx context.Context, scores []models.StoredScore) error {
	if len(scores) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO scores (user_id, scope, total, breakdown, computed_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id, scope) DO UPDATE SET
			total = excluded.total,
			breakdown = excluded.breakdown,
			computed_at = excluded.computed_at
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range scores {
		breakdown := s.Breakdown
		if breakdown == "" {
			breakdown = "[]"
		}
		if _, err := stmt.ExecContext(ctx, s.UserID, s.Scope, s.Total, breakdown); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListScores returns the persisted scores for a scope, best first
func (r *Repository) ListScores(ctx context.Context, scope string) ([]models.StoredScore, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.user_id, s.scope, s.total, s.breakdown, s.computed_at, u.display_name
		FROM scores s
		JOIN users u ON u.id = s.user_id
		WHERE s.scope = ?
		ORDER BY s.total DESC, s.user_id
	`, scope)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []models.StoredScore
	for rows.Next() {
		var s models.StoredScore
		if err := rows.Scan(&s.UserID, &s.Scope, &s.Total, &s.Breakdown, &s.ComputedAt, &s.DisplayName); err != nil {
			return nil, err
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

// GetScore returns one persisted score
func (r *Repository) GetScore(ctx context.Context, userID, scope string) (*models.StoredScore, error) {
	var s models.StoredScore
	err := r.db.QueryRowContext(ctx, `
		SELECT s.user_id, s.scope, s.total, s.breakdown, s.computed_at, u.display_name
		FROM scores s
		JOIN users u ON u.id = s.user_id
		WHERE s.user_id = ? AND s.scope = ?
	`, userID, scope).Scan(&s.UserID, &s.Scope, &s.Total, &s.Breakdown, &s.ComputedAt, &s.DisplayName)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
