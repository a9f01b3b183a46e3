package novel

import (
	"context"
	"database/sql"
	"fmt"

	"novelbible/pkg/models"
)

const DefaultSearchLimit = 10

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// Search matches query as a case-sensitive substring of title, author or
// aliases. Results come back in primary-key order so repeated searches list
// candidates in a stable order for follow-up index commands.
func (r *Repo) Search(ctx context.Context, query string, limit int) ([]models.Novel, error) {
	if limit <= 0 || limit > 100 {
		limit = DefaultSearchLimit
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, title, author, platform, aliases
		FROM novels
		WHERE instr(title, ?) > 0
		   OR instr(COALESCE(author, ''), ?) > 0
		   OR instr(COALESCE(aliases, ''), ?) > 0
		ORDER BY id
		LIMIT ?
	`, query, query, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	out := make([]models.Novel, 0, limit)
	for rows.Next() {
		n, err := scanNovel(rows)
		if err != nil {
			return nil, fmt.Errorf("search scan: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*models.Novel, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, title, author, platform, aliases
		FROM novels
		WHERE id = ?
	`, id)

	n, err := scanNovel(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan getByID: %w", err)
	}
	return &n, nil
}

// ReviewsFor returns the scan records linked to a novel, newest review date
// first, capped at limit.
func (r *Repo) ReviewsFor(ctx context.Context, novelID int64, limit int) ([]models.RawReview, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT r.id, r.reviewer, r.source_url, r.review_date, r.category, r.attributes
		FROM reviews r
		JOIN novel_review_map m ON r.id = m.review_id
		WHERE m.novel_id = ?
		ORDER BY r.review_date DESC
		LIMIT ?
	`, novelID, limit)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	out := make([]models.RawReview, 0, limit)
	for rows.Next() {
		var (
			rev        models.RawReview
			reviewer   sql.NullString
			sourceURL  sql.NullString
			reviewDate sql.NullString
			category   sql.NullString
		)
		if err := rows.Scan(&rev.ID, &reviewer, &sourceURL, &reviewDate, &category, &rev.Attributes); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		rev.Reviewer = reviewer.String
		rev.SourceURL = sourceURL.String
		rev.ReviewDate = reviewDate.String
		rev.Category = category.String
		out = append(out, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

type Stats struct {
	Novels  int `json:"novels"`
	Reviews int `json:"reviews"`
}

func (r *Repo) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM novels`).Scan(&s.Novels); err != nil {
		return Stats{}, fmt.Errorf("count novels: %w", err)
	}
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM reviews`).Scan(&s.Reviews); err != nil {
		return Stats{}, fmt.Errorf("count reviews: %w", err)
	}
	return s, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNovel(s scanner) (models.Novel, error) {
	var (
		n        models.Novel
		author   sql.NullString
		platform sql.NullString
		aliases  sql.NullString
	)
	if err := s.Scan(&n.ID, &n.Title, &author, &platform, &aliases); err != nil {
		return models.Novel{}, err
	}
	n.Author = author.String
	n.Platform = platform.String
	n.Aliases = aliases.String
	return n, nil
}
