package sqlite

import (
	"context"
	"fmt"

	"github.com/patinho/quack-board/internal/model"
	"github.com/patinho/quack-board/internal/repository"
)

// compile-time check that *DB implements repository.StatsRepository
var _ repository.StatsRepository = (*DB)(nil)

// Stats computes the dashboard aggregate: total questions, total answers,
// accepted-answer count, and the per-language histogram sorted by count
// descending. Pure read — no mutation anywhere.
func (db *DB) Stats(ctx context.Context) (*model.Stats, error) {
	stats := &model.Stats{Languages: []model.LanguageCount{}}

	err := db.conn.QueryRowContext(ctx,
		`SELECT
			(SELECT COUNT(*) FROM questions),
			(SELECT COUNT(*) FROM answers),
			(SELECT COUNT(*) FROM answers WHERE is_accepted = 1)`,
	).Scan(&stats.TotalQuestions, &stats.TotalAnswers, &stats.AcceptedCount)
	if err != nil {
		return nil, fmt.Errorf("sqlite: counting totals: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT language, COUNT(*) AS count
		 FROM questions
		 GROUP BY language
		 ORDER BY count DESC, language ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: grouping languages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var lc model.LanguageCount
		if err := rows.Scan(&lc.Language, &lc.Count); err != nil {
			return nil, fmt.Errorf("sqlite: scanning language row: %w", err)
		}
		stats.Languages = append(stats.Languages, lc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating languages: %w", err)
	}

	return stats, nil
}
