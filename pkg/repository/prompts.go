package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dskvich/artloop/pkg/domain"
)

type promptsRepository struct {
	db *sql.DB
}

func NewPromptsRepository(db *sql.DB) *promptsRepository {
	return &promptsRepository{db: db}
}

func (p *promptsRepository) Save(ctx context.Context, prompt string) (int64, error) {
	const query = `
		INSERT INTO prompts (prompt)
		VALUES ($1)
		RETURNING id
	`

	var id int64
	if err := p.db.QueryRowContext(ctx, query, prompt).Scan(&id); err != nil {
		return 0, fmt.Errorf("saving prompt: %w", err)
	}

	return id, nil
}

func (p *promptsRepository) GetByID(ctx context.Context, id int64) (string, error) {
	const query = `
		SELECT prompt
		FROM prompts
		WHERE id = $1
	`

	var prompt string
	err := p.db.QueryRowContext(ctx, query, id).Scan(&prompt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("prompt %d: %w", id, domain.ErrNotFound)
		}
		return "", fmt.Errorf("fetching prompt by id: %w", err)
	}

	return prompt, nil
}

func (p *promptsRepository) Recent(ctx context.Context, limit int) ([]domain.Prompt, error) {
	const query = `
		SELECT id, prompt, created_at
		FROM prompts
		ORDER BY id DESC
		LIMIT $1
	`

	rows, err := p.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing prompts: %w", err)
	}
	defer rows.Close()

	var prompts []domain.Prompt
	for rows.Next() {
		var pr domain.Prompt
		var createdAt time.Time
		if err := rows.Scan(&pr.ID, &pr.Text, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning prompt: %w", err)
		}
		pr.CreatedAt = createdAt.UTC()
		prompts = append(prompts, pr)
	}

	return prompts, rows.Err()
}
