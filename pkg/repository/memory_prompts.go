package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dskvich/artloop/pkg/domain"
)

// memoryPromptsRepository keeps prompt history for the life of the process.
type memoryPromptsRepository struct {
	mu      sync.RWMutex
	prompts []domain.Prompt
}

func NewMemoryPromptsRepository() *memoryPromptsRepository {
	return &memoryPromptsRepository{}
}

func (m *memoryPromptsRepository) Save(_ context.Context, prompt string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := int64(len(m.prompts) + 1)
	m.prompts = append(m.prompts, domain.Prompt{ID: id, Text: prompt, CreatedAt: time.Now().UTC()})
	return id, nil
}

func (m *memoryPromptsRepository) GetByID(_ context.Context, id int64) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if id < 1 || id > int64(len(m.prompts)) {
		return "", fmt.Errorf("prompt %d: %w", id, domain.ErrNotFound)
	}
	return m.prompts[id-1].Text, nil
}

func (m *memoryPromptsRepository) Recent(_ context.Context, limit int) ([]domain.Prompt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []domain.Prompt
	for i := len(m.prompts) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.prompts[i])
	}
	return out, nil
}
