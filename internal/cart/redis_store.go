package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/tidemart/storefront/internal/config"
	"github.com/tidemart/storefront/internal/domain"
)

type redisStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisStore creates a Redis-backed cart store. Each buyer's cart is a
// hash keyed by line id; the selection lives under a sibling key.
func NewRedisStore(cfg config.RedisConfig, logger *zap.Logger) Store {
	return &redisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		logger: logger,
	}
}

func cartKey(buyer string) string {
	return fmt.Sprintf("cart:%s", buyer)
}

func selectionKey(buyer string) string {
	return fmt.Sprintf("cart:%s:selection", buyer)
}

func (s *redisStore) Lines(ctx context.Context, buyer string) ([]domain.CartLine, error) {
	fields, err := s.client.HGetAll(ctx, cartKey(buyer)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}

	lines := make([]domain.CartLine, 0, len(fields))
	for _, raw := range fields {
		var line domain.CartLine
		if err := json.Unmarshal([]byte(raw), &line); err != nil {
			s.logger.Warn("Skipping unreadable cart line", zap.String("buyer", buyer), zap.Error(err))
			continue
		}
		lines = append(lines, line)
	}

	// Hash iteration order is unstable; present oldest first
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].AddedAt.Equal(lines[j].AddedAt) {
			return lines[i].ID.String() < lines[j].ID.String()
		}
		return lines[i].AddedAt.Before(lines[j].AddedAt)
	})

	return lines, nil
}

func (s *redisStore) Get(ctx context.Context, buyer string, lineID uuid.UUID) (*domain.CartLine, error) {
	raw, err := s.client.HGet(ctx, cartKey(buyer), lineID.String()).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cart line: %w", err)
	}

	var line domain.CartLine
	if err := json.Unmarshal([]byte(raw), &line); err != nil {
		return nil, fmt.Errorf("failed to decode cart line: %w", err)
	}
	return &line, nil
}

func (s *redisStore) Add(ctx context.Context, buyer string, line *domain.CartLine) error {
	raw, err := json.Marshal(line)
	if err != nil {
		return fmt.Errorf("failed to encode cart line: %w", err)
	}
	if err := s.client.HSet(ctx, cartKey(buyer), line.ID.String(), raw).Err(); err != nil {
		return fmt.Errorf("failed to store cart line: %w", err)
	}
	return nil
}

func (s *redisStore) SetQuantity(ctx context.Context, buyer string, lineID uuid.UUID, quantity int64) error {
	line, err := s.Get(ctx, buyer, lineID)
	if err != nil {
		return err
	}
	if line == nil {
		return fmt.Errorf("cart line %s not found", lineID)
	}

	line.Quantity = quantity
	return s.Add(ctx, buyer, line)
}

func (s *redisStore) Remove(ctx context.Context, buyer string, lineID uuid.UUID) error {
	return s.RemoveLines(ctx, buyer, []uuid.UUID{lineID})
}

func (s *redisStore) RemoveLines(ctx context.Context, buyer string, lineIDs []uuid.UUID) error {
	if len(lineIDs) == 0 {
		return nil
	}

	fields := make([]string, 0, len(lineIDs))
	removed := make(map[uuid.UUID]bool, len(lineIDs))
	for _, id := range lineIDs {
		fields = append(fields, id.String())
		removed[id] = true
	}

	if err := s.client.HDel(ctx, cartKey(buyer), fields...).Err(); err != nil {
		return fmt.Errorf("failed to remove cart lines: %w", err)
	}

	// Keep the selection consistent with the surviving lines
	selection, err := s.Selection(ctx, buyer)
	if err != nil {
		return err
	}
	kept := make([]uuid.UUID, 0, len(selection))
	for _, id := range selection {
		if !removed[id] {
			kept = append(kept, id)
		}
	}
	if len(kept) != len(selection) {
		return s.SetSelection(ctx, buyer, kept)
	}
	return nil
}

func (s *redisStore) Selection(ctx context.Context, buyer string) ([]uuid.UUID, error) {
	raw, err := s.client.Get(ctx, selectionKey(buyer)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read selection: %w", err)
	}

	var ids []uuid.UUID
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("failed to decode selection: %w", err)
	}
	return ids, nil
}

func (s *redisStore) SetSelection(ctx context.Context, buyer string, lineIDs []uuid.UUID) error {
	if len(lineIDs) == 0 {
		if err := s.client.Del(ctx, selectionKey(buyer)).Err(); err != nil {
			return fmt.Errorf("failed to clear selection: %w", err)
		}
		return nil
	}

	raw, err := json.Marshal(lineIDs)
	if err != nil {
		return fmt.Errorf("failed to encode selection: %w", err)
	}
	if err := s.client.Set(ctx, selectionKey(buyer), raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to store selection: %w", err)
	}
	return nil
}

func (s *redisStore) Clear(ctx context.Context, buyer string) error {
	if err := s.client.Del(ctx, cartKey(buyer), selectionKey(buyer)).Err(); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
