package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nadeemmaahmud/sellingApp/models"
)

const presenceTTL = 24 * time.Hour

// Presence keeps a per-group online-user list in a Redis hash, keyed by
// connection id so multiple connections of the same user coexist. A nil
// *Presence is valid and disables recording.
type Presence struct {
	rdb *redis.Client
}

func NewPresence(rdb *redis.Client) *Presence {
	if rdb == nil {
		return nil
	}
	return &Presence{rdb: rdb}
}

func presenceKey(group string) string {
	return fmt.Sprintf("chat:%s:online_users", group)
}

func (p *Presence) Add(group, connID string, user models.UserInfo) {
	if p == nil {
		return
	}

	data, err := json.Marshal(user)
	if err != nil {
		log.Printf("Failed to marshal presence info: %v", err)
		return
	}

	ctx := context.Background()
	key := presenceKey(group)
	if err := p.rdb.HSet(ctx, key, connID, data).Err(); err != nil {
		log.Printf("Failed to record presence for %s: %v", key, err)
		return
	}
	p.rdb.Expire(ctx, key, presenceTTL)
}

func (p *Presence) Remove(group, connID string) {
	if p == nil {
		return
	}

	ctx := context.Background()
	if err := p.rdb.HDel(ctx, presenceKey(group), connID).Err(); err != nil {
		log.Printf("Failed to remove presence for %s: %v", presenceKey(group), err)
	}
}

// Online returns the distinct users currently connected to a group. With
// presence disabled it reports an empty list.
func (p *Presence) Online(ctx context.Context, group string) ([]models.UserInfo, error) {
	if p == nil {
		return []models.UserInfo{}, nil
	}

	result, err := p.rdb.HGetAll(ctx, presenceKey(group)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch online users for %s: %w", group, err)
	}

	seen := make(map[uint]bool)
	users := make([]models.UserInfo, 0, len(result))
	for _, data := range result {
		var info models.UserInfo
		if err := json.Unmarshal([]byte(data), &info); err != nil {
			log.Printf("Failed to unmarshal presence info: %v", err)
			continue
		}
		if !seen[info.ID] {
			seen[info.ID] = true
			users = append(users, info)
		}
	}
	return users, nil
}
