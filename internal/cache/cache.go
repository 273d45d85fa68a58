package cache

import (
	"context"
	"time"
)

// Cache 读缓存抽象：服务层只依赖该接口，Redis 不可用时退化为进程内缓存
type Cache interface {
	// Get 读取 key 并反序列化到 dest，未命中返回 (false, nil)
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	// Set 写入 key，ttl 后过期
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	// Delete 使 key 失效
	Delete(ctx context.Context, keys ...string) error
}

// 缓存键
const (
	KeyCurrentSchedule = "washman:schedule:current"
	KeyWashRules       = "washman:wash_rules"
)
