package model

import "time"

// CacheEntry 缓存键值表，对应 schedule_cache
//
// 仅作为 cache.driver=postgres 时的存储载体，值为缓存层序列化后的字节，
// 过期判断由缓存层完成，此表不做任何淘汰。
type CacheEntry struct {
	CacheKey  string    `gorm:"type:varchar(128);primaryKey"       json:"cache_key"`
	Value     []byte    `gorm:"type:bytea;not null"                json:"-"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName 指定表名
func (CacheEntry) TableName() string { return "schedule_cache" }
