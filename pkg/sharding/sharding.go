package sharding

import (
	"fmt"

	"VidTube.com/pkg/utils"
	"github.com/pkg/errors"
	"gorm.io/sharding"
)

// TableName 分表名，例如 notifications_03
func TableName(table string, idx uint) string {
	return fmt.Sprintf("%s_%02d", table, idx)
}

// TableNames 所有分表名，用于建表和按主键扫描
func TableNames(table string, shards uint) []string {
	names := make([]string, 0, shards)
	for i := uint(0); i < shards; i++ {
		names = append(names, TableName(table, i))
	}
	return names
}

// ShardIndex 根据分片键计算分表下标
func ShardIndex(value interface{}, shards uint) (uint, error) {
	if shards == 0 {
		return 0, errors.New("number of shards must be positive")
	}
	id := utils.Transfer(value)
	if v, ok := value.(uint64); ok {
		id = int64(v)
	}
	if id < 0 {
		return 0, errors.Errorf("invalid sharding key %v", value)
	}
	return uint(id % int64(shards)), nil
}

// NewSharding 按shardingKey把table拆成shards张表，主键仍使用全局雪花ID
func NewSharding(shardingKey string, shards uint, table string) *sharding.Sharding {
	return sharding.Register(sharding.Config{
		ShardingKey:    shardingKey,
		NumberOfShards: shards,
		ShardingAlgorithm: func(columnValue any) (string, error) {
			idx, err := ShardIndex(columnValue, shards)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("_%02d", idx), nil
		},
		ShardingSuffixs: func() []string {
			suffixes := make([]string, 0, shards)
			for i := uint(0); i < shards; i++ {
				suffixes = append(suffixes, fmt.Sprintf("_%02d", i))
			}
			return suffixes
		},
		PrimaryKeyGenerator: sharding.PKCustom,
		PrimaryKeyGeneratorFn: func(_ int64) int64 {
			return utils.GenerateID()
		},
	}, table)
}
