package utils

import (
	"errors"
	"sync"
	"time"
)

const (
	epoch            = int64(1672531200000) // 2023-01-01
	datacenterIDBits = uint(5)
	workerIDBits     = uint(5)
	sequenceBits     = uint(12)
	maxDatacenterID  = int64(-1 ^ (-1 << datacenterIDBits))
	maxWorkerID      = int64(-1 ^ (-1 << workerIDBits))
	maxSequence      = int64(-1 ^ (-1 << sequenceBits))
	timestampShift   = sequenceBits + workerIDBits + datacenterIDBits
	datacenterShift  = sequenceBits + workerIDBits
	workerShift      = sequenceBits
)

// Snowflake 生成按时间递增的int64主键，所有聚合共用
type Snowflake struct {
	mu           sync.Mutex
	lastTime     int64
	workerID     int64
	datacenterID int64
	sequence     int64
}

func NewSnowflake(workerID, datacenterID int64) (*Snowflake, error) {
	if workerID < 0 || workerID > maxWorkerID {
		return nil, errors.New("worker ID out of range")
	}
	if datacenterID < 0 || datacenterID > maxDatacenterID {
		return nil, errors.New("datacenter ID out of range")
	}
	return &Snowflake{workerID: workerID, datacenterID: datacenterID}, nil
}

func (s *Snowflake) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UnixMilli()
	if now < s.lastTime {
		// 时钟回拨，沿用上一个时间戳继续发号
		now = s.lastTime
	}
	if now == s.lastTime {
		s.sequence = (s.sequence + 1) & maxSequence
		if s.sequence == 0 {
			for now <= s.lastTime {
				now = time.Now().UnixMilli()
			}
		}
	} else {
		s.sequence = 0
	}
	s.lastTime = now

	return ((now - epoch) << timestampShift) |
		(s.datacenterID << datacenterShift) |
		(s.workerID << workerShift) |
		s.sequence
}

// IDTime 取出ID中的毫秒时间戳
func IDTime(id int64) time.Time {
	return time.UnixMilli((id >> timestampShift) + epoch)
}

var (
	globalSnowflake *Snowflake
	snowflakeOnce   sync.Once
)

// InitSnowflake 在进程启动时按配置初始化，未调用时使用 (1,1)
func InitSnowflake(workerID, datacenterID int64) error {
	sf, err := NewSnowflake(workerID, datacenterID)
	if err != nil {
		return err
	}
	snowflakeOnce.Do(func() {})
	globalSnowflake = sf
	return nil
}

func GenerateID() int64 {
	snowflakeOnce.Do(func() {
		if globalSnowflake == nil {
			globalSnowflake, _ = NewSnowflake(1, 1)
		}
	})
	return globalSnowflake.Next()
}
