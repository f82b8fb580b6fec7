package utils

import (
	"strconv"
)

// Transfer 把token claim或路径参数中的id统一转成int64，无法识别时返回-1
func Transfer(value interface{}) int64 {
	switch v := value.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case string:
		if intValue, err := strconv.ParseInt(v, 10, 64); err == nil {
			return intValue
		}
	}
	return -1
}

func ConvertStringToInt64(v string) (int64, error) {
	res, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return -1, err
	}
	return res, nil
}

// ParsePage 规范化分页参数，page从1开始，limit落在[1,max]
func ParsePage(page, limit, def, maxLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = def
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

// TotalPages 向上取整的页数
func TotalPages(total int64, limit int) int64 {
	if limit <= 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
