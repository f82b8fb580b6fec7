package utils

import (
	"crypto/md5" //nolint:gosec
	"encoding/hex"
)

// MD5 用于评论去重窗口的内容指纹
func MD5(str string) string {
	h := md5.New() //nolint:gosec
	h.Write([]byte(str))
	return hex.EncodeToString(h.Sum(nil))
}
