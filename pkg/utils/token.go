package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// 分享token长度：256位随机数的十六进制表示
const ShareTokenLength = 64

// GenerateShareToken 生成一个不可猜测的分享token。
// 取32字节加密随机数编码为64个小写十六进制字符。
// 碰撞概率可忽略，数据库的唯一索引仅作为兜底。
// 熵源失败属于不可恢复的运行环境故障，直接panic。
func GenerateShareToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("crypto/rand unavailable: %v", err))
	}
	return hex.EncodeToString(buf)
}
