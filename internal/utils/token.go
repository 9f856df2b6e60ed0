package utils

import (
	"crypto/rand"
	"math/big"
)

const codeDigits = "0123456789"

// GenerateRandomCode 生成 n 位数字验证码(激活/重置邮件用)
func GenerateRandomCode(n int) string {
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeDigits))))
		if err != nil {
			b[i] = '0'
			continue
		}
		b[i] = codeDigits[idx.Int64()]
	}
	return string(b)
}
