package model

import (
	"regexp"
	"strings"
)

// 地址格式：0x + 40位十六进制
var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// IsValidAddress 校验地址格式
func IsValidAddress(addr string) bool {
	return addressPattern.MatchString(addr)
}

// NormalizeAddress 地址归一化，全部小写
//
// 所有读写边界都必须先归一化，地址相等即归一化结果相等。
func NormalizeAddress(addr string) string {
	return strings.ToLower(addr)
}
