package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetDisplayWalletAddress(t *testing.T) {
	require.Equal(t, "So1111...1112", GetDisplayWalletAddress("So11111111111111111111111111111111111111112"))
	require.Equal(t, "123456...7890", GetDisplayWalletAddress("1234567890"))

	// 不够长的地址原样返回
	require.Equal(t, "123456789", GetDisplayWalletAddress("123456789"))
	require.Equal(t, "", GetDisplayWalletAddress(""))
}

func TestFormatPrice(t *testing.T) {
	require.Equal(t, "", FormatPrice(""))
	require.Equal(t, "$0", FormatPrice("0"))
	require.Equal(t, "$123", FormatPrice("123"))
	require.Equal(t, "$0.5", FormatPrice("0.5"))

	// 非法输入原样返回
	require.Equal(t, "abc", FormatPrice("abc"))

	// 前导零太多时压缩成下标写法
	require.Equal(t, "$0.0{6}9536", FormatPrice("0.00000095367431640625"))
}

func TestFormatAmountWithDecimals(t *testing.T) {
	require.Equal(t, "0", FormatAmountWithDecimals("", 9))
	require.Equal(t, "0", FormatAmountWithDecimals("0", 9))
	require.Equal(t, "1.5", FormatAmountWithDecimals("1500000000", 9))
	require.Equal(t, "2.50M", FormatAmountWithDecimals("2500000", 0))
	require.Equal(t, "1.50K", FormatAmountWithDecimals("1500", 0))
	require.Equal(t, "0.00000012", FormatAmountWithDecimals("123", 9))

	// 无法解析时原样返回
	require.Equal(t, "not-a-number", FormatAmountWithDecimals("not-a-number", 9))
}

func TestConvertToPercentage(t *testing.T) {
	require.Equal(t, "5.00%", ConvertToPercentage("0.05"))
	require.Equal(t, "", ConvertToPercentage("bad"))
}

func TestGenerateEventIDUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := GenerateEventID()
		require.Len(t, id, 26)
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}
}
