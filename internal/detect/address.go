package detect

import (
	"github.com/gagliardetto/solana-go"
)

// Solana地址的base58长度范围
const (
	minAddressLen = 32
	maxAddressLen = 44
)

// IsValidTokenAddress 校验是否为合法的Solana代币地址
func IsValidTokenAddress(address string) bool {
	if len(address) < minAddressLen || len(address) > maxAddressLen {
		return false
	}
	_, err := solana.PublicKeyFromBase58(address)
	return err == nil
}

// MustPublicKey 解析地址，调用方需先通过IsValidTokenAddress校验
func MustPublicKey(address string) solana.PublicKey {
	return solana.MustPublicKeyFromBase58(address)
}
