package ledger

import (
	"encoding/binary"
	"math"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ObfuscationBase 乘除混淆变换的基数
const ObfuscationBase = 1_000_000

// deriveMultiplier 在活动创建时派生一次性混淆乘数
//
// multiplier = keccak(创建时间, 创建者, 活动ID) mod BASE + 1，取值 [1, BASE]。
// 乘数保存在活动记录的私有字段中，不对外序列化。
// 注意：这只是行为保真的确定性变换，不提供任何真实保密性。
func deriveMultiplier(createdAt time.Time, creator common.Address, campaignId uint64) uint64 {
	buf := make([]byte, 0, 8+common.AddressLength+8)
	buf = binary.BigEndian.AppendUint64(buf, uint64(createdAt.UnixNano()))
	buf = append(buf, creator.Bytes()...)
	buf = binary.BigEndian.AppendUint64(buf, campaignId)

	h := crypto.Keccak256(buf)
	m := new(big.Int).SetBytes(h)
	m.Mod(m, big.NewInt(ObfuscationBase))
	return m.Uint64() + 1
}

// obfuscate 金额混淆变换：raw * multiplier / BASE
//
// 中间量使用 big.Int 宽算术，结果放不进 uint64 视为致命溢出，绝不静默回绕。
func obfuscate(raw uint64, multiplier uint64) (uint64, error) {
	v := new(big.Int).SetUint64(raw)
	v.Mul(v, new(big.Int).SetUint64(multiplier))
	v.Div(v, big.NewInt(ObfuscationBase))
	if !v.IsUint64() {
		return 0, newError(CodeOverflow, "混淆金额溢出: raw=%d multiplier=%d", raw, multiplier)
	}
	return v.Uint64(), nil
}

// checkedAddInt64 带溢出检查的 int64 加法
func checkedAddInt64(a, b int64) (int64, bool) {
	if b > 0 && a > math.MaxInt64-b {
		return 0, false
	}
	if b < 0 && a < math.MinInt64-b {
		return 0, false
	}
	return a + b, true
}

// checkedAddUint64 带溢出检查的 uint64 加法
func checkedAddUint64(a, b uint64) (uint64, bool) {
	if a > math.MaxUint64-b {
		return 0, false
	}
	return a + b, true
}
