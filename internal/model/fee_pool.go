package model

// FeePool 平台手续费池
//
// 全平台单例，每笔贡献累加，运营方提现一次性清零。
type FeePool struct {
	Balance        int64 `json:"balance"`
	WithdrawnTotal int64 `json:"withdrawn_total"`
}
