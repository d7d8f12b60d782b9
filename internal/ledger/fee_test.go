package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/blues/sfl/internal/model"
)

func TestFeeAccrualAcrossCampaigns(t *testing.T) {
	env := newTestEnv(t)

	// 两个活动各自计提，汇入同一个平台池
	id1 := env.mustCreate(t, time.Hour)
	id2 := env.mustCreate(t, time.Hour)
	env.mustContribute(t, id1, alice, 500_000) // 手续费 10000
	env.mustContribute(t, id2, bob, 800_000)   // 手续费 16000

	pool := env.ledger.FeePool()
	if pool.Balance != 26_000 {
		t.Fatalf("pool balance = %d, want 26000", pool.Balance)
	}

	c1, _ := env.ledger.GetCampaign(id1)
	if c1.PlatformFeeAccrued != 10_000 {
		t.Fatalf("campaign fee accrued = %d, want 10000", c1.PlatformFeeAccrued)
	}
}

func TestWithdrawFees(t *testing.T) {
	env := newTestEnv(t)
	id := env.mustCreate(t, time.Hour)
	env.mustContribute(t, id, alice, 500_000)

	amount, err := env.ledger.WithdrawFees(testOperator)
	if err != nil {
		t.Fatalf("WithdrawFees: %v", err)
	}
	if amount != 10_000 {
		t.Fatalf("withdrawn = %d, want 10000", amount)
	}
	if len(env.treasury.calls) != 1 || env.treasury.calls[0].to != testOperator {
		t.Fatalf("unexpected transfers: %+v", env.treasury.calls)
	}

	pool := env.ledger.FeePool()
	if pool.Balance != 0 {
		t.Fatalf("pool balance = %d, want 0 after withdraw", pool.Balance)
	}
	if pool.WithdrawnTotal != 10_000 {
		t.Fatalf("withdrawn total = %d, want 10000", pool.WithdrawnTotal)
	}
	if got := env.emitter.countByName(model.EventFeeWithdrawn); got != 1 {
		t.Fatalf("FeeWithdrawn events = %d, want 1", got)
	}

	// 池空后再提
	_, err = env.ledger.WithdrawFees(testOperator)
	assertCode(t, err, CodeNothingToWithdraw)

	// 继续计提后可再次提取
	env.mustContribute(t, id, bob, 800_000)
	amount, err = env.ledger.WithdrawFees(testOperator)
	if err != nil {
		t.Fatalf("WithdrawFees: %v", err)
	}
	if amount != 16_000 {
		t.Fatalf("second withdraw = %d, want 16000", amount)
	}
	if got := env.ledger.FeePool().WithdrawnTotal; got != 26_000 {
		t.Fatalf("withdrawn total = %d, want 26000", got)
	}
}

func TestWithdrawFeesUnauthorized(t *testing.T) {
	env := newTestEnv(t)
	id := env.mustCreate(t, time.Hour)
	env.mustContribute(t, id, alice, 500_000)

	_, err := env.ledger.WithdrawFees(alice)
	assertCode(t, err, CodeUnauthorized)
	_, err = env.ledger.WithdrawFees(testCreator)
	assertCode(t, err, CodeUnauthorized)

	if got := env.ledger.FeePool().Balance; got != 10_000 {
		t.Fatalf("pool balance changed by rejected withdraw: %d", got)
	}
}

func TestWithdrawFeesEmptyPool(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.ledger.WithdrawFees(testOperator)
	assertCode(t, err, CodeNothingToWithdraw)
}

func TestWithdrawFeesTransferFailure(t *testing.T) {
	env := newTestEnv(t)
	id := env.mustCreate(t, time.Hour)
	env.mustContribute(t, id, alice, 500_000)

	// 池先清零再划转，失败不恢复余额
	env.treasury.failErr = errors.New("treasury unreachable")
	_, err := env.ledger.WithdrawFees(testOperator)
	assertCode(t, err, CodeTransferFailed)

	pool := env.ledger.FeePool()
	if pool.Balance != 0 {
		t.Fatalf("pool balance = %d, want 0 (no rollback on transfer failure)", pool.Balance)
	}
	if pool.WithdrawnTotal != 10_000 {
		t.Fatalf("withdrawn total = %d, want 10000", pool.WithdrawnTotal)
	}
}
