package ledger

import (
	"math"
	"testing"
	"time"

	"github.com/blues/sfl/internal/model"
	"github.com/ethereum/go-ethereum/common"
)

func TestCreateCampaignValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name     string
		creator  common.Address
		target   common.Hash
		duration time.Duration
		wantCode Code
	}{
		{name: "zero creator", creator: common.Address{}, target: testTarget, duration: time.Hour, wantCode: CodeInvalidArgument},
		{name: "empty target", creator: testCreator, target: common.Hash{}, duration: time.Hour, wantCode: CodeInvalidArgument},
		{name: "zero duration", creator: testCreator, target: testTarget, duration: 0, wantCode: CodeInvalidArgument},
		{name: "negative duration", creator: testCreator, target: testTarget, duration: -time.Hour, wantCode: CodeInvalidArgument},
		{name: "over max duration", creator: testCreator, target: testTarget, duration: MaxDuration + time.Second, wantCode: CodeInvalidArgument},
		{name: "exactly max duration", creator: testCreator, target: testTarget, duration: MaxDuration},
		{name: "normal", creator: testCreator, target: testTarget, duration: 30 * 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.ledger.CreateCampaign(tt.creator, tt.target, tt.duration)
			if tt.wantCode != "" {
				assertCode(t, err, tt.wantCode)
				return
			}
			if err != nil {
				t.Fatalf("CreateCampaign: %v", err)
			}
		})
	}
}

func TestCreateCampaignAssignsMonotonicIds(t *testing.T) {
	env := newTestEnv(t)

	id1 := env.mustCreate(t, time.Hour)
	id2 := env.mustCreate(t, time.Hour)
	if id2 != id1+1 {
		t.Fatalf("ids not monotonic: %d then %d", id1, id2)
	}
}

func TestCreateCampaignDeadlines(t *testing.T) {
	env := newTestEnv(t)
	duration := 30 * 24 * time.Hour

	id := env.mustCreate(t, duration)
	c, err := env.ledger.GetCampaign(id)
	if err != nil {
		t.Fatalf("GetCampaign: %v", err)
	}

	wantFunding := env.clock.Now().Add(duration)
	if !c.FundingDeadline.Equal(wantFunding) {
		t.Fatalf("funding deadline = %v, want %v", c.FundingDeadline, wantFunding)
	}
	if !c.DecryptionDeadline.Equal(wantFunding.Add(RefundTimeout)) {
		t.Fatalf("decryption deadline = %v, want funding+%v", c.DecryptionDeadline, RefundTimeout)
	}
	// 不变量：解密截止期恒晚于筹款截止期
	if !c.DecryptionDeadline.After(c.FundingDeadline) {
		t.Fatal("decryption deadline must be after funding deadline")
	}
	if c.Status != model.CampaignStatusActive {
		t.Fatalf("status = %s, want active", c.Status)
	}
	if c.ActiveRequestId != nil {
		t.Fatal("new campaign must have no active request")
	}
}

func TestContributeAccounting(t *testing.T) {
	env := newTestEnv(t)
	id := env.mustCreate(t, 30*24*time.Hour)

	// 500000 的 2% 手续费 = 10000，净额 490000
	env.mustContribute(t, id, alice, 500_000)

	c, _ := env.ledger.GetCampaign(id)
	if c.TotalRaisedActual != 490_000 {
		t.Fatalf("total raised = %d, want 490000", c.TotalRaisedActual)
	}
	if c.PlatformFeeAccrued != 10_000 {
		t.Fatalf("fee accrued = %d, want 10000", c.PlatformFeeAccrued)
	}
	if pool := env.ledger.FeePool(); pool.Balance != 10_000 {
		t.Fatalf("fee pool = %d, want 10000", pool.Balance)
	}

	ctb, err := env.ledger.GetContribution(id, alice)
	if err != nil {
		t.Fatalf("GetContribution: %v", err)
	}
	if ctb.ActualAmount != 490_000 {
		t.Fatalf("contribution actual = %d, want 490000", ctb.ActualAmount)
	}
	if ctb.RefundClaimed {
		t.Fatal("fresh contribution must not be refund-claimed")
	}

	// 同一贡献者再次贡献累加到同一条记录
	first := ctb.FirstContributedAt
	env.clock.advance(time.Hour)
	env.mustContribute(t, id, alice, 500_000)

	ctb, _ = env.ledger.GetContribution(id, alice)
	if ctb.ActualAmount != 980_000 {
		t.Fatalf("accumulated actual = %d, want 980000", ctb.ActualAmount)
	}
	if !ctb.FirstContributedAt.Equal(first) {
		t.Fatal("first contribution time must not change on accumulation")
	}

	c, _ = env.ledger.GetCampaign(id)
	if c.TotalRaisedActual != 980_000 {
		t.Fatalf("total raised = %d, want 980000", c.TotalRaisedActual)
	}
}

func TestContributeValidation(t *testing.T) {
	env := newTestEnv(t)
	id := env.mustCreate(t, time.Hour)

	err := env.ledger.Contribute(999, alice, 100, 100)
	assertCode(t, err, CodeNotFound)

	err = env.ledger.Contribute(id, common.Address{}, 100, 100)
	assertCode(t, err, CodeInvalidArgument)

	err = env.ledger.Contribute(id, alice, 0, 0)
	assertCode(t, err, CodeInvalidArgument)

	err = env.ledger.Contribute(id, alice, -5, 0)
	assertCode(t, err, CodeInvalidArgument)
}

func TestContributeAfterFundingDeadlineRejected(t *testing.T) {
	env := newTestEnv(t)
	id := env.mustCreate(t, time.Hour)

	// 截止瞬间也不接受（严格早于）
	env.clock.advance(time.Hour)
	err := env.ledger.Contribute(id, alice, 100_000, 100_000)
	assertCode(t, err, CodePreconditionFailed)

	// 已过筹款截止、未到解密截止的窗口期同样拒绝，状态不变
	env.clock.advance(24 * time.Hour)
	err = env.ledger.Contribute(id, alice, 100_000, 100_000)
	assertCode(t, err, CodePreconditionFailed)

	c, _ := env.ledger.GetCampaign(id)
	if c.TotalRaisedActual != 0 || c.PlatformFeeAccrued != 0 {
		t.Fatalf("rejected contribution must not change state: raised=%d fee=%d",
			c.TotalRaisedActual, c.PlatformFeeAccrued)
	}
	if _, err := env.ledger.GetContribution(id, alice); !IsCode(err, CodeNotFound) {
		t.Fatal("rejected contribution must not create a record")
	}
	if got := env.emitter.countByName(model.EventContributionMade); got != 0 {
		t.Fatalf("no contribution event expected, got %d", got)
	}
}

func TestContributeOverflowRejected(t *testing.T) {
	env := newTestEnv(t)
	id := env.mustCreate(t, time.Hour)

	big := int64(math.MaxInt64 - 1000)
	env.mustContribute(t, id, alice, big)

	before, _ := env.ledger.GetCampaign(id)

	// 再来一笔同样大小的净额会溢出 int64，必须整体拒绝
	err := env.ledger.Contribute(id, bob, big, 0)
	assertCode(t, err, CodeOverflow)

	after, _ := env.ledger.GetCampaign(id)
	if after.TotalRaisedActual != before.TotalRaisedActual {
		t.Fatal("overflowing contribution must not partially apply")
	}
	if _, err := env.ledger.GetContribution(id, bob); !IsCode(err, CodeNotFound) {
		t.Fatal("overflowing contribution must not create a record")
	}
}

func TestContributeCommitmentAccumulates(t *testing.T) {
	env := newTestEnv(t)
	id := env.mustCreate(t, time.Hour)

	env.mustContribute(t, id, alice, 500_000)
	c1, _ := env.ledger.GetCampaign(id)

	env.mustContribute(t, id, bob, 500_000)
	c2, _ := env.ledger.GetCampaign(id)

	// 混淆承诺按加法累计（乘数固定所以两笔增量相同）
	if c2.CurrentCommitment != 2*c1.CurrentCommitment {
		t.Fatalf("commitment = %d, want %d", c2.CurrentCommitment, 2*c1.CurrentCommitment)
	}
}

func TestStatusMonotonicity(t *testing.T) {
	env := newTestEnv(t)
	id := env.mustCreate(t, time.Hour)
	env.mustContribute(t, id, alice, 500_000)

	env.clock.advance(2 * time.Hour)
	reqId, err := env.ledger.BeginDecryption(id, testCreator)
	if err != nil {
		t.Fatalf("BeginDecryption: %v", err)
	}
	if err := env.ledger.FinalizeSuccess(testGateway, id, reqId, 1, 490_000); err != nil {
		t.Fatalf("FinalizeSuccess: %v", err)
	}

	c, _ := env.ledger.GetCampaign(id)
	if c.Status != model.CampaignStatusFundingSuccess {
		t.Fatalf("status = %s, want funding_success", c.Status)
	}

	// 终态之后不可能再接受贡献或再次发起解密（永不回到 active）
	err = env.ledger.Contribute(id, bob, 100_000, 0)
	assertCode(t, err, CodePreconditionFailed)
	_, err = env.ledger.BeginDecryption(id, testCreator)
	assertCode(t, err, CodePreconditionFailed)
}
