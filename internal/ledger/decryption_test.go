package ledger

import (
	"testing"
	"time"

	"github.com/blues/sfl/internal/model"
	"github.com/ethereum/go-ethereum/common"
)

// setupEnded 创建一个已过筹款截止期、收到三笔贡献的活动
func setupEnded(t *testing.T, env *testEnv) uint64 {
	t.Helper()
	id := env.mustCreate(t, 30*24*time.Hour)
	env.mustContribute(t, id, alice, 500_000)
	env.mustContribute(t, id, bob, 800_000)
	env.mustContribute(t, id, carol, 1_200_000)
	env.clock.advance(30*24*time.Hour + time.Minute)
	return id
}

func TestBeginDecryption(t *testing.T) {
	env := newTestEnv(t)
	id := setupEnded(t, env)

	reqId, err := env.ledger.BeginDecryption(id, testCreator)
	if err != nil {
		t.Fatalf("BeginDecryption: %v", err)
	}
	if reqId == (common.Hash{}) {
		t.Fatal("request id must be non-zero")
	}

	// 发起后活动保持 active，在途请求被记录
	c, _ := env.ledger.GetCampaign(id)
	if c.Status != model.CampaignStatusActive {
		t.Fatalf("status = %s, want active until callback", c.Status)
	}
	if c.ActiveRequestId == nil || *c.ActiveRequestId != reqId {
		t.Fatal("active request id not recorded")
	}

	req, err := env.ledger.GetRequest(reqId)
	if err != nil {
		t.Fatalf("GetRequest: %v", err)
	}
	if req.Status != model.RequestStatusPending {
		t.Fatalf("request status = %s, want pending", req.Status)
	}
	if req.CampaignId != id {
		t.Fatalf("request campaign = %d, want %d", req.CampaignId, id)
	}

	// 网关通知已发出
	if len(env.notifier.notified) != 1 || env.notifier.notified[0] != reqId {
		t.Fatalf("notifier calls = %v, want [%s]", env.notifier.notified, reqId.Hex())
	}
}

func TestBeginDecryptionPreconditions(t *testing.T) {
	env := newTestEnv(t)
	id := env.mustCreate(t, time.Hour)

	// 筹款未截止
	_, err := env.ledger.BeginDecryption(id, testCreator)
	assertCode(t, err, CodePreconditionFailed)

	env.clock.advance(2 * time.Hour)

	// 非创建者
	_, err = env.ledger.BeginDecryption(id, alice)
	assertCode(t, err, CodeUnauthorized)

	// 活动不存在
	_, err = env.ledger.BeginDecryption(999, testCreator)
	assertCode(t, err, CodeNotFound)

	// 已有在途请求时再次发起被拒绝
	if _, err := env.ledger.BeginDecryption(id, testCreator); err != nil {
		t.Fatalf("BeginDecryption: %v", err)
	}
	_, err = env.ledger.BeginDecryption(id, testCreator)
	assertCode(t, err, CodePreconditionFailed)
}

func TestBeginDecryptionRequiresGateway(t *testing.T) {
	env := newTestEnv(t)
	// 未配置网关身份的账本
	l, err := New(testOperator, common.Address{}, Deps{
		Clock:    env.clock,
		Treasury: env.treasury,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	id, err := l.CreateCampaign(testCreator, testTarget, time.Hour)
	if err != nil {
		t.Fatalf("CreateCampaign: %v", err)
	}
	env.clock.advance(2 * time.Hour)

	_, err = l.BeginDecryption(id, testCreator)
	assertCode(t, err, CodePreconditionFailed)
}

func TestBeginDecryptionIdCollision(t *testing.T) {
	env := newTestEnv(t)
	id := setupEnded(t, env)

	// 预先占用同一时刻同一输入会派生出的请求ID，发起必须整体失败
	colliding := requestId(id, env.clock.Now(), testCreator)
	env.ledger.requests[colliding] = &model.DecryptionRequest{
		Id:         colliding,
		CampaignId: id,
		Status:     model.RequestStatusPending,
	}

	_, err := env.ledger.BeginDecryption(id, testCreator)
	assertCode(t, err, CodeIdCollision)

	// 碰撞不产生部分写入：无在途请求，无网关通知
	c, _ := env.ledger.GetCampaign(id)
	if c.ActiveRequestId != nil {
		t.Fatal("collision must not record an active request")
	}
	if len(env.notifier.notified) != 0 {
		t.Fatalf("collision must not notify the gateway: %v", env.notifier.notified)
	}

	// 换一个时刻重试即可成功
	env.clock.advance(time.Second)
	if _, err := env.ledger.BeginDecryption(id, testCreator); err != nil {
		t.Fatalf("BeginDecryption after clock advance: %v", err)
	}
}

func TestFinalizeSuccessGoalMet(t *testing.T) {
	env := newTestEnv(t)
	id := setupEnded(t, env)
	reqId, _ := env.ledger.BeginDecryption(id, testCreator)

	// current 2450000 >= target 2000000 → 达标
	if err := env.ledger.FinalizeSuccess(testGateway, id, reqId, 2_000_000, 2_450_000); err != nil {
		t.Fatalf("FinalizeSuccess: %v", err)
	}

	c, _ := env.ledger.GetCampaign(id)
	if c.Status != model.CampaignStatusFundingSuccess {
		t.Fatalf("status = %s, want funding_success", c.Status)
	}
	if c.ActiveRequestId != nil {
		t.Fatal("active request must be cleared after callback")
	}

	req, _ := env.ledger.GetRequest(reqId)
	if req.Status != model.RequestStatusCompleted {
		t.Fatalf("request status = %s, want completed", req.Status)
	}
	if req.RevealedTarget != 2_000_000 || req.RevealedCurrent != 2_450_000 {
		t.Fatalf("revealed values = %d/%d", req.RevealedTarget, req.RevealedCurrent)
	}
}

func TestFinalizeSuccessGoalNotMet(t *testing.T) {
	env := newTestEnv(t)
	id := setupEnded(t, env)
	reqId, _ := env.ledger.BeginDecryption(id, testCreator)

	// current 1000000 < target 2000000 → 未达标
	if err := env.ledger.FinalizeSuccess(testGateway, id, reqId, 2_000_000, 1_000_000); err != nil {
		t.Fatalf("FinalizeSuccess: %v", err)
	}

	c, _ := env.ledger.GetCampaign(id)
	if c.Status != model.CampaignStatusFundingFailed {
		t.Fatalf("status = %s, want funding_failed", c.Status)
	}
}

func TestFinalizeSuccessExactlyAtTarget(t *testing.T) {
	env := newTestEnv(t)
	id := setupEnded(t, env)
	reqId, _ := env.ledger.BeginDecryption(id, testCreator)

	// current == target 视为达标
	if err := env.ledger.FinalizeSuccess(testGateway, id, reqId, 2_000_000, 2_000_000); err != nil {
		t.Fatalf("FinalizeSuccess: %v", err)
	}
	c, _ := env.ledger.GetCampaign(id)
	if c.Status != model.CampaignStatusFundingSuccess {
		t.Fatalf("status = %s, want funding_success", c.Status)
	}
}

func TestFinalizeSuccessValidation(t *testing.T) {
	env := newTestEnv(t)
	id := setupEnded(t, env)
	reqId, _ := env.ledger.BeginDecryption(id, testCreator)

	// 非网关身份
	err := env.ledger.FinalizeSuccess(alice, id, reqId, 1, 1)
	assertCode(t, err, CodeUnauthorized)

	// target 必须大于0
	err = env.ledger.FinalizeSuccess(testGateway, id, reqId, 0, 1)
	assertCode(t, err, CodeInvalidArgument)

	// 不存在的请求
	err = env.ledger.FinalizeSuccess(testGateway, id, common.HexToHash("0xdead"), 1, 1)
	assertCode(t, err, CodeNotFound)
}

func TestFinalizeSuccessReplayRejected(t *testing.T) {
	env := newTestEnv(t)
	id := setupEnded(t, env)
	reqId, _ := env.ledger.BeginDecryption(id, testCreator)

	if err := env.ledger.FinalizeSuccess(testGateway, id, reqId, 2_000_000, 2_450_000); err != nil {
		t.Fatalf("FinalizeSuccess: %v", err)
	}

	// 幂等性：同一请求ID重放必须拒绝且不二次应用状态迁移
	err := env.ledger.FinalizeSuccess(testGateway, id, reqId, 2_000_000, 1)
	assertCode(t, err, CodeAlreadyResolved)

	c, _ := env.ledger.GetCampaign(id)
	if c.Status != model.CampaignStatusFundingSuccess {
		t.Fatalf("replay must not change status: %s", c.Status)
	}

	// 失败回调同样拒绝重放
	err = env.ledger.FinalizeFailure(testGateway, id, reqId, "late")
	assertCode(t, err, CodeAlreadyResolved)
}

func TestFinalizeStaleRequestRejected(t *testing.T) {
	env := newTestEnv(t)
	id := setupEnded(t, env)
	reqId, _ := env.ledger.BeginDecryption(id, testCreator)

	// 另一个活动的在途请求ID不能用于本活动
	otherId := env.mustCreate(t, time.Hour)
	env.clock.advance(2 * time.Hour)
	otherReq, err := env.ledger.BeginDecryption(otherId, testCreator)
	if err != nil {
		t.Fatalf("BeginDecryption: %v", err)
	}

	err = env.ledger.FinalizeSuccess(testGateway, id, otherReq, 1, 1)
	assertCode(t, err, CodePreconditionFailed)

	// 正确的请求仍然可用
	if err := env.ledger.FinalizeSuccess(testGateway, id, reqId, 1, 1); err != nil {
		t.Fatalf("FinalizeSuccess: %v", err)
	}
}

func TestFinalizeFailure(t *testing.T) {
	env := newTestEnv(t)
	id := setupEnded(t, env)
	reqId, _ := env.ledger.BeginDecryption(id, testCreator)

	err := env.ledger.FinalizeFailure(alice, id, reqId, "oracle error")
	assertCode(t, err, CodeUnauthorized)

	if err := env.ledger.FinalizeFailure(testGateway, id, reqId, "oracle error"); err != nil {
		t.Fatalf("FinalizeFailure: %v", err)
	}

	c, _ := env.ledger.GetCampaign(id)
	if c.Status != model.CampaignStatusDecryptionFailed {
		t.Fatalf("status = %s, want decryption_failed", c.Status)
	}
	if c.ActiveRequestId != nil {
		t.Fatal("active request must be cleared")
	}

	req, _ := env.ledger.GetRequest(reqId)
	if req.Status != model.RequestStatusFailed {
		t.Fatalf("request status = %s, want failed", req.Status)
	}
	if req.FailReason != "oracle error" {
		t.Fatalf("fail reason = %q", req.FailReason)
	}
}

func TestRequestIdDeterministic(t *testing.T) {
	at := time.Unix(1_700_000_000, 0)

	a := requestId(1, at, testCreator)
	b := requestId(1, at, testCreator)
	if a != b {
		t.Fatal("request id must be deterministic")
	}
	if a == requestId(2, at, testCreator) {
		t.Fatal("different campaign must yield different request id")
	}
	if a == requestId(1, at.Add(time.Nanosecond), testCreator) {
		t.Fatal("different time must yield different request id")
	}
}
