package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"washman/backend/internal/cache"
	"washman/backend/internal/dto"
)

func setupTestWashRuleService() (WashRuleService, *mockWashRuleRepo) {
	repos := newMockRepos()
	c := cache.NewMemoryCache(func() time.Time { return testNow })
	return NewWashRuleService(repos.repository(), c, 5*time.Minute, zap.NewNop()), repos.rules
}

func TestWashRuleService_List_DefaultsWhenEmpty(t *testing.T) {
	svc, _ := setupTestWashRuleService()

	rules, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("查询不应失败: %v", err)
	}
	if len(rules) != len(DefaultWashRules()) {
		t.Fatalf("期望 %d 条默认规则，实际 %d", len(DefaultWashRules()), len(rules))
	}
	for _, r := range rules {
		if !r.IsDefault {
			t.Errorf("规则 %s 应标记为默认", r.Name)
		}
	}
	if rules[0].Name != "2 Ext 1 Int" || len(rules[0].SingleCarPattern) != 3 {
		t.Errorf("第一条默认规则错误: %+v", rules[0])
	}
}

func TestWashRuleService_Upsert(t *testing.T) {
	svc, repo := setupTestWashRuleService()

	resp, err := svc.Upsert(context.Background(), " Premium ", &dto.UpsertWashRuleRequest{
		SingleCarPattern: []string{"EXT", "INT"},
		MultiCarSettings: map[string]map[string]string{"Visit1": {"Car1": "int", "car2": "EXT"}},
	})
	if err != nil {
		t.Fatalf("保存不应失败: %v", err)
	}
	if resp.Name != "Premium" || resp.MultiCarSettings["visit1"]["car1"] != "INT" {
		t.Errorf("保存结果应规范化键名与类型: %+v", resp)
	}
	if _, ok := repo.rules["Premium"]; !ok {
		t.Fatal("规则应写入仓储")
	}

	rules, _ := svc.List(context.Background())
	if len(rules) != 1 || rules[0].IsDefault || rules[0].UpdatedAt == "" {
		t.Errorf("存在自定义规则后不应返回默认规则: %+v", rules)
	}
}

func TestWashRuleService_Upsert_Invalid(t *testing.T) {
	svc, repo := setupTestWashRuleService()

	tests := []struct {
		name string
		rule string
		req  dto.UpsertWashRuleRequest
		want error
	}{
		{"名称为空", " ", dto.UpsertWashRuleRequest{SingleCarPattern: []string{"EXT"}}, ErrWashRuleNameRequired},
		{"规则为空", "Empty", dto.UpsertWashRuleRequest{}, ErrWashRuleEmpty},
		{"访问键错误", "Bad", dto.UpsertWashRuleRequest{MultiCarSettings: map[string]map[string]string{"first": {"car1": "EXT"}}}, ErrWashRuleInvalid},
		{"车辆键错误", "Bad", dto.UpsertWashRuleRequest{MultiCarSettings: map[string]map[string]string{"visit1": {"truck": "EXT"}}}, ErrWashRuleInvalid},
		{"类型错误", "Bad", dto.UpsertWashRuleRequest{MultiCarSettings: map[string]map[string]string{"visit1": {"car1": "WAX"}}}, ErrWashRuleInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			if _, err := svc.Upsert(context.Background(), tt.rule, &req); !errors.Is(err, tt.want) {
				t.Errorf("期望 %v，实际: %v", tt.want, err)
			}
		})
	}
	if len(repo.rules) != 0 {
		t.Errorf("校验失败时不应写入仓储: %d", len(repo.rules))
	}
}

func TestWashRuleService_RuleSet_Cached(t *testing.T) {
	svc, repo := setupTestWashRuleService()
	if _, err := svc.Upsert(context.Background(), "Basic", &dto.UpsertWashRuleRequest{SingleCarPattern: []string{"INT"}}); err != nil {
		t.Fatalf("保存不应失败: %v", err)
	}

	for i := 0; i < 3; i++ {
		set, err := svc.RuleSet(context.Background())
		if err != nil {
			t.Fatalf("加载规则不应失败: %v", err)
		}
		if r := set.Lookup("basic"); r == nil || len(r.SingleCar) != 1 {
			t.Fatalf("应能按小写名称查到规则: %+v", r)
		}
	}
	if repo.listCalls != 1 {
		t.Errorf("缓存有效期内只应查询一次仓储，实际 %d 次", repo.listCalls)
	}

	if _, err := svc.Upsert(context.Background(), "Basic", &dto.UpsertWashRuleRequest{SingleCarPattern: []string{"EXT"}}); err != nil {
		t.Fatalf("保存不应失败: %v", err)
	}
	set, _ := svc.RuleSet(context.Background())
	if r := set.Lookup("Basic"); r == nil || r.SingleCar[0] != "EXT" {
		t.Errorf("更新后缓存应失效: %+v", r)
	}
	if repo.listCalls != 2 {
		t.Errorf("更新后应重新查询仓储，实际 %d 次", repo.listCalls)
	}
}

func TestWashRuleService_LoadDoesNotOverwriteUpsert(t *testing.T) {
	svc, repo := setupTestWashRuleService()
	ctx := context.Background()
	if _, err := svc.Upsert(ctx, "Basic", &dto.UpsertWashRuleRequest{SingleCarPattern: []string{"EXT"}}); err != nil {
		t.Fatalf("保存不应失败: %v", err)
	}

	entered := make(chan struct{})
	release := make(chan struct{})
	repo.afterList = blockFirstCall(entered, release)

	listDone := make(chan struct{})
	go func() {
		defer close(listDone)
		svc.List(ctx)
	}()
	<-entered

	upserted := make(chan error, 1)
	go func() {
		_, err := svc.Upsert(ctx, "Premium", &dto.UpsertWashRuleRequest{SingleCarPattern: []string{"EXT", "INT"}})
		upserted <- err
	}()
	time.Sleep(20 * time.Millisecond)
	close(release)

	<-listDone
	if err := <-upserted; err != nil {
		t.Fatalf("保存不应失败: %v", err)
	}

	rules, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("查询不应失败: %v", err)
	}
	if len(rules) != 2 {
		t.Errorf("新规则写入后不应读到旧缓存，实际 %d 条", len(rules))
	}
}
