package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"washman/backend/internal/cache"
	"washman/backend/internal/dto"
	"washman/backend/internal/model"
	"washman/backend/internal/repository"
	"washman/backend/internal/scheduling"
)

// ── 洗车规则模块业务错误 ──

var (
	ErrWashRuleNameRequired = errors.New("套餐名称不能为空")
	ErrWashRuleEmpty        = errors.New("单车模式与多车配置至少填写一项")
	ErrWashRuleInvalid      = errors.New("多车配置格式错误，键应为 visitN / carN，值为 EXT 或 INT")
)

var (
	visitKeyPattern = regexp.MustCompile(`^visit[1-9][0-9]*$`)
	carKeyPattern   = regexp.MustCompile(`^car[1-9][0-9]*$`)
)

// WashRuleService 洗车套餐规则业务接口
type WashRuleService interface {
	// List 列出规则；库中无规则时返回内置默认规则
	List(ctx context.Context) ([]dto.WashRuleResponse, error)
	// RuleSet 供排班引擎使用的规则集
	RuleSet(ctx context.Context) (*scheduling.RuleSet, error)
	// Upsert 新增或覆盖套餐规则
	Upsert(ctx context.Context, name string, req *dto.UpsertWashRuleRequest) (*dto.WashRuleResponse, error)
}

type washRuleService struct {
	mu     sync.Mutex // 串行化回源写缓存与 Upsert
	repo   *repository.Repository
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewWashRuleService 创建 WashRuleService 实例
func NewWashRuleService(repo *repository.Repository, c cache.Cache, ttl time.Duration, logger *zap.Logger) WashRuleService {
	return &washRuleService{repo: repo, cache: c, ttl: ttl, logger: logger}
}

// DefaultWashRules 规则表为空时使用的内置套餐
func DefaultWashRules() []model.WashRule {
	return []model.WashRule{
		{
			Name:             "2 Ext 1 Int",
			SingleCarPattern: datatypes.JSON(`["EXT","EXT","INT"]`),
			MultiCarSettings: datatypes.JSON(`{"visit1":{"car1":"INT","car2":"EXT"},"visit2":{"car1":"EXT","car2":"EXT"},"visit3":{"car1":"EXT","car2":"INT"}}`),
			BiWeeklySettings: datatypes.JSON(`{"enabled":false}`),
		},
		{
			Name:             "3 Ext 1 Int",
			SingleCarPattern: datatypes.JSON(`["EXT","EXT","EXT","INT"]`),
			MultiCarSettings: datatypes.JSON(`{"visit1":{"car1":"INT","car2":"EXT"},"visit2":{"car1":"EXT","car2":"EXT"},"visit3":{"car1":"EXT","car2":"EXT"},"visit4":{"car1":"EXT","car2":"INT"}}`),
			BiWeeklySettings: datatypes.JSON(`{"enabled":false}`),
		},
		{
			Name:             "Ext Only",
			SingleCarPattern: datatypes.JSON(`["EXT"]`),
			MultiCarSettings: datatypes.JSON(`{}`),
			BiWeeklySettings: datatypes.JSON(`{"enabled":false}`),
		},
		{
			Name:             "Bi Week 1 Ext 1 Int",
			SingleCarPattern: datatypes.JSON(`["EXT","INT"]`),
			MultiCarSettings: datatypes.JSON(`{"visit1":{"car1":"EXT","car2":"EXT"},"visit2":{"car1":"INT","car2":"EXT"}}`),
			BiWeeklySettings: datatypes.JSON(`{"enabled":true}`),
		},
	}
}

// ────────────────────── 读取 ──────────────────────

// load 读取规则（缓存 → 数据库 → 默认规则），第二个返回值表示是否为默认规则
func (s *washRuleService) load(ctx context.Context) ([]model.WashRule, bool, error) {
	var cached []model.WashRule
	hit, err := s.cache.Get(ctx, cache.KeyWashRules, &cached)
	if err != nil {
		s.logger.Warn("读取洗车规则缓存失败", zap.Error(err))
	}
	if hit && len(cached) > 0 {
		return cached, false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if hit, err := s.cache.Get(ctx, cache.KeyWashRules, &cached); err == nil && hit && len(cached) > 0 {
		return cached, false, nil
	}

	rules, err := s.repo.WashRule.List(ctx)
	if err != nil {
		s.logger.Error("查询洗车规则失败", zap.Error(err))
		return nil, false, err
	}
	if len(rules) == 0 {
		s.logger.Info("洗车规则表为空，使用内置默认规则")
		return DefaultWashRules(), true, nil
	}

	if err := s.cache.Set(ctx, cache.KeyWashRules, rules, s.ttl); err != nil {
		s.logger.Warn("写入洗车规则缓存失败", zap.Error(err))
	}
	return rules, false, nil
}

func (s *washRuleService) List(ctx context.Context) ([]dto.WashRuleResponse, error) {
	rules, isDefault, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]dto.WashRuleResponse, 0, len(rules))
	for i := range rules {
		resp, err := toWashRuleResponse(&rules[i])
		if err != nil {
			s.logger.Warn("洗车规则格式错误", zap.String("rule", rules[i].Name), zap.Error(err))
			continue
		}
		resp.IsDefault = isDefault
		result = append(result, *resp)
	}
	return result, nil
}

func (s *washRuleService) RuleSet(ctx context.Context) (*scheduling.RuleSet, error) {
	rules, _, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	set := scheduling.BuildRuleSet(rules, s.logger)
	s.logger.Debug("洗车规则已加载", zap.Strings("rules", set.SortedRuleNames()))
	return set, nil
}

// ────────────────────── Upsert ──────────────────────

func (s *washRuleService) Upsert(ctx context.Context, name string, req *dto.UpsertWashRuleRequest) (*dto.WashRuleResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrWashRuleNameRequired
	}
	if len(req.SingleCarPattern) == 0 && len(req.MultiCarSettings) == 0 {
		return nil, ErrWashRuleEmpty
	}

	multi := make(map[string]map[string]string, len(req.MultiCarSettings))
	for visit, cars := range req.MultiCarSettings {
		vk := strings.ToLower(strings.TrimSpace(visit))
		if !visitKeyPattern.MatchString(vk) {
			return nil, ErrWashRuleInvalid
		}
		cfg := make(map[string]string, len(cars))
		for car, wt := range cars {
			ck := strings.ToLower(strings.TrimSpace(car))
			wt = strings.ToUpper(strings.TrimSpace(wt))
			if !carKeyPattern.MatchString(ck) || (wt != string(scheduling.WashEXT) && wt != string(scheduling.WashINT)) {
				return nil, ErrWashRuleInvalid
			}
			cfg[ck] = wt
		}
		multi[vk] = cfg
	}

	pattern := req.SingleCarPattern
	if pattern == nil {
		pattern = []string{}
	}
	single, err := json.Marshal(pattern)
	if err != nil {
		return nil, fmt.Errorf("序列化单车模式失败: %w", err)
	}
	multiJSON, err := json.Marshal(multi)
	if err != nil {
		return nil, fmt.Errorf("序列化多车配置失败: %w", err)
	}
	biWeekly, err := json.Marshal(req.BiWeeklySettings)
	if err != nil {
		return nil, fmt.Errorf("序列化双周设置失败: %w", err)
	}

	rule := &model.WashRule{
		Name:             name,
		SingleCarPattern: datatypes.JSON(single),
		MultiCarSettings: datatypes.JSON(multiJSON),
		BiWeeklySettings: datatypes.JSON(biWeekly),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.WashRule.Upsert(ctx, rule); err != nil {
		s.logger.Error("保存洗车规则失败", zap.String("rule", name), zap.Error(err))
		return nil, err
	}
	if err := s.cache.Delete(ctx, cache.KeyWashRules); err != nil {
		s.logger.Warn("清除洗车规则缓存失败", zap.Error(err))
	}

	s.logger.Info("洗车规则已更新", zap.String("rule", name))
	return toWashRuleResponse(rule)
}

// ── 辅助函数 ──

func toWashRuleResponse(rule *model.WashRule) (*dto.WashRuleResponse, error) {
	resp := &dto.WashRuleResponse{
		Name:             rule.Name,
		SingleCarPattern: []string{},
		MultiCarSettings: map[string]map[string]string{},
	}
	if len(rule.SingleCarPattern) > 0 {
		if err := json.Unmarshal(rule.SingleCarPattern, &resp.SingleCarPattern); err != nil {
			return nil, err
		}
	}
	if len(rule.MultiCarSettings) > 0 {
		if err := json.Unmarshal(rule.MultiCarSettings, &resp.MultiCarSettings); err != nil {
			return nil, err
		}
	}
	if len(rule.BiWeeklySettings) > 0 {
		if err := json.Unmarshal(rule.BiWeeklySettings, &resp.BiWeeklySettings); err != nil {
			return nil, err
		}
	}
	if !rule.UpdatedAt.IsZero() {
		resp.UpdatedAt = rule.UpdatedAt.Format(time.RFC3339)
	}
	return resp, nil
}
