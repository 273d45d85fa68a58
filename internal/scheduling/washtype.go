package scheduling

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"washman/backend/internal/model"
)

// WashType 洗车类型
type WashType string

const (
	WashEXT WashType = "EXT" // 仅外部
	WashINT WashType = "INT" // 外部 + 内饰
)

// normalizeWashType 非 INT 的取值一律按 EXT 处理
func normalizeWashType(s string) WashType {
	if strings.EqualFold(strings.TrimSpace(s), string(WashINT)) {
		return WashINT
	}
	return WashEXT
}

// ════════════════════════════════════════════════════════════
// 洗车规则
// ════════════════════════════════════════════════════════════

// BiWeeklySettings 双周套餐设置
type BiWeeklySettings struct {
	Enabled bool `json:"enabled"`
}

// Rule 解析后的套餐规则
type Rule struct {
	Name      string
	SingleCar []WashType
	MultiCar  map[string]map[string]WashType // "visit1" -> "car1" -> EXT/INT
	BiWeekly  BiWeeklySettings
}

// IsBiWeekly 名称含 "bi week"（不区分大小写）或显式开启双周设置
func (r *Rule) IsBiWeekly() bool {
	if r == nil {
		return false
	}
	return r.BiWeekly.Enabled || strings.Contains(strings.ToLower(r.Name), "bi week")
}

// visitConfig 取某次访问的多车配置
func (r *Rule) visitConfig(visit int) (map[string]WashType, bool) {
	cfg, ok := r.MultiCar["visit"+strconv.Itoa(visit)]
	return cfg, ok
}

// RuleFromModel 解析数据库中的规则 JSON
func RuleFromModel(m *model.WashRule) (*Rule, error) {
	rule := &Rule{Name: strings.TrimSpace(m.Name)}

	if len(m.SingleCarPattern) > 0 {
		var pattern []string
		if err := json.Unmarshal(m.SingleCarPattern, &pattern); err != nil {
			return nil, fmt.Errorf("规则 %s single_car_pattern 格式错误: %w", m.Name, err)
		}
		for _, p := range pattern {
			rule.SingleCar = append(rule.SingleCar, normalizeWashType(p))
		}
	}

	if len(m.MultiCarSettings) > 0 {
		var settings map[string]map[string]string
		if err := json.Unmarshal(m.MultiCarSettings, &settings); err != nil {
			return nil, fmt.Errorf("规则 %s multi_car_settings 格式错误: %w", m.Name, err)
		}
		rule.MultiCar = make(map[string]map[string]WashType, len(settings))
		for visit, cars := range settings {
			cfg := make(map[string]WashType, len(cars))
			for car, wt := range cars {
				cfg[strings.ToLower(strings.TrimSpace(car))] = normalizeWashType(wt)
			}
			rule.MultiCar[strings.ToLower(strings.TrimSpace(visit))] = cfg
		}
	}

	if len(m.BiWeeklySettings) > 0 {
		if err := json.Unmarshal(m.BiWeeklySettings, &rule.BiWeekly); err != nil {
			return nil, fmt.Errorf("规则 %s bi_weekly_settings 格式错误: %w", m.Name, err)
		}
	}

	return rule, nil
}

// RuleSet 按套餐名查找规则（去空格、不区分大小写的精确匹配）
type RuleSet struct {
	rules map[string]*Rule
}

// NewRuleSet 从已解析的规则构建
func NewRuleSet(rules ...*Rule) *RuleSet {
	s := &RuleSet{rules: make(map[string]*Rule, len(rules))}
	for _, r := range rules {
		if r == nil {
			continue
		}
		s.rules[ruleKey(r.Name)] = r
	}
	return s
}

// BuildRuleSet 解析数据库规则；格式错误的规则记录告警后跳过（对应套餐回落为 EXT）
func BuildRuleSet(models []model.WashRule, logger *zap.Logger) *RuleSet {
	if logger == nil {
		logger = zap.NewNop()
	}
	rules := make([]*Rule, 0, len(models))
	for i := range models {
		r, err := RuleFromModel(&models[i])
		if err != nil {
			logger.Warn("洗车规则解析失败，该套餐按 EXT 处理", zap.String("rule", models[i].Name), zap.Error(err))
			continue
		}
		rules = append(rules, r)
	}
	return NewRuleSet(rules...)
}

// Lookup 查找套餐规则，未命中返回 nil
func (s *RuleSet) Lookup(pkg string) *Rule {
	if s == nil {
		return nil
	}
	key := ruleKey(pkg)
	if key == "" {
		return nil
	}
	return s.rules[key]
}

// Len 规则数量
func (s *RuleSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

func ruleKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ════════════════════════════════════════════════════════════
// 双周周期
// ════════════════════════════════════════════════════════════

// CyclePhase 双周套餐的周期阶段
type CyclePhase int

const (
	PhaseFirst   CyclePhase = iota // 14 天周期的前半周
	PhaseSecond                    // 后半周
	PhaseUnknown                   // 距上次洗车过久，无法推断
)

func (p CyclePhase) String() string {
	switch p {
	case PhaseFirst:
		return "FIRST"
	case PhaseSecond:
		return "SECOND"
	default:
		return "UNKNOWN"
	}
}

// DefaultUnknownAfterDays 距上次洗车超过该天数视为周期未知
const DefaultUnknownAfterDays = 21

// BiWeeklyPhase 根据目标周之前最近一次已完成洗车推断周期阶段
//
//   - 无历史：从前半周开始
//   - 最近一次洗车所在周含 INT：该周为后半周，否则为前半周
//   - 两周之间相隔奇数周则阶段翻转
//   - 距目标周开始超过 unknownAfterDays 天：UNKNOWN
func BiWeeklyPhase(history []model.WashHistory, customerID string, weekStart time.Time, unknownAfterDays int) (CyclePhase, time.Time) {
	if unknownAfterDays <= 0 {
		unknownAfterDays = DefaultUnknownAfterDays
	}
	weekStart = DateOnly(weekStart)

	var last time.Time
	for i := range history {
		h := &history[i]
		if h.CustomerID != customerID || !h.IsCompleted() {
			continue
		}
		d, ok := h.Date()
		if !ok || !d.Before(weekStart) {
			continue
		}
		if d.After(last) {
			last = d
		}
	}
	if last.IsZero() {
		return PhaseFirst, last
	}
	if weekStart.Sub(last) > time.Duration(unknownAfterDays)*24*time.Hour {
		return PhaseUnknown, last
	}

	lastWeek := WeekStart(last, 0)
	lastPhase := PhaseFirst
	for i := range history {
		h := &history[i]
		if h.CustomerID != customerID || !h.IsCompleted() || !h.IncludedInterior() {
			continue
		}
		if d, ok := h.Date(); ok && !d.Before(lastWeek) && d.Before(lastWeek.AddDate(0, 0, 7)) {
			lastPhase = PhaseSecond
			break
		}
	}

	weeks := int(weekStart.Sub(lastWeek).Hours()/24) / 7
	if weeks%2 == 1 {
		if lastPhase == PhaseFirst {
			return PhaseSecond, last
		}
		return PhaseFirst, last
	}
	return lastPhase, last
}

// ════════════════════════════════════════════════════════════
// DetermineWashType
// ════════════════════════════════════════════════════════════

// WashTypeRequest 计算单次预约洗车类型所需的全部输入
type WashTypeRequest struct {
	Rule        *Rule
	CustomerID  string
	VisitNumber int      // 客户本周访问序号（从 1 开始）
	CarPlates   []string // 客户全部车牌（录入顺序）
	CarPlate    string
	History     []model.WashHistory

	WeekStart        time.Time
	WeekOffset       int
	VisitsPerWeek    int
	UnknownAfterDays int
}

// DetermineWashType 计算洗车类型；规则缺失或异常时一律回落为 EXT
func DetermineWashType(req WashTypeRequest) WashType {
	rule := req.Rule
	if rule == nil {
		return WashEXT
	}

	visit := req.VisitNumber
	if visit < 1 {
		visit = 1
	}
	firstVisit := 1
	if rule.IsBiWeekly() {
		phase, _ := BiWeeklyPhase(req.History, req.CustomerID, req.WeekStart, req.UnknownAfterDays)
		switch phase {
		case PhaseUnknown:
			return WashEXT
		case PhaseSecond:
			visit += req.VisitsPerWeek
			firstVisit += req.VisitsPerWeek
		}
	}

	plates := req.CarPlates
	if len(plates) <= 1 {
		if len(rule.SingleCar) == 0 {
			return WashEXT
		}
		return rule.SingleCar[(visit-1)%len(rule.SingleCar)]
	}

	cfg, ok := rule.visitConfig(visit)
	if !ok {
		return WashEXT
	}
	carIdx := indexOfPlate(plates, req.CarPlate)
	if carIdx < 0 {
		return WashEXT
	}

	n := len(plates)
	firstInt := firstIntRole(cfg, n)
	if firstInt < 0 {
		return carRole(cfg, carIdx+1)
	}

	// INT 轮换：本周第 k 个含 INT 的访问，首个 INT 角色落在 seed+k 号车上
	seed := rotationSeed(req, rule, plates, firstVisit)
	k := 0
	for v := firstVisit; v < visit; v++ {
		if c, ok := rule.visitConfig(v); ok && firstIntRole(c, n) >= 0 {
			k++
		}
	}
	target := (seed + k) % n
	shift := mod(target-firstInt, n)
	role := mod(carIdx-shift, n) + 1
	return carRole(cfg, role)
}

// rotationSeed 下一个应做 INT 的车辆下标
// 优先取目标周之前最近一次 INT 车辆的下一辆；无历史时由周偏移推导
func rotationSeed(req WashTypeRequest, rule *Rule, plates []string, firstVisit int) int {
	n := len(plates)
	weekStart := DateOnly(req.WeekStart)

	var lastDate time.Time
	lastIdx := -1
	for i := range req.History {
		h := &req.History[i]
		if h.CustomerID != req.CustomerID || !h.IsCompleted() || !h.IncludedInterior() {
			continue
		}
		d, ok := h.Date()
		if !ok || (!weekStart.IsZero() && !d.Before(weekStart)) {
			continue
		}
		idx := indexOfPlate(plates, h.CarPlate)
		if idx < 0 {
			continue
		}
		if lastIdx < 0 || d.After(lastDate) {
			lastDate, lastIdx = d, idx
		}
	}
	if lastIdx >= 0 {
		return (lastIdx + 1) % n
	}

	intVisits := 0
	perWeek := req.VisitsPerWeek
	if perWeek < 1 {
		perWeek = 1
	}
	for v := firstVisit; v < firstVisit+perWeek; v++ {
		if c, ok := rule.visitConfig(v); ok && firstIntRole(c, n) >= 0 {
			intVisits++
		}
	}
	return mod(req.WeekOffset*intVisits, n)
}

// firstIntRole 配置中第一个 INT 车位（0 起），没有返回 -1
func firstIntRole(cfg map[string]WashType, n int) int {
	for i := 0; i < n; i++ {
		if cfg["car"+strconv.Itoa(i+1)] == WashINT {
			return i
		}
	}
	return -1
}

func carRole(cfg map[string]WashType, role int) WashType {
	if wt, ok := cfg["car"+strconv.Itoa(role)]; ok {
		return wt
	}
	return WashEXT
}

func indexOfPlate(plates []string, plate string) int {
	p := strings.TrimSpace(plate)
	for i, candidate := range plates {
		if strings.EqualFold(strings.TrimSpace(candidate), p) {
			return i
		}
	}
	return -1
}

func mod(a, n int) int {
	return ((a % n) + n) % n
}

// SortedRuleNames 返回规则名（测试与日志输出用）
func (s *RuleSet) SortedRuleNames() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.rules))
	for _, r := range s.rules {
		names = append(names, r.Name)
	}
	sort.Strings(names)
	return names
}
