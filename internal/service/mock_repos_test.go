package service

import (
	"context"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"gorm.io/gorm"

	"washman/backend/internal/model"
	"washman/backend/internal/repository"
)

// ── Mock CustomerRepository ──

type mockCustomerRepo struct {
	customers []model.Customer
}

func (m *mockCustomerRepo) List(_ context.Context) ([]model.Customer, error) {
	return append([]model.Customer(nil), m.customers...), nil
}

func (m *mockCustomerRepo) GetByID(_ context.Context, id string) (*model.Customer, error) {
	for i := range m.customers {
		if m.customers[i].CustomerID == id {
			c := m.customers[i]
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock WorkerRepository ──

type mockWorkerRepo struct {
	workers []model.Worker
}

func (m *mockWorkerRepo) List(_ context.Context) ([]model.Worker, error) {
	return append([]model.Worker(nil), m.workers...), nil
}

func (m *mockWorkerRepo) ListActive(_ context.Context) ([]model.Worker, error) {
	var result []model.Worker
	for _, w := range m.workers {
		if w.IsActive() {
			result = append(result, w)
		}
	}
	return result, nil
}

func (m *mockWorkerRepo) GetByID(_ context.Context, id string) (*model.Worker, error) {
	for i := range m.workers {
		if m.workers[i].WorkerID == id {
			w := m.workers[i]
			return &w, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWorkerRepo) GetByName(_ context.Context, name string) (*model.Worker, error) {
	for i := range m.workers {
		if strings.EqualFold(m.workers[i].Name, name) {
			w := m.workers[i]
			return &w, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock WashHistoryRepository ──

type mockHistoryRepo struct {
	records   []model.WashHistory
	createErr error
}

func (m *mockHistoryRepo) List(_ context.Context) ([]model.WashHistory, error) {
	return append([]model.WashHistory(nil), m.records...), nil
}

func (m *mockHistoryRepo) ListByCustomer(_ context.Context, customerID string) ([]model.WashHistory, error) {
	var result []model.WashHistory
	for _, h := range m.records {
		if h.CustomerID == customerID {
			result = append(result, h)
		}
	}
	return result, nil
}

func (m *mockHistoryRepo) Create(_ context.Context, record *model.WashHistory) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.records = append(m.records, *record)
	return nil
}

// ── Mock ScheduledTaskRepository ──

type mockTaskRepo struct {
	tasks        []model.ScheduledTask
	replaceErr   error
	replaceCalls int
	afterList    func() // 读取完成、返回之前调用
}

func (m *mockTaskRepo) List(_ context.Context) ([]model.ScheduledTask, error) {
	result := append([]model.ScheduledTask(nil), m.tasks...)
	if m.afterList != nil {
		m.afterList()
	}
	return result, nil
}

func (m *mockTaskRepo) ListByWorker(_ context.Context, workerID string) ([]model.ScheduledTask, error) {
	var result []model.ScheduledTask
	for _, t := range m.tasks {
		if t.WorkerID == workerID {
			result = append(result, t)
		}
	}
	return result, nil
}

func (m *mockTaskRepo) GetByID(_ context.Context, id string) (*model.ScheduledTask, error) {
	for i := range m.tasks {
		if m.tasks[i].TaskID == id {
			t := m.tasks[i]
			return &t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTaskRepo) ReplaceAll(_ context.Context, tasks []model.ScheduledTask) error {
	m.replaceCalls++
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.tasks = append([]model.ScheduledTask(nil), tasks...)
	return nil
}

func (m *mockTaskRepo) Delete(_ context.Context, id string) error {
	for i := range m.tasks {
		if m.tasks[i].TaskID == id {
			m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// byID 测试断言辅助
func (m *mockTaskRepo) byID(id string) *model.ScheduledTask {
	for i := range m.tasks {
		if m.tasks[i].TaskID == id {
			return &m.tasks[i]
		}
	}
	return nil
}

// ── Mock WashRuleRepository ──

type mockWashRuleRepo struct {
	rules     map[string]model.WashRule
	listCalls int
	afterList func()
}

func newMockWashRuleRepo() *mockWashRuleRepo {
	return &mockWashRuleRepo{rules: make(map[string]model.WashRule)}
}

func (m *mockWashRuleRepo) List(_ context.Context) ([]model.WashRule, error) {
	m.listCalls++
	names := make([]string, 0, len(m.rules))
	for name := range m.rules {
		names = append(names, name)
	}
	sort.Strings(names)
	result := make([]model.WashRule, 0, len(names))
	for _, name := range names {
		result = append(result, m.rules[name])
	}
	if m.afterList != nil {
		m.afterList()
	}
	return result, nil
}

func (m *mockWashRuleRepo) GetByName(_ context.Context, name string) (*model.WashRule, error) {
	if r, ok := m.rules[name]; ok {
		return &r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWashRuleRepo) Upsert(_ context.Context, rule *model.WashRule) error {
	rule.UpdatedAt = time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	m.rules[rule.Name] = *rule
	return nil
}

// blockFirstCall 首次调用时关闭 entered 并阻塞到 release 关闭，之后的调用直接返回
func blockFirstCall(entered chan<- struct{}, release <-chan struct{}) func() {
	var calls int32
	return func() {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(entered)
			<-release
		}
	}
}

// ── 聚合 ──

type mockRepos struct {
	customers *mockCustomerRepo
	workers   *mockWorkerRepo
	history   *mockHistoryRepo
	tasks     *mockTaskRepo
	rules     *mockWashRuleRepo
}

func newMockRepos() *mockRepos {
	return &mockRepos{
		customers: &mockCustomerRepo{},
		workers:   &mockWorkerRepo{},
		history:   &mockHistoryRepo{},
		tasks:     &mockTaskRepo{},
		rules:     newMockWashRuleRepo(),
	}
}

func (m *mockRepos) repository() *repository.Repository {
	return &repository.Repository{
		Customer:      m.customers,
		Worker:        m.workers,
		WashHistory:   m.history,
		ScheduledTask: m.tasks,
		WashRule:      m.rules,
	}
}
