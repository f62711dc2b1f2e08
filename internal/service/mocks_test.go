package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/souqna/marketplace/internal/domain"
	"github.com/souqna/marketplace/internal/repository"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	if user.ID == "" && args.Error(0) == nil {
		user.ID = "new-user"
	}
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*domain.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*domain.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	args := m.Called(ctx, phone)
	if u, ok := args.Get(0).(*domain.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	args := m.Called(ctx, filter)
	users, _ := args.Get(0).([]domain.User)
	return users, args.Error(1)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) CountActiveByOwner(ctx context.Context, ownerID string) (int, error) {
	args := m.Called(ctx, ownerID)
	return args.Int(0), args.Error(1)
}

func (m *MockProductRepository) CreateWithinLimit(ctx context.Context, product *domain.Product, limit int) error {
	args := m.Called(ctx, product, limit)
	if args.Error(0) == nil {
		product.ID = "new-product"
	}
	return args.Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) UpdateStatus(ctx context.Context, id string, status domain.ProductStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*domain.Product); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, error) {
	args := m.Called(ctx, filter)
	products, _ := args.Get(0).([]domain.Product)
	return products, args.Error(1)
}

func (m *MockProductRepository) Purge(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) Create(ctx context.Context, report *domain.ContentReport) error {
	args := m.Called(ctx, report)
	if args.Error(0) == nil {
		report.ID = "new-report"
	}
	return args.Error(0)
}

func (m *MockReportRepository) GetByID(ctx context.Context, id string) (*domain.ContentReport, error) {
	args := m.Called(ctx, id)
	if r, ok := args.Get(0).(*domain.ContentReport); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReportRepository) HasOpenReport(ctx context.Context, reporterID string, contentType domain.ContentType, contentID string) (bool, error) {
	args := m.Called(ctx, reporterID, contentType, contentID)
	return args.Bool(0), args.Error(1)
}

func (m *MockReportRepository) List(ctx context.Context, filter repository.ReportFilter) ([]domain.ContentReport, error) {
	args := m.Called(ctx, filter)
	reports, _ := args.Get(0).([]domain.ContentReport)
	return reports, args.Error(1)
}

func (m *MockReportRepository) Update(ctx context.Context, report *domain.ContentReport) error {
	return m.Called(ctx, report).Error(0)
}

func (m *MockReportRepository) UpdateWithAction(ctx context.Context, report *domain.ContentReport, action *domain.ModerationAction) error {
	return m.Called(ctx, report, action).Error(0)
}

type MockModerationActionRepository struct {
	mock.Mock
}

func (m *MockModerationActionRepository) ListByReport(ctx context.Context, reportID string) ([]domain.ModerationAction, error) {
	args := m.Called(ctx, reportID)
	actions, _ := args.Get(0).([]domain.ModerationAction)
	return actions, args.Error(1)
}

type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) Get(ctx context.Context) (*domain.AppSettings, error) {
	args := m.Called(ctx)
	if s, ok := args.Get(0).(*domain.AppSettings); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSettingsRepository) Save(ctx context.Context, settings *domain.AppSettings) error {
	return m.Called(ctx, settings).Error(0)
}

type MockBlockRepository struct {
	mock.Mock
}

func (m *MockBlockRepository) Create(ctx context.Context, block *domain.BlockedUser) error {
	return m.Called(ctx, block).Error(0)
}

func (m *MockBlockRepository) Delete(ctx context.Context, blockedByID, userID string) error {
	return m.Called(ctx, blockedByID, userID).Error(0)
}

func (m *MockBlockRepository) Related(ctx context.Context, a, b string) (bool, error) {
	args := m.Called(ctx, a, b)
	return args.Bool(0), args.Error(1)
}

func (m *MockBlockRepository) ListByBlocker(ctx context.Context, blockedByID string) ([]domain.BlockedUser, error) {
	args := m.Called(ctx, blockedByID)
	blocks, _ := args.Get(0).([]domain.BlockedUser)
	return blocks, args.Error(1)
}

type MockPasswordResetRepository struct {
	mock.Mock
}

func (m *MockPasswordResetRepository) Create(ctx context.Context, token *domain.PasswordResetToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockPasswordResetRepository) GetByToken(ctx context.Context, token string) (*domain.PasswordResetToken, error) {
	args := m.Called(ctx, token)
	if t, ok := args.Get(0).(*domain.PasswordResetToken); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPasswordResetRepository) MarkUsed(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPasswordResetRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func floatPtr(f float64) *float64 { return &f }

func identityOf(u *domain.User) *domain.Identity {
	return &domain.Identity{SubjectID: u.ID, Email: u.Email, Role: u.Role}
}
