package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/souqna/marketplace/internal/domain"
	"github.com/souqna/marketplace/internal/events"
	"github.com/souqna/marketplace/internal/repository"
	apperrors "github.com/souqna/marketplace/pkg/util"
)

type productFixture struct {
	svc      *ProductService
	products *MockProductRepository
	users    *MockUserRepository
	blocks   *MockBlockRepository
}

func newProductFixture() productFixture {
	f := productFixture{
		products: new(MockProductRepository),
		users:    new(MockUserRepository),
		blocks:   new(MockBlockRepository),
	}
	f.svc = NewProductService(ProductDependencies{
		ProductRepo: f.products,
		UserRepo:    f.users,
		BlockRepo:   f.blocks,
		Dispatcher:  events.NewInMemoryDispatcher(),
	})
	return f
}

func seller() *domain.User {
	return &domain.User{
		ID:     "seller-1",
		Email:  "seller@example.com",
		Phone:  strPtr("55551234"),
		Role:   domain.RoleUser,
		Status: domain.UserStatusActive,
	}
}

func adminUser() *domain.User {
	return &domain.User{
		ID:     "admin-1",
		Email:  "admin@example.com",
		Phone:  strPtr("99998888"),
		Role:   domain.RoleAdmin,
		Status: domain.UserStatusActive,
	}
}

func validListing() ProductInput {
	return ProductInput{
		Title:       "Road bike",
		Description: "Carbon frame, barely used",
		Price:       floatPtr(120),
		Category:    "sports",
		ListingType: domain.ListingTypeSale,
	}
}

func settingsWithCap(limit int, autoApprove bool) domain.AppSettings {
	s := domain.DefaultSettings()
	s.MaxProductsPerUser = limit
	s.AutoApprove = autoApprove
	return s
}

func errCode(err error) string {
	de := apperrors.ToDomainError(err)
	if de == nil {
		return ""
	}
	return de.Code
}

func TestCreateProduct_ContactPhoneMustMatchProfile(t *testing.T) {
	f := newProductFixture()
	u := seller()
	f.users.On("GetByID", mock.Anything, u.ID).Return(u, nil)

	input := validListing()
	input.ContactPhone = strPtr("+965 5555 9999")
	_, err := f.svc.Create(context.Background(), identityOf(u), input, settingsWithCap(10, false))
	require.Error(t, err)
	assert.Equal(t, "PHONE_MISMATCH", errCode(err))
	assert.True(t, apperrors.IsStatus(err, http.StatusBadRequest))
	f.products.AssertNotCalled(t, "CreateWithinLimit", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateProduct_ContactPhoneFormattingIgnored(t *testing.T) {
	for _, phone := range []string{"+965 5555 1234", "965-5555-1234", "00965 55551234", "5555 1234"} {
		f := newProductFixture()
		u := seller()
		f.users.On("GetByID", mock.Anything, u.ID).Return(u, nil)
		f.products.On("CountActiveByOwner", mock.Anything, u.ID).Return(0, nil)
		f.products.On("CreateWithinLimit", mock.Anything, mock.AnythingOfType("*domain.Product"), 10).Return(nil)

		input := validListing()
		input.ContactPhone = strPtr(phone)
		product, err := f.svc.Create(context.Background(), identityOf(u), input, settingsWithCap(10, false))
		require.NoError(t, err, phone)
		assert.Equal(t, phone, *product.ContactPhone)
	}
}

func TestCreateProduct_PhoneRequired(t *testing.T) {
	f := newProductFixture()
	u := seller()
	u.Phone = nil
	f.users.On("GetByID", mock.Anything, u.ID).Return(u, nil)

	_, err := f.svc.Create(context.Background(), identityOf(u), validListing(), settingsWithCap(10, false))
	assert.Equal(t, "PHONE_REQUIRED", errCode(err))
}

func TestCreateProduct_ValidationFails(t *testing.T) {
	f := newProductFixture()
	u := seller()

	input := validListing()
	input.Title = " "
	input.Price = floatPtr(-1)
	input.ListingType = "SWAP"
	_, err := f.svc.Create(context.Background(), identityOf(u), input, settingsWithCap(10, false))
	require.Error(t, err)
	de := apperrors.ToDomainError(err)
	assert.Equal(t, http.StatusBadRequest, de.HTTPStatus)
	assert.Contains(t, de.Details, "title")
	assert.Contains(t, de.Details, "price")
	assert.Contains(t, de.Details, "listingType")
}

func TestCreateProduct_ListingCap(t *testing.T) {
	t.Run("cap reached", func(t *testing.T) {
		f := newProductFixture()
		u := seller()
		f.users.On("GetByID", mock.Anything, u.ID).Return(u, nil)
		f.products.On("CountActiveByOwner", mock.Anything, u.ID).Return(10, nil)

		_, err := f.svc.Create(context.Background(), identityOf(u), validListing(), settingsWithCap(10, false))
		assert.Equal(t, "LISTING_LIMIT_REACHED", errCode(err))
		assert.True(t, apperrors.IsStatus(err, http.StatusBadRequest))
	})

	t.Run("raised cap leaves listing pending", func(t *testing.T) {
		f := newProductFixture()
		u := seller()
		f.users.On("GetByID", mock.Anything, u.ID).Return(u, nil)
		f.products.On("CountActiveByOwner", mock.Anything, u.ID).Return(10, nil)
		f.products.On("CreateWithinLimit", mock.Anything, mock.AnythingOfType("*domain.Product"), 15).Return(nil)

		product, err := f.svc.Create(context.Background(), identityOf(u), validListing(), settingsWithCap(15, false))
		require.NoError(t, err)
		assert.Equal(t, domain.ProductStatusInactive, product.Status)
		assert.Equal(t, u.ID, product.OwnerID)
		assert.Equal(t, "55551234", *product.ContactPhone)
	})

	t.Run("auto approve activates", func(t *testing.T) {
		f := newProductFixture()
		u := seller()
		f.users.On("GetByID", mock.Anything, u.ID).Return(u, nil)
		f.products.On("CountActiveByOwner", mock.Anything, u.ID).Return(10, nil)
		f.products.On("CreateWithinLimit", mock.Anything, mock.AnythingOfType("*domain.Product"), 15).Return(nil)

		product, err := f.svc.Create(context.Background(), identityOf(u), validListing(), settingsWithCap(15, true))
		require.NoError(t, err)
		assert.Equal(t, domain.ProductStatusActive, product.Status)
	})

	t.Run("admin listings are active", func(t *testing.T) {
		f := newProductFixture()
		a := adminUser()
		f.users.On("GetByID", mock.Anything, a.ID).Return(a, nil)
		f.products.On("CountActiveByOwner", mock.Anything, a.ID).Return(10, nil)
		f.products.On("CreateWithinLimit", mock.Anything, mock.AnythingOfType("*domain.Product"), 15).Return(nil)

		product, err := f.svc.Create(context.Background(), identityOf(a), validListing(), settingsWithCap(15, false))
		require.NoError(t, err)
		assert.Equal(t, domain.ProductStatusActive, product.Status)
	})

	t.Run("concurrent submission loses the race", func(t *testing.T) {
		f := newProductFixture()
		u := seller()
		f.users.On("GetByID", mock.Anything, u.ID).Return(u, nil)
		f.products.On("CountActiveByOwner", mock.Anything, u.ID).Return(9, nil)
		f.products.On("CreateWithinLimit", mock.Anything, mock.Anything, 10).Return(repository.ErrListingLimitReached)

		_, err := f.svc.Create(context.Background(), identityOf(u), validListing(), settingsWithCap(10, false))
		assert.Equal(t, "LISTING_LIMIT_REACHED", errCode(err))
	})
}

func TestCreateProduct_MaintenanceMode(t *testing.T) {
	f := newProductFixture()
	u := seller()
	settings := settingsWithCap(10, false)
	settings.MaintenanceMode = true

	_, err := f.svc.Create(context.Background(), identityOf(u), validListing(), settings)
	assert.True(t, apperrors.IsStatus(err, http.StatusServiceUnavailable))
	assert.Equal(t, "MAINTENANCE", errCode(err))
}

func TestCreateProduct_RequiresIdentity(t *testing.T) {
	f := newProductFixture()
	_, err := f.svc.Create(context.Background(), nil, validListing(), settingsWithCap(10, false))
	assert.True(t, apperrors.IsStatus(err, http.StatusUnauthorized))
}

func ownedProduct(ownerID string, status domain.ProductStatus) *domain.Product {
	return &domain.Product{
		ID:          "product-1",
		OwnerID:     ownerID,
		Title:       "Road bike",
		Description: "Carbon frame",
		Price:       120,
		Currency:    "KWD",
		Category:    "sports",
		ListingType: domain.ListingTypeSale,
		Status:      status,
	}
}

func TestUpdateProduct_OwnershipGate(t *testing.T) {
	owner := seller()
	stranger := &domain.User{ID: "stranger", Role: domain.RoleShopOwner, Status: domain.UserStatusActive}
	settings := settingsWithCap(10, false)

	t.Run("stranger is forbidden", func(t *testing.T) {
		f := newProductFixture()
		f.products.On("GetByID", mock.Anything, "product-1").Return(ownedProduct(owner.ID, domain.ProductStatusActive), nil)
		f.users.On("GetByID", mock.Anything, stranger.ID).Return(stranger, nil)

		_, err := f.svc.Update(context.Background(), identityOf(stranger), "product-1", ProductUpdate{Title: strPtr("mine now")}, settings)
		assert.True(t, apperrors.IsStatus(err, http.StatusForbidden))

		err = f.svc.Delete(context.Background(), identityOf(stranger), "product-1", settings)
		assert.True(t, apperrors.IsStatus(err, http.StatusForbidden))
		f.products.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		f.products.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("owner may edit and delete", func(t *testing.T) {
		f := newProductFixture()
		f.products.On("GetByID", mock.Anything, "product-1").Return(ownedProduct(owner.ID, domain.ProductStatusActive), nil)
		f.users.On("GetByID", mock.Anything, owner.ID).Return(owner, nil)
		f.products.On("Update", mock.Anything, mock.AnythingOfType("*domain.Product")).Return(nil)
		f.products.On("UpdateStatus", mock.Anything, "product-1", domain.ProductStatusDeleted).Return(nil)

		product, err := f.svc.Update(context.Background(), identityOf(owner), "product-1",
			ProductUpdate{Title: strPtr("Gravel bike"), Status: statusPtr(domain.ProductStatusSold)}, settings)
		require.NoError(t, err)
		assert.Equal(t, "Gravel bike", product.Title)
		assert.Equal(t, domain.ProductStatusSold, product.Status)

		require.NoError(t, f.svc.Delete(context.Background(), identityOf(owner), "product-1", settings))
	})

	t.Run("capability holder may edit", func(t *testing.T) {
		f := newProductFixture()
		moderator := &domain.User{ID: "mod", Role: domain.RoleUser, Status: domain.UserStatusActive,
			Permissions: domain.PermissionOverrides{CanManageProducts: boolPtr(true)}}
		f.products.On("GetByID", mock.Anything, "product-1").Return(ownedProduct(owner.ID, domain.ProductStatusActive), nil)
		f.users.On("GetByID", mock.Anything, moderator.ID).Return(moderator, nil)
		f.products.On("Update", mock.Anything, mock.AnythingOfType("*domain.Product")).Return(nil)

		product, err := f.svc.Update(context.Background(), identityOf(moderator), "product-1", ProductUpdate{Title: strPtr("Fixed title")}, settings)
		require.NoError(t, err)
		assert.Equal(t, owner.ID, product.OwnerID)
	})

	t.Run("owner cannot self-activate without auto approve", func(t *testing.T) {
		f := newProductFixture()
		f.products.On("GetByID", mock.Anything, "product-1").Return(ownedProduct(owner.ID, domain.ProductStatusInactive), nil)
		f.users.On("GetByID", mock.Anything, owner.ID).Return(owner, nil)

		_, err := f.svc.Update(context.Background(), identityOf(owner), "product-1",
			ProductUpdate{Status: statusPtr(domain.ProductStatusActive)}, settings)
		assert.True(t, apperrors.IsStatus(err, http.StatusForbidden))
	})
}

func TestGetProduct_Visibility(t *testing.T) {
	owner := seller()
	viewer := &domain.User{ID: "viewer", Role: domain.RoleUser, Status: domain.UserStatusActive}

	t.Run("inactive hidden from others", func(t *testing.T) {
		f := newProductFixture()
		f.products.On("GetByID", mock.Anything, "product-1").Return(ownedProduct(owner.ID, domain.ProductStatusInactive), nil)
		f.users.On("GetByID", mock.Anything, viewer.ID).Return(viewer, nil)

		_, err := f.svc.Get(context.Background(), identityOf(viewer), "product-1")
		assert.True(t, apperrors.IsStatus(err, http.StatusNotFound))

		_, err = f.svc.Get(context.Background(), nil, "product-1")
		assert.True(t, apperrors.IsStatus(err, http.StatusNotFound))
	})

	t.Run("inactive visible to owner", func(t *testing.T) {
		f := newProductFixture()
		f.products.On("GetByID", mock.Anything, "product-1").Return(ownedProduct(owner.ID, domain.ProductStatusInactive), nil)

		product, err := f.svc.Get(context.Background(), identityOf(owner), "product-1")
		require.NoError(t, err)
		assert.Equal(t, "product-1", product.ID)
	})

	t.Run("blocked owner hidden", func(t *testing.T) {
		f := newProductFixture()
		f.products.On("GetByID", mock.Anything, "product-1").Return(ownedProduct(owner.ID, domain.ProductStatusActive), nil)
		f.blocks.On("Related", mock.Anything, viewer.ID, owner.ID).Return(true, nil)

		_, err := f.svc.Get(context.Background(), identityOf(viewer), "product-1")
		assert.True(t, apperrors.IsStatus(err, http.StatusNotFound))
	})
}

func TestListProducts_HidesBlockedOwners(t *testing.T) {
	f := newProductFixture()
	viewer := &domain.Identity{SubjectID: "viewer", Role: domain.RoleUser}
	f.products.On("List", mock.Anything, mock.MatchedBy(func(filter repository.ProductFilter) bool {
		return filter.HiddenForID != nil && *filter.HiddenForID == "viewer" &&
			len(filter.Statuses) == 1 && filter.Statuses[0] == domain.ProductStatusActive
	})).Return([]domain.Product{*ownedProduct("x", domain.ProductStatusActive)}, nil)

	products, err := f.svc.List(context.Background(), viewer, ProductQuery{})
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestApproveAndPurgeAreAdminOnly(t *testing.T) {
	f := newProductFixture()
	owner := seller()

	_, err := f.svc.Approve(context.Background(), identityOf(owner), "product-1")
	assert.True(t, apperrors.IsStatus(err, http.StatusForbidden))
	assert.True(t, apperrors.IsStatus(f.svc.Purge(context.Background(), identityOf(owner), "product-1"), http.StatusForbidden))

	a := adminUser()
	f.products.On("GetByID", mock.Anything, "product-1").Return(ownedProduct(owner.ID, domain.ProductStatusInactive), nil)
	f.products.On("UpdateStatus", mock.Anything, "product-1", domain.ProductStatusActive).Return(nil)
	product, err := f.svc.Approve(context.Background(), identityOf(a), "product-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ProductStatusActive, product.Status)
}

func statusPtr(s domain.ProductStatus) *domain.ProductStatus { return &s }
