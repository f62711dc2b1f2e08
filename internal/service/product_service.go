package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/souqna/marketplace/internal/auth"
	"github.com/souqna/marketplace/internal/domain"
	"github.com/souqna/marketplace/internal/events"
	"github.com/souqna/marketplace/internal/repository"
	apperrors "github.com/souqna/marketplace/pkg/util"
)

const defaultCurrency = "KWD"

// ProductService coordinates listing workflows.
type ProductService struct {
	products   repository.ProductRepository
	users      repository.UserRepository
	blocks     repository.BlockRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// ProductDependencies bundles repositories for product service.
type ProductDependencies struct {
	ProductRepo repository.ProductRepository
	UserRepo    repository.UserRepository
	BlockRepo   repository.BlockRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// ProductInput describes listing creation payload.
type ProductInput struct {
	Title        string
	Description  string
	Price        *float64
	Currency     string
	Category     string
	ListingType  domain.ListingType
	Location     string
	ContactPhone *string
	Images       []string
}

// ProductUpdate carries a partial listing edit.
type ProductUpdate struct {
	Title        *string
	Description  *string
	Price        *float64
	Currency     *string
	Category     *string
	ListingType  *domain.ListingType
	Location     *string
	ContactPhone *string
	Images       []string
	Status       *domain.ProductStatus
}

// ProductQuery describes public listing filters.
type ProductQuery struct {
	Category    *string
	ListingType *domain.ListingType
	MinPrice    *float64
	MaxPrice    *float64
	SearchTerm  *string
	Limit       int
	Offset      int
}

// NewProductService constructs the service.
func NewProductService(deps ProductDependencies) *ProductService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		products:   deps.ProductRepo,
		users:      deps.UserRepo,
		blocks:     deps.BlockRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// Create submits a listing on behalf of the caller.
func (s *ProductService) Create(ctx context.Context, identity *domain.Identity, input ProductInput, settings domain.AppSettings) (*domain.Product, error) {
	if err := auth.RequireRole(identity); err != nil {
		return nil, err
	}
	if err := validateProductInput(input); err != nil {
		return nil, err
	}
	if err := requireOpen(identity, settings); err != nil {
		return nil, err
	}

	owner, err := s.caller(ctx, identity)
	if err != nil {
		return nil, err
	}
	if owner.Phone == nil || domain.NormalizePhone(*owner.Phone) == "" {
		return nil, apperrors.NewValidationCode("PHONE_REQUIRED", "add a phone number to your profile before listing")
	}
	contact := trimmedPtr(input.ContactPhone)
	if contact != nil && !domain.SamePhone(*contact, *owner.Phone) {
		return nil, apperrors.NewValidationCode("PHONE_MISMATCH", "contact phone must match your profile phone")
	}
	if contact == nil {
		contact = owner.Phone
	}

	count, err := s.products.CountActiveByOwner(ctx, owner.ID)
	if err != nil {
		return nil, err
	}
	if settings.ListingCapReached(count) {
		return nil, listingLimitError(settings.MaxProductsPerUser)
	}

	status := domain.ProductStatusInactive
	if owner.Role == domain.RoleAdmin || settings.AutoApprove {
		status = domain.ProductStatusActive
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = defaultCurrency
	}

	product := &domain.Product{
		OwnerID:      owner.ID,
		Title:        strings.TrimSpace(input.Title),
		Description:  strings.TrimSpace(input.Description),
		Price:        *input.Price,
		Currency:     currency,
		Category:     strings.TrimSpace(input.Category),
		ListingType:  input.ListingType,
		Location:     strings.TrimSpace(input.Location),
		ContactPhone: contact,
		Images:       cleanImages(input.Images),
		Status:       status,
	}
	if err := s.products.CreateWithinLimit(ctx, product, settings.MaxProductsPerUser); err != nil {
		if errors.Is(err, repository.ErrListingLimitReached) {
			return nil, listingLimitError(settings.MaxProductsPerUser)
		}
		return nil, err
	}

	publishEvent(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventProductCreated, product.ID, actorFor(identity),
		events.ProductCreatedPayload{OwnerID: product.OwnerID, Title: product.Title, Status: product.Status}))
	return product, nil
}

// Get returns a listing visible to the caller. Hidden listings are reported as not found.
func (s *ProductService) Get(ctx context.Context, identity *domain.Identity, id string) (*domain.Product, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	isOwner := identity != nil && identity.SubjectID == product.OwnerID
	if !product.Status.Public() && !isOwner {
		perms, err := s.permissions(ctx, identity)
		if err != nil {
			return nil, err
		}
		if !perms.Has(domain.CapManageProducts) {
			return nil, apperrors.NewNotFound("product", nil)
		}
	}
	if identity != nil && !isOwner && s.blocks != nil {
		blocked, err := s.blocks.Related(ctx, identity.SubjectID, product.OwnerID)
		if err != nil {
			return nil, err
		}
		if blocked {
			return nil, apperrors.NewNotFound("product", nil)
		}
	}
	return product, nil
}

// List returns active listings, excluding owners in a block relation with the caller.
func (s *ProductService) List(ctx context.Context, identity *domain.Identity, query ProductQuery) ([]domain.Product, error) {
	filter := repository.ProductFilter{
		Statuses:    []domain.ProductStatus{domain.ProductStatusActive},
		Category:    trimmedPtr(query.Category),
		ListingType: query.ListingType,
		MinPrice:    query.MinPrice,
		MaxPrice:    query.MaxPrice,
		SearchTerm:  query.SearchTerm,
		Limit:       query.Limit,
		Offset:      query.Offset,
	}
	if identity != nil {
		filter.HiddenForID = &identity.SubjectID
	}
	return s.products.List(ctx, filter)
}

// ListMine returns the caller's own listings in any non-deleted status.
func (s *ProductService) ListMine(ctx context.Context, identity *domain.Identity, query ProductQuery) ([]domain.Product, error) {
	if err := auth.RequireRole(identity); err != nil {
		return nil, err
	}
	return s.products.List(ctx, repository.ProductFilter{
		OwnerID:     &identity.SubjectID,
		Statuses:    []domain.ProductStatus{domain.ProductStatusInactive, domain.ProductStatusActive, domain.ProductStatusSold},
		Category:    trimmedPtr(query.Category),
		ListingType: query.ListingType,
		SearchTerm:  query.SearchTerm,
		Limit:       query.Limit,
		Offset:      query.Offset,
	})
}

// Update edits a listing. Only the owner or a holder of canManageProducts may edit.
func (s *ProductService) Update(ctx context.Context, identity *domain.Identity, id string, input ProductUpdate, settings domain.AppSettings) (*domain.Product, error) {
	if err := auth.RequireRole(identity); err != nil {
		return nil, err
	}
	if err := requireOpen(identity, settings); err != nil {
		return nil, err
	}
	product, caller, err := s.loadForEdit(ctx, identity, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		product.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		product.Description = strings.TrimSpace(*input.Description)
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.Currency != nil {
		product.Currency = strings.ToUpper(strings.TrimSpace(*input.Currency))
	}
	if input.Category != nil {
		product.Category = strings.TrimSpace(*input.Category)
	}
	if input.ListingType != nil {
		product.ListingType = *input.ListingType
	}
	if input.Location != nil {
		product.Location = strings.TrimSpace(*input.Location)
	}
	if input.Images != nil {
		product.Images = cleanImages(input.Images)
	}
	if err := validateProductInput(ProductInput{
		Title:       product.Title,
		Description: product.Description,
		Price:       &product.Price,
		Category:    product.Category,
		ListingType: product.ListingType,
	}); err != nil {
		return nil, err
	}

	if contact := trimmedPtr(input.ContactPhone); contact != nil {
		owner := caller
		if owner.ID != product.OwnerID {
			if owner, err = s.users.GetByID(ctx, product.OwnerID); err != nil {
				return nil, err
			}
		}
		if owner.Phone == nil || !domain.SamePhone(*contact, *owner.Phone) {
			return nil, apperrors.NewValidationCode("PHONE_MISMATCH", "contact phone must match the owner's profile phone")
		}
		product.ContactPhone = contact
	}

	oldStatus := product.Status
	if input.Status != nil && *input.Status != product.Status {
		next := *input.Status
		switch {
		case !next.Valid():
			return nil, apperrors.NewValidationError("invalid status", map[string]any{"field": "status"})
		case next == domain.ProductStatusDeleted:
			return nil, apperrors.NewValidationError("use DELETE to remove a listing", map[string]any{"field": "status"})
		case next == domain.ProductStatusActive && caller.Role != domain.RoleAdmin && !settings.AutoApprove:
			return nil, apperrors.NewForbidden("listing activation requires approval")
		}
		product.Status = next
	}

	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}
	if oldStatus != product.Status {
		s.publishStatusChange(ctx, identity, product, oldStatus)
	}
	return product, nil
}

// Delete soft-deletes a listing.
func (s *ProductService) Delete(ctx context.Context, identity *domain.Identity, id string, settings domain.AppSettings) error {
	if err := auth.RequireRole(identity); err != nil {
		return err
	}
	if err := requireOpen(identity, settings); err != nil {
		return err
	}
	product, _, err := s.loadForEdit(ctx, identity, id)
	if err != nil {
		return err
	}
	if err := s.products.UpdateStatus(ctx, product.ID, domain.ProductStatusDeleted); err != nil {
		return err
	}
	oldStatus := product.Status
	product.Status = domain.ProductStatusDeleted
	s.publishStatusChange(ctx, identity, product, oldStatus)
	return nil
}

// Approve activates a listing awaiting review.
func (s *ProductService) Approve(ctx context.Context, identity *domain.Identity, id string) (*domain.Product, error) {
	if err := auth.RequireRole(identity, domain.RoleAdmin); err != nil {
		return nil, err
	}
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.Status != domain.ProductStatusInactive {
		return nil, apperrors.NewConflict("only inactive listings can be approved",
			map[string]any{"status": product.Status})
	}
	if err := s.products.UpdateStatus(ctx, product.ID, domain.ProductStatusActive); err != nil {
		return nil, err
	}
	oldStatus := product.Status
	product.Status = domain.ProductStatusActive
	s.publishStatusChange(ctx, identity, product, oldStatus)
	return product, nil
}

// Purge physically removes a listing.
func (s *ProductService) Purge(ctx context.Context, identity *domain.Identity, id string) error {
	if err := auth.RequireRole(identity, domain.RoleAdmin); err != nil {
		return err
	}
	if err := s.products.Purge(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("product", nil)
		}
		return err
	}
	s.logger.Info("purged product", zap.String("product_id", id), zap.String("admin_id", identity.SubjectID))
	return nil
}

func (s *ProductService) load(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("product", nil)
	}
	return product, err
}

// loadForEdit returns a non-deleted listing and the caller's row once the caller passed the
// owner-or-capability gate. The owner id always comes from storage.
func (s *ProductService) loadForEdit(ctx context.Context, identity *domain.Identity, id string) (*domain.Product, *domain.User, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if product.Status == domain.ProductStatusDeleted {
		return nil, nil, apperrors.NewNotFound("product", nil)
	}
	caller, err := s.caller(ctx, identity)
	if err != nil {
		return nil, nil, err
	}
	if err := auth.RequireOwnerOrCapability(identity, product.OwnerID, domain.CapManageProducts, domain.PermissionsFor(caller)); err != nil {
		return nil, nil, err
	}
	return product, caller, nil
}

// caller loads the persisted row of the authenticated user.
func (s *ProductService) caller(ctx context.Context, identity *domain.Identity) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, identity.SubjectID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive() {
		return nil, apperrors.NewForbiddenCode("ACCOUNT_SUSPENDED", "account suspended")
	}
	return user, nil
}

func (s *ProductService) permissions(ctx context.Context, identity *domain.Identity) (domain.PermissionSet, error) {
	if identity == nil {
		return domain.PermissionSet{}, nil
	}
	user, err := s.users.GetByID(ctx, identity.SubjectID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.PermissionSet{}, nil
	}
	if err != nil {
		return nil, err
	}
	return domain.PermissionsFor(user), nil
}

func (s *ProductService) publishStatusChange(ctx context.Context, identity *domain.Identity, product *domain.Product, oldStatus domain.ProductStatus) {
	publishEvent(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventProductStatusChanged, product.ID, actorFor(identity),
		events.ProductStatusChangedPayload{OwnerID: product.OwnerID, OldStatus: oldStatus, NewStatus: product.Status}))
}

func validateProductInput(input ProductInput) error {
	details := map[string]any{}
	if strings.TrimSpace(input.Title) == "" {
		details["title"] = "required"
	}
	if strings.TrimSpace(input.Description) == "" {
		details["description"] = "required"
	}
	if input.Price == nil {
		details["price"] = "required"
	} else if *input.Price < 0 {
		details["price"] = "must be zero or greater"
	}
	if strings.TrimSpace(input.Category) == "" {
		details["category"] = "required"
	}
	if !input.ListingType.Valid() {
		details["listingType"] = "must be SALE, AUCTION or REQUEST"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid listing", details)
	}
	return nil
}

func listingLimitError(limit int) error {
	return apperrors.NewDomainError("LISTING_LIMIT_REACHED", "listing limit reached", http.StatusBadRequest,
		map[string]any{"maxProductsPerUser": limit})
}

func cleanImages(images []string) []string {
	out := make([]string, 0, len(images))
	for _, img := range images {
		if img = strings.TrimSpace(img); img != "" {
			out = append(out, img)
		}
	}
	return out
}
