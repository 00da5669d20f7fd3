package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/autodealer/backend/internal/domain/catalog"
	"github.com/autodealer/backend/internal/domain/identity"
	"github.com/autodealer/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FeaturedLimit is the number of cars on the home page
const FeaturedLimit = 6

// CarServiceConfig holds configuration for the car service
type CarServiceConfig struct {
	// ListingTTL is how long public catalog pages stay cached
	ListingTTL time.Duration
	// UploadURLExpiry is the lifetime of presigned upload URLs
	UploadURLExpiry time.Duration
	// DealerName is printed on quotes
	DealerName string
}

// DefaultCarServiceConfig returns the default configuration
func DefaultCarServiceConfig() CarServiceConfig {
	return CarServiceConfig{
		ListingTTL:      5 * time.Minute,
		UploadURLExpiry: 15 * time.Minute,
		DealerName:      "Dealership",
	}
}

// CarService handles the vehicle catalog
type CarService struct {
	carRepo        catalog.CarRepository
	cache          ListingCache
	storage        ObjectStorageService
	renderer       QuoteRenderer
	eventPublisher shared.EventPublisher
	config         CarServiceConfig
	logger         *zap.Logger
}

// NewCarService creates a new CarService. cache, storage and renderer are optional.
func NewCarService(carRepo catalog.CarRepository, config CarServiceConfig, logger *zap.Logger) *CarService {
	return &CarService{
		carRepo: carRepo,
		config:  config,
		logger:  logger,
	}
}

// SetCache enables caching of public listings
func (s *CarService) SetCache(cache ListingCache) { s.cache = cache }

// SetStorage enables image uploads
func (s *CarService) SetStorage(storage ObjectStorageService) { s.storage = storage }

// SetRenderer enables PDF quotes
func (s *CarService) SetRenderer(renderer QuoteRenderer) { s.renderer = renderer }

// SetEventPublisher sets the event publisher for publishing domain events
func (s *CarService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// ListCars searches the catalog. Staff get the internal fields and bypass the cache.
func (s *CarService) ListCars(ctx context.Context, actor identity.Actor, filter CarListFilter) (*CarListResult, error) {
	domainFilter := toDomainCarFilter(filter)
	staff := actor.IsStaff()
	if staff {
		return s.listFromStore(ctx, domainFilter, true)
	}

	key := "list:" + listingCacheKey(domainFilter)
	var cached CarListResult
	if s.readCache(ctx, key, &cached) {
		return &cached, nil
	}
	result, err := s.listFromStore(ctx, domainFilter, false)
	if err != nil {
		return nil, err
	}
	s.writeCache(ctx, key, result)
	return result, nil
}

// ListFeatured returns available featured cars, newest first
func (s *CarService) ListFeatured(ctx context.Context) ([]CarResponse, error) {
	const key = "featured"
	var cached []CarResponse
	if s.readCache(ctx, key, &cached) {
		return cached, nil
	}

	featured := true
	filter := catalog.CarFilter{
		Filter:   shared.Filter{Page: 1, PageSize: FeaturedLimit, OrderBy: "created_at", OrderDir: "desc"},
		Status:   catalog.CarStatusAvailable,
		Featured: &featured,
	}
	result, err := s.listFromStore(ctx, filter, false)
	if err != nil {
		return nil, err
	}
	s.writeCache(ctx, key, result.Items)
	return result.Items, nil
}

func (s *CarService) listFromStore(ctx context.Context, filter catalog.CarFilter, staff bool) (*CarListResult, error) {
	cars, total, err := s.carRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list cars: %w", err)
	}
	items := make([]CarResponse, len(cars))
	for i := range cars {
		if staff {
			items[i] = ToStaffCarResponse(&cars[i])
		} else {
			items[i] = ToCarResponse(&cars[i])
		}
	}
	return &CarListResult{Items: items, Total: total, Page: filter.Page, PageSize: filter.PageSize}, nil
}

// GetCar returns one listing
func (s *CarService) GetCar(ctx context.Context, actor identity.Actor, id uuid.UUID) (*CarResponse, error) {
	car, err := s.carRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	var resp CarResponse
	if actor.IsStaff() {
		resp = ToStaffCarResponse(car)
	} else {
		resp = ToCarResponse(car)
	}
	return &resp, nil
}

// CreateCar adds a listing (admin only)
func (s *CarService) CreateCar(ctx context.Context, actor identity.Actor, req CarRequest) (*CarResponse, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	car, err := catalog.NewCar(req.attributes(), req.PublicPrice)
	if err != nil {
		return nil, err
	}
	if err := applyStaffFields(car, req); err != nil {
		return nil, err
	}
	// A new aggregate is persisted at version 1
	car.Version = 1

	if err := s.carRepo.Create(ctx, car); err != nil {
		return nil, fmt.Errorf("failed to create car: %w", err)
	}
	s.logger.Info("Car created",
		zap.String("car_id", car.ID.String()),
		zap.String("title", car.Title()),
	)
	s.publishDomainEvents(ctx, car)

	resp := ToStaffCarResponse(car)
	return &resp, nil
}

// UpdateCar replaces a listing's fields under optimistic locking (admin only)
func (s *CarService) UpdateCar(ctx context.Context, actor identity.Actor, id uuid.UUID, req CarRequest) (*CarResponse, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	car, err := s.carRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Version > 0 && req.Version != car.Version {
		return nil, shared.ErrConcurrencyConflict
	}
	startVersion := car.Version

	if err := car.Update(req.attributes(), req.PublicPrice); err != nil {
		return nil, err
	}
	if err := applyStaffFields(car, req); err != nil {
		return nil, err
	}
	car.Version = startVersion + 1

	if err := s.carRepo.SaveWithLock(ctx, car); err != nil {
		return nil, err
	}
	s.logger.Info("Car updated", zap.String("car_id", id.String()))
	s.publishDomainEvents(ctx, car)

	resp := ToStaffCarResponse(car)
	return &resp, nil
}

func applyStaffFields(car *catalog.Car, req CarRequest) error {
	if req.Costs != nil {
		if err := car.SetCostBreakdown(req.Costs.toDomain()); err != nil {
			return err
		}
	}
	if err := car.SetSeller(req.SellerName, req.SellerNotes); err != nil {
		return err
	}
	car.SetFeatured(req.IsFeatured)
	car.SetVideos(req.Videos)
	return nil
}

// ChangeCarStatus sets available/reserved/sold (admin only)
func (s *CarService) ChangeCarStatus(ctx context.Context, actor identity.Actor, id uuid.UUID, req ChangeCarStatusRequest) (*CarResponse, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	car, err := s.carRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	old := car.Status
	if err := car.ChangeStatus(catalog.CarStatus(req.Status)); err != nil {
		return nil, err
	}
	if old != car.Status {
		if err := s.carRepo.SaveWithLock(ctx, car); err != nil {
			return nil, err
		}
		s.logger.Info("Car status changed",
			zap.String("car_id", id.String()),
			zap.String("from", string(old)),
			zap.String("to", string(car.Status)),
		)
		s.publishDomainEvents(ctx, car)
	}
	resp := ToStaffCarResponse(car)
	return &resp, nil
}

// DeleteCar removes a listing (admin only). Leads keep their car reference nulled by the store.
func (s *CarService) DeleteCar(ctx context.Context, actor identity.Actor, id uuid.UUID) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}
	if err := s.carRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Car deleted", zap.String("car_id", id.String()))
	if s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, catalog.NewCarDeletedEvent(id))
	}
	return nil
}

// RequestImageUpload returns a presigned URL the admin UI uploads the image to
func (s *CarService) RequestImageUpload(ctx context.Context, actor identity.Actor, carID uuid.UUID, req ImageUploadRequest) (*ImageUploadResponse, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if s.storage == nil {
		return nil, shared.NewDomainError("STORAGE_DISABLED", "Image storage is not configured")
	}
	ext, ok := AllowedImageTypes[strings.ToLower(req.ContentType)]
	if !ok {
		return nil, shared.NewDomainError("INVALID_CONTENT_TYPE", "Only JPEG, PNG and WebP images are allowed")
	}
	exists, err := s.carRepo.Exists(ctx, carID)
	if err != nil {
		return nil, fmt.Errorf("failed to check car: %w", err)
	}
	if !exists {
		return nil, shared.ErrNotFound
	}

	key := path.Join("cars", carID.String(), uuid.New().String()+ext)
	uploadURL, expiresAt, err := s.storage.GenerateUploadURL(ctx, key, req.ContentType, s.config.UploadURLExpiry)
	if err != nil {
		s.logger.Error("Failed to presign upload", zap.Error(err))
		return nil, fmt.Errorf("failed to generate upload URL: %w", err)
	}
	return &ImageUploadResponse{
		UploadURL:  uploadURL,
		StorageKey: key,
		PublicURL:  s.storage.PublicURL(key),
		ExpiresAt:  expiresAt,
	}, nil
}

// AttachImage adds an uploaded object to the car's gallery
func (s *CarService) AttachImage(ctx context.Context, actor identity.Actor, carID uuid.UUID, req AttachImageRequest) (*CarResponse, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if s.storage == nil {
		return nil, shared.NewDomainError("STORAGE_DISABLED", "Image storage is not configured")
	}
	prefix := "cars/" + carID.String() + "/"
	if !strings.HasPrefix(req.StorageKey, prefix) {
		return nil, shared.NewDomainError("INVALID_STORAGE_KEY", "Storage key does not belong to this car")
	}
	exists, err := s.storage.ObjectExists(ctx, req.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to check upload: %w", err)
	}
	if !exists {
		return nil, shared.NewDomainError("UPLOAD_NOT_FOUND", "Image has not been uploaded")
	}

	car, err := s.carRepo.FindByID(ctx, carID)
	if err != nil {
		return nil, err
	}
	before := car.Version
	if err := car.AddImage(s.storage.PublicURL(req.StorageKey)); err != nil {
		return nil, err
	}
	if car.Version != before {
		if err := s.carRepo.SaveWithLock(ctx, car); err != nil {
			return nil, err
		}
		s.publishDomainEvents(ctx, car)
	}
	resp := ToStaffCarResponse(car)
	return &resp, nil
}

func (s *CarService) readCache(ctx context.Context, key string, dest any) bool {
	if s.cache == nil {
		return false
	}
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("Catalog cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		s.logger.Warn("Catalog cache entry is corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *CarService) writeCache(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.config.ListingTTL); err != nil {
		s.logger.Warn("Catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *CarService) publishDomainEvents(ctx context.Context, car *catalog.Car) {
	if s.eventPublisher == nil {
		return
	}
	events := car.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	car.ClearDomainEvents()
}

func toDomainCarFilter(f CarListFilter) catalog.CarFilter {
	filter := catalog.CarFilter{
		Filter: shared.Filter{
			Page:     f.Page,
			PageSize: f.PageSize,
			OrderBy:  f.OrderBy,
			OrderDir: strings.ToLower(f.OrderDir),
			Search:   strings.ToLower(strings.TrimSpace(f.Search)),
		}.Normalize(),
		Make:     strings.TrimSpace(f.Make),
		BodyType: strings.TrimSpace(f.BodyType),
		FuelType: strings.TrimSpace(f.FuelType),
		Status:   catalog.CarStatus(f.Status),
		MinPrice: f.MinPrice,
		MaxPrice: f.MaxPrice,
		MinYear:  f.MinYear,
		MaxYear:  f.MaxYear,
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}
	return filter
}

// listingCacheKey hashes the normalized filter so equal queries share an entry
func listingCacheKey(f catalog.CarFilter) string {
	f.Filters = nil
	data, _ := json.Marshal(f)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:16])
}

