package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Dosada05/sports-center/apperr"
	"github.com/Dosada05/sports-center/cache"
	"github.com/Dosada05/sports-center/models"
	"github.com/Dosada05/sports-center/repositories"
	"github.com/Dosada05/sports-center/schedule"
	"github.com/Dosada05/sports-center/storage"
)

var (
	ErrImageTypeUnsupported = apperr.New(apperr.ErrValidation, "Formato de imagen no soportado (JPEG, PNG o WebP)")
	ErrStorageUnavailable   = errors.New("image storage is not configured")
)

type FacilityService interface {
	// List returns active facilities matching q on name, description or
	// location, optionally restricted to one category.
	List(ctx context.Context, q string, category string) ([]models.Facility, error)
	ListAll(ctx context.Context) ([]models.Facility, error)
	Get(ctx context.Context, facilityID int) (*models.Facility, error)
	// Availability lists the occupied slots of an active facility on date.
	Availability(ctx context.Context, facilityID int, date string) (*models.Availability, error)
	Create(ctx context.Context, input CreateFacilityInput) (*models.Facility, error)
	Update(ctx context.Context, facilityID int, patch models.FacilityPatch) (*models.Facility, error)
	Delete(ctx context.Context, facilityID int) error
	UploadImage(ctx context.Context, facilityID int, contentType string, file io.Reader) (*models.Facility, error)
}

type CreateFacilityInput struct {
	Name        string                  `json:"name" validate:"required,min=2,max=120"`
	Category    models.FacilityCategory `json:"category" validate:"required,oneof=padel tennis indoor_soccer pool gym"`
	Description *string                 `json:"description,omitempty" validate:"omitempty,max=2000"`
	Location    *string                 `json:"location,omitempty" validate:"omitempty,max=255"`
	HourlyPrice models.Money            `json:"hourly_price"`
	Active      *bool                   `json:"active,omitempty"`
}

var errNegativePrice = apperr.New(apperr.ErrValidation, "El precio por hora no puede ser negativo")

type facilityService struct {
	facilityRepo    repositories.FacilityRepository
	reservationRepo repositories.ReservationRepository
	availability    cache.AvailabilityCache
	uploader        storage.FileUploader
	clock           Clock
	logger          *slog.Logger
}

func NewFacilityService(
	facilityRepo repositories.FacilityRepository,
	reservationRepo repositories.ReservationRepository,
	availability cache.AvailabilityCache,
	uploader storage.FileUploader,
	clock Clock,
	logger *slog.Logger,
) FacilityService {
	if uploader == nil {
		uploader = storage.NewDisabledUploader()
	}
	return &facilityService{
		facilityRepo:    facilityRepo,
		reservationRepo: reservationRepo,
		availability:    orNopAvailability(availability),
		uploader:        uploader,
		clock:           clock,
		logger:          orDefaultLogger(logger),
	}
}

func (s *facilityService) List(ctx context.Context, q string, category string) ([]models.Facility, error) {
	filter := repositories.ListFacilitiesFilter{
		Query:      strings.TrimSpace(q),
		OnlyActive: true,
	}
	if c := models.FacilityCategory(strings.TrimSpace(category)); c != "" {
		if !c.Valid() {
			return nil, ErrInvalidCategory
		}
		filter.Category = &c
	}
	facilities, err := s.facilityRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list facilities: %w", err)
	}
	for i := range facilities {
		populateFacilityImageURL(&facilities[i], s.uploader)
	}
	return facilities, nil
}

func (s *facilityService) ListAll(ctx context.Context) ([]models.Facility, error) {
	facilities, err := s.facilityRepo.List(ctx, repositories.ListFacilitiesFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list facilities: %w", err)
	}
	for i := range facilities {
		populateFacilityImageURL(&facilities[i], s.uploader)
	}
	return facilities, nil
}

func (s *facilityService) getAny(ctx context.Context, facilityID int) (*models.Facility, error) {
	facility, err := s.facilityRepo.GetByID(ctx, facilityID)
	if err != nil {
		if errors.Is(err, repositories.ErrFacilityNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get facility %d: %w", facilityID, err)
	}
	populateFacilityImageURL(facility, s.uploader)
	return facility, nil
}

func (s *facilityService) Get(ctx context.Context, facilityID int) (*models.Facility, error) {
	facility, err := s.getAny(ctx, facilityID)
	if err != nil {
		return nil, err
	}
	if !facility.Active {
		return nil, ErrNotFound
	}
	return facility, nil
}

func (s *facilityService) Availability(ctx context.Context, facilityID int, date string) (*models.Availability, error) {
	day, err := schedule.ParseDate(date, s.clock.Location)
	if err != nil {
		return nil, err
	}
	d := schedule.DateOf(day)

	if _, err := s.Get(ctx, facilityID); err != nil {
		return nil, err
	}

	if slots, ok := s.availability.Get(ctx, facilityID, d); ok {
		return &models.Availability{FacilityID: facilityID, Date: d.String(), Occupied: slots}, nil
	}

	reservations, err := s.reservationRepo.ListActiveByFacilityDate(ctx, nil, facilityID, d)
	if err != nil {
		return nil, fmt.Errorf("failed to load availability of facility %d: %w", facilityID, err)
	}
	slots := make([]models.Slot, 0, len(reservations))
	for _, res := range reservations {
		slots = append(slots, models.Slot{Start: res.StartTime.String(), End: res.EndTime.String()})
	}
	s.availability.Set(ctx, facilityID, d, slots)

	return &models.Availability{FacilityID: facilityID, Date: d.String(), Occupied: slots}, nil
}

func (s *facilityService) Create(ctx context.Context, input CreateFacilityInput) (*models.Facility, error) {
	if !input.Category.Valid() {
		return nil, ErrInvalidCategory
	}
	if input.HourlyPrice.IsNegative() {
		return nil, errNegativePrice
	}
	facility := &models.Facility{
		Name:        strings.TrimSpace(input.Name),
		Category:    input.Category,
		Description: input.Description,
		Location:    input.Location,
		HourlyPrice: models.NewMoney(input.HourlyPrice.Decimal),
		Active:      true,
	}
	if input.Active != nil {
		facility.Active = *input.Active
	}
	if err := s.facilityRepo.Create(ctx, facility); err != nil {
		return nil, fmt.Errorf("failed to create facility: %w", err)
	}
	s.logger.InfoContext(ctx, "facility created", slog.Int("facility_id", facility.ID), slog.String("name", facility.Name))
	return facility, nil
}

func (s *facilityService) Update(ctx context.Context, facilityID int, patch models.FacilityPatch) (*models.Facility, error) {
	if patch.Category != nil && !patch.Category.Valid() {
		return nil, ErrInvalidCategory
	}
	if patch.HourlyPrice != nil && patch.HourlyPrice.IsNegative() {
		return nil, errNegativePrice
	}
	facility, err := s.getAny(ctx, facilityID)
	if err != nil {
		return nil, err
	}
	patch.Apply(facility)
	facility.HourlyPrice = models.NewMoney(facility.HourlyPrice.Decimal)

	if err := s.facilityRepo.Update(ctx, facility); err != nil {
		if errors.Is(err, repositories.ErrFacilityNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update facility %d: %w", facilityID, err)
	}
	return facility, nil
}

func (s *facilityService) Delete(ctx context.Context, facilityID int) error {
	facility, err := s.getAny(ctx, facilityID)
	if err != nil {
		return err
	}
	busy, err := s.reservationRepo.HasActiveForFacility(ctx, facilityID)
	if err != nil {
		return fmt.Errorf("failed to check reservations of facility %d: %w", facilityID, err)
	}
	if busy {
		return ErrFacilityHasBookings
	}
	if err := s.facilityRepo.Delete(ctx, facilityID); err != nil {
		if errors.Is(err, repositories.ErrFacilityNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete facility %d: %w", facilityID, err)
	}
	if facility.ImageKey != nil {
		s.deleteImage(ctx, *facility.ImageKey)
	}
	s.logger.InfoContext(ctx, "facility deleted", slog.Int("facility_id", facilityID))
	return nil
}

func (s *facilityService) UploadImage(ctx context.Context, facilityID int, contentType string, file io.Reader) (*models.Facility, error) {
	facility, err := s.getAny(ctx, facilityID)
	if err != nil {
		return nil, err
	}
	key, err := storage.FacilityImageKey(facilityID, contentType)
	if err != nil {
		return nil, ErrImageTypeUnsupported
	}
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		if errors.Is(err, storage.ErrStorageDisabled) {
			return nil, ErrStorageUnavailable
		}
		return nil, fmt.Errorf("failed to upload image of facility %d: %w", facilityID, err)
	}
	if err := s.facilityRepo.UpdateImageKey(ctx, facilityID, &key); err != nil {
		s.deleteImage(ctx, key)
		return nil, fmt.Errorf("failed to store image key of facility %d: %w", facilityID, err)
	}

	if old := derefString(facility.ImageKey); old != "" && old != key {
		s.deleteImage(ctx, old)
	}
	facility.ImageKey = &key
	facility.ImageURL = nil
	populateFacilityImageURL(facility, s.uploader)
	return facility, nil
}

func (s *facilityService) deleteImage(ctx context.Context, key string) {
	if err := s.uploader.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrStorageDisabled) {
		s.logger.WarnContext(ctx, "failed to delete facility image", slog.String("key", key), slog.Any("error", err))
	}
}
