package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/pageza/recipe-catalog/backend/internal/authz"
	"github.com/pageza/recipe-catalog/backend/internal/model"
	"github.com/pageza/recipe-catalog/backend/internal/types"
)

type CuisineService struct {
	db       *gorm.DB
	identity IdentityLookup
}

func NewCuisineService(db *gorm.DB, identity IdentityLookup) *CuisineService {
	return &CuisineService{db: db, identity: identity}
}

// List returns all cuisines ordered by name.
func (s *CuisineService) List(ctx context.Context) ([]types.CuisineDto, error) {
	var cuisines []model.Cuisine
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&cuisines).Error; err != nil {
		return nil, fmt.Errorf("failed to list cuisines: %w", err)
	}
	out := make([]types.CuisineDto, 0, len(cuisines))
	for i := range cuisines {
		out = append(out, toCuisineDto(&cuisines[i]))
	}
	return out, nil
}

// Get returns the cuisine or nil when it does not exist.
func (s *CuisineService) Get(ctx context.Context, id int) (*types.CuisineDto, error) {
	cuisine, err := s.find(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	dto := toCuisineDto(cuisine)
	return &dto, nil
}

func (s *CuisineService) Create(ctx context.Context, req *types.CuisineRequest, p authz.Principal) (*types.CuisineDto, error) {
	name, err := validateCuisineName(req)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, p, authz.Create); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, name, 0); err != nil {
		return nil, err
	}

	cuisine := &model.Cuisine{Name: name}
	if err := s.db.WithContext(ctx).Create(cuisine).Error; err != nil {
		return nil, fmt.Errorf("failed to create cuisine: %w", err)
	}

	log.Info().Str("component", "cuisines").Int("cuisine_id", cuisine.ID).Str("name", name).Msg("cuisine created")
	dto := toCuisineDto(cuisine)
	return &dto, nil
}

func (s *CuisineService) Update(ctx context.Context, id int, req *types.CuisineRequest, p authz.Principal) (*types.CuisineDto, error) {
	name, err := validateCuisineName(req)
	if err != nil {
		return nil, err
	}
	cuisine, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, p, authz.Update); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, name, id); err != nil {
		return nil, err
	}

	cuisine.Name = name
	if err := s.db.WithContext(ctx).Save(cuisine).Error; err != nil {
		return nil, fmt.Errorf("failed to update cuisine: %w", err)
	}
	dto := toCuisineDto(cuisine)
	return &dto, nil
}

// Delete removes a cuisine that no recipe references.
func (s *CuisineService) Delete(ctx context.Context, id int, p authz.Principal) error {
	cuisine, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, p, authz.Delete); err != nil {
		return err
	}

	var inUse int64
	if err := s.db.WithContext(ctx).Model(&model.Recipe{}).Where("cuisine_id = ?", id).Count(&inUse).Error; err != nil {
		return fmt.Errorf("failed to check cuisine usage: %w", err)
	}
	if inUse > 0 {
		return fmt.Errorf("%w: cuisine %d is used by %d recipes", ErrConflict, id, inUse)
	}

	if err := s.db.WithContext(ctx).Delete(cuisine).Error; err != nil {
		return fmt.Errorf("failed to delete cuisine: %w", err)
	}
	log.Info().Str("component", "cuisines").Int("cuisine_id", id).Msg("cuisine deleted")
	return nil
}

func (s *CuisineService) find(ctx context.Context, id int) (*model.Cuisine, error) {
	var cuisine model.Cuisine
	if err := s.db.WithContext(ctx).First(&cuisine, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load cuisine %d: %w", id, err)
	}
	return &cuisine, nil
}

func (s *CuisineService) ensureUniqueName(ctx context.Context, name string, exceptID int) error {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Cuisine{}).
		Where("LOWER(name) = LOWER(?) AND id <> ?", name, exceptID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check cuisine name: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: cuisine %q already exists", ErrConflict, name)
	}
	return nil
}

func (s *CuisineService) authorize(ctx context.Context, p authz.Principal, op authz.Operation) error {
	if p.Authenticated && (op == authz.Update || op == authz.Delete) {
		admin, err := s.identity.IsAdmin(ctx, p)
		if err != nil {
			return fmt.Errorf("failed to resolve role: %w", err)
		}
		p.Admin = admin
	}
	if !authz.Authorize(p, authz.CuisineResource, op, uuid.Nil) {
		return &AuthorizationError{Operation: op, Resource: authz.CuisineResource, Anonymous: !p.Authenticated}
	}
	return nil
}

func validateCuisineName(req *types.CuisineRequest) (string, error) {
	name := strings.TrimSpace(req.Name)
	err := validation.Validate(name, validation.Required, validation.Length(1, 100))
	if err != nil {
		return "", asValidationError(validation.Errors{"name": err})
	}
	return name, nil
}
