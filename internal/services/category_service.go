package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "cashflow/internal/errors"
	"cashflow/internal/models"
)

// categoryService handles category-related business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

func normalizeCategoryInput(in *CategoryInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}
	if in.Type != models.CategoryTypeIncome && in.Type != models.CategoryTypeExpense {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "category type must be income or expense")
	}
	if in.Color == "" {
		in.Color = models.DefaultCategoryColor
	}
	if in.Icon == "" {
		in.Icon = models.DefaultCategoryIcon
	}
	return nil
}

// ensureUniqueName rejects a second live category with the same name and type.
func (s *categoryService) ensureUniqueName(userID, exceptID string, in CategoryInput) error {
	q := s.db.Model(&models.Category{}).Where("user_id = ? AND name = ? AND type = ?", userID, in.Name, in.Type)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "category with this name already exists")
	}
	return nil
}

// CreateCategory creates a new category
func (s *categoryService) CreateCategory(userID string, in CategoryInput) (*models.Category, error) {
	if err := normalizeCategoryInput(&in); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(userID, "", in); err != nil {
		return nil, err
	}

	category := &models.Category{
		UserID: userID,
		Name:   in.Name,
		Type:   in.Type,
		Color:  in.Color,
		Icon:   in.Icon,
	}
	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category, nil
}

// GetUserCategories lists the user's categories, optionally of one type.
func (s *categoryService) GetUserCategories(userID string, categoryType *models.CategoryType) ([]models.Category, error) {
	q := s.db.Where("user_id = ?", userID)
	if categoryType != nil {
		q = q.Where("type = ?", *categoryType)
	}

	var categories []models.Category
	if err := q.Order("type ASC, name ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

// GetCategoryByID retrieves a category by ID for a specific user
func (s *categoryService) GetCategoryByID(userID, categoryID string) (*models.Category, error) {
	var category models.Category
	if err := s.db.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// UpdateCategory replaces the writable fields of a category.
func (s *categoryService) UpdateCategory(userID, categoryID string, in CategoryInput) (*models.Category, error) {
	if err := normalizeCategoryInput(&in); err != nil {
		return nil, err
	}

	category, err := s.GetCategoryByID(userID, categoryID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(userID, category.ID, in); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":  in.Name,
		"type":  in.Type,
		"color": in.Color,
		"icon":  in.Icon,
	}
	if err := s.db.Model(category).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetCategoryByID(userID, categoryID)
}

// DeleteCategory soft-deletes a category. Transactions keep their
// category_id; views skip categories that no longer resolve.
func (s *categoryService) DeleteCategory(userID, categoryID string) error {
	category, err := s.GetCategoryByID(userID, categoryID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(category).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
