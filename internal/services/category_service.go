package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "clinicore/internal/errors"
	"clinicore/internal/models"
)

// categoryService handles category business logic over the unified view of
// built-in defaults and custom rows.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// ListCategories returns the doctor's categories: built-in defaults plus
// custom rows, optionally filtered by type. A custom row with the same name
// and type as a default shadows the default, so converted defaults appear
// once.
func (s *categoryService) ListCategories(doctorID uint, categoryType *models.TransactionType) ([]models.CategoryView, error) {
	var custom []models.ExpenseCategory
	q := s.db.Where("doctor_id = ?", doctorID)
	if categoryType != nil {
		q = q.Where("type = ?", *categoryType)
	}
	if err := q.Order("name ASC").Find(&custom).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	shadowed := make(map[string]bool, len(custom))
	views := make([]models.CategoryView, 0, len(custom)+15)
	for _, c := range custom {
		shadowed[string(c.Type)+"/"+c.Name] = true
		views = append(views, models.CategoryView{
			ID:          c.ID,
			Name:        c.Name,
			Type:        c.Type,
			Color:       c.Color,
			Description: c.Description,
			IsActive:    c.IsActive,
		})
	}

	appendDefaults := func(set []models.CategoryView) {
		for _, d := range set {
			if !shadowed[string(d.Type)+"/"+d.Name] {
				views = append(views, d)
			}
		}
	}
	if categoryType == nil || *categoryType == models.TransactionExpense {
		appendDefaults(models.DefaultExpenseCategories)
	}
	if categoryType == nil || *categoryType == models.TransactionIncome {
		appendDefaults(models.DefaultIncomeCategories)
	}

	return views, nil
}

// CreateCategory creates a custom category for a doctor
func (s *categoryService) CreateCategory(doctorID uint, name string, categoryType models.TransactionType, description, color string) (*models.ExpenseCategory, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}
	if categoryType != models.TransactionIncome && categoryType != models.TransactionExpense {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category type must be income or expense")
	}

	var count int64
	if err := s.db.Model(&models.ExpenseCategory{}).
		Where("doctor_id = ? AND name = ? AND type = ?", doctorID, name, categoryType).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrCategoryExists
	}

	category := &models.ExpenseCategory{
		DoctorID:    doctorID,
		Name:        name,
		Type:        categoryType,
		Description: description,
		Color:       color,
		IsActive:    true,
	}
	if category.Color == "" {
		category.Color = "#6c757d"
	}

	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category, nil
}

// UpdateCategory edits a custom category. Renames are duplicate-checked
// against the doctor's other categories of the same type.
func (s *categoryService) UpdateCategory(doctorID, categoryID uint, name, description, color string) (*models.ExpenseCategory, error) {
	category, err := s.getCategoryByID(doctorID, categoryID)
	if err != nil {
		return nil, err
	}

	if name != "" && name != category.Name {
		var count int64
		if err := s.db.Model(&models.ExpenseCategory{}).
			Where("doctor_id = ? AND name = ? AND type = ? AND id <> ?", doctorID, name, category.Type, categoryID).
			Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count > 0 {
			return nil, apperrors.ErrCategoryExists
		}
		category.Name = name
	}
	if description != "" {
		category.Description = description
	}
	if color != "" {
		category.Color = color
	}

	if err := s.db.Save(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category, nil
}

// DeleteCategory removes a custom category. Refused while any transaction or
// budget still references the category name; ledger history keeps its
// meaning.
func (s *categoryService) DeleteCategory(doctorID, categoryID uint) error {
	category, err := s.getCategoryByID(doctorID, categoryID)
	if err != nil {
		return err
	}

	var txCount int64
	s.db.Model(&models.Transaction{}).
		Where("doctor_id = ? AND category = ? AND type = ?", doctorID, category.Name, category.Type).
		Count(&txCount)
	if txCount > 0 {
		return apperrors.ErrCategoryInUse
	}

	var budgetCount int64
	s.db.Model(&models.Budget{}).
		Where("doctor_id = ? AND category = ?", doctorID, category.Name).
		Count(&budgetCount)
	if budgetCount > 0 {
		return apperrors.ErrCategoryInUse
	}

	if err := s.db.Delete(category).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// SetCategoryActive toggles whether a custom category is offered for new
// entries
func (s *categoryService) SetCategoryActive(doctorID, categoryID uint, active bool) (*models.ExpenseCategory, error) {
	category, err := s.getCategoryByID(doctorID, categoryID)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(category).Update("is_active", active).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	category.IsActive = active
	return category, nil
}

// ConvertDefaultCategory materializes a built-in default as a custom row the
// doctor can edit, carrying over the default's color and description.
func (s *categoryService) ConvertDefaultCategory(doctorID uint, name string, categoryType models.TransactionType) (*models.ExpenseCategory, error) {
	def, ok := models.FindDefaultCategory(name, categoryType)
	if !ok {
		return nil, apperrors.ErrUnknownDefaultCat
	}

	var count int64
	if err := s.db.Model(&models.ExpenseCategory{}).
		Where("doctor_id = ? AND name = ? AND type = ?", doctorID, name, categoryType).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrCategoryExists
	}

	category := &models.ExpenseCategory{
		DoctorID:    doctorID,
		Name:        def.Name,
		Type:        def.Type,
		Description: def.Description,
		Color:       def.Color,
		IsActive:    true,
	}
	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category, nil
}

func (s *categoryService) getCategoryByID(doctorID, categoryID uint) (*models.ExpenseCategory, error) {
	var category models.ExpenseCategory
	if err := s.db.Where("id = ? AND doctor_id = ?", categoryID, doctorID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}
