package models

// ExpenseCategory is a doctor-defined ledger category. Despite the name it
// covers both income and expense categories; the split is carried by Type.
type ExpenseCategory struct {
	Base
	DoctorID    uint            `gorm:"not null;index;uniqueIndex:idx_doctor_category_name_type" json:"doctor_id"`
	Name        string          `gorm:"size:100;not null;uniqueIndex:idx_doctor_category_name_type" json:"name"`
	Type        TransactionType `gorm:"size:10;not null;default:'expense';uniqueIndex:idx_doctor_category_name_type" json:"type"`
	Description string          `json:"description"`
	Color       string          `gorm:"size:7;default:'#6c757d'" json:"color"`
	IsActive    bool            `gorm:"default:true" json:"is_active"`

	// Relationships
	Doctor *Doctor `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

// CategoryView is the unified read shape for category listings. Built-in
// defaults and custom ExpenseCategory rows both render to this form; the
// IsDefault tag tells them apart. Default entries have ID 0.
type CategoryView struct {
	ID          uint            `json:"id,omitempty"`
	Name        string          `json:"name"`
	Type        TransactionType `json:"type"`
	Color       string          `json:"color"`
	Description string          `json:"description,omitempty"`
	IsDefault   bool            `json:"is_default"`
	IsActive    bool            `json:"is_active"`
}

// DefaultExpenseCategories and DefaultIncomeCategories are the built-in
// category sets every doctor sees without creating anything.
var DefaultExpenseCategories = []CategoryView{
	{Name: "General", Type: TransactionExpense, Color: "#6c757d", Description: "General expenses", IsDefault: true, IsActive: true},
	{Name: "Equipment", Type: TransactionExpense, Color: "#0d6efd", Description: "Medical equipment and tools", IsDefault: true, IsActive: true},
	{Name: "Supplies", Type: TransactionExpense, Color: "#20c997", Description: "Medical supplies and consumables", IsDefault: true, IsActive: true},
	{Name: "Utilities", Type: TransactionExpense, Color: "#ffc107", Description: "Electricity, water, internet, etc.", IsDefault: true, IsActive: true},
	{Name: "Rent", Type: TransactionExpense, Color: "#fd7e14", Description: "Office or clinic rent", IsDefault: true, IsActive: true},
	{Name: "Staff", Type: TransactionExpense, Color: "#6f42c1", Description: "Staff salaries and benefits", IsDefault: true, IsActive: true},
	{Name: "Marketing", Type: TransactionExpense, Color: "#e91e63", Description: "Marketing and advertising expenses", IsDefault: true, IsActive: true},
	{Name: "Insurance", Type: TransactionExpense, Color: "#795548", Description: "Insurance premiums", IsDefault: true, IsActive: true},
	{Name: "Maintenance", Type: TransactionExpense, Color: "#607d8b", Description: "Equipment and facility maintenance", IsDefault: true, IsActive: true},
	{Name: "Other", Type: TransactionExpense, Color: "#9e9e9e", Description: "Other miscellaneous expenses", IsDefault: true, IsActive: true},
}

var DefaultIncomeCategories = []CategoryView{
	{Name: "Patient Payment", Type: TransactionIncome, Color: "#28a745", Description: "Payments received from patients", IsDefault: true, IsActive: true},
	{Name: "Insurance", Type: TransactionIncome, Color: "#17a2b8", Description: "Insurance reimbursements", IsDefault: true, IsActive: true},
	{Name: "Consultation", Type: TransactionIncome, Color: "#007bff", Description: "Consultation fees", IsDefault: true, IsActive: true},
	{Name: "Procedure", Type: TransactionIncome, Color: "#6610f2", Description: "Medical procedure fees", IsDefault: true, IsActive: true},
	{Name: "Other", Type: TransactionIncome, Color: "#6c757d", Description: "Other miscellaneous income", IsDefault: true, IsActive: true},
}

// FindDefaultCategory looks up a built-in category by name and type.
func FindDefaultCategory(name string, categoryType TransactionType) (CategoryView, bool) {
	set := DefaultExpenseCategories
	if categoryType == TransactionIncome {
		set = DefaultIncomeCategories
	}
	for _, c := range set {
		if c.Name == name {
			return c, true
		}
	}
	return CategoryView{}, false
}
