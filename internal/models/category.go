package models

// CategoryType represents the type of category
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

const (
	DefaultCategoryColor = "#3B82F6"
	DefaultCategoryIcon  = "💰"
)

// Category represents a transaction category
type Category struct {
	Base
	UserID string       `gorm:"type:uuid;not null;index" json:"user_id"`
	Name   string       `gorm:"not null" json:"name"`
	Type   CategoryType `gorm:"not null" json:"type"`
	Color  string       `gorm:"size:7;not null" json:"color"`
	Icon   string       `gorm:"not null" json:"icon"`
}

// DefaultCategories are seeded for every new user.
var DefaultCategories = []Category{
	{Name: "Salary", Type: CategoryTypeIncome, Color: "#10B981", Icon: "💵"},
	{Name: "Freelance", Type: CategoryTypeIncome, Color: "#3B82F6", Icon: "💼"},
	{Name: "Investment", Type: CategoryTypeIncome, Color: "#8B5CF6", Icon: "📈"},
	{Name: "Food & Dining", Type: CategoryTypeExpense, Color: "#EF4444", Icon: "🍔"},
	{Name: "Transportation", Type: CategoryTypeExpense, Color: "#F59E0B", Icon: "🚗"},
	{Name: "Shopping", Type: CategoryTypeExpense, Color: "#EC4899", Icon: "🛍️"},
	{Name: "Entertainment", Type: CategoryTypeExpense, Color: "#6366F1", Icon: "🎮"},
	{Name: "Bills & Utilities", Type: CategoryTypeExpense, Color: "#EF4444", Icon: "💡"},
	{Name: "Healthcare", Type: CategoryTypeExpense, Color: "#14B8A6", Icon: "🏥"},
	{Name: "Other", Type: CategoryTypeExpense, Color: "#6B7280", Icon: "📦"},
}
