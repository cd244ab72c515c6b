// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"reflect"
	"regexp"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"cashflow/internal/models"
)

var (
	hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	registerOnce  sync.Once
)

// Register registers all custom validators with the Gin binding engine.
// Calling it more than once is harmless.
func Register() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			RegisterOn(v)
		}
	})
}

// RegisterOn installs the custom tags on v.
func RegisterOn(v *validator.Validate) {
	// decimal.Decimal is validated as a float so gte/gt/lte work on amounts.
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})

	_ = v.RegisterValidation("supported_currency", validateCurrency)
	_ = v.RegisterValidation("hex_color", validateHexColor)
	_ = v.RegisterValidation("transaction_type", validateTransactionType)
	_ = v.RegisterValidation("category_type", validateCategoryType)
	_ = v.RegisterValidation("budget_period", validateBudgetPeriod)
	_ = v.RegisterValidation("recurring_frequency", validateRecurringFrequency)
}

func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

func validateCurrency(fl validator.FieldLevel) bool {
	return models.Currency(fl.Field().String()).Valid()
}

func validateHexColor(fl validator.FieldLevel) bool {
	return hexColorRegex.MatchString(fl.Field().String())
}

func validateTransactionType(fl validator.FieldLevel) bool {
	switch models.TransactionType(fl.Field().String()) {
	case models.TransactionTypeIncome, models.TransactionTypeExpense:
		return true
	}
	return false
}

func validateCategoryType(fl validator.FieldLevel) bool {
	switch models.CategoryType(fl.Field().String()) {
	case models.CategoryTypeIncome, models.CategoryTypeExpense:
		return true
	}
	return false
}

func validateBudgetPeriod(fl validator.FieldLevel) bool {
	switch models.BudgetPeriod(fl.Field().String()) {
	case models.BudgetPeriodMonthly, models.BudgetPeriodYearly:
		return true
	}
	return false
}

func validateRecurringFrequency(fl validator.FieldLevel) bool {
	return models.RecurringFrequency(fl.Field().String()).OccurrencesPerMonth() > 0
}
