package params

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fuad-daoud/disma/guild"
)

var paramsValidate *validator.Validate

func init() {
	paramsValidate = validator.New()
	_ = paramsValidate.RegisterValidation("permission", validatePermission)
	_ = paramsValidate.RegisterValidation("rolecolor", validateColor)
	paramsValidate.RegisterStructValidation(validateRoles, RolesParams{})
	paramsValidate.RegisterStructValidation(validateCategories, CategoriesParams{})
	paramsValidate.RegisterStructValidation(validateChannels, ChannelsParams{})
	paramsValidate.RegisterStructValidation(validateCategory, CategoryParams{})
}

func validatePermission(fl validator.FieldLevel) bool {
	_, err := guild.ParsePermission(fl.Field().String())
	return err == nil
}

func validateColor(fl validator.FieldLevel) bool {
	_, err := guild.NormalizeColor(fl.Field().String())
	return err == nil
}

func validateRoles(sl validator.StructLevel) {
	roles := sl.Current().Interface().(RolesParams)
	reportStrategy(sl, roles.ExtraItems.Strategy, "ExtraItems", StrategyRemove, StrategyKeep)
}

func validateCategories(sl validator.StructLevel) {
	categories := sl.Current().Interface().(CategoriesParams)
	reportStrategy(sl, categories.ExtraItems.Strategy, "ExtraItems", StrategyRemove, StrategyKeep)
}

func validateCategory(sl validator.StructLevel) {
	category := sl.Current().Interface().(CategoryParams)
	reportStrategy(sl, category.ExtraChannels.Strategy, "ExtraChannels", StrategyRemove, StrategyKeep, StrategySyncPermissions)
}

// validateChannels rejects SYNC_PERMISSIONS as the list default: channels
// outside any desired category have no permissions to sync with.
func validateChannels(sl validator.StructLevel) {
	channels := sl.Current().Interface().(ChannelsParams)
	reportStrategy(sl, channels.ExtraItems.Strategy, "ExtraItems", StrategyRemove, StrategyKeep)

	type identity struct{ category, name, kind string }
	seen := make(map[identity]struct{}, len(channels.Items))
	for i, channel := range channels.Items {
		key := identity{category: channel.Category, name: channel.Name, kind: channel.Type}
		if _, ok := seen[key]; ok {
			label := channel.Category + ":" + channel.Name + " (" + channel.Type + ")"
			sl.ReportError(channel.Name, fmt.Sprintf("Items[%d]", i), "Items", "uniquechannel", label)
			continue
		}
		seen[key] = struct{}{}
	}
}

func reportStrategy(sl validator.StructLevel, strategy, field string, allowed ...string) {
	for _, value := range allowed {
		if strategy == value {
			return
		}
	}
	sl.ReportError(strategy, field, field, "strategy", strings.Join(allowed, " "))
}

// Validate checks a document with defaults applied.
func Validate(p GuildParams) error {
	err := paramsValidate.Struct(p)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	messages := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		messages = append(messages, describe(fieldErr))
	}
	return &ValidationError{Problems: messages}
}

func describe(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", err.Namespace())
	case "permission":
		return fmt.Sprintf("%s: unknown permission %q", err.Namespace(), err.Value())
	case "rolecolor":
		return fmt.Sprintf("%s: invalid color %q", err.Namespace(), err.Value())
	case "oneof", "strategy":
		return fmt.Sprintf("%s: %q is not one of %s", err.Namespace(), err.Value(), err.Param())
	case "unique":
		return fmt.Sprintf("%s: duplicate %s", err.Namespace(), strings.ToLower(err.Param()))
	case "excluded_if":
		return fmt.Sprintf("%s: voice channels have no topic", err.Namespace())
	case "uniquechannel":
		return fmt.Sprintf("%s: duplicate channel %s", err.Namespace(), err.Param())
	default:
		return err.Error()
	}
}

type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid guild document: " + strings.Join(e.Problems, "; ")
}
