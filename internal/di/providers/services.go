package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/storybook/internal/logger"
	"github.com/listenupapp/storybook/internal/service"
	"github.com/listenupapp/storybook/internal/validation"
)

// ProvideValidator provides the shared input validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideBookService provides the book editing and library service.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBookService(storeHandle.Store, searchService, validator, log.Component("books")), nil
}
