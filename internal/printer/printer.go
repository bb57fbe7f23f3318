package printer

import (
	"github.com/traduct/dashsync/internal/cache"
	"github.com/traduct/dashsync/internal/model"
)

// Printer knows how to print dashboard information in different formats.
type Printer interface {
	PrintTaskList(tasks cache.Collection[model.Task]) error
	PrintGrantList(grants cache.Collection[model.Grant]) error
	PrintProviderList(providers []model.Provider) error
	PrintUserList(users []model.User) error
	PrintNotification(n model.Notification) error
	PrintMessage(msg string) error
}
