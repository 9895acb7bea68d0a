package makereal

// maxNotifyLen caps the description shown to the user. Full detail still
// goes to the log.
const maxNotifyLen = 100

// Notification is a single user-visible message about a run.
type Notification struct {
	Title       string
	Description string
}

// Notifier receives user-visible notifications from the pipeline. Hosts
// typically map this onto a toast.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

func truncateForDisplay(s string) string {
	if len(s) <= maxNotifyLen {
		return s
	}
	return s[:maxNotifyLen]
}
