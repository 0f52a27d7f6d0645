package homeworkbot

// Status is the review state of a homework submission as reported by the
// review API.
type Status string

const (
	// StatusApproved indicates the reviewer accepted the work.
	StatusApproved Status = "approved"

	// StatusReviewing indicates a reviewer has picked the work up.
	StatusReviewing Status = "reviewing"

	// StatusRejected indicates the reviewer returned the work with remarks.
	StatusRejected Status = "rejected"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// statusCatalog maps each known status to its verdict text.
var statusCatalog = map[Status]string{
	StatusApproved:  "Работа проверена: ревьюеру всё понравилось. Ура!",
	StatusReviewing: "Работа взята на проверку ревьюером.",
	StatusRejected:  "Работа проверена: у ревьюера есть замечания.",
}

// Verdict returns the human-readable verdict for s and whether s is a known
// status.
func Verdict(s Status) (string, bool) {
	v, ok := statusCatalog[s]
	return v, ok
}

// WorkItem is one homework submission as seen by the bot.
//
// Two items describe the same observation when [WorkItem.SameAs] reports
// true; UpdatedAt is kept for logging only.
type WorkItem struct {
	// Name is the homework_name field, typically the repository name.
	Name string

	// Status is the review state of the submission.
	Status Status

	// UpdatedAt is the date_updated value exactly as the API sent it.
	UpdatedAt string
}

// SameAs reports whether w and other carry the same name and status.
func (w WorkItem) SameAs(other WorkItem) bool {
	return w.Name == other.Name && w.Status == other.Status
}
