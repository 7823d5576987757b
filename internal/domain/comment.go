package domain

import "time"

// AuthorKind indicates who authored a comment.
type AuthorKind string

const (
	AuthorKindStaff   AuthorKind = "staff"
	AuthorKindStudent AuthorKind = "student"
)

// Comment is a remark on a ticket thread. Internal comments are staff-only.
type Comment struct {
	ID         string
	TicketID   string
	AuthorRef  string
	AuthorKind AuthorKind
	Text       string
	IsInternal bool
	CreatedAt  time.Time
}

// VisibleToStudents drops internal comments.
func VisibleToStudents(comments []Comment) []Comment {
	visible := make([]Comment, 0, len(comments))
	for _, c := range comments {
		if c.IsInternal {
			continue
		}
		visible = append(visible, c)
	}
	return visible
}
