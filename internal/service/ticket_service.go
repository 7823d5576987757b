package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	store        repository.Store
	authz        Authorizer
	dispatcher   events.Dispatcher
	logger       *zap.Logger
	numberPrefix string
	now          func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Store        repository.Store
	Authz        Authorizer
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
	NumberPrefix string
	Clock        func() time.Time
}

// TicketCreateInput describes ticket creation. AdmissionNumber is only honored for staff
// filing on behalf of a student.
type TicketCreateInput struct {
	AdmissionNumber *string
	CategoryID      string
	SubCategoryID   *string
	Title           string
	Description     string
	PhotoRef        *string
}

// TicketListFilter describes list parameters. StudentAdmission narrows to one student.
type TicketListFilter struct {
	Statuses         []domain.TicketStatus
	CategoryID       *string
	SubCategoryID    *string
	AssigneeID       *string
	StudentAdmission *string
	SearchTerm       *string
	Limit            int
	Offset           int
}

// TicketDetail is a ticket with its current assignment batch.
type TicketDetail struct {
	Ticket      *domain.Ticket
	Assignments []domain.Assignment
	Feedback    *domain.Feedback
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	prefix := strings.TrimSpace(deps.NumberPrefix)
	if prefix == "" {
		prefix = "TKT"
	}
	clock := deps.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &TicketService{
		store:        deps.Store,
		authz:        deps.Authz,
		dispatcher:   deps.Dispatcher,
		logger:       orNop(deps.Logger),
		numberPrefix: prefix,
		now:          clock,
	}
}

func ticketNotFound(id string) error {
	return apperrors.NewNotFound("TICKET_NOT_FOUND", "ticket", map[string]any{"ticket_id": id})
}

func studentNotFound(ref string) error {
	return apperrors.NewNotFound("STUDENT_NOT_FOUND", "student", map[string]any{"student_ref": ref})
}

// Create validates the category pair against the active taxonomy and files a pending ticket.
func (s *TicketService) Create(ctx context.Context, actor domain.Actor, input TicketCreateInput) (*domain.Ticket, error) {
	repos := s.store.Repos()

	var (
		student *domain.Student
		err     error
	)
	if actor.IsStudent() {
		student, err = s.resolveStudent(ctx, repos, actor)
	} else {
		if err := s.authz.Require(ctx, actor, domain.ModuleTicketManagement, domain.OpWrite); err != nil {
			return nil, err
		}
		if input.AdmissionNumber == nil || strings.TrimSpace(*input.AdmissionNumber) == "" {
			return nil, apperrors.NewValidationError("ADMISSION_NUMBER_REQUIRED",
				"admission number is required when filing on behalf of a student", nil)
		}
		number := strings.TrimSpace(*input.AdmissionNumber)
		student, err = repos.Students.GetByAdmissionNumber(ctx, number)
		err = storageErr(err, studentNotFound(number))
	}
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" {
		return nil, apperrors.NewValidationError("EMPTY_TITLE", "title is required", nil)
	}
	if description == "" {
		return nil, apperrors.NewValidationError("EMPTY_DESCRIPTION", "description is required", nil)
	}
	if err := s.checkCategories(ctx, repos, input.CategoryID, input.SubCategoryID); err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		TicketNumber:  s.generateTicketNumber(),
		StudentRef:    student.ID,
		CategoryID:    input.CategoryID,
		SubCategoryID: input.SubCategoryID,
		Title:         title,
		Description:   description,
		PhotoRef:      input.PhotoRef,
		Status:        domain.TicketStatusPending,
	}
	if err := repos.Tickets.Create(ctx, ticket); err != nil {
		if isDuplicate(err) {
			return nil, apperrors.NewTransientStorage("TICKET_NUMBER_COLLISION", err)
		}
		return nil, storageErr(err, nil)
	}

	s.logger.Info("ticket created",
		zap.String("ticket_id", ticket.ID),
		zap.String("ticket_number", ticket.TicketNumber),
		zap.String("student_ref", ticket.StudentRef))
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    events.ActorFrom(actor),
		Payload: events.TicketCreatedPayload{
			TicketNumber:  ticket.TicketNumber,
			StudentRef:    ticket.StudentRef,
			CategoryID:    ticket.CategoryID,
			SubCategoryID: ticket.SubCategoryID,
			Title:         ticket.Title,
		},
	})
	return ticket, nil
}

// checkCategories requires an active root category and, if given, an active child of it.
func (s *TicketService) checkCategories(ctx context.Context, repos repository.Repositories, categoryID string, subCategoryID *string) error {
	category, err := repos.Categories.GetByID(ctx, categoryID)
	if err != nil {
		return storageErr(err, invalidCategory("category does not exist", categoryID))
	}
	if !category.IsRoot() {
		return invalidCategory("category must be a main category", categoryID)
	}
	if !category.IsActive {
		return apperrors.NewValidationError("INACTIVE_CATEGORY", "category is disabled", map[string]any{"category_id": categoryID})
	}
	if subCategoryID == nil {
		return nil
	}
	sub, err := repos.Categories.GetByID(ctx, *subCategoryID)
	if err != nil {
		return storageErr(err, invalidCategory("sub-category does not exist", *subCategoryID))
	}
	if sub.ParentID == nil || *sub.ParentID != categoryID {
		return invalidCategory("sub-category does not belong to category", *subCategoryID)
	}
	if !sub.IsActive {
		return apperrors.NewValidationError("INACTIVE_CATEGORY", "sub-category is disabled", map[string]any{"category_id": *subCategoryID})
	}
	return nil
}

// generateTicketNumber yields PREFIX-YYYY-<6 time digits>-<4 random chars>.
func (s *TicketService) generateTicketNumber() string {
	now := s.now()
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
	return fmt.Sprintf("%s-%d-%06d-%s", s.numberPrefix, now.Year(), now.UnixMilli()%1_000_000, suffix)
}

// resolveStudent maps a student token to its directory entry.
func (s *TicketService) resolveStudent(ctx context.Context, repos repository.Repositories, actor domain.Actor) (*domain.Student, error) {
	if actor.AdmissionNumber != nil && *actor.AdmissionNumber != "" {
		student, err := repos.Students.GetByAdmissionNumber(ctx, *actor.AdmissionNumber)
		if err != nil {
			return nil, storageErr(err, studentNotFound(*actor.AdmissionNumber))
		}
		return student, nil
	}
	student, err := repos.Students.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, storageErr(err, studentNotFound(actor.ID))
	}
	return student, nil
}

// authorizeRead loads the ticket and applies row-level ownership for students or the
// ticket_management read grant for staff. A foreign student ticket is AccessDenied.
func (s *TicketService) authorizeRead(ctx context.Context, actor domain.Actor, ticketID string) (*domain.Ticket, *domain.Student, error) {
	repos := s.store.Repos()
	var student *domain.Student
	if actor.IsStudent() {
		var err error
		if student, err = s.resolveStudent(ctx, repos, actor); err != nil {
			return nil, nil, err
		}
	} else if err := s.authz.Require(ctx, actor, domain.ModuleTicketManagement, domain.OpRead); err != nil {
		return nil, nil, err
	}

	ticket, err := repos.Tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, nil, storageErr(err, ticketNotFound(ticketID))
	}
	if student != nil && ticket.StudentRef != student.ID {
		return nil, nil, apperrors.NewAccessDenied("ACCESS_DENIED", "ticket belongs to another student")
	}
	return ticket, student, nil
}

// Get returns a ticket with its active assignees and feedback.
func (s *TicketService) Get(ctx context.Context, actor domain.Actor, ticketID string) (*TicketDetail, error) {
	ticket, _, err := s.authorizeRead(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	repos := s.store.Repos()
	assignments, err := repos.Assignments.ListActive(ctx, ticket.ID)
	if err != nil {
		return nil, storageErr(err, nil)
	}
	detail := &TicketDetail{Ticket: ticket, Assignments: assignments}
	feedback, err := repos.Feedback.GetByTicket(ctx, ticket.ID)
	switch {
	case err == nil:
		detail.Feedback = feedback
	case !isNotFound(err):
		return nil, storageErr(err, nil)
	}
	return detail, nil
}

// List returns tickets. Students are pinned to their own tickets.
func (s *TicketService) List(ctx context.Context, actor domain.Actor, filter TicketListFilter) ([]domain.Ticket, error) {
	repos := s.store.Repos()
	query := domain.TicketFilter{
		Statuses:      filter.Statuses,
		CategoryID:    filter.CategoryID,
		SubCategoryID: filter.SubCategoryID,
		AssigneeID:    filter.AssigneeID,
		SearchTerm:    filter.SearchTerm,
		Limit:         filter.Limit,
		Offset:        filter.Offset,
	}
	for _, status := range filter.Statuses {
		if !status.IsValid() {
			return nil, invalidStatus(status)
		}
	}

	if actor.IsStudent() {
		student, err := s.resolveStudent(ctx, repos, actor)
		if err != nil {
			return nil, err
		}
		if filter.StudentAdmission != nil && *filter.StudentAdmission != student.AdmissionNumber {
			return nil, apperrors.NewAccessDenied("ACCESS_DENIED", "students may only list their own tickets")
		}
		query.StudentRef = &student.ID
	} else {
		if err := s.authz.Require(ctx, actor, domain.ModuleTicketManagement, domain.OpRead); err != nil {
			return nil, err
		}
		if filter.StudentAdmission != nil {
			student, err := repos.Students.GetByAdmissionNumber(ctx, *filter.StudentAdmission)
			if err != nil {
				return nil, storageErr(err, studentNotFound(*filter.StudentAdmission))
			}
			query.StudentRef = &student.ID
		}
	}

	tickets, err := repos.Tickets.List(ctx, query)
	if err != nil {
		return nil, storageErr(err, nil)
	}
	return tickets, nil
}

func invalidStatus(status domain.TicketStatus) error {
	return apperrors.NewValidationError("INVALID_STATUS", "status must be one of pending, approaching, resolving, completed, closed",
		map[string]any{"status": string(status)})
}

// ChangeStatus writes the ticket row and its history entry in one transaction. Any target
// status is accepted; non-sequential moves are logged at warn.
func (s *TicketService) ChangeStatus(ctx context.Context, actor domain.Actor, ticketID string, next domain.TicketStatus, notes string) (*domain.Ticket, error) {
	if err := s.authz.Require(ctx, actor, domain.ModuleTicketManagement, domain.OpUpdate); err != nil {
		return nil, err
	}
	if !next.IsValid() {
		return nil, invalidStatus(next)
	}
	notes = strings.TrimSpace(notes)

	var (
		ticket *domain.Ticket
		old    domain.TicketStatus
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		ticket, err = repos.Tickets.GetByIDForUpdate(ctx, ticketID)
		if err != nil {
			return storageErr(err, ticketNotFound(ticketID))
		}
		old = ticket.Status
		ticket.ApplyStatus(next, s.now())
		if err := repos.Tickets.UpdateStatus(ctx, ticket); err != nil {
			return storageErr(err, ticketNotFound(ticketID))
		}
		return storageErr(repos.History.Create(ctx, &domain.StatusHistoryEntry{
			TicketID:     ticket.ID,
			OldStatus:    old,
			NewStatus:    next,
			ChangedByRef: actor.ID,
			Notes:        notes,
		}), nil)
	})
	if err != nil {
		return nil, err
	}

	sequential := old.IsSequentialStep(next)
	fields := []zap.Field{
		zap.String("ticket_id", ticket.ID),
		zap.String("old_status", string(old)),
		zap.String("new_status", string(next)),
		zap.String("changed_by", actor.ID),
	}
	if sequential {
		s.logger.Info("ticket status changed", fields...)
	} else {
		s.logger.Warn("ticket status jumped outside the linear lifecycle", fields...)
	}
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    events.ActorFrom(actor),
		Payload: events.TicketStatusChangedPayload{
			OldStatus:  old,
			NewStatus:  next,
			Notes:      notes,
			Sequential: sequential,
		},
	})
	return ticket, nil
}

// AddComment appends to the thread. The author kind comes from the caller identity and
// students can never post internal comments.
func (s *TicketService) AddComment(ctx context.Context, actor domain.Actor, ticketID, text string, internal bool) (*domain.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewValidationError("EMPTY_COMMENT", "comment text is required", nil)
	}

	comment := &domain.Comment{TicketID: ticketID, Text: text}
	if actor.IsStudent() {
		_, student, err := s.authorizeRead(ctx, actor, ticketID)
		if err != nil {
			return nil, err
		}
		comment.AuthorRef = student.ID
		comment.AuthorKind = domain.AuthorKindStudent
	} else {
		if err := s.authz.Require(ctx, actor, domain.ModuleTicketManagement, domain.OpUpdate); err != nil {
			return nil, err
		}
		if _, err := s.store.Repos().Tickets.GetByID(ctx, ticketID); err != nil {
			return nil, storageErr(err, ticketNotFound(ticketID))
		}
		comment.AuthorRef = actor.ID
		comment.AuthorKind = domain.AuthorKindStaff
		comment.IsInternal = internal
	}

	if err := s.store.Repos().Comments.Create(ctx, comment); err != nil {
		return nil, storageErr(err, nil)
	}
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventTicketCommentAdded,
		TicketID: ticketID,
		Actor:    events.ActorFrom(actor),
		Payload: events.TicketCommentAddedPayload{
			CommentID:   comment.ID,
			AuthorKind:  comment.AuthorKind,
			IsInternal:  comment.IsInternal,
			TextPreview: stringPreview(comment.Text, 120),
		},
	})
	return comment, nil
}

// Comments returns the full thread including internal comments. Callers serving students
// must drop internal rows with domain.VisibleToStudents.
func (s *TicketService) Comments(ctx context.Context, actor domain.Actor, ticketID string) ([]domain.Comment, error) {
	if _, _, err := s.authorizeRead(ctx, actor, ticketID); err != nil {
		return nil, err
	}
	comments, err := s.store.Repos().Comments.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, storageErr(err, nil)
	}
	return comments, nil
}

// History returns the status audit trail oldest first.
func (s *TicketService) History(ctx context.Context, actor domain.Actor, ticketID string) ([]domain.StatusHistoryEntry, error) {
	if _, _, err := s.authorizeRead(ctx, actor, ticketID); err != nil {
		return nil, err
	}
	entries, err := s.store.Repos().History.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, storageErr(err, nil)
	}
	return entries, nil
}

// SubmitFeedback records the single rating a student may leave on a completed ticket.
// Checks run in order: rating range, ticket, ownership, status, duplicate.
func (s *TicketService) SubmitFeedback(ctx context.Context, actor domain.Actor, ticketID string, rating int, text string) (*domain.Feedback, error) {
	if !actor.IsStudent() {
		return nil, apperrors.NewAccessDenied("ACCESS_DENIED", "only students can submit feedback")
	}
	if rating < domain.MinRating || rating > domain.MaxRating {
		return nil, apperrors.NewValidationError("RATING_OUT_OF_RANGE", "rating must be between 1 and 5",
			map[string]any{"rating": rating})
	}

	repos := s.store.Repos()
	student, err := s.resolveStudent(ctx, repos, actor)
	if err != nil {
		return nil, err
	}
	ticket, err := repos.Tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, storageErr(err, ticketNotFound(ticketID))
	}
	if ticket.StudentRef != student.ID {
		return nil, apperrors.NewAccessDenied("NOT_OWNER", "ticket belongs to another student")
	}
	if ticket.Status != domain.TicketStatusCompleted {
		return nil, apperrors.NewConflict("TICKET_NOT_COMPLETED", "feedback is only accepted on completed tickets",
			map[string]any{"status": string(ticket.Status)})
	}

	duplicate := apperrors.NewConflict("DUPLICATE_FEEDBACK", "feedback already submitted for this ticket",
		map[string]any{"ticket_id": ticketID})
	if _, err := repos.Feedback.GetByTicket(ctx, ticketID); err == nil {
		return nil, duplicate
	} else if !isNotFound(err) {
		return nil, storageErr(err, nil)
	}

	feedback := &domain.Feedback{
		TicketID:   ticketID,
		StudentRef: student.ID,
		Rating:     rating,
		Text:       strings.TrimSpace(text),
	}
	if err := repos.Feedback.Create(ctx, feedback); err != nil {
		if isDuplicate(err) {
			return nil, duplicate
		}
		return nil, storageErr(err, nil)
	}
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventTicketFeedbackSubmitted,
		TicketID: ticketID,
		Actor:    events.ActorFrom(actor),
		Payload:  events.TicketFeedbackSubmittedPayload{FeedbackID: feedback.ID, Rating: rating},
	})
	return feedback, nil
}
