package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/service"
)

// TicketsHandler serves ticket lifecycle endpoints for students and staff.
type TicketsHandler struct {
	tickets     *service.TicketService
	assignments *service.AssignmentService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, assignments *service.AssignmentService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, assignments: assignments}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ticket, err := h.tickets.Create(c.UserContext(), actor, service.TicketCreateInput{
		AdmissionNumber: req.AdmissionNumber,
		CategoryID:      req.CategoryID,
		SubCategoryID:   req.SubCategoryID,
		Title:           req.Title,
		Description:     req.Description,
		PhotoRef:        req.PhotoRef,
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "ticket created", ticketDetail(ticket, nil, nil))
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	tickets, err := h.tickets.List(c.UserContext(), actor, parseTicketQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return respond(c, fiber.StatusOK, "", items)
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	detail, err := h.tickets.Get(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", ticketDetail(detail.Ticket, detail.Assignments, detail.Feedback))
}

// AssignTicket POST /tickets/:id/assign.
func (h *TicketsHandler) AssignTicket(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.AssignTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := h.assignments.Assign(c.UserContext(), actor, c.Params("id"), req.EmployeeIDs, req.Notes)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "ticket assigned", dto.AssignTicketResponse{
		Ticket:       ticketSummary(result.Ticket),
		Assignments:  assignmentResponses(result.Assignments),
		Replaced:     result.Replaced,
		AutoAdvanced: result.AutoAdvanced,
	})
}

// ChangeStatus PUT /tickets/:id/status.
func (h *TicketsHandler) ChangeStatus(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.ChangeStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ticket, err := h.tickets.ChangeStatus(c.UserContext(), actor, c.Params("id"),
		domain.TicketStatus(strings.ToLower(strings.TrimSpace(req.Status))), req.Notes)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "status updated", ticketDetail(ticket, nil, nil))
}

// History GET /tickets/:id/history.
func (h *TicketsHandler) History(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	entries, err := h.tickets.History(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", historyResponses(entries))
}

// AddComment POST /tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.CreateCommentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	comment, err := h.tickets.AddComment(c.UserContext(), actor, c.Params("id"), req.Text, req.IsInternal)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "comment added", commentResponse(comment))
}

// ListComments GET /tickets/:id/comments. Students never see internal comments.
func (h *TicketsHandler) ListComments(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	comments, err := h.tickets.Comments(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	if actor.IsStudent() {
		comments = domain.VisibleToStudents(comments)
	}
	items := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		items = append(items, commentResponse(&comments[i]))
	}
	return respond(c, fiber.StatusOK, "", items)
}

// SubmitFeedback POST /tickets/:id/feedback.
func (h *TicketsHandler) SubmitFeedback(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.SubmitFeedbackRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	feedback, err := h.tickets.SubmitFeedback(c.UserContext(), actor, c.Params("id"), req.Rating, req.Text)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "feedback submitted", feedbackResponse(feedback))
}

func parseTicketQuery(c *fiber.Ctx) service.TicketListFilter {
	filter := service.TicketListFilter{
		CategoryID:       optionalQuery(c, "category_id"),
		SubCategoryID:    optionalQuery(c, "sub_category_id"),
		AssigneeID:       optionalQuery(c, "assignee_id"),
		StudentAdmission: optionalQuery(c, "admission_number"),
		SearchTerm:       optionalQuery(c, "q"),
	}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			if part = strings.TrimSpace(part); part != "" {
				filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.ToLower(part)))
			}
		}
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	if pageSize > 100 {
		pageSize = 100
	}
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}
