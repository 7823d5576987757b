package handlers

import (
	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/domain"
)

func categoryResponse(category *domain.Category) dto.CategoryResponse {
	return dto.CategoryResponse{
		ID:           category.ID,
		Name:         category.Name,
		ParentID:     category.ParentID,
		IsActive:     category.IsActive,
		DisplayOrder: category.DisplayOrder,
		CreatedAt:    category.CreatedAt,
		UpdatedAt:    category.UpdatedAt,
	}
}

func categoryTree(nodes []domain.CategoryNode) []dto.CategoryTreeResponse {
	out := make([]dto.CategoryTreeResponse, 0, len(nodes))
	for i := range nodes {
		children := make([]dto.CategoryResponse, 0, len(nodes[i].Children))
		for j := range nodes[i].Children {
			children = append(children, categoryResponse(&nodes[i].Children[j]))
		}
		out = append(out, dto.CategoryTreeResponse{
			CategoryResponse: categoryResponse(&nodes[i].Category),
			Children:         children,
		})
	}
	return out
}

func roleResponse(role *domain.Role) dto.RoleResponse {
	return dto.RoleResponse{
		ID:             role.ID,
		RoleName:       role.RoleName,
		DisplayName:    role.DisplayName,
		Description:    role.Description,
		Permissions:    role.Permissions,
		IsSystemRole:   role.IsSystemRole,
		IsUnrestricted: role.IsUnrestricted,
		IsActive:       role.IsActive,
		CreatedAt:      role.CreatedAt,
		UpdatedAt:      role.UpdatedAt,
	}
}

func employeeResponse(employee domain.Employee) dto.EmployeeResponse {
	profile := employee.Profile()
	resp := dto.EmployeeResponse{
		ID:             profile.ID,
		Kind:           string(employee.Kind()),
		DisplayName:    profile.DisplayName,
		Username:       profile.Username,
		CustomRoleID:   profile.CustomRoleID,
		CategoryIDs:    nonNil(profile.CategoryIDs),
		SubCategoryIDs: nonNil(profile.SubCategoryIDs),
		IsActive:       profile.IsActive,
		CreatedAt:      profile.CreatedAt,
		UpdatedAt:      profile.UpdatedAt,
	}
	switch e := employee.(type) {
	case *domain.Manager:
		resp.IdentityRef = e.IdentityRef
	case *domain.Worker:
		resp.ContactPhone = e.ContactPhone
	}
	return resp
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:            ticket.ID,
		TicketNumber:  ticket.TicketNumber,
		StudentRef:    ticket.StudentRef,
		CategoryID:    ticket.CategoryID,
		SubCategoryID: ticket.SubCategoryID,
		Title:         ticket.Title,
		Status:        ticket.Status,
		CreatedAt:     ticket.CreatedAt,
		UpdatedAt:     ticket.UpdatedAt,
	}
}

func ticketDetail(ticket *domain.Ticket, assignments []domain.Assignment, feedback *domain.Feedback) dto.TicketDetailResponse {
	resp := dto.TicketDetailResponse{
		TicketSummary: ticketSummary(ticket),
		Description:   ticket.Description,
		PhotoRef:      ticket.PhotoRef,
		ResolvedAt:    ticket.ResolvedAt,
		ClosedAt:      ticket.ClosedAt,
		Assignments:   assignmentResponses(assignments),
	}
	if feedback != nil {
		fb := feedbackResponse(feedback)
		resp.Feedback = &fb
	}
	return resp
}

func assignmentResponses(assignments []domain.Assignment) []dto.AssignmentResponse {
	out := make([]dto.AssignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		out = append(out, dto.AssignmentResponse{
			ID:            a.ID,
			EmployeeRef:   a.EmployeeRef,
			AssignedByRef: a.AssignedByRef,
			AssignedAt:    a.AssignedAt,
			Notes:         a.Notes,
			IsActive:      a.IsActive,
		})
	}
	return out
}

func historyResponses(entries []domain.StatusHistoryEntry) []dto.StatusHistoryResponse {
	out := make([]dto.StatusHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, dto.StatusHistoryResponse{
			ID:           entry.ID,
			OldStatus:    entry.OldStatus,
			NewStatus:    entry.NewStatus,
			ChangedByRef: entry.ChangedByRef,
			Notes:        entry.Notes,
			CreatedAt:    entry.CreatedAt,
		})
	}
	return out
}

func commentResponse(comment *domain.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:         comment.ID,
		AuthorRef:  comment.AuthorRef,
		AuthorKind: comment.AuthorKind,
		Text:       comment.Text,
		IsInternal: comment.IsInternal,
		CreatedAt:  comment.CreatedAt,
	}
}

func feedbackResponse(feedback *domain.Feedback) dto.FeedbackResponse {
	return dto.FeedbackResponse{
		ID:         feedback.ID,
		StudentRef: feedback.StudentRef,
		Rating:     feedback.Rating,
		Text:       feedback.Text,
		CreatedAt:  feedback.CreatedAt,
	}
}
