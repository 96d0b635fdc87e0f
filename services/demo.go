package services

import (
	"time"

	"github.com/lborres/ticketflow/core"
)

// demoData is the sample workload shown on a first run. Timestamps are
// relative to now so the dashboard always looks recent.
func demoData(now time.Time) ([]core.Ticket, []core.Activity) {
	ago := func(d time.Duration) time.Time { return timestamp(now.Add(-d)) }

	tickets := []core.Ticket{
		{
			ID:          "1",
			Title:       "Login Issue - Unable to access account",
			Description: "Users are reporting they cannot login to their accounts. Getting authentication errors.",
			Status:      core.StatusOpen,
			Priority:    core.PriorityHigh,
			Assignee:    "Sarah Chen",
			CreatedAt:   ago(2 * time.Hour),
			UpdatedAt:   ago(30 * time.Minute),
			CreatedBy:   systemActor,
		},
		{
			ID:          "2",
			Title:       "Payment Gateway Integration",
			Description: "Integrate new payment gateway for international transactions.",
			Status:      core.StatusInProgress,
			Priority:    core.PriorityHigh,
			Assignee:    "Mike Ross",
			CreatedAt:   ago(5 * time.Hour),
			UpdatedAt:   ago(time.Hour),
			CreatedBy:   systemActor,
		},
		{
			ID:          "3",
			Title:       "Mobile App Crash on iOS",
			Description: "App crashes when navigating to profile section on iOS devices.",
			Status:      core.StatusOpen,
			Priority:    core.PriorityMedium,
			Assignee:    "Alex Johnson",
			CreatedAt:   ago(8 * time.Hour),
			UpdatedAt:   ago(2 * time.Hour),
			CreatedBy:   systemActor,
		},
		{
			ID:          "4",
			Title:       "Update Documentation",
			Description: "Update API documentation with new endpoints and examples.",
			Status:      core.StatusClosed,
			Priority:    core.PriorityLow,
			Assignee:    defaultActor,
			CreatedAt:   ago(24 * time.Hour),
			UpdatedAt:   ago(3 * time.Hour),
			CreatedBy:   systemActor,
		},
	}

	activities := []core.Activity{
		{
			ID:       "1",
			Action:   core.ActionCreated,
			Ticket:   tickets[0].Title,
			TicketID: tickets[0].ID,
			User:     "Sarah Chen",
			Time:     ago(2 * time.Hour),
			Icon:     core.ActionCreated.Icon(),
		},
		{
			ID:       "2",
			Action:   core.ActionUpdated,
			Ticket:   tickets[1].Title,
			TicketID: tickets[1].ID,
			User:     "Mike Ross",
			Time:     ago(time.Hour),
			Icon:     core.ActionUpdated.Icon(),
		},
	}

	return tickets, activities
}
