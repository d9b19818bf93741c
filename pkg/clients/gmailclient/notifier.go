package gmailclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/jakechorley/manpower/pkg/core/model"
)

// NotifyScheduled emails an employee about a newly created pending schedule
func (c *Client) NotifyScheduled(ctx context.Context, employee model.Employee, req model.ManpowerRequest, schedule model.Schedule) error {
	if strings.TrimSpace(employee.Email) == "" {
		return fmt.Errorf("employee %d has no email address", employee.ID)
	}

	date := schedule.Date.Format(model.DateLayout)
	subject := fmt.Sprintf("You have been scheduled on %s", date)
	body := fmt.Sprintf(
		"Hi %s,\n\n"+
			"You have been scheduled to work on %s for manpower request #%d.\n"+
			"Please accept or reject this schedule. Your schedule reference is %s.\n",
		employee.Name, date, req.ID, schedule.ID,
	)

	return c.SendEmail(ctx, employee.Email, subject, body)
}
