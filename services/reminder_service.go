package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"firstbites/models"

	"go.uber.org/zap"
)

// EmailSender is satisfied by utils.Mailer.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// ReminderService nudges parents to keep feeding allergens that were cleared
// but have not been eaten within the maintenance window.
type ReminderService struct {
	mailer     EmailSender
	dispatcher Dispatcher
	log        *zap.SugaredLogger
}

func NewReminderService(mailer EmailSender, dispatcher Dispatcher, log *zap.SugaredLogger) *ReminderService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &ReminderService{mailer: mailer, dispatcher: dispatcher, log: log}
}

type ReminderResult struct {
	Foods    []string `json:"foods"`
	Emailed  bool     `json:"emailed"`
	Notified bool     `json:"notified"`
}

// SendMaintenance sends one digest for the user's overdue allergens. Nothing
// is sent when the list is empty or the user turned reminders off.
func (r *ReminderService) SendMaintenance(ctx context.Context, t *Tracker) (*ReminderResult, error) {
	due := t.GetAllergenMaintenanceNeeded()
	res := &ReminderResult{Foods: make([]string, 0, len(due))}
	for _, f := range due {
		res.Foods = append(res.Foods, f.Name)
	}
	user := t.Profile()
	if len(due) == 0 || !user.ReminderAlerts {
		return res, nil
	}

	baby := user.BabyName
	if baby == "" {
		baby = "your little one"
	}
	title := "Time to keep allergens in the routine"
	body := fmt.Sprintf("It has been over a week since %s had: %s.", baby, strings.Join(res.Foods, ", "))

	var errs []error
	if r.mailer != nil && user.Email != "" {
		text := body + "\n\nRegular exposure helps keep tolerance. Log a serving in the app when you offer it."
		if err := r.mailer.Send(ctx, user.Email, title, text); err != nil {
			errs = append(errs, err)
		} else {
			res.Emailed = true
		}
	}
	if r.dispatcher != nil {
		err := r.dispatcher.Dispatch(ctx, Notification{
			UserID:      user.ID,
			Title:       title,
			Body:        body,
			Type:        models.NotificationMaintenance,
			ReferenceID: fmt.Sprintf("%d", due[0].ID),
		})
		if err != nil {
			errs = append(errs, err)
		} else {
			res.Notified = true
		}
	}
	if err := errors.Join(errs...); err != nil {
		r.log.Warnw("maintenance reminder incomplete", "user_id", user.ID, "error", err)
		return res, err
	}
	return res, nil
}
