package main

import (
	"context"

	"firstbites/config"
	"firstbites/services"

	"github.com/spf13/cobra"
)

func remindCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "remind",
		Short: "Send allergen maintenance reminders to every user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, *cfg)
			if err != nil {
				return err
			}
			defer a.close()

			_, err = a.sendReminders(ctx)
			return err
		},
	}
}

// sendReminders opens a session per user, sends the maintenance digest and
// closes the session again. Failures for one user are logged and skipped.
func (a *app) sendReminders(ctx context.Context) (int, error) {
	users, err := services.NewGormStore(a.db).ListUsers(ctx)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, u := range users {
		t, err := a.sessions.Open(ctx, u.ID, u.Email)
		if err != nil {
			a.log.Warnw("open session", "user_id", u.ID, "error", err)
			continue
		}
		res, err := a.reminders.SendMaintenance(ctx, t)
		a.sessions.Close(u.ID)
		if err != nil {
			a.log.Warnw("reminder failed", "user_id", u.ID, "error", err)
			continue
		}
		if res.Emailed || res.Notified {
			sent++
		}
	}
	a.log.Infow("maintenance reminders done", "users", len(users), "sent", sent)
	return sent, nil
}
