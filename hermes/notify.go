package hermes

import (
	"context"
	"fmt"
	"strings"

	"github.com/lunagic/hermes/hermesservices/mailer"
)

func summaryEnvelope(summary Summary, runErr error, to []mailer.EnvelopeTarget) mailer.Envelope {
	subject := fmt.Sprintf("hermes: %d new vehicles", summary.Added)
	if runErr != nil {
		subject = "hermes: scrape failed"
	}

	body := strings.Builder{}
	fmt.Fprintf(&body, "run %s\n", summary.RunID)
	fmt.Fprintf(&body, "%d pages, %d new vehicles, %d skipped, %d refused\n",
		summary.Pages,
		summary.Added,
		summary.Skipped,
		summary.Refused,
	)

	if len(summary.Workbooks) > 0 {
		body.WriteString("\nworkbooks:\n")
		for _, workbook := range summary.Workbooks {
			body.WriteString("  " + workbook + "\n")
		}
	}

	if len(summary.Published) > 0 {
		body.WriteString("\npublished:\n")
		for _, location := range summary.Published {
			body.WriteString("  " + location + "\n")
		}
	}

	if runErr != nil {
		fmt.Fprintf(&body, "\nerror: %s\n", runErr)
	}

	return mailer.Envelope{
		To:      to,
		Subject: subject,
		Body:    body.String(),
	}
}

// notify mails the summary. Mail failures are logged, never returned.
func (app *App) notify(ctx context.Context, summary Summary, runErr error) {
	to := mailer.ParseTargets(app.config.ScrapeNotifyTo)
	if app.mailer == nil || len(to) == 0 {
		return
	}

	if err := app.mailer.Send(ctx, summaryEnvelope(summary, runErr, to)); err != nil {
		app.logger.Warn("Summary Not Mailed",
			"run", summary.RunID,
			"err", err,
		)
	}
}
