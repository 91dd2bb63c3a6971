package mailer

import (
	"context"
	"fmt"
	"net/smtp"
)

func NewDriverSMTP(config DriverSMTPConfig) (Driver, error) {
	return &driverSMTP{
		config: config,
	}, nil
}

type DriverSMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	Name string
}

type driverSMTP struct {
	config DriverSMTPConfig
}

func (driver driverSMTP) Send(ctx context.Context, envelope Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	envelope.From.Email = driver.config.User
	if envelope.From.Name == "" {
		envelope.From.Name = driver.config.Name
	}

	destinations, err := envelope.Destinations()
	if err != nil {
		return err
	}

	message, err := envelope.Message()
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if driver.config.Pass != "" {
		auth = smtp.PlainAuth(
			"",
			driver.config.User,
			driver.config.Pass,
			driver.config.Host,
		)
	}

	if err := smtp.SendMail(
		fmt.Sprintf("%s:%d", driver.config.Host, driver.config.Port),
		auth,
		driver.config.User,
		destinations,
		message,
	); err != nil {
		return fmt.Errorf("sending %q: %w", envelope.Subject, err)
	}

	return nil
}
