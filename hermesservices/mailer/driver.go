package mailer

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"slices"
	"strings"

	"github.com/lunagic/hermes/hermestools"
)

var ErrNoRecipients = errors.New("envelope has no recipients")

type EnvelopeTarget struct {
	Name  string
	Email string
}

func (target EnvelopeTarget) String() string {
	if target.Name == "" {
		return target.Email
	}

	return fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", target.Name), target.Email)
}

// ParseTargets splits a comma separated address list, dropping blanks.
func ParseTargets(list string) []EnvelopeTarget {
	targets := []EnvelopeTarget{}
	for _, address := range strings.Split(list, ",") {
		address = strings.TrimSpace(address)
		if address == "" {
			continue
		}
		targets = append(targets, EnvelopeTarget{Email: address})
	}

	return targets
}

type Envelope struct {
	To      []EnvelopeTarget
	CC      []EnvelopeTarget
	BCC     []EnvelopeTarget
	From    EnvelopeTarget
	Subject string
	Body    string
}

func (envelope Envelope) Destinations() ([]string, error) {
	destinations := hermestools.Map(slices.Concat(envelope.To, envelope.CC, envelope.BCC), func(target EnvelopeTarget) string {
		return target.Email
	})

	if len(destinations) == 0 {
		return nil, ErrNoRecipients
	}

	return destinations, nil
}

// Message renders the RFC 5322 message. BCC targets are never listed.
func (envelope Envelope) Message() ([]byte, error) {
	headers := [][2]string{
		{"From", envelope.From.String()},
		{"To", joinTargets(envelope.To)},
		{"CC", joinTargets(envelope.CC)},
		{"Subject", mime.QEncoding.Encode("utf-8", envelope.Subject)},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/plain; charset=utf-8"},
	}

	message := strings.Builder{}
	for _, header := range headers {
		if header[1] == "" {
			continue
		}
		message.WriteString(header[0] + ": " + header[1] + "\r\n")
	}
	message.WriteString("\r\n")
	message.WriteString(strings.ReplaceAll(envelope.Body, "\n", "\r\n"))

	return []byte(message.String()), nil
}

func joinTargets(targets []EnvelopeTarget) string {
	return strings.Join(hermestools.Map(targets, EnvelopeTarget.String), ", ")
}

type Driver interface {
	Send(ctx context.Context, envelope Envelope) error
}
