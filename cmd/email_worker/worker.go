package main

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-api/pkg/mailer"
	mailtpl "github.com/oksasatya/go-social-api/pkg/mailer/templates"
)

const sendTimeout = 15 * time.Second

type sender interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// outcome tells the consumer loop how to settle a delivery.
type outcome int

const (
	ack outcome = iota
	drop
	requeue
)

var errNoRecipient = errors.New("job has no recipient")

// process decodes, renders and sends one job. Malformed jobs are dropped;
// send failures are requeued.
func process(ctx context.Context, mg sender, logger logrus.FieldLogger, body []byte) outcome {
	var job mailer.EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		logger.WithError(err).Warn("bad message")
		return drop
	}
	subject, text, html, err := render(job)
	if err != nil {
		logger.WithError(err).WithField("template", job.Template).Warn("render failed")
		return drop
	}

	c, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	msg := mailer.Message{To: job.To, Subject: subject, Text: text, HTML: html, Tag: job.Template}
	if err := mg.Send(c, msg); err != nil {
		logger.WithError(err).WithField("to", job.To).Error("send failed")
		return requeue
	}
	logger.WithFields(logrus.Fields{"to": job.To, "template": job.Template}).Info("email sent")
	return ack
}

func render(job mailer.EmailJob) (subject, text, html string, err error) {
	if job.To == "" {
		return "", "", "", errNoRecipient
	}
	if job.Template == "" {
		return job.Subject, job.Text, job.HTML, nil
	}
	return mailtpl.Render(job.Template, job.Data)
}
