package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/oksasatya/go-social-api/config"
	"github.com/oksasatya/go-social-api/pkg/mailer"
	mailtpl "github.com/oksasatya/go-social-api/pkg/mailer/templates"
)

var mailCmd = &cobra.Command{
	Use:   "mail",
	Short: "Check email delivery",
}

var mailTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send the welcome template directly through Mailgun",
	RunE: func(cmd *cobra.Command, args []string) error {
		to, _ := cmd.Flags().GetString("to")
		cfg := config.Load()
		mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
		if !mg.Configured() {
			return errors.New("mailgun is not configured (MAILGUN_DOMAIN, MAILGUN_API_KEY, MAILGUN_SENDER)")
		}
		subject, text, html, err := mailtpl.Render(mailer.TemplateWelcome, mailtpl.ToMap(mailtpl.EmailData{
			Name:    "there",
			AppName: cfg.AppName,
			AppURL:  cfg.AppURL,
		}))
		if err != nil {
			return fmt.Errorf("rendering: %w", err)
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()
		msg := mailer.Message{To: to, Subject: subject, Text: text, HTML: html, Tag: mailer.TemplateWelcome}
		if err := mg.Send(ctx, msg); err != nil {
			return fmt.Errorf("sending: %w", err)
		}
		cmd.Printf("Sent %q to %s\n", subject, to)
		return nil
	},
}
