package main

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/oksasatya/go-social-api/pkg/mailer"
	mailtpl "github.com/oksasatya/go-social-api/pkg/mailer/templates"
)

type fakeSender struct {
	err     error
	to      string
	subject string
	html    string
	tag     string
	calls   int
}

func (f *fakeSender) Send(_ context.Context, msg mailer.Message) error {
	f.calls++
	f.to, f.subject, f.html, f.tag = msg.To, msg.Subject, msg.HTML, msg.Tag
	return f.err
}

func encode(t *testing.T, job mailer.EmailJob) []byte {
	t.Helper()
	b, err := json.Marshal(job)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	return b
}

func TestProcess_RendersTemplate(t *testing.T) {
	logger, _ := test.NewNullLogger()
	s := &fakeSender{}
	body := encode(t, mailer.EmailJob{
		To:       "ann@example.com",
		Template: mailer.TemplatePostLiked,
		Data: mailtpl.ToMap(mailtpl.EmailData{
			Name:        "Ann",
			AppName:     "social",
			ActorName:   "Bob",
			PostExcerpt: "hello",
			PostURL:     "http://app.test/post/1",
		}),
	})
	if got := process(context.Background(), s, logger, body); got != ack {
		t.Fatalf("process() = %v, want ack", got)
	}
	if s.to != "ann@example.com" || s.subject == "" {
		t.Errorf("sent to=%q subject=%q", s.to, s.subject)
	}
	if s.tag != mailer.TemplatePostLiked {
		t.Errorf("tag = %q, want %q", s.tag, mailer.TemplatePostLiked)
	}
	if !strings.Contains(s.html, "Bob") {
		t.Errorf("html does not mention the actor: %q", s.html)
	}
}

func TestProcess_Outcomes(t *testing.T) {
	logger, _ := test.NewNullLogger()
	cases := []struct {
		name    string
		body    []byte
		sendErr error
		want    outcome
	}{
		{"malformed json", []byte("{"), nil, drop},
		{"no recipient", encode(t, mailer.EmailJob{Subject: "hi", Text: "x"}), nil, drop},
		{"unknown template", encode(t, mailer.EmailJob{To: "a@b.c", Template: "missing"}), nil, drop},
		{"raw message", encode(t, mailer.EmailJob{To: "a@b.c", Subject: "hi", Text: "x"}), nil, ack},
		{"send failure", encode(t, mailer.EmailJob{To: "a@b.c", Subject: "hi", Text: "x"}), errors.New("boom"), requeue},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := &fakeSender{err: tc.sendErr}
			if got := process(context.Background(), s, logger, tc.body); got != tc.want {
				t.Errorf("process() = %v, want %v", got, tc.want)
			}
		})
	}
}
