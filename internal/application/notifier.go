package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-api/internal/domain/entity"
	"github.com/oksasatya/go-social-api/pkg/helpers"
	"github.com/oksasatya/go-social-api/pkg/mailer"
	"github.com/oksasatya/go-social-api/pkg/mailer/templates"
)

// JobPublisher puts a JSON job on the notification queue.
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

const publishTimeout = 2 * time.Second

// Notifier turns engagement events into email jobs. A nil publisher disables
// it. Publish failures are logged and counted, never returned.
type Notifier struct {
	pub     JobPublisher
	logger  logrus.FieldLogger
	appName string
	appURL  string
}

func NewNotifier(pub JobPublisher, logger logrus.FieldLogger, appName, appURL string) *Notifier {
	return &Notifier{pub: pub, logger: logger, appName: appName, appURL: appURL}
}

func (n *Notifier) Enabled() bool { return n != nil && n.pub != nil }

func (n *Notifier) Welcome(ctx context.Context, u *entity.User) {
	if !n.Enabled() {
		return
	}
	n.publish(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: mailer.TemplateWelcome,
		Data: templates.ToMap(templates.EmailData{
			Name:    u.Name,
			AppName: n.appName,
			AppURL:  n.appURL,
		}),
	})
}

// PostLiked notifies the post's author. Self-likes are ignored.
func (n *Notifier) PostLiked(ctx context.Context, p *entity.Post, actor *entity.User) {
	if !n.Enabled() || p.OwnedBy(actor.ID) || p.Author.Email == "" {
		return
	}
	n.publish(ctx, mailer.EmailJob{
		To:       p.Author.Email,
		Template: mailer.TemplatePostLiked,
		Data: templates.ToMap(templates.EmailData{
			Name:        p.Author.Name,
			AppName:     n.appName,
			AppURL:      n.appURL,
			ActorName:   actor.Name,
			PostExcerpt: templates.Excerpt(p.Content, 120),
			PostURL:     n.postURL(p.ID),
		}),
	})
}

// PostCommented notifies the post's author. Comments on one's own post are ignored.
func (n *Notifier) PostCommented(ctx context.Context, p *entity.Post, actor *entity.User, c *entity.Comment) {
	if !n.Enabled() || p.OwnedBy(actor.ID) || p.Author.Email == "" {
		return
	}
	n.publish(ctx, mailer.EmailJob{
		To:       p.Author.Email,
		Template: mailer.TemplatePostCommented,
		Data: templates.ToMap(templates.EmailData{
			Name:        p.Author.Name,
			AppName:     n.appName,
			AppURL:      n.appURL,
			ActorName:   actor.Name,
			PostExcerpt: templates.Excerpt(p.Content, 120),
			CommentText: templates.Excerpt(c.Content, 280),
			PostURL:     n.postURL(p.ID),
		}),
	})
}

func (n *Notifier) postURL(postID string) string {
	return n.appURL + "/post/" + postID
}

func (n *Notifier) publish(ctx context.Context, job mailer.EmailJob) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := n.pub.PublishJSON(ctx, job); err != nil {
		notifyFailures.Add(1)
		helpers.LogWarn(n.logger, "notification publish failed", err, logrus.Fields{
			"template": job.Template,
		})
	}
}
