package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/oksasatya/go-social-api/pkg/apiclient"
)

var smokeCmd = &cobra.Command{
	Use:   "smoke",
	Short: "Drive a deployment through register, post, like, comment and delete",
	RunE: func(cmd *cobra.Command, args []string) error {
		api, _ := cmd.Flags().GetString("api")
		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()
		return runSmoke(ctx, apiclient.New(api), cmd.OutOrStdout())
	},
}

// runSmoke registers two throwaway users and checks each engagement step
// against the counts the API reports.
func runSmoke(ctx context.Context, c *apiclient.Client, out io.Writer) error {
	step := func(format string, args ...any) { fmt.Fprintf(out, "ok  "+format+"\n", args...) }
	tag := uuid.NewString()[:8]

	author, err := c.Register(ctx, apiclient.RegisterRequest{Name: "Smoke Author", Email: "smoke-author-" + tag + "@example.com", Password: "smoke-" + tag})
	if err != nil {
		return fmt.Errorf("register author: %w", err)
	}
	fan, err := c.Register(ctx, apiclient.RegisterRequest{Name: "Smoke Fan", Email: "smoke-fan-" + tag + "@example.com", Password: "smoke-" + tag})
	if err != nil {
		return fmt.Errorf("register fan: %w", err)
	}
	step("registered %s and %s", author.User.ID, fan.User.ID)

	asAuthor := apiclient.WithCredential(ctx, author.Token)
	asFan := apiclient.WithCredential(ctx, fan.Token)

	post, err := c.CreatePost(asAuthor, "smoke test "+tag, "")
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	step("created post %s", post.ID)

	like, err := c.ToggleLike(asFan, post.ID)
	if err != nil {
		return fmt.Errorf("like: %w", err)
	}
	if !like.Liked || like.LikesCount != 1 {
		return fmt.Errorf("like: got liked=%v count=%d, want true 1", like.Liked, like.LikesCount)
	}
	step("liked (count %d)", like.LikesCount)

	comment, err := c.Comment(asFan, post.ID, "nice one")
	if err != nil {
		return fmt.Errorf("comment: %w", err)
	}
	if comment.CommentsCount != 1 {
		return fmt.Errorf("comment: got count %d, want 1", comment.CommentsCount)
	}
	step("commented (count %d)", comment.CommentsCount)

	feed, err := c.UserPosts(asFan, author.User.ID, 1, 10)
	if err != nil {
		return fmt.Errorf("user posts: %w", err)
	}
	if len(feed.Posts) != 1 || feed.Posts[0].LikesCount != 1 || feed.Posts[0].CommentsCount != 1 {
		return fmt.Errorf("user posts: unexpected page %+v", feed.Pagination)
	}
	step("author feed shows the engagement")

	if err := c.DeletePost(asFan, post.ID); err == nil {
		return fmt.Errorf("delete by non-owner succeeded")
	}
	if err := c.DeletePost(asAuthor, post.ID); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	if _, err := c.GetPost(asAuthor, post.ID); err == nil {
		return fmt.Errorf("post still readable after delete")
	}
	step("deleted post %s", post.ID)
	return nil
}
