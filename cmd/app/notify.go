package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"club-bridge/internal/domain"
	"club-bridge/internal/domain/model"
	"club-bridge/internal/domain/ports/repository"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Send profile moderation notices over telegram",
}

var notifyReviewCmd = &cobra.Command{
	Use:   "review <user_slug>",
	Short: "Ask the moderators to review a new profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		user, err := a.users.FindBySlug(ctx, repository.NoTX, args[0])
		if err != nil {
			return fmt.Errorf("user %q: %w", args[0], err)
		}
		intro, err := a.posts.FindIntroByAuthor(ctx, repository.NoTX, user.ID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if err := a.moderationUC.NotifyProfileNeedsReview(ctx, user, intro); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "review request for %s sent\n", user.Slug)
		return nil
	},
}

var notifyApprovedCmd = &cobra.Command{
	Use:   "approved <user_slug>",
	Short: "Tell a user their profile passed moderation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return notifyUser(cmd, args[0], func(a *app, u *model.User) (bool, error) {
			return a.moderationUC.NotifyProfileApproved(cmd.Context(), u)
		})
	},
}

var notifyRejectedCmd = &cobra.Command{
	Use:   "rejected <user_slug>",
	Short: "Tell a user their profile was rejected",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return notifyUser(cmd, args[0], func(a *app, u *model.User) (bool, error) {
			return a.moderationUC.NotifyProfileRejected(cmd.Context(), u)
		})
	},
}

func init() {
	notifyCmd.AddCommand(notifyReviewCmd, notifyApprovedCmd, notifyRejectedCmd)
}

func notifyUser(cmd *cobra.Command, slug string, send func(*app, *model.User) (bool, error)) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	user, err := a.users.FindBySlug(cmd.Context(), repository.NoTX, slug)
	if err != nil {
		return fmt.Errorf("user %q: %w", slug, err)
	}
	sent, err := send(a, user)
	if err != nil {
		return err
	}
	if !sent {
		fmt.Fprintf(cmd.OutOrStdout(), "%s has no telegram linked; nothing sent\n", user.Slug)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "notice sent to %s\n", user.Slug)
	return nil
}
