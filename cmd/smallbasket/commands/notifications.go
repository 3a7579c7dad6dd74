package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func notificationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notif"},
		Short:   "Read and manage saved push notifications",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List saved notifications, newest first",
			RunE: func(cmd *cobra.Command, args []string) error {
				items, err := appCtx.Notifications.List(cmd.Context())
				if err != nil {
					return err
				}
				return printNotifications(items)
			},
		},
		&cobra.Command{
			Use:   "unread",
			Short: "Print the unread count",
			RunE: func(cmd *cobra.Command, args []string) error {
				n, err := appCtx.Notifications.UnreadCount(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(stdout, n)
				return nil
			},
		},
		&cobra.Command{
			Use:   "read ID",
			Short: "Mark one notification as read",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return appCtx.Notifications.MarkRead(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "read-all",
			Short: "Mark every notification as read",
			RunE: func(cmd *cobra.Command, args []string) error {
				return appCtx.Notifications.MarkAllRead(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "delete ID",
			Short: "Delete one notification",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return appCtx.Notifications.Delete(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Delete all notifications",
			RunE: func(cmd *cobra.Command, args []string) error {
				return appCtx.Notifications.Clear(cmd.Context())
			},
		},
	)
	return cmd
}

// token: manage the push token registered with the backend.
func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the push notification token",
	}

	register := &cobra.Command{
		Use:   "register [TOKEN]",
		Short: "Save a push token and send it to the backend",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(args) == 1 {
				if err := appCtx.Notifications.SaveToken(ctx, args[0]); err != nil {
					return err
				}
			}
			ok, err := appCtx.Notifications.RegisterToken(ctx)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(stdout, "Token saved. Sign in to register it with the backend.")
				return nil
			}
			fmt.Fprintln(stdout, "Token registered.")
			return nil
		},
	}

	unregister := &cobra.Command{
		Use:   "unregister",
		Short: "Remove the push token and clear local notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := appCtx.Notifications.Unregister(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(stdout, "Token removed.")
			return nil
		},
	}

	cmd.AddCommand(register, unregister)
	return cmd
}
