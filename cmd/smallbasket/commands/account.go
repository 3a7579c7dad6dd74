package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"smallbasket/pkg/utils"
)

func profileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := appCtx.Orders.UserProfile(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(p)
			}
			fmt.Fprintf(stdout, "%s, %s <%s>\n", utils.Greeting(clock().Hour()), p.Name, p.Email)
			fmt.Fprintf(stdout, "  uid:       %s\n", p.UID)
			fmt.Fprintf(stdout, "  area:      %s\n", p.CurrentArea)
			fmt.Fprintf(stdout, "  preferred: %s\n", strings.Join(p.PreferredAreas, ", "))
			fmt.Fprintf(stdout, "  reachable: %t (connected %t)\n", p.IsReachable, p.IsConnected)
			return nil
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show how many requests you posted and accepted",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := appCtx.Orders.UserStats(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(s)
			}
			fmt.Fprintf(stdout, "posted %d, accepted %d, active %d\n", s.TotalPosted, s.TotalAccepted, s.ActiveRequests)
			return nil
		},
	}
}

func areasCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "areas",
		Short: "Service areas",
	}
	cmd.AddCommand(areasListCmd(), areasPreferCmd(), areasUsersCmd())
	return cmd
}

func areasListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the areas the backend serves",
		RunE: func(cmd *cobra.Command, args []string) error {
			areas, err := appCtx.Orders.AvailableAreas(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(areas)
			}
			for _, a := range areas {
				fmt.Fprintln(stdout, a)
			}
			return nil
		},
	}
}

func areasPreferCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prefer AREA...",
		Short: "Set the areas you want new-request alerts for",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := appCtx.Orders.SetPreferredAreas(cmd.Context(), args)
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, resp.Message)
			return nil
		},
	}
}

func areasUsersCmd() *cobra.Command {
	var includeEdge bool
	cmd := &cobra.Command{
		Use:   "users AREA",
		Short: "List users currently in an area",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := appCtx.Maps.UsersInArea(cmd.Context(), args[0], includeEdge)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(out)
			}
			w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "%d users in %s\n", out.Total, out.Area)
			for _, u := range out.Users {
				fmt.Fprintf(w, "%s\t%s\t%.5f,%.5f\n", u.UserID, u.DisplayName, u.Latitude, u.Longitude)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&includeEdge, "edge", true, "include users on the area edge")
	return cmd
}
