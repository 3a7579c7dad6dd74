package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"smallbasket/internal/domain/entities"
)

func rateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rate",
		Aliases: []string{"ratings"},
		Short:   "Rate deliverers and read their ratings",
	}
	cmd.AddCommand(rateCreateCmd(), rateUpdateCmd(), rateDeleteCmd(), rateSummaryCmd(), rateListCmd())
	return cmd
}

func parseStars(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("rating must be a number from 1 to 5")
	}
	return n, nil
}

func printRating(r *entities.Rating) error {
	if jsonOutput {
		return printJSON(r)
	}
	fmt.Fprintf(stdout, "%s: %d stars for %s", r.RatingID, r.Rating, r.RequestID)
	if r.Comment != "" {
		fmt.Fprintf(stdout, " (%s)", r.Comment)
	}
	fmt.Fprintln(stdout)
	return nil
}

func rateCreateCmd() *cobra.Command {
	var comment string
	cmd := &cobra.Command{
		Use:   "create REQUEST_ID STARS",
		Short: "Rate the deliverer of a completed request",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			stars, err := parseStars(args[1])
			if err != nil {
				return err
			}
			r, err := appCtx.Orders.CreateRating(cmd.Context(), args[0], stars, comment)
			if err != nil {
				return err
			}
			return printRating(r)
		},
	}
	cmd.Flags().StringVar(&comment, "comment", "", "optional comment")
	return cmd
}

func rateUpdateCmd() *cobra.Command {
	var comment string
	cmd := &cobra.Command{
		Use:   "update RATING_ID STARS",
		Short: "Change a rating you gave",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			stars, err := parseStars(args[1])
			if err != nil {
				return err
			}
			r, err := appCtx.Orders.UpdateRating(cmd.Context(), args[0], stars, comment)
			if err != nil {
				return err
			}
			return printRating(r)
		},
	}
	cmd.Flags().StringVar(&comment, "comment", "", "optional comment")
	return cmd
}

func rateDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete RATING_ID",
		Short: "Delete a rating you gave",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := appCtx.Orders.DeleteRating(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, resp.Message)
			return nil
		},
	}
}

func rateSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary [UID]",
		Short: "Show a deliverer's rating summary (yours by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				stats *entities.RatingStats
				err   error
			)
			if len(args) == 1 {
				stats, err = appCtx.Orders.RatingSummary(cmd.Context(), args[0])
			} else {
				stats, err = appCtx.Orders.MyRatingSummary(cmd.Context())
			}
			if err != nil {
				return err
			}
			return printStats(stats)
		},
	}
}

func rateListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [UID]",
		Short: "List a deliverer's ratings (yours by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				out *entities.UserRatings
				err error
			)
			if len(args) == 1 {
				out, err = appCtx.Orders.DelivererRatings(cmd.Context(), args[0])
			} else {
				out, err = appCtx.Orders.MyDelivererRatings(cmd.Context())
			}
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(out)
			}
			if err := printStats(&out.Stats); err != nil {
				return err
			}
			for _, r := range out.Ratings {
				fmt.Fprintf(stdout, "  %v stars  %v\n", r["rating"], r["comment"])
			}
			return nil
		},
	}
}

func printStats(s *entities.RatingStats) error {
	if jsonOutput {
		return printJSON(s)
	}
	fmt.Fprintf(stdout, "%.1f average over %d ratings", s.AverageRating, s.TotalRatings)
	if s.RatingBadge != "" {
		fmt.Fprintf(stdout, " [%s]", s.RatingBadge)
	}
	fmt.Fprintln(stdout)
	return nil
}
