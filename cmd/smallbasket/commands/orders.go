package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"smallbasket/internal/domain/entities"
	"smallbasket/pkg/utils"
)

var clock = time.Now

func ordersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "orders",
		Aliases: []string{"order"},
		Short:   "Browse, post and manage delivery requests",
	}
	cmd.AddCommand(
		ordersListCmd(),
		ordersMineCmd(),
		ordersAcceptedCmd(),
		ordersGetCmd(),
		ordersCreateCmd(),
		ordersAcceptCmd(),
		ordersStatusCmd(),
	)
	return cmd
}

func ordersListCmd() *cobra.Command {
	var status, area string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List delivery requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			orders, err := appCtx.Orders.ListOrders(cmd.Context(), status, area)
			if err != nil {
				return err
			}
			return printOrders(orders, false)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by status (pending, accepted, completed, ...)")
	cmd.Flags().StringVar(&area, "area", "", "filter by pickup area")
	return cmd
}

func ordersMineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "List requests you posted",
		RunE: func(cmd *cobra.Command, args []string) error {
			orders, err := appCtx.Orders.MyOrders(cmd.Context())
			if err != nil {
				return err
			}
			return printOrders(orders, true)
		},
	}
}

func ordersAcceptedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accepted",
		Short: "List requests you accepted",
		RunE: func(cmd *cobra.Command, args []string) error {
			orders, err := appCtx.Orders.AcceptedOrders(cmd.Context())
			if err != nil {
				return err
			}
			return printOrders(orders, true)
		},
	}
}

func ordersGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get REQUEST_ID",
		Short: "Show one request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			order, err := appCtx.Orders.GetOrder(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printOrder(order)
		},
	}
}

func ordersCreateCmd() *cobra.Command {
	var (
		req    entities.CreateOrderRequest
		reward float64
		at     string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Post a new delivery request",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("reward") {
				req.Reward = &reward
			}
			if at != "" {
				minutes, err := customDeadline(at, clock())
				if err != nil {
					return err
				}
				req.Deadline = minutes
			}
			order, err := appCtx.Orders.CreateOrder(cmd.Context(), &req)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Created %s\n", order.ID)
			return printOrder(order)
		},
	}
	f := cmd.Flags()
	f.StringSliceVar(&req.Items, "item", nil, "item to buy (repeatable)")
	f.StringVar(&req.PickupLoc, "pickup", "", "pickup location")
	f.StringVar(&req.PickupArea, "pickup-area", "", "pickup area")
	f.StringVar(&req.DropLoc, "drop", "", "drop location")
	f.StringVar(&req.DropArea, "drop-area", "", "drop area")
	f.Float64Var(&reward, "reward", 0, "reward for the deliverer")
	f.Float64Var(&req.ItemPrice, "price", 0, "item price")
	f.StringVar(&req.BestBefore, "best-before", "", "time the items are needed by")
	f.StringVar(&req.Deadline, "deadline", "", "deadline, e.g. 30, 60 or an ISO timestamp")
	f.StringVar(&at, "at", "", "custom deadline as a clock time HH:MM (at least 10 minutes away)")
	f.BoolVar(&req.Priority, "priority", false, "mark as emergency")
	f.StringVar(&req.Notes, "notes", "", "notes for the deliverer")
	_ = cmd.MarkFlagRequired("item")
	_ = cmd.MarkFlagRequired("pickup")
	_ = cmd.MarkFlagRequired("drop")
	cmd.MarkFlagsOneRequired("deadline", "at")
	cmd.MarkFlagsMutuallyExclusive("deadline", "at")
	return cmd
}

// customDeadline turns an HH:MM clock time into the minutes-from-now
// deadline the backend expects.
func customDeadline(at string, now time.Time) (string, error) {
	t, err := time.Parse("15:04", at)
	if err != nil {
		return "", fmt.Errorf("invalid --at %q, want HH:MM", at)
	}
	minutes, err := utils.CustomDeadline(now, t.Hour(), t.Minute())
	if err != nil {
		return "", err
	}
	return strconv.Itoa(minutes), nil
}

func ordersAcceptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accept REQUEST_ID",
		Short: "Accept a request as deliverer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			order, err := appCtx.Orders.AcceptOrder(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printOrder(order)
		},
	}
}

func ordersStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status REQUEST_ID STATUS",
		Short: "Move a request to a new status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			order, err := appCtx.Orders.UpdateOrderStatus(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printOrder(order)
		},
	}
}
