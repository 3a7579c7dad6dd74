package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"smallbasket/internal/domain/entities"
	"smallbasket/internal/services"
	"smallbasket/pkg/utils"
)

var stdout io.Writer = os.Stdout

func printJSON(v interface{}) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printOrders prints a listing. logView is the "my logs" layout, which
// shows locations without their areas.
func printOrders(orders []*entities.Order, logView bool) error {
	requests := services.ToDeliveryRequests(orders)
	if jsonOutput {
		return printJSON(requests)
	}
	if len(requests) == 0 {
		fmt.Fprintln(stdout, "No delivery requests.")
		return nil
	}
	w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tPICKUP\tDROP\tFEE\tDUE\tSTATUS")
	for i, r := range requests {
		title := r.Title
		if r.Priority {
			title = "[!] " + title
		}
		pickup, drop := r.Pickup, r.Dropoff
		if logView {
			o := orders[i]
			pickup = utils.ShortLocation(o.PickupLoc, o.PickupArea)
			drop = utils.ShortLocation(o.DropLoc, o.DropArea)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.OrderID, title, pickup, drop, r.Fee, r.Time, utils.StatusLabel(r.Status))
	}
	return w.Flush()
}

func printOrder(order *entities.Order) error {
	r := services.ToDeliveryRequest(order)
	if jsonOutput {
		return printJSON(r)
	}
	fmt.Fprintf(stdout, "%s  %s\n", r.OrderID, r.Title)
	fmt.Fprintf(stdout, "  status:   %s\n", utils.StatusLabel(r.Status))
	fmt.Fprintf(stdout, "  pickup:   %s\n", r.Pickup)
	fmt.Fprintf(stdout, "  drop:     %s\n", r.Dropoff)
	fmt.Fprintf(stdout, "  fee:      %s (item price %.2f)\n", r.Fee, r.ItemPrice)
	fmt.Fprintf(stdout, "  deadline: %s (%s)\n", r.Deadline, r.Time)
	if r.Details != "" {
		fmt.Fprintf(stdout, "  notes:    %s\n", r.Details)
	}
	if r.AcceptorEmail != "" {
		fmt.Fprintf(stdout, "  accepted by: %s %s\n", r.AcceptorName, r.AcceptorEmail)
	}
	return nil
}

func printNotifications(items []*entities.SavedNotification) error {
	if jsonOutput {
		return printJSON(items)
	}
	if len(items) == 0 {
		fmt.Fprintln(stdout, "No notifications.")
		return nil
	}
	now := time.Now()
	w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\t\tWHEN\tTITLE\tBODY")
	for _, n := range items {
		mark := " "
		if !n.IsRead {
			mark = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", n.ID, mark, utils.RelativeTime(n.Timestamp, now), n.Title, oneLine(n.Body))
	}
	return w.Flush()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
