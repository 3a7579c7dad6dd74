package commands

import (
	"errors"
	"fmt"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"smallbasket/internal/domain/entities"
	"smallbasket/internal/services"
)

func nearbyCmd() *cobra.Command {
	var lat, lng, radius float64
	cmd := &cobra.Command{
		Use:   "nearby",
		Short: "List users near a point (defaults to your last fix)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !cmd.Flags().Changed("lat") || !cmd.Flags().Changed("lng") {
				fix, ok, err := appCtx.Locations.LastFix(ctx)
				if err != nil {
					return err
				}
				if !ok {
					return errors.New("no saved location; pass --lat and --lng")
				}
				lat, lng = fix.Latitude, fix.Longitude
			}
			out, err := appCtx.Maps.NearbyUsers(ctx, lat, lng, radius)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(out)
			}
			w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "%d users nearby\n", out.Total)
			for _, u := range out.Users {
				dist := "-"
				if u.DistanceMeters != nil {
					dist = fmt.Sprintf("%.0fm", *u.DistanceMeters)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.UserID, u.DisplayName, u.PrimaryArea, dist)
			}
			return w.Flush()
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "longitude")
	cmd.Flags().Float64Var(&radius, "radius", 0, "radius in meters (default from config)")
	return cmd
}

func reachableCmd() *cobra.Command {
	var byArea, byDevice, includeNearby bool
	cmd := &cobra.Command{
		Use:   "reachable [AREA]",
		Short: "Count reachable users, in one area or per area",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if byArea {
				counts, err := appCtx.Maps.ReachableByArea(ctx, byDevice, includeNearby)
				if err != nil {
					return errors.New(services.ShortMessage(err))
				}
				if jsonOutput {
					return printJSON(counts)
				}
				areas := make([]string, 0, len(counts))
				for a := range counts {
					areas = append(areas, a)
				}
				sort.Strings(areas)
				w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
				for _, a := range areas {
					fmt.Fprintf(w, "%s\t%d\n", a, counts[a])
				}
				return w.Flush()
			}

			area := ""
			if len(args) == 1 {
				area = args[0]
			}
			n, err := appCtx.Maps.ReachableCount(ctx, area, byDevice, includeNearby)
			if err != nil {
				return errors.New(services.ShortMessage(err))
			}
			if jsonOutput {
				return printJSON(map[string]interface{}{"area": area, "count": n})
			}
			fmt.Fprintln(stdout, n)
			return nil
		},
	}
	cmd.Flags().BoolVar(&byArea, "by-area", false, "show counts for every area")
	cmd.Flags().BoolVar(&byDevice, "by-device", true, "count devices rather than users")
	cmd.Flags().BoolVar(&includeNearby, "include-nearby", true, "include users near the area edge")
	return cmd
}

func locationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "location",
		Short: "Your location as the backend sees it",
	}
	cmd.AddCommand(locationMeCmd(), locationPushCmd())
	return cmd
}

func locationMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show your stored GPS location",
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := appCtx.Maps.MyGPSLocation(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(loc)
			}
			if !loc.HasLocation || loc.GPSLocation == nil {
				fmt.Fprintln(stdout, "No location on record.")
				return nil
			}
			fmt.Fprintf(stdout, "%.5f,%.5f in %s (updated %s)\n",
				loc.GPSLocation.Latitude, loc.GPSLocation.Longitude, loc.PrimaryArea, loc.GPSLocation.LastUpdated)
			return nil
		},
	}
}

func locationPushCmd() *cobra.Command {
	var lat, lng, accuracy float64
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Send a location update now",
		Long: "Without --lat/--lng this runs the same job as the agent's periodic " +
			"location work, including its tracking and permission checks.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !cmd.Flags().Changed("lat") || !cmd.Flags().Changed("lng") {
				result, err := appCtx.Scheduler.RunNow(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(stdout, "location work: %s\n", result)
				return nil
			}

			fix := entities.Fix{Latitude: lat, Longitude: lng, Accuracy: accuracy, Time: time.Now()}
			if err := appCtx.Locations.SaveFix(ctx, fix); err != nil {
				return err
			}
			resp, err := appCtx.Locations.Sync(ctx, fix)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(resp)
			}
			area := ""
			if resp.Data != nil {
				area = resp.Data.PrimaryArea
			}
			fmt.Fprintf(stdout, "updated, area %q\n", area)
			return nil
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "longitude")
	cmd.Flags().Float64Var(&accuracy, "accuracy", 0, "accuracy in meters")
	return cmd
}
