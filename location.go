package main

import (
	"github.com/spf13/cobra"

	"github.com/businesscomms/bcctl/internal/bcapi"
	"github.com/businesscomms/bcctl/internal/samples"
)

func (a *app) newLocationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "location",
		Short: "Manage locations",
	}

	cmd.AddCommand(a.newLocationCreateCmd())
	cmd.AddCommand(a.newGetCmd("location", getAny((*bcapi.Client).GetLocation)))
	cmd.AddCommand(newPatchCmd(a, "location", (*bcapi.Client).PatchLocation))
	cmd.AddCommand(a.newLocationListCmd())
	cmd.AddCommand(a.newDeleteCmd("location", (*bcapi.Client).DeleteLocation))
	cmd.AddCommand(a.newLocationSampleCmd())

	return cmd
}

func (a *app) newLocationCreateCmd() *cobra.Command {
	var placeID string

	cmd := &cobra.Command{
		Use:   "create AGENT_NAME",
		Short: "Register a location answered by an agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			agent, err := bcapi.ParseAgentName(args[0])
			if err != nil {
				return err
			}

			loc, err := samples.LocationTemplate(placeID, args[0])
			if err != nil {
				return err
			}

			c, err := a.client(cmd.Context())
			if err != nil {
				return err
			}

			created, err := c.CreateLocation(cmd.Context(), agent.Brand().String(), loc)
			if err != nil {
				return err
			}

			return a.printObject(created)
		},
	}

	cmd.Flags().StringVar(&placeID, "place-id", samples.GoogleplexPlaceID, "Google Maps place ID")

	return cmd
}

func (a *app) newLocationListCmd() *cobra.Command {
	var page pageFlags

	cmd := &cobra.Command{
		Use:   "list BRAND_NAME",
		Short: "List the locations of a brand",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			c, err := a.client(ctx)
			if err != nil {
				return err
			}

			if !page.single() {
				locations, err := c.ListAllLocations(ctx, args[0])
				if err != nil {
					return err
				}

				return a.printLocations(locations)
			}

			p, err := c.ListLocations(ctx, args[0], page.options())
			if err != nil {
				return err
			}

			a.reportNextPage(p.NextPageToken)

			return a.printLocations(p.Locations)
		},
	}

	page.bind(cmd)

	return cmd
}

func (a *app) newLocationSampleCmd() *cobra.Command {
	var (
		f        sampleFlags
		placeID  string
		newAgent string
	)

	cmd := &cobra.Command{
		Use:   "sample AGENT_NAME",
		Short: "Run the location walkthrough against an agent",
		Long: "Register a location for the agent's brand, read it, re-point it at\n" +
			"--new-agent, list, and delete. Without --new-agent the update targets a\n" +
			"placeholder agent and is rejected by the service.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := samples.CheckAgentArg(args[0]); err != nil {
				return usageError(err)
			}

			ctx := cmd.Context()
			opts := samples.Options{PlaceID: placeID, NewAgent: newAgent}

			return a.runSample(ctx, &f, opts, func(r *samples.Runner) (*samples.Report, error) {
				return r.Location(ctx, args[0])
			})
		},
	}

	f.bind(cmd)
	cmd.Flags().StringVar(&placeID, "place-id", samples.GoogleplexPlaceID, "Google Maps place ID")
	cmd.Flags().StringVar(&newAgent, "new-agent", "", "agent the update re-points the location at")

	return cmd
}
