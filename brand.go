package main

import (
	"github.com/spf13/cobra"

	"github.com/businesscomms/bcctl/internal/bcapi"
	"github.com/businesscomms/bcctl/internal/samples"
)

func (a *app) newBrandCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "brand",
		Short: "Manage brands",
	}

	cmd.AddCommand(a.newBrandCreateCmd())
	cmd.AddCommand(a.newGetCmd("brand", getAny((*bcapi.Client).GetBrand)))
	cmd.AddCommand(newPatchCmd(a, "brand", (*bcapi.Client).PatchBrand))
	cmd.AddCommand(a.newBrandListCmd())
	cmd.AddCommand(a.newDeleteCmd("brand", (*bcapi.Client).DeleteBrand))
	cmd.AddCommand(a.newBrandSampleCmd())

	return cmd
}

func (a *app) newBrandCreateCmd() *cobra.Command {
	var displayName string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a brand",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.client(cmd.Context())
			if err != nil {
				return err
			}

			brand, err := c.CreateBrand(cmd.Context(), &bcapi.Brand{DisplayName: displayName})
			if err != nil {
				return err
			}

			return a.printObject(brand)
		},
	}

	cmd.Flags().StringVar(&displayName, "display-name", samples.BrandDisplayName, "brand display name")

	return cmd
}

func (a *app) newBrandListCmd() *cobra.Command {
	var page pageFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List brands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			c, err := a.client(ctx)
			if err != nil {
				return err
			}

			if !page.single() {
				brands, err := c.ListAllBrands(ctx)
				if err != nil {
					return err
				}

				return a.printBrands(brands)
			}

			p, err := c.ListBrands(ctx, page.options())
			if err != nil {
				return err
			}

			a.reportNextPage(p.NextPageToken)

			return a.printBrands(p.Brands)
		},
	}

	page.bind(cmd)

	return cmd
}

func (a *app) newBrandSampleCmd() *cobra.Command {
	var f sampleFlags

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Run the brand walkthrough: create, get, update, list, delete",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			return a.runSample(ctx, &f, samples.Options{}, func(r *samples.Runner) (*samples.Report, error) {
				return r.Brand(ctx)
			})
		},
	}

	f.bind(cmd)

	return cmd
}
