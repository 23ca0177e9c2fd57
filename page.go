package main

import (
	"github.com/spf13/cobra"

	"github.com/businesscomms/bcctl/internal/bcapi"
)

// pageFlags select a single page of a list call. Without them list
// commands follow every page.
type pageFlags struct {
	size  int
	token string
}

func (p *pageFlags) bind(cmd *cobra.Command) {
	cmd.Flags().IntVar(&p.size, "page-size", 0, "fetch one page of this size instead of all pages")
	cmd.Flags().StringVar(&p.token, "page-token", "", "continue from a previous page")
}

func (p *pageFlags) single() bool {
	return p.size > 0 || p.token != ""
}

func (p *pageFlags) options() bcapi.ListOptions {
	return bcapi.ListOptions{PageSize: p.size, PageToken: p.token}
}

func (a *app) reportNextPage(token string) {
	if token != "" {
		a.statusf("Next page: --page-token %s\n", token)
	}
}
