package main

import (
	"math/rand/v2"

	"github.com/spf13/cobra"

	"github.com/businesscomms/bcctl/internal/bcapi"
	"github.com/businesscomms/bcctl/internal/samples"
)

func (a *app) newAgentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Manage agents",
	}

	cmd.AddCommand(a.newAgentCreateCmd())
	cmd.AddCommand(a.newGetCmd("agent", getAny((*bcapi.Client).GetAgent)))
	cmd.AddCommand(newPatchCmd(a, "agent", (*bcapi.Client).PatchAgent))
	cmd.AddCommand(a.newAgentListCmd())
	cmd.AddCommand(a.newDeleteCmd("agent", (*bcapi.Client).DeleteAgent))
	cmd.AddCommand(a.newAgentSampleCmd())

	return cmd
}

func (a *app) newAgentCreateCmd() *cobra.Command {
	var (
		displayName string
		bodyPath    string
	)

	cmd := &cobra.Command{
		Use:   "create BRAND_NAME",
		Short: "Create an agent under a brand",
		Long: "Create an agent from a YAML or JSON body, or from the walkthrough\n" +
			"template when --body is not given.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := bcapi.ParseBrandName(args[0]); err != nil {
				return err
			}

			agent, err := agentBody(cmd, bodyPath)
			if err != nil {
				return err
			}

			if displayName != "" {
				agent.DisplayName = displayName
			}

			c, err := a.client(cmd.Context())
			if err != nil {
				return err
			}

			created, err := c.CreateAgent(cmd.Context(), args[0], agent)
			if err != nil {
				return err
			}

			return a.printObject(created)
		},
	}

	cmd.Flags().StringVar(&displayName, "display-name", "", "override the agent display name")
	cmd.Flags().StringVar(&bodyPath, "body", "", "YAML or JSON agent file, - for stdin")

	return cmd
}

func agentBody(cmd *cobra.Command, path string) (*bcapi.Agent, error) {
	if path == "" {
		return samples.AgentTemplate(rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))) //nolint:gosec // demo data
	}

	data, err := readBody(cmd.InOrStdin(), path)
	if err != nil {
		return nil, err
	}

	var agent bcapi.Agent
	if err := samples.DecodeYAML(data, &agent); err != nil {
		return nil, err
	}

	return &agent, nil
}

func (a *app) newAgentListCmd() *cobra.Command {
	var page pageFlags

	cmd := &cobra.Command{
		Use:   "list BRAND_NAME",
		Short: "List the agents of a brand",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			c, err := a.client(ctx)
			if err != nil {
				return err
			}

			if !page.single() {
				agents, err := c.ListAllAgents(ctx, args[0])
				if err != nil {
					return err
				}

				return a.printAgents(agents)
			}

			p, err := c.ListAgents(ctx, args[0], page.options())
			if err != nil {
				return err
			}

			a.reportNextPage(p.NextPageToken)

			return a.printAgents(p.Agents)
		},
	}

	page.bind(cmd)

	return cmd
}

func (a *app) newAgentSampleCmd() *cobra.Command {
	var f sampleFlags

	cmd := &cobra.Command{
		Use:   "sample BRAND_NAME",
		Short: "Run the agent walkthrough against a brand",
		Long: "Create an agent from the template, read it, apply four masked updates\n" +
			"(display name, logo, conversational settings, survey), list, and delete.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := samples.CheckBrandArg(args[0]); err != nil {
				return usageError(err)
			}

			ctx := cmd.Context()

			return a.runSample(ctx, &f, samples.Options{}, func(r *samples.Runner) (*samples.Report, error) {
				return r.Agent(ctx, args[0])
			})
		},
	}

	f.bind(cmd)

	return cmd
}
