package samples

import (
	"context"
	"fmt"

	"github.com/businesscomms/bcctl/internal/bcapi"
)

// Brand creates "Test Brand", reads it back, renames it, lists all brands,
// and deletes it.
func (r *Runner) Brand(ctx context.Context) (*Report, error) {
	rep := &Report{Kind: bcapi.KindBrand}

	var brand *bcapi.Brand

	err := r.step(rep, "Create Brand", func() (any, error) {
		b, err := r.api.CreateBrand(ctx, &bcapi.Brand{DisplayName: BrandDisplayName})
		brand = b

		return b, err
	})
	if err != nil {
		return rep, fmt.Errorf("samples: creating brand: %w", err)
	}

	rep.Name = brand.Name
	r.record(ctx, brand.Name)

	steps := []struct {
		title string
		call  func() (any, error)
	}{
		{"Get Brand Details", func() (any, error) {
			return r.api.GetBrand(ctx, brand.Name)
		}},
		{"Updating Brand", func() (any, error) {
			return r.api.PatchBrand(ctx, bcapi.PatchRequest[bcapi.Brand]{
				Name:       brand.Name,
				Resource:   bcapi.Brand{DisplayName: UpdatedBrandDisplayName},
				UpdateMask: bcapi.NewFieldMask("displayName"),
			})
		}},
		{"List Brands", func() (any, error) {
			return r.api.ListAllBrands(ctx)
		}},
	}

	for _, s := range steps {
		if err := r.pause(ctx); err != nil {
			return rep, err
		}

		_ = r.step(rep, s.title, s.call)
	}

	return rep, r.finish(ctx, rep, "Deleting Brand", func() error {
		return r.api.DeleteBrand(ctx, brand.Name)
	})
}

// Agent creates an agent under brandName from the embedded template, reads
// it back, applies four masked updates, lists the brand's agents, and
// deletes it. The updates target the name returned by the read, so a failed
// read ends the walkthrough.
func (r *Runner) Agent(ctx context.Context, brandName string) (*Report, error) {
	rep := &Report{Kind: bcapi.KindAgent}

	if err := CheckBrandArg(brandName); err != nil {
		return rep, err
	}

	template, err := AgentTemplate(r.rng)
	if err != nil {
		return rep, err
	}

	survey, err := SurveyTemplate()
	if err != nil {
		return rep, err
	}

	r.console.Header("Agent script for brand - " + brandName)

	var created *bcapi.Agent

	err = r.step(rep, "Create Agent", func() (any, error) {
		a, err := r.api.CreateAgent(ctx, brandName, template)
		created = a

		return a, err
	})
	if err != nil {
		return rep, fmt.Errorf("samples: creating agent: %w", err)
	}

	rep.Name = created.Name
	r.record(ctx, created.Name)

	if err := r.pause(ctx); err != nil {
		return rep, err
	}

	var agent *bcapi.Agent

	err = r.step(rep, "Get Agent Details", func() (any, error) {
		a, err := r.api.GetAgent(ctx, created.Name)
		agent = a

		return a, err
	})
	if err != nil {
		return rep, fmt.Errorf("samples: reading agent: %w", err)
	}

	patch := func(resource bcapi.Agent, paths ...string) func() (any, error) {
		return func() (any, error) {
			return r.api.PatchAgent(ctx, bcapi.PatchRequest[bcapi.Agent]{
				Name:       agent.Name,
				Resource:   resource,
				UpdateMask: bcapi.NewFieldMask(paths...),
			})
		}
	}

	steps := []struct {
		title string
		call  func() (any, error)
	}{
		{"Updating Agent Display Name", patch(
			bcapi.Agent{DisplayName: UpdatedAgentDisplayName},
			"displayName",
		)},
		{"Updating Agent Logo URL", patch(
			bcapi.Agent{BusinessMessagesAgent: &bcapi.BusinessMessagesAgent{LogoURL: UpdatedAgentLogoURL}},
			"businessMessagesAgent.logoUrl",
		)},
		{"Updating Agent Welcome Message", patch(
			bcapi.Agent{BusinessMessagesAgent: &bcapi.BusinessMessagesAgent{
				ConversationalSettings: map[string]bcapi.Object{
					"en": {"welcomeMessage": bcapi.Object{"text": UpdatedWelcomeMessage}},
				},
			}},
			"businessMessagesAgent.conversationalSettings.en",
		)},
		{"Updating Agent Survey Config", patch(
			bcapi.Agent{BusinessMessagesAgent: &bcapi.BusinessMessagesAgent{SurveyConfig: survey}},
			"businessMessagesAgent.surveyConfig",
		)},
		{"List Agents", func() (any, error) {
			return r.api.ListAllAgents(ctx, brandName)
		}},
	}

	for _, s := range steps {
		if err := r.pause(ctx); err != nil {
			return rep, err
		}

		_ = r.step(rep, s.title, s.call)
	}

	return rep, r.finish(ctx, rep, "Deleting Agent", func() error {
		return r.api.DeleteAgent(ctx, agent.Name)
	})
}

// Location registers a location for agentName's brand, reads it back,
// re-points it at Options.NewAgent, lists the brand's locations, and
// deletes it.
func (r *Runner) Location(ctx context.Context, agentName string) (*Report, error) {
	rep := &Report{Kind: bcapi.KindLocation}

	if err := CheckAgentArg(agentName); err != nil {
		return rep, err
	}

	parsed, _ := bcapi.ParseAgentName(agentName)
	brandName := parsed.Brand().String()

	template, err := LocationTemplate(r.opts.PlaceID, agentName)
	if err != nil {
		return rep, err
	}

	r.console.Header("Location script for agent - " + agentName)

	var loc *bcapi.Location

	err = r.step(rep, "Create Location", func() (any, error) {
		l, err := r.api.CreateLocation(ctx, brandName, template)
		loc = l

		return l, err
	})
	if err != nil {
		return rep, fmt.Errorf("samples: creating location: %w", err)
	}

	rep.Name = loc.Name
	r.record(ctx, loc.Name)

	steps := []struct {
		title string
		call  func() (any, error)
	}{
		{"Get Location Details", func() (any, error) {
			return r.api.GetLocation(ctx, loc.Name)
		}},
		{"Updating Location", func() (any, error) {
			return r.api.PatchLocation(ctx, bcapi.PatchRequest[bcapi.Location]{
				Name:       loc.Name,
				Resource:   bcapi.Location{Agent: r.opts.NewAgent},
				UpdateMask: bcapi.NewFieldMask("agent"),
			})
		}},
		{"List Locations", func() (any, error) {
			return r.api.ListAllLocations(ctx, brandName)
		}},
	}

	for _, s := range steps {
		if err := r.pause(ctx); err != nil {
			return rep, err
		}

		_ = r.step(rep, s.title, s.call)
	}

	return rep, r.finish(ctx, rep, "Deleting Location", func() error {
		return r.api.DeleteLocation(ctx, loc.Name)
	})
}
