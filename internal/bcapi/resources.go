package bcapi

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
)

const apiVersionPrefix = "/v1/"

// errEmptyMask guards PatchRequest values built without a mask. The service
// would treat an empty mask as "replace everything", which no caller wants.
var errEmptyMask = errors.New("bcapi: patch request has an empty update mask")

func createResource[T any](ctx context.Context, c *Client, parent, collection string, res *T) (*T, error) {
	path := apiVersionPrefix + collection
	if parent != "" {
		path = apiVersionPrefix + parent + "/" + collection
	}

	var out T
	if err := c.Do(ctx, "create", joinName(parent, collection), http.MethodPost, path, nil, res, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

func getResource[T any](ctx context.Context, c *Client, name string) (*T, error) {
	var out T
	if err := c.Do(ctx, "get", name, http.MethodGet, apiVersionPrefix+name, nil, nil, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

func patchResource[T any](ctx context.Context, c *Client, req PatchRequest[T]) (*T, error) {
	if len(req.UpdateMask) == 0 {
		return nil, errEmptyMask
	}

	q := url.Values{}
	q.Set("updateMask", req.UpdateMask.String())

	var out T
	if err := c.Do(ctx, "patch", req.Name, http.MethodPatch, apiVersionPrefix+req.Name, q, &req.Resource, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

func deleteResource(ctx context.Context, c *Client, name string) error {
	return c.Do(ctx, "delete", name, http.MethodDelete, apiVersionPrefix+name, nil, nil, nil)
}

func listResource[P any](ctx context.Context, c *Client, parent, collection string, opts ListOptions) (*P, error) {
	path := apiVersionPrefix + collection
	if parent != "" {
		path = apiVersionPrefix + parent + "/" + collection
	}

	q := url.Values{}
	if opts.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(opts.PageSize))
	}

	if opts.PageToken != "" {
		q.Set("pageToken", opts.PageToken)
	}

	var out P
	if err := c.Do(ctx, "list", joinName(parent, collection), http.MethodGet, path, q, nil, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// collectPages drains a paged list call. fetch returns one page's items and
// the next token; iteration stops on an empty token or a token the service
// already handed out.
func collectPages[T any](fetch func(token string) ([]T, string, error)) ([]T, error) {
	var (
		all   []T
		token string
		seen  = map[string]bool{}
	)

	for {
		items, next, err := fetch(token)
		if err != nil {
			return all, err
		}

		all = append(all, items...)

		if next == "" || seen[next] {
			return all, nil
		}

		seen[next] = true
		token = next
	}
}

func joinName(parent, collection string) string {
	if parent == "" {
		return collection
	}

	return parent + "/" + collection
}

// --- Brands ---

// CreateBrand creates a brand. The service assigns the name.
func (c *Client) CreateBrand(ctx context.Context, brand *Brand) (*Brand, error) {
	return createResource(ctx, c, "", "brands", brand)
}

// GetBrand fetches a brand by "brands/BRAND_ID".
func (c *Client) GetBrand(ctx context.Context, name string) (*Brand, error) {
	if _, err := ParseBrandName(name); err != nil {
		return nil, err
	}

	return getResource[Brand](ctx, c, name)
}

// PatchBrand applies a partial update and returns the full updated brand.
func (c *Client) PatchBrand(ctx context.Context, req PatchRequest[Brand]) (*Brand, error) {
	if _, err := ParseBrandName(req.Name); err != nil {
		return nil, err
	}

	return patchResource(ctx, c, req)
}

// DeleteBrand deletes a brand. Agents under the brand are deleted with it;
// brands with verified agents cannot be deleted.
func (c *Client) DeleteBrand(ctx context.Context, name string) error {
	if _, err := ParseBrandName(name); err != nil {
		return err
	}

	return deleteResource(ctx, c, name)
}

// ListBrands returns one page of the brands visible to the caller.
func (c *Client) ListBrands(ctx context.Context, opts ListOptions) (*BrandPage, error) {
	return listResource[BrandPage](ctx, c, "", "brands", opts)
}

// ListAllBrands follows page tokens until every brand is fetched.
func (c *Client) ListAllBrands(ctx context.Context) ([]Brand, error) {
	return collectPages(func(token string) ([]Brand, string, error) {
		page, err := c.ListBrands(ctx, ListOptions{PageToken: token})
		if err != nil {
			return nil, "", err
		}

		return page.Brands, page.NextPageToken, nil
	})
}

// --- Agents ---

// CreateAgent creates an agent under parent ("brands/BRAND_ID").
func (c *Client) CreateAgent(ctx context.Context, parent string, agent *Agent) (*Agent, error) {
	if _, err := ParseBrandName(parent); err != nil {
		return nil, err
	}

	return createResource(ctx, c, parent, "agents", agent)
}

// GetAgent fetches an agent by "brands/BRAND_ID/agents/AGENT_ID".
func (c *Client) GetAgent(ctx context.Context, name string) (*Agent, error) {
	if _, err := ParseAgentName(name); err != nil {
		return nil, err
	}

	return getResource[Agent](ctx, c, name)
}

// PatchAgent applies a partial update and returns the full updated agent.
func (c *Client) PatchAgent(ctx context.Context, req PatchRequest[Agent]) (*Agent, error) {
	if _, err := ParseAgentName(req.Name); err != nil {
		return nil, err
	}

	return patchResource(ctx, c, req)
}

// DeleteAgent deletes an agent. Only non-verified agents can be deleted.
func (c *Client) DeleteAgent(ctx context.Context, name string) error {
	if _, err := ParseAgentName(name); err != nil {
		return err
	}

	return deleteResource(ctx, c, name)
}

// ListAgents returns one page of the agents under parent.
func (c *Client) ListAgents(ctx context.Context, parent string, opts ListOptions) (*AgentPage, error) {
	if _, err := ParseBrandName(parent); err != nil {
		return nil, err
	}

	return listResource[AgentPage](ctx, c, parent, "agents", opts)
}

// ListAllAgents follows page tokens until every agent under parent is fetched.
func (c *Client) ListAllAgents(ctx context.Context, parent string) ([]Agent, error) {
	return collectPages(func(token string) ([]Agent, string, error) {
		page, err := c.ListAgents(ctx, parent, ListOptions{PageToken: token})
		if err != nil {
			return nil, "", err
		}

		return page.Agents, page.NextPageToken, nil
	})
}

// --- Locations ---

// CreateLocation creates a location under parent ("brands/BRAND_ID").
func (c *Client) CreateLocation(ctx context.Context, parent string, loc *Location) (*Location, error) {
	if _, err := ParseBrandName(parent); err != nil {
		return nil, err
	}

	return createResource(ctx, c, parent, "locations", loc)
}

// GetLocation fetches a location by "brands/BRAND_ID/locations/LOCATION_ID".
func (c *Client) GetLocation(ctx context.Context, name string) (*Location, error) {
	if _, err := ParseLocationName(name); err != nil {
		return nil, err
	}

	return getResource[Location](ctx, c, name)
}

// PatchLocation applies a partial update and returns the full updated location.
func (c *Client) PatchLocation(ctx context.Context, req PatchRequest[Location]) (*Location, error) {
	if _, err := ParseLocationName(req.Name); err != nil {
		return nil, err
	}

	return patchResource(ctx, c, req)
}

// DeleteLocation deletes a location. Only non-verified locations can be deleted.
func (c *Client) DeleteLocation(ctx context.Context, name string) error {
	if _, err := ParseLocationName(name); err != nil {
		return err
	}

	return deleteResource(ctx, c, name)
}

// ListLocations returns one page of the locations under parent.
func (c *Client) ListLocations(ctx context.Context, parent string, opts ListOptions) (*LocationPage, error) {
	if _, err := ParseBrandName(parent); err != nil {
		return nil, err
	}

	return listResource[LocationPage](ctx, c, parent, "locations", opts)
}

// ListAllLocations follows page tokens until every location under parent is fetched.
func (c *Client) ListAllLocations(ctx context.Context, parent string) ([]Location, error) {
	return collectPages(func(token string) ([]Location, string, error) {
		page, err := c.ListLocations(ctx, parent, ListOptions{PageToken: token})
		if err != nil {
			return nil, "", err
		}

		return page.Locations, page.NextPageToken, nil
	})
}

// DeleteByName dispatches a delete on whichever family name belongs to.
func (c *Client) DeleteByName(ctx context.Context, name string) error {
	kind, err := KindOf(name)
	if err != nil {
		return err
	}

	switch kind {
	case KindLocation:
		return c.DeleteLocation(ctx, name)
	case KindAgent:
		return c.DeleteAgent(ctx, name)
	default:
		return c.DeleteBrand(ctx, name)
	}
}
