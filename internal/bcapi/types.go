package bcapi

// Brand is a business, organization, or group represented by agents.
type Brand struct {
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

// Agent is a conversational entity that represents a brand.
type Agent struct {
	Name                  string                 `json:"name,omitempty"`
	DisplayName           string                 `json:"displayName,omitempty"`
	BusinessMessagesAgent *BusinessMessagesAgent `json:"businessMessagesAgent,omitempty"`
}

// BusinessMessagesAgent holds the Business Messages specific agent settings.
// Nested schemas are kept opaque; callers build them as Objects.
type BusinessMessagesAgent struct {
	LogoURL                     string            `json:"logoUrl,omitempty"`
	DefaultLocale               string            `json:"defaultLocale,omitempty"`
	CustomAgentID               string            `json:"customAgentId,omitempty"`
	ConversationalSettings      map[string]Object `json:"conversationalSettings,omitempty"`
	EntryPointConfigs           []Object          `json:"entryPointConfigs,omitempty"`
	NonLocalConfig              Object            `json:"nonLocalConfig,omitempty"`
	PrimaryAgentInteraction     Object            `json:"primaryAgentInteraction,omitempty"`
	AdditionalAgentInteractions []Object          `json:"additionalAgentInteractions,omitempty"`
	SurveyConfig                Object            `json:"surveyConfig,omitempty"`
	AgentVerificationContact    Object            `json:"agentVerificationContact,omitempty"`
	Phone                       Object            `json:"phone,omitempty"`
}

// Location is a physical place an agent answers for.
type Location struct {
	Name                      string            `json:"name,omitempty"`
	PlaceID                   string            `json:"placeId,omitempty"`
	Agent                     string            `json:"agent,omitempty"`
	DefaultLocale             string            `json:"defaultLocale,omitempty"`
	ConversationalSettings    map[string]Object `json:"conversationalSettings,omitempty"`
	LocationEntryPointConfigs []Object          `json:"locationEntryPointConfigs,omitempty"`
	ListingID                 string            `json:"listingId,omitempty"`
	LocationTestURL           string            `json:"locationTestUrl,omitempty"`
}

// ListOptions selects one page of a list call. Zero values let the service
// choose the page size and start from the first page.
type ListOptions struct {
	PageSize  int
	PageToken string
}

// BrandPage is one page of ListBrands.
type BrandPage struct {
	Brands        []Brand `json:"brands"`
	NextPageToken string  `json:"nextPageToken,omitempty"`
}

// AgentPage is one page of ListAgents.
type AgentPage struct {
	Agents        []Agent `json:"agents"`
	NextPageToken string  `json:"nextPageToken,omitempty"`
}

// LocationPage is one page of ListLocations.
type LocationPage struct {
	Locations     []Location `json:"locations"`
	NextPageToken string     `json:"nextPageToken,omitempty"`
}

// PatchRequest is a partial update: the target name, a resource with only
// the changed fields populated, and the mask naming those fields.
type PatchRequest[T any] struct {
	Name       string
	Resource   T
	UpdateMask FieldMask
}
