package bcapi

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidName is returned when a resource name does not have the expected
// collection layout.
var ErrInvalidName = errors.New("bcapi: invalid resource name")

var (
	brandNameRe    = regexp.MustCompile(`^brands/([^/\s]+)$`)
	agentNameRe    = regexp.MustCompile(`^brands/([^/\s]+)/agents/([^/\s]+)$`)
	locationNameRe = regexp.MustCompile(`^brands/([^/\s]+)/locations/([^/\s]+)$`)
)

// BrandName is a parsed "brands/BRAND_ID".
type BrandName struct {
	BrandID string
}

func (n BrandName) String() string {
	return "brands/" + n.BrandID
}

// AgentName is a parsed "brands/BRAND_ID/agents/AGENT_ID".
type AgentName struct {
	BrandID string
	AgentID string
}

// Brand returns the parent brand.
func (n AgentName) Brand() BrandName {
	return BrandName{BrandID: n.BrandID}
}

func (n AgentName) String() string {
	return fmt.Sprintf("brands/%s/agents/%s", n.BrandID, n.AgentID)
}

// LocationName is a parsed "brands/BRAND_ID/locations/LOCATION_ID".
type LocationName struct {
	BrandID    string
	LocationID string
}

// Brand returns the parent brand.
func (n LocationName) Brand() BrandName {
	return BrandName{BrandID: n.BrandID}
}

func (n LocationName) String() string {
	return fmt.Sprintf("brands/%s/locations/%s", n.BrandID, n.LocationID)
}

// ParseBrandName validates a brand resource name.
func ParseBrandName(s string) (BrandName, error) {
	m := brandNameRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return BrandName{}, fmt.Errorf("%w: %q is not brands/BRAND_ID", ErrInvalidName, s)
	}

	return BrandName{BrandID: m[1]}, nil
}

// ParseAgentName validates an agent resource name.
func ParseAgentName(s string) (AgentName, error) {
	m := agentNameRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return AgentName{}, fmt.Errorf("%w: %q is not brands/BRAND_ID/agents/AGENT_ID", ErrInvalidName, s)
	}

	return AgentName{BrandID: m[1], AgentID: m[2]}, nil
}

// ParseLocationName validates a location resource name.
func ParseLocationName(s string) (LocationName, error) {
	m := locationNameRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return LocationName{}, fmt.Errorf("%w: %q is not brands/BRAND_ID/locations/LOCATION_ID", ErrInvalidName, s)
	}

	return LocationName{BrandID: m[1], LocationID: m[2]}, nil
}

// BrandOfAgent returns the brand name that owns agentName.
func BrandOfAgent(agentName string) (string, error) {
	n, err := ParseAgentName(agentName)
	if err != nil {
		return "", err
	}

	return n.Brand().String(), nil
}

// Kind is the resource family a name belongs to.
type Kind string

const (
	KindBrand    Kind = "brand"
	KindAgent    Kind = "agent"
	KindLocation Kind = "location"
)

// KindOf classifies a resource name.
func KindOf(name string) (Kind, error) {
	switch {
	case locationNameRe.MatchString(name):
		return KindLocation, nil
	case agentNameRe.MatchString(name):
		return KindAgent, nil
	case brandNameRe.MatchString(name):
		return KindBrand, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
}
