package samples

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/businesscomms/bcctl/internal/bcapi"
)

//go:embed templates/*.yaml
var templateFS embed.FS

// ErrInvalidTemplate is returned when a resource template fails validation
// before it is sent.
var ErrInvalidTemplate = errors.New("samples: invalid template")

// DecodeYAML decodes a YAML document into out by way of JSON, so out's json
// tags decide the field names. Mappings must have string keys.
func DecodeYAML(data []byte, out any) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("samples: parsing YAML: %w", err)
	}

	js, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("samples: converting YAML: %w", err)
	}

	if err := json.Unmarshal(js, out); err != nil {
		return fmt.Errorf("samples: decoding YAML: %w", err)
	}

	return nil
}

func loadTemplate(name string, out any) error {
	data, err := templateFS.ReadFile("templates/" + name)
	if err != nil {
		return fmt.Errorf("samples: reading template %s: %w", name, err)
	}

	return DecodeYAML(data, out)
}

// AgentTemplate returns the walkthrough's agent with a random call
// deflection number and enabled domain.
func AgentTemplate(rng *rand.Rand) (*bcapi.Agent, error) {
	var agent bcapi.Agent
	if err := loadTemplate("agent.yaml", &agent); err != nil {
		return nil, err
	}

	bma := agent.BusinessMessagesAgent
	if bma == nil {
		return nil, fmt.Errorf("%w: agent has no businessMessagesAgent", ErrInvalidTemplate)
	}

	if bma.NonLocalConfig == nil {
		bma.NonLocalConfig = bcapi.Object{}
	}

	bma.NonLocalConfig["callDeflectionPhoneNumbers"] = []any{bcapi.Object{"number": randomPhoneNumber(rng)}}
	bma.NonLocalConfig["enabledDomains"] = []any{randomURL(rng)}

	if err := validateLocales(bma.DefaultLocale, bma.ConversationalSettings); err != nil {
		return nil, err
	}

	return &agent, nil
}

// LocationTemplate returns the walkthrough's location for placeID, answered
// by agentName.
func LocationTemplate(placeID, agentName string) (*bcapi.Location, error) {
	var loc bcapi.Location
	if err := loadTemplate("location.yaml", &loc); err != nil {
		return nil, err
	}

	loc.PlaceID = placeID
	loc.Agent = agentName

	if err := validateLocales(loc.DefaultLocale, loc.ConversationalSettings); err != nil {
		return nil, err
	}

	return &loc, nil
}

// SurveyTemplate returns the survey configuration the agent walkthrough
// patches in.
func SurveyTemplate() (bcapi.Object, error) {
	var survey bcapi.Object
	if err := loadTemplate("survey.yaml", &survey); err != nil {
		return nil, err
	}

	return survey, nil
}

// validateLocales checks that defaultLocale and every settings key are BCP 47
// tags and that defaultLocale has settings of its own.
func validateLocales(defaultLocale string, settings map[string]bcapi.Object) error {
	if _, err := language.Parse(defaultLocale); err != nil {
		return fmt.Errorf("%w: defaultLocale %q: %w", ErrInvalidTemplate, defaultLocale, err)
	}

	for locale := range settings {
		if _, err := language.Parse(locale); err != nil {
			return fmt.Errorf("%w: conversationalSettings locale %q: %w", ErrInvalidTemplate, locale, err)
		}
	}

	if _, ok := settings[defaultLocale]; !ok {
		return fmt.Errorf("%w: defaultLocale %q has no conversationalSettings entry", ErrInvalidTemplate, defaultLocale)
	}

	return nil
}

// randomPhoneNumber returns "+1" followed by ten digits, the first non-zero.
func randomPhoneNumber(rng *rand.Rand) string {
	return fmt.Sprintf("+1%d", 1_000_000_000+rng.Int64N(9_000_000_000))
}

// randomURL returns https://www.<ten lowercase letters>.com.
func randomURL(rng *rand.Rand) string {
	var b strings.Builder

	b.WriteString("https://www.")

	for range 10 {
		b.WriteByte(byte('a' + rng.IntN(26)))
	}

	b.WriteString(".com")

	return b.String()
}
