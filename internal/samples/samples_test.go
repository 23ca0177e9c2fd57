package samples

import (
	"context"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2/google"

	"github.com/businesscomms/bcctl/internal/bcapi"
	"github.com/businesscomms/bcctl/internal/twin"
)

type fakeConsole struct {
	headers []string
	objects []any
	pauses  []time.Duration
}

func (c *fakeConsole) Header(title string) { c.headers = append(c.headers, title) }
func (c *fakeConsole) Object(v any)        { c.objects = append(c.objects, v) }

func (c *fakeConsole) Pause(ctx context.Context, d time.Duration) error {
	c.pauses = append(c.pauses, d)
	return ctx.Err()
}

type fakeRecorder struct {
	mu   sync.Mutex
	live map[string]bool
}

func (r *fakeRecorder) Record(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.live == nil {
		r.live = map[string]bool{}
	}

	r.live[name] = true

	return nil
}

func (r *fakeRecorder) Forget(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.live, name)

	return nil
}

func newTwinAPI(t *testing.T) (*bcapi.Client, *twin.Server) {
	t.Helper()

	return newFailingTwinAPI(t, nil)
}

// failingTransport answers requests matching fail with a 503 instead of
// sending them.
type failingTransport struct {
	base http.RoundTripper
	fail func(*http.Request) bool
}

func (ft *failingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if ft.fail == nil || !ft.fail(req) {
		return ft.base.RoundTrip(req)
	}

	body := `{"error":{"code":503,"message":"injected failure","status":"UNAVAILABLE"}}`

	return &http.Response{
		StatusCode: http.StatusServiceUnavailable,
		Status:     "503 Service Unavailable",
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    req,
	}, nil
}

func failOn(method, fragment string) func(*http.Request) bool {
	return func(req *http.Request) bool {
		return req.Method == method && strings.Contains(req.URL.Path, fragment)
	}
}

func newFailingTwinAPI(t *testing.T, fail func(*http.Request) bool) (*bcapi.Client, *twin.Server) {
	t.Helper()

	tw := twin.New()
	srv := httptest.NewServer(tw.Handler())
	t.Cleanup(srv.Close)

	sa, err := tw.NewServiceAccount("samples", srv.URL+"/token")
	require.NoError(t, err)

	data, err := sa.CredentialsJSON()
	require.NoError(t, err)

	cfg, err := google.JWTConfigFromJSON(data, bcapi.Scope)
	require.NoError(t, err)

	httpClient := &http.Client{Transport: &failingTransport{base: srv.Client().Transport, fail: fail}}

	return bcapi.NewClient(srv.URL, httpClient, cfg.TokenSource(context.Background()), nil), tw
}

func stepTitles(rep *Report) []string {
	titles := make([]string, 0, len(rep.Steps))
	for _, s := range rep.Steps {
		titles = append(titles, s.Title)
	}

	return titles
}

func seededRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2)) //nolint:gosec // deterministic test data
}

func TestBrandWalkthrough(t *testing.T) {
	api, tw := newTwinAPI(t)
	console := &fakeConsole{}
	rec := &fakeRecorder{}

	runner := NewRunner(api, console, Options{Delay: time.Millisecond, Recorder: rec})

	rep, err := runner.Brand(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Create Brand",
		"Get Brand Details",
		"Updating Brand",
		"List Brands",
		"Deleting Brand",
	}, console.headers)
	assert.Len(t, console.pauses, 4)
	assert.Empty(t, rep.Failures())
	assert.True(t, rep.Deleted)
	assert.NotEmpty(t, rep.Name)
	assert.Zero(t, tw.Len())
	assert.Empty(t, rec.live)

	updated, ok := console.objects[2].(*bcapi.Brand)
	require.True(t, ok)
	assert.Equal(t, UpdatedBrandDisplayName, updated.DisplayName)
}

func TestBrandWalkthrough_NoDelete(t *testing.T) {
	api, tw := newTwinAPI(t)
	rec := &fakeRecorder{}

	runner := NewRunner(api, &fakeConsole{}, Options{NoDelete: true, Recorder: rec})

	rep, err := runner.Brand(context.Background())
	require.NoError(t, err)
	assert.False(t, rep.Deleted)

	snap, ok := tw.Snapshot(rep.Name)
	require.True(t, ok)
	assert.Equal(t, UpdatedBrandDisplayName, snap["displayName"])
	assert.True(t, rec.live[rep.Name])
}

func TestAgentWalkthrough(t *testing.T) {
	api, tw := newTwinAPI(t)
	ctx := context.Background()

	brand, err := api.CreateBrand(ctx, &bcapi.Brand{DisplayName: "B"})
	require.NoError(t, err)

	console := &fakeConsole{}
	runner := NewRunner(api, console, Options{NoDelete: true, Rand: seededRand()})

	rep, err := runner.Agent(ctx, brand.Name)
	require.NoError(t, err)
	assert.Empty(t, rep.Failures())
	assert.Len(t, rep.Steps, 7)
	assert.Equal(t, "Agent script for brand - "+brand.Name, console.headers[0])

	agent, err := api.GetAgent(ctx, rep.Name)
	require.NoError(t, err)

	assert.Equal(t, UpdatedAgentDisplayName, agent.DisplayName)

	bma := agent.BusinessMessagesAgent
	require.NotNil(t, bma)
	assert.Equal(t, UpdatedAgentLogoURL, bma.LogoURL)
	assert.Equal(t, "en", bma.DefaultLocale, "untouched by any update")
	assert.Equal(t, bcapi.Object{"text": UpdatedWelcomeMessage}, bma.ConversationalSettings["en"]["welcomeMessage"])
	assert.Equal(t, []any{"GOOGLE_DEFINED_NPS", "GOOGLE_DEFINED_CUSTOMER_EFFORT"}, bma.SurveyConfig["templateQuestionIds"])
	assert.Len(t, bma.EntryPointConfigs, 2)
	assert.Equal(t, bcapi.Object{"number": "+12223335555"}, bma.NonLocalConfig["phoneNumber"])

	_, ok := tw.Snapshot(rep.Name)
	assert.True(t, ok)
}

func TestAgentWalkthrough_Deletes(t *testing.T) {
	api, tw := newTwinAPI(t)
	ctx := context.Background()

	brand, err := api.CreateBrand(ctx, &bcapi.Brand{DisplayName: "B"})
	require.NoError(t, err)

	rep, err := NewRunner(api, &fakeConsole{}, Options{}).Agent(ctx, brand.Name)
	require.NoError(t, err)
	assert.True(t, rep.Deleted)
	assert.Equal(t, 1, tw.Len(), "only the brand remains")
}

func TestAgentWalkthrough_Usage(t *testing.T) {
	api, tw := newTwinAPI(t)

	_, err := NewRunner(api, &fakeConsole{}, Options{}).Agent(context.Background(), "not-a-brand")
	require.ErrorIs(t, err, ErrUsage)
	assert.Zero(t, tw.Requests())
}

func TestAgentWalkthrough_CreateFailureAborts(t *testing.T) {
	api, _ := newTwinAPI(t)
	console := &fakeConsole{}

	rep, err := NewRunner(api, console, Options{}).Agent(context.Background(), "brands/missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, bcapi.ErrNotFound)
	assert.Empty(t, rep.Name)
	require.Len(t, rep.Steps, 1)
	assert.Equal(t, "Create Agent", rep.Steps[0].Title)
	assert.Empty(t, console.pauses)
}

func TestAgentWalkthrough_GetFailureAborts(t *testing.T) {
	api, tw := newFailingTwinAPI(t, failOn(http.MethodGet, "/agents/"))
	ctx := context.Background()
	rec := &fakeRecorder{}

	brand, err := api.CreateBrand(ctx, &bcapi.Brand{DisplayName: "B"})
	require.NoError(t, err)

	rep, err := NewRunner(api, &fakeConsole{}, Options{Recorder: rec}).Agent(ctx, brand.Name)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading agent")

	assert.Equal(t, []string{"Create Agent", "Get Agent Details"}, stepTitles(rep))
	assert.NotEmpty(t, rep.Name)
	assert.False(t, rep.Deleted)
	assert.True(t, rec.live[rep.Name], "the agent stays recorded for cleanup")

	snap, ok := tw.Snapshot(rep.Name)
	require.True(t, ok)
	assert.NotEqual(t, UpdatedAgentDisplayName, snap["displayName"], "no update ran")
}

func TestBrandWalkthrough_GetAndListFailuresContinue(t *testing.T) {
	api, tw := newFailingTwinAPI(t, failOn(http.MethodGet, "/brands"))

	rep, err := NewRunner(api, &fakeConsole{}, Options{}).Brand(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Create Brand",
		"Get Brand Details",
		"Updating Brand",
		"List Brands",
		"Deleting Brand",
	}, stepTitles(rep))

	failures := rep.Failures()
	require.Len(t, failures, 2)
	assert.Equal(t, "Get Brand Details", failures[0].Title)
	assert.Equal(t, "List Brands", failures[1].Title)
	assert.True(t, rep.Deleted)
	assert.Zero(t, tw.Len())
}

func TestBrandWalkthrough_DeleteFailureKeepsRecord(t *testing.T) {
	api, tw := newFailingTwinAPI(t, failOn(http.MethodDelete, "/brands/"))
	rec := &fakeRecorder{}

	rep, err := NewRunner(api, &fakeConsole{}, Options{Recorder: rec}).Brand(context.Background())
	require.NoError(t, err)

	failures := rep.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "Deleting Brand", failures[0].Title)
	assert.False(t, rep.Deleted)
	assert.True(t, rec.live[rep.Name])
	assert.Equal(t, 1, tw.Len())
}

func TestLocationWalkthrough_GetAndListFailuresContinue(t *testing.T) {
	api, tw := newFailingTwinAPI(t, failOn(http.MethodGet, "/locations"))
	ctx := context.Background()

	brand, err := api.CreateBrand(ctx, &bcapi.Brand{DisplayName: "B"})
	require.NoError(t, err)

	agent, err := api.CreateAgent(ctx, brand.Name, &bcapi.Agent{DisplayName: "A"})
	require.NoError(t, err)

	rep, err := NewRunner(api, &fakeConsole{}, Options{NewAgent: agent.Name}).Location(ctx, agent.Name)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Create Location",
		"Get Location Details",
		"Updating Location",
		"List Locations",
		"Deleting Location",
	}, stepTitles(rep))

	failures := rep.Failures()
	require.Len(t, failures, 2)
	assert.Equal(t, "Get Location Details", failures[0].Title)
	assert.Equal(t, "List Locations", failures[1].Title)
	assert.True(t, rep.Deleted)
	assert.Equal(t, 2, tw.Len())
}

func TestLocationWalkthrough_PlaceholderUpdateFails(t *testing.T) {
	api, tw := newTwinAPI(t)
	ctx := context.Background()

	brand, err := api.CreateBrand(ctx, &bcapi.Brand{DisplayName: "B"})
	require.NoError(t, err)

	agent, err := api.CreateAgent(ctx, brand.Name, &bcapi.Agent{DisplayName: "A"})
	require.NoError(t, err)

	console := &fakeConsole{}

	rep, err := NewRunner(api, console, Options{}).Location(ctx, agent.Name)
	require.NoError(t, err, "update failures do not abort the walkthrough")

	failures := rep.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "Updating Location", failures[0].Title)
	assert.ErrorIs(t, failures[0].Err, bcapi.ErrInvalidArgument)

	assert.True(t, rep.Deleted)
	assert.Equal(t, 2, tw.Len())
	assert.Equal(t, "Location script for agent - "+agent.Name, console.headers[0])
}

func TestLocationWalkthrough_Repoint(t *testing.T) {
	api, tw := newTwinAPI(t)
	ctx := context.Background()

	brand, err := api.CreateBrand(ctx, &bcapi.Brand{DisplayName: "B"})
	require.NoError(t, err)

	first, err := api.CreateAgent(ctx, brand.Name, &bcapi.Agent{DisplayName: "first"})
	require.NoError(t, err)

	second, err := api.CreateAgent(ctx, brand.Name, &bcapi.Agent{DisplayName: "second"})
	require.NoError(t, err)

	rep, err := NewRunner(api, &fakeConsole{}, Options{NoDelete: true, NewAgent: second.Name}).Location(ctx, first.Name)
	require.NoError(t, err)
	assert.Empty(t, rep.Failures())

	snap, ok := tw.Snapshot(rep.Name)
	require.True(t, ok)
	assert.Equal(t, second.Name, snap["agent"])
	assert.Equal(t, GoogleplexPlaceID, snap["placeId"])
}

func TestLocationWalkthrough_Usage(t *testing.T) {
	api, _ := newTwinAPI(t)

	_, err := NewRunner(api, &fakeConsole{}, Options{}).Location(context.Background(), "brands/b")
	assert.ErrorIs(t, err, ErrUsage)
}

func TestWalkthrough_CanceledDuringPause(t *testing.T) {
	api, _ := newTwinAPI(t)
	rec := &fakeRecorder{}

	ctx, cancel := context.WithCancel(context.Background())
	console := &cancelingConsole{cancel: cancel}

	rep, err := NewRunner(api, console, Options{Delay: time.Second, Recorder: rec}).Brand(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.NotEmpty(t, rep.Name)
	assert.False(t, rep.Deleted)
	assert.True(t, rec.live[rep.Name], "interrupted run leaves its resource recorded")
}

// cancelingConsole cancels the run on the first pause.
type cancelingConsole struct {
	fakeConsole
	cancel context.CancelFunc
}

func (c *cancelingConsole) Pause(ctx context.Context, _ time.Duration) error {
	c.cancel()
	return ctx.Err()
}
