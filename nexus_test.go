package nexus

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus-hq/nexus/broker"
	"github.com/nexus-hq/nexus/browser"
	"github.com/nexus-hq/nexus/directory"
	"github.com/nexus-hq/nexus/driver"
	"github.com/nexus-hq/nexus/infer"
	"github.com/nexus-hq/nexus/run"
	"github.com/nexus-hq/nexus/types"
	"github.com/nexus-hq/nexus/vendorreg"
)

type fakeDriver struct {
	id        string
	label     string
	provision func(ctx context.Context, env *driver.Env) *driver.VendorResult
}

func (d *fakeDriver) ID() string    { return d.id }
func (d *fakeDriver) Label() string { return d.label }

func (d *fakeDriver) Provision(ctx context.Context, env *driver.Env) *driver.VendorResult {
	return d.provision(ctx, env)
}

func successDriver(id, label string) *fakeDriver {
	return &fakeDriver{
		id:    id,
		label: label,
		provision: func(ctx context.Context, env *driver.Env) *driver.VendorResult {
			r := driver.NewVendorResult(id, label)
			if env.Progress != nil {
				r.OnAppend(env.Progress)
			}
			r.AddMessage("Account created")
			r.Seal(true)
			return r
		},
	}
}

type healthyRuntime struct {
	unhealthyReason string
}

func (r *healthyRuntime) Launch(ctx context.Context) (browser.Page, error) {
	return nil, fmt.Errorf("fake runtime cannot launch")
}

func (r *healthyRuntime) Health() types.HealthStatus {
	if r.unhealthyReason != "" {
		return types.NewUnhealthyStatus(r.unhealthyReason, nil)
	}
	return types.NewHealthyStatus("ok")
}

type fakeSecrets struct{}

func (fakeSecrets) GetSecret(ctx context.Context, name string) (string, error) {
	return "value", nil
}

type fakeDirectory struct {
	getSubject func(ctx context.Context, id string) (types.Subject, error)
	search     func(ctx context.Context, query string, field directory.SearchField) ([]types.Subject, error)
}

func (d *fakeDirectory) GetSubject(ctx context.Context, id string) (types.Subject, error) {
	return d.getSubject(ctx, id)
}

func (d *fakeDirectory) Search(ctx context.Context, query string, field directory.SearchField) ([]types.Subject, error) {
	return d.search(ctx, query, field)
}

func writeManifest(t *testing.T, vendors ...string) string {
	t.Helper()
	var entries []string
	for _, v := range vendors {
		entries = append(entries, fmt.Sprintf(
			`{"vendor_name": %q, "vendor_display_name": %q, "entra_group_name": "Vendor_%s", "vendor_config": "%s.json", "enabled": true}`,
			v, strings.ToUpper(v[:1])+v[1:], v, v))
	}
	manifest := `{"mappings": [` + strings.Join(entries, ",") + `]}`
	path := filepath.Join(t.TempDir(), "vendor_mappings.json")
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o600))
	return path
}

func testRegistry(t *testing.T, vendors ...string) *vendorreg.Registry {
	t.Helper()
	r, err := vendorreg.Load(writeManifest(t, vendors...))
	require.NoError(t, err)
	return r
}

func subjectJane() *types.Subject {
	return &types.Subject{
		ID:             "u-1",
		DisplayName:    "Jane Smith",
		GivenName:      "Jane",
		Surname:        "Smith",
		Mail:           "jsmith@example.com",
		JobTitle:       "Loan Officer",
		OfficeLocation: "Dallas 0120",
		Groups:         []string{"Vendor_accountchek"},
	}
}

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	base := []Option{
		WithRegistry(testRegistry(t, "accountchek")),
		WithDrivers(successDriver("accountchek", "AccountChek")),
		WithSecrets(fakeSecrets{}),
		WithRuntime(&healthyRuntime{}),
	}
	e, err := NewEngine(append(base, opts...)...)
	require.NoError(t, err)
	return e
}

func drainEvents(e *Engine) []run.Event {
	var out []run.Event
	for {
		select {
		case ev := <-e.Events():
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestNewEngine_RequiresCollaborators(t *testing.T) {
	reg := testRegistry(t, "accountchek")

	t.Run("secrets", func(t *testing.T) {
		_, err := NewEngine(WithRegistry(reg), WithRuntime(&healthyRuntime{}))
		assert.ErrorContains(t, err, "secret backend is required")
	})

	t.Run("runtime", func(t *testing.T) {
		_, err := NewEngine(WithRegistry(reg), WithSecrets(fakeSecrets{}))
		assert.ErrorContains(t, err, "browser runtime is required")
	})

	t.Run("registry", func(t *testing.T) {
		_, err := NewEngine(WithSecrets(fakeSecrets{}), WithRuntime(&healthyRuntime{}))
		assert.ErrorContains(t, err, "vendor registry is required")
	})
}

func TestNewEngine_LoadsConfigFile(t *testing.T) {
	manifest := writeManifest(t, "accountchek")
	cfgPath := filepath.Join(t.TempDir(), "engine.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("manifest: "+manifest+"\n"), 0o600))

	e, err := NewEngine(
		WithConfig(cfgPath),
		WithSecrets(fakeSecrets{}),
		WithRuntime(&healthyRuntime{}),
		WithDrivers(successDriver("accountchek", "AccountChek")),
	)
	require.NoError(t, err)
	defer e.Close()

	assert.Len(t, e.Registry().Enabled(), 1)
	assert.True(t, e.Health().IsHealthy())
}

func TestNewEngine_BadConfigFile(t *testing.T) {
	_, err := NewEngine(
		WithConfig(filepath.Join(t.TempDir(), "missing.yaml")),
		WithSecrets(fakeSecrets{}),
		WithRuntime(&healthyRuntime{}),
	)
	assert.ErrorContains(t, err, "read engine config")
}

func TestEngine_Run(t *testing.T) {
	e := newEngine(t)
	defer e.Close()

	summary, err := e.Run(context.Background(), subjectJane(), []string{"accountchek"})
	require.NoError(t, err)

	require.Len(t, summary.Results, 1)
	assert.True(t, summary.Results[0].Success)
	assert.Equal(t, 1, summary.SuccessCount())
	assert.Equal(t, 0, summary.FailureCount())
}

func TestEngine_Run_AutoSelectsFromGroups(t *testing.T) {
	e := newEngine(t)
	defer e.Close()

	// Jane is in Vendor_accountchek, so an empty selection picks it up.
	summary, err := e.Run(context.Background(), subjectJane(), nil)
	require.NoError(t, err)

	require.Len(t, summary.Results, 1)
	assert.Equal(t, "accountchek", summary.Results[0].VendorID)
}

func TestEngine_Run_NoVendorsSelected(t *testing.T) {
	e := newEngine(t)
	defer e.Close()

	outsider := subjectJane()
	outsider.Groups = nil

	_, err := e.Run(context.Background(), outsider, nil)
	assert.ErrorContains(t, err, "no vendors selected")
}

func TestEngine_Run_NilSubject(t *testing.T) {
	e := newEngine(t)
	defer e.Close()

	_, err := e.Run(context.Background(), nil, []string{"accountchek"})
	assert.ErrorContains(t, err, "subject is required")
}

func TestEngine_RunForSubject(t *testing.T) {
	dir := &fakeDirectory{
		getSubject: func(ctx context.Context, id string) (types.Subject, error) {
			require.Equal(t, "u-1", id)
			return *subjectJane(), nil
		},
	}
	e := newEngine(t, WithDirectory(dir))
	defer e.Close()

	summary, err := e.RunForSubject(context.Background(), "u-1", []string{"accountchek"})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.SuccessCount())
}

func TestEngine_RunForSubject_LookupError(t *testing.T) {
	dir := &fakeDirectory{
		getSubject: func(ctx context.Context, id string) (types.Subject, error) {
			return types.Subject{}, fmt.Errorf("not found")
		},
	}
	e := newEngine(t, WithDirectory(dir))
	defer e.Close()

	_, err := e.RunForSubject(context.Background(), "u-404", nil)
	assert.ErrorContains(t, err, "load subject u-404")
}

func TestEngine_DirectoryHelpersRequireClient(t *testing.T) {
	e := newEngine(t)
	defer e.Close()

	_, err := e.RunForSubject(context.Background(), "u-1", nil)
	assert.ErrorContains(t, err, "no directory client configured")

	_, err = e.SearchSubjects(context.Background(), "Jane", directory.FieldDisplayName)
	assert.ErrorContains(t, err, "no directory client configured")
}

func TestEngine_SearchSubjects(t *testing.T) {
	dir := &fakeDirectory{
		search: func(ctx context.Context, query string, field directory.SearchField) ([]types.Subject, error) {
			assert.Equal(t, "Jane", query)
			assert.Equal(t, directory.FieldDisplayName, field)
			return []types.Subject{*subjectJane()}, nil
		},
	}
	e := newEngine(t, WithDirectory(dir))
	defer e.Close()

	subjects, err := e.SearchSubjects(context.Background(), "Jane", directory.FieldDisplayName)
	require.NoError(t, err)
	require.Len(t, subjects, 1)
	assert.Equal(t, "Jane Smith", subjects[0].DisplayName)
}

func TestEngine_EventsStream(t *testing.T) {
	e := newEngine(t)
	defer e.Close()

	_, err := e.Run(context.Background(), subjectJane(), []string{"accountchek"})
	require.NoError(t, err)

	events := drainEvents(e)
	require.NotEmpty(t, events)
	assert.Equal(t, run.EventVendorStarted, events[0].Kind)
	assert.Equal(t, run.EventRunFinished, events[len(events)-1].Kind)
}

func TestEngine_PublishesSummary(t *testing.T) {
	mr := miniredis.RunT(t)

	e := newEngine(t, WithEngineConfig(EngineConfig{
		Redis: RedisConfig{URL: "redis://" + mr.Addr(), Channel: "reports.test"},
	}))
	defer e.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer sub.Close()
	ps := sub.Subscribe(ctx, "reports.test")
	defer ps.Close()
	_, err := ps.Receive(ctx)
	require.NoError(t, err)

	summary, err := e.Run(ctx, subjectJane(), []string{"accountchek"})
	require.NoError(t, err)

	msg, err := ps.ReceiveMessage(ctx)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &doc))
	assert.Equal(t, summary.RunID, doc["run_id"])
	assert.Equal(t, float64(1), doc["success_count"])
}

func TestEngine_SuggestRole(t *testing.T) {
	e := newEngine(t)
	defer e.Close()

	catalog := []infer.Role{
		{Value: "Loan Officer", Keywords: []string{"loan", "officer"}},
		{Value: "User"},
	}
	sug, err := e.SuggestRole(context.Background(), "Senior Loan Officer", catalog, "Lending")
	require.NoError(t, err)
	assert.Equal(t, "Loan Officer", sug.Role)
}

func TestEngine_QuestionsChannel(t *testing.T) {
	asking := &fakeDriver{
		id:    "accountchek",
		label: "AccountChek",
		provision: func(ctx context.Context, env *driver.Env) *driver.VendorResult {
			r := driver.NewVendorResult("accountchek", "AccountChek")
			resolution, err := env.Broker.Ask(ctx, broker.DuplicateUsername("accountchek", "JSmith"))
			if err != nil {
				r.AddError(err.Error())
				r.Seal(false)
				return r
			}
			r.Seal(resolution.Kind == broker.ResolutionRetry)
			return r
		},
	}
	e := newEngine(t, WithDrivers(asking))
	defer e.Close()

	go func() {
		q := <-e.Questions()
		assert.NoError(t, q.Answer(broker.Retry("JSmith1")))
	}()

	summary, err := e.Run(context.Background(), subjectJane(), []string{"accountchek"})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.SuccessCount())
}
