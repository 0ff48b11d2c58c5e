package sysval

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	logtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	ebtypes "github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/econlab/econpipe/internal/config"
	"github.com/econlab/econpipe/internal/store"
)

type fakeDB struct {
	counts store.TableCounts
	err    error
}

func (f fakeDB) Counts(context.Context) (store.TableCounts, error) { return f.counts, f.err }

type fakeS3 struct {
	headErr error
	keys    int32
	listErr error
}

func (f fakeS3) HeadBucket(context.Context, *s3.HeadBucketInput, ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	return &s3.HeadBucketOutput{}, nil
}

func (f fakeS3) ListObjectsV2(context.Context, *s3.ListObjectsV2Input, ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return &s3.ListObjectsV2Output{KeyCount: aws.Int32(f.keys)}, nil
}

type fakeLambda struct{ err error }

func (f fakeLambda) GetFunction(context.Context, *lambda.GetFunctionInput, ...func(*lambda.Options)) (*lambda.GetFunctionOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &lambda.GetFunctionOutput{
		Configuration: &lambdatypes.FunctionConfiguration{
			Runtime:    lambdatypes.RuntimeProvidedal2023,
			MemorySize: aws.Int32(512),
			Timeout:    aws.Int32(300),
		},
	}, nil
}

type fakeEvents struct {
	rules []ebtypes.Rule
	err   error
}

func (f fakeEvents) ListRules(context.Context, *eventbridge.ListRulesInput, ...func(*eventbridge.Options)) (*eventbridge.ListRulesOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &eventbridge.ListRulesOutput{Rules: f.rules}, nil
}

type fakeScheduler struct {
	out *scheduler.GetScheduleOutput
	err error
}

func (f fakeScheduler) GetSchedule(context.Context, *scheduler.GetScheduleInput, ...func(*scheduler.Options)) (*scheduler.GetScheduleOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

type fakeLogs struct {
	groups    int
	events    int
	descErr   error
	filterErr error
}

func (f fakeLogs) DescribeLogGroups(context.Context, *cloudwatchlogs.DescribeLogGroupsInput, ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.DescribeLogGroupsOutput, error) {
	if f.descErr != nil {
		return nil, f.descErr
	}
	out := &cloudwatchlogs.DescribeLogGroupsOutput{}
	for i := 0; i < f.groups; i++ {
		out.LogGroups = append(out.LogGroups, logtypes.LogGroup{
			LogGroupName: aws.String("/aws/lambda/economic-indicator-etl"),
		})
	}
	return out, nil
}

func (f fakeLogs) FilterLogEvents(context.Context, *cloudwatchlogs.FilterLogEventsInput, ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.FilterLogEventsOutput, error) {
	if f.filterErr != nil {
		return nil, f.filterErr
	}
	out := &cloudwatchlogs.FilterLogEventsOutput{}
	for i := 0; i < f.events; i++ {
		out.Events = append(out.Events, logtypes.FilteredLogEvent{Message: aws.String("ok")})
	}
	return out, nil
}

func healthyDeps() Deps {
	return Deps{
		Database: fakeDB{counts: store.TableCounts{Indicators: 5, Observations: 4000, Runs: 12}},
		S3:       fakeS3{keys: 7},
		Lambda:   fakeLambda{},
		Events: fakeEvents{rules: []ebtypes.Rule{{
			Name:               aws.String("economic-indicator-daily"),
			ScheduleExpression: aws.String("rate(1 day)"),
			State:              ebtypes.RuleStateEnabled,
		}}},
		Scheduler: fakeScheduler{err: assert.AnError},
		Logs:      fakeLogs{groups: 1, events: 3},
	}
}

func testConfig(outputDir string) *config.Config {
	return &config.Config{
		S3Bucket:  "econ-raw-data",
		DBHost:    "db.example.com",
		OutputDir: outputDir,
	}
}

func fullEnv(string) (string, bool) { return "value", true }

// populatedOutputDir seeds the chart files the output suite looks for.
func populatedOutputDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{
		"multi_indicator_dashboard.png",
		"interactive_dashboard.html",
		"correlation_heatmap.png",
		"unemployment_rate_timeseries.png",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("data"), 0o644))
	}
	return dir
}

func newTestValidator(t *testing.T, deps Deps, opts ...Option) (*Validator, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	base := []Option{
		WithOutput(&out),
		WithEnvLookup(fullEnv),
		WithClock(func() time.Time { return time.Date(2025, 7, 1, 6, 0, 0, 0, time.UTC) }),
	}
	v := New(testConfig(populatedOutputDir(t)), deps, append(base, opts...)...)
	return v, &out
}

func TestRunAllSuitesPass(t *testing.T) {
	v, out := newTestValidator(t, healthyDeps())

	suites, err := v.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, suites, 7)
	for _, s := range suites {
		assert.True(t, s.Passed(), "suite %s", s.Name)
	}

	text := out.String()
	assert.Contains(t, text, "Overall: 7/7 suites passed")
	assert.Contains(t, text, "[SUCCESS] All systems operational")
}

func TestRunAggregatesFailures(t *testing.T) {
	deps := healthyDeps()
	deps.S3 = fakeS3{keys: 0} // bucket reachable but no raw payloads
	deps.Database = fakeDB{err: assert.AnError}
	v, out := newTestValidator(t, deps)

	_, err := v.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database checks failed")
	assert.Contains(t, err.Error(), "s3 bucket checks failed")

	text := out.String()
	assert.Contains(t, text, "Overall: 5/7 suites passed")
	assert.Contains(t, text, "[WARNING]")
}

func TestCheckEnvironmentMasksSecrets(t *testing.T) {
	env := map[string]string{
		"FRED_API_KEY":   "abc123",
		"S3_BUCKET_NAME": "econ-raw-data",
		"DB_HOST":        "db.example.com",
		"DB_NAME":        "economic_indicators",
		"DB_USER":        "postgres",
		"DB_PASSWORD":    "hunter2",
		// DB_PORT deliberately unset.
	}
	v, _ := newTestValidator(t, healthyDeps(), WithEnvLookup(func(key string) (string, bool) {
		val, ok := env[key]
		return val, ok
	}))

	s := v.checkEnvironment()
	require.Len(t, s.Checks, 7)
	assert.False(t, s.Passed())

	byName := map[string]Check{}
	for _, c := range s.Checks {
		byName[c.Name] = c
	}
	assert.Equal(t, "***", byName["FRED_API_KEY"].Details)
	assert.Equal(t, "***", byName["DB_PASSWORD"].Details)
	assert.Equal(t, "db.example.com", byName["DB_HOST"].Details)
	assert.False(t, byName["DB_PORT"].Passed)
	assert.Equal(t, "NOT SET", byName["DB_PORT"].Details)
}

func TestCheckDatabase(t *testing.T) {
	v, _ := newTestValidator(t, healthyDeps())

	s := v.checkDatabase(context.Background())
	require.Len(t, s.Checks, 5)
	assert.True(t, s.Passed())
	assert.Equal(t, "Connected to db.example.com", s.Checks[0].Details)
	assert.Equal(t, "4000 total data points", s.Checks[4].Details)
}

func TestCheckDatabaseConnectionFailure(t *testing.T) {
	deps := healthyDeps()
	deps.Database = fakeDB{err: assert.AnError}
	v, _ := newTestValidator(t, deps)

	s := v.checkDatabase(context.Background())
	require.Len(t, s.Checks, 1)
	assert.False(t, s.Checks[0].Passed)
	assert.Contains(t, s.Checks[0].Details, assert.AnError.Error())
}

func TestCheckDatabaseEmpty(t *testing.T) {
	deps := healthyDeps()
	deps.Database = fakeDB{counts: store.TableCounts{Indicators: 5}}
	v, _ := newTestValidator(t, deps)

	s := v.checkDatabase(context.Background())
	assert.False(t, s.Passed())
	assert.False(t, s.Checks[4].Passed) // "Data loaded"
}

func TestCheckS3NoRawFiles(t *testing.T) {
	deps := healthyDeps()
	deps.S3 = fakeS3{keys: 0}
	v, _ := newTestValidator(t, deps)

	s := v.checkS3(context.Background())
	require.Len(t, s.Checks, 2)
	assert.True(t, s.Checks[0].Passed)
	assert.False(t, s.Checks[1].Passed)
	assert.Equal(t, "0 files found", s.Checks[1].Details)
}

func TestCheckS3HeadFailure(t *testing.T) {
	deps := healthyDeps()
	deps.S3 = fakeS3{headErr: assert.AnError}
	v, _ := newTestValidator(t, deps)

	s := v.checkS3(context.Background())
	require.Len(t, s.Checks, 1)
	assert.False(t, s.Passed())
}

func TestCheckLambda(t *testing.T) {
	v, _ := newTestValidator(t, healthyDeps())

	s := v.checkLambda(context.Background())
	require.Len(t, s.Checks, 3)
	assert.True(t, s.Passed())
	assert.Contains(t, s.Checks[0].Details, "provided.al2023")
	assert.Equal(t, "512 MB", s.Checks[1].Details)
	assert.Equal(t, "300 seconds", s.Checks[2].Details)
}

func TestCheckScheduleUsesRule(t *testing.T) {
	v, _ := newTestValidator(t, healthyDeps())

	s := v.checkSchedule(context.Background())
	require.Len(t, s.Checks, 3)
	assert.True(t, s.Passed())
	assert.Equal(t, "economic-indicator-daily", s.Checks[0].Details)
	assert.Equal(t, "rate(1 day)", s.Checks[1].Details)
}

func TestCheckScheduleDisabledRuleFails(t *testing.T) {
	deps := healthyDeps()
	deps.Events = fakeEvents{rules: []ebtypes.Rule{{
		Name:  aws.String("economic-indicator-daily"),
		State: ebtypes.RuleStateDisabled,
	}}}
	v, _ := newTestValidator(t, deps)

	s := v.checkSchedule(context.Background())
	assert.False(t, s.Passed())
	assert.Equal(t, "DISABLED", s.Checks[2].Details)
	assert.Equal(t, "N/A", s.Checks[1].Details)
}

func TestCheckScheduleFallsBackToScheduler(t *testing.T) {
	deps := healthyDeps()
	deps.Events = fakeEvents{} // no classic rules
	deps.Scheduler = fakeScheduler{out: &scheduler.GetScheduleOutput{
		Name:               aws.String("economic-indicator-schedule"),
		ScheduleExpression: aws.String("cron(0 6 * * ? *)"),
		State:              "ENABLED",
	}}
	v, _ := newTestValidator(t, deps)

	s := v.checkSchedule(context.Background())
	require.Len(t, s.Checks, 3)
	assert.True(t, s.Passed())
	assert.Equal(t, "economic-indicator-schedule", s.Checks[0].Details)
	assert.Equal(t, "cron(0 6 * * ? *)", s.Checks[1].Details)
}

func TestCheckScheduleNothingFound(t *testing.T) {
	deps := healthyDeps()
	deps.Events = fakeEvents{}
	deps.Scheduler = fakeScheduler{err: assert.AnError}
	v, _ := newTestValidator(t, deps)

	s := v.checkSchedule(context.Background())
	require.Len(t, s.Checks, 1)
	assert.False(t, s.Passed())
	assert.Contains(t, s.Checks[0].Details, "economic-indicator")
}

func TestCheckLogsNoRecentEvents(t *testing.T) {
	deps := healthyDeps()
	deps.Logs = fakeLogs{groups: 1, events: 0}
	v, _ := newTestValidator(t, deps)

	s := v.checkLogs(context.Background())
	require.Len(t, s.Checks, 2)
	assert.True(t, s.Checks[0].Passed)
	assert.False(t, s.Checks[1].Passed)
	assert.Equal(t, "0 events in the last 24h", s.Checks[1].Details)
}

func TestCheckLogsMissingGroup(t *testing.T) {
	deps := healthyDeps()
	deps.Logs = fakeLogs{groups: 0}
	v, _ := newTestValidator(t, deps)

	s := v.checkLogs(context.Background())
	require.Len(t, s.Checks, 1)
	assert.False(t, s.Passed())
	assert.Contains(t, s.Checks[0].Details, "not found")
}

func TestCheckOutputs(t *testing.T) {
	v, _ := newTestValidator(t, healthyDeps())

	s := v.checkOutputs()
	require.Len(t, s.Checks, 5)
	assert.True(t, s.Passed())
	assert.Contains(t, s.Checks[1].Details, "KB")
	assert.Equal(t, "1 found", s.Checks[4].Details)
}

func TestCheckOutputsMissingDir(t *testing.T) {
	deps := healthyDeps()
	var out bytes.Buffer
	v := New(testConfig(filepath.Join(t.TempDir(), "missing")), deps,
		WithOutput(&out), WithEnvLookup(fullEnv))

	s := v.checkOutputs()
	require.Len(t, s.Checks, 1)
	assert.False(t, s.Passed())
}

func TestCheckOutputsMissingChart(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "multi_indicator_dashboard.png"), []byte("x"), 0o644))

	var out bytes.Buffer
	v := New(testConfig(dir), healthyDeps(), WithOutput(&out), WithEnvLookup(fullEnv))

	s := v.checkOutputs()
	assert.False(t, s.Passed())

	byName := map[string]Check{}
	for _, c := range s.Checks {
		byName[c.Name] = c
	}
	assert.True(t, byName["multi_indicator_dashboard.png"].Passed)
	assert.False(t, byName["correlation_heatmap.png"].Passed)
	assert.False(t, byName["Series charts"].Passed)
}
