package sysval

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/scheduler"

	"github.com/econlab/econpipe/internal/config"
	"github.com/econlab/econpipe/internal/store"
)

const (
	defaultFunctionName = "economic-indicator-etl"
	defaultRulePrefix   = "economic-indicator"
	defaultScheduleName = "economic-indicator-schedule"

	rawPrefix       = "raw/"
	recentLogWindow = 24 * time.Hour
)

// checkedEnvVars is the full set the validator reports on, a superset of
// the variables that are strictly required.
var checkedEnvVars = []string{
	"FRED_API_KEY",
	"S3_BUCKET_NAME",
	"DB_HOST",
	"DB_NAME",
	"DB_USER",
	"DB_PASSWORD",
	"DB_PORT",
}

// Database is the store surface the validator needs.
type Database interface {
	Counts(ctx context.Context) (store.TableCounts, error)
}

// S3API is the S3 client subset the validator needs.
type S3API interface {
	HeadBucket(ctx context.Context, input *s3.HeadBucketInput, opts ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	ListObjectsV2(ctx context.Context, input *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// LambdaAPI is the Lambda client subset the validator needs.
type LambdaAPI interface {
	GetFunction(ctx context.Context, input *lambda.GetFunctionInput, opts ...func(*lambda.Options)) (*lambda.GetFunctionOutput, error)
}

// EventsAPI is the EventBridge client subset the validator needs.
type EventsAPI interface {
	ListRules(ctx context.Context, input *eventbridge.ListRulesInput, opts ...func(*eventbridge.Options)) (*eventbridge.ListRulesOutput, error)
}

// SchedulerAPI is the EventBridge Scheduler client subset the validator
// falls back to when no classic rule matches.
type SchedulerAPI interface {
	GetSchedule(ctx context.Context, input *scheduler.GetScheduleInput, opts ...func(*scheduler.Options)) (*scheduler.GetScheduleOutput, error)
}

// LogsAPI is the CloudWatch Logs client subset the validator needs.
type LogsAPI interface {
	DescribeLogGroups(ctx context.Context, input *cloudwatchlogs.DescribeLogGroupsInput, opts ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.DescribeLogGroupsOutput, error)
	FilterLogEvents(ctx context.Context, input *cloudwatchlogs.FilterLogEventsInput, opts ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.FilterLogEventsOutput, error)
}

func (v *Validator) checkEnvironment() Suite {
	s := Suite{Name: "Environment Variables"}
	for _, name := range checkedEnvVars {
		value, ok := v.lookupEnv(name)
		passed := ok && value != ""

		details := "NOT SET"
		if passed {
			details = value
			if slices.Contains(config.SecretEnvVars, name) {
				details = "***"
			}
		}
		s.Checks = append(s.Checks, Check{Name: name, Passed: passed, Details: details})
	}
	return s
}

func (v *Validator) checkDatabase(ctx context.Context) Suite {
	s := Suite{Name: "Database"}

	counts, err := v.deps.Database.Counts(ctx)
	if err != nil {
		s.Checks = append(s.Checks, Check{Name: "Database connection", Details: err.Error()})
		return s
	}

	s.Checks = append(s.Checks,
		Check{Name: "Database connection", Passed: true, Details: "Connected to " + v.cfg.DBHost},
		Check{Name: "Table 'indicators' exists", Passed: true, Details: fmt.Sprintf("%d rows", counts.Indicators)},
		Check{Name: "Table 'indicator_data' exists", Passed: true, Details: fmt.Sprintf("%d rows", counts.Observations)},
		Check{Name: "Table 'etl_logs' exists", Passed: true, Details: fmt.Sprintf("%d rows", counts.Runs)},
		Check{
			Name:    "Data loaded",
			Passed:  counts.Observations > 0,
			Details: fmt.Sprintf("%d total data points", counts.Observations),
		},
	)
	return s
}

func (v *Validator) checkS3(ctx context.Context) Suite {
	s := Suite{Name: "S3 Bucket"}
	bucket := v.cfg.S3Bucket

	if _, err := v.deps.S3.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)}); err != nil {
		s.Checks = append(s.Checks, Check{Name: "S3 bucket access", Details: err.Error()})
		return s
	}
	s.Checks = append(s.Checks, Check{Name: "S3 bucket exists", Passed: true, Details: bucket})

	out, err := v.deps.S3.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(bucket),
		Prefix:  aws.String(rawPrefix),
		MaxKeys: aws.Int32(10),
	})
	if err != nil {
		s.Checks = append(s.Checks, Check{Name: "Raw data files exist", Details: err.Error()})
		return s
	}
	count := aws.ToInt32(out.KeyCount)
	s.Checks = append(s.Checks, Check{
		Name:    "Raw data files exist",
		Passed:  count > 0,
		Details: fmt.Sprintf("%d files found", count),
	})
	return s
}

func (v *Validator) checkLambda(ctx context.Context) Suite {
	s := Suite{Name: "Lambda Function"}

	out, err := v.deps.Lambda.GetFunction(ctx, &lambda.GetFunctionInput{
		FunctionName: aws.String(v.functionName),
	})
	if err != nil {
		s.Checks = append(s.Checks, Check{Name: "Lambda function", Details: err.Error()})
		return s
	}

	cfg := out.Configuration
	s.Checks = append(s.Checks,
		Check{Name: "Lambda function exists", Passed: true, Details: fmt.Sprintf("Runtime: %s", cfg.Runtime)},
		Check{Name: "Lambda memory", Passed: true, Details: fmt.Sprintf("%d MB", aws.ToInt32(cfg.MemorySize))},
		Check{Name: "Lambda timeout", Passed: true, Details: fmt.Sprintf("%d seconds", aws.ToInt32(cfg.Timeout))},
	)
	return s
}

func (v *Validator) checkSchedule(ctx context.Context) Suite {
	s := Suite{Name: "Schedule"}

	out, err := v.deps.Events.ListRules(ctx, &eventbridge.ListRulesInput{
		NamePrefix: aws.String(v.rulePrefix),
	})
	if err == nil && len(out.Rules) > 0 {
		rule := out.Rules[0]
		expr := aws.ToString(rule.ScheduleExpression)
		if expr == "" {
			expr = "N/A"
		}
		s.Checks = append(s.Checks,
			Check{Name: "EventBridge rule exists", Passed: true, Details: aws.ToString(rule.Name)},
			Check{Name: "Schedule expression", Passed: true, Details: expr},
			Check{Name: "Rule state", Passed: rule.State == "ENABLED", Details: string(rule.State)},
		)
		return s
	}

	// No classic rule; the deployment may use EventBridge Scheduler.
	sched, schedErr := v.deps.Scheduler.GetSchedule(ctx, &scheduler.GetScheduleInput{
		Name: aws.String(v.scheduleName),
	})
	if schedErr != nil {
		details := fmt.Sprintf("no EventBridge rule with prefix %q and no schedule %q", v.rulePrefix, v.scheduleName)
		if err != nil {
			details = fmt.Sprintf("%s (list rules: %v)", details, err)
		}
		s.Checks = append(s.Checks, Check{Name: "Schedule exists", Details: details})
		return s
	}

	s.Checks = append(s.Checks,
		Check{Name: "Schedule exists", Passed: true, Details: aws.ToString(sched.Name)},
		Check{Name: "Schedule expression", Passed: true, Details: aws.ToString(sched.ScheduleExpression)},
		Check{Name: "Schedule state", Passed: sched.State == "ENABLED", Details: string(sched.State)},
	)
	return s
}

func (v *Validator) checkLogs(ctx context.Context) Suite {
	s := Suite{Name: "Lambda Logs"}
	group := "/aws/lambda/" + v.functionName

	out, err := v.deps.Logs.DescribeLogGroups(ctx, &cloudwatchlogs.DescribeLogGroupsInput{
		LogGroupNamePrefix: aws.String(group),
	})
	if err != nil {
		s.Checks = append(s.Checks, Check{Name: "Log group exists", Details: err.Error()})
		return s
	}
	if len(out.LogGroups) == 0 {
		s.Checks = append(s.Checks, Check{Name: "Log group exists", Details: group + " not found"})
		return s
	}
	s.Checks = append(s.Checks, Check{Name: "Log group exists", Passed: true, Details: group})

	since := v.now().Add(-recentLogWindow).UnixMilli()
	events, err := v.deps.Logs.FilterLogEvents(ctx, &cloudwatchlogs.FilterLogEventsInput{
		LogGroupName: aws.String(group),
		StartTime:    aws.Int64(since),
		Limit:        aws.Int32(10),
	})
	if err != nil {
		s.Checks = append(s.Checks, Check{Name: "Recent log events", Details: err.Error()})
		return s
	}
	s.Checks = append(s.Checks, Check{
		Name:    "Recent log events",
		Passed:  len(events.Events) > 0,
		Details: fmt.Sprintf("%d events in the last 24h", len(events.Events)),
	})
	return s
}

func (v *Validator) checkOutputs() Suite {
	s := Suite{Name: "Chart Outputs"}
	dir := v.cfg.OutputDir

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		s.Checks = append(s.Checks, Check{Name: "Output directory", Details: dir + " not found"})
		return s
	}
	s.Checks = append(s.Checks, Check{Name: "Output directory", Passed: true, Details: dir})

	for _, name := range []string{
		"multi_indicator_dashboard.png",
		"interactive_dashboard.html",
		"correlation_heatmap.png",
	} {
		path := filepath.Join(dir, name)
		fi, err := os.Stat(path)
		if err != nil {
			s.Checks = append(s.Checks, Check{Name: name, Details: "Not found"})
			continue
		}
		s.Checks = append(s.Checks, Check{
			Name:    name,
			Passed:  true,
			Details: fmt.Sprintf("%.1f KB", float64(fi.Size())/1024),
		})
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "*_timeseries.png"))
	s.Checks = append(s.Checks, Check{
		Name:    "Series charts",
		Passed:  len(matches) > 0,
		Details: fmt.Sprintf("%d found", len(matches)),
	})
	return s
}
