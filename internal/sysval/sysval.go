// Package sysval validates the deployed pipeline end to end: environment,
// database, S3 archive, Lambda, schedule, logs, and chart outputs.
package sysval

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"

	"github.com/econlab/econpipe/internal/config"
)

// Check is one named validation with its outcome.
type Check struct {
	Name    string
	Passed  bool
	Details string
}

// Suite groups the checks of one subsystem.
type Suite struct {
	Name   string
	Checks []Check
}

// Passed reports whether every check in the suite passed.
func (s Suite) Passed() bool {
	for _, c := range s.Checks {
		if !c.Passed {
			return false
		}
	}
	return true
}

// Deps are the external clients the validator probes. Each field is a
// narrow slice of the corresponding AWS or database API.
type Deps struct {
	Database  Database
	S3        S3API
	Lambda    LambdaAPI
	Events    EventsAPI
	Scheduler SchedulerAPI
	Logs      LogsAPI
}

// Validator runs the validation suites and prints results as it goes.
type Validator struct {
	cfg  *config.Config
	deps Deps

	functionName string
	rulePrefix   string
	scheduleName string

	out       io.Writer
	lookupEnv func(string) (string, bool)
	now       func() time.Time
}

// Option configures a Validator.
type Option func(*Validator)

// WithOutput redirects the validation narration, which defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(v *Validator) { v.out = w }
}

// WithFunctionName overrides the Lambda function the validator inspects.
func WithFunctionName(name string) Option {
	return func(v *Validator) { v.functionName = name }
}

// WithRulePrefix overrides the EventBridge rule name prefix.
func WithRulePrefix(prefix string) Option {
	return func(v *Validator) { v.rulePrefix = prefix }
}

// WithScheduleName overrides the EventBridge Scheduler schedule consulted
// when no classic rule matches the prefix.
func WithScheduleName(name string) Option {
	return func(v *Validator) { v.scheduleName = name }
}

// WithEnvLookup replaces the environment reader.
func WithEnvLookup(lookup func(string) (string, bool)) Option {
	return func(v *Validator) { v.lookupEnv = lookup }
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) { v.now = now }
}

// New creates a validator over the given configuration and clients.
func New(cfg *config.Config, deps Deps, opts ...Option) *Validator {
	v := &Validator{
		cfg:          cfg,
		deps:         deps,
		functionName: defaultFunctionName,
		rulePrefix:   defaultRulePrefix,
		scheduleName: defaultScheduleName,
		out:          os.Stdout,
		lookupEnv:    os.LookupEnv,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Run executes every suite, prints the per-check results and the summary
// table, and returns the aggregated failures. A nil error means every
// suite passed.
func (v *Validator) Run(ctx context.Context) ([]Suite, error) {
	rule := strings.Repeat("=", 70)
	fmt.Fprintf(v.out, "\n%s\nEconomic Indicator Pipeline - System Validation\n%s\n", rule, rule)
	fmt.Fprintf(v.out, "Time: %s\n", v.now().Format("2006-01-02 15:04:05"))

	suites := []Suite{
		v.checkEnvironment(),
		v.checkDatabase(ctx),
		v.checkS3(ctx),
		v.checkLambda(ctx),
		v.checkSchedule(ctx),
		v.checkLogs(ctx),
		v.checkOutputs(),
	}

	for _, s := range suites {
		v.printSuite(s)
	}
	v.printSummary(suites)

	var result *multierror.Error
	for _, s := range suites {
		if !s.Passed() {
			result = multierror.Append(result, fmt.Errorf("%s checks failed", strings.ToLower(s.Name)))
		}
	}
	return suites, result.ErrorOrNil()
}

func (v *Validator) printSuite(s Suite) {
	fmt.Fprintf(v.out, "\n%s\n%s\n%s\n\n", strings.Repeat("=", 70), s.Name, strings.Repeat("=", 70))
	for _, c := range s.Checks {
		tag := color.GreenString("[PASS]")
		if !c.Passed {
			tag = color.RedString("[FAIL]")
		}
		fmt.Fprintf(v.out, "%s %s\n", tag, c.Name)
		if c.Details != "" {
			fmt.Fprintf(v.out, "      %s\n", c.Details)
		}
	}
}

func (v *Validator) printSummary(suites []Suite) {
	fmt.Fprintf(v.out, "\n%s\nValidation Summary\n%s\n\n", strings.Repeat("=", 70), strings.Repeat("=", 70))

	passed := 0
	for _, s := range suites {
		status := color.GreenString("PASS")
		if s.Passed() {
			passed++
		} else {
			status = color.RedString("FAIL")
		}
		dots := 40 - len(s.Name)
		if dots < 0 {
			dots = 0
		}
		fmt.Fprintf(v.out, "  %s%s [%s]\n", s.Name, strings.Repeat(".", dots), status)
	}

	fmt.Fprintf(v.out, "\nOverall: %d/%d suites passed\n", passed, len(suites))
	if passed == len(suites) {
		_, _ = color.New(color.FgGreen, color.Bold).Fprintln(v.out, "\n[SUCCESS] All systems operational")
	} else {
		_, _ = color.New(color.FgYellow, color.Bold).Fprintln(v.out, "\n[WARNING] Some checks failed - review before deploying")
	}
}
