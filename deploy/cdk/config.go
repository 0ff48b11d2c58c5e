package main

// StackConfig carries the deploy-time settings for the pipeline stack.
// Defaults match the names the `econpipe validate` command expects, so a
// stock deployment passes system validation without flags.
type StackConfig struct {
	// StackName is the CloudFormation stack name.
	StackName string

	// FunctionName names the ETL Lambda. The function's log group is
	// derived from it, so changing one means changing both everywhere
	// the pipeline is inspected.
	FunctionName string

	// RuleName names the EventBridge rule that triggers the ETL on a
	// schedule.
	RuleName string

	// BucketName names the raw-payload archive bucket. Leave empty to
	// let CloudFormation generate a unique name.
	BucketName string

	// ScheduleExpression is the EventBridge cron for the daily load.
	ScheduleExpression string

	// MemorySize is the Lambda memory allocation in MB.
	MemorySize float64

	// TimeoutSeconds is the Lambda timeout. The runner fetches every
	// catalog series sequentially, so allow for slow FRED responses.
	TimeoutSeconds float64

	// LambdaDistDir is the directory holding the compiled Lambda
	// bootstrap, laid out as <dist>/etl/bootstrap.
	LambdaDistDir string

	// LogRetentionDays bounds how long Lambda logs are kept.
	LogRetentionDays float64

	// Database connection settings passed to the function environment.
	// The password itself stays in Secrets Manager.
	DBHost string
	DBPort string
	DBName string
	DBUser string

	// FredSecretName and DBSecretName are the Secrets Manager names
	// holding the FRED API key and database password. The stack grants
	// the function read access and passes the ARNs in its environment.
	FredSecretName string
	DBSecretName   string

	// LookbackDays is how far back incremental fetches reach when a
	// series already has data.
	LookbackDays string

	// DestroyOnDelete removes the bucket and log group when the stack
	// is deleted. Keep false for real deployments.
	DestroyOnDelete bool
}

// DefaultConfig returns the settings for the standard deployment.
func DefaultConfig() StackConfig {
	return StackConfig{
		StackName:          "EconpipeStack",
		FunctionName:       "economic-indicator-etl",
		RuleName:           "economic-indicator-daily",
		ScheduleExpression: "cron(0 6 * * ? *)",
		MemorySize:         512,
		TimeoutSeconds:     300,
		LambdaDistDir:      "../dist/lambda",
		LogRetentionDays:   30,
		DBPort:             "5432",
		DBName:             "economic_indicators",
		DBUser:             "postgres",
		FredSecretName:     "econpipe/fred-api-key",
		DBSecretName:       "econpipe/db-password",
		LookbackDays:       "3650",
	}
}
