// Command cdk synthesizes the econpipe AWS stack: the raw-payload S3
// bucket, the scheduled ETL Lambda, and the EventBridge rule that
// drives it. Build the Lambda first:
//
//	GOOS=linux GOARCH=arm64 go build -o deploy/dist/lambda/etl/bootstrap ./cmd/lambda/etl
//
// then `cdk deploy` from this directory.
package main

import (
	"os"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/jsii-runtime-go"
)

func main() {
	defer jsii.Close()

	app := awscdk.NewApp(nil)
	cfg := configFromEnv()

	NewEconpipeStack(app, cfg.StackName, &awscdk.StackProps{
		Env:         deployEnv(),
		Description: jsii.String("Economic indicator ETL pipeline: FRED to S3 and Postgres on a daily schedule"),
	}, cfg)

	app.Synth(nil)
}

// configFromEnv layers environment overrides on the defaults. Only the
// settings that vary between deployments are exposed this way.
func configFromEnv() StackConfig {
	cfg := DefaultConfig()
	if v := os.Getenv("ECONPIPE_STACK_NAME"); v != "" {
		cfg.StackName = v
	}
	if v := os.Getenv("ECONPIPE_BUCKET_NAME"); v != "" {
		cfg.BucketName = v
	}
	if v := os.Getenv("ECONPIPE_DB_HOST"); v != "" {
		cfg.DBHost = v
	}
	if v := os.Getenv("ECONPIPE_DB_NAME"); v != "" {
		cfg.DBName = v
	}
	if v := os.Getenv("ECONPIPE_DB_USER"); v != "" {
		cfg.DBUser = v
	}
	if v := os.Getenv("ECONPIPE_SCHEDULE"); v != "" {
		cfg.ScheduleExpression = v
	}
	if v := os.Getenv("ECONPIPE_DIST_DIR"); v != "" {
		cfg.LambdaDistDir = v
	}
	if os.Getenv("ECONPIPE_DESTROY_ON_DELETE") == "true" {
		cfg.DestroyOnDelete = true
	}
	return cfg
}

func deployEnv() *awscdk.Environment {
	account := os.Getenv("CDK_DEFAULT_ACCOUNT")
	region := os.Getenv("CDK_DEFAULT_REGION")
	if account == "" || region == "" {
		return nil
	}
	return &awscdk.Environment{
		Account: jsii.String(account),
		Region:  jsii.String(region),
	}
}
