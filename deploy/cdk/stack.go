package main

import (
	"path/filepath"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsevents"
	"github.com/aws/aws-cdk-go/awscdk/v2/awseventstargets"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslogs"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssecretsmanager"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

// NewEconpipeStack assembles the pipeline infrastructure:
//
//   - an S3 bucket archiving every raw FRED payload, with raw/ objects
//     aging into infrequent access after 90 days
//   - the ETL Lambda, built from the bootstrap under LambdaDistDir,
//     with the database and secret wiring in its environment
//   - an EventBridge rule firing the function on the daily schedule
//
// The FRED API key and database password are referenced from existing
// Secrets Manager secrets, never materialized in the template. The
// function resolves them at cold start from the *_SECRET_ARN variables.
func NewEconpipeStack(scope constructs.Construct, id string, props *awscdk.StackProps, cfg StackConfig) awscdk.Stack {
	stack := awscdk.NewStack(scope, jsii.String(id), props)

	bucket := awss3.NewBucket(stack, jsii.String("RawDataBucket"), &awss3.BucketProps{
		BucketName:        optString(cfg.BucketName),
		BlockPublicAccess: awss3.BlockPublicAccess_BLOCK_ALL(),
		Encryption:        awss3.BucketEncryption_S3_MANAGED,
		EnforceSSL:        jsii.Bool(true),
		RemovalPolicy:     removalPolicy(cfg.DestroyOnDelete),
		AutoDeleteObjects: jsii.Bool(cfg.DestroyOnDelete),
		LifecycleRules: &[]*awss3.LifecycleRule{
			{
				Id:     jsii.String("raw-payloads-to-ia"),
				Prefix: jsii.String("raw/"),
				Transitions: &[]*awss3.Transition{
					{
						StorageClass:    awss3.StorageClass_INFREQUENT_ACCESS(),
						TransitionAfter: awscdk.Duration_Days(jsii.Number(90)),
					},
				},
			},
		},
	})

	fredSecret := awssecretsmanager.Secret_FromSecretNameV2(
		stack, jsii.String("FredApiKeySecret"), jsii.String(cfg.FredSecretName))
	dbSecret := awssecretsmanager.Secret_FromSecretNameV2(
		stack, jsii.String("DbPasswordSecret"), jsii.String(cfg.DBSecretName))

	// An explicit log group instead of the runtime-created one, so
	// retention is enforced and validation can find it by name.
	logGroup := awslogs.NewLogGroup(stack, jsii.String("EtlLogGroup"), &awslogs.LogGroupProps{
		LogGroupName:  jsii.String("/aws/lambda/" + cfg.FunctionName),
		Retention:     logRetentionDays(cfg.LogRetentionDays),
		RemovalPolicy: removalPolicy(cfg.DestroyOnDelete),
	})

	fn := awslambda.NewFunction(stack, jsii.String("EtlFunction"), &awslambda.FunctionProps{
		FunctionName: jsii.String(cfg.FunctionName),
		Description:  jsii.String("Loads FRED economic indicators into Postgres and archives raw payloads to S3"),
		Runtime:      awslambda.Runtime_PROVIDED_AL2023(),
		Architecture: awslambda.Architecture_ARM_64(),
		Handler:      jsii.String("bootstrap"),
		Code:         awslambda.Code_FromAsset(jsii.String(filepath.Join(cfg.LambdaDistDir, "etl")), nil),
		MemorySize:   jsii.Number(cfg.MemorySize),
		Timeout:      awscdk.Duration_Seconds(jsii.Number(cfg.TimeoutSeconds)),
		LogGroup:     logGroup,
		Environment: &map[string]*string{
			"S3_BUCKET_NAME":          bucket.BucketName(),
			"DB_HOST":                 jsii.String(cfg.DBHost),
			"DB_PORT":                 jsii.String(cfg.DBPort),
			"DB_NAME":                 jsii.String(cfg.DBName),
			"DB_USER":                 jsii.String(cfg.DBUser),
			"LOOKBACK_DAYS":           jsii.String(cfg.LookbackDays),
			"FRED_API_KEY_SECRET_ARN": fredSecret.SecretArn(),
			"DB_PASSWORD_SECRET_ARN":  dbSecret.SecretArn(),
		},
	})

	bucket.GrantPut(fn, nil)
	fredSecret.GrantRead(fn, nil)
	dbSecret.GrantRead(fn, nil)

	rule := awsevents.NewRule(stack, jsii.String("DailySchedule"), &awsevents.RuleProps{
		RuleName:    jsii.String(cfg.RuleName),
		Description: jsii.String("Runs the economic indicator ETL once a day"),
		Schedule:    awsevents.Schedule_Expression(jsii.String(cfg.ScheduleExpression)),
	})
	rule.AddTarget(awseventstargets.NewLambdaFunction(fn, nil))

	awscdk.NewCfnOutput(stack, jsii.String("BucketName"), &awscdk.CfnOutputProps{
		Value:       bucket.BucketName(),
		Description: jsii.String("Raw payload archive bucket"),
	})
	awscdk.NewCfnOutput(stack, jsii.String("EtlFunctionName"), &awscdk.CfnOutputProps{
		Value:       fn.FunctionName(),
		Description: jsii.String("ETL Lambda function"),
	})
	awscdk.NewCfnOutput(stack, jsii.String("ScheduleRuleName"), &awscdk.CfnOutputProps{
		Value:       rule.RuleName(),
		Description: jsii.String("EventBridge rule driving the daily load"),
	})

	return stack
}

// optString returns nil for an empty string so CloudFormation picks the name.
func optString(s string) *string {
	if s == "" {
		return nil
	}
	return jsii.String(s)
}

func removalPolicy(destroy bool) awscdk.RemovalPolicy {
	if destroy {
		return awscdk.RemovalPolicy_DESTROY
	}
	return awscdk.RemovalPolicy_RETAIN
}

func logRetentionDays(days float64) awslogs.RetentionDays {
	switch days {
	case 1:
		return awslogs.RetentionDays_ONE_DAY
	case 7:
		return awslogs.RetentionDays_ONE_WEEK
	case 14:
		return awslogs.RetentionDays_TWO_WEEKS
	case 30:
		return awslogs.RetentionDays_ONE_MONTH
	case 90:
		return awslogs.RetentionDays_THREE_MONTHS
	case 365:
		return awslogs.RetentionDays_ONE_YEAR
	default:
		return awslogs.RetentionDays_ONE_MONTH
	}
}
