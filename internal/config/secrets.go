package config

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// SecretsAPI is the subset of the Secrets Manager client used for secret indirection.
type SecretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// ResolveSecrets replaces secret-bearing fields with values fetched from
// Secrets Manager when the corresponding *_SECRET_ARN variables are set.
// A resolved secret wins over the direct environment value.
func (c *Config) ResolveSecrets(ctx context.Context, api SecretsAPI) error {
	if arn := os.Getenv("FRED_API_KEY_SECRET_ARN"); arn != "" {
		v, err := fetchSecret(ctx, api, arn)
		if err != nil {
			return fmt.Errorf("resolving FRED API key secret: %w", err)
		}
		c.FREDAPIKey = v
	}
	if arn := os.Getenv("DB_PASSWORD_SECRET_ARN"); arn != "" {
		v, err := fetchSecret(ctx, api, arn)
		if err != nil {
			return fmt.Errorf("resolving DB password secret: %w", err)
		}
		c.DBPassword = v
	}
	return nil
}

func fetchSecret(ctx context.Context, api SecretsAPI, arn string) (string, error) {
	out, err := api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(arn),
	})
	if err != nil {
		return "", err
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("secret %s has no string value", arn)
	}
	return *out.SecretString, nil
}
