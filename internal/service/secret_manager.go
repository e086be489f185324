package service

import (
	"context"
	"fmt"
	"strings"

	"courseai/internal/config"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/rs/zerolog"
)

type SecretManagerService interface {
	// GetSecret returns the payload of a secret. secretID is either a short
	// name, read at its latest version, or a full version resource name.
	GetSecret(ctx context.Context, secretID string) (string, error)
	Close() error
}

type secretManagerService struct {
	client    *secretmanager.Client
	projectID string
}

func NewSecretManagerService(ctx context.Context, cfg *config.Config) (SecretManagerService, error) {
	if cfg.GCPProjectID == "" {
		return nil, fmt.Errorf("GCP Project ID is not set")
	}

	// Secret Manager has no emulator; a real project is needed even locally.
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Secret Manager client: %w", err)
	}

	return &secretManagerService{
		client:    client,
		projectID: cfg.GCPProjectID,
	}, nil
}

func (s *secretManagerService) GetSecret(ctx context.Context, secretID string) (string, error) {
	req := &secretmanagerpb.AccessSecretVersionRequest{
		Name: secretVersionName(s.projectID, secretID),
	}
	result, err := s.client.AccessSecretVersion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to access secret version: %w", err)
	}
	return strings.TrimSpace(string(result.Payload.Data)), nil
}

func (s *secretManagerService) Close() error {
	return s.client.Close()
}

func secretVersionName(projectID, secretID string) string {
	if strings.HasPrefix(secretID, "projects/") {
		return secretID
	}
	return fmt.Sprintf("projects/%s/secrets/%s/versions/latest", projectID, secretID)
}

// ResolveGenerationAPIKey returns the provider key from the environment, or
// from Secret Manager when GENERATION_API_KEY_SECRET is set.
func ResolveGenerationAPIKey(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (string, error) {
	if cfg.GenerationAPIKeySecret == "" {
		return cfg.GenerationAPIKey, nil
	}
	secrets, err := NewSecretManagerService(ctx, cfg)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = secrets.Close()
	}()

	key, err := secrets.GetSecret(ctx, cfg.GenerationAPIKeySecret)
	if err != nil {
		return "", fmt.Errorf("resolving generation API key: %w", err)
	}
	logger.Info().Str("secret", cfg.GenerationAPIKeySecret).Msg("Generation API key loaded from Secret Manager")
	return key, nil
}
