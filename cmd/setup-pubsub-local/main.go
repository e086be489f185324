package main

import (
	"context"
	"time"

	"courseai/internal/config"
	"courseai/internal/logger"

	"cloud.google.com/go/pubsub"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

func main() {
	envErr := godotenv.Load()
	logger := logger.New()
	if envErr != nil {
		logger.Warn().Msg("No .env file found, relying on system environment variables")
	}
	logger.Info().Msg("Starting Pub/Sub setup for the local environment")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Msgf("Failed to load config: %v", err)
	}
	if cfg.GCPProjectID == "" {
		logger.Fatal().Msg("GCP_PROJECT_ID is not set in the environment")
	}
	// Never run the reset against a real project.
	if cfg.PubSubEmulatorHost == "" {
		logger.Fatal().Msg("PUBSUB_EMULATOR_HOST must be set for local environment")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := pubsub.NewClient(ctx, cfg.GCPProjectID,
		option.WithEndpoint(cfg.PubSubEmulatorHost),
		option.WithoutAuthentication(),
	)
	if err != nil {
		logger.Fatal().Msgf("Failed to create Pub/Sub client: %v", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error().Msgf("Failed to close pubsub client: %v", err)
		}
	}()

	resetLocalEmulator(ctx, client, logger)
	createResources(ctx, client, cfg.PubSubCourseEventsTopic, logger)

	logger.Info().Msg("Pub/Sub setup for local environment complete")
}

// resetLocalEmulator deletes every topic and subscription in the emulator.
func resetLocalEmulator(ctx context.Context, client *pubsub.Client, logger zerolog.Logger) {
	subs := client.Subscriptions(ctx)
	for {
		sub, err := subs.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			logger.Fatal().Msgf("Failed to list subscriptions: %v", err)
		}
		logger.Info().Msgf("Deleting subscription: %s", sub.ID())
		if err := sub.Delete(ctx); err != nil {
			logger.Warn().Msgf("Failed to delete subscription %s: %v", sub.ID(), err)
		}
	}

	topics := client.Topics(ctx)
	for {
		topic, err := topics.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			logger.Fatal().Msgf("Failed to list topics: %v", err)
		}
		logger.Info().Msgf("Deleting topic: %s", topic.ID())
		if err := topic.Delete(ctx); err != nil {
			logger.Warn().Msgf("Failed to delete topic %s: %v", topic.ID(), err)
		}
	}
}

// createResources creates the course events topic, its dead letter topic and
// a pull subscription for local consumers.
func createResources(ctx context.Context, client *pubsub.Client, topicID string, logger zerolog.Logger) {
	sevenDays := 7 * 24 * time.Hour

	dlqTopic := createTopic(ctx, client, topicID+"-dlq", sevenDays, logger)
	mainTopic := createTopic(ctx, client, topicID, sevenDays, logger)

	subs := []struct {
		id  string
		cfg pubsub.SubscriptionConfig
	}{
		{
			id: topicID + "-sub",
			cfg: pubsub.SubscriptionConfig{
				Topic:       mainTopic,
				AckDeadline: 60 * time.Second,
				RetryPolicy: &pubsub.RetryPolicy{
					MinimumBackoff: 10 * time.Second,
					MaximumBackoff: 600 * time.Second,
				},
				DeadLetterPolicy: &pubsub.DeadLetterPolicy{
					DeadLetterTopic:     dlqTopic.String(),
					MaxDeliveryAttempts: 5,
				},
			},
		},
		{
			id:  topicID + "-dlq-sub",
			cfg: pubsub.SubscriptionConfig{Topic: dlqTopic, AckDeadline: 60 * time.Second},
		},
	}
	for _, s := range subs {
		logger.Info().Msgf("Creating subscription: %s", s.id)
		if _, err := client.CreateSubscription(ctx, s.id, s.cfg); err != nil {
			logger.Fatal().Msgf("Failed to create subscription '%s': %v", s.id, err)
		}
	}
}

func createTopic(ctx context.Context, client *pubsub.Client, topicID string, retention time.Duration, logger zerolog.Logger) *pubsub.Topic {
	logger.Info().Msgf("Creating topic: %s with %v retention", topicID, retention)
	topic, err := client.CreateTopicWithConfig(ctx, topicID, &pubsub.TopicConfig{
		RetentionDuration: retention,
	})
	if err != nil {
		logger.Fatal().Msgf("Failed to create topic %s: %v", topicID, err)
	}
	return topic
}
