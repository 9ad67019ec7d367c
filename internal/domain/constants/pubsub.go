// Package constants holds shared domain-level constant values.
package constants

// Supported pubsub provider names, matched against config.PubSub.Provider.
const (
	PubSubProviderGoogle = "google"
	PubSubProviderAMQP   = "amqp"
	PubSubProviderLocal  = "local"
)
