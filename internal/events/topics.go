package events

// Topic constants for domain events emitted by the platform. Business
// dashboards subscribe to the offer topics to refresh promotional banners.
const (
	TopicOfferCreated      = "offer.created"
	TopicOfferUpdated      = "offer.updated"
	TopicOfferDeleted      = "offer.deleted"
	TopicSettingsActivated = "settings.activated"
	TopicSettingsUpdated   = "settings.updated"
)

// DefaultTopics returns the canonical list of topics that support notifications.
func DefaultTopics() []string {
	return []string{
		TopicOfferCreated,
		TopicOfferUpdated,
		TopicOfferDeleted,
		TopicSettingsActivated,
		TopicSettingsUpdated,
	}
}
