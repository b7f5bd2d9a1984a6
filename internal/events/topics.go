package events

// Topic constants for cart mutation events emitted by the store.
const (
	TopicItemAdded        = "cart.item_added"
	TopicItemUpdated      = "cart.item_updated"
	TopicItemRemoved      = "cart.item_removed"
	TopicItemSaved        = "cart.item_saved"
	TopicItemRestored     = "cart.item_restored"
	TopicSavedItemRemoved = "cart.saved_removed"
	TopicCartCleared      = "cart.cleared"
	TopicPromotionApplied = "cart.promotion_applied"
	TopicPromotionCleared = "cart.promotion_cleared"
)

// DefaultTopics returns the canonical list of mutation topics.
func DefaultTopics() []string {
	return []string{
		TopicItemAdded,
		TopicItemUpdated,
		TopicItemRemoved,
		TopicItemSaved,
		TopicItemRestored,
		TopicSavedItemRemoved,
		TopicCartCleared,
		TopicPromotionApplied,
		TopicPromotionCleared,
	}
}
