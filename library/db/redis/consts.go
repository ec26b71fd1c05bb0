package redis

const (
	keyPrefix      = "notion-blog/"
	keyPrefixCache = keyPrefix + "cache/"
	keyPrefixTask  = keyPrefix + "tasks/"

	// KeyTaskCommentEvents is the list receiving an event for each created comment
	KeyTaskCommentEvents = keyPrefixTask + "comment_events"
)
