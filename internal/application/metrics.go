package application

import "expvar"

// Counters published under /api/debug/vars.
var (
	usersRegistered = expvar.NewInt("social_users_registered")
	postsCreated    = expvar.NewInt("social_posts_created")
	postsDeleted    = expvar.NewInt("social_posts_deleted")
	likesToggled    = expvar.NewInt("social_likes_toggled")
	commentsAdded   = expvar.NewInt("social_comments_added")
	notifyFailures  = expvar.NewInt("social_notify_failures")
)
