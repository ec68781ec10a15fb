// Package chat connects the economy to Twitch chat.
//
// It provides three pieces:
//   - Bot: joins TWITCH_CHANNEL over IRC, records every speaker in the
//     audience, routes each line through a LineHandler under its own
//     correlation id, and says the reply lines back in the channel.
//   - Audience: the chatters table. Users seen within the configured window
//     form the pool random selection draws from.
//   - PlayQueue: the play_requests table. Allowed sound effect plays are queued
//     there for the external audio player, which acknowledges them over HTTP.
//
// Credentials: the IRC client requires a bot username and an OAuth token with
// chat:read/chat:edit scopes. A token stored by the oauth refresher for
// provider "twitch" takes precedence over TWITCH_OAUTH_TOKEN.
package chat
