package domain

// Channel is an outbound delivery destination
type Channel string

const (
	ChannelTelegram Channel = "telegram"
	ChannelEmail    Channel = "email"
	ChannelWebhook  Channel = "webhook"
	ChannelSlack    Channel = "slack"
	ChannelDiscord  Channel = "discord"
	ChannelPush     Channel = "push"
)

// AllChannels lists every known channel
var AllChannels = []Channel{ChannelTelegram, ChannelEmail, ChannelWebhook, ChannelSlack, ChannelDiscord, ChannelPush}

// Valid reports whether the channel is a known one
func (c Channel) Valid() bool {
	for _, ch := range AllChannels {
		if c == ch {
			return true
		}
	}
	return false
}
