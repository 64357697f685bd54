package discord

import (
	"errors"
	"sync"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Sender is the part of *discordgo.Session the publisher needs.
type Sender interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Publisher keeps one message per key in a channel: the first publish
// creates it, later ones edit it in place.
type Publisher struct {
	s         Sender
	channelID string
	log       *zap.Logger

	mu  sync.Mutex
	ids map[string]string // key -> message id
}

func NewPublisher(s Sender, channelID string, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{s: s, channelID: channelID, log: log, ids: map[string]string{}}
}

// PublishOrEdit edits the message remembered for key or creates it. A
// remembered message that was deleted in Discord is recreated.
func (p *Publisher) PublishOrEdit(key string, emb *discordgo.MessageEmbed, comps []discordgo.MessageComponent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if id, ok := p.ids[key]; ok {
		err := p.edit(id, emb, comps)
		if err == nil || !isUnknownMessage(err) {
			return err
		}
		p.log.Debug("message gone, recreating", zap.String("key", key), zap.String("message", id))
		delete(p.ids, key)
	}

	if comps == nil {
		comps = []discordgo.MessageComponent{}
	}
	msg, err := p.s.ChannelMessageSendComplex(p.channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{emb},
		Components: comps,
	})
	if err != nil {
		return err
	}
	if msg != nil {
		p.ids[key] = msg.ID
		p.log.Debug("message created", zap.String("key", key), zap.String("message", msg.ID))
	}
	return nil
}

func (p *Publisher) edit(id string, emb *discordgo.MessageEmbed, comps []discordgo.MessageComponent) error {
	embeds := []*discordgo.MessageEmbed{emb}
	if comps == nil {
		comps = []discordgo.MessageComponent{}
	}
	_, err := p.s.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    p.channelID,
		ID:         id,
		Embeds:     &embeds,
		Components: &comps,
	})
	return err
}

// Forget drops the message remembered for key; the next publish creates a
// new one.
func (p *Publisher) Forget(key string) {
	p.mu.Lock()
	delete(p.ids, key)
	p.mu.Unlock()
}

func (p *Publisher) MessageID(key string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id, ok := p.ids[key]
	return id, ok
}

func isUnknownMessage(err error) bool {
	var re *discordgo.RESTError
	return errors.As(err, &re) && re.Message != nil && re.Message.Code == discordgo.ErrCodeUnknownMessage
}
