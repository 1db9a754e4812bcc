package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/codeview-ai/codeview-api/internal/dto"
	"github.com/codeview-ai/codeview-api/internal/models"
	"github.com/codeview-ai/codeview-api/internal/observability"
)

const feedBufferSize = 32

// FeedService streams stored session events to live subscribers (the
// interviewer dashboard). Events are fanned out in-process and mirrored over
// Redis pub/sub and NATS so every API node sees every event.
type FeedService interface {
	EventBroadcaster
	Subscribe(interviewID uint) (<-chan dto.FeedEventResponse, func())
	Start(ctx context.Context)
}

type feedService struct {
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	logger       zerolog.Logger
	broker       *feedBroker
	nodeID       string
}

type feedEnvelope struct {
	Source string                `json:"source"`
	Event  dto.FeedEventResponse `json:"event"`
	SentAt time.Time             `json:"sent_at"`
}

type feedBroker struct {
	mu          sync.RWMutex
	subscribers map[uint]map[chan dto.FeedEventResponse]struct{}
}

// NewFeedService constructs the feed service. redisClient and natsConn may be
// nil; the in-process broker still works for a single node.
func NewFeedService(redisClient *redis.Client, natsConn *nats.Conn, channelBase string, logger zerolog.Logger) FeedService {
	channel := ""
	subject := ""
	if channelBase != "" {
		channel = channelBase + ":feed"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".feed"
	}

	return &feedService{
		redis:        redisClient,
		redisChannel: channel,
		nats:         natsConn,
		natsSubject:  subject,
		logger:       logger.With().Str("component", "feed_service").Logger(),
		broker: &feedBroker{
			subscribers: make(map[uint]map[chan dto.FeedEventResponse]struct{}),
		},
		nodeID: uuid.NewString(),
	}
}

func (s *feedService) Start(ctx context.Context) {
	if s.redis != nil && s.redisChannel != "" {
		go s.consumeRedis(ctx)
	}
	if s.nats != nil && s.natsSubject != "" {
		go s.consumeNATS(ctx)
	}
}

// Broadcast fans a stored event out to local subscribers and mirrors it to
// the other nodes. Delivery is best effort; the event log stays the source
// of truth.
func (s *feedService) Broadcast(ctx context.Context, event models.SessionEvent) {
	response := dto.NewFeedEventResponse(event)
	s.broker.broadcast(response.InterviewID, response)

	envelope := feedEnvelope{
		Source: s.nodeID,
		Event:  response,
		SentAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode feed envelope")
		return
	}

	if s.redis != nil && s.redisChannel != "" {
		if err := s.redis.Publish(ctx, s.redisChannel, payload).Err(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish feed event to redis")
		}
	}

	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish feed event to nats")
		}
	}
}

func (s *feedService) Subscribe(interviewID uint) (<-chan dto.FeedEventResponse, func()) {
	channel := make(chan dto.FeedEventResponse, feedBufferSize)

	s.broker.subscribe(interviewID, channel)
	observability.FeedClients().Inc()

	cleanup := func() {
		s.broker.unsubscribe(interviewID, channel)
		observability.FeedClients().Dec()
	}

	return channel, cleanup
}

func (s *feedService) consumeRedis(ctx context.Context) {
	pubsub := s.redis.Subscribe(ctx, s.redisChannel)
	defer func() { _ = pubsub.Close() }()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			s.logger.Error().Err(err).Msg("feed redis subscription closed")
			return
		}
		s.handleEnvelope([]byte(msg.Payload))
	}
}

func (s *feedService) consumeNATS(ctx context.Context) {
	sub, err := s.nats.QueueSubscribe(s.natsSubject, "codeview-feed-"+s.nodeID, func(msg *nats.Msg) {
		s.handleEnvelope(msg.Data)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to subscribe to nats feed subject")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drain feed nats subscription")
		}
	}()
}

func (s *feedService) handleEnvelope(payload []byte) {
	var envelope feedEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		s.logger.Warn().Err(err).Msg("invalid feed envelope")
		return
	}

	if envelope.Source == s.nodeID {
		return
	}

	s.broker.broadcast(envelope.Event.InterviewID, envelope.Event)
}

func (b *feedBroker) subscribe(interviewID uint, channel chan dto.FeedEventResponse) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subscribers[interviewID] == nil {
		b.subscribers[interviewID] = make(map[chan dto.FeedEventResponse]struct{})
	}
	b.subscribers[interviewID][channel] = struct{}{}
}

func (b *feedBroker) unsubscribe(interviewID uint, channel chan dto.FeedEventResponse) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if subs, ok := b.subscribers[interviewID]; ok {
		delete(subs, channel)
		if len(subs) == 0 {
			delete(b.subscribers, interviewID)
		}
	}
	close(channel)
}

func (b *feedBroker) broadcast(interviewID uint, event dto.FeedEventResponse) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for channel := range b.subscribers[interviewID] {
		select {
		case channel <- event:
		default:
			// slow subscriber; drop rather than block the writer
		}
	}
}
