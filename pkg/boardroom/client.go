package boardroom

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Client provides instance-scoped Redis operations for the boardroom.
// All keys and channels are automatically namespaced with the instance name.
// The client is thread-safe and can be used concurrently from multiple goroutines.
type Client struct {
	rdb          *redis.Client
	instanceName string
}

// NewClient creates a new boardroom client for the specified instance.
// The client automatically namespaces all keys and channels with the
// instance name.
//
// Returns an error if instanceName is empty.
func NewClient(redisOpts *redis.Options, instanceName string) (*Client, error) {
	if instanceName == "" {
		return nil, fmt.Errorf("instance name cannot be empty")
	}

	return &Client{
		rdb:          redis.NewClient(redisOpts),
		instanceName: instanceName,
	}, nil
}

// InstanceName returns the instance this client is scoped to.
func (c *Client) InstanceName() string {
	return c.instanceName
}

// Close closes the Redis connection. Implements io.Closer.
// After calling Close(), the client should not be used.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping verifies Redis connectivity. Useful for health checks.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// NextReviewID allocates the next review id from the monotonic counter.
// IDs are dense and zero-based: the first call returns 0.
func (c *Client) NextReviewID(ctx context.Context) (int64, error) {
	n, err := c.rdb.Incr(ctx, ReviewSeqKey(c.instanceName)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to allocate review id: %w", err)
	}
	return n - 1, nil
}

// ReviewCount returns the number of reviews allocated so far.
func (c *Client) ReviewCount(ctx context.Context) (int64, error) {
	n, err := c.rdb.Get(ctx, ReviewSeqKey(c.instanceName)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read review counter: %w", err)
	}
	return n, nil
}

// PutReview writes a review record, replacing all fields.
// Validates the review before writing.
func (c *Client) PutReview(ctx context.Context, r *Review) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("invalid review: %w", err)
	}

	key := ReviewKey(c.instanceName, r.ID)
	if err := c.rdb.HSet(ctx, key, ReviewToHash(r)).Err(); err != nil {
		return fmt.Errorf("failed to write review to Redis: %w", err)
	}
	return nil
}

// GetReview retrieves a review by id.
// Returns (nil, redis.Nil) if the review doesn't exist.
// Use IsNotFound() to check for not-found errors.
func (c *Client) GetReview(ctx context.Context, reviewID int64) (*Review, error) {
	key := ReviewKey(c.instanceName, reviewID)

	hashData, err := c.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read review from Redis: %w", err)
	}

	// HGetAll returns an empty map for non-existent keys
	if len(hashData) == 0 {
		return nil, redis.Nil
	}

	review, err := HashToReview(hashData)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize review: %w", err)
	}
	return review, nil
}

// PutThesis writes an agent's thesis for a review.
// Theses are immutable by convention; callers check for duplicates first.
func (c *Client) PutThesis(ctx context.Context, t *Thesis) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("invalid thesis: %w", err)
	}

	key := ThesisKey(c.instanceName, t.ReviewID, t.Agent)
	if err := c.rdb.HSet(ctx, key, ThesisToHash(t)).Err(); err != nil {
		return fmt.Errorf("failed to write thesis to Redis: %w", err)
	}
	return nil
}

// GetThesis retrieves an agent's thesis on a review.
// Returns (nil, redis.Nil) if no thesis exists.
func (c *Client) GetThesis(ctx context.Context, reviewID int64, agent string) (*Thesis, error) {
	key := ThesisKey(c.instanceName, reviewID, agent)

	hashData, err := c.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read thesis from Redis: %w", err)
	}
	if len(hashData) == 0 {
		return nil, redis.Nil
	}

	thesis, err := HashToThesis(hashData)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize thesis: %w", err)
	}
	return thesis, nil
}

// AppendParticipant records an agent on a review's ordered participant list.
// Submission order is preserved; it drives fee distribution.
func (c *Client) AppendParticipant(ctx context.Context, reviewID int64, agent string) error {
	key := ParticipantsKey(c.instanceName, reviewID)
	if err := c.rdb.RPush(ctx, key, agent).Err(); err != nil {
		return fmt.Errorf("failed to append participant: %w", err)
	}
	return nil
}

// Participants returns a review's participants in submission order.
// Returns an empty slice if the review has no participants.
func (c *Client) Participants(ctx context.Context, reviewID int64) ([]string, error) {
	key := ParticipantsKey(c.instanceName, reviewID)
	agents, err := c.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read participants: %w", err)
	}
	return agents, nil
}

// PutShare writes an agent's share record for a review, replacing all fields.
func (c *Client) PutShare(ctx context.Context, s *Share) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid share: %w", err)
	}

	key := ShareKey(c.instanceName, s.ReviewID, s.Agent)
	if err := c.rdb.HSet(ctx, key, ShareToHash(s)).Err(); err != nil {
		return fmt.Errorf("failed to write share to Redis: %w", err)
	}
	return nil
}

// GetShare retrieves an agent's share of a review.
// Returns (nil, redis.Nil) if no share exists (bearish or absent agent).
func (c *Client) GetShare(ctx context.Context, reviewID int64, agent string) (*Share, error) {
	key := ShareKey(c.instanceName, reviewID, agent)

	hashData, err := c.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read share from Redis: %w", err)
	}
	if len(hashData) == 0 {
		return nil, redis.Nil
	}

	share, err := HashToShare(hashData)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize share: %w", err)
	}
	return share, nil
}

// PutDelegation writes a (principal, agent) delegation, overwriting any
// prior grant for the pair.
func (c *Client) PutDelegation(ctx context.Context, d *Delegation) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("invalid delegation: %w", err)
	}

	key := DelegationKey(c.instanceName, d.Principal, d.Agent)
	if err := c.rdb.HSet(ctx, key, DelegationToHash(d)).Err(); err != nil {
		return fmt.Errorf("failed to write delegation to Redis: %w", err)
	}
	return nil
}

// GetDelegation retrieves the grant from principal to agent.
// Returns (nil, redis.Nil) if no grant exists.
func (c *Client) GetDelegation(ctx context.Context, principal, agent string) (*Delegation, error) {
	key := DelegationKey(c.instanceName, principal, agent)

	hashData, err := c.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read delegation from Redis: %w", err)
	}
	if len(hashData) == 0 {
		return nil, redis.Nil
	}

	delegation, err := HashToDelegation(hashData)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize delegation: %w", err)
	}
	return delegation, nil
}

// DeleteDelegation removes the grant from principal to agent.
// Returns the number of records removed (0 or 1).
func (c *Client) DeleteDelegation(ctx context.Context, principal, agent string) (int64, error) {
	key := DelegationKey(c.instanceName, principal, agent)
	n, err := c.rdb.Del(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to delete delegation: %w", err)
	}
	return n, nil
}

// EscrowBalance returns an agent's pooled escrow balance.
// Agents with no recorded balance have a balance of zero.
func (c *Client) EscrowBalance(ctx context.Context, agent string) (int64, error) {
	key := EscrowKey(c.instanceName)
	balance, err := c.rdb.HGet(ctx, key, agent).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read escrow balance: %w", err)
	}
	return balance, nil
}

// AdjustEscrow moves an agent's pooled escrow balance by delta (positive for
// deposits, negative for debits) and returns the new balance. Callers enforce
// the non-negative invariant under the operation lock before debiting.
func (c *Client) AdjustEscrow(ctx context.Context, agent string, delta int64) (int64, error) {
	key := EscrowKey(c.instanceName)
	balance, err := c.rdb.HIncrBy(ctx, key, agent, delta).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to adjust escrow balance: %w", err)
	}
	return balance, nil
}

// PutIdentity writes an agent identity record.
func (c *Client) PutIdentity(ctx context.Context, a *AgentIdentity) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("invalid identity: %w", err)
	}

	key := IdentityKey(c.instanceName, a.Address)
	if err := c.rdb.HSet(ctx, key, IdentityToHash(a)).Err(); err != nil {
		return fmt.Errorf("failed to write identity to Redis: %w", err)
	}
	return nil
}

// GetIdentity retrieves an agent identity record.
// Returns (nil, redis.Nil) if the agent never registered.
func (c *Client) GetIdentity(ctx context.Context, agent string) (*AgentIdentity, error) {
	key := IdentityKey(c.instanceName, agent)

	hashData, err := c.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read identity from Redis: %w", err)
	}
	if len(hashData) == 0 {
		return nil, redis.Nil
	}

	identity, err := HashToIdentity(hashData)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize identity: %w", err)
	}
	return identity, nil
}

// AddDue records a review in the deferred-execution due set.
// Score is the review's deadline in Unix ms.
func (c *Client) AddDue(ctx context.Context, reviewID int64, deadlineMs int64) error {
	key := DueKey(c.instanceName)
	z := redis.Z{
		Score:  float64(deadlineMs),
		Member: fmt.Sprintf("%d", reviewID),
	}
	if err := c.rdb.ZAdd(ctx, key, z).Err(); err != nil {
		return fmt.Errorf("failed to add due entry: %w", err)
	}
	return nil
}

// DueBefore returns the ids of reviews whose deadline is at or before the
// given Unix-ms timestamp, in deadline order.
func (c *Client) DueBefore(ctx context.Context, nowMs int64) ([]int64, error) {
	key := DueKey(c.instanceName)
	members, err := c.rdb.ZRangeByScore(ctx, key, &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("%d", nowMs),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read due entries: %w", err)
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		var id int64
		if _, err := fmt.Sscanf(m, "%d", &id); err != nil {
			return nil, fmt.Errorf("malformed due entry %q: %w", m, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// RemoveDue removes a review from the due set.
func (c *Client) RemoveDue(ctx context.Context, reviewID int64) error {
	key := DueKey(c.instanceName)
	if err := c.rdb.ZRem(ctx, key, fmt.Sprintf("%d", reviewID)).Err(); err != nil {
		return fmt.Errorf("failed to remove due entry: %w", err)
	}
	return nil
}

// PublishEvent publishes an accounting event on the instance event channel.
func (c *Client) PublishEvent(ctx context.Context, ev *Event) error {
	if err := ev.Type.Validate(); err != nil {
		return fmt.Errorf("invalid event: %w", err)
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	channel := AccountingEventsChannel(c.instanceName)
	if err := c.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// EventSubscription represents an active Pub/Sub subscription to accounting
// events. Caller must call Close() when done to clean up resources.
type EventSubscription struct {
	events <-chan *Event
	errors <-chan error
	cancel func()
	once   sync.Once
}

// Events returns the channel of accounting events.
// The channel is closed when the subscription is closed or the context is
// cancelled.
func (s *EventSubscription) Events() <-chan *Event {
	return s.events
}

// Errors returns the channel of subscription errors.
// Errors include JSON unmarshaling failures and other non-fatal issues.
// The subscription continues after errors - messages are skipped.
func (s *EventSubscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription and cleans up resources. Implements io.Closer.
// Safe to call multiple times - subsequent calls are no-ops.
func (s *EventSubscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// SubscribeEvents subscribes to accounting events for this instance.
// Returns an EventSubscription that delivers full event objects.
// Caller must call subscription.Close() when done.
// Context cancellation also stops the subscription.
//
// Events are delivered on a buffered channel (size 10) to prevent blocking.
// If the subscriber is too slow, events may be dropped by Redis Pub/Sub
// (at-most-once delivery).
func (c *Client) SubscribeEvents(ctx context.Context) (*EventSubscription, error) {
	channel := AccountingEventsChannel(c.instanceName)
	pubsub := c.rdb.Subscribe(ctx, channel)

	eventsChan := make(chan *Event, 10)
	errorsChan := make(chan error, 10)

	subCtx, cancelFunc := context.WithCancel(ctx)

	go func() {
		defer close(eventsChan)
		defer close(errorsChan)
		defer pubsub.Close()

		ch := pubsub.Channel()

		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					select {
					case errorsChan <- fmt.Errorf("failed to unmarshal accounting event: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				select {
				case eventsChan <- &ev:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &EventSubscription{
		events: eventsChan,
		errors: errorsChan,
		cancel: cancelFunc,
	}, nil
}

// IsNotFound returns true if the error is a Redis "key not found" error
// (redis.Nil). Use this to check whether a Get returned "not found".
func IsNotFound(err error) bool {
	return errors.Is(err, redis.Nil)
}
