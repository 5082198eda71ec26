package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hrygo/acutie/plugin/ai/assessment"
	"github.com/hrygo/acutie/plugin/ai/cache"
	"github.com/hrygo/acutie/plugin/ai/conversation"
	"github.com/hrygo/acutie/plugin/ai/timeout"
	"github.com/hrygo/acutie/store"
)

// reconstructWindow bounds how much of the message log a reconstruction reads.
const reconstructWindow = 200

// Manager implements MemoryService.
//
// Reads go cache, then durable store, then message log, then a fresh state.
// Writes go to both tiers concurrently; the durable write decides success and
// a failed durable write evicts the cached copy so the cache never runs ahead
// of what was committed.
type Manager struct {
	cache    cache.CacheService
	durable  DurableStore
	ttl      time.Duration
	observer Observer
	now      func() time.Time
}

// Config contains the configuration for the manager.
type Config struct {
	Cache   cache.CacheService // nil disables the hot tier
	Durable DurableStore
	// TTL is the idle timeout of a cached session. Default: timeout.SessionTTL.
	TTL      time.Duration
	Observer Observer
}

// NewManager creates a new memory manager.
func NewManager(cfg Config) *Manager {
	m := &Manager{
		cache:    cfg.Cache,
		durable:  cfg.Durable,
		ttl:      cfg.TTL,
		observer: cfg.Observer,
		now:      time.Now,
	}
	if m.ttl <= 0 {
		m.ttl = timeout.SessionTTL
	}
	return m
}

// Load returns the state of a session and where it came from.
func (m *Manager) Load(ctx context.Context, sessionID string) (*conversation.State, Source) {
	st, src := m.load(ctx, sessionID)
	if m.observer != nil {
		m.observer.ObserveLoad(src)
	}
	slog.Debug("session state loaded",
		"session_id", sessionID,
		"source", src,
		"phase", st.Phase,
		"questions_asked", st.QuestionsAsked)
	return st, src
}

func (m *Manager) load(ctx context.Context, sessionID string) (*conversation.State, Source) {
	key := cache.StateKey(sessionID)

	if m.cache != nil {
		if data, ok := m.cache.Get(ctx, key); ok {
			st, err := decodeState(data)
			if err == nil {
				return st, SourceCache
			}
			slog.Warn("discarding undecodable cached state", "session_id", sessionID, "error", err)
			m.evict(ctx, sessionID)
		}
	}

	if m.durable == nil {
		return conversation.New(sessionID), SourceFresh
	}

	readCtx, cancel := context.WithTimeout(ctx, timeout.StoreOpTimeout)
	defer cancel()

	row, err := m.durable.GetConversationState(readCtx, sessionID)
	if err != nil {
		slog.Error("durable state read failed, starting fresh session; prior progress may be lost",
			"session_id", sessionID, "error", err)
		return conversation.New(sessionID), SourceFallback
	}

	if row != nil {
		st, err := decodeState([]byte(row.Payload))
		if err == nil {
			m.repopulate(ctx, st)
			return st, SourceDurable
		}
		slog.Error("durable state payload is corrupt, reconstructing from message log",
			"session_id", sessionID, "error", err)
	}

	log, err := m.durable.ListConversationMessages(readCtx, &store.FindConversationMessage{
		SessionID: sessionID,
		Limit:     reconstructWindow,
	})
	if err != nil {
		slog.Warn("message log read failed, starting fresh session", "session_id", sessionID, "error", err)
		return conversation.New(sessionID), SourceFallback
	}
	if len(log) > 0 {
		slog.Warn("state row missing, reconstructed from message log",
			"session_id", sessionID, "messages", len(log))
		return Reconstruct(sessionID, log), SourceReconstructed
	}
	return conversation.New(sessionID), SourceFresh
}

// repopulate warms the cache after a durable hit. Failure only costs a
// durable read on the next turn.
func (m *Manager) repopulate(ctx context.Context, st *conversation.State) {
	if m.cache == nil {
		return
	}
	data, err := json.Marshal(st)
	if err != nil {
		slog.Warn("failed to encode state for cache", "session_id", st.SessionID, "error", err)
		return
	}
	if err := m.cache.Set(ctx, cache.StateKey(st.SessionID), data, m.ttl); err != nil {
		slog.Warn("failed to repopulate session cache", "session_id", st.SessionID, "error", err)
	}
}

// Save persists state and appends messages to the durable log. The write is
// detached from ctx cancellation so an abandoned client does not lose the turn.
func (m *Manager) Save(ctx context.Context, st *conversation.State, appended ...conversation.Message) error {
	if st == nil || st.SessionID == "" {
		return fmt.Errorf("save session: missing session id")
	}
	ctx = context.WithoutCancel(ctx)
	st.LastUpdated = m.now()

	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", st.SessionID, err)
	}

	var g errgroup.Group
	if m.cache != nil {
		g.Go(func() error {
			if err := m.cache.Set(ctx, cache.StateKey(st.SessionID), data, m.ttl); err != nil {
				slog.Warn("session cache write failed", "session_id", st.SessionID, "error", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		return m.persist(ctx, st, data, appended)
	})

	if err := g.Wait(); err != nil {
		m.evict(ctx, st.SessionID)
		return fmt.Errorf("persist session %s: %w", st.SessionID, err)
	}
	return nil
}

func (m *Manager) persist(ctx context.Context, st *conversation.State, payload []byte, appended []conversation.Message) error {
	if m.durable == nil {
		return fmt.Errorf("no durable store configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout.StoreOpTimeout)
	defer cancel()

	_, err := m.durable.UpsertConversationState(ctx, &store.ConversationState{
		SessionID:      st.SessionID,
		Phase:          string(st.Phase),
		QuestionsAsked: int32(st.QuestionsAsked),
		RiskLevel:      string(st.RiskLevel),
		Payload:        string(payload),
		CreatedTs:      st.CreatedAt.Unix(),
	})
	if err != nil {
		return err
	}
	if len(appended) == 0 {
		return nil
	}

	rows := make([]*store.ConversationMessage, 0, len(appended))
	for _, msg := range appended {
		rows = append(rows, &store.ConversationMessage{Role: store.MessageRole(msg.Role), Content: msg.Text})
	}
	return m.durable.AppendConversationMessages(ctx, st.SessionID, rows...)
}

// Clear drops the cached copy of a session. The durable record is kept.
func (m *Manager) Clear(ctx context.Context, sessionID string) error {
	if m.cache == nil {
		return nil
	}
	if err := m.cache.Delete(ctx, cache.StateKey(sessionID)); err != nil {
		return fmt.Errorf("clear session %s: %w", sessionID, err)
	}
	return nil
}

func (m *Manager) evict(ctx context.Context, sessionID string) {
	if m.cache == nil {
		return
	}
	if err := m.cache.Delete(ctx, cache.StateKey(sessionID)); err != nil {
		slog.Error("failed to evict cached state; cache may be ahead of durable store",
			"session_id", sessionID, "error", err)
	}
}

func decodeState(data []byte) (*conversation.State, error) {
	var st conversation.State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, err
	}
	if st.SessionID == "" {
		return nil, fmt.Errorf("state has no session id")
	}
	if st.Answers == nil {
		st.Answers = make(map[assessment.Dimension]string)
	}
	if st.Messages == nil {
		st.Messages = []conversation.Message{}
	}
	return &st, nil
}

var _ MemoryService = (*Manager)(nil)
