// Package chat owns the client-side chat state: the local thread cache, the
// reconciliation with server-stored threads, and the single in-flight
// response stream. Every mutation flows through the Manager's mutex; readers
// work on snapshots and never observe a half-applied update.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/learnnova/learnnova-cli/internal/api"
	"github.com/learnnova/learnnova-cli/internal/model/chat"
	"github.com/learnnova/learnnova-cli/internal/transport"
)

// Backend is the slice of the LearnNova API the manager talks to.
// *api.Client implements it.
type Backend interface {
	GetSession(ctx context.Context) (api.Session, error)
	ListThreads(ctx context.Context) ([]api.ThreadSummary, error)
	GetThread(ctx context.Context, id string) (api.ThreadDetail, error)
	CreateThread(ctx context.Context, title string) (api.ThreadSummary, error)
	RenameThread(ctx context.Context, id, title string) error
	DeleteThread(ctx context.Context, id string) error
	AppendMessage(ctx context.Context, threadID, role, content string) error
}

// Persister is the durable local thread cache. *store.FileStore implements
// it.
type Persister interface {
	Load() (chat.Snapshot, error)
	SaveDebounced(chat.Snapshot)
	Flush() error
}

// Streamer drives one chat completion, delivering content deltas in arrival
// order. *transport.Chain implements it.
type Streamer interface {
	Stream(ctx context.Context, req transport.Request, onToken func(delta string)) error
}

// activeStream tracks the one in-flight response. Thread promotion re-keys
// threadID in place so late tokens keep landing on the right entry.
type activeStream struct {
	threadID chat.ThreadID
	draftID  chat.MessageID
	cancel   context.CancelFunc
}

// Manager is the chat session manager. It is safe for concurrent use; all
// state lives behind one mutex and cloud writes run on the outbox worker.
type Manager struct {
	logger   *zap.Logger
	backend  Backend
	streamer Streamer
	store    Persister
	outbox   *Outbox

	mu        sync.Mutex
	state     chat.State
	session   api.Session
	authed    bool
	active    *activeStream
	aliases   map[chat.ThreadID]chat.ThreadID
	promoting map[chat.ThreadID]bool
}

// NewManager wires the manager. A nil outbox gets a default one; a nil
// logger a no-op one. The store may be nil for callers that keep no local
// cache.
func NewManager(backend Backend, streamer Streamer, store Persister, outbox *Outbox, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if outbox == nil {
		outbox = NewOutbox(logger)
	}
	return &Manager{
		logger:    logger,
		backend:   backend,
		streamer:  streamer,
		store:     store,
		outbox:    outbox,
		state:     chat.NewState(),
		aliases:   make(map[chat.ThreadID]chat.ThreadID),
		promoting: make(map[chat.ThreadID]bool),
	}
}

// Snapshot returns a copy of the current state. The thread map is the
// caller's to keep; later mutations do not show through.
func (m *Manager) Snapshot() chat.State {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.state.Snapshot()
	return chat.State{
		CurrentThreadID: snap.CurrentThreadID,
		Threads:         snap.Threads,
		IsStreaming:     m.state.IsStreaming,
		Error:           m.state.Error,
	}
}

// Session returns the backend session established during Bootstrap, if any.
func (m *Manager) Session() (api.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session, m.authed
}

// SelectThread makes the given thread current.
func (m *Manager) SelectThread(id chat.ThreadID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.state.Threads[id]; !ok {
		return ErrThreadNotFound
	}
	m.state.CurrentThreadID = id
	m.persistLocked()
	return nil
}

// CreateThread creates and selects a new local thread. When a backend
// session exists, a matching cloud thread is created in the background and
// the local entry is re-keyed under its cloud id once the server confirms.
func (m *Manager) CreateThread(title string) chat.Thread {
	thread := chat.NewThread(title)

	m.mu.Lock()
	m.state.Threads[thread.ID] = thread
	m.state.CurrentThreadID = thread.ID
	promote := m.authed
	if promote {
		m.promoting[thread.ID] = true
	}
	m.persistLocked()
	m.mu.Unlock()

	if promote {
		m.enqueuePromotion(thread.ID, thread.Title)
	}
	return thread
}

// DeleteThread removes a thread locally right away. Cloud-backed threads
// also get a best-effort server delete. When the deleted thread was current,
// selection falls to the most recently updated survivor.
func (m *Manager) DeleteThread(id chat.ThreadID) error {
	m.mu.Lock()
	if _, ok := m.state.Threads[id]; !ok {
		m.mu.Unlock()
		return ErrThreadNotFound
	}
	delete(m.state.Threads, id)
	delete(m.promoting, id)
	if m.state.CurrentThreadID == id {
		m.state.CurrentThreadID = chat.MostRecentThreadID(m.state.Threads)
	}
	m.persistLocked()
	m.mu.Unlock()

	m.enqueueCloudDelete(id)
	return nil
}

// RenameThread replaces a thread's title locally right away; renaming to the
// current title only refreshes the updated timestamp. Cloud-backed threads
// also get a best-effort server rename, with no rollback if it fails.
func (m *Manager) RenameThread(id chat.ThreadID, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}

	m.mu.Lock()
	thread, ok := m.state.Threads[id]
	if !ok {
		m.mu.Unlock()
		return ErrThreadNotFound
	}
	m.state.Threads[id] = chat.RenameThread(thread, title)
	mirror := m.cloudBackedLocked(id)
	m.persistLocked()
	m.mu.Unlock()

	if mirror {
		m.enqueueCloudRename(id, title)
	}
	return nil
}

// Send runs one full request/response cycle: append the user message and an
// empty assistant draft, stream tokens into the draft, and mirror both
// messages to the cloud copy when the thread is cloud-backed. It blocks
// until the stream finishes; onToken, which may be nil, sees every delta as
// it arrives.
//
// Empty input is a no-op. A send while another stream is active returns
// ErrStreamInFlight. A stream ended by Stop finishes silently: the partial
// draft is kept and no error is recorded.
func (m *Manager) Send(ctx context.Context, text string, onToken func(delta string)) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	m.mu.Lock()
	if m.state.IsStreaming {
		m.mu.Unlock()
		return ErrStreamInFlight
	}

	var promote bool
	thread, ok := m.state.Current()
	if !ok {
		thread = chat.NewThread(chat.DeriveTitle(text))
		m.state.Threads[thread.ID] = thread
		m.state.CurrentThreadID = thread.ID
		if m.authed {
			m.promoting[thread.ID] = true
			promote = true
		}
	}

	userMsg := chat.NewMessage(chat.RoleUser, text)
	draft := chat.NewMessage(chat.RoleAssistant, "")
	thread = chat.AppendMessage(thread, userMsg)
	thread = chat.AppendMessage(thread, draft)
	m.state.Threads[thread.ID] = thread
	m.state.IsStreaming = true
	m.state.Error = ""

	streamCtx, cancel := context.WithCancel(ctx)
	m.active = &activeStream{threadID: thread.ID, draftID: draft.ID, cancel: cancel}

	req := buildRequest(thread, draft.ID)
	mirrorUser := m.cloudBackedLocked(thread.ID)
	title := thread.Title
	threadID := thread.ID
	m.persistLocked()
	m.mu.Unlock()

	if promote {
		m.enqueuePromotion(threadID, title)
	}
	if mirrorUser {
		m.enqueueMessageAppend(threadID, chat.RoleUser, text)
	}

	err := m.streamer.Stream(streamCtx, req, func(delta string) {
		m.applyToken(delta)
		if onToken != nil {
			onToken(delta)
		}
	})
	cancel()

	return m.finishStream(err)
}

// RetryLast re-sends the most recent user message of the current thread,
// the recovery path after a failed send.
func (m *Manager) RetryLast(ctx context.Context, onToken func(delta string)) error {
	m.mu.Lock()
	thread, ok := m.state.Current()
	m.mu.Unlock()

	if !ok {
		return ErrThreadNotFound
	}
	last, ok := chat.LastUserMessage(thread)
	if !ok {
		return ErrNoUserMessage
	}
	return m.Send(ctx, last.Content, onToken)
}

// Stop cancels the in-flight stream, if any, and reports whether one was
// active. The interrupted send finishes without recording an error.
func (m *Manager) Stop() bool {
	m.mu.Lock()
	active := m.active
	m.mu.Unlock()

	if active == nil {
		return false
	}
	active.cancel()
	return true
}

// Close drains pending cloud writes and flushes the local cache.
func (m *Manager) Close() error {
	m.outbox.Close()
	if m.store == nil {
		return nil
	}
	return m.store.Flush()
}

// applyToken appends one streamed delta to the active draft. The active
// stream is re-read on every call because promotion may have re-keyed the
// thread since the last token.
func (m *Manager) applyToken(delta string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return
	}
	thread, ok := m.state.Threads[m.active.threadID]
	if !ok {
		// Thread deleted mid-stream; drop the token.
		return
	}
	if updated, ok := chat.AppendMessageContent(thread, m.active.draftID, delta); ok {
		m.state.Threads[m.active.threadID] = updated
	}
	m.persistLocked()
}

// finishStream settles state after the transport returns: the streaming flag
// drops, a failure classifies into the error slot, and a completed response
// on a cloud-backed thread is mirrored to the server. Cancellation is
// neither a success to mirror nor an error to surface.
func (m *Manager) finishStream(streamErr error) error {
	canceled := errors.Is(streamErr, context.Canceled)

	m.mu.Lock()
	active := m.active
	m.active = nil
	m.state.IsStreaming = false

	var threadID chat.ThreadID
	var finalContent string
	var mirror bool
	if active != nil {
		threadID = active.threadID
		if thread, ok := m.state.Threads[active.threadID]; ok {
			if msg, ok := chat.MessageByID(thread, active.draftID); ok {
				finalContent = msg.Content
			}
		}
		mirror = m.cloudBackedLocked(threadID)
	}
	if streamErr != nil && !canceled {
		m.state.Error = classifyError(streamErr)
	}
	m.persistLocked()
	m.mu.Unlock()

	if streamErr == nil && mirror && finalContent != "" {
		m.enqueueMessageAppend(threadID, chat.RoleAssistant, finalContent)
	}
	if canceled {
		return nil
	}
	return streamErr
}

// buildRequest turns the thread history into the completion payload. The
// empty draft is excluded; cloud-backed threads carry their server id in the
// request meta.
func buildRequest(thread chat.Thread, draftID chat.MessageID) transport.Request {
	messages := make([]transport.Message, 0, len(thread.Messages))
	for _, msg := range thread.Messages {
		if msg.ID == draftID {
			continue
		}
		messages = append(messages, transport.Message{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}
	req := transport.Request{Messages: messages}
	if serverID, ok := thread.ID.ServerID(); ok {
		req.Meta = map[string]any{"threadId": serverID}
	}
	return req
}

// cloudBackedLocked reports whether writes against the thread should reach
// the server: it already carries a cloud id, its promotion is queued, or it
// was promoted earlier. Callers must hold m.mu.
func (m *Manager) cloudBackedLocked(id chat.ThreadID) bool {
	if !m.authed {
		return false
	}
	if id.IsCloud() || m.promoting[id] {
		return true
	}
	_, promoted := m.aliases[id]
	return promoted
}

// resolveServerID maps a thread id to its server id, following the promotion
// alias when the thread was re-keyed after the job was enqueued.
func (m *Manager) resolveServerID(id chat.ThreadID) (string, bool) {
	m.mu.Lock()
	if cloudID, ok := m.aliases[id]; ok {
		id = cloudID
	}
	m.mu.Unlock()
	return id.ServerID()
}

// persistLocked schedules a debounced save of the durable state. Callers
// must hold m.mu.
func (m *Manager) persistLocked() {
	if m.store == nil {
		return
	}
	m.store.SaveDebounced(m.state.Snapshot())
}

// enqueuePromotion creates the server-side twin of a locally created thread
// and re-keys the local entry once the server id is known.
func (m *Manager) enqueuePromotion(localID chat.ThreadID, title string) {
	m.outbox.Enqueue(Job{
		Name: "thread create",
		Run: func(ctx context.Context) error {
			created, err := m.backend.CreateThread(ctx, title)
			if err != nil {
				return err
			}
			m.promote(localID, chat.CloudThreadID(string(created.ID)))
			return nil
		},
	})
}

// promote re-keys a local thread under its cloud id. The local-only key is
// removed; the current selection and any active stream follow the new key.
// Appends enqueued against the old id resolve through the alias table.
func (m *Manager) promote(localID, cloudID chat.ThreadID) {
	m.mu.Lock()
	delete(m.promoting, localID)
	thread, ok := m.state.Threads[localID]
	if !ok {
		m.mu.Unlock()
		// Deleted while the create was in flight; drop the server copy
		// instead of resurrecting the thread.
		m.enqueueCloudDelete(cloudID)
		return
	}
	thread.ID = cloudID
	delete(m.state.Threads, localID)
	m.state.Threads[cloudID] = thread
	if m.state.CurrentThreadID == localID {
		m.state.CurrentThreadID = cloudID
	}
	if m.active != nil && m.active.threadID == localID {
		m.active.threadID = cloudID
	}
	m.aliases[localID] = cloudID
	m.persistLocked()
	m.mu.Unlock()

	m.logger.Debug("thread promoted to cloud",
		zap.String("local", string(localID)),
		zap.String("cloud", string(cloudID)))
}

// enqueueMessageAppend mirrors one message to the thread's server copy. The
// server id is resolved at run time so appends enqueued before a promotion
// completes still land on the right thread.
func (m *Manager) enqueueMessageAppend(id chat.ThreadID, role chat.Role, content string) {
	m.outbox.Enqueue(Job{
		Name: "message append",
		Run: func(ctx context.Context) error {
			serverID, ok := m.resolveServerID(id)
			if !ok {
				// Still local-only: promotion failed or the thread is gone.
				return nil
			}
			return m.backend.AppendMessage(ctx, serverID, string(role), content)
		},
	})
}

func (m *Manager) enqueueCloudRename(id chat.ThreadID, title string) {
	m.outbox.Enqueue(Job{
		Name: "thread rename",
		Run: func(ctx context.Context) error {
			serverID, ok := m.resolveServerID(id)
			if !ok {
				return nil
			}
			return m.backend.RenameThread(ctx, serverID, title)
		},
	})
}

func (m *Manager) enqueueCloudDelete(id chat.ThreadID) {
	serverID, ok := id.ServerID()
	if !ok {
		return
	}
	m.outbox.Enqueue(Job{
		Name: "thread delete",
		Run: func(ctx context.Context) error {
			return m.backend.DeleteThread(ctx, serverID)
		},
	})
}
