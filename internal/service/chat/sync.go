package chat

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/learnnova/learnnova-cli/internal/api"
	"github.com/learnnova/learnnova-cli/internal/model/chat"
)

// detailFetchLimit caps concurrent thread detail requests during bootstrap.
const detailFetchLimit = 8

// Bootstrap loads the local cache, then reconciles it with the backend's
// thread list. Running unauthenticated is not an error: the manager simply
// stays local-only. Cloud fetch failures degrade the same way, logged and
// skipped, so startup never blocks on the network. Only an unreadable local
// cache aborts.
func (m *Manager) Bootstrap(ctx context.Context) error {
	if m.store != nil {
		snap, err := m.store.Load()
		if err != nil {
			return fmt.Errorf("load chat state: %w", err)
		}
		m.mu.Lock()
		m.state.Threads = snap.Threads
		m.state.CurrentThreadID = snap.CurrentThreadID
		if _, ok := m.state.Threads[m.state.CurrentThreadID]; !ok {
			m.state.CurrentThreadID = chat.MostRecentThreadID(m.state.Threads)
		}
		m.mu.Unlock()
	}

	session, err := m.backend.GetSession(ctx)
	if err != nil {
		m.logger.Debug("no backend session, staying local", zap.Error(err))
		return nil
	}

	m.mu.Lock()
	m.session = session
	m.authed = true
	m.mu.Unlock()

	cloud := m.fetchCloudThreads(ctx)

	m.mu.Lock()
	m.state.Threads = mergeThreads(m.state.Threads, cloud)
	m.state.CurrentThreadID = selectCurrent(m.state.CurrentThreadID, m.state.Threads)
	m.persistLocked()
	m.mu.Unlock()

	m.logger.Info("cloud threads merged",
		zap.Int("cloud", len(cloud)),
		zap.String("user", session.Email))
	return nil
}

// fetchCloudThreads lists the user's server threads and fans out detail
// fetches. A failed listing or detail fetch is logged and the thread
// skipped; whatever arrived still merges.
func (m *Manager) fetchCloudThreads(ctx context.Context) map[chat.ThreadID]chat.Thread {
	summaries, err := m.backend.ListThreads(ctx)
	if err != nil {
		m.logger.Warn("cloud thread listing failed", zap.Error(err))
		return nil
	}
	if len(summaries) == 0 {
		return nil
	}

	details := make([]*api.ThreadDetail, len(summaries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(detailFetchLimit)
	for i, summary := range summaries {
		g.Go(func() error {
			detail, err := m.backend.GetThread(gctx, string(summary.ID))
			if err != nil {
				m.logger.Warn("cloud thread fetch failed",
					zap.String("id", string(summary.ID)),
					zap.Error(err))
				return nil
			}
			details[i] = &detail
			return nil
		})
	}
	// Workers never return errors; Wait only joins them.
	_ = g.Wait()

	now := time.Now().UnixMilli()
	threads := make(map[chat.ThreadID]chat.Thread, len(details))
	for _, detail := range details {
		if detail == nil {
			continue
		}
		thread := cloudThread(*detail, now)
		threads[thread.ID] = thread
	}
	return threads
}

// cloudThread maps a backend thread detail onto the local model. Absent
// timestamps fall back to now; a blank title gets the default.
func cloudThread(detail api.ThreadDetail, now int64) chat.Thread {
	title := detail.Title
	if title == "" {
		title = chat.DefaultTitle
	}
	created := detail.CreatedAt.Millis()
	if created == 0 {
		created = now
	}
	updated := detail.UpdatedAt.Millis()
	if updated == 0 {
		updated = created
	}

	messages := make([]chat.Message, 0, len(detail.Messages))
	for _, rec := range detail.Messages {
		stamp := rec.CreatedAt.Millis()
		if stamp == 0 {
			stamp = now
		}
		messages = append(messages, chat.Message{
			ID:        chat.CloudMessageID(string(rec.ID)),
			Role:      chat.Role(rec.Role),
			Content:   rec.Content,
			CreatedAt: stamp,
		})
	}

	return chat.Thread{
		ID:        chat.CloudThreadID(string(detail.ID)),
		Title:     title,
		Messages:  messages,
		CreatedAt: created,
		UpdatedAt: updated,
	}
}

// mergeThreads folds cloud threads into the local set. Local entries win on
// key collisions: unsynced local writes must not be clobbered by a stale
// server copy.
func mergeThreads(local, cloud map[chat.ThreadID]chat.Thread) map[chat.ThreadID]chat.Thread {
	merged := make(map[chat.ThreadID]chat.Thread, len(local)+len(cloud))
	for id, t := range cloud {
		merged[id] = t
	}
	for id, t := range local {
		merged[id] = t
	}
	return merged
}

// selectCurrent keeps the existing selection when it survived the merge and
// otherwise falls back to the most recently updated thread.
func selectCurrent(current chat.ThreadID, threads map[chat.ThreadID]chat.Thread) chat.ThreadID {
	if _, ok := threads[current]; ok {
		return current
	}
	return chat.MostRecentThreadID(threads)
}
