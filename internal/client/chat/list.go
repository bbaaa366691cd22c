package chat

import "sync"

// List is the ordered message list of one chat room. Order is insertion
// order; an update replaces a message at its existing position.
type List struct {
	mu    sync.RWMutex
	items []Message
	index map[int64]int
}

func NewList() *List {
	return &List{index: make(map[int64]int)}
}

// Replace swaps the whole list, tagging each message against
// currentUserID.
func (l *List) Replace(msgs []Message, currentUserID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.items = make([]Message, 0, len(msgs))
	l.index = make(map[int64]int, len(msgs))
	for _, m := range msgs {
		l.applyLocked(m, currentUserID)
	}
}

// Apply appends m, or replaces the message with the same id in place. It
// reports whether an existing message was replaced.
func (l *List) Apply(m Message, currentUserID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.applyLocked(m, currentUserID)
}

func (l *List) applyLocked(m Message, currentUserID int64) bool {
	m.SentByCurrentUser = currentUserID != 0 && m.UserID == currentUserID
	if i, ok := l.index[m.ID]; ok {
		l.items[i] = m
		return true
	}
	l.index[m.ID] = len(l.items)
	l.items = append(l.items, m)
	return false
}

// Messages returns a copy of the list.
func (l *List) Messages() []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Message, len(l.items))
	copy(out, l.items)
	return out
}
