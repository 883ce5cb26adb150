package session

import "sync"

// Entry is one answered question. It is never modified after it is appended.
type Entry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Log is the ordered conversation history of a single session.
type Log struct {
	mu      sync.RWMutex
	entries []Entry
}

func (l *Log) Append(question, answer string) {
	l.mu.Lock()
	l.entries = append(l.entries, Entry{Question: question, Answer: answer})
	l.mu.Unlock()
}

func (l *Log) Reset() {
	l.mu.Lock()
	l.entries = nil
	l.mu.Unlock()
}

// All returns a copy of the entries in insertion order.
func (l *Log) All() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	copied := make([]Entry, len(l.entries))
	copy(copied, l.entries)
	return copied
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
