package actor

import "sync/atomic"

type MetricsSnapshot struct {
	LiveActors   int64
	MessagesSent int64
	MessagesRecv int64
	DeadLetters  int64
}

type Metrics struct {
	liveActors   atomic.Int64
	messagesSent atomic.Int64
	messagesRecv atomic.Int64
	deadLetters  atomic.Int64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) RecordLiveActor(delta int) {
	m.liveActors.Add(int64(delta))
}

func (m *Metrics) RecordMessageSent(delta int) {
	m.messagesSent.Add(int64(delta))
}

func (m *Metrics) RecordMessageRecv(delta int) {
	m.messagesRecv.Add(int64(delta))
}

func (m *Metrics) RecordDeadLetter(delta int) {
	m.deadLetters.Add(int64(delta))
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		LiveActors:   m.liveActors.Load(),
		MessagesSent: m.messagesSent.Load(),
		MessagesRecv: m.messagesRecv.Load(),
		DeadLetters:  m.deadLetters.Load(),
	}
}
