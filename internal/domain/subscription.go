package domain

import "time"

// Subscription é o vínculo (usuário, evento). A unicidade do par é o
// contrato central do ledger: no máximo uma inscrição por usuário por evento.
type Subscription struct {
	UserID    string    `json:"user_id"`
	EventID   string    `json:"event_id"`
	CreatedAt time.Time `json:"created_at"`
}

// SubscribedEvent é um evento em que o usuário está inscrito, anotado com a
// data da inscrição (usado em "minhas inscrições").
type SubscribedEvent struct {
	Event
	SubscribedAt time.Time `json:"subscribed_at"`
}
