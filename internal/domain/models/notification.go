package models

import (
	"time"
)

// EventNotification — то, что получает внешний нотификатор при создании
// события. Само форматирование и доставка сообщений остаются снаружи.
type EventNotification struct {
	Kind      EventKind
	EventID   string
	MonitorID int64
	OrgCode   string
	GUID      string
	Status    string
	Reason    string
	CreatedAt time.Time
}
