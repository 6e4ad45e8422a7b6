package gateway

import (
	"context"
	"time"
)

// Overwrite describes a channel permission entry applied at creation.
type Overwrite struct {
	TargetID string
	IsRole   bool
	View     bool
	Send     bool
}

// HistoryMessage is one entry of a channel's message history.
type HistoryMessage struct {
	Timestamp time.Time
	AuthorID  string
	Author    string
	Text      string
}

// ChatGateway abstracts the chat platform. Implementations live outside the
// core; every call may fail or time out and is treated as a transient
// collaborator failure.
type ChatGateway interface {
	CreateChannel(ctx context.Context, tenantID, name, categoryID string, overwrites []Overwrite) (channelID string, err error)
	SetPermission(ctx context.Context, channelID, actorID string, view, send bool) error
	FetchHistory(ctx context.Context, channelID string) ([]HistoryMessage, error)
	SendMessage(ctx context.Context, channelID, content string) error
	SendDocument(ctx context.Context, channelID, filename string, content []byte) error
	DeleteChannel(ctx context.Context, channelID string) error
}
