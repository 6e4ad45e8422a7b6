package gateway

import (
	"context"

	"go.uber.org/zap"
)

// LoggingGateway decorates a ChatGateway with structured logging of every
// outbound call and its outcome.
type LoggingGateway struct {
	next   ChatGateway
	logger *zap.Logger
}

// NewLoggingGateway wraps next with call logging.
func NewLoggingGateway(next ChatGateway, logger *zap.Logger) *LoggingGateway {
	return &LoggingGateway{next: next, logger: logger}
}

func (g *LoggingGateway) CreateChannel(ctx context.Context, tenantID, name, categoryID string, overwrites []Overwrite) (string, error) {
	channelID, err := g.next.CreateChannel(ctx, tenantID, name, categoryID, overwrites)
	g.log("create_channel", err,
		zap.String("tenant_id", tenantID),
		zap.String("name", name),
		zap.String("channel_id", channelID))
	return channelID, err
}

func (g *LoggingGateway) SetPermission(ctx context.Context, channelID, actorID string, view, send bool) error {
	err := g.next.SetPermission(ctx, channelID, actorID, view, send)
	g.log("set_permission", err,
		zap.String("channel_id", channelID),
		zap.String("actor_id", actorID),
		zap.Bool("view", view),
		zap.Bool("send", send))
	return err
}

func (g *LoggingGateway) FetchHistory(ctx context.Context, channelID string) ([]HistoryMessage, error) {
	msgs, err := g.next.FetchHistory(ctx, channelID)
	g.log("fetch_history", err,
		zap.String("channel_id", channelID),
		zap.Int("messages", len(msgs)))
	return msgs, err
}

func (g *LoggingGateway) SendMessage(ctx context.Context, channelID, content string) error {
	err := g.next.SendMessage(ctx, channelID, content)
	g.log("send_message", err, zap.String("channel_id", channelID))
	return err
}

func (g *LoggingGateway) SendDocument(ctx context.Context, channelID, filename string, content []byte) error {
	err := g.next.SendDocument(ctx, channelID, filename, content)
	g.log("send_document", err,
		zap.String("channel_id", channelID),
		zap.String("filename", filename),
		zap.Int("bytes", len(content)))
	return err
}

func (g *LoggingGateway) DeleteChannel(ctx context.Context, channelID string) error {
	err := g.next.DeleteChannel(ctx, channelID)
	g.log("delete_channel", err, zap.String("channel_id", channelID))
	return err
}

func (g *LoggingGateway) log(op string, err error, fields ...zap.Field) {
	if err != nil {
		g.logger.Warn("gateway call failed", append(fields, zap.String("op", op), zap.Error(err))...)
		return
	}
	g.logger.Debug("gateway call", append(fields, zap.String("op", op))...)
}
