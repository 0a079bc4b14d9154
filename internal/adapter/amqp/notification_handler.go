package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/YelzhanWeb/restaurant/internal/adapter/logger"
	"github.com/YelzhanWeb/restaurant/internal/interfaces"
)

type NotificationHandler struct {
	logger logger.Logger
	out    io.Writer
}

func NewNotificationHandler(logger logger.Logger) *NotificationHandler {
	return &NotificationHandler{
		logger: logger,
		out:    os.Stdout,
	}
}

func (h *NotificationHandler) HandleNotification(ctx context.Context, body []byte) error {
	var msg interfaces.StatusChangedMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		h.logger.Error("message_parse_failed", "Failed to parse notification", "", nil, err)
		return err
	}

	h.logger.Debug("notification_received", fmt.Sprintf("Received status update for order %d", msg.OrderID), "",
		map[string]interface{}{
			"order_id":       msg.OrderID,
			"new_status":     msg.NewStatus,
			"table_released": msg.TableReleased,
		})

	fmt.Fprintf(h.out, "Notification for order %d (table %d): status changed from '%s' to '%s' by %s\n",
		msg.OrderID, msg.TableNumber, msg.OldStatus, msg.NewStatus, msg.ChangedBy)
	if msg.TableReleased {
		fmt.Fprintf(h.out, "Table %d is available again\n", msg.TableNumber)
	}

	return nil
}
