package commands

import "socialhub/pkg/utils"

// MarkNotificationReadCommand sets a notification's read flag
type MarkNotificationReadCommand struct {
	NotificationID string `json:"notification_id" validate:"required,uuid"`
	CallerID       string `json:"caller_id" validate:"required"`
}

func (c MarkNotificationReadCommand) Validate() error { return utils.ValidateStruct(c) }
