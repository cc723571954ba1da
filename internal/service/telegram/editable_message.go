package telegram

import "strconv"

// editableMessage addresses a message the bot sent earlier by chat and message id.
type editableMessage struct {
	messageID int
	chatID    int64
}

func (e *editableMessage) MessageSig() (string, int64) {
	return strconv.Itoa(e.messageID), e.chatID
}
