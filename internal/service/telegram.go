package service

type Telegram interface {
	Start()
	Stop()
	SendMessageWithOpts(id int64, message string, opts ...interface{}) error
}
