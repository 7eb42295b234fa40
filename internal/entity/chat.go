package entity

import "time"

type ChatMessage struct {
	RoomCode  string    `json:"-"`
	Player    string    `json:"player"`
	Symbol    string    `json:"symbol"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
