package main

import (
	"fmt"
	"sync"
	"time"
)

const (
	maxMessages     = 8
	messageLifetime = 15 * time.Second
)

type message struct {
	text   string
	count  int
	expire time.Time
}

var (
	messageMu sync.Mutex
	messages  []message
)

// addMessage queues a line for the status overlay. A line equal to the
// newest live one bumps its count instead, so a producer reconnecting in a
// loop takes one row. Only the newest maxMessages rows are kept.
func addMessage(msg string) {
	if msg == "" {
		return
	}
	messageMu.Lock()
	defer messageMu.Unlock()
	now := time.Now()
	if n := len(messages); n > 0 && messages[n-1].text == msg && now.Before(messages[n-1].expire) {
		messages[n-1].count++
		messages[n-1].expire = now.Add(messageLifetime)
		return
	}
	messages = append(messages, message{text: msg, count: 1, expire: now.Add(messageLifetime)})
	if len(messages) > maxMessages {
		messages = messages[len(messages)-maxMessages:]
	}
}

// getMessages drops expired rows and returns the rest, oldest first.
func getMessages() []string {
	messageMu.Lock()
	defer messageMu.Unlock()

	now := time.Now()
	var out []string
	keep := messages[:0]
	for _, m := range messages {
		if now.After(m.expire) {
			continue
		}
		if m.count > 1 {
			out = append(out, fmt.Sprintf("%s (x%d)", m.text, m.count))
		} else {
			out = append(out, m.text)
		}
		keep = append(keep, m)
	}
	clear(messages[len(keep):])
	messages = keep
	return out
}
