package main

import (
	"context"
	"fmt"
	"time"

	client "github.com/hugolgst/rich-go/client"
)

const presenceInterval = 15 * time.Second

func initDiscordRPC(ctx context.Context, box *frameBox) {
	if gs.DiscordAppID == "" {
		logError("discord rpc: no discordAppId in settings")
		return
	}
	if err := client.Login(gs.DiscordAppID); err != nil {
		logError("discord rpc login: %v", err)
		return
	}
	start := time.Now()
	go func() {
		defer client.Logout()
		ticker := time.NewTicker(presenceInterval)
		defer ticker.Stop()
		for {
			f, st, ok := box.latest()
			if ok {
				if err := client.SetActivity(client.Activity{
					State:   fmt.Sprintf("%d producers, %d texts", st.Open, len(f.Texts)),
					Details: fmt.Sprintf("Watching %.2f, %.2f", f.Geo.Target.Lat, f.Geo.Target.Lon),
					Timestamps: &client.Timestamps{
						Start: &start,
					},
				}); err != nil {
					logDebug("discord rpc activity: %v", err)
				}
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}
