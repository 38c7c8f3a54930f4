package warehouse

import (
	"time"

	"garrison/codec"
	"garrison/model"
	"garrison/scan"
)

// Check walks the submission channel's history for the user's most recent
// supply record and decides whether a new requisition is allowed.
//
// 消息即存档: 冷却时间不落库, 直接从历史消息推导。被拒绝的申请不占用冷却。
// When blocked, the returned time says when the window reopens.
func Check(f scan.HistoryFetcher, channelID, requesterID string, window time.Duration, now time.Time) (bool, *time.Time, error) {
	msgs, err := f.ChannelMessages(channelID, 100, "", "", "")
	if err != nil {
		return false, nil, err
	}

	// ChannelMessages returns newest first, so the first match is the most
	// recent submission.
	for _, msg := range msgs {
		app, err := codec.Decode(msg)
		if err != nil {
			continue
		}
		if app.Kind != model.KindSupply || app.RequesterID != requesterID {
			continue
		}
		if app.Status == model.StatusRejected {
			return true, nil, nil
		}
		submitted := app.CreatedAt
		if submitted.IsZero() {
			submitted = msg.Timestamp
		}
		next := submitted.Add(window)
		if now.Before(next) {
			return false, &next, nil
		}
		return true, nil, nil
	}
	return true, nil, nil
}
