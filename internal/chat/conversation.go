package chat

import (
	"sort"
	"strings"
	"time"
)

type messageKey struct {
	sender Sender
	text   string
	time   string
}

func keyOf(m Message) messageKey {
	return messageKey{sender: m.Sender, text: m.Text, time: m.Time.UTC().Format(time.RFC3339Nano)}
}

// Merge builds the displayed conversation: the seed (if any) first, then every stored
// line. Blank lines are dropped, exact (sender, text, time) repeats collapse to the first
// occurrence and the result is stably sorted by time.
func Merge(seed *Message, stored ...[]Message) []Message {
	seen := map[messageKey]struct{}{}
	var out []Message
	add := func(m Message) {
		if strings.TrimSpace(m.Text) == "" {
			return
		}
		k := keyOf(m)
		if _, dup := seen[k]; dup {
			return
		}
		seen[k] = struct{}{}
		out = append(out, m)
	}

	if seed != nil {
		add(*seed)
	}
	for _, list := range stored {
		for _, m := range list {
			add(m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out
}
