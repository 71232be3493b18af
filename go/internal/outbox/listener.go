package outbox

import (
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// PGNotifier receives outbox event IDs over Postgres LISTEN/NOTIFY
type PGNotifier struct {
	listener *pq.Listener
	out      chan string
	done     chan struct{}
}

// NewPGNotifier listens on channel using its own connection to databaseURL
func NewPGNotifier(databaseURL, channel string) (*PGNotifier, error) {
	l := pq.NewListener(
		databaseURL,
		10*time.Second,
		time.Minute,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				log.Error().Err(err).Msg("listener event")
			}
		},
	)
	if err := l.Listen(channel); err != nil {
		_ = l.Close()
		return nil, fmt.Errorf("failed to listen to channel: %w", err)
	}

	log.Info().
		Str("channel", channel).
		Msg("listening for notifications")

	n := &PGNotifier{
		listener: l,
		out:      make(chan string, 64),
		done:     make(chan struct{}),
	}
	go n.forward()
	return n, nil
}

// forward turns pq notifications into event IDs. A nil notification means the
// connection was lost and re-established, which is passed on as "".
func (n *PGNotifier) forward() {
	defer close(n.out)
	for {
		select {
		case <-n.done:
			return
		case note, ok := <-n.listener.Notify:
			if !ok {
				return
			}
			extra := ""
			if note != nil {
				extra = note.Extra
			}
			select {
			case n.out <- extra:
			case <-n.done:
				return
			}
		}
	}
}

func (n *PGNotifier) Notifications() <-chan string {
	return n.out
}

func (n *PGNotifier) Ping() error {
	return n.listener.Ping()
}

func (n *PGNotifier) Close() error {
	close(n.done)
	return n.listener.Close()
}
