package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Dosada05/sports-center/cache"
	"github.com/Dosada05/sports-center/events"
	"github.com/Dosada05/sports-center/models"
	"github.com/Dosada05/sports-center/realtime"
	"github.com/Dosada05/sports-center/schedule"
	"github.com/Dosada05/sports-center/storage"
)

// Clock supplies the current instant and the local calendar of the
// sports center. "today" is always the local date.
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return Clock{Now: time.Now, Location: loc}
}

func (c Clock) now() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}
	return now().In(loc)
}

func (c Clock) Today() schedule.Date {
	return schedule.DateOf(c.now())
}

// Broadcaster pushes a message to every client subscribed to a room.
// *realtime.Hub implements it.
type Broadcaster interface {
	BroadcastToRoom(room string, msg realtime.Message)
}

type nopBroadcaster struct{}

func (nopBroadcaster) BroadcastToRoom(string, realtime.Message) {}

func orNopBroadcaster(b Broadcaster) Broadcaster {
	if b == nil {
		return nopBroadcaster{}
	}
	return b
}

func orNopAvailability(c cache.AvailabilityCache) cache.AvailabilityCache {
	if c == nil {
		return cache.NewAvailabilityCache(nil, 0, nil)
	}
	return c
}

func orNopPublisher(p events.Publisher) events.Publisher {
	if p == nil {
		return events.NewNopPublisher()
	}
	return p
}

func orDefaultLogger(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}

// publish sends a domain event. Delivery failures are logged and never fail
// the request that produced the event.
func publish(ctx context.Context, p events.Publisher, logger *slog.Logger, key string, v any) {
	if err := p.PublishJSON(ctx, key, v); err != nil {
		logger.WarnContext(ctx, "failed to publish domain event", slog.String("routing_key", key), slog.Any("error", err))
	}
}

func populateFacilityImageURL(f *models.Facility, uploader storage.FileUploader) {
	if f == nil || f.ImageKey == nil || *f.ImageKey == "" || uploader == nil {
		return
	}
	if url := uploader.GetPublicURL(*f.ImageKey); url != "" {
		f.ImageURL = &url
	}
}

// translate returns target when err matches sentinel, and err otherwise.
func translate(err, sentinel, target error) error {
	if errors.Is(err, sentinel) {
		return target
	}
	return err
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
