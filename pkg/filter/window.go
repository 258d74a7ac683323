package filter

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/umputun/pushscope/pkg/domain"
)

// IsInActiveHours reports whether now falls into the subscription's active window.
// The hour is taken in the subscription's time zone, UTC if not set.
// Same-day window (start <= end) is inclusive on both ends, overnight window
// (start > end) accepts hours >= start or <= end.
func IsInActiveHours(sub *domain.Subscription, now time.Time) bool {
	return inWindow(sub.ActiveHours, now.In(sub.Location()).Hour())
}

func inWindow(w domain.ActiveHours, hour int) bool {
	if w.Overnight() {
		return hour >= w.Start || hour <= w.End
	}
	return hour >= w.Start && hour <= w.End
}

// windowOpenings holds "top of hour h" schedules for every start hour, parsed once.
// The time zone is set per call on a copy.
var windowOpenings = func() [24]cron.SpecSchedule {
	var res [24]cron.SpecSchedule
	for h := range res {
		sched, err := cron.ParseStandard(fmt.Sprintf("0 %d * * *", h))
		if err != nil {
			panic(fmt.Sprintf("parse window schedule for hour %d: %v", h, err))
		}
		res[h] = *sched.(*cron.SpecSchedule)
	}
	return res
}()

// NextWindowOpen returns t if it is inside the active window, otherwise the moment the
// window opens next, i.e. the top of the start hour in the subscription's time zone.
func NextWindowOpen(sub *domain.Subscription, t time.Time) time.Time {
	if IsInActiveHours(sub, t) {
		return t
	}
	start := sub.ActiveHours.Start
	if start < 0 || start >= len(windowOpenings) {
		// hours are validated on save, this is reachable only for unsaved garbage
		return t
	}
	sched := windowOpenings[start]
	sched.Location = sub.Location()
	return sched.Next(t)
}
